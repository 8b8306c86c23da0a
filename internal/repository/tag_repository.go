package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vigilops/vigil-api/internal/models"
)

// TagRepository resolves tag references and manages the alert-tag join.
// A tag reference is either the canonical id or the human-readable slug.
type TagRepository interface {
	Resolve(ctx context.Context, workspaceID, ref string) (models.Tag, error)
	ListForAlert(ctx context.Context, alertID string) ([]models.Tag, error)
	AddAlertTag(ctx context.Context, workspaceID, alertID, ref string) (models.Tag, error)
	RemoveAlertTag(ctx context.Context, workspaceID, alertID, ref string) error
}

type tagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Resolve(ctx context.Context, workspaceID, ref string) (models.Tag, error) {
	query := "SELECT t.id, t.owner_id, t.name, t.ref, t.color FROM tags t WHERE t.owner_id = $1 AND t.ref = $2"
	if _, err := uuid.Parse(ref); err == nil {
		query = "SELECT t.id, t.owner_id, t.name, t.ref, t.color FROM tags t WHERE t.owner_id = $1 AND t.id = $2"
	}

	var (
		tag   models.Tag
		color sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, workspaceID, ref).
		Scan(&tag.ID, &tag.WorkspaceID, &tag.Name, &tag.Ref, &color)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Tag{}, ErrTagNotFound
		}
		return models.Tag{}, errors.Wrap(err, "resolve tag")
	}
	if color.Valid {
		tag.Color = &color.String
	}
	return tag, nil
}

func (r *tagRepository) ListForAlert(ctx context.Context, alertID string) ([]models.Tag, error) {
	byAlert, err := loadAlertTags(ctx, r.db, []string{alertID})
	if err != nil {
		return nil, err
	}
	tags := byAlert[alertID]
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// AddAlertTag is idempotent: adding a tag the alert already carries returns
// the tag without creating a duplicate join row.
func (r *tagRepository) AddAlertTag(ctx context.Context, workspaceID, alertID, ref string) (models.Tag, error) {
	tag, err := r.Resolve(ctx, workspaceID, ref)
	if err != nil {
		return models.Tag{}, err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO alert_tags (alert_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		alertID, tag.ID,
	)
	if err != nil {
		return models.Tag{}, errors.Wrap(err, "add alert tag")
	}
	return tag, nil
}

func (r *tagRepository) RemoveAlertTag(ctx context.Context, workspaceID, alertID, ref string) error {
	tag, err := r.Resolve(ctx, workspaceID, ref)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM alert_tags WHERE alert_id = $1 AND tag_id = $2",
		alertID, tag.ID,
	)
	if err != nil {
		return errors.Wrap(err, "remove alert tag")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAssociationNotFound
	}
	return nil
}

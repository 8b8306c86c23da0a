package repository

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/vigilops/vigil-api/internal/models"
)

// CaseLinkRepository manages the many-to-many link between the case bounded
// context and alerts.
type CaseLinkRepository interface {
	ListAlertsForCase(ctx context.Context, workspaceID, caseID string) ([]models.AlertSummary, error)
	Add(ctx context.Context, workspaceID, caseID, alertID string) (models.AlertSummary, error)
	Remove(ctx context.Context, workspaceID, caseID, alertID string) error
}

type caseLinkRepository struct {
	db *sql.DB
}

func NewCaseLinkRepository(db *sql.DB) CaseLinkRepository {
	return &caseLinkRepository{db: db}
}

func (r *caseLinkRepository) ListAlertsForCase(ctx context.Context, workspaceID, caseID string) ([]models.AlertSummary, error) {
	if err := r.checkCase(ctx, workspaceID, caseID); err != nil {
		return nil, err
	}
	query := "SELECT " + alertSummaryColumns + `
		FROM alerts a
		JOIN case_alerts ca ON ca.alert_id = a.id
		WHERE ca.case_id = $1 AND a.owner_id = $2
		ORDER BY a.created_at DESC, a.id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, caseID, workspaceID)
	if err != nil {
		return nil, errors.Wrap(err, "list case alerts")
	}
	defer rows.Close()
	summaries, err := scanAlertSummaries(rows)
	if err != nil {
		return nil, err
	}
	tags, err := loadAlertTags(ctx, r.db, summaryIDs(summaries))
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].Tags = tags[summaries[i].ID]
		if summaries[i].Tags == nil {
			summaries[i].Tags = []models.Tag{}
		}
	}
	return summaries, nil
}

// Add links an alert to a case; linking an already-linked pair returns the
// alert without duplicating the join row.
func (r *caseLinkRepository) Add(ctx context.Context, workspaceID, caseID, alertID string) (models.AlertSummary, error) {
	if err := r.checkCase(ctx, workspaceID, caseID); err != nil {
		return models.AlertSummary{}, err
	}
	alert, err := getAlert(ctx, r.db, workspaceID, alertID)
	if err != nil {
		return models.AlertSummary{}, err
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO case_alerts (case_id, alert_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		caseID, alertID,
	)
	if err != nil {
		return models.AlertSummary{}, errors.Wrap(err, "link case alert")
	}

	summary := models.AlertSummary{
		ID:          alert.ID,
		ShortID:     alert.ShortID(),
		AlertNumber: alert.AlertNumber,
		Summary:     alert.Summary,
		Status:      alert.Status,
		Priority:    alert.Priority,
		Severity:    alert.Severity,
		CreatedAt:   alert.CreatedAt,
		UpdatedAt:   alert.UpdatedAt,
		Tags:        []models.Tag{},
	}
	return summary, nil
}

func (r *caseLinkRepository) Remove(ctx context.Context, workspaceID, caseID, alertID string) error {
	if err := r.checkCase(ctx, workspaceID, caseID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM case_alerts WHERE case_id = $1 AND alert_id = $2",
		caseID, alertID,
	)
	if err != nil {
		return errors.Wrap(err, "unlink case alert")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAssociationNotFound
	}
	return nil
}

func (r *caseLinkRepository) checkCase(ctx context.Context, workspaceID, caseID string) error {
	var id string
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM cases WHERE id = $1 AND owner_id = $2", caseID, workspaceID,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCaseNotFound
	}
	return errors.Wrap(err, "get case")
}

func summaryIDs(items []models.AlertSummary) []string {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

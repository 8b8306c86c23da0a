package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vigilops/vigil-api/internal/models"
)

// CommentRepository manages the comment thread under an alert. Mutation is
// restricted to the authoring user.
type CommentRepository interface {
	Get(ctx context.Context, workspaceID, commentID string) (models.AlertComment, error)
	ListForAlert(ctx context.Context, alertID string) ([]models.AlertCommentRead, error)
	Create(ctx context.Context, workspaceID, alertID string, userID *string, params models.AlertCommentCreate) (models.AlertComment, error)
	Update(ctx context.Context, workspaceID, commentID, actingUserID string, params models.AlertCommentUpdate) (models.AlertComment, error)
	Delete(ctx context.Context, workspaceID, commentID, actingUserID string) error
}

type commentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) CommentRepository {
	return &commentRepository{db: db}
}

const commentColumns = "c.id, c.alert_id, c.owner_id, c.content, c.parent_id, c.user_id, c.created_at, c.updated_at, c.last_edited_at"

func (r *commentRepository) Get(ctx context.Context, workspaceID, commentID string) (models.AlertComment, error) {
	query := "SELECT " + commentColumns + " FROM alert_comments c WHERE c.id = $1 AND c.owner_id = $2"
	comment, err := scanComment(r.db.QueryRowContext(ctx, query, commentID, workspaceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AlertComment{}, ErrCommentNotFound
		}
		return models.AlertComment{}, errors.Wrap(err, "get comment")
	}
	return comment, nil
}

// ListForAlert returns the thread oldest-first, each comment joined with its
// author when the user row still exists.
func (r *commentRepository) ListForAlert(ctx context.Context, alertID string) ([]models.AlertCommentRead, error) {
	const query = `
		SELECT c.id, c.alert_id, c.owner_id, c.content, c.parent_id, c.user_id,
		       c.created_at, c.updated_at, c.last_edited_at,
		       u.id, u.email, u.display_name
		FROM alert_comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.alert_id = $1
		ORDER BY c.created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, alertID)
	if err != nil {
		return nil, errors.Wrap(err, "list comments")
	}
	defer rows.Close()

	comments := make([]models.AlertCommentRead, 0)
	for rows.Next() {
		var (
			c                  models.AlertComment
			parentID, userID   sql.NullString
			lastEditedAt       sql.NullTime
			authorID, email    sql.NullString
			displayName        sql.NullString
		)
		if err := rows.Scan(
			&c.ID, &c.AlertID, &c.WorkspaceID, &c.Content, &parentID, &userID,
			&c.CreatedAt, &c.UpdatedAt, &lastEditedAt,
			&authorID, &email, &displayName,
		); err != nil {
			return nil, errors.Wrap(err, "scan comment")
		}
		if parentID.Valid {
			c.ParentID = &parentID.String
		}
		if userID.Valid {
			c.UserID = &userID.String
		}
		if lastEditedAt.Valid {
			c.LastEditedAt = &lastEditedAt.Time
		}
		read := models.AlertCommentRead{AlertComment: c}
		if authorID.Valid {
			read.User = &models.CommentAuthor{
				ID:          authorID.String,
				Email:       email.String,
				DisplayName: displayName.String,
			}
		}
		comments = append(comments, read)
	}
	return comments, errors.Wrap(rows.Err(), "list comments")
}

func (r *commentRepository) Create(ctx context.Context, workspaceID, alertID string, userID *string, params models.AlertCommentCreate) (models.AlertComment, error) {
	const query = `
		INSERT INTO alert_comments (id, alert_id, owner_id, content, parent_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	comment := models.AlertComment{
		ID:          uuid.NewString(),
		AlertID:     alertID,
		WorkspaceID: workspaceID,
		Content:     params.Content,
		ParentID:    params.ParentID,
		UserID:      userID,
	}
	err := r.db.QueryRowContext(ctx, query,
		comment.ID, alertID, workspaceID, params.Content, nullable(params.ParentID), nullable(userID),
	).Scan(&comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return models.AlertComment{}, errors.Wrap(err, "create comment")
	}
	return comment, nil
}

func (r *commentRepository) Update(ctx context.Context, workspaceID, commentID, actingUserID string, params models.AlertCommentUpdate) (models.AlertComment, error) {
	comment, err := r.Get(ctx, workspaceID, commentID)
	if err != nil {
		return models.AlertComment{}, err
	}
	if comment.UserID == nil || *comment.UserID != actingUserID {
		return models.AlertComment{}, ErrCommentForbidden
	}

	// last_edited_at is distinct from updated_at so clients can tell "never
	// edited" from "edited at T".
	const query = `
		UPDATE alert_comments
		SET content = $1, parent_id = $2, updated_at = now(), last_edited_at = now()
		WHERE id = $3 AND owner_id = $4
		RETURNING content, parent_id, updated_at, last_edited_at
	`
	parentID := params.ParentID
	if parentID == nil {
		parentID = comment.ParentID
	}
	var newParent sql.NullString
	var lastEdited sql.NullTime
	err = r.db.QueryRowContext(ctx, query, params.Content, nullable(parentID), commentID, workspaceID).
		Scan(&comment.Content, &newParent, &comment.UpdatedAt, &lastEdited)
	if err != nil {
		return models.AlertComment{}, errors.Wrap(err, "update comment")
	}
	comment.ParentID = nil
	if newParent.Valid {
		comment.ParentID = &newParent.String
	}
	if lastEdited.Valid {
		comment.LastEditedAt = &lastEdited.Time
	}
	return comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, workspaceID, commentID, actingUserID string) error {
	comment, err := r.Get(ctx, workspaceID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID == nil || *comment.UserID != actingUserID {
		return ErrCommentForbidden
	}

	res, err := r.db.ExecContext(ctx, "DELETE FROM alert_comments WHERE id = $1 AND owner_id = $2", commentID, workspaceID)
	if err != nil {
		return errors.Wrap(err, "delete comment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrCommentNotFound
	}
	return nil
}

func scanComment(row *sql.Row) (models.AlertComment, error) {
	var (
		c                models.AlertComment
		parentID, userID sql.NullString
		lastEditedAt     sql.NullTime
	)
	err := row.Scan(
		&c.ID, &c.AlertID, &c.WorkspaceID, &c.Content, &parentID, &userID,
		&c.CreatedAt, &c.UpdatedAt, &lastEditedAt,
	)
	if err != nil {
		return models.AlertComment{}, err
	}
	if parentID.Valid {
		c.ParentID = &parentID.String
	}
	if userID.Valid {
		c.UserID = &userID.String
	}
	if lastEditedAt.Valid {
		c.LastEditedAt = &lastEditedAt.Time
	}
	return c, nil
}

func nullable(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}

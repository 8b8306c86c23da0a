package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/vigilops/vigil-api/internal/models"
	"github.com/vigilops/vigil-api/internal/pagination"
)

type AlertRepository interface {
	Create(ctx context.Context, params models.AlertCreate) (models.Alert, error)
	Get(ctx context.Context, workspaceID, alertID string) (models.Alert, error)
	ListPaginated(ctx context.Context, workspaceID string, p pagination.Params, f models.AlertFilters) ([]models.AlertSummary, pagination.Meta, error)
	Search(ctx context.Context, workspaceID string, q models.AlertSearch) ([]models.AlertSummary, error)
	Update(ctx context.Context, workspaceID, alertID string, params models.AlertUpdate) (models.Alert, []models.FieldDiff, error)
	Delete(ctx context.Context, workspaceID, alertID string) error
}

type alertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, params models.AlertCreate) (models.Alert, error) {
	alert := models.Alert{
		ID:          uuid.NewString(),
		WorkspaceID: params.WorkspaceID,
		Summary:     params.Summary,
		Description: params.Description,
		Status:      params.Status,
		Priority:    params.Priority,
		Severity:    params.Severity,
		Payload:     params.Payload,
		Tags:        []models.Tag{},
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Alert{}, errors.Wrap(err, "begin create alert")
	}
	defer tx.Rollback()

	// Per-workspace display number: unique and monotonic by creation order.
	const counterQuery = `
		INSERT INTO workspace_counters (workspace_id, alert_seq)
		VALUES ($1, 1)
		ON CONFLICT (workspace_id) DO UPDATE SET alert_seq = workspace_counters.alert_seq + 1
		RETURNING alert_seq
	`
	if err := tx.QueryRowContext(ctx, counterQuery, params.WorkspaceID).Scan(&alert.AlertNumber); err != nil {
		return models.Alert{}, errors.Wrap(err, "allocate alert number")
	}

	const insertQuery = `
		INSERT INTO alerts (id, alert_number, owner_id, summary, description, status, priority, severity, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, insertQuery,
		alert.ID,
		alert.AlertNumber,
		alert.WorkspaceID,
		alert.Summary,
		alert.Description,
		alert.Status,
		alert.Priority,
		alert.Severity,
		payloadArg(alert.Payload),
	).Scan(&alert.CreatedAt, &alert.UpdatedAt)
	if err != nil {
		return models.Alert{}, errors.Wrap(err, "insert alert")
	}

	if len(params.Fields) > 0 {
		rowID, err := createFieldValues(ctx, tx, alert.ID, params.Fields)
		if err != nil {
			return models.Alert{}, err
		}
		alert.FieldRowID = &rowID
	}

	if err := tx.Commit(); err != nil {
		return models.Alert{}, errors.Wrap(err, "commit create alert")
	}
	return alert, nil
}

func (r *alertRepository) Get(ctx context.Context, workspaceID, alertID string) (models.Alert, error) {
	alert, err := getAlert(ctx, r.db, workspaceID, alertID)
	if err != nil {
		return models.Alert{}, err
	}
	tags, err := loadAlertTags(ctx, r.db, []string{alert.ID})
	if err != nil {
		return models.Alert{}, err
	}
	alert.Tags = tags[alert.ID]
	if alert.Tags == nil {
		alert.Tags = []models.Tag{}
	}
	return alert, nil
}

func (r *alertRepository) ListPaginated(ctx context.Context, workspaceID string, p pagination.Params, f models.AlertFilters) ([]models.AlertSummary, pagination.Meta, error) {
	query, args, err := buildAlertListQuery(workspaceID, p, f)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	estimate, err := r.estimateAlertCount(ctx)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pagination.Meta{}, errors.Wrap(err, "list alerts")
	}
	defer rows.Close()

	summaries, err := scanAlertSummaries(rows)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	items, meta := pagination.Window(summaries, p, func(s models.AlertSummary) (time.Time, string) {
		return s.CreatedAt, s.ID
	})
	meta.TotalEstimate = estimate

	if err := r.attachTags(ctx, items); err != nil {
		return nil, pagination.Meta{}, err
	}
	return items, meta, nil
}

func (r *alertRepository) Search(ctx context.Context, workspaceID string, q models.AlertSearch) ([]models.AlertSummary, error) {
	query, args, err := buildAlertSearchQuery(workspaceID, q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "search alerts")
	}
	defer rows.Close()

	summaries, err := scanAlertSummaries(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachTags(ctx, summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *alertRepository) Update(ctx context.Context, workspaceID, alertID string, params models.AlertUpdate) (models.Alert, []models.FieldDiff, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Alert{}, nil, errors.Wrap(err, "begin update alert")
	}
	defer tx.Rollback()

	current, err := getAlert(ctx, tx, workspaceID, alertID)
	if err != nil {
		return models.Alert{}, nil, err
	}

	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	addSet := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, pq.QuoteIdentifier(column)+" = $"+itoa(len(args)))
	}

	if params.Summary != nil {
		addSet("summary", *params.Summary)
	}
	if params.Description != nil {
		addSet("description", *params.Description)
	}
	// Enum no-op writes are skipped but still count as "set" under the
	// sparse-update contract.
	if params.Status != nil && *params.Status != current.Status {
		addSet("status", string(*params.Status))
	}
	if params.Priority != nil && *params.Priority != current.Priority {
		addSet("priority", string(*params.Priority))
	}
	if params.Severity != nil && *params.Severity != current.Severity {
		addSet("severity", string(*params.Severity))
	}
	if params.Payload != nil {
		addSet("payload", payloadArg(*params.Payload))
	}

	if len(sets) > 0 {
		args = append(args, alertID, workspaceID)
		query := "UPDATE alerts SET " + joinSets(sets) + ", updated_at = now() WHERE id = $" +
			itoa(len(args)-1) + " AND owner_id = $" + itoa(len(args))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return models.Alert{}, nil, errors.Wrap(err, "update alert")
		}
	}

	var diffs []models.FieldDiff
	if len(params.Fields) > 0 {
		rowID, existing, err := getFieldValues(ctx, tx, alertID)
		if err != nil {
			return models.Alert{}, nil, err
		}
		if rowID == "" {
			if _, err := createFieldValues(ctx, tx, alertID, params.Fields); err != nil {
				return models.Alert{}, nil, err
			}
		} else if err := updateFieldValues(ctx, tx, rowID, params.Fields); err != nil {
			return models.Alert{}, nil, err
		}
		diffs = diffFieldValues(existing, params.Fields)
	}

	updated, err := getAlert(ctx, tx, workspaceID, alertID)
	if err != nil {
		return models.Alert{}, nil, err
	}
	if err := tx.Commit(); err != nil {
		return models.Alert{}, nil, errors.Wrap(err, "commit update alert")
	}

	tags, err := loadAlertTags(ctx, r.db, []string{updated.ID})
	if err != nil {
		return models.Alert{}, nil, err
	}
	updated.Tags = tags[updated.ID]
	if updated.Tags == nil {
		updated.Tags = []models.Tag{}
	}
	return updated, diffs, nil
}

func (r *alertRepository) Delete(ctx context.Context, workspaceID, alertID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM alerts WHERE id = $1 AND owner_id = $2", alertID, workspaceID)
	if err != nil {
		return errors.Wrap(err, "delete alert")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// estimateAlertCount reads the planner's row estimate instead of a live
// COUNT. It lags true cardinality and is informational only.
func (r *alertRepository) estimateAlertCount(ctx context.Context) (int64, error) {
	var estimate int64
	err := r.db.QueryRowContext(ctx,
		"SELECT reltuples::bigint FROM pg_class WHERE relname = 'alerts'",
	).Scan(&estimate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "estimate alert count")
	}
	if estimate < 0 {
		estimate = 0
	}
	return estimate, nil
}

func (r *alertRepository) attachTags(ctx context.Context, items []models.AlertSummary) error {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	tags, err := loadAlertTags(ctx, r.db, ids)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Tags = tags[items[i].ID]
		if items[i].Tags == nil {
			items[i].Tags = []models.Tag{}
		}
	}
	return nil
}

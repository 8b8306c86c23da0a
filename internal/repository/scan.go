package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/vigilops/vigil-api/internal/models"
)

func getAlert(ctx context.Context, q dbtx, workspaceID, alertID string) (models.Alert, error) {
	const query = `
		SELECT a.id, a.alert_number, a.owner_id, a.summary, a.description,
		       a.status, a.priority, a.severity, a.payload, f.id,
		       a.created_at, a.updated_at
		FROM alerts a
		LEFT JOIN alert_fields f ON f.alert_id = a.id
		WHERE a.id = $1 AND a.owner_id = $2
	`
	var (
		alert      models.Alert
		payload    []byte
		fieldRowID sql.NullString
	)
	err := q.QueryRowContext(ctx, query, alertID, workspaceID).Scan(
		&alert.ID,
		&alert.AlertNumber,
		&alert.WorkspaceID,
		&alert.Summary,
		&alert.Description,
		&alert.Status,
		&alert.Priority,
		&alert.Severity,
		&payload,
		&fieldRowID,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Alert{}, ErrAlertNotFound
		}
		return models.Alert{}, errors.Wrap(err, "get alert")
	}
	if payload != nil {
		alert.Payload = json.RawMessage(payload)
	}
	if fieldRowID.Valid {
		alert.FieldRowID = &fieldRowID.String
	}
	return alert, nil
}

func scanAlertSummaries(rows *sql.Rows) ([]models.AlertSummary, error) {
	summaries := make([]models.AlertSummary, 0)
	for rows.Next() {
		var s models.AlertSummary
		if err := rows.Scan(
			&s.ID,
			&s.AlertNumber,
			&s.Summary,
			&s.Status,
			&s.Priority,
			&s.Severity,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan alert")
		}
		s.ShortID = models.Alert{AlertNumber: s.AlertNumber}.ShortID()
		summaries = append(summaries, s)
	}
	return summaries, errors.Wrap(rows.Err(), "scan alerts")
}

// loadAlertTags fetches the tags for a batch of alerts in one query.
func loadAlertTags(ctx context.Context, q dbtx, alertIDs []string) (map[string][]models.Tag, error) {
	byAlert := make(map[string][]models.Tag, len(alertIDs))
	if len(alertIDs) == 0 {
		return byAlert, nil
	}

	const query = `
		SELECT at.alert_id, t.id, t.owner_id, t.name, t.ref, t.color
		FROM alert_tags at
		JOIN tags t ON t.id = at.tag_id
		WHERE at.alert_id = ANY($1)
		ORDER BY t.name
	`
	rows, err := q.QueryContext(ctx, query, pq.Array(alertIDs))
	if err != nil {
		return nil, errors.Wrap(err, "load alert tags")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			alertID string
			tag     models.Tag
			color   sql.NullString
		)
		if err := rows.Scan(&alertID, &tag.ID, &tag.WorkspaceID, &tag.Name, &tag.Ref, &color); err != nil {
			return nil, errors.Wrap(err, "scan alert tag")
		}
		if color.Valid {
			tag.Color = &color.String
		}
		byAlert[alertID] = append(byAlert[alertID], tag)
	}
	return byAlert, errors.Wrap(rows.Err(), "load alert tags")
}

// diffFieldValues records one (field, old, new) entry per updated key whose
// value actually changed. Keys are sorted for stable output.
func diffFieldValues(existing, updates map[string]any) []models.FieldDiff {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	diffs := make([]models.FieldDiff, 0, len(keys))
	for _, k := range keys {
		oldValue := existing[k]
		newValue := updates[k]
		if !fieldValueEqual(oldValue, newValue) {
			diffs = append(diffs, models.FieldDiff{Field: k, Old: oldValue, New: newValue})
		}
	}
	return diffs
}

// fieldValueEqual compares two JSON-decoded values. Both sides come from
// JSON decoding, so scalars share representations (float64, string, bool).
func fieldValueEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}

// payloadArg maps an absent or JSON-null payload to SQL NULL.
func payloadArg(payload json.RawMessage) any {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return []byte(payload)
}

func itoa(n int) string { return strconv.Itoa(n) }

func joinSets(sets []string) string { return strings.Join(sets, ", ") }

package repository

import (
	"fmt"
	"strings"

	"github.com/vigilops/vigil-api/internal/models"
	"github.com/vigilops/vigil-api/internal/pagination"
)

const alertSummaryColumns = "a.id, a.alert_number, a.summary, a.status, a.priority, a.severity, a.created_at, a.updated_at"

// appendAlertFilters translates the shared filter set into WHERE clauses.
// Tag filtering uses one existential subquery per tag id, so multiple tags
// compose with AND: the alert must carry every listed tag.
func appendAlertFilters(where []string, args []any, f models.AlertFilters) ([]string, []any) {
	if f.SearchTerm != "" {
		args = append(args, "%"+f.SearchTerm+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(a.summary ILIKE $%d OR a.description ILIKE $%d)", n, n))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("a.status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, string(f.Priority))
		where = append(where, fmt.Sprintf("a.priority = $%d", len(args)))
	}
	if f.Severity != "" {
		args = append(args, string(f.Severity))
		where = append(where, fmt.Sprintf("a.severity = $%d", len(args)))
	}
	for _, tagID := range f.TagIDs {
		args = append(args, tagID)
		where = append(where, fmt.Sprintf("a.id IN (SELECT alert_id FROM alert_tags WHERE tag_id = $%d)", len(args)))
	}
	return where, args
}

// buildAlertListQuery assembles the cursor-paginated listing query. The
// window is over-fetched by one row so the caller can detect a further page.
func buildAlertListQuery(workspaceID string, p pagination.Params, f models.AlertFilters) (string, []any, error) {
	if err := f.Validate(); err != nil {
		return "", nil, err
	}

	where := []string{"a.owner_id = $1"}
	args := []any{workspaceID}
	where, args = appendAlertFilters(where, args, f)

	// Rows strictly past the boundary in composite (created_at, id) order.
	// Reverse pages select the boundary-adjacent rows by flipping both the
	// comparison and the sort; the caller restores display order.
	ascending := false
	if p.Cursor != nil {
		args = append(args, p.Cursor.CreatedAt, p.Cursor.ID)
		n := len(args)
		if p.Reverse {
			ascending = true
			where = append(where, fmt.Sprintf("(a.created_at, a.id) > ($%d, $%d)", n-1, n))
		} else {
			where = append(where, fmt.Sprintf("(a.created_at, a.id) < ($%d, $%d)", n-1, n))
		}
	}

	order := "a.created_at DESC, a.id DESC"
	if ascending {
		order = "a.created_at ASC, a.id ASC"
	}

	args = append(args, p.Limit+1)
	query := fmt.Sprintf(
		"SELECT %s FROM alerts a WHERE %s ORDER BY %s LIMIT $%d",
		alertSummaryColumns, strings.Join(where, " AND "), order, len(args),
	)
	return query, args, nil
}

// buildAlertSearchQuery assembles the non-paginated search query. Filter
// semantics are shared with buildAlertListQuery via appendAlertFilters.
func buildAlertSearchQuery(workspaceID string, q models.AlertSearch) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	where := []string{"a.owner_id = $1"}
	args := []any{workspaceID}
	where, args = appendAlertFilters(where, args, q.AlertFilters)

	if q.CreatedAfter != nil {
		args = append(args, *q.CreatedAfter)
		where = append(where, fmt.Sprintf("a.created_at >= $%d", len(args)))
	}
	if q.CreatedBefore != nil {
		args = append(args, *q.CreatedBefore)
		where = append(where, fmt.Sprintf("a.created_at <= $%d", len(args)))
	}
	if q.UpdatedAfter != nil {
		args = append(args, *q.UpdatedAfter)
		where = append(where, fmt.Sprintf("a.updated_at >= $%d", len(args)))
	}
	if q.UpdatedBefore != nil {
		args = append(args, *q.UpdatedBefore)
		where = append(where, fmt.Sprintf("a.updated_at <= $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM alerts a WHERE %s", alertSummaryColumns, strings.Join(where, " AND "))

	if q.OrderBy != "" {
		// OrderBy is validated against a fixed column whitelist above.
		query += " ORDER BY a." + q.OrderBy
		if q.Sort == "asc" {
			query += " ASC"
		} else if q.Sort == "desc" {
			query += " DESC"
		}
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args, nil
}

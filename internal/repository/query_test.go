package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilops/vigil-api/internal/models"
	"github.com/vigilops/vigil-api/internal/pagination"
)

const testWorkspace = "7d444840-9dc0-11d1-b245-5ffdce74fad2"

func TestBuildAlertListQueryFirstPage(t *testing.T) {
	query, args, err := buildAlertListQuery(testWorkspace, pagination.Params{Limit: 20}, models.AlertFilters{})
	require.NoError(t, err)

	assert.Contains(t, query, "a.owner_id = $1")
	assert.Contains(t, query, "ORDER BY a.created_at DESC, a.id DESC")
	assert.Contains(t, query, "LIMIT $2")
	// limit+1 over-fetch for has_more detection
	assert.Equal(t, []any{testWorkspace, 21}, args)
}

func TestBuildAlertListQueryFilters(t *testing.T) {
	filters := models.AlertFilters{
		SearchTerm: "phishing",
		Status:     models.AlertStatusNew,
		Priority:   models.AlertPriorityHigh,
		Severity:   models.AlertSeverityCritical,
		TagIDs:     []string{"tag-1", "tag-2"},
	}
	query, args, err := buildAlertListQuery(testWorkspace, pagination.Params{Limit: 10}, filters)
	require.NoError(t, err)

	assert.Contains(t, query, "(a.summary ILIKE $2 OR a.description ILIKE $2)")
	assert.Contains(t, query, "a.status = $3")
	assert.Contains(t, query, "a.priority = $4")
	assert.Contains(t, query, "a.severity = $5")
	// Each tag gets its own existential subquery: AND semantics.
	assert.Contains(t, query, "a.id IN (SELECT alert_id FROM alert_tags WHERE tag_id = $6)")
	assert.Contains(t, query, "a.id IN (SELECT alert_id FROM alert_tags WHERE tag_id = $7)")

	assert.Equal(t, []any{testWorkspace, "%phishing%", "new", "high", "critical", "tag-1", "tag-2", 11}, args)
}

func TestBuildAlertListQueryCursor(t *testing.T) {
	at := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	cursor := &pagination.Cursor{CreatedAt: at, ID: "c0000000-0000-4000-8000-000000000009"}

	t.Run("forward", func(t *testing.T) {
		query, args, err := buildAlertListQuery(testWorkspace, pagination.Params{Limit: 5, Cursor: cursor}, models.AlertFilters{})
		require.NoError(t, err)
		assert.Contains(t, query, "(a.created_at, a.id) < ($2, $3)")
		assert.Contains(t, query, "ORDER BY a.created_at DESC, a.id DESC")
		assert.Equal(t, []any{testWorkspace, at, cursor.ID, 6}, args)
	})

	t.Run("reverse flips comparison and sort", func(t *testing.T) {
		query, args, err := buildAlertListQuery(testWorkspace, pagination.Params{Limit: 5, Cursor: cursor, Reverse: true}, models.AlertFilters{})
		require.NoError(t, err)
		assert.Contains(t, query, "(a.created_at, a.id) > ($2, $3)")
		assert.Contains(t, query, "ORDER BY a.created_at ASC, a.id ASC")
		assert.Equal(t, []any{testWorkspace, at, cursor.ID, 6}, args)
	})

	t.Run("reverse without cursor keeps display order", func(t *testing.T) {
		query, _, err := buildAlertListQuery(testWorkspace, pagination.Params{Limit: 5, Reverse: true}, models.AlertFilters{})
		require.NoError(t, err)
		assert.Contains(t, query, "ORDER BY a.created_at DESC, a.id DESC")
	})
}

func TestBuildAlertListQueryRejectsInvalidFilters(t *testing.T) {
	_, _, err := buildAlertListQuery(testWorkspace, pagination.Params{Limit: 5}, models.AlertFilters{Status: "open"})
	var vErr *models.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestBuildAlertSearchQuery(t *testing.T) {
	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	q := models.AlertSearch{
		AlertFilters:  models.AlertFilters{SearchTerm: "beacon"},
		CreatedAfter:  &after,
		CreatedBefore: &before,
		OrderBy:       "severity",
		Sort:          "desc",
		Limit:         50,
	}

	query, args, err := buildAlertSearchQuery(testWorkspace, q)
	require.NoError(t, err)

	assert.Contains(t, query, "(a.summary ILIKE $2 OR a.description ILIKE $2)")
	assert.Contains(t, query, "a.created_at >= $3")
	assert.Contains(t, query, "a.created_at <= $4")
	assert.Contains(t, query, "ORDER BY a.severity DESC")
	assert.Contains(t, query, "LIMIT $5")
	assert.Equal(t, []any{testWorkspace, "%beacon%", after, before, 50}, args)
}

func TestBuildAlertSearchQueryRejectsBadOrdering(t *testing.T) {
	_, _, err := buildAlertSearchQuery(testWorkspace, models.AlertSearch{OrderBy: "payload"})
	assert.Error(t, err)

	_, _, err = buildAlertSearchQuery(testWorkspace, models.AlertSearch{OrderBy: "created_at", Sort: "random"})
	assert.Error(t, err)
}

// Both entry points must reject the same malformed search terms.
func TestSearchTermValidationShared(t *testing.T) {
	bad := models.AlertFilters{SearchTerm: "term\x00with-null"}

	_, _, listErr := buildAlertListQuery(testWorkspace, pagination.Params{Limit: 5}, bad)
	_, _, searchErr := buildAlertSearchQuery(testWorkspace, models.AlertSearch{AlertFilters: bad})

	var vErr *models.ValidationError
	require.ErrorAs(t, listErr, &vErr)
	require.ErrorAs(t, searchErr, &vErr)
	assert.Equal(t, listErr.Error(), searchErr.Error())
}

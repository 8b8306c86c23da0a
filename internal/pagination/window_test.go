package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id string
	at time.Time
}

func rowBoundary(r row) (time.Time, string) { return r.at, r.id }

func rowAt(minute int) time.Time {
	return time.Date(2026, 5, 1, 12, minute, 0, 0, time.UTC)
}

func TestWindowFirstPage(t *testing.T) {
	// Forward query returns limit+1 rows newest-first.
	rows := []row{
		{id: "c0000000-0000-4000-8000-000000000003", at: rowAt(3)},
		{id: "c0000000-0000-4000-8000-000000000002", at: rowAt(2)},
		{id: "c0000000-0000-4000-8000-000000000001", at: rowAt(1)},
	}

	items, meta := Window(rows, Params{Limit: 2}, rowBoundary)

	require.Len(t, items, 2)
	assert.Equal(t, "c0000000-0000-4000-8000-000000000003", items[0].id)
	assert.Equal(t, "c0000000-0000-4000-8000-000000000002", items[1].id)

	assert.True(t, meta.HasMore)
	assert.False(t, meta.HasPrevious)
	assert.Nil(t, meta.PrevCursor)

	require.NotNil(t, meta.NextCursor)
	next, err := DecodeCursor(*meta.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, "c0000000-0000-4000-8000-000000000002", next.ID)
}

func TestWindowForwardWithCursor(t *testing.T) {
	cursor := &Cursor{CreatedAt: rowAt(4), ID: "c0000000-0000-4000-8000-000000000004"}
	rows := []row{
		{id: "c0000000-0000-4000-8000-000000000003", at: rowAt(3)},
		{id: "c0000000-0000-4000-8000-000000000002", at: rowAt(2)},
	}

	items, meta := Window(rows, Params{Limit: 2, Cursor: cursor}, rowBoundary)

	// Only limit rows came back, so this is the final page.
	require.Len(t, items, 2)
	assert.False(t, meta.HasMore)
	assert.True(t, meta.HasPrevious)
	assert.Nil(t, meta.NextCursor)

	require.NotNil(t, meta.PrevCursor)
	prev, err := DecodeCursor(*meta.PrevCursor)
	require.NoError(t, err)
	assert.Equal(t, "c0000000-0000-4000-8000-000000000003", prev.ID)
}

func TestWindowReversePage(t *testing.T) {
	// Reverse pages arrive from the query in ascending order and must come
	// back in display (descending) order.
	cursor := &Cursor{CreatedAt: rowAt(1), ID: "c0000000-0000-4000-8000-000000000001"}
	rows := []row{
		{id: "c0000000-0000-4000-8000-000000000002", at: rowAt(2)},
		{id: "c0000000-0000-4000-8000-000000000003", at: rowAt(3)},
		{id: "c0000000-0000-4000-8000-000000000004", at: rowAt(4)},
	}

	items, meta := Window(rows, Params{Limit: 2, Cursor: cursor, Reverse: true}, rowBoundary)

	require.Len(t, items, 2)
	assert.Equal(t, "c0000000-0000-4000-8000-000000000003", items[0].id)
	assert.Equal(t, "c0000000-0000-4000-8000-000000000002", items[1].id)

	assert.True(t, meta.HasMore)
	assert.True(t, meta.HasPrevious)

	// prev continues backward toward newer rows, next returns forward.
	require.NotNil(t, meta.PrevCursor)
	prev, err := DecodeCursor(*meta.PrevCursor)
	require.NoError(t, err)
	assert.Equal(t, "c0000000-0000-4000-8000-000000000003", prev.ID)

	require.NotNil(t, meta.NextCursor)
	next, err := DecodeCursor(*meta.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, "c0000000-0000-4000-8000-000000000002", next.ID)
}

func TestWindowEmptyPage(t *testing.T) {
	cursor := &Cursor{CreatedAt: rowAt(1), ID: "c0000000-0000-4000-8000-000000000001"}

	items, meta := Window(nil, Params{Limit: 20, Cursor: cursor}, rowBoundary)

	assert.Empty(t, items)
	assert.False(t, meta.HasMore)
	assert.True(t, meta.HasPrevious)
	assert.Nil(t, meta.NextCursor)
	assert.Nil(t, meta.PrevCursor)
}

func TestWindowExactLimitWithoutCursor(t *testing.T) {
	rows := []row{
		{id: "c0000000-0000-4000-8000-000000000002", at: rowAt(2)},
		{id: "c0000000-0000-4000-8000-000000000001", at: rowAt(1)},
	}

	items, meta := Window(rows, Params{Limit: 2}, rowBoundary)

	assert.Len(t, items, 2)
	assert.False(t, meta.HasMore)
	assert.False(t, meta.HasPrevious)
	assert.Nil(t, meta.NextCursor)
	assert.Nil(t, meta.PrevCursor)
}

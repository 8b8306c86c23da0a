package pagination

import "time"

// Boundary extracts the (created_at, id) sort key of a row.
type Boundary[T any] func(T) (time.Time, string)

// Window trims an over-fetched result set (limit+1 rows) down to one page
// and derives its cursors.
//
// Items are always returned in (created_at DESC, id DESC) display order.
// Reverse pages are queried ascending so the boundary-adjacent rows are
// selected, then re-reversed here; callers never see an ascending page.
//
// next_cursor always points at older rows and prev_cursor at newer ones, so
// in reverse mode the cursor roles swap: prev_cursor continues the backward
// traversal (set when the over-fetch found more), next_cursor returns toward
// where the caller came from (set whenever a cursor was supplied).
// has_previous is a heuristic: a supplied cursor implies a prior page.
func Window[T any](rows []T, p Params, boundary Boundary[T]) ([]T, Meta) {
	meta := Meta{HasPrevious: p.Cursor != nil}

	meta.HasMore = len(rows) > p.Limit
	if meta.HasMore {
		rows = rows[:p.Limit]
	}

	ascending := p.Reverse && p.Cursor != nil
	if ascending {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	if len(rows) == 0 {
		return rows, meta
	}

	firstAt, firstID := boundary(rows[0])
	lastAt, lastID := boundary(rows[len(rows)-1])

	if ascending {
		if meta.HasMore {
			c := EncodeCursor(firstAt, firstID)
			meta.PrevCursor = &c
		}
		c := EncodeCursor(lastAt, lastID)
		meta.NextCursor = &c
	} else {
		if meta.HasMore {
			c := EncodeCursor(lastAt, lastID)
			meta.NextCursor = &c
		}
		if p.Cursor != nil {
			c := EncodeCursor(firstAt, firstID)
			meta.PrevCursor = &c
		}
	}

	return rows, meta
}

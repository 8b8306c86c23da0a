package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Cursor is the decoded form of the opaque pagination token: the
// (created_at, id) boundary of a previously returned row.
type Cursor struct {
	CreatedAt time.Time `json:"t"`
	ID        string    `json:"id"`
}

// Params carries the caller's pagination request. Limit is assumed bounded
// to [1,100] upstream. Reverse asks for the page before the cursor.
type Params struct {
	Limit   int
	Cursor  *Cursor
	Reverse bool
}

// Meta is the pagination metadata attached to a page of items.
type Meta struct {
	NextCursor    *string `json:"next_cursor"`
	PrevCursor    *string `json:"prev_cursor"`
	HasMore       bool    `json:"has_more"`
	HasPrevious   bool    `json:"has_previous"`
	TotalEstimate int64   `json:"total_estimate"`
}

// EncodeCursor produces the opaque token for a boundary row.
func EncodeCursor(createdAt time.Time, id string) string {
	b, _ := json.Marshal(Cursor{CreatedAt: createdAt, ID: id})
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses an opaque token back into its boundary.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, errors.Wrap(err, "decode cursor")
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, errors.Wrap(err, "decode cursor")
	}
	if c.CreatedAt.IsZero() {
		return Cursor{}, errors.New("decode cursor: missing boundary timestamp")
	}
	if _, err := uuid.Parse(c.ID); err != nil {
		return Cursor{}, errors.Wrap(err, "decode cursor: invalid boundary id")
	}
	return c, nil
}

package repository

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilops/vigil-api/internal/models"
)

func TestValidateFieldName(t *testing.T) {
	tests := []struct {
		name  string
		field string
		ok    bool
	}{
		{"simple", "mitre_tactic", true},
		{"with digits", "sla_hours_24", true},
		{"single letter", "x", true},
		{"max length", "a" + strings.Repeat("b", 62), true},
		{"too long", "a" + strings.Repeat("b", 63), false},
		{"uppercase", "MitreTactic", false},
		{"leading digit", "1st_seen", false},
		{"leading underscore", "_hidden", false},
		{"quote injection", `x"; DROP TABLE alerts; --`, false},
		{"empty", "", false},
		{"reserved id", "id", false},
		{"reserved alert_id", "alert_id", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateFieldName(tc.field)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				var vErr *models.ValidationError
				require.ErrorAs(t, err, &vErr)
			}
		})
	}
}

// Malformed keys on the value-write path surface as unknown fields, matching
// how a genuinely missing column is reported.
func TestValidateFieldValueName(t *testing.T) {
	assert.NoError(t, validateFieldValueName("asset_owner"))

	for _, bad := range []string{"id", "alert_id", "Nope", "", `x"`} {
		err := validateFieldValueName(bad)
		var uErr *UnknownFieldError
		require.ErrorAs(t, err, &uErr, "key %q", bad)
		assert.Equal(t, bad, uErr.Field)
	}
}

func TestClassifyFieldWriteError(t *testing.T) {
	t.Run("undefined column", func(t *testing.T) {
		pqErr := &pq.Error{Code: "42703", Message: `column "bogus" of relation "alert_fields" does not exist`}
		err := classifyFieldWriteError(pqErr, "bogus")
		var uErr *UnknownFieldError
		require.ErrorAs(t, err, &uErr)
		assert.Equal(t, "bogus", uErr.Field)
	})

	t.Run("undefined column with driver-reported name", func(t *testing.T) {
		pqErr := &pq.Error{Code: "42703", Column: "severity_score"}
		err := classifyFieldWriteError(pqErr, "fallback")
		var uErr *UnknownFieldError
		require.ErrorAs(t, err, &uErr)
		assert.Equal(t, "severity_score", uErr.Field)
	})

	t.Run("duplicate field row", func(t *testing.T) {
		pqErr := &pq.Error{Code: "23505"}
		assert.ErrorIs(t, classifyFieldWriteError(pqErr, "x"), ErrFieldRowExists)
	})

	t.Run("other database errors pass through", func(t *testing.T) {
		pqErr := &pq.Error{Code: "53300"}
		assert.Equal(t, error(pqErr), classifyFieldWriteError(pqErr, "x"))
	})
}

func TestFieldValueArg(t *testing.T) {
	assert.Equal(t, "plain", fieldValueArg("plain"))
	assert.Equal(t, float64(3), fieldValueArg(float64(3)))
	assert.Equal(t, true, fieldValueArg(true))
	assert.Nil(t, fieldValueArg(nil))

	// Structured values are re-encoded for JSONB columns.
	got := fieldValueArg(map[string]any{"k": "v"})
	assert.Equal(t, []byte(`{"k":"v"}`), got)

	got = fieldValueArg([]any{"a", "b"})
	assert.Equal(t, []byte(`["a","b"]`), got)
}

func TestDiffFieldValues(t *testing.T) {
	existing := map[string]any{
		"severity_score": float64(5),
		"asset_owner":    "alex",
		"confirmed":      true,
	}
	updates := map[string]any{
		"severity_score": float64(9),
		"asset_owner":    "alex",
		"confirmed":      false,
		"escalated_to":   "tier2",
	}

	diffs := diffFieldValues(existing, updates)

	// Sorted by field name, unchanged keys skipped.
	require.Len(t, diffs, 3)
	assert.Equal(t, models.FieldDiff{Field: "confirmed", Old: true, New: false}, diffs[0])
	assert.Equal(t, models.FieldDiff{Field: "escalated_to", Old: nil, New: "tier2"}, diffs[1])
	assert.Equal(t, models.FieldDiff{Field: "severity_score", Old: float64(5), New: float64(9)}, diffs[2])
}

func TestDiffFieldValuesNoChanges(t *testing.T) {
	existing := map[string]any{"a": "1", "nested": map[string]any{"k": "v"}}
	updates := map[string]any{"a": "1", "nested": map[string]any{"k": "v"}}
	assert.Empty(t, diffFieldValues(existing, updates))
}

func TestPayloadArg(t *testing.T) {
	assert.Nil(t, payloadArg(nil))
	assert.Nil(t, payloadArg(json.RawMessage("")))
	assert.Nil(t, payloadArg(json.RawMessage("null")))
	assert.Nil(t, payloadArg(json.RawMessage("  null  ")))
	assert.Equal(t, []byte(`{"source":"edr"}`), payloadArg(json.RawMessage(`{"source":"edr"}`)))
}

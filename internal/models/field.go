package models

// AlertField is a custom field definition, derived by reflecting the live
// schema of the dynamic alert_fields table. ID is the column name.
type AlertField struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Nullable    bool    `json:"nullable"`
	Description *string `json:"description"`
	Default     *string `json:"default"`
}

type AlertFieldCreate struct {
	ID          string  `json:"id" validate:"required"`
	Type        string  `json:"type" validate:"required,oneof=TEXT INTEGER BIGINT NUMERIC BOOLEAN TIMESTAMPTZ JSONB"`
	Description *string `json:"description"`
	Default     *string `json:"default"`
	// Nullable is accepted for API compatibility but ignored: every custom
	// field is stored nullable so alerts created before the field existed
	// remain valid.
	Nullable bool `json:"nullable"`
}

type AlertFieldUpdate struct {
	ID          *string `json:"id"`
	Type        *string `json:"type" validate:"omitempty,oneof=TEXT INTEGER BIGINT NUMERIC BOOLEAN TIMESTAMPTZ JSONB"`
	Description *string `json:"description"`
}

// AlertCustomField pairs a field definition with the value an alert carries
// for it.
type AlertCustomField struct {
	AlertField
	Value any `json:"value"`
}

package models

// Tag is a workspace-scoped label owned by the external tag registry. Ref is
// the human-readable slug; either the id or the ref resolves a tag.
type Tag struct {
	ID          string  `json:"id" db:"id"`
	WorkspaceID string  `json:"-" db:"owner_id"`
	Name        string  `json:"name" db:"name"`
	Ref         string  `json:"ref" db:"ref"`
	Color       *string `json:"color" db:"color"`
}

type CaseAlertCreate struct {
	AlertID string `json:"alert_id" validate:"required,uuid"`
}

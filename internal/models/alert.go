package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type AlertStatus string

const (
	AlertStatusUnknown    AlertStatus = "unknown"
	AlertStatusNew        AlertStatus = "new"
	AlertStatusInProgress AlertStatus = "in_progress"
	AlertStatusOnHold     AlertStatus = "on_hold"
	AlertStatusResolved   AlertStatus = "resolved"
	AlertStatusClosed     AlertStatus = "closed"
	AlertStatusOther      AlertStatus = "other"
)

func (s AlertStatus) Valid() bool {
	switch s {
	case AlertStatusUnknown, AlertStatusNew, AlertStatusInProgress,
		AlertStatusOnHold, AlertStatusResolved, AlertStatusClosed, AlertStatusOther:
		return true
	}
	return false
}

type AlertPriority string

const (
	AlertPriorityUnknown  AlertPriority = "unknown"
	AlertPriorityLow      AlertPriority = "low"
	AlertPriorityMedium   AlertPriority = "medium"
	AlertPriorityHigh     AlertPriority = "high"
	AlertPriorityCritical AlertPriority = "critical"
	AlertPriorityOther    AlertPriority = "other"
)

func (p AlertPriority) Valid() bool {
	switch p {
	case AlertPriorityUnknown, AlertPriorityLow, AlertPriorityMedium,
		AlertPriorityHigh, AlertPriorityCritical, AlertPriorityOther:
		return true
	}
	return false
}

type AlertSeverity string

const (
	AlertSeverityUnknown       AlertSeverity = "unknown"
	AlertSeverityInformational AlertSeverity = "informational"
	AlertSeverityLow           AlertSeverity = "low"
	AlertSeverityMedium        AlertSeverity = "medium"
	AlertSeverityHigh          AlertSeverity = "high"
	AlertSeverityCritical      AlertSeverity = "critical"
	AlertSeverityFatal         AlertSeverity = "fatal"
	AlertSeverityOther         AlertSeverity = "other"
)

func (s AlertSeverity) Valid() bool {
	switch s {
	case AlertSeverityUnknown, AlertSeverityInformational, AlertSeverityLow,
		AlertSeverityMedium, AlertSeverityHigh, AlertSeverityCritical,
		AlertSeverityFatal, AlertSeverityOther:
		return true
	}
	return false
}

// Alert is the primary entity. AlertNumber is unique and monotonic within a
// workspace and renders as the human-readable short id.
type Alert struct {
	ID          string          `json:"id" db:"id"`
	AlertNumber int64           `json:"-" db:"alert_number"`
	WorkspaceID string          `json:"workspace_id" db:"owner_id"`
	Summary     string          `json:"summary" db:"summary"`
	Description string          `json:"description" db:"description"`
	Status      AlertStatus     `json:"status" db:"status"`
	Priority    AlertPriority   `json:"priority" db:"priority"`
	Severity    AlertSeverity   `json:"severity" db:"severity"`
	Payload     json.RawMessage `json:"payload,omitempty" db:"payload"`
	FieldRowID  *string         `json:"-" db:"field_row_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
	Tags        []Tag           `json:"tags"`
}

// ShortID renders the per-workspace display identifier. Numbers above 9999
// simply grow to more digits.
func (a Alert) ShortID() string {
	return fmt.Sprintf("ALERT-%04d", a.AlertNumber)
}

// AlertSummary is the listing/search read model.
type AlertSummary struct {
	ID          string        `json:"id"`
	ShortID     string        `json:"short_id"`
	AlertNumber int64         `json:"-"`
	Summary     string        `json:"summary"`
	Status      AlertStatus   `json:"status"`
	Priority    AlertPriority `json:"priority"`
	Severity    AlertSeverity `json:"severity"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Tags        []Tag         `json:"tags"`
}

// AlertDetail is the full read model: every defined custom field appears,
// with a null value when the alert has no value for it.
type AlertDetail struct {
	ID          string             `json:"id"`
	ShortID     string             `json:"short_id"`
	Summary     string             `json:"summary"`
	Description string             `json:"description"`
	Status      AlertStatus        `json:"status"`
	Priority    AlertPriority      `json:"priority"`
	Severity    AlertSeverity      `json:"severity"`
	Fields      []AlertCustomField `json:"fields"`
	Payload     json.RawMessage    `json:"payload,omitempty"`
	Tags        []Tag              `json:"tags"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type AlertCreate struct {
	WorkspaceID string          `json:"-"`
	Summary     string          `json:"summary" validate:"required"`
	Description string          `json:"description"`
	Status      AlertStatus     `json:"status" validate:"required,oneof=unknown new in_progress on_hold resolved closed other"`
	Priority    AlertPriority   `json:"priority" validate:"required,oneof=unknown low medium high critical other"`
	Severity    AlertSeverity   `json:"severity" validate:"required,oneof=unknown informational low medium high critical fatal other"`
	Fields      map[string]any  `json:"fields,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// AlertUpdate is a sparse partial update: nil means "not provided" and the
// field is left untouched.
type AlertUpdate struct {
	Summary     *string          `json:"summary"`
	Description *string          `json:"description"`
	Status      *AlertStatus     `json:"status" validate:"omitempty,oneof=unknown new in_progress on_hold resolved closed other"`
	Priority    *AlertPriority   `json:"priority" validate:"omitempty,oneof=unknown low medium high critical other"`
	Severity    *AlertSeverity   `json:"severity" validate:"omitempty,oneof=unknown informational low medium high critical fatal other"`
	Fields      map[string]any   `json:"fields"`
	Payload     *json.RawMessage `json:"payload"`
}

// FieldDiff records one custom-field change produced by an update, for
// downstream audit/notification consumers. Not persisted here.
type FieldDiff struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

package models

import (
	"fmt"
	"strings"
	"time"
)

const maxSearchTermLen = 1000

// ValidationError marks input rejected before any storage access.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AlertFilters is the filter set shared by paginated listing and search.
// Zero values mean "no filter"; filters compose with AND. TagIDs carry AND
// semantics: an alert must carry every listed tag.
type AlertFilters struct {
	SearchTerm string
	Status     AlertStatus
	Priority   AlertPriority
	Severity   AlertSeverity
	TagIDs     []string
}

// Validate guards the free-text search term against oversized input and
// embedded null bytes. Both listing entry points apply it identically.
func (f AlertFilters) Validate() error {
	if len(f.SearchTerm) > maxSearchTermLen {
		return &ValidationError{Msg: fmt.Sprintf("search term cannot exceed %d characters", maxSearchTermLen)}
	}
	if strings.ContainsRune(f.SearchTerm, '\x00') {
		return &ValidationError{Msg: "search term cannot contain null bytes"}
	}
	if f.Status != "" && !f.Status.Valid() {
		return &ValidationError{Msg: fmt.Sprintf("invalid status %q", f.Status)}
	}
	if f.Priority != "" && !f.Priority.Valid() {
		return &ValidationError{Msg: fmt.Sprintf("invalid priority %q", f.Priority)}
	}
	if f.Severity != "" && !f.Severity.Valid() {
		return &ValidationError{Msg: fmt.Sprintf("invalid severity %q", f.Severity)}
	}
	return nil
}

// AlertSearch parameterizes the non-paginated search entry point.
type AlertSearch struct {
	AlertFilters
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	UpdatedAfter  *time.Time
	UpdatedBefore *time.Time
	OrderBy       string
	Sort          string
	Limit         int
}

var searchOrderColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"priority":   true,
	"severity":   true,
	"status":     true,
}

func (s AlertSearch) Validate() error {
	if err := s.AlertFilters.Validate(); err != nil {
		return err
	}
	if s.OrderBy != "" && !searchOrderColumns[s.OrderBy] {
		return &ValidationError{Msg: fmt.Sprintf("invalid order_by %q", s.OrderBy)}
	}
	if s.Sort != "" && s.Sort != "asc" && s.Sort != "desc" {
		return &ValidationError{Msg: fmt.Sprintf("invalid sort %q", s.Sort)}
	}
	return nil
}

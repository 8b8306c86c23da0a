package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrAlertNotFound       = errors.New("alert not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrFieldNotFound       = errors.New("field not found")
	ErrTagNotFound         = errors.New("tag not found")
	ErrCaseNotFound        = errors.New("case not found")
	ErrAssociationNotFound = errors.New("association not found")
	ErrFieldRowNotFound    = errors.New("alert field row not found")

	// ErrCommentForbidden: the acting user is not the comment's author.
	ErrCommentForbidden = errors.New("comment can only be modified by its author")

	// ErrFieldRowExists: a second field row was attempted for the same
	// alert. The unique constraint on alert_fields.alert_id turns the
	// concurrent first-write race into this retryable conflict.
	ErrFieldRowExists = errors.New("alert already has a field row")
)

// UnknownFieldError reports a write that referenced a custom-field column
// absent from the dynamic schema, carrying the offending name so callers can
// report which input was invalid.
type UnknownFieldError struct {
	Field  string
	Detail string
}

func (e *UnknownFieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("unknown field %q: %s", e.Field, e.Detail)
	}
	return fmt.Sprintf("unknown field: %s", e.Detail)
}

// classifyFieldWriteError unwraps a storage failure from a dynamic-table
// write to its root cause. Undefined columns become UnknownFieldError and a
// duplicate field row becomes ErrFieldRowExists; anything else passes
// through as a generic storage failure.
func classifyFieldWriteError(err error, field string) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code.Name() {
	case "undefined_column":
		name := pqErr.Column
		if name == "" {
			name = field
		}
		return &UnknownFieldError{Field: name, Detail: pqErr.Message}
	case "unique_violation":
		return ErrFieldRowExists
	}
	return err
}

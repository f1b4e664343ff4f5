package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInventoryAbsent is returned when no inventory snapshot has been loaded
	ErrInventoryAbsent = errors.New("no inventory loaded")

	// ErrResourceNotFound is returned when a resource ID is not in the current snapshot
	ErrResourceNotFound = errors.New("resource not found")

	// ErrEnvironmentNotFound is returned for keys missing from the environment catalog
	ErrEnvironmentNotFound = errors.New("environment not found")

	// ErrUnknownField is returned when an edit names a spec field the resource does not have
	ErrUnknownField = errors.New("unknown spec field")

	// ErrTypeMismatch is returned when an edit changes the value type of a spec field
	ErrTypeMismatch = errors.New("spec value type mismatch")

	// ErrUnknownSource is returned for unrecognised inventory source kinds
	ErrUnknownSource = errors.New("unknown inventory source")

	// ErrSourceUnavailable is returned when an inventory source cannot serve a request
	ErrSourceUnavailable = errors.New("inventory source unavailable")
)

// FieldError reports a rejected spec field
type FieldError struct {
	Field  string `json:"field"`
	Err    error  `json:"-"`
	Detail string `json:"detail,omitempty"`
}

func (e *FieldError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Field, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Reason returns a stable machine-readable code for the rejection
func (e *FieldError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrUnknownField):
		return "unknown_field"
	case errors.Is(e.Err, ErrTypeMismatch):
		return "type_mismatch"
	default:
		return "invalid"
	}
}

// MarshalJSON includes the reason code alongside the field name
func (e *FieldError) MarshalJSON() ([]byte, error) {
	type wire struct {
		Field  string `json:"field"`
		Reason string `json:"reason"`
		Detail string `json:"detail,omitempty"`
	}
	return json.Marshal(wire{Field: e.Field, Reason: e.Reason(), Detail: e.Detail})
}

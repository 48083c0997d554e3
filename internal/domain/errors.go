package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrModNotFound        = errors.New("mod not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrSchema             = errors.New("invalid install script")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSessionNotFinished = errors.New("install session not finished")
	ErrModuleDependencies = errors.New("module dependencies not met")
	ErrCardinality        = errors.New("group selection rule violated")
	ErrScriptNotFound     = errors.New("install script not found")
)

// SchemaError reports a required element or attribute that is missing or invalid
type SchemaError struct {
	Element string
	Attr    string // Empty when the element itself is at fault
	Msg     string
}

func (e *SchemaError) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("%s: <%s %s>: %s", ErrSchema, e.Element, e.Attr, e.Msg)
	}
	return fmt.Sprintf("%s: <%s>: %s", ErrSchema, e.Element, e.Msg)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// InvalidSelectionError reports a caller selection outside the current step.
// Negative indexes are not applicable to the failure.
type InvalidSelectionError struct {
	Step   int
	Group  int
	Plugin int
	Msg    string
}

func (e *InvalidSelectionError) Error() string {
	var where []string
	if e.Step >= 0 {
		where = append(where, fmt.Sprintf("step %d", e.Step))
	}
	if e.Group >= 0 {
		where = append(where, fmt.Sprintf("group %d", e.Group))
	}
	if e.Plugin >= 0 {
		where = append(where, fmt.Sprintf("plugin %d", e.Plugin))
	}
	if len(where) == 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidSelection, e.Msg)
	}
	return fmt.Sprintf("%s: %s (%s)", ErrInvalidSelection, e.Msg, strings.Join(where, ", "))
}

func (e *InvalidSelectionError) Unwrap() error {
	return ErrInvalidSelection
}

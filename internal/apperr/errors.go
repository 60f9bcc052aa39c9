// Package apperr defines the error taxonomy shared across the explorer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
)

// MalformedNavigationError reports an impossible navigation state, such as an
// element selection without a template.
type MalformedNavigationError struct {
	Reason string
}

func (e *MalformedNavigationError) Error() string {
	return "malformed navigation: " + e.Reason
}

// UnknownElementError reports an element that is not an instance of the
// selected template.
type UnknownElementError struct {
	TemplateID string
	ElementID  string
}

func (e *UnknownElementError) Error() string {
	return fmt.Sprintf("element %q is not an instance of template %q", e.ElementID, e.TemplateID)
}

// Is makes UnknownElementError match ErrNotFound.
func (e *UnknownElementError) Is(target error) bool {
	return target == ErrNotFound
}

// EnvironmentUnavailableError reports that the render environment version
// cannot be determined yet.
type EnvironmentUnavailableError struct {
	Cause error
}

func (e *EnvironmentUnavailableError) Error() string {
	if e.Cause != nil {
		return "render environment unavailable: " + e.Cause.Error()
	}
	return "render environment unavailable"
}

func (e *EnvironmentUnavailableError) Unwrap() error {
	return e.Cause
}

// RenderError reports a failure while executing a report template.
type RenderError struct {
	TemplateID string
	Cause      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render template %q: %v", e.TemplateID, e.Cause)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NotFound returns an error wrapping ErrNotFound for the given kind and id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestUnknownElementMatchesNotFound(t *testing.T) {
	err := fmt.Errorf("navbar: %w", &UnknownElementError{TemplateID: "t", ElementID: "x"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("unknown element should match ErrNotFound")
	}
	var ue *UnknownElementError
	if !errors.As(err, &ue) || ue.ElementID != "x" {
		t.Fatalf("errors.As failed: %v", err)
	}
}

func TestRenderErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := &RenderError{TemplateID: "t", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("render error should unwrap to its cause")
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("template", "abc")
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("NotFound should wrap ErrNotFound")
	}
	if err.Error() != `template "abc": not found` {
		t.Errorf("message = %q", err.Error())
	}
}

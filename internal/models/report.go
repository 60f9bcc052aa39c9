// Package models defines the domain types for the model explorer.
package models

import (
	"context"

	"golang.org/x/net/html"
)

// Flag is a closed set of template markers that drive rendering.
type Flag string

// Template flags.
const (
	FlagExperimental Flag = "experimental"
	FlagStable       Flag = "stable"
	FlagDocument     Flag = "document"
)

// KnownFlags lists every valid Flag in display order.
var KnownFlags = []Flag{FlagExperimental, FlagStable, FlagDocument}

// FlagSet is an unordered set of template flags.
type FlagSet map[Flag]struct{}

// NewFlagSet builds a FlagSet from the given flags.
func NewFlagSet(flags ...Flag) FlagSet {
	s := make(FlagSet, len(flags))
	for _, f := range flags {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether f is set.
func (s FlagSet) Has(f Flag) bool {
	_, ok := s[f]
	return ok
}

// ElementRef is the listing projection of a model element.
type ElementRef struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Element is a full model element as exposed to report templates.
type Element struct {
	UUID       string         `json:"uuid" yaml:"uuid"`
	Name       string         `json:"name" yaml:"name"`
	Type       string         `json:"type" yaml:"type"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes"`
}

// Ref returns the listing projection of e.
func (e *Element) Ref() ElementRef {
	return ElementRef{UUID: e.UUID, Name: e.Name}
}

// ModelInfo holds model metadata shown on the home page and in the page title.
type ModelInfo struct {
	Name           string `json:"name" yaml:"name"`
	Version        string `json:"version" yaml:"version"`
	CapellaVersion string `json:"capella_version" yaml:"capella_version"`
	Description    string `json:"description" yaml:"description"`
	// Badge is an SVG document rendered as the model description badge.
	Badge string `json:"-" yaml:"badge"`
}

// Template is a report definition together with the elements it can be rendered for.
type Template struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Flags       FlagSet      `json:"-"`
	Instances   []ElementRef `json:"instances,omitempty"`
	// Scope is the model element type the template is rendered for.
	// It is empty for document templates.
	Scope string `json:"scope,omitempty"`
	// Body is the raw report body (Markdown with template actions).
	Body string `json:"-"`
	// Source is the catalog-relative path the template was loaded from.
	Source string `json:"-"`
}

// IsDocument reports whether the template renders a single implicit document
// instead of one report per model element.
func (t *Template) IsDocument() bool {
	return t.Flags.Has(FlagDocument)
}

// InstanceCount returns the number of elements the template can be rendered for.
// Document templates always have exactly one implicit instance.
func (t *Template) InstanceCount() int {
	if t.IsDocument() {
		return 1
	}
	return len(t.Instances)
}

// Instance returns the instance with the given UUID.
func (t *Template) Instance(uuid string) (ElementRef, bool) {
	for _, ref := range t.Instances {
		if ref.UUID == uuid {
			return ref, true
		}
	}
	return ElementRef{}, false
}

// TemplateCategory groups templates for the catalog view.
type TemplateCategory struct {
	Idx       string      `json:"idx"`
	Color     string      `json:"color,omitempty"`
	Templates []*Template `json:"templates"`
}

// ModelLookup resolves model elements.
type ModelLookup interface {
	// ByUUID returns the element with the given UUID or an error wrapping apperr.ErrNotFound.
	ByUUID(uuid string) (*Element, error)
	// ElementsOfType returns all elements of the given type in model order.
	ElementsOfType(typ string) []*Element
	// Info returns the model metadata.
	Info() ModelInfo
}

// ReportCatalog provides read-only access to report templates.
type ReportCatalog interface {
	// Categories returns the template categories in display order.
	Categories() []*TemplateCategory
	// Template returns the template with the given ID or an error wrapping apperr.ErrNotFound.
	Template(id string) (*Template, error)
	// RenderEnvironmentVersion returns the marker of the current template
	// execution environment. It fails with *apperr.EnvironmentUnavailableError
	// until the catalog has been loaded.
	RenderEnvironmentVersion() (string, error)
}

// RenderEngine executes a report template. element is nil for document templates.
type RenderEngine interface {
	Render(ctx context.Context, tmpl *Template, element *Element) (*html.Node, error)
}

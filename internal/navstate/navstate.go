// Package navstate reconstructs the navigation state of a request and maps it
// back to its canonical address.
//
// Navigation state is never stored on the server. The canonical address
// (template and selected element) lives in the browser's address bar; the
// search text and the navigation generation travel with each request.
package navstate

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/starford/modelexplorer/internal/apperr"
)

// Query parameters and headers carrying navigation state.
const (
	ParamElement  = "elementUuid"
	ParamSearch   = "search"
	ParamSelected = "selected"

	// GenerationHeader carries the client's navigation generation counter.
	GenerationHeader = "Nav-Generation"
)

const reportPrefix = "/report/"

// Route holds the path parameters of a request.
type Route struct {
	TemplateID string
}

// State is the navigation state of a single request.
type State struct {
	TemplateID string
	ElementID  string
	Search     string
	// Generation orders navigations of one client. Content rendered for an
	// older generation must not replace content of a newer one.
	Generation uint64
}

// HasTemplate reports whether a template is selected.
func (s State) HasTemplate() bool { return s.TemplateID != "" }

// HasElement reports whether an element is selected.
func (s State) HasElement() bool { return s.ElementID != "" }

// Canonical returns s without its transient fields.
func (s State) Canonical() State {
	return State{TemplateID: s.TemplateID, ElementID: s.ElementID}
}

// Parse builds the state from route parameters and query values.
// The element may be given as elementUuid or, for list requests, as selected.
func Parse(route Route, query url.Values) (State, error) {
	st := State{
		TemplateID: strings.TrimSpace(route.TemplateID),
		ElementID:  strings.TrimSpace(query.Get(ParamElement)),
		Search:     query.Get(ParamSearch),
	}
	if st.ElementID == "" {
		st.ElementID = strings.TrimSpace(query.Get(ParamSelected))
	}
	if st.ElementID != "" && st.TemplateID == "" {
		return State{}, &apperr.MalformedNavigationError{Reason: "element selected without a template"}
	}
	return st, nil
}

// ParseURL parses a canonical address as produced by ToURL.
func ParseURL(raw string) (State, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return State{}, &apperr.MalformedNavigationError{Reason: err.Error()}
	}
	var route Route
	switch {
	case u.Path == "" || u.Path == "/":
	case strings.HasPrefix(u.Path, reportPrefix):
		id := strings.TrimPrefix(u.Path, reportPrefix)
		if id == "" || strings.Contains(id, "/") {
			return State{}, &apperr.MalformedNavigationError{Reason: "unknown path " + u.Path}
		}
		route.TemplateID = id
	default:
		return State{}, &apperr.MalformedNavigationError{Reason: "unknown path " + u.Path}
	}
	return Parse(route, u.Query())
}

// ToURL returns the canonical address of s. Search text and generation are
// not part of it.
func ToURL(s State) string {
	if s.TemplateID == "" {
		return "/"
	}
	p := TemplatePath(s.TemplateID)
	if s.ElementID == "" {
		return p
	}
	return p + "?" + url.Values{ParamElement: {s.ElementID}}.Encode()
}

// TemplatePath returns the path of the template page.
func TemplatePath(templateID string) string {
	return reportPrefix + url.PathEscape(templateID)
}

// RenderURL returns the address of the secondary content fetch for s.
func RenderURL(s State) string {
	p := TemplatePath(s.TemplateID) + "/render"
	if s.ElementID == "" {
		return p
	}
	return p + "?" + url.Values{ParamElement: {s.ElementID}}.Encode()
}

// ElementsURL returns the address of the filtered element list for s.
// Search text is appended by the client from the search box.
func ElementsURL(s State) string {
	p := TemplatePath(s.TemplateID) + "/elements"
	if s.ElementID == "" {
		return p
	}
	return p + "?" + url.Values{ParamSelected: {s.ElementID}}.Encode()
}

// ParseGeneration reads the navigation generation from a header value.
// Missing or invalid values yield zero.
func ParseGeneration(h http.Header) uint64 {
	n, err := strconv.ParseUint(strings.TrimSpace(h.Get(GenerationHeader)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

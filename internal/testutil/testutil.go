// Package testutil provides in-memory collaborators and fixtures shared by tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/models"
)

// Fixture UUIDs.
const (
	PatrolID = "8a7c1f6e-0001-4f6b-9d2e-000000000001"
	RescueID = "8a7c1f6e-0002-4f6b-9d2e-000000000002"
	EscortID = "8a7c1f6e-0003-4f6b-9d2e-000000000003"
	OtherID  = "8a7c1f6e-0009-4f6b-9d2e-000000000009"
)

// Model is an in-memory models.ModelLookup.
type Model struct {
	ModelInfo models.ModelInfo
	Elements  []*models.Element
}

// ByUUID implements models.ModelLookup.
func (m *Model) ByUUID(uuid string) (*models.Element, error) {
	for _, e := range m.Elements {
		if e.UUID == uuid {
			return e, nil
		}
	}
	return nil, apperr.NotFound("model element", uuid)
}

// ElementsOfType implements models.ModelLookup.
func (m *Model) ElementsOfType(typ string) []*models.Element {
	var out []*models.Element
	for _, e := range m.Elements {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Info implements models.ModelLookup.
func (m *Model) Info() models.ModelInfo { return m.ModelInfo }

// Catalog is an in-memory models.ReportCatalog.
type Catalog struct {
	mu      sync.Mutex
	Cats    []*models.TemplateCategory
	Version string
}

// Categories implements models.ReportCatalog.
func (c *Catalog) Categories() []*models.TemplateCategory { return c.Cats }

// Template implements models.ReportCatalog.
func (c *Catalog) Template(id string) (*models.Template, error) {
	for _, cat := range c.Cats {
		for _, t := range cat.Templates {
			if t.ID == id {
				return t, nil
			}
		}
	}
	return nil, apperr.NotFound("template", id)
}

// RenderEnvironmentVersion implements models.ReportCatalog.
func (c *Catalog) RenderEnvironmentVersion() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Version == "" {
		return "", &apperr.EnvironmentUnavailableError{}
	}
	return c.Version, nil
}

// SetVersion changes the render environment version.
func (c *Catalog) SetVersion(v string) {
	c.mu.Lock()
	c.Version = v
	c.mu.Unlock()
}

// Fixtures returns a model with three operational capabilities and a catalog
// with a multi-element template over them plus a document template.
func Fixtures() (*Model, *Catalog) {
	m := &Model{
		ModelInfo: models.ModelInfo{Name: "Coffee Machine", CapellaVersion: "7.0.0", Badge: "<svg/>"},
		Elements: []*models.Element{
			{UUID: PatrolID, Name: "Patrol", Type: "OperationalCapability"},
			{UUID: RescueID, Name: "Rescue", Type: "OperationalCapability"},
			{UUID: EscortID, Name: "Escort", Type: "OperationalCapability"},
			{UUID: OtherID, Name: "Brew", Type: "SystemFunction"},
		},
	}
	caps := &models.Template{
		ID:          "oc",
		Name:        "Operational Capability",
		Description: "Capabilities of the operational analysis",
		Category:    "Operational Analysis",
		Flags:       models.NewFlagSet(models.FlagStable),
		Scope:       "OperationalCapability",
		Body:        "# {{ .Element.Name }}\n\n## Overview\n\nUUID {{ .Element.UUID }}\n",
	}
	for _, e := range m.ElementsOfType("OperationalCapability") {
		caps.Instances = append(caps.Instances, e.Ref())
	}
	doc := &models.Template{
		ID:          "overview",
		Name:        "Model Overview",
		Description: "A single document about the model",
		Category:    "Operational Analysis",
		Flags:       models.NewFlagSet(models.FlagDocument, models.FlagExperimental),
		Body:        "# {{ .Model.Name }}\n\n## Elements\n",
	}
	c := &Catalog{
		Cats: []*models.TemplateCategory{
			{Idx: "Operational Analysis", Color: "blue", Templates: []*models.Template{caps, doc}},
		},
		Version: "env-1",
	}
	return m, c
}

// Engine is a models.RenderEngine producing a fixed body per call.
type Engine struct {
	mu    sync.Mutex
	Calls int
	// Fail makes Render return a RenderError.
	Fail bool
	// Block, if set, is received from before rendering returns.
	Block chan struct{}
}

// Render implements models.RenderEngine.
func (e *Engine) Render(ctx context.Context, tmpl *models.Template, element *models.Element) (*html.Node, error) {
	e.mu.Lock()
	e.Calls++
	fail := e.Fail
	e.mu.Unlock()
	if e.Block != nil {
		select {
		case <-e.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, &apperr.RenderError{TemplateID: tmpl.ID, Cause: fmt.Errorf("template exploded")}
	}
	name := tmpl.Name
	if element != nil {
		name = element.Name
	}
	return ParseHTML(fmt.Sprintf("<h1>%s</h1><h2>Details</h2><p>body</p><h3>More</h3><h2>Links</h2>", name))
}

// CallCount returns the number of Render calls.
func (e *Engine) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Calls
}

// ParseHTML parses an HTML fragment into a detached div.
func ParseHTML(src string) (*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

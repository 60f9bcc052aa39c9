// Package render executes report templates: Go template actions over the
// model, then Markdown to HTML.
package render

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/models"
	"github.com/starford/modelexplorer/internal/navstate"
)

// EngineVersion identifies the execution logic of this engine. It is part of
// the render environment version, so changing the function set or the
// Markdown pipeline must change it.
const EngineVersion = "render/v1 goldmark-gfm auto-heading-ids"

// Data is the value templates are executed against.
type Data struct {
	Model    models.ModelInfo
	Template *models.Template
	// Element is nil for document templates.
	Element *models.Element
}

// Engine implements models.RenderEngine.
type Engine struct {
	model models.ModelLookup
	md    goldmark.Markdown
}

var _ models.RenderEngine = (*Engine)(nil)

// NewEngine creates an engine resolving model lookups through model.
func NewEngine(model models.ModelLookup) *Engine {
	return &Engine{
		model: model,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// Render executes tmpl for element and returns the report body as a detached
// <div> node. Failures are reported as *apperr.RenderError.
func (e *Engine) Render(ctx context.Context, tmpl *models.Template, element *models.Element) (*html.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fail := func(err error) error {
		return &apperr.RenderError{TemplateID: tmpl.ID, Cause: err}
	}

	t, err := template.New(tmpl.ID).Option("missingkey=zero").Funcs(e.funcs()).Parse(tmpl.Body)
	if err != nil {
		return nil, fail(fmt.Errorf("parse: %w", err))
	}
	var md bytes.Buffer
	if err := t.Execute(&md, Data{Model: e.model.Info(), Template: tmpl, Element: element}); err != nil {
		return nil, fail(fmt.Errorf("execute: %w", err))
	}

	var out bytes.Buffer
	if err := e.md.Convert(md.Bytes(), &out); err != nil {
		return nil, fail(fmt.Errorf("markdown: %w", err))
	}
	root, err := ParseFragment(out.String())
	if err != nil {
		return nil, fail(err)
	}
	return root, nil
}

// ParseFragment parses rendered HTML into a detached <div> node.
func ParseFragment(src string) (*html.Node, error) {
	div := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(src), div)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	for _, n := range nodes {
		div.AppendChild(n)
	}
	return div, nil
}

func (e *Engine) funcs() template.FuncMap {
	return template.FuncMap{
		"elements": func(typ string) []*models.Element {
			return e.model.ElementsOfType(typ)
		},
		"element": func(id string) (*models.Element, error) {
			return e.model.ByUUID(id)
		},
		"attr": func(el *models.Element, key string) any {
			if el == nil {
				return nil
			}
			return el.Attributes[key]
		},
		"keys": func(m map[string]any) []string {
			out := make([]string, 0, len(m))
			for k := range m {
				out = append(out, k)
			}
			sort.Strings(out)
			return out
		},
		"reportLink": func(templateID string, el *models.Element) string {
			st := navstate.State{TemplateID: templateID}
			if el != nil {
				st.ElementID = el.UUID
			}
			return navstate.ToURL(st)
		},
		"join": strings.Join,
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}
}

package fragment

import (
	"encoding/json"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/cachekey"
	"github.com/starford/modelexplorer/internal/navstate"
	"github.com/starford/modelexplorer/internal/toc"
)

const containerClass = "html-content flex items-start justify-center min-h-full p-4 svg-display template-container w-full print:p-0"

// GenerationAttr marks rendered content with the navigation generation it
// was requested for.
const GenerationAttr = "data-nav-generation"

func container(children ...*html.Node) *html.Node {
	return el(atom.Div, attrs("id", string(RegionContent), "class", containerClass), children...)
}

// ContentPlaceholder renders the content region of a navigation response.
//
// Without a template, or for a multi-element template without a selected
// element, it renders a static hint. Otherwise it renders a loading node
// that fetches the report with the current render cache key.
func (r *Renderer) ContentPlaceholder(st navstate.State) (*html.Node, error) {
	if !st.HasTemplate() {
		if st.HasElement() {
			return nil, &apperr.MalformedNavigationError{Reason: "element selected without a template"}
		}
		return container(emptyState("Select a report template.")), nil
	}
	tmpl, err := r.catalog.Template(st.TemplateID)
	if err != nil {
		return nil, err
	}
	if st.HasElement() {
		if _, ok := tmpl.Instance(st.ElementID); !ok {
			return nil, &apperr.UnknownElementError{TemplateID: tmpl.ID, ElementID: st.ElementID}
		}
	} else if !tmpl.IsDocument() {
		return container(emptyState("Select a model element.")), nil
	}

	key, err := cachekey.ForTemplate(r.catalog, tmpl.ID)
	if err != nil {
		return nil, err
	}
	headers, err := json.Marshal(map[string]string{
		cachekey.Header:           key.String(),
		navstate.GenerationHeader: strconv.FormatUint(st.Generation, 10),
	})
	if err != nil {
		return nil, err
	}
	return container(el(atom.Div, attrs(
		"class", "flex justify-center place-items-center h-full w-full",
		"hx-trigger", "load",
		"hx-get", navstate.RenderURL(st.Canonical()),
		"hx-headers", string(headers),
		"hx-target", RegionContent.Selector(),
		"hx-swap", "outerHTML",
		GenerationAttr, strconv.FormatUint(st.Generation, 10),
	), el(atom.Div, attrs("class", "shape loading-indicator extra")))), nil
}

func emptyState(msg string) *html.Node {
	return el(atom.Div, attrs("class", "flex justify-center place-items-center h-full w-full"),
		el(atom.Span, attrs("class", "p-4 italic m-auto"), text(msg)),
	)
}

// Content wraps a rendered report body in the content region.
func (r *Renderer) Content(st navstate.State, key cachekey.Key, body *html.Node) *html.Node {
	c := container(el(atom.Article, attrs("class", "report"), body))
	SetAttr(c, GenerationAttr, strconv.FormatUint(st.Generation, 10))
	SetAttr(c, "data-render-environment", key.String())
	return c
}

var indentClasses = [...]string{"ml-0", "ml-3", "ml-6", "ml-9", "ml-12", "ml-15"}

// TableOfContents renders the navigation aid for the given headings.
// Without headings the bare region is rendered so that a previous table of
// contents is cleared.
func (r *Renderer) TableOfContents(items []toc.Item) *html.Node {
	region := el(atom.Div, attrs("id", string(RegionTOC)))
	if len(items) == 0 {
		SetAttr(region, "class", "hidden")
		return region
	}
	SetAttr(region, "class", "fixed top-12 right-0 bottom-0 w-80 overflow-y-auto pl-4 xl:relative xl:w-80 shrink-0 print:hidden")

	list := el(atom.Ul, attrs("class", "space-y-1"))
	for _, it := range items {
		step := toc.Indent(it.Level)
		if step >= len(indentClasses) {
			step = len(indentClasses) - 1
		}
		list.AppendChild(el(atom.Li, nil, el(atom.A, attrs(
			"href", "#"+it.ID,
			"class", classes("block text-sm py-1.5 rounded toc-link", indentClasses[step]),
			"data-target", it.ID,
		), text(it.Text))))
	}
	region.AppendChild(el(atom.Div, attrs("class", "xl:sticky xl:top-4 h-full xl:h-auto"),
		el(atom.H3, attrs("class", "text-lg font-semibold mb-3 px-3 pt-4 xl:pt-0"), text("Table of Contents")),
		el(atom.Nav, attrs("class", "overflow-y-auto"), list),
	))
	return region
}

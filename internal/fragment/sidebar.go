package fragment

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/modelexplorer/internal/models"
	"github.com/starford/modelexplorer/internal/navstate"
	"github.com/starford/modelexplorer/internal/search"
)

// Sidebar renders the template caption, the search box and the filtered
// element list.
func (r *Renderer) Sidebar(st navstate.State) (*html.Node, error) {
	tmpl, err := r.catalog.Template(st.TemplateID)
	if err != nil {
		return nil, err
	}

	caption := el(atom.Div, attrs("class", "mx-2"),
		el(atom.H1, attrs("class", "text-xl"), text(tmpl.Name)),
		el(atom.H2, attrs("class", "text-sm"), text(tmpl.Description)),
	)

	sidebar := el(atom.Div, attrs(
		"id", string(RegionSidebar),
		"class", "flex flex-col h-full lg:w-96 pl-4 py-4 space-y-4 sticky top-0 print:hidden",
	), caption)
	if tmpl.IsDocument() {
		return sidebar, nil
	}
	sidebar.AppendChild(selectedField(st))
	sidebar.AppendChild(searchField(tmpl, st))
	sidebar.AppendChild(r.ElementList(tmpl, st))
	return sidebar, nil
}

// SelectedFieldID is the id of the hidden input carrying the selected element
// into search requests.
const SelectedFieldID = "selected-element"

// SearchFieldID returns the id of the search box of a template.
func SearchFieldID(templateID string) string {
	return "instance-search-" + templateID
}

// selectedField is re-rendered with every sidebar swap, unlike the preserved
// search box, so search requests always see the current selection.
func selectedField(st navstate.State) *html.Node {
	return el(atom.Input, attrs(
		"type", "hidden",
		"id", SelectedFieldID,
		"name", navstate.ParamSelected,
		"value", st.ElementID,
	))
}

// searchField keeps its text across sidebar swaps of the same template, so
// its attributes depend on the template only.
func searchField(tmpl *models.Template, st navstate.State) *html.Node {
	hidden := ""
	if tmpl.InstanceCount() <= SearchThreshold {
		hidden = "hidden"
	}
	return el(atom.Div, attrs("class", classes(hidden, "grid", "grid-cols-1", "pl-2", "pr-4")),
		el(atom.Input, attrs(
			"type", "search",
			"id", SearchFieldID(tmpl.ID),
			"name", navstate.ParamSearch,
			"placeholder", "Search",
			"value", st.Search,
			"autofocus", "true",
			"hx-get", navstate.ElementsURL(navstate.State{TemplateID: tmpl.ID}),
			"hx-include", "#"+SelectedFieldID,
			"hx-trigger", "input changed delay:20ms, search",
			"hx-target", RegionElementList.Selector(),
			"hx-swap", "outerHTML",
			"hx-preserve", "true",
		)),
	)
}

// ElementList renders the instances of tmpl matching the search text.
// The item matching the selected element, if any, is marked selected.
func (r *Renderer) ElementList(tmpl *models.Template, st navstate.State) *html.Node {
	list := el(atom.Ul, attrs("id", string(RegionElementList), "class", "list border scroll"))
	for _, ref := range search.Filter(tmpl.Instances, st.Search) {
		list.AppendChild(el(atom.Li, nil, r.elementButton(tmpl, ref, ref.UUID == st.ElementID)))
	}
	return list
}

// ElementListFor resolves the template of st and renders its element list.
func (r *Renderer) ElementListFor(st navstate.State) (*html.Node, error) {
	tmpl, err := r.catalog.Template(st.TemplateID)
	if err != nil {
		return nil, err
	}
	return r.ElementList(tmpl, st), nil
}

func (r *Renderer) elementButton(tmpl *models.Template, ref models.ElementRef, selected bool) *html.Node {
	var label *html.Node
	if r.opts.ShowUUIDs {
		label = el(atom.Div, attrs("class", "max"),
			el(atom.H6, attrs("class", "small"), text(ref.Name)),
			el(atom.Div, nil, text(ref.UUID)),
		)
	} else {
		label = el(atom.H6, attrs("class", "small max"), text(ref.Name))
	}

	ariaSelected, cls := "false", ""
	if selected {
		ariaSelected, cls = "true", "primary-container"
	}
	href := navstate.ToURL(navstate.State{TemplateID: tmpl.ID, ElementID: ref.UUID})
	return el(atom.A, attrs(
		"id", ElementAnchor(ref.UUID),
		"aria-selected", ariaSelected,
		"class", cls,
		"href", href,
		"hx-get", href,
		"hx-push-url", href,
		"hx-include", `[name="search"]`,
		"hx-target", RegionContent.Selector(),
		"hx-swap", "outerHTML",
	), label)
}

// ElementAnchor returns the stable id of an element list item.
func ElementAnchor(uuid string) string {
	return "model-element-" + uuid
}

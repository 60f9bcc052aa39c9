package fragment

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/navstate"
)

// Navbar renders the page header: breadcrumbs and the fixed print, table of
// contents and theme controls.
func (r *Renderer) Navbar(st navstate.State) (*html.Node, error) {
	crumbs, err := r.Breadcrumbs(st)
	if err != nil {
		return nil, err
	}
	return navbarShell(crumbs), nil
}

func navbarShell(crumbs *html.Node) *html.Node {
	return el(atom.Header, attrs("id", string(RegionNavbar), "class", "primary-container"),
		el(atom.Nav, attrs("id", "page-header", "class", "print:hidden"),
			crumbs,
			el(atom.Div, attrs("class", "max")),
			el(atom.Button, attrs(
				"id", "print-button",
				"title", "Print report",
				"onclick", "window.print();",
				"class", "hidden border circle",
			), icon("print")),
			el(atom.Button, attrs(
				"id", "toc-toggle-button",
				"title", "Toggle table of contents",
				"onclick", "toggleToc()",
				"class", "hidden xl:hidden border circle",
			), icon("toc")),
			el(atom.Button, attrs(
				"id", "dark-mode-button",
				"title", "Toggle dark mode",
				"class", "border circle",
			),
				el(atom.I, attrs("id", "dark-mode-icon-system"), text("night_sight_auto")),
				el(atom.I, attrs("id", "dark-mode-icon-dark", "class", "hidden"), text("dark_mode")),
				el(atom.I, attrs("id", "dark-mode-icon-light", "class", "hidden"), text("light_mode")),
			),
		),
	)
}

// Breadcrumbs renders the trail home > template > element. An element that
// is not an instance of the template fails with *apperr.UnknownElementError.
func (r *Renderer) Breadcrumbs(st navstate.State) (*html.Node, error) {
	nav := el(atom.Nav, attrs("id", "breadcrumbs", "class", "row", "aria-label", "Breadcrumb"))
	if !st.HasTemplate() {
		if st.HasElement() {
			return nil, &apperr.MalformedNavigationError{Reason: "element selected without a template"}
		}
		return nav, nil
	}

	tmpl, err := r.catalog.Template(st.TemplateID)
	if err != nil {
		return nil, err
	}
	nav.AppendChild(el(atom.A, append(attrs("class", "button circle transparent"),
		rootLink("/")...), icon("home")))
	nav.AppendChild(icon("chevron_forward"))
	nav.AppendChild(el(atom.A, append(attrs("class", "button transparent"),
		rootLink(navstate.TemplatePath(tmpl.ID))...), text(tmpl.Name)))

	if !st.HasElement() {
		return nav, nil
	}
	if _, ok := tmpl.Instance(st.ElementID); !ok {
		return nil, &apperr.UnknownElementError{TemplateID: tmpl.ID, ElementID: st.ElementID}
	}
	elem, err := r.model.ByUUID(st.ElementID)
	if err != nil {
		return nil, err
	}
	nav.AppendChild(icon("chevron_forward"))
	nav.AppendChild(el(atom.A, append(attrs("class", "button transparent"),
		rootLink(navstate.ToURL(st.Canonical()))...), text(elem.Name)))
	return nav, nil
}

// rootLink returns the attributes of a link that replaces the whole main
// area and records the address in the browser history.
func rootLink(href string) []html.Attribute {
	return attrs(
		"href", href,
		"hx-get", href,
		"hx-target", RegionRoot.Selector(),
		"hx-swap", "outerHTML",
		"hx-push-url", href,
	)
}

package fragment

import (
	"errors"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/modelexplorer/internal/apperr"
)

const githubURL = "https://github.com/DSD-DBS/capella-model-explorer"

// Shell renders a complete document around the navbar and the root region.
// It serves full page loads such as reloads and history navigation.
func (r *Renderer) Shell(navbar, root *html.Node) *html.Node {
	title := r.model.Info().Name + " - Model Explorer"
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(el(atom.Html, attrs("lang", "en"),
		el(atom.Head, nil,
			el(atom.Meta, attrs("charset", "utf-8")),
			el(atom.Meta, attrs("name", "viewport", "content", "width=device-width, initial-scale=1")),
			el(atom.Title, nil, text(title)),
			el(atom.Link, attrs("rel", "stylesheet", "href", "/static/explorer.css")),
			el(atom.Script, attrs("src", "https://unpkg.com/htmx.org@2.0.4")),
			el(atom.Script, attrs("src", "/static/explorer.js", "defer", "defer")),
		),
		el(atom.Body, nil,
			navbar,
			root,
			el(atom.Script, attrs("id", "script")),
			r.footer(),
		),
	))
	return doc
}

// TemplateLayout renders the root region of a template page with the given
// sidebar, content and table of contents regions.
func (r *Renderer) TemplateLayout(sidebar, content, tableOfContents *html.Node) *html.Node {
	return el(atom.Main, attrs("id", string(RegionRoot), "class", "responsive"),
		el(atom.Div, attrs("class", "flex flex-col lg:flex-row template-layout"),
			sidebar, content, tableOfContents,
		),
	)
}

func (r *Renderer) footer() *html.Node {
	label := "Capella-Model-Explorer: v" + r.opts.Version
	var version *html.Node
	if r.opts.Version == "" || r.opts.Version == "dev" {
		version = el(atom.Span, nil, text(label))
	} else {
		version = el(atom.A, attrs(
			"href", githubURL+"/releases/v"+r.opts.Version,
			"target", "_blank",
			"class", "hover:underline",
		), el(atom.Span, nil, text(label)))
	}
	return el(atom.Footer, attrs("class", "row print:hidden"),
		el(atom.Span, nil, version),
		el(atom.Div, attrs("class", "max")),
		el(atom.Span, nil, el(atom.A, attrs("href", githubURL, "target", "_blank"), text("Contribute on GitHub"))),
	)
}

// ErrorState renders region in a failed state describing err.
func (r *Renderer) ErrorState(region Region, err error) *html.Node {
	tag := atom.Div
	switch region {
	case RegionNavbar:
		tag = atom.Header
	case RegionRoot:
		tag = atom.Main
	case RegionElementList:
		tag = atom.Ul
	}
	n := el(tag, attrs("id", string(region), "class", "error-state", "role", "alert"),
		el(atom.P, attrs("class", "p-4 italic"), text(ErrorMessage(err))),
	)
	if region == RegionNavbar {
		n.InsertBefore(el(atom.A, append(attrs("class", "button circle transparent"), rootLink("/")...), icon("home")), n.FirstChild)
	}
	return n
}

// ErrorMessage returns the user-facing description of err.
func ErrorMessage(err error) string {
	var (
		unknown *apperr.UnknownElementError
		env     *apperr.EnvironmentUnavailableError
		rendErr *apperr.RenderError
		bad     *apperr.MalformedNavigationError
	)
	switch {
	case errors.As(err, &unknown):
		return "Unknown model element " + unknown.ElementID + " for this report."
	case errors.Is(err, apperr.ErrNotFound):
		return "Not found."
	case errors.As(err, &env):
		return "The report environment is not ready yet."
	case errors.As(err, &rendErr):
		return "The report could not be rendered."
	case errors.As(err, &bad):
		return "Invalid navigation."
	default:
		return "Something went wrong."
	}
}

// Package fragment renders the independently addressable regions of the
// explorer page as HTML node trees.
//
// Every renderer is a function of the navigation state and read-only
// collaborator lookups. Renderers never call each other across regions, so
// each region can be computed, failed and delivered on its own.
package fragment

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/starford/modelexplorer/internal/models"
	"github.com/starford/modelexplorer/internal/navstate"
)

// Region names a target element of the page by its id.
type Region string

// Page regions.
const (
	RegionRoot        Region = "root"
	RegionNavbar      Region = "navbar"
	RegionSidebar     Region = "template-sidebar"
	RegionElementList Region = "model_object_list"
	RegionContent     Region = "template_container"
	RegionTOC         Region = "table-of-contents"
)

// Selector returns the CSS selector targeting the region.
func (r Region) Selector() string {
	return "#" + string(r)
}

// SearchThreshold is the instance count at or below which the search box is hidden.
const SearchThreshold = 3

// Options tune rendering.
type Options struct {
	// ShowUUIDs renders element UUIDs under their names in the element list.
	ShowUUIDs bool
	// Version is the application version shown in the footer.
	Version string
}

// Renderer renders page regions from collaborator lookups.
type Renderer struct {
	catalog models.ReportCatalog
	model   models.ModelLookup
	opts    Options
}

// NewRenderer creates a Renderer.
func NewRenderer(catalog models.ReportCatalog, model models.ModelLookup, opts Options) *Renderer {
	return &Renderer{catalog: catalog, model: model, opts: opts}
}

// Normalize drops the element of st when its template is a document.
// Unknown templates are left as they are for the regions to report.
func (r *Renderer) Normalize(st navstate.State) navstate.State {
	if !st.HasElement() {
		return st
	}
	tmpl, err := r.catalog.Template(st.TemplateID)
	if err != nil || !tmpl.IsDocument() {
		return st
	}
	st.ElementID = ""
	return st
}

func el(tag atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag.String(), DataAtom: tag, Attr: attrs}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// attrs builds attributes from key/value pairs, dropping pairs with an empty value.
func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

func classes(cls ...string) string {
	var out []string
	for _, c := range cls {
		if c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, " ")
}

func icon(name string, cls ...string) *html.Node {
	return el(atom.I, attrs("class", classes(cls...)), text(name))
}

// Attr returns the value of the attribute key of n.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// SetAttr sets attribute key of n, replacing an existing value.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// Render writes n as HTML.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// String renders n to a string.
func String(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

// Package compose decides which page regions a request updates and how each
// fragment is merged by the client: the primary fragment replaces the
// request target, out-of-band fragments replace their own region.
package compose

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"

	"golang.org/x/net/html"

	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/cachekey"
	"github.com/starford/modelexplorer/internal/fragment"
	"github.com/starford/modelexplorer/internal/navstate"
	"github.com/starford/modelexplorer/internal/reportservice"
	"github.com/starford/modelexplorer/internal/toc"
)

// Trigger is the user action a request stands for.
type Trigger int

const (
	// Home shows the catalog.
	Home Trigger = iota
	// NavigateTemplate opens a template page.
	NavigateTemplate
	// SelectElement selects a model element within the current template.
	SelectElement
	// Search changes the element filter text.
	Search
	// ContentRendered delivers the report requested by a content placeholder.
	ContentRendered
)

func (t Trigger) String() string {
	switch t {
	case Home:
		return "home"
	case NavigateTemplate:
		return "navigate-template"
	case SelectElement:
		return "select-element"
	case Search:
		return "search"
	case ContentRendered:
		return "content-rendered"
	default:
		return "trigger(" + strconv.Itoa(int(t)) + ")"
	}
}

// TriggerFor classifies a navigation to st.
func TriggerFor(st navstate.State) Trigger {
	switch {
	case !st.HasTemplate():
		return Home
	case st.HasElement():
		return SelectElement
	default:
		return NavigateTemplate
	}
}

// Fragment is one region of an update.
type Fragment struct {
	Region  fragment.Region
	Node    *html.Node
	Primary bool
	// Err is set when the region failed and Node renders its error state.
	Err error
}

// Update is the set of fragments answering one request.
type Update struct {
	Trigger   Trigger
	State     navstate.State
	Fragments []Fragment
	// Key is the render cache key of delivered content.
	Key cachekey.Key
}

// Primary returns the primary fragment.
func (u *Update) Primary() *Fragment {
	for i := range u.Fragments {
		if u.Fragments[i].Primary {
			return &u.Fragments[i]
		}
	}
	return nil
}

// Fragment returns the fragment for region.
func (u *Update) Fragment(region fragment.Region) (*Fragment, bool) {
	for i := range u.Fragments {
		if u.Fragments[i].Region == region {
			return &u.Fragments[i], true
		}
	}
	return nil, false
}

// Err joins the errors of all failed regions.
func (u *Update) Err() error {
	var errs []error
	for _, f := range u.Fragments {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

// Write serializes the update: the primary fragment first, then every
// out-of-band fragment tagged with hx-swap-oob.
func (u *Update) Write(w io.Writer) error {
	if p := u.Primary(); p != nil {
		if err := fragment.Render(w, p.Node); err != nil {
			return err
		}
	}
	for _, f := range u.Fragments {
		if f.Primary {
			continue
		}
		fragment.SetAttr(f.Node, "hx-swap-oob", "true")
		if err := fragment.Render(w, f.Node); err != nil {
			return err
		}
	}
	return nil
}

// ContentSource renders report bodies.
type ContentSource interface {
	Content(ctx context.Context, st navstate.State, expected cachekey.Key) (*reportservice.Result, error)
}

// Composer builds updates from the navigation state of a request.
type Composer struct {
	r       *fragment.Renderer
	content ContentSource
	logger  *slog.Logger
}

// New creates a Composer.
func New(r *fragment.Renderer, content ContentSource, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{r: r, content: content, logger: logger}
}

// Fatal reports whether err fails a whole request instead of a single region.
func Fatal(err error) bool {
	var (
		bad *apperr.MalformedNavigationError
		env *apperr.EnvironmentUnavailableError
	)
	return errors.As(err, &bad) || errors.As(err, &env)
}

// Compose builds the update for trigger t. A ContentRendered update is built
// without an expected cache key; see ComposeContent.
//
// Region failures are contained in their region. Only malformed navigation
// and an unavailable render environment fail the request.
func (c *Composer) Compose(ctx context.Context, t Trigger, st navstate.State) (*Update, error) {
	if !st.HasTemplate() && st.HasElement() {
		return nil, &apperr.MalformedNavigationError{Reason: "element selected without a template"}
	}
	if st = c.r.Normalize(st); t == SelectElement && !st.HasElement() {
		t = NavigateTemplate
	}
	u := &Update{Trigger: t, State: st}
	switch t {
	case Home:
		u.add(fragment.RegionRoot, true, c.r.Home(), nil)
		c.region(u, fragment.RegionNavbar, false, func() (*html.Node, error) { return c.r.Navbar(st) })
	case NavigateTemplate, SelectElement:
		c.region(u, fragment.RegionNavbar, false, func() (*html.Node, error) { return c.r.Navbar(st) })
		c.region(u, fragment.RegionSidebar, false, func() (*html.Node, error) { return c.r.Sidebar(st) })
		c.region(u, fragment.RegionContent, true, func() (*html.Node, error) { return c.r.ContentPlaceholder(st) })
	case Search:
		c.region(u, fragment.RegionElementList, true, func() (*html.Node, error) { return c.r.ElementListFor(st) })
	case ContentRendered:
		return c.ComposeContent(ctx, st, "")
	default:
		return nil, &apperr.MalformedNavigationError{Reason: "unknown trigger " + t.String()}
	}
	for _, f := range u.Fragments {
		if Fatal(f.Err) {
			return nil, f.Err
		}
	}
	return u, nil
}

// ComposeContent renders the report addressed by st and emits it as the
// primary content fragment, with the table of contents of the same render
// out of band. expected is the cache key the placeholder was rendered with.
func (c *Composer) ComposeContent(ctx context.Context, st navstate.State, expected cachekey.Key) (*Update, error) {
	st = c.r.Normalize(st)
	u := &Update{Trigger: ContentRendered, State: st}
	res, err := c.content.Content(ctx, st, expected)
	if err != nil {
		if Fatal(err) {
			return nil, err
		}
		c.logger.Warn("compose: content failed",
			slog.String("template", st.TemplateID),
			slog.String("element", st.ElementID),
			slog.String("error", err.Error()))
		failed := c.r.ErrorState(fragment.RegionContent, err)
		fragment.SetAttr(failed, fragment.GenerationAttr, strconv.FormatUint(st.Generation, 10))
		u.add(fragment.RegionContent, true, failed, err)
		u.add(fragment.RegionTOC, false, c.r.TableOfContents(nil), nil)
		return u, nil
	}
	items := toc.Build(res.Body)
	u.Key = res.Key
	u.add(fragment.RegionContent, true, c.r.Content(st, res.Key, res.Body), nil)
	u.add(fragment.RegionTOC, false, c.r.TableOfContents(items), nil)
	return u, nil
}

// Embed folds a template page update into the root region, for requests
// that replace the whole main area or load the full page. The navbar stays
// out of band. Other updates are returned unchanged.
func (c *Composer) Embed(u *Update) *Update {
	if u.Trigger != NavigateTemplate && u.Trigger != SelectElement {
		return u
	}
	sidebar, _ := u.Fragment(fragment.RegionSidebar)
	content, _ := u.Fragment(fragment.RegionContent)
	out := &Update{Trigger: u.Trigger, State: u.State, Key: u.Key}
	root := c.r.TemplateLayout(sidebar.Node, content.Node, c.r.TableOfContents(nil))
	out.add(fragment.RegionRoot, true, root, errors.Join(sidebar.Err, content.Err))
	if nav, ok := u.Fragment(fragment.RegionNavbar); ok {
		out.add(fragment.RegionNavbar, false, nav.Node, nav.Err)
	}
	return out
}

// Document renders the full page for a navigation update.
func (c *Composer) Document(u *Update) *html.Node {
	u = c.Embed(u)
	root := u.Primary()
	nav, ok := u.Fragment(fragment.RegionNavbar)
	if !ok {
		n, _ := c.r.Navbar(navstate.State{})
		return c.r.Shell(n, root.Node)
	}
	return c.r.Shell(nav.Node, root.Node)
}

func (c *Composer) region(u *Update, region fragment.Region, primary bool, render func() (*html.Node, error)) {
	n, err := render()
	if err != nil {
		if !Fatal(err) {
			c.logger.Warn("compose: region failed",
				slog.String("region", string(region)),
				slog.String("trigger", u.Trigger.String()),
				slog.String("error", err.Error()))
		}
		n = c.r.ErrorState(region, err)
	}
	u.add(region, primary, n, err)
}

func (u *Update) add(region fragment.Region, primary bool, n *html.Node, err error) {
	u.Fragments = append(u.Fragments, Fragment{Region: region, Node: n, Primary: primary, Err: err})
}

// Package reportservice resolves, renders and caches report bodies.
package reportservice

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/net/html"

	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/cachekey"
	"github.com/starford/modelexplorer/internal/fragment"
	"github.com/starford/modelexplorer/internal/models"
	"github.com/starford/modelexplorer/internal/navstate"
	"github.com/starford/modelexplorer/internal/render"
	"github.com/starford/modelexplorer/internal/rendercache"
	"github.com/starford/modelexplorer/internal/search"
)

// Result is a rendered report body.
type Result struct {
	Template *models.Template
	// Element is nil for document templates.
	Element *models.Element
	Body    *html.Node
	// Key is the cache key the body was rendered under.
	Key    cachekey.Key
	Cached bool
}

// Service coordinates the catalog, the render engine and the render cache.
type Service struct {
	catalog models.ReportCatalog
	model   models.ModelLookup
	engine  models.RenderEngine
	cache   *rendercache.Cache
	logger  *slog.Logger
}

// NewService creates a new report service. cache may be nil, in which case
// every request renders.
func NewService(catalog models.ReportCatalog, model models.ModelLookup, engine models.RenderEngine, cache *rendercache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: catalog, model: model, engine: engine, cache: cache, logger: logger}
}

// Resolve returns the template and element addressed by st. The element is
// nil for document templates.
func (s *Service) Resolve(st navstate.State) (*models.Template, *models.Element, error) {
	if !st.HasTemplate() {
		return nil, nil, &apperr.MalformedNavigationError{Reason: "no template selected"}
	}
	tmpl, err := s.catalog.Template(st.TemplateID)
	if err != nil {
		return nil, nil, err
	}
	if tmpl.IsDocument() {
		return tmpl, nil, nil
	}
	if !st.HasElement() {
		return nil, nil, &apperr.MalformedNavigationError{Reason: "template " + tmpl.ID + " requires a model element"}
	}
	if _, ok := tmpl.Instance(st.ElementID); !ok {
		return nil, nil, &apperr.UnknownElementError{TemplateID: tmpl.ID, ElementID: st.ElementID}
	}
	element, err := s.model.ByUUID(st.ElementID)
	if err != nil {
		return nil, nil, &apperr.UnknownElementError{TemplateID: tmpl.ID, ElementID: st.ElementID}
	}
	return tmpl, element, nil
}

// Content renders the report addressed by st. A stored render is used only
// when expected equals the current cache key; otherwise the report is
// rendered fresh and stored under the current key.
func (s *Service) Content(ctx context.Context, st navstate.State, expected cachekey.Key) (*Result, error) {
	tmpl, element, err := s.Resolve(st)
	if err != nil {
		return nil, err
	}
	version, err := s.catalog.RenderEnvironmentVersion()
	if err != nil {
		return nil, err
	}
	key, err := cachekey.Compute(tmpl.ID, version)
	if err != nil {
		return nil, err
	}
	res := &Result{Template: tmpl, Element: element, Key: key}

	if s.cache == nil {
		body, err := s.engine.Render(ctx, tmpl, element)
		if err != nil {
			return nil, err
		}
		res.Body = body
		return res, nil
	}

	fresh := expected != key
	if fresh && expected != "" {
		s.logger.Debug("reportservice: environment drift",
			slog.String("template", tmpl.ID),
			slog.String("expected", expected.String()),
			slog.String("current", key.String()))
	}
	elementID := ""
	if element != nil {
		elementID = element.UUID
	}
	out, hit, err := s.cache.GetOrRender(ctx, key, elementID, version, fresh, func(ctx context.Context) (string, error) {
		body, err := s.engine.Render(ctx, tmpl, element)
		if err != nil {
			return "", err
		}
		return innerHTML(body)
	})
	if err != nil {
		return nil, err
	}
	body, err := render.ParseFragment(out)
	if err != nil {
		return nil, &apperr.RenderError{TemplateID: tmpl.ID, Cause: err}
	}
	res.Body = body
	res.Cached = hit
	return res, nil
}

// innerHTML serializes the children of n.
func innerHTML(n *html.Node) (string, error) {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := fragment.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// Categories returns the catalog in display order.
func (s *Service) Categories() []*models.TemplateCategory {
	return s.catalog.Categories()
}

// Template returns the template with the given id.
func (s *Service) Template(id string) (*models.Template, error) {
	return s.catalog.Template(id)
}

// SearchElements returns the instances of a template matching text.
func (s *Service) SearchElements(templateID, text string) ([]models.ElementRef, error) {
	tmpl, err := s.catalog.Template(templateID)
	if err != nil {
		return nil, err
	}
	return search.Filter(tmpl.Instances, text), nil
}

// Model returns the model metadata.
func (s *Service) Model() models.ModelInfo {
	return s.model.Info()
}

// EnvironmentChanged drops stored renders of previous environments.
func (s *Service) EnvironmentChanged(version string) {
	if s.cache == nil {
		return
	}
	n, err := s.cache.PruneExcept(version)
	if err != nil {
		s.logger.Warn("reportservice: prune failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("reportservice: pruned stale renders", slog.Int64("rows", n), slog.String("version", version))
}

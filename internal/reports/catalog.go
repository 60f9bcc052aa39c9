// Package reports maintains the catalog of report templates loaded from the
// template directory and the render environment version derived from it.
package reports

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/checksum"
	"github.com/starford/modelexplorer/internal/models"
	"github.com/starford/modelexplorer/internal/parser"
	"github.com/starford/modelexplorer/internal/storage"
)

// CategoriesFile is the optional, ordered category index at the template root.
const CategoriesFile = "categories.yaml"

// DefaultCategory collects templates without a category.
const DefaultCategory = "Other"

type snapshot struct {
	categories []*models.TemplateCategory
	byID       map[string]*models.Template
	version    string
}

// Catalog implements models.ReportCatalog over a template directory.
//
// Readers see immutable snapshots; Load swaps in a new snapshot atomically,
// so requests in flight keep a consistent view.
type Catalog struct {
	store         storage.Provider
	model         models.ModelLookup
	engineVersion string
	logger        *slog.Logger

	loadMu sync.Mutex
	snap   atomic.Pointer[snapshot]
}

var _ models.ReportCatalog = (*Catalog)(nil)

// New creates an empty catalog. Call Load before serving.
func New(store storage.Provider, model models.ModelLookup, engineVersion string, logger *slog.Logger) *Catalog {
	return &Catalog{store: store, model: model, engineVersion: engineVersion, logger: logger}
}

// Load walks the template directory and replaces the catalog contents.
// Invalid templates are logged and skipped. It reports whether the render
// environment version changed.
func (c *Catalog) Load() (bool, error) {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	files, err := c.store.List("")
	if err != nil {
		return false, err
	}

	var cats []parser.Category
	versionFields := []string{c.engineVersion}
	var templates []*models.Template
	byID := make(map[string]*models.Template)

	for _, f := range files {
		versionFields = append(versionFields, f.Path, f.Checksum)

		data, err := c.store.Read(f.Path)
		if err != nil {
			c.logger.Warn("catalog: read failed", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		if f.Path == CategoriesFile {
			if cats, err = parser.ParseCategories(data); err != nil {
				c.logger.Warn("catalog: categories ignored", slog.String("error", err.Error()))
			}
			continue
		}
		if !isTemplateFile(f.Path) {
			continue
		}
		def, err := parser.Parse(data)
		if err != nil {
			c.logger.Warn("catalog: template skipped", slog.String("path", f.Path), slog.String("error", err.Error()))
			continue
		}
		if prev, dup := byID[def.ID]; dup {
			c.logger.Warn("catalog: duplicate template id",
				slog.String("id", def.ID),
				slog.String("path", f.Path),
				slog.String("first", prev.Source))
			continue
		}
		tmpl := def.Template(f.Path)
		if !tmpl.IsDocument() {
			for _, e := range c.model.ElementsOfType(tmpl.Scope) {
				tmpl.Instances = append(tmpl.Instances, e.Ref())
			}
		}
		byID[tmpl.ID] = tmpl
		templates = append(templates, tmpl)
		c.logger.Debug("catalog: loaded", slog.String("id", tmpl.ID), slog.Int("instances", len(tmpl.Instances)))
	}

	next := &snapshot{
		categories: group(cats, templates),
		byID:       byID,
		version:    checksum.Fields(versionFields...),
	}
	prev := c.snap.Swap(next)
	return prev == nil || prev.version != next.version, nil
}

func isTemplateFile(path string) bool {
	return strings.HasSuffix(path, ".md")
}

// group orders templates into categories: indexed categories first in index
// order, then unindexed ones in order of first appearance. Templates within a
// category are sorted by name.
func group(index []parser.Category, templates []*models.Template) []*models.TemplateCategory {
	var out []*models.TemplateCategory
	byIdx := make(map[string]*models.TemplateCategory)
	add := func(idx, color string) *models.TemplateCategory {
		if cat, ok := byIdx[idx]; ok {
			return cat
		}
		cat := &models.TemplateCategory{Idx: idx, Color: color}
		byIdx[idx] = cat
		out = append(out, cat)
		return cat
	}
	for _, c := range index {
		add(c.Idx, c.Color)
	}
	for _, t := range templates {
		idx := t.Category
		if idx == "" {
			idx = DefaultCategory
		}
		cat := add(idx, "")
		cat.Templates = append(cat.Templates, t)
	}

	nonEmpty := out[:0]
	for _, cat := range out {
		if len(cat.Templates) == 0 {
			continue
		}
		sort.SliceStable(cat.Templates, func(i, j int) bool { return cat.Templates[i].Name < cat.Templates[j].Name })
		nonEmpty = append(nonEmpty, cat)
	}
	return nonEmpty
}

// Categories returns the template categories in display order.
func (c *Catalog) Categories() []*models.TemplateCategory {
	s := c.snap.Load()
	if s == nil {
		return nil
	}
	return s.categories
}

// Template returns the template with the given ID.
func (c *Catalog) Template(id string) (*models.Template, error) {
	s := c.snap.Load()
	if s != nil {
		if t, ok := s.byID[id]; ok {
			return t, nil
		}
	}
	return nil, apperr.NotFound("template", id)
}

// RenderEnvironmentVersion returns the digest of the engine version and all
// template sources.
func (c *Catalog) RenderEnvironmentVersion() (string, error) {
	s := c.snap.Load()
	if s == nil {
		return "", &apperr.EnvironmentUnavailableError{Cause: fmt.Errorf("template catalog not loaded")}
	}
	return s.version, nil
}

// Ready reports whether the catalog has been loaded.
func (c *Catalog) Ready() bool {
	return c.snap.Load() != nil
}

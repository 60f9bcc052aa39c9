package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/html"

	"github.com/starford/modelexplorer/internal/apperr"
	"github.com/starford/modelexplorer/internal/cachekey"
	"github.com/starford/modelexplorer/internal/compose"
	"github.com/starford/modelexplorer/internal/fragment"
	"github.com/starford/modelexplorer/internal/models"
	"github.com/starford/modelexplorer/internal/navstate"
)

// Handler holds the route handlers.
type Handler struct {
	composer *compose.Composer
	catalog  models.ReportCatalog
	model    models.ModelLookup
	logger   *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(composer *compose.Composer, catalog models.ReportCatalog, model models.ModelLookup, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{composer: composer, catalog: catalog, model: model, logger: logger}
}

// state parses the navigation state of r.
func state(r *http.Request) (navstate.State, error) {
	var route navstate.Route
	if raw := chi.URLParam(r, "templateID"); raw != "" {
		id, err := url.PathUnescape(raw)
		if err != nil {
			return navstate.State{}, &apperr.MalformedNavigationError{Reason: err.Error()}
		}
		route.TemplateID = id
	}
	st, err := navstate.Parse(route, r.URL.Query())
	if err != nil {
		return navstate.State{}, err
	}
	st.Generation = navstate.ParseGeneration(r.Header)
	return st, nil
}

// Home handles GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r)
}

// Report handles GET /report/{templateID}.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r)
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request) {
	st, err := state(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.composer.Compose(r.Context(), compose.TriggerFor(st), st)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	echoGeneration(w, st)
	if u.State.Canonical() != st.Canonical() {
		w.Header().Set(HeaderReplaceURL, navstate.ToURL(u.State))
	}

	if !isFragmentRequest(r) {
		status := http.StatusOK
		if errors.Is(u.Err(), apperr.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.writeNode(w, status, h.composer.Document(u))
		return
	}
	if targetsRoot(r) {
		u = h.composer.Embed(u)
	}
	h.writeUpdate(w, u)
}

// Render handles GET /report/{templateID}/render, the content fetch issued
// by a content placeholder. The Render-Environment request header carries
// the cache key the placeholder was rendered with; the response header
// carries the key actually used.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	st, err := state(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	expected := cachekey.Key(r.Header.Get(cachekey.Header))
	u, err := h.composer.ComposeContent(r.Context(), st, expected)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if u.Key != "" {
		w.Header().Set(cachekey.Header, u.Key.String())
	}
	w.Header().Set("Cache-Control", "no-store")
	echoGeneration(w, st)
	h.writeUpdate(w, u)
}

// Elements handles GET /report/{templateID}/elements, the filtered element list.
func (h *Handler) Elements(w http.ResponseWriter, r *http.Request) {
	st, err := state(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.composer.Compose(r.Context(), compose.Search, st)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeUpdate(w, u)
}

// ListReports handles GET /api/reports.
func (h *Handler) ListReports(w http.ResponseWriter, _ *http.Request) {
	version, err := h.catalog.RenderEnvironmentVersion()
	if err != nil {
		h.writeJSONError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newReportsResponse(h.model.Info(), version, h.catalog.Categories()))
}

func echoGeneration(w http.ResponseWriter, st navstate.State) {
	w.Header().Set(navstate.GenerationHeader, strconv.FormatUint(st.Generation, 10))
}

func (h *Handler) writeUpdate(w http.ResponseWriter, u *compose.Update) {
	var buf bytes.Buffer
	if err := u.Write(&buf); err != nil {
		h.logger.Error("write fragments failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) writeNode(w http.ResponseWriter, status int, n *html.Node) {
	var buf bytes.Buffer
	if err := fragment.Render(&buf, n); err != nil {
		h.logger.Error("write page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// fail rejects a request that cannot be answered region by region.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		bad *apperr.MalformedNavigationError
		env *apperr.EnvironmentUnavailableError
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &bad):
		status = http.StatusBadRequest
	case errors.As(err, &env):
		status = http.StatusServiceUnavailable
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	} else {
		h.logger.Debug("request rejected", slog.String("path", r.URL.Path), slog.Int("status", status), slog.String("error", err.Error()))
	}
	http.Error(w, fragment.ErrorMessage(err), status)
}

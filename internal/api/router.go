package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with the explorer pages, the fragment
// endpoints, the JSON catalog and the static assets. sseHandler, if non-nil,
// is mounted at GET /events.
func NewRouter(h *Handler, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(HTMXMiddleware)

	// Navigation.
	r.Get("/", h.Home)
	r.Get("/report/{templateID}", h.Report)

	// Fragment endpoints.
	r.Get("/report/{templateID}/render", h.Render)
	r.Get("/report/{templateID}/elements", h.Elements)

	// JSON catalog.
	r.Get("/api/reports", h.ListReports)

	r.Handle("/static/*", StaticHandler())

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

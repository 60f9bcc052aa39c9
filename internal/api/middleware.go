// Package api implements the explorer's HTTP surface using chi.
package api

import (
	"net/http"
)

// htmx request headers.
const (
	HeaderRequest        = "HX-Request"
	HeaderTarget         = "HX-Target"
	HeaderHistoryRestore = "HX-History-Restore-Request"
)

// HeaderReplaceURL tells htmx to replace the browser location after a swap.
const HeaderReplaceURL = "HX-Replace-Url"

// HTMXMiddleware marks responses as varying by the htmx request headers, so
// caches never serve a fragment for a full page load or the reverse.
func HTMXMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", HeaderRequest)
		w.Header().Add("Vary", HeaderTarget)
		next.ServeHTTP(w, r)
	})
}

// isFragmentRequest reports whether r was issued by htmx and expects a
// fragment. History restores ask for the full page.
func isFragmentRequest(r *http.Request) bool {
	return r.Header.Get(HeaderRequest) == "true" && r.Header.Get(HeaderHistoryRestore) != "true"
}

// targetsRoot reports whether the request replaces the whole main area.
func targetsRoot(r *http.Request) bool {
	return r.Header.Get(HeaderTarget) == "root"
}

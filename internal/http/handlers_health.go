package httpx

import (
	"io"
	"net/http"
	"strings"
)

const (
	healthResponse = `{"status":"ok"}`
	rootResponse   = "JWT Backend API is running! Use /signup, /login, /checkAuth endpoints."
)

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// rootHandler answers the bare root path with a plain-text liveness banner.
func rootHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, rootResponse); err != nil {
		return
	}
}

// notFoundHandler answers unknown routes with a JSON error body.
func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, ErrorParams{Code: http.StatusNotFound, Message: "Not found"})
}

// methodNotAllowed answers a known path requested with an unsupported method.
// The catch-all "/" would otherwise turn these into 404s.
func methodNotAllowed(allowed ...string) http.Handler {
	allow := strings.Join(allowed, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", allow)
		WriteError(w, ErrorParams{Code: http.StatusMethodNotAllowed, Message: "Method not allowed"})
	})
}

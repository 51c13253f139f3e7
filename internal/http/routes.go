package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth   AuthServiceInterface
	Cookie CookieConfig
	Logger *slog.Logger // Logger for request errors (optional)
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", rootHandler)
	mux.Handle("/{$}", methodNotAllowed(http.MethodGet, http.MethodHead))
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("/healthz", methodNotAllowed(http.MethodGet, http.MethodHead))

	if services.Auth != nil {
		h := &AuthHandlers{Svc: services.Auth, Cookie: services.Cookie, Logger: logger}
		registerAuthRoutes(mux, h, RequireAuth(services.Auth, logger))
	}

	mux.HandleFunc("/", notFoundHandler)
	return mux
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, requireAuth func(http.Handler) http.Handler) {
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("POST /login", h.Login)
	mux.Handle("GET /checkAuth", requireAuth(http.HandlerFunc(h.CheckAuth)))
	mux.HandleFunc("POST /logout", h.Logout)

	for _, path := range []string{"/signup", "/login", "/logout"} {
		mux.Handle(path, methodNotAllowed(http.MethodPost))
	}
	mux.Handle("/checkAuth", methodNotAllowed(http.MethodGet, http.MethodHead))
}

// Package httpapi is the JSON-over-HTTP boundary of the SecurePass server:
// routing, the gatekeeper in front of every route, and the mapping of
// service results onto status codes and bodies.
package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/securepass/internal/logging"
	"github.com/dmitrijs2005/securepass/internal/server/guard"
	"github.com/go-chi/chi/v5"
)

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	MaxBodyBytes   int64
	AllowedOrigins []string
}

// NewRouter registers every route behind logging, recovery, security
// headers, CORS and the gatekeeper, in that order from the outside in.
func NewRouter(h *Handler, pipeline *guard.Pipeline, cfg RouterConfig, log logging.Logger) http.Handler {
	log = log.With("module", "http")

	r := chi.NewRouter()
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	r.Use(securityHeaders)
	r.Use(corsMiddleware(cfg.AllowedOrigins))
	r.Use(Gatekeeper(pipeline, cfg.MaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errorResponse{Error: "Not Found", Message: "No such route"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed", Message: "Method not supported for this route"})
	})

	r.Get("/health", h.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Route("/vault", func(r chi.Router) {
		r.Get("/", h.ListCredentials)
		r.Post("/", h.AddCredential)
		r.Post("/batch", h.AddCredentials)
		r.Post("/backup", h.Backup)
		r.Get("/{id}", h.GetCredential)
		r.Put("/{id}", h.UpdateCredential)
		r.Delete("/{id}", h.DeleteCredential)
	})

	return r
}

// Package api exposes the consumption REST surface over chi.
package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/curator/internal/middleware"
)

// NewRouter mounts the read endpoints, the invalidation webhook, and the
// operational endpoints.  webhookToken, when non-empty, gates the
// invalidation endpoint behind a bearer check; reads stay open.
func NewRouter(h *Handler, webhookToken string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Security)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/content/{type}", h.ListContent)
		r.Get("/content/{type}/{idOrSlug}", h.GetContent)
		r.Get("/media/{id}", h.GetMedia)
		r.Get("/taxonomy/{kind}", h.ListTaxonomy)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(webhookToken))
			r.Post("/invalidate", h.Invalidate)
		})
	})

	r.Get("/healthz", h.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// BearerAuth enforces "Authorization: Bearer <token>" when token is set;
// an empty token disables the check (local/dev).
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

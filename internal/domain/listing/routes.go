package listing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gaadibazaar/gaadibazaar-api/internal/middleware"
)

// Routes returns listing router. viewerMiddleware identifies the caller on
// public routes without requiring a token.
func (h *Handler) Routes(authMiddleware, viewerMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public routes
	r.Group(func(r chi.Router) {
		r.Use(viewerMiddleware)
		r.Get("/", h.List)
		r.Get("/{id}", h.GetByID)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/my", h.ListMy)
		r.With(middleware.RequireSeller()).Post("/", h.Create)
	})

	return r
}

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gaadibazaar/gaadibazaar-api/internal/middleware"
)

// Routes returns admin router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireAdmin())

	// Wallets
	r.Route("/wallets/{id}", func(r chi.Router) {
		r.Get("/", h.GetWallet)
		r.Post("/credit", h.AdjustWallet(OpCredit))
		r.Post("/refund", h.AdjustWallet(OpRefund))
		r.Post("/debit", h.AdjustWallet(OpDebit))
		r.Get("/verify", h.VerifyWallet)
		r.Post("/statement", h.ExportStatement)
	})

	// Listing moderation
	r.Patch("/listings/{id}/status", h.listings.UpdateStatus)

	// User management
	r.Route("/users/{id}", func(r chi.Router) {
		r.Patch("/kyc", h.UpdateKYC)
		r.Patch("/status", h.UpdateUserStatus)
	})

	// Audit logs
	r.Get("/audit/logs", h.AuditLogs)

	return r
}

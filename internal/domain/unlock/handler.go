package unlock

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
	"github.com/gaadibazaar/gaadibazaar-api/internal/middleware"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/response"
)

// Handler handles unlock HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates unlock handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Unlock handles POST /listings/{id}/unlock
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserID(r.Context())
	if owner == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	listingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing ID")
		return
	}

	res, err := h.service.Unlock(r.Context(), owner, listingID)
	if err != nil {
		if errors.Is(err, ErrListingNotFound) {
			response.NotFound(w, "listing unavailable")
			return
		}
		wallet.RespondError(w, r, err)
		return
	}

	response.OK(w, res)
}

// List handles GET /unlocks
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserID(r.Context())
	if owner == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, offset := wallet.Pagination(r)
	items, total, err := h.service.ListUnlocked(r.Context(), owner, limit, offset)
	if err != nil {
		wallet.RespondError(w, r, err)
		return
	}

	response.Paginated(w, items, total, limit, offset)
}

package listing

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gaadibazaar/gaadibazaar-api/internal/middleware"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/errorhandler"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/response"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/validator"
)

// UnlockChecker reports whether a buyer has paid for a listing's contact
type UnlockChecker interface {
	IsUnlocked(ctx context.Context, owner, listingID uuid.UUID) (bool, error)
}

// Handler handles listing HTTP requests
type Handler struct {
	service *Service
	unlocks UnlockChecker
}

// NewHandler creates listing handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SetUnlockChecker enables the contact on the detail view for buyers who
// unlocked it
func (h *Handler) SetUnlockChecker(c UnlockChecker) {
	h.unlocks = c
}

// Create handles POST /listings
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	ctx := r.Context()
	l, err := h.service.Create(ctx, middleware.GetUserID(ctx), middleware.GetRole(ctx), &req)
	if err != nil {
		if errors.Is(err, ErrNotSeller) {
			response.Forbidden(w, err.Error())
			return
		}
		errorhandler.Internal(ctx, w, "listing.create", err)
		return
	}

	response.Created(w, ListingResponseFromEntity(l))
}

// GetByID handles GET /listings/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing ID")
		return
	}

	ctx := r.Context()
	viewer := middleware.GetUserID(ctx)
	isAdmin := middleware.GetRole(ctx) == "admin"
	l, err := h.service.GetVisible(ctx, id, viewer, isAdmin)
	if err != nil {
		if errors.Is(err, ErrListingNotFound) {
			response.NotFound(w, "Listing not found")
			return
		}
		errorhandler.Internal(ctx, w, "listing.get", err)
		return
	}

	resp := &ListingDetailResponse{ListingResponse: *ListingResponseFromEntity(l)}
	switch {
	case viewer == uuid.Nil:
	case isAdmin || l.SellerID == viewer:
		resp.Unlocked = true
	case h.unlocks != nil:
		resp.Unlocked, err = h.unlocks.IsUnlocked(ctx, viewer, l.ID)
		if err != nil {
			errorhandler.Internal(ctx, w, "listing.get", err)
			return
		}
	}
	if resp.Unlocked {
		resp.SellerContact = l.SellerContact
	}

	response.OK(w, resp)
}

// List handles GET /listings
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pagination(r)
	filter := Filter{
		Category: q.Get("category"),
		Location: q.Get("location"),
	}

	items, total, err := h.service.ListPublic(r.Context(), filter, limit, offset)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "listing.list", err)
		return
	}

	response.Paginated(w, toResponses(items), total, limit, offset)
}

// ListMy handles GET /listings/my
func (h *Handler) ListMy(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	items, total, err := h.service.ListBySeller(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "listing.list_my", err)
		return
	}

	response.Paginated(w, toResponses(items), total, limit, offset)
}

// UpdateStatus handles PATCH /admin/listings/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid listing ID")
		return
	}

	var req UpdateStatusRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.SetStatus(r.Context(), id, Status(req.Status)); err != nil {
		switch {
		case errors.Is(err, ErrListingNotFound):
			response.NotFound(w, "Listing not found")
		case errors.Is(err, ErrInvalidStatus):
			response.BadRequest(w, err.Error())
		default:
			errorhandler.Internal(r.Context(), w, "listing.update_status", err)
		}
		return
	}

	response.OK(w, map[string]string{"id": id.String(), "status": req.Status})
}

func toResponses(items []*Listing) []*ListingResponse {
	out := make([]*ListingResponse, 0, len(items))
	for _, l := range items {
		out = append(out, ListingResponseFromEntity(l))
	}
	return out
}

func pagination(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

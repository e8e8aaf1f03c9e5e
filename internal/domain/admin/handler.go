package admin

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/listing"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/user"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
	"github.com/gaadibazaar/gaadibazaar-api/internal/middleware"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/errorhandler"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/response"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/validator"
)

// Handler handles admin HTTP requests
type Handler struct {
	service  *Service
	listings *listing.Handler
}

// NewHandler creates admin handler
func NewHandler(service *Service, listings *listing.Handler) *Handler {
	return &Handler{service: service, listings: listings}
}

func actorFrom(r *http.Request) Actor {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return Actor{ID: middleware.GetUserID(r.Context()), IP: ip}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid ID")
		return uuid.Nil, false
	}
	return id, true
}

// --- Wallets ---

// GetWallet handles GET /admin/wallets/{id}
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	owner, ok := parseID(w, r)
	if !ok {
		return
	}

	view, err := h.service.GetWallet(r.Context(), owner)
	if err != nil {
		wallet.RespondError(w, r, err)
		return
	}

	response.OK(w, view)
}

// AdjustWallet returns the handler for POST /admin/wallets/{id}/{op}
func (h *Handler) AdjustWallet(op AdjustOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := parseID(w, r)
		if !ok {
			return
		}

		var req AdjustWalletRequest
		if err := response.DecodeJSON(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid JSON body")
			return
		}
		if errs := validator.Validate(&req); errs != nil {
			errorhandler.LogValidationError(r.Context(), errs)
			response.ValidationError(w, errs)
			return
		}

		t, err := h.service.AdjustWallet(r.Context(), actorFrom(r), owner, op, &req)
		if err != nil {
			wallet.RespondError(w, r, err)
			return
		}

		response.OK(w, map[string]interface{}{
			"transaction": t,
			"replayed":    t.Replayed,
		})
	}
}

// VerifyWallet handles GET /admin/wallets/{id}/verify
func (h *Handler) VerifyWallet(w http.ResponseWriter, r *http.Request) {
	owner, ok := parseID(w, r)
	if !ok {
		return
	}

	audit, err := h.service.VerifyWallet(r.Context(), owner)
	if err != nil {
		wallet.RespondError(w, r, err)
		return
	}

	response.OK(w, audit)
}

// ExportStatement handles POST /admin/wallets/{id}/statement
func (h *Handler) ExportStatement(w http.ResponseWriter, r *http.Request) {
	owner, ok := parseID(w, r)
	if !ok {
		return
	}

	st, err := h.service.ExportStatement(r.Context(), actorFrom(r), owner)
	if err != nil {
		wallet.RespondError(w, r, err)
		return
	}

	response.Created(w, st)
}

// --- Users ---

// UpdateKYC handles PATCH /admin/users/{id}/kyc
func (h *Handler) UpdateKYC(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateKYCRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.SetKYCStatus(r.Context(), actorFrom(r), id, user.KYCStatus(req.Status)); err != nil {
		h.respondUserError(w, r, err)
		return
	}

	response.OK(w, map[string]string{"id": id.String(), "kyc_status": req.Status})
}

// UpdateUserStatus handles PATCH /admin/users/{id}/status
func (h *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req UpdateUserStatusRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.SetUserDisabled(r.Context(), actorFrom(r), id, *req.Disabled, req.Reason); err != nil {
		h.respondUserError(w, r, err)
		return
	}

	response.OK(w, map[string]interface{}{"id": id.String(), "disabled": *req.Disabled})
}

func (h *Handler) respondUserError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, ErrSelfDisable):
		response.BadRequest(w, err.Error())
	default:
		errorhandler.Internal(r.Context(), w, "admin.users", err)
	}
}

// --- Audit Logs ---

// AuditLogs handles GET /admin/audit/logs
func (h *Handler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 50
	offset := 0
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
		offset = v
	}

	filter := AuditFilter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := q.Get("entity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid entity_id")
			return
		}
		filter.EntityID = &id
	}

	logs, total, err := h.service.ListAuditLogs(r.Context(), filter)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "admin.audit_logs", err)
		return
	}

	response.Paginated(w, logs, total, limit, offset)
}

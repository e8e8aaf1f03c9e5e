package wallet

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gaadibazaar/gaadibazaar-api/internal/middleware"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/errorhandler"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Balance handles GET /wallet/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserID(r.Context())
	if owner == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), owner)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	response.OK(w, map[string]interface{}{"balance": balance})
}

// Transactions handles GET /wallet/transactions
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserID(r.Context())
	if owner == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, offset := Pagination(r)
	items, total, err := h.svc.History(r.Context(), owner, limit, offset)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	response.Paginated(w, items, total, limit, offset)
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/balance", h.Balance)
	r.Get("/transactions", h.Transactions)
	return r
}

// Pagination reads limit and offset query parameters with defaults.
func Pagination(r *http.Request) (int, int) {
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

// RespondError maps ledger errors to HTTP responses.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		response.BadRequest(w, "amount must be a positive whole number of tokens")
	case errors.Is(err, ErrInvalidKind):
		response.BadRequest(w, "transaction kind does not match the operation")
	case errors.Is(err, ErrAccountNotFound):
		response.NotFound(w, "wallet not found")
	case errors.Is(err, ErrInsufficientBalance):
		response.PaymentRequired(w, "insufficient tokens")
	case errors.Is(err, ErrReferenceConflict):
		response.Conflict(w, "reference already used with a different amount")
	case errors.Is(err, ErrConcurrencyConflict):
		response.Conflict(w, "wallet is busy, please retry")
	case errors.Is(err, ErrNoStatementStorage):
		response.ServiceUnavailable(w, "statement export is not configured")
	default:
		errorhandler.Internal(r.Context(), w, "wallet", err)
	}
}

package payment

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
	"github.com/gaadibazaar/gaadibazaar-api/internal/middleware"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/errorhandler"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/razorpay"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/response"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/validator"
)

// maxWebhookBytes caps webhook bodies read for signature verification.
const maxWebhookBytes = 1 << 20

// Handler handles payment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates payment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateOrderRequest for POST /payments/orders
type CreateOrderRequest struct {
	Tokens int64 `json:"tokens" validate:"required,gte=1"`
}

// ConfirmRequest for POST /payments/confirm, using the field names the
// checkout widget hands back.
type ConfirmRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// CreateOrder handles POST /payments/orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserID(r.Context())
	if owner == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req CreateOrderRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	checkout, err := h.service.CreateOrder(r.Context(), owner, req.Tokens)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.Created(w, checkout)
}

// Confirm handles POST /payments/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserID(r.Context())
	if owner == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req ConfirmRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	res, err := h.service.ConfirmPayment(r.Context(), owner, req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, res)
}

// ListOrders handles GET /payments/orders
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetUserID(r.Context())
	limit, offset := wallet.Pagination(r)

	items, total, err := h.service.ListOrders(r.Context(), owner, limit, offset)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "payment.list_orders", err)
		return
	}

	response.Paginated(w, items, total, limit, offset)
}

// Webhook handles POST /webhooks/razorpay
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		response.BadRequest(w, "unreadable body")
		return
	}

	res, err := h.service.HandleWebhook(r.Context(), body,
		r.Header.Get(razorpay.SignatureHeader), r.Header.Get(razorpay.EventIDHeader))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	response.OK(w, res)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidSignature):
		response.BadRequest(w, "payment verification failed")
	case errors.Is(err, ErrInvalidTokens):
		response.BadRequest(w, "tokens must be a whole number within the purchase limit")
	case errors.Is(err, ErrOrderNotFound):
		response.NotFound(w, "payment order not found")
	case errors.Is(err, ErrAmountMismatch):
		response.Error(w, http.StatusUnprocessableEntity, "AMOUNT_MISMATCH", "captured amount does not match the order")
	case errors.Is(err, razorpay.ErrMalformedEvent):
		response.BadRequest(w, "malformed event")
	case errors.Is(err, razorpay.ErrNotConfigured):
		response.ServiceUnavailable(w, "payments are not configured")
	case errors.Is(err, ErrProviderUnavailable):
		response.BadGateway(w, "payment provider unavailable, please retry")
	default:
		wallet.RespondError(w, r, err)
	}
}

// Routes returns the authenticated payment router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders", h.ListOrders)
	r.Post("/confirm", h.Confirm)
	return r
}

package payment

import (
	"time"

	"github.com/google/uuid"
)

// Status represents pending order status (matches payment_orders.status check)
type Status string

const (
	StatusCreated Status = "created"
	StatusPaid    Status = "paid"
)

// Event sources recorded in payment_events
const (
	SourceVerify  = "verify"
	SourceWebhook = "webhook"
)

// PendingOrder correlates a token purchase with the provider order.
// OrderID stays nil until the provider answers; Receipt is always set.
type PendingOrder struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Receipt         string     `db:"receipt" json:"receipt"`
	OrderID         *string    `db:"order_id" json:"order_id,omitempty"`
	OwnerID         uuid.UUID  `db:"owner_id" json:"owner_id"`
	TokensRequested int64      `db:"tokens_requested" json:"tokens_requested"`
	Amount          int64      `db:"amount" json:"amount"`
	Currency        string     `db:"currency" json:"currency"`
	Status          Status     `db:"status" json:"status"`
	PaymentID       *string    `db:"payment_id" json:"payment_id,omitempty"`
	PaidAt          *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// IsPaid checks if the order has been credited
func (o *PendingOrder) IsPaid() bool {
	return o.Status == StatusPaid
}

// Checkout is what the client needs to open the provider checkout.
type Checkout struct {
	ID             uuid.UUID `json:"id"`
	OrderID        string    `json:"order_id"`
	Receipt        string    `json:"receipt"`
	KeyID          string    `json:"key_id"`
	Tokens         int64     `json:"tokens"`
	Amount         int64     `json:"amount"`
	AmountSubunits int64     `json:"amount_subunits"`
	Currency       string    `json:"currency"`
	Status         Status    `json:"status"`
}

// ConfirmResult is returned by every confirmation path.
type ConfirmResult struct {
	OrderID    string `json:"order_id"`
	Credited   bool   `json:"credited"`
	NewBalance int64  `json:"new_balance"`
}

// WebhookResult describes how a webhook delivery was handled.
type WebhookResult struct {
	Event     string         `json:"event"`
	Duplicate bool           `json:"duplicate,omitempty"`
	Ignored   bool           `json:"ignored,omitempty"`
	Confirm   *ConfirmResult `json:"confirm,omitempty"`
}

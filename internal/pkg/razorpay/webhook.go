package razorpay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	EventPaymentCaptured = "payment.captured"
	EventOrderPaid       = "order.paid"

	SignatureHeader = "X-Razorpay-Signature"
	EventIDHeader   = "X-Razorpay-Event-Id"
)

var ErrMalformedEvent = errors.New("malformed razorpay event")

// Notes is Razorpay's free-form key/value bag. The API sends an empty
// JSON array instead of an object when no notes are set.
type Notes map[string]string

func (n *Notes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("[]")) {
		*n = nil
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*n = m
	return nil
}

// PaymentEntity is the payment object inside a webhook payload
type PaymentEntity struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Notes    Notes  `json:"notes"`
}

// Event is a webhook delivery
type Event struct {
	Entity    string   `json:"entity"`
	AccountID string   `json:"account_id"`
	Event     string   `json:"event"`
	Contains  []string `json:"contains"`
	Payload   struct {
		Payment *struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment,omitempty"`
		Order *struct {
			Entity Order `json:"entity"`
		} `json:"order,omitempty"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// Capture is what a paid-event tells us about an order.
type Capture struct {
	OrderID   string
	PaymentID string
	Receipt   string
	Amount    int64 // paise
}

// ParseEvent decodes a webhook body
func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.Event == "" {
		return nil, fmt.Errorf("%w: missing event name", ErrMalformedEvent)
	}
	return &ev, nil
}

// IsPaid reports whether the event means money was captured for an order.
func (e *Event) IsPaid() bool {
	return e.Event == EventPaymentCaptured || e.Event == EventOrderPaid
}

// Capture extracts order and payment identifiers from a paid event.
func (e *Event) Capture() (Capture, error) {
	var c Capture
	if e.Payload.Payment != nil {
		p := e.Payload.Payment.Entity
		c.OrderID = p.OrderID
		c.PaymentID = p.ID
		c.Amount = p.Amount
		c.Receipt = p.Notes["receipt"]
	}
	if e.Payload.Order != nil {
		o := e.Payload.Order.Entity
		if c.OrderID == "" {
			c.OrderID = o.ID
		}
		if c.Receipt == "" {
			c.Receipt = o.Receipt
		}
		if c.Amount == 0 {
			c.Amount = o.AmountPaid
		}
	}
	if c.OrderID == "" && c.Receipt == "" {
		return c, fmt.Errorf("%w: no order reference", ErrMalformedEvent)
	}
	if c.PaymentID == "" {
		return c, fmt.Errorf("%w: no payment id", ErrMalformedEvent)
	}
	return c, nil
}

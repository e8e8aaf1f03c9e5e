package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/database"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/errorhandler"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/logger"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/razorpay"
)

// Provider creates orders on the payment gateway.
type Provider interface {
	CreateOrder(ctx context.Context, req razorpay.OrderRequest) (*razorpay.Order, error)
	KeyID() string
}

// Ledger is the part of the wallet service a payment needs.
type Ledger interface {
	GetBalance(ctx context.Context, owner uuid.UUID) (int64, error)
	ApplyTx(ctx context.Context, tx *sqlx.Tx, e wallet.Entry) (*wallet.Transaction, error)
	Announce(ctx context.Context, t *wallet.Transaction)
	RetryPolicy() wallet.RetryPolicy
}

// Config holds token pricing and provider secrets
type Config struct {
	UnitPrice       int64
	Currency        string
	MaxTokens       int64
	KeySecret       string
	WebhookSecret   string
	ProviderTimeout time.Duration
	ReplayTTL       time.Duration
}

// Service turns provider payments into exactly one wallet credit each.
type Service struct {
	repo     Repository
	provider Provider
	ledger   Ledger
	redis    *redis.Client
	cfg      Config
}

// NewService creates payment service. redisClient may be nil.
func NewService(repo Repository, provider Provider, ledger Ledger, redisClient *redis.Client, cfg Config) *Service {
	if cfg.UnitPrice <= 0 {
		cfg.UnitPrice = 100
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 10 * time.Second
	}
	if cfg.ReplayTTL <= 0 {
		cfg.ReplayTTL = 24 * time.Hour
	}
	return &Service{repo: repo, provider: provider, ledger: ledger, redis: redisClient, cfg: cfg}
}

// CreateOrder records a pending purchase of tokens and registers it with
// the provider. The row is written first, so a provider timeout still
// leaves a receipt a later webhook can be matched against.
func (s *Service) CreateOrder(ctx context.Context, owner uuid.UUID, tokens int64) (*Checkout, error) {
	if tokens < 1 || tokens > s.cfg.MaxTokens {
		return nil, ErrInvalidTokens
	}

	id := uuid.New()
	o := &PendingOrder{
		ID:              id,
		Receipt:         "rcpt_" + strings.ReplaceAll(id.String(), "-", ""),
		OwnerID:         owner,
		TokensRequested: tokens,
		Amount:          tokens * s.cfg.UnitPrice,
		Currency:        s.cfg.Currency,
		Status:          StatusCreated,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	pctx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	defer cancel()

	order, err := s.provider.CreateOrder(pctx, razorpay.OrderRequest{
		Amount:   razorpay.ToSubunits(o.Amount),
		Currency: o.Currency,
		Receipt:  o.Receipt,
		Notes: map[string]string{
			"receipt":  o.Receipt,
			"owner_id": owner.String(),
			"tokens":   strconv.FormatInt(tokens, 10),
		},
	})
	if err != nil {
		errorhandler.LogExternalServiceError(ctx, "razorpay", "/v1/orders", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	// The provider order exists now; persist the mapping even if the
	// caller has gone away.
	if err := s.repo.AttachProviderOrder(context.WithoutCancel(ctx), o.ID, order.ID); err != nil {
		return nil, err
	}

	logger.LogInfo(ctx, "payment order created",
		"owner_id", owner.String(), "order_id", order.ID, "receipt", o.Receipt, "tokens", tokens)

	return &Checkout{
		ID:             o.ID,
		OrderID:        order.ID,
		Receipt:        o.Receipt,
		KeyID:          s.provider.KeyID(),
		Tokens:         tokens,
		Amount:         o.Amount,
		AmountSubunits: razorpay.ToSubunits(o.Amount),
		Currency:       o.Currency,
		Status:         StatusCreated,
	}, nil
}

// ConfirmPayment handles the checkout callback relayed by the client.
// When caller is not uuid.Nil the order must belong to it.
func (s *Service) ConfirmPayment(ctx context.Context, caller uuid.UUID, orderID, paymentID, signature string) (*ConfirmResult, error) {
	if !razorpay.VerifyPaymentSignature(s.cfg.KeySecret, orderID, paymentID, signature) {
		logger.LogWarn(ctx, "payment signature mismatch",
			"event", "payment_signature_mismatch", "source", SourceVerify,
			"order_id", orderID, "payment_id", paymentID)
		return nil, ErrInvalidSignature
	}

	payload, _ := json.Marshal(map[string]string{"order_id": orderID, "payment_id": paymentID})
	return s.confirm(ctx, confirmation{
		caller:    caller,
		orderID:   orderID,
		paymentID: paymentID,
		source:    SourceVerify,
		payload:   payload,
	})
}

// HandleWebhook verifies and applies a provider webhook delivery.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature, eventID string) (*WebhookResult, error) {
	if !razorpay.VerifyWebhookSignature(s.cfg.WebhookSecret, body, signature) {
		logger.LogWarn(ctx, "payment signature mismatch",
			"event", "payment_signature_mismatch", "source", SourceWebhook, "event_id", eventID)
		return nil, ErrInvalidSignature
	}

	replayKey := ""
	if eventID != "" {
		key := "razorpay:event:" + eventID
		claimed, err := database.ClaimKey(ctx, s.redis, key, s.cfg.ReplayTTL)
		switch {
		case err != nil:
			// The database gate still holds without the cache.
			logger.LogWarn(ctx, "webhook replay cache unavailable", "error", err.Error())
		case !claimed:
			logger.LogInfo(ctx, "duplicate webhook delivery", "event_id", eventID)
			return &WebhookResult{Duplicate: true}, nil
		default:
			replayKey = key
		}
	}

	result, err := s.applyWebhook(ctx, body, eventID)
	if err != nil && replayKey != "" {
		database.ReleaseKey(context.WithoutCancel(ctx), s.redis, replayKey)
	}
	return result, err
}

func (s *Service) applyWebhook(ctx context.Context, body []byte, eventID string) (*WebhookResult, error) {
	ev, err := razorpay.ParseEvent(body)
	if err != nil {
		return nil, err
	}
	if !ev.IsPaid() {
		return &WebhookResult{Event: ev.Event, Ignored: true}, nil
	}

	capture, err := ev.Capture()
	if err != nil {
		return nil, err
	}

	res, err := s.confirm(ctx, confirmation{
		orderID:   capture.OrderID,
		receipt:   capture.Receipt,
		paymentID: capture.PaymentID,
		subunits:  capture.Amount,
		source:    SourceWebhook,
		eventID:   eventID,
		payload:   body,
	})
	if err != nil {
		return nil, err
	}
	return &WebhookResult{Event: ev.Event, Confirm: res}, nil
}

type confirmation struct {
	caller    uuid.UUID
	orderID   string
	receipt   string
	paymentID string
	subunits  int64 // zero when the caller reports no amount
	source    string
	eventID   string
	payload   []byte
}

// confirm is the single chokepoint for both the client verify and the
// webhook. The order row lock plus the conditional status update make the
// created -> paid transition and its credit happen once.
func (s *Service) confirm(ctx context.Context, c confirmation) (*ConfirmResult, error) {
	var (
		order  *PendingOrder
		credit *wallet.Transaction
	)
	err := s.ledger.RetryPolicy().Do(ctx, func() error {
		order, credit = nil, nil
		err := s.repo.RunInTx(ctx, func(tx *sqlx.Tx) error {
			o, err := s.repo.GetForUpdateTx(ctx, tx, c.orderID, c.receipt)
			if err != nil {
				return err
			}
			if c.caller != uuid.Nil && o.OwnerID != c.caller {
				return ErrOrderNotFound
			}
			order = o
			if o.IsPaid() {
				return nil
			}
			if c.subunits != 0 && c.subunits != razorpay.ToSubunits(o.Amount) {
				return ErrAmountMismatch
			}

			providerOrderID := c.orderID
			if o.OrderID != nil {
				providerOrderID = *o.OrderID
			}
			moved, err := s.repo.MarkPaidTx(ctx, tx, o.ID, providerOrderID, c.paymentID)
			if err != nil || !moved {
				return err
			}

			credit, err = s.ledger.ApplyTx(ctx, tx, wallet.Entry{
				OwnerID:   o.OwnerID,
				Change:    o.TokensRequested,
				Kind:      wallet.KindPurchase,
				Reference: providerOrderID,
			})
			if err != nil {
				return err
			}
			return s.repo.RecordEventTx(ctx, tx, o.ID, c.source, c.eventID, c.payload)
		})
		return wallet.ClassifyTxError(err)
	})
	if err != nil {
		if errors.Is(err, ErrAmountMismatch) && order != nil {
			captured, whole := razorpay.FromSubunits(c.subunits)
			logger.LogError(ctx, err, "captured amount mismatch",
				"order_id", c.orderID, "receipt", c.receipt, "currency", order.Currency,
				"expected_amount", order.Amount, "captured_amount", captured,
				"captured_subunits", c.subunits, "whole_units", whole)
		}
		return nil, err
	}

	res := &ConfirmResult{OrderID: c.orderID}
	if order.OrderID != nil {
		res.OrderID = *order.OrderID
	}

	if credit != nil && !credit.Replayed {
		s.ledger.Announce(ctx, credit)
		res.Credited = true
		res.NewBalance = credit.BalanceAfter
		logger.LogInfo(ctx, "payment credited",
			"order_id", res.OrderID, "owner_id", order.OwnerID.String(),
			"tokens", order.TokensRequested, "source", c.source)
		return res, nil
	}

	balance, err := s.ledger.GetBalance(ctx, order.OwnerID)
	if err != nil {
		return nil, err
	}
	res.NewBalance = balance
	return res, nil
}

// ListOrders returns the owner's token purchase orders, newest first.
func (s *Service) ListOrders(ctx context.Context, owner uuid.UUID, limit, offset int) ([]*PendingOrder, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByOwner(ctx, owner, limit, offset)
}

package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/database"
)

// Repository defines pending order data access
type Repository interface {
	RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	Create(ctx context.Context, o *PendingOrder) error
	AttachProviderOrder(ctx context.Context, id uuid.UUID, orderID string) error
	// GetForUpdateTx locks the order matched by provider order id or, when
	// that is empty or unknown, by receipt.
	GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, orderID, receipt string) (*PendingOrder, error)
	// MarkPaidTx moves the order from created to paid and reports whether
	// this call made the transition.
	MarkPaidTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, orderID, paymentID string) (bool, error)
	RecordEventTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, source, eventID string, payload []byte) error
	ListByOwner(ctx context.Context, owner uuid.UUID, limit, offset int) ([]*PendingOrder, int, error)
}

type repository struct {
	db     *sqlx.DB
	txOpts database.TxOptions
}

// NewRepository creates payment repository
func NewRepository(db *sqlx.DB, opts database.TxOptions) Repository {
	return &repository{db: db, txOpts: opts}
}

const orderColumns = `id, receipt, order_id, owner_id, tokens_requested, amount, currency, status, payment_id, paid_at, created_at, updated_at`

func (r *repository) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return database.RunInTx(ctx, r.db, r.txOpts, fn)
}

func (r *repository) Create(ctx context.Context, o *PendingOrder) error {
	query := `
		INSERT INTO payment_orders (id, receipt, owner_id, tokens_requested, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		o.ID, o.Receipt, o.OwnerID, o.TokensRequested, o.Amount, o.Currency, o.Status,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create pending order: %w", err)
	}
	return nil
}

func (r *repository) AttachProviderOrder(ctx context.Context, id uuid.UUID, orderID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payment_orders
		SET order_id = $2, updated_at = NOW()
		WHERE id = $1 AND order_id IS NULL
	`, id, orderID)
	if err != nil {
		return fmt.Errorf("attach provider order: %w", err)
	}
	return nil
}

func (r *repository) GetForUpdateTx(ctx context.Context, tx *sqlx.Tx, orderID, receipt string) (*PendingOrder, error) {
	var o PendingOrder
	if orderID != "" {
		err := tx.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM payment_orders WHERE order_id = $1 FOR UPDATE`, orderID)
		if err == nil {
			return &o, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	if receipt != "" {
		err := tx.GetContext(ctx, &o, `SELECT `+orderColumns+` FROM payment_orders WHERE receipt = $1 FOR UPDATE`, receipt)
		if err == nil {
			return &o, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	return nil, ErrOrderNotFound
}

func (r *repository) MarkPaidTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, orderID, paymentID string) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE payment_orders
		SET status = 'paid',
		    order_id = COALESCE(order_id, NULLIF($2, '')),
		    payment_id = $3,
		    paid_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND status = 'created'
	`, id, orderID, paymentID)
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *repository) RecordEventTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, source, eventID string, payload []byte) error {
	var evID interface{}
	if eventID != "" {
		evID = eventID
	}
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO payment_events (order_ref, source, event_id, payload)
		VALUES ($1, $2, $3, $4::jsonb)
	`, id, source, evID, string(payload))
	if err != nil {
		return fmt.Errorf("record payment event: %w", err)
	}
	return nil
}

func (r *repository) ListByOwner(ctx context.Context, owner uuid.UUID, limit, offset int) ([]*PendingOrder, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payment_orders WHERE owner_id = $1`, owner); err != nil {
		return nil, 0, err
	}

	items := []*PendingOrder{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+orderColumns+`
		FROM payment_orders
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, owner, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

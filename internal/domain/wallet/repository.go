package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/database"
)

// Repository is the ledger storage. Every mutation goes through ApplyTx,
// which locks the wallet row, checks the reference, and writes the balance
// and its transaction row together.
type Repository interface {
	// OpenTx creates an empty wallet for owner inside the caller's transaction.
	OpenTx(ctx context.Context, tx *sqlx.Tx, owner uuid.UUID) error
	GetBalance(ctx context.Context, owner uuid.UUID) (int64, error)
	// ApplyTx applies e inside the caller's transaction.
	ApplyTx(ctx context.Context, tx *sqlx.Tx, e Entry) (*Transaction, error)
	// Apply applies e in its own transaction.
	Apply(ctx context.Context, e Entry) (*Transaction, error)
	ListTransactions(ctx context.Context, owner uuid.UUID, limit, offset int) ([]Transaction, int, error)
	// Snapshot returns the stored balance and the full log in id order,
	// read while writers for owner are blocked.
	Snapshot(ctx context.Context, owner uuid.UUID) (int64, []Transaction, error)
}

type repository struct {
	db     *sqlx.DB
	txOpts database.TxOptions
}

// NewRepository creates a Postgres ledger repository
func NewRepository(db *sqlx.DB, opts database.TxOptions) Repository {
	return &repository{db: db, txOpts: opts}
}

const transactionColumns = `id, owner_id, change, balance_after, kind, reference, created_at`

func (r *repository) OpenTx(ctx context.Context, tx *sqlx.Tx, owner uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (owner_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (owner_id) DO NOTHING
	`, owner)
	if err != nil {
		return fmt.Errorf("open wallet: %w", err)
	}
	return nil
}

func (r *repository) GetBalance(ctx context.Context, owner uuid.UUID) (int64, error) {
	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE owner_id = $1`, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return balance, err
}

func (r *repository) lockWallet(ctx context.Context, tx *sqlx.Tx, owner uuid.UUID) (int64, error) {
	var balance int64
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE owner_id = $1 FOR UPDATE`, owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return balance, err
}

func (r *repository) findByReference(ctx context.Context, tx *sqlx.Tx, e Entry) (*Transaction, error) {
	var t Transaction
	err := tx.GetContext(ctx, &t, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		WHERE owner_id = $1 AND kind = $2 AND reference = $3
	`, e.OwnerID, e.Kind, e.Reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) ApplyTx(ctx context.Context, tx *sqlx.Tx, e Entry) (*Transaction, error) {
	balance, err := r.lockWallet(ctx, tx, e.OwnerID)
	if err != nil {
		return nil, err
	}

	if e.Reference != "" {
		prior, err := r.findByReference(ctx, tx, e)
		if err != nil {
			return nil, err
		}
		if prior != nil {
			if prior.Change != e.Change {
				return nil, ErrReferenceConflict
			}
			prior.Replayed = true
			return prior, nil
		}
	}

	next := balance + e.Change
	if next < 0 {
		return nil, ErrInsufficientBalance
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = $2, updated_at = NOW() WHERE owner_id = $1`,
		e.OwnerID, next,
	); err != nil {
		return nil, err
	}

	var ref interface{}
	if e.Reference != "" {
		ref = e.Reference
	}

	var t Transaction
	err = tx.GetContext(ctx, &t, `
		INSERT INTO wallet_transactions (owner_id, change, balance_after, kind, reference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+transactionColumns,
		e.OwnerID, e.Change, next, e.Kind, ref,
	)
	if err != nil {
		if database.IsUniqueViolation(err, "wallet_transactions_reference_key") {
			return nil, ErrConcurrencyConflict
		}
		return nil, err
	}
	return &t, nil
}

func (r *repository) Apply(ctx context.Context, e Entry) (*Transaction, error) {
	var out *Transaction
	err := database.RunInTx(ctx, r.db, r.txOpts, func(tx *sqlx.Tx) error {
		t, err := r.ApplyTx(ctx, tx, e)
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, ClassifyTxError(err)
	}
	return out, nil
}

func (r *repository) ListTransactions(ctx context.Context, owner uuid.UUID, limit, offset int) ([]Transaction, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM wallet_transactions WHERE owner_id = $1`, owner,
	); err != nil {
		return nil, 0, err
	}

	items := []Transaction{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		WHERE owner_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`, owner, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Snapshot(ctx context.Context, owner uuid.UUID) (int64, []Transaction, error) {
	var (
		balance int64
		items   []Transaction
	)
	err := database.RunInTx(ctx, r.db, r.txOpts, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE owner_id = $1 FOR SHARE`, owner)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccountNotFound
		}
		if err != nil {
			return err
		}
		return tx.SelectContext(ctx, &items, `
			SELECT `+transactionColumns+`
			FROM wallet_transactions
			WHERE owner_id = $1
			ORDER BY id ASC
		`, owner)
	})
	if err != nil {
		return 0, nil, ClassifyTxError(err)
	}
	return balance, items, nil
}

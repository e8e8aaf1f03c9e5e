package unlock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/database"
)

// Repository stores unlock facts
type Repository interface {
	// RunInTx runs fn in one ledger transaction.
	RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	// ClaimTx inserts the fact unless it already exists and reports whether
	// this call created it. A concurrent claim for the same pair waits on
	// the primary key until the other transaction finishes.
	ClaimTx(ctx context.Context, tx *sqlx.Tx, owner, listingID uuid.UUID, tokens int64) (bool, error)
	Exists(ctx context.Context, owner, listingID uuid.UUID) (bool, error)
	ListByOwner(ctx context.Context, owner uuid.UUID, limit, offset int) ([]UnlockedListing, int, error)
}

type repository struct {
	db     *sqlx.DB
	txOpts database.TxOptions
}

// NewRepository creates unlock repository
func NewRepository(db *sqlx.DB, opts database.TxOptions) Repository {
	return &repository{db: db, txOpts: opts}
}

func (r *repository) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return database.RunInTx(ctx, r.db, r.txOpts, fn)
}

func (r *repository) ClaimTx(ctx context.Context, tx *sqlx.Tx, owner, listingID uuid.UUID, tokens int64) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO unlock_facts (owner_id, listing_id, tokens_used)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT unlock_facts_pkey DO NOTHING
	`, owner, listingID, tokens)
	if err != nil {
		if database.IsForeignKeyViolation(err, "unlock_facts_owner_id_fkey") {
			return false, wallet.ErrAccountNotFound
		}
		if database.IsForeignKeyViolation(err, "unlock_facts_listing_id_fkey") {
			return false, ErrListingNotFound
		}
		return false, fmt.Errorf("claim unlock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *repository) Exists(ctx context.Context, owner, listingID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM unlock_facts WHERE owner_id = $1 AND listing_id = $2)`,
		owner, listingID)
	return exists, err
}

func (r *repository) ListByOwner(ctx context.Context, owner uuid.UUID, limit, offset int) ([]UnlockedListing, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM unlock_facts WHERE owner_id = $1`, owner); err != nil {
		return nil, 0, err
	}

	items := []UnlockedListing{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT f.listing_id, l.title, l.location, l.seller_contact, f.tokens_used, f.created_at
		FROM unlock_facts f
		JOIN listings l ON l.id = f.listing_id
		WHERE f.owner_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3
	`, owner, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

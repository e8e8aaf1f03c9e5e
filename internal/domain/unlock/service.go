package unlock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/listing"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/logger"
)

// ListingReader is the read side of the listing store.
type ListingReader interface {
	GetListing(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
}

// Ledger is the part of the wallet service an unlock needs.
type Ledger interface {
	ApplyTx(ctx context.Context, tx *sqlx.Tx, e wallet.Entry) (*wallet.Transaction, error)
	Announce(ctx context.Context, t *wallet.Transaction)
	RetryPolicy() wallet.RetryPolicy
}

// Service charges one token per (buyer, listing) and reveals the contact.
type Service struct {
	repo     Repository
	listings ListingReader
	ledger   Ledger
}

// NewService creates unlock service
func NewService(repo Repository, listings ListingReader, ledger Ledger) *Service {
	return &Service{repo: repo, listings: listings, ledger: ledger}
}

// Unlock returns the seller contact for listingID, debiting owner's wallet
// the first time only. The fact insert and the debit commit together, so a
// pair is never charged twice and a failed debit leaves no fact behind.
func (s *Service) Unlock(ctx context.Context, owner, listingID uuid.UUID) (*Result, error) {
	l, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, listing.ErrListingNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if l.SellerID == owner {
		return &Result{ListingID: listingID, Contact: l.SellerContact, OwnListing: true}, nil
	}
	if !l.IsUnlockable() {
		return nil, ErrListingNotFound
	}

	var (
		debit   *wallet.Transaction
		claimed bool
	)
	err = s.ledger.RetryPolicy().Do(ctx, func() error {
		debit, claimed = nil, false
		err := s.repo.RunInTx(ctx, func(tx *sqlx.Tx) error {
			ok, err := s.repo.ClaimTx(ctx, tx, owner, listingID, TokensPerUnlock)
			if err != nil || !ok {
				return err
			}
			claimed = true

			debit, err = s.ledger.ApplyTx(ctx, tx, wallet.Entry{
				OwnerID:   owner,
				Change:    -TokensPerUnlock,
				Kind:      wallet.KindUnlockDebit,
				Reference: listingID.String(),
			})
			return err
		})
		return wallet.ClassifyTxError(err)
	})
	if err != nil {
		if errors.Is(err, wallet.ErrInsufficientBalance) {
			logger.LogInfo(ctx, "unlock refused: insufficient tokens",
				"owner_id", owner.String(), "listing_id", listingID.String())
		}
		return nil, err
	}

	res := &Result{ListingID: listingID, Contact: l.SellerContact, AlreadyUnlocked: !claimed}
	if claimed && debit != nil && !debit.Replayed {
		s.ledger.Announce(ctx, debit)
		res.TokensCharged = -debit.Change
		balance := debit.BalanceAfter
		res.BalanceAfter = &balance
		logger.LogInfo(ctx, "listing unlocked",
			"owner_id", owner.String(), "listing_id", listingID.String(), "balance_after", balance)
	}
	return res, nil
}

// IsUnlocked reports whether owner already paid for listingID.
func (s *Service) IsUnlocked(ctx context.Context, owner, listingID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, owner, listingID)
}

// ListUnlocked returns the listings owner has unlocked, newest first.
func (s *Service) ListUnlocked(ctx context.Context, owner uuid.UUID, limit, offset int) ([]UnlockedListing, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByOwner(ctx, owner, limit, offset)
}

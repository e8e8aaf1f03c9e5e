package unlock

import (
	"time"

	"github.com/google/uuid"
)

// TokensPerUnlock is the price of revealing one seller contact.
const TokensPerUnlock int64 = 1

// Fact records that owner has paid for listing's contact. At most one
// exists per (owner, listing).
type Fact struct {
	OwnerID    uuid.UUID `db:"owner_id" json:"owner_id"`
	ListingID  uuid.UUID `db:"listing_id" json:"listing_id"`
	TokensUsed int64     `db:"tokens_used" json:"tokens_used"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// UnlockedListing is a fact joined with the listing it unlocked.
type UnlockedListing struct {
	ListingID     uuid.UUID `db:"listing_id" json:"listing_id"`
	Title         string    `db:"title" json:"title"`
	Location      string    `db:"location" json:"location"`
	SellerContact string    `db:"seller_contact" json:"seller_contact"`
	TokensUsed    int64     `db:"tokens_used" json:"tokens_used"`
	UnlockedAt    time.Time `db:"created_at" json:"unlocked_at"`
}

// Result is returned by Unlock.
type Result struct {
	ListingID       uuid.UUID `json:"listing_id"`
	Contact         string    `json:"contact"`
	AlreadyUnlocked bool      `json:"already_unlocked"`
	TokensCharged   int64     `json:"tokens_charged"`
	// OwnListing is set when the seller asked for their own contact.
	OwnListing bool `json:"own_listing,omitempty"`
	// BalanceAfter is set when this call debited the wallet.
	BalanceAfter *int64 `json:"balance_after,omitempty"`
}

package listing

import (
	"time"

	"github.com/google/uuid"
)

// Status represents moderation state (matches listings.status check)
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusSold     Status = "sold"
)

// Listing is an equipment or vehicle ad. SellerContact is only revealed
// through an unlock.
type Listing struct {
	ID            uuid.UUID `db:"id"`
	SellerID      uuid.UUID `db:"seller_id"`
	Title         string    `db:"title"`
	Category      string    `db:"category"`
	Description   string    `db:"description"`
	Price         int64     `db:"price"`
	Location      string    `db:"location"`
	SellerContact string    `db:"seller_contact"`
	Status        Status    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// IsUnlockable reports whether buyers may pay to see the contact.
func (l *Listing) IsUnlockable() bool {
	return l.Status == StatusApproved
}

// Filter narrows public listing queries
type Filter struct {
	Category string
	Location string
	Status   Status
	SellerID *uuid.UUID
}

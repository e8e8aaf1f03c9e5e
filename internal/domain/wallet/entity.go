package wallet

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a ledger entry (matches wallet_transactions.kind check)
type Kind string

const (
	KindPurchase    Kind = "purchase"
	KindAdminCredit Kind = "admin_credit"
	KindRefund      Kind = "refund"
	KindUnlockDebit Kind = "unlock_debit"
)

// IsCredit reports whether entries of this kind add tokens.
func (k Kind) IsCredit() bool {
	switch k {
	case KindPurchase, KindAdminCredit, KindRefund:
		return true
	}
	return false
}

// IsDebit reports whether entries of this kind remove tokens.
func (k Kind) IsDebit() bool {
	return k == KindUnlockDebit
}

type Wallet struct {
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Balance   int64     `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Entry is a requested balance change. Change is signed.
type Entry struct {
	OwnerID   uuid.UUID
	Change    int64
	Kind      Kind
	Reference string
}

// Transaction is an applied, immutable ledger row.
type Transaction struct {
	ID           int64     `db:"id" json:"id"`
	OwnerID      uuid.UUID `db:"owner_id" json:"owner_id"`
	Change       int64     `db:"change" json:"change"`
	BalanceAfter int64     `db:"balance_after" json:"balance_after"`
	Kind         Kind      `db:"kind" json:"kind"`
	Reference    *string   `db:"reference" json:"reference,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	// Replayed is set when the entry matched an earlier transaction with
	// the same reference and nothing was written.
	Replayed bool `db:"-" json:"replayed,omitempty"`
}

// Audit is the result of replaying an owner's log against the stored balance.
type Audit struct {
	OwnerID         uuid.UUID `json:"owner_id"`
	StoredBalance   int64     `json:"stored_balance"`
	ReplayedBalance int64     `json:"replayed_balance"`
	Transactions    int       `json:"transactions"`
	Consistent      bool      `json:"consistent"`
	// FirstMismatchID is the first transaction whose balance_after disagrees
	// with the running sum, or zero.
	FirstMismatchID int64 `json:"first_mismatch_id,omitempty"`
}

// Statement describes an exported CSV ledger statement.
type Statement struct {
	Key          string `json:"key"`
	URL          string `json:"url"`
	Transactions int    `json:"transactions"`
	Balance      int64  `json:"balance"`
}

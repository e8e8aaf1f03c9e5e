package admin

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audited actions
const (
	ActionWalletCredit = "wallet.credit"
	ActionWalletRefund = "wallet.refund"
	ActionWalletDebit  = "wallet.debit"
	ActionStatement    = "wallet.statement"
	ActionKYC          = "user.kyc"
	ActionDisable      = "user.status"
)

// AuditLog represents an admin action log entry
type AuditLog struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	AdminID    uuid.UUID       `db:"admin_id" json:"admin_id"`
	Action     string          `db:"action" json:"action"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   uuid.NullUUID   `db:"entity_id" json:"entity_id,omitempty"`
	Details    json.RawMessage `db:"details" json:"details,omitempty"`
	Reason     sql.NullString  `db:"reason" json:"reason,omitempty"`
	IPAddress  sql.NullString  `db:"ip_address" json:"ip_address,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// AuditFilter for filtering audit logs
type AuditFilter struct {
	Action     string
	EntityType string
	EntityID   *uuid.UUID
	Limit      int
	Offset     int
}

// AdjustOp is an admin wallet operation
type AdjustOp string

const (
	OpCredit AdjustOp = "credit"
	OpRefund AdjustOp = "refund"
	OpDebit  AdjustOp = "debit"
)

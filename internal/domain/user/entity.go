package user

import (
	"time"

	"github.com/google/uuid"
)

// Role represents account role (matches accounts.role check)
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleBroker Role = "broker"
	RoleAdmin  Role = "admin"
)

// KYCStatus tracks identity verification of sellers and brokers
type KYCStatus string

const (
	KYCNone     KYCStatus = "none"
	KYCPending  KYCStatus = "pending"
	KYCVerified KYCStatus = "verified"
	KYCRejected KYCStatus = "rejected"
)

// User represents an account row
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Phone        string    `db:"phone" json:"phone"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	KYCStatus    KYCStatus `db:"kyc_status" json:"kyc_status"`
	IsDisabled   bool      `db:"is_disabled" json:"is_disabled"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanSell returns true if user may post listings
func (u *User) CanSell() bool {
	return u.Role == RoleSeller || u.Role == RoleBroker || u.Role == RoleAdmin
}

// IsActive returns true if the account is not soft-disabled
func (u *User) IsActive() bool {
	return !u.IsDisabled
}

// ValidRoles returns list of roles open for self-registration
func ValidRoles() []Role {
	return []Role{RoleBuyer, RoleSeller, RoleBroker}
}

// IsValidRole checks if role is valid for registration
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if string(r) == role {
			return true
		}
	}
	return false
}

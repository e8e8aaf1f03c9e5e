package admin

import (
	"github.com/google/uuid"

	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
)

// AdjustWalletRequest for POST /admin/wallets/{id}/credit|refund|debit
type AdjustWalletRequest struct {
	Amount    int64  `json:"amount" validate:"required,gte=1,lte=1000000"`
	Reference string `json:"reference" validate:"required,min=3,max=64"`
	Reason    string `json:"reason" validate:"required,min=3,max=500"`
}

// UpdateKYCRequest for PATCH /admin/users/{id}/kyc
type UpdateKYCRequest struct {
	Status string `json:"status" validate:"required,kyc_status"`
}

// UpdateUserStatusRequest for PATCH /admin/users/{id}/status
type UpdateUserStatusRequest struct {
	Disabled *bool  `json:"disabled" validate:"required"`
	Reason   string `json:"reason" validate:"omitempty,max=500"`
}

// WalletView is the admin view of a wallet
type WalletView struct {
	OwnerID uuid.UUID            `json:"owner_id"`
	Balance int64                `json:"balance"`
	Recent  []wallet.Transaction `json:"recent"`
	Total   int                  `json:"total_transactions"`
}

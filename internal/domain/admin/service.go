package admin

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/user"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/logger"
)

// Ledger is the wallet surface available to admins
type Ledger interface {
	GetBalance(ctx context.Context, owner uuid.UUID) (int64, error)
	Credit(ctx context.Context, owner uuid.UUID, amount int64, kind wallet.Kind, reference string) (*wallet.Transaction, error)
	Debit(ctx context.Context, owner uuid.UUID, amount int64, kind wallet.Kind, reference string) (*wallet.Transaction, error)
	History(ctx context.Context, owner uuid.UUID, limit, offset int) ([]wallet.Transaction, int, error)
	Verify(ctx context.Context, owner uuid.UUID) (*wallet.Audit, error)
	ExportStatement(ctx context.Context, owner uuid.UUID) (*wallet.Statement, error)
}

// Service handles admin business logic
type Service struct {
	repo   Repository
	ledger Ledger
	users  user.Repository
}

// NewService creates admin service
func NewService(repo Repository, ledger Ledger, users user.Repository) *Service {
	return &Service{repo: repo, ledger: ledger, users: users}
}

// Actor identifies the admin performing an action
type Actor struct {
	ID uuid.UUID
	IP string
}

// --- Wallets ---

// GetWallet returns balance and the latest ledger entries
func (s *Service) GetWallet(ctx context.Context, owner uuid.UUID) (*WalletView, error) {
	if err := s.requireAccount(ctx, owner); err != nil {
		return nil, err
	}
	balance, err := s.ledger.GetBalance(ctx, owner)
	if err != nil {
		return nil, err
	}
	recent, total, err := s.ledger.History(ctx, owner, 20, 0)
	if err != nil {
		return nil, err
	}
	return &WalletView{OwnerID: owner, Balance: balance, Recent: recent, Total: total}, nil
}

// ManualReferencePrefix namespaces admin references so they never share a
// ledger key with unlock debits, which are keyed by listing id.
const ManualReferencePrefix = "admin:"

// AdjustWallet credits, refunds or debits a wallet. Repeating a request
// with the same reference is a no-op.
func (s *Service) AdjustWallet(ctx context.Context, actor Actor, owner uuid.UUID, op AdjustOp, req *AdjustWalletRequest) (*wallet.Transaction, error) {
	if err := s.requireAccount(ctx, owner); err != nil {
		return nil, err
	}

	var (
		t      *wallet.Transaction
		err    error
		action string
	)
	ref := ManualReferencePrefix + req.Reference
	switch op {
	case OpCredit:
		action = ActionWalletCredit
		t, err = s.ledger.Credit(ctx, owner, req.Amount, wallet.KindAdminCredit, ref)
	case OpRefund:
		action = ActionWalletRefund
		t, err = s.ledger.Credit(ctx, owner, req.Amount, wallet.KindRefund, ref)
	case OpDebit:
		action = ActionWalletDebit
		t, err = s.ledger.Debit(ctx, owner, req.Amount, wallet.KindUnlockDebit, ref)
	default:
		return nil, ErrUnknownOperation
	}
	if err != nil {
		return nil, err
	}

	if !t.Replayed {
		s.logAction(ctx, actor, action, "wallet", owner, req.Reason, map[string]interface{}{
			"amount":         req.Amount,
			"reference":      req.Reference,
			"transaction_id": t.ID,
			"balance_after":  t.BalanceAfter,
		})
	}
	return t, nil
}

// VerifyWallet replays the ledger of one wallet
func (s *Service) VerifyWallet(ctx context.Context, owner uuid.UUID) (*wallet.Audit, error) {
	if err := s.requireAccount(ctx, owner); err != nil {
		return nil, err
	}
	return s.ledger.Verify(ctx, owner)
}

// ExportStatement writes the wallet statement to storage
func (s *Service) ExportStatement(ctx context.Context, actor Actor, owner uuid.UUID) (*wallet.Statement, error) {
	if err := s.requireAccount(ctx, owner); err != nil {
		return nil, err
	}
	st, err := s.ledger.ExportStatement(ctx, owner)
	if err != nil {
		return nil, err
	}
	s.logAction(ctx, actor, ActionStatement, "wallet", owner, "", map[string]interface{}{
		"key":          st.Key,
		"transactions": st.Transactions,
	})
	return st, nil
}

func (s *Service) requireAccount(ctx context.Context, owner uuid.UUID) error {
	ok, err := s.users.Exists(ctx, owner)
	if err != nil {
		return err
	}
	if !ok {
		return wallet.ErrAccountNotFound
	}
	return nil
}

// --- Users ---

// SetKYCStatus records the outcome of a seller or broker verification
func (s *Service) SetKYCStatus(ctx context.Context, actor Actor, id uuid.UUID, status user.KYCStatus) error {
	if err := s.users.UpdateKYCStatus(ctx, id, status); err != nil {
		return err
	}
	s.logAction(ctx, actor, ActionKYC, "user", id, "", map[string]interface{}{"kyc_status": status})
	return nil
}

// SetUserDisabled soft-disables or re-enables an account. The wallet and
// its history are kept either way.
func (s *Service) SetUserDisabled(ctx context.Context, actor Actor, id uuid.UUID, disabled bool, reason string) error {
	if disabled && id == actor.ID {
		return ErrSelfDisable
	}
	if err := s.users.SetDisabled(ctx, id, disabled); err != nil {
		return err
	}
	s.logAction(ctx, actor, ActionDisable, "user", id, reason, map[string]interface{}{"disabled": disabled})
	return nil
}

// --- Audit Logs ---

// ListAuditLogs returns audit logs
func (s *Service) ListAuditLogs(ctx context.Context, filter AuditFilter) ([]*AuditLog, int, error) {
	return s.repo.ListAuditLogs(ctx, filter)
}

// logAction creates an audit log entry
func (s *Service) logAction(ctx context.Context, actor Actor, action, entityType string, entityID uuid.UUID, reason string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	entry := &AuditLog{
		ID:         uuid.New(),
		AdminID:    actor.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   uuid.NullUUID{UUID: entityID, Valid: entityID != uuid.Nil},
		Details:    detailsJSON,
		Reason:     sql.NullString{String: reason, Valid: reason != ""},
		IPAddress:  sql.NullString{String: actor.IP, Valid: actor.IP != ""},
	}

	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		// Log error but don't fail the operation
		logger.LogError(ctx, err, "Failed to create audit log", "action", action)
	}
}

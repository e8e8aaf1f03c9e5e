package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
)

// EventType for WebSocket messages
type EventType string

const EventBalanceChanged EventType = "wallet.balance_changed"

// BalanceEvent is pushed after every committed ledger entry
type BalanceEvent struct {
	Type          EventType   `json:"type"`
	TransactionID int64       `json:"transaction_id"`
	Kind          wallet.Kind `json:"kind"`
	Change        int64       `json:"change"`
	Balance       int64       `json:"balance"`
	Reference     *string     `json:"reference,omitempty"`
	At            time.Time   `json:"at"`
}

// Sender delivers a payload to a user's sockets
type Sender interface {
	SendToUser(userID uuid.UUID, payload any) error
}

// BalanceNotifier pushes wallet changes to the owner's sockets
type BalanceNotifier struct {
	sender Sender
}

// NewBalanceNotifier creates a wallet.BalanceNotifier backed by the hub
func NewBalanceNotifier(sender Sender) *BalanceNotifier {
	return &BalanceNotifier{sender: sender}
}

// NotifyBalance implements wallet.BalanceNotifier
func (n *BalanceNotifier) NotifyBalance(_ context.Context, t wallet.Transaction) {
	err := n.sender.SendToUser(t.OwnerID, BalanceEvent{
		Type:          EventBalanceChanged,
		TransactionID: t.ID,
		Kind:          t.Kind,
		Change:        t.Change,
		Balance:       t.BalanceAfter,
		Reference:     t.Reference,
		At:            t.CreatedAt,
	})
	if err != nil {
		log.Warn().Err(err).Str("owner_id", t.OwnerID.String()).Msg("balance event publish failed")
	}
}

var _ wallet.BalanceNotifier = (*BalanceNotifier)(nil)

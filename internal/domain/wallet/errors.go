package wallet

import (
	"errors"
	"fmt"

	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/database"
)

var (
	ErrAccountNotFound     = errors.New("wallet not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrReferenceConflict   = errors.New("reference conflicts with different amount")
	ErrConcurrencyConflict = errors.New("concurrent ledger update, retry")
	ErrNoStatementStorage  = errors.New("statement storage is not configured")
)

// ClassifyTxError maps Postgres lock and serialization failures to
// ErrConcurrencyConflict so callers can retry them. Other errors pass through.
func ClassifyTxError(err error) error {
	if err == nil || errors.Is(err, ErrConcurrencyConflict) {
		return err
	}
	if database.IsRetryable(err) {
		return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
	}
	return err
}

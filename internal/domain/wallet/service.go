package wallet

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/storage"
)

// BalanceNotifier is told about every committed, non-replayed transaction.
type BalanceNotifier interface {
	NotifyBalance(ctx context.Context, t Transaction)
}

type Service struct {
	repo       Repository
	notifier   BalanceNotifier
	statements storage.Storage
	retry      RetryPolicy
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, retry: DefaultRetryPolicy()}
}

// SetNotifier sets the realtime balance notifier
func (s *Service) SetNotifier(n BalanceNotifier) {
	s.notifier = n
}

// SetStatementStorage sets where exported statements are written
func (s *Service) SetStatementStorage(st storage.Storage) {
	s.statements = st
}

// SetRetryPolicy overrides the conflict retry policy
func (s *Service) SetRetryPolicy(p RetryPolicy) {
	s.retry = p
}

// RetryPolicy returns the policy used for ledger retries.
func (s *Service) RetryPolicy() RetryPolicy {
	return s.retry
}

func (s *Service) GetBalance(ctx context.Context, owner uuid.UUID) (int64, error) {
	return s.repo.GetBalance(ctx, owner)
}

// Credit adds amount tokens. A repeated reference returns the earlier
// transaction without changing the balance.
func (s *Service) Credit(ctx context.Context, owner uuid.UUID, amount int64, kind Kind, reference string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !kind.IsCredit() {
		return nil, ErrInvalidKind
	}
	return s.apply(ctx, Entry{OwnerID: owner, Change: amount, Kind: kind, Reference: reference})
}

// Debit removes amount tokens, failing with ErrInsufficientBalance when
// the balance is lower than amount.
func (s *Service) Debit(ctx context.Context, owner uuid.UUID, amount int64, kind Kind, reference string) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !kind.IsDebit() {
		return nil, ErrInvalidKind
	}
	return s.apply(ctx, Entry{OwnerID: owner, Change: -amount, Kind: kind, Reference: reference})
}

func (s *Service) apply(ctx context.Context, e Entry) (*Transaction, error) {
	var t *Transaction
	err := s.retry.Do(ctx, func() error {
		var err error
		t, err = s.repo.Apply(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Announce(ctx, t)
	return t, nil
}

// ApplyTx validates e and applies it inside the caller's transaction. The
// caller must call Announce after its transaction commits.
func (s *Service) ApplyTx(ctx context.Context, tx *sqlx.Tx, e Entry) (*Transaction, error) {
	switch {
	case e.Change == 0:
		return nil, ErrInvalidAmount
	case e.Change > 0 && !e.Kind.IsCredit(), e.Change < 0 && !e.Kind.IsDebit():
		return nil, ErrInvalidKind
	}
	return s.repo.ApplyTx(ctx, tx, e)
}

// OpenTx creates an empty wallet inside the caller's transaction.
func (s *Service) OpenTx(ctx context.Context, tx *sqlx.Tx, owner uuid.UUID) error {
	return s.repo.OpenTx(ctx, tx, owner)
}

// Announce logs a committed transaction and forwards it to the notifier.
// Replayed transactions are ignored.
func (s *Service) Announce(ctx context.Context, t *Transaction) {
	if t == nil || t.Replayed {
		return
	}
	ev := log.Info().
		Str("owner_id", t.OwnerID.String()).
		Str("kind", string(t.Kind)).
		Int64("change", t.Change).
		Int64("balance_after", t.BalanceAfter).
		Int64("tx_id", t.ID)
	if t.Reference != nil {
		ev = ev.Str("reference", *t.Reference)
	}
	ev.Msg("ledger entry applied")

	if s.notifier != nil {
		s.notifier.NotifyBalance(ctx, *t)
	}
}

// History returns the owner's transactions, newest first.
func (s *Service) History(ctx context.Context, owner uuid.UUID, limit, offset int) ([]Transaction, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListTransactions(ctx, owner, limit, offset)
}

// Verify replays the owner's log and compares the sum with the stored balance.
func (s *Service) Verify(ctx context.Context, owner uuid.UUID) (*Audit, error) {
	stored, items, err := s.repo.Snapshot(ctx, owner)
	if err != nil {
		return nil, err
	}

	audit := Replay(owner, stored, items)
	if !audit.Consistent {
		log.Error().
			Str("owner_id", owner.String()).
			Int64("stored", audit.StoredBalance).
			Int64("replayed", audit.ReplayedBalance).
			Int64("first_mismatch_id", audit.FirstMismatchID).
			Msg("ledger replay mismatch")
	}
	return audit, nil
}

// Replay sums items in order and checks each balance_after against the
// running total.
func Replay(owner uuid.UUID, stored int64, items []Transaction) *Audit {
	audit := &Audit{OwnerID: owner, StoredBalance: stored, Transactions: len(items)}
	var running int64
	for _, t := range items {
		running += t.Change
		if audit.FirstMismatchID == 0 && (t.BalanceAfter != running || running < 0) {
			audit.FirstMismatchID = t.ID
		}
	}
	audit.ReplayedBalance = running
	audit.Consistent = running == stored && audit.FirstMismatchID == 0
	return audit
}

// ExportStatement writes the owner's full log as CSV to statement storage.
// The object key is derived from the last transaction id, so repeated
// exports of an unchanged ledger reuse the stored file.
func (s *Service) ExportStatement(ctx context.Context, owner uuid.UUID) (*Statement, error) {
	if s.statements == nil {
		return nil, ErrNoStatementStorage
	}

	balance, items, err := s.repo.Snapshot(ctx, owner)
	if err != nil {
		return nil, err
	}

	var lastID int64
	if len(items) > 0 {
		lastID = items[len(items)-1].ID
	}
	key := fmt.Sprintf("statements/%s/%d.csv", owner, lastID)
	st := &Statement{Key: key, Transactions: len(items), Balance: balance}

	exists, err := s.statements.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check statement: %w", err)
	}
	if !exists {
		body, err := renderStatement(items)
		if err != nil {
			return nil, err
		}
		if err := s.statements.Put(ctx, key, bytes.NewReader(body), "text/csv"); err != nil {
			return nil, fmt.Errorf("store statement: %w", err)
		}
		log.Info().Str("owner_id", owner.String()).Str("key", key).Int("rows", len(items)).Msg("ledger statement exported")
	}

	st.URL = s.statements.GetURL(key)
	return st, nil
}

func renderStatement(items []Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "created_at", "kind", "change", "balance_after", "reference"}); err != nil {
		return nil, err
	}
	for _, t := range items {
		ref := ""
		if t.Reference != nil {
			ref = *t.Reference
		}
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.CreatedAt.UTC().Format(time.RFC3339),
			string(t.Kind),
			strconv.FormatInt(t.Change, 10),
			strconv.FormatInt(t.BalanceAfter, 10),
			ref,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}
	return buf.Bytes(), nil
}

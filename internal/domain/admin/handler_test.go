package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/listing"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/user"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
	"github.com/gaadibazaar/gaadibazaar-api/internal/middleware"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/jwt"
)

type memAudit struct {
	mu   sync.Mutex
	logs []*AuditLog
}

func (m *memAudit) CreateAuditLog(_ context.Context, l *AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l.CreatedAt = time.Now()
	m.logs = append(m.logs, l)
	return nil
}

func (m *memAudit) ListAuditLogs(_ context.Context, f AuditFilter) ([]*AuditLog, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*AuditLog
	for _, l := range m.logs {
		if f.Action == "" || l.Action == f.Action {
			out = append(out, l)
		}
	}
	return out, len(out), nil
}

type memLedger struct {
	balances map[uuid.UUID]int64
	refs     map[string]*wallet.Transaction
	nextID   int64
}

func newMemLedger() *memLedger {
	return &memLedger{balances: map[uuid.UUID]int64{}, refs: map[string]*wallet.Transaction{}}
}

func (l *memLedger) apply(owner uuid.UUID, change int64, kind wallet.Kind, ref string) (*wallet.Transaction, error) {
	if _, ok := l.balances[owner]; !ok {
		return nil, wallet.ErrAccountNotFound
	}
	key := owner.String() + string(kind) + ref
	if prior, ok := l.refs[key]; ok {
		cp := *prior
		cp.Replayed = true
		return &cp, nil
	}
	next := l.balances[owner] + change
	if next < 0 {
		return nil, wallet.ErrInsufficientBalance
	}
	l.balances[owner] = next
	l.nextID++
	t := &wallet.Transaction{ID: l.nextID, OwnerID: owner, Change: change, BalanceAfter: next, Kind: kind, Reference: &ref}
	l.refs[key] = t
	return t, nil
}

func (l *memLedger) GetBalance(_ context.Context, owner uuid.UUID) (int64, error) {
	b, ok := l.balances[owner]
	if !ok {
		return 0, wallet.ErrAccountNotFound
	}
	return b, nil
}

func (l *memLedger) Credit(_ context.Context, owner uuid.UUID, amount int64, kind wallet.Kind, ref string) (*wallet.Transaction, error) {
	return l.apply(owner, amount, kind, ref)
}

func (l *memLedger) Debit(_ context.Context, owner uuid.UUID, amount int64, kind wallet.Kind, ref string) (*wallet.Transaction, error) {
	return l.apply(owner, -amount, kind, ref)
}

func (l *memLedger) History(context.Context, uuid.UUID, int, int) ([]wallet.Transaction, int, error) {
	return []wallet.Transaction{}, 0, nil
}

func (l *memLedger) Verify(_ context.Context, owner uuid.UUID) (*wallet.Audit, error) {
	return &wallet.Audit{OwnerID: owner, StoredBalance: l.balances[owner], ReplayedBalance: l.balances[owner], Consistent: true}, nil
}

func (l *memLedger) ExportStatement(context.Context, uuid.UUID) (*wallet.Statement, error) {
	return nil, wallet.ErrNoStatementStorage
}

type memUsers struct {
	user.Repository
	disabled map[uuid.UUID]bool
	kyc      map[uuid.UUID]user.KYCStatus
}

func (m *memUsers) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.kyc[id]
	return ok, nil
}

func (m *memUsers) UpdateKYCStatus(_ context.Context, id uuid.UUID, s user.KYCStatus) error {
	if _, ok := m.kyc[id]; !ok {
		return user.ErrUserNotFound
	}
	m.kyc[id] = s
	return nil
}

func (m *memUsers) SetDisabled(_ context.Context, id uuid.UUID, disabled bool) error {
	if _, ok := m.kyc[id]; !ok {
		return user.ErrUserNotFound
	}
	m.disabled[id] = disabled
	return nil
}

type noListings struct{}

func (noListings) Create(context.Context, *listing.Listing) error { return nil }
func (noListings) GetByID(context.Context, uuid.UUID) (*listing.Listing, error) {
	return nil, listing.ErrListingNotFound
}
func (noListings) List(context.Context, listing.Filter, int, int) ([]*listing.Listing, int, error) {
	return nil, 0, nil
}
func (noListings) UpdateStatus(context.Context, uuid.UUID, listing.Status) error {
	return listing.ErrListingNotFound
}

type harness struct {
	router  chi.Router
	jwt     *jwt.Service
	audit   *memAudit
	ledger  *memLedger
	users   *memUsers
	adminID uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		jwt:     jwt.NewService("admin-test-secret", time.Hour, 24*time.Hour),
		audit:   &memAudit{},
		ledger:  newMemLedger(),
		users:   &memUsers{disabled: map[uuid.UUID]bool{}, kyc: map[uuid.UUID]user.KYCStatus{}},
		adminID: uuid.New(),
	}
	svc := NewService(h.audit, h.ledger, h.users)
	handler := NewHandler(svc, listing.NewHandler(listing.NewService(noListings{})))

	r := chi.NewRouter()
	r.Mount("/api/admin", handler.Routes(middleware.Auth(h.jwt)))
	h.router = r
	return h
}

func (h *harness) addAccount(owner uuid.UUID, balance int64) {
	h.users.kyc[owner] = user.KYCNone
	h.ledger.balances[owner] = balance
}

func (h *harness) do(t *testing.T, role, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	token, err := h.jwt.GenerateAccessToken(h.adminID, role)
	require.NoError(t, err)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	h := newHarness(t)
	owner := uuid.New()
	h.addAccount(owner, 0)

	rec := h.do(t, "buyer", http.MethodGet, "/api/admin/wallets/"+owner.String(), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, "admin", http.MethodGet, "/api/admin/wallets/"+owner.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdjustWallet_CreditIsIdempotentAndAudited(t *testing.T) {
	h := newHarness(t)
	owner := uuid.New()
	h.addAccount(owner, 0)
	path := "/api/admin/wallets/" + owner.String() + "/credit"
	body := AdjustWalletRequest{Amount: 5, Reference: "goodwill-42", Reason: "support ticket"}

	rec := h.do(t, "admin", http.MethodPost, path, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, "admin", http.MethodPost, path, body)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Data struct {
			Replayed bool `json:"replayed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Data.Replayed)

	assert.Equal(t, int64(5), h.ledger.balances[owner])
	require.Len(t, h.audit.logs, 1)
	assert.Equal(t, ActionWalletCredit, h.audit.logs[0].Action)
	assert.Equal(t, h.adminID, h.audit.logs[0].AdminID)
	assert.Equal(t, "support ticket", h.audit.logs[0].Reason.String)
}

func TestAdjustWallet_ReferenceIsNamespaced(t *testing.T) {
	h := newHarness(t)
	owner := uuid.New()
	h.addAccount(owner, 3)
	listingRef := uuid.NewString()

	rec := h.do(t, "admin", http.MethodPost, "/api/admin/wallets/"+owner.String()+"/debit",
		AdjustWalletRequest{Amount: 1, Reference: listingRef, Reason: "manual correction"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Data struct {
			Transaction wallet.Transaction `json:"transaction"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotNil(t, out.Data.Transaction.Reference)
	assert.Equal(t, ManualReferencePrefix+listingRef, *out.Data.Transaction.Reference)
	assert.NotContains(t, h.ledger.refs, owner.String()+string(wallet.KindUnlockDebit)+listingRef)
}

func TestWalletRoutes_UnknownAccount(t *testing.T) {
	h := newHarness(t)
	ghost := uuid.New()
	// a wallet row without an account must not be reachable either
	h.ledger.balances[ghost] = 4

	rec := h.do(t, "admin", http.MethodGet, "/api/admin/wallets/"+ghost.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, "admin", http.MethodGet, "/api/admin/wallets/"+ghost.String()+"/verify", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, "admin", http.MethodPost, "/api/admin/wallets/"+ghost.String()+"/credit",
		AdjustWalletRequest{Amount: 2, Reference: "goodwill-7", Reason: "support ticket"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, int64(4), h.ledger.balances[ghost])
	assert.Empty(t, h.audit.logs)
}

func TestAdjustWallet_Errors(t *testing.T) {
	h := newHarness(t)
	owner := uuid.New()
	h.addAccount(owner, 1)

	rec := h.do(t, "admin", http.MethodPost, "/api/admin/wallets/"+owner.String()+"/debit",
		AdjustWalletRequest{Amount: 2, Reference: "chargeback-1", Reason: "chargeback"})
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = h.do(t, "admin", http.MethodPost, "/api/admin/wallets/"+uuid.NewString()+"/refund",
		AdjustWalletRequest{Amount: 2, Reference: "refund-1", Reason: "refund"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, "admin", http.MethodPost, "/api/admin/wallets/"+owner.String()+"/credit",
		AdjustWalletRequest{Amount: 0, Reference: "x", Reason: ""})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.do(t, "admin", http.MethodPost, "/api/admin/wallets/"+owner.String()+"/statement", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	assert.Equal(t, int64(1), h.ledger.balances[owner])
	assert.Empty(t, h.audit.logs)
}

func TestUserModeration(t *testing.T) {
	h := newHarness(t)
	seller := uuid.New()
	h.users.kyc[seller] = user.KYCPending
	h.users.kyc[h.adminID] = user.KYCNone

	rec := h.do(t, "admin", http.MethodPatch, "/api/admin/users/"+seller.String()+"/kyc", UpdateKYCRequest{Status: "verified"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.KYCVerified, h.users.kyc[seller])

	yes := true
	rec = h.do(t, "admin", http.MethodPatch, "/api/admin/users/"+seller.String()+"/status", UpdateUserStatusRequest{Disabled: &yes, Reason: "fraud"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, h.users.disabled[seller])

	rec = h.do(t, "admin", http.MethodPatch, "/api/admin/users/"+h.adminID.String()+"/status", UpdateUserStatusRequest{Disabled: &yes})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, "admin", http.MethodPatch, "/api/admin/users/"+uuid.NewString()+"/kyc", UpdateKYCRequest{Status: "verified"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, "admin", http.MethodGet, "/api/admin/audit/logs?action="+ActionKYC, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Data []AuditLog `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, seller, out.Data[0].EntityID.UUID)
}

func TestListingModerationRoute(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, "admin", http.MethodPatch, "/api/admin/listings/"+uuid.NewString()+"/status", map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package listing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaadibazaar/gaadibazaar-api/internal/middleware"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/jwt"
)

type unlockSet map[[2]uuid.UUID]bool

func (u unlockSet) IsUnlocked(_ context.Context, owner, listingID uuid.UUID) (bool, error) {
	return u[[2]uuid.UUID{owner, listingID}], nil
}

type detailHarness struct {
	svc     *Service
	jwt     *jwt.Service
	unlocks unlockSet
	handler http.Handler
}

func newDetailHarness(t *testing.T) *detailHarness {
	t.Helper()
	d := &detailHarness{
		svc:     NewService(newMemRepo()),
		jwt:     jwt.NewService("listing-test-secret", time.Hour, 24*time.Hour),
		unlocks: unlockSet{},
	}
	h := NewHandler(d.svc)
	h.SetUnlockChecker(d.unlocks)
	d.handler = h.Routes(middleware.Auth(d.jwt), middleware.OptionalAuth(d.jwt))
	return d
}

func (d *detailHarness) get(t *testing.T, id, viewer uuid.UUID, role string) (*httptest.ResponseRecorder, ListingDetailResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/"+id.String(), nil)
	if viewer != uuid.Nil {
		token, err := d.jwt.GenerateAccessToken(viewer, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	d.handler.ServeHTTP(rec, req)

	var body struct {
		Data ListingDetailResponse `json:"data"`
	}
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body.Data
}

func TestGetByID_PendingVisibleToSellerAndAdmin(t *testing.T) {
	d := newDetailHarness(t)
	seller := uuid.New()
	l, err := d.svc.Create(context.Background(), seller, "seller", sampleRequest())
	require.NoError(t, err)

	rec, _ := d.get(t, l.ID, uuid.Nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = d.get(t, l.ID, uuid.New(), "buyer")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body := d.get(t, l.ID, seller, "seller")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, StatusPending, body.Status)
	assert.Equal(t, "+919812345678", body.SellerContact)

	rec, body = d.get(t, l.ID, uuid.New(), "admin")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Unlocked)
}

func TestGetByID_ContactOnlyAfterUnlock(t *testing.T) {
	d := newDetailHarness(t)
	ctx := context.Background()
	l, err := d.svc.Create(ctx, uuid.New(), "seller", sampleRequest())
	require.NoError(t, err)
	require.NoError(t, d.svc.SetStatus(ctx, l.ID, StatusApproved))
	buyer := uuid.New()

	rec, body := d.get(t, l.ID, uuid.Nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, body.Unlocked)
	assert.NotContains(t, rec.Body.String(), "+919812345678")

	rec, body = d.get(t, l.ID, buyer, "buyer")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, body.Unlocked)
	assert.Empty(t, body.SellerContact)

	d.unlocks[[2]uuid.UUID{buyer, l.ID}] = true
	rec, body = d.get(t, l.ID, buyer, "buyer")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Unlocked)
	assert.Equal(t, "+919812345678", body.SellerContact)
}

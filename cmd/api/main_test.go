package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaadibazaar/gaadibazaar-api/internal/config"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/admin"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/auth"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/listing"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/payment"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/realtime"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/unlock"
	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/jwt"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/razorpay"
)

// testRouter wires handlers whose stores are never reached by the
// requests below: every one is rejected by middleware or validation first.
func testRouter(t *testing.T) (http.Handler, *jwt.Service) {
	t.Helper()
	cfg := &config.Config{Env: "test"}
	jwtService := jwt.NewService("router-test-secret", time.Hour, 24*time.Hour)

	hub := realtime.NewHubWithInstanceID(nil, "router-test")
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	walletService := wallet.NewService(nil)
	listingHandler := listing.NewHandler(listing.NewService(nil))
	h := handlers{
		auth:     auth.NewHandler(auth.NewService(nil, nil, walletService, jwtService, nil, 0)),
		listing:  listingHandler,
		unlock:   unlock.NewHandler(unlock.NewService(nil, nil, walletService)),
		wallet:   wallet.NewHandler(walletService),
		payment:  payment.NewHandler(payment.NewService(nil, razorpay.NewClient(razorpay.Config{}), walletService, nil, payment.Config{WebhookSecret: "whsec"})),
		admin:    admin.NewHandler(admin.NewService(nil, walletService, nil), listingHandler),
		realtime: realtime.NewHandler(hub, nil),
	}
	return newRouter(cfg, jwtService, h), jwtService
}

func TestRouter_Health(t *testing.T) {
	r, _ := testRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	r, _ := testRouter(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/wallet/balance"},
		{http.MethodGet, "/api/v1/wallet/transactions"},
		{http.MethodGet, "/api/v1/unlocks"},
		{http.MethodPost, "/api/v1/listings/" + uuid.NewString() + "/unlock"},
		{http.MethodPost, "/api/v1/payments/orders"},
		{http.MethodPost, "/api/v1/payments/confirm"},
		{http.MethodGet, "/api/admin/audit/logs"},
		{http.MethodGet, "/ws"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRouter_AdminRoutesRejectBuyers(t *testing.T) {
	r, jwtService := testRouter(t)
	token, err := jwtService.GenerateAccessToken(uuid.New(), "buyer")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/audit/logs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_WebhookIsPublicButSigned(t *testing.T) {
	r, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/razorpay", bytes.NewBufferString(`{"event":"payment.captured"}`))
	req.Header.Set(razorpay.SignatureHeader, "deadbeef")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_PaymentOrderValidation(t *testing.T) {
	r, jwtService := testRouter(t)
	token, err := jwtService.GenerateAccessToken(uuid.New(), "buyer")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/orders", bytes.NewBufferString(`{"tokens":0}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

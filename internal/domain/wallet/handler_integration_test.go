package wallet_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaadibazaar/gaadibazaar-api/internal/domain/wallet"
	"github.com/gaadibazaar/gaadibazaar-api/internal/middleware"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/jwt"
	"github.com/gaadibazaar/gaadibazaar-api/internal/pkg/testdb"
)

type walletAPIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func TestWalletEndpointsIntegration(t *testing.T) {
	db, svc := newLedger(t)
	owner := testdb.CreateAccount(t, db, "buyer")
	ctx := context.Background()

	_, err := svc.Credit(ctx, owner, 5, wallet.KindPurchase, "order_h1")
	require.NoError(t, err)
	_, err = svc.Debit(ctx, owner, 1, wallet.KindUnlockDebit, "listing-h1")
	require.NoError(t, err)

	jwtSvc := jwt.NewService("wallet-integration-secret", time.Hour, 24*time.Hour)
	token, err := jwtSvc.GenerateAccessToken(owner, "buyer")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/api/v1/wallet", wallet.NewHandler(svc).Routes(middleware.Auth(jwtSvc)))

	t.Run("GET /balance", func(t *testing.T) {
		rec := performWalletRequest(r, token, "/api/v1/wallet/balance")
		require.Equal(t, http.StatusOK, rec.Code)

		var body walletAPIResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		var data struct {
			Balance int64 `json:"balance"`
		}
		require.NoError(t, json.Unmarshal(body.Data, &data))
		assert.Equal(t, int64(4), data.Balance)
	})

	t.Run("GET /transactions newest first", func(t *testing.T) {
		rec := performWalletRequest(r, token, "/api/v1/wallet/transactions?limit=10")
		require.Equal(t, http.StatusOK, rec.Code)

		var body walletAPIResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		var items []wallet.Transaction
		require.NoError(t, json.Unmarshal(body.Data, &items))
		require.Len(t, items, 2)
		assert.Equal(t, wallet.KindUnlockDebit, items[0].Kind)
		assert.Equal(t, int64(4), items[0].BalanceAfter)
		require.NotNil(t, body.Meta)
		assert.Equal(t, 2, body.Meta.Total)
	})

	t.Run("JWT required", func(t *testing.T) {
		rec := performWalletRequest(r, "", "/api/v1/wallet/balance")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func performWalletRequest(handler http.Handler, token, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

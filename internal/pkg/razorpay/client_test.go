package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateOrder_SendsBasicAuthAndPaise(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "rzp_test_key" || pass != "key_secret" {
			t.Errorf("unexpected basic auth: %q %q %v", user, pass, ok)
		}

		var req OrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.Amount != 50000 || req.Currency != "INR" || req.Receipt != "rcpt-1" {
			t.Errorf("unexpected body: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"order_Nx1","entity":"order","amount":50000,"currency":"INR","receipt":"rcpt-1","status":"created","notes":[]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, KeyID: "rzp_test_key", KeySecret: "key_secret"})
	order, err := client.CreateOrder(context.Background(), OrderRequest{
		Amount:   ToSubunits(500),
		Currency: "INR",
		Receipt:  "rcpt-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "order_Nx1" || order.Status != "created" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCreateOrder_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The amount must be atleast INR 1.00"}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, KeyID: "k", KeySecret: "s"})
	_, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR", Receipt: "r"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Code != "BAD_REQUEST_ERROR" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestCreateOrder_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(Config{BaseURL: srv.URL, KeyID: "k", KeySecret: "s", Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 100, Currency: "INR", Receipt: "r"})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout was not honoured")
	}
}

func TestCreateOrder_NotConfigured(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 1, Receipt: "r"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert unlock: %w", &pq.Error{Code: "23505", Constraint: "unlock_facts_pkey"})

	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation")
	}
	if !IsUniqueViolation(err, "unlock_facts_pkey") {
		t.Fatalf("expected match on constraint name")
	}
	if IsUniqueViolation(err, "wallet_transactions_reference_key") {
		t.Fatalf("unexpected match on other constraint")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatalf("plain error is not a unique violation")
	}
}

func TestIsRetryable(t *testing.T) {
	for _, code := range []pq.ErrorCode{"40001", "40P01", "55P03"} {
		if !IsRetryable(&pq.Error{Code: code}) {
			t.Fatalf("expected code %s to be retryable", code)
		}
	}
	if IsRetryable(&pq.Error{Code: "23505"}) {
		t.Fatalf("unique violation alone is not retryable")
	}
	if IsRetryable(nil) {
		t.Fatalf("nil is not retryable")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	err := &pq.Error{Code: "23503", Constraint: "unlock_facts_owner_id_fkey"}

	if !IsForeignKeyViolation(err, "unlock_facts_owner_id_fkey") {
		t.Fatalf("expected foreign key violation")
	}
	if IsForeignKeyViolation(err, "unlock_facts_listing_id_fkey") {
		t.Fatalf("unexpected match on other constraint")
	}
	if IsForeignKeyViolation(&pq.Error{Code: "23505"}) {
		t.Fatalf("unique violation is not a foreign key violation")
	}
}

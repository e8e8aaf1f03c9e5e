package password

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("tipper-truck-2024")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !Verify("tipper-truck-2024", hash) {
		t.Fatalf("expected password to verify")
	}
	if Verify("wrong", hash) {
		t.Fatalf("wrong password verified")
	}
}

func TestHashRejectsLongPassword(t *testing.T) {
	if _, err := Hash(strings.Repeat("x", 73)); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

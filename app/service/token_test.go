package service

import (
	"strings"
	"testing"
)

func TestNewTransactionIDShape(t *testing.T) {
	id, err := newTransactionID()
	if err != nil {
		t.Fatalf("new transaction id failed: %v", err)
	}
	if len(id) != transactionIDLength {
		t.Fatalf("expected %d characters, got %d (%q)", transactionIDLength, len(id), id)
	}
	for _, r := range id {
		if !strings.ContainsRune("abcdefghijklmnopqrstuvwxyz234567", r) {
			t.Fatalf("unexpected character %q in transaction id %q", r, id)
		}
	}
}

func TestNewTransactionIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := newTransactionID()
		if err != nil {
			t.Fatalf("new transaction id failed: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate transaction id %q", id)
		}
		seen[id] = true
	}
}

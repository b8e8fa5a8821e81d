package service

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestOperatorGate_PlainPassword(t *testing.T) {
	gate := NewOperatorGate("", "2580")

	if err := gate.Verify("2580"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := gate.Verify("0000"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("expected ErrBadPassword, got %v", err)
	}
}

func TestOperatorGate_Hash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("generate hash: %v", err)
	}

	// Хеш имеет приоритет: открытый пароль игнорируется.
	gate := NewOperatorGate(string(hash), "2580")

	if err := gate.Verify("secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := gate.Verify("2580"); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("expected ErrBadPassword, got %v", err)
	}
}

func TestOperatorGate_EmptyConfig(t *testing.T) {
	gate := NewOperatorGate("", "")

	if err := gate.Verify(""); !errors.Is(err, ErrBadPassword) {
		t.Fatalf("expected ErrBadPassword for empty config, got %v", err)
	}
}

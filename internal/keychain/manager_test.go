package keychain

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

func TestCredentialLifecycle(t *testing.T) {
	m := NewManagerWithRing(keyring.NewArrayKeyring(nil))

	if _, err := m.LoadCredential(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadCredential on empty ring: err = %v, want ErrNotFound", err)
	}

	if err := m.SaveCredential("jwt-123"); err != nil {
		t.Fatalf("SaveCredential: %v", err)
	}
	got, err := m.LoadCredential()
	if err != nil {
		t.Fatalf("LoadCredential: %v", err)
	}
	if got != "jwt-123" {
		t.Fatalf("credential = %q", got)
	}

	if err := m.ClearCredential(); err != nil {
		t.Fatalf("ClearCredential: %v", err)
	}
	if err := m.ClearCredential(); err != nil {
		t.Fatalf("second ClearCredential: %v", err)
	}
	if _, err := m.LoadCredential(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadCredential after clear: err = %v, want ErrNotFound", err)
	}
}

func TestEmptyCredentialIsNotFound(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: KeyCredential, Data: nil}})
	m := NewManagerWithRing(ring)
	if _, err := m.LoadCredential(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

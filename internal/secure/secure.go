// Package secure resolves the store credential for a run. The environment wins
// over the OS keychain, so CI jobs can run without a keychain at all. For
// direct keychain access use internal/keychain.
package secure

import (
	"errors"
	"os"
	"strings"

	"flatbridge/cli/internal/keychain"
)

// EnvCredential overrides the saved credential.
const EnvCredential = "FLATBRIDGE_CREDENTIAL"

// Source tells where a credential came from.
type Source string

const (
	SourceNone     Source = ""
	SourceEnv      Source = EnvCredential + " environment variable"
	SourceKeychain Source = "OS keychain"
	// SourcePrompt is a credential typed for a single run.
	SourcePrompt Source = "prompt"
)

// CredentialStore is the part of keychain.Manager Resolve needs.
type CredentialStore interface {
	LoadCredential() (string, error)
}

// Resolve returns the credential from the environment, falling back to store.
// A missing credential is not an error: it yields "" and SourceNone.
func Resolve(store CredentialStore) (string, Source, error) {
	if env := strings.TrimSpace(os.Getenv(EnvCredential)); env != "" {
		return env, SourceEnv, nil
	}
	if store == nil {
		return "", SourceNone, nil
	}
	cred, err := store.LoadCredential()
	if errors.Is(err, keychain.ErrNotFound) {
		return "", SourceNone, nil
	}
	if err != nil {
		return "", SourceNone, err
	}
	return cred, SourceKeychain, nil
}

// LoadCredential resolves the credential against the OS keychain. An
// unavailable keychain is reported only when the environment has nothing either.
func LoadCredential() (string, Source, error) {
	manager, err := keychain.GetManager()
	if err != nil {
		cred, src, _ := Resolve(nil)
		if src != SourceNone {
			return cred, src, nil
		}
		return "", SourceNone, err
	}
	return Resolve(manager)
}

// SaveCredential stores the credential in the OS keychain.
func SaveCredential(credential string) error {
	manager, err := keychain.GetManager()
	if err != nil {
		return err
	}
	return manager.SaveCredential(credential)
}

// ClearCredential removes the credential from the OS keychain.
func ClearCredential() error {
	manager, err := keychain.GetManager()
	if err != nil {
		return err
	}
	return manager.ClearCredential()
}

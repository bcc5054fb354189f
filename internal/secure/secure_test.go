package secure

import (
	"errors"
	"testing"

	"flatbridge/cli/internal/keychain"

	"github.com/99designs/keyring"
)

type failingStore struct{}

func (failingStore) LoadCredential() (string, error) { return "", errors.New("locked") }

func TestResolve(t *testing.T) {
	saved := keychain.NewManagerWithRing(keyring.NewArrayKeyring(nil))
	if err := saved.SaveCredential("from-ring"); err != nil {
		t.Fatal(err)
	}
	empty := keychain.NewManagerWithRing(keyring.NewArrayKeyring(nil))

	tests := []struct {
		name    string
		env     string
		store   CredentialStore
		want    string
		source  Source
		wantErr bool
	}{
		{name: "env wins", env: "from-env", store: saved, want: "from-env", source: SourceEnv},
		{name: "keychain", store: saved, want: "from-ring", source: SourceKeychain},
		{name: "nothing saved", store: empty, source: SourceNone},
		{name: "no store", source: SourceNone},
		{name: "store error", store: failingStore{}, source: SourceNone, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvCredential, tt.env)
			got, src, err := Resolve(tt.store)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want || src != tt.source {
				t.Fatalf("Resolve() = %q, %q; want %q, %q", got, src, tt.want, tt.source)
			}
		})
	}
}

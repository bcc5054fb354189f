package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"flatbridge/cli/internal/conn"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", c.Endpoint)
	assert.Equal(t, time.Duration(0), c.Timeout)
	assert.Equal(t, "uploaded_data", c.Import.Table)
	assert.Equal(t, ",", c.Import.Delimiter)
	assert.Equal(t, DriverPostgres, c.Server.Driver)
	assert.True(t, c.Profile.Empty())
}

func TestLoadLayers(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
endpoint: http://files.example:9000
timeout: 30s
profile:
  host: ch.internal
  port: "8123"
  database: default
  user: reader
import:
  table: staging
`), 0o600))

	t.Setenv("FLATBRIDGE_IMPORT_DELIMITER", ";")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("endpoint", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--log-level=debug"}))

	c, err := Load(file, flags)
	require.NoError(t, err)

	assert.Equal(t, "http://files.example:9000", c.Endpoint, "unset flag must not override the file")
	assert.Equal(t, 30*time.Second, c.Timeout)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "staging", c.Import.Table)
	assert.Equal(t, ";", c.Import.Delimiter)
	assert.Equal(t, Profile{Host: "ch.internal", Port: "8123", Database: "default", User: "reader"}, c.Profile)
}

func TestLoadRejectsInvalid(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("import:\n  delimiter: \"::\"\n"), 0o600))

	_, err := Load(file, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delimiter")
}

func TestSaveThenLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	want, err := Load(file, nil)
	require.NoError(t, err)
	want.Profile = ProfileOf(conn.ConnectionConfig{Host: "h", Port: "9000", Database: "d", User: "u", Credential: "secret", Secure: true})
	want.Timeout = 5 * time.Second
	want.Server.CORSOrigins = []string{"http://localhost:3000"}

	require.NoError(t, Save(file, want))

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := Load(file, nil)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config after save (-want +got):\n%s", diff)
	}
}

func TestProfileConnection(t *testing.T) {
	p := Profile{Host: "h", Port: "1", Database: "d", User: "u", Secure: true}
	c := p.Connection("tok")
	assert.Equal(t, "tok", c.Credential)
	assert.Equal(t, p, ProfileOf(c))
}

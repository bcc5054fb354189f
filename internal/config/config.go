// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the store credential goes to the OS keychain.
//
// Values are layered the usual way: defaults, then config.yaml, then
// FLATBRIDGE_* environment variables, then command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flatbridge/cli/internal/conn"
	"flatbridge/cli/internal/xdg"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	fileName  = "config.yaml"
	envPrefix = "FLATBRIDGE"
	tagName   = "yaml" // yaml tags double as mapstructure tags so Save and Load agree
)

// Config holds non-sensitive CLI settings.
type Config struct {
	Endpoint  string        `yaml:"endpoint"`
	Timeout   time.Duration `yaml:"timeout"`
	LogLevel  string        `yaml:"log_level"`
	LogFormat string        `yaml:"log_format"`
	Profile   Profile       `yaml:"profile"`
	Import    Import        `yaml:"import"`
	Export    Export        `yaml:"export"`
	Server    Server        `yaml:"server"`
}

// Profile is the saved connection, minus the credential.
type Profile struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Secure   bool   `yaml:"secure"`
}

// Import holds defaults for file-to-store uploads.
type Import struct {
	Table     string `yaml:"table"`
	Delimiter string `yaml:"delimiter"`
}

// Export holds defaults for store-to-file downloads.
type Export struct {
	Dir  string `yaml:"dir"`
	Gzip bool   `yaml:"gzip"`
}

// Server configures `flatbridge serve`.
type Server struct {
	Addr        string   `yaml:"addr"`
	Driver      string   `yaml:"driver"`
	CORSOrigins []string `yaml:"cors_origins"`
	Metrics     bool     `yaml:"metrics"`
}

// Drivers accepted by Server.Driver.
const (
	DriverPostgres = "postgres"
	DriverDuckDB   = "duckdb"
)

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Endpoint, validation.Required, is.URL),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
		validation.Field(&c.Import),
		validation.Field(&c.Server),
	)
}

func (i Import) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Table, validation.Required),
		validation.Field(&i.Delimiter, validation.Required, validation.RuneLength(1, 1)),
	)
}

func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required),
		validation.Field(&s.Driver, validation.Required, validation.In(DriverPostgres, DriverDuckDB)),
	)
}

// Connection combines the profile with a credential.
func (p Profile) Connection(credential string) conn.ConnectionConfig {
	return conn.ConnectionConfig{
		Host:       p.Host,
		Port:       p.Port,
		Database:   p.Database,
		User:       p.User,
		Credential: credential,
		Secure:     p.Secure,
	}
}

// ProfileOf strips the credential from c.
func ProfileOf(c conn.ConnectionConfig) Profile {
	return Profile{Host: c.Host, Port: c.Port, Database: c.Database, User: c.User, Secure: c.Secure}
}

// Empty reports whether no profile has been saved.
func (p Profile) Empty() bool { return p == Profile{} }

func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", "http://localhost:8000")
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("profile.host", "")
	v.SetDefault("profile.port", "")
	v.SetDefault("profile.database", "")
	v.SetDefault("profile.user", "")
	v.SetDefault("profile.secure", false)
	v.SetDefault("import.table", "uploaded_data")
	v.SetDefault("import.delimiter", ",")
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.gzip", false)
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.driver", DriverPostgres)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.metrics", true)
}

// FlagKeys maps command line flag names to config keys.
var FlagKeys = map[string]string{
	"endpoint":   "endpoint",
	"timeout":    "timeout",
	"log-level":  "log_level",
	"log-format": "log_format",
	"table":      "import.table",
	"delimiter":  "import.delimiter",
	"out":        "export.dir",
	"gzip":       "export.gzip",
	"addr":       "server.addr",
	"driver":     "server.driver",
	"cors":       "server.cors_origins",
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads configuration from file (the default location when empty),
// the environment and any flags in fs that appear in FlagKeys. A missing file
// yields defaults.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // import.table -> FLATBRIDGE_IMPORT_TABLE
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if file == "" {
		p, err := Path()
		if err != nil {
			return Config{}, err
		}
		file = p
	}
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	err := v.Unmarshal(&c, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = tagName
	})
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(file string, c Config) error {
	if file == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		file = p
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(file, b, 0o600)
}

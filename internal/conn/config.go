// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package conn holds the store coordinates and credentials a session talks to.
// A ConnectionConfig is a value: every edit produces a new value through With,
// so a half-applied edit can never be observed by the session.
package conn

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"flatbridge/cli/internal/logging"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Field names one editable ConnectionConfig field.
type Field string

const (
	FieldHost       Field = "host"
	FieldPort       Field = "port"
	FieldDatabase   Field = "database"
	FieldUser       Field = "user"
	FieldCredential Field = "credential"
	FieldSecure     Field = "secure"
)

// Fields lists every field in form order.
var Fields = []Field{FieldHost, FieldPort, FieldDatabase, FieldUser, FieldCredential, FieldSecure}

// ParseField resolves a field name case-insensitively.
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown connection field %q", name)
}

// ConnectionConfig describes the store a session connects to.
// Port is kept exactly as entered; it is converted when a request is built.
type ConnectionConfig struct {
	Host       string
	Port       string
	Database   string
	User       string
	Credential string
	Secure     bool
}

// With returns a copy of c with a single field replaced. The receiver is untouched.
// No validation happens here: a bad port is accepted and surfaces at connect time.
func (c ConnectionConfig) With(field Field, value string) (ConnectionConfig, error) {
	next := c
	switch field {
	case FieldHost:
		next.Host = value
	case FieldPort:
		next.Port = value
	case FieldDatabase:
		next.Database = value
	case FieldUser:
		next.User = value
	case FieldCredential:
		next.Credential = value
	case FieldSecure:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		next.Secure = err == nil && b
	default:
		return c, fmt.Errorf("unknown connection field %q", field)
	}
	return next, nil
}

// Get returns the string form of a field.
func (c ConnectionConfig) Get(field Field) string {
	switch field {
	case FieldHost:
		return c.Host
	case FieldPort:
		return c.Port
	case FieldDatabase:
		return c.Database
	case FieldUser:
		return c.User
	case FieldCredential:
		return c.Credential
	case FieldSecure:
		return strconv.FormatBool(c.Secure)
	}
	return ""
}

// PortNumber converts the entered port to an integer in 1..65535.
func (c ConnectionConfig) PortNumber() (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil {
		return 0, fmt.Errorf("port %q is not a number", c.Port)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("port %d is out of range 1-65535", p)
	}
	return p, nil
}

// Validate checks the config right before it is sent anywhere.
func (c ConnectionConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Host, validation.Required, is.Host),
		validation.Field(&c.Port, validation.Required, validation.By(func(any) error {
			_, err := c.PortNumber()
			return err
		})),
		validation.Field(&c.Database, validation.Required),
		validation.Field(&c.User, validation.Required),
		validation.Field(&c.Credential, validation.Required),
	)
}

// Wire is the JSON shape of a config on the endpoint contract.
// The credential travels as jwt_token.
type Wire struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	JWTToken string `json:"jwt_token"`
	Secure   bool   `json:"secure"`
}

// Wire validates c and converts it to its request shape.
func (c ConnectionConfig) Wire() (Wire, error) {
	if err := c.Validate(); err != nil {
		return Wire{}, err
	}
	port, _ := c.PortNumber()
	return Wire{
		Host:     strings.TrimSpace(c.Host),
		Port:     port,
		Database: c.Database,
		User:     c.User,
		JWTToken: c.Credential,
		Secure:   c.Secure,
	}, nil
}

// FromWire converts a decoded request body back into a ConnectionConfig.
func FromWire(w Wire) ConnectionConfig {
	return ConnectionConfig{
		Host:       w.Host,
		Port:       strconv.Itoa(w.Port),
		Database:   w.Database,
		User:       w.User,
		Credential: w.JWTToken,
		Secure:     w.Secure,
	}
}

// Parts returns the config as discrete text parts for multipart uploads,
// keyed by the same names as the JSON body.
func (w Wire) Parts() [][2]string {
	return [][2]string{
		{"host", w.Host},
		{"port", strconv.Itoa(w.Port)},
		{"database", w.Database},
		{"user", w.User},
		{"jwt_token", w.JWTToken},
		{"secure", strconv.FormatBool(w.Secure)},
	}
}

// Fingerprint identifies the exact field values of c. Two configs with the
// same fingerprint address the same store with the same identity.
func (c ConnectionConfig) Fingerprint() string {
	h := sha256.New()
	for _, f := range Fields {
		h.Write([]byte(c.Get(f)))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// String renders c for logs with the credential masked.
func (c ConnectionConfig) String() string {
	cred := ""
	if c.Credential != "" {
		cred = "***"
	}
	return logging.Mask(fmt.Sprintf("%s@%s:%s/%s secure=%t token=%s", c.User, c.Host, c.Port, c.Database, c.Secure, cred))
}

// Copyright (c) 2025 Flatbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

//go:build !darwin

package keychain

import "errors"

// errNoSecurityCommand is returned off macOS, where the keyring library serves
// every platform backend instead.
var errNoSecurityCommand = errors.New("keychain: security command backend requires macOS")

// securityBackend is never constructed off macOS.
type securityBackend struct{}

func newSecurityBackend() (*securityBackend, error) { return nil, errNoSecurityCommand }

func (*securityBackend) Set(string, string) error { return errNoSecurityCommand }
func (*securityBackend) Get(string) (string, error) { return "", errNoSecurityCommand }
func (*securityBackend) Delete(string) error { return errNoSecurityCommand }

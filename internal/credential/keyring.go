// Package credential keeps the secrets the app needs (the Claude API key,
// the IMAP password) in the system keyring, with environment variable
// overrides.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "medreminder"

// Well-known credential keys.
const (
	KeyClaudeAPI    = "claude-api-key"
	KeyMailPassword = "imap-password"
)

// envOverrides maps credential keys to the environment variables that take
// precedence over the keyring.
var envOverrides = map[string]string{
	KeyClaudeAPI:    "ANTHROPIC_API_KEY",
	KeyMailPassword: "MEDREMINDER_IMAP_PASSWORD",
}

// ErrNotFound is returned when a credential is in neither the environment
// nor the keyring.
var ErrNotFound = errors.New("credential not found")

// Vault reads and writes credentials in a keyring.
type Vault struct {
	ring   keyring.Keyring
	getenv func(string) string
}

// Open returns a vault over the system keyring, falling back to an
// encrypted file under dir when no native backend is available.
func Open(dir string) (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(dir, "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt(serviceName + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewVault(ring), nil
}

// NewVault wraps an already opened keyring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring, getenv: os.Getenv}
}

// Get retrieves a credential value by key. A non-empty environment
// override wins over the keyring.
func (v *Vault) Get(key string) (string, error) {
	if env, ok := envOverrides[key]; ok {
		if val := strings.TrimSpace(v.getenv(env)); val != "" {
			return val, nil
		}
	}

	item, err := v.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key.
func (v *Vault) Set(key, value string) error {
	err := v.ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       serviceName + " " + key,
		Description: "medreminder credential",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key.
func (v *Vault) Delete(key string) error {
	if err := v.ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

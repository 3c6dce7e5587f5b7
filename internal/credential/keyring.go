package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "linkscan"

// Credential keys stored in the keyring.
const (
	KeyIPQS         = "ipqs-api-key"
	KeySafeBrowsing = "safebrowsing-api-key"
	KeyIMAPPassword = "imap-password"
	KeyGmailToken   = "gmail-token"
)

// Keys lists every credential key the tool reads.
var Keys = []string{KeyIPQS, KeySafeBrowsing, KeyIMAPPassword, KeyGmailToken}

// ErrNotFound is returned when a credential is neither in the
// environment nor in the keyring.
var ErrNotFound = errors.New("credential not found")

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/linkscan/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("linkscan-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// IsKnown reports whether key is one of Keys.
func IsKnown(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// EnvVar returns the environment variable that overrides key, e.g.
// LINKSCAN_IPQS_API_KEY for "ipqs-api-key".
func EnvVar(key string) string {
	return "LINKSCAN_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Resolve returns the credential for key, preferring the environment
// over the keyring.
func Resolve(key string) (string, error) {
	if v := os.Getenv(EnvVar(key)); v != "" {
		return v, nil
	}

	v, err := Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s (set %s or run `linkscan credentials set %s`)",
			ErrNotFound, key, EnvVar(key), key)
	}
	return v, err
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "linkscan " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

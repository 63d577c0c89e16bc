package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "fivetodo"

// tokenKey is the keyring entry holding the bearer credential.
const tokenKey = "api-token"

// systemKeyring is the TokenStore backed by the OS keyring. The ring is
// opened per call; there is no long-lived handle to manage.
type systemKeyring struct{}

func (systemKeyring) open() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/fivetodo/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("fivetodo-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func (k systemKeyring) Get(key string) (string, error) {
	ring, err := k.open()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

func (k systemKeyring) Set(key, value string) error {
	ring, err := k.open()
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{Key: key, Data: []byte(value)}); err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

func (k systemKeyring) Delete(key string) error {
	ring, err := k.open()
	if err != nil {
		return err
	}
	if err := ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

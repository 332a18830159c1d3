// Package keyring keeps the Postgres connection string in the OS keyring
// so it never has to live in a config file or shell history.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are stored
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Vault is one service/user entry in the OS keyring.
type Vault struct {
	Service string
	User    string
}

// Default returns the entry quiethours stores its connection string under.
func Default() Vault {
	return Vault{Service: constants.AppName, User: constants.DefaultKeyringUser}
}

func (v Vault) Get() (string, error) {
	secret, err := keyring.Get(v.Service, v.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return secret, nil
}

func (v Vault) Set(secret string) error {
	if secret == "" {
		return errors.New("connection string cannot be empty")
	}
	if err := keyring.Set(v.Service, v.User, secret); err != nil {
		return fmt.Errorf("failed to store credentials in keyring: %w", err)
	}
	return nil
}

func (v Vault) Delete() error {
	if err := keyring.Delete(v.Service, v.User); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

// Available is a best-effort probe: a read that fails with anything other
// than ErrNotFound means the keyring cannot be used.
func (v Vault) Available() bool {
	_, err := keyring.Get(v.Service, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// GetConnectionString reads the default entry.
func GetConnectionString() (string, error) {
	return Default().Get()
}

// SetConnectionString writes the default entry.
func SetConnectionString(connStr string) error {
	return Default().Set(connStr)
}

// DeleteConnectionString removes the default entry.
func DeleteConnectionString() error {
	return Default().Delete()
}

func IsAvailable() bool {
	return Default().Available()
}

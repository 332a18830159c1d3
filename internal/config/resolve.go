package config

import (
	"errors"

	"github.com/r91781585-tech/quiet-hours-scheduler/internal/constants"
	"github.com/r91781585-tech/quiet-hours-scheduler/internal/keyring"
)

// Source names where a database connection came from.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceConfig  Source = "config"
	SourceKeyring Source = "keyring"
	SourceDefault Source = "default"
)

// SecretGetter is satisfied by keyring.Vault.
type SecretGetter interface {
	Get() (string, error)
}

// ResolveConnection picks the database to open: an explicit flag, then the
// config file or QUIETHOURS_DB_CONNECTION, then the OS keyring, then the
// default SQLite path. A missing entry or an unreachable keyring falls
// through to the default; any other keyring error is returned.
func ResolveConnection(flag string, cfg Config, secrets SecretGetter) (string, Source, error) {
	if flag != "" {
		return ExpandHome(flag), SourceFlag, nil
	}
	if cfg.DBConnection != "" {
		return ExpandHome(cfg.DBConnection), SourceConfig, nil
	}
	if secrets != nil {
		conn, err := secrets.Get()
		switch {
		case err == nil && conn != "":
			return conn, SourceKeyring, nil
		case err != nil && !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, keyring.ErrKeyringUnavailable):
			return "", "", err
		}
	}
	return ExpandHome(constants.DefaultConfigPath), SourceDefault, nil
}

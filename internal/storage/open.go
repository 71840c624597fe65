package storage

import (
	"errors"
	"fmt"

	"github.com/julianstephens/timediary/internal/storage/postgres"
	"github.com/julianstephens/timediary/internal/storage/sqlite"
)

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
)

// New picks a backend from target: a postgres:// URL selects PostgreSQL,
// anything else is treated as a SQLite file path.
func New(target string) (Provider, error) {
	if postgres.IsConnString(target) {
		if valid, err := postgres.ValidateConnString(target); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; use the OS keyring, an environment variable or .pgpass: %w", err)
			}
			return nil, err
		}
		return postgres.New(target), nil
	}
	return sqlite.NewStore(target), nil
}

// IsSQLite reports whether p stores its data in a local SQLite file.
func IsSQLite(p Provider) bool {
	_, ok := p.(*sqlite.Store)
	return ok
}

// NewFromSecret opens a backend from a connection string read from the OS
// keyring or the environment. Those sources may carry a password.
func NewFromSecret(connStr string) (Provider, error) {
	if !postgres.IsConnString(connStr) {
		return sqlite.NewStore(connStr), nil
	}
	if _, err := postgres.ValidateConnString(connStr); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
		return nil, err
	}
	return postgres.New(connStr), nil
}

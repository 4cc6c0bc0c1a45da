// Package vault provides per-agent secret storage: API keys and other
// credentials an agent's provider calls need, kept out of config.yaml and
// out of process environment variables.
package vault

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/mattsolo1/moxxy/internal/merr"
)

// Vault guards the secrets_vault table of one agent's SQLite connection.
// It does not own the *sql.DB — that belongs to store.Store — but keeps its
// own mutex so vault reads/writes never contend with orchestrator traffic
// on the same connection beyond what database/sql already serializes.
type Vault struct {
	mu sync.Mutex
	db *sql.DB
}

// New wraps db, which must already have the secrets_vault table migrated
// (store.Open does this as part of the shared schema).
func New(db *sql.DB) *Vault {
	return &Vault{db: db}
}

// Set stores value under key, overwriting any existing entry.
func (v *Vault) Set(key, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	_, err := v.db.Exec(
		`INSERT INTO secrets_vault (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("vault set %s: %w", key, err)
	}
	return nil
}

// Get retrieves the value stored under key.
func (v *Vault) Get(key string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var value string
	row := v.db.QueryRow(`SELECT value FROM secrets_vault WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: vault key %s", merr.ErrNotFound, key)
		}
		return "", fmt.Errorf("vault get %s: %w", key, err)
	}
	return value, nil
}

// List returns every key currently stored, never the values.
func (v *Vault) List() ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	rows, err := v.db.Query(`SELECT key FROM secrets_vault ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("vault list: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan vault key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Remove deletes the entry stored under key.
func (v *Vault) Remove(key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	res, err := v.db.Exec(`DELETE FROM secrets_vault WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("vault remove %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: vault key %s", merr.ErrNotFound, key)
	}
	return nil
}

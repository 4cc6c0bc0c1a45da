package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattsolo1/moxxy/internal/merr"
)

// ApiToken is one issued token record. RawToken is populated only by
// CreateApiToken, at the moment of issuance — it is never stored and can
// never be recovered afterward.
type ApiToken struct {
	ID        string
	Name      string
	TokenHash string
	RawToken  string
	CreatedAt string
}

// tokenHexChars is the length of the random hex suffix in a raw token, e.g.
// "mxk_" + 32 lowercase hex characters (16 random bytes).
const tokenHexChars = 32

func generateRawToken() (string, error) {
	buf := make([]byte, tokenHexChars/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token entropy: %w", err)
	}
	return "mxk_" + hex.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// CreateApiToken mints a new raw token, stores only its SHA-256 hash, and
// returns the raw value once. Callers must surface RawToken to the operator
// immediately; the store has no way to reconstruct it later.
func (s *Store) CreateApiToken(name string) (ApiToken, error) {
	raw, err := generateRawToken()
	if err != nil {
		return ApiToken{}, err
	}
	id := uuid.NewString()
	hash := hashToken(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(
		`INSERT INTO api_tokens (id, name, token_hash) VALUES (?, ?, ?)`,
		id, name, hash,
	); err != nil {
		return ApiToken{}, fmt.Errorf("create api token: %w", err)
	}
	return ApiToken{ID: id, Name: name, TokenHash: hash, RawToken: raw}, nil
}

// VerifyApiToken hashes raw and looks up the matching token record, without
// ever persisting or logging the raw value.
func (s *Store) VerifyApiToken(raw string) (ApiToken, error) {
	hash := hashToken(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	var t ApiToken
	row := s.db.QueryRow(`SELECT id, name, token_hash, created_at FROM api_tokens WHERE token_hash = ?`, hash)
	if err := row.Scan(&t.ID, &t.Name, &t.TokenHash, &t.CreatedAt); err != nil {
		return ApiToken{}, fmt.Errorf("%w: api token", merr.ErrNotFound)
	}
	return t, nil
}

// ListApiTokens returns every issued token's metadata, never the raw value.
func (s *Store) ListApiTokens() ([]ApiToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT id, name, token_hash, created_at FROM api_tokens ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list api tokens: %w", err)
	}
	defer rows.Close()

	var out []ApiToken
	for rows.Next() {
		var t ApiToken
		if err := rows.Scan(&t.ID, &t.Name, &t.TokenHash, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan api token row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// RevokeApiToken deletes a token by id.
func (s *Store) RevokeApiToken(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM api_tokens WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("revoke api token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: api token %s", merr.ErrNotFound, id)
	}
	return nil
}

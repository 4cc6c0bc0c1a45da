package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattsolo1/moxxy/internal/merr"
)

// Webhook is an inbound trigger that turns an external event into a job
// prompt via PromptTemplate, guarded by Secret for signature verification.
type Webhook struct {
	Name           string
	Source         string
	Secret         string
	PromptTemplate string
	Active         bool
	CreatedAt      string
}

// UpsertWebhook inserts or replaces a webhook registration by name.
func (s *Store) UpsertWebhook(w Webhook) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO webhooks (name, source, secret, prompt_template, active) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET source = excluded.source, secret = excluded.secret,
		 	prompt_template = excluded.prompt_template, active = excluded.active`,
		w.Name, w.Source, w.Secret, w.PromptTemplate, boolToInt(w.Active),
	)
	if err != nil {
		return fmt.Errorf("upsert webhook: %w", err)
	}
	return nil
}

// GetWebhook looks up a webhook by name.
func (s *Store) GetWebhook(name string) (Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var w Webhook
	var active int
	row := s.db.QueryRow(`SELECT name, source, secret, prompt_template, active, created_at FROM webhooks WHERE name = ?`, name)
	if err := row.Scan(&w.Name, &w.Source, &w.Secret, &w.PromptTemplate, &active, &w.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Webhook{}, fmt.Errorf("%w: webhook %s", merr.ErrNotFound, name)
		}
		return Webhook{}, fmt.Errorf("get webhook: %w", err)
	}
	w.Active = active != 0
	return w, nil
}

// ListWebhooks returns every registered webhook, ordered by name.
func (s *Store) ListWebhooks() ([]Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT name, source, secret, prompt_template, active, created_at FROM webhooks ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	var out []Webhook
	for rows.Next() {
		var w Webhook
		var active int
		if err := rows.Scan(&w.Name, &w.Source, &w.Secret, &w.PromptTemplate, &active, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook row: %w", err)
		}
		w.Active = active != 0
		out = append(out, w)
	}
	return out, rows.Err()
}

// DeleteWebhook removes a webhook registration by name.
func (s *Store) DeleteWebhook(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM webhooks WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: webhook %s", merr.ErrNotFound, name)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattsolo1/moxxy/internal/merr"
)

// ScheduledJob is a cron-triggered prompt. Triggering the cron itself is out
// of scope for this store; it only owns CRUD persistence of the definition.
type ScheduledJob struct {
	Name   string
	Cron   string
	Prompt string
	Source string
}

// UpsertScheduledJob inserts or replaces a scheduled job by name.
func (s *Store) UpsertScheduledJob(j ScheduledJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO scheduled_jobs (name, cron, prompt, source) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET cron = excluded.cron, prompt = excluded.prompt, source = excluded.source`,
		j.Name, j.Cron, j.Prompt, j.Source,
	)
	if err != nil {
		return fmt.Errorf("upsert scheduled job: %w", err)
	}
	return nil
}

// GetScheduledJob looks up a scheduled job by name.
func (s *Store) GetScheduledJob(name string) (ScheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var j ScheduledJob
	row := s.db.QueryRow(`SELECT name, cron, prompt, source FROM scheduled_jobs WHERE name = ?`, name)
	if err := row.Scan(&j.Name, &j.Cron, &j.Prompt, &j.Source); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ScheduledJob{}, fmt.Errorf("%w: scheduled job %s", merr.ErrNotFound, name)
		}
		return ScheduledJob{}, fmt.Errorf("get scheduled job: %w", err)
	}
	return j, nil
}

// ListScheduledJobs returns every scheduled job, ordered by name.
func (s *Store) ListScheduledJobs() ([]ScheduledJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT name, cron, prompt, source FROM scheduled_jobs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list scheduled jobs: %w", err)
	}
	defer rows.Close()

	var out []ScheduledJob
	for rows.Next() {
		var j ScheduledJob
		if err := rows.Scan(&j.Name, &j.Cron, &j.Prompt, &j.Source); err != nil {
			return nil, fmt.Errorf("scan scheduled job row: %w", err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// DeleteScheduledJob removes a scheduled job by name.
func (s *Store) DeleteScheduledJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM scheduled_jobs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete scheduled job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: scheduled job %s", merr.ErrNotFound, name)
	}
	return nil
}

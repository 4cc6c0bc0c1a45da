package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattsolo1/moxxy/internal/jobstate"
	"github.com/mattsolo1/moxxy/internal/merr"
)

// Job is one persisted orchestrator job row.
type Job struct {
	JobID      string
	AgentName  string
	Status     jobstate.State
	Prompt     string
	WorkerMode string
	Summary    string
	Error      string
	CreatedAt  string
	UpdatedAt  string
	FinishedAt sql.NullString
}

// InsertJob creates a new job row in jobstate.Queued.
func (s *Store) InsertJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO orchestrator_jobs (job_id, agent_name, status, prompt, worker_mode) VALUES (?, ?, ?, ?, ?)`,
		j.JobID, j.AgentName, string(jobstate.Queued), j.Prompt, j.WorkerMode,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetJob loads one job row by id.
func (s *Store) GetJob(jobID string) (Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var j Job
	var status, summary, errCol string
	row := s.db.QueryRow(
		`SELECT job_id, agent_name, status, prompt, worker_mode, summary, error, created_at, updated_at, finished_at
		 FROM orchestrator_jobs WHERE job_id = ?`, jobID,
	)
	if err := row.Scan(&j.JobID, &j.AgentName, &status, &j.Prompt, &j.WorkerMode,
		&summary, &errCol, &j.CreatedAt, &j.UpdatedAt, &j.FinishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, fmt.Errorf("%w: job %s", merr.ErrNotFound, jobID)
		}
		return Job{}, fmt.Errorf("get job: %w", err)
	}
	j.Status = jobstate.State(status)
	j.Summary = summary
	j.Error = errCol
	return j, nil
}

// TransitionJob moves jobID from its current status to to, refusing the
// write (merr.ErrIllegalTransition) when jobstate.CanTransition disallows
// it. The check runs under the store lock, and the row write and its audit
// event insert then happen in one transaction under that same lock, so no
// concurrent caller can
// race a status change in between and no reader ever observes the row
// mutation without its event (or vice versa). A transition to Canceled
// appends a "cancel_requested" event instead of the usual
// "job_status_changed" one, since that write is itself the cancellation
// request per §4.5.
func (s *Store) TransitionJob(jobID string, to jobstate.State, summary, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current string
	row := s.db.QueryRow(`SELECT status FROM orchestrator_jobs WHERE job_id = ?`, jobID)
	if err := row.Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: job %s", merr.ErrNotFound, jobID)
		}
		return fmt.Errorf("load job status: %w", err)
	}

	from := jobstate.State(current)
	if !jobstate.CanTransition(from, to) {
		return fmt.Errorf("%w: job %s cannot move %s -> %s", merr.ErrIllegalTransition, jobID, from, to)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin job transition: %w", err)
	}
	defer tx.Rollback()

	if jobstate.IsTerminal(to) {
		if _, err := tx.Exec(
			`UPDATE orchestrator_jobs SET status = ?, summary = ?, error = ?, updated_at = CURRENT_TIMESTAMP, finished_at = CURRENT_TIMESTAMP WHERE job_id = ?`,
			string(to), summary, errMsg, jobID,
		); err != nil {
			return fmt.Errorf("update job status: %w", err)
		}
	} else {
		if _, err := tx.Exec(
			`UPDATE orchestrator_jobs SET status = ?, summary = ?, error = ?, updated_at = CURRENT_TIMESTAMP WHERE job_id = ?`,
			string(to), summary, errMsg, jobID,
		); err != nil {
			return fmt.Errorf("update job status: %w", err)
		}
	}

	eventType := "job_status_changed"
	if to == jobstate.Canceled {
		eventType = "cancel_requested"
	}
	payload, err := json.Marshal(map[string]any{"from": string(from), "to": string(to), "summary": summary, "error": errMsg})
	if err != nil {
		return fmt.Errorf("marshal job transition payload: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO orchestrator_events (job_id, event_type, payload_json) VALUES (?, ?, ?)`,
		jobID, eventType, string(payload),
	); err != nil {
		return fmt.Errorf("append job transition event: %w", err)
	}

	return tx.Commit()
}

// ListJobsByAgent returns every job owned by agentName, newest first.
func (s *Store) ListJobsByAgent(agentName string) ([]Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT job_id, agent_name, status, prompt, worker_mode, summary, error, created_at, updated_at, finished_at
		 FROM orchestrator_jobs WHERE agent_name = ? ORDER BY created_at DESC`, agentName,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		var j Job
		var status, summary, errCol string
		if err := rows.Scan(&j.JobID, &j.AgentName, &status, &j.Prompt, &j.WorkerMode,
			&summary, &errCol, &j.CreatedAt, &j.UpdatedAt, &j.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		j.Status = jobstate.State(status)
		j.Summary = summary
		j.Error = errCol
		out = append(out, j)
	}
	return out, rows.Err()
}

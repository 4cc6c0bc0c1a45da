package store

import (
	"encoding/json"
	"fmt"
)

// Event is one append-only audit entry in a job's timeline — job status
// transitions, task status changes, and review decisions are recorded here so
// `job events` can replay a job's full history.
type Event struct {
	ID        int64
	JobID     string
	EventType string
	Payload   map[string]any
	CreatedAt string
}

// AppendEvent writes one event row for jobID. Callers typically call this
// in the same logical operation as a TransitionJob or UpdateTaskStatus
// write, immediately after it succeeds, so the event log and the state it
// describes never diverge for long.
func (s *Store) AppendEvent(jobID, eventType string, payload map[string]any) (int64, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal event payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT INTO orchestrator_events (job_id, event_type, payload_json) VALUES (?, ?, ?)`,
		jobID, eventType, string(payloadJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("append event: %w", err)
	}
	return res.LastInsertId()
}

// ListEvents returns every event for jobID, oldest first.
func (s *Store) ListEvents(jobID string) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT id, job_id, event_type, payload_json, created_at FROM orchestrator_events
		 WHERE job_id = ? ORDER BY id`, jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var payloadJSON string
		if err := rows.Scan(&e.ID, &e.JobID, &e.EventType, &payloadJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		if err := json.Unmarshal([]byte(payloadJSON), &e.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

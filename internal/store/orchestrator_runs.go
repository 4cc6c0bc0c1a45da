package store

import "fmt"

// WorkerRun is one execution attempt of a task by one worker, including
// retries: each retry inserts a fresh row with an incremented attempt.
type WorkerRun struct {
	WorkerRunID string
	JobID       string
	WorkerAgent string
	WorkerMode  string
	TaskPrompt  string
	Status      string
	Attempt     int
	StartedAt   string
	FinishedAt  string
	Output      string
	Error       string
}

// InsertWorkerRun records the start of one worker attempt.
func (s *Store) InsertWorkerRun(r WorkerRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO orchestrator_worker_runs
		 (worker_run_id, job_id, worker_agent, worker_mode, task_prompt, status, attempt, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		r.WorkerRunID, r.JobID, r.WorkerAgent, r.WorkerMode, r.TaskPrompt, r.Status, r.Attempt,
	)
	if err != nil {
		return fmt.Errorf("insert worker run: %w", err)
	}
	return nil
}

// FinishWorkerRun records the terminal outcome of a worker attempt.
func (s *Store) FinishWorkerRun(workerRunID, status, output, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`UPDATE orchestrator_worker_runs SET status = ?, output = ?, error = ?, finished_at = CURRENT_TIMESTAMP
		 WHERE worker_run_id = ?`,
		status, output, errMsg, workerRunID,
	)
	if err != nil {
		return fmt.Errorf("finish worker run: %w", err)
	}
	return nil
}

// ListWorkerRuns returns every attempt recorded for jobID, oldest first.
func (s *Store) ListWorkerRuns(jobID string) ([]WorkerRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT worker_run_id, job_id, worker_agent, worker_mode, task_prompt, status, attempt,
		 	COALESCE(started_at, ''), COALESCE(finished_at, ''), COALESCE(output, ''), COALESCE(error, '')
		 FROM orchestrator_worker_runs WHERE job_id = ? ORDER BY started_at`, jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("list worker runs: %w", err)
	}
	defer rows.Close()

	var out []WorkerRun
	for rows.Next() {
		var r WorkerRun
		if err := rows.Scan(&r.WorkerRunID, &r.JobID, &r.WorkerAgent, &r.WorkerMode, &r.TaskPrompt,
			&r.Status, &r.Attempt, &r.StartedAt, &r.FinishedAt, &r.Output, &r.Error); err != nil {
			return nil, fmt.Errorf("scan worker run row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

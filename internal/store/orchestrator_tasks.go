package store

import (
	"encoding/json"
	"fmt"

	"github.com/mattsolo1/moxxy/internal/merr"
)

// Task is one persisted node of a job's task graph.
type Task struct {
	TaskID      string
	JobID       string
	Role        string
	Title       string
	Description string
	Context     map[string]string
	DependsOn   []string
	Status      string
	WorkerAgent string
	Output      string
	Error       string
	Seq         int
}

// InsertTasks writes a full task graph for jobID in one transaction, so a
// reader never observes a partially-written graph.
func (s *Store) InsertTasks(jobID string, tasks []Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert tasks: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO orchestrator_tasks
		 (task_id, job_id, role, title, description, context_json, depends_on_json, status, worker_agent, output, error, seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert task: %w", err)
	}
	defer stmt.Close()

	for i, t := range tasks {
		ctxJSON, err := json.Marshal(t.Context)
		if err != nil {
			return fmt.Errorf("marshal task context: %w", err)
		}
		depJSON, err := json.Marshal(t.DependsOn)
		if err != nil {
			return fmt.Errorf("marshal task depends_on: %w", err)
		}
		if _, err := stmt.Exec(t.TaskID, jobID, t.Role, t.Title, t.Description,
			string(ctxJSON), string(depJSON), t.Status, t.WorkerAgent, t.Output, t.Error, i); err != nil {
			return fmt.Errorf("insert task %s: %w", t.TaskID, err)
		}
	}
	return tx.Commit()
}

func scanTask(row interface{ Scan(dest ...any) error }) (Task, error) {
	var t Task
	var ctxJSON, depJSON string
	if err := row.Scan(&t.TaskID, &t.JobID, &t.Role, &t.Title, &t.Description,
		&ctxJSON, &depJSON, &t.Status, &t.WorkerAgent, &t.Output, &t.Error, &t.Seq); err != nil {
		return Task{}, err
	}
	if err := json.Unmarshal([]byte(ctxJSON), &t.Context); err != nil {
		return Task{}, fmt.Errorf("unmarshal task context: %w", err)
	}
	if err := json.Unmarshal([]byte(depJSON), &t.DependsOn); err != nil {
		return Task{}, fmt.Errorf("unmarshal task depends_on: %w", err)
	}
	return t, nil
}

// ListTasks returns every task in jobID's graph, in insertion order.
func (s *Store) ListTasks(jobID string) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT task_id, job_id, role, title, description, context_json, depends_on_json, status, worker_agent, output, error, seq
		 FROM orchestrator_tasks WHERE job_id = ? ORDER BY seq`, jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateTaskStatus atomically writes a task's terminal fields — status,
// worker_agent, output, error — used by the executor when a worker finishes
// or fails a task.
func (s *Store) UpdateTaskStatus(jobID, taskID, status, workerAgent, output, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE orchestrator_tasks SET status = ?, worker_agent = ?, output = ?, error = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE job_id = ? AND task_id = ?`,
		status, workerAgent, output, errMsg, jobID, taskID,
	)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: task %s in job %s", merr.ErrNotFound, taskID, jobID)
	}
	return nil
}

// UpdateTaskStatusWithEvent performs the same write as UpdateTaskStatus and
// appends the task's "task_status_changed" event in the same transaction,
// so a reader never observes the row mutation without its audit event (or
// vice versa).
func (s *Store) UpdateTaskStatusWithEvent(jobID, taskID, status, workerAgent, output, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update task status: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE orchestrator_tasks SET status = ?, worker_agent = ?, output = ?, error = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE job_id = ? AND task_id = ?`,
		status, workerAgent, output, errMsg, jobID, taskID,
	)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: task %s in job %s", merr.ErrNotFound, taskID, jobID)
	}

	payload, err := json.Marshal(map[string]any{"task_id": taskID, "status": status})
	if err != nil {
		return fmt.Errorf("marshal task status payload: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO orchestrator_events (job_id, event_type, payload_json) VALUES (?, ?, ?)`,
		jobID, "task_status_changed", string(payload),
	); err != nil {
		return fmt.Errorf("append task status event: %w", err)
	}
	return tx.Commit()
}

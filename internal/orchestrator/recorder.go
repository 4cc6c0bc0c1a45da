package orchestrator

import (
	"context"
	"fmt"

	"github.com/mattsolo1/moxxy/internal/jobstate"
	"github.com/mattsolo1/moxxy/internal/store"
)

// jobCancelChecker satisfies taskgraph.CancelChecker by polling the job's
// persisted status, so a `job cancel` CLI write against the store is the
// only signal the executor needs to stop admitting further stages.
type jobCancelChecker struct {
	store *store.Store
	jobID string
}

func (c *jobCancelChecker) IsCanceled(ctx context.Context) (bool, error) {
	j, err := c.store.GetJob(c.jobID)
	if err != nil {
		return false, err
	}
	return j.Status == jobstate.Canceled, nil
}

// storeRecorder persists executor progress into the job's store, so
// `moxxy job status`/`job events` reflect a run while it's still in
// flight rather than only after it finishes. It satisfies
// taskgraph.RunRecorder.
type storeRecorder struct {
	store *store.Store
	jobID string
}

func (r *storeRecorder) RecordTaskStatus(taskID, status, workerAgent, output, errMsg string) {
	if err := r.store.UpdateTaskStatusWithEvent(r.jobID, taskID, status, workerAgent, output, errMsg); err != nil {
		log.WithError(err).WithField("task", taskID).Warn("failed to persist task status")
	}
}

// RecordCancelRequested appends the job's cancellation-observed event, the
// moment the executor itself notices a concurrent cancel and stops
// admitting further stages.
func (r *storeRecorder) RecordCancelRequested() {
	if _, err := r.store.AppendEvent(r.jobID, "cancel_requested", map[string]any{
		"observed_by": "executor",
	}); err != nil {
		log.WithError(err).WithField("job", r.jobID).Warn("failed to append cancel requested event")
	}
}

func (r *storeRecorder) RecordAttempt(taskID string, attempt int, status string) {
	workerRunID := fmt.Sprintf("%s-%s-%d", r.jobID, taskID, attempt)
	if err := r.store.InsertWorkerRun(store.WorkerRun{
		WorkerRunID: workerRunID,
		JobID:       r.jobID,
		Attempt:     attempt,
	}); err != nil {
		log.WithError(err).WithField("task", taskID).Warn("failed to record worker run attempt")
		return
	}
	if err := r.store.FinishWorkerRun(workerRunID, status, "", ""); err != nil {
		log.WithError(err).WithField("task", taskID).Warn("failed to finish worker run attempt")
	}
}

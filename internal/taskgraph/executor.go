package taskgraph

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/mattsolo1/moxxy/internal/logging"
	"github.com/mattsolo1/moxxy/internal/merr"
	"github.com/mattsolo1/moxxy/internal/worker"
)

// Worker is whatever can carry out one task's work: the agent runtime
// layer (native or ephemeral) behind a single uniform contract. Taking
// this as an interface — rather than importing agentruntime directly —
// keeps the graph executor ignorant of how a task actually gets executed.
type Worker interface {
	Execute(ctx context.Context, assignment worker.Assignment, task *Node) (output string, err error)
}

// RunRecorder persists the side effects of execution: a task status
// change, a retry attempt, or the executor observing a cancellation.
// Implementations normally wrap a *store.Store; tests can supply an
// in-memory fake.
type RunRecorder interface {
	RecordTaskStatus(taskID, status, workerAgent, output, errMsg string)
	RecordAttempt(taskID string, attempt int, status string)
	RecordCancelRequested()
}

// CancelChecker reports whether a job's persisted status has been flipped
// to Canceled out of band (e.g. by a `job cancel` CLI call) since the
// executor's last admission check.
type CancelChecker interface {
	IsCanceled(ctx context.Context) (bool, error)
}

// Executor drives one job's task graph from Dispatching through to either
// Reviewing (success path) or a Replanning/Failed outcome, honoring the
// configured failure policy, retry limit, and parallelism cap.
type Executor struct {
	Graph          *Graph
	Assignments    map[string]worker.Assignment // task id -> assigned worker
	Worker         Worker
	Recorder       RunRecorder
	CancelChecker  CancelChecker // optional; nil disables cooperative-cancel polling
	FailurePolicy  worker.FailurePolicy
	RetryLimit     int
	MaxParallelism int // max tasks in flight per stage; 0 means unlimited

	cancelRecorded bool
}

var log = logging.New("taskgraph")

// Run executes every stage of the graph's ExecutionPlan in order, with up
// to MaxParallelism tasks in flight within a stage (unlimited when 0).
// It returns merr.ErrWorkerFailed when FailFast is configured and any
// task exhausts its retries; under AutoReplan and BestEffort it keeps
// going and returns a nil error with failed tasks left in StatusFailed
// for the caller to inspect and decide whether to replan.
func (e *Executor) Run(ctx context.Context) error {
	plan, err := e.Graph.ExecutionPlan()
	if err != nil {
		return fmt.Errorf("build execution plan: %w", err)
	}

	for stageIdx, stage := range plan.Stages {
		if e.checkCanceled(ctx) {
			e.skipRemaining(plan)
			return merr.ErrCanceled
		}

		e.propagateSkips(plan)

		g, gctx := errgroup.WithContext(ctx)
		var sem *semaphore.Weighted
		if e.MaxParallelism > 0 {
			sem = semaphore.NewWeighted(int64(e.MaxParallelism))
		}

		for _, taskID := range stage {
			node := e.Graph.Node(taskID)
			if node.Status == StatusSkipped {
				continue
			}
			taskID := taskID
			g.Go(func() error {
				if sem != nil {
					if err := sem.Acquire(gctx, 1); err != nil {
						return err
					}
					defer sem.Release(1)
				}
				return e.runTask(gctx, taskID)
			})
		}

		if err := g.Wait(); err != nil {
			if e.FailurePolicy == worker.FailurePolicyFailFast {
				return err
			}
			log.WithError(err).WithField("stage", stageIdx).Warn("stage had failures, continuing under non-fail-fast policy")
		}
	}
	e.propagateSkips(plan)
	return nil
}

// checkCanceled reports whether the executor should stop admitting new
// stages: either ctx itself was canceled, or (when a CancelChecker is
// wired) the job's persisted status has been flipped to Canceled out of
// band since the last stage started. The first time it observes a cancel
// it records CancelRequested exactly once, per §4.5.
func (e *Executor) checkCanceled(ctx context.Context) bool {
	canceled := ctx.Err() != nil
	if !canceled && e.CancelChecker != nil {
		c, err := e.CancelChecker.IsCanceled(ctx)
		if err != nil {
			log.WithError(err).Warn("cancel check failed, proceeding with the stage")
		} else {
			canceled = c
		}
	}
	if canceled && !e.cancelRecorded {
		e.cancelRecorded = true
		if e.Recorder != nil {
			e.Recorder.RecordCancelRequested()
		}
	}
	return canceled
}

// skipRemaining marks every task that never started as Skipped once the
// executor has refused to admit any more stages, so the graph reaches a
// fully-terminal state rather than leaving unscheduled tasks Pending.
func (e *Executor) skipRemaining(plan *ExecutionPlan) {
	for _, stage := range plan.Stages {
		for _, taskID := range stage {
			node := e.Graph.Node(taskID)
			if node.Status != StatusPending && node.Status != "" {
				continue
			}
			node.Status = StatusSkipped
			node.Error = "skipped: job canceled"
			if e.Recorder != nil {
				e.Recorder.RecordTaskStatus(taskID, string(StatusSkipped), "", "", node.Error)
			}
		}
	}
}

// propagateSkips marks every not-yet-started task whose DependsOn includes
// a Failed or Skipped task as Skipped, transitively, so a later stage never
// admits a task via Worker.Execute when one of its dependencies did not
// reach Succeeded or Skipped.
func (e *Executor) propagateSkips(plan *ExecutionPlan) {
	changed := true
	for changed {
		changed = false
		for _, stage := range plan.Stages {
			for _, taskID := range stage {
				node := e.Graph.Node(taskID)
				if node.Status != StatusPending && node.Status != "" {
					continue
				}
				for _, dep := range node.DependsOn {
					depNode := e.Graph.Node(dep)
					if depNode == nil {
						continue
					}
					if depNode.Status == StatusFailed || depNode.Status == StatusSkipped {
						node.Status = StatusSkipped
						node.Error = fmt.Sprintf("skipped: dependency %q did not succeed", dep)
						if e.Recorder != nil {
							e.Recorder.RecordTaskStatus(taskID, string(StatusSkipped), "", "", node.Error)
						}
						changed = true
						break
					}
				}
			}
		}
	}
}

func (e *Executor) runTask(ctx context.Context, taskID string) error {
	node := e.Graph.Node(taskID)
	if node == nil {
		return fmt.Errorf("%w: task %s", merr.ErrNotFound, taskID)
	}
	assignment, ok := e.Assignments[taskID]
	if !ok {
		return fmt.Errorf("no worker assignment for task %s", taskID)
	}

	node.Status = StatusInProgress

	var lastErr error
	attempts := e.RetryLimit + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		output, err := e.Worker.Execute(ctx, assignment, node)
		if e.Recorder != nil {
			status := "succeeded"
			if err != nil {
				status = "failed"
			}
			e.Recorder.RecordAttempt(taskID, attempt, status)
		}
		if err == nil {
			node.Status = StatusSucceeded
			node.Output = output
			node.Error = ""
			if e.Recorder != nil {
				e.Recorder.RecordTaskStatus(taskID, string(StatusSucceeded), assignment.WorkerAgent, output, "")
			}
			return nil
		}

		lastErr = err
		if !merr.Classify(err) {
			break // not locally recoverable, retrying would not help
		}
	}

	node.Status = StatusFailed
	node.Error = lastErr.Error()
	if e.Recorder != nil {
		e.Recorder.RecordTaskStatus(taskID, string(StatusFailed), assignment.WorkerAgent, "", lastErr.Error())
	}

	switch e.FailurePolicy {
	case worker.FailurePolicyBestEffort:
		return nil // swallow: downstream stages still attempt to run
	default:
		return fmt.Errorf("%w: task %s: %v", merr.ErrWorkerFailed, taskID, lastErr)
	}
}

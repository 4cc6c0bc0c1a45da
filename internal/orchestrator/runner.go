// Package orchestrator wires the pure worker-assignment algebra, the task
// graph executor, the persisted store, and the LLM provider/vault
// subsystems into one job submission and dispatch path. Nothing in
// internal/worker or internal/taskgraph knows a *store.Store exists; this
// package is where those pieces meet, the way the orchestration core's web
// handlers sit on top of its pure core:: modules.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mattsolo1/moxxy/internal/jobstate"
	"github.com/mattsolo1/moxxy/internal/logging"
	"github.com/mattsolo1/moxxy/internal/merr"
	"github.com/mattsolo1/moxxy/internal/provider"
	"github.com/mattsolo1/moxxy/internal/store"
	"github.com/mattsolo1/moxxy/internal/taskgraph"
	"github.com/mattsolo1/moxxy/internal/worker"
)

var log = logging.New("orchestrator")

// TaskSpec is one caller-supplied task in a job submission, before it has
// been assigned a worker or entered the graph.
type TaskSpec struct {
	TaskID      string
	Role        string
	Title       string
	Description string
	DependsOn   []string
}

// JobSpec is everything a caller needs to submit to start a new job.
type JobSpec struct {
	AgentName       string
	Prompt          string
	TemplateID      string
	WorkerMode      *worker.Mode
	MaxParallelism  *int
	ExistingAgents  []string
	EphemeralCount  int
	ProviderID      string
	ModelID         string
	Tasks           []TaskSpec
}

// Runner submits jobs and dispatches their task graphs against real
// workers. One Runner is shared by every CLI command and serve-loop caller.
type Runner struct {
	Registry  *store.Registry
	Providers *provider.Registry
	DataDir   string
}

// NewRunner builds a Runner from the daemon's already-opened subsystems.
// Secrets are resolved per-agent (vault.New wraps each agent's own
// database), so Runner itself holds no single Vault.
func NewRunner(registry *store.Registry, providers *provider.Registry, dataDir string) *Runner {
	return &Runner{Registry: registry, Providers: providers, DataDir: dataDir}
}

// SubmitJob resolves the job's effective mode/parallelism/assignments,
// persists the job and its task graph in jobstate.Queued, moves the job on
// to jobstate.Planning, and returns the generated job id. The graph is not dispatched until Dispatch is called;
// submission and dispatch are split so a caller (or a test) can inspect
// the persisted graph before execution starts.
func (r *Runner) SubmitJob(spec JobSpec) (string, error) {
	s, err := r.Registry.Agent(spec.AgentName)
	if err != nil {
		return "", fmt.Errorf("open agent store: %w", err)
	}

	agentCfg, err := s.GetAgentConfig(spec.AgentName)
	if err != nil {
		return "", fmt.Errorf("load agent config: %w", err)
	}

	templateID := spec.TemplateID
	if templateID == "" {
		templateID = agentCfg.DefaultTemplateID
	}
	var tpl *worker.Template
	if templateID != "" {
		t, err := s.GetTemplate(templateID)
		if err != nil {
			return "", fmt.Errorf("load template %q: %w", templateID, err)
		}
		tpl = &t
	}

	mode, maxParallelism, advisory := worker.ResolveJobDefaults(agentCfg, tpl, spec.WorkerMode, spec.MaxParallelism)
	if advisory != nil {
		log.WithField("agent", spec.AgentName).Warn(advisory.String())
	}

	var spawnProfiles []worker.SpawnProfile
	if tpl != nil {
		spawnProfiles = tpl.SpawnProfiles
	}
	assignments := worker.ResolveWorkerAssignments(mode, spec.ExistingAgents, spawnProfiles, spec.EphemeralCount)
	if len(assignments) == 0 {
		return "", fmt.Errorf("%w: job resolves to zero worker assignments", merr.ErrValidation)
	}

	jobID := "job-" + uuid.NewString()
	if err := s.InsertJob(store.Job{
		JobID:      jobID,
		AgentName:  spec.AgentName,
		Prompt:     spec.Prompt,
		WorkerMode: string(mode),
	}); err != nil {
		return "", fmt.Errorf("insert job: %w", err)
	}

	tasks := make([]store.Task, 0, len(spec.Tasks))
	for i, ts := range spec.Tasks {
		assignment := assignments[i%len(assignments)]
		if assignment.Provider == "" {
			assignment.Provider = spec.ProviderID
		}
		if assignment.Model == "" {
			assignment.Model = spec.ModelID
		}
		tasks = append(tasks, store.Task{
			TaskID:      ts.TaskID,
			JobID:       jobID,
			Role:        ts.Role,
			Title:       ts.Title,
			Description: ts.Description,
			Context:     assignmentToContext(assignment),
			DependsOn:   ts.DependsOn,
			Status:      string(taskgraph.StatusPending),
			WorkerAgent: assignment.WorkerAgent,
		})
	}
	if err := s.InsertTasks(jobID, tasks); err != nil {
		return "", fmt.Errorf("insert tasks: %w", err)
	}

	if err := s.TransitionJob(jobID, jobstate.Planning, "", ""); err != nil {
		return "", fmt.Errorf("queued -> planning: %w", err)
	}

	return jobID, nil
}

// Dispatch loads a previously submitted job's persisted graph and runs it
// to completion (or until ctx is canceled or the job is externally
// canceled), driving job state through Dispatching -> Executing and then,
// for a graph that finishes with every task terminal, through Reviewing
// and the merge gate (MergePending or Merging) to Completed — or straight
// to Failed/Canceled when the executor aborts early. Callers typically run
// this in a goroutine right after SubmitJob.
func (r *Runner) Dispatch(ctx context.Context, agentName, jobID string, retryLimit, maxParallelism int, policy worker.FailurePolicy) error {
	s, err := r.Registry.Agent(agentName)
	if err != nil {
		return fmt.Errorf("open agent store: %w", err)
	}

	agentCfg, err := s.GetAgentConfig(agentName)
	if err != nil {
		return fmt.Errorf("load agent config: %w", err)
	}

	tasks, err := s.ListTasks(jobID)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return fmt.Errorf("%w: job %s has no tasks", merr.ErrNotFound, jobID)
	}

	nodes := make([]taskgraph.Node, 0, len(tasks))
	assignments := make(map[string]worker.Assignment, len(tasks))
	for _, t := range tasks {
		nodes = append(nodes, taskgraph.Node{
			TaskID:      t.TaskID,
			Role:        t.Role,
			Title:       t.Title,
			Description: t.Description,
			DependsOn:   t.DependsOn,
			Status:      taskgraph.Status(t.Status),
			WorkerAgent: t.WorkerAgent,
		})
		assignment := contextToAssignment(t.Context)
		assignment.WorkerAgent = t.WorkerAgent
		assignment.Role = t.Role
		assignments[t.TaskID] = assignment
	}

	if err := s.TransitionJob(jobID, jobstate.Dispatching, "", ""); err != nil {
		return fmt.Errorf("planning -> dispatching: %w", err)
	}
	if err := s.TransitionJob(jobID, jobstate.Executing, "", ""); err != nil {
		return fmt.Errorf("dispatching -> executing: %w", err)
	}

	exec := &taskgraph.Executor{
		Graph:          taskgraph.NewGraph(nodes),
		Assignments:    assignments,
		Worker:         &router{runner: r, agentName: agentName, jobID: jobID},
		Recorder:       &storeRecorder{store: s, jobID: jobID},
		CancelChecker:  &jobCancelChecker{store: s, jobID: jobID},
		FailurePolicy:  policy,
		RetryLimit:     retryLimit,
		MaxParallelism: maxParallelism,
	}

	runErr := exec.Run(ctx)

	if errors.Is(runErr, merr.ErrCanceled) {
		if err := s.TransitionJob(jobID, jobstate.Canceled, "", "canceled during execution"); err != nil {
			log.WithField("job", jobID).WithError(err).Warn("illegal transition to canceled, leaving job state as-is")
		}
		return runErr
	}
	if runErr != nil {
		// FailFast (or any other non-recoverable executor error) aborts the
		// graph before every task reaches a terminal status, so there is
		// nothing to review: skip straight to Failed.
		if err := s.TransitionJob(jobID, jobstate.Failed, "", runErr.Error()); err != nil {
			log.WithField("job", jobID).WithError(err).Warn("illegal transition to failed, leaving job state as-is")
		}
		return runErr
	}

	final, err := s.ListTasks(jobID)
	if err != nil {
		return fmt.Errorf("list tasks after run: %w", err)
	}
	anyFailed := false
	for _, t := range final {
		if t.Status == string(taskgraph.StatusFailed) {
			anyFailed = true
			break
		}
	}

	return r.review(s, jobID, anyFailed, agentCfg.DefaultMergePolicy)
}

// review drives a fully-terminal graph through §4.3 steps 4-5: a review
// turn (ReviewPassed when no task failed, ReviewRejected otherwise) and,
// on a pass, the merge gate governed by mergePolicy.
func (r *Runner) review(s *store.Store, jobID string, anyTaskFailed bool, mergePolicy worker.MergePolicy) error {
	if err := s.TransitionJob(jobID, jobstate.Reviewing, "", ""); err != nil {
		return fmt.Errorf("executing -> reviewing: %w", err)
	}
	if _, err := s.AppendEvent(jobID, "review_started", nil); err != nil {
		log.WithField("job", jobID).WithError(err).Warn("failed to append review_started event")
	}

	if anyTaskFailed {
		if _, err := s.AppendEvent(jobID, "review_rejected", nil); err != nil {
			log.WithField("job", jobID).WithError(err).Warn("failed to append review_rejected event")
		}
		if err := s.TransitionJob(jobID, jobstate.Failed, "", "review rejected: one or more tasks failed"); err != nil {
			log.WithField("job", jobID).WithError(err).Warn("illegal transition to failed, leaving job state as-is")
		}
		return fmt.Errorf("%w: job %s rejected at review", merr.ErrWorkerFailed, jobID)
	}

	if _, err := s.AppendEvent(jobID, "review_passed", nil); err != nil {
		log.WithField("job", jobID).WithError(err).Warn("failed to append review_passed event")
	}

	if mergePolicy == worker.MergePolicyManualApproval {
		if err := s.TransitionJob(jobID, jobstate.MergePending, "", ""); err != nil {
			return fmt.Errorf("reviewing -> merge_pending: %w", err)
		}
		return nil
	}

	// worker.MergePolicyAutoOnReviewPass (and the zero value, matching the
	// agent-config default of requiring explicit approval being already
	// handled above): merge immediately once review passes.
	if err := s.TransitionJob(jobID, jobstate.Merging, "", ""); err != nil {
		return fmt.Errorf("reviewing -> merging: %w", err)
	}
	if err := s.TransitionJob(jobID, jobstate.Completed, "", ""); err != nil {
		return fmt.Errorf("merging -> completed: %w", err)
	}
	return nil
}

// assignmentToContext and contextToAssignment round-trip the parts of a
// worker.Assignment that store.Task has no dedicated column for (mode,
// persona, provider, model, runtime type, image profile) through the
// task's free-form Context bag, so Dispatch can rebuild the exact
// assignment SubmitJob resolved without a schema change.
func assignmentToContext(a worker.Assignment) map[string]string {
	return map[string]string{
		"worker_mode":   string(a.WorkerMode),
		"persona":       a.Persona,
		"provider":      a.Provider,
		"model":         a.Model,
		"runtime_type":  a.RuntimeType,
		"image_profile": a.ImageProfile,
	}
}

func contextToAssignment(ctx map[string]string) worker.Assignment {
	return worker.Assignment{
		WorkerMode:   worker.Mode(ctx["worker_mode"]),
		Persona:      ctx["persona"],
		Provider:     ctx["provider"],
		Model:        ctx["model"],
		RuntimeType:  ctx["runtime_type"],
		ImageProfile: ctx["image_profile"],
	}
}

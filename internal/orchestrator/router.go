package orchestrator

import (
	"context"
	"fmt"

	"github.com/mattsolo1/moxxy/internal/agentruntime"
	"github.com/mattsolo1/moxxy/internal/merr"
	"github.com/mattsolo1/moxxy/internal/provider"
	"github.com/mattsolo1/moxxy/internal/store"
	"github.com/mattsolo1/moxxy/internal/taskgraph"
	"github.com/mattsolo1/moxxy/internal/vault"
	"github.com/mattsolo1/moxxy/internal/worker"
)

// router implements taskgraph.Worker by dispatching each task to a real
// NativeAgent or EphemeralAgent depending on the task's resolved worker
// mode, so the executor itself never needs to know how a worker is staffed.
type router struct {
	runner    *Runner
	agentName string
	jobID     string
}

func (r *router) Execute(ctx context.Context, assignment worker.Assignment, task *taskgraph.Node) (string, error) {
	switch assignment.WorkerMode {
	case worker.ModeExisting:
		return r.executeExisting(ctx, assignment, task)
	case worker.ModeEphemeral:
		return r.executeEphemeral(ctx, assignment, task)
	default:
		return "", fmt.Errorf("%w: task %s has unresolved worker mode %q", merr.ErrValidation, task.TaskID, assignment.WorkerMode)
	}
}

func (r *router) executeExisting(ctx context.Context, assignment worker.Assignment, task *taskgraph.Node) (string, error) {
	s, err := r.runner.Registry.Agent(assignment.WorkerAgent)
	if err != nil {
		return "", fmt.Errorf("open agent store for %q: %w", assignment.WorkerAgent, err)
	}

	llm, err := r.runner.resolveClient(s, assignment)
	if err != nil {
		return "", err
	}

	agent := &agentruntime.NativeAgent{Name: assignment.WorkerAgent, Store: s, LLM: llm}
	return agent.Execute(ctx, assignment, task)
}

func (r *router) executeEphemeral(ctx context.Context, assignment worker.Assignment, task *taskgraph.Node) (string, error) {
	caps := agentruntime.ResolveCapabilities(assignment.ImageProfile)

	if _, err := agentruntime.EnsureWasmImage(r.runner.DataDir); err != nil {
		return "", fmt.Errorf("ensure wasm image: %w", err)
	}
	imagesDir := r.runner.DataDir + "/images"
	profile := assignment.ImageProfile
	if profile == "" {
		profile = "base"
	}
	imagePath := agentruntime.ResolveImagePath(profile, "", imagesDir)

	agent := &agentruntime.EphemeralAgent{
		JobID:     r.jobID,
		DataDir:   r.runner.DataDir,
		Container: agentruntime.NewWasmContainer("wasmtime", imagePath, caps),
	}
	return agent.Execute(ctx, assignment, task)
}

// resolveClient builds an LlmClient for assignment's provider, pulling the
// API key from agentStore's vault (the worker agent's own) at the provider's
// configured key. Secrets are per-agent, never a daemon-wide singleton.
func (r *Runner) resolveClient(agentStore *store.Store, assignment worker.Assignment) (provider.LlmClient, error) {
	if assignment.Provider == "" {
		return nil, fmt.Errorf("%w: worker %q has no provider assigned", merr.ErrValidation, assignment.WorkerAgent)
	}
	def, ok := r.Providers.Get(assignment.Provider)
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", merr.ErrValidation, assignment.Provider)
	}
	apiKey := ""
	if def.Auth.VaultKey != "" {
		v := vault.New(agentStore.DB())
		if key, err := v.Get(def.Auth.VaultKey); err == nil {
			apiKey = key
		}
	}
	return provider.NewClient(def, apiKey)
}

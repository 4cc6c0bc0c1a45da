package agentruntime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattsolo1/moxxy/internal/merr"
	"github.com/mattsolo1/moxxy/internal/taskgraph"
	"github.com/mattsolo1/moxxy/internal/worker"
)

// defaultPersonaTemplate is used when a worker assignment carries no
// explicit persona text.
const defaultPersonaTemplate = "You are a %s agent. Execute the assigned task using available skills."

// EphemeralAgent provisions a task-scoped workspace, writes a persona.md
// primer, runs the task inside a sandboxed Container, and removes the
// workspace afterward regardless of outcome. It satisfies taskgraph.Worker.
type EphemeralAgent struct {
	JobID     string
	DataDir   string
	Container Container
}

// workspaceDir returns the scratch directory for one (job, worker) pair,
// named the way the original orchestrator names ephemeral agents so
// operators can correlate a stray directory with the run that created it.
func (a *EphemeralAgent) workspaceDir(assignment worker.Assignment) string {
	name := fmt.Sprintf("ephemeral-%s-%s", sanitizePathComponent(a.JobID), sanitizePathComponent(assignment.WorkerAgent))
	return filepath.Join(a.DataDir, "agents", name)
}

func (a *EphemeralAgent) Execute(ctx context.Context, assignment worker.Assignment, task *taskgraph.Node) (string, error) {
	workspaceDir := a.workspaceDir(assignment)

	if err := os.MkdirAll(workspaceDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating ephemeral workspace: %v", merr.ErrWorkerFailed, err)
	}
	defer func() {
		if err := os.RemoveAll(workspaceDir); err != nil {
			log.WithError(err).WithField("workspace", workspaceDir).Warn("failed to clean up ephemeral workspace")
		}
	}()

	persona := assignment.Persona
	if persona == "" {
		persona = fmt.Sprintf(defaultPersonaTemplate, assignment.Role)
	}
	if err := os.WriteFile(filepath.Join(workspaceDir, "persona.md"), []byte(persona), 0o644); err != nil {
		return "", fmt.Errorf("%w: writing persona: %v", merr.ErrWorkerFailed, err)
	}

	trigger := fmt.Sprintf("ORCHESTRATOR TASK [%s]: %s", task.Role, task.Description)

	log.WithField("worker", assignment.WorkerAgent).WithField("workspace", workspaceDir).Info("spawning ephemeral agent")

	output, err := a.Container.Execute(ctx, trigger, workspaceDir)
	if err != nil {
		return "", fmt.Errorf("%w: ephemeral agent %q: %v", merr.ErrWorkerFailed, assignment.WorkerAgent, err)
	}
	return output, nil
}

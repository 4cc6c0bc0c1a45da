package agentruntime

import (
	"context"
	"fmt"

	"github.com/mattsolo1/moxxy/internal/logging"
	"github.com/mattsolo1/moxxy/internal/merr"
	"github.com/mattsolo1/moxxy/internal/provider"
	"github.com/mattsolo1/moxxy/internal/store"
	"github.com/mattsolo1/moxxy/internal/taskgraph"
	"github.com/mattsolo1/moxxy/internal/worker"
)

var log = logging.New("agentruntime")

// NativeAgent dispatches a task onto an already-running agent's own
// memory/LLM subsystems: no workspace is provisioned, nothing is torn down
// afterward. It satisfies taskgraph.Worker.
type NativeAgent struct {
	Name  string
	Store *store.Store
	LLM   provider.LlmClient
}

// Execute sends the task as a single orchestrator-tagged trigger turn to
// the agent's configured model, records the exchange in the agent's
// short-term memory under a session scoped to the task id, and returns the
// model's reply as the task's output.
func (a *NativeAgent) Execute(ctx context.Context, assignment worker.Assignment, task *taskgraph.Node) (string, error) {
	if a.LLM == nil {
		return "", fmt.Errorf("%w: agent %q has no configured LLM client", merr.ErrProvider, a.Name)
	}

	trigger := fmt.Sprintf("ORCHESTRATOR TASK [%s]: %s", task.Role, task.Description)
	sessionID := "orchestrator-" + task.TaskID

	log.WithField("agent", a.Name).WithField("task", task.TaskID).Info("dispatching to native agent")

	if a.Store != nil {
		if _, err := a.Store.AppendStm(sessionID, "user", trigger); err != nil {
			log.WithError(err).Warn("failed to record trigger in short-term memory")
		}
	}

	messages := []provider.ChatMessage{{Role: "user", Content: trigger}}
	output, err := a.LLM.Generate(ctx, assignment.Model, messages)
	if err != nil {
		return "", fmt.Errorf("%w: native agent %q: %v", merr.ErrWorkerFailed, a.Name, err)
	}

	if a.Store != nil {
		if _, err := a.Store.AppendStm(sessionID, "assistant", output); err != nil {
			log.WithError(err).Warn("failed to record reply in short-term memory")
		}
	}

	return output, nil
}

package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/moxxy/internal/taskgraph"
	"github.com/mattsolo1/moxxy/internal/worker"
)

func TestRouterRejectsUnresolvedWorkerMode(t *testing.T) {
	r, _ := newTestRunner(t)
	rt := &router{runner: r, agentName: "agent-a", jobID: "job-1"}

	_, err := rt.Execute(context.Background(), worker.Assignment{WorkerAgent: "x"}, &taskgraph.Node{TaskID: "t1"})
	require.Error(t, err)
}

func TestResolveClientRejectsMissingProvider(t *testing.T) {
	r, dataDir := newTestRunner(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "agents", "agent-a"), 0o755))
	s, err := r.Registry.Agent("agent-a")
	require.NoError(t, err)

	_, err = r.resolveClient(s, worker.Assignment{WorkerAgent: "agent-a"})
	require.Error(t, err)
}

func TestResolveClientRejectsUnknownProviderID(t *testing.T) {
	r, _ := newTestRunner(t)
	s, err := r.Registry.Agent("agent-a")
	require.NoError(t, err)

	_, err = r.resolveClient(s, worker.Assignment{WorkerAgent: "agent-a", Provider: "no-such-provider"})
	require.Error(t, err)
}

func TestResolveClientBuildsClientForKnownProvider(t *testing.T) {
	r, _ := newTestRunner(t)
	s, err := r.Registry.Agent("agent-a")
	require.NoError(t, err)

	// Every built-in registry ships at least one provider; exercise the
	// first one end to end without asserting on a specific id.
	require.NotEmpty(t, r.Providers.Providers)
	def := r.Providers.Providers[0]

	client, err := r.resolveClient(s, worker.Assignment{WorkerAgent: "agent-a", Provider: def.ID})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestAssignmentContextRoundTrips(t *testing.T) {
	a := worker.Assignment{
		WorkerMode:   worker.ModeEphemeral,
		Persona:      "you are a tester",
		Provider:     "openai",
		Model:        "gpt-4o",
		RuntimeType:  "base",
		ImageProfile: "networked",
	}
	ctx := assignmentToContext(a)
	got := contextToAssignment(ctx)
	assert.Equal(t, a.WorkerMode, got.WorkerMode)
	assert.Equal(t, a.Persona, got.Persona)
	assert.Equal(t, a.Provider, got.Provider)
	assert.Equal(t, a.Model, got.Model)
	assert.Equal(t, a.RuntimeType, got.RuntimeType)
	assert.Equal(t, a.ImageProfile, got.ImageProfile)
}

package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestWorkerRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.NewString()
	require.NoError(t, s.InsertJob(Job{JobID: jobID, AgentName: "agent-a", Prompt: "p", WorkerMode: "ephemeral"}))

	runID := uuid.NewString()
	require.NoError(t, s.InsertWorkerRun(WorkerRun{
		WorkerRunID: runID, JobID: jobID, WorkerAgent: "ephemeral-1",
		WorkerMode: "ephemeral", TaskPrompt: "build it", Status: "running", Attempt: 1,
	}))
	require.NoError(t, s.FinishWorkerRun(runID, "completed", "built successfully", ""))

	runs, err := s.ListWorkerRuns(jobID)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "completed", runs[0].Status)
	require.Equal(t, "built successfully", runs[0].Output)
}

func TestWorkerRunRetryInsertsNewAttempt(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.NewString()
	require.NoError(t, s.InsertJob(Job{JobID: jobID, AgentName: "agent-a", Prompt: "p", WorkerMode: "ephemeral"}))

	require.NoError(t, s.InsertWorkerRun(WorkerRun{WorkerRunID: uuid.NewString(), JobID: jobID, WorkerAgent: "ephemeral-1", WorkerMode: "ephemeral", TaskPrompt: "p", Status: "failed", Attempt: 1}))
	require.NoError(t, s.InsertWorkerRun(WorkerRun{WorkerRunID: uuid.NewString(), JobID: jobID, WorkerAgent: "ephemeral-1", WorkerMode: "ephemeral", TaskPrompt: "p", Status: "running", Attempt: 2}))

	runs, err := s.ListWorkerRuns(jobID)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, 2, runs[1].Attempt)
}

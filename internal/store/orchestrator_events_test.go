package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAppendAndListEventsPreservesOrder(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.NewString()
	require.NoError(t, s.InsertJob(Job{JobID: jobID, AgentName: "agent-a", Prompt: "p", WorkerMode: "mixed"}))

	_, err := s.AppendEvent(jobID, "job_queued", map[string]any{"worker_mode": "mixed"})
	require.NoError(t, err)
	_, err = s.AppendEvent(jobID, "job_planning", map[string]any{})
	require.NoError(t, err)

	events, err := s.ListEvents(jobID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "job_queued", events[0].EventType)
	require.Equal(t, "mixed", events[0].Payload["worker_mode"])
	require.Equal(t, "job_planning", events[1].EventType)
}

package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mattsolo1/moxxy/internal/jobstate"
	"github.com/mattsolo1/moxxy/internal/merr"
	"github.com/stretchr/testify/require"
)

func TestInsertJobStartsQueued(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.NewString()

	require.NoError(t, s.InsertJob(Job{JobID: jobID, AgentName: "agent-a", Prompt: "do work", WorkerMode: "mixed"}))

	j, err := s.GetJob(jobID)
	require.NoError(t, err)
	require.Equal(t, jobstate.Queued, j.Status)
}

func TestTransitionJobFollowsAllowedPath(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.NewString()
	require.NoError(t, s.InsertJob(Job{JobID: jobID, AgentName: "agent-a", Prompt: "do work", WorkerMode: "mixed"}))

	require.NoError(t, s.TransitionJob(jobID, jobstate.Planning, "", ""))
	require.NoError(t, s.TransitionJob(jobID, jobstate.Dispatching, "", ""))

	j, err := s.GetJob(jobID)
	require.NoError(t, err)
	require.Equal(t, jobstate.Dispatching, j.Status)
}

func TestTransitionJobRejectsIllegalMove(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.NewString()
	require.NoError(t, s.InsertJob(Job{JobID: jobID, AgentName: "agent-a", Prompt: "do work", WorkerMode: "mixed"}))

	err := s.TransitionJob(jobID, jobstate.Merging, "", "")
	require.Error(t, err)
	require.True(t, errors.Is(err, merr.ErrIllegalTransition))

	j, err := s.GetJob(jobID)
	require.NoError(t, err)
	require.Equal(t, jobstate.Queued, j.Status)
}

func TestTransitionJobToTerminalSetsFinishedAt(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.NewString()
	require.NoError(t, s.InsertJob(Job{JobID: jobID, AgentName: "agent-a", Prompt: "do work", WorkerMode: "existing"}))
	require.NoError(t, s.TransitionJob(jobID, jobstate.Canceled, "", "canceled by operator"))

	j, err := s.GetJob(jobID)
	require.NoError(t, err)
	require.Equal(t, jobstate.Canceled, j.Status)
	require.True(t, j.FinishedAt.Valid)
	require.Equal(t, "canceled by operator", j.Error)
}

func TestTransitionJobAppendsAuditEvent(t *testing.T) {
	s := newTestStore(t)
	jobID := uuid.NewString()
	require.NoError(t, s.InsertJob(Job{JobID: jobID, AgentName: "agent-a", Prompt: "do work", WorkerMode: "mixed"}))

	require.NoError(t, s.TransitionJob(jobID, jobstate.Planning, "", ""))
	require.NoError(t, s.TransitionJob(jobID, jobstate.Canceled, "", "operator request"))

	events, err := s.ListEvents(jobID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "job_status_changed", events[0].EventType)
	require.Equal(t, "cancel_requested", events[1].EventType)
}

func TestListJobsByAgentFiltersCorrectly(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.InsertJob(Job{JobID: uuid.NewString(), AgentName: "agent-a", Prompt: "p1", WorkerMode: "mixed"}))
	require.NoError(t, s.InsertJob(Job{JobID: uuid.NewString(), AgentName: "agent-b", Prompt: "p2", WorkerMode: "mixed"}))

	jobs, err := s.ListJobsByAgent("agent-a")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, "agent-a", jobs[0].AgentName)
}

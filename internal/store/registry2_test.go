package store

import (
	"errors"
	"testing"

	"github.com/mattsolo1/moxxy/internal/merr"
	"github.com/stretchr/testify/require"
)

func TestScheduledJobUpsertAndGet(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertScheduledJob(ScheduledJob{Name: "nightly", Cron: "0 2 * * *", Prompt: "summarize the day", Source: "cli"}))

	j, err := s.GetScheduledJob("nightly")
	require.NoError(t, err)
	require.Equal(t, "0 2 * * *", j.Cron)

	require.NoError(t, s.UpsertScheduledJob(ScheduledJob{Name: "nightly", Cron: "0 3 * * *", Prompt: "summarize the day", Source: "cli"}))
	j, err = s.GetScheduledJob("nightly")
	require.NoError(t, err)
	require.Equal(t, "0 3 * * *", j.Cron)
}

func TestScheduledJobDeleteUnknownIsNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.DeleteScheduledJob("missing")
	require.True(t, errors.Is(err, merr.ErrNotFound))
}

func TestMcpServerRoundTripsArgsAndEnv(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertMcpServer(McpServer{
		Name: "filesystem", Command: "npx",
		Args: []string{"-y", "@modelcontextprotocol/server-filesystem"},
		Env:  map[string]string{"ROOT": "/data"},
	}))

	m, err := s.GetMcpServer("filesystem")
	require.NoError(t, err)
	require.Equal(t, []string{"-y", "@modelcontextprotocol/server-filesystem"}, m.Args)
	require.Equal(t, "/data", m.Env["ROOT"])

	all, err := s.ListMcpServers()
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestWebhookActiveFlagRoundTrips(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.UpsertWebhook(Webhook{
		Name: "github-push", Source: "github", Secret: "shh",
		PromptTemplate: "review the push to {{branch}}", Active: true,
	}))

	w, err := s.GetWebhook("github-push")
	require.NoError(t, err)
	require.True(t, w.Active)

	w.Active = false
	require.NoError(t, s.UpsertWebhook(w))

	w, err = s.GetWebhook("github-push")
	require.NoError(t, err)
	require.False(t, w.Active)
}

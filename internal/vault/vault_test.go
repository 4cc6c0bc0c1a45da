package vault

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mattsolo1/moxxy/internal/merr"
	"github.com/mattsolo1/moxxy/internal/store"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	dir, err := os.MkdirTemp("", "moxxy-vault-test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := store.Open(filepath.Join(dir, "agent.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return New(s.DB())
}

func TestSetAndGetRoundTrips(t *testing.T) {
	v := newTestVault(t)
	require.NoError(t, v.Set("openai_api_key", "sk-test-123"))

	got, err := v.Get("openai_api_key")
	require.NoError(t, err)
	require.Equal(t, "sk-test-123", got)
}

func TestSetOverwritesExistingKey(t *testing.T) {
	v := newTestVault(t)
	require.NoError(t, v.Set("k", "v1"))
	require.NoError(t, v.Set("k", "v2"))

	got, err := v.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v2", got)
}

func TestGetUnknownKeyIsNotFound(t *testing.T) {
	v := newTestVault(t)
	_, err := v.Get("missing")
	require.Error(t, err)
	require.True(t, errors.Is(err, merr.ErrNotFound))
}

func TestListNeverReturnsValues(t *testing.T) {
	v := newTestVault(t)
	require.NoError(t, v.Set("a", "secret-a"))
	require.NoError(t, v.Set("b", "secret-b"))

	keys, err := v.List()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestRemoveDeletesEntry(t *testing.T) {
	v := newTestVault(t)
	require.NoError(t, v.Set("k", "v"))
	require.NoError(t, v.Remove("k"))

	_, err := v.Get("k")
	require.True(t, errors.Is(err, merr.ErrNotFound))
}

package provider

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadIncludesBuiltinProviders(t *testing.T) {
	dir := t.TempDir()
	reg, err := Load(dir)
	require.NoError(t, err)

	_, ok := reg.Get("openai")
	require.True(t, ok)
	_, ok = reg.Get("OpenAI")
	require.True(t, ok, "lookup should be case-insensitive")
	_, ok = reg.Get("google")
	require.True(t, ok)
	_, ok = reg.Get("anthropic")
	require.True(t, ok)
}

func TestAddCustomProviderPersistsAndOverridesOnCollision(t *testing.T) {
	dir := t.TempDir()
	reg, err := Load(dir)
	require.NoError(t, err)

	custom := ProviderDef{
		ID: "openai", Name: "OpenAI (self-hosted)", ApiFormat: ApiFormatOpenAI,
		BaseURL: "https://internal.example.com/v1/chat/completions",
		Auth:    AuthConfig{Type: AuthTypeBearer, VaultKey: "internal_key"},
	}
	require.NoError(t, reg.AddCustomProvider(custom))

	got, ok := reg.Get("openai")
	require.True(t, ok)
	require.True(t, got.Custom)
	require.Equal(t, "https://internal.example.com/v1/chat/completions", got.BaseURL)

	reloaded, err := Load(dir)
	require.NoError(t, err)
	got, ok = reloaded.Get("openai")
	require.True(t, ok)
	require.True(t, got.Custom)
}

func TestRemoveCustomProviderDeletesEntry(t *testing.T) {
	dir := t.TempDir()
	reg, err := Load(dir)
	require.NoError(t, err)

	require.NoError(t, reg.AddCustomProvider(ProviderDef{ID: "custom-one", Name: "Custom One", ApiFormat: ApiFormatOpenAI}))
	require.NoError(t, reg.RemoveCustomProvider("custom-one"))

	_, ok := reg.Get("custom-one")
	require.False(t, ok)
}

func TestRemoveCustomProviderUnknownIDErrors(t *testing.T) {
	dir := t.TempDir()
	reg, err := Load(dir)
	require.NoError(t, err)

	err = reg.RemoveCustomProvider("does-not-exist")
	require.Error(t, err)
}

func TestLoadToleratesMissingCustomFile(t *testing.T) {
	dir := t.TempDir()
	_, err := os.Stat(customProvidersPath(dir))
	require.True(t, os.IsNotExist(err))

	_, err = Load(dir)
	require.NoError(t, err)
}

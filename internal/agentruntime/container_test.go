package agentruntime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopContainerAlwaysFails(t *testing.T) {
	var c NoopContainer
	_, err := c.Execute(context.Background(), "hi", "/tmp/workspace")
	require.Error(t, err)
}

func TestWasmContainerFailsWhenRuntimeBinaryMissing(t *testing.T) {
	c := NewWasmContainer("definitely-not-a-real-binary-xyz", "/tmp/image.wasm", DefaultCapabilityConfig())
	_, err := c.Execute(context.Background(), "hi", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found on PATH")
	assert.Contains(t, err.Error(), "definitely-not-a-real-binary-xyz")
}

func TestWasmContainerFailsWhenEmptyPath(t *testing.T) {
	t.Setenv("PATH", "")
	c := NewWasmContainer("wasmtime", "/tmp/image.wasm", DefaultCapabilityConfig())
	_, err := c.Execute(context.Background(), "hi", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wasmtime")
}

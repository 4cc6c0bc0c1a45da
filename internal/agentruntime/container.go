// Package agentruntime hosts the two worker shapes the task graph executor
// dispatches onto: NativeAgent, which reuses an agent's existing
// memory/skills/LLM subsystems in-process, and EphemeralAgent, which
// provisions a scratch workspace and runs the task inside a sandboxed WASM
// container. Both satisfy taskgraph.Worker.
package agentruntime

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/mattsolo1/moxxy/internal/merr"
)

// Container is the opaque sandboxed execution boundary an ephemeral agent
// runs its prompt inside. Its internal semantics (the WASM host, capability
// enforcement) are out of scope here: this package only needs to hand it a
// prompt and a workspace and get output back.
type Container interface {
	Execute(ctx context.Context, prompt string, workspaceDir string) (output string, err error)
}

// NoopContainer satisfies Container for hosts with no WASM runtime
// configured. It never panics; it reports a clear, classifiable failure so
// the executor's retry/failure-policy logic treats it like any other failed
// task rather than crashing the daemon.
type NoopContainer struct{}

func (NoopContainer) Execute(ctx context.Context, prompt string, workspaceDir string) (string, error) {
	return "", fmt.Errorf("%w: no WASM runtime configured for this host", merr.ErrWorkerFailed)
}

// WasmContainer shells out to a wasm runtime binary (e.g. wasmtime) to
// execute the embedded agent_runtime.wasm image against a workspace
// directory.
type WasmContainer struct {
	RuntimeBinary string // e.g. "wasmtime"
	ImagePath     string
	Capabilities  CapabilityConfig
}

func NewWasmContainer(runtimeBinary, imagePath string, caps CapabilityConfig) *WasmContainer {
	return &WasmContainer{
		RuntimeBinary: runtimeBinary,
		ImagePath:     imagePath,
		Capabilities:  caps,
	}
}

func (c *WasmContainer) Execute(ctx context.Context, prompt string, workspaceDir string) (string, error) {
	if _, err := exec.LookPath(c.RuntimeBinary); err != nil {
		return "", fmt.Errorf("wasm runtime %q not found on PATH: %w", c.RuntimeBinary, err)
	}

	args := []string{"--dir", workspaceDir + "::/workspace", c.ImagePath}
	if c.Capabilities.Network {
		args = append([]string{"--net"}, args...)
	}

	cmd := exec.CommandContext(ctx, c.RuntimeBinary, args...)
	cmd.Stdin = bytes.NewBufferString(prompt)
	cmd.Dir = workspaceDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("wasm runtime invocation failed: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

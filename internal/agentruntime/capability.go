package agentruntime

import (
	"os"
	"path/filepath"
)

// CapabilityConfig bounds what a sandboxed ephemeral worker may touch.
// Every profile restricts filesystem access to the workspace directory;
// agents reach skills and memory through host bridge calls, never direct
// filesystem access outside that scope.
type CapabilityConfig struct {
	Filesystem  []string
	Network     bool
	MaxMemoryMB int
	EnvInherit  bool
}

// DefaultCapabilityConfig is returned for an unrecognized profile name —
// no network, a small memory ceiling, no inherited environment.
func DefaultCapabilityConfig() CapabilityConfig {
	return CapabilityConfig{
		Filesystem:  []string{"./workspace"},
		Network:     false,
		MaxMemoryMB: 128,
		EnvInherit:  false,
	}
}

// ResolveCapabilities maps an image profile name to its capability set.
func ResolveCapabilities(profile string) CapabilityConfig {
	switch profile {
	case "base":
		return CapabilityConfig{Filesystem: []string{"./workspace"}, Network: false, MaxMemoryMB: 128, EnvInherit: false}
	case "networked":
		return CapabilityConfig{Filesystem: []string{"./workspace"}, Network: true, MaxMemoryMB: 256, EnvInherit: false}
	case "full":
		return CapabilityConfig{Filesystem: []string{"./workspace"}, Network: true, MaxMemoryMB: 0, EnvInherit: true}
	default:
		return DefaultCapabilityConfig()
	}
}

// ResolveImagePath maps a profile name or raw image filename to a path on
// disk. "base", "networked", and "full" all currently resolve to the same
// embedded runtime image; only their capabilities differ. Anything else is
// treated as a workspace-relative or images-dir-relative filename.
func ResolveImagePath(imageName, workspaceDir, imagesDir string) string {
	switch imageName {
	case "base", "networked", "full":
		return filepath.Join(imagesDir, "agent_runtime.wasm")
	default:
		workspacePath := filepath.Join(workspaceDir, imageName)
		if _, err := os.Stat(workspacePath); err == nil {
			return workspacePath
		}
		return filepath.Join(imagesDir, imageName)
	}
}

package agentruntime

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed assets/agent_runtime.wasm
var embeddedWasmImage []byte

// EnsureWasmImage extracts the embedded agent_runtime.wasm into
// <dataDir>/images/agent_runtime.wasm if it isn't already there, so the
// daemon never requires the wasm32-wasip1 toolchain on the host — the image
// ships inside the moxxy binary itself. Returns the path to the image.
func EnsureWasmImage(dataDir string) (string, error) {
	imagesDir := filepath.Join(dataDir, "images")
	imagePath := filepath.Join(imagesDir, "agent_runtime.wasm")

	if _, err := os.Stat(imagePath); err == nil {
		return imagePath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("checking wasm image: %w", err)
	}

	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return "", fmt.Errorf("creating images dir: %w", err)
	}
	if err := os.WriteFile(imagePath, embeddedWasmImage, 0o644); err != nil {
		return "", fmt.Errorf("writing wasm image: %w", err)
	}
	return imagePath, nil
}

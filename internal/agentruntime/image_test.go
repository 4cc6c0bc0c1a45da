package agentruntime

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureWasmImageExtractsOnFirstCall(t *testing.T) {
	dir := t.TempDir()
	path, err := EnsureWasmImage(dir)
	if err != nil {
		t.Fatalf("EnsureWasmImage: %v", err)
	}
	want := filepath.Join(dir, "images", "agent_runtime.wasm")
	if path != want {
		t.Fatalf("got path %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading extracted image: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("extracted image is empty")
	}
}

func TestEnsureWasmImageIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	first, err := EnsureWasmImage(dir)
	if err != nil {
		t.Fatalf("first EnsureWasmImage: %v", err)
	}
	if err := os.WriteFile(first, []byte("sentinel"), 0o644); err != nil {
		t.Fatalf("writing sentinel: %v", err)
	}
	second, err := EnsureWasmImage(dir)
	if err != nil {
		t.Fatalf("second EnsureWasmImage: %v", err)
	}
	data, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("reading image after second call: %v", err)
	}
	if string(data) != "sentinel" {
		t.Fatal("EnsureWasmImage overwrote an already-present image")
	}
}

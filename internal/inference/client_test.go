package inference

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestNew_Backends(t *testing.T) {
	for _, name := range []string{"", "ollama", "OpenAI", "llama"} {
		b, err := New(Options{Backend: name})
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if b == nil {
			t.Fatalf("New(%q) returned nil backend", name)
		}
	}
	if _, err := New(Options{Backend: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestError_WrapAndUnwrap(t *testing.T) {
	base := errors.New("connection refused")
	err := wrap(BackendOllama, "m1", base)
	if !IsInferenceError(err) {
		t.Fatalf("expected inference error")
	}
	if !errors.Is(err, base) {
		t.Fatalf("unwrap lost the cause")
	}
	if got := err.Error(); got != "inference (ollama) model m1: connection refused" {
		t.Fatalf("message=%q", got)
	}
	if again := wrap(BackendOpenAI, "m2", err); again != err {
		t.Fatalf("double wrap should be a no-op")
	}
	if wrap(BackendOllama, "m1", nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestLlamaBackend_ListsModelsDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tiny.Q4_0.gguf"), []byte(""), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	b := NewLlama(dir, 512, 1, 16)
	models, err := b.ListModels(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(models) != 1 || models[0].ID != "tiny.Q4_0.gguf" || models[0].Quant != "Q4_0" {
		t.Fatalf("unexpected: %+v", models)
	}
	if !LlamaBuilt() {
		_, err := b.Chat(context.Background(), "tiny.Q4_0.gguf", "hi")
		if !IsDependencyUnavailable(err) || !IsInferenceError(err) {
			t.Fatalf("expected dependency unavailable from stub, got %v", err)
		}
	}
}

//go:build !llama

package inference

// No-CGO stub compiled when the 'llama' build tag is NOT set, keeping default
// builds CGO-free. The real client lives in llama.go.

import (
	"context"

	"promptbench/internal/registry"
	"promptbench/pkg/types"
)

var llamaBuilt = false

type llamaClient struct {
	modelsDir string
}

// NewLlama returns a Backend that lists models but refuses to run them.
func NewLlama(modelsDir string, ctxSize, threads, maxTokens int) Backend {
	return &llamaClient{modelsDir: modelsDir}
}

func (c *llamaClient) ListModels(ctx context.Context) ([]types.Model, error) {
	return registry.LoadDir(c.modelsDir)
}

func (c *llamaClient) Chat(ctx context.Context, modelID, message string) (Reply, error) {
	return Reply{}, wrap(BackendLlama, modelID, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)"))
}

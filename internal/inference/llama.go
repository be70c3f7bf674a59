//go:build llama

package inference

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	llama "github.com/go-skynet/go-llama.cpp"

	"promptbench/internal/registry"
	"promptbench/pkg/types"
)

// llamaBuilt indicates this binary was compiled with in-process llama support.
var llamaBuilt = true

// llamaClient runs GGUF models in-process. One model is resident at a time;
// switching models frees the previous one, which suits sequential batches.
type llamaClient struct {
	modelsDir string
	ctxSize   int
	threads   int
	maxTokens int

	mu      sync.Mutex
	curPath string
	model   *llama.LLama
}

// NewLlama constructs an in-process Backend serving *.gguf files in modelsDir.
func NewLlama(modelsDir string, ctxSize, threads, maxTokens int) Backend {
	return &llamaClient{modelsDir: modelsDir, ctxSize: ctxSize, threads: threads, maxTokens: maxTokens}
}

func (c *llamaClient) ListModels(ctx context.Context) ([]types.Model, error) {
	return registry.LoadDir(c.modelsDir)
}

func (c *llamaClient) Chat(ctx context.Context, modelID, message string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, wrap(BackendLlama, modelID, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	start := time.Now()
	m, err := c.load(modelID)
	if err != nil {
		return Reply{}, wrap(BackendLlama, modelID, err)
	}
	m.SetTokenCallback(func(string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	text, err := m.Predict(message,
		llama.SetTokens(max(1, c.maxTokens)),
		llama.SetThreads(max(1, c.threads)),
		llama.SetTopP(llama.DefaultOptions.TopP),
		llama.SetTopK(llama.DefaultOptions.TopK),
		llama.SetTemperature(llama.DefaultOptions.Temperature),
	)
	if err != nil {
		if ctx.Err() != nil {
			return Reply{}, wrap(BackendLlama, modelID, ctx.Err())
		}
		return Reply{}, wrap(BackendLlama, modelID, err)
	}
	if ctx.Err() != nil {
		return Reply{}, wrap(BackendLlama, modelID, ctx.Err())
	}
	return Reply{Text: text, Model: modelID, FinishReason: "stop", Duration: time.Since(start)}, nil
}

// load resolves modelID against the models directory and keeps it resident.
// Caller holds c.mu.
func (c *llamaClient) load(modelID string) (*llama.LLama, error) {
	models, err := registry.LoadDir(c.modelsDir)
	if err != nil {
		return nil, err
	}
	var path string
	for _, m := range models {
		if m.ID == modelID {
			path = m.Path
			break
		}
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model not found: " + modelID)
	}
	if c.model != nil && c.curPath == path {
		return c.model, nil
	}
	if c.model != nil {
		c.model.Free()
		c.model = nil
		c.curPath = ""
	}
	m, err := llama.New(path, llama.SetContext(c.ctxSize))
	if err != nil {
		return nil, err
	}
	c.model, c.curPath = m, path
	return m, nil
}

package inference

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"promptbench/pkg/types"
)

// Backend names accepted by New.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendLlama  = "llama"
)

// Reply is a whole (non-streamed) chat response.
type Reply struct {
	Text             string
	Model            string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
	Duration         time.Duration
}

// Client sends a single user message to a model and waits for the full reply.
type Client interface {
	Chat(ctx context.Context, modelID, message string) (Reply, error)
}

// Lister enumerates the models a backend can serve.
type Lister interface {
	ListModels(ctx context.Context) ([]types.Model, error)
}

// Backend is a Client that can also list its models.
type Backend interface {
	Client
	Lister
}

// Options configures a Backend. Zero values fall back to package defaults.
type Options struct {
	Backend        string
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
	// In-process backend only.
	ModelsDir    string
	LlamaCtx     int
	LlamaThreads int
	MaxTokens    int
}

const (
	defaultOllamaURL      = "http://127.0.0.1:11434"
	defaultOpenAIURL      = "http://127.0.0.1:8080/v1"
	defaultConnectTimeout = 5 * time.Second
)

// New constructs the Backend named by opts.Backend.
func New(opts Options) (Backend, error) {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendOllama:
		if opts.BaseURL == "" {
			opts.BaseURL = defaultOllamaURL
		}
		return NewOllama(opts.BaseURL, opts.RequestTimeout, opts.ConnectTimeout), nil
	case BackendOpenAI:
		if opts.BaseURL == "" {
			opts.BaseURL = defaultOpenAIURL
		}
		return NewOpenAI(opts.BaseURL, opts.APIKey, opts.RequestTimeout, opts.ConnectTimeout), nil
	case BackendLlama:
		return NewLlama(opts.ModelsDir, opts.LlamaCtx, opts.LlamaThreads, opts.MaxTokens), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", opts.Backend)
	}
}

// newHTTPClient builds a client without an overall timeout: every request
// carries its own deadline through the context.
func newHTTPClient(connectTimeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{Transport: tr, Timeout: 0}
}

// withTimeout applies d to ctx when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// LlamaBuilt reports whether the in-process llama backend is compiled in.
func LlamaBuilt() bool { return llamaBuilt }

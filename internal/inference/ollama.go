package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"promptbench/pkg/types"
)

// ollamaClient talks to the native Ollama HTTP API (/api/chat, /api/tags).
type ollamaClient struct {
	baseURL    string
	reqTimeout time.Duration
	httpClient *http.Client
}

// NewOllama constructs a Backend for an Ollama server at baseURL.
func NewOllama(baseURL string, reqTimeout, connectTimeout time.Duration) Backend {
	return &ollamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		reqTimeout: reqTimeout,
		httpClient: newHTTPClient(connectTimeout),
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Model           string         `json:"model"`
	Message         *ollamaMessage `json:"message"`
	Done            bool           `json:"done"`
	DoneReason      string         `json:"done_reason"`
	TotalDuration   int64          `json:"total_duration"`
	PromptEvalCount int            `json:"prompt_eval_count"`
	EvalCount       int            `json:"eval_count"`
	Error           string         `json:"error"`
}

type ollamaModelDetails struct {
	Family            string `json:"family"`
	ParameterSize     string `json:"parameter_size"`
	QuantizationLevel string `json:"quantization_level"`
}

type ollamaModel struct {
	Name    string             `json:"name"`
	Model   string             `json:"model"`
	Size    int64              `json:"size"`
	Details ollamaModelDetails `json:"details"`
}

type ollamaTagsResponse struct {
	Models *[]ollamaModel `json:"models"`
}

func (c *ollamaClient) Chat(ctx context.Context, modelID, message string) (Reply, error) {
	ctx, cancel := withTimeout(ctx, c.reqTimeout)
	defer cancel()

	payload := ollamaChatRequest{
		Model:    modelID,
		Messages: []ollamaMessage{{Role: "user", Content: message}},
		Stream:   false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Reply{}, wrap(BackendOllama, modelID, err)
	}
	start := time.Now()
	var out ollamaChatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat", body, &out); err != nil {
		return Reply{}, wrap(BackendOllama, modelID, err)
	}
	if out.Error != "" {
		return Reply{}, wrap(BackendOllama, modelID, errors.New(out.Error))
	}
	if out.Message == nil {
		return Reply{}, wrap(BackendOllama, modelID, ShapeError{msg: "chat response has no message"})
	}
	return Reply{
		Text:             out.Message.Content,
		Model:            out.Model,
		FinishReason:     out.DoneReason,
		PromptTokens:     out.PromptEvalCount,
		CompletionTokens: out.EvalCount,
		Duration:         time.Since(start),
	}, nil
}

func (c *ollamaClient) ListModels(ctx context.Context) ([]types.Model, error) {
	ctx, cancel := withTimeout(ctx, c.reqTimeout)
	defer cancel()

	var out ollamaTagsResponse
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &out); err != nil {
		return nil, err
	}
	if out.Models == nil {
		return nil, ShapeError{msg: "tags response has no models list"}
	}
	models := make([]types.Model, 0, len(*out.Models))
	for i, m := range *out.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		if name == "" {
			return nil, ShapeError{msg: fmt.Sprintf("model %d has no name", i)}
		}
		models = append(models, types.Model{
			ID:            name,
			Name:          name,
			Family:        m.Details.Family,
			ParameterSize: m.Details.ParameterSize,
			Quant:         m.Details.QuantizationLevel,
			SizeBytes:     m.Size,
		})
	}
	return models, nil
}

// do performs one JSON round trip. Non-2xx responses become errors carrying
// the backend's error message when it sends one.
func (c *ollamaClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("ollama http error: %s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("ollama http error: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ShapeError{msg: err.Error()}
	}
	return nil
}

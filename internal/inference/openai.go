package inference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"promptbench/pkg/types"
)

// openAIClient talks to any OpenAI-compatible server (llama.cpp server,
// Ollama's /v1, vLLM, LM Studio).
type openAIClient struct {
	client     *openai.Client
	reqTimeout time.Duration
}

// NewOpenAI constructs a Backend for an OpenAI-compatible endpoint. baseURL
// must include the API prefix, e.g. http://127.0.0.1:8080/v1.
func NewOpenAI(baseURL, apiKey string, reqTimeout, connectTimeout time.Duration) Backend {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/")
	config.HTTPClient = newHTTPClient(connectTimeout)
	return &openAIClient{
		client:     openai.NewClientWithConfig(config),
		reqTimeout: reqTimeout,
	}
}

func (c *openAIClient) Chat(ctx context.Context, modelID, message string) (Reply, error) {
	ctx, cancel := withTimeout(ctx, c.reqTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelID,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return Reply{}, wrap(BackendOpenAI, modelID, ctx.Err())
		}
		return Reply{}, wrap(BackendOpenAI, modelID, err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, wrap(BackendOpenAI, modelID, ShapeError{msg: "completion has no choices"})
	}
	choice := resp.Choices[0]
	return Reply{
		Text:             choice.Message.Content,
		Model:            resp.Model,
		FinishReason:     string(choice.FinishReason),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Duration:         time.Since(start),
	}, nil
}

func (c *openAIClient) ListModels(ctx context.Context) ([]types.Model, error) {
	ctx, cancel := withTimeout(ctx, c.reqTimeout)
	defer cancel()

	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	models := make([]types.Model, 0, len(list.Models))
	for i, m := range list.Models {
		if strings.TrimSpace(m.ID) == "" {
			return nil, ShapeError{msg: fmt.Sprintf("model %d has no id", i)}
		}
		models = append(models, types.Model{ID: m.ID, Name: m.ID})
	}
	return models, nil
}

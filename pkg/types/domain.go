package types

// Prompt is a selectable prompt loaded from the prompt manifest.
type Prompt struct {
	// Stable identifier derived from the source filename without ".md".
	// example: haiku
	ID string `json:"id" example:"haiku"`
	// Human-friendly name (the source filename).
	// example: haiku.md
	Name string `json:"name" example:"haiku.md"`
	// Raw prompt text sent to the model as a single user message.
	// example: Write a haiku about the ocean.
	Content string `json:"content" example:"Write a haiku about the ocean."`
}

// Model represents a model the inference backend can serve.
type Model struct {
	// Backend-assigned name, used as the stable identifier.
	// example: llama3.2:3b
	ID string `json:"id" example:"llama3.2:3b"`
	// Human-friendly name.
	// example: llama3.2:3b
	Name string `json:"name" example:"llama3.2:3b"`
	// Optional family (e.g., llama, mistral, phi).
	// example: llama
	Family string `json:"family,omitempty" example:"llama"`
	// Parameter size as reported by the backend.
	// example: 3.2B
	ParameterSize string `json:"parameter_size,omitempty" example:"3.2B"`
	// Quantization level or variant string.
	// example: Q4_K_M
	Quant string `json:"quant,omitempty" example:"Q4_K_M"`
	// Size on disk in bytes, when known.
	// example: 2019393189
	SizeBytes int64 `json:"size_bytes,omitempty" example:"2019393189"`
	// Absolute path to the model file (in-process backend only).
	Path string `json:"path,omitempty"`
}

// RunState is the lifecycle state of the batch orchestrator.
type RunState string

const (
	RunIdle      RunState = "idle"
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
)

// InferenceResult is one (model, prompt) output of a completed run.
type InferenceResult struct {
	// Unique result id: "<model id>-<sequence>".
	// example: llama3.2:3b-7
	ID string `json:"id" example:"llama3.2:3b-7"`
	// Run that produced this result.
	RunID string `json:"run_id"`
	// example: llama3.2:3b
	ModelID string `json:"model_id" example:"llama3.2:3b"`
	// example: llama3.2:3b
	ModelName string `json:"model_name" example:"llama3.2:3b"`
	// example: haiku
	PromptID string `json:"prompt_id" example:"haiku"`
	// Prompt text as sent.
	PromptContent string `json:"prompt_content"`
	// Response text split on blank lines, in order.
	Paragraphs []string `json:"paragraphs"`
}

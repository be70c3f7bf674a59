package types

// PromptsResponse wraps the prompt catalog returned by GET /prompts.
type PromptsResponse struct {
	Prompts []Prompt `json:"prompts"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available models.
	Models []Model `json:"models"`
}

// SelectionRequest replaces the selection of one kind wholesale.
type SelectionRequest struct {
	// Complete new selection, in display order.
	// example: ["haiku","summary"]
	IDs []string `json:"ids" example:"haiku,summary"`
}

// SelectionResponse describes the current selection.
type SelectionResponse struct {
	PromptIDs []string `json:"prompt_ids"`
	ModelIDs  []string `json:"model_ids"`
}

// RunResponse is returned by POST /runs.
type RunResponse struct {
	// True when a new run was started.
	Started bool `json:"started"`
	// Id of the started run.
	RunID string `json:"run_id,omitempty"`
	// Why the request was ignored (empty selection, run in progress).
	// example: run in progress
	Reason string `json:"reason,omitempty" example:"run in progress"`
}

// ViewResponse is the read-only presentation view returned by GET /results.
type ViewResponse struct {
	Results []InferenceResult `json:"results"`
	// example: completed
	State RunState `json:"state" example:"completed"`
	// Id of the most recent run, if any.
	RunID string `json:"run_id,omitempty"`
	// True exactly while a run is in progress.
	Loading bool `json:"loading"`
	// Last run error, if the most recent run failed.
	Error     string   `json:"error,omitempty"`
	PromptIDs []string `json:"prompt_ids"`
	ModelIDs  []string `json:"model_ids"`
}

// ComparisonGroup is one model's block in the side-by-side comparison.
type ComparisonGroup struct {
	ModelID   string            `json:"model_id"`
	ModelName string            `json:"model_name"`
	Results   []InferenceResult `json:"results"`
}

// ComparisonResponse is returned by GET /comparison.
type ComparisonResponse struct {
	State  RunState          `json:"state"`
	Groups []ComparisonGroup `json:"groups"`
}

// RunEvent is a lifecycle notification broadcast on /events.
type RunEvent struct {
	// example: run_completed
	Name  string `json:"name" example:"run_completed"`
	RunID string `json:"run_id,omitempty"`
	// Model involved, for per-call events.
	ModelID string `json:"model_id,omitempty"`
	// Completed calls so far and the planned total.
	Done  int `json:"done,omitempty"`
	Total int `json:"total,omitempty"`
	// example: 1700000000
	TimeUnix int64  `json:"time_unix" example:"1700000000"`
	Error    string `json:"error,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

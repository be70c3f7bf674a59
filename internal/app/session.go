// Package app ties catalogs, selection and the batch orchestrator into the
// single session a surface (HTTP API or CLI) drives.
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"promptbench/internal/batch"
	"promptbench/internal/present"
	"promptbench/internal/selection"
	"promptbench/pkg/types"
)

// PromptSource loads the prompt catalog.
type PromptSource interface {
	LoadPrompts(ctx context.Context) ([]types.Prompt, error)
}

// ModelSource loads the model catalog.
type ModelSource interface {
	LoadModels(ctx context.Context) ([]types.Model, error)
}

// Session owns the catalogs, the current selection, the orchestrator and
// the result sequence for the lifetime of a process. Catalogs are replaced
// wholesale on Reload and never mutated in place.
type Session struct {
	prompts PromptSource
	models  ModelSource
	orch    *batch.Orchestrator
	sel     *selection.State
	seq     *batch.Sequence
	log     zerolog.Logger

	mu        sync.RWMutex
	promptCat []types.Prompt
	modelCat  []types.Model
	loaded    bool
}

// New constructs a Session. Call Reload before use.
func New(prompts PromptSource, models ModelSource, orch *batch.Orchestrator, log zerolog.Logger) *Session {
	return &Session{
		prompts: prompts,
		models:  models,
		orch:    orch,
		sel:     selection.New(),
		seq:     batch.NewSequence(),
		log:     log.With().Str("component", "session").Logger(),
	}
}

// Reload fetches both catalogs. A catalog that cannot be loaded is left
// empty and its error is returned joined with the other's; the session stays
// usable either way.
func (s *Session) Reload(ctx context.Context) error {
	prompts, perr := s.prompts.LoadPrompts(ctx)
	if perr != nil {
		s.log.Error().Err(perr).Msg("prompt catalog unavailable")
		prompts = nil
	}
	models, merr := s.models.LoadModels(ctx)
	if merr != nil {
		s.log.Error().Err(merr).Msg("model catalog unavailable")
		models = nil
	}

	s.mu.Lock()
	s.promptCat = prompts
	s.modelCat = models
	s.loaded = true
	s.mu.Unlock()

	s.log.Info().Int("prompts", len(prompts)).Int("models", len(models)).Msg("catalogs loaded")
	return errors.Join(perr, merr)
}

// Ready reports whether catalogs have been loaded at least once.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Session) ListPrompts() []types.Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Prompt{}, s.promptCat...)
}

func (s *Session) ListModels() []types.Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.Model{}, s.modelCat...)
}

// Select replaces the selection of the given kind. Ids are not validated
// against the catalogs; unknown ids are skipped when a run resolves them.
func (s *Session) Select(kind selection.Kind, ids []string) error {
	return s.sel.Select(kind, ids)
}

// Selection returns the current selection.
func (s *Session) Selection() types.SelectionResponse {
	snap := s.sel.Snapshot()
	return types.SelectionResponse{PromptIDs: nonNil(snap.PromptIDs), ModelIDs: nonNil(snap.ModelIDs)}
}

// Submit starts a run over the current selection in the background. ctx
// bounds the whole run, not just the call to Submit.
func (s *Session) Submit(ctx context.Context) (string, <-chan batch.Report, error) {
	return s.orch.Start(ctx, s.request())
}

// Run executes a run over the current selection and waits for it.
func (s *Session) Run(ctx context.Context) (batch.Report, error) {
	return s.orch.Run(ctx, s.request())
}

func (s *Session) request() batch.Request {
	snap := s.sel.Snapshot()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return batch.Request{
		PromptIDs: snap.PromptIDs,
		ModelIDs:  snap.ModelIDs,
		Prompts:   s.promptCat,
		Models:    s.modelCat,
		Seq:       s.seq,
	}
}

// View returns the read-only state a presentation layer renders.
func (s *Session) View() types.ViewResponse {
	st := s.orch.Status()
	snap := s.sel.Snapshot()
	v := types.ViewResponse{
		Results:   nonNilResults(st.Results),
		State:     st.State,
		RunID:     st.RunID,
		Loading:   st.Loading(),
		PromptIDs: nonNil(snap.PromptIDs),
		ModelIDs:  nonNil(snap.ModelIDs),
	}
	if st.Err != nil {
		v.Error = st.Err.Error()
	}
	return v
}

// Comparison groups the published results by the selected models.
func (s *Session) Comparison() types.ComparisonResponse {
	st := s.orch.Status()
	snap := s.sel.Snapshot()
	return types.ComparisonResponse{
		State:  st.State,
		Groups: present.Group(st.Results, snap.ModelIDs, s.ListModels()),
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func nonNilResults(r []types.InferenceResult) []types.InferenceResult {
	if r == nil {
		return []types.InferenceResult{}
	}
	return r
}

package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"promptbench/internal/inference"
	"promptbench/pkg/types"
)

var (
	// ErrEmptySelection is returned when either selection is empty. No run
	// is started and the run state is unchanged.
	ErrEmptySelection = errors.New("empty selection: choose at least one prompt and one model")
	// ErrRunInProgress is returned when a run is requested while another is
	// running. The request is dropped, not queued.
	ErrRunInProgress = errors.New("run in progress")
)

// Client is the inference surface the Orchestrator needs.
type Client interface {
	Chat(ctx context.Context, modelID, message string) (inference.Reply, error)
}

// Request is the snapshot a run works on. Callers pass copies; the
// Orchestrator never looks at selection state after a run has begun.
type Request struct {
	PromptIDs []string
	ModelIDs  []string
	Prompts   []types.Prompt
	Models    []types.Model
	// Seq numbers the results. A nil Seq gets a fresh Sequence for the run.
	Seq *Sequence
}

// Report summarizes a finished run.
type Report struct {
	RunID   string
	State   types.RunState
	Results []types.InferenceResult
	// Calls is the number of inference calls issued, including a failed one.
	Calls int
	Err   error
}

// Status is a read-only view of the orchestrator.
type Status struct {
	State   types.RunState
	RunID   string
	Results []types.InferenceResult
	Err     error
}

// Loading is true exactly while a run is in progress.
func (s Status) Loading() bool { return s.State == types.RunRunning }

// Orchestrator executes batches one at a time and owns the published
// result collection.
type Orchestrator struct {
	client Client
	pub    EventPublisher
	log    zerolog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	state   types.RunState
	runID   string
	results []types.InferenceResult
	lastErr error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPublisher installs an event publisher.
func WithPublisher(p EventPublisher) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.pub = p
		}
	}
}

// WithLogger installs a structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = l.With().Str("component", "batch").Logger() }
}

// New returns an idle Orchestrator that sends calls through client.
func New(client Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client: client,
		pub:    noopPublisher{},
		log:    zerolog.Nop(),
		now:    time.Now,
		state:  types.RunIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes req and blocks until the run completes or fails. It returns
// ErrEmptySelection or ErrRunInProgress without starting anything, and the
// inference error when the run failed.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Report, error) {
	runID, pairs, err := o.begin(req)
	if err != nil {
		return Report{}, err
	}
	rep := o.execute(ctx, runID, pairs, req.Seq)
	return rep, rep.Err
}

// Start begins a run and executes it in the background. The guard is taken
// before Start returns, so a second Start observes ErrRunInProgress. The
// returned channel receives the Report and is then closed.
func (o *Orchestrator) Start(ctx context.Context, req Request) (string, <-chan Report, error) {
	runID, pairs, err := o.begin(req)
	if err != nil {
		return "", nil, err
	}
	done := make(chan Report, 1)
	go func() {
		defer close(done)
		done <- o.execute(ctx, runID, pairs, req.Seq)
	}()
	return runID, done, nil
}

// Status returns the current state and a copy of the published results.
func (o *Orchestrator) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return Status{
		State:   o.state,
		RunID:   o.runID,
		Results: append([]types.InferenceResult(nil), o.results...),
		Err:     o.lastErr,
	}
}

// State returns the current run state.
func (o *Orchestrator) State() types.RunState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// begin checks preconditions, takes the guard, clears published results and
// resolves the snapshot into pairs.
func (o *Orchestrator) begin(req Request) (string, []pair, error) {
	if len(req.PromptIDs) == 0 || len(req.ModelIDs) == 0 {
		runsTotal.WithLabelValues(outcomeSkipped).Inc()
		return "", nil, ErrEmptySelection
	}
	pairs := resolve(req)

	o.mu.Lock()
	if o.state == types.RunRunning {
		current := o.runID
		o.mu.Unlock()
		runsTotal.WithLabelValues(outcomeRejected).Inc()
		o.log.Debug().Str("run_id", current).Msg("run request ignored: run in progress")
		o.pub.Publish(Event{Name: EventRunRejected, RunID: current, Time: o.now()})
		return "", nil, ErrRunInProgress
	}
	runID := uuid.NewString()
	o.state = types.RunRunning
	o.runID = runID
	o.results = nil
	o.lastErr = nil
	runInProgress.Set(1)
	o.mu.Unlock()

	o.log.Info().Str("run_id", runID).
		Int("models", len(req.ModelIDs)).
		Int("prompts", len(req.PromptIDs)).
		Int("calls", len(pairs)).
		Msg("run start")
	o.pub.Publish(Event{Name: EventRunStarted, RunID: runID, Total: len(pairs), Time: o.now()})
	return runID, pairs, nil
}

func (o *Orchestrator) execute(ctx context.Context, runID string, pairs []pair, seq *Sequence) (rep Report) {
	if seq == nil {
		seq = NewSequence()
	}
	var calls int
	var modelID string
	// A panicking client fails the run instead of leaving it running.
	defer func() {
		if r := recover(); r != nil {
			rep = o.fail(runID, calls, modelID, &inference.Error{Model: modelID, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	start := o.now()
	results := make([]types.InferenceResult, 0, len(pairs))
	for i, p := range pairs {
		modelID = p.model.ID
		if err := ctx.Err(); err != nil {
			return o.fail(runID, i, p.model.ID, &inference.Error{Model: p.model.ID, Err: err})
		}
		calls = i + 1
		callStart := time.Now()
		reply, err := o.client.Chat(ctx, p.model.ID, p.prompt.Content)
		inferenceDuration.WithLabelValues(p.model.ID).Observe(time.Since(callStart).Seconds())
		if err != nil {
			inferenceCallsTotal.WithLabelValues(p.model.ID, "error").Inc()
			return o.fail(runID, i+1, p.model.ID, err)
		}
		inferenceCallsTotal.WithLabelValues(p.model.ID, "ok").Inc()
		results = append(results, types.InferenceResult{
			ID:            fmt.Sprintf("%s-%d", p.model.ID, seq.Next()),
			RunID:         runID,
			ModelID:       p.model.ID,
			ModelName:     p.model.Name,
			PromptID:      p.prompt.ID,
			PromptContent: p.prompt.Content,
			Paragraphs:    SplitParagraphs(reply.Text),
		})
		o.log.Debug().Str("run_id", runID).Str("model", p.model.ID).Str("prompt", p.prompt.ID).
			Dur("dur", time.Since(callStart)).Int("completion_tokens", reply.CompletionTokens).
			Msg("call done")
		o.pub.Publish(Event{Name: EventCallCompleted, RunID: runID, ModelID: p.model.ID, Done: i + 1, Total: len(pairs), Time: o.now()})
	}

	o.mu.Lock()
	o.results = results
	o.state = types.RunCompleted
	runInProgress.Set(0)
	o.mu.Unlock()

	runsTotal.WithLabelValues(outcomeCompleted).Inc()
	o.log.Info().Str("run_id", runID).Int("results", len(results)).Dur("dur", o.now().Sub(start)).Msg("run end")
	o.pub.Publish(Event{Name: EventRunCompleted, RunID: runID, Done: len(results), Total: len(pairs), Time: o.now()})
	return Report{
		RunID:   runID,
		State:   types.RunCompleted,
		Results: append([]types.InferenceResult(nil), results...),
		Calls:   len(pairs),
	}
}

// fail records err, discards partial results and ends the run. calls is the
// number of inference calls issued so far.
func (o *Orchestrator) fail(runID string, calls int, modelID string, err error) Report {
	o.mu.Lock()
	o.results = nil
	o.state = types.RunFailed
	o.lastErr = err
	runInProgress.Set(0)
	o.mu.Unlock()

	runsTotal.WithLabelValues(outcomeFailed).Inc()
	o.log.Error().Err(err).Str("run_id", runID).Str("model", modelID).Int("calls", calls).Msg("run failed")
	o.pub.Publish(Event{Name: EventRunFailed, RunID: runID, ModelID: modelID, Done: calls, Err: err, Time: o.now()})
	return Report{RunID: runID, State: types.RunFailed, Calls: calls, Err: err}
}

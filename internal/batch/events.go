package batch

import (
	"sync"
	"time"
)

// Event names emitted by the Orchestrator.
const (
	EventRunStarted    = "run_started"
	EventCallCompleted = "call_completed"
	EventRunCompleted  = "run_completed"
	EventRunFailed     = "run_failed"
	EventRunRejected   = "run_rejected"
)

// Event represents a run lifecycle event. Per-call events carry progress
// counts only, never result content.
type Event struct {
	Name    string
	RunID   string
	ModelID string
	Done    int
	Total   int
	Err     error
	Time    time.Time
}

// EventPublisher receives events from the Orchestrator. Implementations
// should be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MemoryPublisher stores events in-memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Names returns the event names in publish order.
func (p *MemoryPublisher) Names() []string {
	evs := p.Events()
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Name
	}
	return out
}

// MultiPublisher fans one event out to several publishers in order.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(e Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(e)
		}
	}
}

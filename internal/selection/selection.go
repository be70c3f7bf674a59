// Package selection holds the user's current choice of prompts and models.
package selection

import (
	"fmt"
	"strings"
	"sync"
)

// Kind names which of the two selections an event targets.
type Kind string

const (
	KindPrompt Kind = "prompt"
	KindModel  Kind = "model"
)

// ParseKind accepts singular or plural, case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prompt", "prompts":
		return KindPrompt, nil
	case "model", "models":
		return KindModel, nil
	default:
		return "", unknownKindError{kind: s}
	}
}

type unknownKindError struct{ kind string }

func (e unknownKindError) Error() string { return fmt.Sprintf("unknown selection kind: %q", e.kind) }

// IsUnknownKind reports whether err came from an unrecognized Kind.
func IsUnknownKind(err error) bool {
	_, ok := err.(unknownKindError)
	return ok
}

// Snapshot is an immutable copy of both selections.
type Snapshot struct {
	PromptIDs []string
	ModelIDs  []string
}

// Empty reports whether either selection is empty, which blocks a run.
func (s Snapshot) Empty() bool { return len(s.PromptIDs) == 0 || len(s.ModelIDs) == 0 }

// State is the in-memory selection. It is safe for concurrent use.
type State struct {
	mu      sync.RWMutex
	prompts []string
	models  []string
}

// New returns an empty selection.
func New() *State { return &State{} }

// Select replaces the selection for kind with ids. Order is kept and
// duplicates collapse onto their first occurrence. Ids are not checked
// against any catalog.
func (s *State) Select(kind Kind, ids []string) error {
	next := dedupe(ids)
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case KindPrompt:
		s.prompts = next
	case KindModel:
		s.models = next
	default:
		return unknownKindError{kind: string(kind)}
	}
	return nil
}

// Snapshot returns copies of the current selections. Later Select calls
// never affect a returned Snapshot.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		PromptIDs: append([]string(nil), s.prompts...),
		ModelIDs:  append([]string(nil), s.models...),
	}
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

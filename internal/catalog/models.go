package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"promptbench/internal/inference"
	"promptbench/pkg/types"
)

// ModelLoader enumerates models from the inference backend.
type ModelLoader struct {
	lister inference.Lister
	log    zerolog.Logger
}

// NewModelLoader lists models through lister.
func NewModelLoader(lister inference.Lister, log zerolog.Logger) *ModelLoader {
	return &ModelLoader{lister: lister, log: log.With().Str("component", "catalog").Logger()}
}

// LoadModels returns the backend's models in backend order with duplicate
// ids removed. Any backend or decode failure is an UnavailableError.
func (l *ModelLoader) LoadModels(ctx context.Context) ([]types.Model, error) {
	models, err := l.lister.ListModels(ctx)
	if err != nil {
		return nil, unavailable("models", err)
	}
	out := make([]types.Model, 0, len(models))
	seen := make(map[string]bool, len(models))
	for _, m := range models {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		if m.Name == "" {
			m.Name = m.ID
		}
		out = append(out, m)
	}
	l.log.Debug().Int("count", len(out)).Msg("models loaded")
	return out, nil
}

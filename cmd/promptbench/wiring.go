package main

import (
	"github.com/rs/zerolog"

	"promptbench/internal/app"
	"promptbench/internal/batch"
	"promptbench/internal/catalog"
	"promptbench/internal/config"
	"promptbench/internal/inference"
)

func newBackend(cfg config.Config) (inference.Backend, error) {
	return inference.New(inference.Options{
		Backend:        cfg.Backend,
		BaseURL:        cfg.BackendURL,
		APIKey:         cfg.APIKey,
		RequestTimeout: cfg.RequestTimeout.Std(),
		ConnectTimeout: cfg.ConnectTimeout.Std(),
		ModelsDir:      cfg.ModelsDir,
		LlamaCtx:       cfg.LlamaCtx,
		LlamaThreads:   cfg.LlamaThreads,
		MaxTokens:      cfg.MaxTokens,
	})
}

// newSession wires catalogs and the orchestrator around one backend.
func newSession(cfg config.Config, log zerolog.Logger, pub batch.EventPublisher) (*app.Session, error) {
	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}
	orch := batch.New(backend, batch.WithLogger(log), batch.WithPublisher(pub))
	return app.New(
		catalog.NewPromptLoader(cfg.PromptsSource, log),
		catalog.NewModelLoader(backend, log),
		orch,
		log,
	), nil
}

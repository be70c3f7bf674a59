package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"promptbench/internal/batch"
	"promptbench/internal/selection"
	"promptbench/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListPrompts() []types.Prompt
	ListModels() []types.Model
	Reload(ctx context.Context) error
	Select(kind selection.Kind, ids []string) error
	Selection() types.SelectionResponse
	Submit(ctx context.Context) (string, <-chan batch.Report, error)
	View() types.ViewResponse
	Comparison() types.ComparisonResponse
	Ready() bool
}

// Reasons reported when POST /runs does not start a run.
const (
	ReasonEmptySelection = "empty selection"
	ReasonRunInProgress  = "run in progress"
)

// NewMux builds the router. hub may be nil, in which case /events is not
// mounted.
func NewMux(svc Service, hub *Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(requestLogger)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   defaultIfEmpty(corsAllowedOrigins, []string{"*"}),
			AllowedMethods:   defaultIfEmpty(corsAllowedMethods, []string{"GET", "POST", "PUT", "OPTIONS"}),
			AllowedHeaders:   defaultIfEmpty(corsAllowedHeaders, []string{"Content-Type", "X-Log-Level"}),
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))

		r.Get("/prompts", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, types.PromptsResponse{Prompts: svc.ListPrompts()})
		})

		r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, types.ModelsResponse{Models: svc.ListModels()})
		})

		r.Post("/catalog/reload", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := joinContexts(serverBaseCtx, r.Context())
			defer cancel()
			if err := svc.Reload(ctx); err != nil {
				logFor(r).Warn().Err(err).Msg("catalog reload incomplete")
			}
			writeJSON(w, http.StatusOK, map[string]int{
				"prompts": len(svc.ListPrompts()),
				"models":  len(svc.ListModels()),
			})
		})

		r.Get("/selection", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.Selection())
		})

		r.Put("/selection/{kind}", func(w http.ResponseWriter, r *http.Request) {
			kind, err := selection.ParseKind(chi.URLParam(r, "kind"))
			if err != nil {
				writeError(w, err)
				return
			}
			var req types.SelectionRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			if err := svc.Select(kind, req.IDs); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, svc.Selection())
		})

		r.Post("/runs", func(w http.ResponseWriter, r *http.Request) {
			// The run outlives the request; only shutdown cancels it.
			runID, done, err := svc.Submit(serverBaseCtx)
			switch {
			case errors.Is(err, batch.ErrEmptySelection):
				countIgnoredRun("empty_selection")
				writeJSON(w, http.StatusOK, types.RunResponse{Started: false, Reason: ReasonEmptySelection})
				return
			case errors.Is(err, batch.ErrRunInProgress):
				countIgnoredRun("in_progress")
				writeJSON(w, http.StatusOK, types.RunResponse{Started: false, Reason: ReasonRunInProgress})
				return
			case err != nil:
				writeError(w, err)
				return
			}
			logFor(r).Info().Str("run_id", runID).Msg("run started")
			if wantWait(r) {
				select {
				case <-done:
				case <-r.Context().Done():
					return
				}
			}
			writeJSON(w, http.StatusAccepted, types.RunResponse{Started: true, RunID: runID})
		})

		r.Get("/results", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.View())
		})

		r.Get("/comparison", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, svc.Comparison())
		})
	})

	if hub != nil {
		r.Get("/events", hub.ServeHTTP)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// decodeJSON enforces the content type and body limit and decodes into v.
// It writes the error response itself and reports whether decoding worked.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}

func wantWait(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("wait")) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func defaultIfEmpty(v, def []string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}

// requestLogger emits one line per request at the request's log level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lvl := requestLogLevel(r)
		if lvl < LevelInfo {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logFor(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("dur", time.Since(start)).
			Msg("request")
	})
}

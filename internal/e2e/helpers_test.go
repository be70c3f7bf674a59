package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"promptbench/internal/app"
	"promptbench/internal/batch"
	"promptbench/internal/catalog"
	"promptbench/internal/httpapi"
	"promptbench/internal/inference"
)

// createPromptDir writes a manifest plus one file per prompt and returns the
// directory.
func createPromptDir(t *testing.T, prompts map[string]string, order ...string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "prompts"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files := make([]string, 0, len(order))
	for _, name := range order {
		files = append(files, name)
		if err := os.WriteFile(filepath.Join(dir, "prompts", name), []byte(prompts[name]), 0o644); err != nil {
			t.Fatalf("write prompt %s: %v", name, err)
		}
	}
	manifest, _ := json.Marshal(map[string][]string{"prompts": files})
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), manifest, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return dir
}

// fakeOllama is a minimal Ollama server. Chat replies "<model> says: <message>"
// followed by a second paragraph. A model listed in fail returns HTTP 500.
// When gate is non-nil every chat waits for it to close.
type fakeOllama struct {
	models []string
	fail   map[string]bool
	gate   chan struct{}

	mu    sync.Mutex
	calls []string
}

func (f *fakeOllama) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/tags":
		type entry struct {
			Name string `json:"name"`
		}
		list := make([]entry, 0, len(f.models))
		for _, m := range f.models {
			list = append(list, entry{Name: m})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"models": list})
	case "/api/chat":
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.calls = append(f.calls, req.Model+"|"+req.Messages[0].Content)
		f.mu.Unlock()
		if f.gate != nil {
			select {
			case <-f.gate:
			case <-r.Context().Done():
				return
			}
		}
		if f.fail[req.Model] {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"model crashed"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   req.Model,
			"message": map[string]string{"role": "assistant", "content": req.Model + " says: " + req.Messages[0].Content + "\n\nThe end."},
			"done":    true,
		})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeOllama) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// stack is a fully wired promptbench server in front of a fake backend.
type stack struct {
	api     *httptest.Server
	backend *fakeOllama
	hub     *httpapi.Hub
	session *app.Session
}

func newStack(t *testing.T, backend *fakeOllama, promptDir string) *stack {
	t.Helper()
	bsrv := httptest.NewServer(backend)
	t.Cleanup(bsrv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	httpapi.SetBaseContext(ctx)
	t.Cleanup(func() { httpapi.SetBaseContext(nil) })

	hub := httpapi.NewHub()
	go hub.Run(ctx)

	log := zerolog.Nop()
	client := inference.NewOllama(bsrv.URL, 5*time.Second, time.Second)
	sess := app.New(
		catalog.NewPromptLoader(promptDir, log),
		catalog.NewModelLoader(client, log),
		batch.New(client, batch.WithPublisher(hub), batch.WithLogger(log)),
		log,
	)
	if err := sess.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	api := httptest.NewServer(httpapi.NewMux(sess, hub))
	t.Cleanup(api.Close)
	return &stack{api: api, backend: backend, hub: hub, session: sess}
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpSend(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func selectIDs(t *testing.T, base, kind string, ids ...string) {
	t.Helper()
	payload, _ := json.Marshal(map[string][]string{"ids": ids})
	resp, body := httpSend(t, http.MethodPut, base+"/selection/"+kind, payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select %s: %d %s", kind, resp.StatusCode, body)
	}
}

func wsURL(httpURL string) string { return "ws" + strings.TrimPrefix(httpURL, "http") }

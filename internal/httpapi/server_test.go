package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"promptbench/internal/batch"
	"promptbench/internal/selection"
	"promptbench/pkg/types"
)

type mockService struct {
	mu        sync.Mutex
	prompts   []types.Prompt
	models    []types.Model
	sel       types.SelectionResponse
	view      types.ViewResponse
	cmp       types.ComparisonResponse
	ready     bool
	submitErr error
	reloadErr error
	reloads   int
	submitCtx context.Context
	done      chan batch.Report
}

func (m *mockService) ListPrompts() []types.Prompt { return append([]types.Prompt{}, m.prompts...) }
func (m *mockService) ListModels() []types.Model   { return append([]types.Model{}, m.models...) }
func (m *mockService) Ready() bool                 { return m.ready }
func (m *mockService) View() types.ViewResponse    { return m.view }
func (m *mockService) Comparison() types.ComparisonResponse {
	return m.cmp
}

func (m *mockService) Reload(context.Context) error {
	m.mu.Lock()
	m.reloads++
	m.mu.Unlock()
	return m.reloadErr
}

func (m *mockService) Select(kind selection.Kind, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch kind {
	case selection.KindPrompt:
		m.sel.PromptIDs = ids
	case selection.KindModel:
		m.sel.ModelIDs = ids
	}
	return nil
}

func (m *mockService) Selection() types.SelectionResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sel
}

func (m *mockService) Submit(ctx context.Context) (string, <-chan batch.Report, error) {
	if m.submitErr != nil {
		return "", nil, m.submitErr
	}
	m.submitCtx = ctx
	done := m.done
	if done == nil {
		done = make(chan batch.Report, 1)
		done <- batch.Report{RunID: "run-1", State: types.RunCompleted}
		close(done)
	}
	return "run-1", done, nil
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPromptsAndModelsHandlers(t *testing.T) {
	svc := &mockService{
		prompts: []types.Prompt{{ID: "p1", Name: "p1.md", Content: "hi"}},
		models:  []types.Model{{ID: "m1"}, {ID: "m2"}},
	}
	r := NewMux(svc, nil)

	w := serve(t, r, http.MethodGet, "/models", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var models types.ModelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &models); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(models.Models) != 2 {
		t.Fatalf("models len=%d", len(models.Models))
	}

	w = serve(t, r, http.MethodGet, "/prompts", "")
	var prompts types.PromptsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &prompts); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(prompts.Prompts) != 1 || prompts.Prompts[0].Content != "hi" {
		t.Fatalf("unexpected prompts: %+v", prompts)
	}
}

func TestEmptyCatalogEncodesAsArray(t *testing.T) {
	r := NewMux(&mockService{}, nil)
	w := serve(t, r, http.MethodGet, "/prompts", "")
	if !strings.Contains(w.Body.String(), `"prompts":[]`) {
		t.Fatalf("expected empty array, got %s", w.Body.String())
	}
}

func TestCatalogReload(t *testing.T) {
	svc := &mockService{models: []types.Model{{ID: "m1"}}, reloadErr: errors.New("partial")}
	r := NewMux(svc, nil)
	w := serve(t, r, http.MethodPost, "/catalog/reload", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if svc.reloads != 1 {
		t.Fatalf("reload calls=%d", svc.reloads)
	}
	var body map[string]int
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["models"] != 1 || body["prompts"] != 0 {
		t.Fatalf("unexpected counts: %v", body)
	}
}

func TestSelectionRoundTrip(t *testing.T) {
	svc := &mockService{}
	r := NewMux(svc, nil)
	w := serve(t, r, http.MethodPut, "/selection/models", `{"ids":["m2","m1"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = serve(t, r, http.MethodPut, "/selection/prompt", `{"ids":["p1"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	w = serve(t, r, http.MethodGet, "/selection", "")
	var sel types.SelectionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &sel); err != nil {
		t.Fatalf("json: %v", err)
	}
	if strings.Join(sel.ModelIDs, ",") != "m2,m1" || strings.Join(sel.PromptIDs, ",") != "p1" {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestSelectionErrors(t *testing.T) {
	r := NewMux(&mockService{}, nil)
	cases := []struct {
		name, path, ct, body string
		want                 int
	}{
		{"unknown kind", "/selection/widgets", "application/json", `{"ids":[]}`, http.StatusBadRequest},
		{"bad json", "/selection/models", "application/json", "not-json", http.StatusBadRequest},
		{"wrong content type", "/selection/models", "text/plain", `{"ids":[]}`, http.StatusUnsupportedMediaType},
		{"mixed case content type", "/selection/models", "Application/JSON; charset=utf-8", `{"ids":["m"]}`, http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, c.path, bytes.NewBufferString(c.body))
			req.Header.Set("Content-Type", c.ct)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != c.want {
				t.Fatalf("status=%d want %d body=%s", w.Code, c.want, w.Body.String())
			}
		})
	}
}

func TestSelectionBodyTooLarge(t *testing.T) {
	defer SetMaxBodyBytes(0)
	SetMaxBodyBytes(16)
	r := NewMux(&mockService{}, nil)
	w := serve(t, r, http.MethodPut, "/selection/models", `{"ids":["aaaaaaaaaaaaaaaaaaaaaaaa"]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for too-large body, got %d", w.Code)
	}
}

func TestRunsStarted(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	defer cancel()
	SetBaseContext(base)
	defer SetBaseContext(nil)

	svc := &mockService{}
	r := NewMux(svc, nil)
	w := serve(t, r, http.MethodPost, "/runs", "")
	if w.Code != http.StatusAccepted {
		t.Fatalf("status=%d", w.Code)
	}
	var resp types.RunResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !resp.Started || resp.RunID != "run-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if svc.submitCtx != base {
		t.Fatalf("run should use the server base context")
	}
}

func TestRunsIgnored(t *testing.T) {
	cases := map[error]string{
		batch.ErrEmptySelection: ReasonEmptySelection,
		batch.ErrRunInProgress:  ReasonRunInProgress,
	}
	for err, reason := range cases {
		r := NewMux(&mockService{submitErr: err}, nil)
		w := serve(t, r, http.MethodPost, "/runs", "")
		if w.Code != http.StatusOK {
			t.Fatalf("%v: status=%d", err, w.Code)
		}
		var resp types.RunResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Started || resp.Reason != reason {
			t.Fatalf("%v: unexpected response %+v", err, resp)
		}
	}
}

func TestRunsWait(t *testing.T) {
	done := make(chan batch.Report, 1)
	svc := &mockService{done: done}
	r := NewMux(svc, nil)
	finished := make(chan *httptest.ResponseRecorder)
	go func() { finished <- serve(t, r, http.MethodPost, "/runs?wait=true", "") }()
	select {
	case <-finished:
		t.Fatalf("wait=true returned before the run finished")
	default:
	}
	done <- batch.Report{RunID: "run-1", State: types.RunCompleted}
	close(done)
	if w := <-finished; w.Code != http.StatusAccepted {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestResultsAndComparison(t *testing.T) {
	svc := &mockService{
		view: types.ViewResponse{State: types.RunFailed, Error: "inference (ollama) model m1: boom", Results: []types.InferenceResult{}},
		cmp:  types.ComparisonResponse{State: types.RunCompleted, Groups: []types.ComparisonGroup{{ModelID: "m1", ModelName: "M1", Results: []types.InferenceResult{}}}},
	}
	r := NewMux(svc, nil)
	w := serve(t, r, http.MethodGet, "/results", "")
	var view types.ViewResponse
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("json: %v", err)
	}
	if view.State != types.RunFailed || view.Error == "" {
		t.Fatalf("unexpected view: %+v", view)
	}
	w = serve(t, r, http.MethodGet, "/comparison", "")
	var cmp types.ComparisonResponse
	if err := json.Unmarshal(w.Body.Bytes(), &cmp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(cmp.Groups) != 1 || cmp.Groups[0].ModelName != "M1" {
		t.Fatalf("unexpected comparison: %+v", cmp)
	}
}

func TestReadyz(t *testing.T) {
	w := serve(t, NewMux(&mockService{ready: true}, nil), http.MethodGet, "/readyz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	w = serve(t, NewMux(&mockService{}, nil), http.MethodGet, "/readyz", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "loading") {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	w := serve(t, NewMux(&mockService{}, nil), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestEventsNotMountedWithoutHub(t *testing.T) {
	w := serve(t, NewMux(&mockService{}, nil), http.MethodGet, "/events", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)

	h := NewMux(&mockService{ready: true}, nil)
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected CORS header Access-Control-Allow-Origin to be set, got empty")
	}
}

package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T) []byte {
	t.Helper()
	mrr := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(mrr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if mrr.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", mrr.Code)
	}
	return mrr.Body.Bytes()
}

// TestMetricsMiddleware_EmitsRequestCounters verifies that wrapping a handler
// with MetricsMiddleware results in request metrics being exposed via the
// Prometheus /metrics handler.
func TestMetricsMiddleware_EmitsRequestCounters(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	rr := httptest.NewRecorder()
	MetricsMiddleware(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if body := scrape(t); !bytes.Contains(body, []byte("promptbench_http_requests_total")) {
		t.Fatalf("expected promptbench_http_requests_total in metrics")
	}
}

// TestMetricsMiddleware_UsesRoutePattern ensures requests routed by NewMux
// are labelled by the chi route pattern instead of the raw URL path.
func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	h := NewMux(&mockService{}, nil)
	w := serve(t, h, http.MethodPut, "/selection/models", `{"ids":["m1"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/selection/{kind}", http.MethodPut, "200"))
	if got < 1 {
		t.Fatalf("expected a sample labelled with the route pattern, got %v", got)
	}
}

func TestCountIgnoredRun(t *testing.T) {
	before := testutil.ToFloat64(runsIgnoredTotal.WithLabelValues("in_progress"))
	countIgnoredRun("in_progress")
	countIgnoredRun("in_progress")
	if got := testutil.ToFloat64(runsIgnoredTotal.WithLabelValues("in_progress")); got < before+2 {
		t.Fatalf("expected counter >= %v, got %v", before+2, got)
	}
	before = testutil.ToFloat64(runsIgnoredTotal.WithLabelValues("unspecified"))
	countIgnoredRun("")
	if got := testutil.ToFloat64(runsIgnoredTotal.WithLabelValues("unspecified")); got < before+1 {
		t.Fatalf("empty reason should count as unspecified")
	}
}

package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMiddlewareRecordsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	handler := collector.Middleware("/api/caves/{name}", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/caves/deep-cave", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("/api/caves/{name}", "GET", "404")); got != 1 {
		t.Fatalf("speleo_http_requests_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "speleo_http_request_duration_seconds", map[string]string{
		"route":  "/api/caves/{name}",
		"method": "GET",
	}); count != 1 {
		t.Fatalf("speleo_http_request_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestObserveSurveyReconstruction(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	collector.ObserveSurveyReconstruction("deep-cave", "entrance", 12, 1, 0, false, 3*time.Millisecond)
	collector.ObserveSurveyReconstruction("deep-cave", "floating", 0, 2, 0, true, time.Millisecond)

	if got := testutil.ToFloat64(collector.ReconstructionRuns.WithLabelValues("deep-cave", "false")); got != 1 {
		t.Fatalf("runs{isolated=false} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.ReconstructionRuns.WithLabelValues("deep-cave", "true")); got != 1 {
		t.Fatalf("runs{isolated=true} = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "speleo_reconstruction_duration_seconds", map[string]string{
		"cave": "deep-cave",
	}); count != 2 {
		t.Fatalf("reconstruction duration sample_count = %d, want 2", count)
	}
}

func TestMetricsHandlerExposesNetworkGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	collector.SetNetworkCounts(42, 3, 2, 1)
	collector.HTTPRequests.WithLabelValues("/health", "GET", "200").Inc()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"speleo_http_requests_total",
		"speleo_stations_placed",
		"speleo_orphan_shots",
		"speleo_duplicate_shots",
		"speleo_isolated_surveys",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
	if !strings.Contains(body, "speleo_stations_placed 42") {
		t.Fatalf("/metrics output missing gauge value:\n%s", body)
	}
}

// Registering twice against the same registry reuses the existing
// collectors instead of failing.
func TestNewCollectorIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("first NewCollector: %v", err)
	}
	second, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("second NewCollector: %v", err)
	}

	first.HTTPRequests.WithLabelValues("/health", "GET", "200").Inc()
	if got := testutil.ToFloat64(second.HTTPRequests.WithLabelValues("/health", "GET", "200")); got != 1 {
		t.Fatalf("second collector sees %v, want the shared counter at 1", got)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

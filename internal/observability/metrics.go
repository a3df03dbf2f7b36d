package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles Prometheus metrics for the reconstruction engine
// and the HTTP API, and provides helpers to wire them into handlers.
type Collector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	ReconstructionRuns     *prometheus.CounterVec
	ReconstructionDuration *prometheus.HistogramVec
	StationsPlaced         prometheus.Gauge
	OrphanShots            prometheus.Gauge
	DuplicateShots         prometheus.Gauge
	IsolatedSurveys        prometheus.Gauge
}

// NewCollector registers the metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "speleo_http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "code"})
	requests, err := registerCounterVec(reg, requests, "speleo_http_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "speleo_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route", "method"})
	durations, err = registerHistogramVec(reg, durations, "speleo_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "speleo_reconstruction_runs_total",
		Help: "Survey reconstruction passes, labeled by cave and isolation outcome.",
	}, []string{"cave", "isolated"})
	runs, err = registerCounterVec(reg, runs, "speleo_reconstruction_runs_total")
	if err != nil {
		return nil, err
	}

	runDurations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "speleo_reconstruction_duration_seconds",
		Help:    "Per-survey reconstruction latency in seconds.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"cave"})
	runDurations, err = registerHistogramVec(reg, runDurations, "speleo_reconstruction_duration_seconds")
	if err != nil {
		return nil, err
	}

	placed, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "speleo_stations_placed",
		Help: "Stations placed by the most recent reconstruction pass.",
	}), "speleo_stations_placed")
	if err != nil {
		return nil, err
	}
	orphans, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "speleo_orphan_shots",
		Help: "Orphan shots reported by the most recent reconstruction pass.",
	}), "speleo_orphan_shots")
	if err != nil {
		return nil, err
	}
	duplicates, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "speleo_duplicate_shots",
		Help: "Duplicate shots reported by the most recent reconstruction pass.",
	}), "speleo_duplicate_shots")
	if err != nil {
		return nil, err
	}
	isolated, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "speleo_isolated_surveys",
		Help: "Surveys left isolated by the most recent reconstruction pass.",
	}), "speleo_isolated_surveys")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:               gatherer,
		HTTPRequests:           requests,
		HTTPDurations:          durations,
		ReconstructionRuns:     runs,
		ReconstructionDuration: runDurations,
		StationsPlaced:         placed,
		OrphanShots:            orphans,
		DuplicateShots:         duplicates,
		IsolatedSurveys:        isolated,
	}, nil
}

// ObserveSurveyReconstruction satisfies core.ReconstructionRecorder so
// the engine can report outcomes without importing Prometheus.
func (c *Collector) ObserveSurveyReconstruction(caveName, surveyName string, placed, orphans, duplicates int, isolated bool, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.ReconstructionRuns.WithLabelValues(caveName, strconv.FormatBool(isolated)).Inc()
	c.ReconstructionDuration.WithLabelValues(caveName).Observe(elapsed.Seconds())
}

// SetNetworkCounts updates the whole-cave gauges after a full
// recomputation.
func (c *Collector) SetNetworkCounts(placed, orphans, duplicates, isolated int) {
	if c == nil {
		return
	}
	c.StationsPlaced.Set(float64(placed))
	c.OrphanShots.Set(float64(orphans))
	c.DuplicateShots.Set(float64(duplicates))
	c.IsolatedSurveys.Set(float64(isolated))
}

// Middleware records request counts and durations for HTTP handlers.
// route should be the registered pattern, not the raw URL, to keep
// label cardinality bounded.
func (c *Collector) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		c.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(sw.code)).Inc()
		c.HTTPDurations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

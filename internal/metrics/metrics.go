package metrics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the band engine.
type Metrics struct {
	SamplesTotal   prometheus.Counter
	ResultsTotal   *prometheus.CounterVec // labels: band
	ZScoreFailures *prometheus.CounterVec // labels: band, reason
	ComputeDur     prometheus.Histogram
	ActiveStreams  prometheus.Gauge
	DroppedResults prometheus.Counter
	SourceErrors   prometheus.Counter
	Reloads        *prometheus.CounterVec // labels: outcome=ok|rejected
}

// NewMetrics creates all metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SamplesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bandengine_samples_total",
			Help: "Total samples ingested",
		}),
		ResultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bandengine_results_total",
			Help: "Band results emitted (by band)",
		}, []string{"band"}),
		ZScoreFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bandengine_zscore_failures_total",
			Help: "Z-score computations that failed (by band and reason)",
		}, []string{"band", "reason"}),
		ComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bandengine_compute_duration_seconds",
			Help:    "Engine compute latency per sample",
			Buckets: []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001},
		}),
		ActiveStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bandengine_active_streams",
			Help: "Streams with live indicator graphs",
		}),
		DroppedResults: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bandengine_dropped_results_total",
			Help: "Results the sink failed to write",
		}),
		SourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bandengine_source_errors_total",
			Help: "Malformed input lines skipped by the sample source",
		}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bandengine_reloads_total",
			Help: "Band config reloads (ok, rejected)",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.SamplesTotal,
		m.ResultsTotal,
		m.ZScoreFailures,
		m.ComputeDur,
		m.ActiveStreams,
		m.DroppedResults,
		m.SourceErrors,
		m.Reloads,
	)

	return m
}

// HealthStatus represents the service health.
type HealthStatus struct {
	mu sync.RWMutex

	SourceOK       bool      `json:"source_ok"`
	LastSampleTime time.Time `json:"last_sample_time"`
	Streams        int       `json:"streams"`
	Bands          []string  `json:"bands"`
	StartedAt      time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt: time.Now(),
	}
}

func (h *HealthStatus) SetSourceOK(v bool) {
	h.mu.Lock()
	h.SourceOK = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastSampleTime(t time.Time) {
	h.mu.Lock()
	h.LastSampleTime = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetStreams(n int) {
	h.mu.Lock()
	h.Streams = n
	h.mu.Unlock()
}

func (h *HealthStatus) SetBands(names []string) {
	h.mu.Lock()
	h.Bands = names
	h.mu.Unlock()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.SourceOK {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}

	sampleAge := ""
	if !h.LastSampleTime.IsZero() {
		sampleAge = time.Since(h.LastSampleTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status         string   `json:"status"`
		Uptime         string   `json:"uptime"`
		SourceOK       bool     `json:"source_ok"`
		LastSampleTime string   `json:"last_sample_time"`
		SampleAge      string   `json:"sample_age"`
		Streams        int      `json:"streams"`
		Bands          []string `json:"bands"`
	}{
		Status:         overallStatus,
		Uptime:         time.Since(h.StartedAt).Round(time.Second).String(),
		SourceOK:       h.SourceOK,
		LastSampleTime: h.LastSampleTime.Format(time.RFC3339),
		SampleAge:      sampleAge,
		Streams:        h.Streams,
		Bands:          h.Bands,
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		slog.Warn("write health response failed", "err", err)
	}
}

// Server runs an HTTP server exposing /metrics, /healthz and any extra routes.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server. gatherer backs /metrics;
// routes adds service-specific handlers.
func NewServer(addr string, gatherer prometheus.Gatherer, health *HealthStatus, routes map[string]http.Handler) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", health)
	for pattern, h := range routes {
		mux.Handle(pattern, h)
	}

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the server's router, for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("metrics server listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("metrics server error", "err", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown failed", "err", err)
		return err
	}
	return nil
}

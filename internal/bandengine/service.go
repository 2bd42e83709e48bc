// Package bandengine runs Bollinger Band graphs over a stream of samples and
// serves the current readings over HTTP.
package bandengine

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bandstream/config"
	"bandstream/internal/indicator"
	"bandstream/internal/logger"
	"bandstream/internal/metrics"
	"bandstream/internal/model"
)

// Service is the top-level orchestrator for the band engine.
// It wires all dependencies, manages lifecycle, and coordinates goroutines.
type Service struct {
	cfg *config.Config

	// mu guards engine. The process loop is the only writer; HTTP
	// handlers take the read lock.
	mu     sync.RWMutex
	engine *indicator.Engine

	sink     Sink
	registry *prometheus.Registry
	prom     *metrics.Metrics
	health   *metrics.HealthStatus
	server   *metrics.Server

	sampleCh chan model.StreamSample
}

type flusher interface {
	Flush() error
}

// New creates a Service from cfg. Results are written to sink.
func New(cfg *config.Config, sink Sink) (*Service, error) {
	engine, err := indicator.NewEngine(cfg.Bands)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	svc := &Service{
		cfg:      cfg,
		engine:   engine,
		sink:     sink,
		registry: reg,
		prom:     metrics.NewMetrics(reg),
		health:   metrics.NewHealthStatus(),
		sampleCh: make(chan model.StreamSample, cfg.SampleBuffer),
	}
	svc.health.SetBands(bandNames(engine.Configs()))
	svc.server = metrics.NewServer(cfg.HTTPAddr, reg, svc.health, map[string]http.Handler{
		"/bands":  http.HandlerFunc(svc.handleBands),
		"/config": http.HandlerFunc(svc.handleConfig),
		"/reload": http.HandlerFunc(svc.handleReload),
	})
	return svc, nil
}

// Handler returns the HTTP router serving /bands, /config, /reload,
// /metrics and /healthz.
func (svc *Service) Handler() http.Handler { return svc.server.Handler() }

// Run starts the HTTP server, the source and the process loop. It blocks
// until ctx is cancelled or src is exhausted and every sample has been
// processed. A source failure is returned; cancellation is not an error.
func (svc *Service) Run(ctx context.Context, src Source) error {
	slog.Info("starting band engine",
		"bands", bandNames(svc.engine.Configs()),
		"http_addr", svc.cfg.HTTPAddr,
		"sample_buffer", svc.cfg.SampleBuffer)

	svc.server.Start()
	svc.health.SetSourceOK(true)

	srcErr := make(chan error, 1)
	go func() {
		err := src.Run(ctx, svc.sampleCh)
		close(svc.sampleCh)
		srcErr <- err
	}()

	svc.processLoop(ctx)

	var err error
	select {
	case err = <-srcErr:
	case <-ctx.Done():
		// The source may be blocked in a read that ignores ctx.
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		svc.health.SetSourceOK(false)
		slog.Error("sample source failed", "err", err)
	} else {
		err = nil
	}

	svc.shutdown()
	return err
}

// shutdown flushes the sink and stops the HTTP server.
func (svc *Service) shutdown() {
	if f, ok := svc.sink.(flusher); ok {
		if err := f.Flush(); err != nil {
			slog.Error("sink flush failed", "err", err)
		}
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	svc.server.Stop(shutCtx)
	slog.Info("band engine stopped")
}

// processLoop consumes samples until the channel is closed or ctx is done.
func (svc *Service) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ss, ok := <-svc.sampleCh:
			if !ok {
				return
			}
			svc.processSample(ctx, ss)

			// Flush once the backlog is drained so readers see results promptly.
			if len(svc.sampleCh) == 0 {
				if f, ok := svc.sink.(flusher); ok {
					if err := f.Flush(); err != nil {
						slog.Warn("sink flush failed", "err", err)
					}
				}
			}
		}
	}
}

// processSample feeds one sample to the engine, records metrics and hands
// the results to the sink.
func (svc *Service) processSample(ctx context.Context, ss model.StreamSample) []model.BandResult {
	start := time.Now()
	svc.mu.Lock()
	results, err := svc.engine.Process(ss)
	streams := svc.engine.StreamCount()
	svc.mu.Unlock()
	svc.prom.ComputeDur.Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Error("engine process failed", "stream", ss.Stream, "err", err)
		return nil
	}

	svc.prom.SamplesTotal.Inc()
	svc.prom.ActiveStreams.Set(float64(streams))
	svc.health.SetStreams(streams)
	svc.health.SetLastSampleTime(time.Now())

	for i := range results {
		r := &results[i]
		svc.prom.ResultsTotal.WithLabelValues(r.Band).Inc()

		if ferr := r.Failure(); ferr != nil {
			reason := "other"
			if errors.Is(ferr, indicator.ErrDivisionByZero) {
				reason = "division_by_zero"
			}
			svc.prom.ZScoreFailures.WithLabelValues(r.Band, reason).Inc()

			tctx := logger.WithTraceID(ctx, logger.GenerateTraceID(ss.Stream, ss.TS))
			slog.Warn("z-score unavailable", append(logger.LogWithTrace(tctx),
				"stream", ss.Stream, "band", r.Band, "value", ss.Value, "err", ferr)...)
		}

		if err := svc.sink.Write(*r); err != nil {
			svc.prom.DroppedResults.Inc()
			slog.Warn("sink write failed", "stream", ss.Stream, "band", r.Band, "err", err)
		}
	}
	return results
}

// SourceErrorHandler returns a callback for CSVSource.OnError that counts
// and logs skipped lines.
func (svc *Service) SourceErrorHandler() func(line int, err error) {
	return func(line int, err error) {
		svc.prom.SourceErrors.Inc()
		slog.Warn("skipping malformed sample", "line", line, "err", err)
	}
}

func bandNames(configs []indicator.BandConfig) []string {
	names := make([]string, len(configs))
	for i, c := range configs {
		names[i] = c.Name
	}
	return names
}

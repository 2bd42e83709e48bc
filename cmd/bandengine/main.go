package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bandstream/config"
	"bandstream/internal/bandengine"
	"bandstream/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// Results go to stdout, logs to stderr.
	logger.Init(cfg.Service, logger.ParseLevel(cfg.LogLevel))

	sink := bandengine.NewJSONSink(os.Stdout)
	svc, err := bandengine.New(cfg, sink)
	if err != nil {
		slog.Error("init failed", "err", err)
		os.Exit(1)
	}

	src := bandengine.NewCSVSource(os.Stdin)
	src.OnError = svc.SourceErrorHandler()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := svc.Run(ctx, src); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

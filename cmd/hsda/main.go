package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-data-hsda/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-data-hsda/internal/adapter/kafka"
	"github.com/couchcryptid/storm-data-hsda/internal/config"
	"github.com/couchcryptid/storm-data-hsda/internal/hsda"
	"github.com/couchcryptid/storm-data-hsda/internal/observability"
	"github.com/couchcryptid/storm-data-hsda/internal/pipeline"
	"github.com/couchcryptid/storm-data-hsda/internal/sounding"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	set, err := loadMembershipSet(cfg.MFTablePath)
	if err != nil {
		logger.Error("failed to load membership table", "path", cfg.MFTablePath, "error", err)
		os.Exit(1)
	}
	if cfg.MFTablePath != "" {
		logger.Info("membership table loaded", "path", cfg.MFTablePath)
	}

	engine := hsda.NewEngine(set, hsda.WithWorkers(cfg.Workers), hsda.WithLogger(logger))
	resolver := sounding.NewResolver(sounding.NewCache(cfg.SoundingWindow, cfg.SoundingCacheSize))
	transformer := pipeline.NewTransformer(engine, resolver, pipeline.TransformOptions{
		HailCodes:    cfg.HailCodes,
		DZDROffset:   cfg.DZDROffset,
		CBBThreshold: cfg.CBBThreshold,
		Compress:     cfg.CompressOutput(),
	}, logger, metrics)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, transformer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// loadMembershipSet reads a JSON table from path, or returns the built-in
// table when path is empty.
func loadMembershipSet(path string) (*hsda.MembershipSet, error) {
	if path == "" {
		return hsda.DefaultMembershipSet(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open membership table: %w", err)
	}
	defer f.Close()
	return hsda.LoadMembershipSet(f)
}

package main

import (
	"context"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"limitbook/internal/api/rest"
	"limitbook/internal/config"
	"limitbook/internal/exchange/coinbase"
	"limitbook/internal/exchange/common"
	"limitbook/internal/exchange/replay"
	"limitbook/internal/infra/archive"
	"limitbook/internal/infra/health"
	"limitbook/internal/infra/http/middleware"
	"limitbook/internal/infra/kafka"
	"limitbook/internal/infra/log"
	"limitbook/internal/infra/metrics"
	"limitbook/internal/infra/netutil"
	"limitbook/internal/infra/runner"
	"limitbook/internal/infra/version"
	"limitbook/internal/ingest"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logger := log.NewLogger(cfg)

	adminCIDRs, err := netutil.ParseCIDRs(cfg.Server.AdminAllowCIDRs)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid admin allowlist")
	}

	// Snapshot source, optionally recorded to / replayed from the archive
	var provider common.SnapshotProvider
	var arc *archive.Archive
	if cfg.Source.Exchange == "replay" || cfg.Archive.Record {
		arc, err = archive.Open(cfg.Archive.Dir)
		if err != nil {
			logger.Fatal().Err(err).Msg("archive open failed")
		}
		defer func() { _ = arc.Close() }()
	}
	switch cfg.Source.Exchange {
	case "replay":
		provider = replay.New(arc)
	case "coinbase":
		provider = coinbase.New(cfg, logger)
		if cfg.Archive.Record {
			provider = replay.NewRecorder(provider, arc, logger)
		}
	default:
		logger.Fatal().Str("exchange", cfg.Source.Exchange).Msg("unknown snapshot source")
	}

	var pub ingest.Publisher
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = p.Close() }()
		pub = p
	}

	store := rest.NewStore()

	// Init metrics and start HTTP endpoint
	registry := metrics.Init(logger)
	mux := http.NewServeMux()
	mux.Handle("/metrics", middleware.AdminGate(logger, adminCIDRs, metrics.Handler(registry)))
	mux.HandleFunc("/healthz", health.Healthz)
	mux.Handle("/readyz", health.Readyz(func() bool { return store.HasAll(cfg.Source.Products) }))
	mux.HandleFunc("/version", version.Handler)
	mux.Handle("/", middleware.AdminGate(logger, adminCIDRs, rest.New(store).Handler()))
	if cfg.Server.Pprof {
		mux.Handle("/debug/pprof/", middleware.AdminGate(logger, adminCIDRs, http.HandlerFunc(pprof.Index)))
		mux.Handle("/debug/pprof/cmdline", middleware.AdminGate(logger, adminCIDRs, http.HandlerFunc(pprof.Cmdline)))
		mux.Handle("/debug/pprof/profile", middleware.AdminGate(logger, adminCIDRs, http.HandlerFunc(pprof.Profile)))
		mux.Handle("/debug/pprof/symbol", middleware.AdminGate(logger, adminCIDRs, http.HandlerFunc(pprof.Symbol)))
		mux.Handle("/debug/pprof/trace", middleware.AdminGate(logger, adminCIDRs, http.HandlerFunc(pprof.Trace)))
	}

	handler := middleware.RequestID(middleware.Logger(log.Component(logger, "http"))(mux))

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	v := version.Get()
	logger.Info().Str("version", v.Version).Str("commit", v.Commit).Str("source", provider.Name()).
		Strs("products", cfg.Source.Products).Str("addr", cfg.Server.Addr).Msg("limitbook started")

	g := &runner.Group{Logger: logger}
	g.Go(ctx, "ingest", ingest.New(cfg, provider, store, pub, logger).Run)

	health.SetReady(true)

	var workerErr error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case s := <-sigCh:
		logger.Info().Str("signal", s.String()).Msg("shutdown signal received")
	case r := <-g.Done():
		if r.Err != nil {
			logger.Error().Err(r.Err).Str("worker", r.Name).Msg("worker error")
			workerErr = r.Err
		}
	}

	health.SetReady(false)
	cancel()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	g.Wait()
	logger.Info().Msg("shutdown complete")
	if workerErr != nil {
		os.Exit(1)
	}
}

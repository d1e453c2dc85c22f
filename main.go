package main

import (
	"avifd/internal/adapters/cache"
	"avifd/internal/adapters/converter"
	"avifd/internal/adapters/file"
	"avifd/internal/adapters/handler"
	"avifd/internal/adapters/metrics"
	"avifd/internal/config"
	"avifd/internal/core/service"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Info().Msg("starting avifd...")

	log.Info().Msg("reading config file...")
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	zerolog.SetGlobalLevel(cfg.Log.Level)
	zerolog.DefaultContextLogger = &log.Logger

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	resultCache, err := cache.New(cfg.Cache.Mode, cfg.Cache.Shards, cfg.Cache.MaxEntries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing result cache")
	}

	recorder, err := metrics.NewPrometheus(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing metrics")
	}

	opts := []service.Option{
		service.WithMetrics(recorder),
		service.WithTimeout(cfg.Handler.Timeout),
	}
	if cfg.Cache.Deduplicate {
		opts = append(opts, service.WithDeduplication())
	}

	conv := service.NewConverter(file.NewFetcher(nil), converter.NewAVIFConverter(), resultCache, opts...)

	h := handler.NewHTTP(conv, cfg.Server.StaticDir, promhttp.Handler())

	srv := &http.Server{Addr: cfg.Server.Address, Handler: h.Router()}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	log.Info().
		Str("address", cfg.Server.Address).
		Str("cacheMode", cfg.Cache.Mode).
		Bool("deduplicate", cfg.Cache.Deduplicate).
		Msg("server listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}

	<-stopped
	log.Info().Msg("server stopped")
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"backtestd/internal/config"
	"backtestd/internal/server"
	"backtestd/internal/store"
	"backtestd/pkg/logger"

	// Strategy variants register themselves on import.
	_ "backtestd/strategies/rsirev"
	_ "backtestd/strategies/smacross"
	_ "backtestd/strategies/timewindow"
)

func main() {
	configPath := flag.String("config", "configs/values_local.yaml", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	log, err := logger.New("backtestd", cfg.Service.Debug)
	if err != nil {
		zap.NewExample().Fatal("init logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.New()
	sources, err := buildSources(ctx, cfg)
	if err != nil {
		log.Fatal("init candle sources", zap.Error(err))
	}
	started := time.Now()
	if err := st.Load(ctx, sources...); err != nil {
		// Malformed data is fatal to startup; nothing is served half-loaded.
		log.Fatal("load candle store", zap.Error(err))
	}
	log.Info("candle store loaded",
		zap.Int("series", len(st.Keys())),
		zap.Duration("elapsed", time.Since(started)),
	)

	defaults, err := cfg.EngineDefaults()
	if err != nil {
		log.Fatal("engine defaults", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    cfg.Service.Addr,
		Handler: server.New(st, defaults, log).Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving", zap.String("addr", cfg.Service.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("serve", zap.Error(err))
	}
}

func buildSources(ctx context.Context, cfg *config.Config) ([]store.Source, error) {
	var sources []store.Source
	if cfg.Dataset.CSVDir != "" {
		sources = append(sources, store.NewCSVSource(cfg.Dataset.CSVDir))
	}
	if cfg.Dataset.PostgresDSN != "" {
		pg, err := store.NewPostgresSource(ctx, cfg.Dataset.PostgresDSN)
		if err != nil {
			return nil, err
		}
		sources = append(sources, pg)
	}
	return sources, nil
}

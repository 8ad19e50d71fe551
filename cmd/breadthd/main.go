package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"breadthwatch/config"
	"breadthwatch/internal/breadth/collector"
	"breadthwatch/internal/breadth/engine"
	"breadthwatch/internal/metrics"
	"breadthwatch/internal/web"
	"breadthwatch/logger"
	"breadthwatch/pkg/binance"
	"breadthwatch/pkg/storage/postgres"

	"go.uber.org/zap"
)

func main() {
	// viper config
	cfg := config.Load()

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer log.Sync()

	zone, err := time.LoadLocation(cfg.Breadth.Timezone)
	if err != nil {
		log.Fatal("invalid breadth timezone", zap.String("timezone", cfg.Breadth.Timezone), zap.Error(err))
	}

	// Watchlist persistence
	pg, err := postgres.InitializeAndMigrateWatchlist(cfg.Postgres, cfg.Log.Environment, true)
	if err != nil {
		log.Fatal("failed to initialize postgres", zap.Error(err))
	}
	defer pg.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	symbols, err := loadSymbols(ctx, pg, cfg, log)
	if err != nil {
		log.Fatal("failed to resolve watchlist", zap.Error(err))
	}
	log.Info("watchlist resolved", zap.Strings("symbols", symbols))

	// Reference data fetcher + trade stream
	restClient := binance.NewRESTClient(cfg.Binance.REST.BaseURL, cfg.Binance.REST.Timeout)
	streamClient := binance.NewStreamClient(cfg.Binance.WS.URL, cfg.Binance.WS.ReconnectDelay, symbols, log)

	// Engine + single-writer worker
	eng := engine.New(restClient, symbols, log)
	worker := collector.New(eng, streamClient, zone, cfg.Breadth.ArrowInterval, log)
	go worker.Run(ctx)

	// Prometheus endpoint
	metricsSrv := metrics.Serve(cfg.Metrics.Addr)
	defer metricsSrv.Close()

	// Snapshot + watchlist API
	api := web.NewServer(eng, worker, pg, zone, log)
	httpSrv := &http.Server{Addr: cfg.HTTP.Addr, Handler: api}
	go func() {
		log.Info("http api listening", zap.String("addr", cfg.HTTP.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", zap.String("signal", sig.String()))

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
}

// loadSymbols prefers the persisted watchlist; an empty table falls back
// to the configured defaults and seeds the table with them.
func loadSymbols(ctx context.Context, pg *postgres.PostgresClient, cfg *config.Config, log *zap.Logger) ([]string, error) {
	symbols, err := pg.LoadWatchlist(ctx)
	if err != nil {
		return nil, err
	}
	if len(symbols) > 0 {
		return symbols, nil
	}

	symbols, err = web.NormalizeSymbols(cfg.Breadth.Symbols)
	if err != nil {
		return nil, err
	}
	if err := pg.ReplaceWatchlist(ctx, symbols); err != nil {
		log.Warn("failed to seed watchlist table", zap.Error(err))
	}
	return symbols, nil
}

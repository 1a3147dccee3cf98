package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-live/internal/config"
	"crypto-live/internal/job"
	"crypto-live/internal/provider"
	"crypto-live/internal/service"
	"crypto-live/internal/spreadsheet"
	"crypto-live/pkg/tracing"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initTracerFunc           = tracing.InitTracer
	newCoinGeckoProviderFunc = func(tracer trace.Tracer, cfg *config.Config) service.MarketProvider {
		return provider.NewCoinGeckoProvider(tracer,
			provider.WithBaseURL(cfg.CoinGeckoBaseURL),
			provider.WithAPIKey(cfg.CoinGeckoAPIKey),
			provider.WithTimeout(time.Duration(cfg.CoinGeckoTimeoutSecs)*time.Second),
		)
	}
	newMarketServiceFunc = service.NewMarketService
	newWriterFunc        = spreadsheet.NewWriter
	newMarketPollerFunc  = job.NewMarketPoller
	runPollerFunc        = func(p *job.MarketPoller, ctx context.Context) { p.Start(ctx) }
	setupSignalNotify    = signal.Notify
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		ServiceName: "crypto-live-spreadsheet",
		Enabled:     cfg.TracingEnabled,
		Endpoint:    cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	cgProvider := newCoinGeckoProviderFunc(tracer, cfg)
	marketService := newMarketServiceFunc(tracer, cgProvider, cfg.MarketLimit)
	writer := newWriterFunc(tracer, cfg.SpreadsheetPath)
	poller := newMarketPollerFunc(tracer, marketService, cfg.SpreadsheetPollSecs, writer)

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-quit:
			log.Println("Stopping spreadsheet updates...")
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Printf("Writing %s every %ds", cfg.SpreadsheetPath, cfg.SpreadsheetPollSecs)
	runPollerFunc(poller, ctx)
	log.Println("Spreadsheet updater exited")
}

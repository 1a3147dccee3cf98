package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-live/internal/bot"
	"crypto-live/internal/cache"
	"crypto-live/internal/config"
	"crypto-live/internal/handler"
	"crypto-live/internal/job"
	"crypto-live/internal/provider"
	"crypto-live/internal/service"
	"crypto-live/internal/snapshot"
	"crypto-live/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "crypto-live/docs"
)

//go:generate swag init -g main.go -d ./,../../internal/handler,../../internal/domain -o ../../docs

const serviceName = "crypto-live"

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initRedisFunc            = cache.InitRedis
	initTracerFunc           = tracing.InitTracer
	newCoinGeckoProviderFunc = func(tracer trace.Tracer, cfg *config.Config) service.MarketProvider {
		return provider.NewCoinGeckoProvider(tracer,
			provider.WithBaseURL(cfg.CoinGeckoBaseURL),
			provider.WithAPIKey(cfg.CoinGeckoAPIKey),
			provider.WithTimeout(time.Duration(cfg.CoinGeckoTimeoutSecs)*time.Second),
		)
	}
	newMarketServiceFunc   = service.NewMarketService
	newMarketPollerFunc    = job.NewMarketPoller
	startPollerFunc        = func(p *job.MarketPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	writeDashboardPageFunc = handler.WriteDashboardPage
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Crypto Live API
// @version         1.0
// @description     Top-N crypto market snapshot published by a fixed-interval poller.

// @host      localhost:8081
// @BasePath  /
func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		ServiceName: serviceName,
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

	// Snapshot slot and its sinks
	store := snapshot.NewStore()
	publishers := []job.Publisher{store}

	if cfg.RedisURL != "" {
		client, err := initRedisFunc(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: redis mirror disabled: %v", err)
		} else {
			defer client.Close()
			ttl := 2 * time.Duration(cfg.DashboardPollSecs) * time.Second
			publishers = append(publishers, cache.NewSnapshotMirror(tracer, client, ttl))
		}
	}

	// Start market poller (background goroutine, stopped by ctx cancel)
	cgProvider := newCoinGeckoProviderFunc(tracer, cfg)
	marketService := newMarketServiceFunc(tracer, cgProvider, cfg.MarketLimit)
	poller := newMarketPollerFunc(tracer, marketService, cfg.DashboardPollSecs, publishers...)
	startPollerFunc(poller, ctx)

	// Start Telegram bot
	tgBot, err := startTelegramBotFunc(cfg.TelegramBotToken, store)
	if err != nil {
		log.Printf("Warning: Telegram bot disabled: %v", err)
	}

	if cfg.DashboardHTMLPath != "" {
		endpoint := handler.DashboardURL(cfg.DashboardAddr)
		if err := writeDashboardPageFunc(cfg.DashboardHTMLPath, endpoint); err != nil {
			log.Printf("Warning: %v", err)
		} else {
			log.Printf("Dashboard page written to %s (polling %s)", cfg.DashboardHTMLPath, endpoint)
		}
	}

	// Create handlers and routes
	h := newHandlerFunc(tracer, store)

	dashboard := newRouterFunc()
	dashboard.Use(otelgin.Middleware(serviceName))
	h.RegisterDashboard(dashboard)

	admin := newRouterFunc()
	admin.Use(otelgin.Middleware(serviceName))
	h.RegisterAdmin(admin)
	admin.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	servers := []*http.Server{
		{Addr: cfg.DashboardAddr, Handler: dashboard},
		{Addr: cfg.AdminAddr, Handler: admin},
	}
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Printf("HTTP server listening on %s", srv.Addr)
			if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
				log.Fatalf("listen: %s\n", err)
			}
		}(srv)
	}

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()
	if tgBot != nil {
		tgBot.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	for _, srv := range servers {
		if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
			log.Printf("Server %s forced to shutdown: %v", srv.Addr, err)
		}
	}

	log.Println("Server exiting")
}

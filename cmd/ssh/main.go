package main

import (
	"context"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"crypto-live/internal/config"
	"crypto-live/internal/job"
	"crypto-live/internal/provider"
	"crypto-live/internal/service"
	"crypto-live/internal/snapshot"
	"crypto-live/internal/tui"
	"crypto-live/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
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
	newMarketPollerFunc  = job.NewMarketPoller
	startPollerFunc      = func(p *job.MarketPoller, ctx context.Context) { go p.Start(ctx) }
	newWishServerFunc    = wish.NewServer
	setupSignalNotify    = ossignal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx, tracing.Options{
		ServiceName: "crypto-live-ssh",
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

	// The SSH process keeps its own slot and producer.
	store := snapshot.NewStore()
	cgProvider := newCoinGeckoProviderFunc(tracer, cfg)
	marketService := newMarketServiceFunc(tracer, cgProvider, cfg.MarketLimit)
	poller := newMarketPollerFunc(tracer, marketService, cfg.DashboardPollSecs, store)
	startPollerFunc(poller, ctx)

	// Build Wish SSH server
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				return sessionModel(s, store), []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalf("failed to create SSH server: %v", err)
	}

	if srv != nil {
		go func() {
			log.Printf("SSH server listening on %s", addr)
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("SSH server stopped: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down SSH server...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("SSH server shutdown error: %v", err)
		}
	}

	log.Println("SSH server exited")
}

func sessionModel(s ssh.Session, source tui.SnapshotSource) *tui.Model {
	username := s.User()
	if key := s.PublicKey(); key != nil {
		log.Printf("SSH session: user=%s fingerprint=%s", username, gossh.FingerprintSHA256(key))
	}

	model := tui.NewModel(source, username)
	pty, _, _ := s.Pty()
	model.SetSize(pty.Window.Width, pty.Window.Height)
	return model
}

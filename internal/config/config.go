package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	CoinGeckoBaseURL     string
	CoinGeckoAPIKey      string
	CoinGeckoTimeoutSecs int
	MarketLimit          int

	DashboardAddr     string
	AdminAddr         string
	DashboardPollSecs int
	DashboardHTMLPath string

	SpreadsheetPath     string
	SpreadsheetPollSecs int

	RedisURL         string
	TelegramBotToken string

	SSHPort        int
	SSHHostKeyPath string

	TracingEnabled bool
	OTLPEndpoint   string
}

func Load() *Config {
	cfg := &Config{
		CoinGeckoAPIKey:  strings.TrimSpace(os.Getenv("COINGECKO_API_KEY")),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	cfg.CoinGeckoBaseURL = strings.TrimSpace(os.Getenv("COINGECKO_BASE_URL"))
	if cfg.CoinGeckoBaseURL == "" {
		cfg.CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	}
	cfg.CoinGeckoTimeoutSecs = positiveInt("COINGECKO_TIMEOUT_SECS", 10)

	cfg.MarketLimit = positiveInt("MARKET_LIMIT", 50)
	if cfg.MarketLimit > 250 {
		log.Printf("Warning: MARKET_LIMIT=%d exceeds the API page size, using 250", cfg.MarketLimit)
		cfg.MarketLimit = 250
	}

	cfg.DashboardAddr = strings.TrimSpace(os.Getenv("DASHBOARD_ADDR"))
	if cfg.DashboardAddr == "" {
		cfg.DashboardAddr = ":8000"
	}
	cfg.AdminAddr = strings.TrimSpace(os.Getenv("ADMIN_ADDR"))
	if cfg.AdminAddr == "" {
		cfg.AdminAddr = ":8081"
	}
	cfg.DashboardPollSecs = positiveInt("DASHBOARD_POLL_SECS", 30)

	cfg.DashboardHTMLPath = "crypto_live_data.html"
	if v, ok := os.LookupEnv("DASHBOARD_HTML_PATH"); ok {
		cfg.DashboardHTMLPath = strings.TrimSpace(v)
	}

	cfg.SpreadsheetPath = strings.TrimSpace(os.Getenv("SPREADSHEET_PATH"))
	if cfg.SpreadsheetPath == "" {
		cfg.SpreadsheetPath = "crypto_live_data.xlsx"
	}
	cfg.SpreadsheetPollSecs = positiveInt("SPREADSHEET_POLL_SECS", 300)

	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, redis mirror disabled")
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}

	cfg.SSHPort = positiveInt("SSH_PORT", 2222)
	cfg.SSHHostKeyPath = strings.TrimSpace(os.Getenv("SSH_HOST_KEY_PATH"))
	if cfg.SSHHostKeyPath == "" {
		cfg.SSHHostKeyPath = ".ssh/id_ed25519"
	}

	cfg.TracingEnabled = !strings.EqualFold(strings.TrimSpace(os.Getenv("TRACING_ENABLED")), "false")
	cfg.OTLPEndpoint = strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if cfg.OTLPEndpoint == "" {
		cfg.OTLPEndpoint = "localhost:4317"
	}

	return cfg
}

func positiveInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crypto-live/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	coingeckoBaseURL = "https://api.coingecko.com/api/v3"

	// maxPerPage is the largest page /coins/markets will return.
	maxPerPage = 250
)

// CoinGeckoProvider fetches the market-cap ranked asset list from the CoinGecko API.
type CoinGeckoProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
	limiter *RateLimiter
}

// Option customizes a CoinGeckoProvider.
type Option func(*CoinGeckoProvider)

// WithBaseURL points the provider at another API root (pro endpoint, test server).
func WithBaseURL(baseURL string) Option {
	return func(p *CoinGeckoProvider) {
		if baseURL != "" {
			p.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithAPIKey sends a demo API key with every request.
func WithAPIKey(key string) Option {
	return func(p *CoinGeckoProvider) { p.apiKey = strings.TrimSpace(key) }
}

// WithTimeout bounds each request. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(p *CoinGeckoProvider) {
		if d > 0 {
			p.client.Timeout = d
		}
	}
}

// NewCoinGeckoProvider creates a provider with a 10s request timeout and
// built-in rate limiting of 8 requests per minute (one token every 7.5 seconds).
func NewCoinGeckoProvider(tracer trace.Tracer, opts ...Option) *CoinGeckoProvider {
	p := &CoinGeckoProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: coingeckoBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FetchMarkets returns the top limit assets ordered by market cap, one page only.
// Failures wrap domain.ErrNetwork or domain.ErrAPI. The call is never retried here.
func (p *CoinGeckoProvider) FetchMarkets(ctx context.Context, limit int) ([]domain.RawAsset, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-markets")
	defer span.End()

	if limit <= 0 {
		limit = 1
	}
	if limit > maxPerPage {
		limit = maxPerPage
	}
	span.SetAttributes(attribute.Int("limit", limit))

	q := url.Values{}
	q.Set("vs_currency", "usd")
	q.Set("order", "market_cap_desc")
	q.Set("per_page", strconv.Itoa(limit))
	q.Set("page", "1")
	q.Set("sparkline", "false")

	body, err := p.doRequest(ctx, p.baseURL+"/coins/markets?"+q.Encode())
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch markets: %w", err)
	}

	// Response shape: [{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":97000,...}, ...]
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("parse markets: %w: %w", domain.ErrAPI, err)
	}

	// Rows are decoded one by one so a malformed row is left for the normalizer to drop.
	raw := make([]domain.RawAsset, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &raw[i]); err != nil {
			raw[i] = domain.RawAsset{DecodeErr: err}
		}
	}

	span.SetAttributes(attribute.Int("records", len(raw)))
	return raw, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: coingecko status %d: %s", domain.ErrAPI, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrNetwork, err)
	}
	return body, nil
}

package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crypto-live/internal/domain"
	"crypto-live/internal/provider"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func TestMarketServiceCollect(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{raw: []domain.RawAsset{
		{Name: "Bitcoin", Symbol: "btc", CurrentPrice: 100.0, MarketCap: 10.0},
		{Name: "Broken", Symbol: "brk", CurrentPrice: "N/A"},
	}}
	svc := NewMarketService(testTracer, provider, 25)

	assets, err := svc.Collect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.lastLimit != 25 {
		t.Fatalf("expected limit 25, got %d", provider.lastLimit)
	}
	if len(assets) != 1 || assets[0].Symbol != "BTC" {
		t.Fatalf("unexpected assets: %+v", assets)
	}
}

func TestMarketServiceDefaultLimit(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{}
	svc := NewMarketService(testTracer, provider, 0)
	if _, err := svc.Collect(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.lastLimit != DefaultMarketLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultMarketLimit, provider.lastLimit)
	}
}

func TestMarketServicePropagatesFetchError(t *testing.T) {
	t.Parallel()

	provider := &mockProvider{err: domain.ErrNetwork}
	svc := NewMarketService(testTracer, provider, 10)

	if _, err := svc.Collect(context.Background()); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

type mockProvider struct {
	raw       []domain.RawAsset
	err       error
	lastLimit int
}

func (m *mockProvider) FetchMarkets(ctx context.Context, limit int) ([]domain.RawAsset, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.raw, nil
}

func TestMarketServiceCollectSurvivesMistypedRecord(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[` +
			`{"id":"bitcoin","symbol":"btc","name":"Bitcoin","current_price":100,"market_cap":3000},` +
			`{"id":"ethereum","symbol":"eth","name":"Ethereum","current_price":200,"market_cap":2000},` +
			`{"id":"broken","symbol":"brk","name":12345,"current_price":1,"market_cap":1}]`))
	}))
	defer srv.Close()

	cg := provider.NewCoinGeckoProvider(testTracer, provider.WithBaseURL(srv.URL))
	assets, err := NewMarketService(testTracer, cg, 3).Collect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 2 || assets[0].Symbol != "BTC" || assets[1].Symbol != "ETH" {
		t.Fatalf("expected the two good records, got %+v", assets)
	}
}

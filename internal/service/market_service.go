package service

import (
	"context"
	"log"

	"crypto-live/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMarketLimit is the page size used when none is configured.
const DefaultMarketLimit = 50

// MarketProvider is the fetcher contract: one page of raw rows, no retries.
type MarketProvider interface {
	FetchMarkets(ctx context.Context, limit int) ([]domain.RawAsset, error)
}

// MarketService bundles fetch and normalize; both producers share it.
type MarketService struct {
	tracer   trace.Tracer
	provider MarketProvider
	limit    int
}

// NewMarketService falls back to DefaultMarketLimit for a non-positive limit.
func NewMarketService(tracer trace.Tracer, provider MarketProvider, limit int) *MarketService {
	if limit <= 0 {
		limit = DefaultMarketLimit
	}
	return &MarketService{
		tracer:   tracer,
		provider: provider,
		limit:    limit,
	}
}

// Collect fetches the top assets and normalizes them. The result may be empty;
// deciding what an empty cycle means is left to the caller.
func (s *MarketService) Collect(ctx context.Context) ([]domain.Asset, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.collect")
	defer span.End()

	raw, err := s.provider.FetchMarkets(ctx, s.limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	assets := Normalize(raw)
	span.SetAttributes(
		attribute.Int("raw_records", len(raw)),
		attribute.Int("assets", len(assets)),
	)
	if dropped := len(raw) - len(assets); dropped > 0 {
		log.Printf("Collected %d assets (%d dropped)", len(assets), dropped)
	}
	return assets, nil
}

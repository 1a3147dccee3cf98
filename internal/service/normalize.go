package service

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"crypto-live/internal/domain"

	"github.com/shopspring/decimal"
)

// Normalize maps raw API rows onto the fixed Asset schema, keeping input order.
// A row that cannot be used is dropped with a warning; it never fails the batch.
func Normalize(raw []domain.RawAsset) []domain.Asset {
	assets := make([]domain.Asset, 0, len(raw))
	for i, r := range raw {
		asset, err := normalizeOne(r)
		if err != nil {
			log.Printf("normalize: dropping record %d (%s): %v", i, recordLabel(r), err)
			continue
		}
		assets = append(assets, asset)
	}
	return assets
}

func normalizeOne(r domain.RawAsset) (domain.Asset, error) {
	if r.DecodeErr != nil {
		return domain.Asset{}, fmt.Errorf("%w: %w", domain.ErrPartialRecord, r.DecodeErr)
	}

	symbol, err := text("symbol", r.Symbol)
	if err != nil {
		return domain.Asset{}, err
	}
	symbol = strings.ToUpper(symbol)
	if symbol == "" {
		return domain.Asset{}, fmt.Errorf("%w: missing symbol", domain.ErrPartialRecord)
	}
	name, err := text("name", r.Name)
	if err != nil {
		return domain.Asset{}, err
	}

	price, ok, err := number(r.CurrentPrice)
	switch {
	case err != nil:
		return domain.Asset{}, fmt.Errorf("%w: current_price: %w", domain.ErrPartialRecord, err)
	case !ok:
		return domain.Asset{}, fmt.Errorf("%w: current_price missing", domain.ErrPartialRecord)
	case price < 0:
		return domain.Asset{}, fmt.Errorf("%w: negative current_price %v", domain.ErrPartialRecord, price)
	}

	marketCap, err := nonNegative("market_cap", r.MarketCap)
	if err != nil {
		return domain.Asset{}, err
	}
	volume, err := nonNegative("total_volume", r.TotalVolume)
	if err != nil {
		return domain.Asset{}, err
	}
	change, _, err := number(r.PriceChangePercentage24h)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("%w: price_change_percentage_24h: %w", domain.ErrPartialRecord, err)
	}

	return domain.Asset{
		Name:         name,
		Symbol:       symbol,
		PriceUSD:     price,
		MarketCap:    marketCap,
		Volume24h:    volume,
		Change24hPct: RoundPct(change),
	}, nil
}

// RoundPct rounds to two decimals, half to even, on the decimal representation.
func RoundPct(v float64) float64 {
	return decimal.NewFromFloat(v).RoundBank(2).InexactFloat64()
}

// nonNegative treats a missing value as zero.
func nonNegative(field string, v any) (float64, error) {
	n, _, err := number(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrPartialRecord, field, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative %s %v", domain.ErrPartialRecord, field, n)
	}
	return n, nil
}

// number reports the numeric value of a decoded JSON field and whether it was present.
func number(v any) (float64, bool, error) {
	var n float64
	switch x := v.(type) {
	case nil:
		return 0, false, nil
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, true, fmt.Errorf("not a number: %q", x.String())
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, true, fmt.Errorf("not a number: %q", x)
		}
		n = f
	default:
		return 0, true, fmt.Errorf("unsupported type %T", v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, true, fmt.Errorf("not finite: %v", n)
	}
	return n, true, nil
}

// text returns a trimmed string field; null counts as empty.
func text(field string, v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(x), nil
	default:
		return "", fmt.Errorf("%w: %s: expected string, got %T", domain.ErrPartialRecord, field, v)
	}
}

func recordLabel(r domain.RawAsset) string {
	for _, v := range []any{r.ID, r.Symbol, r.Name} {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "unnamed"
}

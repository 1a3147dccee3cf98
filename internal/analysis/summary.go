package analysis

import (
	"sort"
	"time"

	"crypto-live/internal/domain"
)

// TopK is the size of the market-cap leaderboard in a summary.
const TopK = 5

// Analyze summarizes one snapshot's records. It needs at least one record.
func Analyze(assets []domain.Asset, at time.Time) (*domain.AnalysisSummary, error) {
	if len(assets) == 0 {
		return nil, domain.ErrEmptyDataset
	}

	highest, lowest := ChangeExtremes(assets)
	return &domain.AnalysisSummary{
		Timestamp:      at,
		TopByMarketCap: TopByMarketCap(assets, TopK),
		AveragePrice:   MeanPrice(assets),
		HighestChange:  highest,
		LowestChange:   lowest,
	}, nil
}

// TopByMarketCap returns up to k assets, largest market cap first. Equal caps
// keep their input order.
func TopByMarketCap(assets []domain.Asset, k int) []domain.Asset {
	ranked := make([]domain.Asset, len(assets))
	copy(ranked, assets)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MarketCap > ranked[j].MarketCap
	})
	if k < len(ranked) {
		ranked = ranked[:max(k, 0)]
	}
	return ranked
}

// MeanPrice is the arithmetic mean of current prices, 0 for no assets.
func MeanPrice(assets []domain.Asset) float64 {
	if len(assets) == 0 {
		return 0
	}
	var sum float64
	for _, a := range assets {
		sum += a.PriceUSD
	}
	return sum / float64(len(assets))
}

// ChangeExtremes returns the assets with the largest and smallest 24h change.
// Ties go to the first occurrence.
func ChangeExtremes(assets []domain.Asset) (highest, lowest domain.Asset) {
	if len(assets) == 0 {
		return domain.Asset{}, domain.Asset{}
	}
	highest, lowest = assets[0], assets[0]
	for _, a := range assets[1:] {
		if a.Change24hPct > highest.Change24hPct {
			highest = a
		}
		if a.Change24hPct < lowest.Change24hPct {
			lowest = a
		}
	}
	return highest, lowest
}

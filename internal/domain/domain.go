package domain

import "time"

// TimestampLayout is the wall-clock format used in every published document.
const TimestampLayout = "2006-01-02 15:04:05"

// RawAsset is one row of the CoinGecko /coins/markets response. Every field
// stays untyped: the API sends null for unknown values and nothing stops it from
// sending a number where a string belongs. DecodeErr is set when the row could
// not be decoded at all.
type RawAsset struct {
	ID                       any `json:"id"`
	Name                     any `json:"name"`
	Symbol                   any `json:"symbol"`
	CurrentPrice             any `json:"current_price"`
	MarketCap                any `json:"market_cap"`
	TotalVolume              any `json:"total_volume"`
	PriceChangePercentage24h any `json:"price_change_percentage_24h"`

	DecodeErr error `json:"-"`
}

// Asset is a normalized market row. The JSON names are the dashboard columns.
type Asset struct {
	Name         string  `json:"Cryptocurrency Name"`
	Symbol       string  `json:"Symbol"`
	PriceUSD     float64 `json:"Current Price (USD)"`
	MarketCap    float64 `json:"Market Capitalization"`
	Volume24h    float64 `json:"24h Trading Volume"`
	Change24hPct float64 `json:"Price Change 24h (%)"`
}

// Snapshot is the complete result of one successful cycle. It is never
// mutated after construction.
type Snapshot struct {
	Records   []Asset
	Timestamp time.Time
	Sequence  uint64
}

// SnapshotDocument is the wire form served to dashboard clients.
type SnapshotDocument struct {
	Data        []Asset `json:"data"`
	Timestamp   string  `json:"timestamp"`
	UpdateCount uint64  `json:"update_count"`
}

// EmptyDocument is served before the first successful cycle.
func EmptyDocument() SnapshotDocument {
	return SnapshotDocument{Data: []Asset{}, Timestamp: "", UpdateCount: 0}
}

// Document renders the snapshot for the wire. A nil snapshot yields EmptyDocument.
func (s *Snapshot) Document() SnapshotDocument {
	if s == nil {
		return EmptyDocument()
	}
	data := s.Records
	if data == nil {
		data = []Asset{}
	}
	return SnapshotDocument{
		Data:        data,
		Timestamp:   s.Timestamp.Format(TimestampLayout),
		UpdateCount: s.Sequence,
	}
}

// AnalysisSummary is derived from exactly one snapshot's records.
type AnalysisSummary struct {
	Timestamp      time.Time
	TopByMarketCap []Asset
	AveragePrice   float64
	HighestChange  Asset
	LowestChange   Asset
}

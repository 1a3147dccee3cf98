package spreadsheet

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"crypto-live/internal/analysis"
	"crypto-live/internal/domain"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/trace"
)

const (
	SheetLiveData = "Live Data"
	SheetAnalysis = "Analysis"
	SheetTop      = "Top 5 by Market Cap"
)

var liveDataHeader = []any{
	"Cryptocurrency Name", "Symbol", "Current Price (USD)",
	"Market Capitalization", "24h Trading Volume", "Price Change 24h (%)",
}

// Writer publishes each snapshot as a complete workbook at a fixed path.
type Writer struct {
	path   string
	tracer trace.Tracer
}

func NewWriter(tracer trace.Tracer, path string) *Writer {
	return &Writer{path: path, tracer: tracer}
}

func (w *Writer) Name() string { return "xlsx" }

func (w *Writer) Path() string { return w.path }

// Publish analyzes the snapshot and replaces the workbook. An empty snapshot
// returns domain.ErrEmptyDataset and leaves the previous file alone.
func (w *Writer) Publish(ctx context.Context, snap *domain.Snapshot) error {
	_, span := w.tracer.Start(ctx, "spreadsheet.publish")
	defer span.End()

	if snap == nil {
		return domain.ErrEmptyDataset
	}
	summary, err := analysis.Analyze(snap.Records, snap.Timestamp)
	if err != nil {
		return err
	}

	f, err := Build(snap.Records, summary)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	if err := w.replace(f); err != nil {
		span.RecordError(err)
		return err
	}

	log.Printf("Spreadsheet %s updated: top=%s avg=$%.2f highest=%s (%.2f%%)",
		w.path, snap.Records[0].Name, summary.AveragePrice,
		summary.HighestChange.Name, summary.HighestChange.Change24hPct)
	return nil
}

// replace writes to a temp file next to the target and renames it over the
// target, so a reader sees either the old workbook or the new one.
func (w *Writer) replace(f *excelize.File) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir %s: %w", domain.ErrSinkWrite, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", domain.ErrSinkWrite, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %w", domain.ErrSinkWrite, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %w", domain.ErrSinkWrite, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", domain.ErrSinkWrite, tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", domain.ErrSinkWrite, tmpName, err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return fmt.Errorf("%w: rename to %s: %w", domain.ErrSinkWrite, w.path, err)
	}
	return nil
}

// Build lays out the three sheets in memory.
func Build(assets []domain.Asset, summary *domain.AnalysisSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetLiveData); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetAnalysis, SheetTop} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := writeLiveData(f, assets); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeAnalysis(f, summary); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeTop(f, summary.TopByMarketCap); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeLiveData(f *excelize.File, assets []domain.Asset) error {
	rows := make([][]any, 0, len(assets)+1)
	rows = append(rows, liveDataHeader)
	for _, a := range assets {
		rows = append(rows, []any{a.Name, a.Symbol, a.PriceUSD, a.MarketCap, a.Volume24h, a.Change24hPct})
	}
	if err := setRows(f, SheetLiveData, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetLiveData, "A", "F", 22)
}

// The analysis sheet is label/value pairs with no header row.
func writeAnalysis(f *excelize.File, s *domain.AnalysisSummary) error {
	rows := [][]any{
		{"Analysis Timestamp", s.Timestamp.Format(domain.TimestampLayout)},
		{"Average Price (USD)", fmt.Sprintf("$%.2f", s.AveragePrice)},
		{"Highest 24h Change", fmt.Sprintf("%s: %.2f%%", s.HighestChange.Name, s.HighestChange.Change24hPct)},
		{"Lowest 24h Change", fmt.Sprintf("%s: %.2f%%", s.LowestChange.Name, s.LowestChange.Change24hPct)},
	}
	if err := setRows(f, SheetAnalysis, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetAnalysis, "A", "B", 28)
}

func writeTop(f *excelize.File, top []domain.Asset) error {
	rows := [][]any{{"Cryptocurrency Name", "Market Capitalization"}}
	for _, a := range top {
		rows = append(rows, []any{a.Name, a.MarketCap})
	}
	if err := setRows(f, SheetTop, rows); err != nil {
		return err
	}
	return f.SetColWidth(SheetTop, "A", "B", 24)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

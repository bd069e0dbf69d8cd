package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"congress-trades/models"
)

var csvHeader = []string{
	"politician", "state_district", "chamber", "doc_id", "filing_date",
	"ticker", "company", "asset_type", "transaction", "date", "notification_date",
	"amount_min", "amount_max", "amount_raw",
}

// CSVWriter writes a flat, one-row-per-trade export.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends one row per trade.
func (c *CSVWriter) Write(trades []*models.Trade) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range trades {
		row := []string{
			t.Politician,
			t.StateDistrict,
			t.Chamber,
			t.DocID,
			t.FilingDate,
			t.Ticker,
			t.Company,
			t.AssetType,
			t.Transaction,
			t.Date,
			t.NotificationDate,
			strconv.FormatInt(t.Amount.Min, 10),
			strconv.FormatInt(t.Amount.Max, 10),
			t.Amount.Raw,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

package storage

import "congress-trades/models"

// TradeWriter is the interface any trade storage backend must satisfy.
type TradeWriter interface {
	Write(trades []*models.Trade) error
	Close() error
}

// ReportWriter persists the published report document.
type ReportWriter interface {
	WriteReport(report *models.Report) error
}

var (
	_ TradeWriter  = (*CSVWriter)(nil)
	_ TradeWriter  = (*PostgresWriter)(nil)
	_ ReportWriter = (*JSONWriter)(nil)
)

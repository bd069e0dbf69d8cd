package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"congress-trades/models"
)

func sampleTrades() []*models.Trade {
	return []*models.Trade{
		{
			Ticker: "NVDA", Company: "NVIDIA Corporation", AssetType: "stock", Transaction: "purchase",
			Date: "01/16/2026", NotificationDate: "01/20/2026",
			Amount:     models.Amount{Min: 1001, Max: 15000, Raw: "$1,001 - $15,000"},
			Politician: "Jane Doe", StateDistrict: "CA12", FilingDate: "1/22/2026", DocID: "20024117", Chamber: "house",
		},
		{
			Ticker: "AAPL", Company: "Apple Inc. & Co", AssetType: "option", Transaction: "sale",
			Date: "01/10/2026", NotificationDate: "01/11/2026",
			Amount:     models.Amount{Min: 15001, Max: 50000, Raw: "$15,001 - $50,000"},
			Politician: "John Roe", StateDistrict: "TX03", FilingDate: "1/12/2026", DocID: "20024118", Chamber: "house",
		},
	}
}

func TestCSVWriterWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trades.csv")
	w, err := NewCSVWriter(path)
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	if err := w.Write(sampleTrades()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
	if rows[0][5] != "ticker" {
		t.Errorf("header[5]: got %q, want ticker", rows[0][5])
	}
	if rows[1][5] != "NVDA" || rows[1][11] != "1001" || rows[1][12] != "15000" {
		t.Errorf("first row: got %v", rows[1])
	}
	if rows[2][13] != "$15,001 - $50,000" {
		t.Errorf("raw amount: got %q", rows[2][13])
	}
}

func TestJSONWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "congress-trades.json")
	trades := sampleTrades()
	report := &models.Report{
		LastUpdated: "2026-01-25T10:00:00.000000Z",
		TotalTrades: len(trades),
		Years:       []int{2026, 2025},
		Trades:      trades,
		HotTickers: []*models.TickerSummary{
			{Ticker: "NVDA", Company: "NVIDIA Corporation", PoliticianCount: 1, Politicians: []string{"Jane Doe"}, Buys: 1, TotalMin: 1001, TotalMax: 15000},
		},
		TopPoliticians: []*models.FilerSummary{
			{Name: "John Roe", State: "TX03", Sells: 1, TotalTrades: 1, TotalMin: 15001, TotalMax: 50000},
		},
	}

	w := NewJSONWriter(path)
	if err := w.WriteReport(report); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	size, err := w.Size()
	if err != nil || size == 0 {
		t.Fatalf("Size: got %d, %v", size, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"hot_tickers"`, `"top_politicians"`, `"politician_count"`, `"notification_date"`, `"state_district"`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("output missing key %s", key)
		}
	}

	got, err := ReadReport(path)
	if err != nil {
		t.Fatalf("ReadReport: %v", err)
	}
	if len(got.Trades) != 2 {
		t.Fatalf("trades: got %d, want 2", len(got.Trades))
	}
	for i := range trades {
		if *got.Trades[i] != *trades[i] {
			t.Errorf("trade %d changed in round trip:\n got %+v\nwant %+v", i, *got.Trades[i], *trades[i])
		}
	}
	if got.HotTickers[0].Politicians[0] != "Jane Doe" {
		t.Errorf("hot ticker politicians: got %v", got.HotTickers[0].Politicians)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestDocCacheMissThenHit(t *testing.T) {
	c, err := NewDocCache(filepath.Join(t.TempDir(), "pdfs"))
	if err != nil {
		t.Fatalf("NewDocCache: %v", err)
	}

	_, ok, err := c.Get("20024117")
	if err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Put("20024117", []byte("%PDF-1.4")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, ok, err := c.Get("20024117")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("data: got %q", data)
	}
}

func TestDocCacheKeepsPathsInsideDir(t *testing.T) {
	dir := t.TempDir()
	c, err := NewDocCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	p := c.path("../../etc/passwd")
	if filepath.Dir(p) != dir {
		t.Errorf("path escaped cache dir: %s", p)
	}
}

func TestBuildInsertPlaceholders(t *testing.T) {
	runID := uuid.New()
	query, args := buildInsert(runID, sampleTrades())

	if len(args) != 2*tradeColumns {
		t.Fatalf("args: got %d, want %d", len(args), 2*tradeColumns)
	}
	if args[0] != runID.String() {
		t.Errorf("first arg should be the run id, got %v", args[0])
	}
	if !strings.Contains(query, "$30)") {
		t.Errorf("query should end with placeholder $30: %s", query)
	}
	if strings.Contains(query, "$31") {
		t.Errorf("query has too many placeholders: %s", query)
	}
}

func TestWritersBehindInterfaces(t *testing.T) {
	dir := t.TempDir()

	cw, err := NewCSVWriter(filepath.Join(dir, "trades.csv"))
	if err != nil {
		t.Fatalf("NewCSVWriter: %v", err)
	}
	var tw TradeWriter = cw
	if err := tw.Write(sampleTrades()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	f, err := os.Open(filepath.Join(dir, "trades.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Errorf("rows: got %d, want header + 2", len(rows))
	}

	var rw ReportWriter = NewJSONWriter(filepath.Join(dir, "report.json"))
	if err := rw.WriteReport(&models.Report{TotalTrades: 2, Years: []int{2026}, Trades: sampleTrades()}); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	got, err := ReadReport(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("ReadReport: %v", err)
	}
	if got.TotalTrades != 2 || len(got.Trades) != 2 {
		t.Errorf("report: got %d total, %d trades", got.TotalTrades, len(got.Trades))
	}
}

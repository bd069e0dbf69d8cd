package services

import (
	"encoding/json"
	"strings"
	"testing"

	"congress-trades/models"
)

const reportText = `FILING ID #20024117
Name: Hon. Jane Doe
ID Owner Asset Transaction Date Notification Amount
Type Date
1 SP NVIDIA Corporation - Common
Stock (NVDA) [ST]
P 01/16/2026 01/20/2026 $1,001 - $15,000
2 JT Berkshire Hathaway Inc. New (BRK) [ST] S (partial) 1/2/2026 1/5/2026 $15,001 -
$50,000
3 Microsoft Corporation (msft) [op] E 12/30/2025 01/02/2026 $100,001 - $250,000
4 Smith & Wesson Brands, Inc. (SWBI) [OI] S 01/03/2026 01/04/2026 $1,001 - $15,000`

func TestExtractTradesPrimary(t *testing.T) {
	trades := ExtractTrades(reportText)
	if len(trades) != 4 {
		t.Fatalf("trades: got %d, want 4", len(trades))
	}

	want := []models.Trade{
		{
			Ticker: "NVDA", Company: "SP NVIDIA Corporation - Common Stock", AssetType: "stock",
			Transaction: "purchase", Date: "01/16/2026", NotificationDate: "01/20/2026",
			Amount: models.Amount{Min: 1001, Max: 15000, Raw: "$1,001 - $15,000"},
		},
		{
			Ticker: "BRK", Company: "JT Berkshire Hathaway Inc. New", AssetType: "stock",
			Transaction: "sale", Date: "1/2/2026", NotificationDate: "1/5/2026",
			Amount: models.Amount{Min: 15001, Max: 50000, Raw: "$15,001 - $50,000"},
		},
		{
			Ticker: "MSFT", Company: "Microsoft Corporation", AssetType: "option",
			Transaction: "exchange", Date: "12/30/2025", NotificationDate: "01/02/2026",
			Amount: models.Amount{Min: 100001, Max: 250000, Raw: "$100,001 - $250,000"},
		},
		{
			Ticker: "SWBI", Company: "Smith & Wesson Brands, Inc.", AssetType: "stock",
			Transaction: "sale", Date: "01/03/2026", NotificationDate: "01/04/2026",
			Amount: models.Amount{Min: 1001, Max: 15000, Raw: "$1,001 - $15,000"},
		},
	}
	for i := range want {
		if *trades[i] != want[i] {
			t.Errorf("trade %d:\n got %+v\nwant %+v", i, *trades[i], want[i])
		}
	}
}

func TestExtractTradesCompanyCleanup(t *testing.T) {
	long := strings.Repeat("Very Long Holding Company Name ", 8)
	text := "-- " + long + " (LONG) [ST] P 01/16/2026 01/20/2026 $1,001 - $15,000"

	trades := ExtractTrades(text)
	if len(trades) != 1 {
		t.Fatalf("trades: got %d, want 1", len(trades))
	}
	company := trades[0].Company
	if len([]rune(company)) > 100 {
		t.Errorf("company length: got %d, want <= 100", len([]rune(company)))
	}
	if !strings.HasPrefix(company, "Very Long Holding") {
		t.Errorf("leading junk not stripped: %q", company)
	}
	if strings.Contains(company, "  ") {
		t.Errorf("whitespace not collapsed: %q", company)
	}
}

func TestExtractTradesNonBreakingSpaces(t *testing.T) {
	text := "Apple\u00a0Inc. (AAPL) [ST] P\u00a001/16/2026 01/20/2026 $1,001\u00a0-\u00a0$15,000"

	trades := ExtractTrades(text)
	if len(trades) != 1 {
		t.Fatalf("trades: got %d, want 1", len(trades))
	}
	if trades[0].Company != "Apple Inc." {
		t.Errorf("company: got %q, want %q", trades[0].Company, "Apple Inc.")
	}
	if trades[0].Amount.Min != 1001 || trades[0].Amount.Max != 15000 {
		t.Errorf("amount: got %+v", trades[0].Amount)
	}
}

func TestExtractTradesEmpty(t *testing.T) {
	for _, text := range []string{
		"",
		"   \n\r\n ",
		"This filing reports no transactions for the period.",
		"Holdings: Apple Inc. [ST] $1,001 - $15,000",
	} {
		if got := ExtractTrades(text); len(got) != 0 {
			t.Errorf("ExtractTrades(%q): got %d trades, want 0", text, len(got))
		}
	}
}

func TestExtractTradesFallback(t *testing.T) {
	// Asset tags are missing, so no full row matches.
	text := `Asset: Apple Inc. (AAPL) type P on 01/16/2026 notified 01/20/2026 for $1,001 - $15,000
Asset: Tesla Inc. (TSLA) type S on 02/01/2026 notified 02/03/2026 for $15,001 - $50,000
Asset: Ford Motor (F) no code, no dates, $1,001 - $15,000`

	trades := ExtractTrades(text)
	if len(trades) != 3 {
		t.Fatalf("trades: got %d, want 3", len(trades))
	}

	want := []models.Trade{
		{Ticker: "AAPL", AssetType: "stock", Transaction: "purchase", Date: "01/16/2026", NotificationDate: "01/20/2026",
			Amount: models.Amount{Min: 1001, Max: 15000, Raw: "$1,001 - $15,000"}},
		{Ticker: "TSLA", AssetType: "stock", Transaction: "sale", Date: "02/01/2026", NotificationDate: "02/03/2026",
			Amount: models.Amount{Min: 15001, Max: 50000, Raw: "$15,001 - $50,000"}},
		{Ticker: "F", AssetType: "stock", Transaction: "unknown", Date: "", NotificationDate: "",
			Amount: models.Amount{Min: 1001, Max: 15000, Raw: "$1,001 - $15,000"}},
	}
	for i := range want {
		if *trades[i] != want[i] {
			t.Errorf("trade %d:\n got %+v\nwant %+v", i, *trades[i], want[i])
		}
	}
}

func TestExtractTradesFallbackPositionalQuirks(t *testing.T) {
	// The company name contains a ticker-shaped token, so every later
	// field shifts by one. This is accepted behaviour of the loose pass.
	text := `Holding (ABC) Partners (XYZ) P 01/16/2026 01/20/2026 $1,001 - $15,000 $15,001 - $50,000`

	trades := ExtractTrades(text)
	if len(trades) != 2 {
		t.Fatalf("trades: got %d, want 2", len(trades))
	}
	if trades[0].Ticker != "ABC" || trades[0].Transaction != "purchase" || trades[0].Date != "01/16/2026" {
		t.Errorf("first: got %+v", *trades[0])
	}
	if trades[1].Ticker != "XYZ" || trades[1].Transaction != "unknown" || trades[1].Date != "" ||
		trades[1].Amount.Max != 50000 {
		t.Errorf("second: got %+v", *trades[1])
	}
	if trades[0].Company != "" || trades[1].Company != "" {
		t.Error("loose pass must leave company empty")
	}
}

func TestExtractTradesFallbackNeedsAnAmountPerTicker(t *testing.T) {
	text := `Apple Inc. (AAPL) P 01/16/2026 01/20/2026 $1,001 - $15,000
Tesla Inc. (TSLA) S 02/01/2026 02/03/2026 amount withheld`

	if got := ExtractTrades(text); len(got) != 0 {
		t.Errorf("got %d trades, want 0 when tickers outnumber amounts", len(got))
	}
}

func TestExtractTradesPartialPrimaryDoesNotFallBack(t *testing.T) {
	// The second row lacks its asset tag. Only the first row is returned,
	// even though the loose pass would have found both tickers.
	text := `Apple Inc. (AAPL) [ST] P 01/16/2026 01/20/2026 $1,001 - $15,000
Tesla Inc. (TSLA) S 02/01/2026 02/03/2026 $15,001 - $50,000`

	trades := ExtractTrades(text)
	if len(trades) != 1 {
		t.Fatalf("trades: got %d, want 1", len(trades))
	}
	if trades[0].Ticker != "AAPL" {
		t.Errorf("ticker: got %q, want AAPL", trades[0].Ticker)
	}
}

func TestExtractTradesJSONRoundTrip(t *testing.T) {
	trades := ExtractTrades(reportText)
	for _, tr := range trades {
		tr.Politician = "Jane Doe"
		tr.StateDistrict = "CA12"
		tr.FilingDate = "1/22/2026"
		tr.DocID = "20024117"
		tr.Chamber = "house"
	}

	data, err := json.Marshal(trades)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var back []*models.Trade
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(back) != len(trades) {
		t.Fatalf("len: got %d, want %d", len(back), len(trades))
	}
	for i := range trades {
		if *back[i] != *trades[i] {
			t.Errorf("trade %d changed:\n got %+v\nwant %+v", i, *back[i], *trades[i])
		}
	}
}

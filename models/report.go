package models

// TickerSummary aggregates every trade of one ticker.
type TickerSummary struct {
	Ticker          string   `json:"ticker"`
	Company         string   `json:"company"`
	PoliticianCount int      `json:"politician_count"`
	Politicians     []string `json:"politicians"`
	Buys            int      `json:"buys"`
	Sells           int      `json:"sells"`
	TotalMin        int64    `json:"total_min"`
	TotalMax        int64    `json:"total_max"`
}

// FilerSummary aggregates every trade of one filer.
type FilerSummary struct {
	Name        string `json:"name"`
	State       string `json:"state"`
	Buys        int    `json:"buys"`
	Sells       int    `json:"sells"`
	TotalTrades int    `json:"total_trades"`
	TotalMin    int64  `json:"total_min"`
	TotalMax    int64  `json:"total_max"`
}

// Aggregates holds the two ranked views computed over a full trade set.
type Aggregates struct {
	HotTickers     []*TickerSummary `json:"hot_tickers"`
	TopPoliticians []*FilerSummary  `json:"top_politicians"`
}

// Report is the JSON document published after a run.
type Report struct {
	LastUpdated    string           `json:"last_updated"`
	TotalTrades    int              `json:"total_trades"`
	Years          []int            `json:"years"`
	Trades         []*Trade         `json:"trades"`
	HotTickers     []*TickerSummary `json:"hot_tickers"`
	TopPoliticians []*FilerSummary  `json:"top_politicians"`
}

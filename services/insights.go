package services

import (
	"fmt"
	"sort"
	"strings"

	"congress-trades/models"
	"congress-trades/utils"
)

// TopN caps both ranked views.
const TopN = 30

// Aggregate builds the hot-ticker and top-filer views in one pass over the
// complete trade set. Trades are keyed by ticker and by filer name as given.
// Ties in either ranking keep the order in which keys were first seen.
func Aggregate(trades []*models.Trade) *models.Aggregates {
	var (
		tickerOrder []string
		tickers     = make(map[string]*models.TickerSummary)
		filersSeen  = make(map[string]map[string]struct{})
		filerOrder  []string
		filers      = make(map[string]*models.FilerSummary)
	)

	for _, t := range trades {
		ts, ok := tickers[t.Ticker]
		if !ok {
			ts = &models.TickerSummary{Ticker: t.Ticker}
			tickers[t.Ticker] = ts
			filersSeen[t.Ticker] = make(map[string]struct{})
			tickerOrder = append(tickerOrder, t.Ticker)
		}
		if ts.Company == "" {
			ts.Company = t.Company
		}
		filersSeen[t.Ticker][t.Politician] = struct{}{}

		fs, ok := filers[t.Politician]
		if !ok {
			fs = &models.FilerSummary{Name: t.Politician, State: t.StateDistrict}
			filers[t.Politician] = fs
			filerOrder = append(filerOrder, t.Politician)
		}

		switch t.Transaction {
		case models.TxPurchase:
			ts.Buys++
			fs.Buys++
		case models.TxSale:
			ts.Sells++
			fs.Sells++
		}
		fs.TotalTrades++

		ts.TotalMin += t.Amount.Min
		ts.TotalMax += t.Amount.Max
		fs.TotalMin += t.Amount.Min
		fs.TotalMax += t.Amount.Max
	}

	hot := make([]*models.TickerSummary, 0, len(tickerOrder))
	for _, ticker := range tickerOrder {
		ts := tickers[ticker]
		names := make([]string, 0, len(filersSeen[ticker]))
		for name := range filersSeen[ticker] {
			names = append(names, name)
		}
		sort.Strings(names)
		ts.Politicians = names
		ts.PoliticianCount = len(names)
		hot = append(hot, ts)
	}
	sort.SliceStable(hot, func(i, j int) bool {
		return hot[i].PoliticianCount > hot[j].PoliticianCount
	})

	top := make([]*models.FilerSummary, 0, len(filerOrder))
	for _, name := range filerOrder {
		top = append(top, filers[name])
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].TotalMax > top[j].TotalMax
	})

	if len(hot) > TopN {
		hot = hot[:TopN]
	}
	if len(top) > TopN {
		top = top[:TopN]
	}
	return &models.Aggregates{HotTickers: hot, TopPoliticians: top}
}

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate aggregates the full trade collection. It must only be called once
// every document has been extracted.
func (s *InsightService) Generate(trades []*models.Trade) *models.Aggregates {
	agg := Aggregate(trades)
	s.logger.Info("[insights] Aggregated %d trades → %d hot tickers, %d filers",
		len(trades), len(agg.HotTickers), len(agg.TopPoliticians))
	return agg
}

func (s *InsightService) Print(totalTrades int, agg *models.Aggregates) {
	sep := strings.Repeat("═", 64)
	thin := strings.Repeat("─", 64)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 CONGRESSIONAL TRADING INSIGHTS\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total trades extracted : \033[1m%d\033[0m\n", totalTrades)
	fmt.Printf("  Distinct hot tickers   : \033[1m%d\033[0m\n", len(agg.HotTickers))
	fmt.Println()

	fmt.Printf("\033[1;33m  Hot Tickers (by number of filers)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(agg.HotTickers) == 0 {
		fmt.Printf("  No trades found\n")
	}
	for i, t := range agg.HotTickers {
		if i >= 10 {
			break
		}
		fmt.Printf("  \033[1m%2d.\033[0m %-6s %-30s %2d filers  \033[1;32m%d buys\033[0m / \033[1;31m%d sells\033[0m\n",
			i+1, t.Ticker, truncate(t.Company, 28), t.PoliticianCount, t.Buys, t.Sells)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Top Filers (by disclosed maximum)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(agg.TopPoliticians) == 0 {
		fmt.Printf("  No filers found\n")
	}
	for i, p := range agg.TopPoliticians {
		if i >= 10 {
			break
		}
		fmt.Printf("  \033[1m%2d.\033[0m %-28s %-6s %4d trades  up to \033[1;32m$%d\033[0m\n",
			i+1, truncate(p.Name, 26), p.State, p.TotalTrades, p.TotalMax)
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

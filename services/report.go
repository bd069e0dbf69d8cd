package services

import (
	"sort"
	"time"

	"congress-trades/models"
)

const tradeDateLayout = "1/2/2006"

// SortTradesByDate orders trades newest first by transaction date.
// Dates that do not parse sort as the oldest; equal dates keep their order.
func SortTradesByDate(trades []*models.Trade) {
	keys := make(map[*models.Trade]time.Time, len(trades))
	for _, t := range trades {
		keys[t] = parseTradeDate(t.Date)
	}
	sort.SliceStable(trades, func(i, j int) bool {
		return keys[trades[i]].After(keys[trades[j]])
	})
}

func parseTradeDate(s string) time.Time {
	d, err := time.Parse(tradeDateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return d
}

// DefaultYears returns the disclosure years worth scraping at now: the
// current year, plus the previous one during the first quarter while late
// filings for it are still arriving.
func DefaultYears(now time.Time) []int {
	years := []int{now.Year()}
	if now.Month() <= time.March {
		years = append(years, now.Year()-1)
	}
	return years
}

// Report sorts the trades in place, aggregates them and assembles the
// published document.
func (s *InsightService) Report(trades []*models.Trade, years []int, now time.Time) *models.Report {
	SortTradesByDate(trades)
	agg := s.Generate(trades)

	if trades == nil {
		trades = []*models.Trade{}
	}
	return &models.Report{
		LastUpdated:    now.UTC().Format("2006-01-02T15:04:05.000000") + "Z",
		TotalTrades:    len(trades),
		Years:          years,
		Trades:         trades,
		HotTickers:     agg.HotTickers,
		TopPoliticians: agg.TopPoliticians,
	}
}

package services

import (
	"regexp"
	"strings"

	"congress-trades/models"
)

const maxCompanyLen = 100

var (
	// tradeRegexp matches one report row once line breaks are flattened:
	//
	//	Apple Inc. (AAPL) [ST] P 01/16/2026 01/16/2026 $1,001 - $15,000
	//
	// Groups: company, ticker, asset tag, transaction code, transaction
	// date, notification date, amount range.
	tradeRegexp = regexp.MustCompile(`(?i)` +
		`([A-Za-z][A-Za-z\s.,\-'&]+?)\s*` +
		`\(([A-Z]{1,5})\)\s*` +
		`\[(\w+)\]\s*` +
		`(P|S|S \(partial\)|E)\s*` +
		`(\d{1,2}/\d{1,2}/\d{4})\s*` +
		`(\d{1,2}/\d{1,2}/\d{4})\s*` +
		`(\$[\d,]+ ?- ?\$[\d,]+)`)

	leadingJunkRegexp = regexp.MustCompile(`^[^A-Za-z]+`)
	whitespaceRegexp  = regexp.MustCompile(`\s+`)

	// Loose token patterns for layouts the row pattern does not recognise.
	looseTickerRegexp = regexp.MustCompile(`\(([A-Z]{1,5})\)`)
	looseTxRegexp     = regexp.MustCompile(`\b(P|S|S \(partial\))\b`)
	looseAmountRegexp = regexp.MustCompile(`(\$[\d,]+ ?- ?\$[\d,]+)`)
	looseDateRegexp   = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`)
)

// ExtractTrades finds every trade in the text of one periodic transaction
// report. It never fails: text it cannot make sense of yields no trades.
//
// Rows are matched in document order. Only when no row matches at all are
// tickers, transaction codes, amounts and dates collected separately and
// paired by position; a partial row match is returned as is.
func ExtractTrades(text string) []*models.Trade {
	flat := flatten(text)
	if flat == "" {
		return nil
	}

	if trades := extractRows(flat); len(trades) > 0 {
		return trades
	}
	return extractLoose(flat)
}

func extractRows(text string) []*models.Trade {
	matches := tradeRegexp.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	trades := make([]*models.Trade, 0, len(matches))
	for _, m := range matches {
		assetType := models.AssetStock
		if strings.ToUpper(m[3]) == "OP" {
			assetType = models.AssetOption
		}

		trades = append(trades, &models.Trade{
			Ticker:           strings.ToUpper(m[2]),
			Company:          cleanCompany(m[1]),
			AssetType:        assetType,
			Transaction:      ParseTransactionType(m[4]),
			Date:             m[5],
			NotificationDate: m[6],
			Amount:           ParseAmount(m[7]),
		})
	}
	return trades
}

// extractLoose pairs the i-th ticker with the i-th transaction code, the
// i-th amount and dates 2i and 2i+1. It gives up when there are more
// tickers than amounts.
func extractLoose(text string) []*models.Trade {
	tickers := captures(looseTickerRegexp, text)
	amounts := captures(looseAmountRegexp, text)
	if len(tickers) == 0 || len(tickers) > len(amounts) {
		return nil
	}
	txTypes := captures(looseTxRegexp, text)
	dates := captures(looseDateRegexp, text)

	trades := make([]*models.Trade, 0, len(tickers))
	for i, ticker := range tickers {
		t := &models.Trade{
			Ticker:           ticker,
			AssetType:        models.AssetStock,
			Transaction:      models.TxUnknown,
			Date:             at(dates, i*2),
			NotificationDate: at(dates, i*2+1),
		}
		if i < len(txTypes) {
			t.Transaction = ParseTransactionType(txTypes[i])
		}
		if i < len(amounts) {
			t.Amount = ParseAmount(amounts[i])
		}
		trades = append(trades, t)
	}
	return trades
}

func captures(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func at(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return ""
}

func cleanCompany(s string) string {
	s = leadingJunkRegexp.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespaceRegexp.ReplaceAllString(s, " "))
	if r := []rune(s); len(r) > maxCompanyLen {
		s = string(r[:maxCompanyLen])
	}
	return s
}

// flatten turns every line break into a space, since report PDFs wrap
// fields at arbitrary points. Non-breaking spaces become plain spaces too.
func flatten(text string) string {
	return flattener.Replace(text)
}

var flattener = strings.NewReplacer("\r", " ", "\n", " ", "\u00a0", " ")

package services

import (
	"regexp"
	"strconv"
	"strings"

	"congress-trades/models"
)

// amountRangeRegexp captures a "$1001 - $15000" range once thousands
// separators have been removed.
var amountRangeRegexp = regexp.MustCompile(`\$?(\d+)\s*-\s*\$?(\d+)`)

// ParseAmount parses a disclosed dollar range such as "$1,001 - $15,000".
// Raw always keeps the text exactly as given. Text without a range, or with
// bounds that do not fit in an int64, yields a zero Amount.
func ParseAmount(text string) models.Amount {
	zero := models.Amount{Raw: text}

	cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	m := amountRangeRegexp.FindStringSubmatch(cleaned)
	if len(m) < 3 {
		return zero
	}

	lo, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return zero
	}
	hi, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return zero
	}
	return models.Amount{Min: lo, Max: hi, Raw: text}
}

// ParseTransactionType maps a transaction code to its canonical name.
// "P" is a purchase, "S" and "S (partial)" are sales, "E" is an exchange.
// Unrecognised codes come back lower-cased.
func ParseTransactionType(text string) string {
	tx := strings.ToUpper(strings.TrimSpace(text))
	switch {
	case strings.HasPrefix(tx, "P"):
		return models.TxPurchase
	case strings.HasPrefix(tx, "S"):
		return models.TxSale
	case strings.HasPrefix(tx, "E"):
		return models.TxExchange
	}
	return strings.ToLower(tx)
}

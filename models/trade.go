package models

// Amount is a disclosed dollar range. Disclosure law requires ranges, not
// exact figures, so Min and Max are the bucket bounds and Raw is the text
// they were parsed from.
type Amount struct {
	Min int64  `json:"min"`
	Max int64  `json:"max"`
	Raw string `json:"raw"`
}

// Trade is one transaction detected in a periodic transaction report.
// The first block of fields is filled by extraction; the second block is
// attached by the caller that knows which filing the text came from.
type Trade struct {
	Ticker           string `json:"ticker"`
	Company          string `json:"company"`
	AssetType        string `json:"asset_type"`
	Transaction      string `json:"transaction"`
	Date             string `json:"date"`
	NotificationDate string `json:"notification_date"`
	Amount           Amount `json:"amount"`

	Politician    string `json:"politician"`
	StateDistrict string `json:"state_district"`
	FilingDate    string `json:"filing_date"`
	DocID         string `json:"doc_id"`
	Chamber       string `json:"chamber"`
}

// Asset types.
const (
	AssetStock  = "stock"
	AssetOption = "option"
)

// Normalised transaction types.
const (
	TxPurchase = "purchase"
	TxSale     = "sale"
	TxExchange = "exchange"
	TxUnknown  = "unknown"
)

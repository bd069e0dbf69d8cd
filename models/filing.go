package models

// FilingTypePTR marks a periodic transaction report in the bulk index.
// Only these filings carry trades.
const FilingTypePTR = "P"

// Filing is one member entry from a yearly bulk disclosure index.
type Filing struct {
	Name          string
	Prefix        string
	StateDistrict string
	FilingDate    string
	DocID         string
	FilingType    string
	Year          int
}

package house

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"congress-trades/models"
)

// ErrNoIndexXML is returned when a bulk archive lacks its yearly XML index.
var ErrNoIndexXML = errors.New("house: index xml missing from archive")

type indexDoc struct {
	Members []indexMember `xml:"Member"`
}

type indexMember struct {
	Prefix     string `xml:"Prefix"`
	Last       string `xml:"Last"`
	First      string `xml:"First"`
	FilingType string `xml:"FilingType"`
	StateDst   string `xml:"StateDst"`
	FilingDate string `xml:"FilingDate"`
	DocID      string `xml:"DocID"`
}

// ParseIndex reads the {year}FD.xml member of a yearly bulk archive and
// returns its periodic transaction reports. Other filing types and entries
// without a document ID are skipped.
func ParseIndex(archive []byte, year int) ([]*models.Filing, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("house: open archive: %w", err)
	}

	name := fmt.Sprintf("%dFD.xml", year)
	var member *zip.File
	for _, f := range zr.File {
		if f.Name == name {
			member = f
			break
		}
	}
	if member == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoIndexXML, name)
	}

	rc, err := member.Open()
	if err != nil {
		return nil, fmt.Errorf("house: open %s: %w", name, err)
	}
	defer rc.Close()

	var doc indexDoc
	if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
		return nil, fmt.Errorf("house: decode %s: %w", name, err)
	}

	filings := make([]*models.Filing, 0, len(doc.Members))
	for _, m := range doc.Members {
		if m.FilingType != models.FilingTypePTR || m.DocID == "" {
			continue
		}
		filings = append(filings, &models.Filing{
			Name:          strings.TrimSpace(m.First + " " + m.Last),
			Prefix:        m.Prefix,
			StateDistrict: m.StateDst,
			FilingDate:    m.FilingDate,
			DocID:         m.DocID,
			FilingType:    m.FilingType,
			Year:          year,
		})
	}
	return filings, nil
}

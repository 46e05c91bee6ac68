package models

import "time"

// CompanyTicker maps an exchange ticker to its SEC filer identifier.
type CompanyTicker struct {
	CIK    string `json:"cik"` // zero-padded to 10 digits
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// Filing is one entry of a filer's recent submissions.
type Filing struct {
	AccessionNumber string    `json:"accession_number"`
	FilingDate      time.Time `json:"filing_date"`
	ReportDate      string    `json:"report_date,omitempty"`
	Form            string    `json:"form"`
	PrimaryDocument string    `json:"primary_document,omitempty"`
	URL             string    `json:"url,omitempty"`
}

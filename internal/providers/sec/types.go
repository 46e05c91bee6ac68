package sec

import "encoding/json"

// tickerEntry is a row of company_tickers.json, which is an object keyed
// by row number: {"0": {"cik_str": 320193, "ticker": "AAPL", ...}, ...}.
type tickerEntry struct {
	CIK    json.Number `json:"cik_str"`
	Ticker string      `json:"ticker"`
	Title  string      `json:"title"`
}

// submissionsResponse is the response from the company submissions endpoint.
type submissionsResponse struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent filingSet `json:"recent"`
	} `json:"filings"`
}

// filingSet holds parallel arrays, one entry per filing.
type filingSet struct {
	AccessionNumber []string `json:"accessionNumber"`
	FilingDate      []string `json:"filingDate"`
	ReportDate      []string `json:"reportDate"`
	Form            []string `json:"form"`
	PrimaryDocument []string `json:"primaryDocument"`
}

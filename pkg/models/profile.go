package models

import (
	"time"

	"github.com/seenimoa/finflux/pkg/series"
)

// Profile describes a company.
type Profile struct {
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	Industry    string    `json:"industry"`
	Sector      string    `json:"sector"`
	Website     string    `json:"website"`
	Description string    `json:"description"`
	Employees   int64     `json:"employees,omitempty"`
	Officers    []Officer `json:"officers"`

	Currency          string     `json:"currency,omitempty"`
	FinancialCurrency string     `json:"financial_currency,omitempty"` // currency of reported statements
	SharesOutstanding series.Num `json:"shares_outstanding"`
}

// Officer is a named company executive.
type Officer struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Calendar lists a company's upcoming corporate events.
type Calendar struct {
	EarningsDates  []time.Time `json:"earnings_dates"`
	ExDividendDate time.Time   `json:"ex_dividend_date"`
	DividendDate   time.Time   `json:"dividend_date"`
}

// NewsItem is one headline about a symbol.
type NewsItem struct {
	Title     string    `json:"title"`
	Published time.Time `json:"published"`
	Provider  string    `json:"provider"`
	Snippet   string    `json:"snippet"`
	URL       string    `json:"url"`
}

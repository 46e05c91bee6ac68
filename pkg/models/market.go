// Package models defines the typed results returned by upstream providers.
package models

import (
	"time"

	"github.com/seenimoa/finflux/pkg/series"
)

// Bar is one OHLCV observation. Missing upstream values are NA.
type Bar struct {
	Date     time.Time  `json:"date"`
	Open     series.Num `json:"open"`
	High     series.Num `json:"high"`
	Low      series.Num `json:"low"`
	Close    series.Num `json:"close"`
	AdjClose series.Num `json:"adj_close"`
	Volume   series.Num `json:"volume"`
}

// Price fields of a Bar.
const (
	FieldOpen     = "open"
	FieldHigh     = "high"
	FieldLow      = "low"
	FieldClose    = "close"
	FieldAdjClose = "adjclose"
	FieldVolume   = "volume"
)

// Chart is a price history with its instrument metadata and corporate events.
type Chart struct {
	Symbol         string        `json:"symbol"`
	Currency       string        `json:"currency"`
	InstrumentType string        `json:"instrument_type"` // EQUITY, CURRENCY, INDEX, ...
	ExchangeName   string        `json:"exchange_name,omitempty"`
	Timezone       string        `json:"timezone,omitempty"`
	Bars           []Bar         `json:"bars"`
	Dividends      series.Series `json:"dividends"`
	Splits         series.Series `json:"splits"`
}

// Series extracts one bar field as a date-indexed series named name.
func (c *Chart) Series(field, name string) series.Series {
	s := series.Series{Name: name, Points: make([]series.Point, len(c.Bars))}
	for i, b := range c.Bars {
		var v series.Num
		switch field {
		case FieldOpen:
			v = b.Open
		case FieldHigh:
			v = b.High
		case FieldLow:
			v = b.Low
		case FieldClose:
			v = b.Close
		case FieldAdjClose:
			v = b.AdjClose
		case FieldVolume:
			v = b.Volume
		}
		s.Points[i] = series.Point{Date: b.Date, Value: v}
	}
	return s
}

// QuoteType is the instrument classification of a symbol.
type QuoteType struct {
	Symbol    string `json:"symbol"`
	QuoteType string `json:"quote_type"` // EQUITY, CURRENCY, ETF, ...
	ShortName string `json:"short_name,omitempty"`
	LongName  string `json:"long_name,omitempty"`
	Exchange  string `json:"exchange,omitempty"`
}

// RealtimePrice is the latest traded price of a symbol.
type RealtimePrice struct {
	Symbol   string     `json:"symbol"`
	Price    series.Num `json:"price"`
	Currency string     `json:"currency,omitempty"`
}

// RealtimeQuote is a latest-session quote.
type RealtimeQuote struct {
	Symbol        string     `json:"symbol"`
	Name          string     `json:"name"`
	Exchange      string     `json:"exchange"`
	Currency      string     `json:"currency"`
	Datetime      string     `json:"datetime"`
	Open          series.Num `json:"open"`
	High          series.Num `json:"high"`
	Low           series.Num `json:"low"`
	Close         series.Num `json:"close"`
	Volume        series.Num `json:"volume"`
	PreviousClose series.Num `json:"previous_close"`
	Change        series.Num `json:"change"`
	PercentChange series.Num `json:"percent_change"`
}

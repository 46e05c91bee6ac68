package yfinance

// --- Yahoo Finance API response types ---

// yfChartResponse wraps the v8 chart API response.
type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Events     yfEvents     `json:"events"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol               string `json:"symbol"`
	Currency             string `json:"currency"`
	InstrumentType       string `json:"instrumentType"`
	ExchangeName         string `json:"exchangeName"`
	ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	GMTOffset            int64  `json:"gmtoffset"`
}

type yfEvents struct {
	Dividends map[string]yfDividend `json:"dividends"`
	Splits    map[string]yfSplit    `json:"splits"`
}

type yfDividend struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type yfSplit struct {
	Date        int64   `json:"date"`
	Numerator   float64 `json:"numerator"`
	Denominator float64 `json:"denominator"`
	SplitRatio  string  `json:"splitRatio"`
}

type yfIndicators struct {
	Quote    []yfOHLCV    `json:"quote"`
	AdjClose []yfAdjClose `json:"adjclose"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type yfAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

// yfQuoteTypeResponse wraps the v1 quoteType API response.
type yfQuoteTypeResponse struct {
	QuoteType struct {
		Result []yfQuoteTypeResult `json:"result"`
		Error  *yfError            `json:"error"`
	} `json:"quoteType"`
}

type yfQuoteTypeResult struct {
	Symbol    string `json:"symbol"`
	QuoteType string `json:"quoteType"`
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
	Exchange  string `json:"exchange"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

package models

import (
	"sort"
	"time"

	"github.com/seenimoa/finflux/pkg/series"
)

// Fundamentals holds reported statement line items. Each item is a series
// dated by fiscal period end, keyed by its upstream name without the
// "annual"/"quarterly" prefix (e.g. "TotalRevenue").
type Fundamentals struct {
	Symbol   string                   `json:"symbol"`
	Interval string                   `json:"interval"` // annual or quarterly
	Currency string                   `json:"currency,omitempty"`
	Items    map[string]series.Series `json:"items"`
}

// Item returns the named line item, or an empty series.
func (f *Fundamentals) Item(name string) series.Series {
	if s, ok := f.Items[name]; ok {
		return s
	}
	return series.Series{Name: name}
}

// Periods returns the sorted, de-duplicated period end dates across items.
func (f *Fundamentals) Periods() []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, s := range f.Items {
		for _, p := range s.Points {
			if !seen[p.Date] {
				seen[p.Date] = true
				out = append(out, p.Date)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Earnings is a company's reported earnings per share history.
type Earnings struct {
	Symbol    string         `json:"symbol"`
	Annual    []AnnualEPS    `json:"annual"`
	Quarterly []QuarterlyEPS `json:"quarterly"`
}

// AnnualEPS is one fiscal year of reported EPS.
type AnnualEPS struct {
	FiscalDateEnding time.Time  `json:"fiscal_date_ending"`
	ReportedEPS      series.Num `json:"reported_eps"`
}

// QuarterlyEPS is one fiscal quarter of reported and estimated EPS.
type QuarterlyEPS struct {
	FiscalDateEnding   time.Time  `json:"fiscal_date_ending"`
	ReportedDate       time.Time  `json:"reported_date"`
	ReportedEPS        series.Num `json:"reported_eps"`
	EstimatedEPS       series.Num `json:"estimated_eps"`
	Surprise           series.Num `json:"surprise"`
	SurprisePercentage series.Num `json:"surprise_percentage"`
}

// Estimates holds analyst consensus figures.
type Estimates struct {
	Symbol        string          `json:"symbol"`
	Trend         []EstimateTrend `json:"trend"`
	TargetCurrent series.Num      `json:"target_current"`
	TargetHigh    series.Num      `json:"target_high"`
	TargetLow     series.Num      `json:"target_low"`
	TargetMean    series.Num      `json:"target_mean"`
	TargetMedian  series.Num      `json:"target_median"`
	Analysts      series.Num      `json:"analysts"`
	Rating        string          `json:"rating"`
}

// EstimateTrend is the consensus for one forward period ("0q", "+1q", "0y", "+1y").
type EstimateTrend struct {
	Period          string     `json:"period"`
	EndDate         string     `json:"end_date"`
	Growth          series.Num `json:"growth"`
	EarningsAvg     series.Num `json:"earnings_avg"`
	EarningsLow     series.Num `json:"earnings_low"`
	EarningsHigh    series.Num `json:"earnings_high"`
	EarningsAnalyst series.Num `json:"earnings_analysts"`
	EarningsYearAgo series.Num `json:"earnings_year_ago"`
	EarningsGrowth  series.Num `json:"earnings_growth"`
	RevenueAvg      series.Num `json:"revenue_avg"`
	RevenueLow      series.Num `json:"revenue_low"`
	RevenueHigh     series.Num `json:"revenue_high"`
	RevenueAnalyst  series.Num `json:"revenue_analysts"`
	RevenueYearAgo  series.Num `json:"revenue_year_ago"`
	RevenueGrowth   series.Num `json:"revenue_growth"`
	IndexGrowth     series.Num `json:"index_growth"` // growth estimate of the benchmark index
}

package series

import (
	"fmt"
	"time"
)

// Frequency is the native observation frequency of a series.
type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
)

// Symbolic period tokens.
const (
	Period1M  = "1mo"
	Period6M  = "6mo"
	Period1Y  = "1y"
	Period2Y  = "2y"
	Period5Y  = "5y"
	Period10Y = "10y"
	PeriodYTD = "ytd"
	PeriodMax = "max"
)

// Periods lists every token the resolver understands, shortest first.
var Periods = []string{Period1M, Period6M, Period1Y, Period2Y, Period5Y, Period10Y, PeriodYTD, PeriodMax}

// MaxStart is the earliest date requested upstream for the "max" period.
var MaxStart = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// offsets holds the backward slice length per period and frequency. Daily
// counts trading sessions (21 per month, 252 per year); the other
// frequencies count one observation per period plus the anchor.
var offsets = map[Frequency]map[string]int{
	Daily:     {Period1M: 21, Period6M: 126, Period1Y: 252, Period2Y: 504, Period5Y: 1260, Period10Y: 2520},
	Weekly:    {Period1M: 5, Period6M: 27, Period1Y: 53, Period2Y: 105, Period5Y: 261, Period10Y: 521},
	Biweekly:  {Period1M: 3, Period6M: 14, Period1Y: 27, Period2Y: 53, Period5Y: 131, Period10Y: 261},
	Monthly:   {Period1M: 2, Period6M: 7, Period1Y: 13, Period2Y: 25, Period5Y: 61, Period10Y: 121},
	Quarterly: {Period1M: 1, Period6M: 3, Period1Y: 5, Period2Y: 9, Period5Y: 21, Period10Y: 41},
}

// WindowKind tells how a resolved window trims a series.
type WindowKind int

const (
	WindowOffset WindowKind = iota
	WindowYTD
	WindowAll
)

// Window is a resolved period.
type Window struct {
	Kind   WindowKind
	Offset int
}

// Resolve maps a period token and frequency to a window.
func Resolve(period string, freq Frequency) (Window, error) {
	switch period {
	case PeriodYTD:
		return Window{Kind: WindowYTD}, nil
	case PeriodMax:
		return Window{Kind: WindowAll}, nil
	}
	table, ok := offsets[freq]
	if !ok {
		return Window{}, fmt.Errorf("unknown frequency %q", freq)
	}
	n, ok := table[period]
	if !ok {
		return Window{}, fmt.Errorf("unknown period %q", period)
	}
	return Window{Kind: WindowOffset, Offset: n}, nil
}

// Offset returns the backward slice length for period at freq, or 0 when
// the period is not offset-based.
func Offset(period string, freq Frequency) int {
	return offsets[freq][period]
}

// Apply trims s according to w. now anchors the year-to-date filter.
func (w Window) Apply(s Series, now time.Time) Series {
	switch w.Kind {
	case WindowYTD:
		return s.Filter(func(p Point) bool { return p.Date.Year() == now.Year() })
	case WindowAll:
		return s
	}
	return s.Tail(w.Offset)
}

// ApplyPeriod resolves period for freq and applies it to s.
func ApplyPeriod(s Series, period string, freq Frequency, now time.Time) (Series, error) {
	w, err := Resolve(period, freq)
	if err != nil {
		return Series{}, err
	}
	return w.Apply(s, now), nil
}

// StartDate returns the calendar date a period reaches back to from now.
// "ytd" is January 1st of the current year and "max" is MaxStart.
func StartDate(period string, now time.Time) (time.Time, error) {
	switch period {
	case Period1M:
		return now.AddDate(0, -1, 0), nil
	case Period6M:
		return now.AddDate(0, -6, 0), nil
	case Period1Y:
		return now.AddDate(-1, 0, 0), nil
	case Period2Y:
		return now.AddDate(-2, 0, 0), nil
	case Period5Y:
		return now.AddDate(-5, 0, 0), nil
	case Period10Y:
		return now.AddDate(-10, 0, 0), nil
	case PeriodYTD:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	case PeriodMax:
		return MaxStart, nil
	}
	return time.Time{}, fmt.Errorf("unknown period %q", period)
}

// Lag returns the number of observations in one year at freq.
func Lag(freq Frequency) int {
	switch freq {
	case Daily:
		return 252
	case Weekly:
		return 52
	case Biweekly:
		return 26
	case Monthly:
		return 12
	case Quarterly:
		return 4
	}
	return 1
}

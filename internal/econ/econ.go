// Package econ implements international macroeconomic series from the IMF
// International Financial Statistics, plus the US PCE price index from FRED.
package econ

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

// Source is the upstream data econ reads.
type Source interface {
	IFS(ctx context.Context, country, indicator, frequency string, start time.Time) (series.Series, error)
	FredSeries(ctx context.Context, id, frequency string, r datasource.Range) (series.Series, error)
}

// Service runs econ operations against a Source.
type Service struct {
	src Source
	now func() time.Time
}

// New creates a Service.
func New(src Source) *Service {
	return &Service{src: src, now: time.Now}
}

// Countries are the ISO codes with IFS national accounts and price indexes.
var Countries = []string{
	"AE", "AR", "AT", "AU", "BD", "BE", "BR", "CA", "CH", "CL", "CN", "CO", "DE", "DK", "EG",
	"ES", "FI", "FR", "GB", "GR", "HK", "HU", "ID", "IL", "IN", "IR", "IS", "IT", "JP", "KR",
	"KZ", "LU", "MX", "MY", "NG", "NL", "NO", "NZ", "PE", "PH", "PK", "PL", "QA", "RO", "RU",
	"SA", "SE", "SG", "SI", "SK", "TH", "TR", "TW", "UA", "US", "VN", "ZA",
}

// Periods are the windows accepted by every econ series.
var Periods = []string{
	series.Period1Y, series.Period2Y, series.Period5Y, series.Period10Y, series.PeriodYTD, series.PeriodMax,
}

var displays = []string{display.Table, display.JSON, display.Line, display.Bar}

// check uppercases the country and validates it with the window and
// display shared by the econ operations.
func check(country *string, period, mode string) error {
	values := map[string]string{"period": period, "display": mode}
	choices := provider.Choices{"period": Periods, "display": displays}
	if country != nil {
		*country = strings.ToUpper(*country)
		values["country"] = *country
		choices["country"] = Countries
	}
	return choices.Check(values)
}

func checkMonth(base string) error {
	if _, err := time.Parse("2006-01", base); err != nil {
		return &provider.InvalidParameterError{Param: "base", Value: base, Valid: []string{"a YYYY-MM month"}}
	}
	return nil
}

func checkQuarter(base string) error {
	var year, q int
	if _, err := fmt.Sscanf(base, "%d-Q%d", &year, &q); err != nil || q < 1 || q > 4 {
		return &provider.InvalidParameterError{Param: "base", Value: base, Valid: []string{"a YYYY-Qn quarter"}}
	}
	return nil
}

// window trims ys to period and wraps it in a Result.
func (s *Service) window(ys series.Series, period string, freq series.Frequency) (display.Result, error) {
	out, err := series.ApplyPeriod(ys, period, freq, s.now())
	if err != nil {
		return display.Result{}, err
	}
	return display.Result{Title: ys.Name, Series: []series.Series{out}}, nil
}

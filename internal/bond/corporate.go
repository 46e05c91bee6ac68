package bond

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

// hqmSeries are the FRED ids of the US high quality market corporate bond
// spot rates.
var hqmSeries = map[string]string{
	"6mo": "HQMCB6MT",
	"1y":  "HQMCB1YR",
	"2y":  "HQMCB2YR",
	"3y":  "HQMCB3YR",
	"5y":  "HQMCB5YR",
	"7y":  "HQMCB7YR",
	"10y": "HQMCB10YR",
	"20y": "HQMCB20YR",
	"30y": "HQMCB30YR",
}

// CorporateOptions selects maturities and a look-back period of the HQM
// corporate yield curve. No maturities means 10y.
type CorporateOptions struct {
	Maturities []string `json:"maturities"`
	Period     string   `json:"period"  default:"5y"`
	Display    string   `json:"display" default:"table"`
}

// monthStart resolves a period against the first day of the current month,
// since HQM rates are published monthly.
func (s *Service) monthStart(period string) (time.Time, error) {
	now := s.now()
	return series.StartDate(period, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))
}

// USHQMCorporate returns the monthly US high quality market corporate bond
// spot rates for each requested maturity, in percent.
func (s *Service) USHQMCorporate(ctx context.Context, opts CorporateOptions) (display.Result, error) {
	if err := provider.Prepare(&opts); err != nil {
		return display.Result{}, err
	}
	if len(opts.Maturities) == 0 {
		opts.Maturities = []string{"10y"}
	}
	if err := provider.OneOf("period", opts.Period, Periods...); err != nil {
		return display.Result{}, err
	}
	if err := provider.OneOf("display", opts.Display, display.Table, display.JSON, display.Line, display.Bar); err != nil {
		return display.Result{}, err
	}
	for _, m := range opts.Maturities {
		if err := provider.OneOf("maturity", m, Maturities...); err != nil {
			return display.Result{}, err
		}
	}
	start, err := s.monthStart(opts.Period)
	if err != nil {
		return display.Result{}, err
	}

	out := make([]series.Series, len(opts.Maturities))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range opts.Maturities {
		g.Go(func() error {
			ys, err := s.src.FredSeries(gctx, hqmSeries[m], "", datasource.Range{Start: start})
			if err != nil {
				return err
			}
			out[i] = ys.Between(start, time.Time{}).Rename("US HQM " + strings.ToUpper(m))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return display.Result{}, err
	}
	return display.Result{Title: "US HQM corporate bond yield", Series: out}, nil
}

// longTermCountries are the issuers of the OECD long-term government
// bond yield series FRED republishes.
var longTermCountries = map[string]string{
	"KR": "South Korea",
	"AT": "Austria",
	"US": "United States",
	"CL": "Chile",
	"CZ": "Czech Republic",
	"GR": "Greece",
	"FI": "Finland",
	"ZA": "South Africa",
	"NL": "Netherlands",
	"SK": "Slovak Republic",
	"NZ": "New Zealand",
	"LU": "Luxembourg",
	"PL": "Poland",
	"SI": "Slovenia",
	"CH": "Switzerland",
	"DE": "Germany",
	"CA": "Canada",
	"JP": "Japan",
	"DK": "Denmark",
	"BE": "Belgium",
	"FR": "France",
	"NO": "Norway",
	"PT": "Portugal",
	"IT": "Italy",
	"GB": "United Kingdom",
	"ES": "Spain",
	"IE": "Ireland",
	"AU": "Australia",
	"SE": "Sweden",
	"MX": "Mexico",
	"HU": "Hungary",
	"IS": "Iceland",
	"RU": "Russia",
}

// LongTermSeriesID is the FRED id of a country's monthly 10 year yield.
func LongTermSeriesID(code string) string { return "IRLTLT01" + code + "M156N" }

// LongTermYield is the monthly 10 year government yield of one country.
type LongTermYield struct {
	Country   string                `json:"country"`
	StartDate string                `json:"start date"`
	EndDate   string                `json:"end date"`
	Count     int                   `json:"data count"`
	Data      map[string]series.Num `json:"data"`
}

// NonUS10Y returns the monthly long-term (10 year) government bond yield
// of country, in percent.
func (s *Service) NonUS10Y(ctx context.Context, country, period, mode string) (display.Result, error) {
	if period == "" {
		period = series.PeriodMax
	}
	code := strings.ToUpper(country)
	if err := provider.OneOf("country", code, provider.Keys(longTermCountries)...); err != nil {
		return display.Result{}, err
	}
	if err := provider.OneOf("period", period, Periods...); err != nil {
		return display.Result{}, err
	}
	if err := provider.OneOf("display", mode, display.JSON, display.Table, display.Line); err != nil {
		return display.Result{}, err
	}
	start, err := s.monthStart(period)
	if err != nil {
		return display.Result{}, err
	}
	ys, err := s.src.FredSeries(ctx, LongTermSeriesID(code), "", datasource.Range{Start: start})
	if err != nil {
		return display.Result{}, err
	}
	name := longTermCountries[code]
	ys = ys.Between(start, time.Time{}).Rename(name + " Monthly 10Y Bond Yield")

	v := LongTermYield{Country: name, Count: ys.Len(), Data: make(map[string]series.Num, ys.Len())}
	for _, p := range ys.Points {
		v.Data[p.Date.Format(series.DateLayout)] = p.Value
	}
	if first, ok := ys.First(); ok {
		v.StartDate = first.Date.Format(series.DateLayout)
	}
	if last, ok := ys.Last(); ok {
		v.EndDate = last.Date.Format(series.DateLayout)
	}
	return display.Result{Title: ys.Name, Value: v, Series: []series.Series{ys}}, nil
}

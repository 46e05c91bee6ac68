package indicator

import (
	"context"
	"time"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

// blsSeries is a monthly BLS series and the first year it was published.
type blsSeries struct {
	id, name string
	since    int
}

var priceIndexes = map[string]blsSeries{
	"c":  {"CUUR0000SA0", "CPI (index)", 1913},
	"p":  {"WPUFD4", "PPI (index)", 2009},
	"cc": {"CUUR0000SA0L1E", "Core CPI (index)", 1957},
	"cp": {"WPUFD49104", "Core PPI (index)", 2010},
}

var unemploymentRates = map[string]blsSeries{
	"U-3":        {"LNS14000000", "UNRATE [U-3]", 1948},
	"U-6":        {"LNS13327709", "UNRATE [U-6]", 1994},
	"g=male":     {"LNS14000025", "UNRATE [Male]", 1948},
	"g=female":   {"LNS14000026", "UNRATE [Female]", 1948},
	"r=white":    {"LNS14000003", "UNRATE [White]", 1954},
	"r=black":    {"LNS14000006", "UNRATE [Black]", 1972},
	"r=asian":    {"LNS14032183", "UNRATE [Asian]", 2003},
	"r=hispanic": {"LNS14000009", "UNRATE [Hispanic]", 1973},
	"e<hs":       {"LNS14027659", "UNRATE [<High School]", 1992},
	"e=hs":       {"LNS14027660", "UNRATE [=High School]", 1992},
	"e<bach":     {"LNS14027689", "UNRATE [<Bachelor]", 1992},
	"e>=bach":    {"LNS14027662", "UNRATE [>=Bachelor]", 1992},
}

var laborSeries = map[string]blsSeries{
	"participation": {"LNS11300000", "Labor Force Participation Rate, Monthly", 1948},
	"payroll":       {"CES0000000001", "Nonfarm Payrolls, MoM Change", 1939},
	"quits":         {"JTS000000000000000QUR", "Quits Rate, Monthly", 2001},
	"openings":      {"JTS000000000000000JOR", "Job Openings Rate, Monthly", 2001},
	"earnings":      {"CES0500000003", "Average Hourly Earnings, Monthly", 2006},
}

// Weekly initial jobless claims are published on FRED.
const claimsID = "ICSA"

// bls fetches a BLS series. Only the max period reaches back to the first
// published year; shorter periods use the recent default range.
func (s *Service) bls(ctx context.Context, b blsSeries, period string) (series.Series, error) {
	var start time.Time
	if period == series.PeriodMax {
		start = time.Date(b.since, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	ys, err := s.src.BLSSeries(ctx, b.id, start)
	if err != nil {
		return series.Series{}, err
	}
	return ys.Sort().Rename(b.name), nil
}

// PriceIndex returns a monthly consumer (c) or producer (p) price index,
// or its core variant (cc, cp).
func (s *Service) PriceIndex(ctx context.Context, opts Options) (display.Result, error) {
	if err := prepare(&opts, "c", FigureYoY, provider.Keys(priceIndexes), figures); err != nil {
		return display.Result{}, err
	}
	ys, err := s.bls(ctx, priceIndexes[opts.Type], opts.Period)
	if err != nil {
		return display.Result{}, err
	}
	ys = figure(ys, opts.Figure, series.Monthly)
	return s.window(ys.Name, ys, opts.Period, series.Monthly)
}

// Unemployment returns a monthly unemployment rate in percent: U-3, U-6,
// or U-3 by sex (g=), race (r=) or education (e).
func (s *Service) Unemployment(ctx context.Context, opts Options) (display.Result, error) {
	if err := prepare(&opts, "U-3", "", provider.Keys(unemploymentRates), nil); err != nil {
		return display.Result{}, err
	}
	ys, err := s.bls(ctx, unemploymentRates[opts.Type], opts.Period)
	if err != nil {
		return display.Result{}, err
	}
	return s.window(ys.Name, ys, opts.Period, series.Monthly)
}

// Labor returns a labor market series: participation rate, the monthly
// change in nonfarm payrolls (persons), quits and openings rates, average
// hourly earnings or weekly initial claims.
func (s *Service) Labor(ctx context.Context, opts Options) (display.Result, error) {
	types := append(provider.Keys(laborSeries), "claims")
	if err := prepare(&opts, "participation", "", types, nil); err != nil {
		return display.Result{}, err
	}
	if opts.Type == "claims" {
		ys, err := s.src.FredSeries(ctx, claimsID, "", datasource.Range{})
		if err != nil {
			return display.Result{}, err
		}
		ys = ys.Sort().Rename("Initial Claims, Weekly")
		return s.window(ys.Name, ys, opts.Period, series.Weekly)
	}

	ys, err := s.bls(ctx, laborSeries[opts.Type], opts.Period)
	if err != nil {
		return display.Result{}, err
	}
	if opts.Type == "payroll" {
		ys = payrollChange(ys)
	}
	return s.window(ys.Name, ys, opts.Period, series.Monthly)
}

// payrollChange turns payroll levels in thousands into the monthly change
// in persons. The first month has no change and is dropped.
func payrollChange(ys series.Series) series.Series {
	prev := series.Shift(ys, 1)
	out := series.Combine(ys.Name, ys, prev, func(cur, before series.Num) series.Num {
		return cur.Sub(before).MulF(1000).Round(0)
	})
	return out.DropLeading(1)
}

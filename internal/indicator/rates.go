package indicator

import (
	"context"
	"time"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

// fredSeries is a FRED series id with its display name and frequency.
type fredSeries struct {
	id, name string
	freq     series.Frequency
}

func (s *Service) fred(ctx context.Context, f fredSeries) (series.Series, error) {
	ys, err := s.src.FredSeries(ctx, f.id, "", datasource.Range{})
	if err != nil {
		return series.Series{}, err
	}
	return ys.Sort().Rename(f.name), nil
}

var sentimentSeries = map[string]fredSeries{
	"c_mcsi": {"UMCSENT", "Michigan Consumer Sentiment Index", series.Monthly},
	"c_mcie": {"MICH", "Michigan Consumer Inflation Expectations", series.Monthly},
	"c_oecd": {"USACSCICP02STSAM", "Composite Consumer Confidence for US", series.Monthly},
	"b_oecd": {"BSCICP02USM460S", "Business Tendency Surveys Indicator for US Manufacturing", series.Monthly},
}

// Sentiment returns a monthly survey: Michigan consumer sentiment
// (c_mcsi), Michigan inflation expectations (c_mcie) or the OECD consumer
// (c_oecd) and business (b_oecd) confidence indicators.
func (s *Service) Sentiment(ctx context.Context, opts Options) (display.Result, error) {
	if err := prepare(&opts, "c_mcsi", "", provider.Keys(sentimentSeries), nil); err != nil {
		return display.Result{}, err
	}
	f := sentimentSeries[opts.Type]
	ys, err := s.fred(ctx, f)
	if err != nil {
		return display.Result{}, err
	}
	return s.window(ys.Name, ys, opts.Period, f.freq)
}

var fedFunds = map[string]fredSeries{
	"1d":  {"RIFSPFFNB", "Federal Funds Rate (DAILY)", series.Daily},
	"1wk": {"FF", "Federal Funds Rate (WEEKLY)", series.Weekly},
	"2wk": {"RIFSPFFNBWAW", "Federal Funds Rate (BIWEEKLY)", series.Biweekly},
	"1mo": {"FEDFUNDS", "Federal Funds Rate (MONTHLY)", series.Monthly},
}

// FedRateOptions select the sampling interval, window and display of the
// effective federal funds rate.
type FedRateOptions struct {
	Interval string `json:"interval" default:"1d"`
	Period   string `json:"period"   default:"5y"`
	Display  string `json:"display"  default:"table"`
}

// FedRate returns the effective federal funds rate in percent. Daily
// windows are calendar based since the rate is not published on bank
// holidays.
func (s *Service) FedRate(ctx context.Context, opts FedRateOptions) (display.Result, error) {
	if err := provider.Prepare(&opts); err != nil {
		return display.Result{}, err
	}
	if err := (provider.Choices{
		"interval": provider.Keys(fedFunds),
		"period":   Periods,
		"display":  displays,
	}).Check(map[string]string{"interval": opts.Interval, "period": opts.Period, "display": opts.Display}); err != nil {
		return display.Result{}, err
	}
	f := fedFunds[opts.Interval]
	ys, err := s.fred(ctx, f)
	if err != nil {
		return display.Result{}, err
	}
	if f.freq == series.Daily && opts.Period != series.PeriodYTD && opts.Period != series.PeriodMax {
		start, err := series.StartDate(opts.Period, s.now())
		if err != nil {
			return display.Result{}, err
		}
		return display.Result{Title: ys.Name, Series: []series.Series{ys.Between(start, time.Time{})}}, nil
	}
	return s.window(ys.Name, ys, opts.Period, f.freq)
}

var housingSeries = map[string]fredSeries{
	"starts":   {"HOUST", "Housing Starts SAAR (thousands)", series.Monthly},
	"nsales":   {"HSN1F", "New Housing Sales SAAR (thousands)", series.Monthly},
	"esales":   {"EXHOSLUSM495S", "Existing Housing Sales SAAR (thousands)", series.Monthly},
	"30y_rate": {"MORTGAGE30US", "30 Year Mortgage Rate", series.Weekly},
	"15y_rate": {"MORTGAGE15US", "15 Year Mortgage Rate", series.Weekly},
}

// Housing returns housing starts, new or existing home sales, or the 30
// and 15 year fixed mortgage rates. Existing home sales only reach back
// one year, so they have no year over year figure.
func (s *Service) Housing(ctx context.Context, opts Options) (display.Result, error) {
	if err := prepare(&opts, "starts", FigureRaw, provider.Keys(housingSeries), figures); err != nil {
		return display.Result{}, err
	}
	if opts.Type == "esales" && opts.Figure == FigureYoY {
		return display.Result{}, &provider.InvalidParameterError{
			Param: "figure", Value: opts.Figure, Valid: []string{FigureRaw, FigurePoP},
		}
	}
	f := housingSeries[opts.Type]
	ys, err := s.fred(ctx, f)
	if err != nil {
		return display.Result{}, err
	}
	if opts.Type == "esales" {
		// published in units; the first observation is a partial month
		ys = ys.DropLeading(1).Scale(0.001).Round(0)
	}
	ys = figure(ys, opts.Figure, f.freq)
	return s.window(ys.Name, ys, opts.Period, f.freq)
}

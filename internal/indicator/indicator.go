// Package indicator implements US macroeconomic indicators: output and
// prices from BEA and BLS, labor market and sentiment surveys, policy and
// mortgage rates from FRED, and the VIX and dollar index from Yahoo.
package indicator

import (
	"context"
	"strings"
	"time"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// Source is the upstream data the indicators read.
type Source interface {
	NIPA(ctx context.Context, table, code, frequency string) (series.Series, error)
	BLSSeries(ctx context.Context, id string, start time.Time) (series.Series, error)
	FredSeries(ctx context.Context, id, frequency string, r datasource.Range) (series.Series, error)
	Chart(ctx context.Context, symbol string, r datasource.Range) (*models.Chart, error)
}

// Service runs indicator operations against a Source.
type Service struct {
	src Source
	now func() time.Time
}

// New creates a Service.
func New(src Source) *Service {
	return &Service{src: src, now: time.Now}
}

// Figures an indicator can be reported as.
const (
	FigureRaw = "raw"
	FigureYoY = "yoy"
	FigurePoP = "pop" // period over period
)

// Options select the variant, window, figure and display of an indicator.
// Type and Figure default per indicator.
type Options struct {
	Type    string `json:"type"`
	Period  string `json:"period"  default:"5y"`
	Figure  string `json:"figure"`
	Display string `json:"display" default:"table"`
}

// Periods are the windows accepted by the macro indicators.
var Periods = []string{
	series.Period1Y, series.Period2Y, series.Period5Y, series.Period10Y, series.PeriodYTD, series.PeriodMax,
}

var displays = []string{display.Table, display.JSON, display.Line, display.Bar}

// prepare applies defaults and checks the options shared by every
// indicator. types is the allow-list of Type; figures, when non-nil, the
// allow-list of Figure.
func prepare(opts *Options, defType, defFigure string, types, figures []string) error {
	if err := provider.Prepare(opts); err != nil {
		return err
	}
	if opts.Type == "" {
		opts.Type = defType
	}
	if opts.Figure == "" {
		opts.Figure = defFigure
	}
	values := map[string]string{
		"type":    opts.Type,
		"period":  opts.Period,
		"display": opts.Display,
	}
	choices := provider.Choices{"type": types, "period": Periods, "display": displays}
	if figures != nil {
		values["figure"] = opts.Figure
		choices["figure"] = figures
	}
	return choices.Check(values)
}

var figures = []string{FigureRaw, FigureYoY, FigurePoP}

// popLabel names the period over period change at each frequency.
var popLabel = map[series.Frequency]string{
	series.Daily:     "DoD",
	series.Weekly:    "WoW",
	series.Biweekly:  "BoB",
	series.Monthly:   "MoM",
	series.Quarterly: "QoQ",
}

// figure turns a level series into the requested figure. Changes are in
// percent, rounded to two decimals, and the rows without a prior
// observation are dropped. A "(unit)" suffix of the name is replaced by the
// change label.
func figure(s series.Series, fig string, freq series.Frequency) series.Series {
	var lag int
	base := strings.SplitN(s.Name, " (", 2)[0]
	switch fig {
	case FigureYoY:
		lag = series.Lag(freq)
		base += " YoY % Change"
	case FigurePoP:
		lag = 1
		base += " " + popLabel[freq] + " % Change"
	default:
		return s
	}
	return series.RateOfChange(s, lag, true).DropLeading(lag).Round(2).Rename(base)
}

// window trims s to period and wraps it in a Result.
func (s *Service) window(title string, ys series.Series, period string, freq series.Frequency) (display.Result, error) {
	out, err := series.ApplyPeriod(ys, period, freq, s.now())
	if err != nil {
		return display.Result{}, err
	}
	return display.Result{Title: title, Series: []series.Series{out}}, nil
}

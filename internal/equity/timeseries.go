package equity

import (
	"context"
	"fmt"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// Calculations applied to price history.
const (
	CalcPrice        = "price"
	CalcSimpleReturn = "simple return"
	CalcLogReturn    = "log return"
)

// TimeseriesOptions selects a slice of price history. Start and End
// (YYYY-MM-DD) override Period.
type TimeseriesOptions struct {
	Period      string `json:"period"      default:"5y"`
	Interval    string `json:"interval"    default:"1d"`
	Data        string `json:"data"        default:"all"`
	Calculation string `json:"calculation" default:"price"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Display     string `json:"display"     default:"json"`
}

var timeseriesChoices = provider.Choices{
	"period":      series.Periods,
	"interval":    {"1d", "1wk", "1mo", "3mo"},
	"data":        {"open", "high", "low", "close", "volume", "all"},
	"calculation": {CalcPrice, CalcSimpleReturn, CalcLogReturn},
	"display":     {display.JSON, display.Table, display.Line},
}

// ohlcv lists the bar fields with their column names.
var ohlcv = []struct{ field, name string }{
	{models.FieldOpen, "Open"},
	{models.FieldHigh, "High"},
	{models.FieldLow, "Low"},
	{models.FieldClose, "Close"},
	{models.FieldVolume, "Volume"},
}

// Timeseries returns price history, or its simple or log returns.
func (s *Service) Timeseries(ctx context.Context, ticker string, opts TimeseriesOptions) (display.Result, error) {
	if err := provider.Prepare(&opts); err != nil {
		return display.Result{}, err
	}
	if err := timeseriesChoices.Check(map[string]string{
		"period":      opts.Period,
		"interval":    opts.Interval,
		"data":        opts.Data,
		"calculation": opts.Calculation,
		"display":     opts.Display,
	}); err != nil {
		return display.Result{}, err
	}
	if opts.Display == display.Line && opts.Data == "all" {
		return display.Result{}, &provider.ChartReadabilityError{Reason: "a line chart of every price column; pick one data column"}
	}
	start, err := provider.ParseDate("start", opts.Start)
	if err != nil {
		return display.Result{}, err
	}
	end, err := provider.ParseDate("end", opts.End)
	if err != nil {
		return display.Result{}, err
	}

	r := datasource.Range{Period: opts.Period, Interval: opts.Interval, Start: start, End: end}
	c, err := s.chart(ctx, ticker, r)
	if err != nil {
		return display.Result{}, err
	}

	var out []series.Series
	for _, f := range ohlcv {
		if opts.Data != "all" && opts.Data != f.field {
			continue
		}
		col := c.Series(f.field, f.name)
		if f.field != models.FieldVolume {
			col = col.Round(2)
		}
		switch opts.Calculation {
		case CalcSimpleReturn:
			col = series.SimpleReturn(col)
		case CalcLogReturn:
			col = series.LogReturn(col)
		}
		out = append(out, col)
	}

	return display.Result{
		Title:  fmt.Sprintf("%s %s", ticker, opts.Calculation),
		Series: out,
	}, nil
}

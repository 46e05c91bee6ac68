package indicator

import (
	"context"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// Yahoo symbols of the market indicators.
const (
	VIXSymbol         = "^VIX"
	DollarIndexSymbol = "DX-Y.NYB"
)

// MarketOptions select a slice of index history. Start and End
// (YYYY-MM-DD) override Period.
type MarketOptions struct {
	Period   string `json:"period"   default:"5y"`
	Interval string `json:"interval" default:"1d"`
	Data     string `json:"data"     default:"all"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Display  string `json:"display"  default:"table"`
}

var marketChoices = provider.Choices{
	"period":   series.Periods,
	"interval": {"1d", "1wk", "1mo", "3mo"},
	"data":     {"open", "high", "low", "close", "all"},
	"display":  {display.Table, display.JSON, display.Line},
}

var ohlc = []struct{ field, name string }{
	{models.FieldOpen, "Open"},
	{models.FieldHigh, "High"},
	{models.FieldLow, "Low"},
	{models.FieldClose, "Close"},
}

// VIX returns the CBOE volatility index.
func (s *Service) VIX(ctx context.Context, opts MarketOptions) (display.Result, error) {
	return s.market(ctx, VIXSymbol, "VIX", opts)
}

// DollarIndex returns the ICE US dollar index.
func (s *Service) DollarIndex(ctx context.Context, opts MarketOptions) (display.Result, error) {
	return s.market(ctx, DollarIndexSymbol, "$_INDEX", opts)
}

func (s *Service) market(ctx context.Context, symbol, prefix string, opts MarketOptions) (display.Result, error) {
	if err := provider.Prepare(&opts); err != nil {
		return display.Result{}, err
	}
	if err := marketChoices.Check(map[string]string{
		"period":   opts.Period,
		"interval": opts.Interval,
		"data":     opts.Data,
		"display":  opts.Display,
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
	c, err := s.src.Chart(ctx, symbol, datasource.Range{Period: opts.Period, Interval: opts.Interval, Start: start, End: end})
	if err != nil {
		return display.Result{}, err
	}
	var out []series.Series
	for _, f := range ohlc {
		if opts.Data == "all" || opts.Data == f.field {
			out = append(out, c.Series(f.field, prefix+" "+f.name).Round(2))
		}
	}
	return display.Result{Title: prefix, Series: out}, nil
}

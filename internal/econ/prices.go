package econ

import (
	"context"
	"time"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

// Price index figures.
const (
	FigureIndex = "index"
	FigureYoY   = "yoy"
	FigureMoM   = "mom"
)

// IFS monthly price index indicators.
var ifsPriceIndexes = map[string]struct{ indicator, label string }{
	"consumer": {"PCPI_IX", "CPI"},
	"producer": {"PPPI_IX", "PPI"},
}

// FRED PCE price index series.
var pceSeries = map[string]struct{ id, label string }{
	"raw":  {"PCEPI", "PCE"},
	"core": {"PCEPILFE", "Core PCE"},
}

// PriceOptions select a monthly price index and how it is reported. The
// index figure is rebased to 100 in the Base month; yoy and mom are percent
// changes.
type PriceOptions struct {
	Type    string `json:"type"`
	Figure  string `json:"figure"  default:"index" validate:"oneof=index yoy mom"`
	Base    string `json:"base"    default:"2020-01"`
	Period  string `json:"period"  default:"5y"`
	Display string `json:"display" default:"table"`
}

// PriceIndex returns the consumer or producer price index of a country.
func (s *Service) PriceIndex(ctx context.Context, country string, opts PriceOptions) (display.Result, error) {
	if err := preparePrices(&opts, &country, "consumer", provider.Keys(ifsPriceIndexes)); err != nil {
		return display.Result{}, err
	}
	ix := ifsPriceIndexes[opts.Type]
	ys, err := s.src.IFS(ctx, country, ix.indicator, "M", time.Time{})
	if err != nil {
		return display.Result{}, err
	}
	ys, err = priceFigure(ys.Sort(), country, ix.label, opts)
	if err != nil {
		return display.Result{}, err
	}
	return s.window(ys, opts.Period, series.Monthly)
}

// PCE returns the US personal consumption expenditures price index,
// headline (raw) or excluding food and energy (core).
func (s *Service) PCE(ctx context.Context, opts PriceOptions) (display.Result, error) {
	if err := preparePrices(&opts, nil, "raw", provider.Keys(pceSeries)); err != nil {
		return display.Result{}, err
	}
	p := pceSeries[opts.Type]
	ys, err := s.src.FredSeries(ctx, p.id, "", datasource.Range{})
	if err != nil {
		return display.Result{}, err
	}
	ys, err = priceFigure(ys.Sort(), "US", p.label, opts)
	if err != nil {
		return display.Result{}, err
	}
	return s.window(ys, opts.Period, series.Monthly)
}

func preparePrices(opts *PriceOptions, country *string, defType string, types []string) error {
	if err := provider.Prepare(opts); err != nil {
		return err
	}
	if opts.Type == "" {
		opts.Type = defType
	}
	if err := provider.OneOf("type", opts.Type, types...); err != nil {
		return err
	}
	if err := check(country, opts.Period, opts.Display); err != nil {
		return err
	}
	if opts.Figure == FigureIndex {
		return checkMonth(opts.Base)
	}
	return nil
}

// priceFigure derives the requested figure and names it after the country
// and index, e.g. "DE 2020-01 Base CPI" or "DE CPI YoY % Change".
func priceFigure(ys series.Series, cc, index string, opts PriceOptions) (series.Series, error) {
	label := cc + " " + index
	switch opts.Figure {
	case FigureYoY:
		return change(ys, 12).Rename(label + " YoY % Change"), nil
	case FigureMoM:
		return change(ys, 1).Rename(label + " MoM % Change"), nil
	}
	out, err := series.RebaseMonth(ys.Rename(cc+" "+opts.Base+" Base "+index), opts.Base, 100)
	if err != nil {
		return series.Series{}, err
	}
	return out.Round(2), nil
}

func change(ys series.Series, lag int) series.Series {
	return series.RateOfChange(ys, lag, true).DropLeading(lag).Round(2)
}

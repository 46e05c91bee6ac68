package bond

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/seenimoa/finflux/internal/analysis/technical"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// Candle chart limits.
const (
	MaxCandles   = 265
	MaxSMALines  = 5
	MinSMAWindow = 10
	MaxSMAWindow = 300
	MinBollinger = 0.1
	MaxBollinger = 3.0
)

// CandleOptions selects the candles and overlays of a yield chart.
// Bollinger, when set, holds one band width per SMA window in standard
// deviations; 0 draws the SMA without bands.
type CandleOptions struct {
	Period    string    `json:"period"   default:"6mo"`
	Interval  string    `json:"interval" default:"1d"`
	Start     string    `json:"start"`
	End       string    `json:"end"`
	SMA       []int     `json:"sma"`
	Bollinger []float64 `json:"bollinger"`
}

var candleChoices = provider.Choices{
	"period":   Periods,
	"interval": {"1d", "1wk", "1mo"},
}

func (o CandleOptions) check() error {
	if len(o.SMA) > MaxSMALines {
		return &provider.ChartReadabilityError{
			Reason: fmt.Sprintf("%d SMA lines requested, at most %d are drawn", len(o.SMA), MaxSMALines),
		}
	}
	for _, w := range o.SMA {
		if w < MinSMAWindow || w > MaxSMAWindow {
			return &provider.InvalidParameterError{
				Param: "sma", Value: strconv.Itoa(w),
				Valid: []string{fmt.Sprintf("an integer between %d and %d", MinSMAWindow, MaxSMAWindow)},
			}
		}
	}
	if len(o.Bollinger) == 0 {
		return nil
	}
	if len(o.Bollinger) != len(o.SMA) {
		return &provider.InvalidParameterError{
			Param: "bollinger", Value: fmt.Sprint(o.Bollinger),
			Valid: []string{fmt.Sprintf("one band width per SMA line (%d)", len(o.SMA))},
		}
	}
	for _, k := range o.Bollinger {
		if k != 0 && (k < MinBollinger || k > MaxBollinger) {
			return &provider.InvalidParameterError{
				Param: "bollinger", Value: strconv.FormatFloat(k, 'f', -1, 64),
				Valid: []string{fmt.Sprintf("a number between %g and %g", MinBollinger, MaxBollinger)},
			}
		}
	}
	return nil
}

// Candle returns the OHLC yield bars of a government bond with optional
// moving average and Bollinger band overlays. Overlays are computed over
// the full history so the first candles already carry a value.
func (s *Service) Candle(ctx context.Context, country, maturity string, opts CandleOptions) (display.Result, error) {
	if err := provider.Prepare(&opts); err != nil {
		return display.Result{}, err
	}
	country, err := checkBond(country, maturity)
	if err != nil {
		return display.Result{}, err
	}
	if err := candleChoices.Check(map[string]string{"period": opts.Period, "interval": opts.Interval}); err != nil {
		return display.Result{}, err
	}
	if err := opts.check(); err != nil {
		return display.Result{}, err
	}
	w, err := s.resolve(opts.Period, opts.Interval, opts.Start, opts.End)
	if err != nil {
		return display.Result{}, err
	}
	bars, err := s.history(ctx, country, maturity, w)
	if err != nil {
		return display.Result{}, err
	}
	if len(bars) > MaxCandles {
		return display.Result{}, &provider.ChartReadabilityError{
			Reason: fmt.Sprintf("%d candles selected, at most %d are drawn; shorten the period or widen the interval", len(bars), MaxCandles),
		}
	}

	title := fmt.Sprintf("%s %s bond yield", Countries[country].Name, strings.ToUpper(maturity))
	if len(opts.SMA) == 0 || len(bars) == 0 {
		return display.Result{Title: title, Bars: bars}, nil
	}

	full, err := s.history(ctx, country, maturity, window{interval: opts.Interval, start: series.MaxStart})
	if err != nil {
		return display.Result{}, err
	}
	closes := (&models.Chart{Bars: full}).Series(models.FieldClose, "Close")
	first, last := bars[0].Date, bars[len(bars)-1].Date

	var overlays []series.Series
	for i, n := range opts.SMA {
		k := 0.0
		if len(opts.Bollinger) > 0 {
			k = opts.Bollinger[i]
		}
		if k == 0 {
			overlays = append(overlays, technical.SMA(closes, n).Between(first, last))
			continue
		}
		b := technical.BollingerBands(closes, n, k)
		overlays = append(overlays,
			b.Middle.Between(first, last),
			b.Upper.Between(first, last).Rename(fmt.Sprintf("BB (%d, %g) upper", n, k)),
			b.Lower.Between(first, last).Rename(fmt.Sprintf("BB (%d, %g) lower", n, k)),
		)
	}
	return display.Result{Title: title, Bars: bars, Overlays: overlays}, nil
}

package display

import (
	"fmt"

	"github.com/seenimoa/finflux/internal/report"
)

func chart(mode string, r Result, opts Options) (string, error) {
	cfg := report.DefaultChartConfig().WithSize(opts.Width, opts.Height)
	cfg.Title = opts.Title

	if mode == Candle {
		if len(r.Bars) == 0 {
			return "", fmt.Errorf("candle chart: %w", ErrNothingToRender)
		}
		return report.CandlestickChart(r.Bars, r.Overlays, cfg), nil
	}

	var (
		labels []string
		lines  []report.LineChartSeries
	)
	switch {
	case len(r.Series) > 0:
		labels, lines = report.AlignSeries(r.layout(), r.Series...)
	case r.table() != nil:
		labels, lines = report.FrameSeries(r.table())
	default:
		return "", fmt.Errorf("%s chart: %w", mode, ErrNothingToRender)
	}
	if mode == Bar {
		return report.BarChart(labels, lines, cfg), nil
	}
	return report.LineChart(labels, lines, cfg), nil
}

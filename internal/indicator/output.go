package indicator

import (
	"context"

	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

// nipaLine identifies one line of a BEA NIPA table.
type nipaLine struct {
	table, code, name string
}

var gdpLines = map[string]nipaLine{
	"n":    {"T10105", "A191RC", "Nominal GDP (in USD millions)"},
	"r":    {"T10106", "A191RX", "Real GDP (in USD millions)"},
	"n_pc": {"T70100", "A939RC", "Nominal GDP per Capita (in USD)"},
	"r_pc": {"T70100", "A939RX", "Real GDP per Capita (in USD)"},
	"d":    {"T10109", "A191RD", "GDP Deflator (index)"},
}

var pceLines = map[string]nipaLine{
	"raw":  {"T20804", "DPCERG", "PCE (index)"},
	"core": {"T20804", "DPCCRG", "Core PCE (index)"},
}

// GDP returns quarterly US gross domestic product: nominal (n), real (r),
// per capita (n_pc, r_pc) or the implicit price deflator (d).
func (s *Service) GDP(ctx context.Context, opts Options) (display.Result, error) {
	if err := prepare(&opts, "n", FigureYoY, provider.Keys(gdpLines), figures); err != nil {
		return display.Result{}, err
	}
	return s.nipa(ctx, gdpLines[opts.Type], "Q", series.Quarterly, opts)
}

// PCE returns the monthly personal consumption expenditures price index,
// headline or core.
func (s *Service) PCE(ctx context.Context, opts Options) (display.Result, error) {
	if err := prepare(&opts, "raw", FigureYoY, provider.Keys(pceLines), figures); err != nil {
		return display.Result{}, err
	}
	return s.nipa(ctx, pceLines[opts.Type], "M", series.Monthly, opts)
}

func (s *Service) nipa(ctx context.Context, l nipaLine, beaFreq string, freq series.Frequency, opts Options) (display.Result, error) {
	ys, err := s.src.NIPA(ctx, l.table, l.code, beaFreq)
	if err != nil {
		return display.Result{}, err
	}
	ys = figure(ys.Sort().Rename(l.name), opts.Figure, freq)
	return s.window(ys.Name, ys, opts.Period, freq)
}

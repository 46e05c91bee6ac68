package econ

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

// IFS indicators of quarterly GDP, seasonally adjusted, domestic currency.
const (
	NominalGDP = "NGDP_SA_XDC"
	RealGDP    = "NGDP_R_SA_XDC"
)

// GDP types and figures.
const (
	GDPNominal  = "nominal"
	GDPReal     = "real"
	GDPDeflator = "deflator"

	FigureQuarter = "quarter"
	FigureTTM     = "ttm"
)

// GDPOptions select the GDP measure. Real GDP is expressed in prices of
// the Base quarter.
type GDPOptions struct {
	Type    string `json:"type"    default:"nominal" validate:"oneof=nominal real deflator"`
	Figure  string `json:"figure"  default:"quarter" validate:"oneof=quarter ttm"`
	Base    string `json:"base"    default:"2020-Q1"`
	Period  string `json:"period"  default:"5y"`
	Display string `json:"display" default:"table"`
}

// GDP returns quarterly gross domestic product of a country in domestic
// currency: nominal, real at base-quarter prices, or the implicit deflator
// (base quarter = 100). The ttm figure sums four quarters and drops the
// first three.
func (s *Service) GDP(ctx context.Context, country string, opts GDPOptions) (display.Result, error) {
	if err := provider.Prepare(&opts); err != nil {
		return display.Result{}, err
	}
	if err := check(&country, opts.Period, opts.Display); err != nil {
		return display.Result{}, err
	}
	if err := checkQuarter(opts.Base); err != nil {
		return display.Result{}, err
	}

	var nominal, raw series.Series
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nominal, err = s.src.IFS(gctx, country, NominalGDP, "Q", time.Time{})
		return err
	})
	if opts.Type != GDPNominal {
		g.Go(func() error {
			var err error
			raw, err = s.src.IFS(gctx, country, RealGDP, "Q", time.Time{})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return display.Result{}, err
	}
	nominal = nominal.Sort().Trunc()

	ys, err := gdpFigure(country, nominal, raw.Sort().Trunc(), opts)
	if err != nil {
		return display.Result{}, err
	}
	return s.window(ys, opts.Period, series.Quarterly)
}

func gdpFigure(cc string, nominal, raw series.Series, opts GDPOptions) (series.Series, error) {
	var rgdp series.Series
	if opts.Type != GDPNominal {
		var err error
		if rgdp, err = realGDP(cc, nominal, raw, opts.Base); err != nil {
			return series.Series{}, err
		}
	}
	prefix := cc + " Q "
	if opts.Figure == FigureTTM {
		prefix = cc + " TTM "
		nominal, rgdp = ttm(nominal), ttm(rgdp)
	}
	switch opts.Type {
	case GDPReal:
		return rgdp.Rename(prefix + opts.Base + " Base Real GDP"), nil
	case GDPDeflator:
		return series.Combine(prefix+opts.Base+" Base GDP Deflator", nominal, rgdp, func(n, r series.Num) series.Num {
			return series.Div(n, r).MulF(100).Round(2)
		}), nil
	}
	return nominal.Rename(prefix + "Nominal GDP"), nil
}

// realGDP scales the raw real series so that it equals nominal GDP in the
// base quarter, truncated to whole currency units.
func realGDP(cc string, nominal, raw series.Series, base string) (series.Series, error) {
	level := series.NA
	for _, p := range nominal.Points {
		if series.QuarterLabel(p.Date) == base {
			level = p.Value
			break
		}
	}
	if !level.Valid {
		return series.Series{}, &series.MissingAnchorError{Series: cc + " Nominal GDP", Anchor: base}
	}
	scaled, err := series.RebaseQuarter(raw, base, level.V)
	if err != nil {
		return series.Series{}, err
	}
	return scaled.Trunc(), nil
}

func ttm(s series.Series) series.Series {
	return series.TrailingSum(s, 4).DropLeading(3)
}

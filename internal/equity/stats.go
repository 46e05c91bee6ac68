package equity

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finflux/internal/analysis/fundamental"
	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// fiscalYearPriceDays bounds how far before a fiscal year end the closing
// price may be taken from.
const fiscalYearPriceDays = 5

// Stats returns profitability, liquidity, leverage, efficiency, cash
// flow, growth and valuation statistics per fiscal year, with the most
// recent quarter and trailing twelve months alongside. Amounts are in
// millions of the reporting currency.
func (s *Service) Stats(ctx context.Context, ticker, mode string) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Table, display.Pretty); err != nil {
		return display.Result{}, err
	}

	var (
		annual, quarterly *models.Fundamentals
		chart             *models.Chart
		price             *models.RealtimePrice
		profile           *models.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		annual, err = s.fundamentals(gctx, ticker, "annual", fundamental.All, fundamental.StatsExtraKeys...)
		return err
	})
	g.Go(func() (err error) {
		quarterly, err = s.fundamentals(gctx, ticker, "quarter", fundamental.All, fundamental.StatsExtraKeys...)
		return err
	})
	g.Go(func() (err error) {
		chart, err = s.chart(gctx, ticker, datasource.Range{Period: "max", Interval: "1d"})
		return err
	})
	g.Go(func() (err error) {
		price, err = s.src.Realtime(gctx, marketSymbol(ticker))
		return err
	})
	g.Go(func() (err error) {
		profile, err = s.src.Profile(gctx, ticker)
		return err
	})
	if err := g.Wait(); err != nil {
		return display.Result{}, err
	}

	in, err := statsInput(annual, quarterly, chart, price.Price, profile.SharesOutstanding)
	if err != nil {
		return display.Result{}, err
	}
	st := fundamental.ComputeStats(in)
	st.Symbol = ticker
	st.Name = profile.Name
	st.Exchange = chart.ExchangeName
	st.Currency = annual.Currency
	st.Timezone = chart.Timezone

	return display.Result{Title: ticker + " statistics", Value: st, Frame: st.Frame()}, nil
}

// statsInput assembles statements in millions plus the raw per-share
// items and fiscal year end prices.
func statsInput(annual, quarterly *models.Fundamentals, c *models.Chart, price, shares series.Num) (fundamental.StatsInput, error) {
	a, err := millionsStatement(annual)
	if err != nil {
		return fundamental.StatsInput{}, err
	}
	q, err := millionsStatement(quarterly)
	if err != nil {
		return fundamental.StatsInput{}, err
	}
	aDates := fundamental.RecentPeriods(annual, fundamental.AnnualColumns)
	qDates := fundamental.RecentPeriods(quarterly, fundamental.QuarterlyColumns)

	closes := c.Series(models.FieldClose, "Close")
	fyPrices := make([]series.Num, len(aDates))
	for i, d := range aDates {
		fyPrices[i] = fundamental.PriceNear(closes, d, fiscalYearPriceDays)
	}

	return fundamental.StatsInput{
		Annual:            a,
		Quarterly:         q,
		AnnualShares:      fundamental.Row(annual, "BasicAverageShares", aDates),
		AnnualEPS:         fundamental.Row(annual, "BasicEPS", aDates),
		QuarterlyEPS:      fundamental.Row(quarterly, "BasicEPS", qDates),
		FiscalYearPrices:  fyPrices,
		Price:             price,
		SharesOutstanding: shares,
	}, nil
}

func millionsStatement(f *models.Fundamentals) (*series.Frame, error) {
	frame, err := fundamental.BuildStatement(f, fundamental.All)
	if err != nil {
		return nil, err
	}
	return fundamental.ScaleUnit(frame, "million")
}

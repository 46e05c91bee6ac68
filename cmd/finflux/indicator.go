package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/indicator"
)

func indicatorCmd(a *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indicator",
		Short: "US macroeconomic indicators",
	}
	ind := func() *indicator.Service { return a.svc.Indicator }
	type macroRun = func(context.Context, indicator.Options) (display.Result, error)
	type marketRun = func(context.Context, indicator.MarketOptions) (display.Result, error)

	cmd.AddCommand(
		macroCmd(a, "gdp", "Gross domestic product (n, r, n_pc, r_pc, d)", func() macroRun { return ind().GDP }),
		macroCmd(a, "price_index", "CPI and PPI (c, p, cc, cp)", func() macroRun { return ind().PriceIndex }),
		macroCmd(a, "pce", "Personal consumption expenditure price index (raw, core)", func() macroRun { return ind().PCE }),
		macroCmd(a, "unemployment", "Unemployment rates", func() macroRun { return ind().Unemployment }),
		macroCmd(a, "labor", "Participation, payrolls, JOLTS, earnings and claims", func() macroRun { return ind().Labor }),
		macroCmd(a, "sentiment", "Consumer and business sentiment", func() macroRun { return ind().Sentiment }),
		macroCmd(a, "housing", "Housing starts, sales and mortgage rates", func() macroRun { return ind().Housing }),
		fedRateCmd(a),
		marketCmd(a, "vix", "CBOE volatility index", func() marketRun { return ind().VIX }),
		marketCmd(a, "dollar_index", "US dollar index", func() marketRun { return ind().DollarIndex }),
	)
	return cmd
}

func macroCmd(a *application, use, short string, svc func() func(context.Context, indicator.Options) (display.Result, error)) *cobra.Command {
	var opts indicator.Options
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, &opts, func(o *indicator.Options) string { return o.Display }, svc())
		},
	}
	cmd.Flags().StringVar(&opts.Type, "type", "", "indicator variant")
	cmd.Flags().StringVar(&opts.Period, "period", "", "1y, 2y, 5y, 10y, ytd or max")
	cmd.Flags().StringVar(&opts.Figure, "figure", "", "raw, yoy or pop")
	displayFlag(cmd, &opts.Display)
	return cmd
}

func marketCmd(a *application, use, short string, svc func() func(context.Context, indicator.MarketOptions) (display.Result, error)) *cobra.Command {
	var opts indicator.MarketOptions
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, &opts, func(o *indicator.MarketOptions) string { return o.Display }, svc())
		},
	}
	periodFlags(cmd, &opts.Period, &opts.Interval, &opts.Start, &opts.End)
	cmd.Flags().StringVar(&opts.Data, "data", "", "open, high, low, close or all")
	displayFlag(cmd, &opts.Display)
	return cmd
}

func fedRateCmd(a *application) *cobra.Command {
	var opts indicator.FedRateOptions
	cmd := &cobra.Command{
		Use:   "fed_rate",
		Short: "Effective federal funds rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, &opts, func(o *indicator.FedRateOptions) string { return o.Display }, a.svc.Indicator.FedRate)
		},
	}
	cmd.Flags().StringVar(&opts.Interval, "interval", "", "1d, 1wk, 2wk or 1mo")
	cmd.Flags().StringVar(&opts.Period, "period", "", "lookback period")
	displayFlag(cmd, &opts.Display)
	return cmd
}

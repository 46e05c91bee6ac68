package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finflux/internal/bond"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
)

func bondCmd(a *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bond",
		Short: "Government and corporate bond yields",
	}
	cmd.AddCommand(
		bondTimeseriesCmd(a),
		bondCandleCmd(a),
		argModeCmd(a, "curve [country]", "Yield curve now, 3 and 6 months ago", display.Table,
			func() modeRun { return a.svc.Bond.Curve }),
		bondMaturityCmd(a, "eod [country] [maturity]", "End-of-day yield", func() maturityRun { return a.svc.Bond.EOD }),
		bondMaturityCmd(a, "quote [country] [maturity]", "Latest yield quote with changes", func() maturityRun { return a.svc.Bond.Quote }),
		bondHQMCmd(a),
		bondLongTermCmd(a),
	)
	return cmd
}

type maturityRun func(ctx context.Context, country, maturity, mode string) (display.Result, error)

func bondMaturityCmd(a *application, use, short string, svc func() maturityRun) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := svc()(cmd.Context(), args[0], args[1], mode)
			if err != nil {
				return err
			}
			return a.show(cmd, mode, res)
		},
	}
	cmd.Flags().StringVar(&mode, "display", display.Pretty, "json or pretty")
	return cmd
}

func bondTimeseriesCmd(a *application) *cobra.Command {
	var opts bond.TimeseriesOptions
	cmd := &cobra.Command{
		Use:     "timeseries [country] [maturity]",
		Short:   "Historical sovereign bond yields",
		Example: `  finflux bond timeseries US 10y --period 2y --data close --display line`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, &opts, func(o *bond.TimeseriesOptions) string { return o.Display },
				func(ctx context.Context, o bond.TimeseriesOptions) (display.Result, error) {
					return a.svc.Bond.SovereignTimeseries(ctx, args[0], args[1], o)
				})
		},
	}
	periodFlags(cmd, &opts.Period, &opts.Interval, &opts.Start, &opts.End)
	cmd.Flags().StringVar(&opts.Data, "data", "", "open, high, low, close or all")
	displayFlag(cmd, &opts.Display)
	return cmd
}

func bondCandleCmd(a *application) *cobra.Command {
	var (
		opts bond.CandleOptions
		mode string
	)
	cmd := &cobra.Command{
		Use:     "candle [country] [maturity]",
		Short:   "Candlestick chart with SMA and Bollinger overlays",
		Example: `  finflux bond candle DE 10y --period 1y --interval 1wk --sma 20,50 --bollinger 2,0 --save de10y.svg`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := provider.OneOf("display", mode, display.Candle, display.JSON, display.Table); err != nil {
				return err
			}
			return run(a, cmd, &opts, func(*bond.CandleOptions) string { return mode },
				func(ctx context.Context, o bond.CandleOptions) (display.Result, error) {
					return a.svc.Bond.Candle(ctx, args[0], args[1], o)
				})
		},
	}
	periodFlags(cmd, &opts.Period, &opts.Interval, &opts.Start, &opts.End)
	cmd.Flags().IntSliceVar(&opts.SMA, "sma", nil, "moving average windows, e.g. 20,50")
	cmd.Flags().Float64SliceVar(&opts.Bollinger, "bollinger", nil, "band width in standard deviations per SMA, 0 for none")
	cmd.Flags().StringVar(&mode, "display", display.Candle, "candle, json or table")
	return cmd
}

func bondHQMCmd(a *application) *cobra.Command {
	var opts bond.CorporateOptions
	cmd := &cobra.Command{
		Use:     "hqm",
		Short:   "US high quality market corporate bond spot rates",
		Example: `  finflux bond hqm --maturities 1y,10y,30y --period 10y --display line`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, &opts, func(o *bond.CorporateOptions) string { return o.Display },
				func(ctx context.Context, o bond.CorporateOptions) (display.Result, error) {
					return a.svc.Bond.USHQMCorporate(ctx, o)
				})
		},
	}
	cmd.Flags().StringSliceVar(&opts.Maturities, "maturities", nil, "maturities, e.g. 6mo,1y,10y")
	cmd.Flags().StringVar(&opts.Period, "period", "", "lookback period")
	displayFlag(cmd, &opts.Display)
	return cmd
}

func bondLongTermCmd(a *application) *cobra.Command {
	var period, mode string
	cmd := &cobra.Command{
		Use:   "10y [country]",
		Short: "Monthly 10 year government yield outside the US",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.Bond.NonUS10Y(cmd.Context(), strings.ToUpper(args[0]), period, mode)
			if err != nil {
				return err
			}
			return a.show(cmd, mode, res)
		},
	}
	cmd.Flags().StringVar(&period, "period", "", "lookback period (default max)")
	cmd.Flags().StringVar(&mode, "display", display.Table, "json, table or line")
	return cmd
}

package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/forex"
)

func forexCmd(a *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forex",
		Short: "Exchange rates and currency conversion",
	}
	cmd.AddCommand(forexTimeseriesCmd(a), forexRealtimeCmd(a), forexConversionCmd(a))
	return cmd
}

func forexTimeseriesCmd(a *application) *cobra.Command {
	var opts forex.TimeseriesOptions
	cmd := &cobra.Command{
		Use:     "timeseries [from] [to]",
		Short:   "Historical exchange rates",
		Example: `  finflux forex timeseries EUR USD --period 1y --data close --display line`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, &opts, func(o *forex.TimeseriesOptions) string { return o.Display },
				func(ctx context.Context, o forex.TimeseriesOptions) (display.Result, error) {
					return a.svc.Forex.Timeseries(ctx, args[0], args[1], o)
				})
		},
	}
	periodFlags(cmd, &opts.Period, &opts.Interval, &opts.Start, &opts.End)
	cmd.Flags().StringVar(&opts.Data, "data", "", "open, high, low, close or all")
	cmd.Flags().StringVar(&opts.Calculation, "calculation", "", "price, \"simple return\" or \"log return\"")
	displayFlag(cmd, &opts.Display)
	return cmd
}

func forexRealtimeCmd(a *application) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "realtime [from] [to]",
		Short: "Latest exchange rate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.Forex.Realtime(cmd.Context(), args[0], args[1], mode)
			if err != nil {
				return err
			}
			return a.show(cmd, mode, res)
		},
	}
	cmd.Flags().StringVar(&mode, "display", display.Pretty, "json or pretty")
	return cmd
}

func forexConversionCmd(a *application) *cobra.Command {
	var opts forex.ConversionOptions
	cmd := &cobra.Command{
		Use:     "conversion [from] [to] [amount]",
		Short:   "Convert an amount at the realtime or end-of-day rate",
		Example: `  finflux forex conversion USD JPY 2500 --rate eod`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := forex.ParseAmount(args[2])
			if err != nil {
				return err
			}
			return run(a, cmd, &opts, func(o *forex.ConversionOptions) string { return o.Display },
				func(ctx context.Context, o forex.ConversionOptions) (display.Result, error) {
					return a.svc.Forex.Conversion(ctx, args[0], args[1], amount, o)
				})
		},
	}
	cmd.Flags().StringVar(&opts.Rate, "rate", "", "realtime or eod")
	displayFlag(cmd, &opts.Display)
	return cmd
}

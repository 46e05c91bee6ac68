package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finflux/internal/crypto"
	"github.com/seenimoa/finflux/internal/display"
)

func cryptoCmd(a *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crypto",
		Short: "Cryptocurrency prices from CoinGecko",
	}
	cmd.AddCommand(cryptoRealtimeCmd(a), cryptoTimeseriesCmd(a))
	return cmd
}

func cryptoRealtimeCmd(a *application) *cobra.Command {
	var vs, mode string
	cmd := &cobra.Command{
		Use:     "realtime [coin]",
		Short:   "Latest coin price",
		Example: `  finflux crypto realtime bitcoin --vs eur`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.Crypto.Realtime(cmd.Context(), args[0], vs, mode)
			if err != nil {
				return err
			}
			return a.show(cmd, mode, res)
		},
	}
	cmd.Flags().StringVar(&vs, "vs", "usd", "quote currency")
	cmd.Flags().StringVar(&mode, "display", display.Pretty, "json or pretty")
	return cmd
}

func cryptoTimeseriesCmd(a *application) *cobra.Command {
	var (
		opts crypto.TimeseriesOptions
		vs   string
	)
	cmd := &cobra.Command{
		Use:   "timeseries [coin]",
		Short: "Daily coin prices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, &opts, func(o *crypto.TimeseriesOptions) string { return o.Display },
				func(ctx context.Context, o crypto.TimeseriesOptions) (display.Result, error) {
					return a.svc.Crypto.Timeseries(ctx, args[0], vs, o)
				})
		},
	}
	cmd.Flags().StringVar(&vs, "vs", "usd", "quote currency")
	cmd.Flags().StringVar(&opts.Period, "period", "", "1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd or max")
	displayFlag(cmd, &opts.Display)
	return cmd
}

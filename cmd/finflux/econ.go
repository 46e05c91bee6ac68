package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/econ"
)

func econCmd(a *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "econ",
		Short: "International GDP and price indexes",
	}
	cmd.AddCommand(econGDPCmd(a), econPriceIndexCmd(a), econPCECmd(a))
	return cmd
}

func econGDPCmd(a *application) *cobra.Command {
	var opts econ.GDPOptions
	cmd := &cobra.Command{
		Use:     "gdp [country]",
		Short:   "Quarterly nominal, real or deflator GDP of a country",
		Example: `  finflux econ gdp DE --type real --figure ttm --base 2015-Q1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, &opts, func(o *econ.GDPOptions) string { return o.Display },
				func(ctx context.Context, o econ.GDPOptions) (display.Result, error) {
					return a.svc.Econ.GDP(ctx, args[0], o)
				})
		},
	}
	cmd.Flags().StringVar(&opts.Type, "type", "", "nominal, real or deflator")
	cmd.Flags().StringVar(&opts.Figure, "figure", "", "quarter or ttm")
	cmd.Flags().StringVar(&opts.Base, "base", "", "base quarter YYYY-Qn")
	cmd.Flags().StringVar(&opts.Period, "period", "", "1y, 2y, 5y, 10y, ytd or max")
	displayFlag(cmd, &opts.Display)
	return cmd
}

func priceFlags(cmd *cobra.Command, opts *econ.PriceOptions, types string) {
	cmd.Flags().StringVar(&opts.Type, "type", "", types)
	cmd.Flags().StringVar(&opts.Figure, "figure", "", "index, yoy or mom")
	cmd.Flags().StringVar(&opts.Base, "base", "", "base month YYYY-MM")
	cmd.Flags().StringVar(&opts.Period, "period", "", "1y, 2y, 5y, 10y, ytd or max")
	displayFlag(cmd, &opts.Display)
}

func econPriceIndexCmd(a *application) *cobra.Command {
	var opts econ.PriceOptions
	cmd := &cobra.Command{
		Use:   "price_index [country]",
		Short: "Consumer or producer price index of a country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, &opts, func(o *econ.PriceOptions) string { return o.Display },
				func(ctx context.Context, o econ.PriceOptions) (display.Result, error) {
					return a.svc.Econ.PriceIndex(ctx, args[0], o)
				})
		},
	}
	priceFlags(cmd, &opts, "consumer or producer")
	return cmd
}

func econPCECmd(a *application) *cobra.Command {
	var opts econ.PriceOptions
	cmd := &cobra.Command{
		Use:   "pce",
		Short: "US personal consumption expenditure price index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, &opts, func(o *econ.PriceOptions) string { return o.Display }, a.svc.Econ.PCE)
		},
	}
	priceFlags(cmd, &opts, "raw or core")
	return cmd
}

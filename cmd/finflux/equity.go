package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/equity"
)

func equityCmd(a *application) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equity",
		Short: "Stock prices, statements, filings and company data",
	}
	eq := func() *equity.Service { return a.svc.Equity }

	cmd.AddCommand(
		equityTimeseriesCmd(a),
		equityStatementCmd(a),
		argModeCmd(a, "realtime [ticker]", "Latest traded price", display.Pretty,
			func() modeRun { return eq().Realtime }),
		argModeCmd(a, "quote [ticker]", "Daily quote with ranges, returns and averages", display.Pretty,
			func() modeRun { return eq().Quote }),
		argModeCmd(a, "info [ticker]", "Company profile, officers and calendar", display.Pretty,
			func() modeRun { return eq().Info }),
		argModeCmd(a, "news [ticker]", "Recent headlines", display.Pretty,
			func() modeRun { return eq().News }),
		argModeCmd(a, "estimates [ticker]", "Analyst estimates and price targets", display.Table,
			func() modeRun { return eq().AnalystEstimates }),
		argModeCmd(a, "dividend [ticker]", "Dividend history", display.Table,
			func() modeRun { return eq().Dividend }),
		argModeCmd(a, "split [ticker]", "Split history", display.Table,
			func() modeRun { return eq().Split }),
		argModeCmd(a, "stats [ticker]", "Financial ratios per fiscal year with MRQ and TTM", display.Table,
			func() modeRun { return eq().Stats }),
		equityFilingsCmd(a),
		equityEPSCmd(a),
	)
	return cmd
}

func equityTimeseriesCmd(a *application) *cobra.Command {
	var opts equity.TimeseriesOptions
	cmd := &cobra.Command{
		Use:   "timeseries [ticker]",
		Short: "Historical OHLCV prices or returns",
		Example: `  finflux equity timeseries AAPL --period 1y --data close --display line
  finflux equity timeseries MSFT --start 2020-01-01 --calculation "log return"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, &opts, func(o *equity.TimeseriesOptions) string { return o.Display },
				func(ctx context.Context, o equity.TimeseriesOptions) (display.Result, error) {
					return a.svc.Equity.Timeseries(ctx, args[0], o)
				})
		},
	}
	periodFlags(cmd, &opts.Period, &opts.Interval, &opts.Start, &opts.End)
	cmd.Flags().StringVar(&opts.Data, "data", "", "open, high, low, close, volume or all")
	cmd.Flags().StringVar(&opts.Calculation, "calculation", "", "price, \"simple return\" or \"log return\"")
	displayFlag(cmd, &opts.Display)
	return cmd
}

func equityStatementCmd(a *application) *cobra.Command {
	var opts equity.StatementOptions
	cmd := &cobra.Command{
		Use:     "statement [ticker]",
		Short:   "Income statement, balance sheet or cash flow",
		Example: `  finflux equity statement AAPL --statement balance --interval quarter --display table`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a, cmd, &opts, func(o *equity.StatementOptions) string { return o.Display },
				func(ctx context.Context, o equity.StatementOptions) (display.Result, error) {
					return a.svc.Equity.Statement(ctx, args[0], o)
				})
		},
	}
	cmd.Flags().StringVar(&opts.Statement, "statement", "", "income, balance, cash or all")
	cmd.Flags().StringVar(&opts.Currency, "currency", "", "convert figures to this currency code")
	cmd.Flags().StringVar(&opts.Unit, "unit", "", "thousand, million, billion or raw")
	cmd.Flags().BoolVar(&opts.Decimal, "decimal", false, "keep two decimals instead of rounding to integers")
	cmd.Flags().StringVar(&opts.Interval, "interval", "", "annual or quarter")
	displayFlag(cmd, &opts.Display)
	return cmd
}

func equityFilingsCmd(a *application) *cobra.Command {
	var form, mode string
	cmd := &cobra.Command{
		Use:   "filings [ticker]",
		Short: "SEC EDGAR filings, optionally of one form type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.Equity.Filings(cmd.Context(), args[0], form, mode)
			if err != nil {
				return err
			}
			return a.show(cmd, mode, res)
		},
	}
	cmd.Flags().StringVar(&form, "form", "", "form type, e.g. 10-K")
	cmd.Flags().StringVar(&mode, "display", display.Table, "json or table")
	return cmd
}

func equityEPSCmd(a *application) *cobra.Command {
	var interval, mode string
	cmd := &cobra.Command{
		Use:   "eps [ticker]",
		Short: "Reported earnings per share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.Equity.EPSTimeseries(cmd.Context(), args[0], interval, mode)
			if err != nil {
				return err
			}
			return a.show(cmd, mode, res)
		},
	}
	cmd.Flags().StringVar(&interval, "interval", "annual", "annual or quarter")
	cmd.Flags().StringVar(&mode, "display", display.Table, "json, table or bar")
	return cmd
}

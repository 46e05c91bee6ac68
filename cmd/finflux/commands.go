package main

import (
	"context"

	"github.com/creasty/defaults"
	"github.com/spf13/cobra"

	"github.com/seenimoa/finflux/internal/display"
)

// modeRun is an operation that takes one positional argument and a display
// mode.
type modeRun func(ctx context.Context, arg, mode string) (display.Result, error)

// argModeCmd builds a command around an operation that takes a single
// positional argument and a display mode. svc resolves the operation once
// the application is initialised.
func argModeCmd(a *application, use, short, def string, svc func() modeRun) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := svc()(cmd.Context(), args[0], mode)
			if err != nil {
				return err
			}
			return a.show(cmd, mode, res)
		},
	}
	cmd.Flags().StringVar(&mode, "display", def, "output mode")
	return cmd
}

// displayFlag registers --display bound to an option field. An empty value
// leaves the operation's own default in place.
func displayFlag(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVar(p, "display", "", "output mode (default depends on the command)")
}

// periodFlags registers the --period, --interval, --start and --end window
// flags shared by the price history commands.
func periodFlags(cmd *cobra.Command, period, interval, start, end *string) {
	cmd.Flags().StringVar(period, "period", "", "lookback period, e.g. 1mo, 1y, 5y, ytd, max")
	cmd.Flags().StringVar(interval, "interval", "", "bar interval, e.g. 1d, 1wk, 1mo")
	cmd.Flags().StringVar(start, "start", "", "start date YYYY-MM-DD (overrides --period)")
	cmd.Flags().StringVar(end, "end", "", "end date YYYY-MM-DD")
}

// run applies the option defaults, calls op and renders its result in the
// resolved display mode.
func run[T any](a *application, cmd *cobra.Command, opts *T, mode func(*T) string, op func(context.Context, T) (display.Result, error)) error {
	if err := defaults.Set(opts); err != nil {
		return err
	}
	res, err := op(cmd.Context(), *opts)
	if err != nil {
		return err
	}
	return a.show(cmd, mode(opts), res)
}

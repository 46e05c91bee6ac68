// finflux fetches equity, forex, bond, crypto and macroeconomic data from
// public market-data APIs and renders it as JSON, tables, charts or PDF.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &application{}
	root := &cobra.Command{
		Use:   "finflux",
		Short: "Market and macroeconomic data from public finance APIs",
		Long: `finflux pulls equity, forex, sovereign bond, crypto and economic
indicator data from Yahoo Finance, FRED, BEA, BLS, IMF, SEC EDGAR,
TwelveData, Alpha Vantage and CoinGecko.

Every data command accepts --display to choose between json, table,
pretty, line, bar, candle and pdf output where the command supports it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			logLevel, _ := cmd.Flags().GetString("log-level")
			return a.init(configFile, logLevel)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level override (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.render.Save, "save", "", "also write chart or pdf output to this file")
	root.PersistentFlags().IntVar(&a.render.Width, "width", 0, "chart width in pixels")
	root.PersistentFlags().IntVar(&a.render.Height, "height", 0, "chart height in pixels")

	root.AddCommand(versionCmd())
	root.AddCommand(dataCommands(a)...)
	root.AddCommand(serveCmd(a))
	root.AddCommand(statusCmd(a))
	root.AddCommand(configCmd(a))
	root.AddCommand(watchCmd(a))
	return root
}

// dataCommands returns the asset-class command groups. watch builds a
// fresh set for every job run so flag values never leak between runs.
func dataCommands(a *application) []*cobra.Command {
	return []*cobra.Command{
		equityCmd(a),
		forexCmd(a),
		bondCmd(a),
		indicatorCmd(a),
		econCmd(a),
		cryptoCmd(a),
	}
}

// --- Version Command ---

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "finflux %s\n", version)
			fmt.Fprintf(out, "  commit:  %s\n", commit)
			fmt.Fprintf(out, "  built:   %s\n", date)
		},
	}
}

// --- Status Command ---

func statusCmd(a *application) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration and API key status",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg := a.cfg
			fmt.Fprintln(out, "═══════════════════════════════════════")
			fmt.Fprintln(out, "  finflux: System Status")
			fmt.Fprintln(out, "═══════════════════════════════════════")
			fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
			fmt.Fprintf(out, "  API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
			fmt.Fprintf(out, "  HTTP Timeout:  %s\n", cfg.HTTP.Timeout)
			fmt.Fprintf(out, "  Log Level:     %s (%s)\n", cfg.Logging.Level, cfg.Logging.Format)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "  API Keys:")
			for _, k := range statusLines(cfg) {
				fmt.Fprintln(out, k)
			}
			fmt.Fprintln(out, "═══════════════════════════════════════")
			return nil
		},
	}
}

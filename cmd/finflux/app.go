package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/finflux/api"
	"github.com/seenimoa/finflux/internal/bond"
	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/crypto"
	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/econ"
	"github.com/seenimoa/finflux/internal/equity"
	"github.com/seenimoa/finflux/internal/forex"
	"github.com/seenimoa/finflux/internal/indicator"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/logger"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/internal/providers"
)

// application holds everything a command needs once the configuration is
// loaded. Commands capture the pointer at construction and read it when
// they run.
type application struct {
	cfg     *config.Config
	log     zerolog.Logger
	closer  io.Closer
	metrics *prometheus.Registry
	svc     api.Services
	render  display.Options
}

// init loads the configuration and wires providers and services.
func (a *application) init(configFile, logLevel string) error {
	var err error
	if configFile != "" {
		a.cfg, err = config.LoadFromFile(configFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		a.cfg.Logging.Level = logLevel
	}

	a.log, a.closer, err = logger.New(logger.Config{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		Output: a.cfg.Logging.Output,
	})
	if err != nil {
		return err
	}

	a.metrics = prometheus.NewRegistry()
	a.metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	client := infra.NewClient(infra.ClientOptions{
		Timeout:   a.cfg.HTTP.Timeout,
		UserAgent: a.cfg.HTTP.UserAgent,
		Logger:    a.log,
		Metrics:   infra.NewMetrics(a.metrics),
	})

	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg, a.cfg, client); err != nil {
		return fmt.Errorf("register providers: %w", err)
	}
	src := datasource.New(reg)
	a.svc = api.Services{
		Equity:    equity.New(src),
		Forex:     forex.New(src),
		Bond:      bond.New(src),
		Indicator: indicator.New(src),
		Econ:      econ.New(src),
		Crypto:    crypto.New(src),
		Providers: reg,
	}
	a.log.Debug().Int("providers", len(reg.List())).Msg("providers registered")
	return nil
}

func (a *application) close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// show renders res to the command's output.
func (a *application) show(cmd *cobra.Command, mode string, res display.Result) error {
	return display.Render(cmd.OutOrStdout(), mode, res, a.render)
}

// statusLines formats one line per key for the status command.
func statusLines(cfg *config.Config) []string {
	keys := config.CheckAPIKeys(cfg)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		status := "❌ not set"
		if k.IsSet {
			status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
		}
		lines = append(lines, fmt.Sprintf("    %-25s %s", k.Name+":", status))
	}
	return lines
}

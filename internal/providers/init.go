// Package providers constructs every concrete data provider from the
// configuration and registers it with a provider registry.
package providers

import (
	"fmt"
	"sort"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/internal/providers/alphavantage"
	"github.com/seenimoa/finflux/internal/providers/bea"
	"github.com/seenimoa/finflux/internal/providers/bls"
	"github.com/seenimoa/finflux/internal/providers/coingecko"
	"github.com/seenimoa/finflux/internal/providers/fmp"
	"github.com/seenimoa/finflux/internal/providers/fred"
	"github.com/seenimoa/finflux/internal/providers/imf"
	"github.com/seenimoa/finflux/internal/providers/investing"
	"github.com/seenimoa/finflux/internal/providers/sec"
	"github.com/seenimoa/finflux/internal/providers/twelvedata"
	"github.com/seenimoa/finflux/internal/providers/yfinance"
)

// RegisterAllTo creates every provider and registers it with reg.
// Providers are registered even when their key is unset; fetchers that need
// the key report a MissingConfigurationError when called, and `status`
// shows the key as unset.
func RegisterAllTo(reg *provider.Registry, cfg *config.Config, client *infra.Client) error {
	entries := []struct {
		p     provider.Provider
		creds map[string]string
	}{
		// --- Market data (free, no API key) ---
		{yfinance.New(cfg, client), nil},
		{investing.New(cfg, client), nil},
		{imf.New(cfg, client), nil},

		// --- Keyed ---
		{fred.New(cfg, client), map[string]string{"api_key": cfg.Keys.FRED}},
		{twelvedata.New(cfg, client), map[string]string{"api_key": cfg.Keys.TwelveData}},
		{alphavantage.New(cfg, client), map[string]string{"api_key": cfg.Keys.AlphaVantage}},
		{coingecko.New(cfg, client), map[string]string{"api_key": cfg.Keys.CoinGecko}},
		{bea.New(cfg, client), map[string]string{"user_id": cfg.Keys.BEA}},
		{bls.New(cfg, client), map[string]string{"registration_key": cfg.Keys.BLS}},
		{sec.New(cfg, client), map[string]string{"email": cfg.Email}},

		// --- Fallbacks (registered after the primary for each model) ---
		{fmp.New(cfg, client), map[string]string{"api_key": cfg.Keys.FMP}},
	}

	for _, e := range entries {
		if err := e.p.Init(e.creds); err != nil {
			return err
		}
		if err := reg.Register(e.p); err != nil {
			return err
		}
	}
	return applyPreferences(reg, cfg.Providers)
}

// applyPreferences makes each configured provider the default of its model.
func applyPreferences(reg *provider.Registry, prefs map[string]string) error {
	names := make([]string, 0, len(prefs))
	for name := range prefs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		model, ok := provider.ParseModel(name)
		if !ok {
			return fmt.Errorf("providers: unknown model %q", name)
		}
		if err := reg.SetDefault(model, prefs[name]); err != nil {
			return fmt.Errorf("providers: %s: %w", name, err)
		}
	}
	return nil
}

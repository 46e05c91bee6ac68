package providers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
)

func newRegistry(t *testing.T, cfg *config.Config) *provider.Registry {
	t.Helper()
	reg := provider.NewRegistry()
	if err := RegisterAllTo(reg, cfg, infra.NewClient(infra.ClientOptions{})); err != nil {
		t.Fatalf("RegisterAllTo: %v", err)
	}
	return reg
}

func TestRegisterAllTo(t *testing.T) {
	reg := newRegistry(t, config.Default())

	want := []string{"alphavantage", "bea", "bls", "coingecko", "fmp", "fred", "imf", "investing", "sec", "twelvedata", "yfinance"}
	infos := reg.List()
	if len(infos) != len(want) {
		t.Fatalf("expected %d providers, got %d", len(want), len(infos))
	}
	for i, info := range infos {
		if info.Name != want[i] {
			t.Errorf("provider %d: got %s, want %s", i, info.Name, want[i])
		}
	}
}

func TestRegisterAllToModelCoverage(t *testing.T) {
	reg := newRegistry(t, config.Default())

	coverage := reg.ModelCoverage()
	for _, m := range provider.AllModels() {
		if len(coverage[m]) == 0 {
			t.Errorf("model %s has no provider", m)
		}
	}

	// Yahoo is the primary profile source, FMP the fallback.
	if def, _ := reg.DefaultProvider(provider.ModelProfile); def != "yfinance" {
		t.Errorf("profile default: got %s", def)
	}
	if got := reg.ProvidersFor(provider.ModelProfile); len(got) != 2 || got[1] != "fmp" {
		t.Errorf("profile providers: got %v", got)
	}
}

func TestProviderPreferences(t *testing.T) {
	cfg := config.Default()
	cfg.Providers = map[string]string{"profile": "fmp"}
	reg := newRegistry(t, cfg)

	if def, _ := reg.DefaultProvider(provider.ModelProfile); def != "fmp" {
		t.Errorf("profile default: got %s", def)
	}
	if def, _ := reg.DefaultProvider(provider.ModelChart); def != "yfinance" {
		t.Errorf("chart default: got %s", def)
	}
}

func TestProviderPreferencesRejected(t *testing.T) {
	tests := []struct {
		name  string
		prefs map[string]string
		want  string
	}{
		{"unknown model", map[string]string{"quotes": "yfinance"}, `unknown model "quotes"`},
		{"unknown provider", map[string]string{"profile": "nope"}, "nope"},
		{"unsupported model", map[string]string{"ifs": "fred"}, "fred"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Providers = tt.prefs
			err := RegisterAllTo(provider.NewRegistry(), cfg, infra.NewClient(infra.ClientOptions{}))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestUnsetKeyReportedAtFetchTime(t *testing.T) {
	cfg := config.Default()
	cfg.Keys.FRED = ""
	reg := newRegistry(t, cfg)

	_, err := reg.Fetch(context.Background(), provider.ModelFredSeries, provider.QueryParams{
		provider.ParamSymbol: "GDP",
	})
	var mc *provider.MissingConfigurationError
	if !errors.As(err, &mc) {
		t.Fatalf("expected MissingConfigurationError, got %v", err)
	}
	if mc.Setting != "FINFLUX_KEYS_FRED" {
		t.Errorf("setting: got %s", mc.Setting)
	}
}

// Package fmp implements the Financial Modeling Prep (FMP) data provider.
// It serves as the fallback source for company profiles when Yahoo Finance
// is unavailable.
//
// Free tier: 250 requests/day.
// Docs: https://financialmodelingprep.com/developer/docs
package fmp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
)

const (
	providerName = "fmp"
	credAPIKey   = "api_key"
)

// Provider implements provider.Provider for FMP.
type Provider struct {
	provider.BaseProvider
	client  *infra.Client
	baseURL string
}

// New creates a new FMP provider and registers all fetchers.
func New(cfg *config.Config, client *infra.Client) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Financial Modeling Prep - company profiles",
			"https://financialmodelingprep.com",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "FMP API key from financialmodelingprep.com",
					Required:    true,
					EnvVar:      config.EnvVar("keys.fmp"),
				},
			},
		),
		client:  client,
		baseURL: cfg.URLs.FMP,
	}

	// --- Equity / Company ---
	p.RegisterFetcher(newProfileFetcher(p, infra.NewRateLimiter(cfg.HTTP.RateLimit, time.Second)))
	return p
}

// Ping checks connectivity to FMP.
func (p *Provider) Ping(ctx context.Context) error {
	var out []fmpProfile
	if err := p.fetchJSON(ctx, "v3/profile/AAPL", &out); err != nil {
		return fmt.Errorf("fmp ping: %w", err)
	}
	return nil
}

// --- Shared helpers ---

// fetchJSON performs a GET on path with the API key appended.
func (p *Provider) fetchJSON(ctx context.Context, path string, dest any) error {
	key, err := p.RequireCredential(credAPIKey)
	if err != nil {
		return err
	}
	u := p.baseURL + path + "?" + url.Values{"apikey": {key}}.Encode()
	if err := p.client.GetJSON(ctx, providerName, u, nil, dest); err != nil {
		return fmt.Errorf("fmp %s: %w", path, err)
	}
	return nil
}

// newResult creates a FetchResult.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

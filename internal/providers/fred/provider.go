// Package fred implements the FRED (Federal Reserve Economic Data) provider.
// FRED provides free access to over 800,000 economic time series from dozens
// of sources via the FRED API.
//
// Requires a free API key from https://fred.stlouisfed.org/docs/api/api_key.html
// Rate limit: 120 requests/minute.
// Docs: https://fred.stlouisfed.org/docs/api/fred/
package fred

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
	providerName = "fred"
	credAPIKey   = "api_key"
)

// Provider implements provider.Provider for FRED.
type Provider struct {
	provider.BaseProvider
	client  *infra.Client
	baseURL string
}

// New creates a new FRED provider and registers its fetchers. The API key is
// supplied through Init.
func New(cfg *config.Config, client *infra.Client) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Federal Reserve Economic Data - 800K+ economic time series",
			"https://fred.stlouisfed.org",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "FRED API key from fred.stlouisfed.org",
					Required:    true,
					EnvVar:      config.EnvVar("keys.fred"),
				},
			},
		),
		client:  client,
		baseURL: cfg.URLs.FRED,
	}

	// 120 requests per minute.
	lim := infra.NewRateLimiter(120, time.Minute)
	p.RegisterFetcher(newSeriesFetcher(p, lim))
	return p
}

// Ping checks connectivity to the FRED API.
func (p *Provider) Ping(ctx context.Context) error {
	_, err := p.observations(ctx, url.Values{"series_id": {"GDP"}, "limit": {"1"}})
	if err != nil {
		return fmt.Errorf("fred ping: %w", err)
	}
	return nil
}

// observations calls series/observations with the stored key.
func (p *Provider) observations(ctx context.Context, q url.Values) (*observationsResponse, error) {
	key, err := p.RequireCredential(credAPIKey)
	if err != nil {
		return nil, err
	}
	q.Set("api_key", key)
	q.Set("file_type", "json")

	var resp observationsResponse
	if err := p.client.GetJSON(ctx, providerName, p.baseURL+"series/observations?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("fred: %s", resp.ErrorMessage)
	}
	return &resp, nil
}

// newResult creates a FetchResult with the current timestamp.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

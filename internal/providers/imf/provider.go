// Package imf implements an IMF data provider.
// Data is sourced from the International Financial Statistics (IFS) database
// through the SDMX JSON CompactData service. No API key required.
package imf

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
)

const providerName = "imf"

// Provider is the IMF data provider.
type Provider struct {
	provider.BaseProvider
	client  *infra.Client
	baseURL string
}

// New creates a new IMF provider and registers all fetchers.
func New(cfg *config.Config, client *infra.Client) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"IMF - International Financial Statistics via SDMX JSON (free, no API key)",
			"https://data.imf.org",
			nil,
		),
		client:  client,
		baseURL: cfg.URLs.IMF,
	}
	// The SDMX service throttles at roughly 10 requests per 5 seconds.
	p.RegisterFetcher(newIFSFetcher(p, infra.NewRateLimiter(10, 5*time.Second)))
	return p
}

// Ping verifies connectivity to the SDMX service.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.compactData(ctx, "Q", "US", "NGDP_SA_XDC", ""); err != nil {
		return fmt.Errorf("imf ping: %w", err)
	}
	return nil
}

// newResult wraps data in a FetchResult.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// Package sec implements the SEC EDGAR data provider.
// SEC EDGAR provides free access to company filings and CIK mappings via
// REST APIs.
//
// No API key required. Every request must carry a User-Agent naming a
// contact email, per SEC policy.
// Docs: https://www.sec.gov/edgar/sec-api-documentation
// Rate limit: 10 requests/second per user-agent.
package sec

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
)

const (
	providerName = "sec"
	credEmail    = "email"
)

// Provider implements provider.Provider for SEC EDGAR.
type Provider struct {
	provider.BaseProvider
	client  *infra.Client
	wwwURL  string // www.sec.gov
	dataURL string // data.sec.gov
}

// New creates a new SEC provider and registers all fetchers.
func New(cfg *config.Config, client *infra.Client) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"SEC EDGAR - US securities filings and CIK mappings",
			"https://www.sec.gov/edgar",
			[]provider.ProviderCredential{
				{
					Name:        credEmail,
					Description: "Contact email sent as the EDGAR User-Agent",
					Required:    true,
					EnvVar:      config.EnvVar("email"),
				},
			},
		),
		client:  client,
		wwwURL:  cfg.URLs.SEC,
		dataURL: cfg.URLs.SECData,
	}

	lim := infra.NewRateLimiter(10, time.Second)
	p.RegisterFetcher(newCompanyTickersFetcher(p, lim))
	p.RegisterFetcher(newSubmissionsFetcher(p, lim))
	return p
}

// Ping checks connectivity to SEC EDGAR.
func (p *Provider) Ping(ctx context.Context) error {
	var resp submissionsResponse
	if err := p.getJSON(ctx, p.dataURL+"submissions/CIK0000320193.json", &resp); err != nil { // Apple
		return fmt.Errorf("sec ping: %w", err)
	}
	return nil
}

// --- Shared helpers ---

// getJSON performs a GET with the contact User-Agent and decodes JSON.
func (p *Provider) getJSON(ctx context.Context, rawURL string, dest any) error {
	email, err := p.RequireCredential(credEmail)
	if err != nil {
		return err
	}
	headers := map[string]string{"User-Agent": email}
	return p.client.GetJSON(ctx, providerName, rawURL, headers, dest)
}

// PadCIK left-pads a CIK with zeros to the 10 digits EDGAR paths use.
func PadCIK(cik string) string {
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}

// newResult creates a FetchResult with the current timestamp.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

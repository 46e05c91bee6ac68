// Package twelvedata implements the Twelve Data provider.
// Twelve Data serves real-time prices and latest-session quotes for
// equities, currency pairs ("EUR/USD") and crypto.
//
// Requires an API key from https://twelvedata.com/account/api-keys
// Docs: https://twelvedata.com/docs
// Rate limit: 8 requests/minute on the free plan.
package twelvedata

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
)

const (
	providerName = "twelvedata"
	credAPIKey   = "api_key"
)

// Provider implements provider.Provider for Twelve Data.
type Provider struct {
	provider.BaseProvider
	client  *infra.Client
	baseURL string
}

// New creates a new Twelve Data provider and registers its fetchers.
func New(cfg *config.Config, client *infra.Client) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Twelve Data - real-time prices for stocks, forex and crypto",
			"https://twelvedata.com",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Twelve Data API key",
					Required:    true,
					EnvVar:      config.EnvVar("keys.twelvedata"),
				},
			},
		),
		client:  client,
		baseURL: cfg.URLs.TwelveData,
	}

	lim := infra.NewRateLimiter(8, time.Minute)
	p.RegisterFetcher(newPriceFetcher(p, lim))
	p.RegisterFetcher(newQuoteFetcher(p, lim))
	return p
}

// Ping checks connectivity and the key.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.call(ctx, "price", "SPY"); err != nil {
		return fmt.Errorf("twelvedata ping: %w", err)
	}
	return nil
}

// call requests endpoint for symbol. Twelve Data reports errors with a 200
// status and {"status":"error","message":...}.
func (p *Provider) call(ctx context.Context, endpoint, symbol string) (gjson.Result, error) {
	key, err := p.RequireCredential(credAPIKey)
	if err != nil {
		return gjson.Result{}, err
	}
	q := url.Values{"symbol": {symbol}, "apikey": {key}}
	body, err := p.client.DoGet(ctx, providerName, p.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return gjson.Result{}, err
	}
	res := gjson.ParseBytes(body)
	if res.Get("status").String() == "error" {
		return gjson.Result{}, fmt.Errorf("twelvedata %s %s: %s", endpoint, symbol, res.Get("message").String())
	}
	return res, nil
}

// newResult creates a FetchResult with the current timestamp.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

// Package yfinance implements the Yahoo Finance data provider.
// It wraps Yahoo Finance's public APIs (v8 chart, v1 quoteType, v10
// quoteSummary, fundamentals-timeseries and the headline RSS feed) into the
// standard provider/fetcher framework.
//
// Yahoo Finance is a free, no-API-key provider covering equities, indices,
// currencies and sovereign yields.
package yfinance

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
)

const providerName = "yfinance"

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	provider.BaseProvider
	api *api
}

// api carries what every fetcher needs to reach Yahoo.
type api struct {
	client *infra.Client
	query1 string
	query2 string
	feeds  string
}

// New creates a new YFinance provider and registers all fetchers.
func New(cfg *config.Config, client *infra.Client) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance - free global market data",
			"https://finance.yahoo.com",
			nil, // no credentials required
		),
		api: &api{
			client: client,
			query1: cfg.URLs.YahooQuery1,
			query2: cfg.URLs.YahooQuery2,
			feeds:  cfg.URLs.YahooFeeds,
		},
	}
	lim := infra.NewRateLimiter(cfg.HTTP.RateLimit, time.Second)

	// --- Prices ---
	p.RegisterFetcher(newChartFetcher(p.api, lim))
	p.RegisterFetcher(newQuoteTypeFetcher(p.api, lim))

	// --- Company ---
	p.RegisterFetcher(newFundamentalsFetcher(p.api, lim))
	p.RegisterFetcher(newProfileFetcher(p.api, lim))
	p.RegisterFetcher(newCalendarFetcher(p.api, lim))
	p.RegisterFetcher(newEstimatesFetcher(p.api, lim))

	// --- News ---
	p.RegisterFetcher(newNewsFetcher(p.api, lim))

	return p
}

// Ping checks connectivity to Yahoo Finance.
func (p *Provider) Ping(ctx context.Context) error {
	_, err := p.api.client.DoGet(ctx, providerName, p.api.query1+"v1/finance/quoteType/SPY", jsonHeaders())
	if err != nil {
		return fmt.Errorf("yfinance ping: %w", err)
	}
	return nil
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

func (a *api) getJSON(ctx context.Context, rawURL string, dest any) error {
	return a.client.GetJSON(ctx, providerName, rawURL, jsonHeaders(), dest)
}

func (a *api) get(ctx context.Context, rawURL string) ([]byte, error) {
	return a.client.DoGet(ctx, providerName, rawURL, jsonHeaders())
}

// escape makes a symbol safe for a path segment ("^VIX", "USDEUR=X").
func escape(symbol string) string {
	return url.PathEscape(strings.TrimSpace(symbol))
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// newResult creates a FetchResult with the current timestamp.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}

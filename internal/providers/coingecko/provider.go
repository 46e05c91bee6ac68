// Package coingecko implements the CoinGecko provider for crypto prices.
//
// Requires a CoinGecko Pro API key sent in the x-cg-pro-api-key header.
// Docs: https://docs.coingecko.com/reference/introduction
package coingecko

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

const (
	providerName = "coingecko"
	credAPIKey   = "api_key"
)

// Provider implements provider.Provider for CoinGecko.
type Provider struct {
	provider.BaseProvider
	client  *infra.Client
	baseURL string
}

// New creates a new CoinGecko provider and registers its fetchers.
func New(cfg *config.Config, client *infra.Client) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"CoinGecko - cryptocurrency prices",
			"https://www.coingecko.com",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "CoinGecko Pro API key",
					Required:    true,
					EnvVar:      config.EnvVar("keys.coingecko"),
				},
			},
		),
		client:  client,
		baseURL: cfg.URLs.CoinGecko,
	}
	lim := infra.NewRateLimiter(cfg.HTTP.RateLimit, time.Second)
	p.RegisterFetcher(newPriceFetcher(p, lim))
	p.RegisterFetcher(newChartFetcher(p, lim))
	return p
}

// Ping checks connectivity and the key.
func (p *Provider) Ping(ctx context.Context) error {
	var out map[string]any
	if err := p.getJSON(ctx, "ping", nil, &out); err != nil {
		return fmt.Errorf("coingecko ping: %w", err)
	}
	return nil
}

func (p *Provider) getJSON(ctx context.Context, path string, q url.Values, dest any) error {
	key, err := p.RequireCredential(credAPIKey)
	if err != nil {
		return err
	}
	u := p.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return p.client.GetJSON(ctx, providerName, u, map[string]string{"x-cg-pro-api-key": key}, dest)
}

// ---- CoinPrice fetcher ----

type priceFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newPriceFetcher(p *Provider, lim *infra.RateLimiter) *priceFetcher {
	return &priceFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelCoinPrice,
			"Current price of a coin in a quote currency",
			[]string{provider.ParamSymbol, provider.ParamCurrency},
			nil,
			lim,
		),
		p: p,
	}
}

func (f *priceFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	coin := strings.ToLower(params[provider.ParamSymbol])
	vs := strings.ToLower(params[provider.ParamCurrency])

	var resp map[string]map[string]float64
	q := url.Values{"ids": {coin}, "vs_currencies": {vs}}
	if err := f.p.getJSON(ctx, "simple/price", q, &resp); err != nil {
		return nil, err
	}
	price := series.NA
	if v, ok := resp[coin][vs]; ok {
		price = series.Val(v)
	}
	if !price.Valid {
		return nil, fmt.Errorf("coingecko: no %s price for %q", vs, coin)
	}
	return newResult(&models.RealtimePrice{Symbol: coin, Price: price, Currency: strings.ToUpper(vs)}), nil
}

// ---- CoinChart fetcher ----

type chartFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newChartFetcher(p *Provider, lim *infra.RateLimiter) *chartFetcher {
	return &chartFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelCoinChart,
			"Daily price history of a coin",
			[]string{provider.ParamSymbol, provider.ParamCurrency},
			[]string{"days"},
			lim,
		),
		p: p,
	}
}

type marketChartResponse struct {
	Prices [][2]float64 `json:"prices"` // [unix ms, price]
}

func (f *chartFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	coin := strings.ToLower(params[provider.ParamSymbol])
	days := params["days"]
	if days == "" {
		days = "max"
	}
	q := url.Values{
		"vs_currency": {strings.ToLower(params[provider.ParamCurrency])},
		"days":        {days},
		"interval":    {"daily"},
	}
	var resp marketChartResponse
	if err := f.p.getJSON(ctx, "coins/"+url.PathEscape(coin)+"/market_chart", q, &resp); err != nil {
		return nil, err
	}

	s := series.Series{Name: coin, Points: make([]series.Point, 0, len(resp.Prices))}
	for _, pr := range resp.Prices {
		t := time.UnixMilli(int64(pr[0])).UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		s.Points = append(s.Points, series.Point{Date: day, Value: series.Val(pr[1])})
	}
	// The final entry is the live price and may share a day with the last close.
	return newResult(s.Sort()), nil
}

func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{Data: data, FetchedAt: time.Now()}
}

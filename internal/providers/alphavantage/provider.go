// Package alphavantage implements the Alpha Vantage provider, used for
// reported and estimated earnings per share.
//
// Requires a free API key from https://www.alphavantage.co/support/#api-key
// Rate limit: 5 requests/minute on the free plan.
package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

const (
	providerName = "alphavantage"
	credAPIKey   = "api_key"
)

// Provider implements provider.Provider for Alpha Vantage.
type Provider struct {
	provider.BaseProvider
	client  *infra.Client
	baseURL string // ends with "query?function="
}

// New creates a new Alpha Vantage provider and registers its fetchers.
func New(cfg *config.Config, client *infra.Client) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Alpha Vantage - earnings history and estimates",
			"https://www.alphavantage.co",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Alpha Vantage API key",
					Required:    true,
					EnvVar:      config.EnvVar("keys.alphavantage"),
				},
			},
		),
		client:  client,
		baseURL: cfg.URLs.AlphaVantage,
	}
	p.RegisterFetcher(newEarningsFetcher(p, infra.NewRateLimiter(5, time.Minute)))
	return p
}

// Ping checks connectivity and the key.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.call(ctx, "EARNINGS", url.Values{"symbol": {"IBM"}}); err != nil {
		return fmt.Errorf("alphavantage ping: %w", err)
	}
	return nil
}

// call runs function with q. Alpha Vantage answers 200 with an
// "Error Message", "Note" or "Information" field on failure.
func (p *Provider) call(ctx context.Context, function string, q url.Values) (gjson.Result, error) {
	key, err := p.RequireCredential(credAPIKey)
	if err != nil {
		return gjson.Result{}, err
	}
	q.Set("apikey", key)
	body, err := p.client.DoGet(ctx, providerName, p.baseURL+function+"&"+q.Encode(), nil)
	if err != nil {
		return gjson.Result{}, err
	}
	res := gjson.ParseBytes(body)
	for _, field := range []string{"Error Message", "Note", "Information"} {
		if msg := res.Get(gjson.Escape(field)); msg.Exists() {
			return gjson.Result{}, fmt.Errorf("alphavantage %s: %s", function, msg.String())
		}
	}
	return res, nil
}

// ---- Earnings fetcher ----

type earningsFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newEarningsFetcher(p *Provider, lim *infra.RateLimiter) *earningsFetcher {
	return &earningsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelEarnings,
			"Annual and quarterly reported EPS with estimates and surprises",
			[]string{provider.ParamSymbol},
			nil,
			lim,
		),
		p: p,
	}
}

func (f *earningsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	symbol := params[provider.ParamSymbol]
	res, err := f.p.call(ctx, "EARNINGS", url.Values{"symbol": {symbol}})
	if err != nil {
		return nil, err
	}
	return &provider.FetchResult{Data: parseEarnings(symbol, res), FetchedAt: time.Now()}, nil
}

// parseEarnings orders both histories oldest first.
func parseEarnings(symbol string, res gjson.Result) *models.Earnings {
	out := &models.Earnings{Symbol: symbol}
	res.Get("annualEarnings").ForEach(func(_, e gjson.Result) bool {
		d, ok := date(e.Get("fiscalDateEnding"))
		if ok {
			out.Annual = append(out.Annual, models.AnnualEPS{
				FiscalDateEnding: d,
				ReportedEPS:      series.Parse(e.Get("reportedEPS").String()),
			})
		}
		return true
	})
	res.Get("quarterlyEarnings").ForEach(func(_, e gjson.Result) bool {
		d, ok := date(e.Get("fiscalDateEnding"))
		if ok {
			reported, _ := date(e.Get("reportedDate"))
			out.Quarterly = append(out.Quarterly, models.QuarterlyEPS{
				FiscalDateEnding:   d,
				ReportedDate:       reported,
				ReportedEPS:        series.Parse(e.Get("reportedEPS").String()),
				EstimatedEPS:       series.Parse(e.Get("estimatedEPS").String()),
				Surprise:           series.Parse(e.Get("surprise").String()),
				SurprisePercentage: series.Parse(e.Get("surprisePercentage").String()),
			})
		}
		return true
	})
	sort.Slice(out.Annual, func(i, j int) bool {
		return out.Annual[i].FiscalDateEnding.Before(out.Annual[j].FiscalDateEnding)
	})
	sort.Slice(out.Quarterly, func(i, j int) bool {
		return out.Quarterly[i].FiscalDateEnding.Before(out.Quarterly[j].FiscalDateEnding)
	})
	return out
}

func date(r gjson.Result) (time.Time, bool) {
	d, err := time.Parse(series.DateLayout, r.String())
	return d, err == nil
}

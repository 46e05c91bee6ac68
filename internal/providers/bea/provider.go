// Package bea implements the Bureau of Economic Analysis provider for
// National Income and Product Accounts (NIPA) tables.
//
// Requires a free UserID from https://apps.bea.gov/API/signup/
// Docs: https://apps.bea.gov/api/_pdf/bea_web_service_api_user_guide.pdf
// Rate limit: 100 requests/minute.
package bea

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

const (
	providerName = "bea"
	credUserID   = "user_id"
)

// Provider implements provider.Provider for BEA.
type Provider struct {
	provider.BaseProvider
	client  *infra.Client
	baseURL string
}

// New creates a new BEA provider and registers its fetchers.
func New(cfg *config.Config, client *infra.Client) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Bureau of Economic Analysis - US national accounts",
			"https://apps.bea.gov",
			[]provider.ProviderCredential{
				{
					Name:        credUserID,
					Description: "BEA API UserID",
					Required:    true,
					EnvVar:      config.EnvVar("keys.bea"),
				},
			},
		),
		client:  client,
		baseURL: cfg.URLs.BEA,
	}
	p.RegisterFetcher(newNIPAFetcher(p, infra.NewRateLimiter(100, time.Minute)))
	return p
}

// Ping checks connectivity and the UserID.
func (p *Provider) Ping(ctx context.Context) error {
	_, err := p.call(ctx, url.Values{"method": {"GetDataSetList"}})
	if err != nil {
		return fmt.Errorf("bea ping: %w", err)
	}
	return nil
}

// call issues a request and returns the BEAAPI.Results node. BEA reports
// failures inside a 200 response.
func (p *Provider) call(ctx context.Context, q url.Values) (gjson.Result, error) {
	key, err := p.RequireCredential(credUserID)
	if err != nil {
		return gjson.Result{}, err
	}
	q.Set("UserID", key)
	q.Set("ResultFormat", "json")
	body, err := p.client.DoGet(ctx, providerName, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return gjson.Result{}, err
	}
	res := gjson.GetBytes(body, "BEAAPI")
	for _, path := range []string{"Error.APIErrorDescription", "Results.Error.APIErrorDescription"} {
		if msg := res.Get(path); msg.Exists() {
			return gjson.Result{}, fmt.Errorf("bea: %s", msg.String())
		}
	}
	return res.Get("Results"), nil
}

// ---- NIPA fetcher ----

type nipaFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newNIPAFetcher(p *Provider, lim *infra.RateLimiter) *nipaFetcher {
	return &nipaFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelNIPA,
			"One line of a NIPA table by series code",
			[]string{provider.ParamTable, provider.ParamSymbol},
			[]string{provider.ParamFrequency},
			lim,
		),
		p: p,
	}
}

// Fetch returns the series whose SeriesCode equals "symbol" in "table".
// "frequency" is Q (default), M or A.
func (f *nipaFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	freq := params[provider.ParamFrequency]
	if freq == "" {
		freq = "Q"
	}
	if err := provider.OneOf(provider.ParamFrequency, freq, "Q", "M", "A"); err != nil {
		return nil, err
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	table, code := params[provider.ParamTable], params[provider.ParamSymbol]
	res, err := f.p.call(ctx, url.Values{
		"method":      {"GetData"},
		"DataSetName": {"NIPA"},
		"TableName":   {table},
		"Frequency":   {freq},
		"Year":        {"X"},
	})
	if err != nil {
		return nil, err
	}

	s := series.Series{Name: code}
	for _, row := range res.Get("Data").Array() {
		if row.Get("SeriesCode").String() != code {
			continue
		}
		d, ok := periodDate(row.Get("TimePeriod").String())
		if !ok {
			continue
		}
		v := series.Parse(strings.ReplaceAll(row.Get("DataValue").String(), ",", ""))
		s.Points = append(s.Points, series.Point{Date: d, Value: v})
	}
	if len(s.Points) == 0 {
		return nil, fmt.Errorf("bea: series %s not found in table %s", code, table)
	}
	return &provider.FetchResult{Data: s.Sort(), FetchedAt: time.Now()}, nil
}

// periodDate maps "2020Q1" to 2020-03-01 (the quarter's last month),
// "2020M04" to 2020-04-01 and "2020" to 2020-12-01.
func periodDate(tp string) (time.Time, bool) {
	if len(tp) < 4 {
		return time.Time{}, false
	}
	var year, n int
	switch {
	case len(tp) == 4:
		if _, err := fmt.Sscanf(tp, "%4d", &year); err != nil {
			return time.Time{}, false
		}
		n = 12
	case tp[4] == 'Q':
		if _, err := fmt.Sscanf(tp, "%4dQ%d", &year, &n); err != nil || n < 1 || n > 4 {
			return time.Time{}, false
		}
		n *= 3
	case tp[4] == 'M':
		if _, err := fmt.Sscanf(tp, "%4dM%d", &year, &n); err != nil || n < 1 || n > 12 {
			return time.Time{}, false
		}
	default:
		return time.Time{}, false
	}
	return time.Date(year, time.Month(n), 1, 0, 0, 0, 0, time.UTC), true
}

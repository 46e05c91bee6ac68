// Package bls implements the Bureau of Labor Statistics provider.
// The v2 timeseries API serves at most 20 years per request, so longer
// ranges are fetched in chunks.
//
// Requires a free registration key from https://data.bls.gov/registrationEngine/
// Rate limit: 500 queries/day, 50 series per query.
package bls

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

const (
	providerName = "bls"
	credKey      = "registration_key"

	// maxYears is the widest range one request may span.
	maxYears = 20
	// defaultYears is fetched when no start date is given.
	defaultYears = 12
)

// Provider implements provider.Provider for BLS.
type Provider struct {
	provider.BaseProvider
	client  *infra.Client
	baseURL string
	now     func() time.Time
}

// New creates a new BLS provider and registers its fetchers.
func New(cfg *config.Config, client *infra.Client) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Bureau of Labor Statistics - prices, employment and wages",
			"https://www.bls.gov",
			[]provider.ProviderCredential{
				{
					Name:        credKey,
					Description: "BLS API v2 registration key",
					Required:    true,
					EnvVar:      config.EnvVar("keys.bls"),
				},
			},
		),
		client:  client,
		baseURL: cfg.URLs.BLS,
		now:     time.Now,
	}
	p.RegisterFetcher(newSeriesFetcher(p, infra.NewRateLimiter(cfg.HTTP.RateLimit, time.Second)))
	return p
}

type request struct {
	SeriesID        []string `json:"seriesid"`
	StartYear       string   `json:"startyear"`
	EndYear         string   `json:"endyear"`
	RegistrationKey string   `json:"registrationkey"`
}

// query posts one request and returns the first series' data rows.
func (p *Provider) query(ctx context.Context, id string, startYear, endYear int) ([]gjson.Result, error) {
	key, err := p.RequireCredential(credKey)
	if err != nil {
		return nil, err
	}
	body, err := p.client.DoPost(ctx, providerName, p.baseURL+"timeseries/data/", request{
		SeriesID:        []string{id},
		StartYear:       strconv.Itoa(startYear),
		EndYear:         strconv.Itoa(endYear),
		RegistrationKey: key,
	}, nil)
	if err != nil {
		return nil, err
	}
	res := gjson.ParseBytes(body)
	if status := res.Get("status").String(); status != "REQUEST_SUCCEEDED" {
		msgs := make([]string, 0)
		for _, m := range res.Get("message").Array() {
			msgs = append(msgs, m.String())
		}
		return nil, fmt.Errorf("bls %s: %s %s", id, status, strings.Join(msgs, "; "))
	}
	return res.Get("Results.series.0.data").Array(), nil
}

// chunks splits [start, end] into ranges of at most maxYears, newest first.
func chunks(start, end int) [][2]int {
	var out [][2]int
	for hi := end; hi >= start; hi -= maxYears {
		lo := hi - maxYears + 1
		if lo < start {
			lo = start
		}
		out = append(out, [2]int{lo, hi})
	}
	return out
}

// ---- Series fetcher ----

type seriesFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newSeriesFetcher(p *Provider, lim *infra.RateLimiter) *seriesFetcher {
	return &seriesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelBLSSeries,
			"BLS time series by series id (CPI, PPI, unemployment, wages)",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate},
			lim,
		),
		p: p,
	}
}

func (f *seriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	id := params[provider.ParamSymbol]
	end := f.p.now().Year()
	start := end - defaultYears + 1
	if sd := params[provider.ParamStartDate]; sd != "" {
		t, err := time.Parse(series.DateLayout, sd)
		if err != nil {
			return nil, &provider.InvalidParameterError{Param: provider.ParamStartDate, Value: sd}
		}
		start = t.Year()
	}

	s := series.Series{Name: id}
	for _, c := range chunks(start, end) {
		if err := f.RateLimit(ctx); err != nil {
			return nil, err
		}
		rows, err := f.p.query(ctx, id, c[0], c[1])
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			d, ok := periodDate(row.Get("year").String(), row.Get("period").String())
			if !ok {
				continue
			}
			s.Points = append(s.Points, series.Point{Date: d, Value: series.Parse(row.Get("value").String())})
		}
	}
	return &provider.FetchResult{Data: s.Sort(), FetchedAt: time.Now()}, nil
}

// periodDate maps BLS periods: "M01".."M12" to the month, "Q01".."Q04" to the
// quarter's last month. Annual averages ("M13", "A01") are skipped.
func periodDate(year, period string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil || len(period) != 3 {
		return time.Time{}, false
	}
	n, err := strconv.Atoi(period[1:])
	if err != nil {
		return time.Time{}, false
	}
	switch period[0] {
	case 'M':
		if n < 1 || n > 12 {
			return time.Time{}, false
		}
	case 'Q':
		if n < 1 || n > 4 {
			return time.Time{}, false
		}
		n *= 3
	default:
		return time.Time{}, false
	}
	return time.Date(y, time.Month(n), 1, 0, 0, 0, 0, time.UTC), true
}

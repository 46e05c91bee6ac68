package fred

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

// ---- FredSeries fetcher ----

type seriesFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newSeriesFetcher(p *Provider, lim *infra.RateLimiter) *seriesFetcher {
	return &seriesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelFredSeries,
			"Observations of a FRED series by id",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamFrequency},
			lim,
		),
		p: p,
	}
}

// Fetch returns the series named by "symbol" (e.g. "UMCSENT"). "frequency"
// asks FRED to aggregate to a lower frequency ("m", "q", "a") by average.
func (f *seriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	id := params[provider.ParamSymbol]

	q := url.Values{}
	q.Set("series_id", id)
	if v := params[provider.ParamStartDate]; v != "" {
		q.Set("observation_start", v)
	}
	if v := params[provider.ParamEndDate]; v != "" {
		q.Set("observation_end", v)
	}
	if v := params[provider.ParamFrequency]; v != "" {
		q.Set("frequency", v)
		q.Set("aggregation_method", "avg")
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	resp, err := f.p.observations(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fred series %s: %w", id, err)
	}
	return newResult(toSeries(id, resp.Observations)), nil
}

// toSeries converts observations; "." and other non-numeric values are NA.
func toSeries(name string, obs []observation) series.Series {
	s := series.Series{Name: name, Points: make([]series.Point, 0, len(obs))}
	for _, o := range obs {
		d, err := time.Parse(series.DateLayout, o.Date)
		if err != nil {
			continue
		}
		s.Points = append(s.Points, series.Point{Date: d, Value: series.Parse(o.Value)})
	}
	return s.Sort()
}

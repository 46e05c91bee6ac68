package imf

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

// ---------------------------------------------------------------------------
// IFS: CompactData/IFS/{freq}.{country}.{indicator}
// e.g. Q.US.NGDP_SA_XDC (nominal GDP, seasonally adjusted, domestic currency)
//      M.JP.PCPI_IX     (consumer price index)
// ---------------------------------------------------------------------------

type ifsFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newIFSFetcher(p *Provider, lim *infra.RateLimiter) *ifsFetcher {
	return &ifsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelIFS,
			"IMF International Financial Statistics series",
			[]string{provider.ParamCountry, provider.ParamIndicator},
			[]string{provider.ParamFrequency, provider.ParamStartDate},
			lim,
		),
		p: p,
	}
}

func (f *ifsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	freq := params[provider.ParamFrequency]
	if freq == "" {
		freq = "Q"
	}
	if err := provider.OneOf(provider.ParamFrequency, freq, "A", "Q", "M"); err != nil {
		return nil, err
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	country := strings.ToUpper(params[provider.ParamCountry])
	indicator := params[provider.ParamIndicator]
	start := ""
	if sd := params[provider.ParamStartDate]; len(sd) >= 4 {
		start = sd[:4]
	}
	s, err := f.p.compactData(ctx, freq, country, indicator, start)
	if err != nil {
		return nil, fmt.Errorf("IMF IFS %s.%s.%s: %w", freq, country, indicator, err)
	}
	return newResult(s), nil
}

// compactData fetches one IFS series.
func (p *Provider) compactData(ctx context.Context, freq, country, indicator, startYear string) (series.Series, error) {
	u := fmt.Sprintf("%sCompactData/IFS/%s.%s.%s", p.baseURL, freq, country, indicator)
	if startYear != "" {
		u += "?startPeriod=" + startYear
	}
	body, err := p.client.DoGet(ctx, providerName, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return series.Series{}, err
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return series.Series{}, fmt.Errorf("decode CompactData: %w", err)
	}
	return parseCompact(doc, country+" "+indicator)
}

// parseCompact reads CompactData.DataSet.Series.Obs. The service returns a
// single object instead of an array when there is one observation, and
// omits Series entirely when the key has no data.
func parseCompact(doc any, name string) (series.Series, error) {
	raw, err := jsonpath.Get("$.CompactData.DataSet.Series.Obs", doc)
	if err != nil {
		return series.Series{}, fmt.Errorf("no observations for %s", name)
	}
	var obs []any
	switch v := raw.(type) {
	case []any:
		obs = v
	case map[string]any:
		obs = []any{v}
	default:
		return series.Series{}, fmt.Errorf("unexpected Obs node %T", raw)
	}

	s := series.Series{Name: name, Points: make([]series.Point, 0, len(obs))}
	for _, o := range obs {
		m, ok := o.(map[string]any)
		if !ok {
			continue
		}
		period, _ := m["@TIME_PERIOD"].(string)
		d, ok := periodDate(period)
		if !ok {
			continue
		}
		value, _ := m["@OBS_VALUE"].(string)
		s.Points = append(s.Points, series.Point{Date: d, Value: series.Parse(value)})
	}
	return s.Sort(), nil
}

// periodDate maps "2020-Q1" to 2020-03-01, "2020-01" to 2020-01-01 and
// "2020" to 2020-12-01.
func periodDate(tp string) (time.Time, bool) {
	var year, n int
	switch {
	case len(tp) == 4:
		if _, err := fmt.Sscanf(tp, "%4d", &year); err != nil {
			return time.Time{}, false
		}
		n = 12
	case strings.Contains(tp, "-Q"):
		if _, err := fmt.Sscanf(tp, "%4d-Q%d", &year, &n); err != nil || n < 1 || n > 4 {
			return time.Time{}, false
		}
		n *= 3
	default:
		t, err := time.Parse("2006-01", tp)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Date(year, time.Month(n), 1, 0, 0, 0, 0, time.UTC), true
}

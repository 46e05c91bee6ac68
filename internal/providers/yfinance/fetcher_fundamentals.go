package yfinance

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// fundamentalsStart is the earliest period requested from the
// fundamentals-timeseries endpoint.
var fundamentalsStart = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)

// --- Fundamentals fetcher ---

type fundamentalsFetcher struct {
	provider.BaseFetcher
	api *api
}

func newFundamentalsFetcher(a *api, lim *infra.RateLimiter) *fundamentalsFetcher {
	return &fundamentalsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelFundamentals,
			"Reported statement line items per fiscal period",
			[]string{provider.ParamSymbol, provider.ParamTypes},
			[]string{provider.ParamInterval},
			lim,
		),
		api: a,
	}
}

// Fetch expects "types" as a comma-separated list of line items
// ("TotalRevenue,NetIncome") and "interval" as annual (default) or quarterly.
func (f *fundamentalsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	interval := coalesce(params[provider.ParamInterval], "annual")
	if interval != "annual" && interval != "quarterly" {
		return nil, provider.OneOf("interval", interval, "annual", "quarterly")
	}

	items := strings.Split(params[provider.ParamTypes], ",")
	types := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			types = append(types, interval+it)
		}
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("type", strings.Join(types, ","))
	q.Set("period1", strconv.FormatInt(fundamentalsStart.Unix(), 10))
	q.Set("period2", strconv.FormatInt(time.Now().Unix(), 10))

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	rawURL := fmt.Sprintf("%sws/fundamentals-timeseries/v1/finance/timeseries/%s?%s", f.api.query2, escape(symbol), q.Encode())
	body, err := f.api.get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("yfinance fundamentals %s: %w", symbol, err)
	}

	out, err := parseFundamentals(body, symbol, interval)
	if err != nil {
		return nil, err
	}
	return newResult(out), nil
}

// parseFundamentals reads a fundamentals-timeseries payload. Each result
// carries its line item under a key equal to its type; null entries and
// missing reported values become NA observations.
func parseFundamentals(body []byte, symbol, interval string) (*models.Fundamentals, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("yfinance fundamentals %s: invalid JSON", symbol)
	}
	root := gjson.ParseBytes(body)
	if msg := root.Get("timeseries.error.description"); msg.Exists() {
		return nil, fmt.Errorf("yfinance fundamentals error: %s", msg.String())
	}

	out := &models.Fundamentals{
		Symbol:   symbol,
		Interval: interval,
		Items:    make(map[string]series.Series),
	}
	root.Get("timeseries.result").ForEach(func(_, r gjson.Result) bool {
		typ := r.Get("meta.type.0").String()
		name := strings.TrimPrefix(typ, interval)
		if name == "" || name == typ {
			return true
		}
		s := series.Series{Name: name}
		r.Get(typ).ForEach(func(_, obs gjson.Result) bool {
			if obs.Type == gjson.Null {
				return true
			}
			d, err := time.Parse(series.DateLayout, obs.Get("asOfDate").String())
			if err != nil {
				return true
			}
			v := series.NA
			if raw := obs.Get("reportedValue.raw"); raw.Exists() && raw.Type == gjson.Number {
				v = series.Val(raw.Float())
			}
			if out.Currency == "" {
				out.Currency = obs.Get("currencyCode").String()
			}
			s.Points = append(s.Points, series.Point{Date: d, Value: v})
			return true
		})
		out.Items[name] = s.Sort()
		return true
	})
	return out, nil
}

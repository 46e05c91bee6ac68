package twelvedata

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// ---- Price fetcher ----

type priceFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newPriceFetcher(p *Provider, lim *infra.RateLimiter) *priceFetcher {
	return &priceFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelRealtime,
			"Latest traded price",
			[]string{provider.ParamSymbol},
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
	symbol := params[provider.ParamSymbol]
	res, err := f.p.call(ctx, "price", symbol)
	if err != nil {
		return nil, err
	}
	return newResult(&models.RealtimePrice{
		Symbol: symbol,
		Price:  num(res.Get("price")),
	}), nil
}

// ---- Quote fetcher ----

type quoteFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newQuoteFetcher(p *Provider, lim *infra.RateLimiter) *quoteFetcher {
	return &quoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelRealtimeQuote,
			"Latest session quote with name, exchange and currency",
			[]string{provider.ParamSymbol},
			nil,
			lim,
		),
		p: p,
	}
}

func (f *quoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	res, err := f.p.call(ctx, "quote", params[provider.ParamSymbol])
	if err != nil {
		return nil, err
	}
	return newResult(&models.RealtimeQuote{
		Symbol:        res.Get("symbol").String(),
		Name:          res.Get("name").String(),
		Exchange:      res.Get("exchange").String(),
		Currency:      res.Get("currency").String(),
		Datetime:      res.Get("datetime").String(),
		Open:          num(res.Get("open")),
		High:          num(res.Get("high")),
		Low:           num(res.Get("low")),
		Close:         num(res.Get("close")),
		Volume:        num(res.Get("volume")),
		PreviousClose: num(res.Get("previous_close")),
		Change:        num(res.Get("change")),
		PercentChange: num(res.Get("percent_change")),
	}), nil
}

// num reads a value Twelve Data sends as a quoted decimal.
func num(r gjson.Result) series.Num {
	if !r.Exists() {
		return series.NA
	}
	return series.Parse(r.String())
}

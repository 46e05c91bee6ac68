package yfinance

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// --- Chart fetcher ---

type chartFetcher struct {
	provider.BaseFetcher
	api *api
}

func newChartFetcher(a *api, lim *infra.RateLimiter) *chartFetcher {
	return &chartFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelChart,
			"OHLCV history with dividends, splits and instrument metadata",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod, provider.ParamStartDate, provider.ParamEndDate, provider.ParamInterval},
			lim,
		),
		api: a,
	}
}

func (f *chartFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	q := url.Values{}
	q.Set("interval", coalesce(params[provider.ParamInterval], "1d"))
	q.Set("events", "div,splits")
	q.Set("includeAdjustedClose", "true")

	// An explicit start overrides the period.
	if start := params[provider.ParamStartDate]; start != "" {
		from, err := time.Parse(series.DateLayout, start)
		if err != nil {
			return nil, fmt.Errorf("parse start date: %w", err)
		}
		to := time.Now()
		if end := params[provider.ParamEndDate]; end != "" {
			if to, err = time.Parse(series.DateLayout, end); err != nil {
				return nil, fmt.Errorf("parse end date: %w", err)
			}
		}
		q.Set("period1", strconv.FormatInt(from.Unix(), 10))
		q.Set("period2", strconv.FormatInt(to.Unix(), 10))
	} else {
		q.Set("range", coalesce(params[provider.ParamPeriod], series.PeriodMax))
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	rawURL := fmt.Sprintf("%sv8/finance/chart/%s?%s", f.api.query2, escape(symbol), q.Encode())

	var resp yfChartResponse
	if err := f.api.getJSON(ctx, rawURL, &resp); err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data for %s", symbol)
	}

	return newResult(parseChart(resp.Chart.Result[0])), nil
}

// parseChart converts a chart result into a Chart. Bars are dated by the
// exchange-local trading day; a repeated day (the live bar) replaces the
// earlier one.
func parseChart(r yfChartResult) *models.Chart {
	c := &models.Chart{
		Symbol:         r.Meta.Symbol,
		Currency:       r.Meta.Currency,
		InstrumentType: r.Meta.InstrumentType,
		ExchangeName:   r.Meta.ExchangeName,
		Timezone:       r.Meta.ExchangeTimezoneName,
		Bars:           make([]models.Bar, 0, len(r.Timestamp)),
		Dividends:      series.Series{Name: "Dividends", Points: []series.Point{}},
		Splits:         series.Series{Name: "Splits", Points: []series.Point{}},
	}

	var quote yfOHLCV
	if len(r.Indicators.Quote) > 0 {
		quote = r.Indicators.Quote[0]
	}
	var adj []*float64
	if len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}

	for i, ts := range r.Timestamp {
		bar := models.Bar{
			Date:     tradingDay(ts, r.Meta.GMTOffset),
			Open:     at(quote.Open, i),
			High:     at(quote.High, i),
			Low:      at(quote.Low, i),
			Close:    at(quote.Close, i),
			AdjClose: at(adj, i),
			Volume:   at(quote.Volume, i),
		}
		if n := len(c.Bars); n > 0 && c.Bars[n-1].Date.Equal(bar.Date) {
			c.Bars[n-1] = bar
			continue
		}
		c.Bars = append(c.Bars, bar)
	}

	for _, d := range r.Events.Dividends {
		c.Dividends.Points = append(c.Dividends.Points, series.Point{
			Date:  tradingDay(d.Date, r.Meta.GMTOffset),
			Value: series.Val(d.Amount),
		})
	}
	for _, s := range r.Events.Splits {
		c.Splits.Points = append(c.Splits.Points, series.Point{
			Date:  tradingDay(s.Date, r.Meta.GMTOffset),
			Value: series.Div(series.Val(s.Numerator), series.Val(s.Denominator)),
		})
	}
	c.Dividends = c.Dividends.Sort()
	c.Splits = c.Splits.Sort()
	return c
}

func tradingDay(ts, gmtOffset int64) time.Time {
	t := time.Unix(ts+gmtOffset, 0).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func at(vals []*float64, i int) series.Num {
	if i >= len(vals) {
		return series.NA
	}
	return series.Ptr(vals[i])
}

// --- QuoteType fetcher ---

type quoteTypeFetcher struct {
	provider.BaseFetcher
	api *api
}

func newQuoteTypeFetcher(a *api, lim *infra.RateLimiter) *quoteTypeFetcher {
	return &quoteTypeFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelQuoteType,
			"Instrument classification (EQUITY, CURRENCY, ...)",
			[]string{provider.ParamSymbol},
			nil,
			lim,
		),
		api: a,
	}
}

func (f *quoteTypeFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp yfQuoteTypeResponse
	if err := f.api.getJSON(ctx, f.api.query1+"v1/finance/quoteType/"+escape(symbol), &resp); err != nil {
		return nil, fmt.Errorf("yfinance quoteType %s: %w", symbol, err)
	}
	if resp.QuoteType.Error != nil {
		return nil, fmt.Errorf("yfinance quoteType error: %s", resp.QuoteType.Error.Description)
	}
	if len(resp.QuoteType.Result) == 0 {
		return nil, fmt.Errorf("no quote type for %s", symbol)
	}

	r := resp.QuoteType.Result[0]
	return newResult(&models.QuoteType{
		Symbol:    r.Symbol,
		QuoteType: r.QuoteType,
		ShortName: r.ShortName,
		LongName:  r.LongName,
		Exchange:  r.Exchange,
	}), nil
}

package yfinance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// quoteSummary fetches the named v10 quoteSummary modules and returns the
// first result object.
func (a *api) quoteSummary(ctx context.Context, symbol string, modules ...string) (gjson.Result, error) {
	rawURL := fmt.Sprintf("%sv10/finance/quoteSummary/%s?modules=%s",
		a.query2, escape(symbol), strings.Join(modules, ","))
	body, err := a.get(ctx, rawURL)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("yfinance quoteSummary %s: %w", symbol, err)
	}
	root := gjson.ParseBytes(body)
	if msg := root.Get("quoteSummary.error.description"); msg.Exists() {
		return gjson.Result{}, fmt.Errorf("yfinance quoteSummary error: %s", msg.String())
	}
	r := root.Get("quoteSummary.result.0")
	if !r.Exists() {
		return gjson.Result{}, fmt.Errorf("no summary for %s", symbol)
	}
	return r, nil
}

// raw reads a {"raw": x, "fmt": "..."} value.
func raw(r gjson.Result, path string) series.Num {
	v := r.Get(path + ".raw")
	if v.Type != gjson.Number {
		return series.NA
	}
	return series.Val(v.Float())
}

func epochDate(r gjson.Result) time.Time {
	if r.Type != gjson.Number {
		return time.Time{}
	}
	return time.Unix(r.Int(), 0).UTC()
}

// plainText strips markup and entities from an HTML fragment.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// --- Profile fetcher ---

type profileFetcher struct {
	provider.BaseFetcher
	api *api
}

func newProfileFetcher(a *api, lim *infra.RateLimiter) *profileFetcher {
	return &profileFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelProfile,
			"Company profile, officers and share count",
			[]string{provider.ParamSymbol},
			nil,
			lim,
		),
		api: a,
	}
}

func (f *profileFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	r, err := f.api.quoteSummary(ctx, symbol, "assetProfile", "price", "defaultKeyStatistics", "financialData")
	if err != nil {
		return nil, err
	}
	return newResult(buildProfile(symbol, r)), nil
}

func buildProfile(symbol string, r gjson.Result) *models.Profile {
	ap := r.Get("assetProfile")
	p := &models.Profile{
		Symbol:            symbol,
		Name:              coalesce(r.Get("price.longName").String(), r.Get("price.shortName").String()),
		Country:           ap.Get("country").String(),
		Industry:          ap.Get("industry").String(),
		Sector:            ap.Get("sector").String(),
		Website:           ap.Get("website").String(),
		Description:       plainText(ap.Get("longBusinessSummary").String()),
		Employees:         ap.Get("fullTimeEmployees").Int(),
		Officers:          []models.Officer{},
		Currency:          r.Get("price.currency").String(),
		FinancialCurrency: r.Get("financialData.financialCurrency").String(),
		SharesOutstanding: raw(r, "defaultKeyStatistics.sharesOutstanding"),
	}
	ap.Get("companyOfficers").ForEach(func(_, o gjson.Result) bool {
		p.Officers = append(p.Officers, models.Officer{
			Name:  o.Get("name").String(),
			Title: o.Get("title").String(),
		})
		return true
	})
	return p
}

// --- Calendar fetcher ---

type calendarFetcher struct {
	provider.BaseFetcher
	api *api
}

func newCalendarFetcher(a *api, lim *infra.RateLimiter) *calendarFetcher {
	return &calendarFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelCalendar,
			"Upcoming earnings and dividend dates",
			[]string{provider.ParamSymbol},
			nil,
			lim,
		),
		api: a,
	}
}

func (f *calendarFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	r, err := f.api.quoteSummary(ctx, symbol, "calendarEvents")
	if err != nil {
		return nil, err
	}

	ce := r.Get("calendarEvents")
	cal := &models.Calendar{
		EarningsDates:  []time.Time{},
		ExDividendDate: epochDate(ce.Get("exDividendDate.raw")),
		DividendDate:   epochDate(ce.Get("dividendDate.raw")),
	}
	ce.Get("earnings.earningsDate").ForEach(func(_, d gjson.Result) bool {
		if t := epochDate(d.Get("raw")); !t.IsZero() {
			cal.EarningsDates = append(cal.EarningsDates, t)
		}
		return true
	})
	return newResult(cal), nil
}

// --- Estimates fetcher ---

type estimatesFetcher struct {
	provider.BaseFetcher
	api *api
}

func newEstimatesFetcher(a *api, lim *infra.RateLimiter) *estimatesFetcher {
	return &estimatesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelEstimates,
			"Analyst earnings, revenue and growth estimates with price targets",
			[]string{provider.ParamSymbol},
			nil,
			lim,
		),
		api: a,
	}
}

func (f *estimatesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	r, err := f.api.quoteSummary(ctx, symbol, "earningsTrend", "indexTrend", "financialData")
	if err != nil {
		return nil, err
	}
	return newResult(buildEstimates(symbol, r)), nil
}

// forwardPeriods are the estimate horizons reported, nearest first.
var forwardPeriods = []string{"0q", "+1q", "0y", "+1y"}

func buildEstimates(symbol string, r gjson.Result) *models.Estimates {
	fd := r.Get("financialData")
	est := &models.Estimates{
		Symbol:        symbol,
		Trend:         []models.EstimateTrend{},
		TargetCurrent: raw(fd, "currentPrice"),
		TargetHigh:    raw(fd, "targetHighPrice"),
		TargetLow:     raw(fd, "targetLowPrice"),
		TargetMean:    raw(fd, "targetMeanPrice"),
		TargetMedian:  raw(fd, "targetMedianPrice"),
		Analysts:      raw(fd, "numberOfAnalystOpinions"),
		Rating:        fd.Get("recommendationKey").String(),
	}

	index := make(map[string]series.Num)
	r.Get("indexTrend.estimates").ForEach(func(_, e gjson.Result) bool {
		index[e.Get("period").String()] = raw(e, "growth")
		return true
	})

	byPeriod := make(map[string]gjson.Result)
	r.Get("earningsTrend.trend").ForEach(func(_, t gjson.Result) bool {
		byPeriod[t.Get("period").String()] = t
		return true
	})
	for _, period := range forwardPeriods {
		t, ok := byPeriod[period]
		if !ok {
			continue
		}
		ix, ok := index[period]
		if !ok {
			ix = series.NA
		}
		est.Trend = append(est.Trend, models.EstimateTrend{
			Period:          period,
			EndDate:         t.Get("endDate").String(),
			Growth:          raw(t, "growth"),
			EarningsAvg:     raw(t, "earningsEstimate.avg"),
			EarningsLow:     raw(t, "earningsEstimate.low"),
			EarningsHigh:    raw(t, "earningsEstimate.high"),
			EarningsAnalyst: raw(t, "earningsEstimate.numberOfAnalysts"),
			EarningsYearAgo: raw(t, "earningsEstimate.yearAgoEps"),
			EarningsGrowth:  raw(t, "earningsEstimate.growth"),
			RevenueAvg:      raw(t, "revenueEstimate.avg"),
			RevenueLow:      raw(t, "revenueEstimate.low"),
			RevenueHigh:     raw(t, "revenueEstimate.high"),
			RevenueAnalyst:  raw(t, "revenueEstimate.numberOfAnalysts"),
			RevenueYearAgo:  raw(t, "revenueEstimate.yearAgoRevenue"),
			RevenueGrowth:   raw(t, "revenueEstimate.growth"),
			IndexGrowth:     ix,
		})
	}
	return est
}

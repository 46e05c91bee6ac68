// Package datasource turns provider registry fetches into typed values.
// Asset-class packages consume the methods of Source through small
// interfaces of their own, so they never see the registry or FetchResult.
package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// Source routes typed requests through a provider registry.
type Source struct {
	registry *provider.Registry
}

// New creates a Source backed by reg.
func New(reg *provider.Registry) *Source {
	return &Source{registry: reg}
}

// Registry returns the provider registry used by this source.
func (s *Source) Registry() *provider.Registry {
	return s.registry
}

// Range selects a slice of history. A non-zero Start overrides Period.
type Range struct {
	Period   string
	Interval string
	Start    time.Time
	End      time.Time
}

func (r Range) apply(p provider.QueryParams) provider.QueryParams {
	if r.Period != "" {
		p[provider.ParamPeriod] = r.Period
	}
	if r.Interval != "" {
		p[provider.ParamInterval] = r.Interval
	}
	if !r.Start.IsZero() {
		p[provider.ParamStartDate] = r.Start.Format(series.DateLayout)
	}
	if !r.End.IsZero() {
		p[provider.ParamEndDate] = r.End.Format(series.DateLayout)
	}
	return p
}

// fetchAs runs one registry fetch and asserts the documented result type.
func fetchAs[T any](ctx context.Context, reg *provider.Registry, model provider.ModelType, params provider.QueryParams, fallback bool) (T, error) {
	var zero T
	var (
		result *provider.FetchResult
		err    error
	)
	if fallback {
		result, err = reg.FetchWithFallback(ctx, model, params)
	} else {
		result, err = reg.Fetch(ctx, model, params)
	}
	if err != nil {
		return zero, err
	}
	v, ok := result.Data.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected data type for %s from %s: %T", model, result.Provider, result.Data)
	}
	return v, nil
}

func symbolParams(symbol string) provider.QueryParams {
	return provider.QueryParams{provider.ParamSymbol: symbol}
}

// --- Market data ---

// Chart returns the price history of symbol with its instrument metadata.
func (s *Source) Chart(ctx context.Context, symbol string, r Range) (*models.Chart, error) {
	return fetchAs[*models.Chart](ctx, s.registry, provider.ModelChart, r.apply(symbolParams(symbol)), false)
}

// QuoteType returns the instrument classification of symbol.
func (s *Source) QuoteType(ctx context.Context, symbol string) (*models.QuoteType, error) {
	return fetchAs[*models.QuoteType](ctx, s.registry, provider.ModelQuoteType, symbolParams(symbol), false)
}

// Fundamentals returns the named statement line items. interval is
// "annual" or "quarterly".
func (s *Source) Fundamentals(ctx context.Context, symbol, interval string, items []string) (*models.Fundamentals, error) {
	p := symbolParams(symbol)
	p[provider.ParamInterval] = interval
	p[provider.ParamTypes] = strings.Join(items, ",")
	return fetchAs[*models.Fundamentals](ctx, s.registry, provider.ModelFundamentals, p, false)
}

// Profile returns the company profile, falling back across providers.
func (s *Source) Profile(ctx context.Context, symbol string) (*models.Profile, error) {
	return fetchAs[*models.Profile](ctx, s.registry, provider.ModelProfile, symbolParams(symbol), true)
}

// Calendar returns upcoming corporate events.
func (s *Source) Calendar(ctx context.Context, symbol string) (*models.Calendar, error) {
	return fetchAs[*models.Calendar](ctx, s.registry, provider.ModelCalendar, symbolParams(symbol), false)
}

// Estimates returns analyst consensus figures.
func (s *Source) Estimates(ctx context.Context, symbol string) (*models.Estimates, error) {
	return fetchAs[*models.Estimates](ctx, s.registry, provider.ModelEstimates, symbolParams(symbol), false)
}

// News returns recent headlines about symbol.
func (s *Source) News(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	return fetchAs[[]models.NewsItem](ctx, s.registry, provider.ModelNews, symbolParams(symbol), false)
}

// Realtime returns the latest traded price.
func (s *Source) Realtime(ctx context.Context, symbol string) (*models.RealtimePrice, error) {
	return fetchAs[*models.RealtimePrice](ctx, s.registry, provider.ModelRealtime, symbolParams(symbol), false)
}

// RealtimeQuote returns the latest session quote.
func (s *Source) RealtimeQuote(ctx context.Context, symbol string) (*models.RealtimeQuote, error) {
	return fetchAs[*models.RealtimeQuote](ctx, s.registry, provider.ModelRealtimeQuote, symbolParams(symbol), false)
}

// Earnings returns reported EPS history.
func (s *Source) Earnings(ctx context.Context, symbol string) (*models.Earnings, error) {
	return fetchAs[*models.Earnings](ctx, s.registry, provider.ModelEarnings, symbolParams(symbol), false)
}

// BondHistory returns the yield history of a sovereign bond. country is
// the upstream country name ("U.S.", "Germany").
func (s *Source) BondHistory(ctx context.Context, country, maturity string, r Range) ([]models.Bar, error) {
	p := provider.QueryParams{provider.ParamCountry: country, provider.ParamMaturity: maturity}
	r.Period = ""
	return fetchAs[[]models.Bar](ctx, s.registry, provider.ModelBondHistory, r.apply(p), false)
}

// CoinPrice returns the latest price of coin in vs.
func (s *Source) CoinPrice(ctx context.Context, coin, vs string) (*models.RealtimePrice, error) {
	p := symbolParams(coin)
	p[provider.ParamCurrency] = vs
	return fetchAs[*models.RealtimePrice](ctx, s.registry, provider.ModelCoinPrice, p, false)
}

// CoinChart returns daily prices of coin in vs. days is a day count or
// "max" (the default when empty).
func (s *Source) CoinChart(ctx context.Context, coin, vs, days string) (series.Series, error) {
	p := symbolParams(coin)
	p[provider.ParamCurrency] = vs
	if days != "" {
		p["days"] = days
	}
	return fetchAs[series.Series](ctx, s.registry, provider.ModelCoinChart, p, false)
}

// --- Regulatory ---

// CompanyTickers returns the SEC ticker to CIK table.
func (s *Source) CompanyTickers(ctx context.Context) ([]models.CompanyTicker, error) {
	return fetchAs[[]models.CompanyTicker](ctx, s.registry, provider.ModelCompanyTickers, provider.QueryParams{}, false)
}

// Submissions returns the recent filings of a 10-digit CIK.
func (s *Source) Submissions(ctx context.Context, cik string) ([]models.Filing, error) {
	return fetchAs[[]models.Filing](ctx, s.registry, provider.ModelSubmissions, symbolParams(cik), false)
}

// --- Economy ---

// FredSeries returns a FRED series. A non-empty frequency ("m", "q", "a")
// asks FRED to average down to it.
func (s *Source) FredSeries(ctx context.Context, id, frequency string, r Range) (series.Series, error) {
	p := symbolParams(id)
	if frequency != "" {
		p[provider.ParamFrequency] = frequency
	}
	r.Period, r.Interval = "", ""
	return fetchAs[series.Series](ctx, s.registry, provider.ModelFredSeries, r.apply(p), false)
}

// NIPA returns one line of a BEA NIPA table. frequency is "Q", "M" or "A".
func (s *Source) NIPA(ctx context.Context, table, code, frequency string) (series.Series, error) {
	p := symbolParams(code)
	p[provider.ParamTable] = table
	if frequency != "" {
		p[provider.ParamFrequency] = frequency
	}
	return fetchAs[series.Series](ctx, s.registry, provider.ModelNIPA, p, false)
}

// BLSSeries returns a BLS series from start (zero means the provider default).
func (s *Source) BLSSeries(ctx context.Context, id string, start time.Time) (series.Series, error) {
	p := symbolParams(id)
	if !start.IsZero() {
		p[provider.ParamStartDate] = start.Format(series.DateLayout)
	}
	return fetchAs[series.Series](ctx, s.registry, provider.ModelBLSSeries, p, false)
}

// IFS returns an IMF International Financial Statistics series for an ISO
// country code. frequency is "A", "Q" or "M".
func (s *Source) IFS(ctx context.Context, country, indicator, frequency string, start time.Time) (series.Series, error) {
	p := provider.QueryParams{provider.ParamCountry: country, provider.ParamIndicator: indicator}
	if frequency != "" {
		p[provider.ParamFrequency] = frequency
	}
	if !start.IsZero() {
		p[provider.ParamStartDate] = start.Format(series.DateLayout)
	}
	return fetchAs[series.Series](ctx, s.registry, provider.ModelIFS, p, false)
}

// Package investing implements the Investing.com provider for sovereign bond
// yield history. The site has no public API; the historical-data page is
// fetched and its table parsed with goquery.
package investing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

const providerName = "investing"

// Provider implements provider.Provider for Investing.com.
type Provider struct {
	provider.BaseProvider
	client  *infra.Client
	baseURL string
}

// New creates a new Investing.com provider and registers its fetchers.
func New(cfg *config.Config, client *infra.Client) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Investing.com - sovereign bond yield history",
			"https://www.investing.com",
			nil,
		),
		client:  client,
		baseURL: cfg.URLs.Investing,
	}
	p.RegisterFetcher(newBondHistoryFetcher(p, infra.NewRateLimiter(1, time.Second)))
	return p
}

// Ping checks connectivity with the US 10Y page.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.client.DoGet(ctx, providerName, p.baseURL+"rates-bonds/"+Slug("U.S.", "10y"), htmlHeaders()); err != nil {
		return fmt.Errorf("investing ping: %w", err)
	}
	return nil
}

func htmlHeaders() map[string]string {
	return map[string]string{"Accept": "text/html", "X-Requested-With": "XMLHttpRequest"}
}

// maturityWords spells maturities the way page slugs do.
var maturityWords = map[string]string{
	"1mo": "1-month", "3mo": "3-month", "6mo": "6-month",
	"1y": "1-year", "2y": "2-year", "3y": "3-year", "5y": "5-year", "7y": "7-year",
	"10y": "10-year", "20y": "20-year", "30y": "30-year",
}

// Slug builds the historical-data page name for a bond, e.g.
// Slug("U.S.", "10y") is "u.s.-10-year-bond-yield-historical-data".
func Slug(country, maturity string) string {
	name := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(country), " ", "-"))
	m, ok := maturityWords[maturity]
	if !ok {
		m = maturity
	}
	return name + "-" + m + "-bond-yield-historical-data"
}

// ---- BondHistory fetcher ----

type bondHistoryFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newBondHistoryFetcher(p *Provider, lim *infra.RateLimiter) *bondHistoryFetcher {
	return &bondHistoryFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelBondHistory,
			"Sovereign bond yield OHLC history",
			[]string{provider.ParamCountry, provider.ParamMaturity},
			[]string{provider.ParamStartDate, provider.ParamEndDate, provider.ParamInterval},
			lim,
		),
		p: p,
	}
}

var intervalNames = map[string]string{"1d": "Daily", "1wk": "Weekly", "1mo": "Monthly"}

// Fetch expects "country" to be the site's country name ("U.S.", "Germany").
func (f *bondHistoryFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	interval := params[provider.ParamInterval]
	if interval == "" {
		interval = "1d"
	}
	if err := provider.OneOf(provider.ParamInterval, interval, provider.Keys(intervalNames)...); err != nil {
		return nil, err
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	country, maturity := params[provider.ParamCountry], params[provider.ParamMaturity]
	q := url.Values{"interval": {intervalNames[interval]}}
	if s := params[provider.ParamStartDate]; s != "" {
		q.Set("st_date", s)
	}
	if e := params[provider.ParamEndDate]; e != "" {
		q.Set("end_date", e)
	}

	body, err := f.p.client.DoGet(ctx, providerName,
		f.p.baseURL+"rates-bonds/"+Slug(country, maturity)+"?"+q.Encode(), htmlHeaders())
	if err != nil {
		var ue *infra.UpstreamError
		if errors.As(err, &ue) && ue.Status == http.StatusNotFound {
			return nil, &provider.InvalidCountryMaturityError{Country: country, Maturity: strings.ToUpper(maturity), Err: err}
		}
		return nil, err
	}
	bars, err := parseHistory(body)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, &provider.InvalidCountryMaturityError{Country: country, Maturity: strings.ToUpper(maturity)}
	}
	return &provider.FetchResult{Data: bars, FetchedAt: time.Now()}, nil
}

// parseHistory reads the historical-data table. Columns are Date, Price
// (the close), Open, High, Low and Change %; rows are newest first.
func parseHistory(body []byte) ([]models.Bar, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("investing: parse html: %w", err)
	}
	table := doc.Find(`table[data-test="historical-data-table"]`)
	if table.Length() == 0 {
		table = doc.Find("table#curr_table")
	}

	var bars []models.Bar
	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td").Map(func(_ int, td *goquery.Selection) string {
			return strings.TrimSpace(td.Text())
		})
		if len(cells) < 5 {
			return
		}
		d, ok := parseDate(cells[0])
		if !ok {
			return
		}
		bars = append(bars, models.Bar{
			Date:   d,
			Close:  number(cells[1]),
			Open:   number(cells[2]),
			High:   number(cells[3]),
			Low:    number(cells[4]),
			Volume: series.NA,
		})
	})
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return dedupe(bars), nil
}

func dedupe(bars []models.Bar) []models.Bar {
	out := bars[:0]
	for _, b := range bars {
		if len(out) > 0 && out[len(out)-1].Date.Equal(b.Date) {
			out[len(out)-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

var dateLayouts = []string{"01/02/2006", "Jan 02, 2006", series.DateLayout}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func number(s string) series.Num {
	return series.Parse(strings.ReplaceAll(s, ",", ""))
}

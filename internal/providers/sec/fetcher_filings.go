package sec

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// ---- CompanyTickers fetcher ----
// Returns the full ticker to CIK mapping.

type companyTickersFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newCompanyTickersFetcher(p *Provider, lim *infra.RateLimiter) *companyTickersFetcher {
	return &companyTickersFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelCompanyTickers,
			"Ticker to CIK mapping for every EDGAR filer",
			nil,
			nil,
			lim,
		),
		p: p,
	}
}

func (f *companyTickersFetcher) Fetch(ctx context.Context, _ provider.QueryParams) (*provider.FetchResult, error) {
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var raw map[string]tickerEntry
	if err := f.p.getJSON(ctx, f.p.wwwURL+"files/company_tickers.json", &raw); err != nil {
		return nil, fmt.Errorf("sec company tickers: %w", err)
	}

	// Keep upstream row order.
	rows := make([]int, 0, len(raw))
	byRow := make(map[int]tickerEntry, len(raw))
	for k, e := range raw {
		n, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		rows = append(rows, n)
		byRow[n] = e
	}
	sort.Ints(rows)

	out := make([]models.CompanyTicker, 0, len(rows))
	for _, n := range rows {
		e := byRow[n]
		out = append(out, models.CompanyTicker{
			CIK:    PadCIK(e.CIK.String()),
			Ticker: e.Ticker,
			Title:  e.Title,
		})
	}
	return newResult(out), nil
}

// ---- Submissions fetcher ----
// Returns a filer's recent filings, newest first.

type submissionsFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newSubmissionsFetcher(p *Provider, lim *infra.RateLimiter) *submissionsFetcher {
	return &submissionsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelSubmissions,
			"Recent EDGAR filings of a CIK",
			[]string{provider.ParamSymbol},
			nil,
			lim,
		),
		p: p,
	}
}

// Fetch expects "symbol" to be a CIK.
func (f *submissionsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cik := PadCIK(strings.TrimSpace(params[provider.ParamSymbol]))
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	var resp submissionsResponse
	if err := f.p.getJSON(ctx, fmt.Sprintf("%ssubmissions/CIK%s.json", f.p.dataURL, cik), &resp); err != nil {
		return nil, fmt.Errorf("sec submissions %s: %w", cik, err)
	}
	return newResult(buildFilings(f.p.wwwURL, cik, resp.Filings.Recent)), nil
}

func buildFilings(wwwURL, cik string, rs filingSet) []models.Filing {
	out := make([]models.Filing, 0, len(rs.AccessionNumber))
	archive := strings.TrimLeft(cik, "0")
	for i, acc := range rs.AccessionNumber {
		f := models.Filing{
			AccessionNumber: acc,
			ReportDate:      pick(rs.ReportDate, i),
			Form:            pick(rs.Form, i),
			PrimaryDocument: pick(rs.PrimaryDocument, i),
		}
		if d, err := time.Parse(series.DateLayout, pick(rs.FilingDate, i)); err == nil {
			f.FilingDate = d
		}
		if f.PrimaryDocument != "" {
			f.URL = fmt.Sprintf("%sArchives/edgar/data/%s/%s/%s",
				wwwURL, archive, strings.ReplaceAll(acc, "-", ""), f.PrimaryDocument)
		}
		out = append(out, f)
	}
	return out
}

func pick(xs []string, i int) string {
	if i < len(xs) {
		return xs[i]
	}
	return ""
}

package fmp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// ---- Profile fetcher ----

type profileFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newProfileFetcher(p *Provider, lim *infra.RateLimiter) *profileFetcher {
	return &profileFetcher{
		BaseFetcher: provider.NewBaseFetcherWithLimiter(
			provider.ModelProfile,
			"Company profile and key executives",
			[]string{provider.ParamSymbol},
			nil,
			lim,
		),
		p: p,
	}
}

func (f *profileFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}
	symbol := strings.ToUpper(params[provider.ParamSymbol])
	path := url.PathEscape(symbol)

	var profiles []fmpProfile
	if err := f.p.fetchJSON(ctx, "v3/profile/"+path, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("fmp: no profile for %s", symbol)
	}

	// Officers are optional; a failure here keeps the profile.
	var execs []fmpExecutive
	_ = f.p.fetchJSON(ctx, "v3/key-executives/"+path, &execs)

	return newResult(buildProfile(profiles[0], execs)), nil
}

func buildProfile(fp fmpProfile, execs []fmpExecutive) *models.Profile {
	out := &models.Profile{
		Symbol:            fp.Symbol,
		Name:              fp.CompanyName,
		Country:           fp.Country,
		Industry:          fp.Industry,
		Sector:            fp.Sector,
		Website:           fp.Website,
		Description:       fp.Description,
		Currency:          fp.Currency,
		SharesOutstanding: series.Div(series.Val(fp.MktCap), series.Val(fp.Price)),
		Officers:          []models.Officer{},
	}
	if n, err := strconv.ParseInt(fp.FullTimeEmployees, 10, 64); err == nil {
		out.Employees = n
	}
	for _, e := range execs {
		out.Officers = append(out.Officers, models.Officer{Name: e.Name, Title: e.Title})
	}
	if len(out.Officers) == 0 && fp.CEO != "" {
		out.Officers = append(out.Officers, models.Officer{Name: fp.CEO, Title: "CEO"})
	}
	return out
}

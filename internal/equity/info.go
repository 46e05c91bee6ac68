package equity

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// NoCIK stands in for the CIK of companies the SEC does not list.
const NoCIK = "No cik ID"

// Info describes a listed company.
type Info struct {
	Symbol         string            `json:"symbol"`
	Name           string            `json:"name"`
	Exchange       string            `json:"exchange"`
	Currency       string            `json:"currency"`
	Timezone       string            `json:"timezone"`
	Country        string            `json:"country"`
	Industry       string            `json:"industry"`
	Sector         string            `json:"sector"`
	CIK            string            `json:"cik"`
	DividendDate   string            `json:"dividend date"`
	ExDividendDate string            `json:"ex-dividend date"`
	EarningsDates  []string          `json:"earnings date"`
	Website        string            `json:"website"`
	Description    string            `json:"description"`
	Officers       map[string]string `json:"company officers"`
}

func (i Info) Markdown() string {
	var b strings.Builder
	b.WriteString(display.Fields(
		[2]string{"Identifier", i.Symbol + " - " + i.Name},
		[2]string{"Exchange/Timezone", i.Exchange + " - " + i.Timezone},
		[2]string{"Currency", i.Currency},
		[2]string{"Country", i.Country},
		[2]string{"CIK", i.CIK},
		[2]string{"Sector/Industry", i.Sector + " - " + i.Industry},
		[2]string{"Website", i.Website},
		[2]string{"Earnings Date", strings.Join(i.EarningsDates, ", ")},
		[2]string{"Ex-Dividend Date", i.ExDividendDate},
		[2]string{"Dividend Date", i.DividendDate},
	))
	if len(i.Officers) > 0 {
		b.WriteString("\n### Company officers\n\n")
		names := make([]string, 0, len(i.Officers))
		for n := range i.Officers {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(&b, "- **%s**: %s\n", n, i.Officers[n])
		}
	}
	if i.Description != "" {
		b.WriteString("\n### Description\n\n" + i.Description + "\n")
	}
	return b.String()
}

// lookupCIK finds the 10-digit CIK of a ticker.
func (s *Service) lookupCIK(ctx context.Context, ticker string) (string, bool, error) {
	tickers, err := s.src.CompanyTickers(ctx)
	if err != nil {
		return "", false, err
	}
	for _, t := range tickers {
		if strings.EqualFold(t.Ticker, ticker) {
			return t.CIK, true, nil
		}
	}
	return "", false, nil
}

// Info returns the company profile, listing and calendar.
func (s *Service) Info(ctx context.Context, ticker, mode string) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Pretty); err != nil {
		return display.Result{}, err
	}

	var (
		chart   *models.Chart
		rt      *models.RealtimeQuote
		profile *models.Profile
		cal     *models.Calendar
		cik     string
		listed  bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		chart, err = s.chart(gctx, ticker, datasource.Range{Period: "1mo", Interval: "1d"})
		return err
	})
	g.Go(func() (err error) {
		rt, err = s.src.RealtimeQuote(gctx, marketSymbol(ticker))
		return err
	})
	g.Go(func() (err error) {
		profile, err = s.src.Profile(gctx, ticker)
		return err
	})
	g.Go(func() (err error) {
		cal, err = s.src.Calendar(gctx, ticker)
		return err
	})
	g.Go(func() (err error) {
		cik, listed, err = s.lookupCIK(gctx, ticker)
		return err
	})
	if err := g.Wait(); err != nil {
		return display.Result{}, err
	}
	if !listed {
		cik = NoCIK
	}

	info := Info{
		Symbol:         orDash(rt.Symbol),
		Name:           orDash(rt.Name),
		Exchange:       orDash(rt.Exchange),
		Currency:       orDash(rt.Currency),
		Timezone:       orDash(chart.Timezone),
		Country:        orDash(profile.Country),
		Industry:       orDash(profile.Industry),
		Sector:         orDash(profile.Sector),
		CIK:            cik,
		DividendDate:   formatDate(cal.DividendDate),
		ExDividendDate: formatDate(cal.ExDividendDate),
		Website:        orDash(profile.Website),
		Description:    orDash(profile.Description),
		Officers:       make(map[string]string, len(profile.Officers)),
	}
	for _, d := range cal.EarningsDates {
		info.EarningsDates = append(info.EarningsDates, formatDate(d))
	}
	for _, o := range profile.Officers {
		info.Officers[o.Name] = o.Title
	}
	return display.Result{Title: ticker + " company information", Value: info}, nil
}

// Articles is a list of news headlines.
type Articles []models.NewsItem

func (a Articles) Markdown() string {
	var b strings.Builder
	for _, n := range a {
		fmt.Fprintf(&b, "### %s\n\n*%s -- %s*\n\n%s\n\n<%s>\n\n---\n\n",
			n.Title, n.Provider, n.Published.UTC().Format("2006-01-02 15:04:05"), n.Snippet, n.URL)
	}
	return b.String()
}

// News returns recent headlines about a company.
func (s *Service) News(ctx context.Context, ticker, mode string) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Pretty); err != nil {
		return display.Result{}, err
	}
	items, err := s.src.News(ctx, ticker)
	if err != nil {
		return display.Result{}, err
	}
	return display.Result{Title: ticker + " news", Value: Articles(items)}, nil
}

// Filings is a list of SEC filings.
type Filings []models.Filing

func (f Filings) TableRows() ([]string, [][]string) {
	rows := make([][]string, len(f))
	for i, x := range f {
		rows[i] = []string{x.AccessionNumber, x.FilingDate.Format(series.DateLayout), x.Form}
	}
	return []string{"accessionNumber", "filingDate", "form"}, rows
}

// Filings returns the company's recent SEC filings, optionally only those
// of one form type ("10-K", "8-K").
func (s *Service) Filings(ctx context.Context, ticker, form, mode string) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Table); err != nil {
		return display.Result{}, err
	}
	cik, ok, err := s.lookupCIK(ctx, ticker)
	if err != nil {
		return display.Result{}, err
	}
	if !ok {
		return display.Result{}, &provider.InvalidParameterError{
			Param: "ticker", Value: ticker, Valid: []string{"a ticker registered with the SEC"},
		}
	}
	all, err := s.src.Submissions(ctx, cik)
	if err != nil {
		return display.Result{}, err
	}
	out := Filings{}
	for _, f := range all {
		if form == "" || f.Form == form {
			out = append(out, f)
		}
	}
	return display.Result{Title: ticker + " filings", Value: out}, nil
}

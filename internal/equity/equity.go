// Package equity implements the stock operations: price history, realtime
// prices, financial statements, quotes, company information, filings,
// earnings, analyst estimates, corporate actions and statistics.
package equity

import (
	"context"
	"strings"
	"time"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
)

// SecurityType is the instrument type every equity symbol must carry.
const SecurityType = "EQUITY"

// Source is the upstream data the equity operations read.
type Source interface {
	Chart(ctx context.Context, symbol string, r datasource.Range) (*models.Chart, error)
	Fundamentals(ctx context.Context, symbol, interval string, items []string) (*models.Fundamentals, error)
	Profile(ctx context.Context, symbol string) (*models.Profile, error)
	Calendar(ctx context.Context, symbol string) (*models.Calendar, error)
	Estimates(ctx context.Context, symbol string) (*models.Estimates, error)
	News(ctx context.Context, symbol string) ([]models.NewsItem, error)
	Realtime(ctx context.Context, symbol string) (*models.RealtimePrice, error)
	RealtimeQuote(ctx context.Context, symbol string) (*models.RealtimeQuote, error)
	Earnings(ctx context.Context, symbol string) (*models.Earnings, error)
	CompanyTickers(ctx context.Context) ([]models.CompanyTicker, error)
	Submissions(ctx context.Context, cik string) ([]models.Filing, error)
}

// Service runs equity operations against a Source.
type Service struct {
	src Source
	now func() time.Time
}

// New creates a Service.
func New(src Source) *Service {
	return &Service{src: src, now: time.Now}
}

// checkSecurity rejects charts of non-equity instruments.
func checkSecurity(symbol string, c *models.Chart) error {
	if c.InstrumentType != SecurityType {
		return &provider.InvalidSecurityError{Symbol: symbol, Expected: SecurityType, Got: c.InstrumentType}
	}
	return nil
}

// chart fetches price history and rejects non-equity symbols.
func (s *Service) chart(ctx context.Context, ticker string, r datasource.Range) (*models.Chart, error) {
	c, err := s.src.Chart(ctx, ticker, r)
	if err != nil {
		return nil, err
	}
	if err := checkSecurity(ticker, c); err != nil {
		return nil, err
	}
	return c, nil
}

// marketSymbol strips the exchange suffix ("SHOP.TO" -> "SHOP") for
// providers that key on the bare symbol.
func marketSymbol(ticker string) string {
	return strings.SplitN(ticker, ".", 2)[0]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("January 02, 2006")
}

package equity

import (
	"context"
	"fmt"
	"strings"

	"github.com/seenimoa/finflux/internal/analysis/fundamental"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// StatementOptions selects a financial statement. An empty Currency keeps
// the reporting currency; Decimal keeps two decimals instead of rounding
// to whole units.
type StatementOptions struct {
	Statement string `json:"statement" default:"all"`
	Currency  string `json:"currency"  validate:"omitempty,len=3,alpha"`
	Unit      string `json:"unit"      default:"raw"`
	Decimal   bool   `json:"decimal"`
	Interval  string `json:"interval"  default:"annual"`
	Display   string `json:"display"   default:"json"`
}

var statementChoices = provider.Choices{
	"statement": fundamental.Statements,
	"unit":      {"thousand", "million", "billion", "raw"},
	"interval":  {"annual", "quarter"},
	"display":   {display.JSON, display.Table},
}

// upstreamInterval maps the option value onto the fundamentals interval.
func upstreamInterval(interval string) string {
	if interval == "quarter" {
		return "quarterly"
	}
	return interval
}

// Statement returns the income, balance sheet, cash flow or combined
// statement, most recent period first.
func (s *Service) Statement(ctx context.Context, ticker string, opts StatementOptions) (display.Result, error) {
	if err := provider.Prepare(&opts); err != nil {
		return display.Result{}, err
	}
	if err := statementChoices.Check(map[string]string{
		"statement": opts.Statement,
		"unit":      opts.Unit,
		"interval":  opts.Interval,
		"display":   opts.Display,
	}); err != nil {
		return display.Result{}, err
	}

	f, err := s.fundamentals(ctx, ticker, opts.Interval, opts.Statement)
	if err != nil {
		return display.Result{}, err
	}
	frame, err := fundamental.BuildStatement(f, opts.Statement)
	if err != nil {
		return display.Result{}, err
	}
	if frame, err = fundamental.ScaleUnit(frame, opts.Unit); err != nil {
		return display.Result{}, err
	}

	if target := strings.ToUpper(opts.Currency); target != "" {
		from, err := s.reportingCurrency(ctx, ticker, f)
		if err != nil {
			return display.Result{}, err
		}
		if from != target {
			p, err := s.src.Realtime(ctx, from+"/"+target)
			if err != nil {
				return display.Result{}, err
			}
			frame = fundamental.Convert(frame, p.Price)
		}
	}

	places := 0
	if opts.Decimal {
		places = 2
	}
	frame = frame.Map(func(n series.Num) series.Num { return n.Round(places) })
	frame.Title = fmt.Sprintf("%s %s statement (%s)", ticker, opts.Statement, opts.Unit)
	return display.Result{Title: frame.Title, Frame: frame}, nil
}

// fundamentals fetches the upstream items a statement kind reads.
func (s *Service) fundamentals(ctx context.Context, ticker, interval, kind string, extra ...string) (*models.Fundamentals, error) {
	keys, err := fundamental.UpstreamKeys(kind, extra...)
	if err != nil {
		return nil, err
	}
	f, err := s.src.Fundamentals(ctx, ticker, upstreamInterval(interval), keys)
	if err != nil {
		return nil, err
	}
	f.Interval = interval
	return f, nil
}

// reportingCurrency is the statement currency, falling back to the
// company profile when the line items carry none.
func (s *Service) reportingCurrency(ctx context.Context, ticker string, f *models.Fundamentals) (string, error) {
	if f.Currency != "" {
		return strings.ToUpper(f.Currency), nil
	}
	p, err := s.src.Profile(ctx, ticker)
	if err != nil {
		return "", err
	}
	cur := p.FinancialCurrency
	if cur == "" {
		cur = p.Currency
	}
	if cur == "" {
		return "", fmt.Errorf("%s: reporting currency unknown", ticker)
	}
	return strings.ToUpper(cur), nil
}

package equity

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// EPS columns.
const (
	colReported    = "Reported EPS"
	colEstimated   = "Estimated EPS"
	colSurprise    = "Surprise"
	colSurprisePct = "Surprise %"
)

// QuarterEPS is one quarter of reported against estimated earnings.
type QuarterEPS struct {
	Reported           series.Num `json:"reported eps"`
	Estimated          series.Num `json:"estimated eps"`
	Surprise           series.Num `json:"surprise"`
	SurprisePercentage series.Num `json:"surprise percentage"`
}

// EPSTimeseries returns reported earnings per share by fiscal year
// ("FY 2024") or quarter ("2024-06"), oldest first.
func (s *Service) EPSTimeseries(ctx context.Context, ticker, interval, mode string) (display.Result, error) {
	if err := (provider.Choices{
		"interval": {"annual", "quarter"},
		"display":  {display.JSON, display.Table, display.Bar},
	}).Check(map[string]string{"interval": interval, "display": mode}); err != nil {
		return display.Result{}, err
	}
	e, err := s.src.Earnings(ctx, marketSymbol(ticker))
	if err != nil {
		return display.Result{}, err
	}

	title := fmt.Sprintf("%s %s EPS", ticker, interval)
	if interval == "annual" {
		annual := append([]models.AnnualEPS(nil), e.Annual...)
		sort.Slice(annual, func(i, j int) bool { return annual[i].FiscalDateEnding.Before(annual[j].FiscalDateEnding) })
		f := series.NewFrame(title, colReported)
		value := make(map[string]series.Num, len(annual))
		for _, a := range annual {
			label := fmt.Sprintf("FY %d", a.FiscalDateEnding.Year())
			f.AddRow(label, a.ReportedEPS)
			value[label] = a.ReportedEPS
		}
		return display.Result{Title: title, Value: value, Frame: f}, nil
	}

	quarters := append([]models.QuarterlyEPS(nil), e.Quarterly...)
	sort.Slice(quarters, func(i, j int) bool { return quarters[i].FiscalDateEnding.Before(quarters[j].FiscalDateEnding) })
	f := series.NewFrame(title, colReported, colEstimated, colSurprise, colSurprisePct)
	value := make(map[string]QuarterEPS, len(quarters))
	for _, q := range quarters {
		label := q.FiscalDateEnding.Format("2006-01")
		f.AddRow(label, q.ReportedEPS, q.EstimatedEPS, q.Surprise, q.SurprisePercentage)
		value[label] = QuarterEPS{
			Reported:           q.ReportedEPS,
			Estimated:          q.EstimatedEPS,
			Surprise:           q.Surprise,
			SurprisePercentage: q.SurprisePercentage,
		}
	}
	if mode == display.Bar {
		f = f.Select(colReported, colEstimated)
	}
	return display.Result{Title: title, Value: value, Frame: f}, nil
}

// Estimate periods in upstream order with their display names.
var estimatePeriods = []struct{ key, label string }{
	{"0q", "current quarter"},
	{"+1q", "next quarter"},
	{"0y", "current year"},
	{"+1y", "next year"},
}

// EarningsEstimate is the analyst consensus for earnings per share.
type EarningsEstimate struct {
	Avg              series.Num `json:"avg"`
	Low              series.Num `json:"low"`
	High             series.Num `json:"high"`
	YearAgoEPS       series.Num `json:"yearAgoEps"`
	NumberOfAnalysts series.Num `json:"numberOfAnalysts"`
	Growth           series.Num `json:"growth"`
}

// RevenueEstimate is the analyst consensus for revenue.
type RevenueEstimate struct {
	Avg              series.Num `json:"avg"`
	Low              series.Num `json:"low"`
	High             series.Num `json:"high"`
	YearAgoRevenue   series.Num `json:"yearAgoRevenue"`
	NumberOfAnalysts series.Num `json:"numberOfAnalysts"`
	Growth           series.Num `json:"growth"`
}

// GrowthEstimate compares expected earnings growth of the stock and its
// benchmark index.
type GrowthEstimate struct {
	Stock series.Num `json:"stock"`
	Index series.Num `json:"index"`
}

// PriceTargets are analyst price targets.
type PriceTargets struct {
	Current series.Num `json:"current"`
	Median  series.Num `json:"median"`
	High    series.Num `json:"high"`
	Mean    series.Num `json:"mean"`
	Low     series.Num `json:"low"`
}

// AnalystReport collects analyst estimates keyed by period name.
type AnalystReport struct {
	Symbol   string                      `json:"symbol"`
	Earnings map[string]EarningsEstimate `json:"earnings_estimate"`
	Revenue  map[string]RevenueEstimate  `json:"revenue_estimate"`
	Growth   map[string]GrowthEstimate   `json:"growth_estimate"`
	Price    PriceTargets                `json:"price_estimate"`
	Rating   string                      `json:"rating,omitempty"`
}

// AnalystEstimates returns earnings, revenue and growth estimates for the
// current and next quarter and fiscal year, plus price targets.
func (s *Service) AnalystEstimates(ctx context.Context, ticker, mode string) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Table, display.Pretty); err != nil {
		return display.Result{}, err
	}
	e, err := s.src.Estimates(ctx, ticker)
	if err != nil {
		return display.Result{}, err
	}
	r := buildAnalystReport(ticker, e)
	return display.Result{
		Title: ticker + " analyst estimates",
		Value: r,
		Frame: r.frame(),
	}, nil
}

func buildAnalystReport(ticker string, e *models.Estimates) AnalystReport {
	r := AnalystReport{
		Symbol:   ticker,
		Earnings: map[string]EarningsEstimate{},
		Revenue:  map[string]RevenueEstimate{},
		Growth:   map[string]GrowthEstimate{},
		Price: PriceTargets{
			Current: e.TargetCurrent, Median: e.TargetMedian, High: e.TargetHigh,
			Mean: e.TargetMean, Low: e.TargetLow,
		},
		Rating: e.Rating,
	}
	byKey := make(map[string]models.EstimateTrend, len(e.Trend))
	for _, t := range e.Trend {
		byKey[t.Period] = t
	}
	for _, p := range estimatePeriods {
		t, ok := byKey[p.key]
		if !ok {
			continue
		}
		r.Earnings[p.label] = EarningsEstimate{
			Avg: t.EarningsAvg, Low: t.EarningsLow, High: t.EarningsHigh,
			YearAgoEPS: t.EarningsYearAgo, NumberOfAnalysts: t.EarningsAnalyst, Growth: t.EarningsGrowth,
		}
		r.Revenue[p.label] = RevenueEstimate{
			Avg: t.RevenueAvg, Low: t.RevenueLow, High: t.RevenueHigh,
			YearAgoRevenue: t.RevenueYearAgo, NumberOfAnalysts: t.RevenueAnalyst, Growth: t.RevenueGrowth,
		}
		r.Growth[p.label] = GrowthEstimate{Stock: t.Growth, Index: t.IndexGrowth}
	}
	return r
}

// frame lays the period estimates out with one column per period.
// Revenue rows are in millions.
func (r AnalystReport) frame() *series.Frame {
	cols := make([]string, len(estimatePeriods))
	for i, p := range estimatePeriods {
		cols[i] = p.label
	}
	f := series.NewFrame(r.Symbol+" analyst estimates", cols...)
	row := func(label string, get func(period string) series.Num) {
		vals := make([]series.Num, len(cols))
		for i, c := range cols {
			vals[i] = get(c)
		}
		f.AddRow(label, vals...)
	}
	mil := func(n series.Num) series.Num { return series.Div(n, series.Val(1e6)).Round(0) }

	row("EPS high", func(p string) series.Num { return r.Earnings[p].High })
	row("EPS average", func(p string) series.Num { return r.Earnings[p].Avg })
	row("EPS low", func(p string) series.Num { return r.Earnings[p].Low })
	row("EPS year ago", func(p string) series.Num { return r.Earnings[p].YearAgoEPS })
	row("EPS growth", func(p string) series.Num { return r.Earnings[p].Growth })
	row("EPS analysts", func(p string) series.Num { return r.Earnings[p].NumberOfAnalysts })
	row("Revenue high", func(p string) series.Num { return mil(r.Revenue[p].High) })
	row("Revenue average", func(p string) series.Num { return mil(r.Revenue[p].Avg) })
	row("Revenue low", func(p string) series.Num { return mil(r.Revenue[p].Low) })
	row("Revenue year ago", func(p string) series.Num { return mil(r.Revenue[p].YearAgoRevenue) })
	row("Revenue growth", func(p string) series.Num { return r.Revenue[p].Growth })
	row("Revenue analysts", func(p string) series.Num { return r.Revenue[p].NumberOfAnalysts })
	row("Stock growth", func(p string) series.Num { return r.Growth[p].Stock })
	row("Index growth", func(p string) series.Num { return r.Growth[p].Index })
	return f
}

func (r AnalystReport) Markdown() string {
	var b strings.Builder
	b.WriteString("### Estimates (revenue in millions)\n\n")
	b.WriteString(display.MarkdownTable(r.frame()))
	b.WriteString("\n### Price targets\n\n")
	b.WriteString(display.Fields(
		[2]string{"Current", r.Price.Current.String()},
		[2]string{"Median", r.Price.Median.String()},
		[2]string{"High", r.Price.High.String()},
		[2]string{"Mean", r.Price.Mean.String()},
		[2]string{"Low", r.Price.Low.String()},
		[2]string{"Rating", r.Rating},
	))
	return b.String()
}

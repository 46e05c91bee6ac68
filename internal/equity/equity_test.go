package equity

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finflux/internal/analysis/fundamental"
	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

type fakeSource struct {
	mu    sync.Mutex
	calls []string

	chart     *models.Chart
	fund      map[string]*models.Fundamentals
	profile   *models.Profile
	calendar  *models.Calendar
	estimates *models.Estimates
	news      []models.NewsItem
	prices    map[string]series.Num
	quote     *models.RealtimeQuote
	earnings  *models.Earnings
	tickers   []models.CompanyTicker
	filings   []models.Filing
}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSource) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeSource) Chart(_ context.Context, symbol string, r datasource.Range) (*models.Chart, error) {
	f.record("chart " + symbol + " " + r.Period)
	if f.chart == nil {
		return nil, errors.New("no chart")
	}
	return f.chart, nil
}

func (f *fakeSource) Fundamentals(_ context.Context, symbol, interval string, _ []string) (*models.Fundamentals, error) {
	f.record("fundamentals " + symbol + " " + interval)
	src, ok := f.fund[interval]
	if !ok {
		return nil, errors.New("no fundamentals")
	}
	cp := *src
	return &cp, nil
}

func (f *fakeSource) Profile(context.Context, string) (*models.Profile, error) {
	f.record("profile")
	return f.profile, nil
}

func (f *fakeSource) Calendar(context.Context, string) (*models.Calendar, error) {
	return f.calendar, nil
}

func (f *fakeSource) Estimates(context.Context, string) (*models.Estimates, error) {
	return f.estimates, nil
}

func (f *fakeSource) News(context.Context, string) ([]models.NewsItem, error) {
	return f.news, nil
}

func (f *fakeSource) Realtime(_ context.Context, symbol string) (*models.RealtimePrice, error) {
	f.record("realtime " + symbol)
	p, ok := f.prices[symbol]
	if !ok {
		return nil, errors.New("no price for " + symbol)
	}
	return &models.RealtimePrice{Symbol: symbol, Price: p}, nil
}

func (f *fakeSource) RealtimeQuote(_ context.Context, symbol string) (*models.RealtimeQuote, error) {
	f.record("quote " + symbol)
	return f.quote, nil
}

func (f *fakeSource) Earnings(context.Context, string) (*models.Earnings, error) {
	return f.earnings, nil
}

func (f *fakeSource) CompanyTickers(context.Context) ([]models.CompanyTicker, error) {
	return f.tickers, nil
}

func (f *fakeSource) Submissions(_ context.Context, cik string) ([]models.Filing, error) {
	f.record("submissions " + cik)
	return f.filings, nil
}

func day(y, m, d int) time.Time { return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

// rampChart has n daily bars with closes 1..n and highs one above.
func rampChart(n int) *models.Chart {
	c := &models.Chart{Symbol: "AAPL", InstrumentType: SecurityType, Currency: "USD", Timezone: "America/New_York"}
	for i := 0; i < n; i++ {
		v := float64(i + 1)
		c.Bars = append(c.Bars, models.Bar{
			Date: day(2023, 1, 2).AddDate(0, 0, i),
			Open: series.Val(v), High: series.Val(v + 1), Low: series.Val(v - 0.5),
			Close: series.Val(v + 0.004), Volume: series.Val(1000),
		})
	}
	return c
}

func newService(src *fakeSource) *Service {
	s := New(src)
	s.now = func() time.Time { return day(2023, 12, 1) }
	return s
}

func TestTimeseriesRejectsNonEquity(t *testing.T) {
	c := rampChart(3)
	c.InstrumentType = "ETF"
	_, err := newService(&fakeSource{chart: c}).Timeseries(context.Background(), "SPY", TimeseriesOptions{})
	var se *provider.InvalidSecurityError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "ETF", se.Got)
}

func TestTimeseriesLineOfAllColumns(t *testing.T) {
	src := &fakeSource{chart: rampChart(3)}
	_, err := newService(src).Timeseries(context.Background(), "AAPL", TimeseriesOptions{Display: display.Line})
	var ce *provider.ChartReadabilityError
	require.True(t, errors.As(err, &ce))
	assert.Empty(t, src.calls, "nothing is fetched")
}

func TestTimeseriesValidation(t *testing.T) {
	s := newService(&fakeSource{chart: rampChart(3)})
	ctx := context.Background()

	_, err := s.Timeseries(ctx, "AAPL", TimeseriesOptions{Interval: "4h"})
	var ipe *provider.InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "interval", ipe.Param)

	_, err = s.Timeseries(ctx, "AAPL", TimeseriesOptions{Start: "01/02/2023"})
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "start", ipe.Param)
}

func TestTimeseriesCloseRoundedAndReturns(t *testing.T) {
	s := newService(&fakeSource{chart: rampChart(3)})
	ctx := context.Background()

	r, err := s.Timeseries(ctx, "AAPL", TimeseriesOptions{Data: "close"})
	require.NoError(t, err)
	require.Len(t, r.Series, 1)
	assert.Equal(t, "Close", r.Series[0].Name)
	assert.Equal(t, 2.0, r.Series[0].Points[1].Value.V)

	r, err = s.Timeseries(ctx, "AAPL", TimeseriesOptions{Data: "close", Calculation: CalcSimpleReturn})
	require.NoError(t, err)
	assert.False(t, r.Series[0].Points[0].Value.Valid)
	assert.InDelta(t, 1.0, r.Series[0].Points[1].Value.V, 1e-9)

	r, err = s.Timeseries(ctx, "AAPL", TimeseriesOptions{})
	require.NoError(t, err)
	assert.Len(t, r.Series, 5)
	r, err = s.Timeseries(ctx, "AAPL", TimeseriesOptions{Data: "close", Calculation: "log return"})
	require.NoError(t, err)
	assert.InDelta(t, math.Log(2), r.Series[0].Points[1].Value.V, 1e-2)

	_, err = s.Timeseries(ctx, "AAPL", TimeseriesOptions{Calculation: "log_return"})
	var ipe *provider.InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "calculation", ipe.Param)
}

func TestRealtimeStripsExchangeSuffix(t *testing.T) {
	src := &fakeSource{
		prices: map[string]series.Num{"SHOP": series.Val(101.456)},
		quote:  &models.RealtimeQuote{Symbol: "SHOP", Currency: "CAD"},
	}
	r, err := newService(src).Realtime(context.Background(), "SHOP.TO", display.JSON)
	require.NoError(t, err)
	p := r.Value.(Price)
	assert.Equal(t, 101.46, p.Price.V)
	assert.Equal(t, "CAD", p.Currency)
	assert.True(t, src.called("realtime SHOP"))

	_, err = newService(src).Realtime(context.Background(), "SHOP.TO", display.Table)
	var ipe *provider.InvalidParameterError
	assert.True(t, errors.As(err, &ipe))
}

func revenueFundamentals(interval string) *models.Fundamentals {
	return &models.Fundamentals{
		Symbol:   "SAP",
		Interval: interval,
		Currency: "USD",
		Items: map[string]series.Series{
			"TotalRevenue": series.New("TotalRevenue",
				[]time.Time{day(2023, 6, 30), day(2024, 6, 30)},
				[]series.Num{series.Val(1.2e9), series.Val(1e9)}),
		},
	}
}

func TestStatementConvertsCurrency(t *testing.T) {
	src := &fakeSource{
		fund:   map[string]*models.Fundamentals{"annual": revenueFundamentals("annual")},
		prices: map[string]series.Num{"USD/EUR": series.Val(0.9)},
	}
	r, err := newService(src).Statement(context.Background(), "SAP", StatementOptions{Statement: "income", Unit: "million", Currency: "eur"})
	require.NoError(t, err)
	assert.Equal(t, []string{"FY 2024", "FY 2023"}, r.Frame.Columns)
	v, ok := r.Frame.Cell("Total Revenue", "FY 2024")
	require.True(t, ok)
	assert.Equal(t, 900.0, v.V)
	assert.True(t, src.called("realtime USD/EUR"))
}

func TestStatementQuarterly(t *testing.T) {
	src := &fakeSource{fund: map[string]*models.Fundamentals{"quarterly": revenueFundamentals("quarterly")}}
	r, err := newService(src).Statement(context.Background(), "SAP",
		StatementOptions{Statement: "income", Interval: "quarter", Unit: "billion", Decimal: true})
	require.NoError(t, err)
	assert.True(t, src.called("fundamentals SAP quarterly"))
	assert.Equal(t, "2024-06", r.Frame.Columns[0])
	v, _ := r.Frame.Cell("Total Revenue", "2023-06")
	assert.Equal(t, 1.2, v.V)
	assert.False(t, src.called("realtime USD/USD"))
}

func TestStatementDefaultsToAllRaw(t *testing.T) {
	src := &fakeSource{fund: map[string]*models.Fundamentals{"annual": revenueFundamentals("annual")}}
	r, err := newService(src).Statement(context.Background(), "SAP", StatementOptions{})
	require.NoError(t, err)
	assert.Equal(t, "SAP all statement (raw)", r.Frame.Title)
	assert.Equal(t, []string{"FY 2024", "FY 2023"}, r.Frame.Columns)
	assert.Equal(t, "Total Revenue", r.Frame.Index[0])
	assert.Contains(t, r.Frame.Index, "Total Assets")
	assert.Contains(t, r.Frame.Index, "Operating Cash Flow")

	v, ok := r.Frame.Cell("Total Revenue", "FY 2024")
	require.True(t, ok)
	assert.Equal(t, 1e9, v.V)
	assert.True(t, src.called("fundamentals SAP annual"))
}

func TestStatementRejectsUnknownKind(t *testing.T) {
	_, err := newService(&fakeSource{}).Statement(context.Background(), "SAP", StatementOptions{Statement: "equity"})
	var ipe *provider.InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "statement", ipe.Param)
}

func TestQuote(t *testing.T) {
	src := &fakeSource{
		chart:   rampChart(300),
		prices:  map[string]series.Num{"AAPL": series.Val(330)},
		quote:   &models.RealtimeQuote{Symbol: "AAPL", Name: "Apple Inc", Exchange: "NASDAQ", Currency: "USD"},
		profile: &models.Profile{SharesOutstanding: series.Val(1000)},
	}
	r, err := newService(src).Quote(context.Background(), "AAPL", display.JSON)
	require.NoError(t, err)
	q := r.Value.(Quote)

	assert.Equal(t, "Apple Inc", q.Name)
	assert.Equal(t, "America/New_York", q.Timezone)
	assert.Equal(t, 300.0, q.LastTradingDay.Open.V)
	assert.Equal(t, 301.0, q.TTM.High.V)
	assert.False(t, q.PercentChange.FiveYear.Valid, "history shorter than five years")
	assert.InDelta(t, 330/49.004-1, q.PercentChange.OneYear.V, 1e-9)
	assert.InDelta(t, 330/296.004-1, q.PercentChange.FiveDay.V, 1e-9)
	assert.InDelta(t, 330/1.004-1, q.PercentChange.YTD.V, 1e-9)
	assert.Equal(t, 330000.0, q.MarketCap.V)
	assert.Equal(t, 1000.0, q.AvgVolume90.V)
	assert.Contains(t, q.Markdown(), "330,000")
}

func TestChangeOverNeedsLongerHistory(t *testing.T) {
	closes := rampChart(5).Series(models.FieldClose, "Close")
	assert.False(t, changeOver(closes, series.Val(10), 5).Valid)
	assert.True(t, changeOver(rampChart(6).Series(models.FieldClose, "Close"), series.Val(10), 5).Valid)
}

func TestCommas(t *testing.T) {
	assert.Equal(t, "1,234,567", commas(series.Val(1234567)))
	assert.Equal(t, "-12,345", commas(series.Val(-12345)))
	assert.Equal(t, "999", commas(series.Val(999)))
	assert.Equal(t, "NaN", commas(series.NA))
}

func infoSource() *fakeSource {
	return &fakeSource{
		chart: rampChart(3),
		quote: &models.RealtimeQuote{Symbol: "AAPL", Name: "Apple Inc", Exchange: "NASDAQ", Currency: "USD"},
		profile: &models.Profile{
			Country: "United States", Sector: "Technology",
			Officers: []models.Officer{{Name: "Tim Cook", Title: "CEO"}},
		},
		calendar: &models.Calendar{EarningsDates: []time.Time{day(2024, 10, 31)}},
		tickers:  []models.CompanyTicker{{CIK: "0000320193", Ticker: "AAPL", Title: "Apple Inc."}},
		filings: []models.Filing{
			{AccessionNumber: "0000320193-24-000123", FilingDate: day(2024, 11, 1), Form: "10-K"},
			{AccessionNumber: "0000320193-24-000081", FilingDate: day(2024, 8, 2), Form: "10-Q"},
		},
	}
}

func TestInfo(t *testing.T) {
	r, err := newService(infoSource()).Info(context.Background(), "AAPL", display.Pretty)
	require.NoError(t, err)
	info := r.Value.(Info)
	assert.Equal(t, "0000320193", info.CIK)
	assert.Equal(t, "CEO", info.Officers["Tim Cook"])
	assert.Equal(t, []string{"October 31, 2024"}, info.EarningsDates)
	assert.Equal(t, "-", info.DividendDate)
	assert.Equal(t, "-", info.Industry)
	assert.Contains(t, info.Markdown(), "Tim Cook")
}

func TestInfoWithoutCIK(t *testing.T) {
	src := infoSource()
	src.tickers = nil
	r, err := newService(src).Info(context.Background(), "SHOP.TO", display.JSON)
	require.NoError(t, err)
	assert.Equal(t, NoCIK, r.Value.(Info).CIK)
}

func TestFilings(t *testing.T) {
	src := infoSource()
	r, err := newService(src).Filings(context.Background(), "AAPL", "10-Q", display.Table)
	require.NoError(t, err)
	assert.True(t, src.called("submissions 0000320193"))
	header, rows := r.Value.(Filings).TableRows()
	assert.Equal(t, "accessionNumber", header[0])
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"0000320193-24-000081", "2024-08-02", "10-Q"}, rows[0])

	_, err = newService(src).Filings(context.Background(), "ZZZZ", "", display.JSON)
	var ipe *provider.InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "ticker", ipe.Param)
}

func TestEPSTimeseries(t *testing.T) {
	src := &fakeSource{earnings: &models.Earnings{
		Annual: []models.AnnualEPS{
			{FiscalDateEnding: day(2024, 9, 30), ReportedEPS: series.Val(6.08)},
			{FiscalDateEnding: day(2023, 9, 30), ReportedEPS: series.Val(6.13)},
		},
		Quarterly: []models.QuarterlyEPS{
			{FiscalDateEnding: day(2024, 9, 30), ReportedEPS: series.Val(1.64), EstimatedEPS: series.Val(1.6)},
			{FiscalDateEnding: day(2024, 6, 30), ReportedEPS: series.Val(1.4), EstimatedEPS: series.NA},
		},
	}}
	s := newService(src)

	r, err := s.EPSTimeseries(context.Background(), "AAPL", "annual", display.JSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"FY 2023", "FY 2024"}, r.Frame.Index)
	assert.Equal(t, 6.08, r.Value.(map[string]series.Num)["FY 2024"].V)

	r, err = s.EPSTimeseries(context.Background(), "AAPL", "quarter", display.Bar)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06", "2024-09"}, r.Frame.Index)
	assert.Equal(t, []string{colReported, colEstimated}, r.Frame.Columns)
	assert.False(t, r.Value.(map[string]QuarterEPS)["2024-06"].Estimated.Valid)
}

func TestAnalystEstimates(t *testing.T) {
	src := &fakeSource{estimates: &models.Estimates{
		Trend: []models.EstimateTrend{
			{Period: "0q", EarningsAvg: series.Val(1.6), RevenueAvg: series.Val(94.5e9), Growth: series.Val(0.05)},
			{Period: "+1y", EarningsAvg: series.Val(7.4)},
		},
		TargetMean: series.Val(245),
	}}
	r, err := newService(src).AnalystEstimates(context.Background(), "AAPL", display.JSON)
	require.NoError(t, err)
	rep := r.Value.(AnalystReport)
	assert.Equal(t, 1.6, rep.Earnings["current quarter"].Avg.V)
	assert.Equal(t, 7.4, rep.Earnings["next year"].Avg.V)
	assert.NotContains(t, rep.Earnings, "next quarter")
	assert.Equal(t, 245.0, rep.Price.Mean.V)

	v, _ := r.Frame.Cell("Revenue average", "current quarter")
	assert.Equal(t, 94500.0, v.V)
	v, _ = r.Frame.Cell("EPS average", "next quarter")
	assert.False(t, v.Valid)
}

func TestDividend(t *testing.T) {
	c := rampChart(3)
	c.Dividends = series.New("div", []time.Time{day(2024, 8, 12), day(2024, 5, 10)},
		[]series.Num{series.Val(0.25), series.Val(0.2499)})
	r, err := newService(&fakeSource{chart: c}).Dividend(context.Background(), "AAPL", display.Table)
	require.NoError(t, err)
	value := r.Value.(map[string]series.Num)
	assert.Equal(t, 0.25, value["2024-05-10"].V)
	require.Len(t, r.Series, 1)
	assert.Equal(t, "Dividends", r.Series[0].Name)
	assert.Equal(t, day(2024, 5, 10), r.Series[0].Points[0].Date)
}

func TestStats(t *testing.T) {
	src := &fakeSource{
		chart: rampChart(600),
		fund: map[string]*models.Fundamentals{
			"annual":    revenueFundamentals("annual"),
			"quarterly": revenueFundamentals("quarterly"),
		},
		prices:  map[string]series.Num{"AAPL": series.Val(200)},
		profile: &models.Profile{Name: "Apple Inc", SharesOutstanding: series.Val(15e9)},
	}
	r, err := newService(src).Stats(context.Background(), "AAPL", display.JSON)
	require.NoError(t, err)
	st := r.Value.(*fundamental.Stats)
	assert.Equal(t, "AAPL", st.Symbol)
	assert.Equal(t, "Apple Inc", st.Name)
	assert.Equal(t, "USD", st.Currency)
	assert.Equal(t, []string{"FY 2024", "FY 2023"}, st.Years)
	assert.NotEmpty(t, st.Sections)
	require.NotNil(t, r.Frame)
	assert.True(t, src.called("fundamentals AAPL annual"))
	assert.True(t, src.called("fundamentals AAPL quarterly"))
}

func TestStatsDisplayModes(t *testing.T) {
	src := &fakeSource{}
	_, err := newService(src).Stats(context.Background(), "AAPL", display.Line)
	var ipe *provider.InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, []string{display.JSON, display.Table, display.Pretty}, ipe.Valid)
	assert.Empty(t, src.calls)
}

func TestStatsInputFiscalYearPrices(t *testing.T) {
	c := rampChart(600)
	in, err := statsInput(revenueFundamentals("annual"), revenueFundamentals("quarterly"), c, series.Val(1), series.Val(1))
	require.NoError(t, err)
	require.Len(t, in.FiscalYearPrices, 2)
	assert.Equal(t, 546.004, in.FiscalYearPrices[0].V)
	assert.Equal(t, 180.004, in.FiscalYearPrices[1].V)

	late := rampChart(10)
	in, err = statsInput(revenueFundamentals("annual"), revenueFundamentals("quarterly"), late, series.Val(1), series.Val(1))
	require.NoError(t, err)
	assert.False(t, in.FiscalYearPrices[0].Valid, "no close within five days of the fiscal year end")
}

package indicator

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

var today = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	nipa      map[string]series.Series
	bls       map[string]series.Series
	fred      map[string]series.Series
	chart     *models.Chart
	blsStarts map[string]time.Time
	calls     []string
}

func (f *fakeSource) NIPA(_ context.Context, table, code, frequency string) (series.Series, error) {
	f.calls = append(f.calls, "nipa "+table+"/"+code+"/"+frequency)
	s, ok := f.nipa[code]
	if !ok {
		return series.Series{}, errors.New("no line " + code)
	}
	return s, nil
}

func (f *fakeSource) BLSSeries(_ context.Context, id string, start time.Time) (series.Series, error) {
	f.calls = append(f.calls, "bls "+id)
	if f.blsStarts == nil {
		f.blsStarts = map[string]time.Time{}
	}
	f.blsStarts[id] = start
	s, ok := f.bls[id]
	if !ok {
		return series.Series{}, errors.New("no series " + id)
	}
	return s, nil
}

func (f *fakeSource) FredSeries(_ context.Context, id, _ string, _ datasource.Range) (series.Series, error) {
	f.calls = append(f.calls, "fred "+id)
	s, ok := f.fred[id]
	if !ok {
		return series.Series{}, errors.New("no series " + id)
	}
	return s, nil
}

func (f *fakeSource) Chart(_ context.Context, symbol string, _ datasource.Range) (*models.Chart, error) {
	f.calls = append(f.calls, "chart "+symbol)
	return f.chart, nil
}

func newService(src Source) *Service {
	s := New(src)
	s.now = func() time.Time { return today }
	return s
}

// stepped builds n observations from start, step apart, with value(i).
func stepped(start time.Time, n int, step func(time.Time, int) time.Time, value func(int) float64) series.Series {
	s := series.Series{Name: "raw"}
	for i := 0; i < n; i++ {
		s.Points = append(s.Points, series.Point{Date: step(start, i), Value: series.Val(value(i))})
	}
	return s
}

func months(t time.Time, i int) time.Time   { return t.AddDate(0, i, 0) }
func quarters(t time.Time, i int) time.Time { return t.AddDate(0, 3*i, 0) }
func days(t time.Time, i int) time.Time     { return t.AddDate(0, 0, i) }

func gdpSource() *fakeSource {
	growth := func(i int) float64 { return 100 * math.Pow(1.01, float64(i)) }
	return &fakeSource{nipa: map[string]series.Series{
		"A191RC": stepped(time.Date(2014, 3, 1, 0, 0, 0, 0, time.UTC), 40, quarters, growth),
	}}
}

func TestGDPYearOverYear(t *testing.T) {
	src := gdpSource()
	r, err := newService(src).GDP(context.Background(), Options{Period: "1y"})
	require.NoError(t, err)

	require.Len(t, r.Series, 1)
	ys := r.Series[0]
	assert.Equal(t, "Nominal GDP YoY % Change", ys.Name)
	require.Equal(t, 5, ys.Len())
	last, _ := ys.Last()
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), last.Date)
	assert.InDelta(t, 4.06, last.Value.V, 1e-9)
	assert.Equal(t, []string{"nipa T10105/A191RC/Q"}, src.calls)
}

func TestGDPFigures(t *testing.T) {
	s := newService(gdpSource())
	ctx := context.Background()

	r, err := s.GDP(ctx, Options{Figure: FigurePoP, Period: "max"})
	require.NoError(t, err)
	assert.Equal(t, "Nominal GDP QoQ % Change", r.Series[0].Name)
	assert.Equal(t, 39, r.Series[0].Len())
	assert.InDelta(t, 1.0, r.Series[0].Points[0].Value.V, 1e-9)

	r, err = s.GDP(ctx, Options{Figure: FigureRaw, Period: "max"})
	require.NoError(t, err)
	assert.Equal(t, "Nominal GDP (in USD millions)", r.Series[0].Name)
	assert.Equal(t, 40, r.Series[0].Len())

	r, err = s.GDP(ctx, Options{Period: "max"})
	require.NoError(t, err)
	assert.Equal(t, 36, r.Series[0].Len(), "the first year has no prior year")
}

func TestRejectsBeforeFetch(t *testing.T) {
	src := gdpSource()
	s := newService(src)
	ctx := context.Background()
	var ipe *provider.InvalidParameterError

	_, err := s.GDP(ctx, Options{Figure: "mom"})
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "figure", ipe.Param)

	_, err = s.GDP(ctx, Options{Type: "x"})
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "type", ipe.Param)

	_, err = s.Unemployment(ctx, Options{Type: "U-4"})
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "type", ipe.Param)

	_, err = s.Sentiment(ctx, Options{Period: "6mo"})
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "period", ipe.Param)

	_, err = s.Sentiment(ctx, Options{Type: "umcsent"})
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "type", ipe.Param)
	assert.Equal(t, []string{"b_oecd", "c_mcie", "c_mcsi", "c_oecd"}, ipe.Valid)

	_, err = s.PCE(ctx, Options{Type: "pce"})
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "type", ipe.Param)

	_, err = s.Housing(ctx, Options{Type: "esales", Figure: FigureYoY})
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "figure", ipe.Param)

	_, err = s.VIX(ctx, MarketOptions{Display: display.Line})
	var cre *provider.ChartReadabilityError
	assert.True(t, errors.As(err, &cre))

	assert.Empty(t, src.calls)
}

func TestPriceIndexStart(t *testing.T) {
	cpi := stepped(time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC), 150, months, func(i int) float64 { return 200 + float64(i) })
	src := &fakeSource{bls: map[string]series.Series{"CUUR0000SA0": cpi, "WPUFD4": cpi}}
	s := newService(src)

	r, err := s.PriceIndex(context.Background(), Options{Period: "max", Figure: FigureRaw})
	require.NoError(t, err)
	assert.Equal(t, "CPI (index)", r.Series[0].Name)
	assert.Equal(t, time.Date(1913, 1, 1, 0, 0, 0, 0, time.UTC), src.blsStarts["CUUR0000SA0"])

	r, err = s.PriceIndex(context.Background(), Options{Type: "p", Period: "5y", Figure: FigurePoP})
	require.NoError(t, err)
	assert.True(t, src.blsStarts["WPUFD4"].IsZero())
	assert.Equal(t, "PPI MoM % Change", r.Series[0].Name)
	assert.Equal(t, 61, r.Series[0].Len())
	last, _ := r.Series[0].Last()
	assert.InDelta(t, 0.29, last.Value.V, 1e-9) // 349/348
}

func TestLaborPayrollChange(t *testing.T) {
	levels := series.New("raw",
		[]time.Time{
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		[]series.Num{series.Val(150000), series.Val(150200), series.Val(150100)},
	)
	src := &fakeSource{bls: map[string]series.Series{"CES0000000001": levels}}
	r, err := newService(src).Labor(context.Background(), Options{Type: "payroll", Period: "max"})
	require.NoError(t, err)

	ys := r.Series[0]
	assert.Equal(t, "Nonfarm Payrolls, MoM Change", ys.Name)
	require.Equal(t, 2, ys.Len())
	assert.Equal(t, 200000.0, ys.Points[0].Value.V)
	assert.Equal(t, -100000.0, ys.Points[1].Value.V)
}

func TestLaborClaimsFromFred(t *testing.T) {
	claims := stepped(time.Date(2020, 1, 4, 0, 0, 0, 0, time.UTC), 300, func(t time.Time, i int) time.Time { return t.AddDate(0, 0, 7*i) },
		func(i int) float64 { return 200000 })
	src := &fakeSource{fred: map[string]series.Series{"ICSA": claims}}
	r, err := newService(src).Labor(context.Background(), Options{Type: "claims", Period: "1y"})
	require.NoError(t, err)
	assert.Equal(t, "Initial Claims, Weekly", r.Series[0].Name)
	assert.Equal(t, 53, r.Series[0].Len())
	assert.Equal(t, []string{"fred ICSA"}, src.calls)
}

func TestSentimentYearToDate(t *testing.T) {
	ys := stepped(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 17, months, func(i int) float64 { return 70 + float64(i) })
	src := &fakeSource{fred: map[string]series.Series{"MICH": ys}}
	r, err := newService(src).Sentiment(context.Background(), Options{Type: "c_mcie", Period: "ytd"})
	require.NoError(t, err)
	assert.Equal(t, "Michigan Consumer Inflation Expectations", r.Series[0].Name)
	assert.Equal(t, 5, r.Series[0].Len())
}

func TestFedRateDailyIsCalendarWindow(t *testing.T) {
	ys := stepped(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 895, days, func(int) float64 { return 5.33 })
	src := &fakeSource{fred: map[string]series.Series{"RIFSPFFNB": ys, "FEDFUNDS": ys}}
	s := newService(src)

	r, err := s.FedRate(context.Background(), FedRateOptions{Period: "1y"})
	require.NoError(t, err)
	first, _ := r.Series[0].First()
	assert.Equal(t, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Federal Funds Rate (DAILY)", r.Series[0].Name)

	r, err = s.FedRate(context.Background(), FedRateOptions{Interval: "1mo", Period: "1y"})
	require.NoError(t, err)
	assert.Equal(t, 13, r.Series[0].Len())

	_, err = s.FedRate(context.Background(), FedRateOptions{Interval: "3mo"})
	var ipe *provider.InvalidParameterError
	require.True(t, errors.As(err, &ipe))
	assert.Equal(t, "interval", ipe.Param)
}

func TestHousingExistingSales(t *testing.T) {
	ys := series.New("raw",
		[]time.Time{
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		[]series.Num{series.Val(4000000), series.Val(4100000), series.Val(4200000), series.Val(4150000)},
	)
	src := &fakeSource{fred: map[string]series.Series{"EXHOSLUSM495S": ys}}
	s := newService(src)

	r, err := s.Housing(context.Background(), Options{Type: "esales", Period: "max"})
	require.NoError(t, err)
	assert.Equal(t, []series.Num{series.Val(4100), series.Val(4200), series.Val(4150)}, r.Series[0].Values())

	r, err = s.Housing(context.Background(), Options{Type: "esales", Period: "max", Figure: FigurePoP})
	require.NoError(t, err)
	assert.Equal(t, "Existing Housing Sales SAAR MoM % Change", r.Series[0].Name)
	assert.InDelta(t, 2.44, r.Series[0].Points[0].Value.V, 1e-9)
}

func TestVIX(t *testing.T) {
	src := &fakeSource{chart: &models.Chart{Bars: []models.Bar{
		{Date: today, Open: series.Val(13.1), High: series.Val(14.2), Low: series.Val(12.9), Close: series.Val(13.456)},
	}}}
	r, err := newService(src).VIX(context.Background(), MarketOptions{Data: "close", Display: display.Line})
	require.NoError(t, err)
	require.Len(t, r.Series, 1)
	assert.Equal(t, "VIX Close", r.Series[0].Name)
	assert.Equal(t, 13.46, r.Series[0].Points[0].Value.V)

	r, err = newService(src).DollarIndex(context.Background(), MarketOptions{})
	require.NoError(t, err)
	assert.Len(t, r.Series, 4)
	assert.Equal(t, "$_INDEX Open", r.Series[0].Name)
	assert.Equal(t, []string{"chart ^VIX", "chart DX-Y.NYB"}, src.calls)
}

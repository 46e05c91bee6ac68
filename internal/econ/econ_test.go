package econ

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

var today = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu    sync.Mutex
	data  map[string]series.Series
	calls []string
}

func (f *fakeSource) lookup(key string) (series.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	s, ok := f.data[key]
	if !ok {
		return series.Series{}, errors.New("no series " + key)
	}
	return s, nil
}

func (f *fakeSource) IFS(_ context.Context, country, indicator, frequency string, _ time.Time) (series.Series, error) {
	return f.lookup(frequency + "." + country + "." + indicator)
}

func (f *fakeSource) FredSeries(_ context.Context, id, _ string, _ datasource.Range) (series.Series, error) {
	return f.lookup(id)
}

func newService(src Source) *Service {
	s := New(src)
	s.now = func() time.Time { return today }
	return s
}

// quarterly has 20 quarters from 2019-Q1 to 2023-Q4, dated on the last
// month of each quarter.
func quarterly(value func(int) float64) series.Series {
	s := series.Series{Name: "raw"}
	for i := 0; i < 20; i++ {
		d := time.Date(2019+i/4, time.Month(3*(i%4)+3), 1, 0, 0, 0, 0, time.UTC)
		s.Points = append(s.Points, series.Point{Date: d, Value: series.Val(value(i))})
	}
	return s
}

// monthly has 60 months from 2019-01 to 2023-12 valued 100+i.
func monthly() series.Series {
	s := series.Series{Name: "raw"}
	for i := 0; i < 60; i++ {
		d := time.Date(2019, time.Month(1+i), 1, 0, 0, 0, 0, time.UTC)
		s.Points = append(s.Points, series.Point{Date: d, Value: series.Val(float64(100 + i))})
	}
	return s
}

// Nominal GDP is 100+2i; raw real GDP is 60+i, so at 2020-Q1 (i=4) the
// real series is scaled by 108/64.
func gdpSource() *fakeSource {
	return &fakeSource{data: map[string]series.Series{
		"Q.DE." + NominalGDP: quarterly(func(i int) float64 { return float64(100 + 2*i) }),
		"Q.DE." + RealGDP:    quarterly(func(i int) float64 { return float64(60 + i) }),
	}}
}

func last(t *testing.T, s series.Series) series.Point {
	t.Helper()
	p, ok := s.Last()
	require.True(t, ok)
	return p
}

func TestGDPNominal(t *testing.T) {
	src := gdpSource()
	res, err := newService(src).GDP(context.Background(), "de", GDPOptions{Period: "1y"})
	require.NoError(t, err)
	require.Len(t, res.Series, 1)

	ys := res.Series[0]
	assert.Equal(t, "DE Q Nominal GDP", ys.Name)
	assert.Equal(t, 5, ys.Len())
	p := last(t, ys)
	assert.Equal(t, "2023-12-01", p.Date.Format(series.DateLayout))
	assert.Equal(t, 138.0, p.Value.V)
	assert.Equal(t, []string{"Q.DE." + NominalGDP}, src.calls)
}

func TestGDPReal(t *testing.T) {
	res, err := newService(gdpSource()).GDP(context.Background(), "DE", GDPOptions{Type: GDPReal, Period: "max"})
	require.NoError(t, err)

	ys := res.Series[0]
	assert.Equal(t, "DE Q 2020-Q1 Base Real GDP", ys.Name)
	base, ok := ys.ValueAt(time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 108.0, base.V)
	// 79 * 108/64 = 133.3125
	assert.Equal(t, 133.0, last(t, ys).Value.V)
	// 77 * 108/64 = 129.9375 truncates toward zero
	v, ok := ys.ValueAt(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 129.0, v.V)
}

func TestGDPTruncatesInputs(t *testing.T) {
	src := &fakeSource{data: map[string]series.Series{
		"Q.DE." + NominalGDP: quarterly(func(i int) float64 { return float64(100+2*i) + 0.9 }),
	}}
	res, err := newService(src).GDP(context.Background(), "DE", GDPOptions{Period: "max"})
	require.NoError(t, err)
	assert.Equal(t, 138.0, last(t, res.Series[0]).Value.V)
}

func TestGDPDeflator(t *testing.T) {
	svc := newService(gdpSource())

	res, err := svc.GDP(context.Background(), "DE", GDPOptions{Type: GDPDeflator, Period: "max"})
	require.NoError(t, err)
	ys := res.Series[0]
	assert.Equal(t, "DE Q 2020-Q1 Base GDP Deflator", ys.Name)
	base, ok := ys.ValueAt(time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 100.0, base.V)
	assert.Equal(t, 103.76, last(t, ys).Value.V)

	res, err = svc.GDP(context.Background(), "DE", GDPOptions{Type: GDPDeflator, Figure: FigureTTM, Period: "max"})
	require.NoError(t, err)
	ys = res.Series[0]
	assert.Equal(t, "DE TTM 2020-Q1 Base GDP Deflator", ys.Name)
	assert.Equal(t, 17, ys.Len())
	// 540 nominal over 128+129+131+133 real
	assert.Equal(t, 103.65, last(t, ys).Value.V)
}

func TestGDPTrailingNominal(t *testing.T) {
	res, err := newService(gdpSource()).GDP(context.Background(), "DE", GDPOptions{Figure: FigureTTM, Period: "max"})
	require.NoError(t, err)

	ys := res.Series[0]
	assert.Equal(t, "DE TTM Nominal GDP", ys.Name)
	assert.Equal(t, 17, ys.Len())
	assert.Equal(t, 540.0, last(t, ys).Value.V)
	first, _ := ys.First()
	assert.Equal(t, "2019-12-01", first.Date.Format(series.DateLayout))
}

func TestGDPMissingBase(t *testing.T) {
	_, err := newService(gdpSource()).GDP(context.Background(), "DE", GDPOptions{Type: GDPReal, Base: "2015-Q1"})
	var anchor *series.MissingAnchorError
	require.True(t, errors.As(err, &anchor))
	assert.Equal(t, "2015-Q1", anchor.Anchor)
}

func TestGDPRejectsBeforeFetch(t *testing.T) {
	cases := []struct {
		country string
		opts    GDPOptions
		param   string
	}{
		{"XX", GDPOptions{}, "country"},
		{"DE", GDPOptions{Type: "potential"}, "type"},
		{"DE", GDPOptions{Figure: "annual"}, "figure"},
		{"DE", GDPOptions{Period: "6mo"}, "period"},
		{"DE", GDPOptions{Base: "2020Q1"}, "base"},
		{"DE", GDPOptions{Display: "candle"}, "display"},
	}
	for _, tc := range cases {
		t.Run(tc.param, func(t *testing.T) {
			src := gdpSource()
			_, err := newService(src).GDP(context.Background(), tc.country, tc.opts)
			var ip *provider.InvalidParameterError
			require.True(t, errors.As(err, &ip), "got %v", err)
			assert.Equal(t, tc.param, ip.Param)
			assert.Empty(t, src.calls)
		})
	}
}

func TestGDPUpstreamError(t *testing.T) {
	src := &fakeSource{data: map[string]series.Series{
		"Q.DE." + NominalGDP: quarterly(func(i int) float64 { return 1 }),
	}}
	_, err := newService(src).GDP(context.Background(), "DE", GDPOptions{Type: GDPReal})
	assert.ErrorContains(t, err, "no series Q.DE."+RealGDP)
}

func TestPriceIndexFigures(t *testing.T) {
	src := &fakeSource{data: map[string]series.Series{
		"M.DE.PCPI_IX": monthly(),
		"M.DE.PPPI_IX": monthly(),
	}}
	svc := newService(src)

	res, err := svc.PriceIndex(context.Background(), "DE", PriceOptions{})
	require.NoError(t, err)
	ys := res.Series[0]
	assert.Equal(t, "DE 2020-01 Base CPI", ys.Name)
	assert.Equal(t, 60, ys.Len())
	base, ok := ys.ValueAt(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 100.0, base.V)
	assert.Equal(t, 141.96, last(t, ys).Value.V)

	res, err = svc.PriceIndex(context.Background(), "DE", PriceOptions{Figure: FigureYoY, Period: "max"})
	require.NoError(t, err)
	ys = res.Series[0]
	assert.Equal(t, "DE CPI YoY % Change", ys.Name)
	assert.Equal(t, 48, ys.Len())
	assert.Equal(t, 8.16, last(t, ys).Value.V)

	res, err = svc.PriceIndex(context.Background(), "DE", PriceOptions{Type: "producer", Figure: FigureMoM, Period: "1y"})
	require.NoError(t, err)
	ys = res.Series[0]
	assert.Equal(t, "DE PPI MoM % Change", ys.Name)
	assert.Equal(t, 13, ys.Len())
	assert.Equal(t, 0.63, last(t, ys).Value.V)

	assert.Equal(t, []string{"M.DE.PCPI_IX", "M.DE.PCPI_IX", "M.DE.PPPI_IX"}, src.calls)

	_, err = svc.PriceIndex(context.Background(), "DE", PriceOptions{Type: "cpi"})
	var ip *provider.InvalidParameterError
	require.True(t, errors.As(err, &ip))
	assert.Equal(t, "type", ip.Param)
	assert.Equal(t, []string{"consumer", "producer"}, ip.Valid)
}

func TestPriceIndexBase(t *testing.T) {
	src := &fakeSource{data: map[string]series.Series{"M.DE.PCPI_IX": monthly()}}
	svc := newService(src)

	_, err := svc.PriceIndex(context.Background(), "DE", PriceOptions{Base: "Jan 2020"})
	var ip *provider.InvalidParameterError
	require.True(t, errors.As(err, &ip))
	assert.Equal(t, "base", ip.Param)
	assert.Empty(t, src.calls)

	// the base only matters for the index figure
	_, err = svc.PriceIndex(context.Background(), "DE", PriceOptions{Base: "Jan 2020", Figure: FigureYoY})
	require.NoError(t, err)

	_, err = svc.PriceIndex(context.Background(), "DE", PriceOptions{Base: "2010-01"})
	var anchor *series.MissingAnchorError
	assert.True(t, errors.As(err, &anchor))
}

func TestPCE(t *testing.T) {
	src := &fakeSource{data: map[string]series.Series{"PCEPILFE": monthly()}}
	res, err := newService(src).PCE(context.Background(), PriceOptions{Type: "core", Base: "2021-01", Period: "2y"})
	require.NoError(t, err)

	ys := res.Series[0]
	assert.Equal(t, "US 2021-01 Base Core PCE", ys.Name)
	assert.Equal(t, 25, ys.Len())
	// 159 / 124
	assert.Equal(t, 128.23, last(t, ys).Value.V)
	assert.Equal(t, []string{"PCEPILFE"}, src.calls)

	_, err = newService(src).PCE(context.Background(), PriceOptions{Type: "headline"})
	assert.EqualError(t, err, fmt.Sprintf("invalid type %q: valid choices are core, raw", "headline"))
}

package series

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthly(name string, start time.Time, vals ...float64) Series {
	s := Series{Name: name}
	for i, v := range vals {
		s.Points = append(s.Points, Point{Date: start.AddDate(0, i, 0), Value: Val(v)})
	}
	return s
}

func dailyN(n int) Series {
	s := Series{Name: "close"}
	start := day(2020, 1, 1)
	for i := 0; i < n; i++ {
		s.Points = append(s.Points, Point{Date: start.AddDate(0, 0, i), Value: Val(float64(i + 1))})
	}
	return s
}

// ── Num ──

func TestParseMissingMarkers(t *testing.T) {
	for _, in := range []string{"", ".", "-", "None", "abc"} {
		assert.False(t, Parse(in).Valid, "Parse(%q)", in)
	}
	assert.Equal(t, Val(1.5), Parse("1.5"))
}

func TestValNaNIsNA(t *testing.T) {
	assert.Equal(t, NA, Val(math.NaN()))
	assert.True(t, math.IsNaN(NA.Float()))
}

func TestDivZeroAndMissing(t *testing.T) {
	assert.Equal(t, NA, Div(Val(1), Val(0)))
	assert.Equal(t, NA, Div(Val(1), NA))
	assert.Equal(t, NA, Div(NA, Val(2)))
	assert.Equal(t, Val(0.5), Div(Val(1), Val(2)))
}

func TestRatioZeroDenominator(t *testing.T) {
	assert.True(t, math.IsInf(Ratio(Val(10), Val(0)).V, 1))
	assert.True(t, math.IsInf(Ratio(Val(-10), Val(0)).V, -1))
	assert.False(t, Ratio(Val(0), Val(0)).Valid)
	assert.False(t, Ratio(NA, Val(3)).Valid)
	assert.False(t, Ratio(Val(10), Val(0)).Finite())
}

func TestTruncTowardZero(t *testing.T) {
	assert.Equal(t, Val(129), Val(129.9375).Trunc())
	assert.Equal(t, Val(-2), Val(-2.7).Trunc())
	assert.Equal(t, NA, NA.Trunc())

	s := New("gdp", []time.Time{time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}, []Num{Val(10.99)})
	assert.Equal(t, 10.0, s.Trunc().Points[0].Value.V)
}

func TestSubOr0(t *testing.T) {
	assert.Equal(t, Val(5), SubOr0(Val(10), Val(3), NA, Val(2)))
	assert.Equal(t, NA, SubOr0(NA, Val(3)))
}

func TestNumJSON(t *testing.T) {
	b, err := json.Marshal([]Num{Val(1.25), NA, Val(math.Inf(1))})
	require.NoError(t, err)
	assert.Equal(t, `[1.25,null,"inf"]`, string(b))

	var back []Num
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, Val(1.25), back[0])
	assert.False(t, back[1].Valid)
	assert.True(t, math.IsInf(back[2].V, 1))
}

// ── Operators ──

func TestRateOfChangeProperty(t *testing.T) {
	s := monthly("x", day(2020, 1, 1), 10, 11, 12, 15, 9, 20)
	for _, lag := range []int{1, 2, 3} {
		r := RateOfChange(s, lag, false)
		require.Equal(t, s.Len(), r.Len(), "operator must not drop rows")
		for i := 0; i < s.Len(); i++ {
			if i < lag {
				assert.False(t, r.Points[i].Value.Valid, "lag %d row %d", lag, i)
				continue
			}
			want := s.Points[i].Value.V/s.Points[i-lag].Value.V - 1
			assert.InDelta(t, want, r.Points[i].Value.V, 1e-12)
		}
	}
}

func TestRateOfChangeYoYExample(t *testing.T) {
	cpi := monthly("cpi", day(2020, 1, 1),
		100, 100.5, 101, 101.8, 102.5, 103, 104, 104.9, 105.5, 106.1, 107, 107.6, 108.2)
	yoy := RateOfChange(cpi, 12, true)
	last, ok := yoy.Last()
	require.True(t, ok)
	assert.InDelta(t, 8.2, last.Value.V, 1e-9)
	assert.Equal(t, 12, yoy.Len()-yoy.DropNA().Len())
}

func TestRateOfChangeKeepsNAAlignment(t *testing.T) {
	s := monthly("x", day(2020, 1, 1), 10, 0, 12, 13)
	s.Points[2].Value = NA
	r := RateOfChange(s, 1, true)
	assert.False(t, r.Points[2].Value.Valid)
	assert.False(t, r.Points[3].Value.Valid)
	assert.Equal(t, -100.0, r.Points[1].Value.V)
}

func TestRebaseAnchorIsExactly100(t *testing.T) {
	s := monthly("idx", day(2019, 11, 1), 240, 245, 250, 260, 275)
	out, err := RebaseMonth(s, "2020-01", 100)
	require.NoError(t, err)
	v, ok := out.ValueAt(day(2020, 1, 1))
	require.True(t, ok)
	assert.Equal(t, 100.0, v.V)
	for i, p := range out.Points {
		assert.InDelta(t, s.Points[i].Value.V*0.4, p.Value.V, 1e-9)
	}
}

func TestRebaseArbitraryAnchor(t *testing.T) {
	s := monthly("idx", day(2020, 1, 1), 3, 7, 11, 13)
	for _, p := range s.Points {
		out, err := RebaseTo100(s, p.Date)
		require.NoError(t, err)
		v, _ := out.ValueAt(p.Date)
		assert.Equal(t, 100.0, v.V)
	}
}

func TestRebaseMissingAnchor(t *testing.T) {
	s := monthly("idx", day(2021, 1, 1), 1, 2, 3)
	_, err := RebaseMonth(s, "2020-01", 100)
	var mae *MissingAnchorError
	require.True(t, errors.As(err, &mae))
	assert.Equal(t, "2020-01", mae.Anchor)

	_, err = RebaseTo100(s, day(1999, 1, 1))
	assert.True(t, errors.As(err, &mae))
}

func TestRebaseQuarter(t *testing.T) {
	s := Series{Name: "gdp", Points: []Point{
		{Date: day(2019, 12, 1), Value: Val(50)},
		{Date: day(2020, 3, 1), Value: Val(200)},
		{Date: day(2020, 6, 1), Value: Val(210)},
	}}
	out, err := RebaseQuarter(s, "2020-Q1", 100)
	require.NoError(t, err)
	assert.Equal(t, 25.0, out.Points[0].Value.V)
	assert.Equal(t, 105.0, out.Points[2].Value.V)
}

func TestTrailingSumProperty(t *testing.T) {
	s := monthly("x", day(2020, 1, 1), 1, 2, 3, 4, 5, 6, 7)
	for _, w := range []int{1, 3, 4} {
		ts := TrailingSum(s, w)
		for i := range ts.Points {
			if i < w-1 {
				assert.False(t, ts.Points[i].Value.Valid)
				continue
			}
			var want float64
			for j := i - w + 1; j <= i; j++ {
				want += s.Points[j].Value.V
			}
			assert.Equal(t, want, ts.Points[i].Value.V)
		}
	}
}

func TestTrailingMeanNAInWindow(t *testing.T) {
	s := monthly("x", day(2020, 1, 1), 1, 2, 3, 4)
	s.Points[1].Value = NA
	m := TrailingMean(s, 2)
	assert.False(t, m.Points[1].Value.Valid)
	assert.False(t, m.Points[2].Value.Valid)
	assert.Equal(t, 3.5, m.Points[3].Value.V)
}

func TestLogReturn(t *testing.T) {
	s := monthly("x", day(2020, 1, 1), 100, 110)
	lr := LogReturn(s)
	assert.False(t, lr.Points[0].Value.Valid)
	assert.InDelta(t, math.Log(1.1), lr.Points[1].Value.V, 1e-12)
}

// ── Series helpers ──

func TestSortDeduplicates(t *testing.T) {
	s := Series{Points: []Point{
		{Date: day(2020, 1, 3), Value: Val(3)},
		{Date: day(2020, 1, 1), Value: Val(1)},
		{Date: day(2020, 1, 3), Value: Val(4)},
	}}
	out := s.Sort()
	require.NoError(t, out.Validate())
	require.Equal(t, 2, out.Len())
	assert.Equal(t, 4.0, out.Points[1].Value.V)
	assert.Error(t, s.Validate())
}

func TestAtOrBeforeAfter(t *testing.T) {
	s := monthly("x", day(2020, 1, 1), 1, 2, 3)
	p, ok := s.AtOrBefore(day(2020, 2, 15))
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Value.V)
	p, ok = s.AtOrAfter(day(2020, 2, 15))
	require.True(t, ok)
	assert.Equal(t, 3.0, p.Value.V)
	_, ok = s.AtOrBefore(day(2019, 1, 1))
	assert.False(t, ok)
}

func TestFromEnd(t *testing.T) {
	s := dailyN(10)
	assert.Equal(t, 10.0, s.FromEnd(0).V)
	assert.Equal(t, 6.0, s.FromEnd(4).V)
	assert.False(t, s.FromEnd(10).Valid)
}

// ── Period resolver ──

func TestPeriodOneYearDaily(t *testing.T) {
	s := dailyN(600)
	out, err := ApplyPeriod(s, Period1Y, Daily, day(2021, 8, 1))
	require.NoError(t, err)
	assert.Equal(t, 252, out.Len())
	last, _ := out.Last()
	assert.Equal(t, 600.0, last.Value.V)
}

func TestPeriodMaxIsIdentity(t *testing.T) {
	s := dailyN(30)
	out, err := ApplyPeriod(s, PeriodMax, Daily, time.Now())
	require.NoError(t, err)
	assert.Equal(t, s, out)
}

func TestPeriodLongerThanHistory(t *testing.T) {
	s := dailyN(40)
	out, err := ApplyPeriod(s, Period10Y, Daily, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 40, out.Len())
}

func TestPeriodYTD(t *testing.T) {
	s := monthly("x", day(2020, 6, 1), 1, 2, 3, 4, 5, 6, 7, 8, 9)
	out, err := ApplyPeriod(s, PeriodYTD, Monthly, day(2021, 3, 15))
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, 2021, out.Points[0].Date.Year())
}

func TestPeriodOffsetsConsistent(t *testing.T) {
	assert.Equal(t, 13, Offset(Period1Y, Monthly))
	assert.Equal(t, 5, Offset(Period1Y, Quarterly))
	assert.Equal(t, 53, Offset(Period1Y, Weekly))
	assert.Equal(t, 21, Offset(Period1M, Daily))
	_, err := Resolve("3y", Daily)
	assert.Error(t, err)
}

func TestStartDate(t *testing.T) {
	now := day(2024, 5, 10)
	d, err := StartDate(PeriodYTD, now)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 1, 1), d)
	d, _ = StartDate(PeriodMax, now)
	assert.Equal(t, MaxStart, d)
	d, _ = StartDate(Period6M, now)
	assert.Equal(t, day(2023, 11, 10), d)
}

// ── Frame ──

func TestFromSeriesUnionAndTranspose(t *testing.T) {
	a := monthly("a", day(2020, 1, 1), 1, 2)
	b := monthly("b", day(2020, 2, 1), 20, 30)
	f := FromSeries("t", "2006-01", a, b)
	assert.Equal(t, []string{"2020-01", "2020-02", "2020-03"}, f.Index)
	v, ok := f.Cell("2020-01", "b")
	require.True(t, ok)
	assert.False(t, v.Valid)

	tr := f.Transpose()
	assert.Equal(t, []string{"a", "b"}, tr.Index)
	v, _ = tr.Cell("b", "2020-03")
	assert.Equal(t, 30.0, v.V)
}

func TestFrameDoesNotAliasRows(t *testing.T) {
	f := NewFrame("t", "x")
	f.AddRow("r", Val(1))
	row, _ := f.Row("r")
	row[0] = Val(9)
	v, _ := f.Cell("r", "x")
	assert.Equal(t, 1.0, v.V)
}

func TestFrameJSONSplitLayout(t *testing.T) {
	f := NewFrame("", "Close")
	f.AddRow("2020-01-02", Val(1.5))
	f.AddRow("2020-01-03", NA)
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"columns":["Close"],"index":["2020-01-02","2020-01-03"],"data":[[1.5],[null]]}`, string(b))
}

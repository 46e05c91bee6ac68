package technical

import (
	"math"
	"testing"
	"time"

	"github.com/seenimoa/finflux/pkg/series"
)

// makeSeries builds a daily series from values; NaN becomes NA.
func makeSeries(vals ...float64) series.Series {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := series.Series{Name: "Close"}
	for i, v := range vals {
		n := series.Val(v)
		if math.IsNaN(v) {
			n = series.NA
		}
		s.Points = append(s.Points, series.Point{Date: start.AddDate(0, 0, i), Value: n})
	}
	return s
}

func TestSMA(t *testing.T) {
	vals := SMA(makeSeries(10, 20, 30, 40, 50), 3)
	if vals.Name != "SMA 3" {
		t.Errorf("name: got %q", vals.Name)
	}
	if vals.Points[1].Value.Valid {
		t.Error("SMA[1] should be NA")
	}
	// (10+20+30)/3
	if got := vals.Points[2].Value; got.V != 20 {
		t.Errorf("expected SMA[2]=20, got %v", got)
	}
	if got := vals.Points[4].Value; got.V != 40 {
		t.Errorf("expected SMA[4]=40, got %v", got)
	}
}

func TestSMAWindowWithMissingValue(t *testing.T) {
	vals := SMA(makeSeries(10, math.NaN(), 30, 40, 50), 2)
	if vals.Points[2].Value.Valid {
		t.Error("window containing NA should be NA")
	}
	if got := vals.Points[4].Value; got.V != 45 {
		t.Errorf("expected SMA[4]=45, got %v", got)
	}
}

func TestMultiSMAKeepsOrder(t *testing.T) {
	out := MultiSMA(makeSeries(1, 2, 3, 4), []int{3, 2})
	if len(out) != 2 || out[0].Name != "SMA 3" || out[1].Name != "SMA 2" {
		t.Fatalf("unexpected order: %v", out)
	}
}

func TestBollingerBands(t *testing.T) {
	b := BollingerBands(makeSeries(2, 4, 4, 4, 5, 5, 7, 9), 8, 2)
	mid := b.Middle.Points[7].Value
	if mid.V != 5 {
		t.Fatalf("middle: got %v", mid)
	}
	// sample std of the eight values is sqrt(32/7)
	sd := math.Sqrt(32.0 / 7.0)
	if d := b.Upper.Points[7].Value.V - (5 + 2*sd); math.Abs(d) > 1e-9 {
		t.Errorf("upper off by %g", d)
	}
	if d := b.Lower.Points[7].Value.V - (5 - 2*sd); math.Abs(d) > 1e-9 {
		t.Errorf("lower off by %g", d)
	}
	if b.Upper.Points[6].Value.Valid {
		t.Error("upper band before the first full window should be NA")
	}
	if got := b.Tail(3).Upper.Len(); got != 3 {
		t.Errorf("tail: got %d", got)
	}
}

func TestTailAggregates(t *testing.T) {
	s := makeSeries(5, 1, math.NaN(), 9, 3)
	if got := TailMean(s, 3); got.V != 6 {
		t.Errorf("mean of last 3 valid: got %v", got)
	}
	if got := TailMean(s, 100); got.V != 4.5 {
		t.Errorf("short history mean: got %v", got)
	}
	if got := TailMax(s, 4); got.V != 9 {
		t.Errorf("max: got %v", got)
	}
	if got := TailMin(s, 4); got.V != 1 {
		t.Errorf("min: got %v", got)
	}
	if TailMean(makeSeries(math.NaN()), 1).Valid {
		t.Error("all-NA tail should be NA")
	}
}

func BenchmarkSMA200_1000(b *testing.B) {
	vals := make([]float64, 1000)
	for i := range vals {
		vals[i] = 100 + float64(i%37)
	}
	s := makeSeries(vals...)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SMA(s, 200)
	}
}

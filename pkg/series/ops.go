package series

import (
	"fmt"
	"math"
	"time"
)

// MissingAnchorError is returned when a rebase anchor is not in the index
// or cannot serve as a divisor.
type MissingAnchorError struct {
	Series string
	Anchor string
}

func (e *MissingAnchorError) Error() string {
	return fmt.Sprintf("series %q: base %s is not in the index", e.Series, e.Anchor)
}

// Rebase scales s so that its value at base equals target.
func Rebase(s Series, base time.Time, target float64) (Series, error) {
	return rebaseAt(s, s.Index(base), base.Format(DateLayout), target)
}

// RebaseTo100 is Rebase with target 100.
func RebaseTo100(s Series, base time.Time) (Series, error) {
	return Rebase(s, base, 100)
}

// RebaseMonth rebases on the observation labelled with a "YYYY-MM" month.
func RebaseMonth(s Series, month string, target float64) (Series, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return Series{}, fmt.Errorf("parse base month %q: %w", month, err)
	}
	i := findPeriod(s, func(d time.Time) bool {
		return d.Year() == t.Year() && d.Month() == t.Month()
	})
	return rebaseAt(s, i, month, target)
}

// RebaseQuarter rebases on the observation labelled with a "YYYY-Qn" quarter.
func RebaseQuarter(s Series, quarter string, target float64) (Series, error) {
	var year, q int
	if _, err := fmt.Sscanf(quarter, "%d-Q%d", &year, &q); err != nil || q < 1 || q > 4 {
		return Series{}, fmt.Errorf("parse base quarter %q: expected YYYY-Qn", quarter)
	}
	i := findPeriod(s, func(d time.Time) bool {
		return d.Year() == year && QuarterOf(d) == q
	})
	return rebaseAt(s, i, quarter, target)
}

// QuarterOf returns the calendar quarter (1-4) of t.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// QuarterLabel formats t as "YYYY-Qn".
func QuarterLabel(t time.Time) string {
	return fmt.Sprintf("%d-Q%d", t.Year(), QuarterOf(t))
}

func findPeriod(s Series, match func(time.Time) bool) int {
	for i, p := range s.Points {
		if match(p.Date) {
			return i
		}
	}
	return -1
}

// rebaseAt divides by the anchor at index i. The anchor itself is set to
// target exactly so float rounding never moves it.
func rebaseAt(s Series, i int, label string, target float64) (Series, error) {
	if i < 0 || !s.Points[i].Value.Valid || s.Points[i].Value.V == 0 {
		return Series{}, &MissingAnchorError{Series: s.Name, Anchor: label}
	}
	anchor := s.Points[i].Value.V
	out := s.Map(func(n Num) Num { return Div(n.MulF(target), Val(anchor)) })
	out.Points[i].Value = Val(target)
	return out, nil
}

// Shift moves values forward by lag positions (negative lag moves them
// back); vacated positions are NA. Dates stay where they are.
func Shift(s Series, lag int) Series {
	pts := make([]Point, len(s.Points))
	for i, p := range s.Points {
		j := i - lag
		v := NA
		if j >= 0 && j < len(s.Points) {
			v = s.Points[j].Value
		}
		pts[i] = Point{Date: p.Date, Value: v}
	}
	return Series{Name: s.Name, Points: pts}
}

// RateOfChange returns s[t]/s[t-lag]-1, multiplied by 100 when asPercent.
// The first lag entries are NA and are kept.
func RateOfChange(s Series, lag int, asPercent bool) Series {
	prev := Shift(s, lag)
	pts := make([]Point, len(s.Points))
	for i, p := range s.Points {
		r := Div(p.Value, prev.Points[i].Value)
		if r.Valid {
			r = Val(r.V - 1)
			if asPercent {
				r = r.MulF(100)
			}
		}
		pts[i] = Point{Date: p.Date, Value: r}
	}
	return Series{Name: s.Name, Points: pts}
}

// SimpleReturn is the lag-1 rate of change as a fraction.
func SimpleReturn(s Series) Series {
	return RateOfChange(s, 1, false)
}

// LogReturn is ln(s[t]/s[t-1]).
func LogReturn(s Series) Series {
	prev := Shift(s, 1)
	pts := make([]Point, len(s.Points))
	for i, p := range s.Points {
		r := Div(p.Value, prev.Points[i].Value)
		if r.Valid && r.V > 0 {
			r = Val(math.Log(r.V))
		} else {
			r = NA
		}
		pts[i] = Point{Date: p.Date, Value: r}
	}
	return Series{Name: s.Name, Points: pts}
}

// TrailingSum returns the rolling sum over window observations. The first
// window-1 entries are NA, as is any window containing NA.
func TrailingSum(s Series, window int) Series {
	return trailing(s, window, func(vs []Num) Num { return Sum(vs...) })
}

// TrailingMean returns the rolling mean over window observations.
func TrailingMean(s Series, window int) Series {
	return trailing(s, window, func(vs []Num) Num { return Mean(vs...) })
}

// TrailingStd returns the rolling sample standard deviation.
func TrailingStd(s Series, window int) Series {
	return trailing(s, window, func(vs []Num) Num {
		m := Mean(vs...)
		if !m.Valid || len(vs) < 2 {
			return NA
		}
		var ss float64
		for _, v := range vs {
			d := v.V - m.V
			ss += d * d
		}
		return Val(math.Sqrt(ss / float64(len(vs)-1)))
	})
}

func trailing(s Series, window int, agg func([]Num) Num) Series {
	pts := make([]Point, len(s.Points))
	vals := s.Values()
	for i, p := range s.Points {
		v := NA
		if window > 0 && i >= window-1 {
			v = agg(vals[i-window+1 : i+1])
		}
		pts[i] = Point{Date: p.Date, Value: v}
	}
	return Series{Name: s.Name, Points: pts}
}

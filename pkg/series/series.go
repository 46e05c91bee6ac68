package series

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the canonical day format used for series labels.
const DateLayout = "2006-01-02"

// Point is one dated observation.
type Point struct {
	Date  time.Time `json:"date"`
	Value Num       `json:"value"`
}

// Series is a date-indexed sequence of observations, strictly increasing in date.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// New builds a series from parallel date and value slices.
func New(name string, dates []time.Time, values []Num) Series {
	n := len(dates)
	if len(values) < n {
		n = len(values)
	}
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{Date: dates[i], Value: values[i]}
	}
	return Series{Name: name, Points: pts}
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Points) }

// Values returns the observation values.
func (s Series) Values() []Num {
	out := make([]Num, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Dates returns the observation dates.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

// Validate reports the first out-of-order or duplicated date.
func (s Series) Validate() error {
	for i := 1; i < len(s.Points); i++ {
		if !s.Points[i].Date.After(s.Points[i-1].Date) {
			return fmt.Errorf("series %q: date %s at %d not after %s",
				s.Name, s.Points[i].Date.Format(DateLayout), i, s.Points[i-1].Date.Format(DateLayout))
		}
	}
	return nil
}

// Sort returns a copy ordered by date. For duplicated dates the last
// occurrence wins.
func (s Series) Sort() Series {
	pts := make([]Point, len(s.Points))
	copy(pts, s.Points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })
	out := pts[:0]
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1].Date.Equal(p.Date) {
			out[len(out)-1] = p
			continue
		}
		out = append(out, p)
	}
	return Series{Name: s.Name, Points: out}
}

// Rename returns the series under a new name.
func (s Series) Rename(name string) Series {
	s.Name = name
	return s
}

// Map applies f to every value, preserving dates.
func (s Series) Map(f func(Num) Num) Series {
	pts := make([]Point, len(s.Points))
	for i, p := range s.Points {
		pts[i] = Point{Date: p.Date, Value: f(p.Value)}
	}
	return Series{Name: s.Name, Points: pts}
}

// Scale multiplies every value by factor.
func (s Series) Scale(factor float64) Series {
	return s.Map(func(n Num) Num { return n.MulF(factor) })
}

// Round rounds every value to the given decimal places.
func (s Series) Round(places int) Series {
	return s.Map(func(n Num) Num { return n.Round(places) })
}

// Trunc truncates every value toward zero.
func (s Series) Trunc() Series {
	return s.Map(Num.Trunc)
}

// Tail returns the last n observations, or all of them when n exceeds the length.
func (s Series) Tail(n int) Series {
	if n < 0 || n >= len(s.Points) {
		return s.clone()
	}
	pts := make([]Point, n)
	copy(pts, s.Points[len(s.Points)-n:])
	return Series{Name: s.Name, Points: pts}
}

// DropLeading removes the first n observations.
func (s Series) DropLeading(n int) Series {
	if n <= 0 {
		return s.clone()
	}
	if n >= len(s.Points) {
		return Series{Name: s.Name, Points: []Point{}}
	}
	pts := make([]Point, len(s.Points)-n)
	copy(pts, s.Points[n:])
	return Series{Name: s.Name, Points: pts}
}

// DropNA removes missing observations.
func (s Series) DropNA() Series {
	return s.Filter(func(p Point) bool { return p.Value.Valid })
}

// Filter keeps the observations for which keep returns true.
func (s Series) Filter(keep func(Point) bool) Series {
	pts := make([]Point, 0, len(s.Points))
	for _, p := range s.Points {
		if keep(p) {
			pts = append(pts, p)
		}
	}
	return Series{Name: s.Name, Points: pts}
}

// Between keeps observations with start <= date <= end. A zero bound is open.
func (s Series) Between(start, end time.Time) Series {
	return s.Filter(func(p Point) bool {
		if !start.IsZero() && p.Date.Before(start) {
			return false
		}
		if !end.IsZero() && p.Date.After(end) {
			return false
		}
		return true
	})
}

// Index returns the position of date, or -1.
func (s Series) Index(date time.Time) int {
	i := sort.Search(len(s.Points), func(i int) bool { return !s.Points[i].Date.Before(date) })
	if i < len(s.Points) && s.Points[i].Date.Equal(date) {
		return i
	}
	return -1
}

// ValueAt returns the value observed exactly on date.
func (s Series) ValueAt(date time.Time) (Num, bool) {
	i := s.Index(date)
	if i < 0 {
		return NA, false
	}
	return s.Points[i].Value, true
}

// AtOrBefore returns the last observation dated on or before date.
func (s Series) AtOrBefore(date time.Time) (Point, bool) {
	i := sort.Search(len(s.Points), func(i int) bool { return s.Points[i].Date.After(date) })
	if i == 0 {
		return Point{}, false
	}
	return s.Points[i-1], true
}

// AtOrAfter returns the first observation dated on or after date.
func (s Series) AtOrAfter(date time.Time) (Point, bool) {
	i := sort.Search(len(s.Points), func(i int) bool { return !s.Points[i].Date.Before(date) })
	if i == len(s.Points) {
		return Point{}, false
	}
	return s.Points[i], true
}

// First returns the earliest observation.
func (s Series) First() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[0], true
}

// Last returns the most recent observation.
func (s Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// FromEnd returns the value k observations before the last one
// (k=0 is the last value). NA when history is too short.
func (s Series) FromEnd(k int) Num {
	i := len(s.Points) - 1 - k
	if k < 0 || i < 0 {
		return NA
	}
	return s.Points[i].Value
}

func (s Series) clone() Series {
	pts := make([]Point, len(s.Points))
	copy(pts, s.Points)
	return Series{Name: s.Name, Points: pts}
}

// Align joins series on their common dates, in date order.
func Align(ss ...Series) []Series {
	if len(ss) == 0 {
		return nil
	}
	counts := make(map[time.Time]int)
	for _, s := range ss {
		for _, p := range s.Points {
			counts[p.Date]++
		}
	}
	out := make([]Series, len(ss))
	for i, s := range ss {
		out[i] = s.Filter(func(p Point) bool { return counts[p.Date] == len(ss) })
	}
	return out
}

// Combine applies f pointwise to two series over their common dates.
func Combine(name string, a, b Series, f func(x, y Num) Num) Series {
	al := Align(a, b)
	pts := make([]Point, al[0].Len())
	for i := range pts {
		pts[i] = Point{Date: al[0].Points[i].Date, Value: f(al[0].Points[i].Value, al[1].Points[i].Value)}
	}
	return Series{Name: name, Points: pts}
}

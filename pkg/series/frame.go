package series

import (
	"sort"
	"time"
)

// Frame is a labelled table. Rows are dates or line items; Data[r][c] is
// the cell at row r, column c.
type Frame struct {
	Title   string   `json:"title,omitempty"`
	Columns []string `json:"columns"`
	Index   []string `json:"index"`
	Data    [][]Num  `json:"data"`
}

// NewFrame returns an empty frame with the given columns.
func NewFrame(title string, columns ...string) *Frame {
	return &Frame{Title: title, Columns: columns, Index: []string{}, Data: [][]Num{}}
}

// AddRow appends a row. Missing trailing cells are NA.
func (f *Frame) AddRow(label string, values ...Num) {
	row := make([]Num, len(f.Columns))
	copy(row, values)
	f.Index = append(f.Index, label)
	f.Data = append(f.Data, row)
}

// Rows returns the number of rows.
func (f *Frame) Rows() int { return len(f.Index) }

// Cell returns the value at row label and column name.
func (f *Frame) Cell(row, col string) (Num, bool) {
	r, c := indexOf(f.Index, row), indexOf(f.Columns, col)
	if r < 0 || c < 0 {
		return NA, false
	}
	return f.Data[r][c], true
}

// Row returns a copy of the row with the given label.
func (f *Frame) Row(label string) ([]Num, bool) {
	r := indexOf(f.Index, label)
	if r < 0 {
		return nil, false
	}
	out := make([]Num, len(f.Data[r]))
	copy(out, f.Data[r])
	return out, true
}

// Column returns a copy of the named column.
func (f *Frame) Column(name string) ([]Num, bool) {
	c := indexOf(f.Columns, name)
	if c < 0 {
		return nil, false
	}
	out := make([]Num, len(f.Data))
	for r := range f.Data {
		out[r] = f.Data[r][c]
	}
	return out, true
}

// Select returns a frame with only the named columns, in the given order.
// Unknown names are skipped.
func (f *Frame) Select(cols ...string) *Frame {
	idx := make([]int, 0, len(cols))
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		if i := indexOf(f.Columns, c); i >= 0 {
			idx = append(idx, i)
			names = append(names, c)
		}
	}
	out := NewFrame(f.Title, names...)
	for r, label := range f.Index {
		row := make([]Num, len(idx))
		for j, i := range idx {
			row[j] = f.Data[r][i]
		}
		out.AddRow(label, row...)
	}
	return out
}

// Transpose swaps rows and columns.
func (f *Frame) Transpose() *Frame {
	out := NewFrame(f.Title, f.Index...)
	for c, name := range f.Columns {
		row := make([]Num, len(f.Index))
		for r := range f.Index {
			row[r] = f.Data[r][c]
		}
		out.AddRow(name, row...)
	}
	return out
}

// Map applies fn to every cell and returns a new frame.
func (f *Frame) Map(fn func(Num) Num) *Frame {
	out := NewFrame(f.Title, f.Columns...)
	for r, label := range f.Index {
		row := make([]Num, len(f.Data[r]))
		for c, v := range f.Data[r] {
			row[c] = fn(v)
		}
		out.AddRow(label, row...)
	}
	return out
}

// Series returns column name as a series, parsing the row labels with layout.
// Rows whose label does not parse are skipped.
func (f *Frame) Series(name, layout string) (Series, bool) {
	c := indexOf(f.Columns, name)
	if c < 0 {
		return Series{}, false
	}
	s := Series{Name: name}
	for r, label := range f.Index {
		d, err := time.Parse(layout, label)
		if err != nil {
			continue
		}
		s.Points = append(s.Points, Point{Date: d, Value: f.Data[r][c]})
	}
	return s, true
}

// FromSeries lays out series as columns over the union of their dates,
// formatted with layout. Absent observations are NA.
func FromSeries(title, layout string, ss ...Series) *Frame {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, s := range ss {
		for _, p := range s.Points {
			if !seen[p.Date] {
				seen[p.Date] = true
				dates = append(dates, p.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	cols := make([]string, len(ss))
	for i, s := range ss {
		cols[i] = s.Name
	}
	f := NewFrame(title, cols...)
	for _, d := range dates {
		row := make([]Num, len(ss))
		for i, s := range ss {
			if v, ok := s.ValueAt(d); ok {
				row[i] = v
			}
		}
		f.AddRow(d.Format(layout), row...)
	}
	return f
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}

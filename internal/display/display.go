// Package display renders operation results in one of the output modes
// shared by the CLI and the HTTP API.
package display

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// Modes.
const (
	JSON   = "json"
	Table  = "table"
	Pretty = "pretty"
	Line   = "line"
	Bar    = "bar"
	Candle = "candle"
	PDF    = "pdf"
)

// Modes lists every mode Render understands.
var Modes = []string{JSON, Table, Pretty, Line, Bar, Candle, PDF}

// IsChart reports whether mode produces an SVG chart.
func IsChart(mode string) bool {
	return mode == Line || mode == Bar || mode == Candle
}

// ContentType returns the MIME type of a mode's output.
func ContentType(mode string) string {
	switch mode {
	case JSON:
		return "application/json"
	case Line, Bar, Candle:
		return "image/svg+xml"
	case PDF:
		return "application/pdf"
	}
	return "text/plain; charset=utf-8"
}

// Options tunes rendering. Width and Height apply to charts; Save also
// writes chart and pdf output to that path.
type Options struct {
	Title  string
	Width  int
	Height int
	Save   string
}

// Result is the outcome of one operation. Value is the documented
// dictionary returned in json mode; Frame is the tabular view; Series,
// Bars and Overlays feed the charts. Any of them may be empty.
type Result struct {
	Title    string
	Value    any
	Frame    *series.Frame
	Series   []series.Series
	Layout   string // date layout of series labels, series.DateLayout if empty
	Bars     []models.Bar
	Overlays []series.Series
}

// Markdowner is implemented by values with a hand-written pretty layout.
type Markdowner interface {
	Markdown() string
}

// Tabler is implemented by values whose rows are text rather than numbers.
type Tabler interface {
	TableRows() (header []string, rows [][]string)
}

// ErrNothingToRender is returned when a result has no view for the mode.
var ErrNothingToRender = errors.New("nothing to render")

func (r Result) layout() string {
	if r.Layout == "" {
		return series.DateLayout
	}
	return r.Layout
}

// table returns the tabular view of r, building it from Series when no
// Frame was set.
func (r Result) table() *series.Frame {
	if r.Frame != nil {
		return r.Frame
	}
	if len(r.Series) > 0 {
		return series.FromSeries(r.Title, r.layout(), r.Series...)
	}
	if len(r.Bars) > 0 {
		c := &models.Chart{Bars: r.Bars}
		return series.FromSeries(r.Title, r.layout(),
			c.Series(models.FieldOpen, "Open"), c.Series(models.FieldHigh, "High"),
			c.Series(models.FieldLow, "Low"), c.Series(models.FieldClose, "Close"))
	}
	return nil
}

// Render writes r to w in mode. It never modifies r.
func Render(w io.Writer, mode string, r Result, opts Options) error {
	if err := provider.OneOf("display", mode, Modes...); err != nil {
		return err
	}
	if opts.Title == "" {
		opts.Title = r.Title
	}
	switch mode {
	case JSON:
		return writeJSON(w, r)
	case Table:
		return writeTable(w, r)
	case Pretty:
		return writePretty(w, r, opts)
	case PDF:
		return save(w, opts.Save, func(out io.Writer) error { return writePDF(out, r, opts) })
	}
	svg, err := chart(mode, r, opts)
	if err != nil {
		return err
	}
	return save(w, opts.Save, func(out io.Writer) error {
		_, err := io.WriteString(out, svg)
		return err
	})
}

// Data is the JSON payload of r: Value when set, else its table.
func (r Result) Data() any {
	if r.Value != nil {
		return r.Value
	}
	if f := r.table(); f != nil {
		return f
	}
	return nil
}

func writeJSON(w io.Writer, r Result) error {
	v := r.Data()
	if v == nil {
		return ErrNothingToRender
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// save renders once, to w and to path when set.
func save(w io.Writer, path string, render func(io.Writer) error) error {
	if path == "" {
		return render(w)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := render(io.MultiWriter(w, f)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

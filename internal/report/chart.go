// Package report renders series, tables and price bars as standalone SVG
// charts. Missing values break lines and leave gaps; they are never drawn
// as zero.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// ════════════════════════════════════════════════════════════════════
// SVG Chart Generator
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 60)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// WithSize returns a copy of c resized to width x height. Zero keeps the
// current dimension.
func (c ChartConfig) WithSize(width, height int) ChartConfig {
	if width > 0 {
		c.Width = width
	}
	if height > 0 {
		c.Height = height
	}
	return c
}

// normalize fills an unset config from the defaults, keeping title and size.
func (c ChartConfig) normalize() ChartConfig {
	if c.MarginLeft != 0 || c.BgColor != "" {
		return c
	}
	d := DefaultChartConfig().WithSize(c.Width, c.Height)
	d.Title = c.Title
	return d
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

var palette = []string{"#2196f3", "#ff9800", "#4caf50", "#e91e63", "#9c27b0", "#00bcd4"}

// LineChartSeries is one named line. Values line up with the chart labels.
type LineChartSeries struct {
	Name   string
	Values []series.Num
	Color  string // hex color (optional, auto-assigned if empty)
}

// AlignSeries lays series out on the union of their dates. Labels use
// layout; a series without a point at some date gets NA there.
func AlignSeries(layout string, ss ...series.Series) ([]string, []LineChartSeries) {
	return FrameSeries(series.FromSeries("", layout, ss...))
}

// FrameSeries turns each frame column into a line over the frame index.
func FrameSeries(f *series.Frame) ([]string, []LineChartSeries) {
	lines := make([]LineChartSeries, len(f.Columns))
	for c, name := range f.Columns {
		vals := make([]series.Num, len(f.Index))
		for r := range f.Index {
			vals[r] = f.Data[r][c]
		}
		lines[c] = LineChartSeries{Name: name, Values: vals}
	}
	return append([]string(nil), f.Index...), lines
}

// valueRange returns the padded min and max over every finite value.
func valueRange(lines []LineChartSeries, withZero bool) (lo, hi float64, ok bool) {
	lo, hi = math.MaxFloat64, -math.MaxFloat64
	for _, l := range lines {
		for _, v := range l.Values {
			if !v.Finite() {
				continue
			}
			ok = true
			lo = math.Min(lo, v.V)
			hi = math.Max(hi, v.V)
		}
	}
	if !ok {
		return 0, 0, false
	}
	if withZero {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}
	span := hi - lo
	if span < 0.001 {
		span = 1
	}
	if !withZero || lo < 0 {
		lo -= span * 0.05
	}
	hi += span * 0.05
	return lo, hi, true
}

// ════════════════════════════════════════════════════════════════════
// Line Chart
// ════════════════════════════════════════════════════════════════════

// LineChart generates an SVG line chart with one or more series. A NA value
// ends the current segment; the line resumes at the next valid point.
func LineChart(labels []string, lines []LineChartSeries, cfg ChartConfig) string {
	cfg = cfg.normalize()
	if len(lines) == 0 {
		return emptySVG(cfg, "No data")
	}
	n := 0
	for _, l := range lines {
		n = max(n, len(l.Values))
	}
	minVal, maxVal, ok := valueRange(lines, false)
	if n == 0 || !ok {
		return emptySVG(cfg, "No data points")
	}
	vRange := maxVal - minVal

	px, py, pw, ph := cfg.plotArea()
	xAt := func(i int) float64 {
		if n == 1 {
			return float64(px) + float64(pw)/2
		}
		return float64(px) + float64(i)*float64(pw)/float64(n-1)
	}
	yAt := func(v float64) float64 {
		return float64(py+ph) - (v-minVal)/vRange*float64(ph)
	}

	var sb strings.Builder
	writeFrame(&sb, cfg)
	yGrid(&sb, cfg, minVal, maxVal, 5)

	for si, l := range lines {
		color := l.Color
		if color == "" {
			color = palette[si%len(palette)]
		}

		var path []string
		var lastX, lastY float64
		pen := false
		for i, v := range l.Values {
			if !v.Finite() {
				pen = false
				continue
			}
			cmd := "L"
			if !pen {
				cmd = "M"
			}
			pen = true
			lastX, lastY = xAt(i), yAt(v.V)
			path = append(path, fmt.Sprintf("%s%.1f,%.1f", cmd, lastX, lastY))
		}
		if len(path) > 0 {
			sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.Join(path, " "), color))
		}
		if len(path) == 1 {
			// A lone point has no visible stroke.
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`, lastX, lastY, color))
		}
		legend(&sb, cfg, si, l.Name, color)
	}

	xLabels(&sb, cfg, labels, n, xAt)
	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Bar Chart
// ════════════════════════════════════════════════════════════════════

// BarChart generates a vertical SVG bar chart. Several series are drawn as
// grouped bars; negative values hang below the zero line and NA values
// leave an empty slot.
func BarChart(labels []string, bars []LineChartSeries, cfg ChartConfig) string {
	cfg = cfg.normalize()
	if len(bars) == 0 {
		return emptySVG(cfg, "No data")
	}
	n := 0
	for _, b := range bars {
		n = max(n, len(b.Values))
	}
	minVal, maxVal, ok := valueRange(bars, true)
	if n == 0 || !ok {
		return emptySVG(cfg, "No data points")
	}
	vRange := maxVal - minVal

	px, py, pw, ph := cfg.plotArea()
	slot := float64(pw) / float64(n)
	groupW := slot * 0.8
	barW := groupW / float64(len(bars))
	yAt := func(v float64) float64 {
		return float64(py+ph) - (v-minVal)/vRange*float64(ph)
	}
	zeroY := yAt(0)

	var sb strings.Builder
	writeFrame(&sb, cfg)
	yGrid(&sb, cfg, minVal, maxVal, 5)
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#999" stroke-width="1"/>`,
		px, zeroY, px+pw, zeroY))

	for si, b := range bars {
		color := b.Color
		for i, v := range b.Values {
			if !v.Finite() {
				continue
			}
			c := color
			if c == "" {
				if len(bars) > 1 {
					c = palette[si%len(palette)]
				} else if v.V >= 0 {
					c = "#4caf50"
				} else {
					c = "#ef5350"
				}
			}
			x := float64(px) + float64(i)*slot + (slot-groupW)/2 + float64(si)*barW
			y, h := yAt(v.V), zeroY-yAt(v.V)
			if h < 0 {
				y, h = zeroY, -h
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="1"/>`,
				x, y, barW, h, c))
		}
		if len(bars) > 1 {
			c := color
			if c == "" {
				c = palette[si%len(palette)]
			}
			legend(&sb, cfg, si, b.Name, c)
		}
	}

	xLabels(&sb, cfg, labels, n, func(i int) float64 {
		return float64(px) + float64(i)*slot + slot/2
	})
	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Candlestick Chart
// ════════════════════════════════════════════════════════════════════

// CandlestickChart generates an SVG candlestick chart from OHLCV bars,
// optionally overlaying lines (SMA, bands) matched to the bars by date.
// Volume bars take the bottom fifth of the plot when any bar carries
// volume. Bars without a full OHLC set are skipped.
func CandlestickChart(bars []models.Bar, overlays []series.Series, cfg ChartConfig) string {
	cfg = cfg.normalize()
	if len(bars) == 0 {
		return emptySVG(cfg, "No data available")
	}
	if cfg.Title == "" {
		cfg.Title = "Price Chart"
	}

	px, py, pw, ph := cfg.plotArea()

	minPrice, maxPrice := math.MaxFloat64, -math.MaxFloat64
	maxVol := 0.0
	for _, b := range bars {
		if b.Low.Finite() {
			minPrice = math.Min(minPrice, b.Low.V)
		}
		if b.High.Finite() {
			maxPrice = math.Max(maxPrice, b.High.V)
		}
		if b.Volume.Finite() {
			maxVol = math.Max(maxVol, b.Volume.V)
		}
	}
	for _, o := range overlays {
		for _, p := range o.Points {
			if p.Value.Finite() {
				minPrice = math.Min(minPrice, p.Value.V)
				maxPrice = math.Max(maxPrice, p.Value.V)
			}
		}
	}
	if minPrice > maxPrice {
		return emptySVG(cfg, "No price data")
	}
	priceRange := maxPrice - minPrice
	if priceRange < 0.01 {
		priceRange = 1
	}
	minPrice -= priceRange * 0.05
	maxPrice += priceRange * 0.05
	priceRange = maxPrice - minPrice

	n := len(bars)
	candleWidth := float64(pw) / float64(n)
	if candleWidth > 12 {
		candleWidth = 12
	}
	bodyWidth := candleWidth * 0.7
	volHeight := 0.0
	if maxVol > 0 {
		volHeight = float64(ph) * 0.2
	}
	priceH := float64(ph) - volHeight

	centerX := func(i int) float64 {
		return float64(px) + float64(i)*float64(pw)/float64(n) + float64(pw)/float64(n)/2
	}
	priceToY := func(p float64) float64 {
		return float64(py) + priceH - (p-minPrice)/priceRange*priceH
	}

	var sb strings.Builder
	writeFrame(&sb, cfg)

	// Price grid
	gridLines := 6
	for i := 0; i <= gridLines; i++ {
		price := minPrice + priceRange*float64(i)/float64(gridLines)
		y := priceToY(price)
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, formatTick(price)))
	}

	if maxVol > 0 {
		for i, b := range bars {
			if !b.Volume.Finite() {
				continue
			}
			vh := b.Volume.V / maxVol * volHeight
			color := "#c8e6c9"
			if b.Close.Valid && b.Open.Valid && b.Close.V < b.Open.V {
				color = "#ffcdd2"
			}
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" opacity="0.6"/>`,
				centerX(i)-bodyWidth/2, float64(py+ph)-vh, bodyWidth, vh, color))
		}
	}

	for i, b := range bars {
		if !(b.Open.Finite() && b.High.Finite() && b.Low.Finite() && b.Close.Finite()) {
			continue
		}
		cx := centerX(i)
		color := "#26a69a"
		if b.Close.V < b.Open.V {
			color = "#ef5350"
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>`,
			cx, priceToY(b.High.V), cx, priceToY(b.Low.V), color))

		top, bottom := priceToY(b.Open.V), priceToY(b.Close.V)
		if top > bottom {
			top, bottom = bottom, top
		}
		bodyH := math.Max(bottom-top, 1)
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`,
			cx-bodyWidth/2, top, bodyWidth, bodyH, color))
	}

	overlayColors := []string{"#ff9800", "#2196f3", "#9c27b0", "#4caf50", "#795548", "#607d8b"}
	for oi, o := range overlays {
		color := overlayColors[oi%len(overlayColors)]
		var path []string
		pen := false
		for i, b := range bars {
			v, _ := o.ValueAt(b.Date)
			if !v.Finite() {
				pen = false
				continue
			}
			cmd := "L"
			if !pen {
				cmd = "M"
			}
			pen = true
			path = append(path, fmt.Sprintf("%s%.1f,%.1f", cmd, centerX(i), priceToY(v.V)))
		}
		if len(path) > 1 {
			sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="1.5" opacity="0.8"/>`,
				strings.Join(path, " "), color))
			legend(&sb, cfg, oi, o.Name, color)
		}
	}

	labels := make([]string, n)
	for i, b := range bars {
		labels[i] = b.Date.Format("02 Jan 06")
	}
	xLabels(&sb, cfg, labels, n, centerX)

	sb.WriteString("</svg>")
	return sb.String()
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

func writeFrame(sb *strings.Builder, cfg ChartConfig) {
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
			cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))
	}
}

func yGrid(sb *strings.Builder, cfg ChartConfig, lo, hi float64, lines int) {
	px, py, pw, ph := cfg.plotArea()
	for i := 0; i <= lines; i++ {
		val := lo + (hi-lo)*float64(i)/float64(lines)
		y := py + ph - int(float64(ph)*float64(i)/float64(lines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, formatTick(val)))
	}
}

func legend(sb *strings.Builder, cfg ChartConfig, i int, name, color string) {
	if name == "" {
		return
	}
	px, py, _, _ := cfg.plotArea()
	ly := py + 10 + i*16
	sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
		px+10, ly, px+30, ly, color))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
		px+35, ly+4, cfg.TextColor, escapeXML(name)))
}

// xLabels writes about six evenly spaced axis labels.
func xLabels(sb *strings.Builder, cfg ChartConfig, labels []string, n int, xAt func(int) float64) {
	_, py, _, ph := cfg.plotArea()
	interval := max(n/6, 1)
	for i := 0; i < len(labels) && i < n; i += interval {
		x := xAt(i)
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle" transform="rotate(-30,%.1f,%d)">%s</text>`,
			x, py+ph+18, cfg.FontSize-1, cfg.TextColor, x, py+ph+18, escapeXML(labels[i])))
	}
}

// formatTick prints an axis value with precision suited to its magnitude.
func formatTick(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case a >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case a >= 1e4:
		return fmt.Sprintf("%.1fK", v/1e3)
	case a >= 100:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

package bond

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finflux/internal/analysis/technical"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// Curve snapshots, keyed by how long ago they were taken.
const (
	CurveSixMonth   = "6mo"
	CurveThreeMonth = "3mo"
	CurveEOD        = "eod"
)

// closes fetches the daily closing yields of a bond over period.
func (s *Service) closes(ctx context.Context, code, maturity, period string) (series.Series, error) {
	w, err := s.resolve(period, "1d", "", "")
	if err != nil {
		return series.Series{}, err
	}
	bars, err := s.history(ctx, code, maturity, w)
	if err != nil {
		return series.Series{}, err
	}
	return (&models.Chart{Bars: bars}).Series(models.FieldClose, label(code, maturity)+" Close").DropNA(), nil
}

// Curve returns the sovereign yield curve of country at the end of the
// last session and three and six months earlier. Maturities the country
// does not issue are NA.
func (s *Service) Curve(ctx context.Context, country, mode string) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Table, display.Line); err != nil {
		return display.Result{}, err
	}
	code := strings.ToUpper(country)
	if err := provider.OneOf("country", code, provider.Keys(Countries)...); err != nil {
		return display.Result{}, err
	}

	points := make([][3]series.Num, len(Maturities))
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range Maturities {
		g.Go(func() error {
			c, err := s.closes(gctx, code, m, series.Period6M)
			var icm *provider.InvalidCountryMaturityError
			switch {
			case errors.As(err, &icm):
				points[i] = [3]series.Num{series.NA, series.NA, series.NA}
				return nil
			case err != nil:
				return err
			}
			points[i] = [3]series.Num{c.FromEnd(c.Len() - 1), midpoint(c), c.FromEnd(0)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return display.Result{}, err
	}

	value := map[string]map[string]series.Num{
		CurveSixMonth:   {},
		CurveThreeMonth: {},
		CurveEOD:        {},
	}
	frame := series.NewFrame(Countries[code].Name+" yield curve", "6MO", "3MO", "EOD")
	for i, m := range Maturities {
		p := points[i]
		value[CurveSixMonth][m] = p[0]
		value[CurveThreeMonth][m] = p[1]
		value[CurveEOD][m] = p[2]
		frame.AddRow(strings.ToUpper(m), p[0], p[1], p[2])
	}
	return display.Result{Title: frame.Title, Value: value, Frame: frame}, nil
}

// midpoint is the observation halfway through c.
func midpoint(c series.Series) series.Num {
	if c.Len() == 0 {
		return series.NA
	}
	return c.Points[c.Len()/2].Value
}

// EndOfDay is the last closing yield of a bond.
type EndOfDay struct {
	Country  string     `json:"country"`
	Maturity string     `json:"maturity"`
	Date     string     `json:"date"`
	Yield    series.Num `json:"yield"`
}

func (e EndOfDay) Markdown() string {
	return display.Fields(
		[2]string{"Country", e.Country},
		[2]string{"Maturity", e.Maturity},
		[2]string{"Date", e.Date},
		[2]string{"Yield", e.Yield.String()},
	)
}

// EOD returns the latest closing yield of a government bond.
func (s *Service) EOD(ctx context.Context, country, maturity, mode string) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Pretty); err != nil {
		return display.Result{}, err
	}
	code, err := checkBond(country, maturity)
	if err != nil {
		return display.Result{}, err
	}
	c, err := s.closes(ctx, code, maturity, series.Period6M)
	if err != nil {
		return display.Result{}, err
	}
	last, ok := c.Last()
	if !ok {
		return display.Result{}, &provider.InvalidCountryMaturityError{Country: code, Maturity: strings.ToUpper(maturity)}
	}
	eod := EndOfDay{
		Country:  Countries[code].Name,
		Maturity: strings.ToUpper(maturity),
		Date:     last.Date.Format(series.DateLayout),
		Yield:    last.Value,
	}
	return display.Result{Title: label(code, maturity) + " end of day yield", Value: eod}, nil
}

// YieldRange is the extreme yields over a window.
type YieldRange struct {
	High series.Num `json:"high"`
	Low  series.Num `json:"low"`
}

// YieldChange is the relative change of the latest yield against earlier
// closes.
type YieldChange struct {
	FiveYear series.Num `json:"5y"`
	OneYear  series.Num `json:"1y"`
	YTD      series.Num `json:"ytd"`
	SixMonth series.Num `json:"6mo"`
	OneMonth series.Num `json:"1mo"`
	FiveDay  series.Num `json:"5d"`
}

// Quote summarises the recent trading of a government bond.
type Quote struct {
	Identifier string      `json:"identifier"`
	TTM        YieldRange  `json:"ttm"`
	Change     YieldChange `json:"percent change"`
	Avg50      series.Num  `json:"50d average yield"`
	Avg200     series.Num  `json:"200d average yield"`
}

func (q Quote) Markdown() string {
	pct := func(n series.Num) string {
		if !n.Finite() {
			return "-"
		}
		return fmt.Sprintf("%.2f%%", n.V*100)
	}
	return "### " + q.Identifier + "\n\n" + display.Fields(
		[2]string{"TTM High", q.TTM.High.String()},
		[2]string{"TTM Low", q.TTM.Low.String()},
		[2]string{"5Y Change", pct(q.Change.FiveYear)},
		[2]string{"1Y Change", pct(q.Change.OneYear)},
		[2]string{"YTD Change", pct(q.Change.YTD)},
		[2]string{"6M Change", pct(q.Change.SixMonth)},
		[2]string{"1M Change", pct(q.Change.OneMonth)},
		[2]string{"5D Change", pct(q.Change.FiveDay)},
		[2]string{"50D Average Yield", q.Avg50.String()},
		[2]string{"200D Average Yield", q.Avg200.String()},
	)
}

// Quote returns the trailing twelve month range, percent changes and
// average yields of a government bond from ten years of daily history.
func (s *Service) Quote(ctx context.Context, country, maturity, mode string) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Pretty); err != nil {
		return display.Result{}, err
	}
	code, err := checkBond(country, maturity)
	if err != nil {
		return display.Result{}, err
	}
	w, err := s.resolve(series.Period10Y, "1d", "", "")
	if err != nil {
		return display.Result{}, err
	}
	bars, err := s.history(ctx, code, maturity, w)
	if err != nil {
		return display.Result{}, err
	}
	q, err := buildQuote(label(code, maturity), bars, s.now())
	if err != nil {
		return display.Result{}, err
	}
	return display.Result{Title: q.Identifier, Value: q}, nil
}

func buildQuote(name string, bars []models.Bar, now time.Time) (Quote, error) {
	c := &models.Chart{Bars: bars}
	closes := c.Series(models.FieldClose, "Close").DropNA()
	last, ok := closes.Last()
	if !ok {
		return Quote{}, fmt.Errorf("%s: no closing yields", name)
	}
	eod := last.Value

	since := func(t time.Time) series.Num {
		p, ok := closes.AtOrAfter(t)
		if !ok {
			return series.NA
		}
		return series.Div(eod, p.Value).Sub(series.Val(1))
	}
	yearAgo := now.AddDate(-1, 0, 0)
	highs := c.Series(models.FieldHigh, "High").Between(yearAgo, time.Time{})
	lows := c.Series(models.FieldLow, "Low").Between(yearAgo, time.Time{})

	ytd := series.NA
	if p, ok := closes.AtOrAfter(time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)); ok && p.Date.Year() == now.Year() {
		ytd = series.Div(eod, p.Value).Sub(series.Val(1))
	}

	return Quote{
		Identifier: name + " Bond Yield",
		TTM: YieldRange{
			High: technical.TailMax(highs, highs.Len()).Round(2),
			Low:  technical.TailMin(lows, lows.Len()).Round(2),
		},
		Change: YieldChange{
			FiveYear: since(now.AddDate(-5, 0, 0)),
			OneYear:  since(yearAgo),
			YTD:      ytd,
			SixMonth: since(now.AddDate(0, -6, 0)),
			OneMonth: since(now.AddDate(0, -1, 0)),
			FiveDay:  series.Div(eod, closes.FromEnd(4)).Sub(series.Val(1)),
		},
		Avg50:  technical.TailMean(closes, 50).Round(2),
		Avg200: technical.TailMean(closes, 200).Round(2),
	}, nil
}

package equity

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finflux/internal/analysis/technical"
	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// Session is one trading day.
type Session struct {
	Date   string     `json:"date"`
	Open   series.Num `json:"open"`
	High   series.Num `json:"high"`
	Low    series.Num `json:"low"`
	Close  series.Num `json:"close"`
	Volume series.Num `json:"volume"`
}

// HighLow is a high/low pair.
type HighLow struct {
	High series.Num `json:"high"`
	Low  series.Num `json:"low"`
}

// Change is the fractional change of the realtime price against the
// close a fixed number of sessions back.
type Change struct {
	FiveYear series.Num `json:"5y"`
	OneYear  series.Num `json:"1y"`
	YTD      series.Num `json:"ytd"`
	SixMonth series.Num `json:"6m"`
	OneMonth series.Num `json:"1m"`
	FiveDay  series.Num `json:"5d"`
}

// Quote is a snapshot of a stock's trading statistics.
type Quote struct {
	Symbol            string     `json:"symbol"`
	Name              string     `json:"name"`
	Exchange          string     `json:"exchange"`
	Currency          string     `json:"currency"`
	Timezone          string     `json:"timezone"`
	LastTradingDay    Session    `json:"last trading day"`
	TTM               HighLow    `json:"ttm"`
	PercentChange     Change     `json:"percent change"`
	AvgPrice50        series.Num `json:"50d average price"`
	AvgPrice200       series.Num `json:"200d average price"`
	AvgVolume10       series.Num `json:"10d average volume"`
	AvgVolume90       series.Num `json:"90d average volume"`
	SharesOutstanding series.Num `json:"shares outstanding"`
	MarketCap         series.Num `json:"market cap"`
}

// Sessions per look-back window.
const (
	sessionsTTM     = 252
	sessionsFiveYr  = 1260
	sessionsSixMo   = 126
	sessionsOneMo   = 21
	sessionsFiveDay = 5
)

// changeOver returns price / close w sessions back - 1, or NA when the
// history is not longer than w.
func changeOver(closes series.Series, price series.Num, w int) series.Num {
	if closes.Len() <= w {
		return series.NA
	}
	return series.Div(price, closes.FromEnd(w-1)).Sub(series.Val(1))
}

// changeYTD compares price with the first close of year.
func changeYTD(closes series.Series, price series.Num, year int) series.Num {
	for _, p := range closes.Points {
		if p.Date.Year() == year {
			return series.Div(price, p.Value).Sub(series.Val(1))
		}
	}
	return series.NA
}

// Quote returns the trading snapshot of a stock.
func (s *Service) Quote(ctx context.Context, ticker, mode string) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Pretty); err != nil {
		return display.Result{}, err
	}
	sym := marketSymbol(ticker)

	var (
		chart   *models.Chart
		price   *models.RealtimePrice
		rt      *models.RealtimeQuote
		profile *models.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		chart, err = s.chart(gctx, ticker, datasource.Range{Period: "10y", Interval: "1d"})
		return err
	})
	g.Go(func() (err error) {
		price, err = s.src.Realtime(gctx, sym)
		return err
	})
	g.Go(func() (err error) {
		rt, err = s.src.RealtimeQuote(gctx, sym)
		return err
	})
	g.Go(func() (err error) {
		profile, err = s.src.Profile(gctx, ticker)
		return err
	})
	if err := g.Wait(); err != nil {
		return display.Result{}, err
	}

	q := buildQuote(ticker, chart, price.Price, rt, profile, s.now().Year())
	return display.Result{Title: ticker + " quote", Value: q}, nil
}

func buildQuote(ticker string, c *models.Chart, price series.Num, rt *models.RealtimeQuote, p *models.Profile, year int) Quote {
	closes := c.Series(models.FieldClose, "Close")
	volumes := c.Series(models.FieldVolume, "Volume")

	q := Quote{
		Symbol:   ticker,
		Name:     rt.Name,
		Exchange: rt.Exchange,
		Currency: rt.Currency,
		Timezone: c.Timezone,
		TTM: HighLow{
			High: technical.TailMax(c.Series(models.FieldHigh, "High"), sessionsTTM).Round(2),
			Low:  technical.TailMin(c.Series(models.FieldLow, "Low"), sessionsTTM).Round(2),
		},
		PercentChange: Change{
			FiveYear: changeOver(closes, price, sessionsFiveYr),
			OneYear:  changeOver(closes, price, sessionsTTM),
			YTD:      changeYTD(closes, price, year),
			SixMonth: changeOver(closes, price, sessionsSixMo),
			OneMonth: changeOver(closes, price, sessionsOneMo),
			FiveDay:  changeOver(closes, price, sessionsFiveDay),
		},
		AvgPrice50:        technical.TailMean(closes, 50),
		AvgPrice200:       technical.TailMean(closes, 200),
		AvgVolume10:       technical.TailMean(volumes, 10).Round(0),
		AvgVolume90:       technical.TailMean(volumes, 90).Round(0),
		SharesOutstanding: p.SharesOutstanding,
		MarketCap:         p.SharesOutstanding.Mul(price).Round(0),
	}
	if n := len(c.Bars); n > 0 {
		b := c.Bars[n-1]
		q.LastTradingDay = Session{
			Date: b.Date.Format(series.DateLayout), Open: b.Open, High: b.High,
			Low: b.Low, Close: b.Close, Volume: b.Volume,
		}
	}
	return q
}

func pct(n series.Num) string {
	if !n.Valid {
		return "NaN"
	}
	return fmt.Sprintf("%.2f%%", n.V*100)
}

// Markdown lays the quote out as a terminal card.
func (q Quote) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s)\n\n", q.Name, q.Symbol)
	b.WriteString(display.Fields(
		[2]string{"Exchange/Timezone", q.Exchange + " - " + q.Timezone},
		[2]string{"Currency", q.Currency},
		[2]string{"Shares Outstanding", commas(q.SharesOutstanding)},
		[2]string{"Market Cap", commas(q.MarketCap)},
	))
	d := q.LastTradingDay
	fmt.Fprintf(&b, "\n### Last trading day %s\n\n", d.Date)
	b.WriteString(display.Fields(
		[2]string{"Open", d.Open.String()},
		[2]string{"High", d.High.String()},
		[2]string{"Low", d.Low.String()},
		[2]string{"Close", d.Close.String()},
		[2]string{"Volume", commas(d.Volume)},
	))
	b.WriteString("\n### Trailing twelve months\n\n")
	b.WriteString(display.Fields(
		[2]string{"High", q.TTM.High.String()},
		[2]string{"Low", q.TTM.Low.String()},
	))
	b.WriteString("\n### Percent change\n\n")
	c := q.PercentChange
	b.WriteString(display.Fields(
		[2]string{"5 year", pct(c.FiveYear)},
		[2]string{"1 year", pct(c.OneYear)},
		[2]string{"YTD", pct(c.YTD)},
		[2]string{"6 month", pct(c.SixMonth)},
		[2]string{"1 month", pct(c.OneMonth)},
		[2]string{"5 day", pct(c.FiveDay)},
	))
	b.WriteString("\n### Averages\n\n")
	b.WriteString(display.Fields(
		[2]string{"50 day price", q.AvgPrice50.String()},
		[2]string{"200 day price", q.AvgPrice200.String()},
		[2]string{"10 day volume", commas(q.AvgVolume10)},
		[2]string{"90 day volume", commas(q.AvgVolume90)},
	))
	return b.String()
}

// commas formats a whole number with thousands separators.
func commas(n series.Num) string {
	if !n.Finite() {
		return n.String()
	}
	s := fmt.Sprintf("%.0f", n.V)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Package forex implements currency pair operations: exchange rate
// history, the realtime rate and amount conversion.
package forex

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// SecurityType is the instrument type every currency pair must carry.
const SecurityType = "CURRENCY"

// Source is the upstream data the forex operations read.
type Source interface {
	QuoteType(ctx context.Context, symbol string) (*models.QuoteType, error)
	Chart(ctx context.Context, symbol string, r datasource.Range) (*models.Chart, error)
	Realtime(ctx context.Context, symbol string) (*models.RealtimePrice, error)
}

// Pair is a currency pair quoted as units of To per one From.
type Pair struct {
	From string `json:"from" validate:"len=3,alpha"`
	To   string `json:"to"   validate:"len=3,alpha"`
}

// NewPair validates and upper-cases two ISO 4217 codes.
func NewPair(from, to string) (Pair, error) {
	p := Pair{From: strings.ToUpper(from), To: strings.ToUpper(to)}
	if err := provider.ValidateStruct(p); err != nil {
		return Pair{}, err
	}
	return p, nil
}

func (p Pair) String() string { return p.From + p.To }

// YahooSymbol is "EUR=X" for dollar-based pairs and "EURGBP=X" otherwise.
func (p Pair) YahooSymbol() string {
	if p.From == "USD" {
		return p.To + "=X"
	}
	return p.From + p.To + "=X"
}

// TwelveDataSymbol is "EUR/GBP".
func (p Pair) TwelveDataSymbol() string { return p.From + "/" + p.To }

// Service runs forex operations against a Source.
type Service struct {
	src Source
}

// New creates a Service.
func New(src Source) *Service {
	return &Service{src: src}
}

// pair validates the codes and checks the pair trades as a currency.
func (s *Service) pair(ctx context.Context, from, to string) (Pair, error) {
	p, err := NewPair(from, to)
	if err != nil {
		return Pair{}, err
	}
	qt, err := s.src.QuoteType(ctx, p.YahooSymbol())
	if err != nil {
		return Pair{}, err
	}
	if qt.QuoteType != SecurityType {
		return Pair{}, &provider.InvalidSecurityError{Symbol: p.String(), Expected: SecurityType, Got: qt.QuoteType}
	}
	return p, nil
}

// Calculations applied to rate history.
const (
	CalcPrice        = "price"
	CalcSimpleReturn = "simple return"
	CalcLogReturn    = "log return"
)

// TimeseriesOptions selects a slice of rate history. Start and End
// (YYYY-MM-DD) override Period.
type TimeseriesOptions struct {
	Period      string `json:"period"      default:"5y"`
	Interval    string `json:"interval"    default:"1d"`
	Data        string `json:"data"        default:"all"`
	Calculation string `json:"calculation" default:"price"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Display     string `json:"display"     default:"json"`
}

var timeseriesChoices = provider.Choices{
	"period":      series.Periods,
	"interval":    {"1d", "1wk", "1mo", "3mo"},
	"data":        {"open", "high", "low", "close", "all"},
	"calculation": {CalcPrice, CalcSimpleReturn, CalcLogReturn},
	"display":     {display.JSON, display.Table, display.Line},
}

var ohlc = []struct{ field, name string }{
	{models.FieldOpen, "Open"},
	{models.FieldHigh, "High"},
	{models.FieldLow, "Low"},
	{models.FieldClose, "Close"},
}

// Timeseries returns exchange rate history rounded to two decimals.
func (s *Service) Timeseries(ctx context.Context, from, to string, opts TimeseriesOptions) (display.Result, error) {
	if err := provider.Prepare(&opts); err != nil {
		return display.Result{}, err
	}
	if err := timeseriesChoices.Check(map[string]string{
		"period":      opts.Period,
		"interval":    opts.Interval,
		"data":        opts.Data,
		"calculation": opts.Calculation,
		"display":     opts.Display,
	}); err != nil {
		return display.Result{}, err
	}
	if opts.Display == display.Line && opts.Data == "all" {
		return display.Result{}, &provider.ChartReadabilityError{Reason: "a line chart of every rate column; pick one data column"}
	}
	start, err := provider.ParseDate("start", opts.Start)
	if err != nil {
		return display.Result{}, err
	}
	end, err := provider.ParseDate("end", opts.End)
	if err != nil {
		return display.Result{}, err
	}

	p, err := s.pair(ctx, from, to)
	if err != nil {
		return display.Result{}, err
	}
	c, err := s.src.Chart(ctx, p.YahooSymbol(), datasource.Range{
		Period: opts.Period, Interval: opts.Interval, Start: start, End: end,
	})
	if err != nil {
		return display.Result{}, err
	}

	var out []series.Series
	for _, f := range ohlc {
		if opts.Data != "all" && opts.Data != f.field {
			continue
		}
		col := c.Series(f.field, fmt.Sprintf("%s %s", p, f.name))
		switch opts.Calculation {
		case CalcSimpleReturn:
			col = series.SimpleReturn(col)
		case CalcLogReturn:
			col = series.LogReturn(col)
		}
		out = append(out, col.Round(2))
	}
	return display.Result{Title: fmt.Sprintf("%s %s", p, opts.Calculation), Series: out}, nil
}

// Rate is the latest exchange rate of a pair.
type Rate struct {
	Symbol string     `json:"symbol"`
	Price  series.Num `json:"price"`
}

func (r Rate) Markdown() string {
	return display.Fields([2]string{"Symbol", r.Symbol}, [2]string{"Exchange Rate", r.Price.String()})
}

// Realtime returns the latest exchange rate.
func (s *Service) Realtime(ctx context.Context, from, to, mode string) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Pretty); err != nil {
		return display.Result{}, err
	}
	p, err := s.pair(ctx, from, to)
	if err != nil {
		return display.Result{}, err
	}
	rt, err := s.src.Realtime(ctx, p.TwelveDataSymbol())
	if err != nil {
		return display.Result{}, err
	}
	return display.Result{Title: p.String() + " exchange rate", Value: Rate{Symbol: p.String(), Price: rt.Price}}, nil
}

// Rate sources for Conversion. Any positive number is also accepted as a
// fixed rate.
const (
	RateRealtime = "realtime"
	RateEOD      = "eod"
)

// ConversionOptions selects the rate a conversion uses.
type ConversionOptions struct {
	Rate    string `json:"rate"    default:"realtime"`
	Display string `json:"display" default:"json"`
}

// Converted is an amount converted at an exchange rate.
type Converted struct {
	Conversion     string     `json:"conversion"`
	ExchangeRate   series.Num `json:"exchange rate"`
	PreConversion  series.Num `json:"pre-conversion"`
	PostConversion series.Num `json:"post-conversion"`
	Formatted      string     `json:"formatted"`
}

func (c Converted) Markdown() string {
	return display.Fields(
		[2]string{"Conversion", c.Conversion},
		[2]string{"Exchange Rate", c.ExchangeRate.String()},
		[2]string{"Pre-conversion", c.PreConversion.String()},
		[2]string{"Post-conversion", c.Formatted},
	)
}

// Conversion converts amount of from into to.
func (s *Service) Conversion(ctx context.Context, from, to string, amount float64, opts ConversionOptions) (display.Result, error) {
	if err := provider.Prepare(&opts); err != nil {
		return display.Result{}, err
	}
	if err := provider.OneOf("display", opts.Display, display.JSON, display.Pretty); err != nil {
		return display.Result{}, err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return display.Result{}, invalidAmount(strconv.FormatFloat(amount, 'g', -1, 64))
	}
	fixed, err := parseRate(opts.Rate)
	if err != nil {
		return display.Result{}, err
	}
	p, err := s.pair(ctx, from, to)
	if err != nil {
		return display.Result{}, err
	}

	rate := fixed
	switch opts.Rate {
	case RateRealtime:
		rt, err := s.src.Realtime(ctx, p.TwelveDataSymbol())
		if err != nil {
			return display.Result{}, err
		}
		rate = rt.Price
	case RateEOD:
		c, err := s.src.Chart(ctx, p.YahooSymbol(), datasource.Range{Period: "1mo", Interval: "1d"})
		if err != nil {
			return display.Result{}, err
		}
		last, ok := c.Series(models.FieldClose, "Close").DropNA().Last()
		if !ok {
			return display.Result{}, fmt.Errorf("%s: no closing rate", p)
		}
		rate = last.Value
	}
	if !rate.Finite() {
		return display.Result{}, fmt.Errorf("%s: exchange rate unavailable", p)
	}

	post := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate.V))
	postF, _ := post.Float64()
	out := Converted{
		Conversion:     p.From + " to " + p.To,
		ExchangeRate:   rate,
		PreConversion:  series.Val(amount),
		PostConversion: series.Val(postF),
		Formatted:      FormatMoney(post, p.To),
	}
	return display.Result{Title: p.String() + " conversion", Value: out}, nil
}

func parseRate(rate string) (series.Num, error) {
	if rate == RateRealtime || rate == RateEOD {
		return series.NA, nil
	}
	v, err := strconv.ParseFloat(rate, 64)
	if err != nil || !(v > 0) || math.IsInf(v, 0) {
		return series.NA, &provider.InvalidParameterError{
			Param: "rate", Value: rate, Valid: []string{RateRealtime, RateEOD, "a positive number"},
		}
	}
	return series.Val(v), nil
}

// ParseAmount parses a finite amount to convert.
func ParseAmount(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalidAmount(raw)
	}
	return v, nil
}

func invalidAmount(raw string) error {
	return &provider.InvalidParameterError{Param: "amount", Value: raw, Valid: []string{"a finite number"}}
}

// FormatMoney renders amount with the currency's symbol, grouping and
// minor-unit precision ("€1,234.56"). Unknown codes fall back to two
// decimals and the code.
func FormatMoney(amount decimal.Decimal, code string) string {
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), code).Display()
}

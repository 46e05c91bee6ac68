// Package crypto implements coin prices from CoinGecko.
package crypto

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/forex"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// Source is the upstream data crypto reads.
type Source interface {
	CoinPrice(ctx context.Context, coin, vs string) (*models.RealtimePrice, error)
	CoinChart(ctx context.Context, coin, vs, days string) (series.Series, error)
}

// Service runs crypto operations against a Source.
type Service struct {
	src Source
	now func() time.Time
}

// New creates a Service.
func New(src Source) *Service {
	return &Service{src: src, now: time.Now}
}

// Price is the latest price of a coin.
type Price struct {
	Coin     string     `json:"coin"`
	Currency string     `json:"currency"`
	Price    series.Num `json:"price"`
}

func (p Price) Markdown() string {
	v := p.Price.String()
	if p.Price.Finite() {
		v = forex.FormatMoney(decimal.NewFromFloat(p.Price.V), p.Currency)
	}
	return display.Fields([2]string{"Coin", p.Coin}, [2]string{"Price", v})
}

// coinID checks a CoinGecko coin id ("bitcoin") and quote currency.
func coinID(coin, vs string) (string, string, error) {
	coin = strings.ToLower(strings.TrimSpace(coin))
	if coin == "" || strings.ContainsAny(coin, "/?# ") {
		return "", "", &provider.InvalidParameterError{Param: "coin", Value: coin, Valid: []string{"a CoinGecko coin id"}}
	}
	vs = strings.ToLower(vs)
	if vs == "" {
		vs = "usd"
	}
	return coin, vs, nil
}

// Realtime returns the latest price of coin in vs (default usd).
func (s *Service) Realtime(ctx context.Context, coin, vs, mode string) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Pretty); err != nil {
		return display.Result{}, err
	}
	coin, vs, err := coinID(coin, vs)
	if err != nil {
		return display.Result{}, err
	}
	rt, err := s.src.CoinPrice(ctx, coin, vs)
	if err != nil {
		return display.Result{}, err
	}
	cur := strings.ToUpper(vs)
	return display.Result{
		Title: fmt.Sprintf("%s/%s", coin, cur),
		Value: Price{Coin: coin, Currency: cur, Price: rt.Price},
	}, nil
}

// TimeseriesOptions select the window and display of a price history.
type TimeseriesOptions struct {
	Period  string `json:"period"  default:"1y"`
	Display string `json:"display" default:"table"`
}

// window returns the first day of period and the CoinGecko lookback
// covering it. max is unbounded.
func window(period string, now time.Time) (time.Time, string, error) {
	if period == series.PeriodMax {
		return time.Time{}, "max", nil
	}
	start, err := series.StartDate(period, now)
	if err != nil {
		return time.Time{}, "", err
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	return start, strconv.Itoa(int(now.Sub(start).Hours()/24) + 1), nil
}

// Timeseries returns daily closing prices of coin in vs over a calendar
// window.
func (s *Service) Timeseries(ctx context.Context, coin, vs string, opts TimeseriesOptions) (display.Result, error) {
	if err := provider.Prepare(&opts); err != nil {
		return display.Result{}, err
	}
	if err := (provider.Choices{
		"period":  series.Periods,
		"display": {display.Table, display.JSON, display.Line},
	}).Check(map[string]string{"period": opts.Period, "display": opts.Display}); err != nil {
		return display.Result{}, err
	}
	coin, vs, err := coinID(coin, vs)
	if err != nil {
		return display.Result{}, err
	}
	start, days, err := window(opts.Period, s.now())
	if err != nil {
		return display.Result{}, err
	}
	ys, err := s.src.CoinChart(ctx, coin, vs, days)
	if err != nil {
		return display.Result{}, err
	}
	name := fmt.Sprintf("%s %s Price", coin, strings.ToUpper(vs))
	ys = ys.Sort().Rename(name).Between(start, time.Time{})
	return display.Result{Title: name, Series: []series.Series{ys}}, nil
}

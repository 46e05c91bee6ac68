package equity

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

// Price is the latest traded price of a stock.
type Price struct {
	Symbol   string     `json:"symbol"`
	Price    series.Num `json:"price"`
	Currency string     `json:"currency"`
}

func (p Price) Markdown() string {
	return display.Fields(
		[2]string{"Symbol", p.Symbol},
		[2]string{"Price", p.Price.String()},
		[2]string{"Currency", p.Currency},
	)
}

// Realtime returns the latest traded price.
func (s *Service) Realtime(ctx context.Context, ticker, mode string) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Pretty); err != nil {
		return display.Result{}, err
	}
	sym := marketSymbol(ticker)

	out := Price{Symbol: ticker}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.src.Realtime(gctx, sym)
		if err != nil {
			return err
		}
		out.Price = p.Price.Round(2)
		return nil
	})
	g.Go(func() error {
		q, err := s.src.RealtimeQuote(gctx, sym)
		if err != nil {
			return err
		}
		out.Currency = q.Currency
		return nil
	})
	if err := g.Wait(); err != nil {
		return display.Result{}, err
	}
	return display.Result{Title: ticker + " realtime price", Value: out}, nil
}

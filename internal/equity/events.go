package equity

import (
	"context"

	"github.com/seenimoa/finflux/internal/datasource"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

// Dividend returns every cash dividend paid, date to amount per share.
func (s *Service) Dividend(ctx context.Context, ticker, mode string) (display.Result, error) {
	return s.events(ctx, ticker, mode, "Dividends", func(c *models.Chart) series.Series {
		return c.Dividends.Round(2)
	})
}

// Split returns every stock split, date to ratio (2 for a 2-for-1 split).
func (s *Service) Split(ctx context.Context, ticker, mode string) (display.Result, error) {
	return s.events(ctx, ticker, mode, "Splits", func(c *models.Chart) series.Series {
		return c.Splits
	})
}

func (s *Service) events(ctx context.Context, ticker, mode, name string, pick func(*models.Chart) series.Series) (display.Result, error) {
	if err := provider.OneOf("display", mode, display.JSON, display.Table, display.Bar); err != nil {
		return display.Result{}, err
	}
	c, err := s.chart(ctx, ticker, datasource.Range{Period: "max", Interval: "1d"})
	if err != nil {
		return display.Result{}, err
	}
	ev := pick(c).Sort().Rename(name)
	value := make(map[string]series.Num, ev.Len())
	for _, p := range ev.Points {
		value[p.Date.Format(series.DateLayout)] = p.Value
	}
	return display.Result{
		Title:  ticker + " " + name,
		Value:  value,
		Series: []series.Series{ev},
	}, nil
}

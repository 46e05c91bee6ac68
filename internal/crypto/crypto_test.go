package crypto

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

var today = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	price *models.RealtimePrice
	chart series.Series
	calls []string
}

func (f *fakeSource) CoinPrice(_ context.Context, coin, vs string) (*models.RealtimePrice, error) {
	f.calls = append(f.calls, "price "+coin+"/"+vs)
	if f.price == nil {
		return nil, errors.New("coingecko: no price")
	}
	return f.price, nil
}

func (f *fakeSource) CoinChart(_ context.Context, coin, vs, days string) (series.Series, error) {
	f.calls = append(f.calls, "chart "+coin+"/"+vs+"/"+days)
	return f.chart, nil
}

func newService(src Source) *Service {
	s := New(src)
	s.now = func() time.Time { return today }
	return s
}

// daily prices from 2024-01-01 through today, valued 100+i.
func daily() series.Series {
	s := series.Series{Name: "bitcoin"}
	for d, i := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 0; !d.After(today); d, i = d.AddDate(0, 0, 1), i+1 {
		s.Points = append(s.Points, series.Point{Date: d, Value: series.Val(float64(100 + i))})
	}
	return s
}

func TestRealtime(t *testing.T) {
	src := &fakeSource{price: &models.RealtimePrice{Symbol: "bitcoin", Price: series.Val(67000.5), Currency: "EUR"}}
	res, err := newService(src).Realtime(context.Background(), "Bitcoin", "EUR", "json")
	require.NoError(t, err)

	p, ok := res.Value.(Price)
	require.True(t, ok)
	assert.Equal(t, Price{Coin: "bitcoin", Currency: "EUR", Price: series.Val(67000.5)}, p)
	assert.Equal(t, "bitcoin/EUR", res.Title)
	assert.Equal(t, []string{"price bitcoin/eur"}, src.calls)
}

func TestPriceMarkdown(t *testing.T) {
	md := Price{Coin: "bitcoin", Currency: "USD", Price: series.Val(67000.5)}.Markdown()
	assert.Contains(t, md, "$67,000.50")
	md = Price{Coin: "ethereum", Currency: "BTC", Price: series.Val(0.05)}.Markdown()
	assert.Contains(t, md, "0.05")
}

func TestRealtimeRejects(t *testing.T) {
	src := &fakeSource{}
	svc := newService(src)

	_, err := svc.Realtime(context.Background(), "bitcoin", "usd", "table")
	var ip *provider.InvalidParameterError
	require.True(t, errors.As(err, &ip))
	assert.Equal(t, "display", ip.Param)

	_, err = svc.Realtime(context.Background(), "bit/coin", "usd", "json")
	require.True(t, errors.As(err, &ip))
	assert.Equal(t, "coin", ip.Param)
	assert.Empty(t, src.calls)
}

func TestTimeseriesWindow(t *testing.T) {
	src := &fakeSource{chart: daily()}
	res, err := newService(src).Timeseries(context.Background(), "bitcoin", "", TimeseriesOptions{Period: "1mo"})
	require.NoError(t, err)
	require.Len(t, res.Series, 1)

	ys := res.Series[0]
	assert.Equal(t, "bitcoin USD Price", ys.Name)
	assert.Equal(t, 32, ys.Len())
	first, _ := ys.First()
	assert.Equal(t, "2024-05-15", first.Date.Format(series.DateLayout))
	assert.Equal(t, []string{"chart bitcoin/usd/32"}, src.calls)
}

func TestTimeseriesMax(t *testing.T) {
	src := &fakeSource{chart: daily()}
	res, err := newService(src).Timeseries(context.Background(), "bitcoin", "eur", TimeseriesOptions{Period: "max", Display: "line"})
	require.NoError(t, err)
	assert.Equal(t, daily().Len(), res.Series[0].Len())
	assert.Equal(t, []string{"chart bitcoin/eur/max"}, src.calls)
}

func TestTimeseriesRejects(t *testing.T) {
	src := &fakeSource{chart: daily()}
	_, err := newService(src).Timeseries(context.Background(), "bitcoin", "usd", TimeseriesOptions{Display: "candle"})
	var ip *provider.InvalidParameterError
	require.True(t, errors.As(err, &ip))
	assert.Equal(t, "display", ip.Param)
	assert.Empty(t, src.calls)
}

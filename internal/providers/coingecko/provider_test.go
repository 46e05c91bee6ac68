package coingecko

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/infra"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/models"
	"github.com/seenimoa/finflux/pkg/series"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := config.Default()
	cfg.URLs.CoinGecko = srv.URL + "/"
	p := New(cfg, infra.NewClient(infra.ClientOptions{Timeout: 5 * time.Second}))
	require.NoError(t, p.Init(map[string]string{"api_key": "cg"}))
	return p
}

func TestCoinPrice(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "cg", r.Header.Get("x-cg-pro-api-key"))
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"bitcoin":{"usd":67187.34}}`))
	})
	res, err := p.Fetcher(provider.ModelCoinPrice).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol:   "Bitcoin",
		provider.ParamCurrency: "USD",
	})
	require.NoError(t, err)
	rp := res.Data.(*models.RealtimePrice)
	assert.InDelta(t, 67187.34, rp.Price.V, 1e-9)
	assert.Equal(t, "USD", rp.Currency)
}

func TestCoinPriceUnknownCoin(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	_, err := p.Fetcher(provider.ModelCoinPrice).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol:   "nocoin",
		provider.ParamCurrency: "usd",
	})
	assert.Error(t, err)
}

func TestCoinChart(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/ethereum/market_chart", r.URL.Path)
		assert.Equal(t, "max", r.URL.Query().Get("days"))
		assert.Equal(t, "daily", r.URL.Query().Get("interval"))
		// 2024-01-01, 2024-01-02 and a live price later on 2024-01-02.
		w.Write([]byte(`{"prices":[[1704067200000,2281.0],[1704153600000,2352.5],[1704200000000,2360.0]]}`))
	})
	res, err := p.Fetcher(provider.ModelCoinChart).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol:   "ethereum",
		provider.ParamCurrency: "usd",
	})
	require.NoError(t, err)
	s := res.Data.(series.Series)
	require.Equal(t, 2, s.Len())
	require.NoError(t, s.Validate())
	last, _ := s.Last()
	assert.Equal(t, "2024-01-02", last.Date.Format(series.DateLayout))
	assert.InDelta(t, 2360.0, last.Value.V, 1e-9)
}

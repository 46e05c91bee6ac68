package twelvedata

import (
	"context"
	"errors"
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
)

func newTestProvider(t *testing.T, key string, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := config.Default()
	cfg.URLs.TwelveData = srv.URL + "/"
	p := New(cfg, infra.NewClient(infra.ClientOptions{Timeout: 5 * time.Second}))
	require.NoError(t, p.Init(map[string]string{"api_key": key}))
	return p
}

func TestPrice(t *testing.T) {
	p := newTestProvider(t, "k", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/price", r.URL.Path)
		assert.Equal(t, "EUR/USD", r.URL.Query().Get("symbol"))
		assert.Equal(t, "k", r.URL.Query().Get("apikey"))
		w.Write([]byte(`{"price":"1.08450"}`))
	})

	res, err := p.Fetcher(provider.ModelRealtime).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "EUR/USD",
	})
	require.NoError(t, err)
	rp := res.Data.(*models.RealtimePrice)
	assert.Equal(t, "EUR/USD", rp.Symbol)
	assert.InDelta(t, 1.0845, rp.Price.V, 1e-9)
}

func TestQuote(t *testing.T) {
	p := newTestProvider(t, "k", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		w.Write([]byte(`{"symbol":"AAPL","name":"Apple Inc","exchange":"NASDAQ","currency":"USD",
			"datetime":"2024-05-03","open":"186.65","high":"187.00","low":"182.66","close":"183.38",
			"volume":"163224100","previous_close":"173.03","change":"10.35","percent_change":"5.98"}`))
	})

	res, err := p.Fetcher(provider.ModelRealtimeQuote).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "AAPL",
	})
	require.NoError(t, err)
	q := res.Data.(*models.RealtimeQuote)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, "NASDAQ", q.Exchange)
	assert.InDelta(t, 183.38, q.Close.V, 1e-9)
	assert.InDelta(t, 163224100, q.Volume.V, 1e-9)
}

func TestErrorPayload(t *testing.T) {
	p := newTestProvider(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":400,"message":"symbol not found","status":"error"}`))
	})
	_, err := p.Fetcher(provider.ModelRealtime).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "NOPE",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symbol not found")
}

func TestMissingKey(t *testing.T) {
	hits := 0
	p := newTestProvider(t, "", func(w http.ResponseWriter, r *http.Request) { hits++ })
	_, err := p.Fetcher(provider.ModelRealtime).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "AAPL",
	})
	var mc *provider.MissingConfigurationError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, "FINFLUX_KEYS_TWELVEDATA", mc.Setting)
	assert.Zero(t, hits)
}

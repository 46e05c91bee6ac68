package alphavantage

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
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := config.Default()
	cfg.URLs.AlphaVantage = srv.URL + "/query?function="
	p := New(cfg, infra.NewClient(infra.ClientOptions{Timeout: 5 * time.Second}))
	require.NoError(t, p.Init(map[string]string{"api_key": "demo"}))
	return p
}

func TestEarnings(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "EARNINGS", q.Get("function"))
		assert.Equal(t, "IBM", q.Get("symbol"))
		assert.Equal(t, "demo", q.Get("apikey"))
		w.Write([]byte(`{"symbol":"IBM",
			"annualEarnings":[
				{"fiscalDateEnding":"2023-12-31","reportedEPS":"9.61"},
				{"fiscalDateEnding":"2022-12-31","reportedEPS":"9.12"}],
			"quarterlyEarnings":[
				{"fiscalDateEnding":"2023-12-31","reportedDate":"2024-01-24","reportedEPS":"3.87",
				 "estimatedEPS":"3.78","surprise":"0.09","surprisePercentage":"2.381"},
				{"fiscalDateEnding":"2023-09-30","reportedDate":"2023-10-25","reportedEPS":"2.2",
				 "estimatedEPS":"None","surprise":"0","surprisePercentage":"None"}]}`))
	})

	res, err := p.Fetcher(provider.ModelEarnings).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "IBM",
	})
	require.NoError(t, err)
	e := res.Data.(*models.Earnings)
	require.Len(t, e.Annual, 2)
	assert.Equal(t, 2022, e.Annual[0].FiscalDateEnding.Year())
	assert.InDelta(t, 9.61, e.Annual[1].ReportedEPS.V, 1e-9)

	require.Len(t, e.Quarterly, 2)
	assert.Equal(t, time.September, e.Quarterly[0].FiscalDateEnding.Month())
	assert.False(t, e.Quarterly[0].EstimatedEPS.Valid)
	assert.InDelta(t, 2.381, e.Quarterly[1].SurprisePercentage.V, 1e-9)
}

func TestRateLimitNote(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note":"Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`))
	})
	_, err := p.Fetcher(provider.ModelEarnings).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "IBM",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5 calls per minute")
}

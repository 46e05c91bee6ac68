package imf

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
	"github.com/seenimoa/finflux/pkg/series"
)

func newTestProvider(t *testing.T, h http.HandlerFunc) *Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := config.Default()
	cfg.URLs.IMF = srv.URL + "/"
	return New(cfg, infra.NewClient(infra.ClientOptions{Timeout: 5 * time.Second}))
}

func TestProviderInfo(t *testing.T) {
	p := New(config.Default(), infra.NewClient(infra.ClientOptions{}))
	info := p.Info()
	assert.Equal(t, "imf", info.Name)
	assert.Empty(t, info.Credentials)
	assert.Equal(t, []provider.ModelType{provider.ModelIFS}, p.SupportedModels())
}

func TestIFSQuarterly(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/CompactData/IFS/Q.DE.NGDP_SA_XDC", r.URL.Path)
		w.Write([]byte(`{"CompactData":{"DataSet":{"Series":{"@FREQ":"Q","Obs":[
			{"@TIME_PERIOD":"2020-Q1","@OBS_VALUE":"858000"},
			{"@TIME_PERIOD":"2020-Q2","@OBS_VALUE":"790000"},
			{"@TIME_PERIOD":"2020-Q3","@OBS_VALUE":"NaN"}]}}}}`))
	})
	res, err := p.Fetcher(provider.ModelIFS).Fetch(context.Background(), provider.QueryParams{
		provider.ParamCountry:   "de",
		provider.ParamIndicator: "NGDP_SA_XDC",
	})
	require.NoError(t, err)
	s := res.Data.(series.Series)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, "2020-06-01", s.Points[1].Date.Format(series.DateLayout))
	assert.False(t, s.Points[2].Value.Valid)
}

func TestIFSSingleObservation(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"CompactData":{"DataSet":{"Series":{"Obs":{"@TIME_PERIOD":"2024-01","@OBS_VALUE":"118.2"}}}}}`))
	})
	res, err := p.Fetcher(provider.ModelIFS).Fetch(context.Background(), provider.QueryParams{
		provider.ParamCountry:   "JP",
		provider.ParamIndicator: "PCPI_IX",
		provider.ParamFrequency: "M",
	})
	require.NoError(t, err)
	s := res.Data.(series.Series)
	require.Equal(t, 1, s.Len())
	assert.InDelta(t, 118.2, s.Points[0].Value.V, 1e-9)
}

func TestIFSNoSeries(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"CompactData":{"DataSet":{"@action":"Replace"}}}`))
	})
	_, err := p.Fetcher(provider.ModelIFS).Fetch(context.Background(), provider.QueryParams{
		provider.ParamCountry:   "XX",
		provider.ParamIndicator: "PCPI_IX",
	})
	assert.ErrorContains(t, err, "no observations")
}

func TestPeriodDate(t *testing.T) {
	for in, want := range map[string]string{
		"2020-Q4": "2020-12-01",
		"2021-07": "2021-07-01",
		"2019":    "2019-12-01",
	} {
		d, ok := periodDate(in)
		require.True(t, ok, in)
		assert.Equal(t, want, d.Format(series.DateLayout))
	}
	_, ok := periodDate("bad")
	assert.False(t, ok)
}

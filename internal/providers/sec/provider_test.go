package sec

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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
	cfg.URLs.SEC = srv.URL + "/"
	cfg.URLs.SECData = srv.URL + "/"
	p := New(cfg, infra.NewClient(infra.ClientOptions{Timeout: 5 * time.Second}))
	_ = p.Init(map[string]string{"email": "ops@example.com"})
	return p
}

func TestPadCIK(t *testing.T) {
	tests := []struct{ in, want string }{
		{"320193", "0000320193"},
		{"0000320193", "0000320193"},
		{"1", "0000000001"},
	}
	for _, tt := range tests {
		if got := PadCIK(tt.in); got != tt.want {
			t.Errorf("PadCIK(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompanyTickers(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/company_tickers.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "ops@example.com" {
			t.Errorf("User-Agent: got %q", ua)
		}
		w.Write([]byte(`{"1":{"cik_str":789019,"ticker":"MSFT","title":"MICROSOFT CORP"},
			"0":{"cik_str":320193,"ticker":"AAPL","title":"Apple Inc."}}`))
	})

	res, err := p.Fetcher(provider.ModelCompanyTickers).Fetch(context.Background(), nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	rows := res.Data.([]models.CompanyTicker)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Ticker != "AAPL" || rows[0].CIK != "0000320193" {
		t.Errorf("row 0: %+v", rows[0])
	}
}

func TestSubmissions(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/submissions/CIK0000320193.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"cik":"320193","name":"Apple Inc.","filings":{"recent":{
			"accessionNumber":["0000320193-24-000069","0000320193-24-000068"],
			"filingDate":["2024-05-03","2024-05-02"],
			"reportDate":["2024-03-30",""],
			"form":["10-Q","8-K"],
			"primaryDocument":["aapl-20240330.htm","aapl-20240502.htm"]}}}`))
	})

	res, err := p.Fetcher(provider.ModelSubmissions).Fetch(context.Background(), provider.QueryParams{
		provider.ParamSymbol: "320193",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	filings := res.Data.([]models.Filing)
	if len(filings) != 2 {
		t.Fatalf("expected 2 filings, got %d", len(filings))
	}
	f := filings[0]
	if f.Form != "10-Q" || f.FilingDate.Format("2006-01-02") != "2024-05-03" {
		t.Errorf("filing 0: %+v", f)
	}
	want := p.wwwURL + "Archives/edgar/data/320193/000032019324000069/aapl-20240330.htm"
	if f.URL != want {
		t.Errorf("URL: got %s, want %s", f.URL, want)
	}
}

func TestMissingEmail(t *testing.T) {
	hits := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) { hits++ })
	_ = p.Init(nil)

	_, err := p.Fetcher(provider.ModelCompanyTickers).Fetch(context.Background(), nil)
	var mc *provider.MissingConfigurationError
	if !errors.As(err, &mc) {
		t.Fatalf("expected MissingConfigurationError, got %v", err)
	}
	if mc.Setting != "FINFLUX_EMAIL" {
		t.Errorf("setting: got %s", mc.Setting)
	}
	if hits != 0 {
		t.Error("request sent without a contact email")
	}
}

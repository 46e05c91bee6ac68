package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/finflux/internal/bond"
	"github.com/seenimoa/finflux/internal/crypto"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/econ"
	"github.com/seenimoa/finflux/internal/equity"
	"github.com/seenimoa/finflux/internal/forex"
	"github.com/seenimoa/finflux/internal/indicator"
	"github.com/seenimoa/finflux/internal/provider"
)

// moded runs an operation that takes its display mode as an argument.
// The mode comes from the display query parameter, def when absent.
func moded(def string, run func(r *http.Request, mode string) (display.Result, error)) operation {
	return func(r *http.Request) (display.Result, string, error) {
		mode := r.URL.Query().Get("display")
		if mode == "" {
			mode = def
		}
		res, err := run(r, mode)
		return res, mode, err
	}
}

// optioned binds the query onto a copy of opts before calling run. mode
// reads the display mode back from the bound options.
func optioned[T any](opts T, mode func(T) string, run func(*http.Request, T) (display.Result, error)) operation {
	return func(r *http.Request) (display.Result, string, error) {
		o := opts
		if err := bindQuery(r.URL.Query(), &o); err != nil {
			return display.Result{}, "", err
		}
		res, err := run(r, o)
		return res, mode(o), err
	}
}

func param(r *http.Request, name, def string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return def
}

// ---- equity ----

func (s *Server) equityRoutes(r chi.Router) {
	eq := s.svc.Equity
	ticker := func(r *http.Request) string { return chi.URLParam(r, "ticker") }
	// byTicker adapts the operations that take only a ticker and a mode.
	byTicker := func(run func(context.Context, string, string) (display.Result, error)) http.HandlerFunc {
		return s.serve(moded(display.JSON, func(r *http.Request, mode string) (display.Result, error) {
			return run(r.Context(), ticker(r), mode)
		}))
	}

	r.Get("/timeseries", s.serve(optioned(equity.TimeseriesOptions{Display: display.JSON},
		func(o equity.TimeseriesOptions) string { return o.Display },
		func(r *http.Request, o equity.TimeseriesOptions) (display.Result, error) {
			return eq.Timeseries(r.Context(), ticker(r), o)
		})))
	r.Get("/statement", s.serve(optioned(equity.StatementOptions{Display: display.JSON},
		func(o equity.StatementOptions) string { return o.Display },
		func(r *http.Request, o equity.StatementOptions) (display.Result, error) {
			return eq.Statement(r.Context(), ticker(r), o)
		})))
	r.Get("/realtime", byTicker(eq.Realtime))
	r.Get("/quote", byTicker(eq.Quote))
	r.Get("/info", byTicker(eq.Info))
	r.Get("/news", byTicker(eq.News))
	r.Get("/estimates", byTicker(eq.AnalystEstimates))
	r.Get("/dividend", byTicker(eq.Dividend))
	r.Get("/split", byTicker(eq.Split))
	r.Get("/stats", byTicker(eq.Stats))
	r.Get("/filings", s.serve(moded(display.JSON, func(r *http.Request, mode string) (display.Result, error) {
		return eq.Filings(r.Context(), ticker(r), param(r, "form", ""), mode)
	})))
	r.Get("/eps", s.serve(moded(display.JSON, func(r *http.Request, mode string) (display.Result, error) {
		return eq.EPSTimeseries(r.Context(), ticker(r), param(r, "interval", "annual"), mode)
	})))
}

// ---- forex ----

func (s *Server) forexRoutes(r chi.Router) {
	fx := s.svc.Forex
	pair := func(r *http.Request) (string, string) { return chi.URLParam(r, "from"), chi.URLParam(r, "to") }

	r.Get("/timeseries", s.serve(optioned(forex.TimeseriesOptions{Display: display.JSON},
		func(o forex.TimeseriesOptions) string { return o.Display },
		func(r *http.Request, o forex.TimeseriesOptions) (display.Result, error) {
			from, to := pair(r)
			return fx.Timeseries(r.Context(), from, to, o)
		})))
	r.Get("/realtime", s.serve(moded(display.JSON, func(r *http.Request, mode string) (display.Result, error) {
		from, to := pair(r)
		return fx.Realtime(r.Context(), from, to, mode)
	})))
	r.Get("/conversion", s.serve(optioned(forex.ConversionOptions{Display: display.JSON},
		func(o forex.ConversionOptions) string { return o.Display },
		func(r *http.Request, o forex.ConversionOptions) (display.Result, error) {
			raw := param(r, "amount", "1")
			amount, err := forex.ParseAmount(raw)
			if err != nil {
				return display.Result{}, err
			}
			from, to := pair(r)
			return fx.Conversion(r.Context(), from, to, amount, o)
		})))
}

// ---- bond ----

func (s *Server) bondRoutes(r chi.Router) {
	b := s.svc.Bond
	country := func(r *http.Request) string { return chi.URLParam(r, "country") }
	maturity := func(r *http.Request) string { return param(r, "maturity", "10y") }

	r.Get("/timeseries", s.serve(optioned(bond.TimeseriesOptions{Display: display.JSON},
		func(o bond.TimeseriesOptions) string { return o.Display },
		func(r *http.Request, o bond.TimeseriesOptions) (display.Result, error) {
			return b.SovereignTimeseries(r.Context(), country(r), maturity(r), o)
		})))
	r.Get("/candle", s.serve(func(r *http.Request) (display.Result, string, error) {
		mode := param(r, "display", display.Candle)
		if err := provider.OneOf("display", mode, display.Candle, display.JSON, display.Table); err != nil {
			return display.Result{}, "", err
		}
		var o bond.CandleOptions
		if err := bindQuery(r.URL.Query(), &o); err != nil {
			return display.Result{}, "", err
		}
		res, err := b.Candle(r.Context(), country(r), maturity(r), o)
		return res, mode, err
	}))
	r.Get("/curve", s.serve(moded(display.JSON, func(r *http.Request, mode string) (display.Result, error) {
		return b.Curve(r.Context(), country(r), mode)
	})))
	r.Get("/eod", s.serve(moded(display.JSON, func(r *http.Request, mode string) (display.Result, error) {
		return b.EOD(r.Context(), country(r), maturity(r), mode)
	})))
	r.Get("/quote", s.serve(moded(display.JSON, func(r *http.Request, mode string) (display.Result, error) {
		return b.Quote(r.Context(), country(r), maturity(r), mode)
	})))
	r.Get("/hqm", s.serve(optioned(bond.CorporateOptions{Display: display.JSON},
		func(o bond.CorporateOptions) string { return o.Display },
		func(r *http.Request, o bond.CorporateOptions) (display.Result, error) {
			if err := provider.OneOf("country", strings.ToUpper(country(r)), "US"); err != nil {
				return display.Result{}, err
			}
			return b.USHQMCorporate(r.Context(), o)
		})))
	r.Get("/10y", s.serve(moded(display.JSON, func(r *http.Request, mode string) (display.Result, error) {
		return b.NonUS10Y(r.Context(), country(r), param(r, "period", ""), mode)
	})))
}

// ---- indicator ----

func (s *Server) indicatorRoutes(r chi.Router) {
	ind := s.svc.Indicator
	macro := func(run func(context.Context, indicator.Options) (display.Result, error)) http.HandlerFunc {
		return s.serve(optioned(indicator.Options{Display: display.JSON},
			func(o indicator.Options) string { return o.Display },
			func(r *http.Request, o indicator.Options) (display.Result, error) { return run(r.Context(), o) }))
	}
	market := func(run func(context.Context, indicator.MarketOptions) (display.Result, error)) http.HandlerFunc {
		return s.serve(optioned(indicator.MarketOptions{Display: display.JSON},
			func(o indicator.MarketOptions) string { return o.Display },
			func(r *http.Request, o indicator.MarketOptions) (display.Result, error) { return run(r.Context(), o) }))
	}

	r.Get("/gdp", macro(ind.GDP))
	r.Get("/price_index", macro(ind.PriceIndex))
	r.Get("/pce", macro(ind.PCE))
	r.Get("/unemployment", macro(ind.Unemployment))
	r.Get("/labor", macro(ind.Labor))
	r.Get("/sentiment", macro(ind.Sentiment))
	r.Get("/housing", macro(ind.Housing))
	r.Get("/fed_rate", s.serve(optioned(indicator.FedRateOptions{Display: display.JSON},
		func(o indicator.FedRateOptions) string { return o.Display },
		func(r *http.Request, o indicator.FedRateOptions) (display.Result, error) {
			return ind.FedRate(r.Context(), o)
		})))
	r.Get("/vix", market(ind.VIX))
	r.Get("/dollar_index", market(ind.DollarIndex))
}

// ---- econ ----

func (s *Server) econRoutes(r chi.Router) {
	ec := s.svc.Econ
	country := func(r *http.Request) string { return chi.URLParam(r, "country") }

	r.Get("/gdp", s.serve(optioned(econ.GDPOptions{Display: display.JSON},
		func(o econ.GDPOptions) string { return o.Display },
		func(r *http.Request, o econ.GDPOptions) (display.Result, error) {
			return ec.GDP(r.Context(), country(r), o)
		})))
	r.Get("/price_index", s.serve(optioned(econ.PriceOptions{Display: display.JSON},
		func(o econ.PriceOptions) string { return o.Display },
		func(r *http.Request, o econ.PriceOptions) (display.Result, error) {
			return ec.PriceIndex(r.Context(), country(r), o)
		})))
	r.Get("/pce", s.serve(optioned(econ.PriceOptions{Display: display.JSON},
		func(o econ.PriceOptions) string { return o.Display },
		func(r *http.Request, o econ.PriceOptions) (display.Result, error) {
			if err := provider.OneOf("country", strings.ToUpper(country(r)), "US"); err != nil {
				return display.Result{}, err
			}
			return ec.PCE(r.Context(), o)
		})))
}

// ---- crypto ----

func (s *Server) cryptoRoutes(r chi.Router) {
	c := s.svc.Crypto
	coin := func(r *http.Request) string { return chi.URLParam(r, "coin") }

	r.Get("/realtime", s.serve(moded(display.JSON, func(r *http.Request, mode string) (display.Result, error) {
		return c.Realtime(r.Context(), coin(r), param(r, "vs", "usd"), mode)
	})))
	r.Get("/timeseries", s.serve(optioned(crypto.TimeseriesOptions{Display: display.JSON},
		func(o crypto.TimeseriesOptions) string { return o.Display },
		func(r *http.Request, o crypto.TimeseriesOptions) (display.Result, error) {
			return c.Timeseries(r.Context(), coin(r), param(r, "vs", "usd"), o)
		})))
}

// Package api provides the HTTP REST API server for finflux.
//
// It exposes every asset-class operation under /api/v1, plus health,
// key status and Prometheus metrics endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/seenimoa/finflux/internal/bond"
	"github.com/seenimoa/finflux/internal/config"
	"github.com/seenimoa/finflux/internal/crypto"
	"github.com/seenimoa/finflux/internal/display"
	"github.com/seenimoa/finflux/internal/econ"
	"github.com/seenimoa/finflux/internal/equity"
	"github.com/seenimoa/finflux/internal/forex"
	"github.com/seenimoa/finflux/internal/indicator"
	"github.com/seenimoa/finflux/internal/provider"
	"github.com/seenimoa/finflux/pkg/series"
)

// Services are the operations the API exposes. A nil service leaves its
// routes unmounted.
type Services struct {
	Equity    *equity.Service
	Forex     *forex.Service
	Bond      *bond.Service
	Indicator *indicator.Service
	Econ      *econ.Service
	Crypto    *crypto.Service

	// Providers, when set, adds model coverage to the status endpoint.
	Providers *provider.Registry
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	svc      Services
	gatherer prometheus.Gatherer
	log      zerolog.Logger
	started  time.Time
}

// NewServer creates a configured API server with all routes and
// middleware. gatherer backs /metrics; nil uses the default registry.
func NewServer(cfg *config.Config, svc Services, gatherer prometheus.Gatherer, log zerolog.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		cfg:      cfg,
		svc:      svc,
		gatherer: gatherer,
		log:      log,
		started:  time.Now(),
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)
		r.Get("/config", s.handleGetConfig)

		if s.svc.Equity != nil {
			r.Route("/equity/{ticker}", s.equityRoutes)
		}
		if s.svc.Forex != nil {
			r.Route("/forex/{from}/{to}", s.forexRoutes)
		}
		if s.svc.Bond != nil {
			r.Route("/bond/{country}", s.bondRoutes)
		}
		if s.svc.Indicator != nil {
			r.Route("/indicator", s.indicatorRoutes)
		}
		if s.svc.Econ != nil {
			r.Route("/econ/{country}", s.econRoutes)
		}
		if s.svc.Crypto != nil {
			r.Route("/crypto/{coin}", s.cryptoRoutes)
		}
	})
	return r
}

// requestLogger logs one line per request at info level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

// ============================================================
// Responses
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// operation runs one asset-class call and reports the display mode its
// result is rendered in.
type operation func(r *http.Request) (display.Result, string, error)

// serve renders the result of op. json results use the envelope; every
// other mode is written as the raw rendering with its content type.
func (s *Server) serve(op operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, mode, err := op(r)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		if mode == "" || mode == display.JSON {
			writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: res.Data()})
			return
		}
		var buf bytes.Buffer
		if err := display.Render(&buf, mode, res, display.Options{}); err != nil {
			s.writeFailure(w, r, err)
			return
		}
		w.Header().Set("Content-Type", display.ContentType(mode))
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes()) //nolint:errcheck
	}
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	}
	writeError(w, status, err.Error())
}

// statusOf maps an operation error onto an HTTP status.
func statusOf(err error) int {
	var (
		invalid  *provider.InvalidParameterError
		chart    *provider.ChartReadabilityError
		anchor   *series.MissingAnchorError
		security *provider.InvalidSecurityError
		bondErr  *provider.InvalidCountryMaturityError
		missing  *provider.MissingConfigurationError
		upstream *provider.UpstreamError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &chart), errors.As(err, &anchor):
		return http.StatusBadRequest
	case errors.As(err, &security), errors.As(err, &bondErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &missing):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{Success: false, Error: msg})
}

// ============================================================
// Health and status
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// StatusResponse is returned by GET /api/v1/status.
type StatusResponse struct {
	Uptime   string                          `json:"uptime"`
	Keys     []config.KeyStatus              `json:"keys"`
	Coverage map[provider.ModelType][]string `json:"coverage,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Uptime: time.Since(s.started).Round(time.Second).String(),
		Keys:   config.CheckAPIKeys(s.cfg),
	}
	if s.svc.Providers != nil {
		resp.Coverage = s.svc.Providers.ModelCoverage()
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

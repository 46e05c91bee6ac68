// Package provider implements the upstream provider abstraction layer.
// It defines a Provider interface, a Fetcher interface, and a registry that
// routes data requests to the provider serving a model type. It also owns
// the error taxonomy and the allow-list validator shared by every asset class.
package provider

import (
	"context"
	"fmt"
	"time"
)

// ProviderCredential describes a required credential for a provider.
type ProviderCredential struct {
	Name        string `json:"name"`        // e.g., "api_key"
	Description string `json:"description"` // e.g., "FRED API key from fred.stlouisfed.org"
	Required    bool   `json:"required"`    // checked at fetch time, not at Init
	EnvVar      string `json:"env_var"`     // e.g., "FINFLUX_KEYS_FRED"
}

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name        string               `json:"name"`        // e.g., "fred", "yfinance"
	Description string               `json:"description"` // human-readable description
	Website     string               `json:"website"`     // e.g., "https://fred.stlouisfed.org"
	Credentials []ProviderCredential `json:"credentials"`
	Models      []ModelType          `json:"models"` // supported standard models
}

// Provider is the interface that all data providers must implement.
// Each provider registers one or more Fetcher implementations for specific
// model types (e.g., Chart, FredSeries, Submissions).
type Provider interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Init stores the provider's credentials. Called once before registration.
	// Missing keys are not an error here; fetchers that need them report a
	// MissingConfigurationError when called.
	Init(credentials map[string]string) error

	// Fetcher returns the fetcher for the given model type, or nil if unsupported.
	Fetcher(model ModelType) Fetcher

	// SupportedModels returns all model types this provider can fetch.
	SupportedModels() []ModelType

	// Ping verifies the provider's connectivity and credentials.
	Ping(ctx context.Context) error
}

// QueryParams is the generic query parameter map passed to fetchers.
// Common keys include:
//   - "symbol"     : ticker, series id, CIK, ISO country code
//   - "start_date" : start date (YYYY-MM-DD)
//   - "end_date"   : end date
//   - "interval"   : sampling interval ("1d", "1wk", "1mo", "annual", "quarter")
//   - "frequency"  : native frequency of an economic series ("Q", "M")
//   - "indicator"  : indicator code for statistical databases
//   - "provider"   : override provider name
//
// Each fetcher defines which keys it requires/supports.
type QueryParams map[string]string

// QueryParamKey constants for commonly used query parameters.
const (
	ParamSymbol    = "symbol"
	ParamStartDate = "start_date"
	ParamEndDate   = "end_date"
	ParamInterval  = "interval"
	ParamLimit     = "limit"
	ParamPeriod    = "period"
	ParamCountry   = "country"
	ParamMaturity  = "maturity"
	ParamCurrency  = "currency"
	ParamFrequency = "frequency"
	ParamIndicator = "indicator"
	ParamTable     = "table"
	ParamTypes     = "types"
	ParamYears     = "years"
	ParamProvider  = "provider"
)

// FetchResult wraps a fetcher result with metadata.
type FetchResult struct {
	Provider  string    `json:"provider"`   // which provider returned this data
	Model     ModelType `json:"model"`      // the standard model type
	Data      any       `json:"data"`       // the fetched data (typed per model)
	FetchedAt time.Time `json:"fetched_at"` // when the data was fetched
}

// Fetcher is the interface for fetching a specific data type.
// Each Fetcher handles a single standard model type (e.g., EquityHistorical).
type Fetcher interface {
	// ModelType returns the standard model type this fetcher handles.
	ModelType() ModelType

	// Description returns a human-readable description of what this fetcher does.
	Description() string

	// RequiredParams returns the parameter keys this fetcher requires.
	RequiredParams() []string

	// OptionalParams returns the parameter keys this fetcher optionally accepts.
	OptionalParams() []string

	// Fetch retrieves data for the given query parameters.
	// The returned data type depends on the model:
	//   - Chart        → *models.Chart
	//   - FredSeries   → series.Series
	//   - Submissions  → []models.Filing
	//   etc.
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported is returned when a provider doesn't support a model type.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ValidateParams checks that all required parameters are present in params.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}

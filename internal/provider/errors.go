package provider

import (
	"fmt"
	"strings"

	"github.com/seenimoa/finflux/internal/infra"
)

// InvalidParameterError reports a supplied value outside its allow-list.
// It is always a caller bug and is never retried.
type InvalidParameterError struct {
	Param string
	Value string
	Valid []string
}

func (e *InvalidParameterError) Error() string {
	if len(e.Valid) == 0 {
		return fmt.Sprintf("invalid %s %q", e.Param, e.Value)
	}
	return fmt.Sprintf("invalid %s %q: valid choices are %s", e.Param, e.Value, strings.Join(e.Valid, ", "))
}

// InvalidSecurityError reports an instrument whose metadata does not match
// the requested asset class.
type InvalidSecurityError struct {
	Symbol   string
	Expected string
	Got      string
}

func (e *InvalidSecurityError) Error() string {
	got := e.Got
	if got == "" {
		got = "unknown"
	}
	return fmt.Sprintf("%s is not a valid %s security (instrument type %s)", e.Symbol, strings.ToLower(e.Expected), got)
}

// MissingConfigurationError reports a required key or setting that was never set.
type MissingConfigurationError struct {
	Provider string
	Setting  string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("%s: missing configuration %s", e.Provider, e.Setting)
}

// InvalidCountryMaturityError reports a country and maturity pair that the
// upstream source does not publish.
type InvalidCountryMaturityError struct {
	Country  string
	Maturity string
	Err      error
}

func (e *InvalidCountryMaturityError) Error() string {
	msg := fmt.Sprintf("no %s bond data for country %s", e.Maturity, e.Country)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidCountryMaturityError) Unwrap() error { return e.Err }

// ChartReadabilityError reports a chart request that would be unreadable.
type ChartReadabilityError struct {
	Reason string
}

func (e *ChartReadabilityError) Error() string {
	return "chart would be unreadable: " + e.Reason
}

// UpstreamError is a non-2xx answer from an upstream API.
type UpstreamError = infra.UpstreamError

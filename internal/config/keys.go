package config

import (
	"os"
	"strings"
)

// APIKeySource represents where an API key comes from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus represents the status of an API key.
type KeyStatus struct {
	Name   string       `json:"name"`
	Source APIKeySource `json:"source"`
	IsSet  bool         `json:"is_set"`
	Masked string       `json:"masked,omitempty"` // e.g., "abc...xyz"
}

// CheckAPIKeys returns the status of every upstream key and the SEC contact email.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("TwelveData API Key", cfg.Keys.TwelveData, EnvVar("keys.twelvedata")),
		checkKey("Alpha Vantage API Key", cfg.Keys.AlphaVantage, EnvVar("keys.alphavantage")),
		checkKey("CoinGecko API Key", cfg.Keys.CoinGecko, EnvVar("keys.coingecko")),
		checkKey("FMP API Key", cfg.Keys.FMP, EnvVar("keys.fmp")),
		checkKey("FRED API Key", cfg.Keys.FRED, EnvVar("keys.fred")),
		checkKey("BEA API Key", cfg.Keys.BEA, EnvVar("keys.bea")),
		checkKey("BLS API Key", cfg.Keys.BLS, EnvVar("keys.bls")),
		checkKey("SEC Contact Email", cfg.Email, EnvVar("email")),
	}
}

// EnvVar returns the environment variable that overrides a config key,
// e.g. "keys.fred" → "FINFLUX_KEYS_FRED".
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// checkKey checks if a key is set and where it came from.
func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		// Check if it came from env
		if os.Getenv(envVar) != "" {
			status.Source = KeySourceEnv
		} else {
			status.Source = KeySourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = KeySourceNone
	}

	return status
}

// maskKey masks an API key for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}

// Redacted returns a copy of cfg with every key replaced by its mask.
func (c *Config) Redacted() *Config {
	out := *c
	out.API.CORSOrigins = append([]string(nil), c.API.CORSOrigins...)
	for _, k := range []*string{
		&out.Keys.TwelveData, &out.Keys.AlphaVantage, &out.Keys.CoinGecko,
		&out.Keys.FMP, &out.Keys.FRED, &out.Keys.BEA, &out.Keys.BLS,
	} {
		if *k != "" {
			*k = maskKey(*k)
		}
	}
	return &out
}

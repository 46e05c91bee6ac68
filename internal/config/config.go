// Package config handles configuration loading for finflux.
// It supports YAML config files, a .env file and environment variable
// overrides. A *Config is built once and passed to every constructor; there
// is no package-level configuration state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FINFLUX_KEYS_FRED.
const EnvPrefix = "FINFLUX"

// Config represents the complete application configuration.
type Config struct {
	Keys    KeysConfig    `mapstructure:"keys"    yaml:"keys"`
	Email   string        `mapstructure:"email"   yaml:"email"   validate:"omitempty,email"`
	URLs    URLConfig     `mapstructure:"urls"    yaml:"urls"`
	HTTP    HTTPConfig    `mapstructure:"http"    yaml:"http"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Watch   WatchConfig   `mapstructure:"watch"   yaml:"watch"`

	// Providers picks the default provider of a model, e.g. profile: fmp.
	// Models not listed keep the first provider registered for them.
	Providers map[string]string `mapstructure:"providers" yaml:"providers,omitempty"`
}

// KeysConfig holds upstream API keys.
type KeysConfig struct {
	TwelveData   string `mapstructure:"twelvedata"   yaml:"twelvedata"`
	AlphaVantage string `mapstructure:"alphavantage" yaml:"alphavantage"`
	CoinGecko    string `mapstructure:"coingecko"    yaml:"coingecko"`
	FMP          string `mapstructure:"fmp"          yaml:"fmp"`
	FRED         string `mapstructure:"fred"         yaml:"fred"`
	BEA          string `mapstructure:"bea"          yaml:"bea"`
	BLS          string `mapstructure:"bls"          yaml:"bls"`
}

// URLConfig holds upstream base URLs. Every URL ends with the path prefix the
// provider appends its endpoints to.
type URLConfig struct {
	TwelveData   string `mapstructure:"twelvedata"   yaml:"twelvedata"   default:"https://api.twelvedata.com/"                    validate:"required,url"`
	AlphaVantage string `mapstructure:"alphavantage" yaml:"alphavantage" default:"https://www.alphavantage.co/query?function="    validate:"required,url"`
	CoinGecko    string `mapstructure:"coingecko"    yaml:"coingecko"    default:"https://pro-api.coingecko.com/api/v3/"          validate:"required,url"`
	FMP          string `mapstructure:"fmp"          yaml:"fmp"          default:"https://financialmodelingprep.com/api/"         validate:"required,url"`
	IMF          string `mapstructure:"imf"          yaml:"imf"          default:"http://dataservices.imf.org/REST/SDMX_JSON.svc/" validate:"required,url"`
	FRED         string `mapstructure:"fred"         yaml:"fred"         default:"https://api.stlouisfed.org/fred/"               validate:"required,url"`
	SEC          string `mapstructure:"sec"          yaml:"sec"          default:"https://www.sec.gov/"                           validate:"required,url"`
	SECData      string `mapstructure:"sec_data"     yaml:"sec_data"     default:"https://data.sec.gov/"                          validate:"required,url"`
	BEA          string `mapstructure:"bea"          yaml:"bea"          default:"https://apps.bea.gov/api/data/"                 validate:"required,url"`
	BLS          string `mapstructure:"bls"          yaml:"bls"          default:"https://api.bls.gov/publicAPI/v2/"              validate:"required,url"`
	YahooQuery1  string `mapstructure:"yahoo_query1" yaml:"yahoo_query1" default:"https://query1.finance.yahoo.com/"               validate:"required,url"`
	YahooQuery2  string `mapstructure:"yahoo_query2" yaml:"yahoo_query2" default:"https://query2.finance.yahoo.com/"               validate:"required,url"`
	YahooFeeds   string `mapstructure:"yahoo_feeds"  yaml:"yahoo_feeds"  default:"https://feeds.finance.yahoo.com/"               validate:"required,url"`
	Investing    string `mapstructure:"investing"    yaml:"investing"    default:"https://www.investing.com/"                     validate:"required,url"`
}

// HTTPConfig bounds upstream requests.
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"    yaml:"timeout"    default:"30s" validate:"gt=0"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent" default:"Mozilla/5.0 (compatible; finflux/1.0)"`
	RateLimit int           `mapstructure:"rate_limit" yaml:"rate_limit" default:"5"   validate:"min=1"` // requests per second per provider
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"         default:"0.0.0.0"`
	Port        int      `mapstructure:"port"         yaml:"port"         default:"8080" validate:"min=1,max=65535"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  default:"info"    validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `mapstructure:"output" yaml:"output" default:"stderr"` // stdout, stderr or a file path
}

// WatchConfig configures scheduled snapshots.
type WatchConfig struct {
	JobsFile string `mapstructure:"jobs_file" yaml:"jobs_file" default:"./config/watch.yaml"`
	OutDir   string `mapstructure:"out_dir"   yaml:"out_dir"   default:"./snapshots"`
}

// Default returns a configuration populated from the struct defaults.
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.finflux/config.yaml (home directory)
//  3. /etc/finflux/config.yaml (system)
//
// A .env file in the working directory is read first. Environment variables
// override config file values, e.g. FINFLUX_KEYS_FRED.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".finflux"))
	v.AddConfigPath("/etc/finflux")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	// A missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("error applying defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key with viper so environment overrides bind
// even when no config file sets them.
func setDefaults(v *viper.Viper, d *Config) {
	for _, k := range []string{"twelvedata", "alphavantage", "coingecko", "fmp", "fred", "bea", "bls"} {
		v.SetDefault("keys."+k, "")
	}
	v.SetDefault("email", d.Email)

	v.SetDefault("urls.twelvedata", d.URLs.TwelveData)
	v.SetDefault("urls.alphavantage", d.URLs.AlphaVantage)
	v.SetDefault("urls.coingecko", d.URLs.CoinGecko)
	v.SetDefault("urls.fmp", d.URLs.FMP)
	v.SetDefault("urls.imf", d.URLs.IMF)
	v.SetDefault("urls.fred", d.URLs.FRED)
	v.SetDefault("urls.sec", d.URLs.SEC)
	v.SetDefault("urls.sec_data", d.URLs.SECData)
	v.SetDefault("urls.bea", d.URLs.BEA)
	v.SetDefault("urls.bls", d.URLs.BLS)
	v.SetDefault("urls.yahoo_query1", d.URLs.YahooQuery1)
	v.SetDefault("urls.yahoo_query2", d.URLs.YahooQuery2)
	v.SetDefault("urls.yahoo_feeds", d.URLs.YahooFeeds)
	v.SetDefault("urls.investing", d.URLs.Investing)

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.rate_limit", d.HTTP.RateLimit)

	v.SetDefault("api.host", d.API.Host)
	v.SetDefault("api.port", d.API.Port)
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)

	v.SetDefault("watch.jobs_file", d.Watch.JobsFile)
	v.SetDefault("watch.out_dir", d.Watch.OutDir)
}

var validate = validator.New()

// Validate checks field constraints and reports every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (%v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

package provider

import (
	"context"
	"time"

	"github.com/seenimoa/finflux/internal/infra"
)

// BaseFetcher provides common functionality for fetcher implementations.
// Embed this in concrete fetchers to get rate limiting for free. Results are
// never cached: every call fetches fresh data.
type BaseFetcher struct {
	model       ModelType
	description string
	required    []string
	optional    []string
	limiter     *infra.RateLimiter
}

// NewBaseFetcher creates a base fetcher allowing 10 requests per second.
func NewBaseFetcher(model ModelType, desc string, required, optional []string) BaseFetcher {
	return NewBaseFetcherWithOpts(model, desc, required, optional, 10, time.Second)
}

// NewBaseFetcherWithOpts creates a base fetcher with a custom rate limit.
func NewBaseFetcherWithOpts(model ModelType, desc string, required, optional []string, rateLimit int, rateWindow time.Duration) BaseFetcher {
	return BaseFetcher{
		model:       model,
		description: desc,
		required:    required,
		optional:    optional,
		limiter:     infra.NewRateLimiter(rateLimit, rateWindow),
	}
}

// NewBaseFetcherWithLimiter creates a base fetcher sharing limiter with the
// other fetchers of its provider, so the provider as a whole is throttled.
func NewBaseFetcherWithLimiter(model ModelType, desc string, required, optional []string, limiter *infra.RateLimiter) BaseFetcher {
	return BaseFetcher{
		model:       model,
		description: desc,
		required:    required,
		optional:    optional,
		limiter:     limiter,
	}
}

func (b *BaseFetcher) ModelType() ModelType     { return b.model }
func (b *BaseFetcher) Description() string      { return b.description }
func (b *BaseFetcher) RequiredParams() []string { return b.required }
func (b *BaseFetcher) OptionalParams() []string { return b.optional }

// RateLimit waits until a request slot is available.
func (b *BaseFetcher) RateLimit(ctx context.Context) error {
	return b.limiter.Wait(ctx)
}

// BaseProvider provides common functionality for provider implementations.
// Embed this in concrete providers to simplify implementation.
type BaseProvider struct {
	info        ProviderInfo
	fetchers    map[ModelType]Fetcher
	credentials map[string]string
}

// NewBaseProvider creates a base provider.
func NewBaseProvider(name, description, website string, creds []ProviderCredential) BaseProvider {
	return BaseProvider{
		info: ProviderInfo{
			Name:        name,
			Description: description,
			Website:     website,
			Credentials: creds,
		},
		fetchers:    make(map[ModelType]Fetcher),
		credentials: make(map[string]string),
	}
}

func (bp *BaseProvider) Info() ProviderInfo { return bp.info }

func (bp *BaseProvider) Init(credentials map[string]string) error {
	bp.credentials = make(map[string]string, len(credentials))
	for k, v := range credentials {
		bp.credentials[k] = v
	}
	return nil
}

func (bp *BaseProvider) Fetcher(model ModelType) Fetcher {
	return bp.fetchers[model]
}

func (bp *BaseProvider) SupportedModels() []ModelType {
	models := make([]ModelType, 0, len(bp.fetchers))
	for m := range bp.fetchers {
		models = append(models, m)
	}
	return models
}

func (bp *BaseProvider) Ping(ctx context.Context) error {
	return nil // Override in concrete providers.
}

// RegisterFetcher adds a fetcher to this provider.
func (bp *BaseProvider) RegisterFetcher(f Fetcher) {
	bp.fetchers[f.ModelType()] = f
	bp.info.Models = bp.SupportedModels()
}

// Credential returns a stored credential value.
func (bp *BaseProvider) Credential(name string) string {
	return bp.credentials[name]
}

// RequireCredential returns a stored credential, or a
// MissingConfigurationError naming the setting that supplies it.
func (bp *BaseProvider) RequireCredential(name string) (string, error) {
	if v := bp.credentials[name]; v != "" {
		return v, nil
	}
	setting := name
	for _, c := range bp.info.Credentials {
		if c.Name == name && c.EnvVar != "" {
			setting = c.EnvVar
		}
	}
	return "", &MissingConfigurationError{Provider: bp.info.Name, Setting: setting}
}

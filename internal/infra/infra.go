// Package infra provides shared infrastructure used by every upstream
// provider: a timeout-bound HTTP client, per-provider rate limiting and
// request metrics.
package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every upstream request when the config sets none.
const DefaultTimeout = 30 * time.Second

// UpstreamError is returned when an upstream API answers with a non-2xx status.
type UpstreamError struct {
	Provider string
	URL      string
	Status   int
	Body     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s returned HTTP %d: %s", e.Provider, e.URL, e.Status, e.Body)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	Logger    zerolog.Logger
	Metrics   *Metrics
}

// Client performs upstream requests. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	rc      *resty.Client
	log     zerolog.Logger
	metrics *Metrics
}

// NewClient creates a client with the given options.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	rc := resty.New().SetTimeout(opts.Timeout)
	if opts.UserAgent != "" {
		rc.SetHeader("User-Agent", opts.UserAgent)
	}
	return &Client{rc: rc, log: opts.Logger, metrics: opts.Metrics}
}

// DoGet issues a GET and returns the response body.
func (c *Client) DoGet(ctx context.Context, provider, rawURL string, headers map[string]string) ([]byte, error) {
	req := c.rc.R().SetContext(ctx).SetHeaders(headers)
	return c.do(provider, rawURL, func() (*resty.Response, error) { return req.Get(rawURL) })
}

// DoPost issues a POST with a JSON body and returns the response body.
func (c *Client) DoPost(ctx context.Context, provider, rawURL string, body any, headers map[string]string) ([]byte, error) {
	req := c.rc.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(headers).
		SetBody(body)
	return c.do(provider, rawURL, func() (*resty.Response, error) { return req.Post(rawURL) })
}

// GetJSON issues a GET and decodes the JSON response into dest.
func (c *Client) GetJSON(ctx context.Context, provider, rawURL string, headers map[string]string, dest any) error {
	h := map[string]string{"Accept": "application/json"}
	for k, v := range headers {
		h[k] = v
	}
	body, err := c.DoGet(ctx, provider, rawURL, h)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%s: decode %s: %w", provider, RedactURL(rawURL), err)
	}
	return nil
}

func (c *Client) do(provider, rawURL string, send func() (*resty.Response, error)) ([]byte, error) {
	start := time.Now()
	resp, err := send()
	elapsed := time.Since(start)
	safe := RedactURL(rawURL)

	if err != nil {
		c.metrics.observe(provider, "error", elapsed)
		c.log.Debug().Str("provider", provider).Str("url", safe).Err(err).Dur("elapsed", elapsed).Msg("upstream request failed")
		return nil, fmt.Errorf("%s: request %s: %w", provider, safe, err)
	}

	status := resp.StatusCode()
	c.metrics.observe(provider, fmt.Sprint(status), elapsed)
	c.log.Debug().Str("provider", provider).Str("url", safe).Int("status", status).Dur("elapsed", elapsed).Msg("upstream request")

	if status < 200 || status >= 300 {
		body := string(resp.Body())
		if len(body) > 256 {
			body = body[:256]
		}
		return nil, &UpstreamError{Provider: provider, URL: safe, Status: status, Body: body}
	}
	return resp.Body(), nil
}

var secretParams = map[string]bool{
	"api_key": true, "apikey": true, "apiKey": true, "token": true,
	"UserID": true, "registrationkey": true, "x_cg_pro_api_key": true,
}

// RedactURL hides credential query parameters so URLs can be logged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for k := range q {
		if secretParams[k] {
			q.Set(k, "***")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

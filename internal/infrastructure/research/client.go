// Package research fetches stock quotes from a fixed allow-list of upstream URLs.
package research

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/infrastructure/config"
	"github.com/portal/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

// ErrUnknownSymbol is returned for symbols outside the allow-list
var ErrUnknownSymbol = shared.InvalidInput("Invalid symbol provided.")

// Recorder receives one observation per upstream call
type Recorder interface {
	UpstreamFinished(symbol, outcome string, elapsed time.Duration)
}

// Client maps symbols to configured URLs and fetches them. Request URLs are
// never derived from user input.
type Client struct {
	symbols  map[string]string
	http     *http.Client
	limiter  *rate.Limiter
	recorder Recorder
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the outbound HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRecorder reports upstream outcomes to r
func WithRecorder(r Recorder) Option {
	return func(c *Client) {
		c.recorder = r
	}
}

// NewClient builds a client from configuration. The symbol map is copied
// and never changes afterwards.
func NewClient(cfg config.ResearchConfig, opts ...Option) *Client {
	symbols := make(map[string]string, len(cfg.Symbols))
	for k, v := range cfg.Symbols {
		symbols[k] = v
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		symbols: symbols,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			// an upstream redirect must not steer the fetch to another host
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(limit, burst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup returns the upstream URL for symbol. Matching is exact.
func (c *Client) Lookup(symbol string) (string, bool) {
	u, ok := c.symbols[symbol]
	return u, ok
}

// Symbols lists the configured symbols in order
func (c *Client) Symbols() []string {
	out := make([]string, 0, len(c.symbols))
	for k := range c.symbols {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Fetch opens the upstream quote for symbol. The caller must close the
// returned body. Unknown symbols fail with ErrUnknownSymbol before any
// network I/O; transport errors, timeouts and non-200 responses fail with
// an error matching shared.ErrUpstreamFailure.
func (c *Client) Fetch(ctx context.Context, symbol string) (io.ReadCloser, error) {
	target, ok := c.Lookup(symbol)
	if !ok {
		return nil, ErrUnknownSymbol
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "research", "fetch", attribute.String("research.symbol", symbol))
	defer span.End()

	start := time.Now()
	body, err := c.do(ctx, target)
	outcome := "success"
	if err != nil {
		outcome = "error"
		telemetry.RecordError(span, err)
	}
	if c.recorder != nil {
		c.recorder.UpstreamFinished(symbol, outcome, time.Since(start))
	}
	return body, err
}

func (c *Client) do(ctx context.Context, target string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: outbound rate limit: %v", shared.ErrUpstreamFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", shared.ErrUpstreamFailure, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUpstreamFailure, err)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: upstream returned %d", shared.ErrUpstreamFailure, resp.StatusCode)
	}
	return resp.Body, nil
}

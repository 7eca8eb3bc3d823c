// Package ingest fetches best-effort candidates from RSS feeds and public Telegram channels.
//
// Fetchers never return errors: network and parse failures are logged and contribute nothing.
// Nothing fetched here enters the catalog directly.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"apartinvest/server/internal/logging"
	"apartinvest/server/internal/observability"
)

const (
	userAgent      = "apartinvest-ingest/1.0"
	maxBodyBytes   = 5 << 20
	maxParallelism = 4
	defaultTimeout = 10 * time.Second
)

// httpGetter performs rate-limited GET requests with a bounded timeout.
type httpGetter struct {
	client  *http.Client
	limiter *rate.Limiter
	timeout time.Duration
	service string
	logger  *logrus.Logger
}

func newGetter(service string, client *http.Client, limiter *rate.Limiter, timeout time.Duration, logger *logrus.Logger) httpGetter {
	if client == nil {
		client = &http.Client{}
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return httpGetter{
		client:  client,
		limiter: limiter,
		timeout: timeout,
		service: service,
		logger:  logging.OrDefault(logger),
	}
}

// NewLimiter returns a limiter allowing perSecond requests; non-positive means unlimited.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// get returns the response body of url. The caller's context and the fetch timeout both apply.
func (g httpGetter) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		observability.ObserveExternal(g.service, 0, time.Since(start))
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal(g.service, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	return body, nil
}

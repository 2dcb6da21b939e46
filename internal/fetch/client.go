// Package fetch implements the polite HTTP client shared by the
// source collectors and the career resolver: robots.txt compliance,
// per-host request spacing, and an absent-on-failure fetch contract.
package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/artenis/openjobboard/internal/metrics"
)

const (
	defaultTimeout = 20 * time.Second

	// Page bodies beyond this are truncated; robots.txt beyond 1 MiB
	// is not worth parsing.
	maxPageBytes   = 5 << 20
	maxRobotsBytes = 1 << 20
)

// Session owns the process-wide HTTP client for one scrape run. All
// Clients share its connection pool; Close releases it on every exit
// path.
type Session struct {
	httpClient *http.Client
	userAgent  string
}

// NewSession builds the shared HTTP session. Redirects are followed;
// per-request timeouts are applied by each Client.
func NewSession(userAgent string) *Session {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
	return &Session{
		httpClient: &http.Client{Transport: transport},
		userAgent:  userAgent,
	}
}

// UserAgent reports the identifying user agent sent with every request.
func (s *Session) UserAgent() string { return s.userAgent }

// Close shuts down the pooled connections.
func (s *Session) Close() {
	s.httpClient.CloseIdleConnections()
}

// Options tunes one Client on top of a shared Session.
type Options struct {
	// MinDelay is the minimum spacing between two requests to the
	// same host. Zero disables spacing.
	MinDelay time.Duration
	// Timeout bounds a single fetch including the body read.
	Timeout time.Duration
}

// Client performs polite GETs on behalf of one pipeline component.
// The robots decision cache and the per-host limiters live for the
// client's lifetime, which is one scrape session.
type Client struct {
	session  *Session
	minDelay time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	robots   map[string]*robotstxt.RobotsData // nil entry = permissive
	limiters map[string]*rate.Limiter
}

// NewClient wraps the shared session with component-specific politeness
// settings.
func NewClient(session *Session, opts Options, logger *zap.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		session:  session,
		minDelay: opts.MinDelay,
		timeout:  timeout,
		logger:   logger,
		robots:   make(map[string]*robotstxt.RobotsData),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Fetch GETs the URL after a robots.txt check and per-host spacing.
// It returns the body text and true on a 2xx response; every other
// outcome (policy denial, HTTP error, network error) returns false and
// is only distinguished in logs. No retries at this layer.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, bool) {
	target := normalizeRequestURL(rawURL)
	if target == "" {
		return "", false
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host == "" {
		return "", false
	}

	if !c.allowedByRobots(ctx, parsed) {
		c.logger.Info("blocked by robots.txt", zap.String("url", target))
		metrics.ObserveFetch("robots_denied")
		return "", false
	}

	if err := c.waitForHost(ctx, parsed.Host); err != nil {
		c.logger.Debug("rate limit wait aborted", zap.String("url", target), zap.Error(err))
		return "", false
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", c.session.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.session.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("fetch failed", zap.String("url", target), zap.Error(err))
		metrics.ObserveFetch("network_error")
		return "", false
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("close response body", zap.Error(cerr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		c.logger.Warn("read response body", zap.String("url", target), zap.Error(err))
		metrics.ObserveFetch("network_error")
		return "", false
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 4xx means the site told us no; only server-side trouble is
		// worth a louder log line. Neither is surfaced to the caller.
		if resp.StatusCode < 500 {
			c.logger.Debug("fetch skipped",
				zap.String("url", target), zap.Int("status", resp.StatusCode))
		} else {
			c.logger.Warn("fetch failed",
				zap.String("url", target), zap.Int("status", resp.StatusCode))
		}
		metrics.ObserveFetch("http_error")
		return "", false
	}

	metrics.ObserveFetch("ok")
	return string(body), true
}

// normalizeRequestURL strips the fragment and any trailing slash.
func normalizeRequestURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return ""
	}
	parsed.Fragment = ""
	return strings.TrimSuffix(parsed.String(), "/")
}

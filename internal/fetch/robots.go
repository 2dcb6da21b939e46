package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// allowedByRobots checks the host's robots.txt for the client's user
// agent. The parsed file is cached per host for the session; if it
// cannot be retrieved, the permissive outcome is cached too, so the
// session never refetches robots.txt for that host.
func (c *Client) allowedByRobots(ctx context.Context, target *url.URL) bool {
	hostKey := strings.ToLower(target.Host)

	c.mu.Lock()
	data, cached := c.robots[hostKey]
	c.mu.Unlock()

	if !cached {
		data = c.loadRobots(ctx, target)
		c.mu.Lock()
		c.robots[hostKey] = data
		c.mu.Unlock()
	}

	if data == nil {
		return true
	}
	group := data.FindGroup(c.session.userAgent)
	if group == nil {
		return true
	}
	path := target.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

// loadRobots fetches and parses robots.txt for the target's host.
// A nil return means "treat the host as permissive".
func (c *Client) loadRobots(ctx context.Context, target *url.URL) *robotstxt.RobotsData {
	robotsURL := &url.URL{Scheme: target.Scheme, Host: target.Host, Path: "/robots.txt"}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", c.session.userAgent)

	resp, err := c.session.httpClient.Do(req)
	if err != nil {
		c.logger.Info("robots.txt unreachable; allowing fetches",
			zap.String("host", target.Host), zap.Error(err))
		return nil
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("close robots body", zap.Error(cerr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		c.logger.Info("robots.txt read failed; allowing fetches",
			zap.String("host", target.Host), zap.Error(err))
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Info("no robots.txt available",
			zap.String("host", target.Host), zap.Int("status", resp.StatusCode))
		return nil
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		c.logger.Info("robots.txt unparseable; allowing fetches",
			zap.String("host", target.Host), zap.Error(err))
		return nil
	}
	return data
}

// Package haodoo is a client for the Haodoo free e-book catalog.
//
// The site has no API: search means fetching a Big5-encoded HTML result
// page and pattern-matching book identifiers out of it. The scraping
// details are deliberately confined to this package so the parsing
// strategy can change without touching callers.
package haodoo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	"github.com/readleafapp/readleaf-server/internal/ratelimit"
)

const (
	// Upstream is a volunteer-run site; keep requests slow.
	defaultRPS   = 1.0
	defaultBurst = 2

	defaultTimeout = 15 * time.Second
)

// Config holds client settings.
type Config struct {
	// BaseURL is the catalog site root, e.g. "https://www.haodoo.net".
	BaseURL string
	// Referrer is sent with every request. The site rejects hotlinked
	// downloads, so this must point at its own pages.
	Referrer string
	// UserAgent impersonates a mobile browser; the plain-Go default is
	// served an error page.
	UserAgent string
	// ResultCap bounds results per search (default 5).
	ResultCap int
	// RPS overrides the default upstream request rate.
	RPS float64
	// DownloadTimeout bounds a whole request round trip (default 15s).
	DownloadTimeout time.Duration
}

// Client is a rate-limited Haodoo catalog client.
type Client struct {
	http    *http.Client
	cfg     Config
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new Haodoo client.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.ResultCap <= 0 {
		cfg.ResultCap = 5
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = defaultRPS
	}
	timeout := cfg.DownloadTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		cfg:     cfg,
		limiter: ratelimit.New(rps, defaultBurst),
		logger:  logger,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// doRequest executes a rate-limited GET and returns the raw body.
func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	reqURL, err := url.Parse(fullURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	if err := c.limiter.Wait(ctx, reqURL.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Referer", c.cfg.Referrer)

	c.logger.Debug("haodoo request", "url", fullURL)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrBadRequest
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// decodeBig5 converts the site's legacy encoding to UTF-8.
func decodeBig5(body []byte) (string, error) {
	decoded, _, err := transform.Bytes(traditionalchinese.Big5.NewDecoder(), body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return string(decoded), nil
}

// encodeBig5Query encodes a keyword the way the site's search form
// does: Big5 bytes, percent-escaped.
func encodeBig5Query(keyword string) (string, error) {
	encoded, _, err := transform.Bytes(traditionalchinese.Big5.NewEncoder(), []byte(keyword))
	if err != nil {
		// Characters outside Big5 can't be searched upstream; fall back
		// to the raw keyword, which at worst finds nothing.
		return url.QueryEscape(keyword), nil
	}
	return url.QueryEscape(string(encoded)), nil
}

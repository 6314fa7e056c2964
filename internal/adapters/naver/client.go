// internal/adapters/naver/client.go
package naver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"placereview/internal/adapters/observability"
	"placereview/internal/domain"
)

const DefaultBaseURL = "https://openapi.naver.com/v1/search/local.json"

// maxBody caps what we read from the provider.
const maxBody = 1 << 20

type Client struct {
	base   string
	id     string
	secret string
	hc     *http.Client
	rl     *rate.Limiter
}

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	RPS          int
}

// StatusError is a non-2xx provider answer other than 429.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("naver: bad status %d: %s", e.Code, e.Body)
}

func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("naver: client id and secret are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 10
	}
	return &Client{
		base:   cfg.BaseURL,
		id:     cfg.ClientID,
		secret: cfg.ClientSecret,
		hc:     &http.Client{Timeout: cfg.Timeout},
		rl:     rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
	}, nil
}

// SearchLocal performs one local-search call and returns the raw body. There
// are no retries: 429 maps to domain.ErrProviderRateLimited, anything else
// non-2xx to *StatusError.
func (c *Client) SearchLocal(ctx context.Context, query string, display int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.hc.Timeout)
	defer cancel()

	// client-side rate limiting; waiting past the deadline is a failure
	if err := c.rl.Wait(ctx); err != nil {
		return nil, fmt.Errorf("naver: rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("display", strconv.Itoa(display))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Naver-Client-Id", c.id)
	req.Header.Set("X-Naver-Client-Secret", c.secret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "placereview/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("naver", "local_search", 0, time.Since(start))
		return nil, fmt.Errorf("naver: request failed: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("naver", "local_search", resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, domain.ErrProviderRateLimited

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, fmt.Errorf("naver: read body: %w", err)
		}
		return b, nil

	default:
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
}

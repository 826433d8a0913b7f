// Package youtube is a small YouTube Data API v3 client: comment threads, channel search,
// video snippets and URL parsing.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_ytpulse/internal/engine"
)

const (
	DataAPIBase = "https://www.googleapis.com/youtube/v3"
	maxPageSize = 50
)

// Config is the explicit client configuration; nothing is read from the environment here.
type Config struct {
	APIKey      string
	FallbackKey string
	BaseURL     string // default DataAPIBase
	HTTPClient  *http.Client
	Timeout     time.Duration // per request, 0 = caller's deadline only
	Retry       engine.RetryConfig
	QPS         float64 // <= 0 disables the limiter
	Burst       int
	CommentCap  int
}

// Client calls the Data API with key fallback, a shared quota limiter and per-call timeouts.
type Client struct {
	cfg     Config
	limiter *rate.Limiter
}

// NewClient builds a Client. Zero values fall back to sane defaults.
func NewClient(c Config) *Client {
	if c.BaseURL == "" {
		c.BaseURL = DataAPIBase
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	c.CommentCap = engine.OrDefault(c.CommentCap, engine.DefaultCommentCap)

	limit := rate.Inf
	if c.QPS > 0 {
		limit = rate.Limit(c.QPS)
	}
	burst := c.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{cfg: c, limiter: rate.NewLimiter(limit, burst)}
}

// apiError is a non-200 Data API response.
type apiError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("youtube data API %s %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// quota reports whether another key might succeed.
func (e *apiError) quota() bool {
	return e.StatusCode == http.StatusForbidden || e.StatusCode == http.StatusTooManyRequests
}

// get calls endpoint with params and decodes JSON into out.
// Falls back to the secondary key on quota errors (403/429).
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	keys := []string{c.cfg.APIKey}
	if c.cfg.FallbackKey != "" {
		keys = append(keys, c.cfg.FallbackKey)
	}
	var lastErr error
	for _, key := range keys {
		err := c.doGet(ctx, endpoint, params, key, out)
		if err == nil {
			return nil
		}
		lastErr = err
		apiErr, ok := err.(*apiError)
		if !ok || !apiErr.quota() {
			break
		}
		slog.Debug("youtube data API key failed, trying fallback", slog.Any("error", err))
	}
	engine.IncrYouTubeError()
	return lastErr
}

func (c *Client) doGet(ctx context.Context, endpoint string, params url.Values, key string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	if key != "" {
		q.Set("key", key)
	}
	apiURL := c.cfg.BaseURL + "/" + endpoint + "?" + q.Encode()

	engine.IncrYouTubeRequest()
	resp, err := engine.RetryHTTP(ctx, c.cfg.Retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		req.Header.Set("Accept", "application/json")
		return c.cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return fmt.Errorf("youtube data API %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &apiError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode youtube data API %s: %w", endpoint, err)
	}
	return nil
}

package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.scryfall.com"
	DefaultRateLimit = 100 * time.Millisecond // 10 req/sec
	requestTimeout   = 30 * time.Second
	maxRetries       = 3
	initialBackoff   = 1 * time.Second
	maxBackoff       = 16 * time.Second
)

// Options configures a Client. Zero fields take the defaults.
type Options struct {
	BaseURL        string
	RateLimit      time.Duration // Minimum delay between requests
	Timeout        time.Duration
	UserAgent      string
	InitialBackoff time.Duration
}

// Client represents a Scryfall API client with rate limiting.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	backoff     time.Duration
}

// NewClient creates a new Scryfall API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = requestTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "EDH-Tracker/1.0"
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = initialBackoff
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(opts.RateLimit), 1),
		userAgent:   opts.UserAgent,
		backoff:     opts.InitialBackoff,
	}
}

// NamedExact retrieves a card by its exact name.
func (c *Client) NamedExact(ctx context.Context, name string) (*Card, error) {
	u := fmt.Sprintf("%s/cards/named?exact=%s", c.baseURL, url.QueryEscape(name))

	var card Card
	if err := c.doRequest(ctx, u, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %q: %w", name, err)
	}

	return &card, nil
}

// Autocomplete returns up to 20 card names starting with or resembling query.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]string, error) {
	u := fmt.Sprintf("%s/cards/autocomplete?q=%s", c.baseURL, url.QueryEscape(query))

	var catalog Catalog
	if err := c.doRequest(ctx, u, &catalog); err != nil {
		return nil, fmt.Errorf("failed to autocomplete %q: %w", query, err)
	}

	return catalog.Data, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// doRequest performs an HTTP request with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)

			// Retry on network errors
			if attempt < maxRetries {
				if err := sleep(ctx, backoff); err != nil {
					return err
				}
				backoff = min(backoff*2, maxBackoff)
				continue
			}
			return lastErr
		}

		retry, err := c.handleResponse(resp, url, result)
		_ = resp.Body.Close()
		if !retry {
			return err
		}
		lastErr = err

		if attempt < maxRetries {
			wait := backoff
			if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 {
				wait = time.Duration(secs) * time.Second
			}
			if err := sleep(ctx, wait); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// handleResponse decodes a response. retry is true for throttling and server errors.
func (c *Client) handleResponse(resp *http.Response, url string, result interface{}) (retry bool, err error) {
	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, fmt.Errorf("failed to read response body: %w", err)
		}
		if err := json.Unmarshal(body, result); err != nil {
			return false, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return false, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		return true, fmt.Errorf("rate limited (HTTP 429)")

	case resp.StatusCode == http.StatusNotFound:
		return false, &NotFoundError{URL: url}

	case resp.StatusCode >= 500:
		return true, fmt.Errorf("server error (HTTP %d)", resp.StatusCode)

	default:
		body, _ := io.ReadAll(resp.Body)

		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			return false, &apiErr
		}
		return false, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}

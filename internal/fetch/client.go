package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"sleeve/internal/services"
)

const (
	defaultTimeout = 8 * time.Second
	retryAttempts  = 3
	retryBackoff   = 200 * time.Millisecond
)

// Options describes client construction parameters.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Cache     *Cache
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// Client performs cached, retrying GET requests.
type Client struct {
	http      *http.Client
	cache     *Cache
	userAgent string
}

// New constructs a Client. A nil cache disables caching.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		http:      httpClient,
		cache:     opts.Cache,
		userAgent: opts.UserAgent,
	}
}

// GetJSON fetches rawURL with the given query parameters and decodes the
// response body into out. Responses are served from the cache when possible.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	key := Key(rawURL, params)
	body, ok := c.cache.Get(key)
	if !ok {
		full := rawURL
		if len(params) > 0 {
			full = rawURL + "?" + params.Encode()
		}
		var err error
		body, err = c.get(ctx, full, "application/json")
		if err != nil {
			return err
		}
		c.cache.Put(key, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrParse, "fetch", "decode", rawURL, err)
	}
	return nil
}

// GetBytes fetches rawURL and returns the raw response body, cached by URL.
func (c *Client) GetBytes(ctx context.Context, rawURL string) ([]byte, error) {
	if body, ok := c.cache.Get(rawURL); ok {
		return body, nil
	}
	body, err := c.get(ctx, rawURL, "")
	if err != nil {
		return nil, err
	}
	c.cache.Put(rawURL, body)
	return body, nil
}

// retryableStatus reports whether a response status warrants another attempt.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func (c *Client) get(ctx context.Context, fullURL, accept string) ([]byte, error) {
	var lastErr error
	backoff := retryBackoff
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		body, retryable, err := c.attempt(ctx, fullURL, accept)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, services.Wrap(services.ErrTransport, "fetch", "get", fullURL, lastErr)
}

func (c *Client) attempt(ctx context.Context, fullURL, accept string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, false, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Network errors are worth one more try unless the context is gone.
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, retryableStatus(resp.StatusCode), fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return body, false, nil
}

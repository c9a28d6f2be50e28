package transfermarkt

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout = 20 * time.Second
	defaultRetries = 2
)

// The site blocks clients without a browser User-Agent. A small rotating
// pool keeps requests from looking uniform.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// Client retrieves pages from transfermarkt. It applies a bounded retry
// policy for transient failures; callers own parsing.
type Client struct {
	http    *resty.Client
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds a single page fetch including retries.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithRetries sets the number of retries per fetch (not counting the first
// attempt).
func WithRetries(n int) Option {
	return func(c *Client) {
		c.http.SetRetryCount(n)
	}
}

// NewClient creates a Client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	http := resty.New()
	http.SetBaseURL(baseURL)
	http.SetTimeout(defaultTimeout)
	http.SetRetryCount(defaultRetries)
	http.SetRetryWaitTime(500 * time.Millisecond)
	http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetHeader("User-Agent", userAgents[rand.Intn(len(userAgents))])
		return nil
	})

	c := &Client{
		http:    http,
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the site root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Page fetches a single page and returns its raw HTML. The url may be a
// path relative to the client's base URL or an absolute URL.
func (c *Client) Page(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if resp.StatusCode() != 200 {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode()}
	}
	return resp.Body(), nil
}

// LeaguePage fetches the league listing page for a season.
func (c *Client) LeaguePage(ctx context.Context, leaguePath string, season int) ([]byte, error) {
	return c.Page(ctx, fmt.Sprintf("%s/plus/?saison_id=%d", leaguePath, season))
}

// Package vault reads secrets from an Azure Key Vault over its REST API.
package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultAPIVersion = "7.4"
	defaultTimeout    = 10 * time.Second
)

// TokenSource supplies a bearer token scoped to the vault.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource returning a fixed token, typically one issued
// out of band (managed identity sidecar, az cli, test fixtures).
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

// SecretError reports a failed secret lookup.
type SecretError struct {
	Name       string
	StatusCode int
}

func (e *SecretError) Error() string {
	return fmt.Sprintf("vault: fetching secret %q failed with status %d", e.Name, e.StatusCode)
}

// Client fetches secrets from a single vault.
type Client struct {
	http       *resty.Client
	tokens     TokenSource
	apiVersion string
}

// Option configures the Client.
type Option func(*Client)

// WithAPIVersion overrides the Key Vault REST API version.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		c.apiVersion = v
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// NewClient creates a client for the vault at vaultURL, e.g.
// https://myvault.vault.azure.net.
func NewClient(vaultURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		http:       resty.New().SetBaseURL(vaultURL).SetTimeout(defaultTimeout),
		tokens:     tokens,
		apiVersion: defaultAPIVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type secretResponse struct {
	Value string `json:"value"`
}

// Secret returns the current value of the named secret.
func (c *Client) Secret(ctx context.Context, name string) (string, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("vault: acquiring token: %w", err)
	}

	var body secretResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParam("api-version", c.apiVersion).
		SetResult(&body).
		Get("/secrets/" + name)
	if err != nil {
		return "", fmt.Errorf("vault: fetching secret %q: %w", name, err)
	}
	if resp.IsError() {
		return "", &SecretError{Name: name, StatusCode: resp.StatusCode()}
	}

	return body.Value, nil
}

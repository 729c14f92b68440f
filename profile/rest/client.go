// Package rest implements profile.Service over the MediMind REST backend.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/harshvardhanchand/MediMind-sub001/profile"
)

const defaultRequestTimeout = 10 * time.Second

// TokenSource supplies the bearer token for the current session. It returns
// an error when no session is available.
type TokenSource func(ctx context.Context) (string, error)

// Client fetches profile fields from the backend's "current user" endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// Option modifies a Client during construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client for the backend at baseURL, authenticating each
// request with a token from the given source.
func NewClient(baseURL string, token TokenSource, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[rest.NewClient] baseURL is required")
	}
	if token == nil {
		return nil, errors.New("[rest.NewClient] token source is required")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		token:      token,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

var _ profile.Service = (*Client)(nil)

// CurrentProfile fetches the authenticated user's profile fields.
func (c *Client) CurrentProfile(ctx context.Context) (*profile.Fields, error) {
	bearer, err := c.token(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "[rest.CurrentProfile] token source")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/me", nil)
	if err != nil {
		return nil, errors.Wrap(err, "[rest.CurrentProfile] build request")
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[rest.CurrentProfile] round trip")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("[rest.CurrentProfile] status %d: %s", resp.StatusCode, string(body))
	}

	var fields profile.Fields
	if err := json.NewDecoder(resp.Body).Decode(&fields); err != nil {
		return nil, errors.Wrap(err, "[rest.CurrentProfile] decode response")
	}
	return &fields, nil
}

// Package gotrue implements identity.Provider against a GoTrue-style HTTP
// identity backend (the flavour exposed by Supabase and friends): JSON over
// HTTPS, an apikey header on every call, bearer auth on user-scoped calls.
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/harshvardhanchand/MediMind-sub001/identity"
)

const defaultRequestTimeout = 10 * time.Second

// Client talks to a GoTrue-style identity backend and caches the most
// recently issued session. It fans auth events out to subscribers in
// emission order.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	oauthCfg   *oauth2.Config
	verifier   tokenVerifier // nil unless an OIDC issuer is configured
	log        zerolog.Logger

	mu      sync.Mutex
	current *identity.Session
	subs    map[int]func(identity.Event)
	nextSub int
}

// Option modifies a Client during construction.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the client's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates a Client for the backend at baseURL. The anon key is the
// public API key sent with every request.
func NewClient(baseURL, anonKey string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[gotrue.NewClient] baseURL is required")
	}
	if anonKey == "" {
		return nil, errors.New("[gotrue.NewClient] anonKey is required")
	}

	c := &Client{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		log:        zerolog.Nop(),
		subs:       make(map[int]func(identity.Event)),
	}
	c.oauthCfg = &oauth2.Config{
		ClientID: anonKey,
		Endpoint: oauth2.Endpoint{
			TokenURL:  baseURL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

var _ identity.Provider = (*Client)(nil)

// tokenResponse is the wire shape of every GoTrue token grant.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// GetSession returns the cached session, or nil when signed out. No network
// round trip: the provider is the single writer of the cache, so the cache
// is as current as the last grant or sign-out.
func (c *Client) GetSession(_ context.Context) (*identity.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, nil
}

// SignInWithPassword performs the password grant and adopts the resulting
// session, emitting SignedIn on success.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var tr tokenResponse
	if err := c.post(ctx, "/token?grant_type=password", "", body, &tr); err != nil {
		return nil, errors.Wrap(err, "[gotrue.SignInWithPassword]")
	}
	return c.adoptTokens(ctx, tr.AccessToken, tr.RefreshToken)
}

// SetSession adopts a token pair delivered out of band (a recovery deep
// link). The access token is parsed locally and, when an OIDC issuer is
// configured, verified against the issuer's keys before adoption.
func (c *Client) SetSession(ctx context.Context, accessToken, refreshToken string) (*identity.Session, error) {
	if accessToken == "" || refreshToken == "" {
		return nil, identity.InvalidTokenPairErr
	}
	return c.adoptTokens(ctx, accessToken, refreshToken)
}

// ExchangeCodeForSession redeems a single-use PKCE authorization code at the
// token endpoint. The standard oauth2 library drives the exchange; GoTrue
// rejects a second redemption of the same code.
func (c *Client) ExchangeCodeForSession(ctx context.Context, code string) (*identity.Session, error) {
	if code == "" {
		return nil, identity.InvalidCodeErr
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	tok, err := c.oauthCfg.Exchange(ctx, code,
		oauth2.SetAuthURLParam("grant_type", "pkce"),
		oauth2.SetAuthURLParam("auth_code", code),
	)
	if err != nil {
		return nil, errors.Wrap(identity.InvalidCodeErr, err.Error())
	}
	return c.adoptTokens(ctx, tok.AccessToken, tok.RefreshToken)
}

// SignOut revokes the session on the provider side. The local cache is
// cleared and SignedOut is emitted even when the revocation round trip
// fails: a dead network must not trap the user in a signed-in shell.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.current
	c.current = nil
	c.mu.Unlock()

	c.emit(identity.NewEvent(identity.SignedOut, nil))

	if session == nil {
		return nil
	}
	if err := c.post(ctx, "/logout", session.AccessToken, nil, nil); err != nil {
		c.log.Warn().Err(err).Msg("gotrue: logout round trip failed, local session cleared anyway")
		return errors.Wrap(err, "[gotrue.SignOut]")
	}
	return nil
}

// UpdateUser applies account changes (password, email) to the currently
// authenticated user.
func (c *Client) UpdateUser(ctx context.Context, attrs identity.UserAttributes) error {
	c.mu.Lock()
	session := c.current
	c.mu.Unlock()
	if session == nil {
		return identity.NoSessionErr
	}
	if err := c.request(ctx, http.MethodPut, "/user", session.AccessToken, attrs, nil); err != nil {
		return errors.Wrap(err, "[gotrue.UpdateUser]")
	}
	return nil
}

// OnAuthStateChange registers a subscriber. Events are delivered in
// emission order; the returned function unsubscribes.
func (c *Client) OnAuthStateChange(fn func(identity.Event)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// adoptTokens turns a token pair into the current session and announces it.
func (c *Client) adoptTokens(ctx context.Context, accessToken, refreshToken string) (*identity.Session, error) {
	session, err := identity.SessionFromTokens(accessToken, refreshToken)
	if err != nil {
		return nil, err
	}
	if c.verifier != nil {
		if err := c.verifier.Verify(ctx, accessToken); err != nil {
			return nil, errors.Wrap(err, "[gotrue.adoptTokens] token verification")
		}
	}

	c.mu.Lock()
	c.current = session
	c.mu.Unlock()

	c.emit(identity.NewEvent(identity.SignedIn, session))
	return session, nil
}

func (c *Client) emit(ev identity.Event) {
	c.mu.Lock()
	fns := make([]func(identity.Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Client) post(ctx context.Context, path, bearer string, body, out any) error {
	return c.request(ctx, http.MethodPost, path, bearer, body, out)
}

func (c *Client) request(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "round trip")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return providerError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}

// providerError surfaces the backend's own error text when it sent any; the
// message ends up user-visible, so a generic fallback beats an empty string.
func providerError(resp *http.Response) error {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &payload)

	msg := payload.ErrorDescription
	if msg == "" {
		msg = payload.Msg
	}
	if msg == "" {
		msg = payload.Message
	}
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = fmt.Sprintf("identity provider returned status %d", resp.StatusCode)
	}
	return errors.New(msg)
}

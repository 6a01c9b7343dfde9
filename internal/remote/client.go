// Package remote wraps the practice-management REST API. Every non-success
// response, transport error or malformed envelope collapses into the single
// shared.ErrRemoteFailure signal; status codes are not interpreted further.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mediboard/mediboard/internal/activity"
	"github.com/mediboard/mediboard/internal/commissions"
	"github.com/mediboard/mediboard/internal/roles"
	"github.com/mediboard/mediboard/internal/shared"
	"github.com/mediboard/mediboard/internal/users"
)

// Credentials is the result of a successful login: the bearer token plus the
// profile blob, kept opaque for the session store.
type Credentials struct {
	Token   string          `json:"token"`
	Profile json.RawMessage `json:"profile"`
}

// Client issues bearer-authenticated JSON calls against the backend.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       *slog.Logger
	serviceToken string
	enrichLimit  int
}

// Option tweaks client construction.
type Option func(*Client)

// WithServiceToken installs a fallback token for callers without a session,
// such as the background worker.
func WithServiceToken(token string) Option {
	return func(c *Client) { c.serviceToken = token }
}

// WithEnrichLimit caps concurrent user-enrichment lookups.
func WithEnrichLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.enrichLimit = limit
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a new client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
		enrichLimit: defaultEnrichLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login authenticates by identifier and returns the opaque credentials.
func (c *Client) Login(ctx context.Context, identifier string) (*Credentials, error) {
	var creds Credentials
	payload := map[string]string{"identifier": identifier}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", payload, &creds, false); err != nil {
		return nil, err
	}
	if creds.Token == "" {
		return nil, fmt.Errorf("remote: login returned empty token: %w", shared.ErrRemoteFailure)
	}
	return &creds, nil
}

// Logout invalidates the bearer token upstream.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, true)
}

// ListUsers fetches all user accounts.
func (c *Client) ListUsers(ctx context.Context) ([]users.User, error) {
	var list []users.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &list, true); err != nil {
		return nil, err
	}
	return list, nil
}

// GetUser fetches one user by id.
func (c *Client) GetUser(ctx context.Context, id int64) (*users.User, error) {
	var user users.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, &user, true); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListRoles fetches all role definitions.
func (c *Client) ListRoles(ctx context.Context) ([]roles.Role, error) {
	var list []roles.Role
	if err := c.do(ctx, http.MethodGet, "/api/roles", nil, &list, true); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateRole registers a new role.
func (c *Client) CreateRole(ctx context.Context, name string) (*roles.Role, error) {
	var role roles.Role
	payload := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/api/roles", payload, &role, true); err != nil {
		return nil, err
	}
	return &role, nil
}

// DeleteRole removes a role by id.
func (c *Client) DeleteRole(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/roles/%d", id), nil, nil, true)
}

// ListActivity fetches the full activity record list.
func (c *Client) ListActivity(ctx context.Context) ([]activity.Record, error) {
	var list []activity.Record
	if err := c.do(ctx, http.MethodGet, "/api/activity", nil, &list, true); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteAllActivity removes every activity record. The backend exposes no
// partial-success semantics; this either fully succeeds or fails.
func (c *Client) DeleteAllActivity(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/activity", nil, nil, true)
}

// ListTransactions fetches all commission transactions.
func (c *Client) ListTransactions(ctx context.Context) ([]commissions.Transaction, error) {
	var list []commissions.Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transactions", nil, &list, true); err != nil {
		return nil, err
	}
	return list, nil
}

// envelope is the single response contract validated at the client boundary.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any, authed bool) error {
	token := c.token(ctx)
	if authed && token == "" {
		return shared.ErrNotAuthenticated
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("remote: encode %s %s: %w", method, path, shared.ErrRemoteFailure)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("remote: build %s %s: %w", method, path, shared.ErrRemoteFailure)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("remote call failed", slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return fmt.Errorf("remote: %s %s: %w", method, path, shared.ErrRemoteFailure)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("remote call rejected", slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode))
		return fmt.Errorf("remote: %s %s status %d: %w", method, path, resp.StatusCode, shared.ErrRemoteFailure)
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("remote: decode %s %s: %w", method, path, shared.ErrRemoteFailure)
	}
	if len(env.Data) == 0 {
		return fmt.Errorf("remote: missing data envelope %s %s: %w", method, path, shared.ErrRemoteFailure)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("remote: decode payload %s %s: %w", method, path, shared.ErrRemoteFailure)
	}
	return nil
}

// token resolves the bearer token: the session wins, the service token is
// the fallback for sessionless callers.
func (c *Client) token(ctx context.Context) string {
	if sess := shared.SessionFromContext(ctx); sess != nil && sess.Token() != "" {
		return sess.Token()
	}
	return c.serviceToken
}

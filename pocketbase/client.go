// Package pocketbase is a client for the PocketBase REST API scoped to a
// single collection: records, collection auth, accounts and admin login.
package pocketbase

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultPerPage = 20
)

// AuthObserver is notified after the admin password grant with the outcome
// and the full result.
type AuthObserver func(ok bool, result Result)

// Config holds everything needed to construct a Client. Loading it from the
// environment or a keyring profile is the job of the config package.
type Config struct {
	BaseURL    string
	Collection string
	Token      string

	// RequireToken makes an empty Token a configuration error.
	RequireToken bool

	// HTTPClient overrides the default client. Timeout is applied on top of it
	// unless zero.
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string

	Logger      *slog.Logger
	OnAdminAuth AuthObserver
}

// Client is the PocketBase API client for a single collection.
//
// The stored token is a plain field with no locking. A Client is not safe for
// concurrent token mutation; use one Client per logical caller when calling
// SetToken or Admins().AuthWithPassword from several goroutines.
type Client struct {
	BaseURL    string
	Collection string
	HTTP       *http.Client
	UserAgent  string

	token       string
	logger      *slog.Logger
	onAdminAuth AuthObserver
}

// Compile-time interface implementation checks
var (
	_ Requester    = (*Client)(nil)
	_ PathResolver = (*Client)(nil)
	_ HTTPExecutor = (*Client)(nil)
	_ TokenStore   = (*Client)(nil)
)

// New creates a client from cfg. A missing base URL or collection (or token,
// when RequireToken is set) yields a *ConfigurationError.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, &ConfigurationError{Field: "base_url", Reason: "base URL is required"}
	}
	if err := validateBaseURL(baseURL); err != nil {
		return nil, err
	}
	collection := strings.TrimSpace(cfg.Collection)
	if collection == "" {
		return nil, &ConfigurationError{Field: "collection", Reason: "collection is required"}
	}
	if cfg.RequireToken && strings.TrimSpace(cfg.Token) == "" {
		return nil, &ConfigurationError{Field: "token", Reason: "API token is required"}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newHTTPClient()
	}
	if cfg.Timeout > 0 {
		clone := *httpClient
		clone.Timeout = cfg.Timeout
		httpClient = &clone
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		BaseURL:     baseURL,
		Collection:  collection,
		HTTP:        httpClient,
		UserAgent:   cfg.UserAgent,
		token:       cfg.Token,
		logger:      logger,
		onAdminAuth: cfg.OnAdminAuth,
	}
	if c.onAdminAuth == nil {
		c.onAdminAuth = c.logAdminAuth
	}
	return c, nil
}

func newHTTPClient() *http.Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12

	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: transport,
	}
}

func validateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return &ConfigurationError{Field: "base_url", Reason: fmt.Sprintf("invalid base URL: %v", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConfigurationError{Field: "base_url", Reason: fmt.Sprintf("base URL must use http or https, got %q", baseURL)}
	}
	if u.Host == "" {
		return &ConfigurationError{Field: "base_url", Reason: fmt.Sprintf("base URL has no host: %q", baseURL)}
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return &ConfigurationError{Field: "base_url", Reason: "base URL must not contain a query or fragment"}
	}
	return nil
}

// SetToken replaces the bearer token used by every subsequent request.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token, or "" when unauthenticated.
func (c *Client) Token() string {
	return c.token
}

// ClearToken drops the bearer token.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// collectionURL returns the URL for a path under /api/collections/{collection}.
func (c *Client) collectionURL(path string, query Query) string {
	return BuildURL(c.BaseURL, c.Collection, path, query)
}

// rootURL returns the URL for a path under the base URL that is not scoped
// to a collection, e.g. "api/admins/auth-with-password".
func (c *Client) rootURL(path string) string {
	return c.BaseURL + "/" + strings.TrimLeft(path, "/")
}

// Do performs a request against a collection-relative path. It is the raw
// entry point used by the api command; resource helpers go through the
// services.
func (c *Client) Do(ctx context.Context, method, path string, body any, query Query) Result {
	return c.execute(ctx, strings.ToUpper(method), c.collectionURL(path, query), body)
}

// execute is the single I/O chokepoint. It never returns an error: local and
// transport failures become a 500 Result carrying an "error" field, and the
// latter are flagged so TransportFailure reports them.
func (c *Client) execute(ctx context.Context, method, rawURL string, body any) Result {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return failureResult(fmt.Sprintf("failed to marshal request body: %v", err))
		}
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
	if err != nil {
		return failureResult(fmt.Sprintf("failed to create request: %v", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if payload != nil {
		req.ContentLength = int64(len(payload))
		req.Header.Set("Content-Length", strconv.Itoa(len(payload)))
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if c.logger.Enabled(ctx, slog.LevelDebug) {
			c.logger.DebugContext(ctx, "request failed", "method", method, "url", rawURL, "error", err)
		}
		return transportFailure(fmt.Sprintf("request failed: %v", err))
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return transportFailure(fmt.Sprintf("failed to read response: %v", err))
	}
	if c.logger.Enabled(ctx, slog.LevelDebug) {
		c.logger.DebugContext(ctx, "request complete", "method", method, "url", rawURL, "status", resp.StatusCode, "duration", time.Since(start))
	}

	return newResult(resp.StatusCode, respBody)
}

// Records returns the record CRUD operations for the configured collection.
func (c *Client) Records() RecordsService {
	return RecordsService{r: c}
}

// Auth returns the collection-scoped authentication operations.
func (c *Client) Auth() AuthService {
	return AuthService{r: c}
}

// Accounts returns the user-account helpers built on the record operations.
func (c *Client) Accounts() AccountsService {
	return AccountsService{r: c}
}

// Admins returns the admin (non-collection) authentication operations.
func (c *Client) Admins() AdminsService {
	return AdminsService{r: c, observe: c.onAdminAuth}
}

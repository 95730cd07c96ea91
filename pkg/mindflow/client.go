package mindflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Client is a configured MindFlow API client. It is safe for concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
	tokens     TokenStore
	logger     hclog.Logger

	Auth         *AuthService
	Entities     *Entities
	Integrations *Integrations
	Functions    *Functions
}

// Request describes one call to the backend.
type Request struct {
	// Method defaults to GET.
	Method string

	// Path is appended to the base URL and may carry a query string.
	Path string

	// Body is JSON-encoded when non-nil.
	Body interface{}

	// Header is applied after Content-Type and before Authorization.
	Header http.Header

	// RequiresAuth fails the call before any network activity when no
	// token is stored.
	RequiresAuth bool
}

// NewClient creates a new MindFlow client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	// Apply defaults
	if cfg.RequiresAuth == nil {
		requiresAuth := true
		cfg.RequiresAuth = &requiresAuth
	}
	if cfg.TLSVerify == nil {
		cfg.TLSVerify = DefaultConfig().TLSVerify
	}
	if cfg.TokenStore == nil {
		cfg.TokenStore = NewMemoryTokenStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mindflow client config: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = cfg.NewHTTPClient()
	}

	c := &Client{
		config:     cfg,
		httpClient: httpClient,
		tokens:     cfg.TokenStore,
		logger:     cfg.Logger.Named("mindflow-client"),
	}
	c.Auth = &AuthService{client: c}
	c.Entities = newEntities(c)
	c.Integrations = &Integrations{Core: &CoreIntegrations{client: c}}
	c.Functions = &Functions{client: c}

	return c, nil
}

// BoardID returns the configured tenant id.
func (c *Client) BoardID() string {
	return c.config.BoardID
}

// RequiresAuth reports whether entity, integration, function and raw calls
// need a stored token.
func (c *Client) RequiresAuth() bool {
	return c.config.requiresAuth()
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Do executes req and decodes the JSON response into out. A 204 response
// leaves out untouched. out may be nil.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	data, err := c.DoRaw(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || data == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// DoRaw executes req and returns the response body. The result is nil for a
// 204 response and "{}" for an empty body.
func (c *Client) DoRaw(ctx context.Context, req Request) (json.RawMessage, error) {
	token, err := c.tokens.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read auth token: %w", err)
	}
	if req.RequiresAuth && token == "" {
		return nil, ErrAuthenticationRequired
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.endpoint(req.Path), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for key, values := range req.Header {
		httpReq.Header.Del(key)
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.logger.Debug("request completed",
		"method", method,
		"path", req.Path,
		"status", resp.StatusCode,
	)

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	data := json.RawMessage("{}")
	if len(respBody) > 0 {
		if !json.Valid(respBody) {
			return nil, fmt.Errorf("failed to decode response (status %d): invalid JSON", resp.StatusCode)
		}
		data = json.RawMessage(respBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp, data)
	}

	return data, nil
}

// Get issues a GET to path.
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, Request{
		Path:         path,
		RequiresAuth: c.RequiresAuth(),
	}, out)
}

// Post issues a POST to path with body scoped to the board.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.send(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT to path with body scoped to the board.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.send(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE to path.
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, Request{
		Method:       http.MethodDelete,
		Path:         path,
		RequiresAuth: c.RequiresAuth(),
	}, out)
}

// send tags body with the board id and issues the request.
func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	scoped, err := c.withBoardID(body)
	if err != nil {
		return err
	}
	return c.Do(ctx, Request{
		Method:       method,
		Path:         path,
		Body:         scoped,
		RequiresAuth: c.RequiresAuth(),
	}, out)
}

func (c *Client) endpoint(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(c.config.BaseURL, "/") + path
}

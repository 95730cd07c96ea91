package mindflow

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
)

// ProductionURL is the origin of the hosted MindFlow backend.
const ProductionURL = "https://mindflowbackend2--main.angelodamora.deno.net"

// Config contains configuration for the MindFlow client.
//
// Example configuration (HCL):
//
//	mindflow {
//	  base_url      = "https://mindflowbackend2--main.angelodamora.deno.net"
//	  board_id      = "68f8ea6151e7f9d5ce21bc30"
//	  requires_auth = true
//	}
type Config struct {
	// BaseURL is the backend origin (or origin plus path prefix, e.g.
	// "http://localhost:5173/api"). It is resolved by the host application.
	BaseURL string `hcl:"base_url" json:"baseUrl"`

	// BoardID scopes every entity operation to one tenant. Empty means
	// single-tenant mode and no payload tagging.
	BoardID string `hcl:"board_id,optional" json:"boardId,omitempty"`

	// RequiresAuth makes entity, integration, function and raw calls fail
	// fast when no token is stored.
	// Default: true
	RequiresAuth *bool `hcl:"requires_auth,optional" json:"requiresAuth,omitempty"`

	// TLSVerify controls TLS certificate verification.
	// Set to false only for development with self-signed certs.
	TLSVerify *bool `hcl:"tls_verify,optional" json:"tlsVerify,omitempty"`

	// Timeout for a whole request. Zero means no client-side timeout.
	Timeout time.Duration `json:"timeout,omitempty"`

	// TokenStore holds the bearer token between calls.
	// Default: an in-memory store.
	TokenStore TokenStore `json:"-"`

	// HTTPClient overrides the client built by NewHTTPClient.
	HTTPClient *http.Client `json:"-"`

	// Logger receives request debug logs and tenant override warnings.
	Logger hclog.Logger `json:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	requiresAuth := true
	tlsVerify := true
	return &Config{
		BaseURL:      ProductionURL,
		RequiresAuth: &requiresAuth,
		TLSVerify:    &tlsVerify,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

func httpURL(value interface{}) error {
	s, _ := value.(string)
	parsedURL, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme, got: %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("must include a host")
	}
	return nil
}

// requiresAuth reports the effective auth requirement.
func (c *Config) requiresAuth() bool {
	return c.RequiresAuth == nil || *c.RequiresAuth
}

// NewHTTPClient creates a configured HTTP client for the MindFlow backend.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if c.TLSVerify != nil && !*c.TLSVerify {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &http.Client{
		Timeout:   c.Timeout,
		Transport: transport,
	}
}

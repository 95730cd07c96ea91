// Package config loads the mindflow CLI configuration.
//
// Values are layered: built-in defaults, then an optional HCL file, then a
// .env file, then process environment variables. The backend base URL is
// resolved once from the result.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/angelcoaching/mindflow/pkg/mindflow"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"

	// DefaultBoardID is the Angel Coaching tenant.
	DefaultBoardID = "68f8ea6151e7f9d5ce21bc30"

	// DefaultDevOrigin is the local frontend dev server.
	DefaultDevOrigin = "http://localhost:5173"
)

// Environment variable names.
const (
	EnvMode      = "MINDFLOW_MODE"
	EnvBaseURL   = "MINDFLOW_BASE_URL"
	EnvAPIURL    = "MINDFLOW_API_URL"
	EnvDevOrigin = "MINDFLOW_DEV_ORIGIN"
	EnvBoardID   = "MINDFLOW_BOARD_ID"
	EnvTokenDir  = "MINDFLOW_TOKEN_DIR"
	EnvLogLevel  = "MINDFLOW_LOG_LEVEL"
	EnvTimeout   = "MINDFLOW_TIMEOUT"
	EnvTLSVerify = "MINDFLOW_TLS_VERIFY"
)

// Config contains the CLI configuration.
//
// Example configuration file:
//
//	mode       = "development"
//	api_url    = "http://localhost:8080"
//	board_id   = "68f8ea6151e7f9d5ce21bc30"
//	token_dir  = "/home/coach/.config/mindflow"
//	log_level  = "debug"
//	timeout    = "30s"
type Config struct {
	// Mode is "development" or "production".
	Mode string `hcl:"mode,optional"`

	// BaseURL, when set, is used as is regardless of Mode.
	BaseURL string `hcl:"base_url,optional"`

	// APIURL overrides the development base URL.
	APIURL string `hcl:"api_url,optional"`

	// DevOrigin is the origin the development base URL is derived from.
	DevOrigin string `hcl:"dev_origin,optional"`

	// BoardID is the tenant id. An empty value disables tenant tagging.
	BoardID *string `hcl:"board_id,optional"`

	// TokenDir holds the persisted auth token.
	TokenDir string `hcl:"token_dir,optional"`

	LogLevel string `hcl:"log_level,optional"`

	// Timeout is a Go duration string.
	Timeout string `hcl:"timeout,optional"`

	TLSVerify *bool `hcl:"tls_verify,optional"`
}

// Default returns the built-in configuration.
func Default() *Config {
	boardID := DefaultBoardID
	return &Config{
		Mode:      ModeProduction,
		DevOrigin: DefaultDevOrigin,
		BoardID:   &boardID,
		TokenDir:  defaultTokenDir(),
		LogLevel:  "info",
		Timeout:   "30s",
	}
}

func defaultTokenDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".mindflow"
	}
	return filepath.Join(dir, "mindflow")
}

// Load builds the configuration from the optional HCL file at path, the .env
// file in the working directory and the process environment.
func Load(path string) (*Config, error) {
	return load(path, ".env", os.LookupEnv)
}

func load(path, envFile string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		var fileCfg Config
		if err := hclsimple.DecodeFile(path, nil, &fileCfg); err != nil {
			return nil, fmt.Errorf("error decoding config file %q: %w", path, err)
		}
		cfg.merge(&fileCfg)
	}

	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading %s: %w", envFile, err)
	}

	// The process environment takes precedence over .env.
	lookup := func(key string) (string, bool) {
		if v, ok := lookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) merge(o *Config) {
	if o.Mode != "" {
		c.Mode = o.Mode
	}
	if o.BaseURL != "" {
		c.BaseURL = o.BaseURL
	}
	if o.APIURL != "" {
		c.APIURL = o.APIURL
	}
	if o.DevOrigin != "" {
		c.DevOrigin = o.DevOrigin
	}
	if o.BoardID != nil {
		c.BoardID = o.BoardID
	}
	if o.TokenDir != "" {
		c.TokenDir = o.TokenDir
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.Timeout != "" {
		c.Timeout = o.Timeout
	}
	if o.TLSVerify != nil {
		c.TLSVerify = o.TLSVerify
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvMode:      &c.Mode,
		EnvBaseURL:   &c.BaseURL,
		EnvAPIURL:    &c.APIURL,
		EnvDevOrigin: &c.DevOrigin,
		EnvTokenDir:  &c.TokenDir,
		EnvLogLevel:  &c.LogLevel,
		EnvTimeout:   &c.Timeout,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	// An explicitly empty board id selects single-tenant mode.
	if v, ok := lookup(EnvBoardID); ok {
		boardID := v
		c.BoardID = &boardID
	}

	if v, ok := lookup(EnvTLSVerify); ok && v != "" {
		verify, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", EnvTLSVerify, err)
		}
		c.TLSVerify = &verify
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required,
			validation.In(ModeDevelopment, ModeProduction)),
		validation.Field(&c.BaseURL, validation.By(optionalURL)),
		validation.Field(&c.APIURL, validation.By(optionalURL)),
		validation.Field(&c.DevOrigin, validation.By(optionalURL)),
		validation.Field(&c.TokenDir, validation.Required),
		validation.Field(&c.LogLevel, validation.By(logLevel)),
		validation.Field(&c.Timeout, validation.By(duration)),
	)
}

func optionalURL(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https scheme")
	}
	return nil
}

func logLevel(value interface{}) error {
	s, _ := value.(string)
	if hclog.LevelFromString(s) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", s)
	}
	return nil
}

func duration(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// ResolveBaseURL returns the backend base URL. An explicit BaseURL wins. In
// development the API URL override is used, else the dev origin's /api
// prefix. Production always targets mindflow.ProductionURL.
func (c *Config) ResolveBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Mode == ModeDevelopment {
		if c.APIURL != "" {
			return c.APIURL
		}
		return strings.TrimSuffix(c.DevOrigin, "/") + "/api"
	}
	return mindflow.ProductionURL
}

// Board returns the effective tenant id.
func (c *Config) Board() string {
	if c.BoardID == nil {
		return ""
	}
	return *c.BoardID
}

// Level returns the hclog level for LogLevel.
func (c *Config) Level() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}

// ClientConfig builds the SDK configuration. The token is persisted under
// TokenDir on fs.
func (c *Config) ClientConfig(fs afero.Fs, logger hclog.Logger) (*mindflow.Config, error) {
	cfg := mindflow.DefaultConfig()
	cfg.BaseURL = c.ResolveBaseURL()
	cfg.BoardID = c.Board()
	cfg.TokenStore = mindflow.NewFileTokenStore(fs, c.TokenDir)
	cfg.Logger = logger
	if c.TLSVerify != nil {
		cfg.TLSVerify = c.TLSVerify
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return nil, fmt.Errorf("error parsing timeout: %w", err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

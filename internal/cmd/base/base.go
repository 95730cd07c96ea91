// Package base holds the plumbing shared by mindflow CLI commands.
package base

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/iancoleman/strcase"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/angelcoaching/mindflow/internal/config"
	"github.com/angelcoaching/mindflow/pkg/mindflow"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Command is embedded by every CLI command.
type Command struct {
	Log hclog.Logger
	UI  cli.Ui

	// Fs holds the persisted auth token.
	Fs afero.Fs

	// LoadConfig reads the CLI configuration from an optional file path.
	LoadConfig func(path string) (*config.Config, error)

	flagConfig string
	flagFormat string
}

// NewCommand returns a Command using the OS filesystem and config.Load.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{
		Log:        log,
		UI:         ui,
		Fs:         afero.NewOsFs(),
		LoadConfig: config.Load,
	}
}

// CommonFlags returns a flag set carrying the -config and -format flags.
func (c *Command) CommonFlags(name string) *FlagSet {
	f := NewFlagSet(flag.NewFlagSet(name, flag.ContinueOnError))
	f.StringVar(&c.flagConfig, "config", "",
		"Path to an HCL config file. Environment variables override it.")
	f.StringVar(&c.flagFormat, "format", FormatJSON,
		`Output format, "json" or "yaml".`)
	return f
}

// Config loads the CLI configuration and applies its log level.
func (c *Command) Config() (*config.Config, error) {
	cfg, err := c.LoadConfig(c.flagConfig)
	if err != nil {
		return nil, err
	}
	c.Log.SetLevel(cfg.Level())
	return cfg, nil
}

// Client builds a MindFlow client from the CLI configuration.
func (c *Command) Client() (*mindflow.Client, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}

	clientCfg, err := cfg.ClientConfig(c.Fs, c.Log)
	if err != nil {
		return nil, err
	}
	c.Log.Debug("using backend",
		"base_url", clientCfg.BaseURL,
		"board_id", clientCfg.BoardID,
	)
	return mindflow.NewClient(clientCfg)
}

// Context returns a context cancelled on interrupt.
func (c *Command) Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// Output writes v in the selected format. Values are round-tripped through
// JSON so raw messages and json tags are honored in YAML too.
func (c *Command) Output(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding output: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("error encoding output: %w", err)
	}

	var out []byte
	switch c.flagFormat {
	case FormatJSON, "":
		out, err = json.MarshalIndent(generic, "", "  ")
	case FormatYAML:
		out, err = yaml.Marshal(generic)
	default:
		return fmt.Errorf("unknown output format %q", c.flagFormat)
	}
	if err != nil {
		return fmt.Errorf("error encoding %s output: %w", c.flagFormat, err)
	}

	c.UI.Output(strings.TrimSuffix(string(out), "\n"))
	return nil
}

// ReadJSON returns the JSON document given inline, or read from a file when
// arg starts with "@".
func (c *Command) ReadJSON(arg string) (json.RawMessage, error) {
	data := []byte(arg)
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		var err error
		data, err = afero.ReadFile(c.Fs, path)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", path, err)
		}
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON data")
	}
	return json.RawMessage(data), nil
}

// ResolveEntity maps a user-supplied name to a catalog entity. Entity names,
// aliases, slugs and kebab or snake case spellings are accepted.
func ResolveEntity(s string) (mindflow.EntityName, bool) {
	if name, ok := mindflow.ParseEntityName(s); ok {
		return name, true
	}
	for _, name := range mindflow.EntityNames() {
		if name.Slug() == s {
			return name, true
		}
	}
	return mindflow.ParseEntityName(strcase.ToCamel(s))
}

// Fail reports err and returns the exit code for a failed command.
func (c *Command) Fail(prefix string, err error) int {
	c.UI.Error(fmt.Sprintf("%s: %v", prefix, err))
	return 1
}

package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelcoaching/mindflow/internal/cmd/base"
	"github.com/angelcoaching/mindflow/pkg/mindflow"
)

type LoginCommand struct {
	*base.Command

	flagEmail    string
	flagPassword string
}

func (c *LoginCommand) Synopsis() string {
	return "Log in and store the auth token"
}

func (c *LoginCommand) Help() string {
	return `Usage: mindflow login -email=<email> [-password=<password>]

  Logs in to the MindFlow backend and stores the returned token for later
  commands. The password is prompted for when not given.` +
		c.Flags().Help()
}

func (c *LoginCommand) Flags() *base.FlagSet {
	f := c.CommonFlags("login")

	f.StringVar(&c.flagEmail, "email", "", "(Required) Account email.")
	f.StringVar(&c.flagPassword, "password", "", "Account password.")

	return f
}

func (c *LoginCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}
	if c.flagEmail == "" {
		c.UI.Error("email flag is required")
		return 1
	}

	password := c.flagPassword
	if password == "" {
		var err error
		password, err = c.UI.AskSecret("Password:")
		if err != nil {
			return c.Fail("error reading password", err)
		}
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	resp, err := client.Auth.Login(ctx, c.flagEmail, password)
	if err != nil {
		return c.Fail("error logging in", err)
	}
	if !client.Auth.IsAuthenticated() {
		c.UI.Warn("Login succeeded but the backend returned no token")
		return 1
	}

	c.UI.Info(fmt.Sprintf("Logged in as %s", c.flagEmail))
	if user, ok := resp["user"]; ok {
		if err := c.Output(user); err != nil {
			return c.Fail("error writing output", err)
		}
	}
	return 0
}

type LogoutCommand struct {
	*base.Command
}

func (c *LogoutCommand) Synopsis() string {
	return "Remove the stored auth token"
}

func (c *LogoutCommand) Help() string {
	return `Usage: mindflow logout

  Removes the stored auth token. No request is sent to the backend.` +
		c.Flags().Help()
}

func (c *LogoutCommand) Flags() *base.FlagSet {
	return c.CommonFlags("logout")
}

func (c *LogoutCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	result, err := client.Auth.Logout(ctx)
	if err != nil {
		return c.Fail("error logging out", err)
	}
	c.UI.Info(result.Message)
	return 0
}

type RegisterCommand struct {
	*base.Command

	flagEmail    string
	flagPassword string
	flagFullName string
	flagPlanID   string
}

func (c *RegisterCommand) Synopsis() string {
	return "Create a new account"
}

func (c *RegisterCommand) Help() string {
	return `Usage: mindflow register -email=<email> -full-name=<name> [options]

  Registers a new account. Registering does not log in.` +
		c.Flags().Help()
}

func (c *RegisterCommand) Flags() *base.FlagSet {
	f := c.CommonFlags("register")

	f.StringVar(&c.flagEmail, "email", "", "(Required) Account email.")
	f.StringVar(&c.flagPassword, "password", "",
		"Account password. Prompted for when omitted.")
	f.StringVar(&c.flagFullName, "full-name", "", "Display name.")
	f.StringVar(&c.flagPlanID, "plan-id", "", "Subscription plan id.")

	return f
}

func (c *RegisterCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}
	if c.flagEmail == "" {
		c.UI.Error("email flag is required")
		return 1
	}

	password := c.flagPassword
	if password == "" {
		var err error
		password, err = c.UI.AskSecret("Password:")
		if err != nil {
			return c.Fail("error reading password", err)
		}
	}

	req := mindflow.RegisterRequest{
		Email:    c.flagEmail,
		Password: password,
		FullName: c.flagFullName,
	}
	if c.flagPlanID != "" {
		req.PlanID = c.flagPlanID
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	user, err := client.Auth.Register(ctx, req)
	if err != nil {
		return c.Fail("error registering", err)
	}
	if err := c.Output(user); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}

type WhoamiCommand struct {
	*base.Command
}

func (c *WhoamiCommand) Synopsis() string {
	return "Show the logged-in account"
}

func (c *WhoamiCommand) Help() string {
	return `Usage: mindflow whoami

  Fetches the current account from the backend.` +
		c.Flags().Help()
}

func (c *WhoamiCommand) Flags() *base.FlagSet {
	return c.CommonFlags("whoami")
}

func (c *WhoamiCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	user, err := client.Auth.Me(ctx)
	if err != nil {
		if mindflow.IsUnauthorized(err) {
			c.UI.Error("Session expired, run mindflow login")
			return 1
		}
		return c.Fail("error fetching account", err)
	}
	if err := c.Output(user); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}

type StatusCommand struct {
	*base.Command
}

func (c *StatusCommand) Synopsis() string {
	return "Show the local session state"
}

func (c *StatusCommand) Help() string {
	return `Usage: mindflow status

  Shows the configured backend and whether a token is stored. When the token
  is a JWT its claims are decoded without verification. No request is sent.` +
		c.Flags().Help()
}

func (c *StatusCommand) Flags() *base.FlagSet {
	return c.CommonFlags("status")
}

func (c *StatusCommand) Run(args []string) int {
	if err := c.Flags().Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}

	cfg, err := c.Config()
	if err != nil {
		return c.Fail("error loading config", err)
	}
	clientCfg, err := cfg.ClientConfig(c.Fs, c.Log)
	if err != nil {
		return c.Fail("error loading config", err)
	}
	token, err := clientCfg.TokenStore.Get()
	if err != nil {
		return c.Fail("error reading token", err)
	}

	status := map[string]interface{}{
		"mode":          cfg.Mode,
		"base_url":      clientCfg.BaseURL,
		"board_id":      clientCfg.BoardID,
		"authenticated": token != "",
	}
	if token != "" {
		for k, v := range tokenInfo(token, time.Now()) {
			status[k] = v
		}
	}

	if err := c.Output(status); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}

// tokenInfo describes token. Opaque tokens yield only their type.
func tokenInfo(token string, now time.Time) map[string]interface{} {
	if strings.Count(token, ".") != 2 {
		return map[string]interface{}{"token_type": "opaque"}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return map[string]interface{}{"token_type": "opaque"}
	}

	info := map[string]interface{}{
		"token_type": "jwt",
		"claims":     claims,
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info["expires_at"] = exp.UTC().Format(time.RFC3339)
		info["expired"] = now.After(exp.Time)
	}
	return info
}

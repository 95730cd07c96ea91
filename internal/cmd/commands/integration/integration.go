package integration

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/angelcoaching/mindflow/internal/cmd/base"
	"github.com/angelcoaching/mindflow/pkg/mindflow"
)

type InvokeCommand struct {
	*base.Command
}

func (c *InvokeCommand) Synopsis() string {
	return "Invoke a backend function"
}

func (c *InvokeCommand) Help() string {
	return `Usage: mindflow invoke [options] <function> [json|@file]

  Invokes a named backend function with optional JSON parameters.` +
		c.Flags().Help()
}

func (c *InvokeCommand) Flags() *base.FlagSet {
	return c.CommonFlags("invoke")
}

func (c *InvokeCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}
	if f.NArg() < 1 || f.NArg() > 2 {
		c.UI.Error("expected a function name and optional parameters")
		return 1
	}

	var params interface{}
	if f.NArg() == 2 {
		raw, err := c.ReadJSON(f.Arg(1))
		if err != nil {
			return c.Fail("error parsing parameters", err)
		}
		params = raw
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	result, err := client.Functions.Invoke(ctx, f.Arg(0), params)
	if err != nil {
		return c.Fail(fmt.Sprintf("error invoking %s", f.Arg(0)), err)
	}
	if err := c.Output(result); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}

type LLMCommand struct {
	*base.Command

	flagSchema   string
	flagInternet bool
	flagFileURLs string
}

func (c *LLMCommand) Synopsis() string {
	return "Run a prompt through the LLM integration"
}

func (c *LLMCommand) Help() string {
	return `Usage: mindflow llm [options] <prompt>...

  Sends the prompt to the backend LLM integration. With -schema the result
  is a JSON object shaped by the schema.` +
		c.Flags().Help()
}

func (c *LLMCommand) Flags() *base.FlagSet {
	f := c.CommonFlags("llm")

	f.StringVar(&c.flagSchema, "schema", "", "JSON schema for the response, inline or @file.")
	f.BoolVar(&c.flagInternet, "internet", false, "Add context from the internet.")
	f.StringVar(&c.flagFileURLs, "file-urls", "", "Comma-separated URLs of uploaded files to include.")

	return f
}

func (c *LLMCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}
	prompt := strings.TrimSpace(strings.Join(f.Args(), " "))
	if prompt == "" {
		c.UI.Error("a prompt is required")
		return 1
	}

	req := mindflow.InvokeLLMRequest{
		Prompt:                 prompt,
		AddContextFromInternet: c.flagInternet,
	}
	if c.flagSchema != "" {
		schema, err := c.ReadJSON(c.flagSchema)
		if err != nil {
			return c.Fail("error parsing schema", err)
		}
		req.ResponseJSONSchema = schema
	}
	for _, u := range strings.Split(c.flagFileURLs, ",") {
		if u = strings.TrimSpace(u); u != "" {
			req.FileURLs = append(req.FileURLs, u)
		}
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	result, err := client.Integrations.Core.InvokeLLM(ctx, req)
	if err != nil {
		return c.Fail("error invoking llm", err)
	}

	// Plain text answers are printed as is.
	var text string
	if err := json.Unmarshal(result, &text); err == nil {
		c.UI.Output(text)
		return 0
	}
	if err := c.Output(result); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}

type UploadCommand struct {
	*base.Command

	flagPrivate bool
}

func (c *UploadCommand) Synopsis() string {
	return "Upload a file"
}

func (c *UploadCommand) Help() string {
	return `Usage: mindflow upload [options] <path>

  Uploads a local file and prints the stored file's URL and id. Private
  files are only reachable through signed URLs.` +
		c.Flags().Help()
}

func (c *UploadCommand) Flags() *base.FlagSet {
	f := c.CommonFlags("upload")

	f.BoolVar(&c.flagPrivate, "private", false, "Upload as a private file.")

	return f
}

func (c *UploadCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}
	if f.NArg() != 1 {
		c.UI.Error("expected exactly one file path")
		return 1
	}

	path := f.Arg(0)
	file, err := c.Fs.Open(path)
	if err != nil {
		return c.Fail("error opening file", err)
	}
	defer file.Close()

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	upload := client.Integrations.Core.UploadFile
	if c.flagPrivate {
		upload = client.Integrations.Core.UploadPrivateFile
	}
	result, err := upload(ctx, mindflow.File{Name: filepath.Base(path), Reader: file})
	if err != nil {
		return c.Fail("error uploading file", err)
	}
	if err := c.Output(result); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}

type EmailCommand struct {
	*base.Command

	flagTo       string
	flagSubject  string
	flagFromName string
}

func (c *EmailCommand) Synopsis() string {
	return "Send an email through the backend"
}

func (c *EmailCommand) Help() string {
	return `Usage: mindflow email -to=<address> -subject=<subject> [options] <body>...` +
		c.Flags().Help()
}

func (c *EmailCommand) Flags() *base.FlagSet {
	f := c.CommonFlags("email")

	f.StringVar(&c.flagTo, "to", "", "(Required) Recipient address.")
	f.StringVar(&c.flagSubject, "subject", "", "(Required) Subject line.")
	f.StringVar(&c.flagFromName, "from-name", "", "Sender display name.")

	return f
}

func (c *EmailCommand) Run(args []string) int {
	f := c.Flags()
	if err := f.Parse(args); err != nil {
		return c.Fail("error parsing flags", err)
	}
	if c.flagTo == "" || c.flagSubject == "" {
		c.UI.Error("to and subject flags are required")
		return 1
	}

	client, err := c.Client()
	if err != nil {
		return c.Fail("error creating client", err)
	}
	ctx, cancel := c.Context()
	defer cancel()

	result, err := client.Integrations.Core.SendEmail(ctx, mindflow.SendEmailRequest{
		To:       c.flagTo,
		Subject:  c.flagSubject,
		Body:     strings.Join(f.Args(), " "),
		FromName: c.flagFromName,
	})
	if err != nil {
		return c.Fail("error sending email", err)
	}
	if err := c.Output(result); err != nil {
		return c.Fail("error writing output", err)
	}
	return 0
}

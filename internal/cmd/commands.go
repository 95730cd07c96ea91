package cmd

import (
	"github.com/mitchellh/cli"

	"github.com/angelcoaching/mindflow/internal/cmd/base"
	"github.com/angelcoaching/mindflow/internal/cmd/commands/auth"
	"github.com/angelcoaching/mindflow/internal/cmd/commands/entity"
	"github.com/angelcoaching/mindflow/internal/cmd/commands/integration"
	"github.com/angelcoaching/mindflow/internal/cmd/commands/version"
)

// Commands is the mapping of all available mindflow commands.
var Commands map[string]cli.CommandFactory

func initCommands(b *base.Command) {
	Commands = map[string]cli.CommandFactory{
		"login": func() (cli.Command, error) {
			return &auth.LoginCommand{Command: b}, nil
		},
		"logout": func() (cli.Command, error) {
			return &auth.LogoutCommand{Command: b}, nil
		},
		"register": func() (cli.Command, error) {
			return &auth.RegisterCommand{Command: b}, nil
		},
		"whoami": func() (cli.Command, error) {
			return &auth.WhoamiCommand{Command: b}, nil
		},
		"status": func() (cli.Command, error) {
			return &auth.StatusCommand{Command: b}, nil
		},
		"entities": func() (cli.Command, error) {
			return &entity.EntitiesCommand{Command: b}, nil
		},
		"list": func() (cli.Command, error) {
			return &entity.ListCommand{Command: b}, nil
		},
		"get": func() (cli.Command, error) {
			return &entity.GetCommand{Command: b}, nil
		},
		"create": func() (cli.Command, error) {
			return &entity.CreateCommand{Command: b}, nil
		},
		"update": func() (cli.Command, error) {
			return &entity.UpdateCommand{Command: b}, nil
		},
		"delete": func() (cli.Command, error) {
			return &entity.DeleteCommand{Command: b}, nil
		},
		"bulk-create": func() (cli.Command, error) {
			return &entity.BulkCreateCommand{Command: b}, nil
		},
		"invoke": func() (cli.Command, error) {
			return &integration.InvokeCommand{Command: b}, nil
		},
		"llm": func() (cli.Command, error) {
			return &integration.LLMCommand{Command: b}, nil
		},
		"upload": func() (cli.Command, error) {
			return &integration.UploadCommand{Command: b}, nil
		},
		"email": func() (cli.Command, error) {
			return &integration.EmailCommand{Command: b}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{Command: b}, nil
		},
	}
}

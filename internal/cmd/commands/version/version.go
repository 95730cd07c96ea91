package version

import (
	"github.com/angelcoaching/mindflow/internal/cmd/base"
	"github.com/angelcoaching/mindflow/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return `Usage: mindflow version`
}

func (c *Command) Run(args []string) int {
	c.UI.Output("mindflow " + version.Full())
	return 0
}

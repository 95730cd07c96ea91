package main

import (
	"os"

	"github.com/angelcoaching/mindflow/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}

package command

import (
	"fmt"

	cli "github.com/urfave/cli/v2"
)

// Version is overridden at release time via -ldflags.
var Version = "0.1.0-dev"

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "prints mcfls tool version",
	Action: func(c *cli.Context) error {
		fmt.Println(Version)
		return nil
	},
}

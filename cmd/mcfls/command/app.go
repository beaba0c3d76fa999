package command

import (
	"context"
	"os"

	"github.com/logrusorgru/aurora"
	isatty "github.com/mattn/go-isatty"
	cli "github.com/urfave/cli/v2"

	"github.com/openmcf/mcfls/config"
	"github.com/openmcf/mcfls/diagnostic"
)

func App() *cli.App {
	app := cli.NewApp()
	app.Name = "mcfls"
	app.Usage = "indexes mcfunction workspaces"
	app.Description = "command-script workspace indexer and language server"
	app.Commands = []*cli.Command{
		langserverCommand,
		scanCommand,
		refsCommand,
		consoleCommand,
		versionCommand,
	}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "settings file",
			Value:   "mcfls.toml",
		},
	}
	return app
}

func Context() context.Context {
	ctx := context.Background()
	if isatty.IsTerminal(os.Stderr.Fd()) {
		ctx = diagnostic.WithColor(ctx, aurora.NewAurora(true))
	}
	return ctx
}

func loadSettings(c *cli.Context) (config.Settings, error) {
	return config.Load(c.String("config"))
}

package command

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v2"

	"github.com/openmcf/mcfls/langserver"
)

var langserverCommand = &cli.Command{
	Name:  "langserver",
	Usage: "run mcfunction language server over stdio",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "logfile",
			Usage: "file to log output",
			Value: "/tmp/mcfls-langserver.log",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "log at debug level",
		},
	},
	Action: func(c *cli.Context) error {
		// Stdout carries the protocol, so logs go to a file.
		f, err := os.Create(c.String("logfile"))
		if err != nil {
			return err
		}
		defer f.Close()

		level := zerolog.InfoLevel
		if c.Bool("debug") {
			level = zerolog.DebugLevel
		}
		log := zerolog.New(f).Level(level).With().Timestamp().Logger()

		settings, err := loadSettings(c)
		if err != nil {
			log.Warn().Err(err).Msg("settings failed to load, using defaults")
		}

		s := langserver.NewServer(settings, log)
		return s.Listen(context.Background(), os.Stdin, os.Stdout)
	},
}

package command

import (
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v2"

	"github.com/openmcf/mcfls/diagnostic"
	"github.com/openmcf/mcfls/index"
	"github.com/openmcf/mcfls/resource"
	"github.com/openmcf/mcfls/workspace"
)

var refsCommand = &cli.Command{
	Name:      "refs",
	Usage:     "list the call sites of a function",
	ArgsUsage: "<namespace:path>",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "workspace root to index",
			Value:   cli.NewStringSlice("."),
		},
		&cli.BoolFlag{
			Name:  "tree",
			Usage: "print the transitive call tree instead of call sites",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("expected exactly one function reference")
		}
		name := c.Args().First()
		ctx := Context()

		settings, err := loadSettings(c)
		if err != nil {
			return err
		}

		roots := c.StringSlice("root")
		log := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
		resolver := resource.NewResolver().WithDefaultNamespace(settings.DefaultNamespace)
		idx := index.New(resolver, log)
		scanner := workspace.NewScanner(idx, workspace.ScanOptions{
			MaxFileSize: settings.MaxFileSize,
			IgnoredDirs: settings.IgnoredDirs,
		}, log)

		if _, err := scanner.Scan(ctx, roots); err != nil {
			return err
		}

		if c.Bool("tree") {
			finder := resource.NewFinder(resolver, roots, log)
			tree, err := idx.CallTree(ctx, finder, name)
			if err != nil {
				return err
			}
			fmt.Println(tree)
			return nil
		}

		callers := idx.ReferencesTo(name)
		if len(callers) == 0 {
			color := diagnostic.Color(ctx)
			fmt.Println(color.Sprintf("no references to %s", color.Bold(name)))
			return nil
		}

		files := make([]string, 0, len(callers))
		for file := range callers {
			files = append(files, file)
		}
		sort.Strings(files)

		for _, file := range files {
			for _, line := range callers[file] {
				fmt.Printf("%s:%d\n", file, line+1)
			}
		}
		return nil
	},
}

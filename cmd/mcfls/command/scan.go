package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v2"

	"github.com/openmcf/mcfls/diagnostic"
	"github.com/openmcf/mcfls/index"
	"github.com/openmcf/mcfls/pkg/filebuffer"
	"github.com/openmcf/mcfls/resource"
	"github.com/openmcf/mcfls/workspace"
)

var scanCommand = &cli.Command{
	Name:      "scan",
	Usage:     "index a workspace and report its symbols",
	ArgsUsage: "<root> [<root>...]",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "check",
			Usage: "run line checks over every indexed file and print diagnostics",
		},
	},
	Action: func(c *cli.Context) error {
		ctx := Context()

		settings, err := loadSettings(c)
		if err != nil {
			return err
		}

		roots := c.Args().Slice()
		if len(roots) == 0 {
			roots = []string{"."}
		}

		log := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
		resolver := resource.NewResolver().WithDefaultNamespace(settings.DefaultNamespace)
		idx := index.New(resolver, log)
		scanner := workspace.NewScanner(idx, workspace.ScanOptions{
			MaxFileSize: settings.MaxFileSize,
			IgnoredDirs: settings.IgnoredDirs,
		}, log)

		result, err := scanner.Scan(ctx, roots)
		if err != nil {
			return err
		}

		stats := idx.Stats()
		color := diagnostic.Color(ctx)
		fmt.Println(color.Sprintf(
			"indexed %s files (%d skipped), %s scoreboards, %s tags, %d call edges to %d functions",
			color.Green(result.Indexed),
			result.Skipped,
			color.Green(stats.Scoreboards),
			color.Green(stats.Tags),
			stats.CallEdges,
			stats.CallTargets,
		))

		for _, fail := range result.Failed {
			fmt.Fprintln(os.Stderr, color.Sprintf(
				"%s: %s: %s",
				color.Bold(color.Red("error")),
				fail.Filename,
				fail.Err,
			))
		}

		if c.Bool("check") {
			finder := resource.NewFinder(resolver, roots, log)
			checkIndexedFiles(ctx, idx, finder, settings.CheckExistence)
		}

		if len(result.Failed) > 0 {
			return errors.Errorf("%d files failed to index", len(result.Failed))
		}
		return nil
	},
}

// checkIndexedFiles re-reads every indexed file and pretty-prints its
// line diagnostics. Unreadable files were already reported by the scan.
func checkIndexedFiles(ctx context.Context, idx *index.Index, finder *resource.Finder, checkExistence bool) {
	opts := index.CheckOptions{Finder: finder, CheckExistence: checkExistence}
	sources := filebuffer.NewSources()

	for _, filename := range idx.Files() {
		data, err := os.ReadFile(filename)
		if err != nil {
			continue
		}
		fb := filebuffer.New(filename)
		fb.Write(data)
		sources.Set(filename, fb)

		lines := strings.Split(string(data), "\n")
		for i, line := range lines {
			lines[i] = strings.TrimSuffix(line, "\r")
		}
		for _, span := range idx.CheckFile(ctx, filename, lines, opts) {
			fmt.Fprintf(os.Stderr, "%s\n", span.Pretty(ctx, sources))
		}
	}
}

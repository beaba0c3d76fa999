package command

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	cli "github.com/urfave/cli/v2"

	"github.com/openmcf/mcfls/diagnostic"
	"github.com/openmcf/mcfls/index"
	"github.com/openmcf/mcfls/langserver"
	"github.com/openmcf/mcfls/parser"
	"github.com/openmcf/mcfls/resource"
	"github.com/openmcf/mcfls/workspace"
)

var consoleCommand = &cli.Command{
	Name:  "console",
	Usage: "interactively explore a workspace index",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "root",
			Aliases: []string{"r"},
			Usage:   "workspace root to index",
			Value:   cli.NewStringSlice("."),
		},
	},
	Action: func(c *cli.Context) error {
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

		result, err := scanner.Scan(ctx, roots)
		if err != nil {
			return err
		}
		fmt.Printf("indexed %d files\n", result.Indexed)

		finder := resource.NewFinder(resolver, roots, log)

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "mcfls> ",
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
			AutoComplete: readline.NewPrefixCompleter(
				readline.PcItem("boards"),
				readline.PcItem("tags"),
				readline.PcItem("refs"),
				readline.PcItem("tree"),
				readline.PcItem("tokens"),
				readline.PcItem("complete"),
				readline.PcItem("help"),
				readline.PcItem("exit"),
			),
		})
		if err != nil {
			return err
		}
		defer rl.Close()

		for {
			line, err := rl.Readline()
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}

			verb, rest := splitVerb(line)
			switch verb {
			case "":
			case "exit", "quit":
				return nil
			case "help":
				fmt.Println("boards | tags | refs <name> | tree <name> | tokens <line> | complete <line> | exit")
			case "boards":
				for _, sb := range idx.Scoreboards() {
					fmt.Printf("%s (%s) refs=%d defined in %s\n", sb.Name, sb.Criterion, sb.Refs, sb.DefinedIn)
				}
			case "tags":
				for _, tag := range idx.Tags() {
					fmt.Printf("%s refs=%d\n", tag.Name, tag.Refs)
				}
			case "refs":
				callers := idx.ReferencesTo(rest)
				if len(callers) == 0 {
					fmt.Println("no references")
					continue
				}
				files := make([]string, 0, len(callers))
				for file := range callers {
					files = append(files, file)
				}
				sort.Strings(files)
				for _, file := range files {
					for _, ln := range callers[file] {
						fmt.Printf("%s:%d\n", file, ln+1)
					}
				}
			case "tree":
				tree, err := idx.CallTree(ctx, finder, rest)
				if err != nil {
					color := diagnostic.Color(ctx)
					fmt.Println(color.Sprintf("%s: %s", color.Red("error"), err))
					continue
				}
				fmt.Println(tree)
			case "tokens":
				tokens := parser.Tokenize(rest)
				for _, tok := range tokens {
					fmt.Printf("[%d:%d] %q\n", tok.Start, tok.End, tok.Value)
				}
				ac := parser.ResolveActiveCommand(tokens)
				switch {
				case !ac.WrapperComplete:
					fmt.Printf("wrapper incomplete, filling argument %d\n", ac.ParamStage)
				case ac.Wrapped:
					fmt.Printf("active command: %s\n", strings.Join(parser.Values(ac.Tokens), " "))
				}
			case "complete":
				tokens := parser.Tokenize(rest)
				ac := parser.ResolveActiveCommand(tokens)
				slot := len(ac.Tokens) - 1
				prefix := tokens[len(tokens)-1].Value
				for _, cand := range langserver.Candidates(idx, roots, ac, slot) {
					if !strings.HasPrefix(cand.Label, prefix) {
						continue
					}
					if cand.Detail != "" {
						fmt.Printf("%s (%s)\n", cand.Label, cand.Detail)
					} else {
						fmt.Println(cand.Label)
					}
				}
			default:
				fmt.Printf("unknown command %q, try help\n", verb)
			}
		}
	},
}

func splitVerb(line string) (verb, rest string) {
	line = strings.TrimSpace(line)
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return line[:i], strings.TrimSpace(line[i+1:])
	}
	return line, ""
}

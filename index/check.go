package index

import (
	"context"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/openmcf/mcfls/diagnostic"
	"github.com/openmcf/mcfls/parser"
	"github.com/openmcf/mcfls/resource"
)

// CheckOptions controls which findings CheckFile produces.
type CheckOptions struct {
	// Finder enables existence checks for referenced functions.
	Finder *resource.Finder

	// CheckExistence gates the (potentially slow, stat-based)
	// function existence check; it mirrors the user setting.
	CheckExistence bool
}

// scoreboard subcommands whose next-but-one argument names an
// objective.
var playerOps = map[string]bool{
	"set":       true,
	"add":       true,
	"remove":    true,
	"reset":     true,
	"get":       true,
	"enable":    true,
	"operation": true,
}

// CheckFile inspects every line of a file against the current index
// state and reports non-fatal findings: scoreboard names that no line
// in the workspace declares, and function calls whose target file does
// not exist. It never fails; a line the checker cannot make sense of
// produces nothing.
func (ix *Index) CheckFile(ctx context.Context, file string, lines []string, opts CheckOptions) []*diagnostic.SpanError {
	var spans []*diagnostic.SpanError
	for i, text := range lines {
		if ctx.Err() != nil {
			break
		}
		spans = append(spans, ix.checkLine(ctx, file, i, text, opts)...)
	}
	return spans
}

func (ix *Index) checkLine(ctx context.Context, file string, line int, text string, opts CheckOptions) []*diagnostic.SpanError {
	ac := parser.ResolveActiveCommand(parser.Tokenize(text))
	if !ac.WrapperComplete || len(ac.Tokens) == 0 {
		return nil
	}
	tokens := ac.Tokens

	switch tokens[0].Value {
	case "scoreboard":
		if len(tokens) < 5 || tokens[1].Value != "players" || !playerOps[tokens[2].Value] {
			return nil
		}
		name := tokens[4]
		if name.Blank() {
			return nil
		}
		if _, ok := ix.LookupScoreboard(name.Value); ok {
			return nil
		}
		msg := "unknown scoreboard %q"
		args := []interface{}{name.Value}
		if s := diagnostic.Suggestion(name.Value, ix.scoreboardNames()); s != "" {
			msg += ", did you mean %q?"
			args = append(args, s)
		}
		return []*diagnostic.SpanError{diagnostic.New(
			diagnostic.Warning,
			position(file, line, name.Start),
			position(file, line, name.End),
			msg, args...,
		)}

	case "function":
		if len(tokens) < 2 || tokens[1].Blank() {
			return nil
		}
		target := tokens[1]
		if _, ok := ix.classifier.resolver.Resolve(target.Value); !ok {
			return []*diagnostic.SpanError{diagnostic.New(
				diagnostic.Warning,
				position(file, line, target.Start),
				position(file, line, target.End),
				"invalid resource reference %q", target.Value,
			)}
		}
		if !opts.CheckExistence || opts.Finder == nil {
			return nil
		}
		if opts.Finder.Exists(ctx, target.Value, resource.KindFunction) {
			return nil
		}
		return []*diagnostic.SpanError{diagnostic.New(
			diagnostic.Info,
			position(file, line, target.Start),
			position(file, line, target.End),
			"function %q does not exist yet", target.Value,
		)}
	}
	return nil
}

func (ix *Index) scoreboardNames() []string {
	boards := ix.Scoreboards()
	names := make([]string, len(boards))
	for i, sb := range boards {
		names[i] = sb.Name
	}
	return names
}

func position(file string, line, col int) lexer.Position {
	return lexer.Position{
		Filename: file,
		Offset:   col,
		Line:     line + 1,
		Column:   col + 1,
	}
}

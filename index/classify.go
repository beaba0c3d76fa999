package index

import (
	"strings"

	"github.com/openmcf/mcfls/parser"
	"github.com/openmcf/mcfls/resource"
)

// contribKind enumerates what a single line can contribute to the
// workspace tables. A line contributes at most one thing.
type contribKind int

const (
	contribNone contribKind = iota
	contribScoreboard
	contribTag
	contribCall
)

// contribution records what one (file, line) pair declared, so a later
// re-index of the same line can retract it before applying the new
// parse.
type contribution struct {
	kind contribKind

	// name is the scoreboard or tag name, or the canonical
	// "namespace:path" form of a call target.
	name string

	criterion   string
	displayName string
}

// classifier turns raw lines into contributions. It is stateless apart
// from the reference resolver used to canonicalize call targets.
type classifier struct {
	resolver *resource.Resolver
}

// classify tokenizes one line, unwinds any wrapper prefix, and matches
// the resulting command against the declaration shapes. Lines that
// match nothing (comments, blanks, malformed commands, unknown
// commands) contribute nothing; that is not an error.
func (c classifier) classify(text string) contribution {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return contribution{}
	}

	ac := parser.ResolveActiveCommand(parser.Tokenize(trimmed))
	if !ac.WrapperComplete {
		return contribution{}
	}
	args := parser.Values(ac.Tokens)

	switch {
	case len(args) >= 5 && args[0] == "scoreboard" && args[1] == "objectives" && args[2] == "add":
		name, criterion := args[3], args[4]
		if name == "" || criterion == "" {
			return contribution{}
		}
		return contribution{
			kind:        contribScoreboard,
			name:        name,
			criterion:   criterion,
			displayName: strings.Join(args[5:], " "),
		}

	case len(args) >= 6 && args[0] == "scoreboard" && args[1] == "players" && args[2] == "tag" && args[4] == "add":
		if args[5] == "" {
			return contribution{}
		}
		return contribution{kind: contribTag, name: args[5]}

	case len(args) >= 2 && args[0] == "function":
		ref, ok := c.resolver.Resolve(args[1])
		if !ok {
			return contribution{}
		}
		return contribution{kind: contribCall, name: ref.String()}
	}
	return contribution{}
}

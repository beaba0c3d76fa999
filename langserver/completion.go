package langserver

import (
	"context"
	"sort"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/openmcf/mcfls/index"
	"github.com/openmcf/mcfls/parser"
	"github.com/openmcf/mcfls/resource"
)

// commandNames are the heads offered at the start of a command. The
// list is static; everything interesting (scoreboards, tags, function
// targets) comes from the index.
var commandNames = []string{
	"clone", "effect", "execute", "fill", "function", "gamemode",
	"gamerule", "give", "kill", "say", "scoreboard", "setblock",
	"summon", "tellraw", "time", "tp", "weather",
}

var selectorNames = []string{"@a", "@e", "@p", "@r", "@s"}

// Candidate is one completion suggestion before protocol shaping.
type Candidate struct {
	Label  string
	Kind   lsp.CompletionItemKind
	Detail string
}

func (ls *LangServer) textDocumentCompletionHandler(ctx context.Context, params lsp.CompletionParams) (*lsp.CompletionList, error) {
	uri := params.TextDocument.URI
	line, col := params.Position.Line, params.Position.Character

	tokens, ok := ls.docs.GetTokens(string(uri), line)
	if !ok {
		return &lsp.CompletionList{}, nil
	}

	tok, tokIdx := parser.TokenAt(tokens, col)
	if tokIdx < 0 {
		return &lsp.CompletionList{}, nil
	}

	ac := parser.ResolveActiveCommand(tokens)
	// ac.Tokens shares its backing with tokens, so the cursor's slot
	// within the active command is a plain index difference.
	slot := tokIdx - (len(tokens) - len(ac.Tokens))

	prefix := tok.Value
	if n := col - tok.Start; n >= 0 && n < len(tok.Value) {
		prefix = tok.Value[:n]
	}

	candidates := Candidates(ls.idx, ls.getFinder().Roots(), ac, slot)

	items := make([]lsp.CompletionItem, 0, len(candidates))
	for _, c := range candidates {
		if !strings.HasPrefix(c.Label, prefix) {
			continue
		}
		items = append(items, lsp.CompletionItem{
			Label:  c.Label,
			Kind:   c.Kind,
			Detail: c.Detail,
			TextEdit: &lsp.TextEdit{
				Range: lsp.Range{
					Start: lsp.Position{Line: line, Character: tok.Start},
					End:   lsp.Position{Line: line, Character: tok.End},
				},
				NewText: c.Label,
			},
		})
	}
	return &lsp.CompletionList{Items: items}, nil
}

// Candidates maps a slot within the active command to its completion
// set. Slots it does not understand yield nothing rather than noise.
func Candidates(idx *index.Index, roots []string, ac parser.ActiveCommand, slot int) []Candidate {
	if slot < 0 {
		return nil
	}
	if slot == 0 {
		return keywords(lsp.CIKKeyword, commandNames)
	}

	if !ac.WrapperComplete {
		// Cursor sits inside the wrapper's own arguments.
		switch slot {
		case 1:
			return keywords(lsp.CIKValue, selectorNames)
		case 2, 3, 4:
			return keywords(lsp.CIKValue, []string{"~"})
		}
		return nil
	}

	tokens := ac.Tokens
	switch tokens[0].Value {
	case "scoreboard":
		return scoreboardCandidates(idx, tokens, slot)
	case "function":
		if slot == 1 {
			return functionCandidates(idx, roots)
		}
	}
	return nil
}

func scoreboardCandidates(idx *index.Index, tokens []parser.Token, slot int) []Candidate {
	if slot == 1 {
		return keywords(lsp.CIKKeyword, []string{"objectives", "players"})
	}
	if len(tokens) < 2 {
		return nil
	}

	switch tokens[1].Value {
	case "objectives":
		switch slot {
		case 2:
			return keywords(lsp.CIKKeyword, []string{"add", "list", "remove", "setdisplay"})
		case 3:
			if len(tokens) > 2 && (tokens[2].Value == "remove" || tokens[2].Value == "setdisplay") {
				return scoreboardNameCandidates(idx)
			}
		}

	case "players":
		switch slot {
		case 2:
			ops := []string{"add", "enable", "get", "operation", "remove", "reset", "set", "tag"}
			return keywords(lsp.CIKKeyword, ops)
		case 3:
			if len(tokens) > 2 && tokens[2].Value != "tag" {
				return keywords(lsp.CIKValue, selectorNames)
			}
		case 4:
			if len(tokens) > 2 && tokens[2].Value == "tag" {
				return keywords(lsp.CIKKeyword, []string{"add", "list", "remove"})
			}
			return scoreboardNameCandidates(idx)
		case 5:
			if len(tokens) > 2 && tokens[2].Value == "tag" {
				return tagCandidates(idx)
			}
		}
	}
	return nil
}

func scoreboardNameCandidates(idx *index.Index) []Candidate {
	boards := idx.Scoreboards()
	out := make([]Candidate, len(boards))
	for i, sb := range boards {
		out[i] = Candidate{Label: sb.Name, Kind: lsp.CIKVariable, Detail: sb.Criterion}
	}
	return out
}

func tagCandidates(idx *index.Index) []Candidate {
	tags := idx.Tags()
	out := make([]Candidate, len(tags))
	for i, tag := range tags {
		out[i] = Candidate{Label: tag.Name, Kind: lsp.CIKVariable, Detail: "tag"}
	}
	return out
}

// functionCandidates offers every function the workspace knows about:
// indexed files mapped back to references, plus call targets that may
// not exist on disk yet.
func functionCandidates(idx *index.Index, roots []string) []Candidate {
	seen := make(map[string]bool)
	for _, file := range idx.Files() {
		if ref, kind, ok := resource.FromPath(roots, file); ok && kind == resource.KindFunction {
			seen[ref.String()] = true
		}
	}
	for _, target := range idx.CallTargets() {
		seen[target] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Candidate, len(names))
	for i, name := range names {
		out[i] = Candidate{Label: name, Kind: lsp.CIKFunction, Detail: "function"}
	}
	return out
}

func keywords(kind lsp.CompletionItemKind, labels []string) []Candidate {
	out := make([]Candidate, len(labels))
	for i, label := range labels {
		out[i] = Candidate{Label: label, Kind: kind}
	}
	return out
}

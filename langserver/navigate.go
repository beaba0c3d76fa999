package langserver

import (
	"context"
	"sort"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/openmcf/mcfls/parser"
	"github.com/openmcf/mcfls/resource"
)

func (ls *LangServer) textDocumentDefinitionHandler(ctx context.Context, params lsp.TextDocumentPositionParams) ([]lsp.Location, error) {
	name, ok := ls.functionTargetAt(params)
	if !ok {
		return nil, nil
	}

	loc, ok := ls.getFinder().Find(ctx, name, resource.KindFunction)
	if !ok {
		return nil, nil
	}
	return []lsp.Location{{
		URI: filenameToURI(loc.Filename),
	}}, nil
}

func (ls *LangServer) textDocumentReferencesHandler(ctx context.Context, params lsp.ReferenceParams) ([]lsp.Location, error) {
	// On a call site the query targets the called function; anywhere
	// else it targets the function the cursor's file itself defines.
	name, ok := ls.functionTargetAt(params.TextDocumentPositionParams)
	if !ok {
		filename := uriToFilename(params.TextDocument.URI)
		ref, kind, found := resource.FromPath(ls.getFinder().Roots(), filename)
		if !found || kind != resource.KindFunction {
			return nil, nil
		}
		name = ref.String()
	}

	callers := ls.idx.ReferencesTo(name)
	if len(callers) == 0 {
		return nil, nil
	}

	files := make([]string, 0, len(callers))
	for file := range callers {
		files = append(files, file)
	}
	sort.Strings(files)

	var locations []lsp.Location
	for _, file := range files {
		for _, line := range callers[file] {
			locations = append(locations, lsp.Location{
				URI: filenameToURI(file),
				Range: lsp.Range{
					Start: lsp.Position{Line: line},
					End:   lsp.Position{Line: line},
				},
			})
		}
	}
	return locations, nil
}

// functionTargetAt returns the function reference under the cursor, if
// the cursor sits on the target argument of a function command.
func (ls *LangServer) functionTargetAt(params lsp.TextDocumentPositionParams) (string, bool) {
	tokens, ok := ls.docs.GetTokens(string(params.TextDocument.URI), params.Position.Line)
	if !ok {
		return "", false
	}

	tok, tokIdx := parser.TokenAt(tokens, params.Position.Character)
	if tokIdx < 0 || tok.Blank() {
		return "", false
	}

	ac := parser.ResolveActiveCommand(tokens)
	if !ac.WrapperComplete || len(ac.Tokens) < 2 || ac.Tokens[0].Value != "function" {
		return "", false
	}
	slot := tokIdx - (len(tokens) - len(ac.Tokens))
	if slot != 1 {
		return "", false
	}
	return tok.Value, true
}

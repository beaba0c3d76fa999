package langserver

import (
	"context"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/openmcf/mcfls/diagnostic"
	"github.com/openmcf/mcfls/index"
)

// publishDiagnostics runs the line checks over the document and pushes
// the results to the client. An empty result clears prior markers.
func (ls *LangServer) publishDiagnostics(ctx context.Context, uri lsp.DocumentURI, lines []string) {
	opts := index.CheckOptions{}
	if ls.settings.CheckExistence {
		opts.Finder = ls.getFinder()
		opts.CheckExistence = true
	}

	spans := ls.idx.CheckFile(ctx, uriToFilename(uri), lines, opts)

	diagnostics := make([]lsp.Diagnostic, 0, len(spans))
	for _, span := range spans {
		diagnostics = append(diagnostics, toDiagnostic(span))
	}

	err := ls.server.Notify(ctx, "textDocument/publishDiagnostics", lsp.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	if err != nil {
		ls.log.Warn().Err(err).Str("uri", string(uri)).Msg("publishing diagnostics")
	}
}

// toDiagnostic maps a 1-based span onto the protocol's 0-based range.
func toDiagnostic(span *diagnostic.SpanError) lsp.Diagnostic {
	var severity lsp.DiagnosticSeverity = lsp.Information
	if span.Severity == diagnostic.Warning {
		severity = lsp.Warning
	}
	return lsp.Diagnostic{
		Range: lsp.Range{
			Start: lsp.Position{Line: span.Pos.Line - 1, Character: span.Pos.Column - 1},
			End:   lsp.Position{Line: span.End.Line - 1, Character: span.End.Column - 1},
		},
		Severity: severity,
		Source:   "mcfls",
		Message:  span.Message,
	}
}

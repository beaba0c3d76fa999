// Package langserver exposes the core over the language server
// protocol: document sync feeds the line cache and symbol index,
// queries answer completion, definition and references.
package langserver

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/rs/zerolog"
	lsp "github.com/sourcegraph/go-lsp"

	"github.com/openmcf/mcfls/config"
	"github.com/openmcf/mcfls/document"
	"github.com/openmcf/mcfls/index"
	"github.com/openmcf/mcfls/resource"
	"github.com/openmcf/mcfls/workspace"
)

type LangServer struct {
	server   *jrpc2.Server
	settings config.Settings
	log      zerolog.Logger

	resolver *resource.Resolver
	idx      *index.Index
	docs     *document.Manager
	scanner  *workspace.Scanner

	// Set at initialize, once the workspace roots are known.
	finder *resource.Finder
	fmu    sync.RWMutex

	dbs map[lsp.DocumentURI]*debouncer
	dmu sync.Mutex

	// cancelScan stops the startup scan and watcher on exit.
	cancelScan context.CancelFunc
	cmu        sync.Mutex
}

func NewServer(settings config.Settings, log zerolog.Logger) *LangServer {
	resolver := resource.NewResolver().WithDefaultNamespace(settings.DefaultNamespace)
	idx := index.New(resolver, log)

	ls := &LangServer{
		settings: settings,
		log:      log,
		resolver: resolver,
		idx:      idx,
		docs: document.NewManager(document.Options{
			MaxDocuments:        settings.MaxDocuments,
			MaxLinesPerDocument: settings.MaxLinesPerDocument,
			TTL:                 settings.CacheTTL(),
		}),
		scanner: workspace.NewScanner(idx, workspace.ScanOptions{
			MaxFileSize: settings.MaxFileSize,
			IgnoredDirs: settings.IgnoredDirs,
		}, log),
		dbs: make(map[lsp.DocumentURI]*debouncer),
	}

	ls.server = jrpc2.NewServer(handler.Map{
		"initialize":              handler.New(ls.initializeHandler),
		"shutdown":                handler.New(ls.shutdownHandler),
		"exit":                    handler.New(ls.exitHandler),
		"$/cancelRequest":         handler.New(ls.cancelRequestHandler),
		"textDocument/didOpen":    handler.New(ls.textDocumentDidOpenHandler),
		"textDocument/didChange":  handler.New(ls.textDocumentDidChangeHandler),
		"textDocument/didSave":    handler.New(ls.textDocumentDidSaveHandler),
		"textDocument/didClose":   handler.New(ls.textDocumentDidCloseHandler),
		"textDocument/completion": handler.New(ls.textDocumentCompletionHandler),
		"textDocument/definition": handler.New(ls.textDocumentDefinitionHandler),
		"textDocument/references": handler.New(ls.textDocumentReferencesHandler),
	}, &jrpc2.ServerOptions{
		AllowPush: true,
	})

	return ls
}

func (ls *LangServer) Listen(ctx context.Context, r io.Reader, w io.WriteCloser) error {
	defer func() {
		if r := recover(); r != nil {
			ls.log.Error().Interface("panic", r).Msg("listen recovered panic")
		}
	}()

	ls.log.Info().Msg("mcfls langserver listening")
	s := ls.server.Start(channel.Header("")(r, w))
	return s.Wait()
}

func (ls *LangServer) initializeHandler(ctx context.Context, params lsp.InitializeParams) (lsp.InitializeResult, error) {
	root := uriToFilename(params.RootURI)
	if root == "" {
		root = params.RootPath
	}
	ls.log.Info().Str("root", root).Msg("initialize")

	var roots []string
	if root != "" {
		roots = []string{root}
	}
	ls.fmu.Lock()
	ls.finder = resource.NewFinder(ls.resolver, roots, ls.log)
	ls.fmu.Unlock()

	// Startup scan and watcher run in the background; queries served
	// meanwhile simply see a partially filled index.
	scanCtx, cancel := context.WithCancel(context.Background())
	ls.cmu.Lock()
	ls.cancelScan = cancel
	ls.cmu.Unlock()
	go ls.scanAndWatch(scanCtx, roots)

	return lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			DefinitionProvider: true,
			ReferencesProvider: true,
			CompletionProvider: &lsp.CompletionOptions{
				TriggerCharacters: []string{" ", ":", "/"},
			},
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKIncremental,
					Save:      &lsp.SaveOptions{IncludeText: false},
				},
			},
		},
	}, nil
}

func (ls *LangServer) scanAndWatch(ctx context.Context, roots []string) {
	if len(roots) == 0 {
		return
	}
	result, err := ls.scanner.Scan(ctx, roots)
	if err != nil {
		ls.log.Warn().Err(err).Msg("startup scan stopped")
		return
	}
	ls.log.Info().
		Int("indexed", result.Indexed).
		Int("skipped", result.Skipped).
		Int("failed", len(result.Failed)).
		Msg("startup scan complete")

	watcher := workspace.NewWatcher(ls.scanner, ls.log)
	if err := watcher.Watch(ctx, roots); err != nil && ctx.Err() == nil {
		ls.log.Warn().Err(err).Msg("watcher stopped")
	}
}

func (ls *LangServer) shutdownHandler(ctx context.Context) error {
	ls.log.Info().Msg("shutdown")
	return nil
}

func (ls *LangServer) exitHandler(ctx context.Context) error {
	ls.log.Info().Msg("exit")
	ls.cmu.Lock()
	if ls.cancelScan != nil {
		ls.cancelScan()
	}
	ls.cmu.Unlock()
	ls.server.Stop()
	return nil
}

func (ls *LangServer) cancelRequestHandler(ctx context.Context, params lsp.None) error {
	ls.log.Debug().Msg("cancel request")
	return nil
}

func (ls *LangServer) getFinder() *resource.Finder {
	ls.fmu.RLock()
	defer ls.fmu.RUnlock()
	if ls.finder == nil {
		return resource.NewFinder(ls.resolver, nil, ls.log)
	}
	return ls.finder
}

func uriToFilename(uri lsp.DocumentURI) string {
	return strings.TrimPrefix(string(uri), "file://")
}

func filenameToURI(filename string) lsp.DocumentURI {
	return lsp.DocumentURI("file://" + filename)
}

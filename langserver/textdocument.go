package langserver

import (
	"context"
	"strings"
	"sync"
	"time"

	lsp "github.com/sourcegraph/go-lsp"
)

// reindexWindow coalesces rapid keystrokes into one re-index pass per
// document.
const reindexWindow = 100 * time.Millisecond

func (ls *LangServer) textDocumentDidOpenHandler(ctx context.Context, params lsp.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	ls.log.Debug().Str("uri", string(uri)).Msg("did open")

	ls.docs.Open(string(uri), params.TextDocument.Text)
	ls.reindexDocument(ctx, uri)
	return nil
}

func (ls *LangServer) textDocumentDidChangeHandler(ctx context.Context, params lsp.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	for _, change := range params.ContentChanges {
		ls.applyChange(string(uri), change)
	}

	return ls.debounce(uri, reindexWindow, func() error {
		ls.reindexDocument(ctx, uri)
		return nil
	})
}

// applyChange folds one content change into the tracked document. A
// change without a range is a full resync; a ranged change splices the
// new text into the covered lines, so the cache only drops entries
// inside the edited range and re-keys the rest.
func (ls *LangServer) applyChange(uri string, change lsp.TextDocumentContentChangeEvent) {
	if change.Range == nil {
		ls.docs.Replace(uri, change.Text)
		return
	}

	d, ok := ls.docs.Get(uri)
	if !ok {
		return
	}
	start, end := change.Range.Start, change.Range.End

	first, ok := d.Line(start.Line)
	if !ok {
		return
	}
	last, ok := d.Line(end.Line)
	if !ok {
		last = ""
	}

	prefix := first
	if start.Character <= len(first) {
		prefix = first[:start.Character]
	}
	suffix := ""
	if end.Character <= len(last) {
		suffix = last[end.Character:]
	}

	newLines := strings.Split(prefix+change.Text+suffix, "\n")
	for i, line := range newLines {
		newLines[i] = strings.TrimSuffix(line, "\r")
	}
	ls.docs.Edit(uri, start.Line, end.Line, newLines)
}

func (ls *LangServer) textDocumentDidSaveHandler(ctx context.Context, params lsp.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	ls.log.Debug().Str("uri", string(uri)).Msg("did save")
	ls.reindexDocument(ctx, uri)
	return nil
}

func (ls *LangServer) textDocumentDidCloseHandler(ctx context.Context, params lsp.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	ls.log.Debug().Str("uri", string(uri)).Msg("did close")

	ls.docs.Close(string(uri))
	// The file keeps its index contributions: it still exists in the
	// workspace, the editor just stopped viewing it.
	return nil
}

// reindexDocument refreshes the open document's index contributions
// and publishes its diagnostics.
func (ls *LangServer) reindexDocument(ctx context.Context, uri lsp.DocumentURI) {
	d, ok := ls.docs.Get(string(uri))
	if !ok {
		return
	}
	lines := d.Lines()
	ls.idx.IndexFile(uriToFilename(uri), lines)
	ls.publishDiagnostics(ctx, uri, lines)
}

// debouncer coalesces rapid successive calls into one execution after
// a quiet interval. One debouncer exists per document URI.
type debouncer struct {
	timer        *time.Timer
	mu           sync.Mutex
	publish      chan func() error
	subscription chan error
}

func newDebouncer(interval time.Duration) *debouncer {
	d := &debouncer{
		timer:   time.NewTimer(interval),
		publish: make(chan func() error),
	}

	go func() {
		var f func() error
		for {
			select {
			case f = <-d.publish:
				d.timer.Reset(interval)
			case <-d.timer.C:
				d.mu.Lock()
				if d.subscription != nil && f != nil {
					d.subscription <- f()
					d.subscription = nil
					f = nil
				}
				d.mu.Unlock()
			}
		}
	}()

	return d
}

func (d *debouncer) debounce(subscription chan error, f func() error) {
	d.mu.Lock()
	if d.subscription != nil {
		// A newer edit superseded the pending one; release its
		// waiter without running it.
		d.subscription <- nil
	}
	d.publish <- f
	d.subscription = subscription
	d.mu.Unlock()
}

func (ls *LangServer) debounce(uri lsp.DocumentURI, interval time.Duration, f func() error) error {
	ls.dmu.Lock()
	db, ok := ls.dbs[uri]
	if !ok {
		db = newDebouncer(interval)
		ls.dbs[uri] = db
	}
	ls.dmu.Unlock()

	subscription := make(chan error)
	db.debounce(subscription, f)

	return <-subscription
}

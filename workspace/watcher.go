package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// debounceWindow coalesces bursts of file events (saves, branch
// switches) into one re-index pass.
const debounceWindow = 150 * time.Millisecond

// Watcher keeps the index current with on-disk changes under the
// workspace roots. Events are accumulated and flushed through a
// debouncer, so a burst touches each affected file once.
type Watcher struct {
	scanner *Scanner
	log     zerolog.Logger

	mu      sync.Mutex
	pending map[string]fsnotify.Op
}

func NewWatcher(scanner *Scanner, log zerolog.Logger) *Watcher {
	return &Watcher{
		scanner: scanner,
		log:     log,
		pending: make(map[string]fsnotify.Op),
	}
}

// Watch blocks, processing events for every directory under the given
// roots until ctx is done.
func (w *Watcher) Watch(ctx context.Context, roots []string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer fsw.Close()

	for _, root := range roots {
		if err := w.addRecursive(fsw, root); err != nil {
			return err
		}
	}

	flush := debounce.New(debounceWindow)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.observe(fsw, event)
			flush(w.flushPending)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) observe(fsw *fsnotify.Watcher, event fsnotify.Event) {
	// New directories must be watched immediately; waiting for the
	// debounce window would drop events for files created inside.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(fsw, event.Name); err != nil {
				w.log.Warn().Err(err).Str("dir", event.Name).Msg("watching new directory")
			}
			// Files written into the directory before the watch took
			// effect produced no events; queue whatever is already
			// there.
			entries, err := os.ReadDir(event.Name)
			if err != nil {
				return
			}
			w.mu.Lock()
			for _, entry := range entries {
				name := filepath.Join(event.Name, entry.Name())
				if !entry.IsDir() && filepath.Ext(name) == FileExt && !w.scanner.Ignored(name) {
					w.pending[name] |= fsnotify.Create
				}
			}
			w.mu.Unlock()
			return
		}
	}

	if filepath.Ext(event.Name) != FileExt || w.scanner.Ignored(event.Name) {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] |= event.Op
	w.mu.Unlock()
}

// flushPending applies the accumulated events: removed or renamed-away
// files are retracted from the index, anything else is re-indexed.
func (w *Watcher) flushPending() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.mu.Unlock()

	for filename, op := range pending {
		if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
			if _, err := os.Stat(filename); err != nil {
				w.scanner.Remove(filename)
				w.log.Debug().Str("file", filename).Msg("retracted removed file")
				continue
			}
		}
		if err := w.scanner.ScanFile(filename); err != nil {
			w.log.Warn().Err(err).Str("file", filename).Msg("reindex failed")
		} else {
			w.log.Debug().Str("file", filename).Msg("reindexed")
		}
	}
}

func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.scanner.Ignored(path) {
			return filepath.SkipDir
		}
		return errors.Wrapf(fsw.Add(path), "watching %q", path)
	})
}

// Package workspace discovers and indexes every command-script file
// under the open workspace roots, and keeps the index current as files
// change on disk.
package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/openmcf/mcfls/index"
)

// FileExt is the extension of indexable command-script files.
const FileExt = ".mcfunction"

// ScanOptions bounds a bulk scan. Zero values take the defaults.
type ScanOptions struct {
	// Concurrency is the number of files read and indexed in flight
	// at once; it bounds peak file-handle and memory usage.
	Concurrency int

	// MaxFileSize skips files larger than this many bytes. Oversized
	// files are counted, not errors.
	MaxFileSize int64

	// IgnoredDirs are directory base names excluded from the walk
	// (and therefore from indexing and existence reporting).
	IgnoredDirs []string
}

const (
	defaultConcurrency = 5
	defaultMaxFileSize = 1 << 20
)

// FileError records a per-file failure. Failures never abort the scan
// of other files.
type FileError struct {
	Filename string
	Err      error
}

// Result summarizes one scan pass.
type Result struct {
	Indexed int
	Skipped int
	Failed  []FileError
}

// Scanner feeds the symbol index from files on disk.
type Scanner struct {
	idx  *index.Index
	opts ScanOptions
	log  zerolog.Logger
}

func NewScanner(idx *index.Index, opts ScanOptions, log zerolog.Logger) *Scanner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaultMaxFileSize
	}
	return &Scanner{idx: idx, opts: opts, log: log}
}

// Scan walks every root and (re-)indexes each script file it finds,
// reading at most opts.Concurrency files at a time. Cancellation is
// observed between files: work already indexed stays committed, the
// scan just stops early and reports ctx.Err.
func (s *Scanner) Scan(ctx context.Context, roots []string) (Result, error) {
	var files []string
	for _, root := range roots {
		found, err := s.discover(ctx, root)
		if err != nil {
			return Result{}, err
		}
		files = append(files, found...)
	}
	sort.Strings(files)

	var (
		result Result
		mu     sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for _, filename := range files {
		if gctx.Err() != nil {
			break
		}
		filename := filename
		g.Go(func() error {
			skipped, err := s.indexOne(filename)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				// Isolate the failure to this file.
				s.log.Warn().Err(err).Str("file", filename).Msg("scan failed for file")
				result.Failed = append(result.Failed, FileError{Filename: filename, Err: err})
			case skipped:
				result.Skipped++
			default:
				result.Indexed++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, ctx.Err()
}

// ScanFile re-indexes a single file, for incremental updates.
func (s *Scanner) ScanFile(filename string) error {
	skipped, err := s.indexOne(filename)
	if err != nil {
		return err
	}
	if skipped {
		return errors.Errorf("file %q exceeds size limit", filename)
	}
	return nil
}

// Remove retracts a deleted file's contributions.
func (s *Scanner) Remove(filename string) {
	s.idx.RemoveFile(filename)
}

func (s *Scanner) indexOne(filename string) (skipped bool, err error) {
	info, err := os.Stat(filename)
	if err != nil {
		return false, errors.Wrap(err, "stat")
	}
	if info.Size() > s.opts.MaxFileSize {
		s.log.Debug().Str("file", filename).Int64("size", info.Size()).Msg("skipping oversized file")
		return true, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return false, errors.Wrap(err, "read")
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	s.idx.IndexFile(filename, lines)
	return false, nil
}

// discover walks one root and returns every indexable file, honoring
// the ignored-directory setting. A missing root yields nothing; any
// other walk error aborts discovery for that root.
func (s *Scanner) discover(ctx context.Context, root string) ([]string, error) {
	ignored := make(map[string]bool, len(s.opts.IgnoredDirs))
	for _, dir := range s.opts.IgnoredDirs {
		ignored[dir] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root && os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if ignored[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == FileExt {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %q", root)
	}
	return files, nil
}

// Ignored reports whether filename sits under an ignored directory of
// any root.
func (s *Scanner) Ignored(filename string) bool {
	for _, dir := range s.opts.IgnoredDirs {
		for _, part := range strings.Split(filepath.ToSlash(filename), "/") {
			if part == dir {
				return true
			}
		}
	}
	return false
}

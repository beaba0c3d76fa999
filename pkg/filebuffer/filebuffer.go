// Package filebuffer holds file contents with a newline offset table,
// so byte offsets and line/column positions convert cheaply in both
// directions.
package filebuffer

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

type sourcesKey struct{}

func WithSources(ctx context.Context, sources *Sources) context.Context {
	return context.WithValue(ctx, sourcesKey{}, sources)
}

func SourcesFrom(ctx context.Context) *Sources {
	sources, ok := ctx.Value(sourcesKey{}).(*Sources)
	if !ok {
		return NewSources()
	}
	return sources
}

// Sources is a lookup of file buffers by filename, shared through a
// context so diagnostics can render source excerpts for any file that
// was read during a scan.
type Sources struct {
	fbs map[string]*FileBuffer
	mu  sync.Mutex
}

func NewSources() *Sources {
	return &Sources{
		fbs: make(map[string]*FileBuffer),
	}
}

func (s *Sources) Get(filename string) *FileBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fbs[filename]
}

func (s *Sources) Set(filename string, fb *FileBuffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fbs[filename] = fb
}

func (s *Sources) Delete(filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fbs, filename)
}

// FileBuffer accumulates file content and records the byte offset of
// every newline as it is written.
type FileBuffer struct {
	filename string
	buf      bytes.Buffer
	offset   int
	offsets  []int
	mu       sync.Mutex
}

func New(filename string) *FileBuffer {
	return &FileBuffer{filename: filename}
}

func (fb *FileBuffer) Filename() string {
	return fb.filename
}

func (fb *FileBuffer) Bytes() []byte {
	return fb.buf.Bytes()
}

// NumLines counts the lines in the buffer, including a trailing line
// without a newline.
func (fb *FileBuffer) NumLines() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n := len(fb.offsets)
	if fb.offset > 0 && (n == 0 || fb.offsets[n-1] != fb.offset-1) {
		n++
	}
	return n
}

func (fb *FileBuffer) Write(p []byte) (n int, err error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	n, err = fb.buf.Write(p)

	start := 0
	index := bytes.IndexByte(p[:n], byte('\n'))
	for index >= 0 {
		fb.offsets = append(fb.offsets, fb.offset+start+index)
		start += index + 1
		index = bytes.IndexByte(p[start:n], byte('\n'))
	}
	fb.offset += n

	return n, err
}

// Position converts a zero-based line and column to a lexer.Position
// carrying the absolute byte offset.
func (fb *FileBuffer) Position(line, column int) lexer.Position {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	offset := column
	if line > 0 && line-1 < len(fb.offsets) {
		offset = fb.offsets[line-1] + 1 + column
	}
	return lexer.Position{
		Filename: fb.filename,
		Offset:   offset,
		Line:     line + 1,
		Column:   column + 1,
	}
}

// Line returns the content of the zero-based line without its newline.
func (fb *FileBuffer) Line(ln int) (string, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if ln < 0 {
		return "", errors.Errorf("line %d out of range", ln)
	}

	start := 0
	if ln > 0 {
		if ln-1 >= len(fb.offsets) {
			return "", errors.Errorf("line %d out of range", ln)
		}
		start = fb.offsets[ln-1] + 1
	}

	end := fb.buf.Len()
	if ln < len(fb.offsets) {
		end = fb.offsets[ln]
	}
	if start > end {
		return "", errors.Errorf("line %d out of range", ln)
	}
	return string(fb.buf.Bytes()[start:end]), nil
}

// LineAt returns the zero-based line containing the byte offset.
func (fb *FileBuffer) LineAt(offset int) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	return sort.Search(len(fb.offsets), func(i int) bool {
		return fb.offsets[i] >= offset
	})
}

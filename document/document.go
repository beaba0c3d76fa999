// Package document tracks open documents and caches per-line
// tokenization results. The cache is purely a performance front-end
// over the tokenizer: dropping it at any point is always safe, since a
// cold parse of an unchanged line yields the same tokens as a warm one.
package document

import (
	"strings"
	"time"

	"github.com/openmcf/mcfls/parser"
)

// entry is one cached line parse.
type entry struct {
	tokens   []parser.Token
	parsedAt time.Time

	// seq orders entries by parse time for oldest-first eviction
	// without comparing timestamps (which can collide).
	seq uint64
}

// Document owns the text and the line-token cache of one open file.
type Document struct {
	uri          string
	lines        []string
	cache        map[int]*entry
	lastAccessed time.Time
}

// URI returns the document's identifier.
func (d *Document) URI() string {
	return d.uri
}

// NumLines returns the current number of lines in the document.
func (d *Document) NumLines() int {
	return len(d.lines)
}

// Line returns the raw text of a zero-based line.
func (d *Document) Line(n int) (string, bool) {
	if n < 0 || n >= len(d.lines) {
		return "", false
	}
	return d.lines[n], true
}

// Lines returns a copy of the document's lines.
func (d *Document) Lines() []string {
	return append([]string(nil), d.lines...)
}

// splitLines normalizes line endings: documents arrive with either \n
// or \r\n, and tokens must never include the \r.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

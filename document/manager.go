package document

import (
	"sync"
	"time"

	"github.com/openmcf/mcfls/parser"
)

// Options bounds the cache. Zero values take the defaults.
type Options struct {
	// MaxDocuments caps tracked documents; the least recently
	// accessed document is dropped on overflow.
	MaxDocuments int

	// MaxLinesPerDocument caps cached line entries per document; the
	// oldest-parsed entry is evicted on overflow.
	MaxLinesPerDocument int

	// TTL is a wall-clock backstop: entries older than this are
	// re-parsed on access even if the line never changed.
	TTL time.Duration
}

const (
	defaultMaxDocuments = 32
	defaultMaxLines     = 2048
	defaultTTL          = 5 * time.Minute
)

// Manager owns every tracked document and serves cached tokenization.
type Manager struct {
	opts Options

	mu   sync.Mutex
	docs map[string]*Document
	seq  uint64
	now  func() time.Time
}

func NewManager(opts Options) *Manager {
	if opts.MaxDocuments <= 0 {
		opts.MaxDocuments = defaultMaxDocuments
	}
	if opts.MaxLinesPerDocument <= 0 {
		opts.MaxLinesPerDocument = defaultMaxLines
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	return &Manager{
		opts: opts,
		docs: make(map[string]*Document),
		now:  time.Now,
	}
}

// Open starts tracking a document, replacing any previous state for
// the same URI. Tracking more documents than the cap drops the least
// recently accessed one.
func (m *Manager) Open(uri, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.docs[uri] = &Document{
		uri:          uri,
		lines:        splitLines(text),
		cache:        make(map[int]*entry),
		lastAccessed: m.now(),
	}
	for len(m.docs) > m.opts.MaxDocuments {
		m.evictColdestLocked(uri)
	}
}

// Replace swaps the full text of a tracked document, invalidating its
// whole cache (full-sync edits carry no range information).
func (m *Manager) Replace(uri, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := m.docs[uri]
	if d == nil {
		return
	}
	d.lines = splitLines(text)
	d.cache = make(map[int]*entry)
	d.lastAccessed = m.now()
}

// Edit replaces the line range [startLine, endLine] with newLines.
// Cached entries inside the range are invalidated; entries below the
// range are re-keyed by the line-count delta rather than dropped, so
// an edit near the top of a large document does not throw away every
// downstream parse. The cost is proportional to the number of cached
// entries past the edit, never to document size.
func (m *Manager) Edit(uri string, startLine, endLine int, newLines []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := m.docs[uri]
	if d == nil {
		return
	}
	if startLine < 0 {
		startLine = 0
	}
	if endLine >= len(d.lines) {
		endLine = len(d.lines) - 1
	}
	if endLine < startLine {
		return
	}

	replaced := endLine - startLine + 1
	delta := len(newLines) - replaced

	lines := make([]string, 0, len(d.lines)+delta)
	lines = append(lines, d.lines[:startLine]...)
	lines = append(lines, newLines...)
	lines = append(lines, d.lines[endLine+1:]...)
	d.lines = lines

	shifted := make(map[int]*entry, len(d.cache))
	for line, e := range d.cache {
		switch {
		case line < startLine:
			shifted[line] = e
		case line <= endLine:
			// Invalidated; edited lines re-parse on demand.
		default:
			shifted[line+delta] = e
		}
	}
	d.cache = shifted
	d.lastAccessed = m.now()
}

// Close drops the document and its entire cache slot.
func (m *Manager) Close(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, uri)
}

// Rename re-keys a tracked document.
func (m *Manager) Rename(oldURI, newURI string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.docs[oldURI]
	if d == nil {
		return
	}
	delete(m.docs, oldURI)
	d.uri = newURI
	m.docs[newURI] = d
}

// GetTokens returns the tokenization of one line, populating the cache
// on miss or on TTL expiry. The second return is false when the
// document is untracked or the line is out of range.
func (m *Manager) GetTokens(uri string, line int) ([]parser.Token, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := m.docs[uri]
	if d == nil || line < 0 || line >= len(d.lines) {
		return nil, false
	}
	now := m.now()
	d.lastAccessed = now

	if e, ok := d.cache[line]; ok && now.Sub(e.parsedAt) < m.opts.TTL {
		return e.tokens, true
	}

	tokens := parser.Tokenize(d.lines[line])
	m.seq++
	d.cache[line] = &entry{tokens: tokens, parsedAt: now, seq: m.seq}
	for len(d.cache) > m.opts.MaxLinesPerDocument {
		evictOldestLine(d)
	}
	return tokens, true
}

// Segments returns the raw token values of one line; this is the
// cached tokenization entry point for consumers that only care about
// text, not offsets.
func (m *Manager) Segments(uri string, line int) []string {
	tokens, ok := m.GetTokens(uri, line)
	if !ok {
		return nil
	}
	return parser.Values(tokens)
}

// Get returns the tracked document for uri.
func (m *Manager) Get(uri string) (*Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[uri]
	if ok {
		d.lastAccessed = m.now()
	}
	return d, ok
}

// Tracked lists the URIs of all tracked documents.
func (m *Manager) Tracked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	uris := make([]string, 0, len(m.docs))
	for uri := range m.docs {
		uris = append(uris, uri)
	}
	return uris
}

// evictColdestLocked drops the least recently accessed document other
// than keep. Callers hold m.mu.
func (m *Manager) evictColdestLocked(keep string) {
	var (
		coldest     string
		coldestTime time.Time
		found       bool
	)
	for uri, d := range m.docs {
		if uri == keep {
			continue
		}
		if !found || d.lastAccessed.Before(coldestTime) {
			coldest, coldestTime, found = uri, d.lastAccessed, true
		}
	}
	if found {
		delete(m.docs, coldest)
	}
}

func evictOldestLine(d *Document) {
	var (
		oldest int
		minSeq uint64
		found  bool
	)
	for line, e := range d.cache {
		if !found || e.seq < minSeq {
			oldest, minSeq, found = line, e.seq, true
		}
	}
	if found {
		delete(d.cache, oldest)
	}
}

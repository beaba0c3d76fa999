// Package index maintains the workspace-wide symbol tables: scoreboard
// definitions, entity tags, and the function call graph. Entries are
// reference counted by declaring line; a symbol with no remaining
// declaring line anywhere in the workspace does not exist.
package index

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/openmcf/mcfls/resource"
)

// Scoreboard is a named numeric objective declared by one or more
// "scoreboard objectives add" lines.
type Scoreboard struct {
	Name        string
	Criterion   string
	DisplayName string

	// DefinedIn is the file whose declaration most recently updated
	// the entry.
	DefinedIn string

	// Refs counts live declaring lines across the workspace.
	Refs int
}

// Tag is a named entity marker declared by "scoreboard players tag
// ... add" lines.
type Tag struct {
	Name string
	Refs int
}

// fileState remembers, per line, what a file has contributed, keyed by
// zero-based line number. It exists so re-indexing a line retracts its
// previous contribution first: at most one contribution per (file,
// line) is ever live.
type fileState struct {
	contribs map[int]contribution
}

// Index owns the three global tables. All mutation goes through it.
type Index struct {
	mu         sync.RWMutex
	classifier classifier

	scoreboards map[string]*Scoreboard
	tags        map[string]*Tag
	files       map[string]*fileState

	// referencedBy maps a canonical call target to the files and
	// lines that call it. Kept consistent with the per-file
	// contributions at all times; targets may be referenced before
	// they exist on disk.
	referencedBy map[string]map[string][]int

	log zerolog.Logger
}

func New(resolver *resource.Resolver, log zerolog.Logger) *Index {
	return &Index{
		classifier:   classifier{resolver: resolver},
		scoreboards:  make(map[string]*Scoreboard),
		tags:         make(map[string]*Tag),
		files:        make(map[string]*fileState),
		referencedBy: make(map[string]map[string][]int),
		log:          log,
	}
}

// IndexLine re-indexes a single line of a file, retracting whatever
// the same (file, line) contributed before.
func (ix *Index) IndexLine(file string, line int, text string) {
	contrib := ix.classifier.classify(text)

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.setContribution(file, line, contrib)
}

// IndexFile (re-)indexes a whole file. Lines beyond the new length
// have their contributions retracted, so shrinking edits cannot leave
// stale entries behind.
func (ix *Index) IndexFile(file string, lines []string) {
	contribs := make([]contribution, len(lines))
	for i, text := range lines {
		contribs[i] = ix.classifier.classify(text)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if fs := ix.files[file]; fs != nil {
		for line := range fs.contribs {
			if line >= len(lines) {
				ix.retract(file, line, fs.contribs[line])
				delete(fs.contribs, line)
			}
		}
	}
	for i, contrib := range contribs {
		ix.setContribution(file, i, contrib)
	}
}

// RemoveFile retracts every contribution the file made and forgets it.
func (ix *Index) RemoveFile(file string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	fs := ix.files[file]
	if fs == nil {
		return
	}
	for line, contrib := range fs.contribs {
		ix.retract(file, line, contrib)
	}
	delete(ix.files, file)
}

// RenameFile moves a file's contributions to a new name without
// touching reference counts.
func (ix *Index) RenameFile(oldFile, newFile string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	fs := ix.files[oldFile]
	if fs == nil {
		return
	}
	delete(ix.files, oldFile)
	ix.files[newFile] = fs

	for _, callers := range ix.referencedBy {
		if lines, ok := callers[oldFile]; ok {
			delete(callers, oldFile)
			callers[newFile] = lines
		}
	}
	for _, sb := range ix.scoreboards {
		if sb.DefinedIn == oldFile {
			sb.DefinedIn = newFile
		}
	}
}

// setContribution replaces the live contribution for (file, line).
// Callers hold ix.mu.
func (ix *Index) setContribution(file string, line int, contrib contribution) {
	fs := ix.files[file]
	if fs == nil {
		if contrib.kind == contribNone {
			return
		}
		fs = &fileState{contribs: make(map[int]contribution)}
		ix.files[file] = fs
	}

	if prev, ok := fs.contribs[line]; ok {
		if prev == contrib {
			return
		}
		ix.retract(file, line, prev)
	}
	if contrib.kind == contribNone {
		delete(fs.contribs, line)
		return
	}
	fs.contribs[line] = contrib
	ix.apply(file, line, contrib)
}

func (ix *Index) apply(file string, line int, contrib contribution) {
	switch contrib.kind {
	case contribScoreboard:
		sb := ix.scoreboards[contrib.name]
		if sb == nil {
			sb = &Scoreboard{Name: contrib.name}
			ix.scoreboards[contrib.name] = sb
		}
		sb.Refs++
		sb.Criterion = contrib.criterion
		sb.DisplayName = contrib.displayName
		sb.DefinedIn = file

	case contribTag:
		tag := ix.tags[contrib.name]
		if tag == nil {
			tag = &Tag{Name: contrib.name}
			ix.tags[contrib.name] = tag
		}
		tag.Refs++

	case contribCall:
		callers := ix.referencedBy[contrib.name]
		if callers == nil {
			callers = make(map[string][]int)
			ix.referencedBy[contrib.name] = callers
		}
		lines := callers[file]
		i := sort.SearchInts(lines, line)
		if i < len(lines) && lines[i] == line {
			return
		}
		lines = append(lines, 0)
		copy(lines[i+1:], lines[i:])
		lines[i] = line
		callers[file] = lines
	}
}

// retract undoes one previously applied contribution. Reference counts
// are clamped at zero: an underflow indicates a bookkeeping bug, so it
// is logged and the entry deleted rather than left negative.
func (ix *Index) retract(file string, line int, contrib contribution) {
	switch contrib.kind {
	case contribScoreboard:
		sb := ix.scoreboards[contrib.name]
		if sb == nil {
			ix.log.Warn().Str("scoreboard", contrib.name).Msg("retract of unknown scoreboard")
			return
		}
		sb.Refs--
		if sb.Refs <= 0 {
			delete(ix.scoreboards, contrib.name)
		}

	case contribTag:
		tag := ix.tags[contrib.name]
		if tag == nil {
			ix.log.Warn().Str("tag", contrib.name).Msg("retract of unknown tag")
			return
		}
		tag.Refs--
		if tag.Refs <= 0 {
			delete(ix.tags, contrib.name)
		}

	case contribCall:
		callers := ix.referencedBy[contrib.name]
		if callers == nil {
			return
		}
		lines := callers[file]
		i := sort.SearchInts(lines, line)
		if i < len(lines) && lines[i] == line {
			lines = append(lines[:i], lines[i+1:]...)
		}
		if len(lines) == 0 {
			delete(callers, file)
		} else {
			callers[file] = lines
		}
		if len(callers) == 0 {
			delete(ix.referencedBy, contrib.name)
		}
	}
}

// LookupScoreboard returns a copy of the named scoreboard entry.
func (ix *Index) LookupScoreboard(name string) (Scoreboard, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	sb := ix.scoreboards[name]
	if sb == nil {
		return Scoreboard{}, false
	}
	return *sb, true
}

// Scoreboards lists all entries sorted by name.
func (ix *Index) Scoreboards() []Scoreboard {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]Scoreboard, 0, len(ix.scoreboards))
	for _, sb := range ix.scoreboards {
		out = append(out, *sb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupTag returns a copy of the named tag entry.
func (ix *Index) LookupTag(name string) (Tag, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	tag := ix.tags[name]
	if tag == nil {
		return Tag{}, false
	}
	return *tag, true
}

// Tags lists all entries sorted by name.
func (ix *Index) Tags() []Tag {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]Tag, 0, len(ix.tags))
	for _, tag := range ix.tags {
		out = append(out, *tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ReferencesTo returns the callers of a function resource as a map of
// file to sorted line numbers. The name may be in any form the
// resolver accepts; it is canonicalized first.
func (ix *Index) ReferencesTo(name string) map[string][]int {
	ref, ok := ix.classifier.resolver.Resolve(name)
	if !ok {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	callers := ix.referencedBy[ref.String()]
	if len(callers) == 0 {
		return nil
	}
	out := make(map[string][]int, len(callers))
	for file, lines := range callers {
		out[file] = append([]int(nil), lines...)
	}
	return out
}

// Dispatches returns the call targets of a file as a map of line
// number to canonical target reference.
func (ix *Index) Dispatches(file string) map[int]string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	fs := ix.files[file]
	if fs == nil {
		return nil
	}
	out := make(map[int]string)
	for line, contrib := range fs.contribs {
		if contrib.kind == contribCall {
			out[line] = contrib.name
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Files lists every indexed file, sorted.
func (ix *Index) Files() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.files))
	for file := range ix.files {
		out = append(out, file)
	}
	sort.Strings(out)
	return out
}

// CallTargets lists every canonical function reference that at least
// one line calls, sorted. Targets need not exist on disk.
func (ix *Index) CallTargets() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.referencedBy))
	for target := range ix.referencedBy {
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}

// Stats summarizes table sizes, mainly for the scan CLI and logging.
type Stats struct {
	Files       int
	Scoreboards int
	Tags        int
	CallTargets int
	CallEdges   int
}

func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	stats := Stats{
		Files:       len(ix.files),
		Scoreboards: len(ix.scoreboards),
		Tags:        len(ix.tags),
		CallTargets: len(ix.referencedBy),
	}
	for _, callers := range ix.referencedBy {
		for _, lines := range callers {
			stats.CallEdges += len(lines)
		}
	}
	return stats
}

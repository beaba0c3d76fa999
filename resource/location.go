package resource

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Location is a candidate file position for a resource.
type Location struct {
	Filename string
	Ref      Reference
	Kind     Kind
}

// Path maps a reference to its conventional file path under one
// workspace root: <root>/data/<namespace>/<kind dir>/<path><ext>.
func Path(root string, ref Reference, kind Kind) string {
	return filepath.Join(root, "data", ref.Namespace, kind.Dir(), filepath.FromSlash(ref.Path)+kind.Ext())
}

// Finder answers existence and location queries against a set of
// workspace roots. The first root is the primary one: it alone is used
// when constructing a canonical write-target location.
type Finder struct {
	resolver *Resolver
	roots    []string
	log      zerolog.Logger
}

func NewFinder(resolver *Resolver, roots []string, log zerolog.Logger) *Finder {
	return &Finder{resolver: resolver, roots: roots, log: log}
}

// BuildLocation returns the canonical location for name under the
// primary root, whether or not the file exists yet. It returns false
// for invalid references or when no roots are open.
func (f *Finder) BuildLocation(name string, kind Kind) (Location, bool) {
	ref, ok := f.resolver.Resolve(name)
	if !ok || len(f.roots) == 0 {
		return Location{}, false
	}
	return Location{
		Filename: Path(f.roots[0], ref, kind),
		Ref:      ref,
		Kind:     kind,
	}, true
}

// Exists checks all roots concurrently and reports true as soon as any
// root confirms the file, without waiting for the rest. Stat failures
// count as absence for that root only.
func (f *Finder) Exists(ctx context.Context, name string, kind Kind) bool {
	ref, ok := f.resolver.Resolve(name)
	if !ok {
		return false
	}

	hits := make(chan bool, len(f.roots))
	for _, root := range f.roots {
		go func(filename string) {
			info, err := os.Stat(filename)
			if err != nil {
				if !os.IsNotExist(err) {
					f.log.Debug().Err(err).Str("file", filename).Msg("stat failed")
				}
				hits <- false
				return
			}
			hits <- !info.IsDir()
		}(Path(root, ref, kind))
	}

	for range f.roots {
		select {
		case <-ctx.Done():
			return false
		case hit := <-hits:
			if hit {
				return true
			}
		}
	}
	return false
}

// Find returns the location of the first root that actually contains
// the resource, falling back to nothing when absent everywhere.
func (f *Finder) Find(ctx context.Context, name string, kind Kind) (Location, bool) {
	ref, ok := f.resolver.Resolve(name)
	if !ok {
		return Location{}, false
	}
	for _, root := range f.roots {
		if ctx.Err() != nil {
			return Location{}, false
		}
		filename := Path(root, ref, kind)
		if info, err := os.Stat(filename); err == nil && !info.IsDir() {
			return Location{Filename: filename, Ref: ref, Kind: kind}, true
		}
	}
	return Location{}, false
}

// Roots returns the open workspace roots, primary first.
func (f *Finder) Roots() []string {
	return f.roots
}

// FromPath inverts Path: it maps a file under one of the roots back to
// its reference and kind. Files outside every root, outside a data
// directory, or with the wrong extension for their kind return false.
func FromPath(roots []string, filename string) (Reference, Kind, bool) {
	for _, root := range roots {
		rel, err := filepath.Rel(root, filename)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 4 || parts[0] != "data" {
			continue
		}
		var kind Kind
		switch parts[2] {
		case KindFunction.Dir():
			kind = KindFunction
		case KindAdvancement.Dir():
			kind = KindAdvancement
		default:
			continue
		}
		path := strings.Join(parts[3:], "/")
		if !strings.HasSuffix(path, kind.Ext()) {
			continue
		}
		return Reference{
			Namespace: parts[1],
			Path:      strings.TrimSuffix(path, kind.Ext()),
		}, kind, true
	}
	return Reference{}, 0, false
}

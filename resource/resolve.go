// Package resource resolves namespaced resource references of the form
// "namespace:path" to concrete file locations under one or more
// workspace roots.
package resource

import (
	"strings"
	"sync"
	"time"
)

// DefaultNamespace is assumed when a reference carries no namespace.
const DefaultNamespace = "minecraft"

// parseTTL bounds how long a parsed reference stays cached. The same
// reference string recurs many times per editing session; parsing is
// pure, so a short TTL only bounds memory.
const parseTTL = 5 * time.Second

// Reference is a parsed resource name. Path always uses forward
// slashes, regardless of host platform.
type Reference struct {
	Namespace string
	Path      string
}

func (r Reference) String() string {
	return r.Namespace + ":" + r.Path
}

// Kind distinguishes the resource directory conventions.
type Kind int

const (
	KindFunction Kind = iota
	KindAdvancement
)

// Dir is the per-namespace data subdirectory holding this kind.
func (k Kind) Dir() string {
	if k == KindAdvancement {
		return "advancements"
	}
	return "functions"
}

// Ext is the file extension for this kind.
func (k Kind) Ext() string {
	if k == KindAdvancement {
		return ".json"
	}
	return ".mcfunction"
}

type cachedRef struct {
	ref     Reference
	ok      bool
	expires time.Time
}

// Resolver parses resource references, caching parse results per
// distinct input string with a short TTL.
type Resolver struct {
	defaultNamespace string

	mu    sync.Mutex
	cache map[string]cachedRef
	now   func() time.Time
}

// NewResolver returns a Resolver using DefaultNamespace for bare paths.
func NewResolver() *Resolver {
	return &Resolver{
		defaultNamespace: DefaultNamespace,
		cache:            make(map[string]cachedRef),
		now:              time.Now,
	}
}

// WithDefaultNamespace overrides the namespace assumed for references
// without a colon.
func (r *Resolver) WithDefaultNamespace(ns string) *Resolver {
	if ns != "" {
		r.defaultNamespace = ns
	}
	return r
}

// Resolve parses name into a Reference. Only the first colon separates
// namespace from path; further colons belong to the path. A namespace
// or path that is empty after trimming makes the reference invalid.
func (r *Resolver) Resolve(name string) (Reference, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if c, ok := r.cache[name]; ok && now.Before(c.expires) {
		return c.ref, c.ok
	}

	ref, ok := parse(name, r.defaultNamespace)
	r.cache[name] = cachedRef{ref: ref, ok: ok, expires: now.Add(parseTTL)}

	// Lazy sweep keeps the cache from accumulating one entry per
	// keystroke of a long reference being typed.
	if len(r.cache) > 4096 {
		for k, c := range r.cache {
			if !now.Before(c.expires) {
				delete(r.cache, k)
			}
		}
	}
	return ref, ok
}

func parse(name, defaultNS string) (Reference, bool) {
	ns, path := defaultNS, name
	if i := strings.IndexByte(name, ':'); i >= 0 {
		ns, path = name[:i], name[i+1:]
	}
	ns = strings.TrimSpace(ns)
	path = strings.TrimSpace(path)
	if ns == "" || path == "" {
		return Reference{}, false
	}
	return Reference{Namespace: ns, Path: path}, true
}

// Package store holds the process-scoped, build-run-lifetime state shared by
// every pipeline stage: bundle group accumulators, include/inline content
// caches, and the loaded-plugin cache.
//
// The per-file loop is sequential today, so the store is never contended, but
// all access is guarded the same way the plugin registry guards its maps; a
// future parallel loop must not have to retrofit synchronization.
package store

import (
	"sync"
)

// Kind is the asset kind of a bundle group.
type Kind string

const (
	KindCSS Kind = "css"
	KindJS  Kind = "js"
)

// Extension returns the output file extension for the kind.
func (k Kind) Extension() string { return string(k) }

// Entry is one accumulated bundle member. Minify is false when the
// referencing tag was explicitly marked as pre-minified (vendored code), so
// the concatenation step must skip re-minifying that entry only.
type Entry struct {
	Path   string
	Minify bool
}

// Store is created once at orchestrator start and lives for the entire run.
// It is never persisted to disk and never shared across build runs.
type Store struct {
	mu           sync.RWMutex
	bundleGroups map[Kind]map[string][]Entry
	includes     map[string]string
	inline       map[string]string
	plugins      map[string]any
}

// New creates an empty store for one build invocation.
func New() *Store {
	return &Store{
		bundleGroups: make(map[Kind]map[string][]Entry),
		includes:     make(map[string]string),
		inline:       make(map[string]string),
		plugins:      make(map[string]any),
	}
}

// AddBundleEntry appends an entry to the named group, preserving encounter
// order across all files processed so far. A (kind, group, path) triple is
// recorded at most once; re-adds from later pages are ignored and reported
// as false.
func (s *Store) AddBundleEntry(kind Kind, group string, e Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, ok := s.bundleGroups[kind]
	if !ok {
		groups = make(map[string][]Entry)
		s.bundleGroups[kind] = groups
	}
	for _, existing := range groups[group] {
		if existing.Path == e.Path {
			return false
		}
	}
	groups[group] = append(groups[group], e)
	return true
}

// BundleGroups returns a copy of the accumulated groups for a kind.
func (s *Store) BundleGroups(kind Kind) map[string][]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]Entry, len(s.bundleGroups[kind]))
	for group, entries := range s.bundleGroups[kind] {
		cp := make([]Entry, len(entries))
		copy(cp, entries)
		out[group] = cp
	}
	return out
}

// Kinds returns the asset kinds that accumulated at least one group.
func (s *Store) Kinds() []Kind {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kinds := make([]Kind, 0, len(s.bundleGroups))
	for k := range s.bundleGroups {
		kinds = append(kinds, k)
	}
	return kinds
}

// Include returns the cached content for a normalized include path.
func (s *Store) Include(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.includes[path]
	return content, ok
}

// PutInclude caches include content. Entries are write-once for the duration
// of a build run; a second put for the same path is a no-op.
func (s *Store) PutInclude(path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.includes[path]; exists {
		return
	}
	s.includes[path] = content
}

// Inline returns the cached content for a normalized inline-asset path.
func (s *Store) Inline(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.inline[path]
	return content, ok
}

// PutInline caches inline-asset content, write-once per run.
func (s *Store) PutInline(path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.inline[path]; exists {
		return
	}
	s.inline[path] = content
}

// Plugin returns a previously loaded plugin implementation by identifier.
func (s *Store) Plugin(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plugins[name]
	return p, ok
}

// PutPlugin caches a loaded plugin implementation by identifier.
func (s *Store) PutPlugin(name string, p any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plugins[name] = p
}

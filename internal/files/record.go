// Package files holds the per-file unit of work and the path logic shared by
// the pipeline: discovery ordering, directory conversion, and page-name
// derivation for navigation state.
package files

import (
	"path"
	"strings"
)

// Record is the per-file unit of work flowing through the pipeline. Source is
// the sole channel by which stages communicate: every stage reads the current
// Source and, if it mutates the document, writes the new serialization back
// before returning.
type Record struct {
	Path      string // dist-relative, slash-separated
	Name      string // file name without extension
	Extension string // extension without the dot; empty means non-transformable
	Source    string
	IsDynamic bool // content originates from in-memory data, not disk
}

// NewRecord creates a record for a statically discovered file.
func NewRecord(relPath string) *Record {
	r := &Record{Path: normalizeRel(relPath)}
	r.deriveNames()
	return r
}

// NewDynamicRecord creates a record for an in-memory page. Dynamic paths have
// no on-disk .html suffix to split on, so one is appended before derivation.
func NewDynamicRecord(relPath, source string) *Record {
	p := normalizeRel(relPath)
	if path.Ext(p) == "" {
		p += ".html"
	}
	r := &Record{Path: p, Source: source, IsDynamic: true}
	r.deriveNames()
	return r
}

func (r *Record) deriveNames() {
	base := path.Base(r.Path)
	ext := path.Ext(base)
	r.Name = strings.TrimSuffix(base, ext)
	r.Extension = strings.TrimPrefix(ext, ".")
}

// Transformable reports whether the record is eligible for document stages.
func (r *Record) Transformable() bool {
	return r.Extension == "html"
}

func normalizeRel(p string) string {
	p = strings.TrimPrefix(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")
	return p
}

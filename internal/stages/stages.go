// Package stages implements the per-file document-mutating stages of the
// build pipeline. Every stage follows the same contract: read the current
// file source, mutate the parsed document, and write the new serialization
// back to the record before returning. Stages surface unexpected errors to
// the orchestrator; they never swallow them.
package stages

import (
	"context"

	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

// Stage applies one transformation to a file record.
type Stage interface {
	Name() string
	Run(ctx context.Context, f *files.Record, st *store.Store) error
}

// invalidAttrTargets are elements that cannot carry visible attributes, so
// marker attributes are never copied onto them.
var invalidAttrTargets = map[string]struct{}{
	"base": {}, "link": {}, "meta": {}, "noscript": {},
	"script": {}, "style": {}, "template": {}, "title": {},
}

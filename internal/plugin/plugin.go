// Package plugin defines the custom per-file plugin contract and the registry
// that resolves plugin identifiers to loaded implementations.
package plugin

import (
	"context"

	"git.home.luguber.info/inful/sitepress/internal/files"
)

// Context is the data handed to a plugin for one file. Plugins mutate
// file.Source like any other stage.
type Context struct {
	File *files.Record
	Data map[string]any
}

// Plugin is a loadable unit run once per file before the built-in stages.
// A returned error is fatal for the whole build, reported with the plugin's
// identifier attached.
type Plugin interface {
	Name() string
	Run(ctx context.Context, pc *Context) error
}

// Factory produces a plugin implementation. Resolution happens once per build
// run; the orchestrator caches the result in the shared build store.
type Factory func() (Plugin, error)

// Func adapts a plain function to the Plugin interface.
type Func struct {
	PluginName string
	RunFunc    func(ctx context.Context, pc *Context) error
}

func (f Func) Name() string { return f.PluginName }

func (f Func) Run(ctx context.Context, pc *Context) error {
	return f.RunFunc(ctx, pc)
}

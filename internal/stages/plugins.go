package stages

import (
	"context"

	sperrors "git.home.luguber.info/inful/sitepress/internal/errors"
	"git.home.luguber.info/inful/sitepress/internal/files"
	"git.home.luguber.info/inful/sitepress/internal/plugin"
	"git.home.luguber.info/inful/sitepress/internal/store"
)

// Plugins runs the configured custom plugins against each file, ahead of the
// built-in stages. Implementations are resolved from the registry on first
// use and cached in the shared store for the rest of the run.
type Plugins struct {
	Registry *plugin.Registry
	Names    []string
	Data     map[string]any
}

func (s *Plugins) Name() string { return "plugins" }

func (s *Plugins) Run(ctx context.Context, f *files.Record, st *store.Store) error {
	for _, name := range s.Names {
		p, err := s.load(name, st)
		if err != nil {
			return err
		}
		if err := p.Run(ctx, &plugin.Context{File: f, Data: s.Data}); err != nil {
			return sperrors.WrapFatal(err, sperrors.CategoryPlugin, "plugin failed").WithContext("plugin", name)
		}
	}
	return nil
}

func (s *Plugins) load(name string, st *store.Store) (plugin.Plugin, error) {
	if cached, ok := st.Plugin(name); ok {
		if p, ok := cached.(plugin.Plugin); ok {
			return p, nil
		}
	}
	p, err := s.Registry.Resolve(name)
	if err != nil {
		return nil, sperrors.WrapFatal(err, sperrors.CategoryPlugin, "resolving plugin").WithContext("plugin", name)
	}
	st.PutPlugin(name, p)
	return p, nil
}

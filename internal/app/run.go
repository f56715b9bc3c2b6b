package app

import (
	"context"
	"fmt"

	"github.com/vk/assetgrid/internal/bodyclass"
	"github.com/vk/assetgrid/internal/contextfile"
	"github.com/vk/assetgrid/internal/ctxlog"
	"github.com/vk/assetgrid/internal/manifest"
	"github.com/vk/assetgrid/internal/render"
	"github.com/vk/assetgrid/internal/snapshot"
)

// Snapshot builds the request context from the configured file and
// overrides.
func (a *App) Snapshot(ctx context.Context) (*snapshot.Context, error) {
	logger := ctxlog.FromContext(ctx)

	base := snapshot.Empty()
	if a.config.ContextPath != "" {
		loaded, err := contextfile.Load(a.config.ContextPath)
		if err != nil {
			return nil, err
		}
		base = loaded
		logger.Debug("Context file loaded.", "path", a.config.ContextPath)
	}
	if a.config.Overrides.Empty() {
		return base, nil
	}
	return contextfile.Apply(base, a.config.Overrides), nil
}

// Resolve writes the manifest for the configured context.
func (a *App) Resolve(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Resolve started.")

	c, err := a.Snapshot(ctx)
	if err != nil {
		return err
	}

	m, err := a.registry.Resolve(c)
	if err != nil {
		return fmt.Errorf("failed to resolve manifest: %w", err)
	}
	fingerprint, err := m.Fingerprint()
	if err != nil {
		return err
	}
	a.logger.Info("Manifest resolved.",
		"page", c.Page(),
		"scripts", len(m.Filter(manifest.Script)),
		"styles", len(m.Filter(manifest.Style)),
		"fingerprint", fingerprint,
	)

	return render.Write(a.outW, m, render.Options{Format: a.config.Output, Query: a.config.Query})
}

// Classes writes the body classes for the configured context.
func (a *App) Classes(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Classes started.")

	c, err := a.Snapshot(ctx)
	if err != nil {
		return err
	}

	classes := bodyclass.Evaluate(a.registry.Derive(c), a.catalog.BodyClassRules()...)
	if classes == nil {
		a.logger.Info("Body classes suppressed.", "page", c.Page())
	} else {
		a.logger.Info("Body classes computed.", "page", c.Page(), "count", len(classes))
	}

	return render.WriteList(a.outW, classes, a.config.Output)
}

// Validate resolves against a blank context and the configured one, and
// reports the catalog's size. Load-time checks have already run in NewApp.
func (a *App) Validate(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Validate started.")

	if _, err := a.registry.Resolve(snapshot.Empty()); err != nil {
		return fmt.Errorf("catalog does not resolve: %w", err)
	}
	c, err := a.Snapshot(ctx)
	if err != nil {
		return err
	}
	if _, err := a.registry.Resolve(c); err != nil {
		return fmt.Errorf("catalog does not resolve: %w", err)
	}

	_, err = fmt.Fprintf(a.outW, "catalog OK: %d resources, %d derived values, %d body class rules\n",
		a.catalog.Len(), len(a.catalog.Derivations()), len(a.catalog.BodyClassRules()))
	return err
}

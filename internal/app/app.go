package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/assetgrid/internal/catalog"
	"github.com/vk/assetgrid/internal/ctxlog"
	"github.com/vk/assetgrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	catalog  *catalog.Catalog
	registry *registry.Registry
}

// NewApp is the constructor for the main application. Results are written
// to outW and logs to logW. It loads the catalog, registers every
// declaration and seals the registry. A catalog that fails to load or
// register is a fatal startup error, so NewApp panics.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	opts := catalog.Options{BaseURL: cfg.BaseURL, Version: cfg.Version, Debug: cfg.Debug}

	var (
		cat *catalog.Catalog
		err error
	)
	if len(cfg.CatalogPaths) == 0 {
		logger.Debug("No catalog paths given, using the built-in catalog.")
		cat, err = catalog.Builtin(ctx, opts)
	} else {
		cat, err = catalog.Load(ctx, opts, cfg.CatalogPaths...)
	}
	if err != nil {
		panic(fmt.Errorf("failed to load catalog: %w", err))
	}
	logger.Debug("Catalog loaded.", "resources", cat.Len())

	reg := registry.New()
	if err := cat.Register(reg); err != nil {
		panic(err)
	}
	if err := reg.Seal(); err != nil {
		panic(fmt.Errorf("failed to seal registry: %w", err))
	}
	logger.Debug("Registry sealed.", "nodes", reg.Len())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		catalog:  cat,
		registry: reg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Catalog returns the loaded catalog.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

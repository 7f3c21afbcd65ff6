package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/topoconst/internal/ctxlog"
	"github.com/vk/topoconst/internal/definition"
	"github.com/vk/topoconst/internal/registry"
)

// App encapsulates the pipeline's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	store  *definition.Store
	reg    *registry.Registry
}

// NewApp constructs a fully initialized App with its own isolated logger,
// loaded definition store, and correction-factor registry. Extra registry
// options are accepted so tests can inject instrumented helpers.
func NewApp(outW io.Writer, cfg *Config, regOpts ...registry.Option) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	store, err := definition.Load(ctx, cfg.DefinitionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions: %w", err)
	}

	reg := registry.New(registry.DefaultFundamentals(), regOpts...)
	logger.Debug("Registry constructed.", "corrections", len(reg.CorrectionNames()))

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		store:  store,
		reg:    reg,
	}, nil
}

// Store returns the loaded definition store. This is primarily for testing.
func (a *App) Store() *definition.Store {
	return a.store
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.reg
}

// Package app wires the loader, registry, graph core, diagnostics and
// exporter into one runnable session with an isolated logger.
package app

import (
	"io"
	"log/slog"

	"github.com/vk/gridplan/internal/cell"
	"github.com/vk/gridplan/internal/graph"
	"github.com/vk/gridplan/internal/hclgrid"
	"github.com/vk/gridplan/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle for one graph-construction session.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	graph    *graph.Graph
	registry *registry.Registry
	seeds    *cell.Bank
	loader   *hclgrid.Loader
}

// NewApp constructs a fully initialized App with its own logger and an
// empty session in the configured validation mode.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	mode := graph.ModeEager
	if cfg.Lazy {
		mode = graph.ModeLazy
	}
	g := graph.New(mode)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		graph:    g,
		registry: registry.New(g),
		seeds:    cell.NewBank(),
		loader:   hclgrid.NewLoader(),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Graph returns the application's graph session. This is primarily for testing.
func (a *App) Graph() *graph.Graph {
	return a.graph
}

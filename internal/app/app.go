// Package app assembles the gazetteer, the LLM client and the pipeline from
// configuration. The server and the CLI share it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/agenthands/geoparse/internal/config"
	"github.com/agenthands/geoparse/internal/core"
	"github.com/agenthands/geoparse/internal/core/gazetteer"
	"github.com/agenthands/geoparse/internal/driver"
	"github.com/agenthands/geoparse/internal/llm"
)

type App struct {
	Config   *config.Config
	Index    *gazetteer.Index
	Pipeline *core.Pipeline
	Logger   *slog.Logger

	// Driver is only connected for memgraph gazetteer sources.
	Driver driver.GraphDriver
}

// LoadConfig reads path (or CONFIG_PATH, or the default location), applies
// environment overrides and validates the result.
func LoadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	if strings.EqualFold(cfg.Gazetteer.Source, "memgraph") {
		d, err := driver.Connect(ctx, cfg.Memgraph)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Memgraph: %w", err)
		}
		a.Driver = d
	}

	started := time.Now()
	ix, err := gazetteer.Open(ctx, cfg.Gazetteer, a.Driver)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	stats := ix.Stats()
	logger.Info("gazetteer loaded",
		"source", cfg.Gazetteer.Source,
		"path", cfg.Gazetteer.Path,
		"cities", stats.Cities,
		"states", stats.States,
		"countries", stats.Countries,
		"skipped_rows", ix.Skipped(),
		"took", time.Since(started),
	)
	a.Index = ix

	var client llm.LLMClient
	if strings.EqualFold(cfg.Extraction.NER, "llm") {
		client, err = llm.NewClient(ctx, cfg.LLM)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
		}
	}

	p, err := core.NewFromConfig(cfg, ix, client, logger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.Pipeline = p
	return a, nil
}

func (a *App) Close(ctx context.Context) error {
	if a.Driver == nil {
		return nil
	}
	return a.Driver.Close(ctx)
}

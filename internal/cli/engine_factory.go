package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/cardflow"
	"github.com/aretw0/cardflow/pkg/adapters/process"
	"github.com/aretw0/cardflow/pkg/observability"
)

// Options holds the flags shared by every command that needs an engine.
type Options struct {
	Debug bool
	// Catalog is a directory of card descriptors. Empty means no catalog.
	Catalog string
	// ProcessCards is a YAML or JSON file declaring process-backed cards.
	ProcessCards string
	// Concurrency bounds parallel steps per run. Zero runs serially.
	Concurrency int
	Metrics     *observability.Metrics
}

// NewEngine initializes an engine with standard CLI conventions.
func NewEngine(opts Options, logger *slog.Logger) (*cardflow.Engine, error) {
	engineOpts := []cardflow.Option{
		cardflow.WithLogger(logger),
		cardflow.WithConcurrency(opts.Concurrency),
	}
	if opts.Debug {
		engineOpts = append(engineOpts, cardflow.WithLifecycleHooks(observability.LogHooks(logger)))
	}
	if opts.Metrics != nil {
		engineOpts = append(engineOpts, cardflow.WithMetrics(opts.Metrics))
	}

	if opts.ProcessCards != "" {
		configs, err := process.LoadConfig(opts.ProcessCards)
		if err != nil {
			return nil, err
		}
		runner := process.NewRunner(process.WithBaseDir(filepath.Dir(opts.ProcessCards)))
		cards, err := runner.Cards(configs)
		if err != nil {
			return nil, err
		}
		logger.Debug("process cards loaded", "path", opts.ProcessCards, "count", len(cards))
		engineOpts = append(engineOpts, cardflow.WithCards(cards...))
	}

	var (
		engine *cardflow.Engine
		err    error
	)
	if opts.Catalog != "" {
		engine, err = cardflow.Open(opts.Catalog, engineOpts...)
	} else {
		engine, err = cardflow.New(engineOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

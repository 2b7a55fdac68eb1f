package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/cardflow/internal/validator"
)

// RetryDelay is how long Watch waits before rebuilding an engine that failed to load.
var RetryDelay = 2 * time.Second

// Watch checks the graph at path, then checks it again every time the card
// catalog changes, until ctx is done. It returns ports.ErrWatchUnsupported
// after the first check when the engine has no watchable catalog.
func Watch(ctx context.Context, opts Options, path, format string, strict bool, logger *slog.Logger, report func(validator.Report)) error {
	for {
		engine, err := NewEngine(opts, logger)
		if err != nil {
			logger.Error("Engine initialization failed", "err", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(RetryDelay):
				continue
			}
		}

		iterCtx, cancel := context.WithCancel(ctx)
		changes, watchErr := engine.Watch(iterCtx)

		g, err := LoadGraph(engine, path, format, nil)
		if err != nil {
			logger.Error("Graph could not be loaded", "path", path, "err", err)
		} else {
			report(engine.Check(g, strict))
		}

		if watchErr != nil {
			cancel()
			return watchErr
		}

		select {
		case <-ctx.Done():
			cancel()
			return nil
		case id, ok := <-changes:
			cancel()
			if !ok {
				return nil
			}
			logger.Info("Change detected, reloading", "card", id)
			// Let the editor finish writing.
			time.Sleep(100 * time.Millisecond)
		}
	}
}

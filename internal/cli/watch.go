package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aretw0/triage/internal/config"
)

// WatchDebounce groups bursts of file events into one re-validation.
var WatchDebounce = 200 * time.Millisecond

// Watch validates the tree, then validates it again after every change to a
// node-per-file repository, until ctx is cancelled. A broken revision is
// reported and watching continues.
func (a *App) Watch(ctx context.Context, cfg config.Config, w io.Writer) error {
	events, err := a.Engine.Watch(ctx)
	if err != nil {
		return err
	}

	_ = Validate(cfg, w)
	fmt.Fprintf(w, "Watching %s for changes. Ctrl+C to stop.\n", cfg.Tree)

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
			timer = time.After(WatchDebounce)
		case <-timer:
			timer = nil
			a.Logger.Info("tree changed, validating", "tree", cfg.Tree)
			fmt.Fprintf(w, "\n[%s] change detected\n", time.Now().Format(time.TimeOnly))
			if err := Validate(cfg, w); err != nil {
				a.Logger.Warn("tree is invalid", "error", err)
			}
		}
	}
}

// Package scheduler drives watch mode: the same crawl run, repeated on an
// interval.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on each tick until ctx is canceled.
// Runs are sequential: a run that outlasts the interval pushes the next one
// back instead of overlapping it.
func Every(ctx context.Context, log *zap.SugaredLogger, interval time.Duration, name string, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	run := func() {
		if err := task(ctx); err != nil {
			log.Errorw("scheduled run failed", "task", name, "err", err)
		}
	}
	run()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}

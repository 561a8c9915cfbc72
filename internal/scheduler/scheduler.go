package scheduler

import (
	"context"
	"time"

	"shopkeywords-engine/internal/logger"
)

type Task func(ctx context.Context) error

// Every runs task once immediately and then on every tick of interval until
// ctx is done. Runs never overlap. A failing run is logged and the schedule
// carries on.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	if interval <= 0 {
		logger.Warn("[%s] not scheduled: interval=%s", name, interval)
		return
	}

	run := func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			logger.Error("[%s] error: %v", name, err)
			return
		}
		logger.Debug("[%s] ok dur_ms=%d", name, time.Since(start).Milliseconds())
	}

	run()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}

package remotejob

import (
	"context"
	"time"
)

// Clock supplies wall-clock time. A stepped implementation makes
// polling budgets and token minting deterministic in tests.
type Clock interface {
	Now() time.Time
}

// Sleeper waits between status queries. Implementations return early
// with ctx.Err() when ctx is canceled.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type systemSleeper struct{}

func (systemSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

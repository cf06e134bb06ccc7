package ports

import (
	"context"
	"math/rand"
	"time"
)

// DelayStrategy injects the processing-window work into the admission
// protocol. Production wiring uses NoDelay (the window is as short as the
// surrounding computation); load scenarios use RandomDelay so racing status
// changes become observable; tests use FixedDelay for determinism. The
// admission code path is identical in all three cases.
type DelayStrategy interface {
	// Wait blocks for the strategy's duration or until ctx is done.
	Wait(ctx context.Context)
}

// NoDelay returns immediately.
type NoDelay struct{}

func (NoDelay) Wait(context.Context) {}

// FixedDelay waits a constant duration.
type FixedDelay struct {
	D time.Duration
}

func (d FixedDelay) Wait(ctx context.Context) {
	sleep(ctx, d.D)
}

// RandomDelay waits a uniformly random duration in [Min, Max].
type RandomDelay struct {
	Min time.Duration
	Max time.Duration
}

func (d RandomDelay) Wait(ctx context.Context) {
	span := d.Max - d.Min
	if span < 0 {
		span = 0
	}
	sleep(ctx, d.Min+time.Duration(rand.Int63n(int64(span)+1)))
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

package fetch

import (
	"context"
	"math/rand/v2"
	"time"
)

// backoffDelay computes the delay before retry number attempt (1-based).
// The base component grows linearly with the attempt index and jitter
// adds up to one extra base unit, so the expected delay is strictly
// increasing across attempts while individual delays stay decorrelated.
func backoffDelay(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	jitter := time.Duration(rand.Int64N(int64(base) + 1))
	return time.Duration(attempt)*base + jitter
}

// randomDelay draws a duration uniformly from [min, max].
func randomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int64N(int64(max-min)+1))
}

// sleep blocks for d or until the context is done. It is the only
// waiting primitive in the fetch loop; there are no busy-waits.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package proxy6

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestDelay is the pause taken before every HTTP attempt. The
// provider rejects clients that exceed roughly one request per second.
const DefaultRequestDelay = time.Second

// A Pacer spaces out HTTP attempts made against the provider.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Pacer interface {
	// Delay reserves the next attempt slot and reports how long the caller
	// must wait before making the attempt.
	Delay() time.Duration
}

// FixedDelay returns a Pacer that waits d before every attempt. A zero or
// negative d disables pacing.
func FixedDelay(d time.Duration) Pacer {
	return fixedDelay(d)
}

type fixedDelay time.Duration

func (d fixedDelay) Delay() time.Duration {
	if d < 0 {
		return 0
	}
	return time.Duration(d)
}

// RateLimit returns a Pacer allowing at most requests attempts per interval,
// bursting up to requests.
func RateLimit(requests int, interval time.Duration) Pacer {
	if requests < 1 {
		requests = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Limit(float64(requests) / interval.Seconds())
	}
	return &limiterPacer{limiter: rate.NewLimiter(limit, requests)}
}

// LimiterPacer wraps an existing rate limiter
func LimiterPacer(l *rate.Limiter) Pacer {
	return &limiterPacer{limiter: l}
}

type limiterPacer struct {
	limiter *rate.Limiter
}

func (p *limiterPacer) Delay() time.Duration {
	d, _ := p.reserve()
	return d
}

func (p *limiterPacer) reserve() (time.Duration, func()) {
	r := p.limiter.Reserve()
	if !r.OK() {
		return 0, func() {}
	}
	return r.Delay(), r.Cancel
}

// reserver is implemented by pacers that can hand back an unused slot
type reserver interface {
	reserve() (time.Duration, func())
}

// pace waits for the pacer's next slot. If ctx ends first the slot is
// returned to the pacer when it supports that.
func pace(ctx context.Context, p Pacer) error {
	r, ok := p.(reserver)
	if !ok {
		return sleep(ctx, p.Delay())
	}
	d, cancel := r.reserve()
	if err := sleep(ctx, d); err != nil {
		cancel()
		return err
	}
	return nil
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package source

import (
	"context"
	"time"
)

// pacer stamps blocks with their position on a sample clock and, in real
// time mode, holds each block until its last sample would have arrived.
type pacer struct {
	rate     float64
	realtime bool
	start    time.Time
	sent     int64
}

func (p *pacer) clock(n int) time.Time {
	if p.start.IsZero() {
		p.start = time.Now()
	}
	p.sent += int64(n)
	return p.start.Add(time.Duration(float64(p.sent) / p.rate * float64(time.Second)))
}

// next advances the clock by n samples and returns the block's timestamp.
func (p *pacer) next(ctx context.Context, n int) (time.Time, error) {
	at := p.clock(n)
	if !p.realtime {
		return at, nil
	}
	d := time.Until(at)
	if d <= 0 {
		return at, nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return at, ctx.Err()
	case <-t.C:
		return at, nil
	}
}

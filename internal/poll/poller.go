// Package poll drives the client's refresh loops. One poller runs per
// active role; each tick issues a fixed battery of gateway calls and
// merges the responses into the store. Mutating actions kick the poller
// for an immediate out-of-band refresh instead of waiting out the
// interval.
package poll

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval matches the dashboard refresh cadence of the service.
const DefaultInterval = 5 * time.Second

// Poller runs a tick function on an interval until stopped. A kicked
// poller runs its next tick immediately; kicks are coalesced. The
// interval may be changed while running and applies from the next wait.
type Poller struct {
	tick func(context.Context)
	kick chan struct{}

	mu       sync.Mutex
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewPoller returns an idle poller. interval <= 0 uses DefaultInterval.
func NewPoller(interval time.Duration, tick func(context.Context)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		interval: interval,
		tick:     tick,
		kick:     make(chan struct{}, 1),
	}
}

// Start launches the loop. The first tick runs immediately. Starting a
// running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil {
			return
		}
		p.tick(ctx)

		timer := time.NewTimer(p.Interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-p.kick:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// Interval returns the current refresh cadence.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// SetInterval changes the cadence; it applies from the next wait.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultInterval
	}
	p.mu.Lock()
	p.interval = d
	p.mu.Unlock()
}

// Kick schedules an immediate tick. Safe on an idle poller; multiple
// kicks before the loop wakes collapse into one.
func (p *Poller) Kick() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Cancel stops the loop without waiting for the in-flight tick. Safe to
// call from inside the tick itself.
func (p *Poller) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Stop cancels the loop and waits for the in-flight tick to finish. Once
// Stop returns, no further gateway call will be issued by this poller.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

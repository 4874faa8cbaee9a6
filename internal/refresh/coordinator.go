// Package refresh implements the client-side polling contract for
// consumers of the leaderboard and ledger views: re-fetch on a fixed
// interval while visible, immediately on regaining visibility or focus,
// and never more often than the debounce floor allows.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/meritworks/meritboard/internal/clock"
	"go.uber.org/zap"
)

// Fetch re-reads whatever view the consumer is showing. A fetch still in
// flight when polling stops simply completes; the consumer discards its
// result.
type Fetch func(ctx context.Context) error

// Config controls polling cadence.
type Config struct {
	// Interval is the steady-state polling period while visible.
	Interval time.Duration
	// MinGap is the hard floor between two fetches, regardless of how
	// many triggers fire.
	MinGap time.Duration
}

// DefaultConfig returns the advertised refresh policy.
func DefaultConfig() Config {
	return Config{
		Interval: 30 * time.Second,
		MinGap:   5 * time.Second,
	}
}

// WithDefaults fills unset fields from the advertised policy.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()
	if c.Interval <= 0 {
		c.Interval = defaults.Interval
	}
	if c.MinGap <= 0 {
		c.MinGap = defaults.MinGap
	}
	return c
}

// Coordinator schedules fetches for one consumer context. It starts
// hidden; the consumer flips visibility as its context gains and loses
// focus.
type Coordinator struct {
	cfg   Config
	clock clock.Clock
	log   *zap.Logger
	fetch Fetch

	mu      sync.Mutex
	visible bool
	pending bool
	lastRun time.Time

	kick chan struct{}
}

func New(cfg Config, clk clock.Clock, log *zap.Logger, fetch Fetch) *Coordinator {
	return &Coordinator{
		cfg:   cfg.WithDefaults(),
		clock: clk,
		log:   log.Named("refresh"),
		fetch: fetch,
		kick:  make(chan struct{}, 1),
	}
}

// SetVisible flips the consumer's visibility. Becoming visible requests
// an immediate refresh, still subject to the debounce floor.
func (c *Coordinator) SetVisible(visible bool) {
	c.mu.Lock()
	c.visible = visible
	if visible {
		c.pending = true
	}
	c.mu.Unlock()
	if visible {
		c.wake()
	}
}

// Poke requests a refresh out of cycle (e.g. the window regained focus).
func (c *Coordinator) Poke() {
	c.mu.Lock()
	c.pending = c.visible
	c.mu.Unlock()
	c.wake()
}

// Run polls until ctx is done. There is no cancellation beyond stopping
// future polls.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		delay, wait := c.nextDelay(c.clock.Now())

		var timerC <-chan time.Time
		var timer *time.Timer
		if wait {
			timer = time.NewTimer(delay)
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-c.kick:
			if timer != nil {
				timer.Stop()
			}
		case <-timerC:
		}

		if c.tryStart(c.clock.Now()) {
			if err := c.fetch(ctx); err != nil && ctx.Err() == nil {
				c.log.Warn("refresh fetch failed", zap.Error(err))
			}
		}
	}
}

// nextDelay computes how long to sleep before the next poll is due. The
// second return is false when nothing is scheduled (hidden consumer),
// meaning: sleep until woken.
func (c *Coordinator) nextDelay(now time.Time) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.visible {
		return 0, false
	}

	sinceLast := now.Sub(c.lastRun)
	if c.lastRun.IsZero() {
		sinceLast = c.cfg.Interval // never ran: due, subject only to MinGap
	}

	due := c.cfg.Interval - sinceLast
	if c.pending {
		due = 0
	}
	if floor := c.cfg.MinGap - sinceLast; !c.lastRun.IsZero() && floor > due {
		due = floor
	}
	if due < 0 {
		due = 0
	}
	return due, true
}

// tryStart records a poll start if one is actually due now.
func (c *Coordinator) tryStart(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.visible {
		return false
	}
	if !c.lastRun.IsZero() {
		sinceLast := now.Sub(c.lastRun)
		if sinceLast < c.cfg.MinGap {
			return false
		}
		if !c.pending && sinceLast < c.cfg.Interval {
			return false
		}
	}

	c.pending = false
	c.lastRun = now
	return true
}

func (c *Coordinator) wake() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

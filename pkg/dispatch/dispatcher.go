package dispatch

import (
	"log/slog"
	"sync"
	"time"

	"anima-hq/tulpa/pkg/facts"
)

// Leg describes one evaluation pass within a retry chain. The first
// pass for an event is leg 0 with Retry false; every scheduled
// re-evaluation increments Index. Callers rebuild the evaluation
// context from the leg: a retry leg must advance elapsed time, force
// mentioned to false, and recompute dt.
type Leg struct {
	// Index is the position in the chain, 0 for the triggering event.
	Index int

	// Elapsed is the wall-clock time since the triggering event.
	Elapsed time.Duration

	// Retry reports whether this leg was scheduled by a $retry
	// directive rather than a fresh event.
	Retry bool
}

// EvalFunc runs one evaluation pass for a channel.
type EvalFunc func(leg Leg) *facts.Result

// DeliverFunc receives the final (non-retry) result of a chain.
type DeliverFunc func(*facts.Result)

// Config bounds retry chains.
type Config struct {
	// MaxRetryChain is the maximum number of retry legs per triggering
	// event. Default: 16.
	MaxRetryChain int

	// MaxRetryElapsed is the maximum total wall-clock time a chain may
	// span. Default: 24h.
	MaxRetryElapsed time.Duration
}

// DefaultConfig returns the default dispatcher bounds.
func DefaultConfig() *Config {
	return &Config{
		MaxRetryChain:   16,
		MaxRetryElapsed: 24 * time.Hour,
	}
}

// Dispatcher maintains the per-channel map of pending retry timers. It
// is safe for concurrent use; the evaluation itself stays single-flight
// per channel because scheduling a new chain cancels the old one first.
type Dispatcher struct {
	cfg    *Config
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*chain
	closed  bool
}

type chain struct {
	timer   *time.Timer
	leg     int
	started time.Time
}

// NewDispatcher creates a dispatcher. cfg and logger may be nil.
func NewDispatcher(cfg *Config, logger *slog.Logger) *Dispatcher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxRetryChain <= 0 {
		cfg.MaxRetryChain = 16
	}
	if cfg.MaxRetryElapsed <= 0 {
		cfg.MaxRetryElapsed = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default().With("component", "dispatch")
	}
	return &Dispatcher{
		cfg:     cfg,
		logger:  logger,
		pending: make(map[string]*chain),
	}
}

// Dispatch handles a new triggering event on a channel: it cancels any
// pending retry for the channel, runs the first evaluation leg
// synchronously, and either delivers the result or schedules the
// requested retry.
func (d *Dispatcher) Dispatch(channelID string, evaluate EvalFunc, deliver DeliverFunc) {
	d.Cancel(channelID)

	started := time.Now()
	res := evaluate(Leg{Index: 0, Elapsed: 0, Retry: false})
	d.resolve(channelID, res, 0, started, evaluate, deliver)
}

// Cancel synchronously removes and stops any pending retry for the
// channel. It reports whether a retry was pending.
func (d *Dispatcher) Cancel(channelID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.pending[channelID]
	if !ok {
		return false
	}
	c.timer.Stop()
	delete(d.pending, channelID)
	return true
}

// Pending reports whether the channel has a scheduled retry.
func (d *Dispatcher) Pending(channelID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[channelID]
	return ok
}

// Close cancels every pending retry. The dispatcher accepts no new
// schedules afterward.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for id, c := range d.pending {
		c.timer.Stop()
		delete(d.pending, id)
	}
	d.closed = true
}

// resolve delivers a result or schedules its retry leg.
func (d *Dispatcher) resolve(channelID string, res *facts.Result, leg int, started time.Time, evaluate EvalFunc, deliver DeliverFunc) {
	if res == nil {
		return
	}
	if res.RetryMs <= 0 {
		deliver(res)
		return
	}

	if leg+1 > d.cfg.MaxRetryChain {
		d.logger.Warn("retry chain exceeded leg bound, dropping",
			"channel", channelID,
			"legs", leg,
			"max", d.cfg.MaxRetryChain,
		)
		return
	}
	delay := time.Duration(res.RetryMs) * time.Millisecond
	if time.Since(started)+delay > d.cfg.MaxRetryElapsed {
		d.logger.Warn("retry chain exceeded elapsed bound, dropping",
			"channel", channelID,
			"elapsed", time.Since(started),
			"max", d.cfg.MaxRetryElapsed,
		)
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	c := &chain{leg: leg + 1, started: started}
	c.timer = time.AfterFunc(delay, func() {
		d.fire(channelID, c, evaluate, deliver)
	})
	d.pending[channelID] = c
	d.mu.Unlock()

	d.logger.Debug("retry scheduled",
		"channel", channelID,
		"delay_ms", res.RetryMs,
		"leg", leg+1,
	)
}

func (d *Dispatcher) fire(channelID string, c *chain, evaluate EvalFunc, deliver DeliverFunc) {
	d.mu.Lock()
	// A newer event may have replaced or cancelled this chain between
	// the timer firing and the lock being taken.
	if cur, ok := d.pending[channelID]; !ok || cur != c {
		d.mu.Unlock()
		return
	}
	delete(d.pending, channelID)
	d.mu.Unlock()

	res := evaluate(Leg{
		Index:   c.leg,
		Elapsed: time.Since(c.started),
		Retry:   true,
	})
	d.resolve(channelID, res, c.leg, c.started, evaluate, deliver)
}

package live

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/sla-dashboard/internal/sla"
)

// Default cadences for open tickets.
const (
	DefaultTickInterval  = 60 * time.Second
	DefaultWatchInterval = 5 * time.Minute
)

// State is the lifecycle state of a Refresher.
type State int

const (
	StateIdle State = iota
	StateScheduled
	StateFrozen
)

func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateFrozen:
		return "frozen"
	default:
		return "idle"
	}
}

// Cadence tells whether a scheduled refresher is re-evaluating or only waiting for business hours.
type Cadence int

const (
	CadenceFast Cadence = iota
	CadenceWatch
)

// Options tunes a Refresher.
type Options struct {
	TickInterval  time.Duration
	WatchInterval time.Duration
	// OnUpdate receives every new snapshot. It runs on the refresher goroutine.
	OnUpdate func(sla.Snapshot)
	Logger   *zap.Logger
}

// Refresher keeps one ticket's SLA snapshot current while the ticket is open.
type Refresher struct {
	engine *sla.Engine
	input  sla.TicketInput
	opts   Options
	logger *zap.Logger

	mu       sync.Mutex
	state    State
	cadence  Cadence
	snapshot sla.Snapshot
	ready    bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewRefresher builds a refresher for a single ticket.
func NewRefresher(engine *sla.Engine, input sla.TicketInput, opts Options) *Refresher {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.WatchInterval <= 0 {
		opts.WatchInterval = DefaultWatchInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{engine: engine, input: input, opts: opts, logger: logger}
}

// Start evaluates the ticket and, when it has no reference instant, schedules re-evaluation
// until Stop is called or ctx is done. Calling Start on a running refresher is a no-op.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return
	}

	if r.input.ReferenceAt != nil {
		r.state = StateFrozen
		r.mu.Unlock()
		r.refresh()
		r.logger.Debug("sla refresher frozen", zap.Time("reference", *r.input.ReferenceAt))
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.state = StateScheduled
	r.cadence = r.cadenceFor(r.engine.CurrentTime())
	done := r.done
	r.mu.Unlock()

	r.refresh()
	go r.run(runCtx, done)
}

// Stop cancels pending timers and returns the refresher to Idle. It waits for the
// refresher goroutine to exit and is safe to call more than once.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.state = StateIdle
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// State reports the current lifecycle state.
func (r *Refresher) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Cadence reports the current scheduling cadence.
func (r *Refresher) Cadence() Cadence {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cadence
}

// Snapshot returns the latest snapshot and whether one has been computed.
func (r *Refresher) Snapshot() (sla.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot, r.ready
}

func (r *Refresher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(r.intervalFor(r.Cadence()))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("sla refresher stopped")
			return
		case <-timer.C:
			// A fast tick always evaluates, even past closing: the elapsed time is
			// clamped to the close, so the last interval of the day is still counted.
			// A watch tick only evaluates once business hours are back.
			now := r.engine.CurrentTime()
			next := r.cadenceFor(now)
			if r.Cadence() == CadenceFast || next == CadenceFast {
				r.refresh()
			}
			r.setCadence(next)
			timer.Reset(r.intervalFor(next))
		}
	}
}

func (r *Refresher) refresh() {
	snap := r.engine.Evaluate(r.input)

	r.mu.Lock()
	r.snapshot = snap
	r.ready = true
	r.mu.Unlock()

	if r.opts.OnUpdate != nil {
		r.opts.OnUpdate(snap)
	}
}

func (r *Refresher) setCadence(c Cadence) {
	r.mu.Lock()
	changed := r.cadence != c
	r.cadence = c
	r.mu.Unlock()
	if changed {
		r.logger.Debug("sla refresher cadence changed", zap.Bool("watch", c == CadenceWatch))
	}
}

func (r *Refresher) cadenceFor(now time.Time) Cadence {
	if r.engine.Calendar.IsBusinessInstant(now) {
		return CadenceFast
	}
	return CadenceWatch
}

func (r *Refresher) intervalFor(c Cadence) time.Duration {
	if c == CadenceWatch {
		return r.opts.WatchInterval
	}
	return r.opts.TickInterval
}

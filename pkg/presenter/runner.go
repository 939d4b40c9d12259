package presenter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/overlay"
)

// Clock supplies time to the Runner.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time                         { return time.Now() }
func (RealClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Transition is published to listeners for every step the machine takes.
type Transition struct {
	From State
	To   State
	Pair *overlay.Pair
	At   time.Time
}

// Snapshot is the Runner's externally visible state.
type Snapshot struct {
	Ready bool
	State State
	Pair  *overlay.Pair
	Since time.Time
}

// Runner binds a Machine to a subscription and a clock. All transitions
// happen on the goroutine calling Run.
type Runner struct {
	clock  Clock
	logger *slog.Logger

	machine Machine

	mu        sync.RWMutex
	listeners []func(Transition)
	snapshot  Snapshot
}

func NewRunner(clock Clock, logger *slog.Logger) *Runner {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{clock: clock, logger: logger}
}

// OnTransition registers fn to be called, in registration order, after each
// transition. Listeners run on the Run goroutine and must not block.
func (r *Runner) OnTransition(fn func(Transition)) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

func (r *Runner) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.snapshot
	s.Pair = s.Pair.Clone()
	return s
}

// Run consumes observations until ctx is done or the channel closes. A
// pending animation timer is abandoned on return, so its completion never
// fires.
func (r *Runner) Run(ctx context.Context, observations <-chan activestate.Observation) error {
	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case obs, ok := <-observations:
			if !ok {
				return nil
			}
			first := !r.machine.Ready()
			steps := r.machine.Observe(obs.Pair)
			if first {
				r.markReady()
			}
			timer = r.apply(steps, timer)
		case <-timer:
			timer = r.apply(r.machine.Complete(), nil)
		}
	}
}

func (r *Runner) markReady() {
	r.mu.Lock()
	r.snapshot.Ready = true
	if r.snapshot.Since.IsZero() {
		r.snapshot.Since = r.clock.Now()
	}
	r.mu.Unlock()
}

// apply publishes steps and returns the timer to wait on next. No steps
// leaves the current timer running.
func (r *Runner) apply(steps []Step, current <-chan time.Time) <-chan time.Time {
	if len(steps) == 0 {
		return current
	}
	for _, s := range steps {
		t := Transition{From: s.From, To: s.To, Pair: s.Pair, At: r.clock.Now()}
		r.logger.Debug("presentation transition", "from", s.From.String(), "to", s.To.String(), "pair", s.Pair.String())

		r.mu.Lock()
		r.snapshot = Snapshot{Ready: true, State: s.To, Pair: s.Pair.Clone(), Since: t.At}
		listeners := append([]func(Transition){}, r.listeners...)
		r.mu.Unlock()

		for _, fn := range listeners {
			fn(t)
		}
	}
	if steps[len(steps)-1].To.Animating() {
		return r.clock.After(AnimationDuration)
	}
	return nil
}

package presenter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lowerthird/pkg/activestate"
)

type fakeTimer struct {
	at time.Time
	ch chan time.Time
}

// fakeClock only moves when Advance is called.
type fakeClock struct {
	mu         sync.Mutex
	now        time.Time
	timers     []fakeTimer
	registered chan struct{}
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0), registered: make(chan struct{}, 16)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	ch := make(chan time.Time, 1)
	c.timers = append(c.timers, fakeTimer{at: c.now.Add(d), ch: ch})
	c.mu.Unlock()
	c.registered <- struct{}{}
	return ch
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	kept := c.timers[:0]
	for _, tm := range c.timers {
		if !tm.at.After(c.now) {
			tm.ch <- c.now
			continue
		}
		kept = append(kept, tm)
	}
	c.timers = kept
}

func (c *fakeClock) waitTimer(t *testing.T) {
	t.Helper()
	select {
	case <-c.registered:
	case <-time.After(2 * time.Second):
		t.Fatalf("no timer was started")
	}
}

type harness struct {
	clock  *fakeClock
	runner *Runner
	obs    chan activestate.Observation
	seen   chan Transition
	cancel context.CancelFunc
	done   chan struct{}
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		clock: newFakeClock(),
		obs:   make(chan activestate.Observation),
		seen:  make(chan Transition, 32),
		done:  make(chan struct{}),
	}
	h.runner = NewRunner(h.clock, nil)
	h.runner.OnTransition(func(tr Transition) { h.seen <- tr })

	var ctx context.Context
	ctx, h.cancel = context.WithCancel(context.Background())
	go func() {
		defer close(h.done)
		_ = h.runner.Run(ctx, h.obs)
	}()
	t.Cleanup(func() {
		h.cancel()
		<-h.done
	})
	return h
}

func (h *harness) expect(t *testing.T, want ...State) []Transition {
	t.Helper()
	var got []Transition
	for range want {
		select {
		case tr := <-h.seen:
			got = append(got, tr)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %v", len(got), want)
		}
	}
	for i, tr := range got {
		require.Equal(t, want[i], tr.To, "transition %d", i)
	}
	return got
}

func (h *harness) quiet(t *testing.T) {
	t.Helper()
	select {
	case tr := <-h.seen:
		t.Fatalf("unexpected transition to %s", tr.To)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRunnerEndToEndWithFakeClock(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.runner.Snapshot().Ready)

	h.obs <- activestate.Observation{}
	h.quiet(t)
	assert.True(t, h.runner.Snapshot().Ready)

	h.obs <- activestate.Observation{Pair: pair("a", "x")}
	start := h.expect(t, Entering)[0].At
	h.clock.waitTimer(t)
	h.clock.Advance(AnimationDuration)
	h.expect(t, Shown)

	h.obs <- activestate.Observation{Pair: pair("b", "x")}
	h.expect(t, Exiting)
	h.clock.waitTimer(t)
	h.clock.Advance(AnimationDuration)
	h.expect(t, Entering)
	h.clock.waitTimer(t)
	h.clock.Advance(AnimationDuration)
	shown := h.expect(t, Shown)[0]
	assert.Equal(t, "b", shown.Pair.Overlay.ID)
	assert.Equal(t, 3*AnimationDuration, shown.At.Sub(start))

	h.obs <- activestate.Observation{}
	h.expect(t, Exiting)
	h.clock.waitTimer(t)
	h.clock.Advance(AnimationDuration)
	h.expect(t, Hidden)

	snap := h.runner.Snapshot()
	assert.Equal(t, Hidden, snap.State)
	assert.Nil(t, snap.Pair)
}

func TestRunnerObservationsDoNotInterrupt(t *testing.T) {
	h := newHarness(t)

	h.obs <- activestate.Observation{Pair: pair("a", "x")}
	h.expect(t, Entering)
	h.clock.waitTimer(t)

	h.obs <- activestate.Observation{Pair: pair("b", "x")}
	h.obs <- activestate.Observation{}
	h.quiet(t)

	h.clock.Advance(AnimationDuration / 2)
	h.quiet(t)
	h.clock.Advance(AnimationDuration / 2)
	h.expect(t, Shown, Exiting)
	h.clock.waitTimer(t)
	h.clock.Advance(AnimationDuration)
	h.expect(t, Hidden)
}

func TestRunnerTeardownAbandonsTimer(t *testing.T) {
	h := newHarness(t)

	h.obs <- activestate.Observation{Pair: pair("a", "x")}
	h.expect(t, Entering)
	h.clock.waitTimer(t)

	h.cancel()
	<-h.done
	h.clock.Advance(AnimationDuration)
	h.quiet(t)
	assert.Equal(t, Entering, h.runner.Snapshot().State)
}

func TestRunnerRealClock(t *testing.T) {
	if testing.Short() {
		t.Skip("uses wall-clock animation timing")
	}
	r := NewRunner(RealClock{}, nil)
	seen := make(chan Transition, 16)
	r.OnTransition(func(tr Transition) { seen <- tr })

	obs := make(chan activestate.Observation, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Run(ctx, obs) }()

	obs <- activestate.Observation{Pair: pair("a", "x")}
	obs <- activestate.Observation{Pair: pair("b", "x")}

	want := []State{Entering, Shown, Exiting, Entering, Shown}
	var first, last time.Time
	for i, w := range want {
		select {
		case tr := <-seen:
			require.Equal(t, w, tr.To)
			if i == 0 {
				first = tr.At
			}
			last = tr.At
		case <-time.After(3 * time.Second):
			t.Fatalf("timed out waiting for %s", w)
		}
	}
	elapsed := last.Sub(first)
	assert.GreaterOrEqual(t, elapsed, 3*AnimationDuration)
	assert.Less(t, elapsed, 3*AnimationDuration+500*time.Millisecond)
}

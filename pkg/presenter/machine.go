// Package presenter drives the four-state entrance/exit cycle of the display
// surface from observations of the shared active state.
package presenter

import (
	"time"

	"tableflip.dev/lowerthird/pkg/overlay"
)

// AnimationDuration is the length of every entrance and exit. The display
// page's CSS transitions and the mask width tween use the same value.
const AnimationDuration = 500 * time.Millisecond

// State is a presentation state.
type State int

const (
	Hidden State = iota
	Entering
	Shown
	Exiting
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Entering:
		return "entering"
	case Shown:
		return "shown"
	case Exiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// Animating reports whether s has a timer in flight.
func (s State) Animating() bool {
	return s == Entering || s == Exiting
}

// Step is one state change. Pair is what is rendered in To: the entering or
// exiting pair, the shown pair, or nil when hidden.
type Step struct {
	From State
	To   State
	Pair *overlay.Pair
}

// Machine is the pure transition table. It is not safe for concurrent use;
// Runner owns one per display surface.
type Machine struct {
	state     State
	committed *overlay.Pair
	pending   *overlay.Pair
	latched   bool
	observed  bool
}

// State returns the current state and the pair rendered in it.
func (m *Machine) State() (State, *overlay.Pair) {
	return m.state, m.committed
}

// Ready reports whether any observation has been made. Before that the
// surface is still loading and renders nothing.
func (m *Machine) Ready() bool {
	return m.observed
}

// Observe feeds a new observation of the active pair. Mid-animation
// observations are latched, the latest replacing any earlier one, and
// produce no steps.
func (m *Machine) Observe(p *overlay.Pair) []Step {
	m.observed = true
	switch m.state {
	case Hidden:
		if p == nil {
			return nil
		}
		m.committed = p.Clone()
		return []Step{m.move(Entering)}
	case Shown:
		if overlay.SameIdentity(p, m.committed) {
			return nil
		}
		m.latch(p)
		return []Step{m.move(Exiting)}
	default:
		m.latch(p)
		return nil
	}
}

// Complete is called when the in-flight animation finishes. Calling it
// outside an animation does nothing.
func (m *Machine) Complete() []Step {
	switch m.state {
	case Entering:
		steps := []Step{m.move(Shown)}
		if !m.latched {
			return steps
		}
		if overlay.SameIdentity(m.pending, m.committed) {
			m.unlatch()
			return steps
		}
		// The latch stays set: the exit completion enters it.
		return append(steps, m.move(Exiting))
	case Exiting:
		next := m.pending
		m.unlatch()
		if next == nil {
			m.committed = nil
			return []Step{m.move(Hidden)}
		}
		m.committed = next
		return []Step{m.move(Entering)}
	default:
		return nil
	}
}

func (m *Machine) latch(p *overlay.Pair) {
	m.pending = p.Clone()
	m.latched = true
}

func (m *Machine) unlatch() {
	m.pending = nil
	m.latched = false
}

func (m *Machine) move(to State) Step {
	s := Step{From: m.state, To: to, Pair: m.committed.Clone()}
	m.state = to
	return s
}

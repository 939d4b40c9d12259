package presenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lowerthird/pkg/overlay"
)

func pair(overlayID, themeID string) *overlay.Pair {
	return &overlay.Pair{
		Overlay: overlay.Overlay{ID: overlayID, Kind: overlay.KindPerson, Title: overlayID, Subtitle: "sub"},
		Theme:   overlay.Theme{ID: themeID, Name: themeID},
	}
}

func states(steps []Step) []State {
	out := make([]State, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.To)
	}
	return out
}

func TestMachineNothingBeforeFirstObservation(t *testing.T) {
	var m Machine
	assert.False(t, m.Ready())
	assert.Empty(t, m.Complete())

	assert.Empty(t, m.Observe(nil))
	assert.True(t, m.Ready())
	state, p := m.State()
	assert.Equal(t, Hidden, state)
	assert.Nil(t, p)
}

func TestMachineShowSwitchHide(t *testing.T) {
	var m Machine
	a, b := pair("a", "x"), pair("b", "x")

	steps := m.Observe(a)
	require.Equal(t, []State{Entering}, states(steps))
	assert.Equal(t, "a", steps[0].Pair.Overlay.ID)
	assert.Equal(t, []State{Shown}, states(m.Complete()))

	steps = m.Observe(b)
	require.Equal(t, []State{Exiting}, states(steps))
	assert.Equal(t, "a", steps[0].Pair.Overlay.ID, "the old pair is what exits")

	steps = m.Complete()
	require.Equal(t, []State{Entering}, states(steps))
	assert.Equal(t, "b", steps[0].Pair.Overlay.ID)
	assert.Equal(t, []State{Shown}, states(m.Complete()))

	steps = m.Observe(nil)
	require.Equal(t, []State{Exiting}, states(steps))
	assert.Equal(t, "b", steps[0].Pair.Overlay.ID)
	steps = m.Complete()
	require.Equal(t, []State{Hidden}, states(steps))
	assert.Nil(t, steps[0].Pair)
}

func TestMachineIdentityOnly(t *testing.T) {
	var m Machine
	m.Observe(pair("a", "x"))
	m.Complete()

	edited := pair("a", "x")
	edited.Overlay.Title = "renamed"
	edited.Theme.Name = "renamed"
	assert.Empty(t, m.Observe(edited), "field edits are not a change")

	assert.Equal(t, []State{Exiting}, states(m.Observe(pair("a", "y"))), "a theme change is a change")
}

func TestMachineHideWhileHiddenIsNoop(t *testing.T) {
	var m Machine
	assert.Empty(t, m.Observe(nil))
	assert.Empty(t, m.Observe(nil))
	state, _ := m.State()
	assert.Equal(t, Hidden, state)
}

func TestMachineLatchesLatestDuringEntrance(t *testing.T) {
	var m Machine
	m.Observe(pair("a", "x"))

	assert.Empty(t, m.Observe(pair("b", "x")))
	assert.Empty(t, m.Observe(pair("c", "x")))

	// Entrance finishes, then the latched target forces an exit.
	steps := m.Complete()
	require.Equal(t, []State{Shown, Exiting}, states(steps))
	assert.Equal(t, "a", steps[1].Pair.Overlay.ID)

	steps = m.Complete()
	require.Equal(t, []State{Entering}, states(steps))
	assert.Equal(t, "c", steps[0].Pair.Overlay.ID, "intermediate b is dropped")
}

func TestMachineLatchBackToCommittedSettles(t *testing.T) {
	var m Machine
	m.Observe(pair("a", "x"))
	m.Observe(pair("b", "x"))
	m.Observe(pair("a", "x"))

	assert.Equal(t, []State{Shown}, states(m.Complete()))
	assert.Empty(t, m.Complete())
}

func TestMachineHideDuringEntrance(t *testing.T) {
	var m Machine
	m.Observe(pair("a", "x"))
	m.Observe(nil)

	assert.Equal(t, []State{Shown, Exiting}, states(m.Complete()))
	assert.Equal(t, []State{Hidden}, states(m.Complete()))
}

func TestMachineLatestWinsDuringExit(t *testing.T) {
	var m Machine
	m.Observe(pair("a", "x"))
	m.Complete()
	m.Observe(nil)

	assert.Empty(t, m.Observe(pair("b", "x")))
	steps := m.Complete()
	require.Equal(t, []State{Entering}, states(steps))
	assert.Equal(t, "b", steps[0].Pair.Overlay.ID)

	m.Complete()
	m.Observe(pair("c", "x"))
	m.Observe(pair("d", "x"))
	m.Observe(nil)
	assert.Equal(t, []State{Hidden}, states(m.Complete()))
}

func TestMachineNeverOverlapsAnimations(t *testing.T) {
	var m Machine
	inputs := []*overlay.Pair{pair("a", "x"), nil, pair("b", "x"), pair("b", "y"), nil, nil, pair("c", "z"), pair("a", "x")}

	var seq []State
	for i, p := range inputs {
		seq = append(seq, states(m.Observe(p))...)
		if i%2 == 1 {
			seq = append(seq, states(m.Complete())...)
		}
	}
	for range 8 {
		seq = append(seq, states(m.Complete())...)
	}

	// An exit may hand straight over to an entrance; anything else between
	// two animations must pass through a resting state.
	for i := 1; i < len(seq); i++ {
		prev, cur := seq[i-1], seq[i]
		if prev.Animating() && cur.Animating() && !(prev == Exiting && cur == Entering) {
			t.Fatalf("overlapping animations at %d: %v", i, seq)
		}
	}
	assert.False(t, seq[len(seq)-1].Animating(), "the machine settles once timers stop")
}

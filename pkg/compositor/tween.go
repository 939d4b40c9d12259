package compositor

import "time"

// MaskTween animates the mask width between two plans.
type MaskTween struct {
	From     float64
	To       float64
	Start    time.Time
	Duration time.Duration
}

// NewMaskTween starts a tween at start. A zero from means there was no
// previous mask and the width snaps to the target.
func NewMaskTween(from, to float64, start time.Time, d time.Duration) MaskTween {
	if from <= 0 {
		from = to
	}
	return MaskTween{From: from, To: to, Start: start, Duration: d}
}

// Progress is the fraction of the tween elapsed at now, clamped to [0,1].
func (t MaskTween) Progress(now time.Time) float64 {
	if t.Duration <= 0 {
		return 1
	}
	p := float64(now.Sub(t.Start)) / float64(t.Duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Width is the mask width at now.
func (t MaskTween) Width(now time.Time) float64 {
	return lerp(t.From, t.To, t.Progress(now))
}

// Done reports whether the tween has reached its target.
func (t MaskTween) Done(now time.Time) bool {
	return t.Progress(now) >= 1
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

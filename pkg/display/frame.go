package display

import (
	"path/filepath"
	"strings"
	"time"

	"tableflip.dev/lowerthird/pkg/compositor"
	"tableflip.dev/lowerthird/pkg/overlay"
	"tableflip.dev/lowerthird/pkg/presenter"
)

// SlideDistance is how far, in reference units, the composition travels
// during an entrance or exit.
const SlideDistance = 40

// Frame is what the browser page receives for every transition.
type Frame struct {
	Seq        uint64           `json:"seq"`
	Ready      bool             `json:"ready"`
	State      string           `json:"state"`
	Plan       *compositor.Plan `json:"plan,omitempty"`
	FromWidth  float64          `json:"fromMaskWidth"`
	At         time.Time        `json:"at"`
	DurationMS int64            `json:"durationMs"`
}

// scene is the display's full view of the current transition, swapped
// atomically on every change.
type scene struct {
	frame  Frame
	state  presenter.State
	pair   *overlay.Pair
	plan   *compositor.Plan
	images compositor.Images
	tween  compositor.MaskTween
	since  time.Time
}

// envelope returns the opacity and horizontal offset of the composition at
// now for state, started at since.
func envelope(state presenter.State, since, now time.Time) (opacity, offsetX float64) {
	p := compositor.MaskTween{Start: since, Duration: presenter.AnimationDuration}.Progress(now)
	switch state {
	case presenter.Entering:
		return p, -SlideDistance * (1 - p)
	case presenter.Shown:
		return 1, 0
	case presenter.Exiting:
		return 1 - p, -SlideDistance * p
	default:
		return 0, 0
	}
}

// withImages returns a copy of s carrying imgs.
func (s *scene) withImages(imgs compositor.Images) *scene {
	cp := *s
	cp.images = imgs
	return &cp
}

// forPage returns plan with uploaded-asset sources rewritten to URLs the
// browser page can fetch from this server. The server-side plan keeps file
// paths for the rasteriser.
func (s *Server) forPage(plan *compositor.Plan) *compositor.Plan {
	if plan == nil || s.opts.AssetDir == "" {
		return plan
	}
	cp := *plan
	cp.Layers = make([]compositor.LayerSlot, len(plan.Layers))
	copy(cp.Layers, plan.Layers)
	dir := filepath.Clean(s.opts.AssetDir) + string(filepath.Separator)
	for i, slot := range cp.Layers {
		path := strings.TrimPrefix(slot.Source, "file://")
		if strings.HasPrefix(path, dir) {
			cp.Layers[i].Source = "/assets/" + filepath.ToSlash(strings.TrimPrefix(path, dir))
		}
	}
	return &cp
}

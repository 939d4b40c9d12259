package app

import (
	"context"
	"fmt"

	"tableflip.dev/lowerthird/pkg/overlay"
)

// ReportSection groups overlays of one kind in list order.
type ReportSection struct {
	Kind     overlay.Kind
	Overlays []*overlay.Overlay
}

// ReportResult summarises the catalog and what is on air.
type ReportResult struct {
	Sections    []ReportSection
	Themes      int
	ActiveTheme *overlay.Theme
	// OnAir is nil when nothing is shown or no active state is configured.
	OnAir *overlay.Pair
	Total int
}

// Report returns overlays grouped by kind alongside the active theme and
// the pair on air.
func (s *Service) Report(ctx context.Context) (ReportResult, error) {
	var res ReportResult
	overlays, err := s.Overlays(ctx)
	if err != nil {
		return res, err
	}
	for _, kind := range overlay.AllKinds() {
		section := ReportSection{Kind: kind}
		for _, o := range overlays {
			if o.Kind == kind {
				section.Overlays = append(section.Overlays, o)
			}
		}
		res.Sections = append(res.Sections, section)
	}
	res.Total = len(overlays)

	themes, err := s.Themes(ctx)
	if err != nil {
		return res, err
	}
	res.Themes = len(themes)
	if res.ActiveTheme, err = s.ActiveTheme(ctx); err != nil {
		return res, err
	}

	if s.State != nil {
		if res.OnAir, err = s.State.Get(ctx); err != nil {
			return res, fmt.Errorf("app: read active state: %w", err)
		}
	}
	return res, nil
}

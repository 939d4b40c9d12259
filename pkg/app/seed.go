package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"tableflip.dev/lowerthird/pkg/overlay"
)

// DefaultThemes are stored on first run. The first one becomes active.
func DefaultThemes() []overlay.Theme {
	return []overlay.Theme{
		{
			ID:                  "theme-1",
			Name:                "Default Light",
			TitleColor:          "#000000",
			SubtitleColor:       "#333333",
			MaskBackgroundColor: "rgba(255, 255, 255, 0.8)",
		},
		{
			ID:                  "theme-2",
			Name:                "Default Dark",
			TitleColor:          "#FFFFFF",
			SubtitleColor:       "#CCCCCC",
			MaskBackgroundColor: "rgba(0, 0, 0, 0.7)",
		},
		{
			ID:                  "theme-3",
			Name:                "Vibrant",
			TitleColor:          "#FFFFFF",
			SubtitleColor:       "#FFFFFF",
			MaskBackgroundColor: "rgba(41, 171, 226, 0.9)",
			Layer1:              "https://picsum.photos/seed/lowerthird-1/1920/180",
			Layer2:              "https://picsum.photos/seed/lowerthird-2/1920/180",
			Layer3:              "https://picsum.photos/seed/lowerthird-3/1920/180",
		},
	}
}

// DefaultOverlays are stored on first run.
func DefaultOverlays() []overlay.Overlay {
	return []overlay.Overlay{
		{ID: "person-1", Kind: overlay.KindPerson, Title: "John Doe", Subtitle: "Lead Pastor"},
		{ID: "person-2", Kind: overlay.KindPerson, Title: "Jane Smith", Subtitle: "Worship Leader"},
		{ID: "music-1", Kind: overlay.KindMusic, Title: "Amazing Grace", Subtitle: "John Newton"},
	}
}

// Seed stores the default themes and overlays the first time it runs against
// a catalog. Later calls are no-ops, even after everything was deleted.
func (s *Service) Seed(ctx context.Context) (bool, error) {
	p, err := s.persistence()
	if err != nil {
		return false, err
	}
	cat, err := p.Catalog()
	if err != nil {
		return false, err
	}
	if cat.Seeded {
		return false, nil
	}
	for _, t := range DefaultThemes() {
		t := t
		if err := p.StoreTheme(&t); err != nil {
			return false, err
		}
		cat.Themes = appendMissing(cat.Themes, t.ID)
	}
	for _, o := range DefaultOverlays() {
		o := o
		if err := p.StoreOverlay(&o); err != nil {
			return false, err
		}
		cat.Overlays = appendMissing(cat.Overlays, o.ID)
	}
	if cat.ActiveThemeID == "" {
		cat.ActiveThemeID = DefaultThemes()[0].ID
	}
	cat.Seeded = true
	if err := p.SaveCatalog(cat); err != nil {
		return false, err
	}
	return true, ctx.Err()
}

var ErrInvalidPlanURL = errors.New("app: invalid plan url")

// plannedSongs stands in for a Planning Center service plan until the real
// API client exists.
var plannedSongs = []struct{ title, author string }{
	{"Living Hope", "Phil Wickham, Brian Johnson"},
	{"Graves Into Gardens", "Elevation Worship"},
	{"Goodness of God", "Bethel Music"},
}

// ImportPlan adds the songs of a service plan as music overlays and returns
// them in plan order.
func (s *Service) ImportPlan(ctx context.Context, planURL string) ([]*overlay.Overlay, error) {
	if _, err := s.persistence(); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimSpace(planURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlanURL, planURL)
	}
	added := make([]*overlay.Overlay, 0, len(plannedSongs))
	for _, song := range plannedSongs {
		o, err := s.AddOverlay(ctx, overlay.KindMusic, song.title, song.author)
		if err != nil {
			return added, err
		}
		added = append(added, o)
	}
	return added, nil
}

func appendMissing(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}


// Package mcp provides the Model Context Protocol server integration for
// lowerthird.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/control"
	"tableflip.dev/lowerthird/pkg/overlay"
)

// Service coordinates the catalog and activation operations shared by the
// MCP tools and resources.
type Service struct {
	App     *app.Service
	Control *control.Controller
}

// OverlayDTO is a transport-friendly projection of an overlay.
type OverlayDTO struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Active   bool   `json:"active"`
}

// ThemeDTO is a transport-friendly projection of a theme.
type ThemeDTO struct {
	overlay.Theme
	Active bool `json:"active"`
}

// ActiveDTO describes what is on air.
type ActiveDTO struct {
	Shown    bool        `json:"shown"`
	Overlay  *OverlayDTO `json:"lowerThird,omitempty"`
	Theme    *ThemeDTO   `json:"theme,omitempty"`
	Selected string      `json:"selectedThemeId,omitempty"`
}

// NewService builds a service over the catalog and controller.
func NewService(a *app.Service, c *control.Controller) *Service {
	return &Service{App: a, Control: c}
}

func (s *Service) ready() error {
	if s.App == nil || s.Control == nil {
		return errors.New("mcp: service is not configured")
	}
	return nil
}

// ListOverlays returns overlays in list order, optionally filtered by kind
// and by a glob over the title.
func (s *Service) ListOverlays(ctx context.Context, kind, match string) ([]OverlayDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var k overlay.Kind
	if strings.TrimSpace(kind) != "" {
		var err error
		if k, err = overlay.ParseKind(kind); err != nil {
			return nil, err
		}
	}
	var g glob.Glob
	if strings.TrimSpace(match) != "" {
		var err error
		if g, err = glob.Compile(strings.ToLower(match)); err != nil {
			return nil, fmt.Errorf("invalid match pattern: %w", err)
		}
	}
	all, err := s.App.Overlays(ctx)
	if err != nil {
		return nil, err
	}
	// On a read error the active flags come from the last read.
	_, _ = s.Control.Refresh(ctx)
	out := make([]OverlayDTO, 0, len(all))
	for _, o := range all {
		if k != "" && o.Kind != k {
			continue
		}
		if g != nil && !g.Match(strings.ToLower(o.Title)) {
			continue
		}
		out = append(out, s.overlayDTO(o))
	}
	return out, nil
}

// ListThemes returns every theme, marking the one selected for new
// activations.
func (s *Service) ListThemes(ctx context.Context) ([]ThemeDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	themes, err := s.App.Themes(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.App.ActiveTheme(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ThemeDTO, 0, len(themes))
	for _, t := range themes {
		out = append(out, ThemeDTO{Theme: *t, Active: active != nil && active.ID == t.ID})
	}
	return out, nil
}

// Show puts an overlay on air with the selected theme.
func (s *Service) Show(ctx context.Context, id string) (ActiveDTO, error) {
	if err := s.ready(); err != nil {
		return ActiveDTO{}, err
	}
	o, err := s.App.Overlay(ctx, id)
	if err != nil {
		return ActiveDTO{}, err
	}
	if err := s.Control.Show(ctx, o); err != nil {
		return ActiveDTO{}, err
	}
	return s.Active(ctx)
}

// Hide takes whatever is on air off.
func (s *Service) Hide(ctx context.Context) (ActiveDTO, error) {
	if err := s.ready(); err != nil {
		return ActiveDTO{}, err
	}
	if err := s.Control.Hide(ctx); err != nil {
		return ActiveDTO{}, err
	}
	return s.Active(ctx)
}

// Active reads the shared state.
func (s *Service) Active(ctx context.Context) (ActiveDTO, error) {
	if err := s.ready(); err != nil {
		return ActiveDTO{}, err
	}
	p, err := s.Control.Refresh(ctx)
	if err != nil {
		return ActiveDTO{}, err
	}
	var dto ActiveDTO
	if selected, err := s.App.ActiveTheme(ctx); err == nil && selected != nil {
		dto.Selected = selected.ID
	}
	if p == nil {
		return dto, nil
	}
	o := s.overlayDTO(&p.Overlay)
	dto.Shown = true
	dto.Overlay = &o
	dto.Theme = &ThemeDTO{Theme: p.Theme, Active: dto.Selected == p.Theme.ID}
	return dto, nil
}

// SetActiveTheme selects the theme for later activations. The pair on air
// keeps its theme.
func (s *Service) SetActiveTheme(ctx context.Context, id string) ([]ThemeDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := s.App.SetActiveTheme(ctx, id); err != nil {
		return nil, err
	}
	return s.ListThemes(ctx)
}

func (s *Service) overlayDTO(o *overlay.Overlay) OverlayDTO {
	return OverlayDTO{
		ID:       o.ID,
		Type:     string(o.Kind),
		Title:    o.Title,
		Subtitle: o.Subtitle,
		Active:   s.Control.IsActive(o.ID),
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/compositor"
	"tableflip.dev/lowerthird/pkg/overlay"
	"tableflip.dev/lowerthird/pkg/store"
)

// Service provides high-level operations for overlays and themes.
// It wraps persistence so the CLI, TUI and MCP server share logic.
type Service struct {
	Persistence store.Persistence
	// State, when set, is cleared if the overlay on air is deleted.
	State activestate.Store
}

var (
	ErrNotFound      = errors.New("app: not found")
	ErrNoPersistence = errors.New("app: no persistence configured")
)

// Direction moves an overlay one place up or down in the list.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection converts a string to a Direction.
func ParseDirection(raw string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(raw))); d {
	case Up, Down:
		return d, nil
	}
	return "", fmt.Errorf("app: unknown direction %q", raw)
}

func (s *Service) persistence() (store.Persistence, error) {
	if s.Persistence == nil {
		return nil, ErrNoPersistence
	}
	return s.Persistence, nil
}

// Overlays lists overlays in display order.
func (s *Service) Overlays(ctx context.Context) ([]*overlay.Overlay, error) {
	p, err := s.persistence()
	if err != nil {
		return nil, err
	}
	return p.Overlays(ctx), nil
}

// Overlay finds one overlay by id.
func (s *Service) Overlay(ctx context.Context, id string) (*overlay.Overlay, error) {
	all, err := s.Overlays(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range all {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%w: overlay %q", ErrNotFound, id)
}

// AddOverlay creates an overlay at the end of the list.
func (s *Service) AddOverlay(ctx context.Context, kind overlay.Kind, title, subtitle string) (*overlay.Overlay, error) {
	p, err := s.persistence()
	if err != nil {
		return nil, err
	}
	o := &overlay.Overlay{
		ID:       fmt.Sprintf("%s-%s", kind, uuid.NewString()),
		Kind:     kind,
		Title:    strings.TrimSpace(title),
		Subtitle: strings.TrimSpace(subtitle),
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := p.StoreOverlay(o); err != nil {
		return nil, err
	}
	if err := s.updateCatalog(ctx, func(c *store.Catalog) {
		c.Overlays = append(c.Overlays, o.ID)
	}); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateOverlay replaces the title and subtitle of an existing overlay.
// Its id and kind never change.
func (s *Service) UpdateOverlay(ctx context.Context, id, title, subtitle string) (*overlay.Overlay, error) {
	p, err := s.persistence()
	if err != nil {
		return nil, err
	}
	o, err := s.Overlay(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Title = strings.TrimSpace(title)
	o.Subtitle = strings.TrimSpace(subtitle)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := p.StoreOverlay(o); err != nil {
		return nil, err
	}
	return o, nil
}

// DeleteOverlay removes an overlay. Deleting the overlay on air also clears
// the active pair.
func (s *Service) DeleteOverlay(ctx context.Context, id string) error {
	p, err := s.persistence()
	if err != nil {
		return err
	}
	if err := p.DeleteOverlay(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: overlay %q", ErrNotFound, id)
		}
		return err
	}
	if err := s.updateCatalog(ctx, func(c *store.Catalog) {
		c.Overlays = without(c.Overlays, id)
	}); err != nil {
		return err
	}
	if s.State == nil {
		return nil
	}
	active, err := s.State.Get(ctx)
	if err != nil {
		return fmt.Errorf("app: read active state: %w", err)
	}
	if active != nil && active.Overlay.ID == id {
		return s.State.Set(ctx, nil)
	}
	return nil
}

// MoveOverlay swaps an overlay with its neighbour in dir. Overlays only
// move past overlays of the same kind; anything else is a no-op.
func (s *Service) MoveOverlay(ctx context.Context, id string, dir Direction) error {
	p, err := s.persistence()
	if err != nil {
		return err
	}
	all := p.Overlays(ctx)
	index := -1
	for i, o := range all {
		if o.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("%w: overlay %q", ErrNotFound, id)
	}
	target := index - 1
	if dir == Down {
		target = index + 1
	}
	if target < 0 || target >= len(all) || all[target].Kind != all[index].Kind {
		return nil
	}
	all[index], all[target] = all[target], all[index]

	order := make([]string, 0, len(all))
	for _, o := range all {
		order = append(order, o.ID)
	}
	return s.updateCatalog(ctx, func(c *store.Catalog) {
		c.Overlays = order
	})
}

// Themes lists themes in creation order.
func (s *Service) Themes(ctx context.Context) ([]*overlay.Theme, error) {
	p, err := s.persistence()
	if err != nil {
		return nil, err
	}
	return p.Themes(ctx), nil
}

// Theme finds one theme by id.
func (s *Service) Theme(ctx context.Context, id string) (*overlay.Theme, error) {
	all, err := s.Themes(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range all {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: theme %q", ErrNotFound, id)
}

// ValidateTheme checks the name and that every colour parses.
func ValidateTheme(t *overlay.Theme) error {
	if err := t.Validate(); err != nil {
		return err
	}
	for field, raw := range map[string]string{
		"titleColor":      t.TitleColor,
		"subtitleColor":   t.SubtitleColor,
		"backgroundColor": t.MaskBackgroundColor,
	} {
		if _, err := compositor.ParseColor(raw); err != nil {
			return fmt.Errorf("app: %s: %w", field, err)
		}
	}
	return nil
}

// AddTheme stores t under a new id. The first theme ever added becomes the
// active theme.
func (s *Service) AddTheme(ctx context.Context, t *overlay.Theme) (*overlay.Theme, error) {
	p, err := s.persistence()
	if err != nil {
		return nil, err
	}
	cp := *t
	cp.ID = "theme-" + uuid.NewString()
	if err := ValidateTheme(&cp); err != nil {
		return nil, err
	}
	if err := p.StoreTheme(&cp); err != nil {
		return nil, err
	}
	if err := s.updateCatalog(ctx, func(c *store.Catalog) {
		c.Themes = append(c.Themes, cp.ID)
		if c.ActiveThemeID == "" {
			c.ActiveThemeID = cp.ID
		}
	}); err != nil {
		return nil, err
	}
	return &cp, nil
}

// UpdateTheme replaces an existing theme. The pair already on air keeps the
// copy it was shown with.
func (s *Service) UpdateTheme(ctx context.Context, t *overlay.Theme) (*overlay.Theme, error) {
	p, err := s.persistence()
	if err != nil {
		return nil, err
	}
	if _, err := s.Theme(ctx, t.ID); err != nil {
		return nil, err
	}
	if err := ValidateTheme(t); err != nil {
		return nil, err
	}
	if err := p.StoreTheme(t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTheme removes a theme. When it was the active theme the first
// remaining theme becomes active, or none if no themes remain.
func (s *Service) DeleteTheme(ctx context.Context, id string) error {
	p, err := s.persistence()
	if err != nil {
		return err
	}
	if err := p.DeleteTheme(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: theme %q", ErrNotFound, id)
		}
		return err
	}
	remaining := p.Themes(ctx)
	return s.updateCatalog(ctx, func(c *store.Catalog) {
		c.Themes = without(c.Themes, id)
		if c.ActiveThemeID != id {
			return
		}
		c.ActiveThemeID = ""
		if len(remaining) > 0 {
			c.ActiveThemeID = remaining[0].ID
		}
	})
}

// ActiveTheme returns the theme selected for new activations, or nil when
// none is selected or the selection no longer exists.
func (s *Service) ActiveTheme(ctx context.Context) (*overlay.Theme, error) {
	p, err := s.persistence()
	if err != nil {
		return nil, err
	}
	cat, err := p.Catalog()
	if err != nil {
		return nil, err
	}
	if cat.ActiveThemeID == "" {
		return nil, nil
	}
	t, err := s.Theme(ctx, cat.ActiveThemeID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return t, err
}

// SetActiveTheme selects the theme used by later activations. An empty id
// clears the selection. The pair already on air is not touched.
func (s *Service) SetActiveTheme(ctx context.Context, id string) error {
	if id != "" {
		if _, err := s.Theme(ctx, id); err != nil {
			return err
		}
	}
	return s.updateCatalog(ctx, func(c *store.Catalog) {
		c.ActiveThemeID = id
	})
}

// Watch subscribes to persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	p, err := s.persistence()
	if err != nil {
		return nil, err
	}
	return p.Watch(ctx)
}

func (s *Service) updateCatalog(_ context.Context, fn func(c *store.Catalog)) error {
	cat, err := s.Persistence.Catalog()
	if err != nil {
		return err
	}
	fn(&cat)
	return s.Persistence.SaveCatalog(cat)
}

func without(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

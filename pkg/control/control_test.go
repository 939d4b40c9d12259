package control

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/overlay"
)

type fixedTheme struct {
	theme *overlay.Theme
}

func (f fixedTheme) ActiveTheme(context.Context) (*overlay.Theme, error) {
	return f.theme, nil
}

type failingStore struct {
	activestate.Store
}

func (failingStore) Set(context.Context, *overlay.Pair) error {
	return errors.New("connection refused")
}

var (
	john  = &overlay.Overlay{ID: "person-1", Kind: overlay.KindPerson, Title: "John Doe", Subtitle: "Lead Pastor"}
	jane  = &overlay.Overlay{ID: "person-2", Kind: overlay.KindPerson, Title: "Jane Smith", Subtitle: "Worship Leader"}
	light = &overlay.Theme{ID: "theme-1", Name: "Default Light", TitleColor: "#000000", SubtitleColor: "#333333", MaskBackgroundColor: "rgba(255,255,255,0.8)"}
)

func TestShowWithoutThemeIsConfigError(t *testing.T) {
	state := activestate.NewMemory()
	c := &Controller{Themes: fixedTheme{}, State: state}

	err := c.Show(context.Background(), john)
	if !errors.Is(err, ErrNoActiveTheme) {
		t.Fatalf("expected ErrNoActiveTheme, got %v", err)
	}
	if p, _ := state.Get(context.Background()); p != nil {
		t.Fatalf("nothing should have been written, got %s", p)
	}
}

func TestShowReplacesAndHideClears(t *testing.T) {
	ctx := context.Background()
	state := activestate.NewMemory()
	c := &Controller{Themes: fixedTheme{theme: light}, State: state}

	if err := c.Show(ctx, john); err != nil {
		t.Fatalf("show: %v", err)
	}
	if err := c.Show(ctx, jane); err != nil {
		t.Fatalf("show: %v", err)
	}
	p, _ := state.Get(ctx)
	if p.Identity() != (overlay.Identity{OverlayID: "person-2", ThemeID: "theme-1"}) {
		t.Fatalf("unexpected active pair %s", p)
	}
	if c.IsActive("person-1") || !c.IsActive("person-2") {
		t.Fatalf("IsActive disagrees with the last write")
	}

	if err := c.Hide(ctx); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if err := c.Hide(ctx); err != nil {
		t.Fatalf("second hide: %v", err)
	}
	if p, _ := state.Get(ctx); p != nil {
		t.Fatalf("expected none, got %s", p)
	}
	if c.IsActive("person-2") {
		t.Fatalf("nothing should be active")
	}
}

func TestTransportErrorsSurface(t *testing.T) {
	c := &Controller{Themes: fixedTheme{theme: light}, State: failingStore{activestate.NewMemory()}}

	err := c.Show(context.Background(), john)
	var te *TransportError
	if !errors.As(err, &te) || te.Op != "show" {
		t.Fatalf("expected show TransportError, got %v", err)
	}
	if err := c.Hide(context.Background()); !errors.As(err, &te) {
		t.Fatalf("expected hide TransportError, got %v", err)
	}
}

func TestTrackSeesOtherWriters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	state := activestate.NewMemory()
	viewer := &Controller{Themes: fixedTheme{theme: light}, State: state}
	other := &Controller{Themes: fixedTheme{theme: light}, State: state}

	ch, err := viewer.Track(ctx)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	<-ch
	if _, known := viewer.Active(); !known {
		t.Fatalf("first observation should mark the snapshot known")
	}

	if err := other.Show(ctx, jane); err != nil {
		t.Fatalf("show: %v", err)
	}
	select {
	case obs := <-ch:
		if obs.Pair == nil || obs.Pair.Overlay.ID != "person-2" {
			t.Fatalf("unexpected observation %s", obs.Pair)
		}
	case <-time.After(time.Second):
		t.Fatalf("no observation")
	}
	if !viewer.IsActive("person-2") {
		t.Fatalf("viewer did not pick up the other writer's show")
	}
}

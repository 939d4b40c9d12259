package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/control"
	"tableflip.dev/lowerthird/pkg/store"
)

type harness struct {
	t     *testing.T
	m     Model
	svc   *app.Service
	state *activestate.Memory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	p, err := store.Load(store.StaticConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("load store: %v", err)
	}
	state := activestate.NewMemory()
	svc := &app.Service{Persistence: p, State: state}
	if _, err := svc.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ctrl := &control.Controller{Themes: svc, State: state}
	h := &harness{t: t, m: New(context.Background(), svc, ctrl, nil, nil), svc: svc, state: state}
	h.run(h.m.loadOverlays())
	h.run(h.m.loadTheme())
	return h
}

// send delivers msg and runs any command it yields, feeding the result back.
func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	h.run(cmd)
}

func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		if _, isBatch := msg.(tea.BatchMsg); isBatch {
			return
		}
		h.send(msg)
	}
}

func (h *harness) rows() []overlayItem {
	var out []overlayItem
	for _, it := range h.m.list.Items() {
		out = append(out, it.(overlayItem))
	}
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestToggleShowsAndHides(t *testing.T) {
	h := newHarness(t)
	rows := h.rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.live || !strings.Contains(r.Title(), "SHOW") {
			t.Fatalf("expected every row to offer show, got %q", r.Title())
		}
	}

	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	got, _ := h.state.Get(context.Background())
	if got == nil || got.Overlay.ID != "person-1" || got.Theme.ID != "theme-1" {
		t.Fatalf("expected person-1 with theme-1 on air, got %v", got)
	}
	if h.m.status != "showing John Doe" {
		t.Fatalf("unexpected status %q", h.m.status)
	}

	h.send(observedMsg{activestate.Observation{Pair: got}})
	if !h.rows()[0].live || !strings.Contains(h.rows()[0].Title(), "HIDE") {
		t.Fatalf("expected first row to offer hide, got %q", h.rows()[0].Title())
	}
	if !strings.Contains(h.m.View(), "ON AIR") {
		t.Fatal("view does not show what is on air")
	}

	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	if got, _ := h.state.Get(context.Background()); got != nil {
		t.Fatalf("expected nothing on air, got %v", got)
	}
	h.send(observedMsg{activestate.Observation{}})
	if h.rows()[0].live {
		t.Fatal("row still offers hide")
	}
}

func TestThemeCycleLeavesOnAirAlone(t *testing.T) {
	h := newHarness(t)
	h.send(tea.KeyMsg{Type: tea.KeyEnter})

	h.send(runes("t"))
	if h.m.theme == nil || h.m.theme.ID != "theme-2" {
		t.Fatalf("expected theme-2 selected, got %v", h.m.theme)
	}
	active, _ := h.svc.ActiveTheme(context.Background())
	if active.ID != "theme-2" {
		t.Fatalf("selection not persisted: %s", active.ID)
	}
	got, _ := h.state.Get(context.Background())
	if got.Theme.ID != "theme-1" {
		t.Fatalf("pair on air was restyled to %s", got.Theme.ID)
	}

	h.send(runes("t"))
	h.send(runes("t"))
	if h.m.theme.ID != "theme-1" {
		t.Fatalf("expected wrap to theme-1, got %s", h.m.theme.ID)
	}
}

func TestNoActiveThemeIsANotice(t *testing.T) {
	h := newHarness(t)
	if err := h.svc.SetActiveTheme(context.Background(), ""); err != nil {
		t.Fatalf("clear theme: %v", err)
	}
	h.send(tea.KeyMsg{Type: tea.KeyEnter})
	if h.m.err == nil || !strings.Contains(h.m.err.Error(), "no active theme") {
		t.Fatalf("expected no active theme notice, got %v", h.m.err)
	}
	if got, _ := h.state.Get(context.Background()); got != nil {
		t.Fatalf("a failed show put %v on air", got)
	}
	if !strings.Contains(h.m.View(), "no active theme") {
		t.Fatal("notice not rendered")
	}
}

func TestMoveReordersWithinKind(t *testing.T) {
	h := newHarness(t)
	h.send(tea.KeyMsg{Type: tea.KeyDown})
	h.send(runes("K"))
	rows := h.rows()
	if rows[0].o.ID != "person-2" || rows[1].o.ID != "person-1" {
		t.Fatalf("unexpected order %s, %s", rows[0].o.ID, rows[1].o.ID)
	}
}

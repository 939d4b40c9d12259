package commands

import (
	"context"
	"testing"

	"tableflip.dev/lowerthird/pkg/overlay"
	"tableflip.dev/lowerthird/pkg/store"
)

// isolate points the config at a fresh catalog and away from any real
// ~/.lowerthird.yaml.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LOWERTHIRD_CONFIG_PATH", t.TempDir())
	t.Setenv("LOWERTHIRD_PATH", dir)
	t.Setenv("LOWERTHIRD_BACKEND", "disk")
	return dir
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := New()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestCommandTree(t *testing.T) {
	root := New()
	for _, path := range [][]string{
		{"overlay", "list"},
		{"overlay", "add"},
		{"overlay", "edit"},
		{"overlay", "remove"},
		{"overlay", "move"},
		{"theme", "list"},
		{"theme", "add"},
		{"theme", "edit"},
		{"theme", "delete"},
		{"theme", "use"},
		{"theme", "export"},
		{"theme", "import"},
		{"theme", "upload"},
		{"show"},
		{"hide"},
		{"status"},
		{"display"},
		{"docstore"},
		{"ui"},
		{"mcp"},
		{"plan"},
		{"migrate"},
		{"info"},
		{"version"},
		{"completion"},
	} {
		found, _, err := root.Find(path)
		if err != nil || found == root {
			t.Errorf("command %v not registered", path)
		}
	}
}

func TestShowAndHideThroughTheCatalog(t *testing.T) {
	dir := isolate(t)

	if err := execute(t, "show", "person-1"); err != nil {
		t.Fatalf("show: %v", err)
	}

	p, err := store.Load(store.StaticConfig{Path: dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	raw, err := p.ActiveRecord()
	if err != nil {
		t.Fatalf("active record: %v", err)
	}
	pair, err := overlay.Decode(raw)
	if err != nil || pair == nil {
		t.Fatalf("expected a pair on air, got %v (%v)", pair, err)
	}
	if pair.Overlay.ID != "person-1" || pair.Theme.ID != "theme-1" {
		t.Fatalf("unexpected pair %s/%s", pair.Overlay.ID, pair.Theme.ID)
	}

	if err := execute(t, "hide"); err != nil {
		t.Fatalf("hide: %v", err)
	}
	raw, _ = p.ActiveRecord()
	if pair, _ := overlay.Decode(raw); pair != nil {
		t.Fatalf("expected nothing on air, got %v", pair)
	}
}

func TestOverlayAddRejectsUnknownKind(t *testing.T) {
	isolate(t)
	if err := execute(t, "overlay", "add", "video", "A", "B"); err == nil {
		t.Fatal("expected an unknown type error")
	}
}

func TestOverlayAddAndMove(t *testing.T) {
	dir := isolate(t)
	if err := execute(t, "overlay", "add", "person", "Ada Lovelace", "Guest"); err != nil {
		t.Fatalf("add: %v", err)
	}
	p, err := store.Load(store.StaticConfig{Path: dir})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cat, err := p.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	last := cat.Overlays[len(cat.Overlays)-1]

	if err := execute(t, "overlay", "move", last, "up"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := execute(t, "overlay", "move", last, "sideways"); err == nil {
		t.Fatal("expected a bad direction error")
	}
}

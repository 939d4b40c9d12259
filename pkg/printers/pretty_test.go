package printers

import (
	"bytes"
	"strings"
	"testing"

	"tableflip.dev/lowerthird/pkg/overlay"
)

func TestOverlaysMarksTheLiveRow(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{ShowID: true, Out: &buf}
	pp.Overlays([]*overlay.Overlay{
		{ID: "person-1", Kind: overlay.KindPerson, Title: "John Doe", Subtitle: "Senior Pastor"},
		{ID: "person-2", Kind: overlay.KindPerson, Title: "Jane Smith", Subtitle: "Worship Leader"},
	}, func(id string) bool { return id == "person-2" })

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %q", buf.String())
	}
	if strings.Contains(lines[0], "●") || !strings.Contains(lines[1], "●") {
		t.Fatalf("live marker on the wrong row:\n%s", buf.String())
	}
	if !strings.Contains(lines[0], "person-1") || !strings.Contains(lines[0], "Senior Pastor") {
		t.Fatalf("row missing id or subtitle: %q", lines[0])
	}
}

func TestEmptyListsSayNone(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Overlays(nil, nil)
	pp.Themes(nil, "")
	if strings.Count(buf.String(), "none") != 2 {
		t.Fatalf("expected two none markers, got %q", buf.String())
	}
}

func TestPair(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Pair(nil)
	if !strings.Contains(buf.String(), "off air") {
		t.Fatalf("got %q", buf.String())
	}
	buf.Reset()
	pp.Pair(&overlay.Pair{
		Overlay: overlay.Overlay{ID: "music-1", Kind: overlay.KindMusic, Title: "Amazing Grace", Subtitle: "John Newton"},
		Theme:   overlay.Theme{ID: "theme-2", Name: "Default Dark"},
	})
	for _, want := range []string{"on air", "Amazing Grace", "John Newton", "music-1", "Default Dark"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("missing %q in %q", want, buf.String())
		}
	}
}

func TestLayerSummary(t *testing.T) {
	if got := layerSummary(&overlay.Theme{}); got != "-" {
		t.Fatalf("got %q", got)
	}
	if got := layerSummary(&overlay.Theme{Layer1: "a", Layer3: "c"}); got != "1,3" {
		t.Fatalf("got %q", got)
	}
}

package overlay

import (
	"errors"
	"strings"
	"testing"
)

func samplePair() *Pair {
	return &Pair{
		Overlay: Overlay{ID: "music-1", Kind: KindMusic, Title: "Amazing Grace", Subtitle: "John Newton"},
		Theme: Theme{
			ID:                  "theme-2",
			Name:                "Default Dark",
			TitleColor:          "#FFFFFF",
			SubtitleColor:       "#CCCCCC",
			MaskBackgroundColor: "rgba(0, 0, 0, 0.7)",
		},
	}
}

func TestEncodeUsesSharedRecordShape(t *testing.T) {
	p := samplePair()
	p.Theme.Layer2 = "https://example.com/l2.png"
	data, err := Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"lowerThird"`, `"type":"music"`, `"backgroundColor"`, `"backgroundLayer2"`} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %s in %s", want, s)
		}
	}
	if strings.Contains(s, "backgroundLayer1") {
		t.Fatalf("empty layers should be omitted: %s", s)
	}

	back, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *back != *p {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, p)
	}
}

func TestNoneIsAbsence(t *testing.T) {
	data, err := Encode(nil)
	if err != nil || data != nil {
		t.Fatalf("expected nil record for None, got %q (%v)", data, err)
	}
	for _, in := range []string{"", "  ", "null", "\nnull\n"} {
		p, err := Decode([]byte(in))
		if err != nil || p != nil {
			t.Fatalf("Decode(%q) = %v, %v; want None", in, p, err)
		}
	}
}

func TestDecodeMalformedFailsSafe(t *testing.T) {
	for _, in := range []string{"{", `{"lowerThird":{"id":"a"}}`, `[1,2]`} {
		p, err := Decode([]byte(in))
		if p != nil {
			t.Fatalf("Decode(%q) returned a pair", in)
		}
		if !errors.Is(err, ErrMalformed) {
			t.Fatalf("Decode(%q) err = %v, want ErrMalformed", in, err)
		}
	}
}

func TestSameIdentityIgnoresOtherFields(t *testing.T) {
	a := samplePair()
	b := samplePair()
	b.Theme.Name = "Renamed"
	b.Overlay.Title = "Edited"
	if !SameIdentity(a, b) {
		t.Fatalf("expected same identity when only fields differ")
	}
	b.Theme.ID = "theme-3"
	if SameIdentity(a, b) {
		t.Fatalf("expected different identity when theme id changes")
	}
	if SameIdentity(a, nil) || !SameIdentity(nil, nil) {
		t.Fatalf("nil handling wrong")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" Music "); err != nil || k != KindMusic {
		t.Fatalf("ParseKind music = %q, %v", k, err)
	}
	if _, err := ParseKind("band"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestValidate(t *testing.T) {
	o := Overlay{Kind: KindPerson, Title: "Jane", Subtitle: " "}
	if err := o.Validate(); !errors.Is(err, ErrSubtitleRequired) {
		t.Fatalf("expected subtitle error, got %v", err)
	}
	th := Theme{}
	if err := th.Validate(); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected name error, got %v", err)
	}
}

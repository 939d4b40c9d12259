package options

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/control"
	"tableflip.dev/lowerthird/pkg/overlay"
)

func TestWrapKeepsParagraphs(t *testing.T) {
	got := Wrap("one two three\n\nfour five", 8)
	want := "one two\nthree\n\nfour\nfive"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	for _, line := range strings.Split(Wrap80(strings.Repeat("word ", 60)), "\n") {
		if len(line) > 80 {
			t.Fatalf("line longer than 80: %q", line)
		}
	}
}

func TestErrorCode(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"not found":       {fmt.Errorf("show: %w", app.ErrNotFound), "not_found"},
		"no active theme": {control.ErrNoActiveTheme, "no_active_theme"},
		"transport":       {&control.TransportError{Op: "set", Err: errors.New("refused")}, "unavailable"},
		"validation":      {overlay.ErrTitleRequired, "invalid"},
		"other":           {errors.New("boom"), "error"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ErrorCode(tc.err); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGetKind(t *testing.T) {
	o := KindOptions{}
	if k, err := o.GetKind(); err != nil || k != "" {
		t.Fatalf("empty kind: got %q, %v", k, err)
	}
	o.Kind = "music"
	if k, err := o.GetKind(); err != nil || k != overlay.KindMusic {
		t.Fatalf("music: got %q, %v", k, err)
	}
	o.Kind = "video"
	if _, err := o.GetKind(); err == nil {
		t.Fatal("expected an error for an unknown kind")
	}
}

package get

import (
	"testing"

	"tableflip.dev/lowerthird/pkg/overlay"
)

func TestFiltered(t *testing.T) {
	all := []*overlay.Overlay{
		{ID: "person-1", Kind: overlay.KindPerson, Title: "John Doe"},
		{ID: "person-2", Kind: overlay.KindPerson, Title: "Jane Smith"},
		{ID: "music-1", Kind: overlay.KindMusic, Title: "Amazing Grace"},
	}

	tests := map[string]struct {
		get  Get
		want []string
		err  bool
	}{
		"all":        {get: Get{}, want: []string{"person-1", "person-2", "music-1"}},
		"kind":       {get: Get{Kind: overlay.KindMusic}, want: []string{"music-1"}},
		"match":      {get: Get{Match: "J*"}, want: []string{"person-1", "person-2"}},
		"both":       {get: Get{Kind: overlay.KindPerson, Match: "*smith"}, want: []string{"person-2"}},
		"no match":   {get: Get{Match: "zzz"}, want: []string{}},
		"bad glob":   {get: Get{Match: "[oops"}, err: true},
		"blank glob": {get: Get{Match: "  "}, want: []string{"person-1", "person-2", "music-1"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := tc.get.filtered(all)
			if tc.err {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d overlays, want %d", len(got), len(tc.want))
			}
			for i, o := range got {
				if o.ID != tc.want[i] {
					t.Errorf("position %d: got %s, want %s", i, o.ID, tc.want[i])
				}
			}
		})
	}
}

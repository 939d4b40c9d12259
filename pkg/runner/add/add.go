package add

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/overlay"
	"tableflip.dev/lowerthird/pkg/printers"
)

type Add struct {
	Kind     overlay.Kind
	Title    string
	Subtitle string
	JSON     bool

	Service *app.Service
}

func (n *Add) Do(ctx context.Context) error {
	o, err := n.Service.AddOverlay(ctx, n.Kind, n.Title, n.Subtitle)
	if err != nil {
		return err
	}
	if n.JSON {
		b, err := json.Marshal(o)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}

	all, err := n.Service.Overlays(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: true}
	pp.TitleWithCount(string(o.Kind), countKind(all, o.Kind))
	pp.Overlays(filterKind(all, o.Kind), func(id string) bool { return false })
	return nil
}

func filterKind(all []*overlay.Overlay, k overlay.Kind) []*overlay.Overlay {
	out := make([]*overlay.Overlay, 0, len(all))
	for _, o := range all {
		if o.Kind == k {
			out = append(out, o)
		}
	}
	return out
}

func countKind(all []*overlay.Overlay, k overlay.Kind) int {
	return len(filterKind(all, k))
}

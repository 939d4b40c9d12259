package plan

import (
	"context"

	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/overlay"
	"tableflip.dev/lowerthird/pkg/printers"
)

// Plan imports the songs of a service plan as music overlays.
type Plan struct {
	URL    string
	ShowID bool

	Service *app.Service
}

func (n *Plan) Do(ctx context.Context) error {
	added, err := n.Service.ImportPlan(ctx, n.URL)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID}
	pp.TitleWithCount("imported "+string(overlay.KindMusic), len(added))
	pp.Overlays(added, nil)
	return nil
}

package status

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/printers"
)

// Status prints what is on air, the selected theme, and the catalog grouped
// by kind.
type Status struct {
	ShowID bool
	JSON   bool

	Service *app.Service
}

func (n *Status) Do(ctx context.Context) error {
	r, err := n.Service.Report(ctx)
	if err != nil {
		return err
	}
	if n.JSON {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID}
	pp.NewLine()
	pp.Pair(r.OnAir)
	faint := color.New(color.Faint)
	if r.ActiveTheme != nil {
		_, _ = faint.Fprintf(color.Output, "next activation uses %q, %d themes\n", r.ActiveTheme.Name, r.Themes)
	} else {
		_, _ = color.New(color.FgYellow).Fprintf(color.Output, "no active theme, %d themes\n", r.Themes)
	}
	pp.NewLine()

	live := func(id string) bool { return r.OnAir != nil && r.OnAir.Overlay.ID == id }
	for _, s := range r.Sections {
		pp.TitleWithCount(string(s.Kind), len(s.Overlays))
		pp.Overlays(s.Overlays, live)
	}
	return nil
}

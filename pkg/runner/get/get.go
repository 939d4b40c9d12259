package get

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gobwas/glob"

	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/control"
	"tableflip.dev/lowerthird/pkg/overlay"
	"tableflip.dev/lowerthird/pkg/printers"
)

type Get struct {
	ShowID bool
	// Kind limits the listing to one kind; empty lists all.
	Kind overlay.Kind
	// Match is a case-insensitive glob over titles.
	Match string
	JSON  bool

	Service    *app.Service
	Controller *control.Controller
}

func (n *Get) Do(ctx context.Context) error {
	all, err := n.Service.Overlays(ctx)
	if err != nil {
		return err
	}
	all, err = n.filtered(all)
	if err != nil {
		return err
	}

	// The listing is still useful when the active state cannot be read.
	isActive := func(string) bool { return false }
	if n.Controller != nil {
		if _, err := n.Controller.Refresh(ctx); err == nil {
			isActive = n.Controller.IsActive
		}
	}

	if n.JSON {
		type row struct {
			*overlay.Overlay
			Active bool `json:"active"`
		}
		rows := make([]row, 0, len(all))
		for _, o := range all {
			rows = append(rows, row{Overlay: o, Active: isActive(o.ID)})
		}
		b, err := json.Marshal(rows)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID}
	pp.NewLine()
	for _, k := range overlay.AllKinds() {
		if n.Kind != "" && n.Kind != k {
			continue
		}
		section := make([]*overlay.Overlay, 0, len(all))
		for _, o := range all {
			if o.Kind == k {
				section = append(section, o)
			}
		}
		pp.TitleWithCount(string(k), len(section))
		pp.Overlays(section, isActive)
	}
	return nil
}

func (n *Get) filtered(all []*overlay.Overlay) ([]*overlay.Overlay, error) {
	var g glob.Glob
	if strings.TrimSpace(n.Match) != "" {
		var err error
		if g, err = glob.Compile(strings.ToLower(n.Match)); err != nil {
			return nil, fmt.Errorf("invalid --match pattern: %w", err)
		}
	}
	c := make([]*overlay.Overlay, 0, len(all))
	for _, o := range all {
		if n.Kind != "" && o.Kind != n.Kind {
			continue
		}
		if g != nil && !g.Match(strings.ToLower(o.Title)) {
			continue
		}
		c = append(c, o)
	}
	return c, nil
}

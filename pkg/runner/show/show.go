package show

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/control"
	"tableflip.dev/lowerthird/pkg/printers"
)

// Show puts an overlay on air with the active theme, or with ThemeID when
// set.
type Show struct {
	ID      string
	ThemeID string
	JSON    bool

	Service    *app.Service
	Controller *control.Controller
}

func (n *Show) Do(ctx context.Context) error {
	o, err := n.Service.Overlay(ctx, n.ID)
	if err != nil {
		return err
	}
	if n.ThemeID != "" {
		t, err := n.Service.Theme(ctx, n.ThemeID)
		if err != nil {
			return err
		}
		if err := n.Controller.ShowWithTheme(ctx, o, t); err != nil {
			return err
		}
	} else if err := n.Controller.Show(ctx, o); err != nil {
		return err
	}
	return printPair(ctx, n.Controller, n.JSON)
}

// Hide takes whatever is on air off air. Hiding with nothing on air is not an
// error.
type Hide struct {
	JSON bool

	Controller *control.Controller
}

func (n *Hide) Do(ctx context.Context) error {
	if err := n.Controller.Hide(ctx); err != nil {
		return err
	}
	return printPair(ctx, n.Controller, n.JSON)
}

func printPair(ctx context.Context, c *control.Controller, asJSON bool) error {
	p, err := c.Refresh(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		b, err := json.Marshal(map[string]interface{}{"shown": p != nil, "active": p})
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	pp := printers.PrettyPrint{}
	pp.Pair(p)
	return nil
}

package edit

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/lowerthird/pkg/app"
)

// Edit replaces the title and subtitle of an overlay. Empty fields keep
// their current value.
type Edit struct {
	ID       string
	Title    string
	Subtitle string

	Service *app.Service
}

func (n *Edit) Do(ctx context.Context) error {
	current, err := n.Service.Overlay(ctx, n.ID)
	if err != nil {
		return err
	}
	title, subtitle := n.Title, n.Subtitle
	if title == "" {
		title = current.Title
	}
	if subtitle == "" {
		subtitle = current.Subtitle
	}
	o, err := n.Service.UpdateOverlay(ctx, n.ID, title, subtitle)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(color.Output, "updated %s: %s\n", o.ID, o)
	return nil
}

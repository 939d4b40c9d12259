package remove

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/lowerthird/pkg/app"
)

// Remove deletes an overlay. Removing the overlay on air also takes it off
// air.
type Remove struct {
	ID string

	Service *app.Service
}

func (n *Remove) Do(ctx context.Context) error {
	if err := n.Service.DeleteOverlay(ctx, n.ID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(color.Output, "removed %s\n", n.ID)
	return nil
}

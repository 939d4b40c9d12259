package ui

import (
	"context"

	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/control"
	"tableflip.dev/lowerthird/pkg/tui"
)

// UI runs the operator console.
type UI struct {
	Service    *app.Service
	Controller *control.Controller
}

func (d *UI) Do(ctx context.Context) error {
	return tui.Run(ctx, d.Service, d.Controller)
}

package move

import (
	"context"

	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/runner/get"
)

// Move swaps an overlay with its neighbour of the same kind and prints the
// resulting order.
type Move struct {
	ID        string
	Direction app.Direction

	Service *app.Service
}

func (n *Move) Do(ctx context.Context) error {
	o, err := n.Service.Overlay(ctx, n.ID)
	if err != nil {
		return err
	}
	if err := n.Service.MoveOverlay(ctx, n.ID, n.Direction); err != nil {
		return err
	}
	g := get.Get{ShowID: true, Kind: o.Kind, Service: n.Service}
	return g.Do(ctx)
}

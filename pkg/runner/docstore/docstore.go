package docstore

import (
	"context"
	"log/slog"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/docstore"
)

// Serve hosts the shared active-state document for remote controllers and
// displays.
type Serve struct {
	Addr  string
	State activestate.Store

	Logger *slog.Logger
}

func (n *Serve) Do(ctx context.Context) error {
	srv := docstore.New(n.Logger)
	srv.Handle(activestate.Collection, activestate.Document, n.State)
	return srv.ListenAndServe(ctx, n.Addr)
}

package activestate

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"tableflip.dev/lowerthird/pkg/overlay"
	"tableflip.dev/lowerthird/pkg/store"
)

// Disk keeps the record in the diskv store shared with the catalog. Other
// processes on the same machine see changes through the store's filesystem
// watch.
type Disk struct {
	p      store.Persistence
	logger *slog.Logger
}

func NewDisk(p store.Persistence, logger *slog.Logger) *Disk {
	return &Disk{p: p, logger: orDefault(logger)}
}

func (d *Disk) Get(_ context.Context) (*overlay.Pair, error) {
	data, err := d.p.ActiveRecord()
	if err != nil {
		return nil, err
	}
	return decode(d.logger, data), nil
}

func (d *Disk) Set(_ context.Context, p *overlay.Pair) error {
	data, err := overlay.Encode(p)
	if err != nil {
		return err
	}
	if data == nil {
		return d.p.EraseActiveRecord()
	}
	return d.p.StoreActiveRecord(data)
}

// Subscribe re-reads the record on every active-state event and emits only
// when the bytes differ from the last value delivered. Read failures keep
// the last good value.
func (d *Disk) Subscribe(ctx context.Context) (<-chan Observation, error) {
	events, err := d.p.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("activestate: subscribe: %w", err)
	}
	initial, err := d.p.ActiveRecord()
	if err != nil {
		return nil, fmt.Errorf("activestate: subscribe: %w", err)
	}

	out := make(chan Observation, 16)
	go func() {
		defer close(out)
		last := initial
		offer(out, Observation{Pair: decode(d.logger, last)})
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Type != store.EventActiveChanged && ev.Type != store.EventCatalogInvalidated {
					continue
				}
				data, err := d.p.ActiveRecord()
				if err != nil {
					d.logger.Warn("active record read failed", "error", err)
					continue
				}
				if bytes.Equal(data, last) {
					continue
				}
				last = data
				offer(out, Observation{Pair: decode(d.logger, data)})
			}
		}
	}()
	return out, nil
}

// Package activestate holds the single shared record of what the display
// surface should show, with change notification to every subscriber.
package activestate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tableflip.dev/lowerthird/pkg/overlay"
	"tableflip.dev/lowerthird/pkg/store"
)

// Observation is one complete view of the record: a pair, or nil for none.
type Observation struct {
	Pair *overlay.Pair
}

// Store is the shared active-state contract. Set(nil) clears the record.
// Subscribe delivers the current value first, then one observation per
// committed change in commit order, until ctx is done.
type Store interface {
	Get(ctx context.Context) (*overlay.Pair, error)
	Set(ctx context.Context, p *overlay.Pair) error
	Subscribe(ctx context.Context) (<-chan Observation, error)
}

// Open returns the store variant selected by cfg.
func Open(cfg store.Config, p store.Persistence, logger *slog.Logger) (Store, error) {
	if cfg == nil {
		return nil, errors.New("activestate: no config")
	}
	switch cfg.Backend() {
	case store.BackendDisk:
		if p == nil {
			return nil, errors.New("activestate: disk backend needs persistence")
		}
		return NewDisk(p, logger), nil
	case store.BackendRemote:
		return NewRemote(cfg.RemoteURL(), logger), nil
	default:
		return nil, fmt.Errorf("activestate: unknown backend %q", cfg.Backend())
	}
}

// decode turns a raw record into a pair, failing safe to none.
func decode(logger *slog.Logger, data []byte) *overlay.Pair {
	p, err := overlay.Decode(data)
	if err != nil {
		logger.Warn("ignoring malformed active record", "error", err)
		return nil
	}
	return p
}

// offer delivers obs without blocking the producer. When the buffer is full
// the oldest queued observation is dropped; the newest always gets in.
func offer(ch chan Observation, obs Observation) {
	for {
		select {
		case ch <- obs:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

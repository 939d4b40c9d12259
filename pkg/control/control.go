// Package control turns operator intent into writes to the shared active
// state, and answers "is this overlay on air" from a live subscription.
package control

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/overlay"
)

// ErrNoActiveTheme is a configuration error: nothing can be shown until a
// theme is selected.
var ErrNoActiveTheme = errors.New("control: no active theme")

// TransportError wraps a failed write to the shared store. The write is not
// retried.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("control: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ThemeSource resolves the theme currently selected for new activations.
type ThemeSource interface {
	ActiveTheme(ctx context.Context) (*overlay.Theme, error)
}

// Controller is the activation controller.
type Controller struct {
	Themes ThemeSource
	State  activestate.Store

	mu      sync.RWMutex
	current *overlay.Pair
	known   bool
}

// Show pairs o with the active theme at call time and publishes it,
// replacing whatever was active.
func (c *Controller) Show(ctx context.Context, o *overlay.Overlay) error {
	if c.Themes == nil {
		return ErrNoActiveTheme
	}
	theme, err := c.Themes.ActiveTheme(ctx)
	if err != nil {
		return err
	}
	return c.ShowWithTheme(ctx, o, theme)
}

// ShowWithTheme publishes the pair (o, theme).
func (c *Controller) ShowWithTheme(ctx context.Context, o *overlay.Overlay, theme *overlay.Theme) error {
	if o == nil {
		return errors.New("control: overlay required")
	}
	if theme == nil {
		return ErrNoActiveTheme
	}
	p := &overlay.Pair{Overlay: *o, Theme: *theme}
	if err := c.State.Set(ctx, p); err != nil {
		return &TransportError{Op: "show", Err: err}
	}
	c.remember(p)
	return nil
}

// Hide clears the active pair. Hiding when nothing is shown is harmless.
func (c *Controller) Hide(ctx context.Context) error {
	if err := c.State.Set(ctx, nil); err != nil {
		return &TransportError{Op: "hide", Err: err}
	}
	c.remember(nil)
	return nil
}

// IsActive reports whether id is the overlay in the last observed pair.
func (c *Controller) IsActive(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current != nil && c.current.Overlay.ID == id
}

// Active returns the last observed pair and whether any observation has
// arrived yet.
func (c *Controller) Active() (*overlay.Pair, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Clone(), c.known
}

// Refresh reads the store once, for one-shot callers that never Track.
func (c *Controller) Refresh(ctx context.Context) (*overlay.Pair, error) {
	p, err := c.State.Get(ctx)
	if err != nil {
		return nil, &TransportError{Op: "read", Err: err}
	}
	c.remember(p)
	return p.Clone(), nil
}

// Track keeps the snapshot in step with the store until ctx is done. Every
// observation is also forwarded on the returned channel, which is closed
// when the subscription ends.
func (c *Controller) Track(ctx context.Context) (<-chan activestate.Observation, error) {
	in, err := c.State.Subscribe(ctx)
	if err != nil {
		return nil, &TransportError{Op: "subscribe", Err: err}
	}
	out := make(chan activestate.Observation, 1)
	go func() {
		defer close(out)
		for obs := range in {
			c.remember(obs.Pair)
			select {
			case out <- obs:
			default:
				// Slow reader: keep only the newest.
				select {
				case <-out:
				default:
				}
				out <- obs
			}
		}
	}()
	return out, nil
}

func (c *Controller) remember(p *overlay.Pair) {
	c.mu.Lock()
	c.current = p.Clone()
	c.known = true
	c.mu.Unlock()
}

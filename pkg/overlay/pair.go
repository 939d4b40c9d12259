package overlay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed is returned by Decode when a stored record cannot be used.
var ErrMalformed = errors.New("overlay: malformed active record")

// Pair is the single overlay+theme combination selected for display. A nil
// *Pair means nothing is shown.
type Pair struct {
	Overlay Overlay `json:"lowerThird"`
	Theme   Theme   `json:"theme"`
}

// Identity is what decides whether two pairs are the same for presentation
// purposes. Field edits that keep both ids do not change it.
type Identity struct {
	OverlayID string
	ThemeID   string
}

// Identity returns the zero Identity for a nil pair.
func (p *Pair) Identity() Identity {
	if p == nil {
		return Identity{}
	}
	return Identity{OverlayID: p.Overlay.ID, ThemeID: p.Theme.ID}
}

func (p *Pair) String() string {
	if p == nil {
		return "none"
	}
	return fmt.Sprintf("%s@%s", p.Overlay.ID, p.Theme.ID)
}

// Clone returns a deep copy so observers never share a value with writers.
func (p *Pair) Clone() *Pair {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

// SameIdentity reports whether a and b select the same overlay and theme.
// Two nil pairs are the same; a nil and a non-nil pair are not.
func SameIdentity(a, b *Pair) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Identity() == b.Identity()
}

// Encode serialises a pair into the shared record shape. A nil pair encodes
// to nil: absence, not a null-valued field, is how None is stored.
func Encode(p *Pair) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Decode parses a stored record. Empty input and a JSON null both decode to
// None. Anything unparsable, or a record missing either id, returns nil and
// an error wrapping ErrMalformed so callers can fail safe to None.
func Decode(data []byte) (*Pair, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var p Pair
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if p.Overlay.ID == "" || p.Theme.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrMalformed)
	}
	return &p, nil
}

// Package overlay defines the lower third, theme and active pair records
// shared by the control and display surfaces.
package overlay

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies what a lower third credits.
type Kind string

const (
	// KindPerson credits a speaker (name / role).
	KindPerson Kind = "person"
	// KindMusic credits a song (title / author).
	KindMusic Kind = "music"
)

// AllKinds returns the supported kinds in display order.
func AllKinds() []Kind {
	return []Kind{KindPerson, KindMusic}
}

// ParseKind converts a string to a Kind or returns an error for unknown values.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, candidate := range AllKinds() {
		if candidate == k {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("overlay: unknown kind %q", raw)
}

var (
	ErrTitleRequired    = errors.New("overlay: title required")
	ErrSubtitleRequired = errors.New("overlay: subtitle required")
	ErrNameRequired     = errors.New("overlay: theme name required")
)

// Overlay is a named lower third: a title/subtitle pair.
type Overlay struct {
	ID       string `json:"id" yaml:"id"`
	Kind     Kind   `json:"type" yaml:"type"`
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
}

// Validate checks the fields an operator must fill in.
func (o *Overlay) Validate() error {
	if strings.TrimSpace(o.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(o.Subtitle) == "" {
		return ErrSubtitleRequired
	}
	if _, err := ParseKind(string(o.Kind)); err != nil {
		return err
	}
	return nil
}

func (o *Overlay) String() string {
	return fmt.Sprintf("%s / %s", o.Title, o.Subtitle)
}

// Theme is the visual treatment applied to an overlay. Layer references are
// either direct image URLs, local paths or sharing links that need
// normalising before fetch.
type Theme struct {
	ID                  string `json:"id" yaml:"id" toml:"id"`
	Name                string `json:"name" yaml:"name" toml:"name"`
	TitleColor          string `json:"titleColor" yaml:"titleColor" toml:"titleColor"`
	SubtitleColor       string `json:"subtitleColor" yaml:"subtitleColor" toml:"subtitleColor"`
	MaskBackgroundColor string `json:"backgroundColor" yaml:"backgroundColor" toml:"backgroundColor"`
	Layer1              string `json:"backgroundLayer1,omitempty" yaml:"backgroundLayer1,omitempty" toml:"backgroundLayer1,omitempty"`
	Layer2              string `json:"backgroundLayer2,omitempty" yaml:"backgroundLayer2,omitempty" toml:"backgroundLayer2,omitempty"`
	Layer3              string `json:"backgroundLayer3,omitempty" yaml:"backgroundLayer3,omitempty" toml:"backgroundLayer3,omitempty"`
}

// Layers returns the three layer references, index 0 being layer1.
func (t *Theme) Layers() [3]string {
	return [3]string{t.Layer1, t.Layer2, t.Layer3}
}

// Validate checks the theme has a name. Colours are checked by the
// compositor, which owns colour parsing.
func (t *Theme) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

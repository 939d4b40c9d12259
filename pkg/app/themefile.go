package app

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"tableflip.dev/lowerthird/pkg/overlay"
)

// ThemeFile is the on-disk form of exported themes.
type ThemeFile struct {
	Themes []overlay.Theme `yaml:"themes" toml:"themes"`
}

// MarshalThemes encodes themes as YAML or TOML, chosen by the extension of
// path.
func MarshalThemes(path string, themes []*overlay.Theme) ([]byte, error) {
	file := ThemeFile{Themes: make([]overlay.Theme, 0, len(themes))}
	for _, t := range themes {
		file.Themes = append(file.Themes, *t)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Marshal(file)
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(file); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("app: unsupported theme file extension %q", ext)
	}
}

// UnmarshalThemes decodes a theme file written by MarshalThemes.
func UnmarshalThemes(path string, data []byte) ([]overlay.Theme, error) {
	var file ThemeFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("app: parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("app: parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("app: unsupported theme file extension %q", ext)
	}
	return file.Themes, nil
}

// ExportThemes writes every theme to path.
func (s *Service) ExportThemes(ctx context.Context, path string) (int, error) {
	themes, err := s.Themes(ctx)
	if err != nil {
		return 0, err
	}
	data, err := MarshalThemes(path, themes)
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, err
	}
	return len(themes), nil
}

// ImportThemes adds every theme in path as a new theme. Ids in the file are
// ignored, so importing twice yields duplicates rather than overwrites.
func (s *Service) ImportThemes(ctx context.Context, path string) ([]*overlay.Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	themes, err := UnmarshalThemes(path, data)
	if err != nil {
		return nil, err
	}
	// Validate everything first so a bad entry imports nothing.
	for i := range themes {
		if err := ValidateTheme(&themes[i]); err != nil {
			return nil, fmt.Errorf("app: theme %d (%q): %w", i+1, themes[i].Name, err)
		}
	}
	added := make([]*overlay.Theme, 0, len(themes))
	for i := range themes {
		t, err := s.AddTheme(ctx, &themes[i])
		if err != nil {
			return added, err
		}
		added = append(added, t)
	}
	return added, nil
}

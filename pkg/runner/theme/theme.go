package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/overlay"
	"tableflip.dev/lowerthird/pkg/printers"
)

type List struct {
	ShowID bool
	JSON   bool

	Service *app.Service
}

func (n *List) Do(ctx context.Context) error {
	themes, err := n.Service.Themes(ctx)
	if err != nil {
		return err
	}
	active, err := n.Service.ActiveTheme(ctx)
	if err != nil {
		return err
	}
	activeID := ""
	if active != nil {
		activeID = active.ID
	}
	if n.JSON {
		b, err := json.Marshal(map[string]interface{}{"themes": themes, "activeThemeId": activeID})
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID}
	pp.TitleWithCount("themes", len(themes))
	pp.Themes(themes, activeID)
	return nil
}

// Add creates a theme. Theme carries the field values.
type Add struct {
	Theme overlay.Theme

	Service *app.Service
}

func (n *Add) Do(ctx context.Context) error {
	t := n.Theme
	added, err := n.Service.AddTheme(ctx, &t)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(color.Output, "added theme %s (%s)\n", added.Name, added.ID)
	return nil
}

// Edit overwrites the non-empty fields of Changes onto an existing theme.
// Clear lists the layers to empty.
type Edit struct {
	ID      string
	Changes overlay.Theme
	Clear   []int

	Service *app.Service
}

func (n *Edit) Do(ctx context.Context) error {
	t, err := n.Service.Theme(ctx, n.ID)
	if err != nil {
		return err
	}
	merge(t, &n.Changes)
	for _, l := range n.Clear {
		if err := setLayer(t, l, ""); err != nil {
			return err
		}
	}
	updated, err := n.Service.UpdateTheme(ctx, t)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(color.Output, "updated theme %s (%s)\n", updated.Name, updated.ID)
	return nil
}

func merge(dst, src *overlay.Theme) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Name, src.Name)
	set(&dst.TitleColor, src.TitleColor)
	set(&dst.SubtitleColor, src.SubtitleColor)
	set(&dst.MaskBackgroundColor, src.MaskBackgroundColor)
	set(&dst.Layer1, src.Layer1)
	set(&dst.Layer2, src.Layer2)
	set(&dst.Layer3, src.Layer3)
}

func setLayer(t *overlay.Theme, layer int, v string) error {
	switch layer {
	case 1:
		t.Layer1 = v
	case 2:
		t.Layer2 = v
	case 3:
		t.Layer3 = v
	default:
		return fmt.Errorf("layer must be 1, 2 or 3, got %d", layer)
	}
	return nil
}

type Delete struct {
	ID string

	Service *app.Service
}

func (n *Delete) Do(ctx context.Context) error {
	if err := n.Service.DeleteTheme(ctx, n.ID); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(color.Output, "removed theme %s\n", n.ID)
	return nil
}

// Use selects the theme for the next activation. What is on air keeps its
// theme.
type Use struct {
	ID string

	Service *app.Service
}

func (n *Use) Do(ctx context.Context) error {
	if err := n.Service.SetActiveTheme(ctx, n.ID); err != nil {
		return err
	}
	if n.ID == "" {
		_, _ = fmt.Fprintln(color.Output, "cleared the active theme")
		return nil
	}
	_, _ = fmt.Fprintf(color.Output, "next activation uses %s\n", n.ID)
	return nil
}

type Export struct {
	Path string

	Service *app.Service
}

func (n *Export) Do(ctx context.Context) error {
	count, err := n.Service.ExportThemes(ctx, n.Path)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(color.Output, "wrote %d themes to %s\n", count, n.Path)
	return nil
}

type Import struct {
	Path   string
	ShowID bool

	Service *app.Service
}

func (n *Import) Do(ctx context.Context) error {
	added, err := n.Service.ImportThemes(ctx, n.Path)
	if err != nil {
		return err
	}
	active, err := n.Service.ActiveTheme(ctx)
	if err != nil {
		return err
	}
	activeID := ""
	if active != nil {
		activeID = active.ID
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID}
	pp.TitleWithCount("imported themes", len(added))
	pp.Themes(added, activeID)
	return nil
}

// Upload copies a local image into the asset store and points a layer at it.
type Upload struct {
	ID    string
	Layer int
	File  string

	Service *app.Service
}

func (n *Upload) Do(ctx context.Context) error {
	data, err := os.ReadFile(n.File)
	if err != nil {
		return err
	}
	t, err := n.Service.UploadLayer(ctx, n.ID, n.Layer, filepath.Base(n.File), data)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(color.Output, "layer %d of %s is now %s\n", n.Layer, t.Name, t.Layers()[n.Layer-1])
	return nil
}

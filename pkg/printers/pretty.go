package printers

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/lowerthird/pkg/overlay"
)

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)
	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " lower third")
	default:
		_, _ = c.Fprintln(pp.out(), " lower thirds")
	}
}

func none(w io.Writer) {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(w, " none\n\n")
}

// Overlays prints one row per overlay. isActive marks the one on air.
func (pp *PrettyPrint) Overlays(overlays []*overlay.Overlay, isActive func(id string) bool) {
	if len(overlays) == 0 {
		none(pp.out())
		return
	}
	live := color.New(color.FgHiRed, color.Bold)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, o := range overlays {
		marker := " "
		if isActive != nil && isActive(o.ID) {
			marker = live.Sprint("●")
		}
		row := []interface{}{marker}
		if pp.ShowID {
			row = append(row, y.Sprint(o.ID))
		}
		row = append(row, o.Title, faint.Sprint(o.Subtitle))
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Themes prints one row per theme. activeID marks the theme used by the
// next activation.
func (pp *PrettyPrint) Themes(themes []*overlay.Theme, activeID string) {
	if len(themes) == 0 {
		none(pp.out())
		return
	}
	bold := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	header := []interface{}{""}
	if pp.ShowID {
		header = append(header, bold.Sprint("ID"))
	}
	header = append(header, bold.Sprint("Name"), bold.Sprint("Title"), bold.Sprint("Subtitle"), bold.Sprint("Mask"), bold.Sprint("Layers"))
	tbl.AddRow(header...)
	for _, t := range themes {
		marker := " "
		if t.ID == activeID {
			marker = bold.Sprint("*")
		}
		row := []interface{}{marker}
		if pp.ShowID {
			row = append(row, y.Sprint(t.ID))
		}
		row = append(row, t.Name, t.TitleColor, t.SubtitleColor, t.MaskBackgroundColor, layerSummary(t))
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Pair prints what is on air.
func (pp *PrettyPrint) Pair(p *overlay.Pair) {
	if p == nil {
		_, _ = color.New(color.Faint).Fprintln(pp.out(), "off air")
		return
	}
	live := color.New(color.FgHiRed, color.Bold)
	faint := color.New(color.Faint)
	_, _ = live.Fprint(pp.out(), "● on air  ")
	_, _ = fmt.Fprintf(pp.out(), "%s / %s", p.Overlay.Title, p.Overlay.Subtitle)
	_, _ = faint.Fprintf(pp.out(), "  (%s, theme %s)\n", p.Overlay.ID, p.Theme.Name)
}

func layerSummary(t *overlay.Theme) string {
	var set []string
	for i, l := range t.Layers() {
		if strings.TrimSpace(l) != "" {
			set = append(set, fmt.Sprintf("%d", i+1))
		}
	}
	if len(set) == 0 {
		return "-"
	}
	return strings.Join(set, ",")
}

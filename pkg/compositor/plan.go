// Package compositor turns an active pair into a render plan: the three
// theme layers, the pill-shaped mask sized to the text, and the text block.
// Plans are in reference units on a 1920x180 canvas; Rasterize scales them.
package compositor

import (
	"errors"
	"image/color"
	"math"

	"tableflip.dev/lowerthird/pkg/imagelink"
	"tableflip.dev/lowerthird/pkg/overlay"
)

const (
	CanvasWidth  = 1920
	CanvasHeight = 180

	MaskHeight = 120
	MaskTop    = (CanvasHeight - MaskHeight) / 2
	MaskRadius = MaskHeight / 2

	TextLeftPadding  = 220
	TextRightPadding = 60

	TitleSize          = 48
	TitleLineHeight    = 48
	SubtitleSize       = 30
	SubtitleLineHeight = 36
	LineGap            = 4
)

var (
	textFallback = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	maskFallback = color.NRGBA{}
)

// Align is the horizontal anchoring of a layer image.
type Align string

const (
	AlignLeft  Align = "left"
	AlignRight Align = "right"
)

// Rect is an axis-aligned box in reference units.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// LayerSlot places one theme image. Slots are ordered bottom to top.
type LayerSlot struct {
	Layer   int    `json:"layer"`
	Z       int    `json:"z"`
	Source  string `json:"src"`
	Align   Align  `json:"align"`
	Clipped bool   `json:"clipped"`
	Rect    Rect   `json:"rect"`
}

// TextLine is one line of the text block. Baseline is measured from the
// top of the canvas.
type TextLine struct {
	Text       string      `json:"text"`
	Weight     Weight      `json:"-"`
	Size       float64     `json:"size"`
	LineHeight float64     `json:"lineHeight"`
	X          float64     `json:"x"`
	Top        float64     `json:"top"`
	Baseline   float64     `json:"baseline"`
	Width      float64     `json:"width"`
	Color      color.NRGBA `json:"-"`
	CSSColor   string      `json:"color"`
}

// Plan is everything needed to draw one pair.
type Plan struct {
	Identity  overlay.Identity `json:"-"`
	OverlayID string           `json:"overlayId"`
	ThemeID   string           `json:"themeId"`

	Mask         Rect        `json:"mask"`
	MaskColor    color.NRGBA `json:"-"`
	MaskCSSColor string      `json:"maskColor"`

	Layers   []LayerSlot `json:"layers"`
	Title    TextLine    `json:"title"`
	Subtitle TextLine    `json:"subtitle"`
}

// MaskWidthFor is the mask width for a text block of the given width.
func MaskWidthFor(textWidth float64) float64 {
	return TextLeftPadding + textWidth + TextRightPadding
}

// Compose measures the pair's text with fonts and lays out the frame. Layer
// references are normalised; empty references produce no slot.
func Compose(p *overlay.Pair, fonts *FontSet) (Plan, error) {
	if p == nil {
		return Plan{}, errors.New("compositor: nothing to compose")
	}
	if fonts == nil {
		return Plan{}, errors.New("compositor: no fonts")
	}

	title, err := line(fonts, p.Overlay.Title, Bold, TitleSize, TitleLineHeight, p.Theme.TitleColor)
	if err != nil {
		return Plan{}, err
	}
	sub, err := line(fonts, p.Overlay.Subtitle, Medium, SubtitleSize, SubtitleLineHeight, p.Theme.SubtitleColor)
	if err != nil {
		return Plan{}, err
	}

	// Stack the block and centre it in the mask.
	blockHeight := title.LineHeight + LineGap + sub.LineHeight
	top := MaskTop + (MaskHeight-blockHeight)/2
	if err := place(fonts, &title, top); err != nil {
		return Plan{}, err
	}
	if err := place(fonts, &sub, top+title.LineHeight+LineGap); err != nil {
		return Plan{}, err
	}

	maskW := MaskWidthFor(math.Max(title.Width, sub.Width))
	maskColor := ColorOr(p.Theme.MaskBackgroundColor, maskFallback)

	return Plan{
		Identity:     p.Identity(),
		OverlayID:    p.Overlay.ID,
		ThemeID:      p.Theme.ID,
		Mask:         Rect{X: 0, Y: MaskTop, W: maskW, H: MaskHeight},
		MaskColor:    maskColor,
		MaskCSSColor: CSS(maskColor),
		Layers:       Layers(&p.Theme, maskW),
		Title:        title,
		Subtitle:     sub,
	}, nil
}

// Layers lays out the theme's images against a mask of width maskW, bottom
// to top: layer3, layer2, layer1.
func Layers(t *overlay.Theme, maskW float64) []LayerSlot {
	refs := t.Layers()
	var slots []LayerSlot
	if src := imagelink.Normalize(refs[2]); src != "" {
		slots = append(slots, LayerSlot{
			Layer: 3, Z: 10, Source: src, Align: AlignLeft, Clipped: true,
			Rect: Rect{X: 0, Y: 0, W: CanvasWidth, H: CanvasHeight},
		})
	}
	if src := imagelink.Normalize(refs[1]); src != "" {
		slots = append(slots, LayerSlot{
			Layer: 2, Z: 20, Source: src, Align: AlignRight, Clipped: true,
			Rect: Rect{X: maskW - CanvasWidth, Y: 0, W: CanvasWidth, H: CanvasHeight},
		})
	}
	if src := imagelink.Normalize(refs[0]); src != "" {
		slots = append(slots, LayerSlot{
			Layer: 1, Z: 30, Source: src, Align: AlignLeft,
			Rect: Rect{X: 0, Y: 0, W: CanvasWidth, H: CanvasHeight},
		})
	}
	return slots
}

// WithMaskWidth returns a copy of the plan drawn against a mask of width w,
// moving the right-aligned layer with the mask's edge.
func (p Plan) WithMaskWidth(w float64) Plan {
	p.Mask.W = w
	layers := make([]LayerSlot, len(p.Layers))
	copy(layers, p.Layers)
	for i := range layers {
		if layers[i].Align == AlignRight {
			layers[i].Rect.X = w - layers[i].Rect.W
		}
	}
	p.Layers = layers
	return p
}

func line(fonts *FontSet, text string, w Weight, size, lineHeight float64, rawColor string) (TextLine, error) {
	width, err := fonts.Measure(w, size, text)
	if err != nil {
		return TextLine{}, err
	}
	c := ColorOr(rawColor, textFallback)
	return TextLine{
		Text:       text,
		Weight:     w,
		Size:       size,
		LineHeight: lineHeight,
		X:          TextLeftPadding,
		Width:      width,
		Color:      c,
		CSSColor:   CSS(c),
	}, nil
}

// place puts the line's box at top and centres the glyphs in it the way a
// browser centres the content area in a line box.
func place(fonts *FontSet, l *TextLine, top float64) error {
	ascent, descent, err := fonts.Metrics(l.Weight, l.Size)
	if err != nil {
		return err
	}
	l.Top = top
	l.Baseline = top + (l.LineHeight-(ascent+descent))/2 + ascent
	return nil
}

package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"
)

// FrameOptions control one rasterised frame.
type FrameOptions struct {
	// Scale multiplies the reference canvas; zero means 1.
	Scale float64
	// Opacity of the whole composition, 0 to 1. The zero value draws
	// nothing; use Steady for a fully visible frame.
	Opacity float64
	// OffsetX shifts the composition horizontally, in reference units.
	OffsetX float64
}

// Steady is a fully visible, unshifted frame at scale.
func Steady(scale float64) FrameOptions {
	return FrameOptions{Scale: scale, Opacity: 1}
}

var shadowColor = color.NRGBA{A: 0x99}

func (o FrameOptions) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// CanvasSize returns the pixel size of the canvas at scale.
func CanvasSize(scale float64) image.Rectangle {
	if scale <= 0 {
		scale = 1
	}
	return image.Rect(0, 0, px(CanvasWidth, scale), px(CanvasHeight, scale))
}

// Blank is a fully transparent canvas, the frame for the hidden state.
func Blank(scale float64) *image.RGBA {
	return image.NewRGBA(CanvasSize(scale))
}

// Rasterize draws plan. Bottom to top: mask fill, layer3 and layer2 clipped
// to the mask, text clipped to the mask, then layer1 unclipped. Layers with
// no image in imgs are skipped.
func Rasterize(plan Plan, imgs Images, fonts *FontSet, opts FrameOptions) (*image.RGBA, error) {
	s := opts.scale()
	bounds := CanvasSize(s)
	canvas := image.NewRGBA(bounds)

	mask := pillMask(bounds, plan.Mask, s)
	draw.DrawMask(canvas, bounds, image.NewUniform(plan.MaskColor), image.Point{}, mask, image.Point{}, draw.Over)

	for _, slot := range plan.Layers {
		if slot.Layer == 1 {
			continue
		}
		drawLayer(canvas, slot, imgs[slot.Layer], s, mask)
	}

	text, err := textLayer(bounds, plan, fonts, s)
	if err != nil {
		return nil, err
	}
	draw.DrawMask(canvas, bounds, text, image.Point{}, mask, image.Point{}, draw.Over)

	for _, slot := range plan.Layers {
		if slot.Layer == 1 {
			drawLayer(canvas, slot, imgs[slot.Layer], s, nil)
		}
	}

	return present(canvas, opts.Opacity, opts.OffsetX*s), nil
}

// pillMask is the alpha coverage of the mask: a rectangle pinned to the
// left edge with a fully rounded right end.
func pillMask(bounds image.Rectangle, r Rect, s float64) *image.Alpha {
	alpha := image.NewAlpha(bounds)
	if r.W <= 0 {
		return alpha
	}
	w, h := bounds.Dx(), bounds.Dy()
	radius := r.H / 2 * s
	scanner := rasterx.NewScannerGV(w, h, alpha, bounds)
	filler := rasterx.NewFiller(w, h, scanner)
	filler.SetColor(color.Opaque)
	// Start the shape one radius left of the canvas so only the right end
	// shows rounded.
	rasterx.AddRoundRect(r.X*s-radius, r.Y*s, (r.X+r.W)*s, (r.Y+r.H)*s, radius, radius, 0, rasterx.RoundGap, filler)
	filler.Draw()
	return alpha
}

func drawLayer(dst *image.RGBA, slot LayerSlot, img image.Image, s float64, clip *image.Alpha) {
	if img == nil {
		return
	}
	r := image.Rect(
		int(math.Round(slot.Rect.X*s)),
		int(math.Round(slot.Rect.Y*s)),
		int(math.Round((slot.Rect.X+slot.Rect.W)*s)),
		int(math.Round((slot.Rect.Y+slot.Rect.H)*s)),
	)
	var opts *xdraw.Options
	if clip != nil {
		opts = &xdraw.Options{DstMask: clip}
	}
	xdraw.CatmullRom.Scale(dst, r, img, img.Bounds(), xdraw.Over, opts)
}

// textLayer draws the title and subtitle with a blurred drop shadow.
func textLayer(bounds image.Rectangle, plan Plan, fonts *FontSet, s float64) (*image.RGBA, error) {
	layer := image.NewRGBA(bounds)
	shadow := image.NewAlpha(bounds)
	offset := 2 * s

	for _, l := range []TextLine{plan.Title, plan.Subtitle} {
		if l.Text == "" {
			continue
		}
		dot := fixed.P(int(math.Round((l.X)*s+offset)), int(math.Round(l.Baseline*s+offset)))
		if err := drawText(fonts, l, s, shadow, image.Opaque, dot); err != nil {
			return nil, err
		}
	}
	blurred := boxBlur(boxBlur(shadow, int(math.Max(1, 2*s))), int(math.Max(1, 2*s)))
	draw.DrawMask(layer, bounds, image.NewUniform(shadowColor), image.Point{}, blurred, image.Point{}, draw.Over)

	for _, l := range []TextLine{plan.Title, plan.Subtitle} {
		if l.Text == "" {
			continue
		}
		dot := fixed.P(int(math.Round(l.X*s)), int(math.Round(l.Baseline*s)))
		if err := drawText(fonts, l, s, layer, image.NewUniform(l.Color), dot); err != nil {
			return nil, err
		}
	}
	return layer, nil
}

func drawText(fonts *FontSet, l TextLine, s float64, dst draw.Image, src image.Image, dot fixed.Point26_6) error {
	return fonts.withFace(l.Weight, l.Size*s, func(face font.Face) {
		d := &font.Drawer{Dst: dst, Src: src, Face: face, Dot: dot}
		d.DrawString(l.Text)
	})
}

// boxBlur is a separable box blur of radius r over an alpha image.
func boxBlur(src *image.Alpha, r int) *image.Alpha {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := image.NewAlpha(b)
	out := image.NewAlpha(b)
	span := 2*r + 1

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		sum := 0
		for x := -r; x <= r; x++ {
			sum += int(row[clamp(x, w)])
		}
		for x := 0; x < w; x++ {
			tmp.Pix[y*tmp.Stride+x] = uint8(sum / span)
			sum += int(row[clamp(x+r+1, w)]) - int(row[clamp(x-r, w)])
		}
	}
	for x := 0; x < w; x++ {
		sum := 0
		for y := -r; y <= r; y++ {
			sum += int(tmp.Pix[clamp(y, h)*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			out.Pix[y*out.Stride+x] = uint8(sum / span)
			sum += int(tmp.Pix[clamp(y+r+1, h)*tmp.Stride+x]) - int(tmp.Pix[clamp(y-r, h)*tmp.Stride+x])
		}
	}
	return out
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// present applies the animation envelope to a finished composition.
func present(canvas *image.RGBA, opacity, dx float64) *image.RGBA {
	if opacity >= 1 && dx == 0 {
		return canvas
	}
	out := image.NewRGBA(canvas.Bounds())
	if opacity <= 0 {
		return out
	}
	a := uint8(math.Round(math.Min(opacity, 1) * 0xff))
	shift := image.Pt(int(math.Round(dx)), 0)
	draw.DrawMask(out, canvas.Bounds().Add(shift), canvas, image.Point{}, image.NewUniform(color.Alpha{A: a}), image.Point{}, draw.Over)
	return out
}

func px(units, s float64) int {
	return int(math.Round(units * s))
}

package compositor

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"tableflip.dev/lowerthird/pkg/overlay"
)

func fonts(t *testing.T) *FontSet {
	t.Helper()
	fs, err := DefaultFonts()
	require.NoError(t, err)
	return fs
}

func testPair() *overlay.Pair {
	return &overlay.Pair{
		Overlay: overlay.Overlay{ID: "person-1", Kind: overlay.KindPerson, Title: "John Doe", Subtitle: "Lead Pastor"},
		Theme: overlay.Theme{
			ID: "theme-2", Name: "Default Dark",
			TitleColor: "#FFFFFF", SubtitleColor: "#CCCCCC", MaskBackgroundColor: "rgba(0,0,0,0.7)",
		},
	}
}

func TestParseColor(t *testing.T) {
	tests := map[string]struct {
		in   string
		want color.NRGBA
		err  bool
	}{
		"long hex":    {in: "#29ABE2", want: color.NRGBA{0x29, 0xab, 0xe2, 0xff}},
		"short hex":   {in: "#fff", want: color.NRGBA{0xff, 0xff, 0xff, 0xff}},
		"hex alpha":   {in: "#00000080", want: color.NRGBA{0, 0, 0, 0x80}},
		"rgb":         {in: "rgb(41, 171, 226)", want: color.NRGBA{41, 171, 226, 0xff}},
		"rgba":        {in: "rgba(255,255,255,0.8)", want: color.NRGBA{255, 255, 255, 204}},
		"named":       {in: "White", want: color.NRGBA{0xff, 0xff, 0xff, 0xff}},
		"transparent": {in: "transparent", want: color.NRGBA{}},
		"garbage":     {in: "not-a-colour", err: true},
		"bad alpha":   {in: "rgba(0,0,0,2)", err: true},
		"short rgba":  {in: "rgba(0,0,0)", err: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseColor(tc.in)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComposeMaskWidthFollowsWiderLine(t *testing.T) {
	fs := fonts(t)

	p := testPair()
	plan, err := Compose(p, fs)
	require.NoError(t, err)

	titleW, err := fs.Measure(Bold, TitleSize, p.Overlay.Title)
	require.NoError(t, err)
	subW, err := fs.Measure(Medium, SubtitleSize, p.Overlay.Subtitle)
	require.NoError(t, err)

	assert.InDelta(t, 220+math.Max(titleW, subW)+60, plan.Mask.W, 1e-9)
	assert.Equal(t, Rect{X: 0, Y: 30, W: plan.Mask.W, H: 120}, plan.Mask)

	// A much longer subtitle takes over the width.
	p.Overlay.Subtitle = "Senior Pastor and Director of Worship Arts"
	wide, err := Compose(p, fs)
	require.NoError(t, err)
	assert.Greater(t, wide.Subtitle.Width, wide.Title.Width)
	assert.InDelta(t, 220+wide.Subtitle.Width+60, wide.Mask.W, 1e-9)
	assert.Greater(t, wide.Mask.W, plan.Mask.W)
}

func TestComposeTextBlock(t *testing.T) {
	plan, err := Compose(testPair(), fonts(t))
	require.NoError(t, err)

	assert.Equal(t, float64(TextLeftPadding), plan.Title.X)
	assert.Equal(t, float64(TextLeftPadding), plan.Subtitle.X)
	assert.Equal(t, "rgba(255,255,255,1.000)", plan.Title.CSSColor)
	assert.Equal(t, "rgba(204,204,204,1.000)", plan.Subtitle.CSSColor)

	// The block sits centred inside the mask.
	top := plan.Title.Top
	bottom := plan.Subtitle.Top + plan.Subtitle.LineHeight
	assert.InDelta(t, plan.Mask.Y+plan.Mask.H-bottom, top-plan.Mask.Y, 1e-9)
	assert.Less(t, plan.Title.Baseline, plan.Subtitle.Baseline)
}

func TestComposeUnparsableColoursFallBack(t *testing.T) {
	p := testPair()
	p.Theme.TitleColor = "???"
	p.Theme.MaskBackgroundColor = "???"
	plan, err := Compose(p, fonts(t))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0xff, 0xff, 0xff, 0xff}, plan.Title.Color)
	assert.Equal(t, color.NRGBA{}, plan.MaskColor)
}

func TestLayersPlacement(t *testing.T) {
	theme := &overlay.Theme{
		Layer1: "https://example.com/top.png",
		Layer2: "https://drive.google.com/file/d/abc123/view?usp=sharing",
		Layer3: "/srv/bottom.png",
	}
	slots := Layers(theme, 600)
	require.Len(t, slots, 3)

	assert.Equal(t, 3, slots[0].Layer)
	assert.Equal(t, AlignLeft, slots[0].Align)
	assert.True(t, slots[0].Clipped)
	assert.Equal(t, 0.0, slots[0].Rect.X)

	assert.Equal(t, 2, slots[1].Layer)
	assert.Equal(t, AlignRight, slots[1].Align)
	assert.True(t, slots[1].Clipped)
	assert.Equal(t, 600.0-CanvasWidth, slots[1].Rect.X)
	assert.Equal(t, "https://drive.google.com/uc?export=view&id=abc123", slots[1].Source)

	assert.Equal(t, 1, slots[2].Layer)
	assert.False(t, slots[2].Clipped)
	assert.Greater(t, slots[2].Z, slots[1].Z)
	assert.Greater(t, slots[1].Z, slots[0].Z)

	assert.Empty(t, Layers(&overlay.Theme{}, 600))

	moved := Plan{Layers: slots}.WithMaskWidth(900)
	assert.Equal(t, 900.0-CanvasWidth, moved.Layers[1].Rect.X)
	assert.Equal(t, 600.0-CanvasWidth, slots[1].Rect.X, "the input plan is untouched")
}

func TestMaskTween(t *testing.T) {
	start := time.Unix(100, 0)
	tw := NewMaskTween(400, 800, start, 500*time.Millisecond)

	assert.Equal(t, 400.0, tw.Width(start.Add(-time.Second)))
	assert.Equal(t, 600.0, tw.Width(start.Add(250*time.Millisecond)))
	assert.Equal(t, 800.0, tw.Width(start.Add(500*time.Millisecond)))
	assert.True(t, tw.Done(start.Add(time.Second)))
	assert.False(t, tw.Done(start.Add(100*time.Millisecond)))

	snap := NewMaskTween(0, 700, start, 500*time.Millisecond)
	assert.Equal(t, 700.0, snap.Width(start))
}

func solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

// near compares colours allowing for resampling rounding.
func near(t *testing.T, want, got color.RGBA, msgAndArgs ...interface{}) {
	t.Helper()
	for _, pair := range [][2]uint8{{want.R, got.R}, {want.G, got.G}, {want.B, got.B}, {want.A, got.A}} {
		if !assert.InDelta(t, float64(pair[0]), float64(pair[1]), 2, msgAndArgs...) {
			return
		}
	}
}

func TestRasterizeLayering(t *testing.T) {
	fs := fonts(t)
	p := testPair()
	p.Theme.MaskBackgroundColor = "#0000FF"
	p.Theme.Layer1 = "top"
	p.Theme.Layer3 = "bottom"
	plan, err := Compose(p, fs)
	require.NoError(t, err)

	red := color.RGBA{0xff, 0, 0, 0xff}
	green := color.RGBA{0, 0xff, 0, 0xff}

	// Mask only.
	frame, err := Rasterize(plan, nil, fs, Steady(1))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1920, 180), frame.Bounds())
	near(t, color.RGBA{0, 0, 0xff, 0xff}, rgbaAt(frame, 100, 90), "inside the mask")
	assert.Equal(t, uint8(0), rgbaAt(frame, 100, 10).A, "above the mask")
	assert.Equal(t, uint8(0), rgbaAt(frame, int(plan.Mask.W)+40, 90).A, "right of the mask")
	assert.Equal(t, uint8(0), rgbaAt(frame, int(plan.Mask.W)-2, 32).A, "outside the rounded corner")

	// layer3 is clipped to the mask.
	frame, err = Rasterize(plan, Images{3: solid(green)}, fs, Steady(1))
	require.NoError(t, err)
	near(t, green, rgbaAt(frame, 100, 90))
	assert.Equal(t, uint8(0), rgbaAt(frame, 100, 10).A)
	assert.Equal(t, uint8(0), rgbaAt(frame, 1900, 90).A)

	// layer1 is drawn on top and unclipped.
	frame, err = Rasterize(plan, Images{1: solid(red), 3: solid(green)}, fs, Steady(1))
	require.NoError(t, err)
	near(t, red, rgbaAt(frame, 100, 90))
	near(t, red, rgbaAt(frame, 1900, 10))
}

func TestRasterizeScaleAndFade(t *testing.T) {
	fs := fonts(t)
	plan, err := Compose(testPair(), fs)
	require.NoError(t, err)

	half, err := Rasterize(plan, nil, fs, FrameOptions{Scale: 0.5, Opacity: 1})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 960, 90), half.Bounds())

	hidden, err := Rasterize(plan, nil, fs, FrameOptions{Opacity: 0})
	require.NoError(t, err)
	assert.Equal(t, uint8(0), rgbaAt(hidden, 100, 90).A)

	full, err := Rasterize(plan, nil, fs, Steady(1))
	require.NoError(t, err)
	faded, err := Rasterize(plan, nil, fs, FrameOptions{Opacity: 0.5})
	require.NoError(t, err)
	assert.Less(t, rgbaAt(faded, 100, 90).A, rgbaAt(full, 100, 90).A)
}

func pngBytes(t *testing.T, img image.Image) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoaderOmitsBrokenLayers(t *testing.T) {
	hits := atomic.NewInt64(0)
	good := pngBytes(t, solid(color.RGBA{0, 0, 0xff, 0xff}))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Inc()
		switch r.URL.Path {
		case "/good.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(good)
		case "/art.svg":
			_, _ = w.Write([]byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1920 180"><rect width="1920" height="180" fill="#ff0000"/></svg>`))
		case "/garbage.png":
			_, _ = w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(nil)
	imgs := l.LoadLayers(context.Background(), []LayerSlot{
		{Layer: 3, Source: srv.URL + "/good.png"},
		{Layer: 2, Source: srv.URL + "/missing.png"},
		{Layer: 1, Source: srv.URL + "/garbage.png"},
	})
	assert.Contains(t, imgs, 3)
	assert.NotContains(t, imgs, 2)
	assert.NotContains(t, imgs, 1)

	svg, err := l.Load(context.Background(), srv.URL+"/art.svg")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, CanvasWidth, CanvasHeight), svg.Bounds())

	before := hits.Load()
	_, err = l.Load(context.Background(), srv.URL+"/good.png")
	require.NoError(t, err)
	assert.Equal(t, before, hits.Load(), "decoded images are cached")
}

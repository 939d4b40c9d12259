package compositor

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Weight selects one of the two faces used by lower thirds.
type Weight int

const (
	Medium Weight = iota
	Bold
)

func (w Weight) String() string {
	if w == Bold {
		return "bold"
	}
	return "medium"
}

type faceKey struct {
	weight Weight
	size   float64
}

// FontSet measures and draws text. Faces are cached per weight and size and
// are not safe for concurrent use, so every use goes through the set's lock.
type FontSet struct {
	bold   *opentype.Font
	medium *opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

var (
	defaultFonts     *FontSet
	defaultFontsErr  error
	defaultFontsOnce sync.Once
)

// DefaultFonts returns the shared set built from the Go font family.
func DefaultFonts() (*FontSet, error) {
	defaultFontsOnce.Do(func() {
		defaultFonts, defaultFontsErr = NewFontSet(gobold.TTF, gomedium.TTF)
	})
	return defaultFonts, defaultFontsErr
}

// NewFontSet parses TrueType or OpenType data for the bold and medium faces.
func NewFontSet(boldTTF, mediumTTF []byte) (*FontSet, error) {
	b, err := opentype.Parse(boldTTF)
	if err != nil {
		return nil, fmt.Errorf("compositor: parse bold font: %w", err)
	}
	m, err := opentype.Parse(mediumTTF)
	if err != nil {
		return nil, fmt.Errorf("compositor: parse medium font: %w", err)
	}
	return &FontSet{bold: b, medium: m, faces: make(map[faceKey]font.Face)}, nil
}

// face must be called with mu held.
func (fs *FontSet) face(w Weight, size float64) (font.Face, error) {
	key := faceKey{weight: w, size: size}
	if f, ok := fs.faces[key]; ok {
		return f, nil
	}
	src := fs.medium
	if w == Bold {
		src = fs.bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("compositor: %s face at %.1f: %w", w, size, err)
	}
	fs.faces[key] = f
	return f, nil
}

// Measure returns the advance width of s in the same units as size.
func (fs *FontSet) Measure(w Weight, size float64, s string) (float64, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, err := fs.face(w, size)
	if err != nil {
		return 0, err
	}
	return fromFixed(font.MeasureString(f, s)), nil
}

// Metrics returns the ascent and descent of the face.
func (fs *FontSet) Metrics(w Weight, size float64) (ascent, descent float64, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, err := fs.face(w, size)
	if err != nil {
		return 0, 0, err
	}
	m := f.Metrics()
	return fromFixed(m.Ascent), fromFixed(m.Descent), nil
}

// withFace runs fn with exclusive use of the face.
func (fs *FontSet) withFace(w Weight, size float64, fn func(font.Face)) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	f, err := fs.face(w, size)
	if err != nil {
		return err
	}
	fn(f)
	return nil
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

package compositor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// MaxImageBytes bounds a single layer download.
const MaxImageBytes = 32 << 20

// Images holds decoded layer images keyed by layer number. A missing entry
// means the layer is omitted.
type Images map[int]image.Image

// Loader fetches and decodes layer images. Decoded images are cached by
// source; concurrent requests for one source share a fetch.
type Loader struct {
	client *http.Client
	logger *slog.Logger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]image.Image
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
		cache:  make(map[string]image.Image),
	}
}

// Load returns the decoded image at src, an http(s) URL, a file URL or a
// local path.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	l.mu.RLock()
	img, ok := l.cache[src]
	l.mu.RUnlock()
	if ok {
		return img, nil
	}

	v, err, _ := l.group.Do(src, func() (interface{}, error) {
		data, err := l.fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		img, err := decodeImage(src, data)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[src] = img
		l.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// LoadLayers fetches every slot's image in parallel. A layer that cannot be
// fetched or decoded is logged and left out; the rest still render.
func (l *Loader) LoadLayers(ctx context.Context, slots []LayerSlot) Images {
	var (
		mu  sync.Mutex
		out = make(Images, len(slots))
		g   errgroup.Group
	)
	g.SetLimit(3)
	for _, slot := range slots {
		slot := slot
		g.Go(func() error {
			img, err := l.Load(ctx, slot.Source)
			if err != nil {
				l.logger.Warn("omitting layer", "layer", slot.Layer, "src", slot.Source, "error", err)
				return nil
			}
			mu.Lock()
			out[slot.Layer] = img
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (l *Loader) fetch(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return l.fetchHTTP(ctx, src)
		case "file":
			return readFile(u.Path)
		}
	}
	return readFile(src)
}

func (l *Loader) fetchHTTP(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compositor: fetch %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("compositor: fetch %s: %s", src, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes))
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compositor: read %s: %w", path, err)
	}
	return data, nil
}

func decodeImage(src string, data []byte) (image.Image, error) {
	if isSVG(src, data) {
		return decodeSVG(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("compositor: decode %s: %w", src, err)
	}
	return img, nil
}

func isSVG(src string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(strings.SplitN(src, "?", 2)[0]), ".svg") {
		return true
	}
	head := bytes.TrimSpace(data)
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}

// decodeSVG rasterises an SVG onto a full canvas-sized image.
func decodeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("compositor: parse svg: %w", err)
	}
	w, h := CanvasWidth, CanvasHeight
	icon.SetTarget(0, 0, float64(w), float64(h))
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), image.Transparent, image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return rgba, nil
}

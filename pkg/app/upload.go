package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tableflip.dev/lowerthird/pkg/overlay"
)

// MaxUploadBytes caps an uploaded layer image.
const MaxUploadBytes = 10 << 20

var (
	ErrUploadTooLarge = errors.New("app: image larger than 10MB")
	ErrNotAnImage     = errors.New("app: upload is not an image")
)

// now is replaced in tests.
var now = time.Now

// UploadLayer stores an image for one of a theme's three layers and points
// the layer at it. The stored name is prefixed with the upload time so
// repeated uploads of the same file never collide.
func (s *Service) UploadLayer(ctx context.Context, themeID string, layer int, filename string, data []byte) (*overlay.Theme, error) {
	p, err := s.persistence()
	if err != nil {
		return nil, err
	}
	if layer < 1 || layer > 3 {
		return nil, fmt.Errorf("app: layer must be 1, 2 or 3, got %d", layer)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrUploadTooLarge
	}
	if !isImage(filename, data) {
		return nil, fmt.Errorf("%w: %s", ErrNotAnImage, filename)
	}
	t, err := s.Theme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	name := strconv.FormatInt(now().UnixMilli(), 10) + "-" + filename
	path, err := p.StoreAsset(name, data)
	if err != nil {
		return nil, err
	}
	ref := "file://" + path
	switch layer {
	case 1:
		t.Layer1 = ref
	case 2:
		t.Layer2 = ref
	case 3:
		t.Layer3 = ref
	}
	if err := p.StoreTheme(t); err != nil {
		return nil, err
	}
	return t, nil
}

func isImage(filename string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".svg") {
		return true
	}
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}

package display

import (
	_ "embed"
	"html/template"
	"net/http"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"

	"tableflip.dev/lowerthird/pkg/compositor"
	"tableflip.dev/lowerthird/pkg/presenter"
)

//go:embed page.html
var pageHTML string

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

type pageModel struct {
	Width      int
	Height     int
	Scale      float64
	Slide      int
	MaskTop    int
	MaskHeight int
	MaskRadius int
	TextLeft   int
	DurationMS int64
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	err := pageTemplate.Execute(w, pageModel{
		Width:      compositor.CanvasWidth,
		Height:     compositor.CanvasHeight,
		Scale:      s.opts.Scale,
		Slide:      SlideDistance,
		MaskTop:    compositor.MaskTop,
		MaskHeight: compositor.MaskHeight,
		MaskRadius: compositor.MaskRadius,
		TextLeft:   compositor.TextLeftPadding,
		DurationMS: presenter.AnimationDuration.Milliseconds(),
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

// handleFont serves the faces the server measures with, so the page lays
// text out at the widths the mask was sized for.
func (s *Server) handleFont(w http.ResponseWriter, r *http.Request) {
	var data []byte
	switch r.PathValue("name") {
	case "bold.ttf":
		data = gobold.TTF
	case "medium.ttf":
		data = gomedium.TTF
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "font/ttf")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}

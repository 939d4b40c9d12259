package display

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/skip2/go-qrcode"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/display"
)

// Display serves the display surface until ctx is done.
type Display struct {
	Addr     string
	Scale    float64
	AssetDir string
	// QR prints a terminal QR code of the page URL.
	QR bool
	// CopyURL puts the page URL on the clipboard.
	CopyURL bool

	State  activestate.Store
	Logger *slog.Logger
}

func (n *Display) Do(ctx context.Context) error {
	srv, err := display.New(n.State, display.Options{
		Addr:     n.Addr,
		Scale:    n.Scale,
		Logger:   n.Logger,
		AssetDir: n.AssetDir,
	})
	if err != nil {
		return err
	}

	url := PageURL(n.Addr)
	_, _ = fmt.Fprintf(color.Output, "browser source: %s\nimage source:   %sframe.png\n", url, url)
	if n.QR {
		q, err := qrcode.New(url, qrcode.Medium)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprint(color.Output, q.ToSmallString(false))
	}
	if n.CopyURL {
		if err := clipboard.WriteAll(url); err != nil {
			n.Logger.Warn("copy url to clipboard", "error", err)
		}
	}
	return srv.Run(ctx)
}

// PageURL is the page address a mixer should load for a listen address.
func PageURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr + "/"
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("http://%s:%s/", host, port)
}

package options

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/control"
	"tableflip.dev/lowerthird/pkg/overlay"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// HandleError prints err as {"error": ..., "code": ...} when JSON output is
// on, and returns it unchanged otherwise.
func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		out := map[string]string{
			"error": err.Error(),
			"code":  ErrorCode(err),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}

// ErrorCode classifies err for scripts.
func ErrorCode(err error) string {
	var transport *control.TransportError
	switch {
	case errors.Is(err, app.ErrNotFound):
		return "not_found"
	case errors.Is(err, control.ErrNoActiveTheme):
		return "no_active_theme"
	case errors.As(err, &transport):
		return "unavailable"
	case errors.Is(err, overlay.ErrTitleRequired),
		errors.Is(err, overlay.ErrSubtitleRequired),
		errors.Is(err, overlay.ErrNameRequired),
		errors.Is(err, app.ErrUploadTooLarge),
		errors.Is(err, app.ErrNotAnImage),
		errors.Is(err, app.ErrInvalidPlanURL):
		return "invalid"
	}
	return "error"
}

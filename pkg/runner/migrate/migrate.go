package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/lowerthird/pkg/app"
)

// Migrate repairs the catalog: it rewrites share links in theme layers,
// reconciles list order with stored records and resets a dangling theme
// selection.
type Migrate struct {
	Service *app.Service
}

func (n *Migrate) Do(ctx context.Context) error {
	res, err := n.Service.Migrate(ctx)
	if err != nil {
		return err
	}
	if !res.Changed() {
		_, _ = color.New(color.Faint).Fprintln(color.Output, "nothing to migrate")
		return nil
	}
	if len(res.DroppedIDs) > 0 {
		_, _ = fmt.Fprintf(color.Output, "dropped missing records: %s\n", strings.Join(res.DroppedIDs, ", "))
	}
	if len(res.AdoptedIDs) > 0 {
		_, _ = fmt.Fprintf(color.Output, "adopted unlisted records: %s\n", strings.Join(res.AdoptedIDs, ", "))
	}
	if res.RewrittenLayers > 0 {
		_, _ = fmt.Fprintf(color.Output, "rewrote %d layer links\n", res.RewrittenLayers)
	}
	if res.ActiveThemeReset {
		_, _ = fmt.Fprintln(color.Output, "reset the active theme")
	}
	return nil
}

package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lowerthird/pkg/overlay"
)

// ThemeOptions
type ThemeOptions struct {
	Theme overlay.Theme
	Clear []int
}

func AddThemeArgs(cmd *cobra.Command, o *ThemeOptions) {
	cmd.Flags().StringVar(&o.Theme.Name, "name", "", "Theme name.")
	cmd.Flags().StringVar(&o.Theme.TitleColor, "title-color", "", `Title text colour, example: --title-color="#1E1E1E".`)
	cmd.Flags().StringVar(&o.Theme.SubtitleColor, "subtitle-color", "", "Subtitle text colour.")
	cmd.Flags().StringVar(&o.Theme.MaskBackgroundColor, "background-color", "", "Pill background colour.")
	cmd.Flags().StringVar(&o.Theme.Layer1, "layer1", "", "Top image URL, left aligned and not clipped by the pill.")
	cmd.Flags().StringVar(&o.Theme.Layer2, "layer2", "", "Middle image URL, right aligned inside the pill.")
	cmd.Flags().StringVar(&o.Theme.Layer3, "layer3", "", "Bottom image URL, left aligned inside the pill.")
}

func AddClearLayerArgs(cmd *cobra.Command, o *ThemeOptions) {
	cmd.Flags().IntSliceVar(&o.Clear, "clear-layer", nil, "Empty the given layers, example: --clear-layer=1,3.")
}

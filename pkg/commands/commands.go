package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lowerthird/pkg/commands/options"
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "lowerthird",
		Short: options.Wrap80("Lower thirds for live production: keep a catalog of titles and themes, put one on air, and serve it to a mixer as a browser or image source."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addOverlay(topLevel)
	addTheme(topLevel)
	addShow(topLevel)
	addHide(topLevel)
	addStatus(topLevel)
	addDisplay(topLevel)
	addDocstore(topLevel)
	addUI(topLevel)
	addMCP(topLevel)
	addPlan(topLevel)
	addMigrate(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

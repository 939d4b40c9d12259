package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lowerthird/pkg/commands/options"
	"tableflip.dev/lowerthird/pkg/runner/show"
	"tableflip.dev/lowerthird/pkg/runner/status"
)

func addShow(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}
	var themeID string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Put a lower third on air with the active theme",
		Example: `
lowerthird show person-1
lowerthird show music-1 --theme theme-3
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: overlayCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()
			s := show.Show{
				ID:         args[0],
				ThemeID:    themeID,
				JSON:       oo.JSON,
				Service:    e.App,
				Controller: e.Control,
			}
			return oo.HandleError(s.Do(contextOf(cmd)))
		},
	}

	cmd.Flags().StringVar(&themeID, "theme", "", "Show with this theme instead of the active one.")
	_ = cmd.RegisterFlagCompletionFunc("theme", themeCompletions)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addHide(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "hide",
		Short: "Take the lower third off air",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()
			s := show.Hide{JSON: oo.JSON, Controller: e.Control}
			return oo.HandleError(s.Do(contextOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addStatus(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"report"},
		Short:   "Show what is on air and the catalog",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()
			s := status.Status{ShowID: io.ShowID, JSON: oo.JSON, Service: e.App}
			return oo.HandleError(s.Do(contextOf(cmd)))
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lowerthird/pkg/commands/options"
	"tableflip.dev/lowerthird/pkg/runner/info"
	"tableflip.dev/lowerthird/pkg/runner/migrate"
	"tableflip.dev/lowerthird/pkg/runner/plan"
)

func addPlan(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "plan <url>",
		Short: "Import the songs of a service plan as music lower thirds",
		Example: `
lowerthird plan https://services.example.org/plans/1234
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := plan.Plan{URL: args[0], ShowID: io.ShowID, Service: e.App}
			return s.Do(contextOf(cmd))
		},
	}

	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}

func addMigrate(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Repair the catalog and rewrite share links in theme layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := migrate.Migrate{Service: e.App}
			return s.Do(contextOf(cmd))
		},
	}

	topLevel.AddCommand(cmd)
}

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the config and where the catalog is stored.",
		Example: `
lowerthird info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := info.Info{
				Config:      e.Config,
				Persistence: e.Persistence,
			}
			return s.Do(contextOf(cmd))
		},
	}

	topLevel.AddCommand(cmd)
}

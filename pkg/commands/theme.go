package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/lowerthird/pkg/commands/options"
	"tableflip.dev/lowerthird/pkg/runner/theme"
)

func addTheme(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "theme",
		Aliases: []string{"themes"},
		Short:   "Manage themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addThemeList(cmd)
	addThemeAdd(cmd)
	addThemeEdit(cmd)
	addThemeDelete(cmd)
	addThemeUse(cmd)
	addThemeExport(cmd)
	addThemeImport(cmd)
	addThemeUpload(cmd)

	topLevel.AddCommand(cmd)
}

func addThemeList(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"get", "ls"},
		Short:   "List themes, marking the one the next activation uses",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()
			s := theme.List{ShowID: io.ShowID, JSON: oo.JSON, Service: e.App}
			return oo.HandleError(s.Do(contextOf(cmd)))
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addThemeAdd(topLevel *cobra.Command) {
	to := &options.ThemeOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a theme",
		Example: `
lowerthird theme add --name Church --title-color "#FFFFFF" --subtitle-color "#DDDDDD" --background-color "rgba(0,0,0,0.6)"
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := theme.Add{Theme: to.Theme, Service: e.App}
			return s.Do(contextOf(cmd))
		},
	}

	options.AddThemeArgs(cmd, to)
	topLevel.AddCommand(cmd)
}

func addThemeEdit(topLevel *cobra.Command) {
	to := &options.ThemeOptions{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a theme; unset flags keep their value",
		Example: `
lowerthird theme edit theme-2 --title-color "#FAFAFA"
lowerthird theme edit theme-3 --clear-layer 1,2
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: themeCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := theme.Edit{ID: args[0], Changes: to.Theme, Clear: to.Clear, Service: e.App}
			return s.Do(contextOf(cmd))
		},
	}

	options.AddThemeArgs(cmd, to)
	options.AddClearLayerArgs(cmd, to)
	topLevel.AddCommand(cmd)
}

func addThemeDelete(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:               "delete <id>",
		Aliases:           []string{"rm", "remove"},
		Short:             "Delete a theme",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: themeCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := theme.Delete{ID: args[0], Service: e.App}
			return s.Do(contextOf(cmd))
		},
	}

	topLevel.AddCommand(cmd)
}

func addThemeUse(topLevel *cobra.Command) {
	var unset bool

	cmd := &cobra.Command{
		Use:   "use <id>",
		Short: "Select the theme for the next activation",
		Long: options.Wrap80(`Select the theme the next show uses. What is on air keeps the theme it
was shown with until it is shown again.`),
		Args: func(cmd *cobra.Command, args []string) error {
			if unset {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		ValidArgsFunction: themeCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := theme.Use{Service: e.App}
			if !unset {
				s.ID = args[0]
			}
			return s.Do(contextOf(cmd))
		},
	}

	cmd.Flags().BoolVar(&unset, "clear", false, "Clear the selection instead.")
	topLevel.AddCommand(cmd)
}

func addThemeExport(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "export <file.yaml|file.toml>",
		Short: "Write every theme to a YAML or TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := theme.Export{Path: args[0], Service: e.App}
			return s.Do(contextOf(cmd))
		},
	}

	topLevel.AddCommand(cmd)
}

func addThemeImport(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "import <file.yaml|file.toml>",
		Short: "Add the themes in a YAML or TOML file",
		Long:  options.Wrap80("Add every theme in the file under a new id. Nothing is added unless every theme in the file is valid."),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := theme.Import{Path: args[0], ShowID: io.ShowID, Service: e.App}
			return s.Do(contextOf(cmd))
		},
	}

	options.AddShowIDArgs(cmd, io)
	topLevel.AddCommand(cmd)
}

func addThemeUpload(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "upload <id> <layer> <image>",
		Short: "Store a local image and use it as a theme layer",
		Example: `
lowerthird theme upload theme-3 1 ./logo.png
`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			layer, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("layer must be 1, 2 or 3, got %q", args[1])
			}
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := theme.Upload{ID: args[0], Layer: layer, File: args[2], Service: e.App}
			return s.Do(contextOf(cmd))
		},
	}

	topLevel.AddCommand(cmd)
}

func themeCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	e, err := loadEnv(contextOf(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer e.Close()
	list, err := e.App.Themes(contextOf(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ids := make([]string, 0, len(list))
	for _, t := range list {
		if strings.HasPrefix(t.ID, toComplete) {
			ids = append(ids, t.ID+"\t"+t.Name)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

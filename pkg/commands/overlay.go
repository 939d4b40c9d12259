package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/lowerthird/pkg/app"
	"tableflip.dev/lowerthird/pkg/commands/options"
	"tableflip.dev/lowerthird/pkg/overlay"
	"tableflip.dev/lowerthird/pkg/runner/add"
	"tableflip.dev/lowerthird/pkg/runner/edit"
	"tableflip.dev/lowerthird/pkg/runner/get"
	"tableflip.dev/lowerthird/pkg/runner/move"
	"tableflip.dev/lowerthird/pkg/runner/remove"
)

func addOverlay(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "overlay",
		Aliases: []string{"overlays", "lt"},
		Short:   "Manage lower thirds",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addOverlayList(cmd)
	addOverlayAdd(cmd)
	addOverlayEdit(cmd)
	addOverlayRemove(cmd)
	addOverlayMove(cmd)

	topLevel.AddCommand(cmd)
}

func addOverlayList(topLevel *cobra.Command) {
	ko := &options.KindOptions{}
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"get", "ls"},
		Short:   "List lower thirds grouped by type",
		Example: `
lowerthird overlay list
lowerthird overlay list --type music
lowerthird overlay list --match "j*" -k
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			kind, err := ko.GetKind()
			if err != nil {
				return oo.HandleError(err)
			}
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()
			s := get.Get{
				ShowID:     io.ShowID,
				Kind:       kind,
				Match:      ko.Match,
				JSON:       oo.JSON,
				Service:    e.App,
				Controller: e.Control,
			}
			return oo.HandleError(s.Do(contextOf(cmd)))
		},
	}

	options.AddKindArgs(cmd, ko)
	options.AddMatchArgs(cmd, ko)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addOverlayAdd(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "add <person|music> <title> <subtitle>",
		Short: "Add a lower third",
		Example: `
lowerthird overlay add person "John Doe" "Senior Pastor"
lowerthird overlay add music "Living Hope" "Phil Wickham"
`,
		Args: cobra.ExactArgs(3),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return options.KindNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			kind, err := overlay.ParseKind(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()
			s := add.Add{
				Kind:     kind,
				Title:    args[1],
				Subtitle: args[2],
				JSON:     oo.JSON,
				Service:  e.App,
			}
			return oo.HandleError(s.Do(contextOf(cmd)))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addOverlayEdit(topLevel *cobra.Command) {
	var title, subtitle string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or subtitle of a lower third",
		Example: `
lowerthird overlay edit person-1 --subtitle "Lead Pastor"
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: overlayCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if title == "" && subtitle == "" {
				return fmt.Errorf("nothing to change, set --title or --subtitle")
			}
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := edit.Edit{
				ID:       args[0],
				Title:    title,
				Subtitle: subtitle,
				Service:  e.App,
			}
			return s.Do(contextOf(cmd))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title.")
	cmd.Flags().StringVar(&subtitle, "subtitle", "", "New subtitle.")

	topLevel.AddCommand(cmd)
}

func addOverlayRemove(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:               "remove <id>",
		Aliases:           []string{"rm", "delete"},
		Short:             "Remove a lower third, taking it off air if it is on air",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: overlayCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := remove.Remove{ID: args[0], Service: e.App}
			return s.Do(contextOf(cmd))
		},
	}

	topLevel.AddCommand(cmd)
}

func addOverlayMove(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "move <id> <up|down>",
		Short: "Move a lower third one place within its type",
		Example: `
lowerthird overlay move person-2 up
`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return []string{string(app.Up), string(app.Down)}, cobra.ShellCompDirectiveNoFileComp
			}
			return overlayCompletions(cmd, args, toComplete)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			dir, err := app.ParseDirection(args[1])
			if err != nil {
				return err
			}
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := move.Move{ID: args[0], Direction: dir, Service: e.App}
			return s.Do(contextOf(cmd))
		},
	}

	topLevel.AddCommand(cmd)
}

func overlayCompletions(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	e, err := loadEnv(contextOf(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer e.Close()
	list, err := e.App.Overlays(contextOf(cmd))
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ids := make([]string, 0, len(list))
	for _, o := range list {
		if strings.HasPrefix(o.ID, toComplete) {
			ids = append(ids, o.ID+"\t"+o.Title)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

package options

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/lowerthird/pkg/overlay"
)

// KindOptions
type KindOptions struct {
	Kind  string
	Match string
}

func AddKindArgs(cmd *cobra.Command, o *KindOptions) {
	cmd.Flags().StringVarP(&o.Kind, "type", "t", "",
		`Only list one type of lower third: "person" or "music".`)
	_ = cmd.RegisterFlagCompletionFunc("type", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return KindNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

func AddMatchArgs(cmd *cobra.Command, o *KindOptions) {
	cmd.Flags().StringVarP(&o.Match, "match", "m", "",
		`Only list titles matching a glob, example: --match="j*".`)
}

// GetKind returns the selected kind, or "" for all.
func (o *KindOptions) GetKind() (overlay.Kind, error) {
	if strings.TrimSpace(o.Kind) == "" {
		return "", nil
	}
	return overlay.ParseKind(o.Kind)
}

func KindNames() []string {
	kinds := overlay.AllKinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return names
}

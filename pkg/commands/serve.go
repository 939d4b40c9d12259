package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lowerthird/pkg/activestate"
	"tableflip.dev/lowerthird/pkg/commands/options"
	"tableflip.dev/lowerthird/pkg/runner/display"
	"tableflip.dev/lowerthird/pkg/runner/docstore"
	"tableflip.dev/lowerthird/pkg/runner/ui"
)

func addDisplay(topLevel *cobra.Command) {
	var (
		addr    string
		scale   float64
		qr      bool
		copyURL bool
	)

	cmd := &cobra.Command{
		Use:   "display",
		Short: "Serve the display surface for a mixer",
		Long: options.Wrap80(`Serve the chromeless display surface. Add / to a mixer as a browser source, or /frame.png as an image source. The surface follows the shared active state and animates every change.`),
		Example: `
lowerthird display
lowerthird display --addr 0.0.0.0:4455 --qr
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			s := display.Display{
				Addr:     e.Config.DisplayAddr(),
				Scale:    e.Config.DisplayScale(),
				AssetDir: e.Persistence.AssetDir(),
				QR:       qr,
				CopyURL:  copyURL,
				State:    e.State,
				Logger:   e.Logger.Logger,
			}
			if cmd.Flags().Changed("addr") {
				s.Addr = addr
			}
			if cmd.Flags().Changed("scale") {
				s.Scale = scale
			}
			return s.Do(contextOf(cmd))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:4455", "Listen address, overrides display.addr.")
	cmd.Flags().Float64Var(&scale, "scale", 1, "Render scale for /frame.png, overrides display.scale.")
	cmd.Flags().BoolVar(&qr, "qr", false, "Print a QR code of the page URL.")
	cmd.Flags().BoolVar(&copyURL, "copy-url", false, "Copy the page URL to the clipboard.")

	topLevel.AddCommand(cmd)
}

func addDocstore(topLevel *cobra.Command) {
	var (
		addr   string
		memory bool
	)

	cmd := &cobra.Command{
		Use:   "docstore",
		Short: "Host the shared active state for the remote backend",
		Long: options.Wrap80(`Host the active-state document over HTTP with server-sent change events, for controllers and displays configured with backend: remote. With --memory the state is lost on exit; otherwise it is kept in the local catalog.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			var state activestate.Store = activestate.NewDisk(e.Persistence, e.Logger.Logger)
			if memory {
				state = activestate.NewMemory()
			}
			s := docstore.Serve{Addr: addr, State: state, Logger: e.Logger.Logger}
			return s.Do(contextOf(cmd))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:4456", "Listen address.")
	cmd.Flags().BoolVar(&memory, "memory", false, "Keep the state in memory only.")

	topLevel.AddCommand(cmd)
}

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the operator console",
		Example: `
lowerthird ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(contextOf(cmd))
			if err != nil {
				return err
			}
			defer e.Close()
			i := ui.UI{Service: e.App, Controller: e.Control}
			return i.Do(contextOf(cmd))
		},
	}

	topLevel.AddCommand(cmd)
}

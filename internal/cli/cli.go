// Package cli implements the keydraw command-line interface.
//
// Commands:
//   - draw: render a keymap YAML to an SVG (or PNG/PDF) diagram
//   - parse: convert a QMK keymap.json into the keymap YAML format
//   - cache: manage the QMK metadata cache
//   - completion: generate shell completion scripts
//
// All commands support --verbose (-v) for debug-level logging. The
// logger is attached to the command context and retrieved with
// loggerFromContext.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/keydraw/keydraw/pkg/buildinfo"
)

// appName is used for the cache directory and command naming.
const appName = "keydraw"

// Execute runs the keydraw CLI and returns an error if any command
// fails. This is the entry point used by the main package.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "keydraw renders keyboard keymaps as SVG diagrams",
		Long:         `keydraw draws a visual diagram of a keyboard keymap: one board per layer plus combo overlays, from a keymap YAML and a physical layout (embedded ortho parameters, a local QMK info.json, or a keyboard fetched from keyboards.qmk.fm).`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newDrawCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}

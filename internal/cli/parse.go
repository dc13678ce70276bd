package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/keydraw/keydraw/pkg/keymap"
	"github.com/keydraw/keydraw/pkg/qmk"
)

// parseOpts holds the command-line flags for the parse command.
type parseOpts struct {
	keymapJSON   string // path to a QMK keymap.json ("-" for stdin)
	output       string // output file path; empty means stdout
	keepPrefixes bool   // keep the KC_ prefix on plain keycodes
}

// newParseCmd creates the parse command, which converts a QMK
// keymap.json (as exported by QMK Configurator or `qmk c2json`) into
// the keymap YAML format consumed by draw.
func newParseCmd() *cobra.Command {
	var opts parseOpts

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Convert a QMK keymap.json to keymap YAML",
		Long: `Convert a QMK keymap.json into the keymap YAML format. Keycodes are
stripped to readable labels (KC_A becomes A), transparent and no-op
keys become blanks, and mod-tap/layer-tap wrappers become a tap label
with a hold annotation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.keymapJSON, "qmk-keymap-json", "q", "", `path to a QMK keymap.json ("-" for stdin)`)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVarP(&opts.keepPrefixes, "keep-prefixes", "k", false, "keep KC_ prefixes on keycodes")
	_ = cmd.MarkFlagRequired("qmk-keymap-json")

	return cmd
}

func runParse(cmd *cobra.Command, opts *parseOpts) error {
	logger := loggerFromContext(cmd.Context())

	imp := qmk.ImportOptions{KeepPrefixes: opts.keepPrefixes}

	var (
		km  *keymap.Keymap
		err error
	)
	if opts.keymapJSON == "-" {
		km, err = qmk.ReadKeymapJSON(os.Stdin, imp)
	} else {
		km, err = qmk.ReadKeymapJSONFile(opts.keymapJSON, imp)
	}
	if err != nil {
		return fmt.Errorf("parse keymap.json: %w", err)
	}
	logger.Debug("keymap.json parsed", "layers", len(km.Layers))

	if opts.output == "" {
		return keymap.Write(km, os.Stdout)
	}
	if err := keymap.WriteFile(km, opts.output); err != nil {
		return fmt.Errorf("write keymap: %w", err)
	}
	printSuccess("Wrote %s (%d layers)", styleHighlight.Render(opts.output), len(km.Layers))
	return nil
}

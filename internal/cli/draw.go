package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/keydraw/keydraw/pkg/draw"
	"github.com/keydraw/keydraw/pkg/httputil"
	"github.com/keydraw/keydraw/pkg/keymap"
	"github.com/keydraw/keydraw/pkg/layout"
	"github.com/keydraw/keydraw/pkg/qmk"
)

const (
	formatSVG = "svg"
	formatPNG = "png"
	formatPDF = "pdf"
)

// drawOpts holds the command-line flags for the draw command.
type drawOpts struct {
	output      string  // output file path; empty means stdout
	format      string  // output format: "svg", "png", "pdf"
	qmkKeyboard string  // QMK keyboard name to fetch from keyboards.qmk.fm
	qmkInfoJSON string  // path to a local QMK info.json
	qmkLayout   string  // QMK layout name (e.g. LAYOUT_split_3x6_3)
	configPath  string  // path to a TOML style config
	noCache     bool    // bypass the on-disk QMK cache
	pngScale    float64 // raster scale factor for PNG output
}

// newDrawCmd creates the draw command, which renders a keymap YAML to
// an SVG (or PNG/PDF) diagram.
//
// The physical layout is resolved in priority order: --qmk-info-json,
// --qmk-keyboard, then the keymap's embedded layout block.
func newDrawCmd() *cobra.Command {
	opts := drawOpts{
		format:   formatSVG,
		pngScale: 1.0,
	}

	cmd := &cobra.Command{
		Use:   "draw [keymap.yaml]",
		Short: "Render a keymap YAML as a layer-by-layer diagram",
		Long: `Render a keymap YAML as an SVG diagram, one board per layer plus combo
overlays. Pass "-" to read the keymap from stdin.

The physical layout comes from (in priority order) --qmk-info-json,
--qmk-keyboard, or the layout block embedded in the keymap itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateDrawFormat(opts.format); err != nil {
				return err
			}
			return runDraw(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), png, pdf")
	cmd.Flags().StringVarP(&opts.qmkKeyboard, "qmk-keyboard", "k", "", "QMK keyboard name, fetched from keyboards.qmk.fm")
	cmd.Flags().StringVarP(&opts.qmkInfoJSON, "qmk-info-json", "j", "", "path to a local QMK info.json")
	cmd.Flags().StringVarP(&opts.qmkLayout, "qmk-layout", "l", "", "QMK layout name (default: pick interactively, or first alphabetically)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML style config")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the QMK metadata cache")
	cmd.Flags().Float64Var(&opts.pngScale, "png-scale", opts.pngScale, "raster scale factor for PNG output")

	return cmd
}

func validateDrawFormat(format string) error {
	switch format {
	case formatSVG, formatPNG, formatPDF:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want svg, png, or pdf)", format)
	}
}

func runDraw(cmd *cobra.Command, path string, opts *drawOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	km, err := readKeymapArg(path)
	if err != nil {
		return fmt.Errorf("read keymap: %w", err)
	}
	logger.Debug("keymap loaded", "layers", len(km.Layers), "combos", len(km.Combos))

	style := draw.DefaultStyle()
	if opts.configPath != "" {
		style, err = draw.LoadStyle(opts.configPath)
		if err != nil {
			return fmt.Errorf("load style: %w", err)
		}
		logger.Debug("style config loaded", "path", opts.configPath)
	}

	keys, err := resolveKeys(cmd, km, opts)
	if err != nil {
		return err
	}
	logger.Debug("layout resolved", "keys", len(keys))

	svg, err := draw.Render(keys, km, draw.WithStyle(style))
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	out := svg
	switch opts.format {
	case formatPNG:
		out, err = draw.ToPNG(svg, opts.pngScale)
	case formatPDF:
		out, err = draw.ToPDF(svg)
	}
	if err != nil {
		return fmt.Errorf("convert to %s: %w", opts.format, err)
	}

	if opts.output == "" {
		if _, err := os.Stdout.Write(out); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	printSuccess("Wrote %s (%d layers, %d keys)", styleHighlight.Render(opts.output), len(km.Layers), len(keys))
	return nil
}

// readKeymapArg reads the keymap from a file, or from stdin when the
// argument is "-".
func readKeymapArg(path string) (*keymap.Keymap, error) {
	if path == "-" {
		return keymap.Read(os.Stdin)
	}
	return keymap.ReadFile(path)
}

// resolveKeys determines the physical key positions for the keymap,
// trying --qmk-info-json, then --qmk-keyboard, then the keymap's
// embedded layout block.
func resolveKeys(cmd *cobra.Command, km *keymap.Keymap, opts *drawOpts) ([]layout.Key, error) {
	switch {
	case opts.qmkInfoJSON != "":
		info, err := qmk.ReadInfoFile(opts.qmkInfoJSON)
		if err != nil {
			return nil, fmt.Errorf("read info.json: %w", err)
		}
		return keysFromInfo(cmd, info, opts)

	case opts.qmkKeyboard != "":
		info, err := fetchKeyboard(cmd, opts)
		if err != nil {
			return nil, err
		}
		return keysFromInfo(cmd, info, opts)

	case km.Layout != nil:
		keys, err := layout.Resolve(*km.Layout)
		if err != nil {
			return nil, fmt.Errorf("resolve layout: %w", err)
		}
		return keys, nil

	default:
		return nil, fmt.Errorf("no layout source: pass --qmk-keyboard, --qmk-info-json, or embed a layout block in the keymap")
	}
}

// fetchKeyboard downloads QMK metadata for the requested keyboard,
// using the on-disk cache unless --no-cache is set.
func fetchKeyboard(cmd *cobra.Command, opts *drawOpts) (*qmk.Info, error) {
	ctx := cmd.Context()

	var cache *httputil.Cache
	if !opts.noCache {
		dir, err := cacheDir()
		if err == nil {
			cache, err = httputil.NewCache(dir, qmk.DefaultCacheTTL)
			if err != nil {
				loggerFromContext(ctx).Debug("cache unavailable", "err", err)
				cache = nil
			}
		}
	}
	client := qmk.NewClient(cache)

	sp := newSpinner(ctx, fmt.Sprintf("Fetching %s from keyboards.qmk.fm...", opts.qmkKeyboard))
	sp.start()
	info, err := client.FetchInfo(ctx, opts.qmkKeyboard, opts.noCache)
	sp.stop()
	if err != nil {
		printError("Failed to fetch %s", opts.qmkKeyboard)
		return nil, fmt.Errorf("fetch keyboard: %w", err)
	}
	printInfo("Fetched %s", styleHighlight.Render(info.KeyboardName))
	return info, nil
}

// keysFromInfo converts QMK metadata to key positions, selecting a
// layout by name, interactively on a TTY, or the first alphabetically.
func keysFromInfo(cmd *cobra.Command, info *qmk.Info, opts *drawOpts) ([]layout.Key, error) {
	name := opts.qmkLayout
	names := info.LayoutNames()

	if name == "" && len(names) > 1 && isTerminal(cmd.InOrStdin()) {
		picked, err := pickLayout(info)
		if err != nil {
			return nil, fmt.Errorf("layout picker: %w", err)
		}
		if picked == "" {
			return nil, fmt.Errorf("no layout selected")
		}
		name = picked
		printInfo("Using layout %s", styleHighlight.Render(name))
	}

	desc, err := info.LayoutDescriptor(name)
	if err != nil {
		return nil, fmt.Errorf("select layout: %w", err)
	}
	keys, err := layout.Resolve(*desc)
	if err != nil {
		return nil, fmt.Errorf("resolve layout: %w", err)
	}
	return keys, nil
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

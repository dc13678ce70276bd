package draw

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Style controls the visual parameters of the rendered diagram. All
// lengths are in pixels unless noted. Zero values are filled from
// DefaultStyle by Render, so a partially specified style (e.g. loaded
// from a config file) is safe to use.
type Style struct {
	Unit        float64 `toml:"unit"`         // pixels per layout unit
	Margin      float64 `toml:"margin"`       // outer canvas margin
	CornerRad   float64 `toml:"corner_rad"`   // key glyph corner radius
	LayerHeader float64 `toml:"layer_header"` // space above each board for the layer name
	LayerGap    float64 `toml:"layer_gap"`    // vertical gap between layer bands

	FontSize       float64 `toml:"font_size"`        // primary label base size
	MinFontSize    float64 `toml:"min_font_size"`    // shrink floor before truncation
	CornerFontSize float64 `toml:"corner_font_size"` // secondary (corner) label size
	HeaderFontSize float64 `toml:"header_font_size"` // layer name size

	ComboWidth    float64 `toml:"combo_width"`     // combo marker width
	ComboHeight   float64 `toml:"combo_height"`    // combo marker height
	ComboFontSize float64 `toml:"combo_font_size"` // combo label base size

	Background string `toml:"background"`
	KeyFill    string `toml:"key_fill"`
	KeyStroke  string `toml:"key_stroke"`
	HeldFill   string `toml:"held_fill"`
	Text       string `toml:"text"`
	ComboFill  string `toml:"combo_fill"`
	ComboLine  string `toml:"combo_line"`
}

// DefaultStyle returns the built-in style.
func DefaultStyle() Style {
	return Style{
		Unit:        60,
		Margin:      12,
		CornerRad:   6,
		LayerHeader: 32,
		LayerGap:    18,

		FontSize:       14,
		MinFontSize:    8,
		CornerFontSize: 9,
		HeaderFontSize: 16,

		ComboWidth:    30,
		ComboHeight:   16,
		ComboFontSize: 10,

		Background: "#ffffff",
		KeyFill:    "#f6f8fa",
		KeyStroke:  "#c4c8cc",
		HeldFill:   "#fdd",
		Text:       "#24292e",
		ComboFill:  "#cdf",
		ComboLine:  "#7a8490",
	}
}

// LoadStyle reads a TOML style file and overlays it on the defaults,
// so the file only needs to name the values it changes.
func LoadStyle(path string) (Style, error) {
	s := DefaultStyle()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return Style{}, fmt.Errorf("load style %s: %w", path, err)
	}
	return s, nil
}

// merged fills zero fields from the defaults. Programmatic callers may
// construct partial styles; rendering always works from a complete one.
func (s Style) merged() Style {
	def := DefaultStyle()
	for _, f := range []struct {
		dst *float64
		def float64
	}{
		{&s.Unit, def.Unit},
		{&s.Margin, def.Margin},
		{&s.CornerRad, def.CornerRad},
		{&s.LayerHeader, def.LayerHeader},
		{&s.LayerGap, def.LayerGap},
		{&s.FontSize, def.FontSize},
		{&s.MinFontSize, def.MinFontSize},
		{&s.CornerFontSize, def.CornerFontSize},
		{&s.HeaderFontSize, def.HeaderFontSize},
		{&s.ComboWidth, def.ComboWidth},
		{&s.ComboHeight, def.ComboHeight},
		{&s.ComboFontSize, def.ComboFontSize},
	} {
		if *f.dst == 0 {
			*f.dst = f.def
		}
	}
	for _, f := range []struct {
		dst *string
		def string
	}{
		{&s.Background, def.Background},
		{&s.KeyFill, def.KeyFill},
		{&s.KeyStroke, def.KeyStroke},
		{&s.HeldFill, def.HeldFill},
		{&s.Text, def.Text},
		{&s.ComboFill, def.ComboFill},
		{&s.ComboLine, def.ComboLine},
	} {
		if *f.dst == "" {
			*f.dst = f.def
		}
	}
	return s
}

// css renders the stylesheet embedded in the SVG document. Key style
// tags from the keymap ("held", "ghost", ...) map onto the classes
// declared here.
func (s Style) css() string {
	return fmt.Sprintf(`
    svg { font-family: ui-sans-serif, -apple-system, "Helvetica Neue", sans-serif; }
    rect.key { fill: %s; stroke: %s; stroke-width: 1; }
    rect.key.held { fill: %s; }
    rect.key.ghost { fill-opacity: 0.4; stroke-dasharray: 4 3; }
    rect.key.blank { fill-opacity: 0.25; }
    text { fill: %s; text-anchor: middle; dominant-baseline: middle; }
    text.layer-name { text-anchor: start; font-weight: 600; }
    text.corner { fill-opacity: 0.65; }
    line.combo { stroke: %s; stroke-width: 1; stroke-dasharray: 2 2; }
    rect.combo { fill: %s; stroke: %s; stroke-width: 1; }`,
		s.KeyFill, s.KeyStroke, s.HeldFill, s.Text, s.ComboLine, s.ComboFill, s.ComboLine)
}

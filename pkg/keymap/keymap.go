// Package keymap defines the keymap descriptor consumed by the
// renderer: an ordered list of layers, each assigning a label spec to
// every physical key, plus combo (chord) definitions.
//
// Keymaps are read from and written to YAML. All types are plain
// values constructed once from input and consumed read-only.
package keymap

import (
	"errors"
	"fmt"

	"github.com/keydraw/keydraw/pkg/layout"
)

// ErrInvalidLayer is returned when layer data is malformed (missing
// layers, unnamed or duplicate layers, non-sequence labels).
var ErrInvalidLayer = errors.New("invalid layer")

// Keymap is the full keymap descriptor. Layout is optional: it is only
// used when the physical layout is embedded in the keymap file rather
// than supplied separately.
type Keymap struct {
	Layout *layout.Descriptor `yaml:"layout,omitempty"`
	Layers []Layer            `yaml:"layers"`
	Combos []Combo            `yaml:"combos,omitempty"`
}

// Layer is one named assignment of label specs to keys, aligned
// positionally with the resolved key geometry. A layer shorter than
// the key count is padded with blank specs at render time; a longer
// one is rejected.
type Layer struct {
	Name string    `yaml:"name"`
	Keys []KeySpec `yaml:"keys"`
}

// KeySpec is the semantic content of one key on one layer.
//
// Label is drawn centered. Secondary labels are drawn at the corners
// in fixed priority order: top-left, top-right, bottom-left,
// bottom-right. Style is a visual tag ("held", "ghost", ...) mapped to
// a CSS class; it never affects geometry.
type KeySpec struct {
	Label     string   `yaml:"label"`
	Secondary []string `yaml:"secondary,omitempty"`
	Style     string   `yaml:"style,omitempty"`
}

// Blank reports whether the spec renders as an empty placeholder.
func (s KeySpec) Blank() bool {
	return s.Label == "" && len(s.Secondary) == 0
}

// Point is an explicit position override in layout units.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Combo is a key chord: pressing Keys together triggers Label. Keys
// reference the resolved geometry index space. Layers restricts which
// layer diagrams show the combo; nil means every layer. Position
// overrides the default marker placement at the centroid of the
// referenced key centers.
type Combo struct {
	Keys     []int    `yaml:"keys"`
	Label    string   `yaml:"label"`
	Layers   []string `yaml:"layers,omitempty"`
	Position *Point   `yaml:"position,omitempty"`
}

// AppliesTo reports whether the combo should be drawn on the named
// layer. A combo with no layer restriction applies everywhere.
func (c Combo) AppliesTo(layerName string) bool {
	if len(c.Layers) == 0 {
		return true
	}
	for _, l := range c.Layers {
		if l == layerName {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants that do not depend on the
// resolved geometry: at least one layer, every layer named, names
// unique. Geometry-dependent checks (layer length, combo indices) are
// performed by the renderer.
func (k *Keymap) Validate() error {
	if len(k.Layers) == 0 {
		return fmt.Errorf("%w: keymap defines no layers", ErrInvalidLayer)
	}
	seen := make(map[string]struct{}, len(k.Layers))
	for i, l := range k.Layers {
		if l.Name == "" {
			return fmt.Errorf("%w: layer %d has no name", ErrInvalidLayer, i)
		}
		if _, dup := seen[l.Name]; dup {
			return fmt.Errorf("%w: duplicate layer name %q", ErrInvalidLayer, l.Name)
		}
		seen[l.Name] = struct{}{}
	}
	return nil
}

// LayerNames returns the layer names in declaration order.
func (k *Keymap) LayerNames() []string {
	names := make([]string, len(k.Layers))
	for i, l := range k.Layers {
		names[i] = l.Name
	}
	return names
}

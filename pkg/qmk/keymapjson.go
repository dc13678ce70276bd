package qmk

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/keydraw/keydraw/pkg/keymap"
)

// KeymapJSON mirrors the QMK keymap.json export format: an ordered
// list of layers, each an ordered list of keycode strings.
type KeymapJSON struct {
	Keyboard string     `json:"keyboard"`
	Keymap   string     `json:"keymap"`
	Layout   string     `json:"layout"`
	Layers   [][]string `json:"layers"`
}

// ImportOptions controls the keycode-to-label conversion.
type ImportOptions struct {
	// KeepPrefixes leaves keycodes verbatim instead of stripping KC_
	// and unwrapping modifier/layer-tap functions into label + corner
	// annotation.
	KeepPrefixes bool
}

// wrapped matches keycodes of the form FN(args), e.g. LT(2,KC_A) or
// LSFT_T(KC_Z): the inner (last) argument becomes the tap label and
// the function name the hold annotation.
var wrapped = regexp.MustCompile(`^([A-Z][A-Z0-9_]*)\((.+)\)$`)

// ReadKeymapJSON converts a QMK keymap.json document into the keymap
// descriptor. Layer names are not part of the export, so layers are
// named L0, L1, ... in order.
func ReadKeymapJSON(r io.Reader, opts ImportOptions) (*keymap.Keymap, error) {
	var doc KeymapJSON
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode keymap.json: %w", err)
	}
	if len(doc.Layers) == 0 {
		return nil, fmt.Errorf("%w: keymap.json defines no layers", keymap.ErrInvalidLayer)
	}

	km := &keymap.Keymap{Layers: make([]keymap.Layer, len(doc.Layers))}
	for i, codes := range doc.Layers {
		specs := make([]keymap.KeySpec, len(codes))
		for j, code := range codes {
			specs[j] = keycodeSpec(code, opts)
		}
		km.Layers[i] = keymap.Layer{Name: fmt.Sprintf("L%d", i), Keys: specs}
	}
	return km, nil
}

// ReadKeymapJSONFile converts the keymap.json file at path.
func ReadKeymapJSONFile(path string, opts ImportOptions) (*keymap.Keymap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadKeymapJSON(f, opts)
}

// keycodeSpec turns one QMK keycode into a label spec.
func keycodeSpec(code string, opts ImportOptions) keymap.KeySpec {
	if opts.KeepPrefixes {
		return keymap.KeySpec{Label: code}
	}

	switch code {
	case "KC_TRNS", "_______", "KC_TRANSPARENT":
		return keymap.KeySpec{} // transparent keys render blank
	case "KC_NO", "XXXXXXX":
		return keymap.KeySpec{}
	}

	if m := wrapped.FindStringSubmatch(code); m != nil {
		args := strings.Split(m[2], ",")
		tap := strings.TrimSpace(args[len(args)-1])
		// Mod-taps like LSFT_T(KC_Z) annotate with the modifier;
		// layer-taps like LT(2,KC_A) annotate with the layer argument.
		hold := strings.TrimSuffix(m[1], "_T")
		if len(args) > 1 {
			hold = strings.TrimSpace(args[0])
		}
		return keymap.KeySpec{
			Label:     stripPrefix(tap),
			Secondary: []string{stripPrefix(hold)},
		}
	}

	return keymap.KeySpec{Label: stripPrefix(code)}
}

func stripPrefix(code string) string {
	return strings.TrimPrefix(code, "KC_")
}

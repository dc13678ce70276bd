package draw

import (
	"bytes"
	"fmt"

	"github.com/keydraw/keydraw/pkg/keymap"
	"github.com/keydraw/keydraw/pkg/layout"
)

// placedCombo is a combo with its marker position resolved to layout
// units: the explicit override when given, otherwise the centroid of
// the referenced key centers.
type placedCombo struct {
	combo keymap.Combo
	x, y  float64
}

// placeCombos validates every combo against the resolved geometry and
// the declared layers, and computes marker positions. Any invalid
// combo aborts the whole render.
func placeCombos(km *keymap.Keymap, keys []layout.Key) ([]placedCombo, error) {
	layerNames := make(map[string]struct{}, len(km.Layers))
	for _, l := range km.Layers {
		layerNames[l.Name] = struct{}{}
	}

	placed := make([]placedCombo, 0, len(km.Combos))
	for i, c := range km.Combos {
		if len(c.Keys) < 2 {
			return nil, fmt.Errorf("%w: combo %d (%q) needs at least 2 keys, has %d",
				ErrInvalidCombo, i, c.Label, len(c.Keys))
		}
		for _, idx := range c.Keys {
			if idx < 0 || idx >= len(keys) {
				return nil, fmt.Errorf("%w: combo %d (%q) references unknown key index %d (have %d keys)",
					ErrInvalidCombo, i, c.Label, idx, len(keys))
			}
		}
		for _, name := range c.Layers {
			if _, ok := layerNames[name]; !ok {
				return nil, fmt.Errorf("%w: combo %d (%q) targets unknown layer %q",
					ErrInvalidCombo, i, c.Label, name)
			}
		}

		p := placedCombo{combo: c}
		if c.Position != nil {
			p.x, p.y = c.Position.X, c.Position.Y
		} else {
			for _, idx := range c.Keys {
				p.x += keys[idx].X
				p.y += keys[idx].Y
			}
			p.x /= float64(len(c.Keys))
			p.y /= float64(len(c.Keys))
		}
		placed = append(placed, p)
	}
	return placed, nil
}

// comboOverlay emits the combo group for one layer band: connector
// lines run from each referenced key center to the marker, then the
// marker and its label are drawn over them. Combos without a layer
// restriction are replicated identically on every band.
func (r *renderer) comboOverlay(buf *bytes.Buffer, layerName string, offX, offY float64) {
	s := r.style

	buf.WriteString(`    <g class="combos">` + "\n")
	for _, c := range r.combos {
		if !c.combo.AppliesTo(layerName) {
			continue
		}
		mx := c.x*s.Unit + offX
		my := c.y*s.Unit + offY

		for _, idx := range c.combo.Keys {
			k := r.keys[idx]
			fmt.Fprintf(buf, `      <line class="combo" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
				k.X*s.Unit+offX, k.Y*s.Unit+offY, mx, my)
		}

		fmt.Fprintf(buf, `      <rect class="combo" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.1f"/>`+"\n",
			mx-s.ComboWidth/2, my-s.ComboHeight/2, s.ComboWidth, s.ComboHeight, s.ComboHeight/2)

		if c.combo.Label != "" {
			size, text := fitLabel(c.combo.Label, s.ComboWidth-4, s.ComboFontSize, s.MinFontSize*0.75)
			fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" font-size="%.1f">%s</text>`+"\n",
				mx, my, size, escapeXML(text))
		}
	}
	buf.WriteString("    </g>\n")
}

// Package draw renders a resolved keyboard layout plus keymap data
// into an SVG document.
//
// The document stacks one group per layer top to bottom in declaration
// order. Every layer draws the full key geometry so layers stay
// aligned key for key; combos are drawn as connector overlays on the
// layers they target. Rendering is deterministic: identical inputs
// produce byte-identical output.
package draw

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/keydraw/keydraw/pkg/keymap"
	"github.com/keydraw/keydraw/pkg/layout"
)

// ErrInvalidCombo is returned when a combo references an unknown key
// index or layer, or has fewer than two keys.
var ErrInvalidCombo = errors.New("invalid combo")

// Option configures a render pass.
type Option func(*renderer)

// WithStyle overrides the default drawing style. Zero fields fall back
// to the defaults.
func WithStyle(s Style) Option { return func(r *renderer) { r.style = s } }

type renderer struct {
	style  Style
	keys   []layout.Key
	layers []keymap.Layer
	combos []placedCombo

	// Board content bounds in pixels, shared by every layer band so
	// the bands line up. A layer band is LayerHeader + boardH tall.
	originX, originY float64
	boardW, boardH   float64
}

// Render produces the complete SVG document for the given geometry and
// keymap. No partial document is ever returned: any validation failure
// aborts before a single byte is produced.
func Render(keys []layout.Key, km *keymap.Keymap, opts ...Option) ([]byte, error) {
	r := renderer{style: DefaultStyle(), keys: keys}
	for _, opt := range opts {
		opt(&r)
	}
	r.style = r.style.merged()

	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no keys resolved", layout.ErrInvalidLayout)
	}
	if err := km.Validate(); err != nil {
		return nil, err
	}

	layers, err := normalizeLayers(km.Layers, len(keys))
	if err != nil {
		return nil, err
	}
	r.layers = layers

	combos, err := placeCombos(km, keys)
	if err != nil {
		return nil, err
	}
	r.combos = combos

	r.measure()

	var buf bytes.Buffer
	r.document(&buf)
	return buf.Bytes(), nil
}

// RenderTo renders the document and writes it to w in a single call.
// Nothing is written when rendering fails.
func RenderTo(w io.Writer, keys []layout.Key, km *keymap.Keymap, opts ...Option) error {
	data, err := Render(keys, km, opts...)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// normalizeLayers pads short layers with blank specs so every layer
// covers the full key count. A layer with more entries than keys has
// labels with no target key, which is a data error.
func normalizeLayers(layers []keymap.Layer, keyCount int) ([]keymap.Layer, error) {
	out := make([]keymap.Layer, len(layers))
	for i, l := range layers {
		if len(l.Keys) > keyCount {
			return nil, fmt.Errorf("%w: layer %q has %d labels for %d keys",
				keymap.ErrInvalidLayer, l.Name, len(l.Keys), keyCount)
		}
		padded := make([]keymap.KeySpec, keyCount)
		copy(padded, l.Keys)
		out[i] = keymap.Layer{Name: l.Name, Keys: padded}
	}
	return out, nil
}

// measure computes the shared board content bounds: the union of every
// key's (rotated) bounding box and every combo marker box, converted
// to pixels.
func (r *renderer) measure() {
	s := r.style

	minX, minY, maxX, maxY := r.keys[0].Bounds()
	for _, k := range r.keys[1:] {
		x0, y0, x1, y1 := k.Bounds()
		minX, minY = min(minX, x0), min(minY, y0)
		maxX, maxY = max(maxX, x1), max(maxY, y1)
	}

	// Combo markers may extend past the key area (explicit position
	// overrides in particular); reserve space for them on every band.
	halfW := s.ComboWidth / (2 * s.Unit)
	halfH := s.ComboHeight / (2 * s.Unit)
	for _, c := range r.combos {
		minX, minY = min(minX, c.x-halfW), min(minY, c.y-halfH)
		maxX, maxY = max(maxX, c.x+halfW), max(maxY, c.y+halfH)
	}

	r.originX, r.originY = minX*s.Unit, minY*s.Unit
	r.boardW = (maxX - minX) * s.Unit
	r.boardH = (maxY - minY) * s.Unit
}

func (r *renderer) document(buf *bytes.Buffer) {
	s := r.style
	n := float64(len(r.layers))
	totalW := r.boardW + 2*s.Margin
	totalH := 2*s.Margin + n*(s.LayerHeader+r.boardH) + (n-1)*s.LayerGap

	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		totalW, totalH, totalW, totalH)
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", s.css())
	fmt.Fprintf(buf, `  <rect width="%.2f" height="%.2f" fill="%s"/>`+"\n", totalW, totalH, s.Background)

	for i, l := range r.layers {
		bandTop := s.Margin + float64(i)*(s.LayerHeader+r.boardH+s.LayerGap)
		r.layerGroup(buf, l, bandTop)
	}

	buf.WriteString("</svg>\n")
}

// layerGroup emits one layer band: the layer name heading, every key
// glyph, and the combo overlay group for combos targeting this layer.
func (r *renderer) layerGroup(buf *bytes.Buffer, l keymap.Layer, bandTop float64) {
	s := r.style

	fmt.Fprintf(buf, `  <g class="layer" id="layer-%s" transform="translate(%.2f %.2f)">`+"\n",
		escapeXML(l.Name), s.Margin, bandTop)
	fmt.Fprintf(buf, `    <text class="layer-name" x="0" y="%.2f" font-size="%.1f">%s</text>`+"\n",
		s.HeaderFontSize*0.75, s.HeaderFontSize, escapeXML(l.Name))

	// Key centers map into band coordinates through this offset.
	offX := -r.originX
	offY := s.LayerHeader - r.originY

	for i, k := range r.keys {
		r.keyGlyph(buf, k, l.Keys[i], offX, offY)
	}
	r.comboOverlay(buf, l.Name, offX, offY)

	buf.WriteString("  </g>\n")
}

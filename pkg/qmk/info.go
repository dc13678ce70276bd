// Package qmk resolves physical keyboard layouts and keymaps from QMK
// metadata: the keyboards.qmk.fm info.json API (or a local info.json
// file) for key geometry, and keymap.json exports for key assignments.
package qmk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/keydraw/keydraw/pkg/layout"
)

// Sentinel errors for QMK lookups.
var (
	// ErrNotFound is returned for unknown keyboards or layout names.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for HTTP transport failures.
	ErrNetwork = errors.New("network error")
)

// Info is the physical-layout portion of a QMK info.json document.
type Info struct {
	KeyboardName string                `json:"keyboard_name"`
	Layouts      map[string]InfoLayout `json:"layouts"`
}

// InfoLayout is one named layout variant of a keyboard.
type InfoLayout struct {
	Layout []InfoKey `json:"layout"`
}

// InfoKey is one key in QMK's layout format. X and Y are the top-left
// corner in key units; W and H default to 1. R rotates the key by R
// degrees around (RX, RY), which default to the key's top-left corner.
type InfoKey struct {
	X  float64  `json:"x"`
	Y  float64  `json:"y"`
	W  *float64 `json:"w,omitempty"`
	H  *float64 `json:"h,omitempty"`
	R  float64  `json:"r,omitempty"`
	RX *float64 `json:"rx,omitempty"`
	RY *float64 `json:"ry,omitempty"`
}

// ReadInfo decodes a QMK info.json document from r.
func ReadInfo(r io.Reader) (*Info, error) {
	var info Info
	if err := json.NewDecoder(r).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode info.json: %w", err)
	}
	if len(info.Layouts) == 0 {
		return nil, fmt.Errorf("%w: info.json defines no layouts", layout.ErrInvalidLayout)
	}
	return &info, nil
}

// ReadInfoFile decodes a QMK info.json file at path.
func ReadInfoFile(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadInfo(f)
}

// LayoutNames returns the defined layout names in sorted order, so the
// "first" layout is deterministic rather than map-iteration dependent.
func (i *Info) LayoutNames() []string {
	names := make([]string, 0, len(i.Layouts))
	for name := range i.Layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LayoutDescriptor converts the named QMK layout into an explicit
// layout descriptor. An empty name selects the first layout in
// sorted-name order.
func (i *Info) LayoutDescriptor(name string) (*layout.Descriptor, error) {
	if name == "" {
		name = i.LayoutNames()[0]
	}
	l, ok := i.Layouts[name]
	if !ok {
		return nil, fmt.Errorf("%w: layout %q (available: %v)", ErrNotFound, name, i.LayoutNames())
	}

	desc := &layout.Descriptor{Type: layout.TypeExplicit, Keys: make([]layout.KeyRecord, len(l.Layout))}
	for idx, k := range l.Layout {
		w, h := 1.0, 1.0
		if k.W != nil {
			w = *k.W
		}
		if k.H != nil {
			h = *k.H
		}

		// QMK positions are top-left corners; the renderer works with
		// centers. Rotated keys pivot around (rx, ry), so the center
		// itself must be rotated into place.
		cx := k.X + w/2
		cy := k.Y + h/2
		if k.R != 0 {
			rx, ry := k.X, k.Y
			if k.RX != nil {
				rx = *k.RX
			}
			if k.RY != nil {
				ry = *k.RY
			}
			cx, cy = rotateAround(cx, cy, rx, ry, k.R)
		}

		x, y := cx, cy
		wv, hv := w, h
		desc.Keys[idx] = layout.KeyRecord{X: &x, Y: &y, W: &wv, H: &hv, R: k.R}
	}
	return desc, nil
}

func rotateAround(x, y, cx, cy, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	dx, dy := x-cx, y-cy
	return cx + dx*cos - dy*sin, cy + dx*sin + dy*cos
}

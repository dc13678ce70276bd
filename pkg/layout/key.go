// Package layout resolves physical keyboard layout descriptors into
// concrete per-key geometry.
//
// A layout is described either explicitly (an ordered list of key
// geometry records) or as an "ortho" grid (row/column/pitch parameters
// for uniform matrix keyboards, with optional per-row stagger and a
// split gap between the two halves). [Resolve] turns either form into
// an ordered []Key; the slice index is the key's identity everywhere
// else in the system: the same index denotes the same physical key on
// every layer and in every combo.
//
// Resolution is a pure function: the same descriptor always yields the
// same keys in the same order.
package layout

import "math"

// Key is the resolved geometry of a single physical key.
// All values are in layout units (one unit per key pitch).
// X and Y locate the key center; Rotation is in degrees, applied
// around the center.
type Key struct {
	X, Y     float64
	W, H     float64
	Rotation float64
}

// Left returns the x coordinate of the unrotated left edge.
func (k Key) Left() float64 { return k.X - k.W/2 }

// Right returns the x coordinate of the unrotated right edge.
func (k Key) Right() float64 { return k.X + k.W/2 }

// Top returns the y coordinate of the unrotated top edge.
func (k Key) Top() float64 { return k.Y - k.H/2 }

// Bottom returns the y coordinate of the unrotated bottom edge.
func (k Key) Bottom() float64 { return k.Y + k.H/2 }

// Bounds returns the axis-aligned bounding box of the key, taking
// rotation into account.
func (k Key) Bounds() (minX, minY, maxX, maxY float64) {
	if k.Rotation == 0 {
		return k.Left(), k.Top(), k.Right(), k.Bottom()
	}

	rad := k.Rotation * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{
		{-k.W / 2, -k.H / 2},
		{k.W / 2, -k.H / 2},
		{-k.W / 2, k.H / 2},
		{k.W / 2, k.H / 2},
	} {
		x := k.X + c[0]*cos - c[1]*sin
		y := k.Y + c[0]*sin + c[1]*cos
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return minX, minY, maxX, maxY
}

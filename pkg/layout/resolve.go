package layout

import (
	"errors"
	"fmt"
)

// ErrInvalidLayout is returned when a physical layout descriptor is
// malformed or insufficient to resolve key geometry.
var ErrInvalidLayout = errors.New("invalid layout")

// Descriptor types.
const (
	TypeExplicit = "explicit"
	TypeOrtho    = "ortho"
)

// Descriptor is a tagged physical layout description. Type selects
// which field group applies: "explicit" uses Keys verbatim, "ortho"
// derives a uniform grid from the remaining parameters.
type Descriptor struct {
	Type string `yaml:"type" json:"type"`

	// Explicit layouts: ordered key geometry records.
	Keys []KeyRecord `yaml:"keys,omitempty" json:"keys,omitempty"`

	// Ortho layouts.
	Rows     int       `yaml:"rows,omitempty" json:"rows,omitempty"`
	Cols     int       `yaml:"cols,omitempty" json:"cols,omitempty"`
	PitchX   float64   `yaml:"pitch_x,omitempty" json:"pitch_x,omitempty"`
	PitchY   float64   `yaml:"pitch_y,omitempty" json:"pitch_y,omitempty"`
	Gap      float64   `yaml:"gap,omitempty" json:"gap,omitempty"`
	Stagger  []float64 `yaml:"stagger,omitempty" json:"stagger,omitempty"`
	SplitGap float64   `yaml:"split_gap,omitempty" json:"split_gap,omitempty"`
	SplitAt  int       `yaml:"split_at,omitempty" json:"split_at,omitempty"`
}

// KeyRecord is one key in an explicit descriptor. X and Y are pointers
// so that a missing coordinate is distinguishable from zero; width and
// height default to 1 unit, rotation to 0.
type KeyRecord struct {
	X *float64 `yaml:"x" json:"x"`
	Y *float64 `yaml:"y" json:"y"`
	W *float64 `yaml:"w,omitempty" json:"w,omitempty"`
	H *float64 `yaml:"h,omitempty" json:"h,omitempty"`
	R float64  `yaml:"r,omitempty" json:"r,omitempty"`
}

// Resolve converts a descriptor into an ordered sequence of key
// geometries. The returned slice index is the canonical key index used
// by layers and combos.
func Resolve(d Descriptor) ([]Key, error) {
	switch d.Type {
	case TypeExplicit:
		return resolveExplicit(d)
	case TypeOrtho:
		return resolveOrtho(d)
	default:
		return nil, fmt.Errorf("%w: unknown descriptor type %q", ErrInvalidLayout, d.Type)
	}
}

func resolveExplicit(d Descriptor) ([]Key, error) {
	if len(d.Keys) == 0 {
		return nil, fmt.Errorf("%w: explicit descriptor has no keys", ErrInvalidLayout)
	}

	keys := make([]Key, len(d.Keys))
	for i, rec := range d.Keys {
		if rec.X == nil || rec.Y == nil {
			return nil, fmt.Errorf("%w: key %d is missing x/y", ErrInvalidLayout, i)
		}
		k := Key{X: *rec.X, Y: *rec.Y, W: 1, H: 1, Rotation: rec.R}
		if rec.W != nil {
			k.W = *rec.W
		}
		if rec.H != nil {
			k.H = *rec.H
		}
		keys[i] = k
	}
	return keys, nil
}

func resolveOrtho(d Descriptor) ([]Key, error) {
	if d.Rows <= 0 || d.Cols <= 0 {
		return nil, fmt.Errorf("%w: ortho descriptor needs positive rows/cols, got %dx%d",
			ErrInvalidLayout, d.Rows, d.Cols)
	}
	if d.PitchX <= 0 || d.PitchY <= 0 {
		return nil, fmt.Errorf("%w: ortho descriptor needs positive pitch, got %gx%g",
			ErrInvalidLayout, d.PitchX, d.PitchY)
	}
	if d.Gap < 0 || d.Gap >= d.PitchX || d.Gap >= d.PitchY {
		return nil, fmt.Errorf("%w: gap %g must be in [0, pitch)", ErrInvalidLayout, d.Gap)
	}

	splitAt := d.SplitAt
	if d.SplitGap > 0 && splitAt == 0 {
		splitAt = d.Cols / 2
	}

	keys := make([]Key, 0, d.Rows*d.Cols)
	for r := 0; r < d.Rows; r++ {
		var stagger float64
		if r < len(d.Stagger) {
			stagger = d.Stagger[r]
		}
		for c := 0; c < d.Cols; c++ {
			x := float64(c)*d.PitchX + stagger
			if d.SplitGap > 0 && c >= splitAt {
				x += d.SplitGap
			}
			keys = append(keys, Key{
				X: x,
				Y: float64(r) * d.PitchY,
				W: d.PitchX - d.Gap,
				H: d.PitchY - d.Gap,
			})
		}
	}
	return keys, nil
}

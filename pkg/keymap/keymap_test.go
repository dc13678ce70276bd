package keymap

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

const sampleYAML = `
layout:
  type: ortho
  rows: 2
  cols: 3
  pitch_x: 1
  pitch_y: 1
layers:
  - name: base
    keys:
      - A
      - B
      - {label: C, secondary: [Ctrl], style: held}
      - D
      - E
      -
  - name: sym
    keys: ["!", "@", "#"]
combos:
  - keys: [0, 1]
    label: Esc
  - keys: [3, 4]
    label: Tab
    layers: [base]
    position: {x: 1.5, y: 0.5}
`

func TestRead(t *testing.T) {
	km, err := Read(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if km.Layout == nil || km.Layout.Type != "ortho" || km.Layout.Rows != 2 {
		t.Errorf("Layout = %+v, want embedded 2x3 ortho descriptor", km.Layout)
	}
	if len(km.Layers) != 2 {
		t.Fatalf("len(Layers) = %d, want 2", len(km.Layers))
	}

	base := km.Layers[0]
	if base.Name != "base" || len(base.Keys) != 6 {
		t.Fatalf("base layer = %q with %d keys", base.Name, len(base.Keys))
	}
	if base.Keys[0].Label != "A" {
		t.Errorf("key 0 label = %q, want A (scalar shorthand)", base.Keys[0].Label)
	}
	if got := base.Keys[2]; got.Label != "C" || got.Style != "held" || len(got.Secondary) != 1 {
		t.Errorf("key 2 = %+v, want full spec", got)
	}
	if !base.Keys[5].Blank() {
		t.Errorf("key 5 = %+v, want blank (null shorthand)", base.Keys[5])
	}

	if len(km.Combos) != 2 {
		t.Fatalf("len(Combos) = %d, want 2", len(km.Combos))
	}
	if km.Combos[1].Position == nil || km.Combos[1].Position.X != 1.5 {
		t.Errorf("combo position = %+v, want explicit override", km.Combos[1].Position)
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no layers", "combos: []"},
		{"empty layers", "layers: []"},
		{"unnamed layer", "layers: [{keys: [A]}]"},
		{"duplicate layer", "layers: [{name: x, keys: [A]}, {name: x, keys: [B]}]"},
		{"non-sequence keys", "layers: [{name: x, keys: 42}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.yaml)); err == nil {
				t.Error("Read() succeeded, want error")
			}
		})
	}
}

func TestReadInvalidLayerSentinel(t *testing.T) {
	_, err := Read(strings.NewReader("layers: [{keys: [A]}]"))
	if !errors.Is(err, ErrInvalidLayer) {
		t.Errorf("Read() error = %v, want ErrInvalidLayer", err)
	}
}

func TestComboAppliesTo(t *testing.T) {
	tests := []struct {
		name  string
		combo Combo
		layer string
		want  bool
	}{
		{"unrestricted applies everywhere", Combo{}, "base", true},
		{"matching layer", Combo{Layers: []string{"sym"}}, "sym", true},
		{"non-matching layer", Combo{Layers: []string{"sym"}}, "base", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.combo.AppliesTo(tt.layer); got != tt.want {
				t.Errorf("AppliesTo(%q) = %v, want %v", tt.layer, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	km, err := Read(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	var buf bytes.Buffer
	if err := Write(km, &buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// Plain labels must stay scalar shorthand, not expand to mappings.
	if strings.Contains(buf.String(), "label: A") {
		t.Error("Write() expanded a plain label into a mapping")
	}

	again, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read(round trip) error = %v", err)
	}
	if len(again.Layers) != len(km.Layers) || len(again.Combos) != len(km.Combos) {
		t.Errorf("round trip changed shape: %d/%d layers, %d/%d combos",
			len(again.Layers), len(km.Layers), len(again.Combos), len(km.Combos))
	}
	if again.Layers[0].Keys[2].Style != "held" {
		t.Error("round trip lost key style")
	}
}

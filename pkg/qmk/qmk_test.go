package qmk

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/keydraw/keydraw/pkg/httputil"
	"github.com/keydraw/keydraw/pkg/layout"
)

const sampleInfo = `{
  "keyboard_name": "test",
  "layouts": {
    "LAYOUT_ortho_1x2": {
      "layout": [
        {"x": 0, "y": 0},
        {"x": 1, "y": 0}
      ]
    },
    "LAYOUT_big": {
      "layout": [
        {"x": 0, "y": 0, "w": 2},
        {"x": 2, "y": 0},
        {"x": 0, "y": 1, "r": 90, "rx": 0, "ry": 1}
      ]
    }
  }
}`

func TestReadInfo(t *testing.T) {
	info, err := ReadInfo(strings.NewReader(sampleInfo))
	if err != nil {
		t.Fatalf("ReadInfo() error = %v", err)
	}
	if len(info.Layouts) != 2 {
		t.Errorf("len(Layouts) = %d, want 2", len(info.Layouts))
	}

	names := info.LayoutNames()
	if len(names) != 2 || names[0] != "LAYOUT_big" || names[1] != "LAYOUT_ortho_1x2" {
		t.Errorf("LayoutNames() = %v, want sorted order", names)
	}
}

func TestReadInfoNoLayouts(t *testing.T) {
	if _, err := ReadInfo(strings.NewReader(`{"keyboard_name": "x", "layouts": {}}`)); err == nil {
		t.Error("ReadInfo() succeeded on info.json without layouts")
	}
}

func TestLayoutDescriptor(t *testing.T) {
	info, err := ReadInfo(strings.NewReader(sampleInfo))
	if err != nil {
		t.Fatalf("ReadInfo() error = %v", err)
	}

	desc, err := info.LayoutDescriptor("LAYOUT_ortho_1x2")
	if err != nil {
		t.Fatalf("LayoutDescriptor() error = %v", err)
	}
	keys, err := layout.Resolve(*desc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// QMK corners become centers: (0,0) top-left -> (0.5, 0.5) center.
	want := []layout.Key{
		{X: 0.5, Y: 0.5, W: 1, H: 1},
		{X: 1.5, Y: 0.5, W: 1, H: 1},
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key %d = %+v, want %+v", i, keys[i], want[i])
		}
	}
}

func TestLayoutDescriptorWideAndRotated(t *testing.T) {
	info, err := ReadInfo(strings.NewReader(sampleInfo))
	if err != nil {
		t.Fatalf("ReadInfo() error = %v", err)
	}
	desc, err := info.LayoutDescriptor("LAYOUT_big")
	if err != nil {
		t.Fatalf("LayoutDescriptor() error = %v", err)
	}
	keys, err := layout.Resolve(*desc)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if keys[0].W != 2 || keys[0].X != 1 {
		t.Errorf("wide key = %+v, want w=2 centered at x=1", keys[0])
	}

	// Key at corner (0,1), rotated 90 degrees around (0,1): its center
	// (0.5, 1.5) maps to (-0.5, 1.5).
	const eps = 1e-9
	if math.Abs(keys[2].X-(-0.5)) > eps || math.Abs(keys[2].Y-1.5) > eps {
		t.Errorf("rotated key center = (%g, %g), want (-0.5, 1.5)", keys[2].X, keys[2].Y)
	}
	if keys[2].Rotation != 90 {
		t.Errorf("rotation = %g, want 90", keys[2].Rotation)
	}
}

func TestLayoutDescriptorDefaultsToFirstSorted(t *testing.T) {
	info, err := ReadInfo(strings.NewReader(sampleInfo))
	if err != nil {
		t.Fatalf("ReadInfo() error = %v", err)
	}
	desc, err := info.LayoutDescriptor("")
	if err != nil {
		t.Fatalf("LayoutDescriptor() error = %v", err)
	}
	if len(desc.Keys) != 3 {
		t.Errorf("default layout has %d keys, want 3 (LAYOUT_big sorts first)", len(desc.Keys))
	}
}

func TestLayoutDescriptorUnknownName(t *testing.T) {
	info, _ := ReadInfo(strings.NewReader(sampleInfo))
	_, err := info.LayoutDescriptor("LAYOUT_nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestFetchInfo(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v1/keyboards/planck/rev6/info.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"keyboards": {"planck/rev6": ` + sampleInfo + `}}`))
	}))
	defer srv.Close()

	cache, err := httputil.NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(cache).WithBaseURL(srv.URL)

	info, err := client.FetchInfo(context.Background(), "planck/rev6", false)
	if err != nil {
		t.Fatalf("FetchInfo() error = %v", err)
	}
	if info.KeyboardName != "test" {
		t.Errorf("KeyboardName = %q", info.KeyboardName)
	}

	// Second fetch must come from cache.
	if _, err := client.FetchInfo(context.Background(), "planck/rev6", false); err != nil {
		t.Fatalf("FetchInfo(cached) error = %v", err)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1 (second hit cached)", calls)
	}

	// refresh=true bypasses the cache.
	if _, err := client.FetchInfo(context.Background(), "planck/rev6", true); err != nil {
		t.Fatalf("FetchInfo(refresh) error = %v", err)
	}
	if calls != 2 {
		t.Errorf("server calls = %d, want 2 after refresh", calls)
	}
}

func TestFetchInfoNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(nil).WithBaseURL(srv.URL)
	_, err := client.FetchInfo(context.Background(), "missing/board", false)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestReadKeymapJSON(t *testing.T) {
	doc := `{
	  "keyboard": "planck/rev6",
	  "layout": "LAYOUT_planck_grid",
	  "layers": [
	    ["KC_Q", "LSFT_T(KC_Z)", "LT(2,KC_SPC)", "KC_TRNS"],
	    ["KC_1", "KC_NO", "MO(3)", "_______"]
	  ]
	}`

	km, err := ReadKeymapJSON(strings.NewReader(doc), ImportOptions{})
	if err != nil {
		t.Fatalf("ReadKeymapJSON() error = %v", err)
	}
	if len(km.Layers) != 2 {
		t.Fatalf("len(Layers) = %d, want 2", len(km.Layers))
	}
	if km.Layers[0].Name != "L0" || km.Layers[1].Name != "L1" {
		t.Errorf("layer names = %q, %q, want L0, L1", km.Layers[0].Name, km.Layers[1].Name)
	}

	base := km.Layers[0].Keys
	if base[0].Label != "Q" {
		t.Errorf("plain keycode = %+v, want label Q", base[0])
	}
	if base[1].Label != "Z" || len(base[1].Secondary) != 1 || base[1].Secondary[0] != "LSFT" {
		t.Errorf("mod-tap = %+v, want Z with LSFT annotation", base[1])
	}
	if base[2].Label != "SPC" || len(base[2].Secondary) != 1 || base[2].Secondary[0] != "2" {
		t.Errorf("layer-tap = %+v, want SPC with layer 2 annotation", base[2])
	}
	if !base[3].Blank() {
		t.Errorf("transparent key = %+v, want blank", base[3])
	}
	if !km.Layers[1].Keys[1].Blank() || !km.Layers[1].Keys[3].Blank() {
		t.Error("KC_NO and _______ must render blank")
	}
}

func TestReadKeymapJSONKeepPrefixes(t *testing.T) {
	doc := `{"layers": [["KC_Q", "LT(2,KC_SPC)"]]}`
	km, err := ReadKeymapJSON(strings.NewReader(doc), ImportOptions{KeepPrefixes: true})
	if err != nil {
		t.Fatalf("ReadKeymapJSON() error = %v", err)
	}
	if km.Layers[0].Keys[0].Label != "KC_Q" || km.Layers[0].Keys[1].Label != "LT(2,KC_SPC)" {
		t.Errorf("keycodes were rewritten despite KeepPrefixes: %+v", km.Layers[0].Keys)
	}
}

func TestReadKeymapJSONEmpty(t *testing.T) {
	if _, err := ReadKeymapJSON(strings.NewReader(`{"layers": []}`), ImportOptions{}); err == nil {
		t.Error("ReadKeymapJSON() succeeded on empty layers")
	}
}

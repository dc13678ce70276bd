package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/keydraw/keydraw/pkg/keymap"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	os.Unsetenv("XDG_CACHE_HOME")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join("/tmp/xdg-cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestValidateDrawFormat(t *testing.T) {
	for _, format := range []string{"svg", "png", "pdf"} {
		if err := validateDrawFormat(format); err != nil {
			t.Errorf("validateDrawFormat(%q) = %v, want nil", format, err)
		}
	}
	if err := validateDrawFormat("gif"); err == nil {
		t.Error("validateDrawFormat(\"gif\") = nil, want error")
	}
}

const testKeymapYAML = `layout:
  type: ortho
  rows: 1
  cols: 2
  pitch_x: 1
  pitch_y: 1
layers:
  - name: base
    keys: [A, B]
`

func TestDrawCommandWritesSVG(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "keymap.yaml")
	out := filepath.Join(dir, "keymap.svg")
	if err := os.WriteFile(in, []byte(testKeymapYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newDrawCmd()
	cmd.SetContext(context.Background())
	cmd.SetArgs([]string{in, "-o", out})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("draw: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	svg := string(data)
	if !strings.HasPrefix(svg, "<svg") {
		t.Errorf("output does not start with <svg>: %.40q", svg)
	}
	if !strings.Contains(svg, ">A</text>") {
		t.Error("output missing key label A")
	}
}

func TestDrawCommandUnknownFormat(t *testing.T) {
	cmd := newDrawCmd()
	cmd.SetContext(context.Background())
	cmd.SetArgs([]string{"whatever.yaml", "-f", "gif"})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestDrawCommandNoLayoutSource(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "keymap.yaml")
	yaml := "layers:\n  - name: base\n    keys: [A]\n"
	if err := os.WriteFile(in, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newDrawCmd()
	cmd.SetContext(context.Background())
	cmd.SetArgs([]string{in})
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "no layout source") {
		t.Errorf("expected no layout source error, got %v", err)
	}
}

const testKeymapJSON = `{
  "keyboard": "test/board",
  "keymap": "default",
  "layout": "LAYOUT",
  "layers": [["KC_Q", "KC_TRNS"]]
}`

func TestParseCommandRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "keymap.json")
	out := filepath.Join(dir, "keymap.yaml")
	if err := os.WriteFile(in, []byte(testKeymapJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newParseCmd()
	cmd.SetContext(context.Background())
	cmd.SetArgs([]string{"-q", in, "-o", out})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("parse: %v", err)
	}

	km, err := keymap.ReadFile(out)
	if err != nil {
		t.Fatalf("read converted keymap: %v", err)
	}
	if len(km.Layers) != 1 {
		t.Fatalf("layers = %d, want 1", len(km.Layers))
	}
	if km.Layers[0].Keys[0].Label != "Q" {
		t.Errorf("first key = %q, want Q", km.Layers[0].Keys[0].Label)
	}
	if !km.Layers[0].Keys[1].Blank() {
		t.Error("KC_TRNS should convert to a blank key")
	}
}

func TestCachePathCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cmd := newCacheCmd()
	cmd.SetContext(context.Background())
	var sb strings.Builder
	cmd.SetOut(&sb)
	cmd.SetArgs([]string{"path"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(sb.String()), appName) {
		t.Errorf("cache path output = %q, want suffix %q", sb.String(), appName)
	}
}

func TestCacheClearCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir := filepath.Join(xdg, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "entry.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newCacheCmd()
	cmd.SetContext(context.Background())
	cmd.SetArgs([]string{"clear"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear, want 0", len(entries))
	}
}

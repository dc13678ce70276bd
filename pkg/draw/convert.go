package draw

import (
	"bytes"
	"fmt"
	"os/exec"
)

// ToPNG converts a rendered SVG document to PNG at the given scale
// factor using the external rsvg-convert tool (from librsvg).
// Install: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return rsvgConvert(svg, "png", "--zoom", fmt.Sprintf("%g", scale))
}

// ToPDF converts a rendered SVG document to PDF using rsvg-convert.
func ToPDF(svg []byte) ([]byte, error) {
	return rsvgConvert(svg, "pdf")
}

func rsvgConvert(svg []byte, format string, extra ...string) ([]byte, error) {
	args := append([]string{"--format", format}, extra...)
	cmd := exec.Command("rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, lookErr := exec.LookPath("rsvg-convert"); lookErr != nil {
			return nil, fmt.Errorf("rsvg-convert not found; install librsvg to export %s", format)
		}
		return nil, fmt.Errorf("rsvg-convert: %w: %s", err, stderr.String())
	}
	return out.Bytes(), nil
}

package draw

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// Approximate advance width of one character as a fraction of the font
// size, for the proportional fonts the stylesheet requests.
const charWidthRatio = 0.58

// fitLabel computes the font size and (possibly truncated) text for a
// label that must fit within availWidth pixels. The size shrinks
// monotonically from base until the text fits or the floor is reached;
// past the floor the text is truncated instead. Labels never wrap.
func fitLabel(label string, availWidth, base, floor float64) (size float64, text string) {
	n := len([]rune(label))
	if n == 0 {
		return base, ""
	}

	size = base
	if need := float64(n) * base * charWidthRatio; need > availWidth {
		size = availWidth / (float64(n) * charWidthRatio)
	}
	if size >= floor {
		return size, label
	}

	size = floor
	maxChars := int(availWidth / (floor * charWidthRatio))
	if maxChars < 3 {
		maxChars = 3
	}
	if n <= maxChars {
		return size, label
	}
	runes := []rune(label)
	return size, string(runes[:maxChars-2]) + ".."
}

// fitMultiline applies the fit policy per line for labels that
// explicitly request multiple lines with embedded newlines.
func fitMultiline(label string, availWidth, base, floor float64) (size float64, lines []string) {
	parts := strings.Split(label, "\n")
	size = base
	lines = make([]string, len(parts))
	for i, p := range parts {
		s, text := fitLabel(p, availWidth, base, floor)
		if s < size {
			size = s
		}
		lines[i] = text
	}
	return size, lines
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

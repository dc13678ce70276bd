package draw

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/keydraw/keydraw/pkg/keymap"
	"github.com/keydraw/keydraw/pkg/layout"
)

// Horizontal inset between a key's edge and its label text, and the
// offset of corner labels from the key edges.
const (
	labelInset  = 5.0
	cornerInset = 4.0
)

// keyGlyph emits the rectangle and labels for one key slot. A blank
// spec still draws the placeholder rect so layers stay aligned.
func (r *renderer) keyGlyph(buf *bytes.Buffer, k layout.Key, spec keymap.KeySpec, offX, offY float64) {
	s := r.style

	cx := k.X*s.Unit + offX
	cy := k.Y*s.Unit + offY
	w := k.W * s.Unit
	h := k.H * s.Unit

	if k.Rotation != 0 {
		fmt.Fprintf(buf, `    <g transform="rotate(%.2f %.2f %.2f)">`+"\n", k.Rotation, cx, cy)
	}

	fmt.Fprintf(buf, `    <rect class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.1f"/>`+"\n",
		keyClass(spec), cx-w/2, cy-h/2, w, h, s.CornerRad)

	if spec.Label != "" {
		r.primaryLabel(buf, spec.Label, cx, cy, w)
	}
	r.cornerLabels(buf, spec.Secondary, cx, cy, w, h)

	if k.Rotation != 0 {
		buf.WriteString("    </g>\n")
	}
}

func keyClass(spec keymap.KeySpec) string {
	if spec.Blank() {
		return "key blank"
	}
	if spec.Style != "" {
		return "key " + spec.Style
	}
	return "key"
}

func (r *renderer) primaryLabel(buf *bytes.Buffer, label string, cx, cy, w float64) {
	s := r.style
	avail := w - 2*labelInset

	if strings.Contains(label, "\n") {
		size, lines := fitMultiline(label, avail, s.FontSize, s.MinFontSize)
		lineH := size * 1.15
		startY := cy - lineH*float64(len(lines)-1)/2
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.1f">`, cx, startY, size)
		for i, line := range lines {
			dy := 0.0
			if i > 0 {
				dy = lineH
			}
			fmt.Fprintf(buf, `<tspan x="%.2f" dy="%.2f">%s</tspan>`, cx, dy, escapeXML(line))
		}
		buf.WriteString("</text>\n")
		return
	}

	size, text := fitLabel(label, avail, s.FontSize, s.MinFontSize)
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.1f">%s</text>`+"\n",
		cx, cy, size, escapeXML(text))
}

// cornerLabels places secondary labels at the four corners in fixed
// priority order: top-left, top-right, bottom-left, bottom-right.
func (r *renderer) cornerLabels(buf *bytes.Buffer, secondary []string, cx, cy, w, h float64) {
	s := r.style
	corners := [4]struct {
		x, y   float64
		anchor string
	}{
		{cx - w/2 + cornerInset, cy - h/2 + cornerInset + s.CornerFontSize/2, "start"},
		{cx + w/2 - cornerInset, cy - h/2 + cornerInset + s.CornerFontSize/2, "end"},
		{cx - w/2 + cornerInset, cy + h/2 - cornerInset - s.CornerFontSize/2, "start"},
		{cx + w/2 - cornerInset, cy + h/2 - cornerInset - s.CornerFontSize/2, "end"},
	}

	for i, label := range secondary {
		if i >= len(corners) {
			break
		}
		if label == "" {
			continue
		}
		c := corners[i]
		_, text := fitLabel(label, w/2-cornerInset, s.CornerFontSize, s.CornerFontSize)
		fmt.Fprintf(buf, `    <text class="corner" x="%.2f" y="%.2f" font-size="%.1f" text-anchor="%s">%s</text>`+"\n",
			c.x, c.y, s.CornerFontSize, c.anchor, escapeXML(text))
	}
}

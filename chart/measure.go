package chart

import (
	"gioui.org/font"
	"gioui.org/text"
	"golang.org/x/image/math/fixed"
)

// ShaperMeasurer measures strings with a Gio text shaper.
type ShaperMeasurer struct {
	Shaper *text.Shaper
	Font   font.Font
	// PxPerEm is the text size in pixels.
	PxPerEm fixed.Int26_6
}

var _ TextMeasurer = ShaperMeasurer{}

func (m ShaperMeasurer) params() text.Parameters {
	return text.Parameters{
		Font:     m.Font,
		PxPerEm:  m.PxPerEm,
		MaxLines: 1,
		MaxWidth: 1 << 24,
	}
}

// Measure returns the sum of the glyph advances of s.
func (m ShaperMeasurer) Measure(s string) float32 {
	m.Shaper.LayoutString(m.params(), s)
	var advance fixed.Int26_6
	for {
		g, ok := m.Shaper.NextGlyph()
		if !ok {
			break
		}
		advance += g.Advance
	}
	return fixedToFloat(advance)
}

// Height returns the line height (ascent plus descent) of the font.
func (m ShaperMeasurer) Height() float32 {
	m.Shaper.LayoutString(m.params(), "Mg")
	var h fixed.Int26_6
	for {
		g, ok := m.Shaper.NextGlyph()
		if !ok {
			break
		}
		h = max(h, g.Ascent+g.Descent)
	}
	return fixedToFloat(h)
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

package chart

import (
	"image/color"

	"gioui.org/unit"
)

// GradientStop is one colour of a vertical gradient. Position 0 is the
// top of the chart and 1 the bottom.
type GradientStop struct {
	Position float32
	Color    color.NRGBA
}

// Capabilities describes what the renderer may rely on. It is decided
// once when the chart is created.
type Capabilities struct {
	// Gradients enables the gradient-filled curve renderer.
	Gradients bool
}

// Style holds the visual configuration of a chart.
type Style struct {
	SlotWidth    unit.Dp
	TextSize     unit.Sp
	CornerRadius unit.Dp
	CurveWidth   unit.Dp
	// Separator is placed before every repetition of a label along its
	// curve.
	Separator string

	Background []GradientStop
	TextColor  color.NRGBA
	// CurveColors maps labels to colours. Labels without an entry use
	// DefaultCurveColor.
	CurveColors       map[string]color.NRGBA
	DefaultCurveColor color.NRGBA
}

// DefaultStyle returns the style used when none is configured.
func DefaultStyle() Style {
	return Style{
		SlotWidth:    24,
		TextSize:     11,
		CornerRadius: 8,
		CurveWidth:   14,
		Separator:    "  ·  ",
		Background: []GradientStop{
			{Position: 0, Color: color.NRGBA{R: 0xd3, G: 0x2f, B: 0x2f, A: 0xff}},
			{Position: 0.5, Color: color.NRGBA{R: 0xff, G: 0xa0, B: 0x00, A: 0xff}},
			{Position: 1, Color: color.NRGBA{R: 0x38, G: 0x8e, B: 0x3c, A: 0xff}},
		},
		TextColor:         color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		CurveColors:       map[string]color.NRGBA{},
		DefaultCurveColor: color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xc0},
	}
}

func (s *Style) curveColor(label string) color.NRGBA {
	if c, ok := s.CurveColors[label]; ok {
		return c
	}
	return s.DefaultCurveColor
}

// gradientStops validates parallel colour and position slices.
func gradientStops(colors []color.NRGBA, positions []float32) ([]GradientStop, error) {
	if len(colors) != len(positions) {
		return nil, invalidArgument("SetBackground", "%d colors but %d positions", len(colors), len(positions))
	}
	if len(colors) < 2 {
		return nil, invalidArgument("SetBackground", "need at least two stops, got %d", len(colors))
	}
	stops := make([]GradientStop, len(colors))
	for i := range colors {
		p := positions[i]
		if p < 0 || p > 1 {
			return nil, invalidArgument("SetBackground", "position %v outside [0,1]", p)
		}
		if i > 0 && p < positions[i-1] {
			return nil, invalidArgument("SetBackground", "positions not ascending at %d", i)
		}
		stops[i] = GradientStop{Position: p, Color: colors[i]}
	}
	return stops, nil
}

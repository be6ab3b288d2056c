package chart

import (
	"image"

	"gioui.org/f32"
	"gioui.org/font"
	"gioui.org/font/gofont"
	"gioui.org/gesture"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"golang.org/x/image/math/fixed"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

// SetShaper sets the shaper used to draw and measure labels. Without one,
// the chart creates its own on first layout.
func (c *Chart) SetShaper(s *text.Shaper) {
	c.shaper = s
	c.textPx = 0
}

// Layout handles input, advances any snap animation and draws the visible
// segments filling the constraints.
func (c *Chart) Layout(gtx C) D {
	size := gtx.Constraints.Max
	if gtx.Metric != c.metric {
		c.metric = gtx.Metric
		c.textPx = 0
		if c.ready {
			c.relayout()
		}
	}
	c.updateText(gtx)
	c.SetViewport(size.X, size.Y)
	c.update(gtx)
	if !c.ready {
		return D{Size: size}
	}
	if c.Step() {
		gtx.Execute(op.InvalidateCmd{})
	}
	c.bind(RenderFull)

	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	c.drag.Add(gtx.Ops)
	c.click.Add(gtx.Ops)
	for _, s := range c.live {
		c.drawSegment(gtx, s)
	}
	return D{Size: size}
}

// updateText refreshes the measurer when the text size in pixels changes.
func (c *Chart) updateText(gtx C) {
	if c.shaper == nil {
		c.shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	}
	px := gtx.Sp(c.style.TextSize)
	if px == c.textPx {
		return
	}
	c.textPx = px
	m := ShaperMeasurer{Shaper: c.shaper, PxPerEm: fixed.I(px)}
	c.SetMeasurer(m, m.Height())
}

func (c *Chart) update(gtx C) {
	for {
		ev, ok := c.click.Update(gtx.Source)
		if !ok {
			break
		}
		if ev.Kind == gesture.KindClick && c.onClick != nil {
			c.onClick()
		}
	}
	if !c.ready {
		return
	}
	dist := c.drag.Update(gtx.Metric, gtx.Source, gtx.Now, gesture.Horizontal, image.Rect(-1e6, 0, 1e6, 0))
	if dist != 0 {
		c.dragging = true
		c.ScrollBy(float32(dist))
	}
	if c.dragging && c.drag.State() == gesture.StateIdle {
		c.dragging = false
		c.Settle()
		gtx.Execute(op.InvalidateCmd{})
	}
}

func (c *Chart) drawSegment(gtx C, s *Segment) {
	defer op.Affine(f32.Affine2D{}.Offset(f32.Pt(float32(s.X)-c.scroll, 0))).Push(gtx.Ops).Pop()
	size := image.Pt(s.Width, c.height)

	var corners Corners
	if s.Kind == KindPlaceholder {
		if s.Index == 0 {
			corners = CornerNW | CornerSW
		} else {
			corners = CornerNE | CornerSE
		}
	}
	BackgroundRenderer{}.Draw(gtx.Ops, size, c.style.Background, gtx.Dp(c.style.CornerRadius), corners)
	if s.Kind == KindPlaceholder {
		return
	}

	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	width := float32(gtx.Dp(c.style.CurveWidth))
	for _, label := range s.order {
		cv := s.curves[label]
		if !cv.ok {
			continue
		}
		c.renderer.DrawCurve(gtx.Ops, &cv.path, width, c.style.curveColor(label), size)
		c.drawText(gtx, &cv.path, cv.text)
	}
}

// drawText draws s along p, one glyph at a time, each centred on the path
// and rotated to its direction.
func (c *Chart) drawText(gtx C, p *Path, s string) {
	if s == "" || c.textPx == 0 {
		return
	}
	c.shaper.LayoutString(text.Parameters{
		Font:     font.Font{},
		PxPerEm:  fixed.I(c.textPx),
		MaxLines: 1,
		MaxWidth: 1 << 24,
	}, s)
	var along float32
	for {
		g, ok := c.shaper.NextGlyph()
		if !ok {
			break
		}
		adv := fixedToFloat(g.Advance)
		pt, angle, ok := p.PointAt(along + adv/2)
		along += adv
		if !ok {
			continue
		}
		lift := (fixedToFloat(g.Ascent) - fixedToFloat(g.Descent)) / 2
		g.X, g.Y = 0, 0
		c.glyphs[0] = g
		shape := c.shaper.Shape(c.glyphs[:1])
		tr := f32.Affine2D{}.
			Offset(f32.Pt(-adv/2, lift)).
			Rotate(f32.Pt(0, 0), angle).
			Offset(pt)
		st := op.Affine(tr).Push(gtx.Ops)
		paint.FillShape(gtx.Ops, c.style.TextColor, clip.Outline{Path: shape}.Op())
		st.Pop()
	}
}

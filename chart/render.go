package chart

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/x/stroke"
)

// CurveRenderer paints the stroke of one curve.
type CurveRenderer interface {
	DrawCurve(ops *op.Ops, p *Path, width float32, col color.NRGBA, size image.Point)
}

// NewCurveRenderer picks the renderer for the given capabilities.
func NewCurveRenderer(caps Capabilities) CurveRenderer {
	if caps.Gradients {
		return &DualLayerRenderer{}
	}
	return &SingleLayerRenderer{}
}

// SingleLayerRenderer fills the stroke with a solid colour.
type SingleLayerRenderer struct {
	buf []stroke.Segment
}

func (r *SingleLayerRenderer) DrawCurve(ops *op.Ops, p *Path, width float32, col color.NRGBA, _ image.Point) {
	sp := p.Stroke(r.buf)
	r.buf = sp.Segments
	outline := stroke.Stroke{Path: sp, Width: width, Cap: stroke.FlatCap, Join: stroke.RoundJoin}.Op(ops)
	paint.FillShape(ops, col, outline)
}

// DualLayerRenderer paints a translucent halo under the stroke, then fills
// the stroke with a vertical gradient that darkens towards the bottom.
type DualLayerRenderer struct {
	buf []stroke.Segment
}

func (r *DualLayerRenderer) DrawCurve(ops *op.Ops, p *Path, width float32, col color.NRGBA, size image.Point) {
	sp := p.Stroke(r.buf)
	r.buf = sp.Segments

	halo := col
	halo.A /= 3
	paint.FillShape(ops, halo, stroke.Stroke{Path: sp, Width: width * 1.5, Cap: stroke.FlatCap, Join: stroke.RoundJoin}.Op(ops))

	defer stroke.Stroke{Path: sp, Width: width, Cap: stroke.FlatCap, Join: stroke.RoundJoin}.Op(ops).Push(ops).Pop()
	paint.LinearGradientOp{
		Stop1:  f32.Pt(0, 0),
		Color1: col,
		Stop2:  f32.Pt(0, float32(size.Y)),
		Color2: shade(col, 0.6),
	}.Add(ops)
	paint.PaintOp{}.Add(ops)
}

func shade(c color.NRGBA, f float32) color.NRGBA {
	return color.NRGBA{
		R: uint8(float32(c.R) * f),
		G: uint8(float32(c.G) * f),
		B: uint8(float32(c.B) * f),
		A: c.A,
	}
}

// Corners selects which corners of a background are rounded.
type Corners uint8

const (
	CornerNW Corners = 1 << iota
	CornerSW
	CornerNE
	CornerSE
)

// BackgroundRenderer paints the gradient behind a segment.
type BackgroundRenderer struct{}

// Draw paints stops over size, rounding the selected corners by radius.
func (BackgroundRenderer) Draw(ops *op.Ops, size image.Point, stops []GradientStop, radius int, corners Corners) {
	rr := clip.RRect{Rect: image.Rectangle{Max: size}}
	if corners&CornerNW != 0 {
		rr.NW = radius
	}
	if corners&CornerSW != 0 {
		rr.SW = radius
	}
	if corners&CornerNE != 0 {
		rr.NE = radius
	}
	if corners&CornerSE != 0 {
		rr.SE = radius
	}
	defer rr.Push(ops).Pop()
	paintGradient(ops, size, stops)
}

// paintGradient paints one linear band per pair of adjacent stops. The
// first and last colours extend to the edges.
func paintGradient(ops *op.Ops, size image.Point, stops []GradientStop) {
	switch len(stops) {
	case 0:
		return
	case 1:
		paint.ColorOp{Color: stops[0].Color}.Add(ops)
		paint.PaintOp{}.Add(ops)
		return
	}
	h := float32(size.Y)
	fill := func(y0, y1 int, col color.NRGBA) {
		if y1 <= y0 {
			return
		}
		defer clip.Rect{Min: image.Pt(0, y0), Max: image.Pt(size.X, y1)}.Push(ops).Pop()
		paint.ColorOp{Color: col}.Add(ops)
		paint.PaintOp{}.Add(ops)
	}
	first, last := stops[0], stops[len(stops)-1]
	fill(0, int(ceil(first.Position*h)), first.Color)
	fill(int(last.Position*h), size.Y, last.Color)
	for i := 0; i+1 < len(stops); i++ {
		y0, y1 := stops[i].Position*h, stops[i+1].Position*h
		if y1 <= y0 {
			continue
		}
		band := clip.Rect{Min: image.Pt(0, int(y0)), Max: image.Pt(size.X, int(ceil(y1)))}.Push(ops)
		paint.LinearGradientOp{
			Stop1:  f32.Pt(0, y0),
			Color1: stops[i].Color,
			Stop2:  f32.Pt(0, y1),
			Color2: stops[i+1].Color,
		}.Add(ops)
		paint.PaintOp{}.Add(ops)
		band.Pop()
	}
}

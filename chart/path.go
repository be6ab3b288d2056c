package chart

import (
	"math"

	"gioui.org/f32"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/x/stroke"
)

// SegmentOp identifies the kind of a path segment.
type SegmentOp uint8

const (
	OpMoveTo SegmentOp = iota
	OpLineTo
	OpCubeTo
)

// PathSegment is one drawing command. Ctrl0 and Ctrl1 are only meaningful
// for OpCubeTo.
type PathSegment struct {
	Op           SegmentOp
	Ctrl0, Ctrl1 f32.Point
	To           f32.Point
}

// Path is a retained list of drawing commands in segment-local pixels.
// Its storage is reused across Reset calls.
type Path struct {
	Segments []PathSegment
}

func (p *Path) Reset() {
	p.Segments = p.Segments[:0]
}

func (p *Path) MoveTo(to f32.Point) {
	p.Segments = append(p.Segments, PathSegment{Op: OpMoveTo, To: to})
}

func (p *Path) LineTo(to f32.Point) {
	p.Segments = append(p.Segments, PathSegment{Op: OpLineTo, To: to})
}

func (p *Path) CubeTo(ctrl0, ctrl1, to f32.Point) {
	p.Segments = append(p.Segments, PathSegment{Op: OpCubeTo, Ctrl0: ctrl0, Ctrl1: ctrl1, To: to})
}

// cubeSteps is the number of chords used to approximate a cubic when
// measuring.
const cubeSteps = 16

func cubicAt(p0, c0, c1, p1 f32.Point, t float32) f32.Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return f32.Pt(
		a*p0.X+b*c0.X+c*c1.X+d*p1.X,
		a*p0.Y+b*c0.Y+c*c1.Y+d*p1.Y,
	)
}

func dist(a, b f32.Point) float32 {
	d := b.Sub(a)
	return float32(math.Hypot(float64(d.X), float64(d.Y)))
}

// walk visits the flattened path as a sequence of chords.
func (p *Path) walk(f func(from, to f32.Point) bool) {
	var pen f32.Point
	for _, s := range p.Segments {
		switch s.Op {
		case OpMoveTo:
			pen = s.To
		case OpLineTo:
			if !f(pen, s.To) {
				return
			}
			pen = s.To
		case OpCubeTo:
			prev := pen
			for i := 1; i <= cubeSteps; i++ {
				next := cubicAt(pen, s.Ctrl0, s.Ctrl1, s.To, float32(i)/cubeSteps)
				if !f(prev, next) {
					return
				}
				prev = next
			}
			pen = s.To
		}
	}
}

// Length returns the approximate arc length of the path.
func (p *Path) Length() float32 {
	var total float32
	p.walk(func(from, to f32.Point) bool {
		total += dist(from, to)
		return true
	})
	return total
}

// PointAt returns the position at distance d along the path and the angle
// of the path there, in radians. Distances past the end clamp to the last
// point.
func (p *Path) PointAt(d float32) (pt f32.Point, angle float32, ok bool) {
	var walked float32
	p.walk(func(from, to f32.Point) bool {
		l := dist(from, to)
		if l == 0 {
			return true
		}
		angle = float32(math.Atan2(float64(to.Y-from.Y), float64(to.X-from.X)))
		ok = true
		if walked+l >= d {
			t := (d - walked) / l
			pt = from.Add(to.Sub(from).Mul(t))
			walked = d
			return false
		}
		walked += l
		pt = to
		return true
	})
	return pt, angle, ok
}

// Op records the path as a Gio clip path.
func (p *Path) Op(ops *op.Ops) clip.PathSpec {
	var cp clip.Path
	cp.Begin(ops)
	for _, s := range p.Segments {
		switch s.Op {
		case OpMoveTo:
			cp.MoveTo(s.To)
		case OpLineTo:
			cp.LineTo(s.To)
		case OpCubeTo:
			cp.CubeTo(s.Ctrl0, s.Ctrl1, s.To)
		}
	}
	return cp.End()
}

// Stroke converts the path for use with the x/stroke package, appending
// into buf.
func (p *Path) Stroke(buf []stroke.Segment) stroke.Path {
	buf = buf[:0]
	for _, s := range p.Segments {
		switch s.Op {
		case OpMoveTo:
			buf = append(buf, stroke.MoveTo(s.To))
		case OpLineTo:
			buf = append(buf, stroke.LineTo(s.To))
		case OpCubeTo:
			buf = append(buf, stroke.CubeTo(s.Ctrl0, s.Ctrl1, s.To))
		}
	}
	return stroke.Path{Segments: buf}
}

package chart

import (
	"gioui.org/f32"
)

// pointChunk is the growth increment of the CurveBuilder point buffer.
const pointChunk = 64

// CurveFrame describes the drawing surface a curve is built for.
type CurveFrame struct {
	// SlotWidth is the horizontal distance between two points.
	SlotWidth float32
	// Height is the height of the segment.
	Height float32
	// TextHeight is the height of the label drawn along the curve. The
	// curve is kept half of it away from the edges.
	TextHeight float32
}

func (f CurveFrame) bounds() (minY, maxY float32) {
	inset := f.Height/8 + f.TextHeight/2
	return inset, f.Height - inset
}

// y maps a value in [0,MaxValue] to a vertical pixel position.
func (f CurveFrame) y(value int) float32 {
	minY, maxY := f.bounds()
	return maxY - float32(value)/MaxValue*(maxY-minY)
}

// CurveBuilder turns a run of values into a smooth path. The
// point buffer is reused across calls, so a builder must not be shared
// between concurrent callers.
type CurveBuilder struct {
	data   *Data
	points []f32.Point
}

func NewCurveBuilder(data *Data) *CurveBuilder {
	return &CurveBuilder{data: data}
}

func (b *CurveBuilder) grow(n int) {
	if cap(b.points) < n {
		b.points = make([]f32.Point, n, ceilDiv(n, pointChunk)*pointChunk)
	}
	b.points = b.points[:n]
}

// value returns the value drawn for index, clamping to the data bounds so
// the curve flattens at the true ends.
func (b *CurveBuilder) value(index, offset, count int, label string) (int, error) {
	size := b.data.Size()
	if index < 0 {
		index = offset
	} else if index >= size {
		index = offset + count - 1
	}
	return b.data.Closest(index, label)
}

// Build writes into dst a curve through the count values of label starting
// at offset, positioned for a segment whose first slot is offset. It
// reports false when the label has no data to draw.
//
// One synthetic point is added on each side using the neighbouring slot's
// value, then both ends are pulled to the midpoint with their neighbour,
// so the curve leaves each segment along the straight line it resumes on
// in the next one.
func (b *CurveBuilder) Build(dst *Path, offset, count int, label string, frame CurveFrame) (bool, error) {
	dst.Reset()
	if count < 1 {
		return false, invalidArgument("Build", "slot count %d must be positive", count)
	}
	if err := checkRange("Build", offset, 0, b.data.Size()); err != nil {
		return false, err
	}
	if err := checkRange("Build", offset+count-1, 0, b.data.Size()); err != nil {
		return false, err
	}
	n := count + 2
	b.grow(n)
	for i := 0; i < n; i++ {
		v, err := b.value(offset+i-1, offset, count, label)
		if err != nil {
			return false, err
		}
		if v == NoValue {
			return false, nil
		}
		x := (float32(i) - 0.5) * frame.SlotWidth
		b.points[i] = f32.Pt(x, frame.y(v))
	}
	pts := b.points
	pts[0] = midpoint(pts[0], pts[1])
	pts[n-1] = midpoint(pts[n-2], pts[n-1])

	dst.MoveTo(pts[0])
	if count == 1 {
		dst.LineTo(pts[n-1])
		return true, nil
	}
	dst.LineTo(pts[1])
	for i := 1; i < n-2; i++ {
		from, to := pts[i], pts[i+1]
		third := (to.X - from.X) / 3
		s0 := b.slope(i)
		s1 := b.slope(i + 1)
		dst.CubeTo(
			f32.Pt(from.X+third, from.Y+s0*third),
			f32.Pt(to.X-third, to.Y-s1*third),
			to,
		)
	}
	dst.LineTo(pts[n-1])
	return true, nil
}

// slope returns the tangent at interior point i: the average of the slopes
// to its left and right neighbours.
func (b *CurveBuilder) slope(i int) float32 {
	p := b.points
	return (slope(p[i-1], p[i]) + slope(p[i], p[i+1])) / 2
}

func slope(a, b f32.Point) float32 {
	dx := b.X - a.X
	if dx == 0 {
		return 0
	}
	return (b.Y - a.Y) / dx
}

func midpoint(a, b f32.Point) f32.Point {
	return a.Add(b).Mul(0.5)
}

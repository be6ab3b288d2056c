package chart

import (
	"image/color"

	"gioui.org/gesture"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/x/stroke"
	"github.com/charmbracelet/harmonica"
	"github.com/rs/zerolog"
)

// RenderMode selects how much work a layout pass does.
type RenderMode uint8

const (
	// RenderFull binds the visible segments and builds their curves.
	RenderFull RenderMode = iota
	// RenderSkip only rebinds segments. It is used for jumps, where the
	// segments scrolled past must not be built.
	RenderSkip
)

// snapEpsilon is the distance in pixels under which a snap animation is
// considered settled.
const snapEpsilon = 0.5

// Chart is a horizontally scrolling chart of labelled series. Only the
// segments that intersect the viewport are materialized; they are taken
// from a bounded Arena and recycled as the chart scrolls.
//
// All methods must be called from the goroutine that lays out the chart.
type Chart struct {
	data    *Data
	dims    *Dimensions
	builder *CurveBuilder
	tiler   *Tiler
	arena   *Arena
	// live holds the bound segments ordered by index.
	live []*Segment

	style    Style
	caps     Capabilities
	renderer CurveRenderer
	log      zerolog.Logger

	metric        unit.Metric
	width, height int
	ready         bool
	layoutVersion int
	dataVersion   int
	labels        []string
	labelsVersion int

	measurer   TextMeasurer
	textHeight float32
	textPx     int

	scroll   float32
	target   float32
	velocity float64
	snapping bool
	spring   harmonica.Spring
	// dragging is set while a user drag or fling is in progress.
	dragging bool

	pendingScroll int
	position      int

	onPositionChanged func(old, new int)
	onScrollEnd       func(position int, fromUser bool)
	onClick           func()

	drag      gesture.Scroll
	click     gesture.Click
	shaper    *text.Shaper
	glyphs    [1]text.Glyph
	strokeBuf []stroke.Segment
}

// New creates a chart. The capabilities select the curve renderer once,
// for the lifetime of the chart.
func New(style Style, caps Capabilities, logger zerolog.Logger) *Chart {
	data := NewData()
	c := &Chart{
		data:          data,
		builder:       NewCurveBuilder(data),
		tiler:         NewTiler(style.Separator, nil),
		arena:         NewArena(),
		live:          make([]*Segment, 0, MaxLiveSegments),
		style:         style,
		caps:          caps,
		renderer:      NewCurveRenderer(caps),
		log:           logger.With().Str("component", "chart").Logger(),
		spring:        harmonica.NewSpring(harmonica.FPS(60), 8.0, 1.0),
		metric:        unit.Metric{PxPerDp: 1, PxPerSp: 1},
		pendingScroll: -1,
		position:      -1,
		labelsVersion: -1,
	}
	return c
}

// Data exposes the underlying store for reads.
func (c *Chart) Data() *Data {
	return c.data
}

// Ready reports whether the viewport has been sized and the layout built.
func (c *Chart) Ready() bool {
	return c.ready
}

// Size returns the number of data slots.
func (c *Chart) Size() int {
	return c.data.Size()
}

// SlotCount returns the number of addressable slots, which is at least
// one.
func (c *Chart) SlotCount() int {
	return max(1, c.data.Size())
}

// Scroll returns the current scroll offset in pixels.
func (c *Chart) Scroll() float32 {
	return c.scroll
}

// Position returns the slot centred in the viewport, or -1 if the chart is
// not ready or holds no data.
func (c *Chart) Position() int {
	if !c.ready || c.data.Size() == 0 {
		return -1
	}
	return c.dims.SlotAtScroll(c.scroll)
}

// LiveSegments returns the number of materialized segments.
func (c *Chart) LiveSegments() int {
	return c.arena.Live()
}

// OnPositionChanged registers f to be called whenever the centred slot
// changes.
func (c *Chart) OnPositionChanged(f func(old, new int)) {
	c.onPositionChanged = f
}

// OnScrollEnd registers f to be called when a scroll settles.
func (c *Chart) OnScrollEnd(f func(position int, fromUser bool)) {
	c.onScrollEnd = f
}

// OnClick registers f to be called when the chart is tapped.
func (c *Chart) OnClick(f func()) {
	c.onClick = f
}

// SetMeasurer overrides the text measurer. Without one, the chart
// measures with its Gio shaper during Layout.
func (c *Chart) SetMeasurer(m TextMeasurer, textHeight float32) {
	c.measurer = m
	c.textHeight = textHeight
	c.tiler.SetMeasurer(m)
	c.dataVersion++
}

func (c *Chart) notifyPosition(pos int, force bool) {
	old := c.position
	if old == pos && !force {
		return
	}
	c.position = pos
	if c.onPositionChanged != nil {
		c.onPositionChanged(old, pos)
	}
}

func (c *Chart) notifyScrollEnd(pos int, fromUser bool) {
	c.log.Debug().Int("position", pos).Bool("from_user", fromUser).Msg("scroll end")
	if c.onScrollEnd != nil {
		c.onScrollEnd(pos, fromUser)
	}
}

// Put stores a value; see Data.Put. The first insertion into an empty
// chart reports a position change from -1 to 0.
func (c *Chart) Put(index int, label string, value int) error {
	wasEmpty := c.data.Size() == 0
	if err := c.data.Put(index, label, value); err != nil {
		return err
	}
	c.dataVersion++
	c.layoutVersion++
	if wasEmpty && c.data.Size() > 0 {
		c.notifyPosition(0, false)
	}
	return nil
}

// ShrinkLeft keeps only the newest size slots. If the centred slot
// survives it stays centred; otherwise the chart jumps to slot 0. Emptying
// the chart reports a position change to -1 and no scroll end.
func (c *Chart) ShrinkLeft(size int) error {
	old := c.data.Size()
	centred := c.Position()
	if err := c.data.ShrinkLeft(size); err != nil {
		return err
	}
	removed := old - c.data.Size()
	if removed <= 0 {
		return nil
	}
	c.dataVersion++
	c.layoutVersion++
	c.tiler.Reset()
	c.log.Debug().Int("removed", removed).Int("size", c.data.Size()).Msg("shrink left")
	if !c.ready {
		if c.pendingScroll >= removed {
			c.pendingScroll -= removed
		} else {
			c.pendingScroll = -1
		}
		return nil
	}
	if c.data.Size() == 0 {
		c.haltScroll()
		c.scroll = 0
		c.target = 0
		c.bind(RenderSkip)
		c.notifyPosition(-1, false)
		return nil
	}
	if centred >= removed {
		c.scroll = clamp(c.scroll-float32(removed*c.dims.SlotWidth()), 0, float32(c.dims.MaxScroll()))
		c.target = clamp(c.target-float32(removed*c.dims.SlotWidth()), 0, float32(c.dims.MaxScroll()))
		c.position = centred - removed
		return nil
	}
	c.haltScroll()
	c.scroll = 0
	c.bind(RenderSkip)
	c.notifyScrollEnd(0, false)
	c.notifyPosition(0, true)
	return nil
}

// Reset clears all data and returns the chart to the not-ready state. It
// becomes ready again on the next layout with a non-empty viewport.
func (c *Chart) Reset() {
	c.data.Clear()
	c.tiler.Reset()
	for _, s := range c.live {
		c.arena.Release(s)
	}
	c.live = c.live[:0]
	c.dims = nil
	c.ready = false
	c.width, c.height = 0, 0
	c.scroll = 0
	c.haltScroll()
	c.pendingScroll = -1
	c.position = -1
	c.dataVersion++
	c.layoutVersion++
	c.log.Debug().Msg("reset")
}

// ScrollTo centres slot index without animating. Before the chart is ready
// the request is remembered and replayed once it is.
func (c *Chart) ScrollTo(index int) error {
	if err := checkRange("ScrollTo", index, 0, c.data.Size()); err != nil {
		return err
	}
	if !c.ready {
		c.pendingScroll = index
		return nil
	}
	c.haltScroll()
	c.jump(index)
	return nil
}

func (c *Chart) jump(index int) {
	s, err := c.dims.ScrollFor(index)
	if err != nil {
		c.log.Error().Err(err).Msg("jump")
		return
	}
	c.scroll = float32(s)
	c.bind(RenderSkip)
	c.notifyPosition(index, false)
	c.notifyScrollEnd(index, false)
}

// haltScroll stops any snap animation and fling.
func (c *Chart) haltScroll() {
	c.snapping = false
	c.velocity = 0
	c.dragging = false
	c.drag.Stop()
}

// ScrollBy moves the chart by dx pixels as a user drag does, reporting
// position changes.
func (c *Chart) ScrollBy(dx float32) {
	if !c.ready {
		return
	}
	c.snapping = false
	c.scroll = clamp(c.scroll+dx, 0, float32(c.dims.MaxScroll()))
	if p := c.Position(); p >= 0 {
		c.notifyPosition(p, false)
	}
}

// Settle is called when a user scroll comes to rest. It snaps the nearest
// slot to the centre; the scroll end is reported once the snap finishes,
// or immediately if the slot is already centred.
func (c *Chart) Settle() {
	pos := c.Position()
	if pos < 0 {
		return
	}
	target, _ := c.dims.ScrollFor(pos)
	if abs(c.scroll-float32(target)) < snapEpsilon {
		c.scroll = float32(target)
		c.notifyScrollEnd(pos, true)
		return
	}
	c.target = float32(target)
	c.velocity = 0
	c.snapping = true
}

// Snapping reports whether a snap animation is running.
func (c *Chart) Snapping() bool {
	return c.snapping
}

// Step advances the snap animation by one frame and reports whether it is
// still running.
func (c *Chart) Step() bool {
	if !c.snapping {
		return false
	}
	pos, vel := c.spring.Update(float64(c.scroll), c.velocity, float64(c.target))
	c.scroll, c.velocity = float32(pos), vel
	if abs(c.scroll-c.target) < snapEpsilon && abs(c.velocity) < snapEpsilon {
		c.scroll = c.target
		c.velocity = 0
		c.snapping = false
		p := c.Position()
		c.notifyPosition(p, false)
		c.notifyScrollEnd(p, true)
		return false
	}
	if p := c.Position(); p >= 0 {
		c.notifyPosition(p, false)
	}
	return true
}

// SetViewport sizes the chart in pixels. The chart becomes ready the first
// time both dimensions are non-zero.
func (c *Chart) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if c.ready && width == c.width && height == c.height {
		return
	}
	c.width, c.height = width, height
	c.relayout()
}

// relayout rebuilds the dimensions, keeping the centred slot centred.
func (c *Chart) relayout() {
	if c.width <= 0 || c.height <= 0 {
		return
	}
	centred := c.Position()
	dims, err := NewDimensions(c.data, c.metric.Dp(c.style.SlotWidth), c.width)
	if err != nil {
		c.log.Error().Err(err).Int("width", c.width).Msg("cannot lay out chart")
		return
	}
	c.dims = dims
	c.layoutVersion++
	c.dataVersion++
	c.tiler.Reset()
	c.snapping = false
	if !c.ready {
		c.ready = true
		c.log.Debug().Int("width", c.width).Int("height", c.height).Int("slots_per_window", dims.SlotsPerWindow()).Msg("ready")
		c.scroll = 0
		if idx := c.pendingScroll; idx >= 0 {
			c.pendingScroll = -1
			if idx < c.data.Size() {
				c.jump(idx)
			}
		}
		return
	}
	if centred >= 0 {
		s, _ := dims.ScrollFor(centred)
		c.scroll = float32(s)
	} else {
		c.scroll = clamp(c.scroll, 0, float32(dims.MaxScroll()))
	}
}

// SetSlotWidth changes the width of one slot. It takes effect immediately
// when the chart is ready and on sizing otherwise.
func (c *Chart) SetSlotWidth(w unit.Dp) error {
	if w <= 0 {
		return invalidArgument("SetSlotWidth", "slot width %v must be positive", w)
	}
	c.style.SlotWidth = w
	if c.ready {
		c.relayout()
	}
	return nil
}

// SetTextSize changes the size of the labels drawn along the curves.
func (c *Chart) SetTextSize(size unit.Sp) error {
	if size <= 0 {
		return invalidArgument("SetTextSize", "text size %v must be positive", size)
	}
	c.style.TextSize = size
	c.textPx = 0
	c.dataVersion++
	return nil
}

// SetCornerRadius changes the radius of the outer chart corners.
func (c *Chart) SetCornerRadius(r unit.Dp) error {
	if r < 0 {
		return invalidArgument("SetCornerRadius", "negative radius %v", r)
	}
	c.style.CornerRadius = r
	return nil
}

// SetCurveWidth changes the stroke width of the curves.
func (c *Chart) SetCurveWidth(w unit.Dp) error {
	if w <= 0 {
		return invalidArgument("SetCurveWidth", "curve width %v must be positive", w)
	}
	c.style.CurveWidth = w
	return nil
}

// SetSeparator changes the string placed between label repetitions.
func (c *Chart) SetSeparator(sep string) {
	c.style.Separator = sep
	c.tiler.SetSeparator(sep)
	c.dataVersion++
}

// SetCurveColor sets the colour of the curve for label.
func (c *Chart) SetCurveColor(label string, col color.NRGBA) error {
	if label == "" {
		return invalidArgument("SetCurveColor", "empty label")
	}
	if c.style.CurveColors == nil {
		c.style.CurveColors = make(map[string]color.NRGBA)
	}
	c.style.CurveColors[label] = col
	return nil
}

// SetTextColor sets the colour of the curve labels.
func (c *Chart) SetTextColor(col color.NRGBA) {
	c.style.TextColor = col
}

// SetBackground sets the vertical background gradient. colors and
// positions are parallel; positions must ascend within [0,1].
func (c *Chart) SetBackground(colors []color.NRGBA, positions []float32) error {
	stops, err := gradientStops(colors, positions)
	if err != nil {
		return err
	}
	c.style.Background = stops
	return nil
}

// Style returns the current style.
func (c *Chart) Style() Style {
	return c.style
}

// CurveColor returns the colour the curve of label is drawn with.
func (c *Chart) CurveColor(label string) color.NRGBA {
	return c.style.curveColor(label)
}

func (c *Chart) currentLabels() []string {
	if c.labelsVersion != c.dataVersion {
		c.labels = c.data.Labels()
		c.labelsVersion = c.dataVersion
	}
	return c.labels
}

// bind materializes the segments intersecting the viewport and releases
// the rest. In RenderFull mode the curves of bound segments are built.
func (c *Chart) bind(mode RenderMode) {
	if !c.ready {
		return
	}
	total := c.dims.TotalWidth()
	left := clamp(int(c.scroll), 0, total)
	right := clamp(int(ceil(c.scroll))+c.width-1, left, total)
	first, _ := c.dims.SegmentAt(left)
	last, _ := c.dims.SegmentAt(right)

	kept := c.live[:0]
	for _, s := range c.live {
		kind, err := c.dims.Kind(s.Index)
		if err != nil || s.Index < first || s.Index > last || kind != s.Kind {
			c.arena.Release(s)
			continue
		}
		if s.layoutVersion != c.layoutVersion {
			if err := s.bind(c.dims, s.Index, c.layoutVersion); err != nil {
				c.arena.Release(s)
				continue
			}
		}
		kept = append(kept, s)
	}
	c.live = kept

	for idx := first; idx <= last; idx++ {
		if c.boundAt(idx) {
			continue
		}
		kind, err := c.dims.Kind(idx)
		if err != nil {
			continue
		}
		s, err := c.arena.Checkout(kind)
		if err != nil {
			c.log.Error().Err(err).Int("segment", idx).Msg("cannot materialize segment")
			continue
		}
		if err := s.bind(c.dims, idx, c.layoutVersion); err != nil {
			c.arena.Release(s)
			continue
		}
		c.insertLive(s)
	}

	if mode == RenderFull {
		for _, s := range c.live {
			c.prepare(s)
		}
	}
}

func (c *Chart) boundAt(index int) bool {
	for _, s := range c.live {
		if s.Index == index {
			return true
		}
	}
	return false
}

func (c *Chart) insertLive(s *Segment) {
	i := len(c.live)
	for i > 0 && c.live[i-1].Index > s.Index {
		i--
	}
	c.live = append(c.live, nil)
	copy(c.live[i+1:], c.live[i:])
	c.live[i] = s
}

// prepare builds the curves and label texts of a bound segment if the data
// changed since they were last built.
func (c *Chart) prepare(s *Segment) {
	if s.dataVersion == c.dataVersion {
		return
	}
	s.dataVersion = c.dataVersion
	s.resetCurves()
	if s.Kind == KindPlaceholder || c.data.Size() == 0 {
		return
	}
	frame := CurveFrame{
		SlotWidth:  float32(c.dims.SlotWidth()),
		Height:     float32(c.height),
		TextHeight: c.textHeight,
	}
	for _, label := range c.currentLabels() {
		cv := s.curve(label)
		ok, err := c.builder.Build(&cv.path, s.FirstSlot, s.Slots, label, frame)
		if err != nil {
			c.log.Error().Err(err).Stringer("segment", s).Str("label", label).Msg("cannot build curve")
			continue
		}
		if !ok {
			continue
		}
		cv.ok = true
		cv.length = cv.path.Length()
		if c.measurer != nil {
			cv.text = c.tiler.Tile(label, cv.length, s.Index)
		}
		s.order = append(s.order, label)
	}
}

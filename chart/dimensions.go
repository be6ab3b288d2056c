package chart

// SegmentKind tags a view segment with the role it plays in the layout.
type SegmentKind uint8

const (
	// KindPlaceholder segments hold no slots. They pad both ends so every
	// slot can be scrolled to the centre of the viewport.
	KindPlaceholder SegmentKind = iota
	// KindStandard segments hold exactly one window of slots.
	KindStandard
	// KindGrowingTail is the last data segment, whose width follows the
	// data as it grows.
	KindGrowingTail
	numKinds
)

func (k SegmentKind) String() string {
	switch k {
	case KindPlaceholder:
		return "placeholder"
	case KindStandard:
		return "standard"
	case KindGrowingTail:
		return "growing tail"
	default:
		return "unknown"
	}
}

// Dimensions converts between slot indices, view segments and pixels for
// a fixed slot width and viewport width. The data size is read through
// the Sizer on every call, so Dimensions follows the data without being
// rebuilt.
//
// Segment 0 is the left placeholder, the last segment is the right
// placeholder, and every segment in between holds up to SlotsPerWindow
// contiguous slots.
type Dimensions struct {
	data                  Sizer
	slotWidth             int
	windowWidth           int
	slotsPerWindow        int
	leftPlaceholderWidth  int
	rightPlaceholderWidth int
}

// NewDimensions builds the layout for the given data, slot width and
// viewport width, all in pixels.
func NewDimensions(data Sizer, slotWidth, windowWidth int) (*Dimensions, error) {
	if slotWidth <= 0 {
		return nil, invalidArgument("NewDimensions", "slot width %d must be positive", slotWidth)
	}
	if windowWidth < slotWidth {
		return nil, invalidArgument("NewDimensions", "window width %d narrower than slot width %d", windowWidth, slotWidth)
	}
	free := windowWidth - slotWidth
	left := free / 2
	return &Dimensions{
		data:                  data,
		slotWidth:             slotWidth,
		windowWidth:           windowWidth,
		slotsPerWindow:        windowWidth / slotWidth,
		leftPlaceholderWidth:  left,
		rightPlaceholderWidth: free - left,
	}, nil
}

func (d *Dimensions) SlotWidth() int             { return d.slotWidth }
func (d *Dimensions) WindowWidth() int           { return d.windowWidth }
func (d *Dimensions) SlotsPerWindow() int        { return d.slotsPerWindow }
func (d *Dimensions) LeftPlaceholderWidth() int  { return d.leftPlaceholderWidth }
func (d *Dimensions) RightPlaceholderWidth() int { return d.rightPlaceholderWidth }

// SlotCount is the number of addressable slots. An empty chart still has
// one slot so that a "no data" placeholder can be shown.
func (d *Dimensions) SlotCount() int {
	return max(1, d.data.Size())
}

// SegmentCount returns the number of view segments including both
// placeholders.
func (d *Dimensions) SegmentCount() int {
	return ceilDiv(d.SlotCount(), d.slotsPerWindow) + 2
}

func (d *Dimensions) checkSegment(op string, segment int) error {
	return checkRange(op, segment, 0, d.SegmentCount())
}

func (d *Dimensions) isPlaceholder(segment int) bool {
	return segment == 0 || segment == d.SegmentCount()-1
}

// Kind reports the role of a segment.
func (d *Dimensions) Kind(segment int) (SegmentKind, error) {
	if err := d.checkSegment("Kind", segment); err != nil {
		return KindPlaceholder, err
	}
	switch segment {
	case 0, d.SegmentCount() - 1:
		return KindPlaceholder, nil
	case d.SegmentCount() - 2:
		return KindGrowingTail, nil
	}
	return KindStandard, nil
}

// SegmentSlotCount returns how many slots a segment holds. Placeholders
// hold none; the tail segment holds the remainder.
func (d *Dimensions) SegmentSlotCount(segment int) (int, error) {
	if err := d.checkSegment("SegmentSlotCount", segment); err != nil {
		return 0, err
	}
	if d.isPlaceholder(segment) {
		return 0, nil
	}
	if segment < d.SegmentCount()-2 {
		return d.slotsPerWindow, nil
	}
	return d.SlotCount() - d.slotsPerWindow*(segment-1), nil
}

// FirstSlot returns the first slot of a segment, or -1 for placeholders.
func (d *Dimensions) FirstSlot(segment int) (int, error) {
	if err := d.checkSegment("FirstSlot", segment); err != nil {
		return -1, err
	}
	if d.isPlaceholder(segment) {
		return -1, nil
	}
	return (segment - 1) * d.slotsPerWindow, nil
}

// SegmentOf returns the segment holding slot.
func (d *Dimensions) SegmentOf(slot int) (int, error) {
	if err := checkRange("SegmentOf", slot, 0, d.SlotCount()); err != nil {
		return -1, err
	}
	return slot/d.slotsPerWindow + 1, nil
}

// SegmentWidth returns the width of a segment in pixels.
func (d *Dimensions) SegmentWidth(segment int) (int, error) {
	if err := d.checkSegment("SegmentWidth", segment); err != nil {
		return 0, err
	}
	switch segment {
	case 0:
		return d.leftPlaceholderWidth, nil
	case d.SegmentCount() - 1:
		return d.rightPlaceholderWidth, nil
	}
	slots, _ := d.SegmentSlotCount(segment)
	return slots * d.slotWidth, nil
}

// SegmentX returns the left edge of a segment in chart pixels.
func (d *Dimensions) SegmentX(segment int) (int, error) {
	if err := d.checkSegment("SegmentX", segment); err != nil {
		return 0, err
	}
	if segment == 0 {
		return 0, nil
	}
	slots := min((segment-1)*d.slotsPerWindow, d.SlotCount())
	return d.leftPlaceholderWidth + slots*d.slotWidth, nil
}

// SegmentAt returns the segment covering chart pixel x. The right edge of
// the chart belongs to the right placeholder.
func (d *Dimensions) SegmentAt(x int) (int, error) {
	if x < 0 || x > d.TotalWidth() {
		return -1, &RangeError{Op: "SegmentAt", Index: x, Min: 0, Max: d.TotalWidth() + 1}
	}
	if x < d.leftPlaceholderWidth {
		return 0, nil
	}
	slot := (x - d.leftPlaceholderWidth) / d.slotWidth
	if slot >= d.SlotCount() {
		return d.SegmentCount() - 1, nil
	}
	return slot/d.slotsPerWindow + 1, nil
}

// TotalWidth returns the width of the whole chart in pixels.
func (d *Dimensions) TotalWidth() int {
	return d.SlotCount()*d.slotWidth + d.leftPlaceholderWidth + d.rightPlaceholderWidth
}

// SlotAt returns the slot under chart pixel x, or -1 when x lies inside
// a placeholder.
func (d *Dimensions) SlotAt(x int) (int, error) {
	if x < 0 || x > d.TotalWidth() {
		return -1, &RangeError{Op: "SlotAt", Index: x, Min: 0, Max: d.TotalWidth() + 1}
	}
	if x < d.leftPlaceholderWidth || x >= d.leftPlaceholderWidth+d.SlotCount()*d.slotWidth {
		return -1, nil
	}
	return (x - d.leftPlaceholderWidth) / d.slotWidth, nil
}

// SlotX returns the left edge of slot in chart pixels.
func (d *Dimensions) SlotX(slot int) (int, error) {
	if err := checkRange("SlotX", slot, 0, d.SlotCount()); err != nil {
		return 0, err
	}
	return d.leftPlaceholderWidth + slot*d.slotWidth, nil
}

// MaxScroll is the largest scroll offset, at which the last slot is
// centred.
func (d *Dimensions) MaxScroll() int {
	return d.TotalWidth() - d.windowWidth
}

// ScrollFor returns the scroll offset that centres slot in the viewport.
func (d *Dimensions) ScrollFor(slot int) (int, error) {
	if err := checkRange("ScrollFor", slot, 0, d.SlotCount()); err != nil {
		return 0, err
	}
	return slot * d.slotWidth, nil
}

// SlotAtScroll returns the slot closest to the viewport centre for a
// scroll offset.
func (d *Dimensions) SlotAtScroll(scroll float32) int {
	slot := int(scroll/float32(d.slotWidth) + 0.5)
	return clamp(slot, 0, d.SlotCount()-1)
}

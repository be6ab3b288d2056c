package chart

import "fmt"

// MaxLiveSegments bounds the number of materialized segments regardless
// of how long the timeline grows.
const MaxLiveSegments = 20

// curve is the drawable state of one label within a segment.
type curve struct {
	path   Path
	text   string
	length float32
	ok     bool
}

// Segment is one materialized drawing surface. Its layout is memoized
// when it is bound to a segment index and refreshed only when the chart's
// layout version changes.
type Segment struct {
	Kind  SegmentKind
	Index int
	// X and Width place the segment in chart pixels.
	X, Width int
	// FirstSlot is -1 for placeholders.
	FirstSlot int
	Slots     int

	layoutVersion int
	dataVersion   int
	curves        map[string]*curve
	// order lists the labels drawn in this segment, sorted.
	order []string
	arena int
}

func (s *Segment) String() string {
	return fmt.Sprintf("segment %d (%s, slots %d+%d)", s.Index, s.Kind, s.FirstSlot, s.Slots)
}

// bind memoizes the kind-specific layout of segment index.
func (s *Segment) bind(d *Dimensions, index, layoutVersion int) error {
	kind, err := d.Kind(index)
	if err != nil {
		return err
	}
	x, _ := d.SegmentX(index)
	width, _ := d.SegmentWidth(index)
	first, _ := d.FirstSlot(index)
	slots, _ := d.SegmentSlotCount(index)
	s.Kind = kind
	s.Index = index
	s.X = x
	s.Width = width
	s.FirstSlot = first
	s.Slots = slots
	s.layoutVersion = layoutVersion
	s.dataVersion = -1
	return nil
}

func (s *Segment) curve(label string) *curve {
	if s.curves == nil {
		s.curves = make(map[string]*curve)
	}
	c, ok := s.curves[label]
	if !ok {
		c = new(curve)
		s.curves[label] = c
	}
	return c
}

func (s *Segment) resetCurves() {
	for _, c := range s.curves {
		c.path.Reset()
		c.text = ""
		c.ok = false
	}
	s.order = s.order[:0]
}

// Arena holds a fixed number of pre-allocated segments. Segments are
// checked out for a kind and released back to that kind's free list, so a
// recycled segment usually keeps the path buffers of its previous use.
type Arena struct {
	slots [MaxLiveSegments]Segment
	free  [numKinds][]int
	spare []int
	live  int
}

func NewArena() *Arena {
	a := &Arena{spare: make([]int, 0, MaxLiveSegments)}
	for k := range a.free {
		a.free[k] = make([]int, 0, MaxLiveSegments)
	}
	for i := len(a.slots) - 1; i >= 0; i-- {
		a.slots[i].arena = i
		a.spare = append(a.spare, i)
	}
	return a
}

// Live returns the number of checked out segments.
func (a *Arena) Live() int {
	return a.live
}

// Checkout returns a free segment, preferring one last used for kind.
func (a *Arena) Checkout(kind SegmentKind) (*Segment, error) {
	idx := -1
	if free := a.free[kind]; len(free) > 0 {
		idx = free[len(free)-1]
		a.free[kind] = free[:len(free)-1]
	} else if len(a.spare) > 0 {
		idx = a.spare[len(a.spare)-1]
		a.spare = a.spare[:len(a.spare)-1]
	} else {
		for k := range a.free {
			if free := a.free[k]; len(free) > 0 {
				idx = free[len(free)-1]
				a.free[k] = free[:len(free)-1]
				break
			}
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("chart: arena exhausted with %d live segments", a.live)
	}
	a.live++
	s := &a.slots[idx]
	s.Kind = kind
	return s, nil
}

// Release returns s to the free list of its kind.
func (a *Arena) Release(s *Segment) {
	a.live--
	s.resetCurves()
	a.free[s.Kind] = append(a.free[s.Kind], s.arena)
}

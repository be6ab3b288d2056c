package chart

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type fixedSize int

func (f fixedSize) Size() int { return int(f) }

func TestDimensionsLayout(t *testing.T) {
	d, err := NewDimensions(fixedSize(25), 10, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.SlotsPerWindow() != 10 {
		t.Errorf("expected 10 slots per window, got %d", d.SlotsPerWindow())
	}
	if d.LeftPlaceholderWidth() != 45 || d.RightPlaceholderWidth() != 45 {
		t.Errorf("expected 45px placeholders, got %d and %d", d.LeftPlaceholderWidth(), d.RightPlaceholderWidth())
	}
	if d.SegmentCount() != 5 {
		t.Fatalf("expected 5 segments, got %d", d.SegmentCount())
	}
	type expectation struct {
		kind         SegmentKind
		slots, first int
		x, width     int
	}
	for i, e := range []expectation{
		{kind: KindPlaceholder, slots: 0, first: -1, x: 0, width: 45},
		{kind: KindStandard, slots: 10, first: 0, x: 45, width: 100},
		{kind: KindStandard, slots: 10, first: 10, x: 145, width: 100},
		{kind: KindGrowingTail, slots: 5, first: 20, x: 245, width: 50},
		{kind: KindPlaceholder, slots: 0, first: -1, x: 295, width: 45},
	} {
		kind, _ := d.Kind(i)
		slots, _ := d.SegmentSlotCount(i)
		first, _ := d.FirstSlot(i)
		x, _ := d.SegmentX(i)
		width, _ := d.SegmentWidth(i)
		got := expectation{kind: kind, slots: slots, first: first, x: x, width: width}
		if got != e {
			t.Errorf("segment %d: expected %+v, got %+v", i, e, got)
		}
	}
	if d.TotalWidth() != 340 {
		t.Errorf("expected total width 340, got %d", d.TotalWidth())
	}
	if d.MaxScroll() != 240 {
		t.Errorf("expected max scroll 240, got %d", d.MaxScroll())
	}
	if s, _ := d.ScrollFor(24); s != d.MaxScroll() {
		t.Errorf("expected the last slot to be centred at max scroll, got %d", s)
	}
}

func TestDimensionsLookups(t *testing.T) {
	d, _ := NewDimensions(fixedSize(25), 10, 100)
	type testcase struct {
		x             int
		segment, slot int
	}
	for _, tc := range []testcase{
		{x: 0, segment: 0, slot: -1},
		{x: 44, segment: 0, slot: -1},
		{x: 45, segment: 1, slot: 0},
		{x: 144, segment: 1, slot: 9},
		{x: 145, segment: 2, slot: 10},
		{x: 294, segment: 3, slot: 24},
		{x: 295, segment: 4, slot: -1},
		{x: 340, segment: 4, slot: -1},
	} {
		seg, err := d.SegmentAt(tc.x)
		if err != nil || seg != tc.segment {
			t.Errorf("SegmentAt(%d): expected %d, got %d (%v)", tc.x, tc.segment, seg, err)
		}
		slot, err := d.SlotAt(tc.x)
		if err != nil || slot != tc.slot {
			t.Errorf("SlotAt(%d): expected %d, got %d (%v)", tc.x, tc.slot, slot, err)
		}
	}
	if _, err := d.SegmentAt(341); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected out of range error, got %v", err)
	}
	if _, err := d.Kind(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected out of range error, got %v", err)
	}
	if _, err := d.ScrollFor(25); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected out of range error, got %v", err)
	}
	for scroll, slot := range map[float32]int{0: 0, 4.9: 0, 5: 1, 14: 1, 15: 2, 240: 24, 1000: 24, -30: 0} {
		if got := d.SlotAtScroll(scroll); got != slot {
			t.Errorf("SlotAtScroll(%v): expected %d, got %d", scroll, slot, got)
		}
	}
}

func TestDimensionsEmpty(t *testing.T) {
	d, _ := NewDimensions(fixedSize(0), 10, 100)
	if d.SlotCount() != 1 {
		t.Errorf("expected one slot for empty data, got %d", d.SlotCount())
	}
	if d.SegmentCount() != 3 {
		t.Fatalf("expected 3 segments, got %d", d.SegmentCount())
	}
	if k, _ := d.Kind(1); k != KindGrowingTail {
		t.Errorf("expected the only data segment to be the growing tail, got %v", k)
	}
	if d.MaxScroll() != 0 {
		t.Errorf("expected max scroll 0, got %d", d.MaxScroll())
	}
}

func TestDimensionsInvalid(t *testing.T) {
	if _, err := NewDimensions(fixedSize(1), 0, 100); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected invalid argument for zero slot width, got %v", err)
	}
	if _, err := NewDimensions(fixedSize(1), 50, 40); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected invalid argument for a window narrower than a slot, got %v", err)
	}
}

func TestDimensionsFollowsData(t *testing.T) {
	data := NewData()
	d, _ := NewDimensions(data, 10, 100)
	must(t, data.Put(10, "a", 1))
	if d.SegmentCount() != 4 {
		t.Errorf("expected 4 segments for 11 slots, got %d", d.SegmentCount())
	}
	if k, _ := d.Kind(1); k != KindStandard {
		t.Errorf("expected a full segment to be standard, got %v", k)
	}
}

func TestDimensions_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("segments tile the chart and every slot can be centred", prop.ForAll(
		func(size, slotWidth, extra int) bool {
			d, err := NewDimensions(fixedSize(size), slotWidth, slotWidth+extra)
			if err != nil {
				return false
			}
			x := 0
			for i := 0; i < d.SegmentCount(); i++ {
				sx, _ := d.SegmentX(i)
				w, _ := d.SegmentWidth(i)
				if sx != x {
					return false
				}
				x += w
			}
			if x != d.TotalWidth() {
				return false
			}
			for slot := 0; slot < d.SlotCount(); slot++ {
				seg, _ := d.SegmentOf(slot)
				first, _ := d.FirstSlot(seg)
				n, _ := d.SegmentSlotCount(seg)
				if slot < first || slot >= first+n {
					return false
				}
				scroll, _ := d.ScrollFor(slot)
				if scroll < 0 || scroll > d.MaxScroll() {
					return false
				}
				if d.SlotAtScroll(float32(scroll)) != slot {
					return false
				}
				// The slot centre sits in the middle of the viewport.
				sx, _ := d.SlotX(slot)
				centre := sx + slotWidth/2 - scroll
				if abs(centre-d.WindowWidth()/2) > 1 {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 300),
		gen.IntRange(1, 64),
		gen.IntRange(0, 400),
	))

	properties.TestingRun(t)
}

package chart

import (
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring"
)

// NoValue is returned by lookups that find nothing, and may be passed to
// Put to extend the data size without storing a point.
const NoValue = -1

// MaxValue is the largest value that may be stored.
const MaxValue = 100

// Sizer reports the logical length of a data set.
type Sizer interface {
	Size() int
}

// series holds the populated physical indices of one label. The bitmap
// keeps the index set sparse and ordered; values live beside it.
type series struct {
	present *roaring.Bitmap
	values  map[uint32]uint8
}

func newSeries() *series {
	return &series{
		present: roaring.New(),
		values:  make(map[uint32]uint8),
	}
}

// Data is a memory-compact sparse time series keyed by label. Client
// indices are always in [0,Size()); internally they are offset by a shift
// so that truncating the left side does not relabel the remaining points.
type Data struct {
	series map[string]*series
	size   int
	shift  int
}

var _ Sizer = (*Data)(nil)

func NewData() *Data {
	return &Data{series: make(map[string]*series)}
}

// Size returns one more than the greatest index ever written.
func (d *Data) Size() int {
	return d.size
}

// Labels returns the labels that currently hold at least one value,
// sorted.
func (d *Data) Labels() []string {
	labels := make([]string, 0, len(d.series))
	for label := range d.series {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	return labels
}

// Put stores value at index for label. A value of NoValue only extends the
// size of the data to index+1.
func (d *Data) Put(index int, label string, value int) error {
	if index < 0 {
		return invalidArgument("Put", "negative index %d", index)
	}
	if value < NoValue || value > MaxValue {
		return invalidArgument("Put", "value %d outside [%d,%d]", value, NoValue, MaxValue)
	}
	if label == "" {
		return invalidArgument("Put", "empty label")
	}
	physical := index + d.shift
	if uint64(physical) > math.MaxUint32 {
		return invalidArgument("Put", "index %d overflows storage", index)
	}
	if value != NoValue {
		s, ok := d.series[label]
		if !ok {
			s = newSeries()
			d.series[label] = s
		}
		s.present.Add(uint32(physical))
		s.values[uint32(physical)] = uint8(value)
	}
	d.size = max(d.size, index+1)
	return nil
}

// Get returns the value stored at index for label, or NoValue.
func (d *Data) Get(index int, label string) (int, error) {
	if err := checkRange("Get", index, 0, d.size); err != nil {
		return NoValue, err
	}
	s, ok := d.series[label]
	if !ok {
		return NoValue, nil
	}
	v, ok := s.values[uint32(index+d.shift)]
	if !ok {
		return NoValue, nil
	}
	return int(v), nil
}

// Closest returns the value at index for label or, if there is none, the
// value at the nearest populated index. On equal distance the right
// neighbour wins. NoValue is returned when the label has no data at all.
func (d *Data) Closest(index int, label string) (int, error) {
	if err := checkRange("Closest", index, 0, d.size); err != nil {
		return NoValue, err
	}
	s, ok := d.series[label]
	if !ok {
		return NoValue, nil
	}
	p := uint32(index + d.shift)
	if v, ok := s.values[p]; ok {
		return int(v), nil
	}
	lo := uint32(d.shift)
	hi := uint32(d.shift + d.size - 1)
	// p is not present, so rank counts the elements strictly below it.
	below := s.present.Rank(p)
	var (
		right, left       uint32
		hasRight, hasLeft bool
	)
	if below < s.present.GetCardinality() {
		if r, err := s.present.Select(uint32(below)); err == nil && r <= hi {
			right, hasRight = r, true
		}
	}
	if below > 0 {
		if l, err := s.present.Select(uint32(below - 1)); err == nil && l >= lo {
			left, hasLeft = l, true
		}
	}
	switch {
	case hasRight && (!hasLeft || right-p <= p-left):
		return int(s.values[right]), nil
	case hasLeft:
		return int(s.values[left]), nil
	}
	return NoValue, nil
}

// ShrinkLeft drops the oldest points so that only the last size indices
// remain. Remaining indices are re-based to start at zero. It is a no-op
// if size is not smaller than the current size.
func (d *Data) ShrinkLeft(size int) error {
	if size < 0 {
		return invalidArgument("ShrinkLeft", "negative size %d", size)
	}
	if size >= d.size {
		return nil
	}
	removed := d.size - size
	lo := uint64(d.shift)
	hi := lo + uint64(removed)
	for label, s := range d.series {
		it := s.present.Iterator()
		for it.HasNext() {
			p := it.Next()
			if uint64(p) >= hi {
				break
			}
			delete(s.values, p)
		}
		s.present.RemoveRange(lo, hi)
		if s.present.IsEmpty() {
			delete(d.series, label)
		}
	}
	d.shift += removed
	d.size = size
	return nil
}

// Clear removes all data.
func (d *Data) Clear() {
	clear(d.series)
	d.size = 0
	d.shift = 0
}

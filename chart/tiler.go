package chart

import "strings"

// TextMeasurer reports the rendered width of a string in pixels.
type TextMeasurer interface {
	Measure(s string) float32
}

type tileKey struct {
	segment int
	label   string
}

// Tiler repeats "separator+label" so that it exactly fills a curve, and
// remembers where the pattern stopped in each segment so the next segment
// resumes it. Read across segment boundaries the labels form one
// continuous string.
type Tiler struct {
	separator string
	measurer  TextMeasurer
	offsets   map[tileKey]int
	buf       strings.Builder
}

func NewTiler(separator string, measurer TextMeasurer) *Tiler {
	return &Tiler{
		separator: separator,
		measurer:  measurer,
		offsets:   make(map[tileKey]int),
	}
}

// SetSeparator changes the separator and forgets all tiling state.
func (t *Tiler) SetSeparator(separator string) {
	t.separator = separator
	t.Reset()
}

// SetMeasurer changes the measurer and forgets all tiling state.
func (t *Tiler) SetMeasurer(m TextMeasurer) {
	t.measurer = m
	t.Reset()
}

// Reset forgets every remembered offset.
func (t *Tiler) Reset() {
	clear(t.offsets)
}

// Offset returns the rune offset at which the pattern for label stopped in
// segment.
func (t *Tiler) Offset(segment int, label string) int {
	return t.offsets[tileKey{segment: segment, label: label}]
}

// Tile returns the label text for a curve of the given length in
// segment. Its measured width never exceeds length and falls short of it
// by less than one character.
func (t *Tiler) Tile(label string, length float32, segment int) string {
	base := []rune(t.separator + label)
	if len(base) == 0 {
		return ""
	}
	offset := t.offsets[tileKey{segment: segment - 1, label: label}] % len(base)
	rotated := string(base[offset:]) + string(base[:offset])

	t.buf.Reset()
	width := t.measurer.Measure(rotated)
	if width <= 0 || length <= 0 {
		t.offsets[tileKey{segment: segment, label: label}] = offset
		return ""
	}
	for n := int(length / width); n > 0; n-- {
		t.buf.WriteString(rotated)
	}

	// Whole repetitions end where they started; extend one rune at a time.
	pos := offset
	out := t.buf.String()
	width = t.measurer.Measure(out)
	for width < length {
		t.buf.WriteRune(base[pos])
		pos = (pos + 1) % len(base)
		out = t.buf.String()
		width = t.measurer.Measure(out)
	}
	if width > length {
		r := []rune(out)
		out = string(r[:len(r)-1])
		pos = (pos - 1 + len(base)) % len(base)
	}
	t.offsets[tileKey{segment: segment, label: label}] = pos
	return out
}

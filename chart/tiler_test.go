package chart

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// monospace measures every rune as 5 pixels wide.
type monospace struct{}

const runeWidth = 5

func (monospace) Measure(s string) float32 {
	return float32(utf8.RuneCountInString(s) * runeWidth)
}

func TestTilerContinuesAcrossSegments(t *testing.T) {
	tl := NewTiler("-", monospace{})
	a := tl.Tile("cpu", 37, 0)
	if a != "-cpu-cp" {
		t.Errorf("expected %q, got %q", "-cpu-cp", a)
	}
	if off := tl.Offset(0, "cpu"); off != 3 {
		t.Errorf("expected offset 3, got %d", off)
	}
	b := tl.Tile("cpu", 12, 1)
	if b != "u-" {
		t.Errorf("expected %q, got %q", "u-", b)
	}
	if a+b != "-cpu-cpu-" {
		t.Errorf("expected a continuous string, got %q", a+b)
	}
}

func TestTilerExactFit(t *testing.T) {
	tl := NewTiler("·", monospace{})
	got := tl.Tile("ab", 30, 0)
	if got != "·ab·ab" {
		t.Errorf("expected %q, got %q", "·ab·ab", got)
	}
	if off := tl.Offset(0, "ab"); off != 0 {
		t.Errorf("expected whole repetitions to end at offset 0, got %d", off)
	}
}

func TestTilerDegenerate(t *testing.T) {
	tl := NewTiler("-", monospace{})
	_ = tl.Tile("cpu", 7, 0)
	if got := tl.Tile("cpu", 0, 1); got != "" {
		t.Errorf("expected empty text for a zero length curve, got %q", got)
	}
	if tl.Offset(1, "cpu") != tl.Offset(0, "cpu") {
		t.Errorf("expected an empty tile to carry the offset through")
	}
	if got := tl.Tile("cpu", 3, 2); got != "" {
		t.Errorf("expected no text on a curve shorter than one rune, got %q", got)
	}
	if got := NewTiler("", monospace{}).Tile("", 100, 0); got != "" {
		t.Errorf("expected empty text for an empty pattern, got %q", got)
	}
}

func TestTilerReset(t *testing.T) {
	tl := NewTiler("-", monospace{})
	_ = tl.Tile("cpu", 37, 0)
	tl.Reset()
	if off := tl.Offset(0, "cpu"); off != 0 {
		t.Errorf("expected reset to forget offsets, got %d", off)
	}
	tl.SetSeparator("+")
	if got := tl.Tile("cpu", 20, 1); got != "+cpu" {
		t.Errorf("expected the new separator to be used, got %q", got)
	}
}

func TestTiler_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("tiles fill each curve and join seamlessly", prop.ForAll(
		func(lengths []int, label string) bool {
			if label == "" {
				label = "x"
			}
			tl := NewTiler("  ", monospace{})
			var all strings.Builder
			for seg, l := range lengths {
				length := float32(l)
				tile := tl.Tile(label, length, seg)
				w := monospace{}.Measure(tile)
				if w > length || length-w >= runeWidth {
					return false
				}
				all.WriteString(tile)
			}
			pattern := strings.Repeat("  "+label, all.Len()/len(label)+2)
			return strings.HasPrefix(pattern, all.String())
		},
		gen.SliceOf(gen.IntRange(0, 400)),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

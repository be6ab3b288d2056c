package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected the defaults to be valid, got %v", err)
	}
	s := c.Style()
	if s.SlotWidth != 24 || s.TextSize != 11 {
		t.Errorf("expected 24dp slots and 11sp text, got %v and %v", s.SlotWidth, s.TextSize)
	}
	if len(s.Background) != 3 {
		t.Fatalf("expected 3 background stops, got %d", len(s.Background))
	}
	if got, want := s.Background[1].Color, (color.NRGBA{R: 0xff, G: 0xa0, A: 0xff}); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !c.Capabilities().Gradients {
		t.Errorf("expected gradient curves by default")
	}
}

func TestParse(t *testing.T) {
	c, err := Parse(`
slot_width = 32
separator = " | "
max_slots = 100

[[background]]
position = 0
color = "#000000"

[[background]]
position = 1
color = "#ffffff80"

[curves]
wifi = "#2196f3"
`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.SlotWidth != 32 || c.Separator != " | " || c.MaxSlots != 100 {
		t.Errorf("expected overrides to apply, got %+v", c)
	}
	if c.TextSize != 11 {
		t.Errorf("expected unset keys to keep defaults, got text size %v", c.TextSize)
	}
	s := c.Style()
	if len(s.Background) != 2 {
		t.Fatalf("expected the background to be replaced, got %d stops", len(s.Background))
	}
	if got := s.Background[1].Color; got != (color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x80}) {
		t.Errorf("expected translucent white, got %v", got)
	}
	if got := s.CurveColors["wifi"]; got != (color.NRGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff}) {
		t.Errorf("expected the wifi colour, got %v", got)
	}
}

func TestParseInvalid(t *testing.T) {
	type testcase struct {
		name, data, want string
	}
	for _, tc := range []testcase{
		{name: "unknown key", data: `slot_wdth = 3`, want: "unknown keys: slot_wdth"},
		{name: "zero slot width", data: `slot_width = 0`, want: "slot_width must be positive"},
		{name: "bad colour", data: `text_color = "red"`, want: "text_color"},
		{name: "bad curve colour", data: "[curves]\ncpu = \"#12\"", want: "curves.cpu"},
		{name: "single stop", data: "[[background]]\nposition = 0.5\ncolor = \"#000000\"", want: "at least two stops"},
		{name: "descending stops", data: "[[background]]\nposition = 0.5\ncolor = \"#000000\"\n[[background]]\nposition = 0.1\ncolor = \"#000000\"", want: "positions must ascend"},
		{name: "syntax", data: `slot_width = `, want: "config:"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.data)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected an error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	c, found, err := Load(filepath.Join(dir, "missing.toml"))
	if err != nil || found {
		t.Errorf("expected a missing file to yield defaults, got found=%v err=%v", found, err)
	}
	if c.SlotWidth != Default().SlotWidth {
		t.Errorf("expected default slot width, got %v", c.SlotWidth)
	}

	path := filepath.Join(dir, "emchart.toml")
	if err := os.WriteFile(path, []byte("curve_width = 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, found, err = Load(path)
	if err != nil || !found {
		t.Fatalf("expected the file to load, got found=%v err=%v", found, err)
	}
	if c.CurveWidth != 20 || len(c.Background) != 3 {
		t.Errorf("expected curve width 20 over defaults, got %+v", c)
	}
}

func TestPalette(t *testing.T) {
	p := Palette(12)
	seen := map[color.NRGBA]bool{}
	for i, c := range p {
		if seen[c] {
			t.Errorf("colour %d repeats %v", i, c)
		}
		seen[c] = true
	}
	if again := Palette(12); again[5] != p[5] {
		t.Errorf("expected a deterministic palette")
	}
}

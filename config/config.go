// Package config loads the chart style and viewer settings from a TOML
// file.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"math"
	"slices"
	"strconv"
	"strings"

	"gioui.org/unit"
	"git.sr.ht/~whereswaldon/emchart/chart"
	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"
)

type (
	// Stop is one background gradient stop.
	Stop struct {
		Position float32 `toml:"position"`
		Color    string  `toml:"color"`
	}

	Config struct {
		SlotWidth    float32 `toml:"slot_width"`
		TextSize     float32 `toml:"text_size"`
		CornerRadius float32 `toml:"corner_radius"`
		CurveWidth   float32 `toml:"curve_width"`
		Separator    string  `toml:"separator"`
		// GradientCurves selects the gradient curve renderer.
		GradientCurves bool `toml:"gradient_curves"`
		// MaxSlots bounds a live trace; older slots are dropped. Zero
		// keeps everything.
		MaxSlots   int               `toml:"max_slots"`
		TextColor  string            `toml:"text_color"`
		Background []Stop            `toml:"background"`
		Curves     map[string]string `toml:"curves"`
	}
)

// Example is a complete configuration file holding the defaults.
const Example = `# Width of one slot, in dp.
slot_width = 24.0
# Size of the labels drawn along the curves, in sp.
text_size = 11.0
corner_radius = 8.0
curve_width = 14.0
separator = "  ·  "
gradient_curves = true
# Oldest slots are dropped past this many. 0 keeps everything.
max_slots = 4096
text_color = "#ffffff"

[[background]]
position = 0.0
color = "#d32f2f"

[[background]]
position = 0.5
color = "#ffa000"

[[background]]
position = 1.0
color = "#388e3c"

# Colours of individual curves, by label.
[curves]
`

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	if _, err := toml.Decode(Example, &c); err != nil {
		panic(fmt.Errorf("config: bad built-in defaults: %w", err))
	}
	return c
}

// Parse decodes a configuration on top of the defaults. Unknown keys are
// an error.
func Parse(data string) (Config, error) {
	c := Default()
	// Stops are replaced, not merged.
	c.Background = nil
	md, err := toml.Decode(data, &c)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c.finish(md)
}

// Load reads the file at path on top of the defaults. A missing file
// yields the defaults and reports found as false.
func Load(path string) (c Config, found bool, err error) {
	c = Default()
	c.Background = nil
	md, err := toml.DecodeFile(path, &c)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	} else if err != nil {
		return Config{}, false, fmt.Errorf("config: reading %q: %w", path, err)
	}
	c, err = c.finish(md)
	return c, true, err
}

func (c Config) finish(md toml.MetaData) (Config, error) {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config: unknown keys: %s", strings.Join(keys, ", "))
	}
	if len(c.Background) == 0 {
		c.Background = Default().Background
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks sizes and colours.
func (c Config) Validate() error {
	var errs []error
	for _, f := range []struct {
		name string
		v    float32
	}{
		{"slot_width", c.SlotWidth},
		{"text_size", c.TextSize},
		{"curve_width", c.CurveWidth},
	} {
		if f.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", f.name, f.v))
		}
	}
	if c.CornerRadius < 0 {
		errs = append(errs, fmt.Errorf("corner_radius must not be negative, got %v", c.CornerRadius))
	}
	if c.MaxSlots < 0 {
		errs = append(errs, fmt.Errorf("max_slots must not be negative, got %d", c.MaxSlots))
	}
	if _, err := ParseColor(c.TextColor); err != nil {
		errs = append(errs, fmt.Errorf("text_color: %w", err))
	}
	if len(c.Background) < 2 {
		errs = append(errs, fmt.Errorf("background needs at least two stops, got %d", len(c.Background)))
	}
	for i, s := range c.Background {
		if s.Position < 0 || s.Position > 1 {
			errs = append(errs, fmt.Errorf("background[%d]: position %v outside [0,1]", i, s.Position))
		}
		if i > 0 && s.Position < c.Background[i-1].Position {
			errs = append(errs, fmt.Errorf("background[%d]: positions must ascend", i))
		}
		if _, err := ParseColor(s.Color); err != nil {
			errs = append(errs, fmt.Errorf("background[%d]: %w", i, err))
		}
	}
	for label, col := range c.Curves {
		if _, err := ParseColor(col); err != nil {
			errs = append(errs, fmt.Errorf("curves.%s: %w", label, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Style builds the chart style. The configuration must be valid.
func (c Config) Style() chart.Style {
	s := chart.DefaultStyle()
	s.SlotWidth = unit.Dp(c.SlotWidth)
	s.TextSize = unit.Sp(c.TextSize)
	s.CornerRadius = unit.Dp(c.CornerRadius)
	s.CurveWidth = unit.Dp(c.CurveWidth)
	s.Separator = c.Separator
	s.TextColor, _ = ParseColor(c.TextColor)
	s.Background = make([]chart.GradientStop, len(c.Background))
	for i, stop := range c.Background {
		col, _ := ParseColor(stop.Color)
		s.Background[i] = chart.GradientStop{Position: stop.Position, Color: col}
	}
	labels := make([]string, 0, len(c.Curves))
	for label := range c.Curves {
		labels = append(labels, label)
	}
	slices.Sort(labels)
	for _, label := range labels {
		s.CurveColors[label], _ = ParseColor(c.Curves[label])
	}
	return s
}

// Capabilities returns the renderer capabilities the configuration asks
// for.
func (c Config) Capabilities() chart.Capabilities {
	return chart.Capabilities{Gradients: c.GradientCurves}
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (color.NRGBA, error) {
	alpha := uint64(0xff)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad alpha in %q: %w", s, err)
		}
		alpha = a
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha)}, nil
}

// Palette returns n distinct colours, spreading hues by the golden angle
// so that any prefix is well separated.
func Palette(n int) []color.NRGBA {
	out := make([]color.NRGBA, n)
	for i := range out {
		h := math.Mod(float64(i+1)*math.Phi*360, 360)
		r, g, b := colorful.Hcl(h, 0.5, 0.45).Clamped().RGB255()
		out[i] = color.NRGBA{R: r, G: g, B: b, A: 0xe0}
	}
	return out
}

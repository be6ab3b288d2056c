package main

import (
	"bytes"
	"strings"
	"testing"

	"git.sr.ht/~whereswaldon/emchart/backend"
	"git.sr.ht/~whereswaldon/emchart/chart"
	"git.sr.ht/~whereswaldon/emchart/config"
	"github.com/rs/zerolog"
)

func newTestUI(maxSlots int) *UI {
	cfg := config.Default()
	cfg.MaxSlots = maxSlots
	cfg.Curves = map[string]string{"wifi": "#2196f3"}
	ui := &UI{
		cfg:      cfg,
		log:      zerolog.Nop(),
		chart:    chart.New(cfg.Style(), cfg.Capabilities(), zerolog.Nop()),
		palette:  config.Palette(4),
		follow:   true,
		position: -1,
	}
	ui.chart.OnPositionChanged(func(old, new int) {
		ui.position = new
	})
	return ui
}

func sample(index int, label string, value int) backend.InputData {
	return backend.InputData{Kind: backend.KindSample, Sample: backend.Sample{Index: index, Label: label, Value: value}}
}

func TestInsertHeadings(t *testing.T) {
	ui := newTestUI(0)
	ui.Insert(backend.InputData{Kind: backend.KindHeadings, Headings: []string{"wifi", "cpu", "wifi"}})
	if len(ui.labels) != 2 {
		t.Fatalf("expected 2 distinct labels, got %v", ui.labels)
	}
	wifi, _ := config.ParseColor("#2196f3")
	if got := ui.chart.CurveColor("wifi"); got != wifi {
		t.Errorf("expected the configured wifi colour, got %v", got)
	}
	if got := ui.chart.CurveColor("cpu"); got != ui.palette[1] {
		t.Errorf("expected cpu to take the second palette colour, got %v", got)
	}
}

func TestInsertSamples(t *testing.T) {
	ui := newTestUI(0)
	ui.Insert(sample(0, "wifi", 50))
	ui.Insert(sample(2, "wifi", 70))
	ui.Insert(sample(1, "wifi", 1000))
	if ui.chart.Size() != 3 {
		t.Errorf("expected 3 slots, got %d", ui.chart.Size())
	}
	if ui.position != 0 {
		t.Errorf("expected the first sample to centre slot 0, got %d", ui.position)
	}
	if v, _ := ui.chart.Data().Get(1, "wifi"); v != chart.NoValue {
		t.Errorf("expected the rejected sample to leave a gap, got %d", v)
	}
	if got := ui.legendValue("wifi"); got != "50" {
		t.Errorf("expected the legend to show 50, got %q", got)
	}
}

func TestTrimShiftsIndices(t *testing.T) {
	ui := newTestUI(5)
	for i := 0; i < 10; i++ {
		ui.Insert(sample(i, "wifi", i))
	}
	ui.trim()
	if ui.chart.Size() != 5 || ui.shift != 5 {
		t.Fatalf("expected 5 slots and a shift of 5, got %d and %d", ui.chart.Size(), ui.shift)
	}
	if v, _ := ui.chart.Data().Get(0, "wifi"); v != 5 {
		t.Errorf("expected slot 0 to hold trace slot 5, got %d", v)
	}
	ui.Insert(sample(10, "wifi", 10))
	ui.Insert(sample(3, "wifi", 3))
	if ui.chart.Size() != 6 {
		t.Errorf("expected the new sample at slot 5 and the stale one dropped, got size %d", ui.chart.Size())
	}
	if v, _ := ui.chart.Data().Get(5, "wifi"); v != 10 {
		t.Errorf("expected slot 5 to hold 10, got %d", v)
	}

	ui.Insert(backend.InputData{Kind: backend.KindReset})
	if ui.chart.Size() != 0 || ui.shift != 0 || ui.position != -1 {
		t.Errorf("expected reset to clear everything, got size %d shift %d position %d", ui.chart.Size(), ui.shift, ui.position)
	}
}

func TestInsertHeadingsLogsColourErrors(t *testing.T) {
	var buf bytes.Buffer
	ui := newTestUI(0)
	ui.log = zerolog.New(&buf)
	ui.Insert(backend.InputData{Kind: backend.KindHeadings, Headings: []string{"", "cpu"}})
	if !strings.Contains(buf.String(), "no colour for label") {
		t.Errorf("expected the rejected colour to be logged, got %q", buf.String())
	}
	if got := ui.chart.CurveColor("cpu"); got != ui.palette[1] {
		t.Errorf("expected cpu to keep its palette colour, got %v", got)
	}
}

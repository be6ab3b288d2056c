package main

import (
	"fmt"
	"image"
	"image/color"
	"slices"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"git.sr.ht/~whereswaldon/emchart/backend"
	"git.sr.ht/~whereswaldon/emchart/chart"
	"git.sr.ht/~whereswaldon/emchart/config"
	"github.com/rs/zerolog"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

var pauseIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.AVPause)
	return icon
}()

var playIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.AVPlayArrow)
	return icon
}()

var openIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.FileFolderOpen)
	return icon
}()

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	ws   backend.WindowState
	expl *explorer.Explorer
	cfg  config.Config
	log  zerolog.Logger
	th   *material.Theme

	chart   *chart.Chart
	palette []color.NRGBA
	// labels lists the labels of the current trace in header order.
	labels []string
	// shift counts the slots dropped from the left of a live trace.
	shift  int
	legend component.GridState

	follow      bool
	followBtn   widget.Clickable
	launchBtn   widget.Clickable
	explorerBtn widget.Clickable
	launching   bool
	position    int
	lastEnd     string
	errMsg      string

	statusStream *stream.Stream[backend.Status]
	status       backend.Status
	updateStream *stream.Stream[uint64]
	updates      uint64
}

func NewUI(ws backend.WindowState, expl *explorer.Explorer, cfg config.Config, th *material.Theme, log zerolog.Logger) *UI {
	ui := &UI{
		ws:           ws,
		expl:         expl,
		cfg:          cfg,
		log:          log,
		th:           th,
		chart:        chart.New(cfg.Style(), cfg.Capabilities(), log),
		palette:      config.Palette(16),
		follow:       true,
		position:     -1,
		statusStream: stream.New(ws.Controller, ws.Bundle.Datasource.Status),
		updateStream: stream.New(ws.Controller, ws.Bundle.Datasource.Feed().Updates),
	}
	ui.chart.SetShaper(th.Shaper)
	ui.chart.OnPositionChanged(func(old, new int) {
		ui.position = new
	})
	ui.chart.OnScrollEnd(func(position int, fromUser bool) {
		if fromUser {
			ui.follow = position == ui.chart.Size()-1
		}
		ui.lastEnd = fmt.Sprintf("settled on slot %d", position+ui.shift)
	})
	ui.chart.OnClick(func() {
		ui.follow = !ui.follow
	})
	return ui
}

// Insert applies one item of trace input to the chart.
func (ui *UI) Insert(in backend.InputData) {
	switch in.Kind {
	case backend.KindReset:
		ui.chart.Reset()
		ui.labels = ui.labels[:0]
		ui.shift = 0
		ui.follow = true
		ui.position = -1
		ui.lastEnd = ""
		ui.errMsg = ""
	case backend.KindHeadings:
		for _, label := range in.Headings {
			if slices.Contains(ui.labels, label) {
				continue
			}
			if _, ok := ui.cfg.Curves[label]; !ok {
				if err := ui.chart.SetCurveColor(label, ui.palette[len(ui.labels)%len(ui.palette)]); err != nil {
					ui.log.Warn().Err(err).Str("label", label).Msg("no colour for label")
				}
			}
			ui.labels = append(ui.labels, label)
		}
	case backend.KindSample:
		idx := in.Index - ui.shift
		if idx < 0 {
			return
		}
		if err := ui.chart.Put(idx, in.Label, in.Value); err != nil {
			ui.log.Warn().Err(err).Int("slot", in.Index).Str("label", in.Label).Msg("dropping sample")
		}
	}
}

// trim bounds the chart to the configured number of slots.
func (ui *UI) trim() {
	limit := ui.cfg.MaxSlots
	if limit <= 0 || ui.chart.Size() <= limit {
		return
	}
	removed := ui.chart.Size() - limit
	if err := ui.chart.ShrinkLeft(limit); err != nil {
		ui.log.Error().Err(err).Msg("failed trimming chart")
		return
	}
	ui.shift += removed
}

// Update the state of the UI from the backend and from input events.
func (ui *UI) Update(gtx C) {
	ui.statusStream.ReadInto(gtx, &ui.status, backend.Status{})
	ui.updateStream.ReadInto(gtx, &ui.updates, 0)
	if ui.status.Err != nil {
		ui.errMsg = ui.status.Err.Error()
	}
	if ui.status.Mode != backend.ModeNone {
		ui.launching = false
	}
	if ui.ws.Bundle.Datasource.Feed().Drain(ui.Insert) > 0 {
		ui.trim()
	}
	if ui.followBtn.Clicked(gtx) {
		ui.follow = !ui.follow
	}
	if last := ui.chart.Size() - 1; ui.follow && last >= 0 && ui.position != last {
		if err := ui.chart.ScrollTo(last); err != nil {
			ui.log.Error().Err(err).Msg("failed following trace")
		}
	}
	if !ui.launching && ui.launchBtn.Clicked(gtx) {
		ui.launching = true
		if err := ui.ws.Bundle.Datasource.LaunchFeed(); err != nil {
			ui.launching = false
			ui.errMsg = err.Error()
		}
	}
	if ui.explorerBtn.Clicked(gtx) {
		go func() {
			if err := ui.ws.Bundle.Datasource.LoadFromFile(ui.expl); err != nil {
				ui.log.Error().Err(err).Msg("failed opening trace")
			}
		}()
	}
}

func (ui *UI) statusLine() string {
	s := fmt.Sprintf("%s %s · %d slots", ui.status.Mode, ui.status.Trace, ui.chart.Size())
	if ui.position >= 0 {
		s += fmt.Sprintf(" · slot %d", ui.position+ui.shift)
	}
	if ui.lastEnd != "" {
		s += " · " + ui.lastEnd
	}
	if ui.status.Done {
		s += " · ended"
	}
	return s
}

func (ui *UI) layoutToolbar(gtx C) D {
	icon := pauseIcon
	if !ui.follow {
		icon = playIcon
	}
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return layout.UniformInset(4).Layout(gtx, material.IconButton(ui.th, &ui.followBtn, icon, "Follow the newest slot").Layout)
		}),
		layout.Rigid(func(gtx C) D {
			return layout.UniformInset(4).Layout(gtx, material.IconButton(ui.th, &ui.explorerBtn, openIcon, "Open trace").Layout)
		}),
		layout.Flexed(1, func(gtx C) D {
			l := material.Body2(ui.th, ui.statusLine())
			l.MaxLines = 1
			return layout.UniformInset(4).Layout(gtx, l.Layout)
		}),
	)
}

func (ui *UI) layoutMainArea(gtx C) D {
	return layout.Flex{
		Axis: layout.Vertical,
	}.Layout(gtx,
		layout.Rigid(ui.layoutToolbar),
		layout.Rigid(func(gtx C) D {
			if len(ui.errMsg) == 0 {
				return D{}
			}
			l := material.Body1(ui.th, ui.errMsg)
			l.Color = color.NRGBA{R: 150, A: 255}
			return l.Layout(gtx)
		}),
		layout.Flexed(1, func(gtx C) D {
			return layout.UniformInset(8).Layout(gtx, ui.chart.Layout)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Max.Y = min(gtx.Constraints.Max.Y, gtx.Sp(20)*(len(ui.labels)+1))
			return ui.layoutLegend(gtx)
		}),
	)
}

func (ui *UI) layoutStartScreen(gtx C) D {
	l := material.Body1(ui.th, "No trace yet.")
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
		Spacing:   layout.SpaceAround,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return l.Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			if ui.launching {
				gtx = gtx.Disabled()
			}
			return material.Button(ui.th, &ui.launchBtn, "Launch Feed").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Button(ui.th, &ui.explorerBtn, "Open Existing Trace").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return material.Body2(ui.th, ui.errMsg).Layout(gtx)
		}),
	)
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	if ui.status.Mode != backend.ModeNone {
		return ui.layoutMainArea(gtx)
	}
	return ui.layoutStartScreen(gtx)
}

// swatch draws a square of col.
func swatch(gtx C, col color.NRGBA, side unit.Dp) D {
	sz := image.Pt(gtx.Dp(side), gtx.Dp(side))
	paint.FillShape(gtx.Ops, col, clip.Rect{Max: sz}.Op())
	return D{Size: sz}
}

func alignEnd(l material.LabelStyle) material.LabelStyle {
	l.Alignment = text.End
	return l
}

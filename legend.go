package main

import (
	"fmt"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"git.sr.ht/~whereswaldon/emchart/chart"
)

// legendValue formats the value of label nearest the centred slot.
func (ui *UI) legendValue(label string) string {
	if ui.position < 0 {
		return "-"
	}
	v, err := ui.chart.Data().Closest(ui.position, label)
	if err != nil || v == chart.NoValue {
		return "-"
	}
	return fmt.Sprintf("%d", v)
}

func (ui *UI) layoutLegend(gtx C) D {
	th := ui.th
	table := component.Table(th, &ui.legend)
	table.HScrollbarStyle.Indicator.MinorWidth = 0
	table.HScrollbarStyle.Track.MinorPadding = 0
	table.VScrollbarStyle.Indicator.MinorWidth = 0
	table.VScrollbarStyle.Track.MinorPadding = 0
	colorColWidth := gtx.Dp(50)
	valueColWidth := gtx.Dp(100)
	nameColWidth := gtx.Constraints.Max.X - colorColWidth - valueColWidth - gtx.Dp(table.VScrollbarStyle.Width())
	rowHeight := gtx.Sp(20)
	const (
		colorCol = iota
		labelCol
		valueCol
		numCols
	)
	return table.Layout(gtx, len(ui.labels), numCols,
		func(axis layout.Axis, index, constraint int) int {
			if axis == layout.Vertical {
				return min(constraint, rowHeight)
			}
			var size int
			switch index {
			case colorCol:
				size = colorColWidth
			case labelCol:
				size = nameColWidth
			case valueCol:
				size = valueColWidth
			}
			return min(max(size, 0), constraint)
		},
		func(gtx C, index int) D {
			var l material.LabelStyle
			switch index {
			case colorCol:
				l = material.Body1(th, "Color")
			case labelCol:
				l = material.Body1(th, "Label")
				l.Alignment = text.Middle
			case valueCol:
				l = alignEnd(material.Body1(th, "Value"))
			default:
				l = material.Body1(th, "???")
			}
			l.Color = th.ContrastFg
			return layout.Background{}.Layout(gtx,
				func(gtx C) D {
					paint.FillShape(gtx.Ops, th.ContrastBg, clip.Rect{Max: gtx.Constraints.Max}.Op())
					return D{Size: gtx.Constraints.Min}
				}, l.Layout,
			)
		},
		func(gtx C, row, col int) (dims D) {
			defer func() {
				dims.Size = gtx.Constraints.Constrain(dims.Size)
			}()
			label := ui.labels[row]
			return layout.UniformInset(2).Layout(gtx, func(gtx C) D {
				switch col {
				case colorCol:
					return layout.Center.Layout(gtx, func(gtx C) D {
						return swatch(gtx, ui.chart.CurveColor(label), 10)
					})
				case labelCol:
					return material.Body2(th, label).Layout(gtx)
				case valueCol:
					return alignEnd(material.Body2(th, ui.legendValue(label))).Layout(gtx)
				default:
					return material.Body2(th, "???").Layout(gtx)
				}
			})
		},
	)
}

package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"LocalNotebook/internal/editor"
	"LocalNotebook/internal/input"
	"LocalNotebook/internal/state"
)

// Stroke widths offered by the size picker.
var widths = []struct {
	Label string
	Width float64
}{
	{"Thin", 2},
	{"Medium", 4},
	{"Thick", 8},
}

// Palette order in the toolbar.
var swatches = []state.Color{state.Black, state.Blue, state.Red, state.Green, state.Yellow, state.Purple}

func toColor(c state.Color) color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Color    state.Color
	OnTapped func(state.Color)
}

func newColorSwatch(c state.Color, tapped func(state.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(toColor(s.Color))
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// NewToolbar builds the tool, colour, size and zoom controls for page.
func NewToolbar(page *PageWidget) fyne.CanvasObject {
	toolLabel := widget.NewLabel("")
	setTool := func(t state.Tool) {
		page.Do(func(s *editor.Session) {
			if err := s.SetTool(t); err != nil {
				page.SetStatus(err.Error())
				return
			}
			toolLabel.SetText(string(t))
		})
	}
	page.Do(func(s *editor.Session) { toolLabel.SetText(string(s.ToolConfig().Tool)) })

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() { setTool(state.ToolPen) }),
		widget.NewToolbarAction(theme.ColorPaletteIcon(), func() { setTool(state.ToolHighlighter) }),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() { setTool(state.ToolEraser) }),
	)

	onColorTapped := func(c state.Color) {
		page.Do(func(s *editor.Session) { s.SetColor(c) })
	}
	colorBox := container.NewHBox()
	for _, c := range swatches {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}

	labels := make([]string, len(widths))
	for i, w := range widths {
		labels[i] = w.Label
	}
	size := widget.NewSelect(labels, func(label string) {
		for _, w := range widths {
			if w.Label == label {
				page.Do(func(s *editor.Session) {
					if err := s.SetStrokeWidth(w.Width); err != nil {
						page.SetStatus(err.Error())
					}
				})
			}
		}
	})
	size.SetSelected(widthLabel(page))

	zoomLabel := widget.NewLabel("")
	zoom := widget.NewSlider(input.MinZoom, input.MaxZoom)
	zoom.Step = 10
	zoom.OnChanged = func(v float64) {
		page.Do(func(s *editor.Session) { s.SetZoom(v) })
		zoomLabel.SetText(fmt.Sprintf("%.0f%%", v))
	}
	page.mu.Lock()
	initial := page.session.Viewport().Zoom
	page.mu.Unlock()
	zoom.SetValue(initial)
	zoomBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(140, 35)), zoom)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		toolLabel,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		size,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomBox,
		zoomLabel,
		layout.NewSpacer(),
	)
}

func widthLabel(page *PageWidget) string {
	var label string
	page.mu.Lock()
	w := page.session.ToolConfig().Width
	page.mu.Unlock()
	for _, opt := range widths {
		if opt.Width == w {
			label = opt.Label
		}
	}
	return label
}

package ui

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"LocalNotebook/internal/editor"
	"LocalNotebook/internal/input"
	"LocalNotebook/internal/render"
	"LocalNotebook/internal/state"
)

// Touch pointers get IDs above the mouse so both can be captured at once.
const (
	mousePointer = 0
	touchPointer = 1
)

// PageWidget is the writing surface. Mouse and pen input draws, finger
// input scrolls the page.
//
// fyne's mobile driver does not say which tool made a touch, so every
// touch arrives as a finger and only pans. Drawing on a tablet needs a
// driver that reports the pointer type.
type PageWidget struct {
	widget.BaseWidget
	mu       sync.Mutex
	session  *editor.Session
	pressed  bool
	touching bool
	last     fyne.Position
	status   *widget.Label
}

var _ fyne.Widget = (*PageWidget)(nil)
var _ fyne.Draggable = (*PageWidget)(nil)
var _ fyne.Scrollable = (*PageWidget)(nil)
var _ desktop.Mouseable = (*PageWidget)(nil)
var _ mobile.Touchable = (*PageWidget)(nil)

func NewPageWidget(s *editor.Session) *PageWidget {
	p := &PageWidget{
		session: s,
		status:  widget.NewLabel("Ready"),
	}
	s.OnWarning = func(err error) {
		p.SetStatus("Not saved: " + err.Error())
	}
	p.ExtendBaseWidget(p)
	return p
}

// Status is the label that shows save warnings.
func (p *PageWidget) Status() *widget.Label { return p.status }

func (p *PageWidget) SetStatus(text string) {
	p.status.SetText(text)
}

// Do runs fn with the session locked and redraws afterwards.
func (p *PageWidget) Do(fn func(s *editor.Session)) {
	p.mu.Lock()
	fn(p.session)
	p.mu.Unlock()
	p.Refresh()
}

func toPoint(pos fyne.Position) state.Point {
	return state.Point{X: float64(pos.X), Y: float64(pos.Y)}
}

func (p *PageWidget) dispatch(ev input.Event) {
	p.mu.Lock()
	res := p.session.Handle(ev)
	p.mu.Unlock()

	if res.Warning == nil && res.Changed {
		p.SetStatus("Saved")
	}
	if res.Redraw {
		p.Refresh()
	}
}

func (p *PageWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	p.pressed = true
	p.last = e.Position
	p.dispatch(input.Event{PointerID: mousePointer, Source: input.SourceMouse, Phase: input.PhaseDown, Position: toPoint(e.Position)})
}

func (p *PageWidget) MouseUp(e *desktop.MouseEvent) {
	if !p.pressed || e.Button != desktop.MouseButtonPrimary {
		return
	}
	p.pressed = false
	p.dispatch(input.Event{PointerID: mousePointer, Source: input.SourceMouse, Phase: input.PhaseUp, Position: toPoint(e.Position)})
}

func (p *PageWidget) Dragged(e *fyne.DragEvent) {
	switch {
	case p.touching:
		p.dispatch(input.Event{PointerID: touchPointer, Source: input.SourceFinger, Phase: input.PhaseMove, Position: toPoint(e.Position)})
	case p.pressed:
		p.last = e.Position
		p.dispatch(input.Event{PointerID: mousePointer, Source: input.SourceMouse, Phase: input.PhaseMove, Position: toPoint(e.Position)})
	}
}

// DragEnd finishes a mouse gesture at the last dragged position, which
// matters when the button is released outside the widget.
func (p *PageWidget) DragEnd() {
	if !p.pressed {
		return
	}
	p.pressed = false
	p.dispatch(input.Event{PointerID: mousePointer, Source: input.SourceMouse, Phase: input.PhaseUp, Position: toPoint(p.last)})
}

func (p *PageWidget) TouchDown(e *mobile.TouchEvent) {
	p.touching = true
	p.dispatch(input.Event{PointerID: touchPointer, Source: input.SourceFinger, Phase: input.PhaseDown, Position: toPoint(e.Position)})
}

func (p *PageWidget) TouchUp(e *mobile.TouchEvent) {
	p.touching = false
	p.dispatch(input.Event{PointerID: touchPointer, Source: input.SourceFinger, Phase: input.PhaseUp, Position: toPoint(e.Position)})
}

func (p *PageWidget) TouchCancel(e *mobile.TouchEvent) {
	p.touching = false
	p.dispatch(input.Event{PointerID: touchPointer, Source: input.SourceFinger, Phase: input.PhaseCancel, Position: toPoint(e.Position)})
}

func (p *PageWidget) Scrolled(e *fyne.ScrollEvent) {
	p.mu.Lock()
	p.session.Pan(float64(e.Scrolled.DX), float64(e.Scrolled.DY))
	p.mu.Unlock()
	p.Refresh()
}

func (p *PageWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &pageRenderer{page: p}
	r.background = canvas.NewRectangle(color.NRGBA{R: 229, G: 231, B: 235, A: 255})
	r.sheet = canvas.NewImageFromImage(nil)
	r.sheet.FillMode = canvas.ImageFillStretch
	r.sheet.ScaleMode = canvas.ImageScalePixels
	return r
}

type pageRenderer struct {
	page       *PageWidget
	background *canvas.Rectangle
	sheet      *canvas.Image
	size       fyne.Size
}

func (r *pageRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.sheet}
}

// Refresh redraws the whole page, stroke in progress included.
func (r *pageRenderer) Refresh() {
	r.page.mu.Lock()
	img, err := r.page.session.Frame()
	view := r.page.session.Viewport()
	r.page.mu.Unlock()

	switch {
	case errors.Is(err, render.ErrNoSurface):
		return
	case err != nil:
		log.Errorf("Rendering page failed: %v", err)
		return
	}
	r.sheet.Image = img
	b := img.Bounds()
	r.sheet.Resize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	at := view.ToDevice(state.Point{})
	r.sheet.Move(fyne.NewPos(float32(at.X), float32(at.Y)))
	r.background.Resize(r.size)
	canvas.Refresh(r.sheet)
}

func (r *pageRenderer) Layout(size fyne.Size) {
	r.size = size
	r.background.Resize(size)
	r.Refresh()
}

func (r *pageRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *pageRenderer) Destroy() {}

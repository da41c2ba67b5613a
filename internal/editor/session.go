// Package editor runs the drawing session of the page being edited: it
// routes pointer input to the recorder, the eraser or the viewport, keeps
// the page's stroke list and writes it back after every gesture.
package editor

import (
	"image"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"LocalNotebook/internal/input"
	"LocalNotebook/internal/render"
	"LocalNotebook/internal/state"
	"LocalNotebook/internal/store"
)

// Result tells the caller what an input event did.
type Result struct {
	// Changed is set when the page's stroke list was modified.
	Changed bool
	// Redraw is set when the visible frame is stale.
	Redraw bool
	Panned bool
	// Warning carries a persistence failure. The in-memory page is intact.
	Warning error
}

// Session is not safe for concurrent use; callers serialize events.
type Session struct {
	cfg      state.ToolConfig
	gesture  state.ToolConfig
	view     input.Viewport
	template state.Template

	pageID  string
	strokes []state.Stroke

	rec     state.Recorder
	eraser  *state.Eraser
	erasing bool
	capture *input.Capture
	panLast map[int]state.Point

	store    store.PageStore
	renderer *render.Renderer

	// OnContentChange receives the serialized page after each saved change.
	OnContentChange func(pageID, content string)
	// OnWarning receives recoverable failures such as a rejected save.
	OnWarning func(err error)
}

type Option func(*Session)

// WithIndex replaces the eraser's proximity index.
func WithIndex(idx state.Index) Option {
	return func(s *Session) { s.eraser = state.NewEraser(idx) }
}

func WithRenderer(r *render.Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

func WithViewport(v input.Viewport) Option {
	return func(s *Session) { s.view = v }
}

// DefaultToolConfig matches the initial toolbar state: black medium pen.
func DefaultToolConfig() state.ToolConfig {
	return state.ToolConfig{Tool: state.ToolPen, Color: state.Black, Width: 4}
}

func NewSession(ps store.PageStore, cfg state.ToolConfig, opts ...Option) *Session {
	if cfg.Validate() != nil {
		cfg = DefaultToolConfig()
	}
	s := &Session{
		cfg:      cfg,
		view:     input.NewViewport(),
		template: state.TemplateRuled,
		eraser:   state.NewEraser(nil),
		capture:  input.NewCapture(),
		panLast:  make(map[int]state.Point),
		store:    ps,
		renderer: render.NewRenderer(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// OpenPage makes pageID current, loading its strokes once. Anything not
// saved for the previous page is dropped with the in-progress gesture.
func (s *Session) OpenPage(pageID string, t state.Template) {
	s.abortGestures()
	s.pageID = pageID
	s.template = t.Or(state.TemplateRuled)
	strokes, ok := s.store.Load(pageID)
	if !ok {
		strokes = []state.Stroke{}
	}
	s.strokes = strokes
	log.Debugf("Opened page %s with %d strokes", pageID, len(strokes))
}

// Close resets per-view state, as when the editor is unmounted.
func (s *Session) Close() {
	s.abortGestures()
	s.pageID = ""
	s.strokes = nil
}

func (s *Session) abortGestures() {
	s.rec.Cancel()
	s.erasing = false
	s.capture.Reset()
	s.panLast = make(map[int]state.Point)
}

func (s *Session) PageID() string { return s.pageID }

func (s *Session) Template() state.Template { return s.template }

func (s *Session) SetTemplate(t state.Template) {
	s.template = t.Or(s.template)
}

// Strokes returns a copy of the current page's finalized strokes.
func (s *Session) Strokes() []state.Stroke {
	return append([]state.Stroke(nil), s.strokes...)
}

func (s *Session) ToolConfig() state.ToolConfig { return s.cfg }

// SetToolConfig changes the tool used by the next gesture. A gesture in
// progress keeps the configuration it started with.
func (s *Session) SetToolConfig(cfg state.ToolConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	return nil
}

func (s *Session) SetTool(t state.Tool) error {
	cfg := s.cfg
	cfg.Tool = t
	return s.SetToolConfig(cfg)
}

func (s *Session) SetColor(c state.Color) {
	s.cfg.Color = c
}

func (s *Session) SetStrokeWidth(w float64) error {
	cfg := s.cfg
	cfg.Width = w
	return s.SetToolConfig(cfg)
}

func (s *Session) Viewport() input.Viewport { return s.view }

func (s *Session) SetZoom(zoom float64) { s.view.SetZoom(zoom) }

func (s *Session) SetOrigin(p state.Point) { s.view.Origin = p }

// Drawing reports whether a stroke is in progress.
func (s *Session) Drawing() bool { return s.rec.Drawing() }

// Handle applies one pointer event.
func (s *Session) Handle(ev input.Event) Result {
	switch input.RouteFor(ev.Source) {
	case input.RoutePan:
		return s.handlePan(ev)
	case input.RouteDraw:
		if s.pageID == "" {
			return Result{}
		}
		return s.handleDraw(ev)
	default:
		log.Debugf("Ignoring event from unclassified source %v", ev.Source)
		return Result{}
	}
}

func (s *Session) handlePan(ev input.Event) Result {
	switch ev.Phase {
	case input.PhaseDown:
		if s.capture.Acquire(input.RoutePan, ev.PointerID) {
			s.panLast[ev.PointerID] = ev.Position
		}
	case input.PhaseMove:
		if !s.capture.Owns(input.RoutePan, ev.PointerID) {
			return Result{}
		}
		last := s.panLast[ev.PointerID]
		s.view.Pan(ev.Position.X-last.X, ev.Position.Y-last.Y)
		s.panLast[ev.PointerID] = ev.Position
		return Result{Panned: true, Redraw: true}
	case input.PhaseUp, input.PhaseCancel:
		if s.capture.Release(input.RoutePan, ev.PointerID) {
			delete(s.panLast, ev.PointerID)
		}
	}
	return Result{}
}

// Pan scrolls the viewport directly, e.g. from a scroll wheel.
func (s *Session) Pan(dx, dy float64) Result {
	s.view.Pan(dx, dy)
	return Result{Panned: true, Redraw: true}
}

func (s *Session) handleDraw(ev input.Event) Result {
	p := s.view.ToPage(ev.Position)
	switch ev.Phase {
	case input.PhaseDown:
		// A press while a gesture is live belongs to that gesture.
		if s.rec.Drawing() || s.erasing {
			return Result{}
		}
		held := s.capture.Owns(input.RouteDraw, ev.PointerID)
		if !s.capture.Acquire(input.RouteDraw, ev.PointerID) {
			return Result{}
		}
		s.gesture = s.cfg
		if s.gesture.Tool == state.ToolEraser {
			s.erasing = true
			return s.eraseAt(p)
		}
		if err := s.rec.Begin(s.gesture, p); err != nil {
			log.Warnf("Could not start stroke: %v", err)
			if !held {
				s.capture.Release(input.RouteDraw, ev.PointerID)
			}
			return Result{}
		}
		return Result{Redraw: true}

	case input.PhaseMove:
		if !s.capture.Owns(input.RouteDraw, ev.PointerID) {
			return Result{}
		}
		if s.erasing {
			return s.eraseAt(p)
		}
		if err := s.rec.Extend(p); err != nil {
			return Result{}
		}
		return Result{Redraw: true}

	case input.PhaseUp:
		if !s.capture.Release(input.RouteDraw, ev.PointerID) {
			return Result{}
		}
		if s.erasing {
			s.erasing = false
			return Result{}
		}
		stroke, ok := s.rec.Finish()
		if !ok {
			return Result{Redraw: true}
		}
		next := make([]state.Stroke, len(s.strokes), len(s.strokes)+1)
		copy(next, s.strokes)
		s.strokes = append(next, stroke)
		res := s.persist()
		res.Changed, res.Redraw = true, true
		return res

	case input.PhaseCancel:
		if !s.capture.Release(input.RouteDraw, ev.PointerID) {
			return Result{}
		}
		s.erasing = false
		drawing := s.rec.Drawing()
		s.rec.Cancel()
		return Result{Redraw: drawing}
	}
	return Result{}
}

func (s *Session) eraseAt(p state.Point) Result {
	out, changed := s.eraser.Erase(s.strokes, p, s.gesture.Width)
	if !changed {
		return Result{}
	}
	s.strokes = out
	res := s.persist()
	res.Changed, res.Redraw = true, true
	return res
}

// ClearPage removes every stroke from the current page.
func (s *Session) ClearPage() Result {
	if s.pageID == "" || len(s.strokes) == 0 {
		return Result{}
	}
	s.strokes = []state.Stroke{}
	res := s.persist()
	res.Changed, res.Redraw = true, true
	return res
}

// persist writes the current list to the store. A failed save never undoes
// the in-memory change; it is reported as a warning instead.
func (s *Session) persist() Result {
	if err := s.store.Save(s.pageID, s.strokes); err != nil {
		log.Errorf("Saving page %s failed: %v", s.pageID, err)
		if s.OnWarning != nil {
			s.OnWarning(err)
		}
		return Result{Warning: err}
	}
	if s.OnContentChange != nil {
		content, err := state.EncodeStrokes(s.strokes)
		if err == nil {
			s.OnContentChange(s.pageID, content)
		}
	}
	return Result{}
}

// Frame renders the page with the stroke in progress drawn on top.
// ErrNoSurface means there is nothing to draw yet and is not a failure.
func (s *Session) Frame() (*image.RGBA, error) {
	sc := render.Scene{
		Template: s.template,
		Strokes:  s.strokes,
		Zoom:     s.view.Zoom,
	}
	if live, ok := s.rec.Current(); ok {
		sc.Live = &live
	}
	img, err := s.renderer.Render(sc)
	if errors.Is(err, render.ErrNoSurface) {
		log.Debug("Skipping frame, no surface")
	}
	return img, err
}

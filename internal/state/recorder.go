package state

import "github.com/pkg/errors"

var (
	ErrGestureActive = errors.New("a stroke is already being drawn")
	ErrNotDrawing    = errors.New("no stroke is being drawn")
	ErrNotDrawTool   = errors.New("tool does not draw strokes")
)

// Recorder accumulates points into the in-progress stroke of one gesture.
// It is idle until Begin and returns to idle on Finish or Cancel.
type Recorder struct {
	current *Stroke
}

func (r *Recorder) Drawing() bool {
	return r.current != nil
}

// Begin starts a stroke at p using the attributes in cfg. cfg is copied, so
// later tool changes never reach the stroke being drawn.
func (r *Recorder) Begin(cfg ToolConfig, p Point) error {
	if r.current != nil {
		return ErrGestureActive
	}
	if !cfg.Tool.Draws() {
		return ErrNotDrawTool
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.current = &Stroke{
		Points: []Point{p},
		Tool:   cfg.Kind(),
		Color:  cfg.Color,
		Width:  cfg.Width,
		Alpha:  cfg.Alpha(),
	}
	return nil
}

// Extend appends p as received. No smoothing or de-duplication is applied.
func (r *Recorder) Extend(p Point) error {
	if r.current == nil {
		return ErrNotDrawing
	}
	r.current.Points = append(r.current.Points, p)
	return nil
}

// Finish ends the gesture. ok is false when there was nothing to keep.
func (r *Recorder) Finish() (s Stroke, ok bool) {
	if r.current == nil {
		return Stroke{}, false
	}
	s = *r.current
	r.current = nil
	if len(s.Points) == 0 {
		return Stroke{}, false
	}
	return s, true
}

// Cancel drops the in-progress stroke without committing any of it.
func (r *Recorder) Cancel() {
	r.current = nil
}

// Current returns a copy of the in-progress stroke for rendering.
func (r *Recorder) Current() (Stroke, bool) {
	if r.current == nil {
		return Stroke{}, false
	}
	return r.current.Clone(), true
}

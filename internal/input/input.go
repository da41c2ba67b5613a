// Package input classifies pointer events by device and maps them from
// screen space onto the page.
package input

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"LocalNotebook/internal/state"
)

var ErrUnknownSource = errors.New("unknown pointer source")

// Source is the kind of device that produced a pointer event.
type Source int

const (
	SourceStylus Source = iota + 1
	SourceMouse
	SourceFinger
)

func (s Source) String() string {
	switch s {
	case SourceStylus:
		return "stylus"
	case SourceMouse:
		return "mouse"
	case SourceFinger:
		return "finger"
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// Classify maps a raw pointer type as reported by a platform onto a Source.
func Classify(pointerType string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(pointerType)) {
	case "pen", "stylus":
		return SourceStylus, nil
	case "mouse":
		return SourceMouse, nil
	case "touch", "finger":
		return SourceFinger, nil
	}
	return 0, errors.Wrapf(ErrUnknownSource, "%q", pointerType)
}

// Route is what a pointer's events are used for.
type Route int

const (
	RouteNone Route = iota
	RouteDraw
	RoutePan
)

// RouteFor sends stylus and mouse input to drawing/erasing and finger input
// to panning only, so a resting hand never marks the page.
func RouteFor(s Source) Route {
	switch s {
	case SourceStylus, SourceMouse:
		return RouteDraw
	case SourceFinger:
		return RoutePan
	default:
		return RouteNone
	}
}

// Phase is the step of a gesture an event belongs to.
type Phase int

const (
	PhaseDown Phase = iota + 1
	PhaseMove
	PhaseUp
	PhaseCancel
)

// Event is a single pointer event in device coordinates.
type Event struct {
	PointerID int
	Source    Source
	Phase     Phase
	Position  state.Point
}

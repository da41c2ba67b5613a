package input

import (
	"LocalNotebook/internal/state"
)

const (
	MinZoom     = 50
	MaxZoom     = 200
	DefaultZoom = 100
)

// Viewport describes where the page surface sits on screen.
// Origin is the on-screen position of the surface, Scroll the pan offset
// in device pixels and Zoom a percentage.
type Viewport struct {
	Origin state.Point
	Scroll state.Point
	Zoom   float64
}

func NewViewport() Viewport {
	return Viewport{Zoom: DefaultZoom}
}

// Scale is the factor from page units to device pixels.
func (v Viewport) Scale() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom / 100
}

// ToPage converts a device position into zoom-independent page coordinates.
func (v Viewport) ToPage(device state.Point) state.Point {
	s := v.Scale()
	return state.Point{
		X: (device.X - v.Origin.X + v.Scroll.X) / s,
		Y: (device.Y - v.Origin.Y + v.Scroll.Y) / s,
	}
}

// ToDevice is the inverse of ToPage.
func (v Viewport) ToDevice(page state.Point) state.Point {
	s := v.Scale()
	return state.Point{
		X: page.X*s + v.Origin.X - v.Scroll.X,
		Y: page.Y*s + v.Origin.Y - v.Scroll.Y,
	}
}

// Pan moves the content by the device delta: dragging right reveals what
// is to the left.
func (v *Viewport) Pan(dx, dy float64) {
	v.Scroll.X -= dx
	v.Scroll.Y -= dy
}

// SetZoom clamps zoom to the supported range.
func (v *Viewport) SetZoom(zoom float64) {
	switch {
	case zoom < MinZoom:
		zoom = MinZoom
	case zoom > MaxZoom:
		zoom = MaxZoom
	}
	v.Zoom = zoom
}

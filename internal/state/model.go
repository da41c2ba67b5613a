package state

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// HighlighterAlpha is the opacity every highlighter stroke is recorded with.
const HighlighterAlpha = 0.3

var ErrInvalidStroke = errors.New("invalid stroke")

// Point is a position in unscaled page coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Tool is what the pointer does on the page.
type Tool string

const (
	ToolPen         Tool = "pen"
	ToolEraser      Tool = "eraser"
	ToolHighlighter Tool = "highlighter"
)

func (t Tool) Valid() bool {
	switch t {
	case ToolPen, ToolEraser, ToolHighlighter:
		return true
	}
	return false
}

// Draws reports whether the tool records strokes.
func (t Tool) Draws() bool {
	return t == ToolPen || t == ToolHighlighter
}

// StrokeKind is the tool a finalized stroke was recorded with.
type StrokeKind string

const (
	KindPen         StrokeKind = "pen"
	KindEraserMark  StrokeKind = "eraser-mark"
	KindHighlighter StrokeKind = "highlighter"
)

func (k StrokeKind) Valid() bool {
	switch k {
	case KindPen, KindEraserMark, KindHighlighter:
		return true
	}
	return false
}

// Color is an opaque RGB value.
type Color struct {
	R, G, B uint8
}

var (
	Black  = Color{0x00, 0x00, 0x00}
	Blue   = Color{0x25, 0x63, 0xeb}
	Red    = Color{0xdc, 0x26, 0x26}
	Green  = Color{0x16, 0xa3, 0x4a}
	Yellow = Color{0xea, 0xb3, 0x08}
	Purple = Color{0x93, 0x33, 0xea}
)

// Palette holds the named colours offered by the toolbar.
var Palette = map[string]Color{
	"black":  Black,
	"blue":   Blue,
	"red":    Red,
	"green":  Green,
	"yellow": Yellow,
	"purple": Purple,
}

// ParseColor accepts "#rgb", "#rrggbb" or a palette name.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := Palette[s]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 || !strings.HasPrefix(s, "#") {
		return Color{}, errors.Errorf("unrecognized color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, errors.Wrapf(err, "unrecognized color %q", s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Stroke is one continuous mark. It is never modified once finalized.
type Stroke struct {
	Points []Point    `json:"points"`
	Tool   StrokeKind `json:"tool"`
	Color  Color      `json:"color"`
	Width  float64    `json:"width"`
	Alpha  float64    `json:"alpha"`
}

func (s Stroke) Validate() error {
	switch {
	case len(s.Points) == 0:
		return errors.Wrap(ErrInvalidStroke, "no points")
	case !s.Tool.Valid():
		return errors.Wrapf(ErrInvalidStroke, "tool %q", s.Tool)
	case !(s.Width > 0):
		return errors.Wrapf(ErrInvalidStroke, "width %v", s.Width)
	case s.Alpha < 0 || s.Alpha > 1 || math.IsNaN(s.Alpha):
		return errors.Wrapf(ErrInvalidStroke, "alpha %v", s.Alpha)
	}
	return nil
}

// Bounds returns the box covering every point of the stroke.
func (s Stroke) Bounds() Rect {
	if len(s.Points) == 0 {
		return Rect{}
	}
	r := Rect{Min: s.Points[0], Max: s.Points[0]}
	for _, p := range s.Points[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// Rect is an axis-aligned box in page coordinates.
type Rect struct {
	Min, Max Point
}

// Inset grows the box by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{
		Min: Point{r.Min.X - d, r.Min.Y - d},
		Max: Point{r.Max.X + d, r.Max.Y + d},
	}
}

func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// ToolConfig is the tool state captured when a gesture starts.
type ToolConfig struct {
	Tool  Tool
	Color Color
	Width float64
}

func (c ToolConfig) Validate() error {
	if !c.Tool.Valid() {
		return errors.Errorf("unknown tool %q", c.Tool)
	}
	if !(c.Width > 0) || math.IsInf(c.Width, 0) {
		return errors.Errorf("stroke width must be positive, got %v", c.Width)
	}
	return nil
}

func (c ToolConfig) Alpha() float64 {
	if c.Tool == ToolHighlighter {
		return HighlighterAlpha
	}
	return 1.0
}

// Kind maps the drawing tool onto the recorded stroke kind.
func (c ToolConfig) Kind() StrokeKind {
	switch c.Tool {
	case ToolHighlighter:
		return KindHighlighter
	case ToolEraser:
		return KindEraserMark
	default:
		return KindPen
	}
}

// Clone returns a copy that shares no point storage with s.
func (s Stroke) Clone() Stroke {
	s.Points = append([]Point(nil), s.Points...)
	return s
}

// Template is the guide pattern printed behind a page.
type Template string

const (
	TemplateBlank Template = "blank"
	TemplateRuled Template = "ruled"
	TemplateGrid  Template = "grid"
)

func (t Template) Valid() bool {
	switch t {
	case TemplateBlank, TemplateRuled, TemplateGrid:
		return true
	}
	return false
}

// Or returns t, or fallback when t is empty or unknown.
func (t Template) Or(fallback Template) Template {
	if t.Valid() {
		return t
	}
	return fallback
}

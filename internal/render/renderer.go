// Package render rasterizes notebook pages: background, template guides
// and strokes, in that order.
package render

import (
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"
	"github.com/pkg/errors"

	"LocalNotebook/internal/state"
)

// Page geometry follows A4 proportions.
const (
	PageWidth   = 800.0
	PageHeight  = PageWidth * 1.414
	LineSpacing = 30.0
	GuideColor  = "#e5e7eb"
)

// ErrNoSurface is returned when there is nothing to draw on, e.g. before the
// widget has been laid out.
var ErrNoSurface = errors.New("drawing surface unavailable")

// Scene is everything that appears on screen for one page.
type Scene struct {
	Template state.Template
	Strokes  []state.Stroke
	// Live is the stroke still being drawn; it is painted last.
	Live *state.Stroke
	Zoom float64
}

type Renderer struct {
	PageWidth   float64
	PageHeight  float64
	LineSpacing float64
	GuideColor  gg.RGBA
	GuideWidth  float64
	// Options are passed to every drawing context, e.g. gg.WithRenderer.
	Options []gg.ContextOption
}

func NewRenderer() *Renderer {
	return &Renderer{
		PageWidth:   PageWidth,
		PageHeight:  PageHeight,
		LineSpacing: LineSpacing,
		GuideColor:  gg.Hex(GuideColor),
		GuideWidth:  1,
	}
}

func scaleOf(zoom float64) float64 {
	if zoom <= 0 {
		return 1
	}
	return zoom / 100
}

// Size is the pixel size of the page at the given zoom.
func (r *Renderer) Size(zoom float64) (w, h int) {
	s := scaleOf(zoom)
	return int(math.Round(r.PageWidth * s)), int(math.Round(r.PageHeight * s))
}

// Render draws the scene from scratch.
func (r *Renderer) Render(sc Scene) (*image.RGBA, error) {
	dc, err := r.draw(sc)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	if err := dc.FlushGPU(); err != nil {
		return nil, errors.Wrap(err, "flush")
	}
	return toRGBA(dc.Image()), nil
}

// RenderPNG draws the scene and writes it to w as a PNG.
func (r *Renderer) RenderPNG(sc Scene, w io.Writer) error {
	dc, err := r.draw(sc)
	if err != nil {
		return err
	}
	defer dc.Close()
	return dc.EncodePNG(w)
}

func (r *Renderer) draw(sc Scene) (*gg.Context, error) {
	w, h := r.Size(sc.Zoom)
	if w <= 0 || h <= 0 {
		return nil, ErrNoSurface
	}
	s := scaleOf(sc.Zoom)
	dc := gg.NewContext(w, h, r.Options...)
	dc.ClearWithColor(gg.White)
	if err := r.paint(dc, sc, s); err != nil {
		dc.Close()
		return nil, err
	}
	return dc, nil
}

// paint stops at the first rasterizer error.
func (r *Renderer) paint(dc *gg.Context, sc Scene, s float64) error {
	if err := r.drawTemplate(dc, sc.Template, s); err != nil {
		return errors.Wrapf(err, "template %s", sc.Template)
	}
	for i, st := range sc.Strokes {
		if err := drawStroke(dc, st, s); err != nil {
			return errors.Wrapf(err, "stroke %d", i)
		}
	}
	if sc.Live != nil {
		if err := drawStroke(dc, *sc.Live, s); err != nil {
			return errors.Wrap(err, "live stroke")
		}
	}
	return nil
}

func (r *Renderer) drawTemplate(dc *gg.Context, t state.Template, s float64) error {
	if t == state.TemplateBlank || !(r.LineSpacing > 0) {
		return nil
	}
	w, h := float64(dc.Width()), float64(dc.Height())
	step := r.LineSpacing * s
	dc.SetColor(r.GuideColor.Color())
	dc.SetLineWidth(r.GuideWidth)
	dc.SetLineCap(gg.LineCapButt)
	for y := step; y < h; y += step {
		dc.DrawLine(0, y, w, y)
	}
	if t == state.TemplateGrid {
		for x := step; x < w; x += step {
			dc.DrawLine(x, 0, x, h)
		}
	}
	return dc.Stroke()
}

func drawStroke(dc *gg.Context, st state.Stroke, s float64) error {
	if len(st.Points) == 0 {
		return nil
	}
	c := st.Color
	dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, st.Alpha)
	width := st.Width * s
	if len(st.Points) == 1 {
		p := st.Points[0]
		dc.DrawCircle(p.X*s, p.Y*s, width/2)
		return dc.Fill()
	}
	dc.SetLineWidth(width)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.MoveTo(st.Points[0].X*s, st.Points[0].Y*s)
	for _, p := range st.Points[1:] {
		dc.LineTo(p.X*s, p.Y*s)
	}
	return dc.Stroke()
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

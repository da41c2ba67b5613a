// Package export renders whole notebooks to printable files.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"LocalNotebook/internal/notebook"
	"LocalNotebook/internal/render"
	"LocalNotebook/internal/state"
)

// A4 sheet in millimetres.
const (
	sheetWidth  = 210.0
	sheetHeight = 297.0
	margin      = 10.0
)

// DefaultZoom gives pages enough pixels to print sharply.
const DefaultZoom = 150

// PDF writes one raster image per notebook page to w.
func PDF(w io.Writer, nb *notebook.Notebook, r *render.Renderer, zoom float64) error {
	if len(nb.Pages) == 0 {
		return errors.Errorf("notebook %s has no pages", nb.ID)
	}
	if r == nil {
		r = render.NewRenderer()
	}
	if zoom <= 0 {
		zoom = DefaultZoom
	}

	p := gofpdf.New("P", "mm", "A4", "")
	p.SetTitle(nb.Title, true)
	p.SetAuthor(nb.Author, true)
	p.SetSubject(nb.Subject, true)
	p.SetFont("Helvetica", "", 9)
	p.SetAutoPageBreak(false, 0)

	imgW := sheetWidth - 2*margin
	imgH := imgW * r.PageHeight / r.PageWidth
	opt := gofpdf.ImageOptions{ImageType: "PNG"}

	for _, page := range nb.Pages {
		var buf bytes.Buffer
		scene := render.Scene{
			Template: page.Template.Or(notebook.DefaultTemplate),
			Strokes:  state.ParseContent(page.Content),
			Zoom:     zoom,
		}
		if err := r.RenderPNG(scene, &buf); err != nil {
			return errors.Wrapf(err, "render page %d", page.PageNumber)
		}
		name := "page-" + page.ID
		p.RegisterImageOptionsReader(name, opt, &buf)

		p.AddPage()
		p.ImageOptions(name, margin, margin, imgW, imgH, false, opt, 0, "")
		p.SetXY(margin, sheetHeight-margin)
		footer := fmt.Sprintf("%s - %s - page %d of %d", nb.Title, nb.Subject, page.PageNumber, len(nb.Pages))
		p.CellFormat(imgW, 5, footer, "", 0, "C", false, 0, "")
		if err := p.Error(); err != nil {
			return errors.Wrapf(err, "layout page %d", page.PageNumber)
		}
	}
	return p.Output(w)
}

// PDFFile writes the notebook to path.
func PDFFile(path string, nb *notebook.Notebook, r *render.Renderer, zoom float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := PDF(f, nb, r, zoom); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Exported %q (%d pages) to %s", nb.Title, len(nb.Pages), path)
	return nil
}

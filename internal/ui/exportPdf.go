package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	log "github.com/sirupsen/logrus"
)

// showExportDialog asks for a destination and writes the open notebook to it.
func showExportDialog(win fyne.Window, ws *Workspace, page *PageWidget) {
	nb, err := ws.Notebook()
	if err != nil {
		dialog.ShowError(err, win)
		return
	}
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		if writer == nil {
			return
		}
		defer func() {
			if err := writer.Close(); err != nil {
				log.Printf("Error closing writer: %v", err)
			}
		}()

		page.mu.Lock()
		err = ws.ExportPDF(writer)
		page.mu.Unlock()
		if err != nil {
			log.Errorf("Export failed: %v", err)
			dialog.ShowError(err, win)
			return
		}
		page.SetStatus(fmt.Sprintf("Exported %d pages to %s", len(nb.Pages), writer.URI().Name()))
	}, win)
	save.SetFileName(nb.Title + ".pdf")
	save.SetFilter(storage.NewExtensionFileFilter([]string{".pdf"}))
	save.Show()
}

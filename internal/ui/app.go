package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"LocalNotebook/internal/config"
	"LocalNotebook/internal/editor"
	"LocalNotebook/internal/notebook"
	"LocalNotebook/internal/state"
)

func RunApp(cfg config.Config) error {
	myApp := app.NewWithID(cfg.AppID)
	myWindow := myApp.NewWindow("Local Notebook")
	myWindow.Resize(fyne.NewSize(1200, 860))

	ws, err := Bootstrap(myApp.Preferences(), cfg)
	if err != nil {
		return err
	}
	log.Printf("Opened notebook %s", ws.NotebookID())

	page := NewPageWidget(ws.Session)
	toolbar := NewToolbar(page)
	shelf, pages := newShelf(myWindow, ws, page), newPageBar(myWindow, ws, page)

	content := container.NewBorder(
		container.NewVBox(toolbar, pages),
		page.Status(),
		shelf, nil,
		page,
	)
	myWindow.SetContent(content)
	myWindow.SetOnClosed(func() {
		page.Do(func(s *editor.Session) { s.Close() })
	})
	myWindow.ShowAndRun()
	return nil
}

// newPageBar holds page navigation, the template picker and export.
func newPageBar(win fyne.Window, ws *Workspace, page *PageWidget) fyne.CanvasObject {
	label := widget.NewLabel(ws.PageLabel())
	templates := widget.NewSelect(
		[]string{string(state.TemplateBlank), string(state.TemplateRuled), string(state.TemplateGrid)}, nil)

	refresh := func() {
		label.SetText(ws.PageLabel())
		templates.SetSelected(string(ws.Session.Template()))
	}
	ws.OnPageOpened = refresh
	run := func(fn func() error) {
		var err error
		page.Do(func(*editor.Session) { err = fn() })
		if err != nil {
			page.SetStatus(err.Error())
		}
		refresh()
	}
	templates.OnChanged = func(t string) {
		if state.Template(t) == ws.Session.Template() {
			return
		}
		run(func() error { return ws.SetTemplate(state.Template(t)) })
	}
	refresh()

	remove := func() {
		dialog.ShowConfirm("Remove page", "Remove this page and its drawing?", func(ok bool) {
			if ok {
				run(ws.RemovePage)
			}
		}, win)
	}
	clearPage := func() {
		page.Do(func(s *editor.Session) { s.ClearPage() })
	}

	return container.NewHBox(
		widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { run(ws.Prev) }),
		label,
		widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { run(ws.Next) }),
		widget.NewButtonWithIcon("Add page", theme.ContentAddIcon(), func() { run(ws.AddPage) }),
		widget.NewButtonWithIcon("Remove page", theme.ContentRemoveIcon(), remove),
		widget.NewSeparator(),
		widget.NewLabel("Template:"),
		templates,
		widget.NewSeparator(),
		widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), clearPage),
		widget.NewButtonWithIcon("Export PDF", theme.DocumentSaveIcon(), func() {
			showExportDialog(win, ws, page)
		}),
	)
}

// newShelf lists notebooks with a search box and create/delete actions.
func newShelf(win fyne.Window, ws *Workspace, page *PageWidget) fyne.CanvasObject {
	var shown []notebook.Notebook
	search := widget.NewEntry()
	search.SetPlaceHolder("Search notebooks")

	list := widget.NewList(
		func() int { return len(shown) },
		func() fyne.CanvasObject { return widget.NewLabel("notebook") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			nb := shown[i]
			o.(*widget.Label).SetText(fmt.Sprintf("%s (%s)", nb.Title, nb.Subject))
		},
	)
	reload := func() {
		shown = ws.Repo.Search(search.Text)
		list.Refresh()
	}
	search.OnChanged = func(string) { reload() }
	list.OnSelected = func(i widget.ListItemID) {
		if i >= len(shown) || shown[i].ID == ws.NotebookID() {
			return
		}
		var err error
		page.Do(func(*editor.Session) { err = ws.Open(shown[i].ID) })
		if err != nil {
			page.SetStatus(err.Error())
		}
	}
	ws.Repo.OnChange = chainChange(ws.Repo.OnChange, func([]notebook.Notebook) {
		fyne.Do(reload)
	})
	reload()

	create := widget.NewButtonWithIcon("New", theme.ContentAddIcon(), func() {
		showNotebookForm(win, func(form notebook.Form) error {
			var err error
			page.Do(func(*editor.Session) { _, err = ws.CreateNotebook(form) })
			return err
		})
	})
	remove := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), func() {
		dialog.ShowConfirm("Delete notebook", "Delete this notebook and all of its pages?", func(ok bool) {
			if !ok {
				return
			}
			var err error
			page.Do(func(*editor.Session) { err = ws.DeleteNotebook() })
			if err != nil {
				page.SetStatus(err.Error())
			}
		}, win)
	})

	return container.NewBorder(
		container.NewVBox(widget.NewLabel("Notebooks"), search),
		container.NewHBox(create, remove),
		nil, nil,
		list,
	)
}

func chainChange(prev, next func([]notebook.Notebook)) func([]notebook.Notebook) {
	return func(all []notebook.Notebook) {
		if prev != nil {
			prev(all)
		}
		next(all)
	}
}

// showNotebookForm collects title, subject and author and keeps the dialog
// open with the field errors until submit succeeds.
func showNotebookForm(win fyne.Window, submit func(notebook.Form) error) {
	title, subject, author := widget.NewEntry(), widget.NewEntry(), widget.NewEntry()
	items := []*widget.FormItem{
		widget.NewFormItem("Title", title),
		widget.NewFormItem("Subject", subject),
		widget.NewFormItem("Author", author),
	}
	var show func()
	show = func() {
		dialog.ShowForm("New notebook", "Create", "Cancel", items, func(ok bool) {
			if !ok {
				return
			}
			err := submit(notebook.Form{Title: title.Text, Subject: subject.Text, Author: author.Text})
			if err == nil {
				return
			}
			var verr *notebook.ValidationError
			if errors.As(err, &verr) {
				for _, it := range items {
					it.HintText = ""
					for _, fe := range verr.Fields {
						if strings.EqualFold(it.Text, fe.Field) {
							it.HintText = fe.Error
						}
					}
				}
			}
			dialog.ShowError(err, win)
			show()
		}, win)
	}
	show()
}

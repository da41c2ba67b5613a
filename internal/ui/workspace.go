package ui

import (
	"fmt"
	"io"

	"fyne.io/fyne/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"LocalNotebook/internal/config"
	"LocalNotebook/internal/editor"
	"LocalNotebook/internal/export"
	"LocalNotebook/internal/notebook"
	"LocalNotebook/internal/state"
	"LocalNotebook/internal/store"
)

// Workspace tracks which notebook and page the editor shows and keeps the
// catalogue in step with the page store.
type Workspace struct {
	Repo    *notebook.Repository
	Session *editor.Session

	template   state.Template
	notebookID string
	page       int

	// OnPageOpened runs after the editor switches page.
	OnPageOpened func()
}

func NewWorkspace(repo *notebook.Repository, session *editor.Session, t state.Template) *Workspace {
	ws := &Workspace{Repo: repo, Session: session, template: t.Or(notebook.DefaultTemplate)}
	session.OnContentChange = func(pageID, content string) {
		if err := repo.SetPageContent(pageID, content); err != nil {
			log.Warnf("Page %s has no notebook: %v", pageID, err)
		}
	}
	return ws
}

// Bootstrap restores the catalogue from prefs and opens the most recently
// updated notebook, creating a first one on a fresh install.
func Bootstrap(prefs fyne.Preferences, cfg config.Config) (*Workspace, error) {
	ps := store.NewPreferencesStore(prefs)
	repo := notebook.NewRepository(nil)
	repo.Restore(ps.LoadCatalog())
	repo.OnChange = func(all []notebook.Notebook) {
		if err := ps.SaveCatalog(all); err != nil {
			log.Errorf("Saving catalog failed: %v", err)
		}
	}
	repo.OnPagesRemoved = func(ids []string) {
		for _, id := range ids {
			ps.Delete(id)
		}
	}

	tc, err := cfg.ToolConfig()
	if err != nil {
		return nil, err
	}
	session := editor.NewSession(ps, tc, editor.WithIndex(cfg.Index()))
	session.SetZoom(cfg.Zoom)
	ws := NewWorkspace(repo, session, state.Template(cfg.Template))

	all := repo.Search("")
	if len(all) == 0 {
		nb, err := repo.Create(notebook.Form{Title: "My First Notebook", Subject: "General", Author: "Me"})
		if err != nil {
			return nil, err
		}
		return ws, ws.Open(nb.ID)
	}
	return ws, ws.Open(all[0].ID)
}

// Open shows the first page of a notebook.
func (ws *Workspace) Open(notebookID string) error {
	if _, err := ws.Repo.Get(notebookID); err != nil {
		return err
	}
	ws.notebookID = notebookID
	ws.page = 0
	return ws.openCurrent()
}

func (ws *Workspace) openCurrent() error {
	nb, err := ws.Notebook()
	if err != nil {
		ws.Session.Close()
		return err
	}
	if ws.page >= len(nb.Pages) {
		ws.page = len(nb.Pages) - 1
	}
	if ws.page < 0 {
		ws.page = 0
	}
	p := nb.Pages[ws.page]
	ws.Session.OpenPage(p.ID, p.Template)
	if ws.OnPageOpened != nil {
		ws.OnPageOpened()
	}
	return nil
}

// Notebook returns a copy of the open notebook.
func (ws *Workspace) Notebook() (*notebook.Notebook, error) {
	if ws.notebookID == "" {
		return nil, errors.Wrap(notebook.ErrNotFound, "no notebook open")
	}
	return ws.Repo.Get(ws.notebookID)
}

func (ws *Workspace) NotebookID() string { return ws.notebookID }

// PageIndex is the zero-based position of the open page.
func (ws *Workspace) PageIndex() int { return ws.page }

func (ws *Workspace) PageLabel() string {
	nb, err := ws.Notebook()
	if err != nil {
		return "No page"
	}
	return fmt.Sprintf("Page %d of %d", ws.page+1, len(nb.Pages))
}

func (ws *Workspace) Next() error { return ws.Goto(ws.page + 1) }

func (ws *Workspace) Prev() error { return ws.Goto(ws.page - 1) }

func (ws *Workspace) Goto(index int) error {
	nb, err := ws.Notebook()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(nb.Pages) {
		return errors.Wrapf(notebook.ErrPageRange, "page %d", index+1)
	}
	ws.page = index
	return ws.openCurrent()
}

// AddPage inserts a page after the open one and switches to it.
func (ws *Workspace) AddPage() error {
	if _, err := ws.Repo.InsertPage(ws.notebookID, ws.page+1, ws.template); err != nil {
		return err
	}
	ws.page++
	return ws.openCurrent()
}

// RemovePage deletes the open page and shows its neighbour.
func (ws *Workspace) RemovePage() error {
	pageID := ws.Session.PageID()
	if err := ws.Repo.RemovePage(ws.notebookID, pageID); err != nil {
		return err
	}
	return ws.openCurrent()
}

func (ws *Workspace) SetTemplate(t state.Template) error {
	if err := ws.Repo.SetPageTemplate(ws.Session.PageID(), t); err != nil {
		return err
	}
	ws.template = t
	ws.Session.SetTemplate(t)
	return nil
}

// CreateNotebook validates the form, stores the notebook and opens it.
func (ws *Workspace) CreateNotebook(form notebook.Form) (*notebook.Notebook, error) {
	nb, err := ws.Repo.Create(form)
	if err != nil {
		return nil, err
	}
	return nb, ws.Open(nb.ID)
}

// DeleteNotebook removes the open notebook and falls back to another one.
func (ws *Workspace) DeleteNotebook() error {
	if err := ws.Repo.Delete(ws.notebookID); err != nil {
		return err
	}
	ws.notebookID = ""
	ws.Session.Close()
	if rest := ws.Repo.Search(""); len(rest) > 0 {
		return ws.Open(rest[0].ID)
	}
	return nil
}

func (ws *Workspace) ExportPDF(w io.Writer) error {
	nb, err := ws.Notebook()
	if err != nil {
		return err
	}
	return export.PDF(w, nb, nil, export.DefaultZoom)
}

package notebook

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"LocalNotebook/internal/state"
)

// Repository is the in-memory catalogue of notebooks.
type Repository struct {
	mu        sync.RWMutex
	notebooks map[string]*Notebook
	clock     Clock

	// OnChange receives a snapshot of every notebook after each mutation,
	// so the catalogue can be written to local storage.
	OnChange func(all []Notebook)
	// OnPagesRemoved receives the IDs of pages that no longer exist so their
	// stored strokes can be dropped.
	OnPagesRemoved func(pageIDs []string)
}

func NewRepository(clock Clock) *Repository {
	if clock == nil {
		clock = SystemClock
	}
	return &Repository{notebooks: make(map[string]*Notebook), clock: clock}
}

// Restore replaces the catalogue, e.g. with what was loaded at startup.
func (r *Repository) Restore(all []Notebook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notebooks = make(map[string]*Notebook, len(all))
	for i := range all {
		nb := all[i].Clone()
		for j := range nb.Pages {
			nb.Pages[j].Template = nb.Pages[j].Template.Or(DefaultTemplate)
		}
		nb.Renumber()
		r.notebooks[nb.ID] = nb
	}
}

func (r *Repository) Create(form Form) (*Notebook, error) {
	nb, err := New(form, r.clock.Now())
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.notebooks[nb.ID] = nb
	out := nb.Clone()
	r.mu.Unlock()
	log.Printf("Created notebook %s (%q)", nb.ID, nb.Title)
	r.changed()
	return out, nil
}

func (r *Repository) Get(id string) (*Notebook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nb, ok := r.notebooks[id]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "notebook %s", id)
	}
	return nb.Clone(), nil
}

// Search lists notebooks matching term, most recently updated first.
func (r *Repository) Search(term string) []Notebook {
	r.mu.RLock()
	out := make([]Notebook, 0, len(r.notebooks))
	for _, nb := range r.notebooks {
		if nb.Matches(term) {
			out = append(out, *nb.Clone())
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedDate.Equal(out[j].UpdatedDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedDate.After(out[j].UpdatedDate)
	})
	return out
}

// All lists every notebook.
func (r *Repository) All() []Notebook {
	return r.Search("")
}

func (r *Repository) Update(id string, form Form) (*Notebook, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	out, err := r.mutate(id, func(nb *Notebook) error {
		nb.Title, nb.Subject, nb.Author = form.Title, form.Subject, form.Author
		return nil
	})
	return out, err
}

// Delete removes a notebook together with all of its pages.
func (r *Repository) Delete(id string) error {
	r.mu.Lock()
	nb, ok := r.notebooks[id]
	if !ok {
		r.mu.Unlock()
		return errors.Wrapf(ErrNotFound, "notebook %s", id)
	}
	delete(r.notebooks, id)
	r.mu.Unlock()

	ids := make([]string, 0, len(nb.Pages))
	for _, p := range nb.Pages {
		ids = append(ids, p.ID)
	}
	log.Printf("Deleted notebook %s with %d pages", id, len(ids))
	r.pagesRemoved(ids)
	r.changed()
	return nil
}

func (r *Repository) AddPage(notebookID string, t state.Template) (Page, error) {
	var page Page
	_, err := r.mutate(notebookID, func(nb *Notebook) error {
		page = nb.AddPage(t)
		return nil
	})
	return page, err
}

func (r *Repository) InsertPage(notebookID string, index int, t state.Template) (Page, error) {
	var page Page
	_, err := r.mutate(notebookID, func(nb *Notebook) error {
		var err error
		page, err = nb.InsertPage(index, t)
		return err
	})
	return page, err
}

func (r *Repository) RemovePage(notebookID, pageID string) error {
	var removed Page
	_, err := r.mutate(notebookID, func(nb *Notebook) error {
		i := nb.PageIndex(pageID)
		if i < 0 {
			return errors.Wrapf(ErrNotFound, "page %s", pageID)
		}
		var err error
		removed, err = nb.RemovePage(i)
		return err
	})
	if err != nil {
		return err
	}
	r.pagesRemoved([]string{removed.ID})
	return nil
}

// SetPageContent records a page's serialized strokes and refreshes the
// owning notebook's UpdatedDate.
func (r *Repository) SetPageContent(pageID, content string) error {
	nbID, err := r.owner(pageID)
	if err != nil {
		return err
	}
	_, err = r.mutate(nbID, func(nb *Notebook) error {
		nb.Pages[nb.PageIndex(pageID)].Content = content
		return nil
	})
	return err
}

func (r *Repository) SetPageTemplate(pageID string, t state.Template) error {
	if !t.Valid() {
		return errors.Errorf("unknown template %q", t)
	}
	nbID, err := r.owner(pageID)
	if err != nil {
		return err
	}
	_, err = r.mutate(nbID, func(nb *Notebook) error {
		nb.Pages[nb.PageIndex(pageID)].Template = t
		return nil
	})
	return err
}

func (r *Repository) owner(pageID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, nb := range r.notebooks {
		if nb.PageIndex(pageID) >= 0 {
			return id, nil
		}
	}
	return "", errors.Wrapf(ErrNotFound, "page %s", pageID)
}

// mutate applies fn to a working copy and commits it with a fresh
// UpdatedDate only if fn succeeds.
func (r *Repository) mutate(id string, fn func(nb *Notebook) error) (*Notebook, error) {
	r.mu.Lock()
	nb, ok := r.notebooks[id]
	if !ok {
		r.mu.Unlock()
		return nil, errors.Wrapf(ErrNotFound, "notebook %s", id)
	}
	work := nb.Clone()
	if err := fn(work); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	work.UpdatedDate = r.clock.Now()
	r.notebooks[id] = work
	out := work.Clone()
	r.mu.Unlock()
	r.changed()
	return out, nil
}

func (r *Repository) changed() {
	if r.OnChange != nil {
		r.OnChange(r.All())
	}
}

func (r *Repository) pagesRemoved(ids []string) {
	if r.OnPagesRemoved != nil && len(ids) > 0 {
		r.OnPagesRemoved(ids)
	}
}

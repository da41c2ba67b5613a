// Package notebook holds notebooks and their ordered pages.
package notebook

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"LocalNotebook/internal/state"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrLastPage  = errors.New("a notebook keeps at least one page")
	ErrPageRange = errors.New("page index out of range")
)

// DefaultTemplate is the template of pages created without one.
const DefaultTemplate = state.TemplateRuled

// Page is one sheet of a notebook. PageNumber is derived from the page's
// position and is rewritten whenever pages move.
type Page struct {
	ID         string         `json:"id"`
	PageNumber int            `json:"pageNumber"`
	Content    string         `json:"content"`
	Template   state.Template `json:"template,omitempty"`
}

type Notebook struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subject     string    `json:"subject"`
	Author      string    `json:"author"`
	CreatedDate time.Time `json:"createdDate"`
	UpdatedDate time.Time `json:"updatedDate"`
	Pages       []Page    `json:"pages"`
}

// Form is the user-editable part of a notebook.
type Form struct {
	Title   string `json:"title" validate:"required,max=200"`
	Subject string `json:"subject" validate:"required,max=50"`
	Author  string `json:"author" validate:"required,max=100"`
}

// FieldError is a validation failure on a single form field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return "invalid notebook: " + strings.Join(parts, ", ")
}

var validate = validator.New()

// Validate trims the form and checks required fields.
func (f *Form) Validate() error {
	f.Title = strings.TrimSpace(f.Title)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Author = strings.TrimSpace(f.Author)
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		msg := fe.Tag()
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "max":
			msg = "must be at most " + fe.Param() + " characters"
		}
		out.Fields = append(out.Fields, FieldError{Field: strings.ToLower(fe.Field()), Error: msg})
	}
	return out
}

func newPage(t state.Template) Page {
	return Page{ID: uuid.NewString(), Template: t.Or(DefaultTemplate)}
}

// New creates a notebook with a single empty page.
func New(form Form, now time.Time) (*Notebook, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	nb := &Notebook{
		ID:          uuid.NewString(),
		Title:       form.Title,
		Subject:     form.Subject,
		Author:      form.Author,
		CreatedDate: now,
		UpdatedDate: now,
		Pages:       []Page{newPage(DefaultTemplate)},
	}
	nb.Renumber()
	return nb, nil
}

// Renumber rewrites page numbers as 1..n in page order.
func (nb *Notebook) Renumber() {
	for i := range nb.Pages {
		nb.Pages[i].PageNumber = i + 1
	}
}

func (nb *Notebook) PageIndex(pageID string) int {
	for i, p := range nb.Pages {
		if p.ID == pageID {
			return i
		}
	}
	return -1
}

// InsertPage adds an empty page at index, 0 ≤ index ≤ len(Pages).
func (nb *Notebook) InsertPage(index int, t state.Template) (Page, error) {
	if index < 0 || index > len(nb.Pages) {
		return Page{}, errors.Wrapf(ErrPageRange, "insert at %d of %d", index, len(nb.Pages))
	}
	p := newPage(t)
	nb.Pages = append(nb.Pages, Page{})
	copy(nb.Pages[index+1:], nb.Pages[index:])
	nb.Pages[index] = p
	nb.Renumber()
	return nb.Pages[index], nil
}

// AddPage appends an empty page.
func (nb *Notebook) AddPage(t state.Template) Page {
	p, _ := nb.InsertPage(len(nb.Pages), t)
	return p
}

// RemovePage deletes the page at index. The last remaining page cannot be
// removed.
func (nb *Notebook) RemovePage(index int) (Page, error) {
	if index < 0 || index >= len(nb.Pages) {
		return Page{}, errors.Wrapf(ErrPageRange, "remove %d of %d", index, len(nb.Pages))
	}
	if len(nb.Pages) == 1 {
		return Page{}, ErrLastPage
	}
	removed := nb.Pages[index]
	nb.Pages = append(nb.Pages[:index], nb.Pages[index+1:]...)
	nb.Renumber()
	return removed, nil
}

// Clone returns a deep copy.
func (nb *Notebook) Clone() *Notebook {
	out := *nb
	out.Pages = append([]Page(nil), nb.Pages...)
	return &out
}

// Matches reports whether term occurs in the title, subject or author,
// ignoring case. An empty term matches everything.
func (nb *Notebook) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(nb.Title), term) ||
		strings.Contains(strings.ToLower(nb.Subject), term) ||
		strings.Contains(strings.ToLower(nb.Author), term)
}

func (nb *Notebook) ToJSON() ([]byte, error) {
	return json.MarshalIndent(nb, "", "  ")
}

// FromJSON decodes a notebook and re-derives page numbers and templates.
func FromJSON(data []byte) (*Notebook, error) {
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, errors.Wrap(err, "decode notebook")
	}
	for i := range nb.Pages {
		nb.Pages[i].Template = nb.Pages[i].Template.Or(DefaultTemplate)
	}
	nb.Renumber()
	return &nb, nil
}

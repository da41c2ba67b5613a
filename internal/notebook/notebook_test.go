package notebook

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalNotebook/internal/state"
)

var start = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func calculus() Form {
	return Form{Title: "Calculus II Notes", Subject: "MATH 201", Author: "Sarah Johnson"}
}

func numbers(nb *Notebook) []int {
	out := make([]int, 0, len(nb.Pages))
	for _, p := range nb.Pages {
		out = append(out, p.PageNumber)
	}
	return out
}

func TestNewNotebook(t *testing.T) {
	nb, err := New(calculus(), start)
	require.NoError(t, err)
	assert.NotEmpty(t, nb.ID)
	assert.Equal(t, start, nb.CreatedDate)
	assert.Equal(t, start, nb.UpdatedDate)
	require.Len(t, nb.Pages, 1)
	assert.Equal(t, 1, nb.Pages[0].PageNumber)
	assert.Equal(t, state.TemplateRuled, nb.Pages[0].Template)
}

func TestFormValidation(t *testing.T) {
	_, err := New(Form{Title: "  ", Subject: "PHYS 102"}, start)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Error
	}
	assert.Equal(t, "is required", fields["title"])
	assert.Equal(t, "is required", fields["author"])
	assert.NotContains(t, fields, "subject")
}

func TestPageRenumbering(t *testing.T) {
	nb, err := New(calculus(), start)
	require.NoError(t, err)
	first := nb.Pages[0].ID

	nb.AddPage(state.TemplateGrid)
	mid, err := nb.InsertPage(1, state.TemplateBlank)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, numbers(nb))
	assert.Equal(t, 2, mid.PageNumber)

	removed, err := nb.RemovePage(0)
	require.NoError(t, err)
	assert.Equal(t, first, removed.ID)
	assert.Equal(t, []int{1, 2}, numbers(nb))
	assert.Equal(t, mid.ID, nb.Pages[0].ID)

	_, err = nb.InsertPage(5, state.TemplateRuled)
	assert.True(t, errors.Is(err, ErrPageRange))
}

func TestCannotRemoveLastPage(t *testing.T) {
	nb, err := New(calculus(), start)
	require.NoError(t, err)
	_, err = nb.RemovePage(0)
	assert.Equal(t, ErrLastPage, err)
	assert.Len(t, nb.Pages, 1)
}

func TestJSONRoundTrip(t *testing.T) {
	nb, err := New(calculus(), start)
	require.NoError(t, err)
	nb.AddPage(state.TemplateGrid)
	nb.Pages[1].Content = `[{"points":[{"x":1,"y":2}],"tool":"pen","color":"#000000","width":2,"alpha":1}]`

	data, err := nb.ToJSON()
	require.NoError(t, err)
	back, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, nb, back)
}

func TestFromJSONDerivesNumbersAndTemplates(t *testing.T) {
	back, err := FromJSON([]byte(`{"id":"n","pages":[{"id":"a","pageNumber":7},{"id":"b","pageNumber":7,"template":"grid"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, numbers(back))
	assert.Equal(t, state.TemplateRuled, back.Pages[0].Template)
	assert.Equal(t, state.TemplateGrid, back.Pages[1].Template)
}

func TestRepositoryContentRefreshesUpdatedDate(t *testing.T) {
	clock := NewManualClock(start)
	repo := NewRepository(clock)
	nb, err := repo.Create(calculus())
	require.NoError(t, err)

	later := clock.Advance(time.Hour)
	require.NoError(t, repo.SetPageContent(nb.Pages[0].ID, "[]"))

	got, err := repo.Get(nb.ID)
	require.NoError(t, err)
	assert.Equal(t, "[]", got.Pages[0].Content)
	assert.Equal(t, later, got.UpdatedDate)
	assert.Equal(t, start, got.CreatedDate)

	assert.True(t, errors.Is(repo.SetPageContent("nope", "[]"), ErrNotFound))
}

func TestRepositoryGetReturnsCopy(t *testing.T) {
	repo := NewRepository(NewManualClock(start))
	nb, err := repo.Create(calculus())
	require.NoError(t, err)

	got, err := repo.Get(nb.ID)
	require.NoError(t, err)
	got.Title = "changed"
	got.Pages[0].Content = "changed"

	again, err := repo.Get(nb.ID)
	require.NoError(t, err)
	assert.Equal(t, "Calculus II Notes", again.Title)
	assert.Empty(t, again.Pages[0].Content)
}

func TestRepositoryPages(t *testing.T) {
	clock := NewManualClock(start)
	repo := NewRepository(clock)
	var removed []string
	repo.OnPagesRemoved = func(ids []string) { removed = append(removed, ids...) }

	nb, err := repo.Create(calculus())
	require.NoError(t, err)
	p2, err := repo.AddPage(nb.ID, state.TemplateGrid)
	require.NoError(t, err)
	assert.Equal(t, 2, p2.PageNumber)

	p0, err := repo.InsertPage(nb.ID, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, p0.PageNumber)
	assert.Equal(t, state.TemplateRuled, p0.Template)

	require.NoError(t, repo.RemovePage(nb.ID, p0.ID))
	assert.Equal(t, []string{p0.ID}, removed)

	got, err := repo.Get(nb.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, numbers(got))
	assert.Equal(t, p2.ID, got.Pages[1].ID)

	require.NoError(t, repo.SetPageTemplate(p2.ID, state.TemplateBlank))
	assert.Error(t, repo.SetPageTemplate(p2.ID, "dotted"))
	got, err = repo.Get(nb.ID)
	require.NoError(t, err)
	assert.Equal(t, state.TemplateBlank, got.Pages[1].Template)

	assert.True(t, errors.Is(repo.RemovePage(nb.ID, "missing"), ErrNotFound))
}

func TestRepositoryDeleteRemovesPages(t *testing.T) {
	repo := NewRepository(NewManualClock(start))
	var removed []string
	repo.OnPagesRemoved = func(ids []string) { removed = ids }

	nb, err := repo.Create(calculus())
	require.NoError(t, err)
	_, err = repo.AddPage(nb.ID, state.TemplateRuled)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(nb.ID))
	assert.Len(t, removed, 2)
	_, err = repo.Get(nb.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(nb.ID), ErrNotFound))
}

func TestRepositorySearch(t *testing.T) {
	clock := NewManualClock(start)
	repo := NewRepository(clock)
	var snapshots int
	repo.OnChange = func(all []Notebook) { snapshots++ }

	_, err := repo.Create(calculus())
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = repo.Create(Form{Title: "Physics Lab Observations", Subject: "PHYS 102", Author: "Michael Chen"})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	_, err = repo.Create(Form{Title: "Algorithm Design Notes", Subject: "CS 224", Author: "Emily Rodriguez"})
	require.NoError(t, err)

	assert.Equal(t, 3, snapshots)
	assert.Len(t, repo.Search(""), 3)

	notes := repo.Search("NOTES")
	require.Len(t, notes, 2)
	assert.Equal(t, "Algorithm Design Notes", notes[0].Title, "most recently updated first")

	assert.Len(t, repo.Search("phys"), 1)
	assert.Len(t, repo.Search("chen"), 1)
	assert.Empty(t, repo.Search("biology"))
}

func TestRepositoryUpdateAndRestore(t *testing.T) {
	clock := NewManualClock(start)
	repo := NewRepository(clock)
	nb, err := repo.Create(calculus())
	require.NoError(t, err)

	_, err = repo.Update(nb.ID, Form{Title: "", Subject: "x", Author: "y"})
	assert.Error(t, err)
	updated, err := repo.Update(nb.ID, Form{Title: "Calculus III", Subject: "MATH 301", Author: "Sarah Johnson"})
	require.NoError(t, err)
	assert.Equal(t, "Calculus III", updated.Title)

	other := NewRepository(clock)
	other.Restore(repo.All())
	got, err := other.Get(nb.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

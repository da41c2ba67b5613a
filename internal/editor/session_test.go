package editor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalNotebook/internal/input"
	"LocalNotebook/internal/render"
	"LocalNotebook/internal/state"
	"LocalNotebook/internal/store"
)

type fakeStore struct {
	*store.MemoryStore
	saves int
	fail  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{MemoryStore: store.NewMemoryStore()}
}

func (f *fakeStore) Save(pageID string, strokes []state.Stroke) error {
	f.saves++
	if f.fail != nil {
		return f.fail
	}
	return f.MemoryStore.Save(pageID, strokes)
}

func pt(x, y float64) state.Point { return state.Point{X: x, Y: y} }

func ev(src input.Source, id int, ph input.Phase, x, y float64) input.Event {
	return input.Event{PointerID: id, Source: src, Phase: ph, Position: pt(x, y)}
}

// gesture sends down, moves and up for the given device points.
func gesture(s *Session, src input.Source, id int, pts ...state.Point) []Result {
	var out []Result
	for i, p := range pts {
		ph := input.PhaseMove
		if i == 0 {
			ph = input.PhaseDown
		}
		out = append(out, s.Handle(ev(src, id, ph, p.X, p.Y)))
	}
	last := pts[len(pts)-1]
	out = append(out, s.Handle(ev(src, id, input.PhaseUp, last.X, last.Y)))
	return out
}

func newSession(t *testing.T) (*Session, *fakeStore) {
	t.Helper()
	fs := newFakeStore()
	s := NewSession(fs, state.ToolConfig{Tool: state.ToolPen, Color: state.Red, Width: 4})
	s.OpenPage("p1", state.TemplateRuled)
	return s, fs
}

func TestPenGestureRecordsAndSaves(t *testing.T) {
	s, fs := newSession(t)
	var saved []string
	s.OnContentChange = func(pageID, content string) { saved = append(saved, pageID) }

	res := gesture(s, input.SourceStylus, 1, pt(10, 10), pt(20, 20), pt(20, 20))
	assert.True(t, res[len(res)-1].Changed)

	strokes := s.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, []state.Point{pt(10, 10), pt(20, 20), pt(20, 20)}, strokes[0].Points)
	assert.Equal(t, state.Red, strokes[0].Color)
	assert.Equal(t, 1.0, strokes[0].Alpha)
	assert.Equal(t, 1, fs.saves)
	assert.Equal(t, []string{"p1"}, saved)

	stored, ok := fs.Load("p1")
	require.True(t, ok)
	assert.Equal(t, strokes, stored)
}

func TestSaveOnlyOnCompletion(t *testing.T) {
	s, fs := newSession(t)
	s.Handle(ev(input.SourceMouse, 1, input.PhaseDown, 0, 0))
	s.Handle(ev(input.SourceMouse, 1, input.PhaseMove, 5, 5))
	assert.Equal(t, 0, fs.saves)
	assert.Empty(t, s.Strokes())
	assert.True(t, s.Drawing())
	s.Handle(ev(input.SourceMouse, 1, input.PhaseUp, 5, 5))
	assert.Equal(t, 1, fs.saves)
}

func TestToolChangeMidGestureDoesNotAlterStroke(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(ev(input.SourceStylus, 1, input.PhaseDown, 0, 0))
	s.SetColor(state.Blue)
	require.NoError(t, s.SetTool(state.ToolHighlighter))
	require.NoError(t, s.SetStrokeWidth(8))
	s.Handle(ev(input.SourceStylus, 1, input.PhaseMove, 5, 0))
	s.Handle(ev(input.SourceStylus, 1, input.PhaseUp, 5, 0))

	strokes := s.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, state.Red, strokes[0].Color)
	assert.Equal(t, 4.0, strokes[0].Width)
	assert.Equal(t, state.KindPen, strokes[0].Tool)
	assert.Equal(t, 1.0, strokes[0].Alpha)

	// the next gesture picks up the new configuration
	gesture(s, input.SourceStylus, 1, pt(50, 50), pt(60, 60))
	strokes = s.Strokes()
	require.Len(t, strokes, 2)
	assert.Equal(t, state.Blue, strokes[1].Color)
	assert.Equal(t, state.KindHighlighter, strokes[1].Tool)
	assert.Equal(t, state.HighlighterAlpha, strokes[1].Alpha)
}

func TestFingerPansAndNeverDraws(t *testing.T) {
	s, fs := newSession(t)
	before := s.Viewport().Scroll

	res := gesture(s, input.SourceFinger, 7, pt(100, 100), pt(130, 90), pt(160, 80))
	assert.True(t, res[1].Panned)

	assert.Empty(t, s.Strokes())
	assert.Equal(t, 0, fs.saves)
	after := s.Viewport().Scroll
	assert.NotEqual(t, before, after)
	assert.Equal(t, pt(-60, 20), after)
}

func TestFingerDuringStylusStroke(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(ev(input.SourceStylus, 1, input.PhaseDown, 0, 0))
	// palm resting on the page while the stylus draws
	s.Handle(ev(input.SourceFinger, 2, input.PhaseDown, 300, 300))
	s.Handle(ev(input.SourceFinger, 2, input.PhaseUp, 300, 300))
	s.Handle(ev(input.SourceStylus, 1, input.PhaseMove, 10, 0))
	s.Handle(ev(input.SourceStylus, 1, input.PhaseUp, 10, 0))

	strokes := s.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, []state.Point{pt(0, 0), pt(10, 0)}, strokes[0].Points)
}

func TestSecondDrawPointerIgnored(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(ev(input.SourceStylus, 1, input.PhaseDown, 0, 0))
	s.Handle(ev(input.SourceMouse, 2, input.PhaseDown, 50, 50))
	s.Handle(ev(input.SourceMouse, 2, input.PhaseMove, 60, 60))
	s.Handle(ev(input.SourceStylus, 1, input.PhaseMove, 1, 1))
	s.Handle(ev(input.SourceMouse, 2, input.PhaseUp, 60, 60))
	assert.True(t, s.Drawing(), "release by a non-owner must not end the stroke")
	s.Handle(ev(input.SourceStylus, 1, input.PhaseUp, 1, 1))

	strokes := s.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, []state.Point{pt(0, 0), pt(1, 1)}, strokes[0].Points)
}

func TestRepeatedPressFromOwnerKeepsStroke(t *testing.T) {
	s, fs := newSession(t)
	s.Handle(ev(input.SourceMouse, 1, input.PhaseDown, 10, 10))
	s.Handle(ev(input.SourceMouse, 1, input.PhaseMove, 20, 20))
	// switching tools must not turn the duplicate press into an erase
	require.NoError(t, s.SetTool(state.ToolEraser))
	res := s.Handle(ev(input.SourceMouse, 1, input.PhaseDown, 30, 30))
	assert.False(t, res.Changed)
	assert.True(t, s.Drawing())
	s.Handle(ev(input.SourceMouse, 1, input.PhaseUp, 30, 30))

	assert.False(t, s.Drawing())
	strokes := s.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, []state.Point{pt(10, 10), pt(20, 20)}, strokes[0].Points)
	assert.Equal(t, state.KindPen, strokes[0].Tool)
	assert.Equal(t, 1, fs.saves)

	// the page still takes a full gesture from another pointer
	require.NoError(t, s.SetTool(state.ToolPen))
	gesture(s, input.SourceMouse, 2, pt(100, 100), pt(120, 120))
	assert.False(t, s.Drawing())
	assert.Len(t, s.Strokes(), 2)
	assert.Equal(t, 2, fs.saves)
}

func TestRepeatedPressWhileErasing(t *testing.T) {
	s, _ := newSession(t)
	gesture(s, input.SourceStylus, 1, pt(10, 10), pt(20, 20))
	require.NoError(t, s.SetTool(state.ToolEraser))
	s.Handle(ev(input.SourceStylus, 1, input.PhaseDown, 400, 400))
	require.NoError(t, s.SetTool(state.ToolPen))
	s.Handle(ev(input.SourceStylus, 1, input.PhaseDown, 400, 400))
	assert.False(t, s.Drawing())
	s.Handle(ev(input.SourceStylus, 1, input.PhaseUp, 400, 400))

	gesture(s, input.SourceStylus, 1, pt(50, 50), pt(60, 60))
	assert.Len(t, s.Strokes(), 2)
}

func TestCancelDiscardsStroke(t *testing.T) {
	s, fs := newSession(t)
	s.Handle(ev(input.SourceStylus, 1, input.PhaseDown, 0, 0))
	s.Handle(ev(input.SourceStylus, 1, input.PhaseMove, 10, 10))
	s.Handle(ev(input.SourceStylus, 1, input.PhaseCancel, 10, 10))

	assert.False(t, s.Drawing())
	assert.Empty(t, s.Strokes())
	assert.Equal(t, 0, fs.saves)
}

func TestCancelEndsPan(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(ev(input.SourceFinger, 1, input.PhaseDown, 0, 0))
	s.Handle(ev(input.SourceFinger, 1, input.PhaseCancel, 0, 0))
	// a new finger can take over immediately
	s.Handle(ev(input.SourceFinger, 2, input.PhaseDown, 0, 0))
	res := s.Handle(ev(input.SourceFinger, 2, input.PhaseMove, 10, 0))
	assert.True(t, res.Panned)
}

func TestZoomInvariance(t *testing.T) {
	a, _ := newSession(t)
	b, _ := newSession(t)
	b.SetZoom(200)

	gesture(a, input.SourceMouse, 1, pt(10, 20), pt(30, 40), pt(55, 5))
	gesture(b, input.SourceMouse, 1, pt(20, 40), pt(60, 80), pt(110, 10))

	assert.Equal(t, a.Strokes()[0].Points, b.Strokes()[0].Points)
}

func TestPageIsolation(t *testing.T) {
	s, _ := newSession(t)
	gesture(s, input.SourceStylus, 1, pt(1, 1), pt(2, 2))
	page1 := s.Strokes()
	require.Len(t, page1, 1)

	s.OpenPage("p2", state.TemplateGrid)
	assert.Empty(t, s.Strokes())
	assert.Equal(t, state.TemplateGrid, s.Template())
	gesture(s, input.SourceStylus, 1, pt(9, 9), pt(8, 8))

	s.OpenPage("p1", state.TemplateRuled)
	assert.Equal(t, page1, s.Strokes())
}

func TestMalformedContentOpensEmptyAndDrawable(t *testing.T) {
	fs := newFakeStore()
	fs.Put("old", "data:image/png;base64,iVBORw0KGgo=")
	s := NewSession(fs, DefaultToolConfig())
	s.OpenPage("old", state.TemplateRuled)
	assert.Empty(t, s.Strokes())

	gesture(s, input.SourceMouse, 1, pt(3, 3), pt(4, 4))
	assert.Len(t, s.Strokes(), 1)
	stored, ok := fs.Load("old")
	require.True(t, ok)
	assert.Len(t, stored, 1)
}

func TestEraserRemovesNearbyStrokes(t *testing.T) {
	s, fs := newSession(t)
	gesture(s, input.SourceStylus, 1, pt(0, 0), pt(50, 0), pt(100, 0))
	gesture(s, input.SourceStylus, 1, pt(0, 300), pt(100, 300))
	require.NoError(t, s.SetToolConfig(state.ToolConfig{Tool: state.ToolEraser, Color: state.Black, Width: 2}))
	saves := fs.saves

	// radius 4: (50,20) is out of reach
	res := gesture(s, input.SourceStylus, 1, pt(50, 20))
	assert.False(t, res[0].Changed)
	assert.Equal(t, saves, fs.saves)
	assert.Len(t, s.Strokes(), 2)

	res = gesture(s, input.SourceStylus, 1, pt(50, 20), pt(50, 3))
	assert.True(t, res[1].Changed)
	assert.Equal(t, saves+1, fs.saves)

	strokes := s.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, 300.0, strokes[0].Points[0].Y)
}

func TestEraserWithGridIndex(t *testing.T) {
	fs := newFakeStore()
	s := NewSession(fs, DefaultToolConfig(), WithIndex(state.NewGridIndex(16)))
	s.OpenPage("p", state.TemplateBlank)
	gesture(s, input.SourceMouse, 1, pt(0, 0), pt(100, 0))
	require.NoError(t, s.SetTool(state.ToolEraser))
	gesture(s, input.SourceMouse, 1, pt(98, 5))
	assert.Empty(t, s.Strokes())
}

func TestPersistenceFailureKeepsStrokes(t *testing.T) {
	s, fs := newSession(t)
	fs.fail = errors.New("disk full")
	var warned error
	s.OnWarning = func(err error) { warned = err }

	res := gesture(s, input.SourceStylus, 1, pt(0, 0), pt(5, 5))
	last := res[len(res)-1]
	assert.True(t, last.Changed)
	assert.EqualError(t, last.Warning, "disk full")
	assert.Equal(t, last.Warning, warned)
	assert.Len(t, s.Strokes(), 1)

	fs.fail = nil
	gesture(s, input.SourceStylus, 1, pt(9, 9))
	stored, ok := fs.Load("p1")
	require.True(t, ok)
	assert.Len(t, stored, 2)
}

func TestNoPageIgnoresDrawing(t *testing.T) {
	fs := newFakeStore()
	s := NewSession(fs, DefaultToolConfig())
	gesture(s, input.SourceStylus, 1, pt(0, 0), pt(5, 5))
	assert.Empty(t, s.Strokes())
	assert.Equal(t, 0, fs.saves)
}

func TestClearPage(t *testing.T) {
	s, fs := newSession(t)
	assert.False(t, s.ClearPage().Changed)
	gesture(s, input.SourceStylus, 1, pt(0, 0), pt(5, 5))
	res := s.ClearPage()
	assert.True(t, res.Changed)
	assert.Empty(t, s.Strokes())
	stored, ok := fs.Load("p1")
	require.True(t, ok)
	assert.Empty(t, stored)
}

func TestInvalidToolConfigRejected(t *testing.T) {
	s, _ := newSession(t)
	assert.Error(t, s.SetStrokeWidth(0))
	assert.Error(t, s.SetTool("chalk"))
	assert.Equal(t, 4.0, s.ToolConfig().Width)
}

func TestFrameShowsLiveStroke(t *testing.T) {
	s, _ := newSession(t)
	s.SetTemplate(state.TemplateBlank)
	s.Handle(ev(input.SourceStylus, 1, input.PhaseDown, 100, 100))
	s.Handle(ev(input.SourceStylus, 1, input.PhaseMove, 300, 100))

	img, err := s.Frame()
	require.NoError(t, err)
	c := img.RGBAAt(200, 100)
	assert.Greater(t, int(c.R), 200)
	assert.Less(t, int(c.G), 80)
}

func TestFrameWithoutSurface(t *testing.T) {
	r := render.NewRenderer()
	r.PageHeight = 0
	s := NewSession(newFakeStore(), DefaultToolConfig(), WithRenderer(r))
	s.OpenPage("p", state.TemplateRuled)
	_, err := s.Frame()
	assert.ErrorIs(t, err, render.ErrNoSurface)

	// drawing still works without a surface
	gesture(s, input.SourceMouse, 1, pt(1, 1))
	assert.Len(t, s.Strokes(), 1)
}

func TestCloseResetsView(t *testing.T) {
	s, _ := newSession(t)
	s.Handle(ev(input.SourceStylus, 1, input.PhaseDown, 0, 0))
	s.Close()
	assert.False(t, s.Drawing())
	assert.Empty(t, s.PageID())
	assert.Nil(t, s.Strokes())
}

package state

// EraseRadius is how far from the eraser a stroke point may lie and still
// be removed.
func EraseRadius(strokeWidth float64) float64 {
	return strokeWidth * 2
}

// Eraser removes whole strokes touched by the eraser.
type Eraser struct {
	Index Index

	indexed []Stroke
}

func NewEraser(idx Index) *Eraser {
	if idx == nil {
		idx = NewLinearIndex()
	}
	return &Eraser{Index: idx}
}

// Erase removes, in one pass, every stroke with a point within
// EraseRadius(strokeWidth) of p. The input slice is never modified.
// changed is false when nothing was close enough.
func (e *Eraser) Erase(strokes []Stroke, p Point, strokeWidth float64) (out []Stroke, changed bool) {
	if !sameList(e.indexed, strokes) {
		e.Index.Reset(strokes)
		e.indexed = strokes
	}
	hits := e.Index.Near(p, EraseRadius(strokeWidth))
	if len(hits) == 0 {
		return strokes, false
	}
	drop := make(map[int]bool, len(hits))
	for _, i := range hits {
		drop[i] = true
	}
	out = make([]Stroke, 0, len(strokes)-len(hits))
	for i, s := range strokes {
		if !drop[i] {
			out = append(out, s)
		}
	}
	return out, true
}

// Erase runs a linear eraser over strokes.
func Erase(strokes []Stroke, p Point, strokeWidth float64) ([]Stroke, bool) {
	return NewEraser(nil).Erase(strokes, p, strokeWidth)
}

// sameList reports whether a and b are the same slice. Stroke lists are
// replaced, never edited in place, so identity implies equal content.
func sameList(a, b []Stroke) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

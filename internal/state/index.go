package state

import (
	"math"
	"sort"
)

// DefaultCellSize is the grid bucket edge used when none is configured.
const DefaultCellSize = 32.0

// Index answers which strokes of a page lie near a point. Implementations
// must return stroke positions in ascending list order.
type Index interface {
	Reset(strokes []Stroke)
	Near(p Point, radius float64) []int
}

// LinearIndex scans every stroke point. It suits pages with at most a few
// hundred strokes.
type LinearIndex struct {
	strokes []Stroke
	bounds  []Rect
}

func NewLinearIndex() *LinearIndex {
	return &LinearIndex{}
}

func (li *LinearIndex) Reset(strokes []Stroke) {
	li.strokes = strokes
	li.bounds = make([]Rect, len(strokes))
	for i, s := range strokes {
		li.bounds[i] = s.Bounds()
	}
}

func (li *LinearIndex) Near(p Point, radius float64) []int {
	var hits []int
	for i, s := range li.strokes {
		if !li.bounds[i].Inset(radius).Contains(p) {
			continue
		}
		if strokeNear(s, p, radius) {
			hits = append(hits, i)
		}
	}
	return hits
}

func strokeNear(s Stroke, p Point, radius float64) bool {
	for _, q := range s.Points {
		if q.Dist(p) <= radius {
			return true
		}
	}
	return false
}

type cell struct{ cx, cy int }

type pointRef struct {
	stroke int
	point  Point
}

// GridIndex buckets stroke points into square cells so that a query only
// inspects the cells overlapping the eraser radius.
type GridIndex struct {
	size    float64
	buckets map[cell][]pointRef
}

func NewGridIndex(cellSize float64) *GridIndex {
	if !(cellSize > 0) {
		cellSize = DefaultCellSize
	}
	return &GridIndex{size: cellSize, buckets: make(map[cell][]pointRef)}
}

func (g *GridIndex) cellOf(p Point) cell {
	return cell{int(math.Floor(p.X / g.size)), int(math.Floor(p.Y / g.size))}
}

func (g *GridIndex) Reset(strokes []Stroke) {
	g.buckets = make(map[cell][]pointRef)
	for i, s := range strokes {
		for _, p := range s.Points {
			c := g.cellOf(p)
			g.buckets[c] = append(g.buckets[c], pointRef{stroke: i, point: p})
		}
	}
}

func (g *GridIndex) Near(p Point, radius float64) []int {
	lo := g.cellOf(Point{p.X - radius, p.Y - radius})
	hi := g.cellOf(Point{p.X + radius, p.Y + radius})
	seen := make(map[int]bool)
	for cx := lo.cx; cx <= hi.cx; cx++ {
		for cy := lo.cy; cy <= hi.cy; cy++ {
			for _, ref := range g.buckets[cell{cx, cy}] {
				if seen[ref.stroke] {
					continue
				}
				if ref.point.Dist(p) <= radius {
					seen[ref.stroke] = true
				}
			}
		}
	}
	hits := make([]int, 0, len(seen))
	for i := range seen {
		hits = append(hits, i)
	}
	sort.Ints(hits)
	return hits
}

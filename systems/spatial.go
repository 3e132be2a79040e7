// Package systems provides ECS systems for the simulation.
package systems

import (
	"github.com/mlange-42/ark/ecs"
)

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies in the half-open rectangle [X, X+W) x [Y, Y+H).
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Intersects reports whether r and o overlap. Touching edges count as overlap.
func (r Rect) Intersects(o Rect) bool {
	return !(r.X+r.W < o.X ||
		r.X > o.X+o.W ||
		r.Y+r.H < o.Y ||
		r.Y > o.Y+o.H)
}

// minNodeSize is the smallest node edge that may still subdivide.
const minNodeSize = 1.0 / 64

// Item is an entity handle with the position it was inserted at.
type Item struct {
	E    ecs.Entity
	X, Y float64
}

// QuadTree is a point quadtree over entity handles.
// It has no delete or update; rebuild it once per tick.
type QuadTree struct {
	boundary Rect
	capacity int
	items    []Item
	divided  bool

	northwest *QuadTree
	northeast *QuadTree
	southwest *QuadTree
	southeast *QuadTree
}

// NewQuadTree creates an empty tree covering boundary.
func NewQuadTree(boundary Rect, capacity int) *QuadTree {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree{
		boundary: boundary,
		capacity: capacity,
		items:    make([]Item, 0, capacity),
	}
}

// Reset empties the tree and sets a new boundary, keeping the root's storage.
func (q *QuadTree) Reset(boundary Rect) {
	q.boundary = boundary
	q.items = q.items[:0]
	q.divided = false
	q.northwest, q.northeast, q.southwest, q.southeast = nil, nil, nil, nil
}

// Boundary returns the area covered by the tree.
func (q *QuadTree) Boundary() Rect {
	return q.boundary
}

// Insert adds e at (x, y). Returns false if the point lies outside the boundary.
func (q *QuadTree) Insert(e ecs.Entity, x, y float64) bool {
	return q.insert(Item{E: e, X: x, Y: y})
}

func (q *QuadTree) insert(it Item) bool {
	if !q.boundary.Contains(it.X, it.Y) {
		return false
	}

	// Nodes below minNodeSize stop splitting so coincident points cannot recurse forever.
	if !q.divided && (len(q.items) < q.capacity || q.boundary.W < minNodeSize || q.boundary.H < minNodeSize) {
		q.items = append(q.items, it)
		return true
	}

	if !q.divided {
		q.subdivide()
	}

	if !q.insertChild(it) {
		q.items = append(q.items, it)
	}
	return true
}

// insertChild places it in the first quadrant that contains it. Points on the far
// edge of a float-rounded split can miss every child; the caller keeps those.
func (q *QuadTree) insertChild(it Item) bool {
	return q.northwest.insert(it) ||
		q.northeast.insert(it) ||
		q.southwest.insert(it) ||
		q.southeast.insert(it)
}

// subdivide splits the node into four quadrants and moves its items into them.
func (q *QuadTree) subdivide() {
	x, y := q.boundary.X, q.boundary.Y
	w, h := q.boundary.W/2, q.boundary.H/2

	q.northwest = NewQuadTree(Rect{X: x, Y: y, W: w, H: h}, q.capacity)
	q.northeast = NewQuadTree(Rect{X: x + w, Y: y, W: w, H: h}, q.capacity)
	q.southwest = NewQuadTree(Rect{X: x, Y: y + h, W: w, H: h}, q.capacity)
	q.southeast = NewQuadTree(Rect{X: x + w, Y: y + h, W: w, H: h}, q.capacity)
	q.divided = true

	held := len(q.items)
	for _, it := range q.items[:held] {
		if !q.insertChild(it) {
			q.items = append(q.items, it)
		}
	}
	q.items = keepUnplaced(q.items, held)
}

// keepUnplaced drops the first n items (already moved to children) and returns
// whatever was appended after them.
func keepUnplaced(items []Item, n int) []Item {
	if len(items) <= n {
		return items[:0]
	}
	rest := items[n:]
	out := items[:len(rest)]
	copy(out, rest)
	return out
}

// Query appends every item whose position lies in r to dst and returns it.
// Reuse dst across calls to avoid allocations.
func (q *QuadTree) Query(r Rect, dst []Item) []Item {
	if !q.boundary.Intersects(r) {
		return dst
	}

	for _, it := range q.items {
		if r.Contains(it.X, it.Y) {
			dst = append(dst, it)
		}
	}

	if q.divided {
		dst = q.northwest.Query(r, dst)
		dst = q.northeast.Query(r, dst)
		dst = q.southwest.Query(r, dst)
		dst = q.southeast.Query(r, dst)
	}

	return dst
}

// Len returns the number of items stored in the tree.
func (q *QuadTree) Len() int {
	n := len(q.items)
	if q.divided {
		n += q.northwest.Len() + q.northeast.Len() + q.southwest.Len() + q.southeast.Len()
	}
	return n
}

// Divided reports whether the root node has subdivided.
func (q *QuadTree) Divided() bool {
	return q.divided
}

// Nodes returns the number of nodes in the tree, including the root.
func (q *QuadTree) Nodes() int {
	if !q.divided {
		return 1
	}
	return 1 + q.northwest.Nodes() + q.northeast.Nodes() + q.southwest.Nodes() + q.southeast.Nodes()
}

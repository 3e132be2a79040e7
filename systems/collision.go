package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swarm/components"
)

// CollisionSystem resolves circle-circle contacts between entities found through the
// quadtree. Positions and velocities are read live from the world, so pairs moved
// earlier in the tick are seen where they are now.
type CollisionSystem struct {
	posMap  *ecs.Map[components.Position]
	velMap  *ecs.Map[components.Velocity]
	bodyMap *ecs.Map[components.Body]

	queryFactor float64
	scratch     []Item
}

// NewCollisionSystem creates a collision system. queryFactor scales the entity radius
// to the half-width of the neighborhood box.
func NewCollisionSystem(w *ecs.World, queryFactor float64) *CollisionSystem {
	if queryFactor <= 0 {
		queryFactor = 2
	}
	return &CollisionSystem{
		posMap:      ecs.NewMap[components.Position](w),
		velMap:      ecs.NewMap[components.Velocity](w),
		bodyMap:     ecs.NewMap[components.Body](w),
		queryFactor: queryFactor,
		scratch:     make([]Item, 0, 32),
	}
}

// Resolve handles every contact of self with its neighbors and returns how many
// approaching pairs were resolved.
func (s *CollisionSystem) Resolve(self ecs.Entity, tree *QuadTree) int {
	pos := s.posMap.Get(self)
	vel := s.velMap.Get(self)
	body := s.bodyMap.Get(self)

	half := body.Radius * s.queryFactor
	s.scratch = tree.Query(Rect{X: pos.X - half, Y: pos.Y - half, W: 2 * half, H: 2 * half}, s.scratch[:0])

	resolved := 0
	for _, it := range s.scratch {
		if it.E == self {
			continue
		}
		opos := s.posMap.Get(it.E)
		ovel := s.velMap.Get(it.E)
		obody := s.bodyMap.Get(it.E)
		if ResolvePair(pos, vel, body, opos, ovel, obody) {
			resolved++
		}
	}
	return resolved
}

// ResolvePair applies an equal and opposite impulse along the contact normal when two
// overlapping entities approach each other, then pushes them apart by half the overlap
// each. Separating or coincident pairs are left untouched.
func ResolvePair(pos *components.Position, vel *components.Velocity, body *components.Body,
	opos *components.Position, ovel *components.Velocity, obody *components.Body) bool {

	dx := opos.X - pos.X
	dy := opos.Y - pos.Y
	minDist := body.Radius + obody.Radius
	if dx*dx+dy*dy >= minDist*minDist {
		return false
	}

	nx, ny, dist, ok := normalize(dx, dy)
	if !ok {
		return false
	}

	approach := (ovel.X-vel.X)*nx + (ovel.Y-vel.Y)*ny
	if approach >= 0 {
		return false
	}

	vel.X += approach * nx
	vel.Y += approach * ny
	ovel.X -= approach * nx
	ovel.Y -= approach * ny

	sep := (minDist - dist) / 2
	pos.X -= nx * sep
	pos.Y -= ny * sep
	opos.X += nx * sep
	opos.Y += ny * sep
	return true
}

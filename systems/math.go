package systems

import "math"

// degenerateDistance is the distance below which a direction cannot be normalized.
const degenerateDistance = 1e-9

// normalize returns the unit vector of (dx, dy) and its length.
// ok is false for a degenerate (near-zero) vector.
func normalize(dx, dy float64) (nx, ny, dist float64, ok bool) {
	dist = math.Sqrt(dx*dx + dy*dy)
	if dist < degenerateDistance {
		return 0, 0, dist, false
	}
	return dx / dist, dy / dist, dist, true
}

// velocityMagnitude returns the magnitude of a velocity vector.
func velocityMagnitude(vx, vy float64) float64 {
	return math.Sqrt(vx*vx + vy*vy)
}

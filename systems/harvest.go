package systems

import (
	"time"

	"github.com/pthm-cable/swarm/components"
)

// HarvestParams holds resource contact constants.
type HarvestParams struct {
	CellSize       float64
	BounceStrength float64       // impulse pushing the entity away from the resource center
	Clearance      float64       // extra distance beyond the entity radius kept from the center
	Cooldown       time.Duration // minimum time between two harvests by one entity
}

// HarvestResult reports what happened on a harvest attempt.
type HarvestResult struct {
	Contact   bool // entity overlapped an occupied cell
	Harvested bool // one unit of health was taken
	Depleted  bool // the resource reached zero health and was removed
}

// Harvest checks the cell under the entity. On contact the entity is bounced away from
// the resource center and clamped outside its clearance, then takes one unit of health
// if its cooldown has elapsed. Every contact refreshes the cooldown.
func Harvest(pos *components.Position, vel *components.Velocity, body *components.Body, h *components.Harvester,
	field *ResourceField, now time.Duration, p HarvestParams) HarvestResult {

	cell := CellOf(pos.X, pos.Y, p.CellSize)
	if !field.Has(cell) {
		return HarvestResult{}
	}

	cx, cy := CellCenter(cell, p.CellSize)
	// Exactly on the center there is no direction to push along.
	if nx, ny, dist, ok := normalize(pos.X-cx, pos.Y-cy); ok {
		vel.X += nx * p.BounceStrength
		vel.Y += ny * p.BounceStrength

		minDist := body.Radius + p.Clearance
		if dist < minDist {
			pos.X = cx + nx*minDist
			pos.Y = cy + ny*minDist
		}
	}

	res := HarvestResult{Contact: true}
	if h.Ready(now, p.Cooldown) {
		removed, _ := field.Damage(cell, 1)
		res.Harvested = true
		res.Depleted = removed
	}
	h.Touch(now)
	return res
}

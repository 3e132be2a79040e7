package systems

import (
	"github.com/pthm-cable/swarm/components"
)

// SteeringParams holds movement constants.
type SteeringParams struct {
	Force          float64 // steering force per unit of base speed
	ArriveDistance float64 // no force within this distance of the target
	Damping        float64 // velocity multiplier applied after integration
}

// Steer pulls the entity toward (tx, ty), integrates its position and damps its velocity.
// Speed is recorded before damping.
func Steer(pos *components.Position, vel *components.Velocity, motion *components.Motion, tx, ty, multiplier float64, p SteeringParams) {
	nx, ny, dist, ok := normalize(tx-pos.X, ty-pos.Y)
	if ok && dist > p.ArriveDistance {
		force := p.Force * motion.BaseSpeed * multiplier
		vel.X += nx * force
		vel.Y += ny * force
	}

	pos.X += vel.X
	pos.Y += vel.Y

	motion.Speed = velocityMagnitude(vel.X, vel.Y)

	vel.X *= p.Damping
	vel.Y *= p.Damping
}

package game

import (
	"time"

	"github.com/pthm-cable/swarm/components"
)

// Phase is the stage lifecycle state. A reset is the transition from Depleting
// back to Normal.
type Phase uint8

const (
	PhaseNormal Phase = iota
	PhaseDepleting
)

func (p Phase) String() string {
	if p == PhaseDepleting {
		return "depleting"
	}
	return "normal"
}

// ProgressionParams holds the economy constants.
type ProgressionParams struct {
	InitialSpawnCost int
	CreditsPerEntity int
	DepletionSpeed   float64 // speed multiplier while depleting
	RadiusScale      float64
	SpeedScale       float64
	EntityCountStep  int
}

// Progression is the economy and stage state. It is mutated only by the tick.
type Progression struct {
	Stage         int
	Level         int
	Credits       int
	Score         int
	NextSpawnCost int

	CurrentResources int
	TotalResources   int

	ResourceMultiplier float64
	SpeedMultiplier    float64

	Phase    Phase
	ResetDue time.Duration // valid while depleting

	Archetype          components.Archetype
	InitialEntityCount int

	params ProgressionParams
}

// NewProgression creates stage-1 state.
func NewProgression(params ProgressionParams, archetype components.Archetype, initialEntityCount int) *Progression {
	return &Progression{
		Stage:              1,
		Level:              1,
		NextSpawnCost:      params.InitialSpawnCost,
		ResourceMultiplier: 1,
		SpeedMultiplier:    1,
		Archetype:          archetype,
		InitialEntityCount: initialEntityCount,
		params:             params,
	}
}

// RecordHarvest credits one unit of harvested health.
func (p *Progression) RecordHarvest() {
	p.Credits++
	p.Score++
	p.CurrentResources--
}

// LevelUp spends the largest multiple of the spawn cost the credits cover.
// ok is false when credits are below the cost.
func (p *Progression) LevelUp() (spend int, ok bool) {
	if p.NextSpawnCost <= 0 || p.Credits < p.NextSpawnCost {
		return 0, false
	}
	spend = p.Credits - p.Credits%p.NextSpawnCost
	p.Credits -= spend
	p.Level++
	p.NextSpawnCost *= 2
	return spend, true
}

// EntitiesFor returns how many entities a level-up spend buys.
func (p *Progression) EntitiesFor(spend int) int {
	if p.params.CreditsPerEntity <= 0 {
		return 0
	}
	return spend / p.params.CreditsPerEntity
}

// CheckDepletion enters Depleting once current resources fall to half the stage total.
// It returns true only on the tick the transition happens.
func (p *Progression) CheckDepletion(now, delay time.Duration) bool {
	if p.Phase == PhaseDepleting || p.TotalResources <= 0 {
		return false
	}
	if p.CurrentResources*2 > p.TotalResources {
		return false
	}
	p.Phase = PhaseDepleting
	p.ResetDue = now + delay
	p.SpeedMultiplier = p.params.DepletionSpeed
	return true
}

// Reset advances to the next stage: the archetype grows, the economy returns to
// its stage-1 values and the resource multiplier doubles. Score persists.
// The caller sets the resource totals from the regenerated field.
func (p *Progression) Reset() {
	p.Stage++
	p.Archetype.Radius *= p.params.RadiusScale
	p.Archetype.BaseSpeed *= p.params.SpeedScale
	p.InitialEntityCount += p.params.EntityCountStep

	p.Phase = PhaseNormal
	p.ResetDue = 0
	p.SpeedMultiplier = 1
	p.Credits = 0
	p.Level = 1
	p.NextSpawnCost = p.params.InitialSpawnCost
	p.ResourceMultiplier *= 2
}

// SetResources sets both resource totals to total.
func (p *Progression) SetResources(total int) {
	p.CurrentResources = total
	p.TotalResources = total
}

// SpawnProgress is the fraction of the next spawn cost earned.
func (p *Progression) SpawnProgress() float64 {
	if p.NextSpawnCost <= 0 {
		return 0
	}
	return float64(p.Credits) / float64(p.NextSpawnCost)
}

// DepletionProgress is how far current resources have fallen toward the depletion
// threshold, in [0, 1].
func (p *Progression) DepletionProgress() float64 {
	if p.TotalResources <= 0 {
		return 0
	}
	half := float64(p.TotalResources) / 2
	return min(1, max(0, float64(p.TotalResources-p.CurrentResources)/half))
}

package components

import "time"

// Harvester tracks when an entity last touched a resource.
type Harvester struct {
	LastHit time.Duration
	HasHit  bool
}

// Ready reports whether a harvest is allowed at now.
func (h *Harvester) Ready(now, cooldown time.Duration) bool {
	return !h.HasHit || now-h.LastHit > cooldown
}

// Touch records a resource contact at now.
func (h *Harvester) Touch(now time.Duration) {
	h.LastHit = now
	h.HasHit = true
}

// Override is a temporary steering target. The zero value is inactive.
type Override struct {
	X, Y  float64
	Until time.Duration
	Set   bool
}

// Active reports whether the override still applies at now.
func (o *Override) Active(now time.Duration) bool {
	return o.Set && now < o.Until
}

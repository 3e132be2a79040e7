// Package components defines ECS components for the simulation.
package components

// Archetype is the template new entities are created from.
// Radius and BaseSpeed are upper bounds when the matching Random flag is set.
type Archetype struct {
	Radius          float64
	BaseSpeed       float64
	RandomRadius    bool
	RandomBaseSpeed bool
}

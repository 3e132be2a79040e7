package components

// Body holds physical properties of an entity.
type Body struct {
	Radius float64
}

// Motion holds speed state.
type Motion struct {
	Speed     float64 // velocity magnitude after the last integration step
	BaseSpeed float64 // fixed at creation
}

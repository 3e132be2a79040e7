package systems

import (
	"math"
	"math/rand"
	"sort"
)

// RGB is an 8-bit color.
type RGB [3]uint8

// Cell is an integer grid coordinate in the resource grid.
type Cell struct {
	X, Y int
}

// Resource is one consumable grid cell.
type Resource struct {
	Cell
	Health    int
	MaxHealth int
	Color     RGB
}

// Alpha returns the remaining health fraction, used for fading.
func (r *Resource) Alpha() float64 {
	if r.MaxHealth <= 0 {
		return 0
	}
	return float64(r.Health) / float64(r.MaxHealth)
}

// CellOf maps a world position to its grid cell.
func CellOf(x, y, cellSize float64) Cell {
	return Cell{X: int(math.Floor(x / cellSize)), Y: int(math.Floor(y / cellSize))}
}

// CellCenter returns the world position of a cell's center.
func CellCenter(c Cell, cellSize float64) (float64, float64) {
	return (float64(c.X) + 0.5) * cellSize, (float64(c.Y) + 0.5) * cellSize
}

// ResourceField is a sparse grid of resources keyed by cell.
// Every resource present has 0 < Health <= MaxHealth; there is at most one per cell.
type ResourceField struct {
	index map[Cell]int
	list  []*Resource
}

// NewResourceField creates an empty field.
func NewResourceField() *ResourceField {
	return &ResourceField{index: make(map[Cell]int)}
}

// Len returns the number of resources in the field.
func (rf *ResourceField) Len() int {
	return len(rf.list)
}

// At returns the resource at c, or nil.
func (rf *ResourceField) At(c Cell) *Resource {
	i, ok := rf.index[c]
	if !ok {
		return nil
	}
	return rf.list[i]
}

// Has reports whether c is occupied.
func (rf *ResourceField) Has(c Cell) bool {
	_, ok := rf.index[c]
	return ok
}

// Add inserts r. It refuses occupied cells and resources with no health.
func (rf *ResourceField) Add(r Resource) bool {
	if r.Health <= 0 || r.MaxHealth <= 0 || r.Health > r.MaxHealth {
		return false
	}
	if rf.Has(r.Cell) {
		return false
	}
	res := r
	rf.index[r.Cell] = len(rf.list)
	rf.list = append(rf.list, &res)
	return true
}

// AddAll inserts every resource that Add accepts and returns how many were added.
func (rf *ResourceField) AddAll(rs []Resource) int {
	n := 0
	for _, r := range rs {
		if rf.Add(r) {
			n++
		}
	}
	return n
}

// Damage removes n health from the resource at c. ok is false when the cell is empty;
// removed is true when the resource reached zero health and was deleted.
func (rf *ResourceField) Damage(c Cell, n int) (removed, ok bool) {
	i, ok := rf.index[c]
	if !ok {
		return false, false
	}
	r := rf.list[i]
	r.Health -= n
	if r.Health > 0 {
		return false, true
	}
	rf.remove(i)
	return true, true
}

// remove deletes the resource at list position i by swapping in the last one.
func (rf *ResourceField) remove(i int) {
	last := len(rf.list) - 1
	delete(rf.index, rf.list[i].Cell)
	if i != last {
		rf.list[i] = rf.list[last]
		rf.index[rf.list[i].Cell] = i
	}
	rf.list[last] = nil
	rf.list = rf.list[:last]
}

// TotalHealth sums the health of every resource.
func (rf *ResourceField) TotalHealth() int {
	total := 0
	for _, r := range rf.list {
		total += r.Health
	}
	return total
}

// Each calls fn for every resource. fn must not add or remove resources.
func (rf *ResourceField) Each(fn func(r *Resource)) {
	for _, r := range rf.list {
		fn(r)
	}
}

// Resources returns a copy of every resource.
func (rf *ResourceField) Resources() []Resource {
	out := make([]Resource, len(rf.list))
	for i, r := range rf.list {
		out[i] = *r
	}
	return out
}

// FoodType selects the density and toughness of a generated batch.
type FoodType uint8

const (
	FoodScarce FoodType = iota + 1
	FoodAbundant
)

func (f FoodType) String() string {
	switch f {
	case FoodScarce:
		return "scarce"
	case FoodAbundant:
		return "abundant"
	default:
		return "unknown"
	}
}

// FoodForStage alternates food types on a three-stage cycle: stages 1, 4, 7... are abundant.
func FoodForStage(stage int) FoodType {
	if stage%3 == 1 {
		return FoodAbundant
	}
	return FoodScarce
}

// GeneratorParams configures procedural resource generation.
type GeneratorParams struct {
	CellSize         float64
	BorderMargin     int     // cells kept empty along each border
	EmptyRadius      float64 // cells kept empty around the grid center
	NoiseScale       float64
	ScarcePerStage   int
	AbundantPerStage int
	ScarceHealth     int
	AbundantHealth   int
	FormationHealth  int
	Darken           float64 // channel multiplier applied after the gradient
	ColorJitter      int     // max absolute per-channel offset
	Aggressiveness   float64 // exponent factor applied to log2(stage+1)
}

// HealthFor returns the max health of a resource of the given food type.
func (p GeneratorParams) HealthFor(food FoodType) int {
	if food == FoodScarce {
		return p.ScarceHealth
	}
	return p.AbundantHealth
}

// CountFor returns the target resource count of a batch.
func (p GeneratorParams) CountFor(food FoodType, stage int) int {
	if food == FoodScarce {
		return p.ScarcePerStage * stage
	}
	return p.AbundantPerStage * stage
}

// GenerateRequest describes one generated batch.
type GenerateRequest struct {
	Width, Height float64 // world size
	Stage         int
	Food          FoodType
	MaxHealth     int
	From, To      RGB // gradient endpoints; high noise maps toward From
}

// Generator produces noise-ranked resource batches.
type Generator struct {
	Params GeneratorParams

	noiseKind string
	noise     Noise2D // fixed source; nil means a fresh seeded source per batch
	rng       *rand.Rand
}

// NewGenerator creates a generator that draws a fresh noise field of the given kind per batch.
func NewGenerator(params GeneratorParams, noiseKind string, rng *rand.Rand) *Generator {
	return &Generator{Params: params, noiseKind: noiseKind, rng: rng}
}

// WithNoise fixes the noise source used for every batch.
func (g *Generator) WithNoise(n Noise2D) *Generator {
	g.noise = n
	return g
}

type candidate struct {
	cell  Cell
	value float64
}

// Generate builds a batch for the request. Cells already present in existing are
// skipped after ranking, so a batch may hold fewer than the target count.
func (g *Generator) Generate(req GenerateRequest, existing *ResourceField) ([]Resource, error) {
	noise := g.noise
	if noise == nil {
		n, err := NewNoise(g.noiseKind, g.rng.Int63())
		if err != nil {
			return nil, err
		}
		noise = n
	}

	p := g.Params
	gridW := int(math.Floor(req.Width / p.CellSize))
	gridH := int(math.Floor(req.Height / p.CellSize))
	centerX := float64(gridW) / 2
	centerY := float64(gridH) / 2
	emptySq := p.EmptyRadius * p.EmptyRadius

	var candidates []candidate
	minNoise := math.Inf(1)
	maxNoise := math.Inf(-1)
	for x := p.BorderMargin; x < gridW-p.BorderMargin; x++ {
		for y := p.BorderMargin; y < gridH-p.BorderMargin; y++ {
			dx := float64(x) - centerX
			dy := float64(y) - centerY
			if dx*dx+dy*dy <= emptySq {
				continue
			}
			v := noise.Eval(float64(x)*p.NoiseScale, float64(y)*p.NoiseScale)
			candidates = append(candidates, candidate{cell: Cell{X: x, Y: y}, value: v})
			minNoise = math.Min(minNoise, v)
			maxNoise = math.Max(maxNoise, v)
		}
	}

	span := maxNoise - minNoise
	for i := range candidates {
		if span > 0 {
			candidates[i].value = (candidates[i].value - minNoise) / span
		} else {
			candidates[i].value = 0
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].value > candidates[j].value
	})

	count := p.CountFor(req.Food, req.Stage)
	if count > len(candidates) {
		count = len(candidates)
	}

	exponent := p.Aggressiveness * math.Log2(float64(req.Stage)+1)
	out := make([]Resource, 0, count)
	for _, c := range candidates[:count] {
		if existing != nil && existing.Has(c.cell) {
			continue
		}
		out = append(out, Resource{
			Cell:      c.cell,
			Health:    req.MaxHealth,
			MaxHealth: req.MaxHealth,
			Color:     g.shade(math.Pow(c.value, exponent), req.To, req.From),
		})
	}
	return out, nil
}

// shade interpolates from a to b, darkens, and jitters each channel.
func (g *Generator) shade(t float64, a, b RGB) RGB {
	var out RGB
	for i := range out {
		ch := math.Round(float64(a[i]) + (float64(b[i])-float64(a[i]))*t)
		ch = math.Round(ch * g.Params.Darken)
		if j := g.Params.ColorJitter; j > 0 {
			ch += float64(g.rng.Intn(2*j+1) - j)
		}
		out[i] = uint8(math.Max(0, math.Min(255, ch)))
	}
	return out
}

// startFormation is the fixed resource pattern placed at world start.
var startFormation = [5][10]uint8{
	{0, 0, 0, 1, 0, 0, 0, 0, 0, 0},
	{0, 0, 0, 1, 1, 0, 0, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 0, 1, 1, 1},
	{0, 0, 0, 1, 1, 0, 0, 1, 1, 1},
	{0, 0, 0, 1, 0, 0, 0, 0, 0, 0},
}

// StartFormation returns the fixed pattern centered horizontally at a quarter of the
// world height.
func (g *Generator) StartFormation(width, height float64, color RGB) []Resource {
	cs := g.Params.CellSize
	centerX := int(math.Floor(width / (2 * cs)))
	centerY := int(math.Floor(height / (2 * cs) * 0.5))
	rows := len(startFormation)
	cols := len(startFormation[0])
	startX := centerX - cols/2
	startY := centerY - rows/2

	var out []Resource
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			if startFormation[y][x] == 1 {
				out = append(out, Resource{
					Cell:      Cell{X: startX + x, Y: startY + y},
					Health:    g.Params.FormationHealth,
					MaxHealth: g.Params.FormationHealth,
					Color:     color,
				})
			}
		}
	}
	return out
}

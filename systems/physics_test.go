package systems

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swarm/components"
)

func testSteering() SteeringParams {
	return SteeringParams{Force: 0.1, ArriveDistance: 1, Damping: 0.95}
}

func testHarvest() HarvestParams {
	return HarvestParams{CellSize: 8, BounceStrength: 5, Clearance: 4, Cooldown: time.Millisecond}
}

func TestSteer(t *testing.T) {
	tests := []struct {
		name       string
		pos        components.Position
		vel        components.Velocity
		target     [2]float64
		multiplier float64
		wantPos    components.Position
		wantVel    components.Velocity
		wantSpeed  float64
	}{
		{
			name:       "accelerates toward target",
			pos:        components.Position{X: 0, Y: 0},
			target:     [2]float64{10, 0},
			multiplier: 1,
			wantPos:    components.Position{X: 0.2, Y: 0},
			wantVel:    components.Velocity{X: 0.19, Y: 0},
			wantSpeed:  0.2,
		},
		{
			name:       "speed multiplier scales force",
			pos:        components.Position{X: 0, Y: 0},
			target:     [2]float64{0, -10},
			multiplier: 10,
			wantPos:    components.Position{X: 0, Y: -2},
			wantVel:    components.Velocity{X: 0, Y: -1.9},
			wantSpeed:  2,
		},
		{
			name:       "no force inside arrive distance",
			pos:        components.Position{X: 5, Y: 5},
			vel:        components.Velocity{X: 1, Y: 0},
			target:     [2]float64{5.5, 5},
			multiplier: 1,
			wantPos:    components.Position{X: 6, Y: 5},
			wantVel:    components.Velocity{X: 0.95, Y: 0},
			wantSpeed:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, vel := tt.pos, tt.vel
			motion := components.Motion{BaseSpeed: 2}
			Steer(&pos, &vel, &motion, tt.target[0], tt.target[1], tt.multiplier, testSteering())

			if math.Abs(pos.X-tt.wantPos.X) > 1e-9 || math.Abs(pos.Y-tt.wantPos.Y) > 1e-9 {
				t.Errorf("pos = %+v, want %+v", pos, tt.wantPos)
			}
			if math.Abs(vel.X-tt.wantVel.X) > 1e-9 || math.Abs(vel.Y-tt.wantVel.Y) > 1e-9 {
				t.Errorf("vel = %+v, want %+v", vel, tt.wantVel)
			}
			if math.Abs(motion.Speed-tt.wantSpeed) > 1e-9 {
				t.Errorf("speed = %v, want %v", motion.Speed, tt.wantSpeed)
			}
		})
	}
}

func TestHarvestBounceAndClamp(t *testing.T) {
	field := NewResourceField()
	field.Add(Resource{Cell: Cell{2, 2}, Health: 3, MaxHealth: 3})

	// Cell (2,2) is centered at (20,20); entity sits 1 unit right of center.
	pos := components.Position{X: 21, Y: 20}
	vel := components.Velocity{}
	body := components.Body{Radius: 4}
	var h components.Harvester

	res := Harvest(&pos, &vel, &body, &h, field, 10*time.Millisecond, testHarvest())
	if !res.Contact || !res.Harvested || res.Depleted {
		t.Fatalf("result = %+v, want contact and harvest without depletion", res)
	}
	if math.Abs(vel.X-5) > 1e-9 || math.Abs(vel.Y) > 1e-9 {
		t.Errorf("vel = %+v, want bounce (5, 0)", vel)
	}
	if math.Abs(pos.X-28) > 1e-9 || math.Abs(pos.Y-20) > 1e-9 {
		t.Errorf("pos = %+v, want clamped to (28, 20)", pos)
	}
	if got := field.At(Cell{2, 2}).Health; got != 2 {
		t.Errorf("health = %d, want 2", got)
	}
	if !h.HasHit || h.LastHit != 10*time.Millisecond {
		t.Errorf("harvester = %+v, want last hit at 10ms", h)
	}
}

func TestHarvestCooldown(t *testing.T) {
	field := NewResourceField()
	field.Add(Resource{Cell: Cell{0, 0}, Health: 10, MaxHealth: 10})
	p := testHarvest()

	var h components.Harvester
	attempt := func(now time.Duration) HarvestResult {
		pos := components.Position{X: 3, Y: 3}
		vel := components.Velocity{}
		body := components.Body{Radius: 1}
		return Harvest(&pos, &vel, &body, &h, field, now, p)
	}

	steps := []struct {
		now  time.Duration
		want bool
	}{
		{0, true}, // first contact always harvests
		{500 * time.Microsecond, false},
		{time.Millisecond + 400*time.Microsecond, false}, // blocked contact refreshed LastHit
		{3 * time.Millisecond, true},
	}
	for i, s := range steps {
		res := attempt(s.now)
		if !res.Contact {
			t.Fatalf("step %d: no contact", i)
		}
		if res.Harvested != s.want {
			t.Errorf("step %d at %v: harvested = %v, want %v", i, s.now, res.Harvested, s.want)
		}
	}
	if got := field.At(Cell{0, 0}).Health; got != 8 {
		t.Errorf("health = %d, want 8", got)
	}
}

func TestHarvestDepletes(t *testing.T) {
	field := NewResourceField()
	field.Add(Resource{Cell: Cell{1, 0}, Health: 1, MaxHealth: 5})

	pos := components.Position{X: 10, Y: 2}
	vel := components.Velocity{}
	body := components.Body{Radius: 4}
	var h components.Harvester

	res := Harvest(&pos, &vel, &body, &h, field, 0, testHarvest())
	if !res.Harvested || !res.Depleted {
		t.Fatalf("result = %+v, want depletion", res)
	}
	if field.Len() != 0 {
		t.Errorf("field Len = %d, want 0", field.Len())
	}
}

func TestHarvestEmptyCellAndDegenerateContact(t *testing.T) {
	field := NewResourceField()
	field.Add(Resource{Cell: Cell{0, 0}, Health: 2, MaxHealth: 2})
	var h components.Harvester
	body := components.Body{Radius: 4}

	pos := components.Position{X: 50, Y: 50}
	vel := components.Velocity{X: 1}
	if res := Harvest(&pos, &vel, &body, &h, field, 0, testHarvest()); res.Contact {
		t.Errorf("empty cell reported contact: %+v", res)
	}

	// Exactly on the center: no push direction, but still a harvest.
	pos = components.Position{X: 4, Y: 4}
	vel = components.Velocity{X: 1}
	res := Harvest(&pos, &vel, &body, &h, field, 0, testHarvest())
	if !res.Contact || !res.Harvested {
		t.Fatalf("result = %+v, want contact and harvest", res)
	}
	if pos.X != 4 || pos.Y != 4 || vel.X != 1 || vel.Y != 0 {
		t.Errorf("degenerate contact moved entity: pos=%+v vel=%+v", pos, vel)
	}
}

func TestResolvePairConservesMomentum(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 1000; i++ {
		pa := components.Position{X: rng.Float64() * 10, Y: rng.Float64() * 10}
		pb := components.Position{X: pa.X + rng.Float64()*6 - 3, Y: pa.Y + rng.Float64()*6 - 3}
		va := components.Velocity{X: rng.Float64()*4 - 2, Y: rng.Float64()*4 - 2}
		vb := components.Velocity{X: rng.Float64()*4 - 2, Y: rng.Float64()*4 - 2}
		ba := components.Body{Radius: 1 + rng.Float64()*3}
		bb := components.Body{Radius: 1 + rng.Float64()*3}

		sumVX, sumVY := va.X+vb.X, va.Y+vb.Y
		midX, midY := pa.X+pb.X, pa.Y+pb.Y

		ResolvePair(&pa, &va, &ba, &pb, &vb, &bb)

		if math.Abs(va.X+vb.X-sumVX) > 1e-9 || math.Abs(va.Y+vb.Y-sumVY) > 1e-9 {
			t.Fatalf("pair %d: momentum changed", i)
		}
		if math.Abs(pa.X+pb.X-midX) > 1e-9 || math.Abs(pa.Y+pb.Y-midY) > 1e-9 {
			t.Fatalf("pair %d: separation was not symmetric", i)
		}
	}
}

func TestResolvePair(t *testing.T) {
	tests := []struct {
		name   string
		pa, pb components.Position
		va, vb components.Velocity
		want   bool
		wantVA components.Velocity
		wantPA components.Position
		wantPB components.Position
	}{
		{
			name:   "head-on approach exchanges normal velocity",
			pa:     components.Position{X: 0},
			pb:     components.Position{X: 6},
			va:     components.Velocity{X: 1},
			vb:     components.Velocity{X: -1},
			want:   true,
			wantVA: components.Velocity{X: -1},
			wantPA: components.Position{X: -1},
			wantPB: components.Position{X: 7},
		},
		{
			name:   "separating pair untouched",
			pa:     components.Position{X: 0},
			pb:     components.Position{X: 6},
			va:     components.Velocity{X: -1},
			vb:     components.Velocity{X: 1},
			wantVA: components.Velocity{X: -1},
			wantPA: components.Position{X: 0},
			wantPB: components.Position{X: 6},
		},
		{
			name:   "not overlapping",
			pa:     components.Position{X: 0},
			pb:     components.Position{X: 8},
			va:     components.Velocity{X: 1},
			vb:     components.Velocity{X: -1},
			wantVA: components.Velocity{X: 1},
			wantPA: components.Position{X: 0},
			wantPB: components.Position{X: 8},
		},
		{
			name:   "coincident pair skipped",
			pa:     components.Position{X: 3, Y: 3},
			pb:     components.Position{X: 3, Y: 3},
			va:     components.Velocity{X: 1},
			vb:     components.Velocity{X: -1},
			wantVA: components.Velocity{X: 1},
			wantPA: components.Position{X: 3, Y: 3},
			wantPB: components.Position{X: 3, Y: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pa, pb, va, vb := tt.pa, tt.pb, tt.va, tt.vb
			body := components.Body{Radius: 4}
			got := ResolvePair(&pa, &va, &body, &pb, &vb, &body)
			if got != tt.want {
				t.Fatalf("ResolvePair = %v, want %v", got, tt.want)
			}
			if math.Abs(va.X-tt.wantVA.X) > 1e-9 || math.Abs(va.Y-tt.wantVA.Y) > 1e-9 {
				t.Errorf("va = %+v, want %+v", va, tt.wantVA)
			}
			if math.Abs(pa.X-tt.wantPA.X) > 1e-9 || math.Abs(pb.X-tt.wantPB.X) > 1e-9 {
				t.Errorf("positions = %+v %+v, want %+v %+v", pa, pb, tt.wantPA, tt.wantPB)
			}
		})
	}
}

func TestCollisionSystemUsesTree(t *testing.T) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap3[components.Position, components.Velocity, components.Body](w)

	a := mapper.NewEntity(&components.Position{X: 50, Y: 50}, &components.Velocity{X: 1}, &components.Body{Radius: 4})
	b := mapper.NewEntity(&components.Position{X: 56, Y: 50}, &components.Velocity{X: -1}, &components.Body{Radius: 4})
	c := mapper.NewEntity(&components.Position{X: 150, Y: 150}, &components.Velocity{X: -1}, &components.Body{Radius: 4})

	tree := NewQuadTree(Rect{X: 0, Y: 0, W: 200, H: 200}, 4)
	posMap := ecs.NewMap[components.Position](w)
	for _, e := range []ecs.Entity{a, b, c} {
		p := posMap.Get(e)
		tree.Insert(e, p.X, p.Y)
	}

	cs := NewCollisionSystem(w, 2)
	if n := cs.Resolve(a, tree); n != 1 {
		t.Fatalf("Resolve(a) = %d, want 1", n)
	}
	velMap := ecs.NewMap[components.Velocity](w)
	if v := velMap.Get(b); math.Abs(v.X-1) > 1e-9 {
		t.Errorf("b velocity = %+v, want (1, 0)", v)
	}
	// The pair is now separating; resolving from b does nothing.
	if n := cs.Resolve(b, tree); n != 0 {
		t.Errorf("Resolve(b) = %d, want 0", n)
	}
	if n := cs.Resolve(c, tree); n != 0 {
		t.Errorf("Resolve(c) = %d, want 0", n)
	}
}

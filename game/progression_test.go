package game

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/swarm/components"
)

func testProgressionParams() ProgressionParams {
	return ProgressionParams{
		InitialSpawnCost: 250,
		CreditsPerEntity: 50,
		DepletionSpeed:   10,
		RadiusScale:      1.2,
		SpeedScale:       1.1,
		EntityCountStep:  20,
	}
}

func newTestProgression() *Progression {
	return NewProgression(testProgressionParams(), components.Archetype{Radius: 4, BaseSpeed: 2}, 20)
}

func TestLevelUpSpendsLargestMultiple(t *testing.T) {
	tests := []struct {
		name       string
		credits    int
		wantOK     bool
		wantSpend  int
		wantLeft   int
		wantEntity int
	}{
		{"below cost", 249, false, 0, 249, 0},
		{"exact cost", 250, true, 250, 0, 5},
		{"remainder kept", 640, true, 500, 140, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProgression()
			p.Credits = tt.credits
			spend, ok := p.LevelUp()
			if ok != tt.wantOK || spend != tt.wantSpend || p.Credits != tt.wantLeft {
				t.Fatalf("LevelUp = (%d, %v), credits %d; want (%d, %v), credits %d",
					spend, ok, p.Credits, tt.wantSpend, tt.wantOK, tt.wantLeft)
			}
			if got := p.EntitiesFor(spend); got != tt.wantEntity {
				t.Errorf("EntitiesFor(%d) = %d, want %d", spend, got, tt.wantEntity)
			}
		})
	}
}

func TestSpawnCostDoubling(t *testing.T) {
	p := newTestProgression()
	for k := 1; k <= 8; k++ {
		p.Credits = p.NextSpawnCost
		if _, ok := p.LevelUp(); !ok {
			t.Fatalf("level-up %d did not fire", k)
		}
		if want := 250 << k; p.NextSpawnCost != want {
			t.Fatalf("after %d level-ups cost = %d, want %d", k, p.NextSpawnCost, want)
		}
		if p.Level != k+1 {
			t.Fatalf("level = %d, want %d", p.Level, k+1)
		}
	}
}

func TestDepletionTriggersOnce(t *testing.T) {
	p := newTestProgression()
	p.SetResources(3000)

	fired := 0
	for i := 0; i < 3000; i++ {
		p.RecordHarvest()
		if p.CheckDepletion(time.Duration(i)*time.Millisecond, 5*time.Second) {
			fired++
			if p.CurrentResources != 1500 {
				t.Errorf("depletion fired at current = %d, want 1500", p.CurrentResources)
			}
			if p.ResetDue != time.Duration(i)*time.Millisecond+5*time.Second {
				t.Errorf("ResetDue = %v", p.ResetDue)
			}
		}
	}
	if fired != 1 {
		t.Errorf("depletion fired %d times, want 1", fired)
	}
	if p.Phase != PhaseDepleting || p.SpeedMultiplier != 10 {
		t.Errorf("phase=%v speed=%v, want depleting and 10", p.Phase, p.SpeedMultiplier)
	}
	if p.DepletionProgress() != 1 {
		t.Errorf("DepletionProgress = %v, want 1", p.DepletionProgress())
	}
}

func TestProgressionReset(t *testing.T) {
	p := newTestProgression()
	p.SetResources(3000)
	p.Credits = 600
	p.Score = 1700
	p.LevelUp()
	p.CurrentResources = 1400
	p.CheckDepletion(0, time.Second)

	p.Reset()

	if p.Stage != 2 || p.Level != 1 || p.Credits != 0 || p.NextSpawnCost != 250 {
		t.Errorf("economy after reset = %+v", p)
	}
	if p.Phase != PhaseNormal || p.SpeedMultiplier != 1 || p.ResourceMultiplier != 2 {
		t.Errorf("phase=%v speed=%v resMul=%v", p.Phase, p.SpeedMultiplier, p.ResourceMultiplier)
	}
	if p.Score != 1700 {
		t.Errorf("score = %d, want it kept at 1700", p.Score)
	}
	if math.Abs(p.Archetype.Radius-4.8) > 1e-9 || math.Abs(p.Archetype.BaseSpeed-2.2) > 1e-9 {
		t.Errorf("archetype = %+v, want radius 4.8 speed 2.2", p.Archetype)
	}
	if p.InitialEntityCount != 40 {
		t.Errorf("initial entity count = %d, want 40", p.InitialEntityCount)
	}

	// A fresh crossing can trigger depletion again.
	p.SetResources(1000)
	p.CurrentResources = 400
	if !p.CheckDepletion(time.Second, time.Second) {
		t.Error("depletion did not re-arm after reset")
	}
}

func TestProgressRatios(t *testing.T) {
	p := newTestProgression()
	p.Credits = 125
	if got := p.SpawnProgress(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("SpawnProgress = %v, want 0.5", got)
	}

	p.SetResources(3000)
	p.CurrentResources = 2250
	if got := p.DepletionProgress(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("DepletionProgress = %v, want 0.5", got)
	}
}

func TestRecordHarvestFeedsEconomy(t *testing.T) {
	p := newTestProgression()
	p.SetResources(3000)

	for i := 0; i < 1499; i++ {
		p.RecordHarvest()
	}
	if p.Credits != 1499 || p.Score != 1499 || p.CurrentResources != 1501 {
		t.Fatalf("credits/score/current = %d/%d/%d, want 1499/1499/1501", p.Credits, p.Score, p.CurrentResources)
	}
	if p.CheckDepletion(0, 5*time.Second) {
		t.Fatal("depleting at 1501 of 3000")
	}

	p.RecordHarvest()
	if !p.CheckDepletion(time.Second, 5*time.Second) {
		t.Fatal("not depleting at 1500 of 3000")
	}
	if p.TotalResources != 3000 || p.ResetDue != 6*time.Second {
		t.Errorf("total=%d resetDue=%v, want 3000 6s", p.TotalResources, p.ResetDue)
	}
}

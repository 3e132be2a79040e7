package main

import (
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/game"
	"github.com/pthm-cable/swarm/telemetry"
)

// Patrol drives the rally point around a circle centred on the world so runs
// harvest without a player.
type Patrol struct {
	Points     int           // stops on the circle
	Interval   time.Duration // time at each stop
	RadiusFrac float64       // circle radius as a fraction of min(width, height)
}

// DefaultPatrol is the autopilot used when no flags override it.
var DefaultPatrol = Patrol{Points: 12, Interval: 2 * time.Second, RadiusFrac: 0.35}

// target returns the rally point for the given stop.
func (p Patrol) target(stop int, w, h float64) (x, y float64) {
	radius := math.Min(w, h) * p.RadiusFrac
	angle := 2 * math.Pi * float64(stop%p.Points) / float64(p.Points)
	return w/2 + radius*math.Cos(angle), h/2 + radius*math.Sin(angle)
}

// RunSummary is the outcome of one seed.
type RunSummary struct {
	Seed    int64
	Stage   int
	Score   int
	Quality float64
	Fitness float64
}

// Evaluation is the outcome of one candidate across all seeds.
type Evaluation struct {
	Fitness float64 // mean over runs, lower is better
	Runs    []RunSummary
}

// MeanStage returns the average stage reached.
func (e Evaluation) MeanStage() float64 {
	return e.mean(func(r RunSummary) float64 { return float64(r.Stage) })
}

// MeanScore returns the average final score.
func (e Evaluation) MeanScore() float64 {
	return e.mean(func(r RunSummary) float64 { return float64(r.Score) })
}

// MeanQuality returns the average harvest steadiness.
func (e Evaluation) MeanQuality() float64 {
	return e.mean(func(r RunSummary) float64 { return r.Quality })
}

func (e Evaluation) mean(f func(RunSummary) float64) float64 {
	if len(e.Runs) == 0 {
		return 0
	}
	xs := make([]float64, len(e.Runs))
	for i, r := range e.Runs {
		xs[i] = f(r)
	}
	return stat.Mean(xs, nil)
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	patrol      Patrol
	statsWindow float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, patrol Patrol) *FitnessEvaluator {
	if patrol.Points < 1 {
		patrol.Points = 1
	}
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		patrol:      patrol,
		statsWindow: 5.0,
	}
}

// runResult holds the results from a single simulation run.
type runResult struct {
	score       int
	stage       int
	windowStats []telemetry.WindowStats
}

// Evaluate runs every seed in parallel with raw parameter values x.
func (fe *FitnessEvaluator) Evaluate(x []float64) Evaluation {
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	eval := Evaluation{Runs: make([]RunSummary, len(results))}
	for i, r := range results {
		quality := computeQuality(r.windowStats)
		fitness := computeFitness(r, quality)
		eval.Runs[i] = RunSummary{
			Seed:    fe.seeds[i],
			Stage:   r.stage,
			Score:   r.score,
			Quality: quality,
			Fitness: fitness,
		}
		eval.Fitness += fitness
	}
	if len(results) > 0 {
		eval.Fitness /= float64(len(results))
	}
	return eval
}

// runSimulation executes a single headless run of maxTicks ticks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{}
	g, err := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return result
	}
	defer g.Unload()

	interval := max(1, int32(fe.patrol.Interval.Seconds()/game.DT))
	stop := 0
	for g.Tick() < fe.maxTicks {
		if g.Tick()%interval == 0 {
			w, h := g.WorldSize()
			g.SetRallyPoint(fe.patrol.target(stop, w, h))
			stop++
		}
		g.UpdateHeadless()
	}

	p := g.Progress()
	result.score = p.Score
	result.stage = p.Stage
	return result
}

// copyConfig returns a copy of the base config safe to modify per run.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(score + stageBonus*(stage-1)) × (1 + 0.2 × quality)
func computeFitness(r *runResult, quality float64) float64 {
	const stageBonus = 2000
	value := float64(r.score) + stageBonus*float64(r.stage-1)
	return -(value * (1.0 + 0.2*quality))
}

const qualityWarmupWindows = 2 // skip first N windows (initial dispersal)

// computeQuality scores how steady harvesting is across windows, in [0, 1].
// A swarm that harvests evenly scores higher than one that stalls between bursts.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows+1 {
		return 0
	}

	valid := windows[qualityWarmupWindows:]
	harvests := make([]float64, len(valid))
	for i, w := range valid {
		harvests[i] = float64(w.Harvests)
	}

	mean, std := stat.MeanStdDev(harvests, nil)
	if mean <= 0 {
		return 0
	}
	cv := std / mean
	return math.Exp(-cv * cv)
}

// Command tune searches movement and contact parameters with CMA-ES, scoring
// headless runs by harvest score and stages reached.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/swarm/config"
)

// best tracks the best candidate seen by any evaluation.
type best struct {
	values []float64
	eval   Evaluation
	n      int
}

func (b *best) offer(n int, values []float64, eval Evaluation) bool {
	if b.values != nil && eval.Fitness >= b.eval.Fitness {
		return false
	}
	b.values = append(b.values[:0], values...)
	b.eval = eval
	b.n = n
	return true
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	outputDir := flag.String("output", "", "Output directory for tune_log.csv and best_config.yaml")
	maxTicks := flag.Int("max-ticks", 36000, "Ticks per run")
	seeds := flag.Int("seeds", 3, "Seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Evaluation budget")
	population := flag.Int("population", 0, "CMA-ES population size (0 = 4 + 1.5 per parameter)")
	stepSize := flag.Float64("step", 0.3, "Initial CMA-ES step size in normalized units")
	patrolPoints := flag.Int("patrol-points", DefaultPatrol.Points, "Autopilot stops around the world center")
	patrolEvery := flag.Duration("patrol-every", DefaultPatrol.Interval, "Autopilot time per stop")
	patrolRadius := flag.Float64("patrol-radius", DefaultPatrol.RadiusFrac, "Autopilot circle radius as a fraction of the shorter world side")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("-output is required")
	}

	// Per-run game logs would drown the progress lines.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}
	baseCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	params := NewParamVector()
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	patrol := Patrol{Points: *patrolPoints, Interval: *patrolEvery, RadiusFrac: *patrolRadius}
	evaluator := NewFitnessEvaluator(params, int32(*maxTicks), evalSeeds, baseCfg, patrol)

	evalLog, err := createEvalLog(filepath.Join(*outputDir, "tune_log.csv"))
	if err != nil {
		log.Fatal(err)
	}
	defer evalLog.Close()

	popSize := *population
	if popSize == 0 {
		popSize = 4 + 3*params.Dim()/2
	}

	fmt.Printf("tuning %d parameters: population=%d evals=%d seeds=%d ticks=%d patrol=%d stops/%s\n",
		params.Dim(), popSize, *maxEvals, *seeds, *maxTicks, patrol.Points, patrol.Interval)

	var top best
	n := 0
	start := time.Now()
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			values := params.Clamp(params.Denormalize(x))
			eval := evaluator.Evaluate(values)
			n++

			if err := evalLog.Write(newEvalRecord(n, eval, values)); err != nil {
				log.Printf("%v", err)
			}
			mark := ""
			if top.offer(n, values, eval) {
				mark = " *"
			}
			eta := time.Duration(*maxEvals-n) * time.Since(start) / time.Duration(n)
			fmt.Printf("#%-4d fitness=%9.0f stage=%4.1f score=%7.0f quality=%.2f eta=%s%s\n",
				n, eval.Fitness, eval.MeanStage(), eval.MeanScore(), eval.MeanQuality(),
				eta.Round(time.Second), mark)
			return eval.Fitness
		},
	}

	_, err = optimize.Minimize(problem, params.Normalize(params.DefaultVector()),
		&optimize.Settings{FuncEvaluations: *maxEvals},
		&optimize.CmaEsChol{InitStepSize: *stepSize, Population: popSize})
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if top.values == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nbest of %d evaluations (#%d) after %s\n", n, top.n, time.Since(start).Round(time.Second))
	for i, spec := range params.Specs {
		fmt.Printf("  %-16s %.4f  (%s)\n", spec.Name, top.values[i], spec.Path)
	}
	fmt.Println("per seed:")
	for _, r := range top.eval.Runs {
		fmt.Printf("  seed %-6d stage %-3d score %-7d quality %.2f\n", r.Seed, r.Stage, r.Score, r.Quality)
	}

	params.ApplyToConfig(baseCfg, top.values)
	out := filepath.Join(*outputDir, "best_config.yaml")
	if err := writeTuned(out, baseCfg); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("tuned sections written to %s\n", out)
}

package main

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/swarm/config"
)

// evalRecord is one row of tune_log.csv. Parameter columns follow NewParamVector.
type evalRecord struct {
	Eval           int     `csv:"eval"`
	Fitness        float64 `csv:"fitness"`
	MeanStage      float64 `csv:"mean_stage"`
	MeanScore      float64 `csv:"mean_score"`
	Quality        float64 `csv:"quality"`
	SteerForce     float64 `csv:"steer_force"`
	ArriveDistance float64 `csv:"arrive_distance"`
	Damping        float64 `csv:"damping"`
	BounceStrength float64 `csv:"bounce_strength"`
	Clearance      float64 `csv:"clearance"`
	QueryFactor    float64 `csv:"query_factor"`
}

func newEvalRecord(n int, eval Evaluation, values []float64) evalRecord {
	return evalRecord{
		Eval:           n,
		Fitness:        eval.Fitness,
		MeanStage:      eval.MeanStage(),
		MeanScore:      eval.MeanScore(),
		Quality:        eval.MeanQuality(),
		SteerForce:     values[0],
		ArriveDistance: values[1],
		Damping:        values[2],
		BounceStrength: values[3],
		Clearance:      values[4],
		QueryFactor:    values[5],
	}
}

// evalLog appends evaluation rows, writing the header with the first one.
type evalLog struct {
	f      *os.File
	header bool
}

func createEvalLog(path string) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}
	return &evalLog{f: f}, nil
}

func (l *evalLog) Write(r evalRecord) error {
	rows := []evalRecord{r}
	var err error
	if !l.header {
		err = gocsv.Marshal(rows, l.f)
		l.header = err == nil
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, l.f)
	}
	if err != nil {
		return fmt.Errorf("writing eval log: %w", err)
	}
	return nil
}

func (l *evalLog) Close() error {
	return l.f.Close()
}

// tunedSections is the subset of the config the tuner changes. Written on its own
// it loads as an overlay on top of the defaults.
type tunedSections struct {
	Steering  config.SteeringConfig  `yaml:"steering"`
	Harvest   config.HarvestConfig   `yaml:"harvest"`
	Collision config.CollisionConfig `yaml:"collision"`
}

// writeTuned writes the tuned sections of cfg to path.
func writeTuned(path string, cfg *config.Config) error {
	data, err := yaml.Marshal(tunedSections{
		Steering:  cfg.Steering,
		Harvest:   cfg.Harvest,
		Collision: cfg.Collision,
	})
	if err != nil {
		return fmt.Errorf("encoding tuned config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing tuned config: %w", err)
	}
	return nil
}

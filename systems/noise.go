package systems

import (
	"fmt"

	perlin "github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Noise2D generates coherent noise values.
type Noise2D interface {
	Eval(x, y float64) float64
}

// Noise backend names accepted by NewNoise.
const (
	NoiseSimplex = "simplex"
	NoisePerlin  = "perlin"
)

// Perlin parameters: persistence, lacunarity and octaves.
const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
)

// NewNoise creates a seeded noise source for the named backend.
func NewNoise(kind string, seed int64) (Noise2D, error) {
	switch kind {
	case NoiseSimplex, "":
		return simplexNoise{n: opensimplex.New(seed)}, nil
	case NoisePerlin:
		return perlinNoise{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)}, nil
	default:
		return nil, fmt.Errorf("unknown noise backend %q", kind)
	}
}

type simplexNoise struct {
	n opensimplex.Noise
}

func (s simplexNoise) Eval(x, y float64) float64 {
	return s.n.Eval2(x, y)
}

type perlinNoise struct {
	p *perlin.Perlin
}

func (p perlinNoise) Eval(x, y float64) float64 {
	return p.p.Noise2D(x, y)
}

// NoiseFunc adapts a plain function to Noise2D.
type NoiseFunc func(x, y float64) float64

// Eval calls f.
func (f NoiseFunc) Eval(x, y float64) float64 {
	return f(x, y)
}

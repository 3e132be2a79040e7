// Resource field preview tool - interactive view of generated stage batches.
//
// Usage: go run ./cmd/fieldpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/systems"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewW     = 640
	previewH     = 400
	panelWidth   = windowWidth - previewW - 40
)

// PreviewParams holds the generator knobs exposed as sliders.
type PreviewParams struct {
	Stage          int
	NoiseScale     float32
	Aggressiveness float32
	Seed           int64
	Noise          string
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	rl.InitWindow(windowWidth, windowHeight, "Resource Field Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	defaults := PreviewParams{
		Stage:          1,
		NoiseScale:     float32(cfg.Resource.NoiseScale),
		Aggressiveness: float32(cfg.Resource.Aggressiveness),
		Seed:           12345,
		Noise:          cfg.Resource.Noise,
	}
	params := defaults

	var batch []systems.Resource
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			batch = generate(cfg, params)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)

		drawBatch(cfg, batch)
		rl.DrawRectangleLines(10, 10, previewW, previewH, rl.DarkGray)

		total := 0
		for _, r := range batch {
			total += r.Health
		}
		statsY := int32(previewH + 25)
		food := systems.FoodForStage(params.Stage)
		rl.DrawText(fmt.Sprintf("Food: %s  Resources: %d  Total health: %d", food, len(batch), total), 15, statsY, 16, rl.LightGray)
		rl.DrawText(fmt.Sprintf("World: %.0fx%.0f  Cell: %.0f", cfg.Derived.WorldW, cfg.Derived.WorldH, cfg.Harvest.CellSize), 15, statsY+20, 16, rl.LightGray)

		// Control panel
		panelX := float32(previewW + 30)
		panelY := float32(10)

		rl.DrawText("Generator Parameters", int32(panelX), int32(panelY), 20, rl.RayWhite)
		panelY += 35

		rl.DrawText("Stage", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newStage := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"1", "12",
			float32(params.Stage), 1, 12,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Stage), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.LightGray)
		if int(newStage) != params.Stage {
			params.Stage = int(newStage)
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Noise scale (cell frequency)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newScale := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.005", "0.1",
			params.NoiseScale, 0.005, 0.1,
		)
		rl.DrawText(fmt.Sprintf("%.3f", params.NoiseScale), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.LightGray)
		if newScale != params.NoiseScale {
			params.NoiseScale = newScale
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Aggressiveness (color falloff)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newAggr := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "200",
			params.Aggressiveness, 0, 200,
		)
		rl.DrawText(fmt.Sprintf("%.0f", params.Aggressiveness), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.LightGray)
		if newAggr != params.Aggressiveness {
			params.Aggressiveness = newAggr
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Noise: "+params.Noise) {
			if params.Noise == systems.NoisePerlin {
				params.Noise = systems.NoiseSimplex
			} else {
				params.Noise = systems.NoisePerlin
			}
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			params.Seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaults
			needsRegen = true
		}
		panelY += 55

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.RayWhite)
		panelY += 25
		yaml := yamlSnippet(params)
		rl.DrawText(yaml, int32(panelX), int32(panelY), 14, rl.Gray)

		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.DarkGray)
		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(yaml)
		}

		rl.EndDrawing()
	}
}

// generate builds the batch the game would produce for the stage.
func generate(cfg *config.Config, params PreviewParams) []systems.Resource {
	r := cfg.Resource
	gen := systems.NewGenerator(systems.GeneratorParams{
		CellSize:         cfg.Harvest.CellSize,
		BorderMargin:     r.BorderMargin,
		EmptyRadius:      r.EmptyRadius,
		NoiseScale:       float64(params.NoiseScale),
		ScarcePerStage:   r.ScarcePerStage,
		AbundantPerStage: r.AbundantPerStage,
		ScarceHealth:     r.ScarceHealth,
		AbundantHealth:   r.AbundantHealth,
		FormationHealth:  r.FormationHealth,
		Darken:           r.Darken,
		ColorJitter:      r.ColorJitter,
		Aggressiveness:   float64(params.Aggressiveness),
	}, params.Noise, rand.New(rand.NewSource(params.Seed)))

	food := systems.FoodForStage(params.Stage)
	batch, err := gen.Generate(systems.GenerateRequest{
		Width:     cfg.Derived.WorldW,
		Height:    cfg.Derived.WorldH,
		Stage:     params.Stage,
		Food:      food,
		MaxHealth: gen.Params.HealthFor(food),
		From:      r.StartColor,
		To:        r.EndColor,
	}, nil)
	if err != nil {
		log.Printf("generate: %v", err)
		return nil
	}
	return batch
}

// drawBatch scales the world into the preview rectangle.
func drawBatch(cfg *config.Config, batch []systems.Resource) {
	scale := min(float32(previewW)/float32(cfg.Derived.WorldW), float32(previewH)/float32(cfg.Derived.WorldH))
	size := max(1, float32(cfg.Harvest.CellSize)*scale)
	for _, r := range batch {
		x := 10 + float32(float64(r.X)*cfg.Harvest.CellSize)*scale
		y := 10 + float32(float64(r.Y)*cfg.Harvest.CellSize)*scale
		rl.DrawRectangleV(rl.Vector2{X: x, Y: y}, rl.Vector2{X: size, Y: size},
			rl.Color{R: r.Color[0], G: r.Color[1], B: r.Color[2], A: 255})
	}
}

func yamlSnippet(p PreviewParams) string {
	return fmt.Sprintf(`resource:
  noise: %s
  noise_scale: %.3f
  aggressiveness: %.0f`, p.Noise, p.NoiseScale, p.Aggressiveness)
}

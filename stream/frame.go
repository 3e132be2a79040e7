package stream

import (
	"encoding/json"
	"fmt"

	"github.com/pthm-cable/swarm/telemetry"
)

// FrameType is the message type of a simulation frame.
const FrameType = "frame"

// Frame is one published view of the simulation after a tick.
type Frame struct {
	Type      string                  `json:"type"`
	Tick      int32                   `json:"tick"`
	SimTime   float64                 `json:"sim_time"`
	Progress  telemetry.ProgressState `json:"progress"`
	RallyX    float64                 `json:"rally_x"`
	RallyY    float64                 `json:"rally_y"`
	Entities  [][3]float64            `json:"entities"` // x, y, radius
	Total     int                     `json:"total_entities"`
	Truncated bool                    `json:"truncated,omitempty"`
}

// NewFrame builds a frame from a snapshot, keeping at most maxEntities entities
// (0 = all).
func NewFrame(s *telemetry.Snapshot, maxEntities int) Frame {
	n := len(s.Entities)
	if maxEntities > 0 && n > maxEntities {
		n = maxEntities
	}
	f := Frame{
		Type:      FrameType,
		Tick:      s.Tick,
		SimTime:   s.SimTime,
		Progress:  s.Progress,
		RallyX:    s.RallyX,
		RallyY:    s.RallyY,
		Entities:  make([][3]float64, n),
		Total:     len(s.Entities),
		Truncated: n < len(s.Entities),
	}
	for i, e := range s.Entities[:n] {
		f.Entities[i] = [3]float64{e.X, e.Y, e.Radius}
	}
	return f
}

// Encode marshals the frame to JSON.
func (f Frame) Encode() ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}

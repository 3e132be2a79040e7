package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1280, 800, 1280, 800)

	if cam.X != 640 || cam.Y != 400 {
		t.Errorf("expected camera at (640, 400), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestWorldToScreenIdentityAtZoomOne(t *testing.T) {
	cam := New(1280, 800, 1280, 800)

	sx, sy := cam.WorldToScreen(100, 700)
	if math.Abs(sx-100) > 1e-9 || math.Abs(sy-700) > 1e-9 {
		t.Errorf("expected (100, 700), got (%f, %f)", sx, sy)
	}
}

func TestZoomKeepsCenterFixed(t *testing.T) {
	cam := New(1280, 800, 1280, 800)
	cam.SetZoom(2)

	sx, sy := cam.WorldToScreen(640, 400)
	if math.Abs(sx-640) > 1e-9 || math.Abs(sy-400) > 1e-9 {
		t.Errorf("world center moved to (%f, %f)", sx, sy)
	}
	sx, _ = cam.WorldToScreen(740, 400)
	if math.Abs(sx-840) > 1e-9 {
		t.Errorf("100 world units at zoom 2 = %f screen px from center, want 200", sx-640)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 800, 1280, 800)
	cam.SetZoom(0.7)
	cam.Pan(50, -30)

	testCases := []struct{ sx, sy float64 }{
		{640, 400},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(sx-tc.sx) > 1e-9 || math.Abs(sy-tc.sy) > 1e-9 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestZoomClamp(t *testing.T) {
	tests := []struct {
		name string
		zoom float64
		want float64
	}{
		{"below min", 0.01, MinZoom},
		{"in range", 2.5, 2.5},
		{"above max", 9, MaxZoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New(1280, 800, 1280, 800)
			cam.SetZoom(tt.zoom)
			if cam.Zoom != tt.want {
				t.Errorf("SetZoom(%v) = %v, want %v", tt.zoom, cam.Zoom, tt.want)
			}
		})
	}

	cam := New(1280, 800, 1280, 800)
	for i := 0; i < 100; i++ {
		cam.ZoomBy(-ZoomStep)
	}
	if cam.Zoom != MinZoom {
		t.Errorf("repeated zoom out = %v, want %v", cam.Zoom, MinZoom)
	}
}

func TestPanStaysInWorld(t *testing.T) {
	cam := New(1280, 800, 1280, 800)
	cam.Pan(-5000, 5000)
	if cam.X != 0 || cam.Y != 800 {
		t.Errorf("camera center = (%v, %v), want (0, 800)", cam.X, cam.Y)
	}

	cam.Reset()
	if cam.X != 640 || cam.Y != 400 || cam.Zoom != 1 {
		t.Errorf("after Reset: (%v, %v) zoom %v", cam.X, cam.Y, cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 800, 1280, 800)
	cam.SetZoom(2)

	// At zoom 2 the view covers world x in [320, 960].
	tests := []struct {
		x, r float64
		want bool
	}{
		{640, 1, true},
		{300, 1, false},
		{300, 25, true},
		{961, 0.5, false},
	}
	for _, tt := range tests {
		if got := cam.IsVisible(tt.x, 400, tt.r); got != tt.want {
			t.Errorf("IsVisible(%v, r=%v) = %v, want %v", tt.x, tt.r, got, tt.want)
		}
	}
}

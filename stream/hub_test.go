package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/swarm/telemetry"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(NewServer("", hub).Handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conns := make([]*websocket.Conn, 2)
	for i := range conns {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()
		conns[i] = conn
	}
	waitFor(t, func() bool { return hub.Clients() == 2 })

	snap := &telemetry.Snapshot{
		Tick:     42,
		Progress: telemetry.ProgressState{Stage: 3, Phase: "normal"},
		Entities: []telemetry.EntityState{{X: 1, Y: 2, Radius: 4}, {X: 5, Y: 6, Radius: 3}},
	}
	data, err := NewFrame(snap, 0).Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !hub.Publish(data) {
		t.Fatal("Publish dropped the first frame")
	}

	for i, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("client %d read: %v", i, err)
		}
		var got Frame
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("client %d unmarshal: %v", i, err)
		}
		if got.Type != FrameType || got.Tick != 42 || got.Progress.Stage != 3 || len(got.Entities) != 2 {
			t.Errorf("client %d got %+v", i, got)
		}
	}

	conns[0].Close()
	waitFor(t, func() bool { return hub.Clients() == 1 })

	cancel()
	waitFor(t, func() bool { return hub.Clients() == 0 })
}

func TestNewFrameTruncates(t *testing.T) {
	snap := &telemetry.Snapshot{Entities: make([]telemetry.EntityState, 10)}
	for i := range snap.Entities {
		snap.Entities[i].X = float64(i)
	}

	tests := []struct {
		name      string
		max       int
		wantLen   int
		truncated bool
	}{
		{"unlimited", 0, 10, false},
		{"above count", 20, 10, false},
		{"below count", 4, 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFrame(snap, tt.max)
			if len(f.Entities) != tt.wantLen || f.Truncated != tt.truncated || f.Total != 10 {
				t.Errorf("len=%d truncated=%v total=%d, want %d %v 10", len(f.Entities), f.Truncated, f.Total, tt.wantLen, tt.truncated)
			}
			if tt.wantLen > 0 && f.Entities[tt.wantLen-1][0] != float64(tt.wantLen-1) {
				t.Errorf("last entity x = %v, want %d", f.Entities[tt.wantLen-1][0], tt.wantLen-1)
			}
		})
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub() // not running: nothing drains the queue
	for i := 0; i < broadcastQueue; i++ {
		if !hub.Publish([]byte("x")) {
			t.Fatalf("publish %d dropped before the queue filled", i)
		}
	}
	if hub.Publish([]byte("x")) {
		t.Error("publish into a full queue reported success")
	}
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/gorilla/websocket"
)

func TestAPI_EventWebSocket(t *testing.T) {
	p := newFakePipeline()
	srv := New(Config{Pipeline: p})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	// Give the handler a moment to register its subscription, then fire
	// an event through the pipeline.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		n := len(p.subs)
		p.mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	sent := event.Event{
		Type:       event.Shoot,
		Position:   &landmark.Point2D{X: 0.4, Y: 0.6},
		Confidence: 0.92,
		Timestamp:  time.Now().UTC(),
	}
	p.publish(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got event.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("failed to read event from websocket: %v", err)
	}

	if got.Type != event.Shoot {
		t.Errorf("expected a shoot event, got %s", got.Type)
	}
	if got.Position == nil || got.Position.X != 0.4 {
		t.Errorf("event position did not round-trip: %+v", got.Position)
	}
	if got.Confidence != 0.92 {
		t.Errorf("expected confidence 0.92, got %f", got.Confidence)
	}
}

func TestAPI_WebSocketDisconnectReleasesSubscription(t *testing.T) {
	p := newFakePipeline()
	srv := New(Config{Pipeline: p})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		n := len(p.subs)
		p.mu.Unlock()
		if n == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("subscription should be released after the client disconnects")
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}

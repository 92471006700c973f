package server

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventsHandler pushes gesture events to WebSocket clients as they fire.
// Each connection holds its own pipeline subscription, so a slow client
// drops its own events without affecting anyone else.
type EventsHandler struct {
	pipeline Pipeline
}

// NewEventsHandler creates an EventsHandler fed by the given pipeline.
func NewEventsHandler(p Pipeline) *EventsHandler {
	return &EventsHandler{pipeline: p}
}

// ServeHTTP upgrades the connection and streams events until the client
// disconnects.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := h.pipeline.Subscribe()
	defer cancel()

	// Writer goroutine; the read loop below notices the disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	cancel()
	<-done
}

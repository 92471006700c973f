// Package hook runs user-provided executables when gesture events fire.
// Each hook lives in its own directory with a hook.json manifest; on every
// matching event the executable receives the event as JSON on stdin and
// answers with a JSON response on stdout.
package hook

import "encoding/json"

// Manifest describes a hook's metadata and the events it subscribes to.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	// Events lists the event types the hook wants. Empty means all.
	Events      []string `json:"events"`
}

// Response represents the response from a hook execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook represents a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Wants reports whether the hook subscribes to the given event type.
func (h *Hook) Wants(eventType string) bool {
	if len(h.Manifest.Events) == 0 {
		return true
	}
	for _, e := range h.Manifest.Events {
		if e == eventType {
			return true
		}
	}
	return false
}

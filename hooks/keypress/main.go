// Package main provides a keypress hook for macOS.
// It translates gesture events into keystrokes via AppleScript, so games
// that only read the keyboard can be driven by gestures.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Event is the gesture event delivered on stdin.
type Event struct {
	Type       string    `json:"type"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Response is the result written to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// keyMap translates event types to keystrokes. Aim events arrive many
// times per second and are deliberately unmapped.
var keyMap = map[string]string{
	"shoot": " ",
	"blink": "b",
	"clap":  "c",
}

func main() {
	var ev Event
	if err := json.NewDecoder(os.Stdin).Decode(&ev); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode event: %v", err))
		return
	}

	key, ok := keyMap[ev.Type]
	if !ok {
		// Not an error: unmapped events are simply ignored.
		writeSuccessResponse()
		return
	}

	script := fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	if err := runAppleScript(script); err != nil {
		writeErrorResponse(fmt.Sprintf("keystroke for %s failed: %v", ev.Type, err))
		return
	}

	writeSuccessResponse()
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	json.NewEncoder(os.Stdout).Encode(Response{
		Success: false,
		Error:   errMsg,
	})
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	json.NewEncoder(os.Stdout).Encode(Response{Success: true})
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// Package event defines the gesture events emitted to the consuming game
// layer and the hysteresis state machine that produces them.
package event

import (
	"time"

	"github.com/ayusman/mudra/internal/landmark"
)

// Type identifies the gesture an event reports.
type Type string

const (
	// Aim reports the current pointing position while a finger-gun pose
	// holds.
	Aim Type = "aim"
	// Shoot reports a thumb-flick trigger pull.
	Shoot Type = "shoot"
	// Blink reports a deliberate both-eyes blink.
	Blink Type = "blink"
	// Clap reports both hands coming together.
	Clap Type = "clap"
)

// Event is the only externally visible output of the gesture pipeline.
// At most one event of a given type is emitted per cooldown window.
type Event struct {
	Type       Type              `json:"type"`
	Position   *landmark.Point2D `json:"position,omitempty"`
	Confidence float64           `json:"confidence"`
	Timestamp  time.Time         `json:"timestamp"`
}

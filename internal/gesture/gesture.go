// Package gesture wires the smoothing, calibration, classification, and
// hysteresis stages into per-gesture detector façades. Each façade owns its
// own filter bank, calibration profile, and state machines, so multiple
// gestures can be evaluated on the same frame without cross-talk.
package gesture

import (
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/landmark"
)

// Status describes what a detector was able to do with a frame.
type Status string

const (
	// StatusCalibrating means the warm-up window is still open; no
	// gesture results are produced yet.
	StatusCalibrating Status = "calibrating"
	// StatusNoDetection means the landmarks this gesture depends on were
	// absent (and past any prediction budget).
	StatusNoDetection Status = "no_detection"
	// StatusTracking means the detector evaluated the frame normally.
	StatusTracking Status = "tracking"
)

// Result is one frame's outcome from a detector façade. A frame with no
// events is indistinguishable from "the user did not perform the gesture";
// nothing in the pipeline surfaces errors to the caller.
type Result struct {
	Status Status

	// Score is the classifier verdict for the frame (zero value while
	// calibrating or without detection).
	Score classify.Score

	// Events holds zero or more gesture events emitted this frame.
	Events []event.Event

	// Aim is the current pointing position, present only for detectors
	// that track one.
	Aim *landmark.Point2D
}

// Detector is a gesture detector façade, run once per camera frame on the
// frame-consumer's goroutine.
type Detector interface {
	// Name returns a stable identifier for status reporting.
	Name() string

	// Process runs the full pipeline on one frame. It never returns an
	// error: every failure mode recovers locally as "no event".
	Process(frame *landmark.Frame) Result

	// Recalibrate clears the calibration profile and re-enters the
	// warm-up window.
	Recalibrate()

	// Snapshot returns the detector's introspection state.
	Snapshot() Snapshot
}

// Snapshot is a point-in-time view of a detector's internals, surfaced
// over the status API and the tray.
type Snapshot struct {
	Name          string             `json:"name"`
	Calibrated    bool               `json:"calibrated"`
	Progress      float64            `json:"calibration_progress"`
	AlternateMode bool               `json:"alternate_mode"`
	State         string             `json:"state"`
	EventCount    int64              `json:"event_count"`
	Thresholds    map[string]float64 `json:"thresholds,omitempty"`
}

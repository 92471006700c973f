// Package detector extracts hand and face landmarks from camera frames. The
// production implementation shells out to a MediaPipe subprocess; tests use
// the scripted mock.
package detector

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/landmark"
)

// Detector defines the interface for landmark extraction implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks found in it,
	// stamped with the frame's capture time. A frame with no detections
	// returns an empty (non-nil) Frame.
	Detect(img *gocv.Mat, ts time.Time) (*landmark.Frame, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for landmark extraction.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// TrackFace enables the face-mesh model alongside hand detection; the
	// blink detector needs it, the hand detectors do not.
	TrackFace bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		TrackFace:       true,
	}
}

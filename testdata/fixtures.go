// Package testdata provides synthetic landmark frames for pipeline and
// integration tests. Real camera footage is deliberately absent: every
// scenario is constructed from exact geometry so tests assert against known
// feature values instead of whatever a recording happens to contain.
package testdata

import (
	"time"

	"github.com/ayusman/mudra/internal/landmark"
)

// EyesFrame builds a face frame whose two eyes measure the given aspect
// ratio exactly. The six landmarks per eye span 0.1 horizontally; the
// vertical spread recovers the target ratio.
func EyesFrame(ts time.Time, ear float64) *landmark.Frame {
	f := landmark.NewFrame(ts, 640, 480)
	putEye(f, landmark.LeftEyeIndices, 0.3, ear)
	putEye(f, landmark.RightEyeIndices, 0.6, ear)
	return f
}

func putEye(f *landmark.Frame, indices [6]int, x0, ear float64) {
	h := 0.1
	v := ear * h / 2
	pts := [6]landmark.Point{
		{X: x0, Y: 0.5},
		{X: x0 + 0.03, Y: 0.5 - v},
		{X: x0 + 0.07, Y: 0.5 - v},
		{X: x0 + h, Y: 0.5},
		{X: x0 + 0.07, Y: 0.5 + v},
		{X: x0 + 0.03, Y: 0.5 + v},
	}
	for i, idx := range indices {
		f.Put(landmark.FaceID(idx), pts[i], 0.95)
	}
}

// EmptyFrame builds a frame with no landmarks at all, as the extractor
// reports when nobody is in front of the camera.
func EmptyFrame(ts time.Time) *landmark.Frame {
	return landmark.NewFrame(ts, 640, 480)
}

// TwoHandsFrame builds a two-hand frame with each hand's pairing landmarks
// in a vertical column at the given x position. The inter-hand distance is
// therefore exactly |leftX - rightX|.
func TwoHandsFrame(ts time.Time, leftX, rightX float64) *landmark.Frame {
	f := landmark.NewFrame(ts, 640, 480)
	putHandColumn(f, 0, leftX)
	putHandColumn(f, 1, rightX)
	return f
}

func putHandColumn(f *landmark.Frame, hand int, x float64) {
	indices := []int{
		landmark.Wrist,
		landmark.MiddleMCP,
		landmark.IndexMCP,
		landmark.RingMCP,
		landmark.ThumbCMC,
		landmark.PinkyMCP,
	}
	for i, idx := range indices {
		f.Put(landmark.HandID(hand, idx), landmark.Point{
			X: x,
			Y: 0.3 + 0.08*float64(i),
		}, 0.9)
	}
}

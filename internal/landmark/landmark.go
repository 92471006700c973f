// Package landmark defines the fixed value types for landmark data flowing
// through the gesture pipeline, decoupled from whatever object shape the
// upstream extractor emits.
package landmark

import "time"

// ID identifies a single tracked point within a Frame. Hand landmarks use
// the MediaPipe hand convention offset per hand; face landmarks use the
// MediaPipe face-mesh index offset by FaceBase.
type ID int

// Hand landmark indices following the MediaPipe hand convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist         = 0
	ThumbCMC      = 1
	ThumbMCP      = 2
	ThumbIP       = 3
	ThumbTip      = 4
	IndexMCP      = 5
	IndexPIP      = 6
	IndexDIP      = 7
	IndexTip      = 8
	MiddleMCP     = 9
	MiddlePIP     = 10
	MiddleDIP     = 11
	MiddleTip     = 12
	RingMCP       = 13
	RingPIP       = 14
	RingDIP       = 15
	RingTip       = 16
	PinkyMCP      = 17
	PinkyPIP      = 18
	PinkyDIP      = 19
	PinkyTip      = 20
	NumHandPoints = 21
)

// ID namespacing. Up to two hands occupy [0, 2*HandStride); face-mesh
// points are shifted by FaceBase so they never collide with hand indices.
const (
	HandStride = 50
	FaceBase   = 1000
	MaxHands   = 2
)

// HandID returns the frame-wide ID for landmark index i of the given hand
// (0 = first hand, 1 = second hand).
func HandID(hand, i int) ID {
	return ID(hand*HandStride + i)
}

// FaceID returns the frame-wide ID for face-mesh index i.
func FaceID(i int) ID {
	return ID(FaceBase + i)
}

// Face-mesh eye landmark indices (MediaPipe Face Mesh). Each set is ordered
// corner, top-outer, top-inner, corner, bottom-inner, bottom-outer: the
// p1..p6 ordering expected by the eye-aspect-ratio computation.
var (
	LeftEyeIndices  = [6]int{33, 160, 158, 133, 153, 144}
	RightEyeIndices = [6]int{362, 385, 387, 263, 373, 380}
)

// Point is a 3D position. X and Y are normalized to [0,1] relative to the
// source image; Z is the upstream model's relative depth.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Point2D is a 2D position in normalized image coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Landmark is one named detection for one frame: a position plus the
// extractor's per-point confidence. Immutable once produced.
type Landmark struct {
	ID         ID      `json:"id"`
	Position   Point   `json:"position"`
	Confidence float64 `json:"confidence"`
}

// Frame is the per-camera-frame snapshot handed to the pipeline: a keyed
// collection of landmarks plus the source image dimensions. Transient:
// nothing downstream retains a reference past the frame it arrived in.
type Frame struct {
	Timestamp time.Time
	Width     int
	Height    int
	Points    map[ID]Landmark
}

// NewFrame creates an empty frame with the given timestamp and dimensions.
func NewFrame(ts time.Time, width, height int) *Frame {
	return &Frame{
		Timestamp: ts,
		Width:     width,
		Height:    height,
		Points:    make(map[ID]Landmark),
	}
}

// Put records a landmark in the frame, overwriting any previous entry for
// the same ID.
func (f *Frame) Put(id ID, p Point, confidence float64) {
	f.Points[id] = Landmark{ID: id, Position: p, Confidence: confidence}
}

// Get returns the landmark with the given ID, or ok=false if it was not
// detected this frame. A missing landmark is not an error: callers skip
// dependent computations.
func (f *Frame) Get(id ID) (Landmark, bool) {
	if f == nil || f.Points == nil {
		return Landmark{}, false
	}
	lm, ok := f.Points[id]
	return lm, ok
}

// Has reports whether every given ID is present in the frame.
func (f *Frame) Has(ids ...ID) bool {
	for _, id := range ids {
		if _, ok := f.Get(id); !ok {
			return false
		}
	}
	return true
}

// HandCount returns the number of hands with at least one landmark present.
func (f *Frame) HandCount() int {
	count := 0
	for hand := 0; hand < MaxHands; hand++ {
		if _, ok := f.Get(HandID(hand, Wrist)); ok {
			count++
		}
	}
	return count
}

// Mirror returns a horizontally mirrored copy of the frame: every X becomes
// 1-X and hand slots are swapped so the left hand's landmarks carry the
// right hand's IDs and vice versa. Face-mesh eye indices are swapped
// pairwise between the left and right eye sets. Used by tests to verify
// mirror invariance of symmetric features.
func (f *Frame) Mirror() *Frame {
	m := NewFrame(f.Timestamp, f.Width, f.Height)

	// Build the face-mesh relabeling: left eye index i <-> right eye index i.
	faceSwap := make(map[int]int, 12)
	for i := 0; i < 6; i++ {
		faceSwap[LeftEyeIndices[i]] = RightEyeIndices[i]
		faceSwap[RightEyeIndices[i]] = LeftEyeIndices[i]
	}

	for id, lm := range f.Points {
		mirrored := Point{X: 1 - lm.Position.X, Y: lm.Position.Y, Z: lm.Position.Z}
		newID := id
		switch {
		case int(id) >= FaceBase:
			if swapped, ok := faceSwap[int(id)-FaceBase]; ok {
				newID = FaceID(swapped)
			}
		case int(id) < HandStride:
			newID = ID(int(id) + HandStride)
		case int(id) < 2*HandStride:
			newID = ID(int(id) - HandStride)
		}
		m.Points[newID] = Landmark{ID: newID, Position: mirrored, Confidence: lm.Confidence}
	}
	return m
}

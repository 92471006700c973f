package feature

import (
	"math"

	"github.com/ayusman/mudra/internal/landmark"
)

// Feature names produced by the extractors below. Detectors compare these
// against calibrated thresholds by name.
const (
	// Finger-gun pose features (hand 0).
	ThumbIndexDist = "thumb_index_dist"
	MiddleRingDist = "middle_ring_dist"
	RingPinkyDist  = "ring_pinky_dist"
	IndexWristDist = "index_wrist_dist"
	ThumbPalmDist  = "thumb_palm_dist"
	IndexCurl      = "index_curl"
	MiddleCurl     = "middle_curl"
	RingCurl       = "ring_curl"
	PinkyCurl      = "pinky_curl"
	WristAngle     = "wrist_angle"
	IndexExtension = "index_extension"
	PointingZDiff  = "pointing_z_diff"
	ThumbAboveIP   = "thumb_above_ip"

	// Eye features.
	LeftEAR  = "left_ear"
	RightEAR = "right_ear"

	// Two-hand features.
	HandPairDist = "hand_pair_dist"
	HandsFacing  = "hands_facing"
)

// ExtractFingerGun computes the finger-gun feature set from hand 0 of the
// frame. Features whose landmarks are missing are simply absent from the
// returned vector; the caller treats them as unavailable rather than as an
// error.
func ExtractFingerGun(frame *landmark.Frame) Vector {
	v := make(Vector)
	hand := 0

	pt := func(i int) (landmark.Point, bool) {
		lm, ok := frame.Get(landmark.HandID(hand, i))
		return lm.Position, ok
	}

	thumbTip, okThumb := pt(landmark.ThumbTip)
	indexTip, okIndex := pt(landmark.IndexTip)
	middleTip, okMiddle := pt(landmark.MiddleTip)
	ringTip, okRing := pt(landmark.RingTip)
	pinkyTip, okPinky := pt(landmark.PinkyTip)
	wrist, okWrist := pt(landmark.Wrist)
	middlePIP, okMiddlePIP := pt(landmark.MiddlePIP)
	indexMCP, okIndexMCP := pt(landmark.IndexMCP)

	if okThumb && okIndex {
		v.Set(ThumbIndexDist, Distance2D(thumbTip, indexTip))
	}
	if okMiddle && okRing {
		v.Set(MiddleRingDist, Distance2D(middleTip, ringTip))
	}
	if okRing && okPinky {
		v.Set(RingPinkyDist, Distance2D(ringTip, pinkyTip))
	}
	if okIndex && okWrist {
		v.Set(IndexWristDist, Distance2D(indexTip, wrist))
	}
	if okThumb && okMiddlePIP {
		v.Set(ThumbPalmDist, Distance2D(thumbTip, middlePIP))
	}
	if okWrist && okIndex {
		// Z decreases toward the camera: positive means the fingertip is
		// nearer the camera than the wrist.
		v.Set(PointingZDiff, wrist.Z-indexTip.Z)
	}
	if okIndex && okIndexMCP {
		v.Set(IndexExtension, Distance2D(indexTip, indexMCP))
	}
	if okWrist {
		if middleMCP, ok := pt(landmark.MiddleMCP); ok {
			v.Set(WristAngle, AngleFromHorizontal(wrist, middleMCP))
		}
	}
	if thumbIP, ok := pt(landmark.ThumbIP); ok && okThumb {
		// 1 when the thumb tip sits above its IP joint (hammer cocked).
		if thumbTip.Y < thumbIP.Y {
			v.Set(ThumbAboveIP, 1)
		} else {
			v.Set(ThumbAboveIP, 0)
		}
	}

	// Per-finger curls from the four-point joint chains.
	chains := []struct {
		name                string
		mcp, pip, dip, tipI int
	}{
		{IndexCurl, landmark.IndexMCP, landmark.IndexPIP, landmark.IndexDIP, landmark.IndexTip},
		{MiddleCurl, landmark.MiddleMCP, landmark.MiddlePIP, landmark.MiddleDIP, landmark.MiddleTip},
		{RingCurl, landmark.RingMCP, landmark.RingPIP, landmark.RingDIP, landmark.RingTip},
		{PinkyCurl, landmark.PinkyMCP, landmark.PinkyPIP, landmark.PinkyDIP, landmark.PinkyTip},
	}
	for _, c := range chains {
		mcp, ok1 := pt(c.mcp)
		pip, ok2 := pt(c.pip)
		dip, ok3 := pt(c.dip)
		tip, ok4 := pt(c.tipI)
		if ok1 && ok2 && ok3 && ok4 {
			v.Set(c.name, FingerCurl(mcp, pip, dip, tip))
		}
	}

	return v
}

// ExtractEyes computes the left and right eye aspect ratios from the
// face-mesh landmarks. An eye with any missing landmark contributes no
// feature.
func ExtractEyes(frame *landmark.Frame) Vector {
	v := make(Vector)

	if ear, ok := eyeEAR(frame, landmark.LeftEyeIndices); ok {
		v.Set(LeftEAR, ear)
	}
	if ear, ok := eyeEAR(frame, landmark.RightEyeIndices); ok {
		v.Set(RightEAR, ear)
	}
	return v
}

func eyeEAR(frame *landmark.Frame, indices [6]int) (float64, bool) {
	var eye [6]landmark.Point
	for i, idx := range indices {
		lm, ok := frame.Get(landmark.FaceID(idx))
		if !ok {
			return 0, false
		}
		eye[i] = lm.Position
	}
	return EyeAspectRatio(eye), true
}

// handPairPoints are the landmark pairs tried when measuring how close two
// hands are. The minimum over all pairs survives partial occlusion of
// either hand far better than any single point.
var handPairPoints = []int{
	landmark.Wrist,
	landmark.MiddleMCP,
	landmark.IndexMCP,
	landmark.RingMCP,
	landmark.ThumbCMC,
	landmark.PinkyMCP,
}

// HandPairIDs returns the landmark IDs consulted by ExtractHandPair, for
// callers that smooth or track those points.
func HandPairIDs() []landmark.ID {
	ids := make([]landmark.ID, 0, len(handPairPoints)*landmark.MaxHands)
	for hand := 0; hand < landmark.MaxHands; hand++ {
		for _, idx := range handPairPoints {
			ids = append(ids, landmark.HandID(hand, idx))
		}
	}
	return ids
}

// facingMinX is the minimum horizontal component of a palm's unit normal
// for the palm to count as side-facing. Below it the palm faces the camera
// or the floor rather than the other hand.
const facingMinX = 0.5

// ExtractHandPair computes the minimum pairwise distance between the two
// hands across several stable landmarks, plus the hands-facing indicator.
// The features are absent unless at least one landmark pair is present on
// both hands.
func ExtractHandPair(frame *landmark.Frame) Vector {
	v := make(Vector)

	best := -1.0
	for _, idx := range handPairPoints {
		a, okA := frame.Get(landmark.HandID(0, idx))
		b, okB := frame.Get(landmark.HandID(1, idx))
		if !okA || !okB {
			continue
		}
		d := Distance2D(a.Position, b.Position)
		if best < 0 || d < best {
			best = d
		}
	}
	if best >= 0 {
		v.Set(HandPairDist, best)
		v.Set(HandsFacing, handsFacing(frame))
	}
	return v
}

// handsFacing reports 1 when both palms are oriented side-on, the way
// clapping hands meet, and 0 when either palm clearly faces the camera. A
// palm whose normal cannot be computed (occluded knuckles, collapsed
// geometry) reads as 1: an unreadable palm cannot veto the clap.
func handsFacing(frame *landmark.Frame) float64 {
	for hand := 0; hand < landmark.MaxHands; hand++ {
		wrist, okW := frame.Get(landmark.HandID(hand, landmark.Wrist))
		index, okI := frame.Get(landmark.HandID(hand, landmark.IndexMCP))
		pinky, okP := frame.Get(landmark.HandID(hand, landmark.PinkyMCP))
		if !okW || !okI || !okP {
			continue
		}
		n, ok := PalmNormal(wrist.Position, index.Position, pinky.Position)
		if !ok {
			continue
		}
		if math.Abs(n.X) < facingMinX {
			return 0
		}
	}
	return 1
}

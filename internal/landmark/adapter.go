package landmark

import "time"

// The upstream extractor (a MediaPipe subprocess) reports hands and a face
// per processed frame in its own wire shape. The types below are that shape;
// FrameFromUpstream is the single place it is converted into the pipeline's
// Frame value type, so nothing downstream depends on the upstream model.

// UpstreamPoint is one raw point from the extractor.
type UpstreamPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// UpstreamHand is one detected hand: 21 points plus handedness and an
// overall detection score that applies to every point of the hand.
type UpstreamHand struct {
	Points     []UpstreamPoint `json:"points"`
	Handedness string          `json:"handedness"`
	Score      float64         `json:"score"`
}

// UpstreamFace is the detected face: a sparse set of face-mesh points keyed
// by their mesh index, with an overall score.
type UpstreamFace struct {
	Points map[int]UpstreamPoint `json:"points"`
	Score  float64               `json:"score"`
}

// UpstreamResult is one full detection result from the extractor.
type UpstreamResult struct {
	Hands []UpstreamHand `json:"hands"`
	Face  *UpstreamFace  `json:"face,omitempty"`
}

// FrameFromUpstream converts an upstream detection result into a Frame.
// Hands are slotted by x-order (leftmost hand first) so hand 0 is stable
// across frames regardless of detection order; at most MaxHands hands are
// kept. Points with a non-positive score are dropped rather than recorded
// with zero confidence.
func FrameFromUpstream(res UpstreamResult, ts time.Time, width, height int) *Frame {
	f := NewFrame(ts, width, height)

	hands := res.Hands
	if len(hands) > MaxHands {
		hands = hands[:MaxHands]
	}
	if len(hands) == 2 && wristX(hands[0]) > wristX(hands[1]) {
		hands[0], hands[1] = hands[1], hands[0]
	}

	for slot, hand := range hands {
		if hand.Score <= 0 {
			continue
		}
		for i, p := range hand.Points {
			if i >= NumHandPoints {
				break
			}
			f.Put(HandID(slot, i), Point{X: p.X, Y: p.Y, Z: p.Z}, hand.Score)
		}
	}

	if res.Face != nil && res.Face.Score > 0 {
		for idx, p := range res.Face.Points {
			f.Put(FaceID(idx), Point{X: p.X, Y: p.Y, Z: p.Z}, res.Face.Score)
		}
	}

	return f
}

func wristX(h UpstreamHand) float64 {
	if len(h.Points) == 0 {
		return 0
	}
	return h.Points[Wrist].X
}

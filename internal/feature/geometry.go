// Package feature computes named scalar features from landmark frames:
// distances, angles, finger curls, and eye aspect ratios. Every function is
// pure and total; degenerate geometry returns a documented safe default
// instead of NaN or a panic.
package feature

import (
	"math"

	"github.com/ayusman/mudra/internal/landmark"
)

// epsilon guards ratio denominators against division by zero.
const epsilon = 1e-9

// Safe defaults returned for degenerate geometry.
const (
	// DefaultEAR is the eye-aspect-ratio reported when the eye geometry is
	// degenerate. It reads as "eye open" so a bad frame can never fake a
	// blink.
	DefaultEAR = 0.3

	// DefaultAngle is the joint angle in degrees reported when one of the
	// joint vectors has zero length. It reads as "straight".
	DefaultAngle = 180.0
)

// Distance2D returns the Euclidean distance between two points in the
// image plane, ignoring depth.
func Distance2D(a, b landmark.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Distance3D returns the Euclidean distance between two points including
// the depth axis.
func Distance3D(a, b landmark.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// AngleFromHorizontal returns the signed angle in degrees of the a→b
// direction measured from the image horizontal. Y grows downward, so a
// positive angle points down-screen.
func AngleFromHorizontal(a, b landmark.Point) float64 {
	return math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi
}

// JointAngle returns the angle at b formed by a-b-c, in degrees [0, 180].
// The cosine is clamped to [-1, 1] before acos so numerical edge cases
// cannot produce NaN. If either joint vector is degenerate the angle reads
// as straight (DefaultAngle).
func JointAngle(a, b, c landmark.Point) float64 {
	bax := a.X - b.X
	bay := a.Y - b.Y
	baz := a.Z - b.Z
	bcx := c.X - b.X
	bcy := c.Y - b.Y
	bcz := c.Z - b.Z

	normBA := math.Sqrt(bax*bax + bay*bay + baz*baz)
	normBC := math.Sqrt(bcx*bcx + bcy*bcy + bcz*bcz)
	if normBA < epsilon || normBC < epsilon {
		return DefaultAngle
	}

	cos := (bax*bcx + bay*bcy + baz*bcz) / (normBA * normBC)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}

// FingerCurl returns a normalized curl ratio for a four-point finger chain:
// 0 for a fully straight finger, approaching 1 as the finger bends. It is
// the average of 1 - angle/180 over the PIP and DIP joints.
func FingerCurl(mcp, pip, dip, tip landmark.Point) float64 {
	anglePIP := JointAngle(mcp, pip, dip)
	angleDIP := JointAngle(pip, dip, tip)

	curlPIP := 1 - anglePIP/180
	curlDIP := 1 - angleDIP/180
	return (curlPIP + curlDIP) / 2
}

// EyeAspectRatio computes the EAR for six eye landmarks ordered
// corner, top-outer, top-inner, corner, bottom-inner, bottom-outer:
//
//	EAR = (|p2-p6| + |p3-p5|) / (2 * |p1-p4|)
//
// The ratio drops sharply when the eye closes. A degenerate horizontal
// spread returns DefaultEAR ("open") so a collapsed detection cannot
// trigger a blink.
func EyeAspectRatio(eye [6]landmark.Point) float64 {
	vertical1 := Distance2D(eye[1], eye[5])
	vertical2 := Distance2D(eye[2], eye[4])
	horizontal := Distance2D(eye[0], eye[3])

	if horizontal < epsilon {
		return DefaultEAR
	}
	return (vertical1 + vertical2) / (2 * horizontal)
}

// PalmNormal returns the unit normal of the palm plane spanned by
// wrist→indexMCP and wrist→pinkyMCP. Returns ok=false for degenerate
// (collinear or coincident) input.
func PalmNormal(wrist, indexMCP, pinkyMCP landmark.Point) (landmark.Point, bool) {
	v1 := landmark.Point{X: indexMCP.X - wrist.X, Y: indexMCP.Y - wrist.Y, Z: indexMCP.Z - wrist.Z}
	v2 := landmark.Point{X: pinkyMCP.X - wrist.X, Y: pinkyMCP.Y - wrist.Y, Z: pinkyMCP.Z - wrist.Z}

	n := landmark.Point{
		X: v1.Y*v2.Z - v1.Z*v2.Y,
		Y: v1.Z*v2.X - v1.X*v2.Z,
		Z: v1.X*v2.Y - v1.Y*v2.X,
	}
	norm := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
	if norm < epsilon {
		return landmark.Point{}, false
	}
	return landmark.Point{X: n.X / norm, Y: n.Y / norm, Z: n.Z / norm}, true
}

package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// ActivityGate decides per frame whether the landmark extractor should run.
// The extractor is by far the most expensive stage, so a static scene (empty
// room, player walked away) is recognized with cheap frame differencing and
// skipped entirely. Once motion is seen the gate holds open for a number of
// frames, because a player lining up a shot can be nearly motionless.
type ActivityGate struct {
	mu        sync.Mutex
	threshold float64
	hold      int
	quietFor  int
	prevGray  gocv.Mat
	primed    bool
}

// DefaultHoldFrames keeps the gate open for three seconds of stillness at
// 30 FPS before detection is suspended.
const DefaultHoldFrames = 90

// Differencing parameters. The blur kernel is wide enough that sensor noise
// and auto-exposure flicker do not hold the gate open on an empty room; the
// pixel delta is the blurred intensity change at which a pixel counts as
// changed at all.
const (
	gateBlurKernel = 21
	gatePixelDelta = 25
)

// NewActivityGate creates a gate with the given motion threshold (percent of
// changed pixels) and hold window in frames.
func NewActivityGate(threshold float64, holdFrames int) *ActivityGate {
	if holdFrames <= 0 {
		holdFrames = DefaultHoldFrames
	}
	return &ActivityGate{
		threshold: threshold,
		hold:      holdFrames,
		prevGray:  gocv.NewMat(),
	}
}

// Active feeds one frame and reports whether detection should run on it.
// The first frames fall inside the hold window, so startup never drops
// frames.
func (g *ActivityGate) Active(frame *gocv.Mat) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.changedPercent(frame) > g.threshold {
		g.quietFor = 0
		return true
	}
	g.quietFor++
	return g.quietFor <= g.hold
}

// changedPercent compares the frame against the previous one and returns the
// percentage of pixels whose blurred intensity moved by more than
// gatePixelDelta. The first frame primes the baseline and reads as still.
func (g *ActivityGate) changedPercent(frame *gocv.Mat) float64 {
	if frame == nil || frame.Empty() {
		return 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: gateBlurKernel, Y: gateBlurKernel}, 0, 0, gocv.BorderDefault)

	if !g.primed {
		blurred.CopyTo(&g.prevGray)
		g.primed = true
		return 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prevGray, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, gatePixelDelta, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(mask)
	total := mask.Rows() * mask.Cols()
	blurred.CopyTo(&g.prevGray)

	if total == 0 {
		return 0
	}
	return float64(changed) / float64(total) * 100
}

// Reset clears the gate so the next frame re-primes the baseline.
func (g *ActivityGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dropBaseline()
	g.quietFor = 0
}

// Close releases the retained baseline Mat.
func (g *ActivityGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dropBaseline()
}

func (g *ActivityGate) dropBaseline() {
	if !g.prevGray.Empty() {
		g.prevGray.Close()
		g.prevGray = gocv.NewMat()
	}
	g.primed = false
}

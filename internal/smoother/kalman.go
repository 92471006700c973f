// Package smoother removes frame-to-frame jitter from landmark positions
// using one constant-velocity Kalman filter per tracked point, and predicts
// through brief detection dropouts.
package smoother

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ayusman/mudra/internal/landmark"
)

// Filter dimensions: 6-component state (position and velocity per axis),
// 3-component measurement (position only).
const (
	stateDim = 6
	measDim  = 3
)

// minConfidence floors the confidence used for measurement-noise scaling so
// a zero-confidence detection cannot produce infinite noise.
const minConfidence = 0.1

// Config holds the filter parameters shared by every point filter in a bank.
type Config struct {
	// ProcessNoise is the diagonal of the process noise covariance Q.
	ProcessNoise float64

	// MeasurementNoise is the base diagonal of the measurement noise
	// covariance R. The effective noise per update is
	// MeasurementNoise / max(confidence, 0.1), so uncertain detections
	// are trusted less.
	MeasurementNoise float64

	// MaxLostFrames is how many consecutive predict-only frames a filter
	// tolerates before discarding its state. The next measurement then
	// re-initializes the filter from scratch with zero velocity.
	MaxLostFrames int

	// FrameRate is the assumed camera frame rate, fixing the dt used in
	// the transition matrix.
	FrameRate float64
}

// DefaultConfig returns filter parameters tuned for hand/face landmarks from
// a consumer webcam at 30 FPS.
func DefaultConfig() Config {
	return Config{
		ProcessNoise:     0.03,
		MeasurementNoise: 0.1,
		MaxLostFrames:    3,
		FrameRate:        30,
	}
}

// PointFilter is a constant-velocity Kalman filter for a single landmark.
// The zero value is not usable; create filters through a Bank or with
// newPointFilter.
type PointFilter struct {
	cfg Config

	// state is [x, y, z, vx, vy, vz]; cov is the 6x6 error covariance.
	state *mat.VecDense
	cov   *mat.Dense

	// transition (F) and measurement (H) matrices are fixed per filter.
	transition  *mat.Dense
	measurement *mat.Dense

	initialized bool
	lostFrames  int
}

func newPointFilter(cfg Config) *PointFilter {
	dt := 1.0 / cfg.FrameRate

	f := mat.NewDense(stateDim, stateDim, nil)
	for i := 0; i < stateDim; i++ {
		f.Set(i, i, 1)
	}
	for axis := 0; axis < 3; axis++ {
		f.Set(axis, axis+3, dt)
	}

	h := mat.NewDense(measDim, stateDim, nil)
	for axis := 0; axis < 3; axis++ {
		h.Set(axis, axis, 1)
	}

	return &PointFilter{
		cfg:         cfg,
		state:       mat.NewVecDense(stateDim, nil),
		cov:         eye(stateDim, 1),
		transition:  f,
		measurement: h,
	}
}

// Update feeds one measured position into the filter and returns the
// smoothed position. The first measurement after creation (or after a
// lost-tracking reset) initializes the state directly: position from the
// measurement, velocity zero.
func (p *PointFilter) Update(m landmark.Point, confidence float64) landmark.Point {
	if !p.initialized {
		p.state = mat.NewVecDense(stateDim, []float64{m.X, m.Y, m.Z, 0, 0, 0})
		p.cov = eye(stateDim, 1)
		p.initialized = true
		p.lostFrames = 0
		return m
	}

	p.predictStep()

	// Scale measurement noise inversely with confidence.
	c := confidence
	if c < minConfidence {
		c = minConfidence
	}
	r := eye(measDim, p.cfg.MeasurementNoise/c)

	// Innovation covariance S = H P Hᵀ + R.
	var pht, s mat.Dense
	pht.Mul(p.cov, p.measurement.T())
	s.Mul(p.measurement, &pht)
	s.Add(&s, r)

	// Kalman gain K = P Hᵀ S⁻¹.
	var sInv, gain mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		// Numerically singular innovation covariance: keep the
		// prediction and skip the correction for this frame.
		p.lostFrames = 0
		return p.Position()
	}
	gain.Mul(&pht, &sInv)

	// Residual y = z - H x.
	z := mat.NewVecDense(measDim, []float64{m.X, m.Y, m.Z})
	var hx, residual mat.VecDense
	hx.MulVec(p.measurement, p.state)
	residual.SubVec(z, &hx)

	// State update x = x + K y.
	var correction mat.VecDense
	correction.MulVec(&gain, &residual)
	p.state.AddVec(p.state, &correction)

	// Covariance update P = (I - K H) P.
	var kh, ikh, newCov mat.Dense
	kh.Mul(&gain, p.measurement)
	ikh.Sub(eye(stateDim, 1), &kh)
	newCov.Mul(&ikh, p.cov)
	p.cov = &newCov

	p.lostFrames = 0
	return p.Position()
}

// PredictOnly advances the filter one frame with no correction step, used
// when the landmark is absent from the current frame. It returns ok=false
// once the filter has been lost for more than MaxLostFrames consecutive
// frames, at which point the internal state is discarded so no stale
// velocity carries into the next initialization.
func (p *PointFilter) PredictOnly() (landmark.Point, bool) {
	if !p.initialized {
		return landmark.Point{}, false
	}

	p.lostFrames++
	if p.lostFrames > p.cfg.MaxLostFrames {
		p.Reset()
		return landmark.Point{}, false
	}

	p.predictStep()
	return p.Position(), true
}

// Reset discards all filter state; the next Update re-initializes.
func (p *PointFilter) Reset() {
	p.initialized = false
	p.lostFrames = 0
	p.state = mat.NewVecDense(stateDim, nil)
	p.cov = eye(stateDim, 1)
}

// Initialized reports whether the filter has received at least one
// measurement since creation or its last reset.
func (p *PointFilter) Initialized() bool {
	return p.initialized
}

// LostFrames returns the current consecutive predict-only frame count.
func (p *PointFilter) LostFrames() int {
	return p.lostFrames
}

// Position returns the position components of the current state. Only
// meaningful while the filter is initialized.
func (p *PointFilter) Position() landmark.Point {
	return landmark.Point{
		X: p.state.AtVec(0),
		Y: p.state.AtVec(1),
		Z: p.state.AtVec(2),
	}
}

// Velocity returns the velocity components of the current state in
// normalized units per second.
func (p *PointFilter) Velocity() landmark.Point {
	return landmark.Point{
		X: p.state.AtVec(3),
		Y: p.state.AtVec(4),
		Z: p.state.AtVec(5),
	}
}

// predictStep applies x = F x and P = F P Fᵀ + Q.
func (p *PointFilter) predictStep() {
	var next mat.VecDense
	next.MulVec(p.transition, p.state)
	p.state.CopyVec(&next)

	var fp, fpft mat.Dense
	fp.Mul(p.transition, p.cov)
	fpft.Mul(&fp, p.transition.T())
	fpft.Add(&fpft, eye(stateDim, p.cfg.ProcessNoise))
	p.cov = &fpft
}

// eye returns a size x size diagonal matrix with v on the diagonal.
func eye(size int, v float64) *mat.Dense {
	m := mat.NewDense(size, size, nil)
	for i := 0; i < size; i++ {
		m.Set(i, i, v)
	}
	return m
}

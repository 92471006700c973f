package gesture

import (
	"math"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/calibrate"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/feature"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/smoother"
)

// FingerGunConfig configures the finger-gun detector.
type FingerGunConfig struct {
	Smoother    smoother.Config
	Calibration calibrate.Config
	Classifier  classify.Config

	// IndexWristDefault is the index-to-wrist distance threshold used until
	// calibration observes a hand and derives a per-user one.
	IndexWristDefault float64

	// ShootVelocity is the downward thumb-tip velocity, in normalized units
	// per second, that counts as a trigger pull.
	ShootVelocity float64

	// ShootDistance is the thumb-tip-to-palm distance below which the thumb
	// has come down far enough to fire.
	ShootDistance float64

	// LenientFactor scales ShootDistance when the pose is held through a
	// fallback mode rather than a strict match; a partially occluded hand
	// gets a wider trigger.
	LenientFactor float64

	// ShootCooldown is the minimum interval between shoot events.
	ShootCooldown time.Duration
}

// DefaultFingerGunConfig returns the finger-gun parameters: pose checks per
// the primary rule set, three fallback heuristics, difficult-zone threshold
// relaxation, and a thumb-flick trigger with a hysteresis reset gate.
func DefaultFingerGunConfig() FingerGunConfig {
	cal := calibrate.DefaultConfig()
	cal.Features = []calibrate.FeatureSpec{
		// Extended index reach scales with hand size and camera distance;
		// 60% of the warm-up baseline replaces the fixed floor.
		{Name: feature.IndexWristDist, Ratio: 0.6},
	}

	cls := classify.DefaultConfig()
	cls.Checks = []classify.Check{
		{Feature: feature.ThumbIndexDist, Below: true, Threshold: 0.35},
		{Feature: feature.MiddleRingDist, Below: true, Threshold: 0.08},
		{Feature: feature.RingPinkyDist, Below: true, Threshold: 0.08},
		{Feature: feature.IndexWristDist, Below: false, Adaptive: true},
	}
	cls.Fallbacks = []classify.Fallback{
		{Mode: classify.ModeAngles, Floor: 0.5, Ceiling: 0.7, Eval: evalAngles},
		{Mode: classify.ModeDepth, Floor: 0.5, Ceiling: 0.65, Eval: evalDepth},
		{Mode: classify.ModeWristAngle, Floor: 0.5, Ceiling: 0.6, Eval: evalWristAngle},
	}
	cls.Zones = classify.DefaultZones()

	return FingerGunConfig{
		Smoother:          smoother.DefaultConfig(),
		Calibration:       cal,
		Classifier:        cls,
		IndexWristDefault: 0.10,
		ShootVelocity:     0.35,
		ShootDistance:     0.12,
		LenientFactor:     1.5,
		ShootCooldown:     400 * time.Millisecond,
	}
}

// evalAngles accepts the pose from joint curls alone: index straight, at
// least two of the remaining fingers curled. Useful when fingertip distances
// are distorted by perspective.
func evalAngles(v feature.Vector, relax float64) (bool, float64) {
	indexCurl, ok := v.Get(feature.IndexCurl)
	if !ok || indexCurl >= 0.35*relax {
		return false, 0
	}
	// A fist reads around 0.5 on the curl scale, so 0.4 is "clearly bent".
	curled := 0
	for _, name := range []string{feature.MiddleCurl, feature.RingCurl, feature.PinkyCurl} {
		if c, ok := v.Get(name); ok && c > 0.4/relax {
			curled++
		}
	}
	if curled < 2 {
		return false, 0
	}
	return true, 0.55 + 0.05*float64(curled)
}

// evalDepth accepts the pose when the index finger points toward the camera,
// where the 2D fingertip distances all collapse.
func evalDepth(v feature.Vector, relax float64) (bool, float64) {
	zdiff, ok := v.Get(feature.PointingZDiff)
	if !ok || zdiff <= 0.04/relax {
		return false, 0
	}
	ext, ok := v.Get(feature.IndexExtension)
	if !ok || ext <= 0.08/relax {
		return false, 0
	}
	return true, 0.6
}

// evalWristAngle accepts the pose from wrist orientation when finger detail
// is unreliable: a roughly level hand with the thumb cocked.
func evalWristAngle(v feature.Vector, relax float64) (bool, float64) {
	angle, ok := v.Get(feature.WristAngle)
	if !ok || math.Abs(angle) > 50*relax {
		return false, 0
	}
	if up, ok := v.Get(feature.ThumbAboveIP); !ok || up < 1 {
		return false, 0
	}
	return true, 0.55
}

// fingerGunThresholds resolves adaptive thresholds from the calibrator,
// falling back to the fixed default for features the warm-up never observed.
type fingerGunThresholds struct {
	cal      *calibrate.Calibrator
	defaults map[string]float64
}

func (s fingerGunThresholds) Threshold(name string) (float64, bool) {
	if t, ok := s.cal.Threshold(name); ok {
		return t, true
	}
	t, ok := s.defaults[name]
	return t, ok
}

// FingerGunDetector detects the finger-gun pose and its thumb-flick trigger.
// It runs two machines off one classification: aim streams the smoothed
// index-tip position on every frame the pose holds, shoot fires on the
// thumb flick and stays engaged until the thumb visibly comes back up.
type FingerGunDetector struct {
	mu           sync.Mutex
	cfg          FingerGunConfig
	bank         *smoother.Bank
	cal          *calibrate.Calibrator
	cls          *classify.Classifier
	src          fingerGunThresholds
	aimMachine   *event.Machine
	shootMachine *event.Machine
	ids          []landmark.ID
	events       int64
}

// NewFingerGunDetector creates a finger-gun detector in its warm-up state.
func NewFingerGunDetector(cfg FingerGunConfig) *FingerGunDetector {
	cal := calibrate.New(cfg.Calibration)

	ids := make([]landmark.ID, 0, landmark.NumHandPoints)
	for i := 0; i < landmark.NumHandPoints; i++ {
		ids = append(ids, landmark.HandID(0, i))
	}

	return &FingerGunDetector{
		cfg:  cfg,
		bank: smoother.NewBank(cfg.Smoother),
		cal:  cal,
		cls:  classify.New(cfg.Classifier),
		src: fingerGunThresholds{
			cal:      cal,
			defaults: map[string]float64{feature.IndexWristDist: cfg.IndexWristDefault},
		},
		aimMachine: event.NewMachine(event.MachineConfig{
			Type:       event.Aim,
			Continuous: true,
		}),
		shootMachine: event.NewMachine(event.MachineConfig{
			Type:         event.Shoot,
			Cooldown:     cfg.ShootCooldown,
			RequireReset: true,
		}),
		ids: ids,
	}
}

// Name implements Detector.
func (d *FingerGunDetector) Name() string { return "finger_gun" }

// Process implements Detector.
func (d *FingerGunDetector) Process(frame *landmark.Frame) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	smoothed := d.bank.Smooth(frame, d.ids)
	v := feature.ExtractFingerGun(smoothed)
	if len(v) == 0 {
		d.cls.Reset()
		if !d.cal.Calibrated() {
			return Result{Status: StatusCalibrating}
		}
		return Result{Status: StatusNoDetection}
	}

	if !d.cal.Calibrated() {
		d.cal.Accumulate(v)
		return Result{Status: StatusCalibrating}
	}

	aim := d.aimPoint(smoothed)
	score := d.cls.Classify(v, d.src, aim)

	res := Result{Status: StatusTracking, Score: score}
	if score.Match {
		res.Aim = aim
	}

	if ev := d.aimMachine.Step(event.Input{
		Now:        frame.Timestamp,
		Match:      score.Match,
		Reset:      !score.Match,
		Confidence: score.Confidence,
		Position:   aim,
	}); ev != nil {
		d.events++
		res.Events = append(res.Events, *ev)
	}

	if ev := d.stepShoot(frame.Timestamp, v, score, aim); ev != nil {
		d.events++
		res.Events = append(res.Events, *ev)
	}
	return res
}

// stepShoot evaluates the thumb-flick trigger: a fast downward thumb that
// lands near the palm while the pose holds. The reset gate demands the thumb
// visibly rising or well clear of the palm, so recoil jitter cannot re-arm
// the trigger.
func (d *FingerGunDetector) stepShoot(now time.Time, v feature.Vector, score classify.Score, aim *landmark.Point2D) *event.Event {
	var vy float64
	if vel, ok := d.bank.Velocity(landmark.HandID(0, landmark.ThumbTip)); ok {
		vy = vel.Y
	}
	thumbPalm, okPalm := v.Get(feature.ThumbPalmDist)

	distLimit := d.cfg.ShootDistance
	if score.Match && score.Mode != classify.ModeStrict {
		distLimit *= d.cfg.LenientFactor
	}

	match := score.Match && okPalm &&
		vy > d.cfg.ShootVelocity && thumbPalm < distLimit
	reset := vy < -2*d.cfg.ShootVelocity ||
		(okPalm && thumbPalm > 2.5*d.cfg.ShootDistance)

	return d.shootMachine.Step(event.Input{
		Now:        now,
		Match:      match,
		Reset:      reset,
		Confidence: score.Confidence,
		Position:   aim,
	})
}

// aimPoint returns the smoothed index-tip position, or nil if the tip is not
// tracked this frame.
func (d *FingerGunDetector) aimPoint(frame *landmark.Frame) *landmark.Point2D {
	lm, ok := frame.Get(landmark.HandID(0, landmark.IndexTip))
	if !ok {
		return nil
	}
	return &landmark.Point2D{X: lm.Position.X, Y: lm.Position.Y}
}

// Recalibrate implements Detector.
func (d *FingerGunDetector) Recalibrate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cal.Recalibrate()
	d.cls.Reset()
	d.bank.ResetAll()
	d.aimMachine.Reset()
	d.shootMachine.Reset()
}

// Snapshot implements Detector.
func (d *FingerGunDetector) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	thresholds := make(map[string]float64)
	if t, ok := d.src.Threshold(feature.IndexWristDist); ok {
		thresholds[feature.IndexWristDist] = t
	}
	return Snapshot{
		Name:       d.Name(),
		Calibrated: d.cal.Calibrated(),
		Progress:   d.cal.Progress(),
		State:      d.shootMachine.State().String(),
		EventCount: d.events,
		Thresholds: thresholds,
	}
}

package gesture

import (
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/calibrate"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/feature"
	"github.com/ayusman/mudra/internal/landmark"
)

// BlinkConfig configures the blink detector.
type BlinkConfig struct {
	Calibration calibrate.Config
	Classifier  classify.Config

	// Cooldown is the minimum interval between blink events.
	Cooldown time.Duration
}

// DefaultBlinkConfig returns the blink parameters: a two-second eye-openness
// warm-up, thresholds at 75% of the per-user baseline (80% in glasses mode),
// and a 200 ms cooldown.
func DefaultBlinkConfig() BlinkConfig {
	cal := calibrate.DefaultConfig()
	cal.Features = []calibrate.FeatureSpec{
		{Name: feature.LeftEAR, Ratio: 0.75, AlternateRatio: 0.8},
		{Name: feature.RightEAR, Ratio: 0.75, AlternateRatio: 0.8},
	}
	// A mean baseline this low means lenses are shrinking the apparent eye
	// opening; the relaxed ratio compensates.
	cal.AlternateModeFloor = 0.22

	cls := classify.DefaultConfig()
	cls.Checks = []classify.Check{
		{Feature: feature.LeftEAR, Below: true, Adaptive: true},
		{Feature: feature.RightEAR, Below: true, Adaptive: true},
	}
	// A blink spans only a handful of frames at 30 FPS; a voting buffer
	// would swallow it.
	cls.VoteWindow = 1

	return BlinkConfig{
		Calibration: cal,
		Classifier:  cls,
		Cooldown:    200 * time.Millisecond,
	}
}

// BlinkDetector detects deliberate both-eyes blinks from face-mesh
// landmarks. Eye aspect ratios are scale-invariant, so the detector reads
// raw landmark positions; running them through a position filter would only
// add latency to an event that lasts three frames.
type BlinkDetector struct {
	mu      sync.Mutex
	cfg     BlinkConfig
	cal     *calibrate.Calibrator
	cls     *classify.Classifier
	machine *event.Machine
	events  int64
}

// NewBlinkDetector creates a blink detector in its warm-up state.
func NewBlinkDetector(cfg BlinkConfig) *BlinkDetector {
	return &BlinkDetector{
		cfg: cfg,
		cal: calibrate.New(cfg.Calibration),
		cls: classify.New(cfg.Classifier),
		machine: event.NewMachine(event.MachineConfig{
			Type:         event.Blink,
			Cooldown:     cfg.Cooldown,
			RequireReset: true,
		}),
	}
}

// Name implements Detector.
func (d *BlinkDetector) Name() string { return "blink" }

// Process implements Detector. Calibration frames only advance while a face
// is visible, so looking away during warm-up pauses it instead of baking in
// garbage baselines.
func (d *BlinkDetector) Process(frame *landmark.Frame) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := feature.ExtractEyes(frame)
	_, okL := v.Get(feature.LeftEAR)
	_, okR := v.Get(feature.RightEAR)
	if !okL && !okR {
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

	score := d.cls.Classify(v, d.cal, nil)
	ev := d.machine.Step(event.Input{
		Now:        frame.Timestamp,
		Match:      score.Match,
		Reset:      d.eyesOpen(v),
		Confidence: score.Confidence,
	})

	res := Result{Status: StatusTracking, Score: score}
	if ev != nil {
		d.events++
		res.Events = append(res.Events, *ev)
	}
	return res
}

// eyesOpen reports whether both eyes are back above their thresholds, which
// is what re-arms the machine after a blink.
func (d *BlinkDetector) eyesOpen(v feature.Vector) bool {
	for _, name := range []string{feature.LeftEAR, feature.RightEAR} {
		val, ok := v.Get(name)
		if !ok {
			return false
		}
		threshold, ok := d.cal.Threshold(name)
		if !ok || val <= threshold {
			return false
		}
	}
	return true
}

// Recalibrate implements Detector.
func (d *BlinkDetector) Recalibrate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cal.Recalibrate()
	d.cls.Reset()
	d.machine.Reset()
}

// Snapshot implements Detector.
func (d *BlinkDetector) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	thresholds := make(map[string]float64)
	for _, name := range []string{feature.LeftEAR, feature.RightEAR} {
		if t, ok := d.cal.Threshold(name); ok {
			thresholds[name] = t
		}
	}
	return Snapshot{
		Name:          d.Name(),
		Calibrated:    d.cal.Calibrated(),
		Progress:      d.cal.Progress(),
		AlternateMode: d.cal.AlternateMode(),
		State:         d.machine.State().String(),
		EventCount:    d.events,
		Thresholds:    thresholds,
	}
}

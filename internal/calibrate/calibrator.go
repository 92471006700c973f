// Package calibrate builds per-session adaptive threshold profiles by
// observing feature values over a warm-up window. Thresholds derive from
// per-user baselines instead of fixed constants, so the same detector works
// across different anatomy without manual tuning.
package calibrate

import (
	"math"

	"github.com/ayusman/mudra/internal/feature"
)

// alpha is the exponential-moving-average weight applied to each new sample
// during the warm-up window.
const alpha = 0.1

// FeatureSpec describes how one feature participates in calibration.
type FeatureSpec struct {
	// Name is the feature name as produced by the extractor.
	Name string

	// Ratio maps the calibrated baseline to a threshold:
	// threshold = baseline * Ratio. A ratio below 1 detects drops below
	// the baseline (e.g. 0.75 for eye openness); above 1 detects rises.
	Ratio float64

	// AlternateRatio replaces Ratio when the alternate anatomical mode is
	// active. Zero means "same as Ratio".
	AlternateRatio float64
}

// Config holds the calibration parameters for one detector instance.
type Config struct {
	// Duration is the warm-up length in seconds.
	Duration float64

	// FrameRate is the assumed incoming frame rate; Duration * FrameRate
	// frames complete the warm-up.
	FrameRate float64

	// Features lists the features to baseline and their threshold ratios.
	Features []FeatureSpec

	// AlternateModeFloor triggers the alternate anatomical mode (e.g.
	// glasses lowering baseline eye openness) when the mean baseline
	// across all calibrated features falls below it. Zero disables the
	// mode entirely.
	AlternateModeFloor float64

	// Sensitivity scales every derived threshold; 1 is neutral, higher
	// values make detection more eager.
	Sensitivity float64
}

// DefaultConfig returns a two-second warm-up at 30 FPS with neutral
// sensitivity and no features. Callers fill in Features per gesture.
func DefaultConfig() Config {
	return Config{
		Duration:    2.0,
		FrameRate:   30,
		Sensitivity: 1,
	}
}

// Calibrator accumulates feature baselines during the warm-up window and
// freezes a threshold profile on completion. It is mutated only during the
// window; after that the profile is read-only until Recalibrate.
type Calibrator struct {
	cfg        Config
	maxFrames  int
	frames     int
	baselines  map[string]float64
	thresholds map[string]float64
	calibrated bool
	altMode    bool
}

// New creates a calibrator from the given configuration.
func New(cfg Config) *Calibrator {
	if cfg.Sensitivity <= 0 {
		cfg.Sensitivity = 1
	}
	maxFrames := int(cfg.Duration * cfg.FrameRate)
	if maxFrames < 1 {
		maxFrames = 1
	}
	return &Calibrator{
		cfg:        cfg,
		maxFrames:  maxFrames,
		baselines:  make(map[string]float64),
		thresholds: make(map[string]float64),
	}
}

// Accumulate folds one frame's features into the running baselines and
// returns true once calibration is complete. Features that are absent or
// non-finite this frame are excluded from the average rather than polluting
// it; the frame still counts toward the window. Calling Accumulate after
// completion is a no-op.
func (c *Calibrator) Accumulate(v feature.Vector) bool {
	if c.calibrated {
		return true
	}

	for _, spec := range c.cfg.Features {
		val, ok := v.Get(spec.Name)
		if !ok || math.IsInf(val, 0) {
			continue
		}
		if base, seen := c.baselines[spec.Name]; seen {
			c.baselines[spec.Name] = alpha*val + (1-alpha)*base
		} else {
			// The first observed value seeds the average.
			c.baselines[spec.Name] = val
		}
	}

	c.frames++
	if c.frames >= c.maxFrames {
		c.freeze()
	}
	return c.calibrated
}

// freeze derives the threshold profile from the accumulated baselines and
// marks calibration complete.
func (c *Calibrator) freeze() {
	// Alternate anatomical mode: a combined baseline below the floor
	// means the relaxed ratios apply across the board.
	if c.cfg.AlternateModeFloor > 0 {
		sum, n := 0.0, 0
		for _, spec := range c.cfg.Features {
			if base, ok := c.baselines[spec.Name]; ok {
				sum += base
				n++
			}
		}
		if n > 0 && sum/float64(n) < c.cfg.AlternateModeFloor {
			c.altMode = true
		}
	}

	for _, spec := range c.cfg.Features {
		base, ok := c.baselines[spec.Name]
		if !ok {
			continue
		}
		ratio := spec.Ratio
		if c.altMode && spec.AlternateRatio != 0 {
			ratio = spec.AlternateRatio
		}
		c.thresholds[spec.Name] = base * ratio * c.cfg.Sensitivity
	}
	c.calibrated = true
}

// Calibrated reports whether the warm-up window has completed. Thresholds
// are only valid once this returns true.
func (c *Calibrator) Calibrated() bool {
	return c.calibrated
}

// AlternateMode reports whether the alternate anatomical mode (e.g.
// glasses) was detected at freeze time.
func (c *Calibrator) AlternateMode() bool {
	return c.altMode
}

// Progress returns warm-up progress in [0, 1], reaching exactly 1 at the
// frame that completes calibration and never before.
func (c *Calibrator) Progress() float64 {
	if c.calibrated {
		return 1
	}
	p := float64(c.frames) / float64(c.maxFrames)
	if p > 1 {
		p = 1
	}
	return p
}

// Threshold returns the adaptive threshold for a feature. ok is false
// before calibration completes or for features that never produced a
// baseline.
func (c *Calibrator) Threshold(name string) (float64, bool) {
	if !c.calibrated {
		return 0, false
	}
	t, ok := c.thresholds[name]
	return t, ok
}

// Baseline returns the calibrated baseline for a feature, for status
// reporting. Valid only after calibration.
func (c *Calibrator) Baseline(name string) (float64, bool) {
	if !c.calibrated {
		return 0, false
	}
	b, ok := c.baselines[name]
	return b, ok
}

// Recalibrate clears all accumulated state and restarts the warm-up window.
func (c *Calibrator) Recalibrate() {
	c.frames = 0
	c.calibrated = false
	c.altMode = false
	c.baselines = make(map[string]float64)
	c.thresholds = make(map[string]float64)
}

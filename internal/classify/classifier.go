// Package classify fuses independent geometric checks into a single
// confidence-scored verdict per frame. A primary rule set feeds a cascading
// fallback ladder, thresholds relax inside configured difficult zones, and
// a short temporal-voting buffer suppresses one-frame flicker.
package classify

import (
	"github.com/ayusman/mudra/internal/feature"
	"github.com/ayusman/mudra/internal/landmark"
)

// Mode tags how a positive classification was reached. Using a closed enum
// instead of free-form strings keeps branch handling exhaustive.
type Mode int

const (
	// ModeNone marks a frame with no accepted match.
	ModeNone Mode = iota
	// ModeStrict marks a match from the primary rule set alone.
	ModeStrict
	// ModeAngles marks a match from the joint-angle fallback.
	ModeAngles
	// ModeDepth marks a match from the pointing-toward-camera fallback.
	ModeDepth
	// ModeWristAngle marks a match from the wrist-orientation fallback.
	ModeWristAngle
	// ModeRegion marks a match accepted under relaxed difficult-zone rules.
	ModeRegion
)

// String returns the mode's display name.
func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeAngles:
		return "angles"
	case ModeDepth:
		return "depth"
	case ModeWristAngle:
		return "wrist_angle"
	case ModeRegion:
		return "region"
	default:
		return "none"
	}
}

// Score is the classifier's verdict for one frame.
type Score struct {
	Match      bool
	Confidence float64
	Mode       Mode
}

// ThresholdSource resolves adaptive thresholds by feature name. A source
// that is not yet calibrated returns ok=false and the dependent check
// simply fails for that frame.
type ThresholdSource interface {
	Threshold(name string) (float64, bool)
}

// Check is one independent boolean rule comparing a feature to a threshold.
type Check struct {
	// Feature names the extractor output this check reads.
	Feature string

	// Below makes the check pass when value < threshold; otherwise the
	// check passes when value > threshold.
	Below bool

	// Threshold is the fixed decision boundary, used when Adaptive is
	// false.
	Threshold float64

	// Adaptive resolves the boundary from the ThresholdSource under the
	// feature's name instead of using the fixed Threshold.
	Adaptive bool
}

// Fallback is one alternate heuristic tried when the primary rules score
// too low to accept outright but high enough to be worth a second look.
type Fallback struct {
	// Mode tags matches produced by this fallback.
	Mode Mode

	// Eval runs the heuristic; relax is the difficult-zone multiplier in
	// effect this frame (1 outside any zone).
	Eval func(v feature.Vector, relax float64) (bool, float64)

	// Floor is the minimum Eval confidence to accept.
	Floor float64

	// Ceiling caps the reported confidence; a fallback can never claim
	// the certainty of a full primary match.
	Ceiling float64
}

// Config holds the rule set and fusion parameters for one classifier.
type Config struct {
	Checks    []Check
	Fallbacks []Fallback

	// StrictBar is the primary-score fraction at which the frame is
	// accepted outright in strict mode.
	StrictBar float64

	// FallbackBar is the minimum primary score at which the fallback
	// ladder is consulted.
	FallbackBar float64

	// VoteWindow is the temporal-voting ring buffer length.
	VoteWindow int

	// Zones lists difficult screen regions with threshold multipliers.
	Zones ZoneSet
}

// DefaultConfig returns the fusion parameters shared by the detectors:
// strict acceptance above 0.8, fallbacks consulted above 0.3, five-frame
// voting.
func DefaultConfig() Config {
	return Config{
		StrictBar:   0.8,
		FallbackBar: 0.3,
		VoteWindow:  5,
	}
}

// voteActivationLen is the buffered-frame count below which voting does not
// suppress matches, so the first frames after startup or a reset respond
// immediately.
const voteActivationLen = 3

// Classifier evaluates one frame at a time. It carries only the temporal
// voting buffer; all rule evaluation is stateless.
type Classifier struct {
	cfg   Config
	votes []bool
	next  int
	count int
}

// New creates a classifier from the given configuration.
func New(cfg Config) *Classifier {
	if cfg.StrictBar <= 0 {
		cfg.StrictBar = 0.8
	}
	if cfg.FallbackBar <= 0 {
		cfg.FallbackBar = 0.3
	}
	if cfg.VoteWindow <= 0 {
		cfg.VoteWindow = 5
	}
	return &Classifier{
		cfg:   cfg,
		votes: make([]bool, cfg.VoteWindow),
	}
}

// Classify fuses the frame's features into a verdict. pos, when non-nil, is
// the gesture's screen position used for difficult-zone threshold scaling.
// The returned Match already reflects temporal voting: a raw positive this
// frame is only reported as a match once at least half of the recent
// buffered verdicts agree.
func (c *Classifier) Classify(v feature.Vector, src ThresholdSource, pos *landmark.Point2D) Score {
	relax := 1.0
	if pos != nil {
		relax = c.cfg.Zones.MultiplierAt(*pos)
	}

	score := c.classifyRaw(v, src, relax)

	// Temporal voting: suppress one-frame flicker once enough history
	// has accumulated.
	c.push(score.Match)
	if c.count >= voteActivationLen && !c.majority() {
		score.Match = false
		score.Confidence /= 2
	}
	return score
}

// classifyRaw applies the primary rule set and the fallback ladder with no
// temporal state.
func (c *Classifier) classifyRaw(v feature.Vector, src ThresholdSource, relax float64) Score {
	passed, total := 0, len(c.cfg.Checks)
	for _, check := range c.cfg.Checks {
		if c.evalCheck(check, v, src, relax) {
			passed++
		}
	}
	if total == 0 {
		return Score{Mode: ModeNone}
	}
	ratio := float64(passed) / float64(total)

	if ratio >= c.cfg.StrictBar {
		mode := ModeStrict
		if relax > 1 {
			mode = ModeRegion
		}
		return Score{Match: true, Confidence: ratio, Mode: mode}
	}

	if ratio >= c.cfg.FallbackBar {
		for _, fb := range c.cfg.Fallbacks {
			ok, conf := fb.Eval(v, relax)
			if !ok || conf < fb.Floor {
				continue
			}
			if conf > fb.Ceiling {
				conf = fb.Ceiling
			}
			return Score{Match: true, Confidence: conf, Mode: fb.Mode}
		}
	}

	return Score{Confidence: ratio, Mode: ModeNone}
}

func (c *Classifier) evalCheck(check Check, v feature.Vector, src ThresholdSource, relax float64) bool {
	val, ok := v.Get(check.Feature)
	if !ok {
		// Missing landmark upstream: the dependent check fails quietly.
		return false
	}

	threshold := check.Threshold
	if check.Adaptive {
		if src == nil {
			return false
		}
		t, ok := src.Threshold(check.Feature)
		if !ok {
			return false
		}
		threshold = t
	}

	if check.Below {
		// Relaxing a "below" check means tolerating larger values.
		return val < threshold*relax
	}
	// Relaxing an "above" check means tolerating smaller values.
	return val > threshold/relax
}

// push appends a raw verdict to the voting ring buffer.
func (c *Classifier) push(match bool) {
	c.votes[c.next] = match
	c.next = (c.next + 1) % len(c.votes)
	if c.count < len(c.votes) {
		c.count++
	}
}

// majority reports whether at least half of the buffered verdicts are
// positive.
func (c *Classifier) majority() bool {
	positives := 0
	for i := 0; i < c.count; i++ {
		if c.votes[i] {
			positives++
		}
	}
	return positives*2 >= c.count
}

// Reset clears the temporal voting buffer, used when tracking is lost or
// the detector recalibrates.
func (c *Classifier) Reset() {
	c.next = 0
	c.count = 0
	for i := range c.votes {
		c.votes[i] = false
	}
}

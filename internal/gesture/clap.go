package gesture

import (
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/feature"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/smoother"
)

// ClapConfig configures the clap detector.
type ClapConfig struct {
	Smoother   smoother.Config
	Classifier classify.Config

	// CloseThreshold is the hand-pair distance below which the hands count
	// as together.
	CloseThreshold float64

	// ApartThreshold is the distance the hands must separate to before
	// another clap can fire.
	ApartThreshold float64

	// Cooldown is the minimum interval between clap events.
	Cooldown time.Duration
}

// DefaultClapConfig returns the clap parameters: hands together below 0.12,
// re-armed above 0.30, 300 ms cooldown, and a five-frame prediction budget
// so a hand briefly swallowed by motion blur mid-clap does not drop the
// event.
func DefaultClapConfig() ClapConfig {
	sm := smoother.DefaultConfig()
	sm.MaxLostFrames = 5

	cls := classify.DefaultConfig()
	// A fast clap can spend a single frame inside the close threshold.
	cls.VoteWindow = 1

	return ClapConfig{
		Smoother:       sm,
		Classifier:     cls,
		CloseThreshold: 0.12,
		ApartThreshold: 0.30,
		Cooldown:       300 * time.Millisecond,
	}
}

// ClapDetector detects both hands coming together. The hand-pair distance is
// the minimum over several stable landmarks on each hand, so partial
// occlusion of either hand during the strike does not inflate it. Hands that
// cross close while palms face the camera (waving, reaching past each
// other) are rejected by the hands-facing check. Clap has no per-user
// warm-up: the thresholds are fractions of the frame, not of anatomy.
type ClapDetector struct {
	mu      sync.Mutex
	cfg     ClapConfig
	bank    *smoother.Bank
	cls     *classify.Classifier
	machine *event.Machine
	ids     []landmark.ID
	events  int64
}

// NewClapDetector creates a clap detector.
func NewClapDetector(cfg ClapConfig) *ClapDetector {
	cls := cfg.Classifier
	if len(cls.Checks) == 0 {
		cls.Checks = []classify.Check{
			{Feature: feature.HandPairDist, Below: true, Threshold: cfg.CloseThreshold},
			{Feature: feature.HandsFacing, Below: false, Threshold: 0.5},
		}
	}
	return &ClapDetector{
		cfg:  cfg,
		bank: smoother.NewBank(cfg.Smoother),
		cls:  classify.New(cls),
		machine: event.NewMachine(event.MachineConfig{
			Type:         event.Clap,
			Cooldown:     cfg.Cooldown,
			RequireReset: true,
		}),
		ids: feature.HandPairIDs(),
	}
}

// Name implements Detector.
func (d *ClapDetector) Name() string { return "clap" }

// Process implements Detector. Missing hands coast on prediction for up to
// the smoother's lost-frame budget; past that the pair distance goes absent
// and the frame reports no detection. The machine keeps its state through
// the gap, so hands that vanish while together still have to separate
// before the next clap.
func (d *ClapDetector) Process(frame *landmark.Frame) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	smoothed := d.bank.Smooth(frame, d.ids)
	v := feature.ExtractHandPair(smoothed)
	dist, ok := v.Get(feature.HandPairDist)
	if !ok {
		return Result{Status: StatusNoDetection}
	}

	score := d.cls.Classify(v, nil, nil)
	ev := d.machine.Step(event.Input{
		Now:        frame.Timestamp,
		Match:      score.Match,
		Reset:      dist > d.cfg.ApartThreshold,
		Confidence: score.Confidence,
		Position:   d.midpoint(smoothed),
	})

	res := Result{Status: StatusTracking, Score: score}
	if ev != nil {
		d.events++
		res.Events = append(res.Events, *ev)
	}
	return res
}

// midpoint returns the point halfway between the two wrists, used as the
// clap's reported position.
func (d *ClapDetector) midpoint(frame *landmark.Frame) *landmark.Point2D {
	a, okA := frame.Get(landmark.HandID(0, landmark.Wrist))
	b, okB := frame.Get(landmark.HandID(1, landmark.Wrist))
	if !okA || !okB {
		return nil
	}
	return &landmark.Point2D{
		X: (a.Position.X + b.Position.X) / 2,
		Y: (a.Position.Y + b.Position.Y) / 2,
	}
}

// Recalibrate implements Detector. Clap has no calibration profile; this
// just clears tracking state.
func (d *ClapDetector) Recalibrate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.bank.ResetAll()
	d.cls.Reset()
	d.machine.Reset()
}

// Snapshot implements Detector.
func (d *ClapDetector) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		Name:       d.Name(),
		Calibrated: true,
		Progress:   1,
		State:      d.machine.State().String(),
		EventCount: d.events,
		Thresholds: map[string]float64{
			"close": d.cfg.CloseThreshold,
			"apart": d.cfg.ApartThreshold,
		},
	}
}

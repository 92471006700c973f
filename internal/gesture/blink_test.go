package gesture

import (
	"math"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/feature"
	"github.com/ayusman/mudra/internal/landmark"
)

// eyeFrame builds a face frame whose two eyes measure the given aspect
// ratios exactly.
func eyeFrame(ts time.Time, leftEAR, rightEAR float64) *landmark.Frame {
	f := landmark.NewFrame(ts, 640, 480)
	putEye(f, landmark.LeftEyeIndices, 0.3, leftEAR)
	putEye(f, landmark.RightEyeIndices, 0.6, rightEAR)
	return f
}

// putEye places six eye landmarks with horizontal spread 0.1 and the
// vertical spread that recovers the target aspect ratio.
func putEye(f *landmark.Frame, indices [6]int, x0, ear float64) {
	h := 0.1
	v := ear * h / 2
	pts := [6]landmark.Point{
		{X: x0, Y: 0.5},
		{X: x0 + 0.03, Y: 0.5 - v},
		{X: x0 + 0.07, Y: 0.5 - v},
		{X: x0 + h, Y: 0.5},
		{X: x0 + 0.07, Y: 0.5 + v},
		{X: x0 + 0.03, Y: 0.5 + v},
	}
	for i, idx := range indices {
		f.Put(landmark.FaceID(idx), pts[i], 0.95)
	}
}

// testBlinkConfig shortens the warm-up to exactly 20 frames.
func testBlinkConfig() BlinkConfig {
	cfg := DefaultBlinkConfig()
	cfg.Calibration.Duration = 2
	cfg.Calibration.FrameRate = 10
	return cfg
}

type blinkRunner struct {
	d        *BlinkDetector
	start    time.Time
	interval time.Duration
	frame    int
	events   []event.Event
}

func newBlinkRunner(d *BlinkDetector) *blinkRunner {
	return &blinkRunner{d: d, start: time.Unix(100, 0), interval: 33 * time.Millisecond}
}

func (r *blinkRunner) run(n int, leftEAR, rightEAR float64) {
	for i := 0; i < n; i++ {
		ts := r.start.Add(time.Duration(r.frame) * r.interval)
		res := r.d.Process(eyeFrame(ts, leftEAR, rightEAR))
		r.events = append(r.events, res.Events...)
		r.frame++
	}
}

func TestBlinkDetector_SingleBlink(t *testing.T) {
	d := NewBlinkDetector(testBlinkConfig())
	r := newBlinkRunner(d)

	r.run(20, 0.30, 0.30)
	snap := d.Snapshot()
	if !snap.Calibrated {
		t.Fatal("20 frames should complete calibration")
	}
	if got := snap.Thresholds[feature.LeftEAR]; math.Abs(got-0.225) > 1e-9 {
		t.Fatalf("threshold should be 75%% of the 0.30 baseline, got %f", got)
	}
	if snap.AlternateMode {
		t.Error("a 0.30 baseline must not trip the glasses mode")
	}

	r.run(3, 0.10, 0.10)
	r.run(10, 0.30, 0.30)

	if len(r.events) != 1 {
		t.Fatalf("expected exactly 1 blink event, got %d", len(r.events))
	}
	if r.events[0].Type != event.Blink {
		t.Errorf("expected a blink event, got %s", r.events[0].Type)
	}
	// The event is stamped at the first closed frame, right after warm-up.
	wantTS := r.start.Add(20 * r.interval)
	if !r.events[0].Timestamp.Equal(wantTS) {
		t.Errorf("blink should fire on the first closed frame: got %v want %v", r.events[0].Timestamp, wantTS)
	}
}

func TestBlinkDetector_GlassesMode(t *testing.T) {
	d := NewBlinkDetector(testBlinkConfig())
	r := newBlinkRunner(d)

	// A low baseline trips the alternate mode and the relaxed 0.8 ratio.
	r.run(20, 0.18, 0.18)
	snap := d.Snapshot()
	if !snap.AlternateMode {
		t.Fatal("a 0.18 baseline should enable the glasses mode")
	}
	if got := snap.Thresholds[feature.LeftEAR]; math.Abs(got-0.144) > 1e-9 {
		t.Fatalf("glasses threshold should be 80%% of baseline, got %f", got)
	}

	// 0.14 sits between the strict threshold (0.135) and the relaxed one
	// (0.144): only the glasses mode catches this blink.
	r.run(3, 0.14, 0.14)
	r.run(5, 0.18, 0.18)
	if len(r.events) != 1 {
		t.Fatalf("expected 1 blink in glasses mode, got %d", len(r.events))
	}
}

func TestBlinkDetector_WinkIsNotABlink(t *testing.T) {
	d := NewBlinkDetector(testBlinkConfig())
	r := newBlinkRunner(d)

	r.run(20, 0.30, 0.30)
	r.run(4, 0.10, 0.30) // left eye only
	r.run(4, 0.30, 0.10) // right eye only
	r.run(4, 0.30, 0.30)

	if len(r.events) != 0 {
		t.Fatalf("single-eye closures must not fire, got %d events", len(r.events))
	}
}

func TestBlinkDetector_CalibrationPausesWithoutFace(t *testing.T) {
	d := NewBlinkDetector(testBlinkConfig())
	r := newBlinkRunner(d)

	r.run(10, 0.30, 0.30)
	mid := d.Snapshot().Progress
	if math.Abs(mid-0.5) > 1e-9 {
		t.Fatalf("expected half progress, got %f", mid)
	}

	// Faceless frames are reported as still calibrating and do not advance
	// the window.
	for i := 0; i < 5; i++ {
		ts := r.start.Add(time.Duration(r.frame) * r.interval)
		res := d.Process(landmark.NewFrame(ts, 640, 480))
		if res.Status != StatusCalibrating {
			t.Fatalf("faceless frame during warm-up should report calibrating, got %s", res.Status)
		}
		r.frame++
	}
	if got := d.Snapshot().Progress; got != mid {
		t.Errorf("faceless frames must not advance calibration: %f -> %f", mid, got)
	}

	r.run(10, 0.30, 0.30)
	if !d.Snapshot().Calibrated {
		t.Error("calibration should complete once the face returns")
	}
}

func TestBlinkDetector_Recalibrate(t *testing.T) {
	d := NewBlinkDetector(testBlinkConfig())
	r := newBlinkRunner(d)

	r.run(20, 0.30, 0.30)
	d.Recalibrate()
	if snap := d.Snapshot(); snap.Calibrated || snap.Progress != 0 {
		t.Fatal("recalibrate should reopen the warm-up window")
	}

	// A fresh baseline from the new session, not a blend with the old one.
	r.run(20, 0.26, 0.26)
	if got := d.Snapshot().Thresholds[feature.LeftEAR]; math.Abs(got-0.195) > 1e-9 {
		t.Errorf("post-recalibration threshold should derive from the new baseline, got %f", got)
	}
}

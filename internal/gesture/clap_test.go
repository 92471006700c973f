package gesture

import (
	"math"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/landmark"
)

var clapTestPoints = []int{
	landmark.Wrist,
	landmark.MiddleMCP,
	landmark.IndexMCP,
	landmark.RingMCP,
	landmark.ThumbCMC,
	landmark.PinkyMCP,
}

// putClapHand places one hand's pairing landmarks in a vertical column at x.
func putClapHand(f *landmark.Frame, hand int, x float64) {
	for i, idx := range clapTestPoints {
		f.Put(landmark.HandID(hand, idx), landmark.Point{X: x, Y: 0.4 + 0.02*float64(i)}, 0.9)
	}
}

// handsFrame builds a frame with both hands separated horizontally by dist.
func handsFrame(ts time.Time, dist float64) *landmark.Frame {
	f := landmark.NewFrame(ts, 640, 480)
	putClapHand(f, 0, 0.5-dist/2)
	putClapHand(f, 1, 0.5+dist/2)
	return f
}

type clapRunner struct {
	d        *ClapDetector
	start    time.Time
	interval time.Duration
	frame    int
	events   []event.Event
	last     Result
}

func newClapRunner(d *ClapDetector) *clapRunner {
	return &clapRunner{d: d, start: time.Unix(200, 0), interval: 33 * time.Millisecond}
}

func (r *clapRunner) step(f *landmark.Frame) Result {
	res := r.d.Process(f)
	r.events = append(r.events, res.Events...)
	r.last = res
	r.frame++
	return res
}

func (r *clapRunner) ts() time.Time {
	return r.start.Add(time.Duration(r.frame) * r.interval)
}

func (r *clapRunner) run(n int, dist float64) {
	for i := 0; i < n; i++ {
		r.step(handsFrame(r.ts(), dist))
	}
}

func TestClapDetector_DoubleClap(t *testing.T) {
	d := NewClapDetector(DefaultClapConfig())
	r := newClapRunner(d)

	// Apart, together, apart, together: two claps.
	r.run(10, 0.40)
	r.run(6, 0.05)
	r.run(12, 0.40)
	r.run(6, 0.05)
	r.run(6, 0.40)

	if len(r.events) != 2 {
		t.Fatalf("expected exactly 2 clap events, got %d", len(r.events))
	}
	for _, ev := range r.events {
		if ev.Type != event.Clap {
			t.Errorf("expected clap events, got %s", ev.Type)
		}
		if ev.Position == nil || math.Abs(ev.Position.X-0.5) > 0.02 {
			t.Errorf("clap position should be the midpoint between wrists, got %+v", ev.Position)
		}
	}
	if gap := r.events[1].Timestamp.Sub(r.events[0].Timestamp); gap <= 300*time.Millisecond {
		t.Errorf("second clap should respect the cooldown, gap %v", gap)
	}
}

func TestClapDetector_MustSeparateBetweenClaps(t *testing.T) {
	d := NewClapDetector(DefaultClapConfig())
	r := newClapRunner(d)

	r.run(10, 0.40)
	r.run(6, 0.05)  // first clap
	r.run(15, 0.18) // drifts apart but never past the re-arm distance
	r.run(6, 0.05)  // no event: still engaged
	if len(r.events) != 1 {
		t.Fatalf("hands never separated past the re-arm threshold; expected 1 event, got %d", len(r.events))
	}

	r.run(8, 0.40) // proper separation
	r.run(6, 0.05)
	if len(r.events) != 2 {
		t.Errorf("expected a second clap after full separation, got %d events", len(r.events))
	}
}

// orientedFrame builds a frame whose palm landmarks carry a deliberate
// orientation: side-on (clap-ready) or flat toward the camera.
func orientedFrame(ts time.Time, dist float64, sideOn bool) *landmark.Frame {
	f := landmark.NewFrame(ts, 640, 480)
	for hand, x := range []float64{0.5 - dist/2, 0.5 + dist/2} {
		f.Put(landmark.HandID(hand, landmark.Wrist), landmark.Point{X: x, Y: 0.60}, 0.9)
		if sideOn {
			f.Put(landmark.HandID(hand, landmark.IndexMCP), landmark.Point{X: x, Y: 0.45, Z: -0.05}, 0.9)
			f.Put(landmark.HandID(hand, landmark.PinkyMCP), landmark.Point{X: x, Y: 0.45, Z: 0.05}, 0.9)
		} else {
			f.Put(landmark.HandID(hand, landmark.IndexMCP), landmark.Point{X: x - 0.03, Y: 0.45}, 0.9)
			f.Put(landmark.HandID(hand, landmark.PinkyMCP), landmark.Point{X: x + 0.03, Y: 0.45}, 0.9)
		}
	}
	return f
}

func TestClapDetector_SideOnPalmsClap(t *testing.T) {
	d := NewClapDetector(DefaultClapConfig())
	r := newClapRunner(d)

	for i := 0; i < 10; i++ {
		r.step(orientedFrame(r.ts(), 0.40, true))
	}
	for i := 0; i < 6; i++ {
		r.step(orientedFrame(r.ts(), 0.05, true))
	}

	if len(r.events) != 1 {
		t.Fatalf("side-on palms coming together should clap once, got %d events", len(r.events))
	}
}

func TestClapDetector_PalmsTowardCameraDoNotClap(t *testing.T) {
	d := NewClapDetector(DefaultClapConfig())
	r := newClapRunner(d)

	// Hands crossing close with palms flat to the camera: reaching past
	// each other, not clapping.
	for i := 0; i < 10; i++ {
		r.step(orientedFrame(r.ts(), 0.40, false))
	}
	for i := 0; i < 6; i++ {
		r.step(orientedFrame(r.ts(), 0.05, false))
	}

	if len(r.events) != 0 {
		t.Fatalf("camera-facing palms must not clap, got %d events", len(r.events))
	}
}

func TestClapDetector_PredictsThroughHandLoss(t *testing.T) {
	d := NewClapDetector(DefaultClapConfig())
	r := newClapRunner(d)

	// Establish tracking with hands apart: hand 0 at 0.30, hand 1 at 0.70.
	r.run(8, 0.40)

	// Hand 1 vanishes; hand 0 sweeps across to meet its predicted position.
	// Within the lost-frame budget the pair distance survives on prediction
	// and the clap still fires.
	for i := 0; i < 5; i++ {
		f := landmark.NewFrame(r.ts(), 640, 480)
		putClapHand(f, 0, 0.66)
		res := r.step(f)
		if res.Status != StatusTracking {
			t.Fatalf("frame %d: expected tracking through prediction, got %s", i, res.Status)
		}
	}
	if len(r.events) != 1 {
		t.Fatalf("expected the clap to fire against the predicted hand, got %d events", len(r.events))
	}

	// Past the budget the pair distance goes absent.
	for i := 0; i < 3; i++ {
		f := landmark.NewFrame(r.ts(), 640, 480)
		putClapHand(f, 0, 0.66)
		r.step(f)
	}
	if r.last.Status != StatusNoDetection {
		t.Errorf("expected no detection past the prediction budget, got %s", r.last.Status)
	}
	if len(r.events) != 1 {
		t.Errorf("no further events may fire without both hands, got %d", len(r.events))
	}
}

func TestClapDetector_Snapshot(t *testing.T) {
	d := NewClapDetector(DefaultClapConfig())

	snap := d.Snapshot()
	if snap.Name != "clap" {
		t.Errorf("unexpected name %q", snap.Name)
	}
	if !snap.Calibrated || snap.Progress != 1 {
		t.Error("clap has no warm-up and should always report calibrated")
	}
	if snap.Thresholds["close"] != 0.12 || snap.Thresholds["apart"] != 0.30 {
		t.Errorf("unexpected thresholds %v", snap.Thresholds)
	}
}

package smoother

import (
	"math"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/landmark"
)

func TestPointFilter_FirstMeasurementPassesThrough(t *testing.T) {
	f := newPointFilter(DefaultConfig())

	m := landmark.Point{X: 0.4, Y: 0.6, Z: 0.02}
	got := f.Update(m, 1.0)

	if got != m {
		t.Errorf("first update should return the raw measurement, got %+v", got)
	}
	if !f.Initialized() {
		t.Error("filter should be initialized after first update")
	}

	// Velocity must be seeded at zero, not inferred from a single sample.
	v := f.Velocity()
	if v.X != 0 || v.Y != 0 || v.Z != 0 {
		t.Errorf("initial velocity should be zero, got %+v", v)
	}
}

func TestPointFilter_ConvergesToConstantMeasurement(t *testing.T) {
	f := newPointFilter(DefaultConfig())

	target := landmark.Point{X: 0.5, Y: 0.5, Z: 0.0}

	// Start the filter somewhere else, then feed the constant target.
	f.Update(landmark.Point{X: 0.1, Y: 0.9, Z: 0.1}, 1.0)

	var got landmark.Point
	for i := 0; i < 60; i++ {
		got = f.Update(target, 1.0)
	}

	if math.Abs(got.X-target.X) > 1e-3 || math.Abs(got.Y-target.Y) > 1e-3 || math.Abs(got.Z-target.Z) > 1e-3 {
		t.Errorf("filter did not converge to constant measurement: got %+v want %+v", got, target)
	}
}

func TestPointFilter_LowConfidenceSlowsConvergence(t *testing.T) {
	// With lower confidence the measurement noise is inflated, so after the
	// same number of frames the low-confidence filter should sit further
	// from the new measurement than the high-confidence one.
	start := landmark.Point{X: 0.0, Y: 0.0, Z: 0.0}
	target := landmark.Point{X: 1.0, Y: 0.0, Z: 0.0}

	run := func(conf float64) float64 {
		f := newPointFilter(DefaultConfig())
		f.Update(start, 1.0)
		var got landmark.Point
		for i := 0; i < 3; i++ {
			got = f.Update(target, conf)
		}
		return math.Abs(got.X - target.X)
	}

	errHigh := run(1.0)
	errLow := run(0.15)

	if errLow <= errHigh {
		t.Errorf("low confidence should converge slower: errLow=%f errHigh=%f", errLow, errHigh)
	}
}

func TestPointFilter_PredictOnlyCoastsWithVelocity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLostFrames = 5
	f := newPointFilter(cfg)

	// Feed a rightward-moving point so the filter learns a velocity.
	for i := 0; i < 30; i++ {
		f.Update(landmark.Point{X: 0.2 + float64(i)*0.01, Y: 0.5}, 1.0)
	}
	last := f.Position()

	pred, ok := f.PredictOnly()
	if !ok {
		t.Fatal("predict should succeed within the lost-frame budget")
	}
	if pred.X <= last.X {
		t.Errorf("prediction should continue rightward motion: pred.X=%f last.X=%f", pred.X, last.X)
	}
}

func TestPointFilter_LostTrackingResetsState(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLostFrames = 3
	f := newPointFilter(cfg)

	// Establish a strong velocity.
	for i := 0; i < 20; i++ {
		f.Update(landmark.Point{X: float64(i) * 0.02, Y: 0.5}, 1.0)
	}

	// Exactly MaxLostFrames predictions succeed.
	for i := 0; i < cfg.MaxLostFrames; i++ {
		if _, ok := f.PredictOnly(); !ok {
			t.Fatalf("prediction %d should still succeed", i+1)
		}
	}

	// Frame MaxLostFrames+1 exceeds the limit: state is discarded.
	if _, ok := f.PredictOnly(); ok {
		t.Error("prediction past the lost-frame limit should fail")
	}
	if f.Initialized() {
		t.Error("filter should be uninitialized after losing tracking")
	}

	// Re-initialization is from scratch: the stale velocity must not
	// carry forward.
	m := landmark.Point{X: 0.9, Y: 0.1}
	got := f.Update(m, 1.0)
	if got != m {
		t.Errorf("re-init should pass the measurement through, got %+v", got)
	}
	v := f.Velocity()
	if v.X != 0 || v.Y != 0 {
		t.Errorf("re-init velocity should be zero, got %+v", v)
	}
}

func TestPointFilter_PredictOnlyUninitialized(t *testing.T) {
	f := newPointFilter(DefaultConfig())
	if _, ok := f.PredictOnly(); ok {
		t.Error("uninitialized filter must not report a position")
	}
}

func TestBank_LazyCreationAndIsolation(t *testing.T) {
	b := NewBank(DefaultConfig())

	idA := landmark.HandID(0, landmark.IndexTip)
	idB := landmark.HandID(0, landmark.ThumbTip)

	b.Update(idA, landmark.Point{X: 0.3, Y: 0.3}, 1.0)

	if !b.Tracking(idA) {
		t.Error("id A should be tracking after an update")
	}
	if b.Tracking(idB) {
		t.Error("id B should not be tracking before any update")
	}
	if _, ok := b.PredictOnly(idB); ok {
		t.Error("predict for a never-seen id should fail")
	}
}

func TestBank_SmoothSubstitutesPredictions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLostFrames = 2
	b := NewBank(cfg)

	id := landmark.HandID(0, landmark.Wrist)
	ids := []landmark.ID{id}

	// Several frames with the landmark present.
	for i := 0; i < 10; i++ {
		frame := landmark.NewFrame(time.Now(), 640, 480)
		frame.Put(id, landmark.Point{X: 0.5, Y: 0.5}, 0.9)
		out := b.Smooth(frame, ids)
		if _, ok := out.Get(id); !ok {
			t.Fatal("smoothed frame should contain the tracked landmark")
		}
	}

	// Landmark disappears: for MaxLostFrames frames the prediction fills in.
	for i := 0; i < cfg.MaxLostFrames; i++ {
		empty := landmark.NewFrame(time.Now(), 640, 480)
		out := b.Smooth(empty, ids)
		lm, ok := out.Get(id)
		if !ok {
			t.Fatalf("frame %d after loss should still carry a predicted point", i+1)
		}
		if lm.Confidence >= 0.9 {
			t.Errorf("predicted point should carry reduced confidence, got %f", lm.Confidence)
		}
	}

	// Past the budget the landmark drops out entirely.
	empty := landmark.NewFrame(time.Now(), 640, 480)
	out := b.Smooth(empty, ids)
	if _, ok := out.Get(id); ok {
		t.Error("landmark should be absent once tracking is lost")
	}
}

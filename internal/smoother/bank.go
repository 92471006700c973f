package smoother

import "github.com/ayusman/mudra/internal/landmark"

// Bank owns one PointFilter per landmark ID. Filters are created lazily on
// the first measurement for an ID, so a bank only ever carries filters for
// the landmarks its detector actually uses.
type Bank struct {
	cfg     Config
	filters map[landmark.ID]*PointFilter
}

// NewBank creates an empty filter bank with the given configuration.
func NewBank(cfg Config) *Bank {
	return &Bank{
		cfg:     cfg,
		filters: make(map[landmark.ID]*PointFilter),
	}
}

// Update feeds a measurement for one landmark through its filter and
// returns the smoothed position.
func (b *Bank) Update(id landmark.ID, m landmark.Point, confidence float64) landmark.Point {
	f, ok := b.filters[id]
	if !ok {
		f = newPointFilter(b.cfg)
		b.filters[id] = f
	}
	return f.Update(m, confidence)
}

// PredictOnly advances the filter for an absent landmark without a
// correction step. Returns ok=false if the landmark was never tracked or
// has been lost for more than MaxLostFrames consecutive frames.
func (b *Bank) PredictOnly(id landmark.ID) (landmark.Point, bool) {
	f, ok := b.filters[id]
	if !ok {
		return landmark.Point{}, false
	}
	return f.PredictOnly()
}

// Velocity returns the current velocity estimate for a tracked landmark in
// normalized units per second. Returns ok=false if the landmark has no
// initialized filter.
func (b *Bank) Velocity(id landmark.ID) (landmark.Point, bool) {
	f, ok := b.filters[id]
	if !ok || !f.Initialized() {
		return landmark.Point{}, false
	}
	return f.Velocity(), true
}

// Tracking reports whether the given landmark currently has an initialized
// filter (i.e. at least one measurement and not lost past the limit).
func (b *Bank) Tracking(id landmark.ID) bool {
	f, ok := b.filters[id]
	return ok && f.Initialized()
}

// Reset discards the filter state for one landmark.
func (b *Bank) Reset(id landmark.ID) {
	if f, ok := b.filters[id]; ok {
		f.Reset()
	}
}

// ResetAll discards every filter's state.
func (b *Bank) ResetAll() {
	for _, f := range b.filters {
		f.Reset()
	}
}

// Smooth runs every landmark of interest through the bank: present
// landmarks are updated with their measurement, absent ones fall back to
// prediction. The result is a new frame containing the smoothed positions;
// landmarks that could not be predicted are simply absent from it.
// Predicted points carry a confidence decayed from the filter's last
// measurement so downstream consumers can weigh them accordingly.
func (b *Bank) Smooth(frame *landmark.Frame, ids []landmark.ID) *landmark.Frame {
	out := landmark.NewFrame(frame.Timestamp, frame.Width, frame.Height)
	for _, id := range ids {
		if lm, ok := frame.Get(id); ok {
			pos := b.Update(id, lm.Position, lm.Confidence)
			out.Put(id, pos, lm.Confidence)
			continue
		}
		if pos, ok := b.PredictOnly(id); ok {
			out.Put(id, pos, predictedConfidence)
		}
	}
	return out
}

// predictedConfidence is the confidence assigned to positions produced by
// prediction alone, with no supporting measurement this frame.
const predictedConfidence = 0.5

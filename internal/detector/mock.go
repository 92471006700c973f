package detector

import (
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/landmark"
)

// MockDetector is a test implementation of the Detector interface. It plays
// back a scripted sequence of frames, which lets pipeline tests drive the
// detectors through an exact gesture without a camera or a subprocess.
type MockDetector struct {
	mu     sync.Mutex
	queue  []*landmark.Frame
	last   *landmark.Frame
	err    error
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// Enqueue appends frames to the playback script. Each Detect call consumes
// one frame; once the script is exhausted the last frame repeats.
func (m *MockDetector) Enqueue(frames ...*landmark.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next scripted frame, restamped with the given time.
func (m *MockDetector) Detect(img *gocv.Mat, ts time.Time) (*landmark.Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	if len(m.queue) > 0 {
		m.last = m.queue[0]
		m.queue = m.queue[1:]
	}
	if m.last == nil {
		return landmark.NewFrame(ts, 640, 480), nil
	}

	f := landmark.NewFrame(ts, m.last.Width, m.last.Height)
	for id, lm := range m.last.Points {
		f.Put(id, lm.Position, lm.Confidence)
	}
	return f, nil
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

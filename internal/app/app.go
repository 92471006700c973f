// Package app wires the capture, detection, and gesture stages into the
// long-running pipeline and owns the session lifecycle.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	CameraID     int
	MotionThresh float64
	// HoldFrames is how long the activity gate stays open after the scene
	// goes still. Zero selects capture.DefaultHoldFrames.
	HoldFrames int
	// HookDir is scanned for event hooks; empty disables hooks.
	HookDir string
	// Sensitivity scales every calibrated threshold; zero means neutral.
	Sensitivity float64
}

// HookTimeout bounds each hook execution so a stuck hook cannot pile up
// processes behind the event stream.
const HookTimeout = 5 * time.Second

// App orchestrates the detection pipeline: camera frames pass the activity
// gate, landmarks come back from the detector, and each gesture façade turns
// them into events. Events fan out to the store and to live subscribers.
type App struct {
	config    Config
	camera    capture.Camera
	gate      *capture.ActivityGate
	detector  detector.Detector
	detectors []gesture.Detector
	hooks     *hook.Manager
	runner    *hook.Runner

	mu      sync.RWMutex
	enabled bool
	stopCh  chan struct{}
	done    chan struct{}
	subs    map[chan event.Event]struct{}
	session *store.Session
	frames  int64
}

// newDetectors builds the three gesture façades, applying the configured
// sensitivity to each calibration profile.
func newDetectors(sensitivity float64) []gesture.Detector {
	gun := gesture.DefaultFingerGunConfig()
	blink := gesture.DefaultBlinkConfig()
	clap := gesture.DefaultClapConfig()
	if sensitivity > 0 {
		gun.Calibration.Sensitivity = sensitivity
		blink.Calibration.Sensitivity = sensitivity
	}
	return []gesture.Detector{
		gesture.NewFingerGunDetector(gun),
		gesture.NewBlinkDetector(blink),
		gesture.NewClapDetector(clap),
	}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	a := &App{
		config:    config,
		camera:    capture.NewCamera(config.CameraID),
		gate:      capture.NewActivityGate(motionThreshold, config.HoldFrames),
		detectors: newDetectors(config.Sensitivity),
		enabled:   true,
		subs:      make(map[chan event.Event]struct{}),
	}

	if config.HookDir != "" {
		a.hooks = hook.NewManager(config.HookDir)
		a.runner = hook.NewRunner(HookTimeout)
		if err := a.hooks.Discover(); err != nil {
			log.Printf("Hook discovery failed: %v", err)
		} else if n := len(a.hooks.List()); n > 0 {
			log.Printf("Discovered %d event hooks", n)
		}
	}

	// Try MediaPipe first, fall back to the mock detector so the daemon
	// still comes up on machines without the sidecar installed.
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe landmark detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables gesture detection.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the landmark detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera sets the camera implementation to use.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Snapshots returns the introspection state of every gesture detector.
func (a *App) Snapshots() []gesture.Snapshot {
	snaps := make([]gesture.Snapshot, 0, len(a.detectors))
	for _, d := range a.detectors {
		snaps = append(snaps, d.Snapshot())
	}
	return snaps
}

// Recalibrate clears every detector's calibration profile; each one re-enters
// its warm-up window on the next frame.
func (a *App) Recalibrate() {
	for _, d := range a.detectors {
		d.Recalibrate()
	}
	log.Println("Recalibration requested")
}

// Subscribe registers a live event feed. The returned cancel func must be
// called when the subscriber goes away. Slow subscribers drop events rather
// than stall the pipeline.
func (a *App) Subscribe() (<-chan event.Event, func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ch := make(chan event.Event, 16)
	a.subs[ch] = struct{}{}

	cancel := func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if _, ok := a.subs[ch]; ok {
			delete(a.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// publish fans one event out to all current subscribers.
func (a *App) publish(ev event.Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for ch := range a.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Start opens the camera, begins a session, and launches the pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	if a.config.Store != nil {
		sess, err := a.config.Store.Sessions().Begin()
		if err != nil {
			a.camera.Close()
			return err
		}
		a.session = sess
	}
	a.frames = 0

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the detection pipeline, closes the session, and releases
// resources.
func (a *App) Stop() {
	a.mu.Lock()
	if a.stopCh == nil {
		a.mu.Unlock()
		return
	}
	close(a.stopCh)
	a.stopCh = nil
	done := a.done
	a.mu.Unlock()

	<-done

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.config.Store != nil && a.session != nil {
		if err := a.config.Store.Sessions().End(a.session.ID, a.frames); err != nil {
			log.Printf("Error ending session: %v", err)
		}
		a.session = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.gate.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the landmark detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// Session returns the current session, or nil when the pipeline is stopped
// or no store is configured.
func (a *App) Session() *store.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

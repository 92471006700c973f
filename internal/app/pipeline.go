package app

import (
	"log"
	"time"

	"github.com/ayusman/mudra/internal/event"
	"github.com/ayusman/mudra/internal/hook"
	"github.com/ayusman/mudra/internal/store"
)

// runPipeline is the main detection loop.
//
// Per frame:
//  1. Read a mirrored frame from the camera.
//  2. Ask the activity gate whether the scene is worth detecting on. A
//     still scene past the hold window skips the expensive landmark stage
//     entirely.
//  3. Run landmark detection.
//  4. Feed the frame to every gesture façade and collect emitted events.
//  5. Persist events to the session log and fan them out to subscribers.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := time.Second / time.Duration(a.Camera().FPS())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			if !a.gate.Active(frame) {
				frame.Close()
				continue
			}

			landmarks, err := a.Detector().Detect(frame, time.Now())
			frame.Close()
			if err != nil {
				log.Printf("Error detecting landmarks: %v", err)
				continue
			}

			a.mu.Lock()
			a.frames++
			a.mu.Unlock()

			for _, d := range a.detectors {
				res := d.Process(landmarks)
				for _, ev := range res.Events {
					a.emit(ev)
				}
			}
		}
	}
}

// emit records one event in the session log and broadcasts it live. Aim
// streams at frame rate while the pose holds, so it goes to live
// subscribers only; the session log and hooks see the discrete gestures.
func (a *App) emit(ev event.Event) {
	if ev.Type == event.Aim {
		a.publish(ev)
		return
	}

	a.mu.RLock()
	st := a.config.Store
	sess := a.session
	a.mu.RUnlock()

	if st != nil && sess != nil {
		row := &store.Event{
			SessionID:  sess.ID,
			Type:       string(ev.Type),
			Confidence: ev.Confidence,
			CreatedAt:  ev.Timestamp.UTC(),
		}
		if ev.Position != nil {
			x, y := ev.Position.X, ev.Position.Y
			row.X, row.Y = &x, &y
		}
		if err := st.Events().Insert(row); err != nil {
			log.Printf("Error recording %s event: %v", ev.Type, err)
		}
	}

	a.publish(ev)

	if a.hooks != nil {
		for _, h := range a.hooks.For(string(ev.Type)) {
			go func(h *hook.Hook) {
				if _, err := a.runner.Run(h, ev); err != nil {
					log.Printf("Hook %s failed: %v", h.Manifest.Name, err)
				}
			}(h)
		}
	}
}

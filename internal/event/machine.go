package event

import (
	"time"

	"github.com/ayusman/mudra/internal/landmark"
)

// State is the machine's logical detection state.
type State int

const (
	// Disengaged is the initial state: the gesture is not being held.
	Disengaged State = iota
	// Engaged means the gesture fired and has not yet released.
	Engaged
)

// String returns the state's display name.
func (s State) String() string {
	if s == Engaged {
		return "engaged"
	}
	return "disengaged"
}

// MachineConfig configures one hysteresis machine.
type MachineConfig struct {
	// Type tags the events this machine emits.
	Type Type

	// Cooldown is the minimum interval between emitted events.
	Cooldown time.Duration

	// RequireReset, when true, keeps the machine engaged until the reset
	// predicate reports true; loss of match alone does not re-arm it.
	// This is what stops recoil jitter from instantly re-arming a
	// trigger. When false, the machine disengages as soon as the
	// classifier stops matching.
	RequireReset bool

	// Continuous, when true, keeps emitting while the machine stays
	// engaged and matching: one event per frame, still spaced by the
	// cooldown. Used for the aim stream, where the consumer wants the
	// position every frame the pose holds. Ignored when RequireReset is
	// set.
	Continuous bool
}

// Input is one frame's worth of classifier output fed to the machine.
type Input struct {
	// Now is the frame timestamp; the machine never reads the wall
	// clock itself.
	Now time.Time

	// Match is the (temporally voted) classifier verdict for the frame.
	Match bool

	// Reset reports the gesture-specific re-arm predicate, consulted
	// only when the machine was configured with RequireReset.
	Reset bool

	// Confidence and Position are carried into any emitted event.
	Confidence float64
	Position   *landmark.Point2D
}

// Machine is a generic two-state hysteresis machine with cooldown. It
// emits one event per DISENGAGED→ENGAGED edge; repeated positive
// classifications while engaged are debounced, unless the machine is
// Continuous, in which case every engaged matching frame past the
// cooldown emits. Transitions are computed from the previous frame's
// state and the current frame's input only.
type Machine struct {
	cfg       MachineConfig
	state     State
	lastEvent time.Time
	haveEvent bool
}

// NewMachine creates a machine in the Disengaged state.
func NewMachine(cfg MachineConfig) *Machine {
	return &Machine{cfg: cfg}
}

// Step advances the machine one frame. It returns a non-nil event on a
// qualifying engage edge, or on an engaged matching frame for a Continuous
// machine.
func (m *Machine) Step(in Input) *Event {
	switch m.state {
	case Disengaged:
		if !in.Match {
			return nil
		}
		// A match during cooldown neither engages nor emits; the
		// machine waits in Disengaged until the window reopens, so a
		// held gesture fires as soon as it legally can.
		if m.haveEvent && in.Now.Sub(m.lastEvent) <= m.cfg.Cooldown {
			return nil
		}
		m.state = Engaged
		m.lastEvent = in.Now
		m.haveEvent = true
		return &Event{
			Type:       m.cfg.Type,
			Position:   in.Position,
			Confidence: in.Confidence,
			Timestamp:  in.Now,
		}

	case Engaged:
		if m.cfg.RequireReset {
			if in.Reset {
				m.state = Disengaged
			}
			return nil
		}
		if !in.Match {
			m.state = Disengaged
			return nil
		}
		if m.cfg.Continuous && in.Now.Sub(m.lastEvent) > m.cfg.Cooldown {
			m.lastEvent = in.Now
			return &Event{
				Type:       m.cfg.Type,
				Position:   in.Position,
				Confidence: in.Confidence,
				Timestamp:  in.Now,
			}
		}
	}
	return nil
}

// State returns the machine's current logical state.
func (m *Machine) State() State {
	return m.state
}

// LastEventTime returns the timestamp of the most recent emitted event and
// whether one has been emitted at all.
func (m *Machine) LastEventTime() (time.Time, bool) {
	return m.lastEvent, m.haveEvent
}

// Reset returns the machine to Disengaged without clearing the cooldown
// clock, so a reset cannot be used to fire faster than the cooldown
// allows.
func (m *Machine) Reset() {
	m.state = Disengaged
}

// Package supervisor defines the capability interface the transition core
// calls into for behavior owned by the surrounding VTOL base class and
// outer supervisor (spec §1, §9's design note: "implement as a capability
// interface held by the core... never a bidirectional pointer graph").
package supervisor

// QuadchuteReason identifies why the outer safety supervisor was asked to
// abort to hover.
type QuadchuteReason int

const (
	// TransitionTimeout is fired when a front transition exceeds
	// VT_TRANS_TIMEOUT (spec §4.2).
	TransitionTimeout QuadchuteReason = iota
)

func (r QuadchuteReason) String() string {
	switch r {
	case TransitionTimeout:
		return "TransitionTimeout"
	default:
		return "UnknownQuadchuteReason"
	}
}

// Supervisor is the set of capabilities this core borrows from the
// surrounding VTOL base class and outer flight-mode supervisor. None of
// these are specified by spec §1-§9 beyond their contract; a caller
// supplies whatever implementation fits their vehicle.
type Supervisor interface {
	// CanTransitionOnGround reports whether the vehicle's ground contact
	// state alone should complete/abort a transition (spec §4.1).
	CanTransitionOnGround() bool

	// MinimumFrontTransitionTime returns getMinimumFrontTransitionTime()
	// (spec §4.1, §4.2): the minimum time a front transition must run
	// before airspeed or time-only completion criteria are evaluated.
	MinimumFrontTransitionTime() float64

	// PusherAssist returns the tilt-based pusher throttle bias applied
	// while hovering into wind (spec §4.4).
	PusherAssist() float64

	// BackTransitionPitchSetpoint returns
	// update_and_get_backtransition_pitch_sp(): the deceleration-shaping
	// pitch setpoint applied during TRANSITION_TO_MC (spec §4.2).
	BackTransitionPitchSetpoint() float64

	// UpdateGenericTransitionState runs the base class's slew-rate-limited
	// generic transition update, shared across VTOL types (spec §4.2,
	// first line of the Transition Controller).
	UpdateGenericTransitionState(dt float64)

	// Quadchute fires a one-shot advisory to the external safety
	// supervisor to abort to hover (spec §4.2, §7). Idempotent: firing it
	// repeatedly across ticks while a condition persists is expected.
	Quadchute(reason QuadchuteReason)

	// UpdateMCState / UpdateFWState delegate to the base class's
	// steady-state MC/FW update (spec §4.4).
	UpdateMCState()
	UpdateFWState()

	// SlewFlaps / SlewSpoilers drive the flap/spoiler setpoints toward
	// target over dt through the base class's slew-rate limiters (spec
	// §4.2's "auxiliary surfaces") and return the resulting state.
	SlewFlaps(target, dt float64) float64
	SlewSpoilers(target, dt float64) float64
}

// Package vtoltypes holds the pure control-domain data model the state
// machine and mixing pipeline operate on: the tick-scoped input snapshot,
// the cross-tick owned state (schedule, weights, pusher state), and the
// tick-scoped output bundle. Everything here is a plain value type with no
// I/O, matching spec §3's "borrowed for the duration of a tick" ownership
// model - the pubsub.Bus and cmd/vtolfc-sim are what translate to and from
// this model at the edges.
package vtoltypes

import (
	"time"

	"github.com/skywingfc/vtol-transition/internal/attitude"
	"github.com/skywingfc/vtol-transition/internal/vtolmode"
)

// ScheduleState is the schedule owned exclusively by the core across
// ticks (spec §3).
type ScheduleState struct {
	FlightMode      vtolmode.Mode
	TransitionStart time.Time
}

// Weights holds the four MC blend weight fields. Spec §3's invariant is
// that all four always hold the same scalar value; they are kept
// separate for forward compatibility with axis-specific blending.
type Weights struct {
	McRoll, McPitch, McYaw, McThrottle float64
}

// SetAll assigns v to all four axis weights.
func (w *Weights) SetAll(v float64) {
	w.McRoll, w.McPitch, w.McYaw, w.McThrottle = v, v, v, v
}

// Value returns the single mc_weight value (they are always equal).
func (w Weights) Value() float64 { return w.McRoll }

// DefaultWeights returns the initial weight value of 1.0 (spec §3).
func DefaultWeights() Weights {
	var w Weights
	w.SetAll(1.0)
	return w
}

// PusherState holds the pusher throttle and reverse-output scalars, both
// owned by the core across ticks.
type PusherState struct {
	PusherThrottle float64
	ReverseOutput  float64
}

// AttitudeSetpoint is the body-frame attitude setpoint record, owned
// externally but mutated by the transition controller during transitions
// (spec §3).
type AttitudeSetpoint struct {
	Timestamp                    time.Time
	RollBody, PitchBody, YawBody float64
	QD                           attitude.Quaternion
	ThrustBody                   [3]float64
}

// ActuatorControls is a single control group's roll/pitch/yaw/throttle
// plus the auxiliary channels the mixer consumes/produces.
type ActuatorControls struct {
	Roll, Pitch, Yaw, Throttle float64
	Flaps, Spoilers, Airbrakes float64
	LandingGear                float64
}

// TimestampedControls pairs a control vector with the sample time of the
// topic it came from, used for _mc_in/_fw_in and propagated onto the
// published torque/thrust setpoints.
type TimestampedControls struct {
	TimestampSample time.Time
	Controls        ActuatorControls
}

// Inputs is the read-only snapshot borrowed for one tick (spec §3).
type Inputs struct {
	Now time.Time

	VehicleAttitude attitude.Quaternion

	VXYValid   bool
	VX, VY, VZ float64

	// CalibratedAirspeedMS may be NaN when no valid airspeed measurement
	// is available.
	CalibratedAirspeedMS float64

	FlagControlClimbRateEnabled bool

	MCVirtualAttSp AttitudeSetpoint
	FWVirtualAttSp AttitudeSetpoint

	ActuatorsMCIn TimestampedControls
	ActuatorsFWIn TimestampedControls

	IsFixedWingRequested   bool
	VtolTransitionFailsafe bool
}

// TorqueSetpoint mirrors vehicle_torque_setpoint[0..1].
type TorqueSetpoint struct {
	Timestamp       time.Time
	TimestampSample time.Time
	XYZ             [3]float64
}

// ThrustSetpoint mirrors vehicle_thrust_setpoint[0..1].
type ThrustSetpoint struct {
	Timestamp       time.Time
	TimestampSample time.Time
	XYZ             [3]float64
}

// ActuatorOutput mirrors actuator_controls_0 / actuator_controls_1.
type ActuatorOutput struct {
	Timestamp       time.Time
	TimestampSample time.Time
	Controls        ActuatorControls
}

// Outputs is the tick-scoped bundle the mixer produces plus the mutated
// attitude setpoint and the projected public mode.
type Outputs struct {
	PublicMode vtolmode.PublicMode

	AttitudeSetpoint AttitudeSetpoint

	ActuatorOut [2]ActuatorOutput
	TorqueSp    [2]TorqueSetpoint
	ThrustSp    [2]ThrustSetpoint

	// FailsafeCleared reports whether the scheduler cleared
	// vtol_transition_failsafe this tick (spec §4.1); the caller owns
	// writing that back onto whatever topic/flag it borrowed it from.
	FailsafeCleared bool
}

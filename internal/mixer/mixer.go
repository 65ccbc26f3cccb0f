// Package mixer implements the Actuator Mixer (spec §4.3): a pure
// function of flight mode, the two control-group inputs, current
// weights, pusher/reverse outputs, and slew state that produces the two
// actuator-group outputs and the four torque/thrust setpoint records.
package mixer

import (
	"time"

	"github.com/skywingfc/vtol-transition/internal/params"
	"github.com/skywingfc/vtol-transition/internal/vtolmode"
	"github.com/skywingfc/vtol-transition/internal/vtoltypes"
)

// Mixer holds the parameter facade it needs (VT_ELEV_MC_LOCK).
type Mixer struct {
	Params *params.Params
}

// New builds a Mixer.
func New(p *params.Params) *Mixer {
	return &Mixer{Params: p}
}

// Mix runs the routing table of spec §4.3 for one tick. now is the
// publication timestamp stamped on every output record; flapState and
// spoilState are the current slew-limited surface positions computed by
// the transition controller (or held steady outside a transition).
func (m *Mixer) Mix(now time.Time, mode vtolmode.Mode, in vtoltypes.Inputs, weights vtoltypes.Weights, pusherThrottle, reverseOutput, flapState, spoilState float64) vtoltypes.Outputs {
	mcIn := in.ActuatorsMCIn.Controls
	fwIn := in.ActuatorsFWIn.Controls

	var mcOut, fwOut vtoltypes.ActuatorControls
	var mcGearDown bool

	switch mode {
	case vtolmode.MCMode:
		mcOut = mcIn
		mcGearDown = true
		if m.Params.VTElevMcLock() {
			fwOut.Roll, fwOut.Pitch = 0, 0
		} else {
			fwOut.Roll, fwOut.Pitch = fwIn.Roll, fwIn.Pitch
		}
		fwOut.Yaw = 0
		fwOut.Throttle = pusherThrottle
		fwOut.Airbrakes = 0

	case vtolmode.TransitionToFW, vtolmode.TransitionToMC:
		mcOut.Roll = mcIn.Roll * weights.McRoll
		mcOut.Pitch = mcIn.Pitch * weights.McPitch
		mcOut.Yaw = mcIn.Yaw * weights.McYaw
		mcOut.Throttle = mcIn.Throttle * weights.McThrottle
		mcGearDown = false
		fwOut.Roll, fwOut.Pitch = fwIn.Roll, fwIn.Pitch
		fwOut.Yaw = fwIn.Yaw
		fwOut.Throttle = pusherThrottle
		fwOut.Airbrakes = reverseOutput

	case vtolmode.FWMode:
		mcOut = vtoltypes.ActuatorControls{}
		mcGearDown = false
		fwOut.Roll, fwOut.Pitch = fwIn.Roll, fwIn.Pitch
		fwOut.Yaw = fwIn.Yaw
		fwOut.Throttle = fwIn.Throttle
		fwOut.Airbrakes = 0
	}

	// LandingGear follows PX4's actuator convention: -1 retracted (UP), 1
	// extended (DOWN).
	if mcGearDown {
		mcOut.LandingGear = 1
	} else {
		mcOut.LandingGear = -1
	}

	mcOut.Flaps, mcOut.Spoilers = flapState, spoilState
	fwOut.Flaps, fwOut.Spoilers = flapState, spoilState

	var out vtoltypes.Outputs
	out.ActuatorOut[0] = vtoltypes.ActuatorOutput{Timestamp: now, TimestampSample: in.ActuatorsMCIn.TimestampSample, Controls: mcOut}
	out.ActuatorOut[1] = vtoltypes.ActuatorOutput{Timestamp: now, TimestampSample: in.ActuatorsFWIn.TimestampSample, Controls: fwOut}

	out.TorqueSp[0] = vtoltypes.TorqueSetpoint{
		Timestamp:       now,
		TimestampSample: in.ActuatorsMCIn.TimestampSample,
		XYZ:             [3]float64{mcOut.Roll, mcOut.Pitch, mcOut.Yaw},
	}
	out.TorqueSp[1] = vtoltypes.TorqueSetpoint{
		Timestamp:       now,
		TimestampSample: in.ActuatorsFWIn.TimestampSample,
		XYZ:             [3]float64{fwOut.Roll, fwOut.Pitch, fwOut.Yaw},
	}

	out.ThrustSp[0] = vtoltypes.ThrustSetpoint{
		Timestamp:       now,
		TimestampSample: in.ActuatorsMCIn.TimestampSample,
		XYZ:             [3]float64{fwOut.Throttle, 0, -mcOut.Throttle},
	}
	out.ThrustSp[1] = vtoltypes.ThrustSetpoint{
		Timestamp:       now,
		TimestampSample: in.ActuatorsFWIn.TimestampSample,
	}

	return out
}

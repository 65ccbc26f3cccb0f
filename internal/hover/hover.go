// Package hover implements the Hover/Cruise Pass-through (spec §4.4):
// the steady-state (non-transitioning) update for MC_MODE and FW_MODE,
// plus the two outer-stage hooks a caller may invoke around a tick.
package hover

import (
	"github.com/skywingfc/vtol-transition/internal/supervisor"
	"github.com/skywingfc/vtol-transition/internal/vtoltypes"
)

// PassThrough runs the steady-state MC/FW update.
type PassThrough struct {
	Sup supervisor.Supervisor
}

// New builds a PassThrough.
func New(sup supervisor.Supervisor) *PassThrough {
	return &PassThrough{Sup: sup}
}

// UpdateMCState delegates to the base class then derives pusher_throttle
// from pusher_assist(), the tilt-based bias that holds position while
// hovering into wind.
func (h *PassThrough) UpdateMCState(pusher vtoltypes.PusherState) vtoltypes.PusherState {
	h.Sup.UpdateMCState()
	pusher.PusherThrottle = h.Sup.PusherAssist()
	return pusher
}

// UpdateFWState delegates to the base class; there is no local state to
// change in cruise flight.
func (h *PassThrough) UpdateFWState() {
	h.Sup.UpdateFWState()
}

// WaitingOnTECS preserves pusher_throttle into thrust_body[0] while the
// cruise speed/altitude controller has not yet taken authority.
func (h *PassThrough) WaitingOnTECS(attSp vtoltypes.AttitudeSetpoint, pusher vtoltypes.PusherState) vtoltypes.AttitudeSetpoint {
	attSp.ThrustBody[0] = pusher.PusherThrottle
	return attSp
}

// BlendThrottleAfterFrontTransition provides the post-completion handover
// between pusher_throttle and the TECS-commanded throttle: scale=1 is
// fully TECS, scale=0 is fully pusher_throttle.
func (h *PassThrough) BlendThrottleAfterFrontTransition(attSp vtoltypes.AttitudeSetpoint, pusher vtoltypes.PusherState, tecsThrottle, scale float64) vtoltypes.AttitudeSetpoint {
	attSp.ThrustBody[0] = scale*tecsThrottle + (1-scale)*pusher.PusherThrottle
	return attSp
}

// Package transition implements the Transition Controller (spec §4.2):
// active only in the two transition modes, it computes the MC<->FW weight
// schedule, the pusher throttle ramp, the commanded attitude setpoint, and
// fires the transition-timeout failsafe.
package transition

import (
	"math"
	"time"

	"github.com/skywingfc/vtol-transition/internal/attitude"
	"github.com/skywingfc/vtol-transition/internal/params"
	"github.com/skywingfc/vtol-transition/internal/supervisor"
	"github.com/skywingfc/vtol-transition/internal/vtolmode"
	"github.com/skywingfc/vtol-transition/internal/vtoltypes"
)

// Controller runs the transition state update once per tick while the
// schedule is in TRANSITION_TO_FW or TRANSITION_TO_MC.
type Controller struct {
	Params *params.Params
	Sup    supervisor.Supervisor
}

// New builds a Controller.
func New(p *params.Params, sup supervisor.Supervisor) *Controller {
	return &Controller{Params: p, Sup: sup}
}

// Result carries the updated owned state after a transition tick.
type Result struct {
	Weights          vtoltypes.Weights
	Pusher           vtoltypes.PusherState
	AttitudeSetpoint vtoltypes.AttitudeSetpoint
	FlapState        float64
	SpoilState       float64
}

// Tick runs the transition update for the current flight mode. Callers
// only invoke this while mode is TransitionToFW or TransitionToMC; for
// any other mode no pusher, timeout or surface update runs, but the
// generic transition update and the attitude setpoint synthesis still
// apply and all four weights are set to 1.
func (c *Controller) Tick(now time.Time, dt float64, mode vtolmode.Mode, transitionStart time.Time, weights vtoltypes.Weights, pusher vtoltypes.PusherState, attSp vtoltypes.AttitudeSetpoint, flapState, spoilState float64, in vtoltypes.Inputs) Result {
	// First line of spec §4.2: delegate to the base class's generic
	// transition update (slew-rate-limited surfaces shared across VTOL
	// types).
	c.Sup.UpdateGenericTransitionState(dt)

	mcWeight := 1.0
	timeSinceTransStart := now.Sub(transitionStart).Seconds()

	var fresh bool
	attSp, fresh = c.synthesizeAttitudeSetpoint(now, attSp, in)

	switch mode {
	case vtolmode.TransitionToFW:
		pusher = c.updateFrontTransition(timeSinceTransStart, pusher, in)
		mcWeight = c.frontTransitionWeight(timeSinceTransStart, in)

		// Weight and pusher schedules keep updating during the stale
		// window, but the setpoint itself is left untouched (spec §8
		// scenario 6) - rewriting pitch_body/q_d off a setpoint that
		// wasn't actually refreshed this tick would fight the caller's
		// own held-over values.
		if fresh {
			attSp.PitchBody = radians(c.Params.FWPspOff()) * (1 - mcWeight)
			attSp.QD = attitude.EulerToQuaternion(attitude.Euler{Roll: attSp.RollBody, Pitch: attSp.PitchBody, Yaw: attSp.YawBody})
		}

		if c.Params.VTTransTimeout() > epsilon && timeSinceTransStart > c.Params.VTTransTimeout() {
			c.Sup.Quadchute(supervisor.TransitionTimeout)
		}

		flapState = c.Sup.SlewFlaps(0, dt)
		spoilState = c.Sup.SlewSpoilers(0, dt)

	case vtolmode.TransitionToMC:
		if fresh {
			if in.FlagControlClimbRateEnabled {
				attSp.PitchBody = c.Sup.BackTransitionPitchSetpoint()
			}
			attSp.QD = attitude.EulerToQuaternion(attitude.Euler{Roll: attSp.RollBody, Pitch: attSp.PitchBody, Yaw: attSp.YawBody})
		}

		pusher.PusherThrottle = 0
		if timeSinceTransStart >= c.Params.VTBRevDel() {
			thrscale := (timeSinceTransStart - c.Params.VTBRevDel()) / c.Params.VTPsherRmpDt()
			thrscale = clamp(thrscale, 0, 1)
			pusher.PusherThrottle = thrscale * c.Params.VTBTransThr()
		}

		if c.Params.VTBTransRamp() > epsilon {
			mcWeight = timeSinceTransStart / c.Params.VTBTransRamp()
		}
	}

	mcWeight = clamp(mcWeight, 0, 1)
	weights.SetAll(mcWeight)

	return Result{Weights: weights, Pusher: pusher, AttitudeSetpoint: attSp, FlapState: flapState, SpoilState: spoilState}
}

// synthesizeAttitudeSetpoint implements spec §4.2's attitude setpoint
// synthesis, including the 1s freshness gate that leaves the previous
// setpoint active on stale input. The second return reports whether the
// setpoint was actually refreshed this tick; callers must not rewrite
// pitch_body/q_d on top of a held-over setpoint (spec §8 scenario 6).
func (c *Controller) synthesizeAttitudeSetpoint(now time.Time, attSp vtoltypes.AttitudeSetpoint, in vtoltypes.Inputs) (vtoltypes.AttitudeSetpoint, bool) {
	staleBefore := now.Add(-time.Second)

	if in.FlagControlClimbRateEnabled {
		if in.MCVirtualAttSp.Timestamp.Before(staleBefore) || in.FWVirtualAttSp.Timestamp.Before(staleBefore) {
			return attSp, false
		}
		next := in.MCVirtualAttSp
		next.RollBody = in.FWVirtualAttSp.RollBody
		return next, true
	}

	if in.FWVirtualAttSp.Timestamp.Before(staleBefore) {
		return attSp, false
	}
	next := in.FWVirtualAttSp
	next.ThrustBody[2] = -in.FWVirtualAttSp.ThrustBody[0]
	return next, true
}

// updateFrontTransition implements the pusher throttle ramp of spec §4.2:
// while VT_PSHER_RMP_DT<=0 it snaps to target; otherwise it ramps up and,
// once past target, freezes (Open Question (a): preserved verbatim).
func (c *Controller) updateFrontTransition(timeSinceTransStart float64, pusher vtoltypes.PusherState, in vtoltypes.Inputs) vtoltypes.PusherState {
	target := c.Params.VTFTransThr()
	rampDt := c.Params.VTPsherRmpDt()

	if rampDt <= 0 {
		pusher.PusherThrottle = target
	} else if pusher.PusherThrottle <= target {
		pusher.PusherThrottle = target * timeSinceTransStart / rampDt
	}

	return pusher
}

// frontTransitionWeight implements the MC weight schedule of spec §4.2,
// including the absolute-value blend formula of Open Question (b),
// preserved verbatim.
func (c *Controller) frontTransitionWeight(timeSinceTransStart float64, in vtoltypes.Inputs) float64 {
	blendMargin := c.Params.VTArspTrans() - c.Params.VTArspBlend()
	minTimeElapsed := timeSinceTransStart > c.Sup.MinimumFrontTransitionTime()

	airspeed := in.CalibratedAirspeedMS
	airspeedValid := !math.IsNaN(airspeed)

	if blendMargin > 0 && airspeedValid && airspeed >= c.Params.VTArspBlend() && minTimeElapsed {
		return 1 - math.Abs(airspeed-c.Params.VTArspBlend())/blendMargin
	}

	if c.Params.FWArspMode() || !airspeedValid {
		minFrontTime := c.Sup.MinimumFrontTransitionTime()
		if minFrontTime <= 0 {
			return 0
		}
		w := 1 - timeSinceTransStart/minFrontTime
		return clamp(2*w, 0, 1)
	}

	return 1
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

const epsilon = 1e-6

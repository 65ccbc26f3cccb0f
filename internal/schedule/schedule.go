// Package schedule implements the Mode Scheduler (spec §4.1): the flight
// mode state machine and its entry/exit conditions between MC,
// TRANSITION_TO_FW, FW, and TRANSITION_TO_MC. It is the sole writer of
// the schedule.
package schedule

import (
	"math"
	"time"

	"github.com/skywingfc/vtol-transition/internal/attitude"
	"github.com/skywingfc/vtol-transition/internal/params"
	"github.com/skywingfc/vtol-transition/internal/supervisor"
	"github.com/skywingfc/vtol-transition/internal/vtolmode"
	"github.com/skywingfc/vtol-transition/internal/vtoltypes"
)

// Scheduler runs the mode state machine once per tick.
type Scheduler struct {
	Params *params.Params
	Sup    supervisor.Supervisor
}

// New builds a Scheduler.
func New(p *params.Params, sup supervisor.Supervisor) *Scheduler {
	return &Scheduler{Params: p, Sup: sup}
}

// Result is the schedule state after one Tick, plus the resolved mc
// weight and pusher state overrides the scheduler applies this tick.
type Result struct {
	Schedule   vtoltypes.ScheduleState
	Weights    vtoltypes.Weights
	Pusher     vtoltypes.PusherState
	PublicMode vtolmode.PublicMode
	// FailsafeCleared reports whether the scheduler cleared
	// vtol_transition_failsafe this tick (spec §4.1 step 1) so the caller
	// can propagate it back onto the vtol_vehicle_status topic.
	FailsafeCleared bool
}

// Tick evaluates the §4.1 decision tree in order: failsafe override, then
// FW-not-requested, then FW-requested. sched/weights/pusher are the
// state this core owns across ticks (spec §3); in is the read-only input
// snapshot for this tick.
func (s *Scheduler) Tick(now time.Time, sched vtoltypes.ScheduleState, weights vtoltypes.Weights, pusher vtoltypes.PusherState, in vtoltypes.Inputs) Result {
	mcWeight := weights.Value()
	timeSinceTransStart := now.Sub(sched.TransitionStart).Seconds()

	failsafeCleared := false

	switch {
	case in.VtolTransitionFailsafe:
		// 1. Failsafe override.
		sched.FlightMode = vtolmode.MCMode
		pusher.PusherThrottle = 0
		pusher.ReverseOutput = 0
		if !in.IsFixedWingRequested {
			failsafeCleared = true
		}

	case !in.IsFixedWingRequested:
		// 2. FW not requested.
		switch sched.FlightMode {
		case vtolmode.MCMode:
			mcWeight = 1
			pusher.ReverseOutput = 0

		case vtolmode.FWMode:
			sched.FlightMode = vtolmode.TransitionToMC
			sched.TransitionStart = now
			pusher.ReverseOutput = s.Params.VTBRevOut()

		case vtolmode.TransitionToFW:
			sched.FlightMode = vtolmode.MCMode
			mcWeight = 1
			pusher.PusherThrottle = 0
			pusher.ReverseOutput = 0

		case vtolmode.TransitionToMC:
			if s.backTransitionExit(now, sched, timeSinceTransStart, in) {
				sched.FlightMode = vtolmode.MCMode
			}
		}

	default:
		// 3. FW requested.
		switch sched.FlightMode {
		case vtolmode.MCMode, vtolmode.TransitionToMC:
			// No failsafe-to-FW shortcut exists by design: flying at zero
			// airspeed is unsafe.
			sched.FlightMode = vtolmode.TransitionToFW
			sched.TransitionStart = now

		case vtolmode.FWMode:
			mcWeight = 0

		case vtolmode.TransitionToFW:
			if s.frontTransitionComplete(timeSinceTransStart, in) {
				sched.FlightMode = vtolmode.FWMode
				// pusher throttle is not set here; it is ramped in the
				// transition controller.
			}
		}
	}

	weights.SetAll(mcWeight)

	return Result{
		Schedule:        sched,
		Weights:         weights,
		Pusher:          pusher,
		PublicMode:      sched.FlightMode.Project(),
		FailsafeCleared: failsafeCleared,
	}
}

// backTransitionExit evaluates the TRANSITION_TO_MC -> MC_MODE exit
// disjunction of spec §4.1: ground OR speed OR time.
func (s *Scheduler) backTransitionExit(now time.Time, sched vtoltypes.ScheduleState, timeSinceTransStart float64, in vtoltypes.Inputs) bool {
	if s.Sup.CanTransitionOnGround() {
		return true
	}

	cruise := s.Params.MPCXyCruise()
	speedExit := false
	if in.VXYValid {
		bodyVel := in.VehicleAttitude.Inverse().RotateVector(attitude.Vector3{X: in.VX, Y: in.VY, Z: in.VZ})
		speedExit = bodyVel.X < cruise
	} else if !math.IsNaN(in.CalibratedAirspeedMS) {
		speedExit = in.CalibratedAirspeedMS < cruise
	}
	if speedExit {
		return true
	}

	return timeSinceTransStart > s.Params.VTBTransDur()
}

// frontTransitionComplete evaluates the TRANSITION_TO_FW -> FW_MODE
// completion condition of spec §4.1.
func (s *Scheduler) frontTransitionComplete(timeSinceTransStart float64, in vtoltypes.Inputs) bool {
	airspeedTriggers := !math.IsNaN(in.CalibratedAirspeedMS) && !s.Params.FWArspMode()
	minTimeElapsed := timeSinceTransStart > s.Sup.MinimumFrontTransitionTime()

	transitionToFW := false
	if minTimeElapsed {
		if airspeedTriggers {
			transitionToFW = in.CalibratedAirspeedMS >= s.Params.VTArspTrans()
		} else {
			transitionToFW = true
		}
	}

	return transitionToFW || s.Sup.CanTransitionOnGround()
}

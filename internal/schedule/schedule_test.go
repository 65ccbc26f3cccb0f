package schedule

import (
	"math"
	"testing"
	"time"

	"github.com/skywingfc/vtol-transition/internal/attitude"
	"github.com/skywingfc/vtol-transition/internal/params"
	"github.com/skywingfc/vtol-transition/internal/supervisor"
	"github.com/skywingfc/vtol-transition/internal/vtolmode"
	"github.com/skywingfc/vtol-transition/internal/vtoltypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduler(t *testing.T) (*Scheduler, *supervisor.NopSupervisor, *params.Params) {
	t.Helper()
	sup := &supervisor.NopSupervisor{}
	p := params.Default()
	return New(p, sup), sup, p
}

func TestColdStartInHoverStaysMCMode(t *testing.T) {
	s, _, _ := newScheduler(t)
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.MCMode}
	weights := vtoltypes.DefaultWeights()
	pusher := vtoltypes.PusherState{}
	now := time.Now()

	in := vtoltypes.Inputs{Now: now, IsFixedWingRequested: false, CalibratedAirspeedMS: math.NaN()}

	for i := 0; i < 10; i++ {
		now = now.Add(4 * time.Millisecond)
		in.Now = now
		res := s.Tick(now, sched, weights, pusher, in)
		sched, weights, pusher = res.Schedule, res.Weights, res.Pusher
	}

	assert.Equal(t, vtolmode.MCMode, sched.FlightMode)
	assert.Equal(t, 1.0, weights.Value())
	assert.Equal(t, 0.0, pusher.ReverseOutput)
}

func TestFailsafeForcesMCModeAndZeroesPusher(t *testing.T) {
	s, _, _ := newScheduler(t)
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.TransitionToFW, TransitionStart: time.Now()}
	weights := vtoltypes.DefaultWeights()
	pusher := vtoltypes.PusherState{PusherThrottle: 0.5, ReverseOutput: 0.2}

	in := vtoltypes.Inputs{
		Now:                    time.Now(),
		IsFixedWingRequested:   true,
		VtolTransitionFailsafe: true,
		CalibratedAirspeedMS:   math.NaN(),
	}

	res := s.Tick(in.Now, sched, weights, pusher, in)

	assert.Equal(t, vtolmode.MCMode, res.Schedule.FlightMode)
	assert.Equal(t, 0.0, res.Pusher.PusherThrottle)
	assert.Equal(t, 0.0, res.Pusher.ReverseOutput)
	assert.False(t, res.FailsafeCleared, "failsafe should not clear while FW is still requested")
}

func TestFailsafeClearsWhenPilotDropsFWRequest(t *testing.T) {
	s, _, _ := newScheduler(t)
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.MCMode}
	in := vtoltypes.Inputs{
		Now:                    time.Now(),
		IsFixedWingRequested:   false,
		VtolTransitionFailsafe: true,
		CalibratedAirspeedMS:   math.NaN(),
	}

	res := s.Tick(in.Now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)

	assert.Equal(t, vtolmode.MCMode, res.Schedule.FlightMode)
	assert.True(t, res.FailsafeCleared)
}

func TestMCModeToTransitionToFWOnRequest(t *testing.T) {
	s, _, _ := newScheduler(t)
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.MCMode}
	now := time.Now()
	in := vtoltypes.Inputs{Now: now, IsFixedWingRequested: true, CalibratedAirspeedMS: math.NaN()}

	res := s.Tick(now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)

	assert.Equal(t, vtolmode.TransitionToFW, res.Schedule.FlightMode)
	assert.Equal(t, now, res.Schedule.TransitionStart)
	assert.Equal(t, vtolmode.TransitionToFWPublic, res.PublicMode)
}

func TestTransitionToFWAbortsToMCWhenRequestDropped(t *testing.T) {
	s, _, _ := newScheduler(t)
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.TransitionToFW, TransitionStart: time.Now()}
	in := vtoltypes.Inputs{Now: time.Now(), IsFixedWingRequested: false, CalibratedAirspeedMS: math.NaN()}

	res := s.Tick(in.Now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{PusherThrottle: 0.5}, in)

	assert.Equal(t, vtolmode.MCMode, res.Schedule.FlightMode)
	assert.Equal(t, 1.0, res.Weights.Value())
	assert.Equal(t, 0.0, res.Pusher.PusherThrottle)
	assert.Equal(t, 0.0, res.Pusher.ReverseOutput)
}

func TestFWModeToTransitionToMCOnRequestDropped(t *testing.T) {
	s, _, p := newScheduler(t)
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.FWMode}
	now := time.Now()
	in := vtoltypes.Inputs{Now: now, IsFixedWingRequested: false, CalibratedAirspeedMS: math.NaN()}

	res := s.Tick(now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)

	assert.Equal(t, vtolmode.TransitionToMC, res.Schedule.FlightMode)
	assert.Equal(t, now, res.Schedule.TransitionStart)
	assert.Equal(t, p.VTBRevOut(), res.Pusher.ReverseOutput)
}

func TestFWModeStaysAndZeroesMCWeight(t *testing.T) {
	s, _, _ := newScheduler(t)
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.FWMode}
	in := vtoltypes.Inputs{Now: time.Now(), IsFixedWingRequested: true, CalibratedAirspeedMS: math.NaN()}

	res := s.Tick(in.Now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)

	assert.Equal(t, vtolmode.FWMode, res.Schedule.FlightMode)
	assert.Equal(t, 0.0, res.Weights.Value())
}

func TestBackTransitionExitsOnGroundContact(t *testing.T) {
	s, sup, _ := newScheduler(t)
	sup.OnGround = true
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.TransitionToMC, TransitionStart: time.Now()}
	in := vtoltypes.Inputs{Now: time.Now(), IsFixedWingRequested: false, CalibratedAirspeedMS: math.NaN()}

	res := s.Tick(in.Now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)

	assert.Equal(t, vtolmode.MCMode, res.Schedule.FlightMode)
}

func TestBackTransitionExitsOnBodyXSpeed(t *testing.T) {
	s, _, p := newScheduler(t)
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.TransitionToMC, TransitionStart: time.Now()}
	now := sched.TransitionStart

	in := vtoltypes.Inputs{
		Now:                   now,
		IsFixedWingRequested:  false,
		VehicleAttitude:       attitude.Quaternion{W: 1},
		VXYValid:              true,
		VX:                    p.MPCXyCruise() - 0.1, // below cruise threshold
		CalibratedAirspeedMS:  math.NaN(),
	}

	res := s.Tick(now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)
	assert.Equal(t, vtolmode.MCMode, res.Schedule.FlightMode)
}

func TestBackTransitionDoesNotExitAboveCruiseSpeed(t *testing.T) {
	s, _, p := newScheduler(t)
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.TransitionToMC, TransitionStart: time.Now()}
	now := sched.TransitionStart

	in := vtoltypes.Inputs{
		Now:                  now,
		IsFixedWingRequested: false,
		VehicleAttitude:      attitude.Quaternion{W: 1},
		VXYValid:             true,
		VX:                   p.MPCXyCruise() + 5,
		CalibratedAirspeedMS: math.NaN(),
	}

	res := s.Tick(now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)
	assert.Equal(t, vtolmode.TransitionToMC, res.Schedule.FlightMode)
}

func TestBackTransitionFallsBackToAirspeedWhenVelocityInvalid(t *testing.T) {
	s, _, p := newScheduler(t)
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.TransitionToMC, TransitionStart: time.Now()}
	now := sched.TransitionStart

	in := vtoltypes.Inputs{
		Now:                  now,
		IsFixedWingRequested: false,
		VXYValid:             false,
		CalibratedAirspeedMS: p.MPCXyCruise() - 0.1,
	}

	res := s.Tick(now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)
	assert.Equal(t, vtolmode.MCMode, res.Schedule.FlightMode)
}

func TestBackTransitionExitsOnTimeout(t *testing.T) {
	s, _, p := newScheduler(t)
	start := time.Now()
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.TransitionToMC, TransitionStart: start}
	now := start.Add(time.Duration(p.VTBTransDur()*1000+10) * time.Millisecond)

	in := vtoltypes.Inputs{
		Now:                  now,
		IsFixedWingRequested: false,
		VXYValid:             false,
		CalibratedAirspeedMS: math.NaN(),
	}

	res := s.Tick(now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)
	assert.Equal(t, vtolmode.MCMode, res.Schedule.FlightMode)
}

func TestFrontTransitionCompletesOnAirspeedAfterMinTime(t *testing.T) {
	s, sup, p := newScheduler(t)
	sup.MinFrontTransTime = 3.0
	start := time.Now()
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.TransitionToFW, TransitionStart: start}

	// Before min time elapsed: even sufficient airspeed does not complete.
	now := start.Add(1 * time.Second)
	in := vtoltypes.Inputs{Now: now, IsFixedWingRequested: true, CalibratedAirspeedMS: p.VTArspTrans() + 1}
	res := s.Tick(now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)
	assert.Equal(t, vtolmode.TransitionToFW, res.Schedule.FlightMode)

	// After min time elapsed, with sufficient airspeed: completes.
	now = start.Add(4 * time.Second)
	in.Now = now
	res = s.Tick(now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)
	assert.Equal(t, vtolmode.FWMode, res.Schedule.FlightMode)
}

func TestFrontTransitionCompletesOnTimeOnlyWhenAirspeedUntrusted(t *testing.T) {
	s, sup, _ := newScheduler(t)
	sup.MinFrontTransTime = 3.0
	start := time.Now()
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.TransitionToFW, TransitionStart: start}

	now := start.Add(4 * time.Second)
	in := vtoltypes.Inputs{Now: now, IsFixedWingRequested: true, CalibratedAirspeedMS: math.NaN()}
	res := s.Tick(now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)

	assert.Equal(t, vtolmode.FWMode, res.Schedule.FlightMode)
}

func TestFrontTransitionCompletesOnGroundRegardlessOfAirspeed(t *testing.T) {
	s, sup, _ := newScheduler(t)
	sup.OnGround = true
	sched := vtoltypes.ScheduleState{FlightMode: vtolmode.TransitionToFW, TransitionStart: time.Now()}
	in := vtoltypes.Inputs{Now: time.Now(), IsFixedWingRequested: true, CalibratedAirspeedMS: 0}

	res := s.Tick(in.Now, sched, vtoltypes.DefaultWeights(), vtoltypes.PusherState{}, in)
	assert.Equal(t, vtolmode.FWMode, res.Schedule.FlightMode)
}

func TestPublicModeProjection(t *testing.T) {
	require.Equal(t, vtolmode.RotaryWing, vtolmode.MCMode.Project())
	require.Equal(t, vtolmode.FixedWing, vtolmode.FWMode.Project())
	require.Equal(t, vtolmode.TransitionToFWPublic, vtolmode.TransitionToFW.Project())
	require.Equal(t, vtolmode.TransitionToMCPublic, vtolmode.TransitionToMC.Project())
}

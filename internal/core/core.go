// Package core wires the Mode Scheduler, Transition Controller,
// Hover/Cruise Pass-through, and Actuator Mixer into the single per-tick
// entry point an external 250 Hz scheduler holds and calls (spec §5's
// ordering guarantee).
package core

import (
	"time"

	"github.com/skywingfc/vtol-transition/internal/hover"
	"github.com/skywingfc/vtol-transition/internal/mixer"
	"github.com/skywingfc/vtol-transition/internal/params"
	"github.com/skywingfc/vtol-transition/internal/schedule"
	"github.com/skywingfc/vtol-transition/internal/supervisor"
	"github.com/skywingfc/vtol-transition/internal/telemetry"
	"github.com/skywingfc/vtol-transition/internal/transition"
	"github.com/skywingfc/vtol-transition/internal/vtolmode"
	"github.com/skywingfc/vtol-transition/internal/vtoltypes"
)

// Core owns the schedule state, weights, and pusher state across ticks
// (spec §3's ownership rule) and has no other global state.
type Core struct {
	sched   *schedule.Scheduler
	trans   *transition.Controller
	hov     *hover.PassThrough
	mix     *mixer.Mixer
	log     *telemetry.Logger
	lastPub vtolmode.PublicMode

	schedState vtoltypes.ScheduleState
	weights    vtoltypes.Weights
	pusher     vtoltypes.PusherState
	attSp      vtoltypes.AttitudeSetpoint
	flapState  float64
	spoilState float64
}

// New builds a Core in the cold-start-in-hover state (spec §8 scenario
// 1): MC_MODE, mc_weight=1.
func New(p *params.Params, sup supervisor.Supervisor, log *telemetry.Logger) *Core {
	return &Core{
		sched:      schedule.New(p, sup),
		trans:      transition.New(p, sup),
		hov:        hover.New(sup),
		mix:        mixer.New(p),
		log:        log,
		schedState: vtoltypes.ScheduleState{FlightMode: vtolmode.MCMode},
		weights:    vtoltypes.DefaultWeights(),
		lastPub:    vtolmode.MCMode.Project(),
	}
}

// Tick runs one control-loop iteration: Mode Scheduler, Transition
// Controller (only in the two transition modes), Hover/Cruise
// Pass-through (only in the two steady-state modes), then the Actuator
// Mixer, and returns the published outputs.
func (c *Core) Tick(now time.Time, dt float64, in vtoltypes.Inputs) vtoltypes.Outputs {
	schedRes := c.sched.Tick(now, c.schedState, c.weights, c.pusher, in)
	c.schedState = schedRes.Schedule
	c.weights = schedRes.Weights
	c.pusher = schedRes.Pusher

	if schedRes.PublicMode != c.lastPub {
		c.log.Info("flight mode transition", "from", c.lastPub.String(), "to", schedRes.PublicMode.String())
		c.lastPub = schedRes.PublicMode
	}

	switch c.schedState.FlightMode {
	case vtolmode.TransitionToFW, vtolmode.TransitionToMC:
		tRes := c.trans.Tick(now, dt, c.schedState.FlightMode, c.schedState.TransitionStart, c.weights, c.pusher, c.attSp, c.flapState, c.spoilState, in)
		c.weights = tRes.Weights
		c.pusher = tRes.Pusher
		c.attSp = tRes.AttitudeSetpoint
		c.flapState = tRes.FlapState
		c.spoilState = tRes.SpoilState

	case vtolmode.MCMode:
		c.pusher = c.hov.UpdateMCState(c.pusher)

	case vtolmode.FWMode:
		c.hov.UpdateFWState()
	}

	out := c.mix.Mix(now, c.schedState.FlightMode, in, c.weights, c.pusher.PusherThrottle, c.pusher.ReverseOutput, c.flapState, c.spoilState)
	out.PublicMode = schedRes.PublicMode
	out.AttitudeSetpoint = c.attSp
	out.FailsafeCleared = schedRes.FailsafeCleared

	return out
}

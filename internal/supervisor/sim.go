package supervisor

import (
	"math"

	"github.com/skywingfc/vtol-transition/internal/pid"
	"github.com/skywingfc/vtol-transition/internal/telemetry"
)

// slewLimiter is a first-order slew-rate limiter: it moves its state
// toward target by at most Rate units per second of dt, the behavior
// spec §1/§4.2 attributes to "the surrounding VTOL base class providing
// shared utilities (slew-rate limiters...)".
type slewLimiter struct {
	Rate  float64 // units per second
	state float64
}

func (s *slewLimiter) update(target, dt float64) float64 {
	if dt <= 0 || s.Rate <= 0 {
		s.state = target
		return s.state
	}
	maxStep := s.Rate * dt
	delta := target - s.state
	if delta > maxStep {
		delta = maxStep
	} else if delta < -maxStep {
		delta = -maxStep
	}
	s.state += delta
	return s.state
}

// SimSupervisor is the reference Supervisor implementation used by
// cmd/vtolfc-sim: it stands in for the outer VTOL base class and safety
// supervisor the spec places out of scope (§1), deriving ground contact
// from a simulated altitude, pusher assist from a PID loop against a
// commanded hover-into-wind tilt, and back-transition pitch shaping from
// a second PID loop against a deceleration target.
type SimSupervisor struct {
	Log *telemetry.Logger

	// AltitudeAGL is the simulated height above ground, set by the
	// simulator; ground contact is declared at or below
	// GroundAltitudeThreshold.
	AltitudeAGL              float64
	GroundAltitudeThreshold  float64
	MinFrontTransTime        float64

	// TiltDeg is the simulated hover tilt angle (degrees) driving pusher
	// assist: a vehicle tilted forward into wind gets a small pusher bias
	// to hold position without additional pitch.
	TiltDeg float64

	// TargetDecelMS2 is the deceleration target for back-transition pitch
	// shaping; VelocityMS is the simulator's current forward speed.
	TargetDecelMS2 float64
	VelocityMS     float64
	prevVelocityMS float64
	haveVelocity   bool

	pusherPID *pid.Controller
	backPID   *pid.Controller
	flapSlew  slewLimiter
	spoilSlew slewLimiter

	quadchutes []QuadchuteReason
}

// NewSimSupervisor builds a SimSupervisor with reasonable default gains,
// grounded on the teacher's own PID tuning in main.go
// (NewPIDController(0.5, 0.1, 0.2)).
func NewSimSupervisor(log *telemetry.Logger) *SimSupervisor {
	return &SimSupervisor{
		Log:                     log,
		GroundAltitudeThreshold: 0.3,
		pusherPID:               pid.NewController(0.05, 0.01, 0.0),
		backPID:                 pid.NewController(0.5, 0.1, 0.2),
		flapSlew:                slewLimiter{Rate: 1.0},
		spoilSlew:               slewLimiter{Rate: 1.0},
	}
}

func (s *SimSupervisor) CanTransitionOnGround() bool {
	return s.AltitudeAGL <= s.GroundAltitudeThreshold
}

func (s *SimSupervisor) MinimumFrontTransitionTime() float64 { return s.MinFrontTransTime }

// PusherAssist commands a small forward-thrust bias proportional to the
// simulated hover tilt, holding position against wind without pitching
// the airframe (a simplified stand-in for PX4's tecs-free pusher-assist
// law).
func (s *SimSupervisor) PusherAssist() float64 {
	tiltRad := s.TiltDeg * math.Pi / 180
	out := s.pusherPID.Update(tiltRad, 0.004)
	if out < 0 {
		return 0
	}
	if out > 1 {
		return 1
	}
	return out
}

// BackTransitionPitchSetpoint runs a PID loop that trades pitch for a
// target deceleration, the same shape as update_and_get_backtransition_pitch_sp().
func (s *SimSupervisor) BackTransitionPitchSetpoint() float64 {
	var accel float64
	if s.haveVelocity {
		accel = (s.VelocityMS - s.prevVelocityMS) / 0.004
	}
	s.prevVelocityMS = s.VelocityMS
	s.haveVelocity = true

	err := s.TargetDecelMS2 - (-accel)
	pitch := s.backPID.Update(err, 0.004) * math.Pi / 180
	const maxPitch = 30 * math.Pi / 180
	if pitch > maxPitch {
		pitch = maxPitch
	} else if pitch < -maxPitch {
		pitch = -maxPitch
	}
	return pitch
}

func (s *SimSupervisor) UpdateGenericTransitionState(dt float64) {}

func (s *SimSupervisor) Quadchute(reason QuadchuteReason) {
	s.quadchutes = append(s.quadchutes, reason)
	s.Log.Warn("quadchute advisory fired", "reason", reason.String())
}

// Quadchutes returns every quadchute reason fired so far, for tests and
// for the simulator's summary output.
func (s *SimSupervisor) Quadchutes() []QuadchuteReason { return s.quadchutes }

func (s *SimSupervisor) UpdateMCState() {}
func (s *SimSupervisor) UpdateFWState() {}

func (s *SimSupervisor) SlewFlaps(target, dt float64) float64    { return s.flapSlew.update(target, dt) }
func (s *SimSupervisor) SlewSpoilers(target, dt float64) float64 { return s.spoilSlew.update(target, dt) }

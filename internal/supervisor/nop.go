package supervisor

// NopSupervisor is a safe, side-effect-free Supervisor for unit tests: the
// vehicle is never on the ground, the minimum front transition time is
// zero, pusher assist and back-transition pitch shaping contribute
// nothing, and fired quadchutes are recorded for assertions instead of
// acted on.
type NopSupervisor struct {
	MinFrontTransTime float64
	OnGround          bool
	PusherAssistValue float64
	BackPitchValue    float64

	Quadchutes []QuadchuteReason
}

func (s *NopSupervisor) CanTransitionOnGround() bool { return s.OnGround }

func (s *NopSupervisor) MinimumFrontTransitionTime() float64 { return s.MinFrontTransTime }

func (s *NopSupervisor) PusherAssist() float64 { return s.PusherAssistValue }

func (s *NopSupervisor) BackTransitionPitchSetpoint() float64 { return s.BackPitchValue }

func (s *NopSupervisor) UpdateGenericTransitionState(dt float64) {}

func (s *NopSupervisor) Quadchute(reason QuadchuteReason) {
	s.Quadchutes = append(s.Quadchutes, reason)
}

func (s *NopSupervisor) UpdateMCState() {}
func (s *NopSupervisor) UpdateFWState() {}

// SlewFlaps/SlewSpoilers snap straight to target - no rate limiting -
// which is sufficient for exercising the transition controller's call
// sites in tests that don't care about slew timing.
func (s *NopSupervisor) SlewFlaps(target, dt float64) float64    { return target }
func (s *NopSupervisor) SlewSpoilers(target, dt float64) float64 { return target }

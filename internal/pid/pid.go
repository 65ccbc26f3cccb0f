// Package pid is a small PID controller, carried over from the teacher's
// pid.go essentially unchanged. It backs internal/supervisor's reference
// implementation of the outer-supervisor capabilities the transition core
// calls into (pusher assist, back-transition pitch shaping) but is not
// itself part of the transition core.
package pid

// Controller holds the state for a PID controller.
type Controller struct {
	Kp, Ki, Kd float64
	prevError  float64
	integral   float64

	// IntegralLimit, if non-zero, clamps the accumulated integral term to
	// [-IntegralLimit, IntegralLimit] to avoid windup across long hover
	// or back-transition holds.
	IntegralLimit float64
}

// NewController creates and initializes a new Controller.
func NewController(kp, ki, kd float64) *Controller {
	return &Controller{Kp: kp, Ki: ki, Kd: kd}
}

// Update calculates the new control output for the given instantaneous
// error and time step.
func (c *Controller) Update(currentError, dt float64) float64 {
	if dt <= 0 {
		return c.Kp * currentError
	}

	proportional := c.Kp * currentError

	c.integral += currentError * dt
	if c.IntegralLimit > 0 {
		if c.integral > c.IntegralLimit {
			c.integral = c.IntegralLimit
		} else if c.integral < -c.IntegralLimit {
			c.integral = -c.IntegralLimit
		}
	}
	integral := c.Ki * c.integral

	derivative := c.Kd * (currentError - c.prevError) / dt
	c.prevError = currentError

	return proportional + integral + derivative
}

// Reset clears the accumulated integral and derivative history, used
// when a controller changes context (e.g. a fresh back-transition).
func (c *Controller) Reset() {
	c.prevError = 0
	c.integral = 0
}

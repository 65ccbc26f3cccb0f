// Package indicator drives a mode status indicator through the same
// pulse/flash pattern state machine as the teacher's led.go, generalized
// from a machine.Pin target to a small Blinker interface so the same
// timing logic can drive a real LED, a terminal indicator, or a test
// spy.
package indicator

import (
	"time"

	"github.com/skywingfc/vtol-transition/internal/vtolmode"
)

// Blinker is anything that can be switched fully on or off.
type Blinker interface {
	On()
	Off()
}

// Pattern is one of the seven timing patterns the teacher's ledState
// supports.
type Pattern int

const (
	Off Pattern = iota
	On
	SlowFlash
	FastFlash
	Flash
	Alternate
	Blink3
)

// Indicator runs one Blinker through a Pattern, tracking on/off toggling
// the way the teacher's ledState.update does.
type Indicator struct {
	target     Blinker
	pattern    Pattern
	lastToggle time.Time
	isOn       bool

	blink3Count int
}

// New builds an Indicator with its target initially off.
func New(target Blinker) *Indicator {
	target.Off()
	return &Indicator{target: target, pattern: Off, lastToggle: time.Time{}, isOn: false}
}

// SetPattern switches to pattern, resetting the toggle clock so the new
// pattern starts from a clean phase.
func (ind *Indicator) SetPattern(now time.Time, pattern Pattern) {
	if ind.pattern == pattern {
		return
	}
	ind.pattern = pattern
	ind.lastToggle = now
	ind.blink3Count = 0
}

// Update advances the pattern's state machine by now, toggling the
// target when its half-period elapses. Call this once per tick.
func (ind *Indicator) Update(now time.Time) {
	switch ind.pattern {
	case Off:
		ind.set(false)
	case On:
		ind.set(true)
	case SlowFlash:
		ind.flash(now, 250*time.Millisecond)
	case FastFlash:
		ind.flash(now, 50*time.Millisecond)
	case Flash:
		ind.flash(now, 150*time.Millisecond)
	case Alternate:
		ind.flash(now, 500*time.Millisecond)
	case Blink3:
		ind.blink3(now)
	}
}

func (ind *Indicator) flash(now time.Time, halfPeriod time.Duration) {
	if now.Sub(ind.lastToggle) >= halfPeriod {
		ind.set(!ind.isOn)
		ind.lastToggle = now
	}
}

// blink3 toggles six times (three on/off pairs) at Flash's cadence, then
// holds off until the caller switches to another pattern.
func (ind *Indicator) blink3(now time.Time) {
	if ind.blink3Count >= 6 {
		ind.set(false)
		return
	}
	if now.Sub(ind.lastToggle) >= 150*time.Millisecond {
		ind.set(!ind.isOn)
		ind.lastToggle = now
		ind.blink3Count++
	}
}

func (ind *Indicator) set(on bool) {
	if on == ind.isOn {
		return
	}
	ind.isOn = on
	if on {
		ind.target.On()
	} else {
		ind.target.Off()
	}
}

// Sync maps a PublicMode (and the failsafe condition) to one of the
// patterns above: solid on in FW_MODE and steady MC_MODE, rapid flash
// under failsafe, alternating during either transition.
func Sync(now time.Time, ind *Indicator, mode vtolmode.PublicMode, failsafe bool) {
	if failsafe {
		ind.SetPattern(now, FastFlash)
		ind.Update(now)
		return
	}

	switch mode {
	case vtolmode.RotaryWing, vtolmode.FixedWing:
		ind.SetPattern(now, On)
	case vtolmode.TransitionToFWPublic, vtolmode.TransitionToMCPublic:
		ind.SetPattern(now, Alternate)
	}
	ind.Update(now)
}

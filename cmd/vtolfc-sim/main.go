// Command vtolfc-sim drives internal/core.Core against a scripted or
// recorded flight profile, the way the teacher's main.go drives its
// state machine off a ticker and live receiver input, restructured
// around a Core instead of hardware peripherals.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/skywingfc/vtol-transition/internal/core"
	"github.com/skywingfc/vtol-transition/internal/indicator"
	"github.com/skywingfc/vtol-transition/internal/params"
	"github.com/skywingfc/vtol-transition/internal/pilotinput"
	"github.com/skywingfc/vtol-transition/internal/pubsub"
	"github.com/skywingfc/vtol-transition/internal/supervisor"
	"github.com/skywingfc/vtol-transition/internal/telemetry"
	"github.com/skywingfc/vtol-transition/internal/vtoltypes"
)

const version = "0.1.0"

var (
	configPath = flag.String("config", "", "YAML parameter file (spec §6 naming convention); watched for hot reload")
	rxLog      = flag.String("rx-log", "", "recorded RC byte stream to decode with -rx-proto")
	rxProto    = flag.String("rx-proto", "ibus", "receiver protocol of -rx-log: ibus, crsf, or elrs")
	scenario   = flag.String("scenario", "", "built-in scripted flight profile: front-transition, front-transition-timeout, back-transition, failsafe-mid-transition")
	rateHz     = flag.Float64("rate", 250, "control loop rate in Hz")
	speed      = flag.Float64("speed", 1, "simulation fast-forward multiplier")
	ticks      = flag.Int("ticks", 2500, "number of ticks to simulate")
	logDir     = flag.String("logdir", "", "rotating log file directory; empty logs to stderr")
	logLevel   = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
)

func main() {
	flag.Parse()

	log := telemetry.New(telemetry.Config{Dir: *logDir, Level: *logLevel})
	log.Info("vtolfc-sim starting", "version", version)

	p := params.Default()
	if *configPath != "" {
		loaded, err := params.Load(*configPath)
		if err != nil {
			log.Error("loading params", "error", err)
			os.Exit(1)
		}
		p = loaded
		p.OnChange(func(*params.Params) {
			log.Info("parameter file reloaded", "path", *configPath)
		})
	}

	sup := supervisor.NewSimSupervisor(log)
	sup.AltitudeAGL = 100 // every profile is flown clear of the ground
	c := core.New(p, sup, log)
	bus := pubsub.New()
	ind := indicator.New(&stderrBlinker{})

	profile, err := buildProfile()
	if err != nil {
		log.Error("building flight profile", "error", err)
		os.Exit(1)
	}

	dt := 1.0 / *rateHz
	tickInterval := time.Duration(float64(time.Second) * dt / *speed)
	now := time.Now()

	// vtolTransitionFailsafe is the borrowed failsafe flag (spec §4.1): the
	// profile raises it, and it stays latched until the scheduler reports
	// FailsafeCleared, mirroring the real vtol_vehicle_status write-back.
	var vtolTransitionFailsafe bool

	for i := 0; i < *ticks; i++ {
		t := float64(i) * dt
		if profile.failsafeAt(t) {
			vtolTransitionFailsafe = true
		}

		in := profile.inputsAt(now, t, vtolTransitionFailsafe)
		bus.PublishVehicleControlMode(pubsub.VehicleControlMode{
			Timestamp:                   now,
			FlagControlClimbRateEnabled: in.FlagControlClimbRateEnabled,
		})

		out := c.Tick(now, dt, in)
		if out.FailsafeCleared {
			vtolTransitionFailsafe = false
		}

		bus.PublishActuatorOutput(pubsub.GroupMC, toPubsubActuatorOutput(out.ActuatorOut[0]))
		bus.PublishActuatorOutput(pubsub.GroupFW, toPubsubActuatorOutput(out.ActuatorOut[1]))
		bus.PublishTorqueSetpoint(pubsub.GroupMC, pubsub.TorqueSetpoint(out.TorqueSp[0]))
		bus.PublishTorqueSetpoint(pubsub.GroupFW, pubsub.TorqueSetpoint(out.TorqueSp[1]))
		bus.PublishThrustSetpoint(pubsub.GroupMC, pubsub.ThrustSetpoint(out.ThrustSp[0]))
		bus.PublishThrustSetpoint(pubsub.GroupFW, pubsub.ThrustSetpoint(out.ThrustSp[1]))

		indicator.Sync(now, ind, out.PublicMode, in.VtolTransitionFailsafe)

		now = now.Add(tickInterval)
	}

	log.Info("vtolfc-sim finished", "ticks", *ticks, "quadchutes", len(sup.Quadchutes()))
}

// toPubsubActuatorOutput adapts core's control-domain output record onto
// the bus's wire record; the two are structurally identical but kept as
// distinct named types (see internal/vtoltypes's package doc).
func toPubsubActuatorOutput(v vtoltypes.ActuatorOutput) pubsub.ActuatorOutput {
	return pubsub.ActuatorOutput{
		Timestamp:       v.Timestamp,
		TimestampSample: v.TimestampSample,
		Controls: pubsub.ActuatorControls{
			Roll: v.Controls.Roll, Pitch: v.Controls.Pitch, Yaw: v.Controls.Yaw, Throttle: v.Controls.Throttle,
			Flaps: v.Controls.Flaps, Spoilers: v.Controls.Spoilers, Airbrakes: v.Controls.Airbrakes,
			LandingGear: v.Controls.LandingGear,
		},
	}
}

// stderrBlinker is the terminal indicator target used when no real LED
// hardware is present.
type stderrBlinker struct{ on bool }

func (b *stderrBlinker) On() {
	if !b.on {
		fmt.Fprintln(os.Stderr, "[indicator] ON")
	}
	b.on = true
}

func (b *stderrBlinker) Off() {
	if b.on {
		fmt.Fprintln(os.Stderr, "[indicator] OFF")
	}
	b.on = false
}

// flightProfile produces the tick-scoped Inputs snapshot for a
// simulated or recorded flight, either from a built-in scenario or from
// a decoded RC byte stream.
type flightProfile struct {
	fixedWingRequestedAt func(t float64) bool
	airspeedAt           func(t float64) float64
	failsafeAt           func(t float64) bool
}

func buildProfile() (*flightProfile, error) {
	if *rxLog != "" {
		return profileFromRxLog(*rxLog, *rxProto)
	}
	return profileFromScenario(*scenario), nil
}

func profileFromRxLog(path, proto string) (*flightProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rx log %q: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	mapping := pilotinput.DefaultMapping()

	type nexter interface {
		Next() ([pilotinput.NumChannels]uint16, error)
	}
	var dec nexter
	switch proto {
	case "crsf":
		dec = pilotinput.NewCRSFDecoder(r)
	case "elrs":
		dec = pilotinput.NewELRSDecoder(r)
	default:
		dec = pilotinput.NewIBusDecoder(r)
	}

	var lastFW, lastFS bool
	decodeNext := func() {
		ch, err := dec.Next()
		if err == nil {
			lastFW = mapping.IsFixedWingRequested(ch)
			lastFS = mapping.VtolTransitionFailsafe(ch)
		}
	}
	decodeNext()

	return &flightProfile{
		fixedWingRequestedAt: func(float64) bool { decodeNext(); return lastFW },
		airspeedAt:           func(t float64) float64 { return 20 },
		failsafeAt:           func(float64) bool { return lastFS },
	}, nil
}

// profileFromScenario replays one of spec §8's end-to-end scenarios from
// a scripted flight profile.
func profileFromScenario(name string) *flightProfile {
	switch name {
	case "front-transition":
		return &flightProfile{
			fixedWingRequestedAt: func(t float64) bool { return true },
			airspeedAt: func(t float64) float64 {
				return math.Min(25, t*3)
			},
			failsafeAt: func(float64) bool { return false },
		}

	case "front-transition-timeout":
		return &flightProfile{
			fixedWingRequestedAt: func(t float64) bool { return true },
			airspeedAt:           func(t float64) float64 { return 5 }, // never reaches VT_ARSP_TRANS
			failsafeAt:           func(float64) bool { return false },
		}

	case "back-transition":
		return &flightProfile{
			fixedWingRequestedAt: func(t float64) bool { return t < 20 },
			airspeedAt: func(t float64) float64 {
				if t < 20 {
					return 25
				}
				return math.Max(0, 25-(t-20)*3)
			},
			failsafeAt: func(float64) bool { return false },
		}

	case "failsafe-mid-transition":
		return &flightProfile{
			fixedWingRequestedAt: func(t float64) bool { return true },
			airspeedAt:           func(t float64) float64 { return 15 },
			failsafeAt:           func(t float64) bool { return t > 2 && t < 10 },
		}

	default:
		return &flightProfile{
			fixedWingRequestedAt: func(float64) bool { return false },
			airspeedAt:           func(float64) float64 { return math.NaN() },
			failsafeAt:           func(float64) bool { return false },
		}
	}
}

func (fp *flightProfile) inputsAt(now time.Time, t float64, vtolTransitionFailsafe bool) vtoltypes.Inputs {
	return vtoltypes.Inputs{
		Now:                         now,
		CalibratedAirspeedMS:        fp.airspeedAt(t),
		FlagControlClimbRateEnabled: true,
		MCVirtualAttSp:              vtoltypes.AttitudeSetpoint{Timestamp: now},
		FWVirtualAttSp:              vtoltypes.AttitudeSetpoint{Timestamp: now},
		ActuatorsMCIn:               vtoltypes.TimestampedControls{TimestampSample: now},
		ActuatorsFWIn:               vtoltypes.TimestampedControls{TimestampSample: now},
		IsFixedWingRequested:        fp.fixedWingRequestedAt(t),
		VtolTransitionFailsafe:      vtolTransitionFailsafe,
	}
}

// Package pubsub is the in-process snapshot bus the transition core's
// inputs and outputs travel over, generalized from the teacher's
// channels.go (a single mutex-guarded [NumChannels]uint16 array) to one
// guarded slot per named topic.
//
// Every topic value is a plain struct; Publish and Snapshot are O(1)
// value copies, matching the "borrowed snapshot, no dynamic allocation on
// the hot path" ownership model of spec §3 and §5.
package pubsub

import (
	"sync"
	"time"

	"github.com/skywingfc/vtol-transition/internal/attitude"
)

// VehicleAttitude mirrors the vehicle_attitude topic.
type VehicleAttitude struct {
	Timestamp time.Time
	Q         attitude.Quaternion
}

// VehicleLocalPosition mirrors the vehicle_local_position topic.
type VehicleLocalPosition struct {
	Timestamp time.Time
	VXYValid  bool
	VX, VY, VZ float64
}

// AirspeedValidated mirrors the airspeed_validated topic. CalibratedAirspeed
// may be NaN when no valid airspeed measurement exists.
type AirspeedValidated struct {
	Timestamp             time.Time
	CalibratedAirspeedMS float64
}

// VehicleControlMode mirrors the vehicle_control_mode topic.
type VehicleControlMode struct {
	Timestamp                  time.Time
	FlagControlClimbRateEnabled bool
}

// ActuatorControls holds a single control group's roll/pitch/yaw/throttle
// plus the auxiliary channels used by the mixer.
type ActuatorControls struct {
	Roll, Pitch, Yaw, Throttle float64
	Flaps, Spoilers, Airbrakes float64
	LandingGear                float64
}

// AttitudeSetpoint mirrors vehicle_attitude_setpoint / the two virtual
// attitude setpoints (mc_virtual_att_sp, fw_virtual_att_sp).
type AttitudeSetpoint struct {
	Timestamp                time.Time
	RollBody, PitchBody, YawBody float64
	QD                       attitude.Quaternion
	ThrustBody               [3]float64
}

// VtolVehicleStatus mirrors vtol_vehicle_status.
type VtolVehicleStatus struct {
	Timestamp               time.Time
	IsFixedWingRequested    bool
	VtolTransitionFailsafe  bool
}

// ActuatorGroup identifies the two actuator/torque/thrust output slots.
type ActuatorGroup int

const (
	GroupMC ActuatorGroup = 0
	GroupFW ActuatorGroup = 1
)

// TorqueSetpoint mirrors vehicle_torque_setpoint[0..1].
type TorqueSetpoint struct {
	Timestamp       time.Time
	TimestampSample time.Time
	XYZ             [3]float64
}

// ThrustSetpoint mirrors vehicle_thrust_setpoint[0..1].
type ThrustSetpoint struct {
	Timestamp       time.Time
	TimestampSample time.Time
	XYZ             [3]float64
}

// ActuatorOutput mirrors actuator_controls_0 / actuator_controls_1.
type ActuatorOutput struct {
	Timestamp       time.Time
	TimestampSample time.Time
	Controls        ActuatorControls
}

// Bus is the snapshot bus. A single RWMutex guards every topic slot, the
// way channels.go's single mutex guards its single array, even though the
// topics are written by different producers (attitude estimator, position
// estimator, pilot input, etc.) and read together only by the core.
type Bus struct {
	mu sync.RWMutex

	attitudeIn      VehicleAttitude
	localPositionIn VehicleLocalPosition
	airspeedIn      AirspeedValidated
	controlModeIn   VehicleControlMode
	mcVirtualAttSp  AttitudeSetpoint
	fwVirtualAttSp  AttitudeSetpoint
	actuatorsMCIn   timestamped[ActuatorControls]
	actuatorsFWIn   timestamped[ActuatorControls]
	vtolStatus      VtolVehicleStatus

	attitudeSp   AttitudeSetpoint
	actuatorOut  [2]ActuatorOutput
	torqueSp     [2]TorqueSetpoint
	thrustSp     [2]ThrustSetpoint
}

type timestamped[T any] struct {
	TimestampSample time.Time
	Value           T
}

// New returns an empty Bus.
func New() *Bus { return &Bus{} }

func (b *Bus) PublishVehicleAttitude(v VehicleAttitude) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attitudeIn = v
}

func (b *Bus) VehicleAttitude() VehicleAttitude {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.attitudeIn
}

func (b *Bus) PublishVehicleLocalPosition(v VehicleLocalPosition) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.localPositionIn = v
}

func (b *Bus) VehicleLocalPosition() VehicleLocalPosition {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.localPositionIn
}

func (b *Bus) PublishAirspeedValidated(v AirspeedValidated) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.airspeedIn = v
}

func (b *Bus) AirspeedValidated() AirspeedValidated {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.airspeedIn
}

func (b *Bus) PublishVehicleControlMode(v VehicleControlMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.controlModeIn = v
}

func (b *Bus) VehicleControlMode() VehicleControlMode {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.controlModeIn
}

func (b *Bus) PublishMCVirtualAttitudeSetpoint(v AttitudeSetpoint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mcVirtualAttSp = v
}

func (b *Bus) MCVirtualAttitudeSetpoint() AttitudeSetpoint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mcVirtualAttSp
}

func (b *Bus) PublishFWVirtualAttitudeSetpoint(v AttitudeSetpoint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fwVirtualAttSp = v
}

func (b *Bus) FWVirtualAttitudeSetpoint() AttitudeSetpoint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fwVirtualAttSp
}

func (b *Bus) PublishActuatorsMCIn(sampleTS time.Time, v ActuatorControls) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actuatorsMCIn = timestamped[ActuatorControls]{TimestampSample: sampleTS, Value: v}
}

func (b *Bus) ActuatorsMCIn() (time.Time, ActuatorControls) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.actuatorsMCIn.TimestampSample, b.actuatorsMCIn.Value
}

func (b *Bus) PublishActuatorsFWIn(sampleTS time.Time, v ActuatorControls) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actuatorsFWIn = timestamped[ActuatorControls]{TimestampSample: sampleTS, Value: v}
}

func (b *Bus) ActuatorsFWIn() (time.Time, ActuatorControls) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.actuatorsFWIn.TimestampSample, b.actuatorsFWIn.Value
}

func (b *Bus) PublishVtolVehicleStatus(v VtolVehicleStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vtolStatus = v
}

func (b *Bus) VtolVehicleStatus() VtolVehicleStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.vtolStatus
}

// PublishAttitudeSetpoint stores the mutated output attitude setpoint.
func (b *Bus) PublishAttitudeSetpoint(v AttitudeSetpoint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attitudeSp = v
}

func (b *Bus) AttitudeSetpoint() AttitudeSetpoint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.attitudeSp
}

func (b *Bus) PublishActuatorOutput(group ActuatorGroup, v ActuatorOutput) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actuatorOut[group] = v
}

func (b *Bus) ActuatorOutput(group ActuatorGroup) ActuatorOutput {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.actuatorOut[group]
}

func (b *Bus) PublishTorqueSetpoint(group ActuatorGroup, v TorqueSetpoint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.torqueSp[group] = v
}

func (b *Bus) TorqueSetpoint(group ActuatorGroup) TorqueSetpoint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.torqueSp[group]
}

func (b *Bus) PublishThrustSetpoint(group ActuatorGroup, v ThrustSetpoint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.thrustSp[group] = v
}

func (b *Bus) ThrustSetpoint(group ActuatorGroup) ThrustSetpoint {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.thrustSp[group]
}

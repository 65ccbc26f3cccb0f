package pubsub

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishSnapshotRoundTrip(t *testing.T) {
	b := New()
	now := time.Now()

	b.PublishVehicleLocalPosition(VehicleLocalPosition{Timestamp: now, VXYValid: true, VX: 12.5})
	got := b.VehicleLocalPosition()

	assert.True(t, got.VXYValid)
	assert.Equal(t, 12.5, got.VX)
}

func TestActuatorGroupsAreIndependent(t *testing.T) {
	b := New()
	b.PublishActuatorOutput(GroupMC, ActuatorOutput{Controls: ActuatorControls{Throttle: 1}})
	b.PublishActuatorOutput(GroupFW, ActuatorOutput{Controls: ActuatorControls{Throttle: 0.5}})

	assert.Equal(t, 1.0, b.ActuatorOutput(GroupMC).Controls.Throttle)
	assert.Equal(t, 0.5, b.ActuatorOutput(GroupFW).Controls.Throttle)
}

func TestConcurrentPublishAndSnapshotDoesNotRace(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			b.PublishAirspeedValidated(AirspeedValidated{CalibratedAirspeedMS: float64(i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = b.AirspeedValidated()
		}()
	}
	wg.Wait()
}

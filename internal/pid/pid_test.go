package pid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateProportionalOnly(t *testing.T) {
	c := NewController(2, 0, 0)
	out := c.Update(1.5, 0.01)
	assert.InDelta(t, 3.0, out, 1e-9)
}

func TestUpdateIntegralAccumulates(t *testing.T) {
	c := NewController(0, 1, 0)
	out1 := c.Update(1.0, 1.0)
	out2 := c.Update(1.0, 1.0)
	assert.InDelta(t, 1.0, out1, 1e-9)
	assert.InDelta(t, 2.0, out2, 1e-9)
}

func TestIntegralLimitClampsWindup(t *testing.T) {
	c := NewController(0, 1, 0)
	c.IntegralLimit = 1.5
	for i := 0; i < 10; i++ {
		c.Update(1.0, 1.0)
	}
	out := c.Update(1.0, 1.0)
	assert.InDelta(t, 1.5, out, 1e-9)
}

func TestResetClearsState(t *testing.T) {
	c := NewController(0, 1, 1)
	c.Update(1.0, 1.0)
	c.Reset()
	out := c.Update(1.0, 1.0)
	// after reset, integral restarts from zero and derivative has no prior error
	assert.InDelta(t, 1.0+1.0, out, 1e-9)
}

func TestUpdateZeroDtFallsBackToProportional(t *testing.T) {
	c := NewController(3, 5, 7)
	out := c.Update(2.0, 0)
	assert.InDelta(t, 6.0, out, 1e-9)
}

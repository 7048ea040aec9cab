package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrobeHighResamplesLiveState(t *testing.T) {
	var c Controller
	c.SetButtons(A)
	c.Write(1) // strobe high
	assert.Equal(t, uint8(1), c.Read())
	c.SetButtons(0)
	assert.Equal(t, uint8(0), c.Read())
}

func TestShiftOutLowestBitFirstThenOnes(t *testing.T) {
	var c Controller
	c.SetButtons(A | Start) // bits 0 and 3 set
	c.Write(1)
	c.Write(0) // strobe low, latch shifts from here

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0}
	for i, w := range want {
		got := c.Read()
		assert.Equalf(t, w, got, "bit %d", i)
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, uint8(1), c.Read())
	}
}

package kpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCutoffDisabled(t *testing.T) {
	// GIVEN the default (disabled) cutoff
	c := DefaultCutoff()
	assert.Equal(t, "16:00", c.Time)

	// THEN nothing is ever blocked
	assert.False(t, c.Blocks(time.Date(2025, 1, 22, 23, 59, 0, 0, time.UTC)))
}

func TestCutoffEnabled(t *testing.T) {
	// GIVEN a 16:00 cutoff
	c := CutoffSetting{Enabled: true, Time: "16:00"}

	// THEN submissions before and at the deadline pass
	assert.False(t, c.Blocks(time.Date(2025, 1, 22, 15, 59, 0, 0, time.UTC)))
	assert.False(t, c.Blocks(time.Date(2025, 1, 22, 16, 0, 0, 0, time.UTC)))

	// AND submissions after it are blocked
	assert.True(t, c.Blocks(time.Date(2025, 1, 22, 16, 0, 1, 0, time.UTC)))
	assert.True(t, c.Blocks(time.Date(2025, 1, 22, 20, 30, 0, 0, time.UTC)))
}

func TestCutoffMalformedTime(t *testing.T) {
	// GIVEN a setting with an unparseable time
	c := CutoffSetting{Enabled: true, Time: "four pm"}

	// THEN the gate stays open rather than blocking everything
	assert.False(t, c.Blocks(time.Date(2025, 1, 22, 23, 0, 0, 0, time.UTC)))
}

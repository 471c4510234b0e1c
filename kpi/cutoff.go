package kpi

import (
	"fmt"
	"time"
)

// CutoffSetting is the single global same-day submission deadline for
// daily-cadence activity. When enabled, daily submissions after the cutoff
// clock time are rejected.
type CutoffSetting struct {
	Enabled bool
	Time    string // "HH:MM", 24-hour
}

// DefaultCutoff is the setting used when none has been saved.
func DefaultCutoff() CutoffSetting {
	return CutoffSetting{Enabled: false, Time: "16:00"}
}

// Blocks reports whether a daily submission at instant now is past the
// cutoff. A malformed time disables the gate rather than locking everyone
// out.
func (c CutoffSetting) Blocks(now time.Time) bool {
	if !c.Enabled {
		return false
	}
	var h, m int
	if _, err := fmt.Sscanf(c.Time, "%d:%d", &h, &m); err != nil {
		return false
	}
	deadline := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	return now.After(deadline)
}

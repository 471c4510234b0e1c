package kpi

import "time"

// GlobalSales is the sentinel rep name marking a time-off entry that applies
// to the whole team.
const GlobalSales = "Global"

// TimeOffEntry is one scheduled day off. Sales is either a rep's name or
// GlobalSales.
type TimeOffEntry struct {
	ID    string
	Date  Date
	Sales string
	Note  string
}

// Calendar answers day-off questions for the penalty engine. Sundays are
// always off; any other day is off for a rep when an entry matches the date
// with Sales equal to GlobalSales or the rep's name.
type Calendar struct {
	entries []TimeOffEntry
}

func NewCalendar(entries []TimeOffEntry) *Calendar {
	return &Calendar{entries: entries}
}

// IsDayOff reports whether rep is off on day d.
func (c *Calendar) IsDayOff(d Date, rep string) bool {
	if d.Weekday() == time.Sunday {
		return true
	}
	for _, e := range c.entries {
		if e.Date.Equal(d) && (e.Sales == GlobalSales || e.Sales == rep) {
			return true
		}
	}
	return false
}

// Entries returns the scheduled entries (Sundays are implicit and never
// listed).
func (c *Calendar) Entries() []TimeOffEntry { return c.entries }

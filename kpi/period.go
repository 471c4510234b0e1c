/*
Period math for the rolling accounting period.

The business month runs from the 21st at 00:00:00 to the following month's
20th at 23:59:59.999. A period is named after its start month; the December
period ends in January of the next year. Before the 21st of a calendar month,
the active period is the one that started the previous month.

All dates are day-granular: Date normalizes to midnight in the location it
was built with, and range checks use inclusive day bounds.
*/
package kpi

import (
	"time"
)

// =============================================================================
// DATE - Day-granular point in time
// =============================================================================

// Date is a calendar day. The wrapped time is always midnight.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, loc)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

func (d Date) Time() time.Time        { return d.t }
func (d Date) Year() int              { return d.t.Year() }
func (d Date) Month() time.Month      { return d.t.Month() }
func (d Date) Day() int               { return d.t.Day() }
func (d Date) Weekday() time.Weekday  { return d.t.Weekday() }
func (d Date) AddDays(n int) Date     { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) Before(o Date) bool     { return d.t.Before(o.t) }
func (d Date) After(o Date) bool      { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool      { return d.t.Equal(o.t) }
func (d Date) String() string         { return d.t.Format("2006-01-02") }

// DayStart is the first instant of the day.
func (d Date) DayStart() time.Time { return d.t }

// DayEnd is the last represented instant of the day (23:59:59.999).
func (d Date) DayEnd() time.Time {
	return d.t.Add(24*time.Hour - time.Millisecond)
}

// SameDay reports whether t falls on this calendar day.
func (d Date) SameDay(t time.Time) bool {
	y, m, day := t.In(d.t.Location()).Date()
	return y == d.t.Year() && m == d.t.Month() && day == d.t.Day()
}

// =============================================================================
// PERIOD - One accounting month, 21st through 20th
// =============================================================================

type Period struct {
	Start Date // the 21st
	End   Date // the following 20th
}

// PeriodFor builds the period named by its start month. December wraps into
// January of the next year.
func PeriodFor(year int, startMonth time.Month, loc *time.Location) Period {
	start := NewDate(year, startMonth, 21, loc)
	// time.Date normalizes month 13 to January of year+1, which handles the
	// December wrap without a special case.
	end := NewDate(year, startMonth+1, 20, loc)
	return Period{Start: start, End: end}
}

// CurrentPeriod resolves the period that is active at the given instant.
// Before the 21st the active period started the previous month.
func CurrentPeriod(now time.Time) Period {
	y, m, d := now.Date()
	if d < 21 {
		m--
		if m < time.January {
			m = time.December
			y--
		}
	}
	return PeriodFor(y, m, now.Location())
}

// Contains reports whether the day falls inside the period, inclusive.
func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// ContainsTime reports whether the instant falls inside the period window.
func (p Period) ContainsTime(t time.Time) bool {
	return !t.Before(p.Start.DayStart()) && !t.After(p.End.DayEnd())
}

// Days returns every calendar day of the period in ascending order. Always
// finite (a period spans at most 31 days) and free of duplicates.
func (p Period) Days() []Date {
	var out []Date
	for d := p.Start; !d.After(p.End); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}

// Sundays returns the period's Sundays in ascending order. Each Sunday closes
// the week that started the previous Monday.
func (p Period) Sundays() []Date {
	var out []Date
	for _, d := range p.Days() {
		if d.Weekday() == time.Sunday {
			out = append(out, d)
		}
	}
	return out
}

func (p Period) String() string {
	return p.Start.String() + ".." + p.End.String()
}

// =============================================================================
// WEEK MATH
// =============================================================================

// WeekStart returns the Monday opening the week that contains d. A Sunday
// belongs to the week that started six days earlier.
func WeekStart(d Date) Date {
	offset := int(d.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	return d.AddDays(-offset)
}

/*
Progress & penalty engine.

All computation runs over an injected Snapshot. The rep dashboard and the
management rollup call the same passes, so the numbers a rep sees and the
numbers management sees can never disagree for the same snapshot.

Penalty passes:
  - Daily: every date strictly before today within the period, per enabled
    daily target, skipping the rep's day-offs. achieved < quota adds the
    penalty. Today and future days are never penalized.
  - Weekly: every Sunday strictly before today within the period, window
    [Monday, Sunday]. A day off inside the week is not a waiver.
  - Monthly: only once today is strictly past the period end; whole-period
    window, each unmet enabled monthly target charges once.

The final penalty counts Approved records only; the potential penalty counts
Approved and Pending. Progress for display counts every record regardless of
review state.
*/
package kpi

import (
	"math"
	"sort"
	"time"
)

type Engine struct {
	Registry *Registry
}

func NewEngine(r *Registry) *Engine {
	return &Engine{Registry: r}
}

// =============================================================================
// ACHIEVED COUNTS
// =============================================================================

// AchievedCount counts target-source records for rep within [from, to]
// (inclusive days) that pass the status filter. An empty rep counts the whole
// team.
func (e *Engine) AchievedCount(snap *Snapshot, t Target, rep string, from, to Date, filter StatusFilter) int {
	n := 0
	start, end := from.DayStart(), to.DayEnd()
	for _, r := range snap.Records[t.Source] {
		if rep != "" && r.Sales != rep {
			continue
		}
		if r.Timestamp.Before(start) || r.Timestamp.After(end) {
			continue
		}
		if !filter.Matches(r.ValidationStatus) {
			continue
		}
		n++
	}
	return n
}

// =============================================================================
// PENALTIES
// =============================================================================

// RepPenalty runs the three penalty passes for one rep as of today.
func (e *Engine) RepPenalty(snap *Snapshot, rep string, today Date, filter StatusFilter) Money {
	total := ZeroMoney()
	if today.Before(snap.Period.Start) {
		return total
	}

	// Daily pass over past days, skipping day-offs.
	for _, t := range e.Registry.ByCadence(CadenceDaily) {
		if !snap.Enablement.IsEnabled(t.ID) {
			continue
		}
		for _, d := range snap.Period.Days() {
			if !d.Before(today) {
				break
			}
			if snap.Calendar.IsDayOff(d, rep) {
				continue
			}
			if e.AchievedCount(snap, t, rep, d, d, filter) < t.Quota {
				total = total.Add(t.Penalty)
			}
		}
	}

	// Weekly pass over past Sundays. Day-offs do not waive a week.
	for _, t := range e.Registry.ByCadence(CadenceWeekly) {
		if !snap.Enablement.IsEnabled(t.ID) {
			continue
		}
		for _, sunday := range snap.Period.Sundays() {
			if !sunday.Before(today) {
				break
			}
			if e.AchievedCount(snap, t, rep, WeekStart(sunday), sunday, filter) < t.Quota {
				total = total.Add(t.Penalty)
			}
		}
	}

	// Monthly pass only after the period has closed.
	if today.After(snap.Period.End) {
		for _, t := range e.Registry.ByCadence(CadenceMonthly) {
			if !snap.Enablement.IsEnabled(t.ID) {
				continue
			}
			if e.AchievedCount(snap, t, rep, snap.Period.Start, snap.Period.End, filter) < t.Quota {
				total = total.Add(t.Penalty)
			}
		}
	}

	return total
}

// TeamPenalties computes the final penalty per rep plus the team total.
func (e *Engine) TeamPenalties(snap *Snapshot, reps []string, today Date) (map[string]Money, Money) {
	byRep := make(map[string]Money, len(reps))
	total := ZeroMoney()
	for _, rep := range reps {
		p := e.RepPenalty(snap, rep, today, ApprovedOnly)
		byRep[rep] = p
		total = total.Add(p)
	}
	return byRep, total
}

// =============================================================================
// PROGRESS
// =============================================================================

// ProgressBar is one cadence's achieved-vs-quota summary for display.
type ProgressBar struct {
	Achieved int
	Quota    int
	Percent  int
}

func newProgressBar(achieved, quota int) ProgressBar {
	pct := 0
	if quota > 0 {
		pct = int(math.Round(float64(achieved) / float64(quota) * 100))
		if pct > 100 {
			pct = 100
		}
	}
	return ProgressBar{Achieved: achieved, Quota: quota, Percent: pct}
}

// ProgressReport holds the rep dashboard's three bars.
type ProgressReport struct {
	Daily   ProgressBar
	Weekly  ProgressBar
	Monthly ProgressBar
}

// Progress sums achieved counts and quotas across the enabled targets of
// each cadence, counting all statuses. Windows: today, the current
// Monday-to-today week, and the whole period.
func (e *Engine) Progress(snap *Snapshot, rep string, today Date) ProgressReport {
	sum := func(c Cadence, from, to Date) ProgressBar {
		achieved, quota := 0, 0
		for _, t := range e.Registry.ByCadence(c) {
			if !snap.Enablement.IsEnabled(t.ID) {
				continue
			}
			achieved += e.AchievedCount(snap, t, rep, from, to, AllStatuses)
			quota += t.Quota
		}
		return newProgressBar(achieved, quota)
	}
	return ProgressReport{
		Daily:   sum(CadenceDaily, today, today),
		Weekly:  sum(CadenceWeekly, WeekStart(today), today),
		Monthly: sum(CadenceMonthly, snap.Period.Start, snap.Period.End),
	}
}

// =============================================================================
// VALIDATION BREAKDOWN
// =============================================================================

type Breakdown struct {
	Pending  int
	Approved int
	Rejected int
	Total    int
}

// ValidationBreakdown tallies review states across every collection. An
// empty rep tallies the whole team.
func (e *Engine) ValidationBreakdown(snap *Snapshot, rep string) Breakdown {
	var b Breakdown
	for _, recs := range snap.Records {
		for _, r := range recs {
			if rep != "" && r.Sales != rep {
				continue
			}
			b.Total++
			switch r.ValidationStatus {
			case StatusApproved:
				b.Approved++
			case StatusRejected:
				b.Rejected++
			default:
				b.Pending++
			}
		}
	}
	return b
}

// RejectedQueue returns the rep's rejected records across every collection,
// newest first, for the fix-and-resubmit list.
func (e *Engine) RejectedQueue(snap *Snapshot, rep string) []Record {
	var out []Record
	for _, recs := range snap.Records {
		for _, r := range recs {
			if r.Sales == rep && r.ValidationStatus == StatusRejected {
				out = append(out, r)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

// PendingByRep groups the team's pending records by rep then collection, for
// the management validation queue.
func (e *Engine) PendingByRep(snap *Snapshot) map[string]map[Collection][]Record {
	out := make(map[string]map[Collection][]Record)
	for c, recs := range snap.Records {
		for _, r := range recs {
			if r.ValidationStatus != StatusPending || r.Sales == "" {
				continue
			}
			byColl, ok := out[r.Sales]
			if !ok {
				byColl = make(map[Collection][]Record)
				out[r.Sales] = byColl
			}
			byColl[c] = append(byColl[c], r)
		}
	}
	return out
}

// =============================================================================
// LEADERBOARD
// =============================================================================

type LeaderboardRow struct {
	Name    string
	Total   int // approved activity count across all collections
	Penalty Money
}

// Leaderboard ranks reps by approved activity across every target's source
// collection, descending, with each rep's final penalty alongside.
func (e *Engine) Leaderboard(snap *Snapshot, reps []string, today Date) []LeaderboardRow {
	byRep, _ := e.TeamPenalties(snap, reps, today)
	rows := make([]LeaderboardRow, 0, len(reps))
	for _, rep := range reps {
		total := 0
		for _, t := range e.Registry.All() {
			total += e.AchievedCount(snap, t, rep, snap.Period.Start, snap.Period.End, ApprovedOnly)
		}
		rows = append(rows, LeaderboardRow{Name: rep, Total: total, Penalty: byRep[rep]})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	return rows
}

// =============================================================================
// PERFORMANCE MATRIX
// =============================================================================

// MatrixCell is one target-by-day cell of a rep's weekly report. Exactly one
// of DayOff, Filled is meaningful: a day-off daily cell shows a marker, a
// filled cell shows pending/approved/rejected counts, anything else renders
// blank (weekly rows fill only on Sundays, monthly rows only on the period's
// last day).
type MatrixCell struct {
	Date     Date
	DayOff   bool
	Filled   bool
	Pending  int
	Approved int
	Rejected int
}

type MatrixRow struct {
	Target Target
	Cells  []MatrixCell
}

type Matrix struct {
	Week  int // zero-based page into the period's days
	Dates []Date
	Rows  []MatrixRow
}

// WeekPages is how many 7-day pages the period's matrix spans.
func (e *Engine) WeekPages(p Period) int {
	return (len(p.Days()) + 6) / 7
}

// PerformanceMatrix builds one 7-day page of a rep's per-target report.
// Pages slice the period's days from the 21st, so a page is not a calendar
// week. Disabled targets are omitted.
func (e *Engine) PerformanceMatrix(snap *Snapshot, rep string, week int) Matrix {
	days := snap.Period.Days()
	lo := week * 7
	if lo > len(days) {
		lo = len(days)
	}
	hi := lo + 7
	if hi > len(days) {
		hi = len(days)
	}
	page := days[lo:hi]

	m := Matrix{Week: week, Dates: page}
	for _, t := range e.Registry.All() {
		if !snap.Enablement.IsEnabled(t.ID) {
			continue
		}
		row := MatrixRow{Target: t}
		for _, d := range page {
			cell := MatrixCell{Date: d}
			switch t.Cadence {
			case CadenceDaily:
				if snap.Calendar.IsDayOff(d, rep) {
					cell.DayOff = true
				} else {
					cell = e.fillCell(snap, t, rep, d, d, d)
				}
			case CadenceWeekly:
				if d.Weekday() == time.Sunday {
					cell = e.fillCell(snap, t, rep, WeekStart(d), d, d)
				}
			case CadenceMonthly:
				if d.Equal(snap.Period.End) {
					cell = e.fillCell(snap, t, rep, snap.Period.Start, snap.Period.End, d)
				}
			}
			row.Cells = append(row.Cells, cell)
		}
		m.Rows = append(m.Rows, row)
	}
	return m
}

func (e *Engine) fillCell(snap *Snapshot, t Target, rep string, from, to, at Date) MatrixCell {
	cell := MatrixCell{Date: at, Filled: true}
	start, end := from.DayStart(), to.DayEnd()
	for _, r := range snap.Records[t.Source] {
		if r.Sales != rep || r.Timestamp.Before(start) || r.Timestamp.After(end) {
			continue
		}
		switch r.ValidationStatus {
		case StatusApproved:
			cell.Approved++
		case StatusRejected:
			cell.Rejected++
		default:
			cell.Pending++
		}
	}
	return cell
}

package kpi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FIXTURES
// =============================================================================

// janPeriod is Jan 21 - Feb 20 2025. Its Sundays are Jan 26, Feb 2, 9, 16.
func janPeriod() Period { return PeriodFor(2025, time.January, time.UTC) }

func singleTarget(target Target) *Registry {
	return &Registry{targets: []Target{target}}
}

func testSnapshot(recs map[Collection][]Record, off []TimeOffEntry) *Snapshot {
	if recs == nil {
		recs = map[Collection][]Record{}
	}
	return &Snapshot{
		Seq:      1,
		Period:   janPeriod(),
		Records:  recs,
		Calendar: NewCalendar(off),
		Cutoff:   DefaultCutoff(),
	}
}

func rec(c Collection, sales string, ts time.Time, status ValidationStatus) Record {
	return Record{ID: "r-" + ts.Format("0102-150405"), Collection: c, Sales: sales, Timestamp: ts, ValidationStatus: status}
}

func at(day int, month time.Month, hour int) time.Time {
	return time.Date(2025, month, day, hour, 0, 0, 0, time.UTC)
}

// =============================================================================
// DAILY PASS
// =============================================================================

func TestDailyPenaltyAccumulatesPerMissedDay(t *testing.T) {
	// GIVEN a daily target (quota 1, penalty 15000) and a rep with no activity
	reg := singleTarget(Target{ID: 1, Name: "Leads", Cadence: CadenceDaily, Quota: 1, Penalty: NewMoney(15000), Source: CollectionLeads})
	eng := NewEngine(reg)
	snap := testSnapshot(nil, nil)

	// WHEN today is Jan 26 (five working days into the period, none a Sunday)
	today := NewDate(2025, time.January, 26, time.UTC)
	got := eng.RepPenalty(snap, "Budi", today, ApprovedOnly)

	// THEN each of the five past days charges once
	assert.True(t, got.Equal(NewMoney(75000)), "got %s", got)
}

func TestDailyPenaltySkipsDayOffs(t *testing.T) {
	// GIVEN the same setup with a Global day off on Jan 22
	reg := singleTarget(Target{ID: 1, Cadence: CadenceDaily, Quota: 1, Penalty: NewMoney(15000), Source: CollectionLeads})
	eng := NewEngine(reg)
	snap := testSnapshot(nil, []TimeOffEntry{
		{ID: "off1", Date: NewDate(2025, time.January, 22, time.UTC), Sales: GlobalSales},
	})

	today := NewDate(2025, time.January, 26, time.UTC)

	// THEN the day off is exempt for everyone
	assert.True(t, eng.RepPenalty(snap, "Budi", today, ApprovedOnly).Equal(NewMoney(60000)))

	// AND a personal day off exempts only its rep
	snap.Calendar = NewCalendar([]TimeOffEntry{
		{ID: "off2", Date: NewDate(2025, time.January, 22, time.UTC), Sales: "Budi"},
	})
	assert.True(t, eng.RepPenalty(snap, "Budi", today, ApprovedOnly).Equal(NewMoney(60000)))
	assert.True(t, eng.RepPenalty(snap, "Sari", today, ApprovedOnly).Equal(NewMoney(75000)))
}

func TestTodayAndFutureNeverPenalized(t *testing.T) {
	// GIVEN a daily target and a clock on the first day of the period
	reg := singleTarget(Target{ID: 1, Cadence: CadenceDaily, Quota: 1, Penalty: NewMoney(15000), Source: CollectionLeads})
	eng := NewEngine(reg)
	snap := testSnapshot(nil, nil)

	// THEN no penalty exists yet
	got := eng.RepPenalty(snap, "Budi", NewDate(2025, time.January, 21, time.UTC), ApprovedOnly)
	assert.True(t, got.IsZero(), "got %s", got)

	// AND before the period starts nothing is charged either
	got = eng.RepPenalty(snap, "Budi", NewDate(2025, time.January, 10, time.UTC), ApprovedOnly)
	assert.True(t, got.IsZero())
}

func TestDailyQuotaMetSuppressesCharge(t *testing.T) {
	// GIVEN quota 2 and exactly two approved records on Jan 21
	reg := singleTarget(Target{ID: 1, Cadence: CadenceDaily, Quota: 2, Penalty: NewMoney(15000), Source: CollectionLeads})
	eng := NewEngine(reg)
	snap := testSnapshot(map[Collection][]Record{
		CollectionLeads: {
			rec(CollectionLeads, "Budi", at(21, time.January, 9), StatusApproved),
			rec(CollectionLeads, "Budi", at(21, time.January, 14), StatusApproved),
		},
	}, nil)

	// WHEN today is Jan 22
	got := eng.RepPenalty(snap, "Budi", NewDate(2025, time.January, 22, time.UTC), ApprovedOnly)

	// THEN Jan 21 is clean
	assert.True(t, got.IsZero(), "got %s", got)
}

// =============================================================================
// WEEKLY PASS
// =============================================================================

func TestWeeklyPenaltyChargesPerPastSunday(t *testing.T) {
	// GIVEN a weekly target (quota 1, penalty 50000) and no activity
	reg := singleTarget(Target{ID: 4, Cadence: CadenceWeekly, Quota: 1, Penalty: NewMoney(50000), Source: CollectionCanvasing})
	eng := NewEngine(reg)
	snap := testSnapshot(nil, nil)

	// WHEN today is Feb 3 (Sundays Jan 26 and Feb 2 have passed)
	got := eng.RepPenalty(snap, "Budi", NewDate(2025, time.February, 3, time.UTC), ApprovedOnly)

	// THEN both closed weeks charge
	assert.True(t, got.Equal(NewMoney(100000)), "got %s", got)
}

func TestWeeklyWindowIsMondayThroughSunday(t *testing.T) {
	// GIVEN one approved record on Monday Jan 20 (before the period start but
	// inside the week closed by Sunday Jan 26)
	reg := singleTarget(Target{ID: 4, Cadence: CadenceWeekly, Quota: 1, Penalty: NewMoney(50000), Source: CollectionCanvasing})
	eng := NewEngine(reg)
	snap := testSnapshot(map[Collection][]Record{
		CollectionCanvasing: {rec(CollectionCanvasing, "Budi", at(20, time.January, 10), StatusApproved)},
	}, nil)

	// WHEN today is Jan 27
	got := eng.RepPenalty(snap, "Budi", NewDate(2025, time.January, 27, time.UTC), ApprovedOnly)

	// THEN the Monday record satisfies the week
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestDayOffDoesNotWaiveWeeklyTarget(t *testing.T) {
	// GIVEN a weekly target with the whole closed week marked off
	reg := singleTarget(Target{ID: 4, Cadence: CadenceWeekly, Quota: 1, Penalty: NewMoney(50000), Source: CollectionCanvasing})
	eng := NewEngine(reg)
	var off []TimeOffEntry
	for d := 20; d <= 26; d++ {
		off = append(off, TimeOffEntry{Date: NewDate(2025, time.January, d, time.UTC), Sales: GlobalSales})
	}
	snap := testSnapshot(nil, off)

	// WHEN the Sunday has passed
	got := eng.RepPenalty(snap, "Budi", NewDate(2025, time.January, 27, time.UTC), ApprovedOnly)

	// THEN the week still charges: day offs exempt daily targets only
	assert.True(t, got.Equal(NewMoney(50000)), "got %s", got)
}

// =============================================================================
// MONTHLY PASS
// =============================================================================

func TestMonthlyPenaltyOnlyAfterPeriodEnd(t *testing.T) {
	// GIVEN a monthly target (quota 2, penalty 200000) with one approved record
	reg := singleTarget(Target{ID: 11, Cadence: CadenceMonthly, Quota: 2, Penalty: NewMoney(200000), Source: CollectionB2BBookings})
	eng := NewEngine(reg)
	snap := testSnapshot(map[Collection][]Record{
		CollectionB2BBookings: {rec(CollectionB2BBookings, "Budi", at(5, time.February, 11), StatusApproved)},
	}, nil)

	// WHILE the period is still open, even on its last day, nothing is charged
	assert.True(t, eng.RepPenalty(snap, "Budi", NewDate(2025, time.February, 20, time.UTC), ApprovedOnly).IsZero())

	// ONCE today is past the period end the unmet target charges once
	got := eng.RepPenalty(snap, "Budi", NewDate(2025, time.February, 21, time.UTC), ApprovedOnly)
	assert.True(t, got.Equal(NewMoney(200000)), "got %s", got)
}

// =============================================================================
// ENABLEMENT AND FILTERS
// =============================================================================

func TestDisabledTargetIsExcluded(t *testing.T) {
	// GIVEN a daily target explicitly disabled
	reg := singleTarget(Target{ID: 1, Cadence: CadenceDaily, Quota: 1, Penalty: NewMoney(15000), Source: CollectionLeads})
	eng := NewEngine(reg)
	snap := testSnapshot(nil, nil)
	snap.Enablement = Enablement{1: false}

	// THEN it charges nothing regardless of activity
	got := eng.RepPenalty(snap, "Budi", NewDate(2025, time.January, 26, time.UTC), ApprovedOnly)
	assert.True(t, got.IsZero())

	// AND it contributes nothing to progress
	prog := eng.Progress(snap, "Budi", NewDate(2025, time.January, 22, time.UTC))
	assert.Equal(t, 0, prog.Daily.Quota)
}

func TestPotentialVersusFinalPenalty(t *testing.T) {
	// GIVEN quota 1 and a single still-pending record on Jan 21
	reg := singleTarget(Target{ID: 1, Cadence: CadenceDaily, Quota: 1, Penalty: NewMoney(15000), Source: CollectionLeads})
	eng := NewEngine(reg)
	snap := testSnapshot(map[Collection][]Record{
		CollectionLeads: {rec(CollectionLeads, "Budi", at(21, time.January, 9), StatusPending)},
	}, nil)
	today := NewDate(2025, time.January, 22, time.UTC)

	// THEN the final penalty charges (nothing approved yet)
	assert.True(t, eng.RepPenalty(snap, "Budi", today, ApprovedOnly).Equal(NewMoney(15000)))

	// AND the potential penalty does not (pending would satisfy the quota)
	assert.True(t, eng.RepPenalty(snap, "Budi", today, ApprovedOrPending).IsZero())
}

func TestPenaltyMonotonicOverTime(t *testing.T) {
	// GIVEN a fixed snapshot with no activity
	reg := singleTarget(Target{ID: 1, Cadence: CadenceDaily, Quota: 1, Penalty: NewMoney(15000), Source: CollectionLeads})
	eng := NewEngine(reg)
	snap := testSnapshot(nil, nil)

	// THEN the penalty never decreases as today advances
	prev := ZeroMoney()
	for _, d := range snap.Period.Days() {
		cur := eng.RepPenalty(snap, "Budi", d, ApprovedOnly)
		require.False(t, cur.Value.LessThan(prev.Value), "penalty shrank at %s", d)
		prev = cur
	}
}

// =============================================================================
// PROGRESS
// =============================================================================

func TestProgressCountsAllStatuses(t *testing.T) {
	// GIVEN quota 2 with one pending and one rejected record today
	reg := singleTarget(Target{ID: 1, Cadence: CadenceDaily, Quota: 2, Penalty: NewMoney(15000), Source: CollectionLeads})
	eng := NewEngine(reg)
	today := NewDate(2025, time.January, 22, time.UTC)
	snap := testSnapshot(map[Collection][]Record{
		CollectionLeads: {
			rec(CollectionLeads, "Budi", at(22, time.January, 9), StatusPending),
			rec(CollectionLeads, "Budi", at(22, time.January, 10), StatusRejected),
		},
	}, nil)

	// THEN the display bar is full even though nothing is approved
	prog := eng.Progress(snap, "Budi", today)
	assert.Equal(t, 2, prog.Daily.Achieved)
	assert.Equal(t, 100, prog.Daily.Percent)

	// WHILE the penalty view still sees an unmet quota
	tomorrow := today.AddDays(1)
	assert.False(t, eng.RepPenalty(snap, "Budi", tomorrow, ApprovedOnly).IsZero())
}

func TestProgressPercentRoundsAndCaps(t *testing.T) {
	assert.Equal(t, 33, newProgressBar(1, 3).Percent)
	assert.Equal(t, 67, newProgressBar(2, 3).Percent)
	assert.Equal(t, 100, newProgressBar(5, 3).Percent)
	assert.Equal(t, 0, newProgressBar(0, 0).Percent)
}

// =============================================================================
// ROLLUPS
// =============================================================================

func TestLeaderboardRanksByApprovedActivity(t *testing.T) {
	// GIVEN two reps where Sari has more approved activity
	reg := singleTarget(Target{ID: 1, Cadence: CadenceDaily, Quota: 1, Penalty: NewMoney(15000), Source: CollectionLeads})
	eng := NewEngine(reg)
	snap := testSnapshot(map[Collection][]Record{
		CollectionLeads: {
			rec(CollectionLeads, "Sari", at(21, time.January, 9), StatusApproved),
			rec(CollectionLeads, "Sari", at(22, time.January, 9), StatusApproved),
			rec(CollectionLeads, "Budi", at(21, time.January, 9), StatusApproved),
			rec(CollectionLeads, "Budi", at(22, time.January, 9), StatusPending),
		},
	}, nil)

	rows := eng.Leaderboard(snap, []string{"Budi", "Sari"}, NewDate(2025, time.January, 23, time.UTC))

	// THEN Sari leads and pending records do not count
	require.Len(t, rows, 2)
	assert.Equal(t, "Sari", rows[0].Name)
	assert.Equal(t, 2, rows[0].Total)
	assert.Equal(t, 1, rows[1].Total)
}

func TestValidationBreakdownAndQueues(t *testing.T) {
	reg := DefaultRegistry()
	eng := NewEngine(reg)
	snap := testSnapshot(map[Collection][]Record{
		CollectionLeads: {
			rec(CollectionLeads, "Budi", at(21, time.January, 9), StatusPending),
			rec(CollectionLeads, "Budi", at(22, time.January, 9), StatusRejected),
			rec(CollectionLeads, "Sari", at(21, time.January, 9), StatusApproved),
		},
		CollectionCanvasing: {
			rec(CollectionCanvasing, "Budi", at(23, time.January, 9), StatusRejected),
		},
	}, nil)

	// Team breakdown tallies everything
	team := eng.ValidationBreakdown(snap, "")
	assert.Equal(t, Breakdown{Pending: 1, Approved: 1, Rejected: 2, Total: 4}, team)

	// Rep breakdown only the rep's records
	budi := eng.ValidationBreakdown(snap, "Budi")
	assert.Equal(t, Breakdown{Pending: 1, Rejected: 2, Total: 3}, budi)

	// Rejected queue is newest first
	queue := eng.RejectedQueue(snap, "Budi")
	require.Len(t, queue, 2)
	assert.Equal(t, CollectionCanvasing, queue[0].Collection)

	// Pending queue groups by rep then collection
	pending := eng.PendingByRep(snap)
	require.Contains(t, pending, "Budi")
	assert.Len(t, pending["Budi"][CollectionLeads], 1)
	assert.NotContains(t, pending, "Sari")
}

// =============================================================================
// PERFORMANCE MATRIX
// =============================================================================

func TestPerformanceMatrixCells(t *testing.T) {
	// GIVEN one target per cadence and one pending record on Jan 22
	reg := &Registry{targets: []Target{
		{ID: 1, Name: "daily", Cadence: CadenceDaily, Quota: 1, Penalty: NewMoney(1000), Source: CollectionLeads},
		{ID: 4, Name: "weekly", Cadence: CadenceWeekly, Quota: 1, Penalty: NewMoney(1000), Source: CollectionLeads},
		{ID: 11, Name: "monthly", Cadence: CadenceMonthly, Quota: 1, Penalty: NewMoney(1000), Source: CollectionLeads},
	}}
	eng := NewEngine(reg)
	snap := testSnapshot(map[Collection][]Record{
		CollectionLeads: {rec(CollectionLeads, "Budi", at(22, time.January, 9), StatusPending)},
	}, []TimeOffEntry{{Date: NewDate(2025, time.January, 23, time.UTC), Sales: "Budi"}})

	// WHEN rendering the first week page (Jan 21-27)
	m := eng.PerformanceMatrix(snap, "Budi", 0)
	require.Len(t, m.Dates, 7)
	require.Len(t, m.Rows, 3)
	daily, weekly, monthly := m.Rows[0], m.Rows[1], m.Rows[2]

	// THEN the daily row fills working days and marks the day off
	assert.True(t, daily.Cells[1].Filled)
	assert.Equal(t, 1, daily.Cells[1].Pending)
	assert.True(t, daily.Cells[2].DayOff)
	assert.False(t, daily.Cells[2].Filled)

	// AND the weekly row fills only on the Sunday (Jan 26, index 5)
	for i, cell := range weekly.Cells {
		if i == 5 {
			assert.True(t, cell.Filled)
			assert.Equal(t, 1, cell.Pending)
		} else {
			assert.False(t, cell.Filled)
		}
	}

	// AND the monthly row stays blank until the page containing the 20th
	for _, cell := range monthly.Cells {
		assert.False(t, cell.Filled)
	}

	// WHEN rendering the last page
	last := eng.PerformanceMatrix(snap, "Budi", eng.WeekPages(snap.Period)-1)
	var monthlyFilled int
	for _, cell := range last.Rows[2].Cells {
		if cell.Filled {
			monthlyFilled++
			assert.Equal(t, 1, cell.Pending)
		}
	}
	assert.Equal(t, 1, monthlyFilled)
}

func TestPerformanceMatrixOmitsDisabledTargets(t *testing.T) {
	reg := DefaultRegistry()
	eng := NewEngine(reg)
	snap := testSnapshot(nil, nil)
	snap.Enablement = Enablement{1: false}

	m := eng.PerformanceMatrix(snap, "Budi", 0)
	for _, row := range m.Rows {
		assert.NotEqual(t, 1, row.Target.ID)
	}
	assert.Len(t, m.Rows, 13)
}

/*
Snapshot read model.

Every dashboard or rollup computation runs over a Snapshot: one consistent
fetch of the period's records plus the settings in force at fetch time. The
engine never reaches back into the stores mid-computation, so a view is
internally consistent even while reps keep submitting.

Snapshots carry a sequence number. A caller that refreshes concurrently keeps
only the highest Seq and discards superseded fetches.
*/
package kpi

import (
	"context"
	"sync/atomic"
	"time"
)

var snapshotSeq atomic.Uint64

// Snapshot is a point-in-time copy of everything the engine reads.
type Snapshot struct {
	Seq       uint64
	FetchedAt time.Time
	Period    Period

	Records    map[Collection][]Record
	Enablement Enablement
	Calendar   *Calendar
	Cutoff     CutoffSetting
}

// FetchSnapshot loads the period's records from every collection plus the
// current settings. The first store error aborts the fetch; a partial
// snapshot is never returned.
func FetchSnapshot(ctx context.Context, data DataStore, settings SettingsStore, p Period) (*Snapshot, error) {
	snap := &Snapshot{
		Seq:       snapshotSeq.Add(1),
		FetchedAt: time.Now(),
		Period:    p,
		Records:   make(map[Collection][]Record, len(Collections())),
	}

	q := Query{From: p.Start.DayStart(), To: p.End.DayEnd()}
	for _, c := range Collections() {
		recs, err := data.List(ctx, c, q)
		if err != nil {
			return nil, err
		}
		snap.Records[c] = recs
	}

	enablement, err := settings.Enablement(ctx)
	if err != nil {
		return nil, err
	}
	snap.Enablement = enablement

	timeOff, err := settings.TimeOff(ctx)
	if err != nil {
		return nil, err
	}
	snap.Calendar = NewCalendar(timeOff)

	cutoff, err := settings.Cutoff(ctx)
	if err != nil {
		return nil, err
	}
	snap.Cutoff = cutoff

	return snap, nil
}

// Supersedes reports whether this snapshot is newer than other. Used by
// refresh loops to drop out-of-order fetches.
func (s *Snapshot) Supersedes(other *Snapshot) bool {
	return other == nil || s.Seq > other.Seq
}

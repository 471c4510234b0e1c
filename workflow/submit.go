package workflow

import (
	"context"
	"time"

	"github.com/warp/kpi-engine/kpi"
)

// Submitter handles new record submissions, enforcing the daily cutoff and
// stamping the server-side fields a client never controls.
type Submitter struct {
	store    kpi.DataStore
	settings kpi.SettingsStore
	registry *kpi.Registry
	now      func() time.Time
}

func NewSubmitter(store kpi.DataStore, settings kpi.SettingsStore, registry *kpi.Registry) *Submitter {
	return &Submitter{store: store, settings: settings, registry: registry, now: time.Now}
}

// Submit creates a record in its collection for the given rep. The review
// state is forced to Pending regardless of what the caller sent, the cutoff
// gate is applied to daily-target collections, and a new Lead gets its
// opening status-log line.
func (s *Submitter) Submit(ctx context.Context, rec kpi.Record, salesName string) (kpi.Record, error) {
	now := s.now()

	if s.feedsDailyTarget(rec.Collection) {
		cutoff, err := s.settings.Cutoff(ctx)
		if err != nil {
			return kpi.Record{}, err
		}
		if cutoff.Blocks(now) {
			return kpi.Record{}, kpi.NewInputError("timestamp",
				"submissions for daily targets are closed after "+cutoff.Time)
		}
	}

	rec.Sales = salesName
	rec.Timestamp = now
	rec.Datestamp = Datestamp(now)
	rec.ValidationStatus = kpi.StatusPending
	rec.ValidationNotes = ""

	if rec.Collection == kpi.CollectionLeads {
		rec.Status = kpi.LeadStatusLead
		rec.StatusLog = appendLine("", now, "Dibuat sebagai Lead.")
	}

	return s.store.Create(ctx, rec)
}

// feedsDailyTarget reports whether the collection is the source of an
// enabled-or-not daily target. The cutoff applies to daily cadence only.
func (s *Submitter) feedsDailyTarget(c kpi.Collection) bool {
	for _, t := range s.registry.ByCadence(kpi.CadenceDaily) {
		if t.Source == c {
			return true
		}
	}
	return false
}

package workflow

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/store/memory"
)

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2025, 1, 22, 10, 30, 0, 0, time.UTC) }
}

func seedRecord(t *testing.T, st *memory.Store, r kpi.Record) kpi.Record {
	t.Helper()
	created, err := st.Create(context.Background(), r)
	require.NoError(t, err)
	return created
}

func TestApproveSetsStatusAndNote(t *testing.T) {
	st := memory.New()
	rev := NewReviewer(st)
	rec := seedRecord(t, st, kpi.Record{Collection: kpi.CollectionLeads, Sales: "Budi"})

	// WHEN management approves with a note
	require.NoError(t, rev.Approve(context.Background(), kpi.CollectionLeads, rec.ID, "ok"))

	got, err := st.Get(context.Background(), kpi.CollectionLeads, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, kpi.StatusApproved, got.ValidationStatus)
	assert.Equal(t, "ok", got.ValidationNotes)
}

func TestRejectRequiresReason(t *testing.T) {
	st := memory.New()
	rev := NewReviewer(st)
	rec := seedRecord(t, st, kpi.Record{Collection: kpi.CollectionLeads, Sales: "Budi"})

	// WHEN rejecting with a blank reason
	err := rev.Reject(context.Background(), kpi.CollectionLeads, rec.ID, "   ")

	// THEN the decision is refused and the record is untouched
	require.ErrorIs(t, err, kpi.ErrValidationInput)
	got, _ := st.Get(context.Background(), kpi.CollectionLeads, rec.ID)
	assert.Equal(t, kpi.StatusPending, got.ValidationStatus)

	// AND a real reason goes through
	require.NoError(t, rev.Reject(context.Background(), kpi.CollectionLeads, rec.ID, "bukti tidak jelas"))
	got, _ = st.Get(context.Background(), kpi.CollectionLeads, rec.ID)
	assert.Equal(t, kpi.StatusRejected, got.ValidationStatus)
	assert.Equal(t, "bukti tidak jelas", got.ValidationNotes)
}

func TestResubmitResetsReviewState(t *testing.T) {
	// GIVEN a rejected record with an existing revision line
	st := memory.New()
	rev := NewReviewer(st)
	rev.now = fixedClock()
	rec := seedRecord(t, st, kpi.Record{
		Collection:       kpi.CollectionLeads,
		Sales:            "Budi",
		ValidationStatus: kpi.StatusRejected,
		ValidationNotes:  "bukti tidak jelas",
		RevisionLog:      "01/01/2025 09:00: Data diubah oleh Budi.",
	})

	// WHEN the rep edits and resubmits
	err := rev.Resubmit(context.Background(), kpi.CollectionLeads, rec.ID, "Budi", func(r *kpi.Record) {
		r.CustomerName = "PT Maju"
	})
	require.NoError(t, err)

	got, _ := st.Get(context.Background(), kpi.CollectionLeads, rec.ID)

	// THEN the edit applied and the review state reset
	assert.Equal(t, "PT Maju", got.CustomerName)
	assert.Equal(t, kpi.StatusPending, got.ValidationStatus)
	assert.Empty(t, got.ValidationNotes)

	// AND exactly one line was appended, prior lines preserved verbatim
	lines := strings.Split(got.RevisionLog, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "01/01/2025 09:00: Data diubah oleh Budi.", lines[0])
	assert.Equal(t, "22/01/2025 10:30: Data diubah oleh Budi.", lines[1])
}

func TestResubmitUnknownRecord(t *testing.T) {
	st := memory.New()
	rev := NewReviewer(st)
	err := rev.Resubmit(context.Background(), kpi.CollectionLeads, "missing", "Budi", nil)
	assert.ErrorIs(t, err, kpi.ErrNotFound)
}

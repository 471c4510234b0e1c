package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/store/memory"
)

func TestSubmitStampsServerFields(t *testing.T) {
	st := memory.New()
	sub := NewSubmitter(st, st, kpi.DefaultRegistry())
	sub.now = fixedClock()

	// WHEN a rep submits a record claiming to be approved already
	created, err := sub.Submit(context.Background(), kpi.Record{
		Collection:       kpi.CollectionCanvasing,
		Sales:            "someone else",
		ValidationStatus: kpi.StatusApproved,
		ValidationNotes:  "self approved",
	}, "Budi")
	require.NoError(t, err)

	// THEN the server-side fields win
	assert.Equal(t, "Budi", created.Sales)
	assert.Equal(t, kpi.StatusPending, created.ValidationStatus)
	assert.Empty(t, created.ValidationNotes)
	assert.Equal(t, "22/01/2025 10:30", created.Datestamp)
	assert.NotEmpty(t, created.ID)
}

func TestSubmitLeadGetsOpeningLogLine(t *testing.T) {
	st := memory.New()
	sub := NewSubmitter(st, st, kpi.DefaultRegistry())
	sub.now = fixedClock()

	created, err := sub.Submit(context.Background(), kpi.Record{Collection: kpi.CollectionLeads, CustomerName: "PT Maju"}, "Budi")
	require.NoError(t, err)

	assert.Equal(t, kpi.LeadStatusLead, created.Status)
	assert.Equal(t, "22/01/2025 10:30: Dibuat sebagai Lead.", created.StatusLog)
}

func TestCutoffBlocksDailySubmissionsOnly(t *testing.T) {
	// GIVEN an enabled 16:00 cutoff and a clock at 17:00
	st := memory.New()
	require.NoError(t, st.SaveCutoff(context.Background(), kpi.CutoffSetting{Enabled: true, Time: "16:00"}))
	sub := NewSubmitter(st, st, kpi.DefaultRegistry())
	sub.now = func() time.Time { return time.Date(2025, 1, 22, 17, 0, 0, 0, time.UTC) }

	// THEN a daily-target collection is closed
	_, err := sub.Submit(context.Background(), kpi.Record{Collection: kpi.CollectionLeads}, "Budi")
	require.ErrorIs(t, err, kpi.ErrValidationInput)

	// AND a weekly-target collection still accepts
	_, err = sub.Submit(context.Background(), kpi.Record{Collection: kpi.CollectionCanvasing}, "Budi")
	assert.NoError(t, err)

	// AND nothing was written for the blocked submission
	leads, _ := st.List(context.Background(), kpi.CollectionLeads, kpi.Query{})
	assert.Empty(t, leads)
}

func TestCutoffDisabledAllowsLateDailySubmission(t *testing.T) {
	st := memory.New()
	sub := NewSubmitter(st, st, kpi.DefaultRegistry())
	sub.now = func() time.Time { return time.Date(2025, 1, 22, 23, 0, 0, 0, time.UTC) }

	_, err := sub.Submit(context.Background(), kpi.Record{Collection: kpi.CollectionLeads}, "Budi")
	assert.NoError(t, err)
}

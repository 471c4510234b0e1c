package workflow

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/store/memory"
)

func TestDealCollectionClassifier(t *testing.T) {
	// The exact B2B product name routes to B2B bookings
	assert.Equal(t, kpi.CollectionB2BBookings, DealCollection("Kamar Hotel B2B"))

	// Venue and package products match case-insensitively
	assert.Equal(t, kpi.CollectionVenueBookings, DealCollection("Grand VENUE Ballroom"))
	assert.Equal(t, kpi.CollectionVenueBookings, DealCollection("Wedding Package Silver"))

	// A lowercase b2b name is not the exact product
	assert.Equal(t, kpi.CollectionOtherDeals, DealCollection("kamar hotel b2b"))
	assert.Equal(t, kpi.CollectionOtherDeals, DealCollection("Coliving 6 bulan"))
}

func newLead(t *testing.T, st *memory.Store, product, proof string) kpi.Record {
	t.Helper()
	created, err := st.Create(context.Background(), kpi.Record{
		Collection:   kpi.CollectionLeads,
		Sales:        "Budi",
		Status:       kpi.LeadStatusLead,
		StatusLog:    "21/01/2025 09:00: Dibuat sebagai Lead.",
		CustomerName: "PT Maju",
		Product:      product,
		ProofOfDeal:  proof,
	})
	require.NoError(t, err)
	return created
}

func TestLeadToProspect(t *testing.T) {
	st := memory.New()
	conv := NewConverter(st)
	conv.now = fixedClock()
	lead := newLead(t, st, "Venue A", "")

	// WHEN converting to Prospect
	require.NoError(t, conv.ToProspect(context.Background(), lead.ID, "follow up minggu depan"))

	// THEN the source Lead is updated in place
	src, _ := st.Get(context.Background(), kpi.CollectionLeads, lead.ID)
	assert.Equal(t, kpi.LeadStatusProspect, src.Status)
	assert.Contains(t, src.StatusLog, "22/01/2025 10:30: Status diubah menjadi Prospect. Catatan: follow up minggu depan")
	assert.True(t, strings.HasPrefix(src.StatusLog, "21/01/2025 09:00: Dibuat sebagai Lead."))

	// AND a fresh Pending copy exists in Prospects with the same log
	prospects, _ := st.List(context.Background(), kpi.CollectionProspects, kpi.Query{})
	require.Len(t, prospects, 1)
	p := prospects[0]
	assert.NotEqual(t, lead.ID, p.ID)
	assert.Equal(t, kpi.StatusPending, p.ValidationStatus)
	assert.Equal(t, src.StatusLog, p.StatusLog)
	assert.Equal(t, "PT Maju", p.CustomerName)
}

func TestProspectToDealReusesProof(t *testing.T) {
	st := memory.New()
	conv := NewConverter(st)
	conv.now = fixedClock()
	created, err := st.Create(context.Background(), kpi.Record{
		Collection:  kpi.CollectionProspects,
		Sales:       "Budi",
		Status:      kpi.LeadStatusProspect,
		Product:     "Kamar Hotel B2B",
		ProofOfDeal: "https://files/proof.pdf",
	})
	require.NoError(t, err)

	// WHEN converting without supplying new proof
	require.NoError(t, conv.ToDeal(context.Background(), kpi.CollectionProspects, created.ID, "deal tercapai", ""))

	// THEN the deal lands in B2B bookings with the reused proof
	deals, _ := st.List(context.Background(), kpi.CollectionB2BBookings, kpi.Query{})
	require.Len(t, deals, 1)
	assert.Equal(t, "https://files/proof.pdf", deals[0].ProofOfDeal)
	assert.Equal(t, kpi.LeadStatusDeal, deals[0].Status)

	// AND the source is now a Deal
	src, _ := st.Get(context.Background(), kpi.CollectionProspects, created.ID)
	assert.Equal(t, kpi.LeadStatusDeal, src.Status)
}

func TestDealRequiresProof(t *testing.T) {
	st := memory.New()
	conv := NewConverter(st)
	lead := newLead(t, st, "Venue A", "")

	// WHEN converting with no stored and no supplied proof
	err := conv.ToDeal(context.Background(), kpi.CollectionLeads, lead.ID, "x", "")

	// THEN the conversion is refused before any write
	require.ErrorIs(t, err, kpi.ErrValidationInput)
	prospects, _ := st.List(context.Background(), kpi.CollectionProspects, kpi.Query{})
	assert.Empty(t, prospects)
	src, _ := st.Get(context.Background(), kpi.CollectionLeads, lead.ID)
	assert.Equal(t, kpi.LeadStatusLead, src.Status)
}

func TestLeadToDealSynthesizesProspect(t *testing.T) {
	st := memory.New()
	conv := NewConverter(st)
	conv.now = fixedClock()
	lead := newLead(t, st, "Paket Package Gold", "")

	// WHEN converting a Lead straight to Deal with supplied proof
	require.NoError(t, conv.ToDeal(context.Background(), kpi.CollectionLeads, lead.ID, "closing", "https://files/deal.pdf"))

	// THEN an intermediate Prospect copy was created with the automatic line
	prospects, _ := st.List(context.Background(), kpi.CollectionProspects, kpi.Query{})
	require.Len(t, prospects, 1)
	auto := prospects[0]
	assert.Equal(t, kpi.LeadStatusProspect, auto.Status)
	assert.Contains(t, auto.StatusLog, "Status otomatis diubah menjadi Prospect saat konversi ke Deal.")
	assert.Empty(t, auto.ProofOfDeal)

	// AND the deal copy went to venue bookings (product mentions a package)
	deals, _ := st.List(context.Background(), kpi.CollectionVenueBookings, kpi.Query{})
	require.Len(t, deals, 1)
	assert.Equal(t, "https://files/deal.pdf", deals[0].ProofOfDeal)
	assert.Contains(t, deals[0].StatusLog, "Status diubah menjadi Deal. Catatan: closing")
	// The deal log does not carry the automatic prospect line
	assert.NotContains(t, deals[0].StatusLog, "otomatis")

	// AND the source Lead ended as Deal
	src, _ := st.Get(context.Background(), kpi.CollectionLeads, lead.ID)
	assert.Equal(t, kpi.LeadStatusDeal, src.Status)
}

func TestLostKeepsHistoryWithoutCopies(t *testing.T) {
	st := memory.New()
	conv := NewConverter(st)
	conv.now = fixedClock()
	lead := newLead(t, st, "Venue A", "")

	require.NoError(t, conv.ToLost(context.Background(), kpi.CollectionLeads, lead.ID, "tidak ada budget"))

	src, _ := st.Get(context.Background(), kpi.CollectionLeads, lead.ID)
	assert.Equal(t, kpi.LeadStatusLost, src.Status)
	assert.Contains(t, src.StatusLog, "Status diubah menjadi Lost. Catatan: tidak ada budget")

	prospects, _ := st.List(context.Background(), kpi.CollectionProspects, kpi.Query{})
	assert.Empty(t, prospects)
}

func TestTerminalStatesCannotTransition(t *testing.T) {
	st := memory.New()
	conv := NewConverter(st)
	created, err := st.Create(context.Background(), kpi.Record{
		Collection: kpi.CollectionLeads,
		Status:     kpi.LeadStatusLost,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, conv.ToProspect(context.Background(), created.ID, "x"), kpi.ErrValidationInput)
	assert.ErrorIs(t, conv.ToDeal(context.Background(), kpi.CollectionLeads, created.ID, "x", "p"), kpi.ErrValidationInput)
	assert.ErrorIs(t, conv.ToLost(context.Background(), kpi.CollectionLeads, created.ID, "x"), kpi.ErrValidationInput)
}

// failingStore wraps the memory store and fails Update calls, to exercise
// partial-failure reporting.
type failingStore struct {
	*memory.Store
	updateErr error
}

func (f *failingStore) Update(ctx context.Context, r kpi.Record) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.Store.Update(ctx, r)
}

func TestStepErrorReportsCommittedWrites(t *testing.T) {
	// GIVEN a store whose update always fails
	inner := memory.New()
	st := &failingStore{Store: inner, updateErr: kpi.ErrUpstream}
	conv := NewConverter(st)
	lead := newLead(t, inner, "Kamar Hotel B2B", "https://files/proof.pdf")

	// WHEN a Lead-to-Deal conversion fails at the final source update
	err := conv.ToDeal(context.Background(), kpi.CollectionLeads, lead.ID, "x", "")

	// THEN the error names the failed step and the committed ones
	var step *kpi.StepError
	require.ErrorAs(t, err, &step)
	assert.Equal(t, "update source", step.Step)
	assert.Equal(t, []string{"create intermediate prospect", "create deal"}, step.Completed)
	assert.ErrorIs(t, err, kpi.ErrUpstream)

	// AND the orphaned copies are visible, not rolled back
	prospects, _ := inner.List(context.Background(), kpi.CollectionProspects, kpi.Query{})
	assert.Len(t, prospects, 1)
	deals, _ := inner.List(context.Background(), kpi.CollectionB2BBookings, kpi.Query{})
	assert.Len(t, deals, 1)
}

/*
The Lead conversion chain.

Status only moves forward: Lead -> Prospect -> Deal, with Lost reachable from
Lead or Prospect. Converting creates copy records in the destination
collection while the source keeps its history, so a customer that became a
Deal leaves a Lead row, a Prospect row, and a Deal row behind, each carrying
the full status log up to its creation.

Multi-step conversions write sequentially without rollback. A failure partway
returns a StepError naming the failed step and the writes already committed,
so the operator can see an orphaned intermediate row for what it is.
*/
package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/warp/kpi-engine/kpi"
)

// DealCollection classifies a product name into the deal collection its
// booking belongs to. The exact name "Kamar Hotel B2B" is the B2B room
// product; anything mentioning a venue or a package is a venue booking;
// everything else lands in the catch-all.
func DealCollection(product string) kpi.Collection {
	if product == "Kamar Hotel B2B" {
		return kpi.CollectionB2BBookings
	}
	lower := strings.ToLower(product)
	if strings.Contains(lower, "venue") || strings.Contains(lower, "package") {
		return kpi.CollectionVenueBookings
	}
	return kpi.CollectionOtherDeals
}

// Converter executes conversion transitions against the data store.
type Converter struct {
	store kpi.DataStore
	now   func() time.Time
}

func NewConverter(store kpi.DataStore) *Converter {
	return &Converter{store: store, now: time.Now}
}

// ToProspect converts a Lead: a fresh Pending copy is created in Prospects
// and the source Lead is updated in place, both carrying the new log line.
func (c *Converter) ToProspect(ctx context.Context, leadID, notes string) error {
	src, err := c.store.Get(ctx, kpi.CollectionLeads, leadID)
	if err != nil {
		return err
	}
	if !src.Status.CanTransition(kpi.LeadStatusProspect) {
		return kpi.NewInputError("status", "only a Lead can become a Prospect")
	}

	now := c.now()
	log := appendLine(src.StatusLog, now, "Status diubah menjadi Prospect. Catatan: "+notes)

	copy := c.freshCopy(src, kpi.CollectionProspects, now)
	copy.Status = kpi.LeadStatusProspect
	copy.StatusLog = log
	if _, err := c.store.Create(ctx, copy); err != nil {
		return &kpi.StepError{Step: "create prospect", Err: err}
	}

	src.Status = kpi.LeadStatusProspect
	src.StatusLog = log
	if err := c.store.Update(ctx, src); err != nil {
		return &kpi.StepError{Step: "update lead", Completed: []string{"create prospect"}, Err: err}
	}
	return nil
}

// ToDeal converts a Lead or Prospect into a Deal. Proof of deal is required:
// the source's existing proof is reused, otherwise proofURL must be supplied.
// From a Lead, an intermediate Prospect copy is synthesized first so no
// customer reaches Deal without a Prospect row.
func (c *Converter) ToDeal(ctx context.Context, source kpi.Collection, id, notes, proofURL string) error {
	src, err := c.store.Get(ctx, source, id)
	if err != nil {
		return err
	}
	if !src.Status.CanTransition(kpi.LeadStatusDeal) {
		return kpi.NewInputError("status", "only a Lead or Prospect can become a Deal")
	}

	proof := src.ProofOfDeal
	if proofURL != "" {
		proof = proofURL
	}
	if proof == "" {
		return kpi.NewInputError("proofOfDeal", "proof of deal is required")
	}

	now := c.now()
	var completed []string

	if src.Status == kpi.LeadStatusLead {
		auto := c.freshCopy(src, kpi.CollectionProspects, now)
		auto.Status = kpi.LeadStatusProspect
		auto.StatusLog = appendLine(src.StatusLog, now, "Status otomatis diubah menjadi Prospect saat konversi ke Deal.")
		auto.ProofOfDeal = ""
		if _, err := c.store.Create(ctx, auto); err != nil {
			return &kpi.StepError{Step: "create intermediate prospect", Err: err}
		}
		completed = append(completed, "create intermediate prospect")
	}

	log := appendLine(src.StatusLog, now, "Status diubah menjadi Deal. Catatan: "+notes)

	deal := c.freshCopy(src, DealCollection(src.Product), now)
	deal.Status = kpi.LeadStatusDeal
	deal.StatusLog = log
	deal.ProofOfDeal = proof
	if _, err := c.store.Create(ctx, deal); err != nil {
		return &kpi.StepError{Step: "create deal", Completed: completed, Err: err}
	}
	completed = append(completed, "create deal")

	src.Status = kpi.LeadStatusDeal
	src.StatusLog = log
	if err := c.store.Update(ctx, src); err != nil {
		return &kpi.StepError{Step: "update source", Completed: completed, Err: err}
	}
	return nil
}

// ToLost marks a Lead or Prospect as Lost in place with a logged reason. No
// copy is created.
func (c *Converter) ToLost(ctx context.Context, source kpi.Collection, id, notes string) error {
	src, err := c.store.Get(ctx, source, id)
	if err != nil {
		return err
	}
	if !src.Status.CanTransition(kpi.LeadStatusLost) {
		return kpi.NewInputError("status", "only a Lead or Prospect can be marked Lost")
	}

	src.StatusLog = appendLine(src.StatusLog, c.now(), "Status diubah menjadi Lost. Catatan: "+notes)
	src.Status = kpi.LeadStatusLost
	return c.store.Update(ctx, src)
}

// freshCopy clones the source into a destination collection with a new
// identity, a fresh submission time, and a reset review state.
func (c *Converter) freshCopy(src kpi.Record, dest kpi.Collection, now time.Time) kpi.Record {
	out := src.Clone()
	out.ID = ""
	out.Collection = dest
	out.Timestamp = now
	out.Datestamp = Datestamp(now)
	out.ValidationStatus = kpi.StatusPending
	out.ValidationNotes = ""
	return out
}

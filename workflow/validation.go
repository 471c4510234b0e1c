package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/warp/kpi-engine/kpi"
)

// Reviewer applies management validation decisions.
type Reviewer struct {
	store kpi.DataStore
	now   func() time.Time
}

func NewReviewer(store kpi.DataStore) *Reviewer {
	return &Reviewer{store: store, now: time.Now}
}

// Approve marks a record Approved. The note is optional and replaces any
// previous validation note.
func (r *Reviewer) Approve(ctx context.Context, c kpi.Collection, id, note string) error {
	return r.decide(ctx, c, id, kpi.StatusApproved, note)
}

// Reject marks a record Rejected. A non-blank reason is required; the rep
// sees it in the rejected queue.
func (r *Reviewer) Reject(ctx context.Context, c kpi.Collection, id, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return kpi.NewInputError("reason", "a rejection reason is required")
	}
	return r.decide(ctx, c, id, kpi.StatusRejected, reason)
}

func (r *Reviewer) decide(ctx context.Context, c kpi.Collection, id string, status kpi.ValidationStatus, note string) error {
	rec, err := r.store.Get(ctx, c, id)
	if err != nil {
		return err
	}
	rec.ValidationStatus = status
	rec.ValidationNotes = note
	return r.store.Update(ctx, rec)
}

// Resubmit applies a rep's edit to a record. Whatever the previous review
// outcome, the record returns to Pending with its validation note cleared,
// and exactly one line lands in the revision log.
func (r *Reviewer) Resubmit(ctx context.Context, c kpi.Collection, id, editorName string, apply func(*kpi.Record)) error {
	rec, err := r.store.Get(ctx, c, id)
	if err != nil {
		return err
	}
	if apply != nil {
		apply(&rec)
	}
	rec.ValidationStatus = kpi.StatusPending
	rec.ValidationNotes = ""
	rec.RevisionLog = appendLine(rec.RevisionLog, r.now(), fmt.Sprintf("Data diubah oleh %s.", editorName))
	return r.store.Update(ctx, rec)
}

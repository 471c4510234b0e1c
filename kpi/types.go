/*
Package kpi provides the core KPI tracking engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking sales
  activity against daily/weekly/monthly quotas: the accounting period, the
  day-off calendar, the target catalog, and the penalty/progress computation
  over a snapshot of activity records.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A whole-rupiah amount (penalties are integral IDR)
  - ValidationStatus: Canonical Pending/Approved/Rejected enum
  - Collection: Tagged enum over the finite set of activity collections
  - Record: A single activity record as submitted by a rep

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for money to avoid floating-point errors
  2. Canonical enums: Statuses are normalized once at the store boundary,
     never re-lowercased at comparison sites
  3. Explicit state: The engine computes over an injected Snapshot, not a
     module-level cache

SEE ALSO:
  - registry.go: The fixed target catalog
  - engine.go: Penalty and progress computation
  - store.go: Persistence interfaces
*/
package kpi

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Whole-currency-unit amount (IDR)
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(v int64) Money {
	return Money{Value: decimal.NewFromInt(v)}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money      { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Equal(o Money) bool     { return m.Value.Equal(o.Value) }
func (m Money) IsZero() bool           { return m.Value.IsZero() }
func (m Money) IsNegative() bool       { return m.Value.IsNegative() }
func (m Money) Int64() int64           { return m.Value.IntPart() }
func (m Money) String() string         { return m.Value.String() }

// MarshalJSON emits the amount as a bare number; penalties are whole units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	d, err := decimal.NewFromString(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	m.Value = d
	return nil
}

// =============================================================================
// VALIDATION STATUS - Canonical review state
// =============================================================================

// ValidationStatus is the review state of a record. Raw store values are
// normalized through ParseValidationStatus exactly once when records are
// loaded; everything downstream compares enum values.
type ValidationStatus int

const (
	StatusPending ValidationStatus = iota
	StatusApproved
	StatusRejected
)

func (s ValidationStatus) String() string {
	switch s {
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	default:
		return "Pending"
	}
}

// ParseValidationStatus normalizes a raw status string. Matching is
// case-insensitive; empty and unrecognized values are treated as Pending,
// mirroring how imported rows without a status behave.
func ParseValidationStatus(raw string) ValidationStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approved":
		return StatusApproved
	case "rejected":
		return StatusRejected
	default:
		return StatusPending
	}
}

// StatusFilter selects which validation states count toward a computation.
// The zero value matches nothing; use AllStatuses for the unfiltered view.
type StatusFilter struct {
	all      bool
	statuses []ValidationStatus
}

var (
	// ApprovedOnly is the penalty filter: only management-approved records count.
	ApprovedOnly = StatusFilter{statuses: []ValidationStatus{StatusApproved}}

	// ApprovedOrPending is the "potential penalty" filter: what the penalty
	// would be if every pending record were approved.
	ApprovedOrPending = StatusFilter{statuses: []ValidationStatus{StatusApproved, StatusPending}}

	// AllStatuses matches every record regardless of review state. Used by
	// progress-for-display, which intentionally shows raw activity.
	AllStatuses = StatusFilter{all: true}
)

func (f StatusFilter) Matches(s ValidationStatus) bool {
	if f.all {
		return true
	}
	for _, want := range f.statuses {
		if s == want {
			return true
		}
	}
	return false
}

// =============================================================================
// LEAD STATUS - The coarse conversion state layered over validation
// =============================================================================

type LeadStatus string

const (
	LeadStatusLead     LeadStatus = "Lead"
	LeadStatusProspect LeadStatus = "Prospect"
	LeadStatusDeal     LeadStatus = "Deal"
	LeadStatusLost     LeadStatus = "Lost"
)

// CanTransition reports whether the conversion chain allows moving from s to
// next. Status only moves forward: Lead→Prospect→Deal, with Lost reachable
// from Lead or Prospect.
func (s LeadStatus) CanTransition(next LeadStatus) bool {
	switch s {
	case LeadStatusLead:
		return next == LeadStatusProspect || next == LeadStatusDeal || next == LeadStatusLost
	case LeadStatusProspect:
		return next == LeadStatusDeal || next == LeadStatusLost
	default:
		return false
	}
}

// =============================================================================
// COLLECTION - Tagged enum over the activity collections
// =============================================================================

// Collection identifies one of the fixed activity collections. The set is
// closed: row handling and the deal classifier switch over it explicitly
// rather than dispatching on runtime names.
type Collection int

const (
	CollectionLeads Collection = iota
	CollectionProspects
	CollectionB2BBookings
	CollectionVenueBookings
	CollectionOtherDeals
	CollectionCanvasing
	CollectionPromo
	CollectionDoorToDoor
	CollectionQuotations
	CollectionSurveys
	CollectionReports
	CollectionCRMSurveys
	CollectionConversions
	CollectionEvents
	CollectionCampaigns
)

// collectionNames are the wire/storage names, kept identical to the
// production dataset so exports and imports line up.
var collectionNames = map[Collection]string{
	CollectionLeads:         "Leads",
	CollectionProspects:     "Prospects",
	CollectionB2BBookings:   "B2BBookings",
	CollectionVenueBookings: "VenueBookings",
	CollectionOtherDeals:    "DealLainnya",
	CollectionCanvasing:     "Canvasing",
	CollectionPromo:         "Promosi",
	CollectionDoorToDoor:    "DoorToDoor",
	CollectionQuotations:    "Quotations",
	CollectionSurveys:       "Surveys",
	CollectionReports:       "Reports",
	CollectionCRMSurveys:    "CRMSurveys",
	CollectionConversions:   "Conversions",
	CollectionEvents:        "Events",
	CollectionCampaigns:     "Campaigns",
}

func (c Collection) String() string {
	if name, ok := collectionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Collection(%d)", int(c))
}

// IsLeadChain reports whether records in this collection carry the
// Lead/Prospect/Deal status fields.
func (c Collection) IsLeadChain() bool {
	switch c {
	case CollectionLeads, CollectionProspects, CollectionB2BBookings,
		CollectionVenueBookings, CollectionOtherDeals:
		return true
	default:
		return false
	}
}

// Collections returns every collection in a stable order.
func Collections() []Collection {
	out := make([]Collection, 0, len(collectionNames))
	for c := CollectionLeads; c <= CollectionCampaigns; c++ {
		out = append(out, c)
	}
	return out
}

// ParseCollection resolves a wire name to its Collection.
func ParseCollection(name string) (Collection, error) {
	for c, n := range collectionNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown collection %q", ErrNotFound, name)
}

// =============================================================================
// RECORD - A single activity entry
// =============================================================================

// Record is one activity entry as submitted by a rep. Common fields are
// typed; collection-specific form fields (survey feedback, campaign budget,
// and so on) travel in Extra untouched; the engine never reads them.
type Record struct {
	ID         string
	Collection Collection
	Sales      string
	Timestamp  time.Time
	Datestamp  string // display-format submission time, preserved as entered

	ValidationStatus ValidationStatus
	ValidationNotes  string
	RevisionLog      string

	// Lead-chain fields; zero-valued outside lead-chain collections.
	Status       LeadStatus
	StatusLog    string
	CustomerName string
	LeadSource   string
	Product      string
	Contact      string
	ProofOfLead  string
	ProofOfDeal  string
	Notes        string

	Extra map[string]string
}

// Clone returns a deep copy. Conversion creates copy-with-amendment records
// and must not alias the source's Extra map.
func (r Record) Clone() Record {
	out := r
	if r.Extra != nil {
		out.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// MainDetail returns the most descriptive field for list displays, checking
// the same fields the production dashboards do.
func (r Record) MainDetail() string {
	for _, v := range []string{
		r.CustomerName,
		r.Extra["meetingTitle"],
		r.Extra["campaignName"],
		r.Extra["institutionName"],
		r.Extra["competitorName"],
		r.Extra["eventName"],
		r.Extra["campaignTitle"],
	} {
		if v != "" {
			return v
		}
	}
	return "N/A"
}

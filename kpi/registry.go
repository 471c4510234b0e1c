/*
The target catalog.

The 14 targets are fixed business configuration carried in code, exactly as
deployed: 3 daily, 7 weekly, 4 monthly. Quotas are activity counts, penalties
are whole-rupiah amounts charged once per unmet target per window. Management
can disable individual targets at runtime through the enablement map; the
catalog itself never changes.
*/
package kpi

// Cadence is how often a target's quota must be met.
type Cadence int

const (
	CadenceDaily Cadence = iota
	CadenceWeekly
	CadenceMonthly
)

func (c Cadence) String() string {
	switch c {
	case CadenceDaily:
		return "daily"
	case CadenceWeekly:
		return "weekly"
	default:
		return "monthly"
	}
}

// Target is one KPI with its quota and the collection its activity lives in.
type Target struct {
	ID      int
	Name    string
	Cadence Cadence
	Quota   int
	Penalty Money
	Source  Collection
}

// DefaultRegistry returns the deployed target catalog.
func DefaultRegistry() *Registry {
	return &Registry{targets: []Target{
		// Daily
		{ID: 1, Name: "Menginput Data Lead", Cadence: CadenceDaily, Quota: 20, Penalty: NewMoney(15000), Source: CollectionLeads},
		{ID: 2, Name: "Konversi Lead Menjadi Prospek", Cadence: CadenceDaily, Quota: 5, Penalty: NewMoney(20000), Source: CollectionProspects},
		{ID: 3, Name: "Promosi Campaign Package", Cadence: CadenceDaily, Quota: 2, Penalty: NewMoney(10000), Source: CollectionPromo},

		// Weekly
		{ID: 4, Name: "Canvasing dan Pitching", Cadence: CadenceWeekly, Quota: 1, Penalty: NewMoney(50000), Source: CollectionCanvasing},
		{ID: 5, Name: "Door-to-door perusahaan", Cadence: CadenceWeekly, Quota: 3, Penalty: NewMoney(150000), Source: CollectionDoorToDoor},
		{ID: 6, Name: "Menyampaikan Quotation", Cadence: CadenceWeekly, Quota: 1, Penalty: NewMoney(50000), Source: CollectionQuotations},
		{ID: 7, Name: "Survey pengunjung Co-living", Cadence: CadenceWeekly, Quota: 4, Penalty: NewMoney(50000), Source: CollectionSurveys},
		{ID: 8, Name: "Laporan Ringkas Mingguan", Cadence: CadenceWeekly, Quota: 1, Penalty: NewMoney(50000), Source: CollectionReports},
		{ID: 9, Name: "Input CRM Survey kompetitor", Cadence: CadenceWeekly, Quota: 1, Penalty: NewMoney(25000), Source: CollectionCRMSurveys},
		{ID: 10, Name: "Konversi Booking Venue Barter", Cadence: CadenceWeekly, Quota: 1, Penalty: NewMoney(75000), Source: CollectionConversions},

		// Monthly
		{ID: 11, Name: "Konversi Booking Kamar B2B", Cadence: CadenceMonthly, Quota: 2, Penalty: NewMoney(200000), Source: CollectionB2BBookings},
		{ID: 12, Name: "Konversi Booking Venue", Cadence: CadenceMonthly, Quota: 2, Penalty: NewMoney(200000), Source: CollectionVenueBookings},
		{ID: 13, Name: "Mengikuti Event/Networking", Cadence: CadenceMonthly, Quota: 1, Penalty: NewMoney(125000), Source: CollectionEvents},
		{ID: 14, Name: "Launch Campaign Package", Cadence: CadenceMonthly, Quota: 1, Penalty: NewMoney(150000), Source: CollectionCampaigns},
	}}
}

// Registry holds the target catalog.
type Registry struct {
	targets []Target
}

// All returns every target in catalog order.
func (r *Registry) All() []Target { return r.targets }

// ByCadence returns the targets of one cadence in catalog order.
func (r *Registry) ByCadence(c Cadence) []Target {
	var out []Target
	for _, t := range r.targets {
		if t.Cadence == c {
			out = append(out, t)
		}
	}
	return out
}

// ByID looks a target up by its catalog id.
func (r *Registry) ByID(id int) (Target, bool) {
	for _, t := range r.targets {
		if t.ID == id {
			return t, true
		}
	}
	return Target{}, false
}

// =============================================================================
// ENABLEMENT
// =============================================================================

// Enablement is the runtime on/off switch per target, keyed by target id.
// A target missing from the map is enabled; only an explicit false disables.
type Enablement map[int]bool

// IsEnabled reports whether the target participates in penalty and progress
// computation.
func (e Enablement) IsEnabled(targetID int) bool {
	if e == nil {
		return true
	}
	enabled, ok := e[targetID]
	if !ok {
		return true
	}
	return enabled
}

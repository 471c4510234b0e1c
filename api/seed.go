/*
seed.go - Demo data seeding for local development

PURPOSE:

	Populates an empty store with realistic data so the dashboard, the
	validation queue, and the conversion chain all have something to show.
	Creates a management account, a few sales reps, a spread of activity
	records in the current period, and one team day off.

WHAT GETS SEEDED:

	Users:       1 management + 3 sales reps, password "rahasia"
	Records:     daily, weekly, and monthly activity with mixed review
	             outcomes, plus a Lead already converted to Prospect
	Calendar:    one global day off two days into the period

NOTE:

	Seeding does not clear existing data; it only adds. Only use on a fresh
	database in development environments.

SEE ALSO:
  - cmd/server/main.go: -seed flag
  - store/memory: same fixtures built inline for handler tests
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/workflow"
)

// UserSeeder is the store-side contract for registering accounts. The
// durable backends implement it; the read-only kpi.UserStore does not.
type UserSeeder interface {
	SaveUser(ctx context.Context, u kpi.User, password string) (kpi.User, error)
}

// Seed loads the demo fixtures.
func Seed(ctx context.Context, data kpi.DataStore, settings kpi.SettingsStore, users UserSeeder, now time.Time) error {
	for _, u := range []kpi.User{
		{Name: "Ibu Ani", Email: "ani@example.com", Role: kpi.RoleManagement},
		{Name: "Budi", Email: "budi@example.com", Role: kpi.RoleSales},
		{Name: "Sari", Email: "sari@example.com", Role: kpi.RoleSales},
		{Name: "Dewi", Email: "dewi@example.com", Role: kpi.RoleSales},
	} {
		if _, err := users.SaveUser(ctx, u, "rahasia"); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}

	p := kpi.CurrentPeriod(now)
	day := func(n int) time.Time { return p.Start.AddDays(n).Time().Add(10 * time.Hour) }

	mk := func(c kpi.Collection, sales string, ts time.Time, status kpi.ValidationStatus, customer string) kpi.Record {
		return kpi.Record{
			Collection:       c,
			Sales:            sales,
			Timestamp:        ts,
			Datestamp:        workflow.Datestamp(ts),
			ValidationStatus: status,
			CustomerName:     customer,
		}
	}

	records := []kpi.Record{
		mk(kpi.CollectionLeads, "Budi", day(0), kpi.StatusApproved, "PT Maju Bersama"),
		mk(kpi.CollectionLeads, "Budi", day(1), kpi.StatusPending, "CV Sentosa"),
		mk(kpi.CollectionLeads, "Sari", day(0), kpi.StatusApproved, "PT Cahaya"),
		mk(kpi.CollectionPromo, "Sari", day(1), kpi.StatusRejected, "Instagram batch 2"),
		mk(kpi.CollectionCanvasing, "Dewi", day(3), kpi.StatusApproved, "Kawasan Sudirman"),
		mk(kpi.CollectionQuotations, "Budi", day(4), kpi.StatusPending, "PT Maju Bersama"),
		mk(kpi.CollectionB2BBookings, "Sari", day(5), kpi.StatusApproved, "Hotel Melati"),
	}
	for _, r := range records {
		if _, err := data.Create(ctx, r); err != nil {
			return fmt.Errorf("seed record for %s: %w", r.Sales, err)
		}
	}

	// A Lead that already moved to Prospect, so the chain has history
	lead := mk(kpi.CollectionLeads, "Dewi", day(2), kpi.StatusApproved, "PT Nusantara")
	lead.Product = "Paket Meeting Package"
	lead.Status = kpi.LeadStatusLead
	lead.StatusLog = workflow.Datestamp(day(2)) + ": Dibuat sebagai Lead."
	created, err := data.Create(ctx, lead)
	if err != nil {
		return fmt.Errorf("seed lead: %w", err)
	}
	if err := workflow.NewConverter(data).ToProspect(ctx, created.ID, "Follow up meeting minggu depan"); err != nil {
		return fmt.Errorf("seed conversion: %w", err)
	}

	_, err = settings.AddTimeOff(ctx, kpi.TimeOffEntry{
		Date:  p.Start.AddDays(2),
		Sales: kpi.GlobalSales,
		Note:  "Libur nasional",
	})
	if err != nil {
		return fmt.Errorf("seed day off: %w", err)
	}
	return nil
}

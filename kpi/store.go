package kpi

import (
	"context"
	"time"
)

// =============================================================================
// QUERY
// =============================================================================

// Query narrows a record listing. Zero-valued fields do not filter.
type Query struct {
	From   time.Time
	To     time.Time
	Sales  string
	Status *ValidationStatus
}

func (q Query) Matches(r Record) bool {
	if !q.From.IsZero() && r.Timestamp.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && r.Timestamp.After(q.To) {
		return false
	}
	if q.Sales != "" && r.Sales != q.Sales {
		return false
	}
	if q.Status != nil && r.ValidationStatus != *q.Status {
		return false
	}
	return true
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

// DataStore persists activity records. Implementations normalize raw status
// strings to the canonical enum before returning records; nothing above the
// store ever sees an unnormalized status.
type DataStore interface {
	List(ctx context.Context, c Collection, q Query) ([]Record, error)
	Get(ctx context.Context, c Collection, id string) (Record, error)
	Create(ctx context.Context, r Record) (Record, error)
	Update(ctx context.Context, r Record) error
	Delete(ctx context.Context, c Collection, id string) error
}

// SettingsStore persists the management-editable configuration.
type SettingsStore interface {
	Enablement(ctx context.Context) (Enablement, error)
	SaveEnablement(ctx context.Context, e Enablement) error

	TimeOff(ctx context.Context) ([]TimeOffEntry, error)
	AddTimeOff(ctx context.Context, entry TimeOffEntry) (TimeOffEntry, error)
	DeleteTimeOff(ctx context.Context, id string) error

	Cutoff(ctx context.Context) (CutoffSetting, error)
	SaveCutoff(ctx context.Context, c CutoffSetting) error
}

// =============================================================================
// USERS
// =============================================================================

const (
	RoleSales      = "sales"
	RoleManagement = "management"
)

type User struct {
	ID    string
	Name  string
	Email string
	Role  string
}

func (u User) IsManagement() bool { return u.Role == RoleManagement }

// UserStore authenticates users and lists the sales team.
type UserStore interface {
	// Authenticate verifies credentials. Unknown user or wrong password both
	// return ErrAuthExpired without distinguishing which.
	Authenticate(ctx context.Context, email, password string) (User, error)

	// SalesUsers lists users with the sales role, the population of every
	// team rollup.
	SalesUsers(ctx context.Context) ([]User, error)
}

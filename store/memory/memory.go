// Package memory is an in-memory store used by tests and local development.
// It implements every store interface with the same normalization rules as
// the durable backends.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/warp/kpi-engine/kpi"
)

type Store struct {
	mu sync.RWMutex

	records map[kpi.Collection]map[string]kpi.Record

	enablement kpi.Enablement
	timeOff    []kpi.TimeOffEntry
	cutoff     *kpi.CutoffSetting

	users []userEntry
}

type userEntry struct {
	user     kpi.User
	password string
}

func New() *Store {
	return &Store{records: make(map[kpi.Collection]map[string]kpi.Record)}
}

// =============================================================================
// DATA STORE
// =============================================================================

func (s *Store) List(ctx context.Context, c kpi.Collection, q kpi.Query) ([]kpi.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []kpi.Record
	for _, r := range s.records[c] {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *Store) Get(ctx context.Context, c kpi.Collection, id string) (kpi.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[c][id]
	if !ok {
		return kpi.Record{}, fmt.Errorf("%w: %s/%s", kpi.ErrNotFound, c, id)
	}
	return r, nil
}

func (s *Store) Create(ctx context.Context, r kpi.Record) (kpi.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if s.records[r.Collection] == nil {
		s.records[r.Collection] = make(map[string]kpi.Record)
	}
	s.records[r.Collection][r.ID] = r.Clone()
	return r, nil
}

func (s *Store) Update(ctx context.Context, r kpi.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[r.Collection][r.ID]; !ok {
		return fmt.Errorf("%w: %s/%s", kpi.ErrNotFound, r.Collection, r.ID)
	}
	s.records[r.Collection][r.ID] = r.Clone()
	return nil
}

func (s *Store) Delete(ctx context.Context, c kpi.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[c][id]; !ok {
		return fmt.Errorf("%w: %s/%s", kpi.ErrNotFound, c, id)
	}
	delete(s.records[c], id)
	return nil
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

func (s *Store) Enablement(ctx context.Context) (kpi.Enablement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(kpi.Enablement, len(s.enablement))
	for k, v := range s.enablement {
		out[k] = v
	}
	return out, nil
}

func (s *Store) SaveEnablement(ctx context.Context, e kpi.Enablement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enablement = make(kpi.Enablement, len(e))
	for k, v := range e {
		s.enablement[k] = v
	}
	return nil
}

func (s *Store) TimeOff(ctx context.Context) ([]kpi.TimeOffEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]kpi.TimeOffEntry(nil), s.timeOff...), nil
}

func (s *Store) AddTimeOff(ctx context.Context, entry kpi.TimeOffEntry) (kpi.TimeOffEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	s.timeOff = append(s.timeOff, entry)
	return entry, nil
}

func (s *Store) DeleteTimeOff(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.timeOff {
		if e.ID == id {
			s.timeOff = append(s.timeOff[:i], s.timeOff[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: time off %s", kpi.ErrNotFound, id)
}

func (s *Store) Cutoff(ctx context.Context) (kpi.CutoffSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cutoff == nil {
		return kpi.DefaultCutoff(), nil
	}
	return *s.cutoff, nil
}

func (s *Store) SaveCutoff(ctx context.Context, c kpi.CutoffSetting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoff = &c
	return nil
}

// =============================================================================
// USER STORE
// =============================================================================

// AddUser registers a user with a plaintext password. Test fixture only.
func (s *Store) AddUser(u kpi.User, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	s.users = append(s.users, userEntry{user: u, password: password})
}

func (s *Store) Authenticate(ctx context.Context, email, password string) (kpi.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.users {
		if e.user.Email == email && e.password == password {
			return e.user, nil
		}
	}
	return kpi.User{}, kpi.ErrAuthExpired
}

func (s *Store) SalesUsers(ctx context.Context) ([]kpi.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []kpi.User
	for _, e := range s.users {
		if e.user.Role == kpi.RoleSales {
			out = append(out, e.user)
		}
	}
	return out, nil
}

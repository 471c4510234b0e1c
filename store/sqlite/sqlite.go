/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

INTERFACES IMPLEMENTED:
  kpi.DataStore:     Activity records across every collection
  kpi.SettingsStore: Enablement map, time-off entries, cutoff
  kpi.UserStore:     Credential checks and the sales-team listing

KEY TABLES:
  records:  One row per activity record. Common fields are typed columns,
            collection-specific form fields travel in extra_json.
  time_off: Scheduled day-off entries (Sundays are implicit, never stored).
  settings: Singleton key/value rows (enablement, cutoff).
  users:    Login accounts with bcrypt password hashes.

STATUS NORMALIZATION:
  Raw validation statuses are normalized to the canonical enum while
  scanning; nothing above this package ever sees an unnormalized status.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and SQLite is opened in WAL mode so
  readers don't block each other.

USAGE:
  store, err := sqlite.New("./data/kpi.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). Use ":memory:" for tests.
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/warp/kpi-engine/kpi"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		sales TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		datestamp TEXT,
		validation_status TEXT NOT NULL DEFAULT 'Pending',
		validation_notes TEXT,
		revision_log TEXT,
		lead_status TEXT,
		status_log TEXT,
		customer_name TEXT,
		lead_source TEXT,
		product TEXT,
		contact TEXT,
		proof_of_lead TEXT,
		proof_of_deal TEXT,
		notes TEXT,
		extra_json TEXT,
		created_at TEXT NOT NULL
	);

	-- Period listing is the hot path: every dashboard refresh lists each
	-- collection by time range.
	CREATE INDEX IF NOT EXISTS idx_records_collection_timestamp
		ON records(collection, timestamp);
	CREATE INDEX IF NOT EXISTS idx_records_collection_sales
		ON records(collection, sales);
	CREATE INDEX IF NOT EXISTS idx_records_validation_status
		ON records(validation_status);

	CREATE TABLE IF NOT EXISTS time_off (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		sales TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_time_off_date ON time_off(date);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DATA STORE (kpi.DataStore interface)
// =============================================================================

const recordColumns = `id, collection, sales, timestamp, datestamp, validation_status,
	validation_notes, revision_log, lead_status, status_log, customer_name,
	lead_source, product, contact, proof_of_lead, proof_of_deal, notes, extra_json`

func (s *Store) List(ctx context.Context, c kpi.Collection, q kpi.Query) ([]kpi.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + recordColumns + " FROM records WHERE collection = ?"
	args := []any{c.String()}

	if !q.From.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, q.From.UTC().Format(time.RFC3339Nano))
	}
	if !q.To.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, q.To.UTC().Format(time.RFC3339Nano))
	}
	if q.Sales != "" {
		query += " AND sales = ?"
		args = append(args, q.Sales)
	}
	if q.Status != nil {
		query += " AND validation_status = ?"
		args = append(args, q.Status.String())
	}
	query += " ORDER BY timestamp ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var out []kpi.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, c kpi.Collection, id string) (kpi.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE collection = ? AND id = ?",
		c.String(), id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return kpi.Record{}, fmt.Errorf("%w: %s/%s", kpi.ErrNotFound, c, id)
	}
	if err != nil {
		return kpi.Record{}, err
	}
	return rec, nil
}

func (s *Store) Create(ctx context.Context, r kpi.Record) (kpi.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	extraJSON, _ := json.Marshal(r.Extra)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records
		(id, collection, sales, timestamp, datestamp, validation_status,
		 validation_notes, revision_log, lead_status, status_log, customer_name,
		 lead_source, product, contact, proof_of_lead, proof_of_deal, notes,
		 extra_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Collection.String(), r.Sales,
		r.Timestamp.UTC().Format(time.RFC3339Nano), r.Datestamp,
		r.ValidationStatus.String(), r.ValidationNotes, r.RevisionLog,
		string(r.Status), r.StatusLog, r.CustomerName, r.LeadSource,
		r.Product, r.Contact, r.ProofOfLead, r.ProofOfDeal, r.Notes,
		string(extraJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return kpi.Record{}, fmt.Errorf("failed to create record: %w", err)
	}
	return r, nil
}

func (s *Store) Update(ctx context.Context, r kpi.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	extraJSON, _ := json.Marshal(r.Extra)

	res, err := s.db.ExecContext(ctx, `
		UPDATE records SET
			sales = ?, timestamp = ?, datestamp = ?, validation_status = ?,
			validation_notes = ?, revision_log = ?, lead_status = ?,
			status_log = ?, customer_name = ?, lead_source = ?, product = ?,
			contact = ?, proof_of_lead = ?, proof_of_deal = ?, notes = ?,
			extra_json = ?
		WHERE collection = ? AND id = ?`,
		r.Sales, r.Timestamp.UTC().Format(time.RFC3339Nano), r.Datestamp,
		r.ValidationStatus.String(), r.ValidationNotes, r.RevisionLog,
		string(r.Status), r.StatusLog, r.CustomerName, r.LeadSource,
		r.Product, r.Contact, r.ProofOfLead, r.ProofOfDeal, r.Notes,
		string(extraJSON), r.Collection.String(), r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s/%s", kpi.ErrNotFound, r.Collection, r.ID)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, c kpi.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE collection = ? AND id = ?", c.String(), id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s/%s", kpi.ErrNotFound, c, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (kpi.Record, error) {
	var (
		rec            kpi.Record
		collection     string
		timestamp      string
		datestamp      sql.NullString
		status         string
		notes          sql.NullString
		revisionLog    sql.NullString
		leadStatus     sql.NullString
		statusLog      sql.NullString
		customerName   sql.NullString
		leadSource     sql.NullString
		product        sql.NullString
		contact        sql.NullString
		proofOfLead    sql.NullString
		proofOfDeal    sql.NullString
		notesField     sql.NullString
		extraJSON      sql.NullString
	)

	err := row.Scan(
		&rec.ID, &collection, &rec.Sales, &timestamp, &datestamp, &status,
		&notes, &revisionLog, &leadStatus, &statusLog, &customerName,
		&leadSource, &product, &contact, &proofOfLead, &proofOfDeal,
		&notesField, &extraJSON,
	)
	if err == sql.ErrNoRows {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("failed to scan record: %w", err)
	}

	rec.Collection, err = kpi.ParseCollection(collection)
	if err != nil {
		return rec, err
	}
	rec.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
	rec.Datestamp = datestamp.String
	// Normalize here, once. Historical rows carry mixed-case statuses.
	rec.ValidationStatus = kpi.ParseValidationStatus(status)
	rec.ValidationNotes = notes.String
	rec.RevisionLog = revisionLog.String
	rec.Status = kpi.LeadStatus(leadStatus.String)
	rec.StatusLog = statusLog.String
	rec.CustomerName = customerName.String
	rec.LeadSource = leadSource.String
	rec.Product = product.String
	rec.Contact = contact.String
	rec.ProofOfLead = proofOfLead.String
	rec.ProofOfDeal = proofOfDeal.String
	rec.Notes = notesField.String

	if extraJSON.Valid && extraJSON.String != "" && extraJSON.String != "null" {
		json.Unmarshal([]byte(extraJSON.String), &rec.Extra)
	}

	return rec, nil
}

// =============================================================================
// SETTINGS STORE (kpi.SettingsStore interface)
// =============================================================================

const (
	settingEnablement = "enablement"
	settingCutoff     = "cutoff"
)

func (s *Store) Enablement(ctx context.Context) (kpi.Enablement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw map[string]bool
	found, err := s.loadSetting(ctx, settingEnablement, &raw)
	if err != nil {
		return nil, err
	}
	out := kpi.Enablement{}
	if !found {
		return out, nil
	}
	for k, v := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out, nil
}

func (s *Store) SaveEnablement(ctx context.Context, e kpi.Enablement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make(map[string]bool, len(e))
	for id, v := range e {
		raw[strconv.Itoa(id)] = v
	}
	return s.saveSetting(ctx, settingEnablement, raw)
}

func (s *Store) Cutoff(ctx context.Context) (kpi.CutoffSetting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw struct {
		IsEnabled bool   `json:"isEnabled"`
		Time      string `json:"time"`
	}
	found, err := s.loadSetting(ctx, settingCutoff, &raw)
	if err != nil {
		return kpi.CutoffSetting{}, err
	}
	if !found {
		return kpi.DefaultCutoff(), nil
	}
	return kpi.CutoffSetting{Enabled: raw.IsEnabled, Time: raw.Time}, nil
}

func (s *Store) SaveCutoff(ctx context.Context, c kpi.CutoffSetting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := struct {
		IsEnabled bool   `json:"isEnabled"`
		Time      string `json:"time"`
	}{IsEnabled: c.Enabled, Time: c.Time}
	return s.saveSetting(ctx, settingCutoff, raw)
}

func (s *Store) loadSetting(ctx context.Context, key string, dest any) (bool, error) {
	var valueJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT value_json FROM settings WHERE key = ?", key).Scan(&valueJSON)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load setting %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(valueJSON), dest); err != nil {
		return false, fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) saveSetting(ctx context.Context, key string, value any) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value_json = excluded.value_json,
			updated_at = excluded.updated_at`,
		key, string(valueJSON), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (s *Store) TimeOff(ctx context.Context) ([]kpi.TimeOffEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, date, sales, note FROM time_off ORDER BY date ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list time off: %w", err)
	}
	defer rows.Close()

	var out []kpi.TimeOffEntry
	for rows.Next() {
		var e kpi.TimeOffEntry
		var date string
		var note sql.NullString
		if err := rows.Scan(&e.ID, &date, &e.Sales, &note); err != nil {
			return nil, err
		}
		t, _ := time.Parse("2006-01-02", date)
		e.Date = kpi.DateOf(t)
		e.Note = note.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) AddTimeOff(ctx context.Context, entry kpi.TimeOffEntry) (kpi.TimeOffEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO time_off (id, date, sales, note, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.ID, entry.Date.String(), entry.Sales, entry.Note,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return kpi.TimeOffEntry{}, fmt.Errorf("failed to add time off: %w", err)
	}
	return entry, nil
}

func (s *Store) DeleteTimeOff(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM time_off WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete time off: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: time off %s", kpi.ErrNotFound, id)
	}
	return nil
}

// =============================================================================
// USER STORE (kpi.UserStore interface)
// =============================================================================

func (s *Store) Authenticate(ctx context.Context, email, password string) (kpi.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u kpi.User
	var hash string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, role FROM users WHERE email = ?",
		email).Scan(&u.ID, &u.Name, &u.Email, &hash, &u.Role)
	if err == sql.ErrNoRows {
		return kpi.User{}, kpi.ErrAuthExpired
	}
	if err != nil {
		return kpi.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return kpi.User{}, kpi.ErrAuthExpired
	}
	return u, nil
}

func (s *Store) SalesUsers(ctx context.Context) ([]kpi.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, role FROM users WHERE role = ? ORDER BY name",
		kpi.RoleSales)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales users: %w", err)
	}
	defer rows.Close()

	var out []kpi.User
	for rows.Next() {
		var u kpi.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SaveUser creates or updates a login account, hashing the password when one
// is given. Used by the bootstrap seeding and admin tooling.
func (s *Store) SaveUser(ctx context.Context, u kpi.User, password string) (kpi.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return kpi.User{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			password_hash = excluded.password_hash,
			role = excluded.role`,
		u.ID, u.Name, u.Email, string(hash), u.Role,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return kpi.User{}, fmt.Errorf("failed to save user: %w", err)
	}
	return u, nil
}

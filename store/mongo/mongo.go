/*
Package mongo provides the MongoDB-backed implementation of the storage
interfaces. It mirrors the document layout of the production deployment this
system grew out of: one Mongo collection per activity collection, with field
names matching the historical JSON payloads, so the same database serves old
exports and this service.

Select it with store.driver "mongo" in the server config; sqlite remains the
default.
*/
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/warp/kpi-engine/kpi"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and pings it before returning.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// =============================================================================
// DOCUMENT MODEL
// =============================================================================

// recordDoc is the stored shape of a record. Field names match the historical
// payloads, including the Indonesian free-text fields inside extra.
type recordDoc struct {
	ID               string            `bson:"_id"`
	Sales            string            `bson:"sales"`
	Timestamp        time.Time         `bson:"timestamp"`
	Datestamp        string            `bson:"datestamp,omitempty"`
	ValidationStatus string            `bson:"validationStatus"`
	ValidationNotes  string            `bson:"validationNotes,omitempty"`
	RevisionLog      string            `bson:"revisionLog,omitempty"`
	Status           string            `bson:"status,omitempty"`
	StatusLog        string            `bson:"statusLog,omitempty"`
	CustomerName     string            `bson:"customerName,omitempty"`
	LeadSource       string            `bson:"leadSource,omitempty"`
	Product          string            `bson:"product,omitempty"`
	Contact          string            `bson:"contact,omitempty"`
	ProofOfLead      string            `bson:"proofOfLead,omitempty"`
	ProofOfDeal      string            `bson:"proofOfDeal,omitempty"`
	Notes            string            `bson:"notes,omitempty"`
	Extra            map[string]string `bson:"extra,omitempty"`
}

func toDoc(r kpi.Record) recordDoc {
	return recordDoc{
		ID:               r.ID,
		Sales:            r.Sales,
		Timestamp:        r.Timestamp.UTC(),
		Datestamp:        r.Datestamp,
		ValidationStatus: r.ValidationStatus.String(),
		ValidationNotes:  r.ValidationNotes,
		RevisionLog:      r.RevisionLog,
		Status:           string(r.Status),
		StatusLog:        r.StatusLog,
		CustomerName:     r.CustomerName,
		LeadSource:       r.LeadSource,
		Product:          r.Product,
		Contact:          r.Contact,
		ProofOfLead:      r.ProofOfLead,
		ProofOfDeal:      r.ProofOfDeal,
		Notes:            r.Notes,
		Extra:            r.Extra,
	}
}

func fromDoc(c kpi.Collection, d recordDoc) kpi.Record {
	return kpi.Record{
		ID:         d.ID,
		Collection: c,
		Sales:      d.Sales,
		Timestamp:  d.Timestamp,
		Datestamp:  d.Datestamp,
		// Normalized here, once. Historical documents carry mixed-case
		// statuses.
		ValidationStatus: kpi.ParseValidationStatus(d.ValidationStatus),
		ValidationNotes:  d.ValidationNotes,
		RevisionLog:      d.RevisionLog,
		Status:           kpi.LeadStatus(d.Status),
		StatusLog:        d.StatusLog,
		CustomerName:     d.CustomerName,
		LeadSource:       d.LeadSource,
		Product:          d.Product,
		Contact:          d.Contact,
		ProofOfLead:      d.ProofOfLead,
		ProofOfDeal:      d.ProofOfDeal,
		Notes:            d.Notes,
		Extra:            d.Extra,
	}
}

func (s *Store) coll(c kpi.Collection) *mongo.Collection {
	return s.db.Collection(c.String())
}

// =============================================================================
// DATA STORE (kpi.DataStore interface)
// =============================================================================

func (s *Store) List(ctx context.Context, c kpi.Collection, q kpi.Query) ([]kpi.Record, error) {
	filter := bson.M{}
	if !q.From.IsZero() || !q.To.IsZero() {
		ts := bson.M{}
		if !q.From.IsZero() {
			ts["$gte"] = q.From.UTC()
		}
		if !q.To.IsZero() {
			ts["$lte"] = q.To.UTC()
		}
		filter["timestamp"] = ts
	}
	if q.Sales != "" {
		filter["sales"] = q.Sales
	}
	if q.Status != nil {
		// Match historical mixed-case statuses too.
		filter["validationStatus"] = bson.M{"$regex": "^" + q.Status.String() + "$", "$options": "i"}
	}

	cursor, err := s.coll(c).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer cursor.Close(ctx)

	var out []kpi.Record
	for cursor.Next(ctx) {
		var d recordDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		out = append(out, fromDoc(c, d))
	}
	return out, cursor.Err()
}

func (s *Store) Get(ctx context.Context, c kpi.Collection, id string) (kpi.Record, error) {
	var d recordDoc
	err := s.coll(c).FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return kpi.Record{}, fmt.Errorf("%w: %s/%s", kpi.ErrNotFound, c, id)
	}
	if err != nil {
		return kpi.Record{}, fmt.Errorf("failed to get record: %w", err)
	}
	return fromDoc(c, d), nil
}

func (s *Store) Create(ctx context.Context, r kpi.Record) (kpi.Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, err := s.coll(r.Collection).InsertOne(ctx, toDoc(r)); err != nil {
		return kpi.Record{}, fmt.Errorf("failed to create record: %w", err)
	}
	return r, nil
}

func (s *Store) Update(ctx context.Context, r kpi.Record) error {
	res, err := s.coll(r.Collection).ReplaceOne(ctx, bson.M{"_id": r.ID}, toDoc(r))
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s/%s", kpi.ErrNotFound, r.Collection, r.ID)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, c kpi.Collection, id string) error {
	res, err := s.coll(c).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s/%s", kpi.ErrNotFound, c, id)
	}
	return nil
}

// =============================================================================
// SETTINGS STORE (kpi.SettingsStore interface)
// =============================================================================

const settingsCollection = "Settings"

func (s *Store) Enablement(ctx context.Context) (kpi.Enablement, error) {
	var doc struct {
		Data map[string]bool `bson:"data"`
	}
	err := s.db.Collection(settingsCollection).
		FindOne(ctx, bson.M{"_id": "kpi"}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return kpi.Enablement{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load enablement: %w", err)
	}
	out := kpi.Enablement{}
	for k, v := range doc.Data {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out, nil
}

func (s *Store) SaveEnablement(ctx context.Context, e kpi.Enablement) error {
	data := make(map[string]bool, len(e))
	for id, v := range e {
		data[strconv.Itoa(id)] = v
	}
	return s.saveSetting(ctx, "kpi", bson.M{"data": data})
}

func (s *Store) Cutoff(ctx context.Context) (kpi.CutoffSetting, error) {
	var doc struct {
		Data struct {
			IsEnabled bool   `bson:"isEnabled"`
			Time      string `bson:"time"`
		} `bson:"data"`
	}
	err := s.db.Collection(settingsCollection).
		FindOne(ctx, bson.M{"_id": "cutoff"}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return kpi.DefaultCutoff(), nil
	}
	if err != nil {
		return kpi.CutoffSetting{}, fmt.Errorf("failed to load cutoff: %w", err)
	}
	return kpi.CutoffSetting{Enabled: doc.Data.IsEnabled, Time: doc.Data.Time}, nil
}

func (s *Store) SaveCutoff(ctx context.Context, c kpi.CutoffSetting) error {
	return s.saveSetting(ctx, "cutoff", bson.M{"data": bson.M{
		"isEnabled": c.Enabled,
		"time":      c.Time,
	}})
}

func (s *Store) saveSetting(ctx context.Context, id string, doc bson.M) error {
	_, err := s.db.Collection(settingsCollection).ReplaceOne(ctx,
		bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", id, err)
	}
	return nil
}

type timeOffDoc struct {
	ID    string `bson:"_id"`
	Date  string `bson:"date"`
	Sales string `bson:"sales"`
	Note  string `bson:"description,omitempty"`
}

const timeOffCollection = "TimeOff"

func (s *Store) TimeOff(ctx context.Context) ([]kpi.TimeOffEntry, error) {
	cursor, err := s.db.Collection(timeOffCollection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list time off: %w", err)
	}
	defer cursor.Close(ctx)

	var out []kpi.TimeOffEntry
	for cursor.Next(ctx) {
		var d timeOffDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to decode time off: %w", err)
		}
		t, _ := time.Parse("2006-01-02", d.Date)
		out = append(out, kpi.TimeOffEntry{
			ID:    d.ID,
			Date:  kpi.DateOf(t),
			Sales: d.Sales,
			Note:  d.Note,
		})
	}
	return out, cursor.Err()
}

func (s *Store) AddTimeOff(ctx context.Context, entry kpi.TimeOffEntry) (kpi.TimeOffEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	_, err := s.db.Collection(timeOffCollection).InsertOne(ctx, timeOffDoc{
		ID:    entry.ID,
		Date:  entry.Date.String(),
		Sales: entry.Sales,
		Note:  entry.Note,
	})
	if err != nil {
		return kpi.TimeOffEntry{}, fmt.Errorf("failed to add time off: %w", err)
	}
	return entry, nil
}

func (s *Store) DeleteTimeOff(ctx context.Context, id string) error {
	res, err := s.db.Collection(timeOffCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete time off: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: time off %s", kpi.ErrNotFound, id)
	}
	return nil
}

// =============================================================================
// USER STORE (kpi.UserStore interface)
// =============================================================================

const usersCollection = "Users"

type userDoc struct {
	ID           string `bson:"_id"`
	Name         string `bson:"name"`
	Email        string `bson:"email"`
	PasswordHash string `bson:"passwordHash"`
	Role         string `bson:"role"`
}

func (s *Store) Authenticate(ctx context.Context, email, password string) (kpi.User, error) {
	var d userDoc
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return kpi.User{}, kpi.ErrAuthExpired
	}
	if err != nil {
		return kpi.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password)) != nil {
		return kpi.User{}, kpi.ErrAuthExpired
	}
	return kpi.User{ID: d.ID, Name: d.Name, Email: d.Email, Role: d.Role}, nil
}

func (s *Store) SalesUsers(ctx context.Context) ([]kpi.User, error) {
	cursor, err := s.db.Collection(usersCollection).Find(ctx,
		bson.M{"role": kpi.RoleSales},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list sales users: %w", err)
	}
	defer cursor.Close(ctx)

	var out []kpi.User
	for cursor.Next(ctx) {
		var d userDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		out = append(out, kpi.User{ID: d.ID, Name: d.Name, Email: d.Email, Role: d.Role})
	}
	return out, cursor.Err()
}

// SaveUser creates or updates a login account, hashing the password when one
// is given. Used by the bootstrap seeding and admin tooling.
func (s *Store) SaveUser(ctx context.Context, u kpi.User, password string) (kpi.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return kpi.User{}, err
	}
	_, err = s.db.Collection(usersCollection).ReplaceOne(ctx,
		bson.M{"email": u.Email},
		userDoc{ID: u.ID, Name: u.Name, Email: u.Email, PasswordHash: string(hash), Role: u.Role},
		options.Replace().SetUpsert(true))
	if err != nil {
		return kpi.User{}, fmt.Errorf("failed to save user: %w", err)
	}
	return u, nil
}

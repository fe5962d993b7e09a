package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Collection names. Each lives on its own named store.
const (
	PatientsCollection = "patients"
	UsersCollection    = "users"
	ClinicalCollection = "clinical_records"
)

// Specs lists the collections the service needs, keyed by store name.
var Specs = map[string]CollectionSpec{
	PatientsCollection: {Name: PatientsCollection, Unique: []string{"identifier"}},
	UsersCollection:    {Name: UsersCollection, Unique: []string{"email"}},
	ClinicalCollection: {Name: ClinicalCollection},
}

// Store is a named logical connection to one collection's database.
type Store struct {
	Name string
	Pool *pgxpool.Pool
}

// Collection returns the store's collection handle.
func (s *Store) Collection() (*Collection, error) {
	spec, ok := Specs[s.Name]
	if !ok {
		return nil, fmt.Errorf("unknown store %q", s.Name)
	}
	return NewCollection(s.Pool, spec.Name)
}

// Ensure creates the store's collection table and indexes if missing.
func (s *Store) Ensure(ctx context.Context) error {
	spec, ok := Specs[s.Name]
	if !ok {
		return fmt.Errorf("unknown store %q", s.Name)
	}
	return EnsureCollection(ctx, s.Pool, spec)
}

// StoreConfig holds connection settings for the three stores.
type StoreConfig struct {
	PatientsURL    string
	UsersURL       string
	ClinicalURL    string
	MaxConns       int32
	MinConns       int32
	ConnectTimeout time.Duration
}

// Stores holds the three store connections opened at startup.
type Stores struct {
	Patients *Store
	Users    *Store
	Clinical *Store
}

// OpenStores opens one pool per collection. The pools are independent even
// when two URLs point at the same server.
func OpenStores(ctx context.Context, cfg StoreConfig) (*Stores, error) {
	s := &Stores{}
	targets := []struct {
		name string
		url  string
		dst  **Store
	}{
		{PatientsCollection, cfg.PatientsURL, &s.Patients},
		{UsersCollection, cfg.UsersURL, &s.Users},
		{ClinicalCollection, cfg.ClinicalURL, &s.Clinical},
	}
	for _, t := range targets {
		pool, err := NewPool(ctx, t.url, cfg.MaxConns, cfg.MinConns, cfg.ConnectTimeout)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("open %s store: %w", t.name, err)
		}
		*t.dst = &Store{Name: t.name, Pool: pool}
	}
	return s, nil
}

// All returns the opened stores in a fixed order.
func (s *Stores) All() []*Store {
	var out []*Store
	for _, st := range []*Store{s.Patients, s.Users, s.Clinical} {
		if st != nil {
			out = append(out, st)
		}
	}
	return out
}

// EnsureAll creates every collection on its store.
func (s *Stores) EnsureAll(ctx context.Context) error {
	for _, st := range s.All() {
		if err := st.Ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Stores) Close() {
	for _, st := range s.All() {
		st.Pool.Close()
	}
}

package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ywu256/MAPD713-Project/internal/platform/db"
)

type patientRepoPG struct {
	coll *db.Collection
}

// NewRepo returns a Repository backed by the patients collection.
func NewRepo(coll *db.Collection) Repository {
	return &patientRepoPG{coll: coll}
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	if err := r.coll.Insert(ctx, p.ID, p); err != nil {
		return fmt.Errorf("patient create: %w", err)
	}
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	doc, err := r.coll.FindByKey(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("patient get by id: %w", err)
	}
	return decodePatient(doc)
}

func (r *patientRepoPG) ExistsByIdentifier(ctx context.Context, identifier string) (bool, error) {
	ok, err := r.coll.Exists(ctx, db.Filter{"identifier": identifier})
	if err != nil {
		return false, fmt.Errorf("patient exists by identifier: %w", err)
	}
	return ok, nil
}

func (r *patientRepoPG) List(ctx context.Context) ([]*Patient, error) {
	docs, err := r.coll.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("patient list: %w", err)
	}
	patients := make([]*Patient, 0, len(docs))
	for _, doc := range docs {
		p, err := decodePatient(doc)
		if err != nil {
			return nil, fmt.Errorf("patient list: %w", err)
		}
		patients = append(patients, p)
	}
	return patients, nil
}

func decodePatient(doc db.Document) (*Patient, error) {
	var p Patient
	if err := doc.Decode(&p); err != nil {
		return nil, err
	}
	// The column is authoritative for the key.
	p.ID = doc.Key
	return &p, nil
}

package clinical

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ywu256/MAPD713-Project/internal/platform/db"
)

type recordRepoPG struct {
	coll *db.Collection
}

// NewRepo returns a Repository backed by the clinical records collection.
func NewRepo(coll *db.Collection) Repository {
	return &recordRepoPG{coll: coll}
}

func (r *recordRepoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	if err := r.coll.Insert(ctx, rec.ID, rec); err != nil {
		return fmt.Errorf("clinical record create: %w", err)
	}
	return nil
}

func (r *recordRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Record, error) {
	docs, err := r.coll.Find(ctx, db.Filter{"patient_id": patientID.String()})
	if err != nil {
		return nil, fmt.Errorf("clinical record list by patient: %w", err)
	}
	records := make([]*Record, 0, len(docs))
	for _, doc := range docs {
		var rec Record
		if err := doc.Decode(&rec); err != nil {
			return nil, fmt.Errorf("clinical record list by patient: %w", err)
		}
		rec.ID = doc.Key
		records = append(records, &rec)
	}
	return records, nil
}

package clinical

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ywu256/MAPD713-Project/internal/platform/apperr"
)

type Service struct {
	records Repository
	now     func() time.Time
}

func NewService(records Repository) *Service {
	return &Service{records: records, now: time.Now}
}

// CreateRecord validates req and stores it with a server-assigned timestamp.
func (s *Service) CreateRecord(ctx context.Context, req *CreateRequest) (*Record, error) {
	patientID, err := req.Validate()
	if err != nil {
		return nil, apperr.FromValidation(err)
	}

	rec := &Record{
		PatientID: patientID,
		Type:      req.Type,
		Value:     req.Value,
		Timestamp: s.now().UTC(),
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, apperr.Internal(err)
	}
	return rec, nil
}

// ListByPatient returns the patient's records. No records at all is reported
// as not found, so callers cannot tell an unknown key from a patient without
// measurements yet.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Record, error) {
	records, err := s.records.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(records) == 0 {
		return nil, apperr.NotFound("no clinical records found")
	}
	return records, nil
}

// RecordsForPatient returns the patient's records, empty when there are none.
func (s *Service) RecordsForPatient(ctx context.Context, patientID uuid.UUID) ([]*Record, error) {
	return s.records.ListByPatient(ctx, patientID)
}

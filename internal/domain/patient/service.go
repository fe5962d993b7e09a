package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ywu256/MAPD713-Project/internal/domain/clinical"
	"github.com/ywu256/MAPD713-Project/internal/platform/apperr"
	"github.com/ywu256/MAPD713-Project/internal/platform/db"
)

// ErrIdentifierExists is the caller-facing message for a duplicate identifier.
const ErrIdentifierExists = "identifier already exists"

// ClinicalReader fetches every clinical record attached to a patient key. An
// empty result is not an error.
type ClinicalReader interface {
	RecordsForPatient(ctx context.Context, patientID uuid.UUID) ([]*clinical.Record, error)
}

// Detail is the response envelope for a single patient.
type Detail struct {
	Patient      *Patient           `json:"patient"`
	ClinicalData []*clinical.Record `json:"clinical_data"`
}

type Service struct {
	patients Repository
	clinical ClinicalReader
}

func NewService(patients Repository, clinical ClinicalReader) *Service {
	return &Service{patients: patients, clinical: clinical}
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if patients == nil {
		patients = []*Patient{}
	}
	return patients, nil
}

// GetPatient returns the patient and its clinical records. The clinical
// lookup runs only after the patient resolves.
func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Detail, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNoDocument) {
			return nil, apperr.NotFound("patient not found")
		}
		return nil, apperr.Internal(err)
	}

	records, err := s.clinical.RecordsForPatient(ctx, p.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if records == nil {
		records = []*clinical.Record{}
	}
	return &Detail{Patient: p, ClinicalData: records}, nil
}

// CreatePatient validates req, rejects a duplicate identifier and persists the
// new patient.
//
// The existence check and the insert are separate round trips. Two concurrent
// creates with the same identifier can both pass the check; the unique index
// on the patients collection then rejects the second insert with
// db.ErrDuplicate, which is reported the same way.
func (s *Service) CreatePatient(ctx context.Context, req *CreateRequest) (*Patient, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, apperr.FromValidation(err)
	}

	exists, err := s.patients.ExistsByIdentifier(ctx, req.Identifier)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.Conflict(ErrIdentifierExists)
	}

	p := req.ToPatient()
	if err := s.patients.Create(ctx, p); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, apperr.Conflict(ErrIdentifierExists)
		}
		return nil, apperr.Internal(err)
	}
	return p, nil
}

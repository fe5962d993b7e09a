package clinical

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hengadev/errsx"
)

// Record is one measurement event for a patient, e.g. a blood pressure
// reading. PatientID is the patient's store key and is not checked against
// the patients collection.
type Record struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	Type      string    `json:"type"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateRequest is the body accepted by POST /clinical. A timestamp sent by
// the caller is accepted in any shape and discarded.
type CreateRequest struct {
	PatientID string          `json:"patient_id"`
	Type      string          `json:"type"`
	Value     string          `json:"value"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

// Validate checks the request shape and returns the parsed patient key.
func (r *CreateRequest) Validate() (uuid.UUID, error) {
	var errs errsx.Map
	r.Type = strings.TrimSpace(r.Type)
	r.Value = strings.TrimSpace(r.Value)

	var patientID uuid.UUID
	if strings.TrimSpace(r.PatientID) == "" {
		errs.Set("patient_id", "patient_id is required")
	} else if id, err := uuid.Parse(strings.TrimSpace(r.PatientID)); err != nil {
		errs.Set("patient_id", "patient_id must be a patient key")
	} else {
		patientID = id
	}
	if r.Type == "" {
		errs.Set("type", "type is required")
	}
	if r.Value == "" {
		errs.Set("value", "value is required")
	}
	return patientID, errs.AsError()
}
